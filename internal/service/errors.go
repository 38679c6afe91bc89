package service

import (
	"errors"
	"fmt"
)

// エラーコード。HTTP 層でステータスに変換されます。
const (
	CodeValidation         = "VALIDATION_FAILED"
	CodeInvalidArgument    = "INVALID_ARGUMENT"
	CodeNotFound           = "NOT_FOUND"
	CodeAccessDenied       = "ACCESS_DENIED"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeEmailTaken         = "EMAIL_TAKEN"
)

// Error はサービス層が呼び出し側へ返すエラーです。
type Error struct {
	Code    string
	Message string
	Fields  map[string]string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(code, message string, err error) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

func notFound(message string) *Error {
	return newError(CodeNotFound, message, nil)
}

func accessDenied(message string) *Error {
	return newError(CodeAccessDenied, message, nil)
}

func validationError(fields map[string]string) *Error {
	return &Error{
		Code:    CodeValidation,
		Message: "入力内容に誤りがあります",
		Fields:  fields,
	}
}

// HasCode は err が指定コードの *Error かどうかを返します。
func HasCode(err error, code string) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == code
}
