package service

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// エラーのフィールド名は JSON のキー名に合わせる
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	if err := v.RegisterValidation("notblank", validators.NotBlank); err != nil {
		panic(err)
	}
	return v
}

// validateInput は構造体タグに従って入力を検証し、フィールドごとのメッセージを返します。
func validateInput(input any) error {
	err := validate.Struct(input)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = fieldMessage(fe)
	}
	return validationError(fields)
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "notblank":
		return "必須項目です"
	case "email":
		return "メールアドレスの形式が正しくありません"
	case "max":
		return fmt.Sprintf("%s文字以内で入力してください", fe.Param())
	case "min":
		return fmt.Sprintf("%s文字以上で入力してください", fe.Param())
	case "oneof":
		return fmt.Sprintf("次のいずれかを指定してください: %s", fe.Param())
	default:
		return "値が不正です"
	}
}
