package service

import (
	"context"
	"errors"
	"testing"

	"github.com/Benhap1/taskmanager/internal/models"
)

func TestRegisterDefaultsToAssignee(t *testing.T) {
	f := newFixture(t)

	user := f.register(t, "a@x.com", "")
	if user.Role != models.RoleAssignee {
		t.Fatalf("expected ASSIGNEE, got %s", user.Role)
	}
	if user.PasswordHash == "" || user.PasswordHash == "secret123" {
		t.Fatalf("password stored in plaintext: %q", user.PasswordHash)
	}
}

func TestRegisterRejectsUnknownRole(t *testing.T) {
	f := newFixture(t)

	for _, role := range []models.Role{"ADMIN", "author", " ASSIGNEE "} {
		_, err := f.users.Register(context.Background(), UserInput{Email: "a@x.com", Password: "secret123", Role: role})
		if !HasCode(err, CodeInvalidArgument) {
			t.Fatalf("role %q: expected INVALID_ARGUMENT, got %v", role, err)
		}
	}
}

func TestRegisterValidatesInput(t *testing.T) {
	f := newFixture(t)

	_, err := f.users.Register(context.Background(), UserInput{Email: "not-an-email", Password: "123"})
	var svcErr *Error
	if !errors.As(err, &svcErr) || svcErr.Code != CodeValidation {
		t.Fatalf("expected VALIDATION_FAILED, got %v", err)
	}
	if _, ok := svcErr.Fields["email"]; !ok {
		t.Fatalf("missing email field error: %#v", svcErr.Fields)
	}
	if _, ok := svcErr.Fields["password"]; !ok {
		t.Fatalf("missing password field error: %#v", svcErr.Fields)
	}
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	f := newFixture(t)
	f.register(t, "a@x.com", models.RoleAuthor)

	_, err := f.users.Register(context.Background(), UserInput{Email: "A@x.com ", Password: "secret123"})
	if !HasCode(err, CodeEmailTaken) {
		t.Fatalf("expected EMAIL_TAKEN, got %v", err)
	}
}

func TestLogin(t *testing.T) {
	f := newFixture(t)
	f.register(t, "a@x.com", models.RoleAuthor)
	ctx := context.Background()

	token, err := f.users.Login(ctx, LoginInput{Email: "a@x.com", Password: "secret123"})
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	claims, err := f.tokens.Verify(token.Value)
	if err != nil {
		t.Fatalf("issued token did not verify: %v", err)
	}
	if claims.Email() != "a@x.com" {
		t.Fatalf("unexpected subject: %s", claims.Email())
	}

	if _, err := f.users.Login(ctx, LoginInput{Email: "a@x.com", Password: "wrong"}); !HasCode(err, CodeInvalidCredentials) {
		t.Fatalf("expected INVALID_CREDENTIALS for wrong password, got %v", err)
	}
	if _, err := f.users.Login(ctx, LoginInput{Email: "nobody@x.com", Password: "secret123"}); !HasCode(err, CodeInvalidCredentials) {
		t.Fatalf("expected INVALID_CREDENTIALS for unknown email, got %v", err)
	}
}

func TestGetUserMissingIsEmpty(t *testing.T) {
	f := newFixture(t)

	user, err := f.users.GetByID(context.Background(), 404)
	if err != nil || user != nil {
		t.Fatalf("expected nil, nil; got %#v, %v", user, err)
	}
	user, err = f.users.GetByEmail(context.Background(), "nobody@x.com")
	if err != nil || user != nil {
		t.Fatalf("expected nil, nil; got %#v, %v", user, err)
	}
}

func TestUpdateUserSelfOnly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.register(t, "a@x.com", models.RoleAuthor)
	b := f.register(t, "b@x.com", models.RoleAssignee)

	in := UserInput{Email: "a2@x.com", Password: "newpass1", Role: models.RoleAssignee}
	if _, err := f.users.Update(ctx, a.ID, in, b); !HasCode(err, CodeAccessDenied) {
		t.Fatalf("expected ACCESS_DENIED, got %v", err)
	}
	if _, err := f.users.Update(ctx, 999, in, a); !HasCode(err, CodeNotFound) {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}

	updated, err := f.users.Update(ctx, a.ID, in, a)
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if updated.ID != a.ID || updated.Email != "a2@x.com" || updated.Role != models.RoleAssignee {
		t.Fatalf("unexpected user: %#v", updated)
	}
	if _, err := f.users.Login(ctx, LoginInput{Email: "a2@x.com", Password: "newpass1"}); err != nil {
		t.Fatalf("login with new password failed: %v", err)
	}

	taken := UserInput{Email: "b@x.com", Password: "newpass1"}
	if _, err := f.users.Update(ctx, a.ID, taken, a); !HasCode(err, CodeEmailTaken) {
		t.Fatalf("expected EMAIL_TAKEN, got %v", err)
	}
}

func TestDeleteUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.register(t, "a@x.com", models.RoleAuthor)
	b := f.register(t, "b@x.com", models.RoleAssignee)

	if _, err := f.users.Delete(ctx, a.ID, b); !HasCode(err, CodeAccessDenied) {
		t.Fatalf("expected ACCESS_DENIED, got %v", err)
	}
	ok, err := f.users.Delete(ctx, a.ID, a)
	if err != nil || !ok {
		t.Fatalf("Delete = %v, %v", ok, err)
	}
	ok, err = f.users.Delete(ctx, a.ID, a)
	if err != nil || ok {
		t.Fatalf("second Delete = %v, %v", ok, err)
	}
}
