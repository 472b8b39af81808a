package api

import (
	"errors"
	"strings"
	"testing"
)

func TestValidationError_FieldMessages(t *testing.T) {
	body := []byte(`{"detail":[
		{"loc":["body","phone"],"msg":"required"},
		{"loc":["body","items",0,"quantity"],"msg":"must be positive"}
	]}`)

	err := validationError(body)
	if !IsValidation(err) {
		t.Fatal("expected a validation error")
	}
	if !strings.Contains(err.Error(), "phone: required") {
		t.Errorf("message should name the offending field, got %q", err.Error())
	}

	fields := ValidationFields(err)
	if len(fields) != 2 {
		t.Fatalf("expected 2 field errors, got %d", len(fields))
	}
	if fields[0].Field != "phone" || fields[0].Message != "required" {
		t.Errorf("unexpected first field error: %+v", fields[0])
	}
	if fields[1].Field != "quantity" {
		t.Errorf("expected last loc segment as field name, got %q", fields[1].Field)
	}
}

func TestValidationError_UnparsableBody(t *testing.T) {
	err := validationError([]byte("not json"))
	if !IsValidation(err) {
		t.Fatal("expected a validation error even with an unparsable body")
	}
	if err.Error() == "" {
		t.Error("expected a generic message")
	}
}

func TestClassifyResponse(t *testing.T) {
	tests := []struct {
		name   string
		status int
		check  func(error) bool
	}{
		{"forbidden", 403, IsForbidden},
		{"not found", 404, IsNotFound},
		{"validation", 422, IsValidation},
		{"server error", 500, IsServerError},
		{"bad gateway", 502, IsServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := classifyResponse(tt.status, nil)
			if !tt.check(err) {
				t.Errorf("status %d misclassified: %v", tt.status, err)
			}
		})
	}
}

func TestClassifyLoginResponse(t *testing.T) {
	err := classifyLoginResponse(401, nil)
	if !IsInvalidCredentials(err) {
		t.Errorf("login 401 should mean invalid credentials, got %v", err)
	}
	if IsSessionExpired(err) {
		t.Error("login 401 must not be reported as an expired session")
	}

	err = classifyLoginResponse(422, []byte(`{"detail":[{"loc":["body","username"],"msg":"invalid email"}]}`))
	if !IsValidation(err) {
		t.Errorf("login 422 should classify as validation, got %v", err)
	}
}

func TestPredicates_PlainErrors(t *testing.T) {
	plain := errors.New("boom")
	for name, check := range map[string]func(error) bool{
		"IsSessionExpired":     IsSessionExpired,
		"IsInvalidCredentials": IsInvalidCredentials,
		"IsValidation":         IsValidation,
		"IsNetworkError":       IsNetworkError,
	} {
		if check(plain) {
			t.Errorf("%s matched a plain error", name)
		}
		if check(nil) {
			t.Errorf("%s matched nil", name)
		}
	}
	if ValidationFields(plain) != nil {
		t.Error("ValidationFields should be nil for plain errors")
	}
}
