package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

// Text codes discriminating the error kinds surfaced by the client.
const (
	ErrCodeInvalidCredentials = "INVALID_CREDENTIALS"
	ErrCodeSessionExpired     = "SESSION_EXPIRED"
	ErrCodeValidation         = "VALIDATION_ERROR"
	ErrCodeForbidden          = "FORBIDDEN"
	ErrCodeNotFound           = "NOT_FOUND"
	ErrCodeServerError        = "SERVER_ERROR"
	ErrCodeNetworkError       = "NETWORK_ERROR"
	ErrCodeRequestFailed      = "REQUEST_FAILED"
)

func invalidCredentialsError() error {
	return goerrors.New("invalid email or password", goerrors.CategoryAuth).
		WithCode(http.StatusUnauthorized).
		WithTextCode(ErrCodeInvalidCredentials)
}

func sessionExpiredError() error {
	return goerrors.New("session expired, please log in again", goerrors.CategoryAuth).
		WithCode(http.StatusUnauthorized).
		WithTextCode(ErrCodeSessionExpired)
}

func forbiddenError() error {
	return goerrors.New("you do not have permission to perform this action", goerrors.CategoryAuthz).
		WithCode(http.StatusForbidden).
		WithTextCode(ErrCodeForbidden)
}

func notFoundError() error {
	return goerrors.New("resource not found", goerrors.CategoryNotFound).
		WithCode(http.StatusNotFound).
		WithTextCode(ErrCodeNotFound)
}

func serverError(status int) error {
	return goerrors.New("server error, please try again later", goerrors.CategoryExternal).
		WithCode(status).
		WithTextCode(ErrCodeServerError)
}

func networkError(err error) error {
	return goerrors.Wrap(err, goerrors.CategoryExternal, "could not reach the ManageDay API").
		WithTextCode(ErrCodeNetworkError)
}

func requestFailedError(status int, body []byte) error {
	message := fmt.Sprintf("request failed with status %d", status)
	if snippet := strings.TrimSpace(string(body)); snippet != "" {
		if len(snippet) > 200 {
			snippet = snippet[:200]
		}
		message = fmt.Sprintf("%s: %s", message, snippet)
	}
	return goerrors.New(message, goerrors.CategoryOperation).
		WithCode(status).
		WithTextCode(ErrCodeRequestFailed)
}

// validationDetail is one entry of a FastAPI-style 422 body:
// {"detail": [{"loc": ["body", "phone"], "msg": "required", ...}]}.
// loc entries may be strings or array indices.
type validationDetail struct {
	Loc []any  `json:"loc"`
	Msg string `json:"msg"`
}

func validationError(body []byte) error {
	var payload struct {
		Detail []validationDetail `json:"detail"`
	}
	_ = json.Unmarshal(body, &payload)

	fields := make([]goerrors.FieldError, 0, len(payload.Detail))
	parts := make([]string, 0, len(payload.Detail))
	for _, detail := range payload.Detail {
		field := "body"
		if len(detail.Loc) > 0 {
			field = fmt.Sprint(detail.Loc[len(detail.Loc)-1])
		}
		fields = append(fields, goerrors.FieldError{Field: field, Message: detail.Msg})
		parts = append(parts, fmt.Sprintf("%s: %s", field, detail.Msg))
	}

	message := "validation error"
	if len(parts) > 0 {
		message = fmt.Sprintf("validation error: %s", strings.Join(parts, ", "))
	}
	return goerrors.NewValidation(message, fields...).
		WithCode(http.StatusUnprocessableEntity).
		WithTextCode(ErrCodeValidation)
}

// classifyResponse maps a non-2xx pipeline response to a typed error.
// The 401 case is handled by the caller before classification because it is
// the only status with a session side effect.
func classifyResponse(status int, body []byte) error {
	switch {
	case status == http.StatusUnprocessableEntity:
		return validationError(body)
	case status == http.StatusForbidden:
		return forbiddenError()
	case status == http.StatusNotFound:
		return notFoundError()
	case status >= http.StatusInternalServerError:
		return serverError(status)
	default:
		return requestFailedError(status, body)
	}
}

// classifyLoginResponse maps a failed password exchange. Unlike the
// pipeline, a 401 here means the credentials were wrong, not that a session
// expired; nothing is cleared.
func classifyLoginResponse(status int, body []byte) error {
	if status == http.StatusUnauthorized {
		return invalidCredentialsError()
	}
	return classifyResponse(status, body)
}

func hasTextCode(err error, code string) bool {
	var rich *goerrors.Error
	if !goerrors.As(err, &rich) {
		return false
	}
	return rich.TextCode == code
}

// IsSessionExpired reports a 401 on a non-login call after the pipeline
// already cleared the stored credential.
func IsSessionExpired(err error) bool { return hasTextCode(err, ErrCodeSessionExpired) }

// IsInvalidCredentials reports a rejected password exchange.
func IsInvalidCredentials(err error) bool { return hasTextCode(err, ErrCodeInvalidCredentials) }

// IsValidation reports a 422 with field-level messages.
func IsValidation(err error) bool { return hasTextCode(err, ErrCodeValidation) }

// IsForbidden reports a 403.
func IsForbidden(err error) bool { return hasTextCode(err, ErrCodeForbidden) }

// IsNotFound reports a 404.
func IsNotFound(err error) bool { return hasTextCode(err, ErrCodeNotFound) }

// IsServerError reports a 5xx.
func IsServerError(err error) bool { return hasTextCode(err, ErrCodeServerError) }

// IsNetworkError reports a transport failure or timeout with no response.
func IsNetworkError(err error) bool { return hasTextCode(err, ErrCodeNetworkError) }

// ValidationFields returns the field-level messages of a validation error.
func ValidationFields(err error) []goerrors.FieldError {
	var rich *goerrors.Error
	if !goerrors.As(err, &rich) {
		return nil
	}
	return rich.AllValidationErrors()
}
