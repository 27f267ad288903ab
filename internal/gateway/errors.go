package gateway

import (
	"encoding/json"
	"strings"

	"storefront/internal/domain"
)

// GraphQLError is one entry of a response's top-level "errors" array.
type GraphQLError struct {
	Message    string         `json:"message"`
	Path       []any          `json:"path,omitempty"`
	Extensions map[string]any `json:"extensions,omitempty"`
}

// Errors decodes the top-level "errors" member. The gateway reports some
// authentication failures as a bare string instead of an array.
type Errors []GraphQLError

func (e *Errors) UnmarshalJSON(b []byte) error {
	trimmed := strings.TrimSpace(string(b))
	if trimmed == "null" {
		*e = nil
		return nil
	}
	if strings.HasPrefix(trimmed, `"`) {
		var msg string
		if err := json.Unmarshal(b, &msg); err != nil {
			return err
		}
		*e = Errors{{Message: msg}}
		return nil
	}
	var list []GraphQLError
	if err := json.Unmarshal(b, &list); err != nil {
		return err
	}
	*e = list
	return nil
}

// UserError is a business-rule failure nested inside a mutation payload.
type UserError struct {
	Code    string   `json:"code,omitempty"`
	Field   []string `json:"field,omitempty"`
	Message string   `json:"message"`
}

// Response is embedded by every typed response.
type Response struct {
	Errors Errors `json:"errors,omitempty"`
}

func (r Response) GraphQLErrors() []GraphQLError {
	return r.Errors
}

type errorCarrier interface {
	GraphQLErrors() []GraphQLError
}

// Failure reports whether the call failed at any level and picks the first
// available message: transport/parse message, first top-level error, first
// user error. The message is empty when none of them carries text; callers
// supply their own fallback.
func (e Envelope[T]) Failure(userErrors []UserError) (string, bool) {
	var gqlErrors []GraphQLError
	if e.Res != nil {
		if carrier, ok := any(e.Res).(errorCarrier); ok {
			gqlErrors = carrier.GraphQLErrors()
		}
	}
	failed := e.Err || e.Res == nil || len(gqlErrors) > 0 || len(userErrors) > 0
	if !failed {
		return "", false
	}
	if e.Message != "" {
		return e.Message, true
	}
	if len(gqlErrors) > 0 && gqlErrors[0].Message != "" {
		return gqlErrors[0].Message, true
	}
	if len(userErrors) > 0 && userErrors[0].Message != "" {
		return userErrors[0].Message, true
	}
	return "", true
}

// Result folds the envelope into a domain.Result, substituting fallback when
// the failure carries no message. Envelope-level failures keep their cause;
// top-level and user errors are classified as domain.ErrRejected.
func (e Envelope[T]) Result(userErrors []UserError, fallback string) domain.Result {
	msg, failed := e.Failure(userErrors)
	if !failed {
		return domain.Succeeded()
	}
	if msg == "" {
		msg = fallback
	}
	cause := e.Cause
	if cause == nil {
		cause = domain.ErrRejected
	}
	return domain.Failed(cause, msg)
}
