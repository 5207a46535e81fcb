package transport

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// StatusError reports a non-2xx response. FieldErrors holds the decoded
// `errors` object of the body when the server sent one; messages given as a
// single string become a one element slice.
type StatusError struct {
	Code        int
	Status      string
	FieldErrors map[string][]string
	Err         error
}

func (e *StatusError) Error() string {
	status := strings.TrimSpace(e.Status)
	if status == "" {
		status = fmt.Sprintf("%d %s", e.StatusCode(), http.StatusText(e.StatusCode()))
	}
	if e.Err != nil {
		return "transport: unexpected status " + status + ": " + e.Err.Error()
	}
	return "transport: unexpected status " + status
}

func (e *StatusError) Unwrap() error { return e.Err }

// StatusCode returns the HTTP status, defaulting to 500.
func (e *StatusError) StatusCode() int {
	if e.Code <= 0 {
		return http.StatusInternalServerError
	}
	return e.Code
}

// FieldErrorsOf extracts the server field errors from err, if any.
func FieldErrorsOf(err error) map[string][]string {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.FieldErrors
	}
	return nil
}

// errorBody mirrors `{errors: {field: message | [message, ...]}}`.
type errorBody struct {
	Errors map[string]any `json:"errors"`
}

func flattenErrorMessages(raw map[string]any) map[string][]string {
	if len(raw) == 0 {
		return nil
	}
	out := make(map[string][]string, len(raw))
	for key, value := range raw {
		var messages []string
		switch typed := value.(type) {
		case string:
			messages = append(messages, typed)
		case []any:
			for _, item := range typed {
				if item == nil {
					continue
				}
				messages = append(messages, fmt.Sprint(item))
			}
		case nil:
			continue
		default:
			messages = append(messages, fmt.Sprint(typed))
		}
		if len(messages) > 0 {
			out[key] = messages
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
