package restapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/sendgrid/rest"
)

// Kind classifies a failed call.
type Kind int

const (
	KindTransport    Kind = iota // no response received
	KindUnauthorized             // 401
	KindForbidden                // 403
	KindNotFound                 // 404
	KindBadRequest               // 400, 409, 422
	KindServer                   // 5xx
	KindUnexpected               // any other status
)

var kindNames = [...]string{"transport", "unauthorized", "forbidden", "not found", "bad request", "server", "unexpected"}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "unknown"
	}
	return kindNames[k]
}

func kindOf(status int) Kind {
	switch {
	case status == http.StatusUnauthorized:
		return KindUnauthorized
	case status == http.StatusForbidden:
		return KindForbidden
	case status == http.StatusNotFound:
		return KindNotFound
	case status == http.StatusBadRequest, status == http.StatusConflict, status == http.StatusUnprocessableEntity:
		return KindBadRequest
	case status >= http.StatusInternalServerError:
		return KindServer
	default:
		return KindUnexpected
	}
}

// Error is a failed call to the SkillFlow API.
type Error struct {
	Kind    Kind
	Method  string
	Path    string
	Status  int    // 0 for KindTransport
	Body    string // raw response body
	Message string // "message" field of the response body, if any
	Err     error  // transport error
}

func newStatusError(method rest.Method, path string, res *rest.Response) *Error {
	e := &Error{
		Kind:   kindOf(res.StatusCode),
		Method: string(method),
		Path:   path,
		Status: res.StatusCode,
		Body:   res.Body,
	}
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if json.Unmarshal([]byte(res.Body), &payload) == nil {
		e.Message = strings.TrimSpace(payload.Message)
		if e.Message == "" {
			e.Message = strings.TrimSpace(payload.Error)
		}
	}
	return e
}

func (e *Error) Error() string {
	if e.Kind == KindTransport {
		return fmt.Sprintf("%s %s: %v", e.Method, e.Path, e.Err)
	}
	if e.Message != "" {
		return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.Status, e.Message)
	}
	return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.Status, http.StatusText(e.Status))
}

func (e *Error) Unwrap() error { return e.Err }

// StatusCode is the HTTP status of the response, 0 when none was received.
func (e *Error) StatusCode() int { return e.Status }

// UserMessage is the text shown to the user for this failure.
func (e *Error) UserMessage() string {
	switch e.Kind {
	case KindTransport:
		return "network error, check your connection and try again"
	case KindUnauthorized:
		return "your session has expired, please sign in again"
	case KindForbidden:
		return "access denied"
	case KindServer:
		return "the server encountered an error, try again later"
	}
	if e.Message != "" {
		return e.Message
	}
	if e.Kind == KindNotFound {
		return "not found"
	}
	return "the request could not be processed"
}

// HTTPStatus is the status to answer our own clients with.
func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case KindTransport, KindServer, KindUnexpected:
		return http.StatusBadGateway
	default:
		return e.Status
	}
}
