package todoapi

import (
	"errors"
	"fmt"
	"net/http"
)

// errMissingID is the decode cause when a created or updated todo comes
// back without an id.
var errMissingID = errors.New("response has no id")

// Kind classifies a failed request.
type Kind int

const (
	// KindNetwork means the request never reached the server or no
	// response came back.
	KindNetwork Kind = iota + 1
	// KindServer means the server answered with a non-2xx status.
	KindServer
	// KindDecode means a 2xx response body was not the expected JSON.
	KindDecode
)

func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindServer:
		return "server"
	case KindDecode:
		return "decode"
	}
	return "unknown"
}

// Error is returned by every Client method that fails.
type Error struct {
	Kind    Kind
	Op      string // list, create, update, delete
	Status  int    // HTTP status for KindServer
	Message string
	Cause   error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindNetwork:
		return fmt.Sprintf("%s: network error: %s", e.Op, e.Message)
	case KindServer:
		return fmt.Sprintf("%s: server error (%d): %s", e.Op, e.Status, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// UserMessage is the short text meant for a status line.
func (e *Error) UserMessage() string {
	switch e.Kind {
	case KindNetwork:
		return "Could not reach the server: " + e.Message
	case KindDecode:
		return "Unexpected response from the server"
	}
	return e.Message
}

func errNetwork(op string, cause error) *Error {
	return &Error{Kind: KindNetwork, Op: op, Message: cause.Error(), Cause: cause}
}

func errServer(op string, status int, msg string) *Error {
	if msg == "" {
		msg = fmt.Sprintf("%d %s", status, http.StatusText(status))
	}
	return &Error{Kind: KindServer, Op: op, Status: status, Message: msg}
}

func errDecode(op string, cause error) *Error {
	return &Error{Kind: KindDecode, Op: op, Message: cause.Error(), Cause: cause}
}

// Message converts any error into text suitable for showing to a user.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.UserMessage()
	}
	return err.Error()
}

// IsNotFound reports whether err is a 404 from the server.
func IsNotFound(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Kind == KindServer && apiErr.Status == http.StatusNotFound
}
