package remote

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
)

// ErrorKind classifies a gateway failure. The set is closed.
type ErrorKind int

const (
	KindOther ErrorKind = iota
	KindNotFound
	KindRelationMissing
	KindNetwork
	KindSQLExecution
	KindBadRequest
	KindMissingResource
	KindUnauthenticated
)

func (k ErrorKind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindRelationMissing:
		return "relation_missing"
	case KindNetwork:
		return "network"
	case KindSQLExecution:
		return "sql_execution"
	case KindBadRequest:
		return "bad_request"
	case KindMissingResource:
		return "missing_resource"
	case KindUnauthenticated:
		return "unauthenticated"
	default:
		return "other"
	}
}

// Backend error codes recognised by Classify.
const (
	CodeRelationMissing = "42P01"         // postgres undefined_table
	CodeSchemaCacheMiss = "PGRST205"      // postgrest: table not in schema cache
	CodeSQLExecution    = "PGRST301"      // postgrest: statement execution failed
	CodeNetwork         = "NETWORK_ERROR" // transport layer failure
)

const (
	notFoundMarker    = "not found"
	noSuchTableMarker = "no such table"
)

// Error is a gateway failure with its classification attached.
type Error struct {
	Kind    ErrorKind
	Op      string
	Status  int
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Op)
	b.WriteString(": ")
	b.WriteString(e.Kind.String())
	if e.Status != 0 {
		fmt.Fprintf(&b, " (status %d)", e.Status)
	}
	if e.Code != "" {
		fmt.Fprintf(&b, " [%s]", e.Code)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	} else if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// NewError builds a classified Error from whatever the backend reported.
func NewError(op string, status int, code, message string, err error) *Error {
	e := &Error{Op: op, Status: status, Code: code, Message: message, Err: err}
	e.Kind = Classify(status, code, message, err)
	return e
}

// Classify maps backend signals to an ErrorKind. Codes win over statuses,
// statuses win over message text.
func Classify(status int, code, message string, err error) ErrorKind {
	switch code {
	case CodeRelationMissing, CodeSchemaCacheMiss:
		return KindRelationMissing
	case CodeSQLExecution:
		return KindSQLExecution
	case CodeNetwork:
		return KindNetwork
	}
	if err != nil && isNetworkError(err) {
		return KindNetwork
	}

	switch status {
	case http.StatusBadRequest:
		return KindBadRequest
	case http.StatusNotFound:
		return KindMissingResource
	case http.StatusUnauthorized:
		return KindUnauthenticated
	}

	text := strings.ToLower(message)
	if text == "" && err != nil {
		text = strings.ToLower(err.Error())
	}
	switch {
	case strings.Contains(text, noSuchTableMarker):
		return KindRelationMissing
	case strings.Contains(text, notFoundMarker):
		return KindNotFound
	}
	return KindOther
}

// KindOf returns the classification of err. Unclassified errors are
// classified from their message.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Classify(0, "", "", err)
}

func isNetworkError(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	var opErr *net.OpError
	return errors.As(err, &opErr)
}
