package api

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/pkg/errors"
)

// Kind classifies a backend failure for the orchestration layer.
type Kind string

const (
	KindValidation   Kind = "validation"
	KindUnauthorized Kind = "unauthorized"
	KindConflict     Kind = "conflict"
	KindNotFound     Kind = "not_found"
	KindServer       Kind = "server"
	KindNetwork      Kind = "network"
)

// Error is a classified backend failure. Message carries the backend
// envelope's human-readable text verbatim.
type Error struct {
	Kind    Kind
	Status  int
	Code    string
	Message string
}

func (e *Error) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s (%s): %s", e.Kind, e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// KindOf extracts the Kind from any error produced by this package.
// Non-API errors (transport failures, open breaker) classify as network.
func KindOf(err error) Kind {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return KindNetwork
}

// MessageOf returns the backend's human-readable message, or the plain error
// text for non-API errors.
func MessageOf(err error) string {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return err.Error()
}

// The backend returns free-text messages on several endpoints without a
// discriminated code, so status-based classification falls back to matching
// known message fragments.
var messageFragments = []struct {
	fragment string
	kind     Kind
}{
	{"이미", KindConflict},           // "already ..." (already applied / already linked)
	{"찾을 수 없", KindNotFound},       // "cannot find ..."
	{"존재하지 않", KindNotFound},       // "does not exist"
	{"만료", KindUnauthorized},       // "expired"
	{"로그인", KindUnauthorized},      // "login required"
	{"일치하지 않습니다", KindValidation}, // "does not match" (wrong password)
	{"already", KindConflict},
	{"not found", KindNotFound},
	{"expired", KindUnauthorized},
}

// classify maps an HTTP status and envelope to a Kind. The status wins when
// it is specific; otherwise the message fragments decide.
func classify(status int, code, message string) *Error {
	kind := KindServer

	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		kind = KindUnauthorized
	case status == http.StatusNotFound:
		kind = KindNotFound
	case status == http.StatusConflict:
		kind = KindConflict
	case status == http.StatusBadRequest:
		kind = KindValidation
		if k, ok := fragmentKind(message); ok {
			kind = k
		}
	case status >= 500:
		kind = KindServer
	default:
		if k, ok := fragmentKind(message); ok {
			kind = k
		}
	}

	return &Error{Kind: kind, Status: status, Code: code, Message: message}
}

func fragmentKind(message string) (Kind, bool) {
	for _, mf := range messageFragments {
		if strings.Contains(message, mf.fragment) {
			return mf.kind, true
		}
	}
	return "", false
}
