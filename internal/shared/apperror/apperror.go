package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error for the caller. Every kind except KindInternal is
// operational: its message is safe to show to the client.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindAuthentication
	KindAuthorization
	KindNotFound
	KindInvalidArgument
	KindDependency
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindAuthentication:
		return "authentication"
	case KindAuthorization:
		return "authorization"
	case KindNotFound:
		return "not_found"
	case KindInvalidArgument:
		return "invalid_argument"
	case KindDependency:
		return "dependency"
	default:
		return "internal"
	}
}

// Status returns the HTTP status used for the kind.
func (k Kind) Status() int {
	switch k {
	case KindValidation, KindInvalidArgument:
		return http.StatusBadRequest
	case KindAuthentication:
		return http.StatusUnauthorized
	case KindAuthorization:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Error codes
const (
	CodeValidation      = "VALIDATION_ERROR"
	CodeAuthentication  = "AUTHENTICATION_ERROR"
	CodeAuthorization   = "AUTHORIZATION_ERROR"
	CodeNotFound        = "NOT_FOUND"
	CodeInvalidArgument = "INVALID_ARGUMENT"
	CodeDependency      = "DEPENDENCY_ERROR"
	CodeInternal        = "INTERNAL_ERROR"
)

func defaultCode(k Kind) string {
	switch k {
	case KindValidation:
		return CodeValidation
	case KindAuthentication:
		return CodeAuthentication
	case KindAuthorization:
		return CodeAuthorization
	case KindNotFound:
		return CodeNotFound
	case KindInvalidArgument:
		return CodeInvalidArgument
	case KindDependency:
		return CodeDependency
	default:
		return CodeInternal
	}
}

// AppError carries a kind, a client facing message and the wrapped cause.
type AppError struct {
	Kind    Kind
	Code    string
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func (e *AppError) Status() int {
	return e.Kind.Status()
}

// Operational reports whether the message may be shown to the client as is.
func (e *AppError) Operational() bool {
	return e.Kind != KindInternal
}

// WithCode returns a copy of e carrying a domain specific code.
func (e *AppError) WithCode(code string) *AppError {
	cp := *e
	cp.Code = code
	return &cp
}

// New builds an AppError of the given kind.
func New(kind Kind, message string) *AppError {
	return &AppError{Kind: kind, Code: defaultCode(kind), Message: message}
}

// Wrap builds an AppError of the given kind around a cause.
func Wrap(kind Kind, message string, err error) *AppError {
	return &AppError{Kind: kind, Code: defaultCode(kind), Message: message, Err: err}
}

func Validation(message string) *AppError      { return New(KindValidation, message) }
func Authentication(message string) *AppError  { return New(KindAuthentication, message) }
func Authorization(message string) *AppError   { return New(KindAuthorization, message) }
func NotFound(message string) *AppError        { return New(KindNotFound, message) }
func InvalidArgument(message string) *AppError { return New(KindInvalidArgument, message) }

func Dependency(message string, err error) *AppError {
	return Wrap(KindDependency, message, err)
}

func Internal(err error) *AppError {
	return Wrap(KindInternal, "internal error", err)
}

// As extracts the first AppError in err's chain.
func As(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// IsKind reports whether err (after translation) is an AppError of kind k.
func IsKind(err error, k Kind) bool {
	appErr, ok := As(Translate(err))
	return ok && appErr.Kind == k
}
