package ragErrors

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind string

const (
	KindConfiguration    Kind = "CONFIGURATION_ERROR"
	KindStoreUnavailable Kind = "STORE_UNAVAILABLE"
	KindInvalidInput     Kind = "INVALID_INPUT"
	KindModelInvocation  Kind = "MODEL_INVOCATION_ERROR"
	KindInternal         Kind = "INTERNAL_ERROR"
)

// DomainError is the error every layer hands upward. Hint carries remediation text for the client.
type DomainError struct {
	Code    Kind
	Message string
	Hint    string
	Err     error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is matches any DomainError with the same code, so errors.Is(err, ErrStoreUnavailable) works.
func (e *DomainError) Is(target error) bool {
	var t *DomainError
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

var (
	ErrConfiguration    = &DomainError{Code: KindConfiguration, Message: "configuration error"}
	ErrStoreUnavailable = &DomainError{Code: KindStoreUnavailable, Message: "vector store unavailable"}
	ErrInvalidInput     = &DomainError{Code: KindInvalidInput, Message: "invalid input"}
	ErrModelInvocation  = &DomainError{Code: KindModelInvocation, Message: "model invocation failed"}
)

func Configuration(message, hint string, err error) *DomainError {
	return &DomainError{Code: KindConfiguration, Message: message, Hint: hint, Err: err}
}

// ModelUnavailable is the configuration error reported when a chat or embedding client could not be built.
func ModelUnavailable(provider, hint string, err error) *DomainError {
	return Configuration(fmt.Sprintf("model unavailable: %s client is not configured", provider), hint, err)
}

func StoreUnavailable(message string, err error) *DomainError {
	return &DomainError{Code: KindStoreUnavailable, Message: message, Hint: "check that the vector store is reachable and the API key is valid", Err: err}
}

func InvalidInput(message string, err error) *DomainError {
	return &DomainError{Code: KindInvalidInput, Message: message, Err: err}
}

func ModelInvocation(message string, err error) *DomainError {
	return &DomainError{Code: KindModelInvocation, Message: message, Err: err}
}

func KindOf(err error) Kind {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return KindInternal
}

func As(err error) (*DomainError, bool) {
	var de *DomainError
	ok := errors.As(err, &de)
	return de, ok
}

func IsConfiguration(err error) bool    { return KindOf(err) == KindConfiguration }
func IsStoreUnavailable(err error) bool { return KindOf(err) == KindStoreUnavailable }
func IsInvalidInput(err error) bool     { return KindOf(err) == KindInvalidInput }

// IsPermanent reports errors that retrying cannot fix.
func IsPermanent(err error) bool {
	switch KindOf(err) {
	case KindConfiguration, KindInvalidInput:
		return true
	}
	return false
}

var httpStatus = map[Kind]int{
	KindInvalidInput:     http.StatusBadRequest,
	KindConfiguration:    http.StatusServiceUnavailable,
	KindStoreUnavailable: http.StatusServiceUnavailable,
	KindModelInvocation:  http.StatusBadGateway,
}

// HTTPStatus maps an error to the status the API reports for it.
func HTTPStatus(err error) int {
	if code, ok := httpStatus[KindOf(err)]; ok {
		return code
	}
	return http.StatusInternalServerError
}
