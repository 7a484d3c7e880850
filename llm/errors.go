package llm

import (
	"fmt"
)

// ErrorType classifies what went wrong during a completion call.
type ErrorType int

const (
	ErrorTypeUnknown ErrorType = iota
	// ErrorTypeRequest: the request could not be built at all.
	ErrorTypeRequest
	// ErrorTypeTransport: the network call could not complete (resolution,
	// connection, timeout).
	ErrorTypeTransport
	// ErrorTypeProvider: the endpoint answered with a non-200 status.
	ErrorTypeProvider
	// ErrorTypeMalformed: the body was not JSON or lacked the response field.
	ErrorTypeMalformed
)

// ClientError is the error type returned by the completion client.
// StatusCode is populated only for ErrorTypeProvider.
type ClientError struct {
	Type       ErrorType
	Message    string
	StatusCode int
	Err        error
}

func (e *ClientError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s (%s): %v", e.TypeString(), e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.TypeString(), e.Message)
}

func (e *ClientError) Unwrap() error {
	return e.Err
}

func (e *ClientError) TypeString() string {
	switch e.Type {
	case ErrorTypeRequest:
		return "RequestError"
	case ErrorTypeTransport:
		return "TransportError"
	case ErrorTypeProvider:
		return "ProviderError"
	case ErrorTypeMalformed:
		return "MalformedResponseError"
	default:
		return "UnknownError"
	}
}

// NewClientError creates a new ClientError.
func NewClientError(errType ErrorType, message string, err error) *ClientError {
	return &ClientError{
		Type:    errType,
		Message: message,
		Err:     err,
	}
}

// NewStatusError builds the ClientError for a non-200 reply.
func NewStatusError(statusCode int) *ClientError {
	return &ClientError{
		Type:       ErrorTypeProvider,
		Message:    fmt.Sprintf("unexpected status code %d", statusCode),
		StatusCode: statusCode,
	}
}
