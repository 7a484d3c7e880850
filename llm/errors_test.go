package llm

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClientError(t *testing.T) {
	testCases := []struct {
		name          string
		errType       ErrorType
		message       string
		underlyingErr error
		expectedStr   string
	}{
		{
			name:          "transport error with underlying error",
			errType:       ErrorTypeTransport,
			message:       "failed to send request",
			underlyingErr: errors.New("connection refused"),
			expectedStr:   "TransportError (failed to send request): connection refused",
		},
		{
			name:        "malformed error without underlying error",
			errType:     ErrorTypeMalformed,
			message:     "failed to parse response",
			expectedStr: "MalformedResponseError: failed to parse response",
		},
		{
			name:        "request error",
			errType:     ErrorTypeRequest,
			message:     "failed to prepare request",
			expectedStr: "RequestError: failed to prepare request",
		},
		{
			name:        "unknown error",
			errType:     ErrorTypeUnknown,
			message:     "something odd",
			expectedStr: "UnknownError: something odd",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			clientErr := NewClientError(tc.errType, tc.message, tc.underlyingErr)

			assert.Equal(t, tc.errType, clientErr.Type)
			assert.Equal(t, tc.message, clientErr.Message)
			assert.Equal(t, tc.underlyingErr, clientErr.Err)
			assert.Equal(t, tc.expectedStr, clientErr.Error())

			if tc.underlyingErr != nil {
				assert.Equal(t, tc.underlyingErr, errors.Unwrap(clientErr))
			}
		})
	}
}

func TestNewStatusError(t *testing.T) {
	statusErr := NewStatusError(http.StatusInternalServerError)

	assert.Equal(t, ErrorTypeProvider, statusErr.Type)
	assert.Equal(t, http.StatusInternalServerError, statusErr.StatusCode)
	assert.Equal(t, "ProviderError: unexpected status code 500", statusErr.Error())
}
