package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWrapMapsCodeToStatus(t *testing.T) {
	cases := map[ErrorCode]int{
		CodeInvalidParam:       http.StatusBadRequest,
		CodeTopicNotFound:      http.StatusBadRequest,
		CodeNoTopics:           http.StatusServiceUnavailable,
		CodeGenerationFailed:   http.StatusBadGateway,
		CodeTooManyRequests:    http.StatusTooManyRequests,
		CodeDatabaseError:      http.StatusInternalServerError,
		CodeServiceUnavailable: http.StatusServiceUnavailable,
	}
	for code, status := range cases {
		require.Equal(t, status, Wrap(fmt.Errorf("boom"), code, "x").HTTPStatus, "code %s", code)
	}
}

func TestAsAppErrorFindsWrappedError(t *testing.T) {
	inner := Wrap(fmt.Errorf("timeout"), CodeGenerationFailed, "post generation failed")
	outer := fmt.Errorf("handler: %w", inner)

	require.True(t, IsAppError(outer))
	require.True(t, HasCode(outer, CodeGenerationFailed))
	require.Same(t, inner, AsAppError(outer))
}

func TestAsAppErrorWrapsPlainError(t *testing.T) {
	appErr := AsAppError(fmt.Errorf("plain"))
	require.Equal(t, CodeUnknown, appErr.Code)
	require.Equal(t, http.StatusInternalServerError, appErr.HTTPStatus)
}

func TestWithDetailDoesNotMutateSentinel(t *testing.T) {
	detailed := ErrInvalidParam.WithDetail("length must be Short, Medium or Long")
	require.Empty(t, ErrInvalidParam.Detail)
	require.Equal(t, "length must be Short, Medium or Long", detailed.Detail)
}
