package errors

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, rec *httptest.ResponseRecorder) errorPayload {
	t.Helper()
	var body errorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Error
}

func TestWriteError_AppError(t *testing.T) {
	SetDebug(false)
	rec := httptest.NewRecorder()
	WriteError(rec, ErrNotFound.WithDetail("connection 9"))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))
	p := decode(t, rec)
	assert.Equal(t, "NOT_FOUND", p.Code)
	assert.Empty(t, p.Detail, "detail hidden outside debug")
	assert.Empty(t, p.Stack)
}

func TestWriteError_UnknownIsInternal(t *testing.T) {
	SetDebug(true)
	t.Cleanup(func() { SetDebug(false) })

	cause := fmt.Errorf("store: %w", fmt.Errorf("disk io"))
	rec := httptest.NewRecorder()
	WriteError(rec, cause)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	p := decode(t, rec)
	assert.Equal(t, "INTERNAL_SERVER_ERROR", p.Code)
	assert.Equal(t, []string{"store: disk io", "disk io"}, p.Stack)
}

func TestWithDetailDoesNotMutateBase(t *testing.T) {
	e := ErrBadRequest.WithDetail("x")
	assert.Equal(t, "x", e.Detail)
	assert.Empty(t, ErrBadRequest.Detail)
}

func TestFromError_Wrapped(t *testing.T) {
	wrapped := fmt.Errorf("ctx: %w", ErrConflict)
	assert.Same(t, ErrConflict, FromError(wrapped))
}
