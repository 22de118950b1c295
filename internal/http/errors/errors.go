// Package errors define AppError y su serialización {"error":{...}}.
package errors

import (
	"encoding/json"
	stderrors "errors"
	"net/http"
	"sync/atomic"

	"github.com/dropDatabas3/authhub/internal/observability/logger"
)

var debug atomic.Bool

// SetDebug habilita detail y stack en las respuestas (fuera de prod).
func SetDebug(on bool) { debug.Store(on) }

type errorBody struct {
	Error errorPayload `json:"error"`
}

type errorPayload struct {
	Message string   `json:"message"`
	Code    string   `json:"code"`
	Detail  string   `json:"detail,omitempty"`
	Stack   []string `json:"stack,omitempty"`
}

// WriteError escribe el error como JSON. Las causas de 5xx se loguean siempre.
func WriteError(w http.ResponseWriter, err error) {
	appErr := FromError(err)

	if appErr.HTTPStatus >= http.StatusInternalServerError {
		logger.L().Error("request failed",
			logger.String("code", appErr.Code),
			logger.Status(appErr.HTTPStatus),
			logger.Err(appErr.Err),
		)
	}

	resp := errorBody{Error: errorPayload{
		Message: appErr.Message,
		Code:    appErr.Code,
	}}
	if debug.Load() {
		resp.Error.Detail = appErr.Detail
		resp.Error.Stack = causeChain(appErr.Err)
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(appErr.HTTPStatus)
	_ = json.NewEncoder(w).Encode(resp)
}

func causeChain(err error) []string {
	var out []string
	for err != nil {
		out = append(out, err.Error())
		err = stderrors.Unwrap(err)
	}
	return out
}
