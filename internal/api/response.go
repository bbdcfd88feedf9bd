// Package api implements the Conflagent HTTP surface: the endpoint
// router, bearer authentication, the response envelope, and the
// handlers that translate requests into core page operations.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/conflagent-dev/conflagent/pkg/confluence"
)

// Stable error code strings surfaced to API clients.
const (
	CodeOK               = "OK"
	CodeInvalidInput     = "INVALID_INPUT"
	CodeUnauthorized     = "UNAUTHORIZED"
	CodeNotFound         = "NOT_FOUND"
	CodeVersionConflict  = "VERSION_CONFLICT"
	CodeInvalidOperation = "INVALID_OPERATION"
	CodeInternalError    = "INTERNAL_ERROR"
)

// Envelope is the uniform response wrapper for every API response.
type Envelope struct {
	Success   bool        `json:"success"`
	Code      string      `json:"code"`
	Message   string      `json:"message"`
	Data      interface{} `json:"data"`
	Timestamp string      `json:"timestamp"`
}

func newEnvelope(success bool, code, message string, data interface{}) Envelope {
	return Envelope{
		Success:   success,
		Code:      code,
		Message:   message,
		Data:      data,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}

func writeEnvelope(w http.ResponseWriter, statusCode int, env Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	// Headers are already written, so encode errors cannot be reported
	// to the client.
	_ = json.NewEncoder(w).Encode(env)
}

// respondSuccess writes a 200 envelope with the given message and data.
func respondSuccess(w http.ResponseWriter, message string, data interface{}) {
	writeEnvelope(w, http.StatusOK, newEnvelope(true, CodeOK, message, data))
}

// respondError writes a failure envelope for a known status and code.
func respondError(w http.ResponseWriter, statusCode int, code, message string) {
	writeEnvelope(w, statusCode, newEnvelope(false, code, message, nil))
}

// codeForStatus maps a remote HTTP status to a stable error code.
func codeForStatus(statusCode int) string {
	switch statusCode {
	case http.StatusBadRequest:
		return CodeInvalidInput
	case http.StatusForbidden, http.StatusUnauthorized:
		return CodeUnauthorized
	case http.StatusNotFound:
		return CodeNotFound
	case http.StatusConflict:
		return CodeVersionConflict
	case http.StatusUnprocessableEntity:
		return CodeInvalidOperation
	default:
		return CodeInternalError
	}
}

// respondOperationError translates a core operation failure into the
// envelope taxonomy. Remote failures pass their status code through;
// anything unrecognized becomes a generic internal error with no detail
// leakage.
func respondOperationError(w http.ResponseWriter, logger hclog.Logger, err error, logArgs ...interface{}) {
	var notFound *confluence.NotFoundError
	if errors.As(err, &notFound) {
		respondError(w, http.StatusNotFound, CodeNotFound, notFound.Error())
		return
	}

	var invalidOp *confluence.InvalidOperationError
	if errors.As(err, &invalidOp) {
		respondError(w, http.StatusUnprocessableEntity, CodeInvalidOperation, invalidOp.Error())
		return
	}

	var remote *confluence.RemoteError
	if errors.As(err, &remote) {
		logger.Warn("remote API error",
			append([]interface{}{
				"status", remote.StatusCode,
			}, logArgs...)...)
		respondError(w, remote.StatusCode, codeForStatus(remote.StatusCode), remote.Body)
		return
	}

	logger.Error("unexpected error handling request",
		append([]interface{}{
			"error", err,
		}, logArgs...)...)
	respondError(w, http.StatusInternalServerError, CodeInternalError,
		"An unexpected error occurred.")
}

// writeRawJSON writes a bare JSON document without the envelope. Used
// for the OpenAPI schema, which external tooling consumes directly.
func writeRawJSON(w http.ResponseWriter, statusCode int, doc interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(doc)
}

// decodeRequest decodes a JSON request body into req.
func decodeRequest(r *http.Request, req interface{}) error {
	return json.NewDecoder(r.Body).Decode(req)
}
