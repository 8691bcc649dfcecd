package main

import (
	"encoding/json"
	"net/http"
)

// internalErrorBody is written when a response payload cannot be encoded.
var internalErrorBody = []byte(`{"error":"Internal Server Error"}`)

// respondWithError sends an ErrorResponse with the given status. A non-nil
// err is logged under msg; the client only sees msg.
func (cfg *apiConfig) respondWithError(w http.ResponseWriter, code int, msg string, err error) {
	if err != nil {
		cfg.logger.Error(msg, "error", err)
	}
	cfg.respondWithJSON(w, code, ErrorResponse{Error: msg})
}

// respondWithJSON encodes payload and writes it with the given status. If the
// payload cannot be encoded the client gets a 500 with a JSON error body.
func (cfg *apiConfig) respondWithJSON(w http.ResponseWriter, code int, payload any) {
	w.Header().Set("Content-Type", "application/json")

	body, err := json.Marshal(payload)
	if err != nil {
		cfg.logger.Error("could not encode response", "status", code, "error", err)
		code, body = http.StatusInternalServerError, internalErrorBody
	}

	w.WriteHeader(code)
	if _, err := w.Write(body); err != nil {
		cfg.logger.Warn("could not write response", "error", err)
	}
}
