package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode failed", slog.String("error", err.Error()))
	}
}

// okResponse is the success envelope. Data is always present, possibly null.
type okResponse struct {
	Success bool   `json:"success"`
	Data    any    `json:"data"`
	Message string `json:"message,omitempty"`
}

// errResponse is the failure envelope.
type errResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

func okBody(data any) okResponse {
	return okResponse{Success: true, Data: data}
}

func messageBody(msg string) okResponse {
	return okResponse{Success: true, Message: msg}
}

func errorBody(msg string) errResponse {
	return errResponse{Success: false, Error: msg}
}
