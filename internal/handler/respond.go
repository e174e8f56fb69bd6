package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
)

// Error codes returned in the "code" field of error responses.
const (
	codeBadRequest     = "bad_request"
	codeNotInRoom      = "not_in_room"
	codeNotFound       = "not_found"
	codeNotYourDuty    = "not_your_duty"
	codeInvalidDuty    = "invalid_duty"
	codeNotInitialized = "not_initialized"
	codeForbidden      = "forbidden"
	codeInternal       = "internal"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, errorResponse{Error: msg, Code: code})
}

func parseID(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(r.PathValue(name), 10, 64)
}
