package ratelimit

import (
	"net/http"

	jsoniter "github.com/json-iterator/go"
)

// TooManyRequestsMessage é a mensagem padrão do corpo 429.
const TooManyRequestsMessage = "Too many requests. Please try again later."

// BusyMessage acompanha a recusa por falta de vaga no grupo de upload.
const BusyMessage = "Too many uploads in progress. Please try again shortly."

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// RejectBody é o corpo JSON do 429.
type RejectBody struct {
	Success    bool   `json:"success"`
	Message    string `json:"message"`
	RetryAfter int    `json:"retryAfter"`
}

func writeTooManyRequests(w http.ResponseWriter, retryAfterSeconds int) {
	writeReject(w, http.StatusTooManyRequests, TooManyRequestsMessage, retryAfterSeconds)
}

func writeReject(w http.ResponseWriter, status int, message string, retryAfterSeconds int) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Retry-After", formatInt(retryAfterSeconds))
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(RejectBody{
		Success:    false,
		Message:    message,
		RetryAfter: retryAfterSeconds,
	})
}
