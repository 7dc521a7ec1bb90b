package errors

import (
	"encoding/json"
	"net/http"
	"time"
)

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type RateLimitError struct {
	Code           string     `json:"code"`
	Message        string     `json:"message"`
	RetryAfterDays int        `json:"retry_after_days"`
	NextAllowedAt  *time.Time `json:"next_allowed_at"`
}

func Write(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
