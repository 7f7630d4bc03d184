package response

import (
	"encoding/json"
	"net/http"
	"strconv"
)

type errorResponse struct {
	Error string `json:"error"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type cooldownResponse struct {
	Error      string `json:"error"`
	RetryAfter int    `json:"retry_after"`
}

func RenderUnauthorized(rw http.ResponseWriter) {
	RenderError(rw, "invalid authentication token", http.StatusUnauthorized)
}

func RenderInternalError(rw http.ResponseWriter) {
	RenderError(rw, "internal error", http.StatusInternalServerError)
}

func RenderInvalidLink(rw http.ResponseWriter) {
	RenderError(rw, "invalid or expired link", http.StatusUnprocessableEntity)
}

func RenderInvalidRequestData(rw http.ResponseWriter) {
	RenderError(rw, "invalid request data", http.StatusBadRequest)
}

// RenderCooldown reports the remaining whole seconds in the body. The
// Retry-After header is rounded up so that it is never 0.
func RenderCooldown(rw http.ResponseWriter, remainingSeconds int, retryAfterHeader int) {
	rw.Header().Set("Retry-After", strconv.Itoa(retryAfterHeader))
	Render(
		rw,
		cooldownResponse{Error: "please wait before requesting another email", RetryAfter: remainingSeconds},
		http.StatusTooManyRequests,
	)
}

func RenderMessage(rw http.ResponseWriter, msg string, status int) {
	Render(rw, messageResponse{Message: msg}, status)
}

func RenderError(rw http.ResponseWriter, msg string, status int) {
	Render(rw, errorResponse{Error: msg}, status)
}

func Render(rw http.ResponseWriter, res interface{}, status int) {
	rw.Header().Set("Content-Type", "application/json")

	content, err := json.Marshal(res)
	if err != nil {
		rw.WriteHeader(http.StatusInternalServerError)
		return
	}

	rw.WriteHeader(status)
	rw.Write(content)
}
