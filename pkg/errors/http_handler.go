package errors

import (
	"encoding/json"
	"math"
	"net/http"
	"strconv"
)

// WriteError renders err as the JSON error envelope with the matching status code.
// Errors that are not AppErrors are reported as INTERNAL_ERROR without leaking their text.
func WriteError(w http.ResponseWriter, err error) error {
	appErr := AsAppError(err)
	w.Header().Set("Content-Type", "application/json")
	if appErr.RetryAfter > 0 {
		w.Header().Set("Retry-After", strconv.Itoa(retryAfterSeconds(appErr)))
	}
	w.WriteHeader(appErr.StatusCode())
	return json.NewEncoder(w).Encode(appErr.Response())
}

// Retry-After carries whole seconds; anything shorter rounds up to one.
func retryAfterSeconds(e *AppError) int {
	return int(math.Ceil(e.RetryAfter.Seconds()))
}
