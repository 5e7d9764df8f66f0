package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/frahmantamala/reputation-management/internal"
)

func writeAppError(w http.ResponseWriter, appErr *internal.AppError) {
	status, body := appErr.ToHTTPResponse()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
