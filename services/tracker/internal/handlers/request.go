package handlers

import (
	"net/http"

	"github.com/example/vocab-tracker/internal/platform/api"
)

// decodeJSON decodes a bounded body into dst. Unknown fields are rejected.
// On failure it writes a 400 response and returns false.
func decodeJSON[T any](w http.ResponseWriter, r *http.Request, rid string, dst *T) bool {
	if err := api.DecodeJSON(r, dst); err != nil {
		api.BadRequest(w, "INVALID_JSON", "Invalid JSON", rid, map[string]any{"reason": err.Error()})
		return false
	}
	return true
}
