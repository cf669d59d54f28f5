package utils

import (
	"net/http"
	"strings"

	"github.com/julienschmidt/httprouter"
)

// ExtractIDFromParams retrieves a route parameter from the request context,
// trimming whitespace and a trailing ".json" extension.
func ExtractIDFromParams(r *http.Request, paramName string) string {
	params := httprouter.ParamsFromContext(r.Context())
	raw := strings.TrimSpace(params.ByName(paramName))
	return strings.TrimSuffix(raw, ".json")
}
