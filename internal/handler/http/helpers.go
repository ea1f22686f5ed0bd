package http

import (
	"net/http"
	"strconv"

	"github.com/cmlabs-hris/hrm-core/internal/domain/auth"
	"github.com/cmlabs-hris/hrm-core/internal/handler/http/response"
)

const (
	defaultPage  = 1
	defaultLimit = 20
)

// actorFrom returns the identity placed on the context by the
// authorization gate, writing a 401 when it is missing.
func actorFrom(w http.ResponseWriter, r *http.Request) (auth.Identity, bool) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		response.HandleError(w, auth.ErrUnauthenticated)
		return auth.Identity{}, false
	}
	return identity, true
}

// pagination reads page and limit, falling back to defaults for anything
// that is missing or not a positive integer.
func pagination(r *http.Request) (page, limit int) {
	page, limit = defaultPage, defaultLimit
	if p := r.URL.Query().Get("page"); p != "" {
		if n, err := strconv.Atoi(p); err == nil && n > 0 {
			page = n
		}
	}
	if l := r.URL.Query().Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 {
			limit = n
		}
	}
	return page, limit
}

func queryString(r *http.Request, key string) *string {
	if v := r.URL.Query().Get(key); v != "" {
		return &v
	}
	return nil
}

// queryInt returns nil when the parameter is absent and ok=false when it is
// present but not an integer.
func queryInt(r *http.Request, key string) (*int, bool) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return nil, true
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return nil, false
	}
	return &n, true
}
