package api

import (
	"net/http"

	"github.com/terra-clan/box-office/internal/catalog"
)

// stateHeader carries the id of the state a response was computed from
const stateHeader = "X-Catalog-State"

// snapshotMiddleware pins the current catalog state to the request context
func (s *Server) snapshotMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		state := s.store.Current()
		if state != nil {
			w.Header().Set(stateHeader, state.ID)
		}
		next.ServeHTTP(w, r.WithContext(ContextWithState(r.Context(), state)))
	})
}

// stateFor returns the state pinned to r, falling back to the current one
func (s *Server) stateFor(r *http.Request) *catalog.State {
	if state := StateFromContext(r.Context()); state != nil {
		return state
	}
	return s.store.Current()
}
