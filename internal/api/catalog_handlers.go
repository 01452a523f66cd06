package api

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/terra-clan/box-office/internal/catalog"
	"github.com/terra-clan/box-office/internal/render"
)

// CategoryInfo describes one category for API clients
type CategoryInfo struct {
	Slug    catalog.Category `json:"slug"`
	Label   string           `json:"label"`
	Default bool             `json:"default"`
}

// computeView builds the view for category over the request's state.
// An empty category selects the default one.
func (s *Server) computeView(r *http.Request, raw string) (*catalog.View, error) {
	category := s.defaultCategory
	if raw != "" {
		c, err := catalog.ParseCategory(raw)
		if err != nil {
			return nil, err
		}
		category = c
	}

	view, err := s.engine.View(s.stateFor(r), category)
	if err != nil {
		return nil, err
	}

	if n := view.UnparseableCount(); n > 0 {
		slog.Warn("movies with unparseable amounts",
			"category", view.Category,
			"count", n,
		)
	}
	return view, nil
}

// Page handlers

func (s *Server) handleIndexPage(w http.ResponseWriter, r *http.Request) {
	s.renderPage(w, r, r.URL.Query().Get("category"))
}

func (s *Server) handleCategoryPage(w http.ResponseWriter, r *http.Request) {
	s.renderPage(w, r, chi.URLParam(r, "category"))
}

func (s *Server) renderPage(w http.ResponseWriter, r *http.Request, category string) {
	view, err := s.computeView(r, category)
	if err != nil {
		if errors.Is(err, catalog.ErrUnknownCategory) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		slog.Error("failed to compute view", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := s.renderer.Render(&buf, render.Build(view, catalog.Categories())); err != nil {
		slog.Error("failed to render page", "category", view.Category, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", s.renderer.ContentType())
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// JSON handlers

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	categories := catalog.Categories()
	infos := make([]CategoryInfo, 0, len(categories))
	for _, c := range categories {
		infos = append(infos, CategoryInfo{
			Slug:    c,
			Label:   c.Label(),
			Default: c == s.defaultCategory,
		})
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"categories": infos,
		"total":      len(infos),
	})
}

func (s *Server) handleListMovies(w http.ResponseWriter, r *http.Request) {
	view, err := s.computeView(r, r.URL.Query().Get("category"))
	if err != nil {
		respondViewError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, view)
}

func (s *Server) handleCategoryMovies(w http.ResponseWriter, r *http.Request) {
	view, err := s.computeView(r, chi.URLParam(r, "category"))
	if err != nil {
		respondViewError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, view)
}
