// Package catalog holds the movie catalog state and derives the category
// views (acclaimed, profitable, biggest losses, top grossing) from it.
package catalog

import (
	"fmt"
	"slices"

	"github.com/shopspring/decimal"

	"github.com/terra-clan/box-office/internal/currency"
	"github.com/terra-clan/box-office/internal/models"
)

// Default tag markers used by the dataset
const (
	DefaultAcclaimedTag     = "aclamado"
	DefaultNotoriousLossTag = "prejuizo_notorio"
)

// Field names reported in EnrichedMovie.Unparseable
const (
	FieldCost      = "cost"
	FieldBoxOffice = "boxOffice"
)

// EngineOptions configures the tag markers
type EngineOptions struct {
	AcclaimedTag     string
	NotoriousLossTag string
}

// Engine computes category views. It holds no per-call state.
type Engine struct {
	acclaimedTag     string
	notoriousLossTag string
}

// NewEngine creates an engine, falling back to the default tags
func NewEngine(opts EngineOptions) *Engine {
	e := &Engine{
		acclaimedTag:     opts.AcclaimedTag,
		notoriousLossTag: opts.NotoriousLossTag,
	}
	if e.acclaimedTag == "" {
		e.acclaimedTag = DefaultAcclaimedTag
	}
	if e.notoriousLossTag == "" {
		e.notoriousLossTag = DefaultNotoriousLossTag
	}
	return e
}

// View is the ordered result for one category
type View struct {
	Category Category               `json:"category"`
	Label    string                 `json:"label"`
	Movies   []models.EnrichedMovie `json:"movies"`
	Total    int                    `json:"total"`
}

// Empty reports whether the view has nothing to show
func (v *View) Empty() bool {
	return len(v.Movies) == 0
}

// UnparseableCount returns how many movies had an amount that failed to parse
func (v *View) UnparseableCount() int {
	n := 0
	for _, m := range v.Movies {
		if len(m.Unparseable) > 0 {
			n++
		}
	}
	return n
}

// Compute builds the view for a category. The input slice is never modified.
func (e *Engine) Compute(records []models.MovieRecord, category Category) (*View, error) {
	var movies []models.EnrichedMovie

	switch category {
	case All:
		movies = enrich(records, nil)

	case Acclaimed:
		movies = enrich(records, func(r *models.MovieRecord) bool {
			return r.HasTag(e.acclaimedTag)
		})

	case Profitable:
		movies = make([]models.EnrichedMovie, 0, len(records))
		for _, r := range records {
			m, profit := withBalance(r)
			if !profit.IsPositive() {
				continue
			}
			m.Profit = &profit
			movies = append(movies, m)
		}
		slices.SortStableFunc(movies, func(a, b models.EnrichedMovie) int {
			return b.Profit.Cmp(*a.Profit)
		})

	case Unprofitable:
		// Membership follows the tag; the computed loss may still be >= 0.
		movies = make([]models.EnrichedMovie, 0)
		for _, r := range records {
			if !r.HasTag(e.notoriousLossTag) {
				continue
			}
			m, loss := withBalance(r)
			m.Loss = &loss
			movies = append(movies, m)
		}
		slices.SortStableFunc(movies, func(a, b models.EnrichedMovie) int {
			return a.Loss.Cmp(*b.Loss)
		})

	case TopGrossing:
		ranked := make([]grossed, 0, len(records))
		for _, r := range records {
			m := models.EnrichedMovie{MovieRecord: r}
			gross := currency.Parse(r.BoxOffice)
			if !gross.IsParsed() {
				m.Unparseable = []string{FieldBoxOffice}
			}
			ranked = append(ranked, grossed{movie: m, gross: gross.OrZero()})
		}
		slices.SortStableFunc(ranked, func(a, b grossed) int {
			return b.gross.Cmp(a.gross)
		})
		movies = make([]models.EnrichedMovie, len(ranked))
		for i, g := range ranked {
			movies[i] = g.movie
		}

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownCategory, string(category))
	}

	return &View{
		Category: category,
		Label:    category.Label(),
		Movies:   movies,
		Total:    len(movies),
	}, nil
}

type grossed struct {
	movie models.EnrichedMovie
	gross decimal.Decimal
}

// enrich copies the records that pass keep (all when keep is nil)
func enrich(records []models.MovieRecord, keep func(*models.MovieRecord) bool) []models.EnrichedMovie {
	movies := make([]models.EnrichedMovie, 0, len(records))
	for i := range records {
		if keep != nil && !keep(&records[i]) {
			continue
		}
		movies = append(movies, models.EnrichedMovie{MovieRecord: records[i]})
	}
	return movies
}

// withBalance returns boxOffice - cost. Unparseable amounts count as zero
// and are listed on the returned movie.
func withBalance(r models.MovieRecord) (models.EnrichedMovie, decimal.Decimal) {
	m := models.EnrichedMovie{MovieRecord: r}

	cost := currency.Parse(r.Cost)
	if !cost.IsParsed() {
		m.Unparseable = append(m.Unparseable, FieldCost)
	}
	gross := currency.Parse(r.BoxOffice)
	if !gross.IsParsed() {
		m.Unparseable = append(m.Unparseable, FieldBoxOffice)
	}

	return m, gross.OrZero().Sub(cost.OrZero())
}
