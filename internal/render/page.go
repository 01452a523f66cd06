// Package render turns a catalog view into a page model and draws it.
// Build is pure; Renderer implementations only lay the model out.
package render

import (
	"github.com/terra-clan/box-office/internal/catalog"
	"github.com/terra-clan/box-office/internal/currency"
	"github.com/terra-clan/box-office/internal/models"
)

// Fixed texts shown on the page
const (
	PageTitle    = "Catálogo de Filmes"
	EmptyMessage = "Nenhum filme encontrado para esta categoria."
	LinkText     = "Ver no IMDb"
	ProfitPrefix = "Lucro: "
	LossPrefix   = "Prejuízo: "
	posterAlt    = "Poster do filme "
)

// MetricKind tells which figure a card highlights
type MetricKind string

const (
	MetricProfit MetricKind = "profit"
	MetricLoss   MetricKind = "loss"
)

// Button is one category selector
type Button struct {
	Category catalog.Category `json:"category"`
	Label    string           `json:"label"`
	Href     string           `json:"href"`
	Active   bool             `json:"active"`
}

// Metric is the highlighted profit or loss line of a card
type Metric struct {
	Kind MetricKind `json:"kind"`
	Text string     `json:"text"`
}

// Card is one movie as displayed
type Card struct {
	Title         string   `json:"title"`
	Description   string   `json:"description"`
	PosterImage   string   `json:"posterImage"`
	PosterAlt     string   `json:"posterAlt"`
	Cost          string   `json:"cost"`
	BoxOffice     string   `json:"boxOffice"`
	ReferenceLink string   `json:"referenceLink"`
	LinkText      string   `json:"linkText"`
	Metric        *Metric  `json:"metric,omitempty"`
	Unparseable   []string `json:"unparseable,omitempty"`
}

// Page is everything a renderer needs to draw one category
type Page struct {
	Title        string           `json:"title"`
	Category     catalog.Category `json:"category"`
	Label        string           `json:"label"`
	Buttons      []Button         `json:"buttons"`
	Cards        []Card           `json:"cards"`
	EmptyMessage string           `json:"emptyMessage,omitempty"`
}

// Empty reports whether the page shows the no-results message
func (p Page) Empty() bool {
	return len(p.Cards) == 0
}

// Build lays out view with one button per category, marking the view's one active
func Build(view *catalog.View, categories []catalog.Category) Page {
	page := Page{
		Title:    PageTitle,
		Category: view.Category,
		Label:    view.Label,
		Buttons:  make([]Button, 0, len(categories)),
		Cards:    make([]Card, 0, len(view.Movies)),
	}

	for _, c := range categories {
		page.Buttons = append(page.Buttons, Button{
			Category: c,
			Label:    c.Label(),
			Href:     CategoryPath(c),
			Active:   c == view.Category,
		})
	}

	for _, m := range view.Movies {
		page.Cards = append(page.Cards, buildCard(m))
	}

	if page.Empty() {
		page.EmptyMessage = EmptyMessage
	}
	return page
}

// CategoryPath is the page URL for a category
func CategoryPath(c catalog.Category) string {
	return "/categories/" + c.String()
}

func buildCard(m models.EnrichedMovie) Card {
	card := Card{
		Title:         title(m.MovieRecord),
		Description:   m.Description,
		PosterImage:   m.PosterImage,
		PosterAlt:     posterAlt + m.Name,
		Cost:          m.Cost,
		BoxOffice:     m.BoxOffice,
		ReferenceLink: m.ReferenceLink,
		LinkText:      LinkText,
		Unparseable:   m.Unparseable,
	}

	// Profit wins when both are set; a non-negative loss shows nothing.
	switch {
	case m.Profit != nil && m.Profit.IsPositive():
		card.Metric = &Metric{Kind: MetricProfit, Text: ProfitPrefix + currency.Format(*m.Profit)}
	case m.Loss != nil && m.Loss.IsNegative():
		card.Metric = &Metric{Kind: MetricLoss, Text: LossPrefix + currency.Format(*m.Loss)}
	}
	return card
}

func title(r models.MovieRecord) string {
	if r.ReleaseYear == "" {
		return r.Name
	}
	return r.Name + " (" + r.ReleaseYear.String() + ")"
}
