package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// MovieRecord is a single movie as delivered by the data source
type MovieRecord struct {
	Name          string      `json:"name"`
	ReleaseYear   ReleaseYear `json:"releaseYear"`
	Description   string      `json:"description"`
	Cost          string      `json:"cost"`      // e.g. "US$ 25 milhões"
	BoxOffice     string      `json:"boxOffice"` // e.g. "US$ 1,5 bilhão"
	Tags          []string    `json:"tags,omitempty"`
	PosterImage   string      `json:"posterImage"`
	ReferenceLink string      `json:"referenceLink"`
}

// HasTag reports whether the record carries the given tag
func (m *MovieRecord) HasTag(tag string) bool {
	for _, t := range m.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// recordFile accepts both the English field names and the legacy
// Portuguese ones used by the first version of the dataset.
type recordFile struct {
	Name          *string     `json:"name"`
	ReleaseYear   ReleaseYear `json:"releaseYear"`
	Description   *string     `json:"description"`
	Cost          *string     `json:"cost"`
	BoxOffice     *string     `json:"boxOffice"`
	Tags          []string    `json:"tags"`
	PosterImage   *string     `json:"posterImage"`
	ReferenceLink *string     `json:"referenceLink"`

	Nome       string      `json:"nome"`
	Lancamento ReleaseYear `json:"lançamento"`
	Descricao  string      `json:"descrição"`
	Custo      string      `json:"custo"`
	Bilheteria string      `json:"bilheteria"`
	Imagem     string      `json:"imagem"`
	Link       string      `json:"link"`
}

// UnmarshalJSON decodes a record, falling back to legacy field names
func (m *MovieRecord) UnmarshalJSON(data []byte) error {
	var rf recordFile
	if err := json.Unmarshal(data, &rf); err != nil {
		return err
	}

	*m = MovieRecord{
		Name:          pick(rf.Name, rf.Nome),
		ReleaseYear:   rf.ReleaseYear,
		Description:   pick(rf.Description, rf.Descricao),
		Cost:          pick(rf.Cost, rf.Custo),
		BoxOffice:     pick(rf.BoxOffice, rf.Bilheteria),
		Tags:          rf.Tags,
		PosterImage:   pick(rf.PosterImage, rf.Imagem),
		ReferenceLink: pick(rf.ReferenceLink, rf.Link),
	}
	if m.ReleaseYear == "" {
		m.ReleaseYear = rf.Lancamento
	}
	return nil
}

func pick(primary *string, legacy string) string {
	if primary != nil {
		return *primary
	}
	return legacy
}

// ReleaseYear is kept as text; sources write it either as a string or a number
type ReleaseYear string

// UnmarshalJSON accepts "1999", 1999 and null
func (y *ReleaseYear) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*y = ""
		return nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*y = ReleaseYear(strings.TrimSpace(s))
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("invalid release year %s: %w", string(data), err)
	}
	*y = ReleaseYear(n.String())
	return nil
}

// String returns the year as text
func (y ReleaseYear) String() string {
	return string(y)
}

// EnrichedMovie is a record plus the figures derived for one view.
// Profit is set by the profitable view, Loss by the unprofitable one.
type EnrichedMovie struct {
	MovieRecord
	Profit      *decimal.Decimal `json:"profit,omitempty"`
	Loss        *decimal.Decimal `json:"loss,omitempty"`
	Unparseable []string         `json:"unparseable,omitempty"` // fields that failed to parse
}

// UnmarshalJSON decodes the record and its derived figures
func (e *EnrichedMovie) UnmarshalJSON(data []byte) error {
	var record MovieRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return err
	}

	var derived struct {
		Profit      *decimal.Decimal `json:"profit"`
		Loss        *decimal.Decimal `json:"loss"`
		Unparseable []string         `json:"unparseable"`
	}
	if err := json.Unmarshal(data, &derived); err != nil {
		return err
	}

	*e = EnrichedMovie{
		MovieRecord: record,
		Profit:      derived.Profit,
		Loss:        derived.Loss,
		Unparseable: derived.Unparseable,
	}
	return nil
}
