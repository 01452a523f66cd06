package catalog

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownCategory is returned for a category slug outside the known set
var ErrUnknownCategory = errors.New("unknown category")

// Category selects the filter/sort policy applied to the catalog
type Category string

const (
	All          Category = "all"
	Acclaimed    Category = "acclaimed"
	Profitable   Category = "profitable"
	Unprofitable Category = "unprofitable"
	TopGrossing  Category = "top-grossing"
)

// DefaultCategory is shown right after the catalog loads
const DefaultCategory = Profitable

var categoryLabels = map[Category]string{
	All:          "Todos os Filmes",
	Acclaimed:    "Aclamados pela Crítica",
	Profitable:   "Filmes Lucrativos",
	Unprofitable: "Maiores Prejuízos",
	TopGrossing:  "Maiores Bilheterias",
}

// Categories returns every category in display order
func Categories() []Category {
	return []Category{All, Acclaimed, Profitable, Unprofitable, TopGrossing}
}

// ParseCategory resolves a slug; an empty slug is not accepted
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := categoryLabels[c]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownCategory, s)
	}
	return c, nil
}

// Label returns the button label for the category
func (c Category) Label() string {
	return categoryLabels[c]
}

// Valid reports whether c is one of the known categories
func (c Category) Valid() bool {
	_, ok := categoryLabels[c]
	return ok
}

func (c Category) String() string {
	return string(c)
}
