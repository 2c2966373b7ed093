package domain

import (
	"strconv"
	"strings"
	"time"
)

// PortfolioItem is a catalogued technology/patent record eligible for display and recommendation.
// Empty strings and nil slices mean the attribute is absent.
type PortfolioItem struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Category      string    `json:"category,omitempty"`
	Field         string    `json:"field,omitempty"`
	Tags          []string  `json:"tags,omitempty"`
	Status        string    `json:"status,omitempty"`
	Year          string    `json:"year,omitempty"`
	Description   string    `json:"description,omitempty"`
	Abstract      string    `json:"abstract,omitempty"`
	LicensingInfo string    `json:"licensingInfo,omitempty"`
	PatentNumber  string    `json:"patentNumber,omitempty"`
	Inventors     []string  `json:"inventors,omitempty"`
	URL           string    `json:"url,omitempty"`
	Published     bool      `json:"published"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// EffectiveField returns Field when set, otherwise Category.
func (p PortfolioItem) EffectiveField() string {
	if p.Field != "" {
		return p.Field
	}
	return p.Category
}

// YearValue parses Year. The second result is false when Year is absent or not an integer.
func (p PortfolioItem) YearValue() (int, bool) {
	raw := strings.TrimSpace(p.Year)
	if raw == "" {
		return 0, false
	}
	year, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return year, true
}

// IDs collects item identifiers preserving order.
func IDs(items []PortfolioItem) []string {
	ids := make([]string, len(items))
	for i, item := range items {
		ids[i] = item.ID
	}
	return ids
}

// Lifecycle labels seen in the catalogue. Status stays free text; these are the common values.
const (
	StatusGranted  = "Granted"
	StatusPending  = "Pending"
	StatusLicensed = "Licensed"
)
