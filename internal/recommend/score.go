// Package recommend selects related portfolio items for a reference item.
package recommend

import "TechPortfolio/internal/domain"

const (
	fieldMatchPoints  = 30
	tagMatchPoints    = 5
	statusMatchPoints = 5
	yearClosePoints   = 5
	yearNearPoints    = 2

	yearCloseSpan = 2
	yearNearSpan  = 5
)

// Signals is the per-signal breakdown of a similarity score.
type Signals struct {
	Self   bool `json:"self,omitempty"`
	Field  int  `json:"field"`
	Tags   int  `json:"tags"`
	Status int  `json:"status"`
	Year   int  `json:"year"`
}

// Total sums the signal contributions. A self comparison always totals 0.
func (s Signals) Total() int {
	if s.Self {
		return 0
	}
	return s.Field + s.Tags + s.Status + s.Year
}

// Score rates how related candidate is to reference. It never returns a negative value.
func Score(reference, candidate domain.PortfolioItem) int {
	return Explain(reference, candidate).Total()
}

// Explain computes every similarity signal between reference and candidate.
func Explain(reference, candidate domain.PortfolioItem) Signals {
	if candidate.ID == reference.ID {
		return Signals{Self: true}
	}

	return Signals{
		Field:  fieldSignal(reference, candidate),
		Tags:   tagSignal(reference.Tags, candidate.Tags),
		Status: statusSignal(reference.Status, candidate.Status),
		Year:   yearSignal(reference, candidate),
	}
}

func fieldSignal(reference, candidate domain.PortfolioItem) int {
	field := reference.EffectiveField()
	if field == "" || field != candidate.EffectiveField() {
		return 0
	}
	return fieldMatchPoints
}

// tagSignal counts reference tags present in the candidate set; repeated reference tags count each time.
func tagSignal(referenceTags, candidateTags []string) int {
	if len(referenceTags) == 0 || len(candidateTags) == 0 {
		return 0
	}

	set := make(map[string]struct{}, len(candidateTags))
	for _, tag := range candidateTags {
		set[tag] = struct{}{}
	}

	matches := 0
	for _, tag := range referenceTags {
		if _, ok := set[tag]; ok {
			matches++
		}
	}
	return matches * tagMatchPoints
}

func statusSignal(reference, candidate string) int {
	if reference == "" || reference != candidate {
		return 0
	}
	return statusMatchPoints
}

func yearSignal(reference, candidate domain.PortfolioItem) int {
	refYear, ok := reference.YearValue()
	if !ok {
		return 0
	}
	candYear, ok := candidate.YearValue()
	if !ok {
		return 0
	}

	diff := refYear - candYear
	if diff < 0 {
		diff = -diff
	}

	switch {
	case diff <= yearCloseSpan:
		return yearClosePoints
	case diff <= yearNearSpan:
		return yearNearPoints
	default:
		return 0
	}
}
