package grading

import (
	"fmt"
	"math"
)

// Fraction is a question-level score on the closed interval [0, 1].
// Percent is the submission-level aggregate on [0, 100]. The two scales
// arrive mixed from upstream callers, so they are kept as distinct types
// and only converted through an explicit method.
type Fraction float64

// Percent is a submission-level score on the closed interval [0, 100].
type Percent float64

// Band is the qualitative color band shown wherever a score is color-coded.
type Band string

const (
	BandGreen  Band = "green"
	BandYellow Band = "yellow"
	BandRed    Band = "red"
)

// Band thresholds, inclusive on the upper band.
const (
	greenThreshold  = 0.8
	yellowThreshold = 0.6
)

// Clamp forces the fraction into [0, 1]. Out-of-range input from upstream
// is corrected, never rejected.
func (f Fraction) Clamp() Fraction {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}

// Percent converts a fraction score to the 0-100 scale. This is the only
// sanctioned crossing between the two scales.
func (f Fraction) Percent() Percent {
	return Percent(float64(f.Clamp()) * 100)
}

// Clamp forces the percent into [0, 100].
func (p Percent) Clamp() Percent {
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}

// Fraction converts a percent score back to the 0-1 scale.
func (p Percent) Fraction() Fraction {
	return Fraction(float64(p.Clamp()) / 100)
}

// ScoreBadge is the canonical display representation of a score.
type ScoreBadge struct {
	Percentage string `json:"percentage"`
	Band       Band   `json:"band"`
	Message    string `json:"message"`
}

// NormalizeScore converts a raw fraction into its display badge. Input is
// clamped to [0, 1] before formatting.
func NormalizeScore(raw Fraction) ScoreBadge {
	clamped := raw.Clamp()

	badge := ScoreBadge{
		Percentage: fmt.Sprintf("%d%%", int(math.Round(float64(clamped)*100))),
	}

	switch {
	case float64(clamped) >= greenThreshold:
		badge.Band = BandGreen
		badge.Message = "Excellent"
	case float64(clamped) >= yellowThreshold:
		badge.Band = BandYellow
		badge.Message = "Good"
	default:
		badge.Band = BandRed
		badge.Message = "Needs Improvement"
	}

	return badge
}

// NormalizePercent renders a submission-level percent score as a badge
// using the same band thresholds as question-level fractions.
func NormalizePercent(raw Percent) ScoreBadge {
	return NormalizeScore(raw.Fraction())
}

// ConfidenceMessage returns an advisory sentence for the student, distinct
// from the band label. It never drives control flow.
func ConfidenceMessage(raw Fraction) string {
	clamped := float64(raw.Clamp())

	switch {
	case clamped >= greenThreshold:
		return "Outstanding work. You clearly understand this material."
	case clamped >= yellowThreshold:
		return "Solid effort. A little more detail would make this answer stronger."
	case clamped >= 0.3:
		return "You are on the right track. Review the lesson material and try again."
	default:
		return "Don't be discouraged. Every attempt helps you learn, and your teacher may still review this score."
	}
}
