package service

import (
	"slices"

	"github.com/shopspring/decimal"
)

// RiskTierProvider supplies the category risk tiers.
type RiskTierProvider interface {
	HighRiskCategories() []string
	MediumRiskCategories() []string
}

const (
	amountHighPoints   = 30
	amountMediumPoints = 20
	amountLowPoints    = 10

	categoryHighPoints   = 25
	categoryMediumPoints = 15

	timePoints = 20

	earlyMorningEndHour = 6
	lateNightStartHour  = 23
)

var (
	amountHighThreshold   = decimal.NewFromInt(1000)
	amountMediumThreshold = decimal.NewFromInt(500)
	amountLowThreshold    = decimal.NewFromInt(100)
)

// SuspicionScorer computes an additive rule-based risk score in [0, 75].
type SuspicionScorer struct {
	tiers RiskTierProvider
}

// NewSuspicionScorer creates a SuspicionScorer over the given risk tiers.
func NewSuspicionScorer(tiers RiskTierProvider) *SuspicionScorer {
	return &SuspicionScorer{tiers: tiers}
}

// Score returns the suspicion score for a reference-currency amount, a
// category and an hour of day.
func (s *SuspicionScorer) Score(amountRef decimal.Decimal, category string, hour int) int {
	return s.Breakdown(amountRef, category, hour).Total()
}

// Breakdown returns the per-factor contributions. Within a factor only the
// highest matching band counts.
func (s *SuspicionScorer) Breakdown(amountRef decimal.Decimal, category string, hour int) ScoreBreakdown {
	return ScoreBreakdown{
		Amount:   amountPoints(amountRef),
		Category: s.categoryPoints(category),
		Time:     timeOfDayPoints(hour),
	}
}

func amountPoints(amountRef decimal.Decimal) int {
	switch {
	case amountRef.GreaterThan(amountHighThreshold):
		return amountHighPoints
	case amountRef.GreaterThan(amountMediumThreshold):
		return amountMediumPoints
	case amountRef.GreaterThan(amountLowThreshold):
		return amountLowPoints
	default:
		return 0
	}
}

func (s *SuspicionScorer) categoryPoints(category string) int {
	switch {
	case slices.Contains(s.tiers.HighRiskCategories(), category):
		return categoryHighPoints
	case slices.Contains(s.tiers.MediumRiskCategories(), category):
		return categoryMediumPoints
	default:
		return 0
	}
}

func timeOfDayPoints(hour int) int {
	switch {
	case hour < earlyMorningEndHour:
		return timePoints
	// Known anomaly: hours are 0-23, so this band never fires. The intended
	// late-night bound is pending product clarification; do not adjust it here.
	case hour > lateNightStartHour:
		return timePoints
	default:
		return 0
	}
}
