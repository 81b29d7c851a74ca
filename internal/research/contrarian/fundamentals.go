package contrarian

import (
	"math"

	"contrarian-screener/internal/types"
)

// Defaults substituted for unknown fundamentals. Unknown leverage is treated
// as moderately risky rather than neutral.
const (
	neutralScore         = 50.0
	defaultPERatio       = 25.0
	defaultRevenueGrowth = 0.0
	defaultProfitMargin  = 0.0
	defaultDebtToEquity  = 100.0
	defaultPctFromHigh   = 0.0
)

// FundamentalStrength scores financial strength on 0-100.
//
// Missing fundamentals score a neutral 50 so that "unknown" never pushes the
// contrarian score either way. Otherwise five independent adjustments are
// added to a base of 50 and the total is clamped.
func FundamentalStrength(f *types.Fundamentals, percentFromHigh *float64) float64 {
	if f == nil {
		return neutralScore
	}

	score := neutralScore

	// Valuation: cheap vs expensive relative to a ~20x market
	pe := valueOr(f.PERatio, defaultPERatio)
	if pe < 15 {
		score += 10
	} else if pe > 35 {
		score -= 10
	}

	growth := valueOr(f.RevenueGrowth, defaultRevenueGrowth)
	if growth > 0.10 {
		score += 10
	} else if growth < 0 {
		score -= 10
	}

	margin := valueOr(f.ProfitMargin, defaultProfitMargin)
	if margin > 0.15 {
		score += 10
	} else if margin < 0 {
		score -= 10
	}

	de := valueOr(f.DebtToEquity, defaultDebtToEquity)
	if de < 50 {
		score += 10
	} else if de > 150 {
		score -= 10
	}

	// Beaten-down names get a small deep-value bonus; no penalty near highs
	if valueOr(percentFromHigh, defaultPctFromHigh) < -30 {
		score += 5
	}

	return clamp(score, 0, 100)
}

// FundamentalRating buckets a fundamental score for display.
func FundamentalRating(score float64) string {
	switch {
	case score >= 70:
		return "Strong"
	case score >= 40:
		return "Neutral"
	default:
		return "Weak"
	}
}

func valueOr(v *float64, fallback float64) float64 {
	if v == nil {
		return fallback
	}
	return *v
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
