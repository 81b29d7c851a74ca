package contrarian

import (
	"fmt"
	"math"

	"contrarian-screener/internal/types"
)

// CrowdDirection is the dominant direction of crowd sentiment.
type CrowdDirection string

const (
	CrowdHated CrowdDirection = "hated"
	CrowdLoved CrowdDirection = "loved"
	CrowdMixed CrowdDirection = "mixed"
)

// Thresholds on the 0-100 consensus/retail scales and the 0-100 short interest scale.
const (
	bullishThreshold      = 60.0
	bearishThreshold      = 40.0
	highShortInterestPct  = 15.0
	maxShortInterestPct   = 20.0
	mixedConcentrationCut = 40.0
)

// ConcentrationScore measures how unanimous the crowd is, in either
// direction, on 0-100. A nil observation is a caller bug and returns
// ErrInvalidInput instead of a default.
func ConcentrationScore(s *types.Sentiment) (float64, error) {
	if s == nil {
		return 0, fmt.Errorf("%w: sentiment observation is required", ErrInvalidInput)
	}

	analystBull := s.AnalystConsensusScore() / 100
	retailBull := s.RetailSentimentScore() / 100

	// 20% short interest is the strongest bearish reading; beyond that is capped
	shortNorm := math.Min(s.ShortInterestOrZero()/maxShortInterestPct, 1)

	crowdedLong := 0.5*analystBull + 0.4*retailBull + 0.1*(1-shortNorm)
	crowdedShort := 0.4*(1-analystBull) + 0.3*(1-retailBull) + 0.3*shortNorm

	return 100 * math.Max(crowdedLong, crowdedShort), nil
}

// IsLovedCrowd requires analysts and retail to both lean bullish.
func IsLovedCrowd(s *types.Sentiment) bool {
	if s == nil {
		return false
	}
	return s.AnalystConsensusScore() > bullishThreshold && s.RetailSentimentScore() > bullishThreshold
}

// IsHatedCrowd needs only one strongly bearish reading.
func IsHatedCrowd(s *types.Sentiment) bool {
	if s == nil {
		return false
	}
	return s.AnalystConsensusScore() < bearishThreshold ||
		s.RetailSentimentScore() < bearishThreshold ||
		s.ShortInterestOrZero() > highShortInterestPct
}

// ClassifyCrowd resolves the crowd direction. Hated is checked before loved.
func ClassifyCrowd(s *types.Sentiment) CrowdDirection {
	switch {
	case IsHatedCrowd(s):
		return CrowdHated
	case IsLovedCrowd(s):
		return CrowdLoved
	default:
		return CrowdMixed
	}
}

// CrowdDescription renders the crowd reading for dashboards.
func CrowdDescription(s *types.Sentiment) string {
	score, err := ConcentrationScore(s)
	if err != nil {
		return "No sentiment data"
	}
	if score < mixedConcentrationCut {
		return "Mixed / Uncertainty (No clear crowd)"
	}

	// Label direction is stricter than ClassifyCrowd: bullish wins, and a
	// bearish label needs both analysts and retail below 40 or heavy shorting.
	analyst, retail := s.AnalystConsensusScore(), s.RetailSentimentScore()
	switch {
	case analyst > bullishThreshold && retail > bullishThreshold:
		return fmt.Sprintf("Crowded Long (Consensus Bullish) - Score: %.0f", score)
	case (analyst < bearishThreshold && retail < bearishThreshold) || s.ShortInterestOrZero() > highShortInterestPct:
		return fmt.Sprintf("Crowded Short (Consensus Bearish) - Score: %.0f", score)
	default:
		return fmt.Sprintf("High Conviction Divergence - Score: %.0f", score)
	}
}
