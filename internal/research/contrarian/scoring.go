package contrarian

import (
	"fmt"
	"math"

	"contrarian-screener/internal/types"
)

// Fundamental score cut-offs that turn a crowd reading into an actionable signal.
const (
	strongFundamentals = 60.0
	weakFundamentals   = 40.0
)

// Combine fuses a fundamental score with the crowd reading.
//
// A hated crowd is an opportunity in proportion to fundamental strength; a
// loved crowd in proportion to fundamental weakness. Otherwise the raw gap
// between concentration and fundamentals is reported as a divergence to watch.
func Combine(fundamentalScore float64, s *types.Sentiment) (types.ScoreResult, error) {
	concentration, err := ConcentrationScore(s)
	if err != nil {
		return types.ScoreResult{}, err
	}

	result := types.ScoreResult{
		FundamentalScore: fundamentalScore,
		SentimentScore:   concentration,
		Signal:           types.SignalNeutral,
	}

	switch ClassifyCrowd(s) {
	case CrowdHated:
		result.IsHated = true
		result.ContrarianScore = fundamentalScore
		if fundamentalScore > strongFundamentals {
			result.Signal = types.SignalPotentialLong
		}
	case CrowdLoved:
		result.IsLoved = true
		result.ContrarianScore = 100 - fundamentalScore
		if fundamentalScore < weakFundamentals {
			result.Signal = types.SignalPotentialShort
		}
	default:
		result.ContrarianScore = math.Abs(concentration - fundamentalScore)
		result.Signal = types.SignalWatch
	}

	return result, nil
}

// Scorer produces the full scoring profile for a stock record.
type Scorer struct{}

// NewScorer creates a new scorer
func NewScorer() *Scorer {
	return &Scorer{}
}

// ScoreStock evaluates fundamentals, then combines them with the crowd reading.
func (s *Scorer) ScoreStock(stock *types.Stock) (types.ScoreResult, error) {
	if stock == nil {
		return types.ScoreResult{}, fmt.Errorf("%w: stock record is required", ErrInvalidInput)
	}

	fundamental := FundamentalStrength(stock.Fundamentals, stock.PercentFromHigh())

	result, err := Combine(fundamental, stock.Sentiment)
	if err != nil {
		return types.ScoreResult{}, fmt.Errorf("score %s: %w", stock.Ticker, err)
	}
	return result, nil
}
