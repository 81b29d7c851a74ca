package types

// Signal is the human-readable classification attached to a score.
type Signal string

const (
	SignalPotentialLong  Signal = "Potential Long (Crowded Short)"
	SignalPotentialShort Signal = "Potential Short (Crowded Long)"
	SignalNeutral        Signal = "Neutral"
	SignalWatch          Signal = "Watch"
)

// ScoreResult is the full scoring profile for one stock.
type ScoreResult struct {
	ContrarianScore  float64 `json:"contrarian_score"`
	FundamentalScore float64 `json:"fundamental_score"`
	SentimentScore   float64 `json:"sentiment_score"`
	Signal           Signal  `json:"signal"`
	IsHated          bool    `json:"is_hated"`
	IsLoved          bool    `json:"is_loved"`
}

// ScreenResult bundles a scored ticker with the raw record it was scored from.
type ScreenResult struct {
	Ticker string      `json:"ticker"`
	Stock  *Stock      `json:"stock"`
	Scores ScoreResult `json:"scores"`
}

// SocialSnapshot is the output of a social enrichment pass.
type SocialSnapshot struct {
	Mentions       int     `json:"mentions"`
	SentimentScore float64 `json:"sentiment_score"`
	BullRatio      float64 `json:"bull_ratio"`
}

// NeutralSocialSnapshot is what social enrichment reports when no source has data.
func NeutralSocialSnapshot() SocialSnapshot {
	return SocialSnapshot{
		SentimentScore: NeutralRedditScore,
		BullRatio:      NeutralBullRatio,
	}
}
