// Package model defines the core domain types for the token filter pipeline.
package model

import "time"

// Stage names used as keys in TokenCandidate.StageScores. Only the two
// scoring gates write scores; ownership enriches and reasoning produces a
// thesis instead.
const (
	StageMarket   = "market"
	StageMetadata = "metadata"
)

// TokenCandidate represents one token under evaluation for one pipeline run.
type TokenCandidate struct {
	FetchedAt         time.Time             `json:"fetched_at"`
	StageScores       map[string]StageScore `json:"stage_scores"`
	MetadataSnapshot  *MetadataSnapshot     `json:"metadata_snapshot,omitempty"`
	FinalReasoning    *Reasoning            `json:"final_reasoning,omitempty"`
	Address           string                `json:"address"`
	Symbol            string                `json:"symbol"`
	Name              string                `json:"name"`
	LogoURI           string                `json:"logo_uri,omitempty"`
	OwnershipEvidence []OwnershipEvidence   `json:"ownership_evidence"`
	MarketSnapshot    MarketSnapshot        `json:"market_snapshot"`
	Decimals          int                   `json:"decimals"`
	Survived          bool                  `json:"survived"`
}

// MarketSnapshot holds the numeric market fields captured at fetch time.
// It is immutable once populated.
type MarketSnapshot struct {
	Price              float64 `json:"price"`
	Liquidity          float64 `json:"liquidity"`
	MarketCap          float64 `json:"market_cap"`
	Volume24hUSD       float64 `json:"volume_24h_usd"`
	VolumeChange24hPct float64 `json:"volume_change_24h_percent"`
	PriceChange24hPct  float64 `json:"price_change_24h_percent"`
	Trade24hCount      int64   `json:"trade_24h_count"`
	HolderCount        int64   `json:"holder_count"`
}

// MetadataSnapshot holds extended fields attached by the metadata stage.
type MetadataSnapshot struct {
	Description string `json:"description,omitempty"`
	Website     string `json:"website,omitempty"`
	Twitter     string `json:"twitter,omitempty"`
	Telegram    string `json:"telegram,omitempty"`
}

// StageScore is one stage's verdict on a candidate.
type StageScore struct {
	ScoredAt  time.Time `json:"scored_at"`
	Strengths []string  `json:"strengths,omitempty"`
	Risks     []string  `json:"risks,omitempty"`
	Score     float64   `json:"score"`
}

// OwnershipEvidence records a tracked wallet's position in the candidate token.
// Evidence is additive only and never causes rejection.
type OwnershipEvidence struct {
	EntryTime     time.Time `json:"entry_time"`
	KOLID         string    `json:"kol_id"`
	Name          string    `json:"name"`
	WalletAddress string    `json:"wallet_address"`
	PositionSize  float64   `json:"position_size"`
	Confidence    float64   `json:"confidence"`
}

// Reasoning is the structured investment thesis produced by the reasoning stage.
type Reasoning struct {
	MarketAnalysis      string `json:"market_analysis"`
	SentimentAnalysis   string `json:"sentiment_analysis"`
	SocialSignals       string `json:"social_signals"`
	RiskAssessment      string `json:"risk_assessment"`
	FinalRecommendation string `json:"final_recommendation"`
}

// RecordScore attaches a stage score to the candidate. Scores are append-only;
// a candidate is only ever scored by stages it survived to.
func (c *TokenCandidate) RecordScore(stage string, score StageScore) {
	if c.StageScores == nil {
		c.StageScores = make(map[string]StageScore)
	}
	c.StageScores[stage] = score
}

// Reject marks the candidate as eliminated. Once rejected, no further stage
// may process it.
func (c *TokenCandidate) Reject() {
	c.Survived = false
}
