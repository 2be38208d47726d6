package models

import "time"

// Article is one raw news/event record entering the scoring pipeline.
// Enrichment fields (entity count, country code, GDELT signals) are filled by
// the external extraction layer before the article reaches the engine.
type Article struct {
	ID          string
	Source      string
	Title       string
	Text        string
	PublishedAt string // raw timestamp from the feed, parsed best-effort
	CountryCode string // ISO-2 primary country, may be empty
	EntityCount int

	// Optional structured-event signals (GDELT-style). Nil when the article
	// came from a plain news feed.
	GoldsteinScale *float64 // -10 (conflict) .. +10 (cooperation)
	QuadClass      *int     // 1=verbal coop, 2=material coop, 3=verbal conflict, 4=material conflict
}

// ScoredEvent is the persisted unit: one article after classification and
// severity scoring, ready for the event store or the output topic.
type ScoredEvent struct {
	ArticleID   string
	Source      string
	CountryCode string
	Category    string
	Confidence  float64
	Record      ScoredRecord
	EventDate   time.Time
	ScoredAt    time.Time
}
