// Package store persists completed searches and the frames they found.
package store

import "time"

// DB is the persistence interface consumed by the API layer.
type DB interface {
	Close() error
	Migrate() error
	SaveSearch(search *Search) error
	SaveFrames(searchID string, frames []FrameRow) error
	GetSearch(id string) (*Search, error)
	ListSearches(query SearchQuery) (*SearchList, error)
	GetFrames(searchID string, page, perPage int) (*FramePage, error)
}

// Search is one persisted scan: its request echo plus aggregate outcome.
type Search struct {
	ID             string    `json:"id" db:"id"`
	Method         string    `json:"method" db:"method"`
	Version        string    `json:"version" db:"version"`
	PID            uint32    `json:"pid" db:"pid"`
	GenderRatio    uint8     `json:"gender_ratio" db:"gender_ratio"`
	SeedStart      uint32    `json:"seed_start" db:"seed_start"`
	SeedEnd        uint32    `json:"seed_end" db:"seed_end"`
	LeadFilter     string    `json:"lead_filter" db:"lead_filter"`
	Script         string    `json:"script" db:"script"`
	HitCount       int       `json:"hit_count" db:"hit_count"`
	TotalEvaluated uint64    `json:"total_evaluated" db:"total_evaluated"`
	HitRate        string    `json:"hit_rate" db:"hit_rate"`
	TimedOut       bool      `json:"timed_out" db:"timed_out"`
	EngineVersion  string    `json:"engine_version" db:"engine_version"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}

// FrameRow is one persisted candidate frame.
type FrameRow struct {
	ID         int64  `json:"id" db:"id"`
	SearchID   string `json:"search_id" db:"search_id"`
	OriginSeed uint32 `json:"origin_seed" db:"origin_seed"`
	FrameSeed  uint32 `json:"frame_seed" db:"frame_seed"`
	ESV        uint16 `json:"esv" db:"esv"`
	Lead       string `json:"lead" db:"lead"`
}

// SearchQuery filters and paginates ListSearches.
type SearchQuery struct {
	Method  string `json:"method,omitempty"`
	Page    int    `json:"page"`
	PerPage int    `json:"perPage"`
}

// SearchList is a paginated ListSearches response.
type SearchList struct {
	Searches   []Search `json:"searches"`
	TotalCount int      `json:"totalCount"`
	Page       int      `json:"page"`
	PerPage    int      `json:"perPage"`
	TotalPages int      `json:"totalPages"`
}

// FramePage is a paginated GetFrames response.
type FramePage struct {
	Frames     []FrameRow `json:"frames"`
	TotalCount int        `json:"totalCount"`
	Page       int        `json:"page"`
	PerPage    int        `json:"perPage"`
	TotalPages int        `json:"totalPages"`
}
