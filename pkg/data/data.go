package data

import (
	"math"
	"strconv"
	"strings"
)

const (
	insertResultSQL = `INSERT INTO result (id, submission, schedule, average, missing)
		VALUES (?, ?, ?, ?, ?)
	`
)

// Average is the parsed value of an Average cell.
// Valid is false when the cell could not be read as a finite number.
type Average struct {
	Value float64
	Valid bool
}

// ParseAverage parses s as a real number. Unparseable input yields a missing
// Average rather than an error.
func ParseAverage(s string) Average {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return Average{}
	}
	return Average{Value: v, Valid: true}
}

// Observation is one input row.
type Observation struct {
	Submission string  `json:"submission" yaml:"submission"`
	Schedule   string  `json:"schedule" yaml:"schedule"`
	Average    Average `json:"-" yaml:"-"`
}

// RankedEntry is the competition rank of one observation within its schedule.
type RankedEntry struct {
	Submission string `json:"submission" yaml:"submission"`
	Schedule   string `json:"schedule" yaml:"schedule"`
	Rank       int    `json:"rank" yaml:"rank"`
	MaxRank    int    `json:"max_rank" yaml:"maxRank"`
}

// ScoredEntry is the normalized score of one observation.
type ScoredEntry struct {
	Submission string  `json:"submission" yaml:"submission"`
	Schedule   string  `json:"schedule" yaml:"schedule"`
	Rank       int     `json:"rank" yaml:"rank"`
	MaxRank    int     `json:"max_rank" yaml:"maxRank"`
	Missing    bool    `json:"missing,omitempty" yaml:"missing,omitempty"`
	Score      float64 `json:"score" yaml:"score"`
}

// FinalMark is the scaled, rounded mark of a submission.
type FinalMark struct {
	Submission string  `json:"submission" yaml:"submission"`
	Mark       float64 `json:"mark" yaml:"mark"`
}

// Report is the outcome of a complete scoring run.
type Report struct {
	MaxScore     int           `json:"max_score" yaml:"maxScore"`
	Observations int           `json:"observations" yaml:"observations"`
	Missing      int           `json:"missing" yaml:"missing"`
	Sentinel     float64       `json:"sentinel" yaml:"sentinel"`
	Marks        []FinalMark   `json:"marks" yaml:"marks"`
	Entries      []ScoredEntry `json:"entries,omitempty" yaml:"entries,omitempty"`
}
