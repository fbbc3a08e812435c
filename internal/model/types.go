// Package model defines shared data structures.
package model

import "time"

// Run kinds recorded in the history.
const (
	KindEncrypt = "encrypt"
	KindDecrypt = "decrypt"
	KindCrack   = "crack"
)

// Frequency sources stored per run.
const (
	SourceObserved  = "observed"
	SourceReference = "reference"
)

// Settings carries the resolved cipher and attack configuration.
type Settings struct {
	Alphabet     string
	Uppercase    bool
	Seed         int64
	Reference    string
	AlphabetOnly bool
}

// HistoryFilter selects runs for listing.
type HistoryFilter struct {
	Kind  string
	Since *time.Time
	Last  int
}

// Run summarizes one pipeline invocation.
type Run struct {
	ID           string
	Kind         string
	CreatedAt    time.Time
	InputPath    string
	OutputPath   string
	Alphabet     string
	TextLen      int
	Mapped       int
	Unmapped     int
	KeyAccuracy  *float64
	TextAccuracy *float64
}

// RankedFreq is one row of a stored frequency table.
type RankedFreq struct {
	Source string
	Rank   int
	Char   string
	Freq   float64
}

// MappingPair is one stored substitution.
type MappingPair struct {
	From string
	To   string
}
