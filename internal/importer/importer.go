// Package importer parses flashcard exports into question/answer pairs.
//
// Two formats are supported: tab-separated text and Anki .apkg archives.
// Parsers never touch the card store; they return pairs plus a count of
// entries that could not be turned into cards.
package importer

import "errors"

const (
	// MaxFileBytes is the largest accepted import payload.
	MaxFileBytes = 10 * 1024 * 1024

	// MaxCards is the most cards a single import produces. Further entries
	// are counted as skipped.
	MaxCards = 2000
)

var (
	// ErrInvalidInput indicates the payload is not in the expected format.
	ErrInvalidInput = errors.New("invalid import file")

	// ErrTooLarge indicates the payload exceeds MaxFileBytes.
	ErrTooLarge = errors.New("import file exceeds the 10 MB size limit")
)

// Pair is one question/answer couple extracted from an import file.
type Pair struct {
	Question string
	Answer   string
}

// Result is the outcome of parsing a TSV file.
type Result struct {
	Pairs   []Pair
	Skipped int
}

// AnkiResult is the outcome of parsing an Anki package.
type AnkiResult struct {
	DeckName string
	Pairs    []Pair
	Skipped  int
}
