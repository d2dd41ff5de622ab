package importer

import (
	"archive/zip"
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/phrazzld/scry-review/internal/domain"
	_ "modernc.org/sqlite" // SQLite driver for Anki collections.
)

// collectionFiles lists the collection database names in preference order.
var collectionFiles = []string{"collection.anki21", "collection.anki2"}

// ParseAnki extracts cards from an Anki .apkg archive. The first two fields
// of every note become the question and answer with HTML stripped. Notes
// with fewer than two fields or an empty side are counted as skipped.
func ParseAnki(ctx context.Context, data []byte) (AnkiResult, error) {
	if len(data) > MaxFileBytes {
		return AnkiResult{}, ErrTooLarge
	}

	path, err := extractCollection(data)
	if err != nil {
		return AnkiResult{}, err
	}
	defer os.Remove(path)

	db, err := sql.Open("sqlite", "file:"+path+"?mode=ro")
	if err != nil {
		return AnkiResult{}, fmt.Errorf("%w: failed to open collection: %v", ErrInvalidInput, err)
	}
	defer db.Close()

	res := AnkiResult{DeckName: deckName(ctx, db)}

	rows, err := db.QueryContext(ctx, "SELECT flds FROM notes LIMIT ?", MaxCards+1)
	if err != nil {
		return AnkiResult{}, fmt.Errorf("%w: failed to query notes: %v", ErrInvalidInput, err)
	}
	defer rows.Close()

	for rows.Next() {
		var flds string
		if err := rows.Scan(&flds); err != nil {
			return AnkiResult{}, fmt.Errorf("failed to scan note: %w", err)
		}

		if len(res.Pairs) >= MaxCards {
			res.Skipped++
			continue
		}

		fields := strings.SplitN(flds, "\x1f", 3)
		if len(fields) < 2 {
			res.Skipped++
			continue
		}

		question := StripHTML(fields[0])
		answer := StripHTML(fields[1])
		if question == "" || answer == "" {
			res.Skipped++
			continue
		}
		res.Pairs = append(res.Pairs, Pair{Question: question, Answer: answer})
	}
	if err := rows.Err(); err != nil {
		return AnkiResult{}, fmt.Errorf("failed to read notes: %w", err)
	}

	return res, nil
}

// extractCollection writes the collection database from the archive to a
// temporary file and returns its path. The caller removes the file.
func extractCollection(data []byte) (string, error) {
	archive, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("%w: not a valid ZIP/APKG file: %v", ErrInvalidInput, err)
	}

	var entry *zip.File
	for _, name := range collectionFiles {
		for _, f := range archive.File {
			if f.Name == name {
				entry = f
				break
			}
		}
		if entry != nil {
			break
		}
	}
	if entry == nil {
		return "", fmt.Errorf("%w: no collection.anki21 or collection.anki2 in package", ErrInvalidInput)
	}

	src, err := entry.Open()
	if err != nil {
		return "", fmt.Errorf("%w: failed to open collection: %v", ErrInvalidInput, err)
	}
	defer src.Close()

	tmp, err := os.CreateTemp("", "anki-*.db")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}

	// Bound the decompressed size.
	_, copyErr := io.Copy(tmp, io.LimitReader(src, 20*MaxFileBytes))
	closeErr := tmp.Close()
	if err := errors.Join(copyErr, closeErr); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to write collection: %w", err)
	}

	return tmp.Name(), nil
}

// deckName reads the deck map stored on the col table and picks the first
// deck not called "Default", ordered numerically by deck id.
func deckName(ctx context.Context, db *sql.DB) string {
	var raw string
	if err := db.QueryRowContext(ctx, "SELECT decks FROM col LIMIT 1").Scan(&raw); err != nil {
		return domain.DefaultImportedDeckName
	}

	var decks map[string]struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal([]byte(raw), &decks); err != nil {
		return domain.DefaultImportedDeckName
	}

	ids := make([]string, 0, len(decks))
	for id := range decks {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return deckIDLess(ids[i], ids[j]) })

	first := ""
	for _, id := range ids {
		name := decks[id].Name
		if name == "" {
			continue
		}
		if first == "" {
			first = name
		}
		if name != "Default" {
			return name
		}
	}
	if first != "" {
		return first
	}
	return domain.DefaultImportedDeckName
}

// deckIDLess orders Anki deck ids numerically. Ids that do not parse sort
// after numeric ones, by string.
func deckIDLess(a, b string) bool {
	na, errA := strconv.ParseInt(a, 10, 64)
	nb, errB := strconv.ParseInt(b, 10, 64)
	switch {
	case errA == nil && errB == nil:
		return na < nb
	case errA == nil:
		return true
	case errB == nil:
		return false
	default:
		return a < b
	}
}
