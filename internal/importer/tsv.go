package importer

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

// ParseTSV reads "question<TAB>answer" lines. Only the first tab separates
// the sides; further tabs belong to the answer. Blank lines are ignored and
// lines missing either side are counted in Result.Skipped.
func ParseTSV(r io.Reader) (Result, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxFileBytes+1))
	if err != nil {
		return Result{}, fmt.Errorf("failed to read import file: %w", err)
	}
	if len(data) > MaxFileBytes {
		return Result{}, ErrTooLarge
	}
	if !utf8.Valid(data) {
		return Result{}, fmt.Errorf("%w: file is not valid UTF-8", ErrInvalidInput)
	}

	var res Result
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), MaxFileBytes)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		question, answer, _ := strings.Cut(line, "\t")
		question = strings.TrimSpace(question)
		answer = strings.TrimSpace(answer)
		if question == "" || answer == "" {
			res.Skipped++
			continue
		}

		if len(res.Pairs) >= MaxCards {
			res.Skipped++
			continue
		}
		res.Pairs = append(res.Pairs, Pair{Question: question, Answer: answer})
	}
	if err := scanner.Err(); err != nil {
		return Result{}, fmt.Errorf("failed to scan import file: %w", err)
	}

	return res, nil
}
