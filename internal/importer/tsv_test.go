package importer

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTSV(t *testing.T) {
	testCases := []struct {
		name        string
		input       string
		wantPairs   []Pair
		wantSkipped int
	}{
		{
			name:      "simple pairs",
			input:     "hola\thello\nadios\tgoodbye\n",
			wantPairs: []Pair{{"hola", "hello"}, {"adios", "goodbye"}},
		},
		{
			name:      "sides are trimmed",
			input:     "  perro \t  dog  \r\n",
			wantPairs: []Pair{{"perro", "dog"}},
		},
		{
			name:      "extra tabs stay in the answer",
			input:     "q\ta\tb\n",
			wantPairs: []Pair{{"q", "a\tb"}},
		},
		{
			name:        "blank lines are not counted",
			input:       "\n\n   \nq\ta\n\n",
			wantPairs:   []Pair{{"q", "a"}},
			wantSkipped: 0,
		},
		{
			name:        "missing sides are counted",
			input:       "no tab here\n\tonly answer\nonly question\t   \nq\ta\n",
			wantPairs:   []Pair{{"q", "a"}},
			wantSkipped: 3,
		},
		{
			name:  "empty input",
			input: "",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			res, err := ParseTSV(strings.NewReader(tc.input))
			require.NoError(t, err)
			assert.Equal(t, tc.wantPairs, res.Pairs)
			assert.Equal(t, tc.wantSkipped, res.Skipped)
		})
	}
}

func TestParseTSV_CapsCards(t *testing.T) {
	var b strings.Builder
	for i := 0; i < MaxCards+5; i++ {
		fmt.Fprintf(&b, "q%d\ta%d\n", i, i)
	}

	res, err := ParseTSV(strings.NewReader(b.String()))
	require.NoError(t, err)
	assert.Len(t, res.Pairs, MaxCards)
	assert.Equal(t, 5, res.Skipped)
	assert.Equal(t, Pair{"q0", "a0"}, res.Pairs[0])
}

func TestParseTSV_RejectsInvalidUTF8(t *testing.T) {
	_, err := ParseTSV(bytes.NewReader([]byte("q\t\xff\xfe\n")))
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestParseTSV_RejectsOversizedInput(t *testing.T) {
	data := bytes.Repeat([]byte("a"), MaxFileBytes+1)
	_, err := ParseTSV(bytes.NewReader(data))
	assert.ErrorIs(t, err, ErrTooLarge)
}
