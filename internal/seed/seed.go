// Package seed turns user supplied seeds into deterministic int64 values for
// math/rand. Integers are used as is; anything else is treated as a phrase
// and hashed, so "ancient crypt" always produces the same dungeon.
package seed

import (
	"encoding/binary"
	"errors"
	"strconv"
	"strings"
	"time"

	"golang.org/x/crypto/blake2b"
)

// ErrEmpty is returned by Parse for a blank seed.
var ErrEmpty = errors.New("empty seed")

// Seed is a resolved seed together with the text it came from.
type Seed struct {
	Text  string
	Value int64
}

func (s Seed) String() string {
	return s.Text
}

// Parse resolves text into a Seed. Surrounding whitespace is ignored.
func Parse(text string) (Seed, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Seed{}, ErrEmpty
	}

	if v, err := strconv.ParseInt(text, 10, 64); err == nil {
		return Seed{Text: text, Value: v}, nil
	}

	return Seed{Text: text, Value: Phrase(text)}, nil
}

// ParseOrNow behaves like Parse but falls back to a time based seed when text
// is blank.
func ParseOrNow(text string) Seed {
	s, err := Parse(text)
	if err != nil {
		return FromTime(time.Now())
	}
	return s
}

// FromTime returns a numeric seed derived from t.
func FromTime(t time.Time) Seed {
	v := t.UnixNano()
	return Seed{Text: strconv.FormatInt(v, 10), Value: v}
}

// Phrase hashes a phrase to a seed value. Phrases are case-insensitive and
// runs of whitespace are collapsed.
func Phrase(text string) int64 {
	normalized := strings.ToLower(strings.Join(strings.Fields(text), " "))
	sum := blake2b.Sum256([]byte(normalized))
	return int64(binary.BigEndian.Uint64(sum[:8]))
}

// Derive returns the seed of the i-th dungeon in a batch. Index 0 is the
// base seed itself so a single-dungeon run reproduces the seed directly.
func Derive(base Seed, i int) Seed {
	if i == 0 {
		return base
	}
	v := base.Value + int64(i)
	return Seed{Text: strconv.FormatInt(v, 10), Value: v}
}
