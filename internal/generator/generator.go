// Package generator builds random cipher keys.
package generator

import (
	"math/rand"
	"time"

	"github.com/verte-zerg/subcrack/internal/cipher"
)

// Shuffler permutes n elements through swap. *rand.Rand satisfies it.
type Shuffler interface {
	Shuffle(n int, swap func(i, j int))
}

// Generator produces random permutation keys.
type Generator struct {
	rnd Shuffler
}

// New returns a Generator seeded with the current time.
func New() *Generator {
	return NewSeeded(time.Now().UnixNano())
}

// NewSeeded returns a Generator whose output is reproducible for a given seed.
func NewSeeded(seed int64) *Generator {
	return &Generator{rnd: rand.New(rand.NewSource(seed))}
}

// NewWithSource returns a Generator backed by the given shuffle strategy.
func NewWithSource(src Shuffler) *Generator {
	return &Generator{rnd: src}
}

// Key shuffles a copy of the alphabet and pairs each original position with
// the character that lands there.
func (g *Generator) Key(alphabet cipher.Alphabet) (cipher.Key, error) {
	if err := alphabet.Validate(); err != nil {
		return nil, err
	}
	shuffled := make([]rune, len(alphabet))
	copy(shuffled, alphabet)
	g.rnd.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	key := make(cipher.Key, len(alphabet))
	for i, r := range alphabet {
		key[r] = shuffled[i]
	}
	return key, nil
}
