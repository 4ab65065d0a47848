// Package familykey produces the human-memorable identifiers families share
// to join each other, e.g. "sunny-curry-feast".
package familykey

import (
	"fmt"
	"math/rand/v2"
	"sync"
)

var adjectives = []string{
	"sunny", "happy", "bright", "warm", "cozy", "fresh", "sweet", "spicy",
	"golden", "silver", "green", "blue", "red", "purple", "orange", "pink",
	"calm", "gentle", "strong", "wise", "clever", "kind", "bold", "quiet",
}

var nouns = []string{
	"kitchen", "recipe", "spice", "herb", "meal", "dish", "plate", "bowl",
	"river", "mountain", "star", "moon", "sun", "tree", "flower", "garden",
	"bread", "soup", "curry", "rice", "naan", "chapati", "dal", "masala",
}

var suffixes = []string{
	"family", "home", "table", "feast", "meal", "kitchen", "recipe", "dish",
}

// Combinations is the number of distinct keys the generator can produce.
var Combinations = len(adjectives) * len(nouns) * len(suffixes)

// Generator draws keys uniformly from the fixed word lists. Keys are not
// checked against existing families; two families can end up sharing a key.
type Generator struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// New returns a Generator using rng. A nil rng uses the process-wide source,
// which makes keys unpredictable; pass a seeded source for reproducible keys.
func New(rng *rand.Rand) *Generator {
	return &Generator{rng: rng}
}

// Generate returns a key of the form "{adjective}-{noun}-{suffix}".
func (g *Generator) Generate() string {
	return fmt.Sprintf("%s-%s-%s", g.pick(adjectives), g.pick(nouns), g.pick(suffixes))
}

func (g *Generator) pick(words []string) string {
	if g.rng == nil {
		return words[rand.IntN(len(words))]
	}
	// rand.Rand is not safe for concurrent use.
	g.mu.Lock()
	defer g.mu.Unlock()
	return words[g.rng.IntN(len(words))]
}
