// Package words supplies secret words for new rounds.
package words

import (
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"os"
	"regexp"
	"strings"
	"sync"
	"unicode/utf8"
)

// Placeholder is returned when no word matches the requested constraints.
const Placeholder = "MYSTERE"

type PickOptions struct {
	MinLen       int
	MaxLen       int
	AllowHyphen  bool
	PreferCommon bool
}

// DefaultPick is what a room uses when nobody supplies a word.
var DefaultPick = PickOptions{MinLen: 6, MaxLen: 10, AllowHyphen: false, PreferCommon: true}

type Source interface {
	Pick(opts PickOptions) string
}

type SampleOptions struct {
	Count          int
	MinLen         int
	MaxLen         int
	AllowHyphen    bool
	Common         bool
	OnlyInfinitive bool
	Exclude        map[string]bool
	// WithCore mixes the built-in everyday words into the pool, on top of
	// the loaded corpus.
	WithCore bool
}

// Corpus is an in-memory word list. Safe for concurrent use.
type Corpus struct {
	mu    sync.Mutex
	rnd   *rand.Rand
	words []string
	core  []string // nil when words already is the core list
}

func NewCorpus(list []string, seed uint64) *Corpus {
	return &Corpus{
		rnd:   rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		words: clean(list),
	}
}

// WithCore sets the everyday list that SampleOptions.WithCore adds.
func (c *Corpus) WithCore(core []string) *Corpus {
	c.core = clean(core)
	return c
}

func clean(list []string) []string {
	seen := make(map[string]bool, len(list))
	out := make([]string, 0, len(list))
	for _, w := range list {
		w = strings.ToLower(strings.TrimSpace(w))
		if w == "" || seen[w] {
			continue
		}
		seen[w] = true
		out = append(out, w)
	}
	return out
}

// Default returns the built-in everyday vocabulary.
func Default() *Corpus {
	return NewCorpus(coreWords, rand.Uint64())
}

// Load reads a JSON array of words.
func Load(path string) (*Corpus, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return NewCorpus(list, rand.Uint64()).WithCore(coreWords), nil
}

func (c *Corpus) Len() int { return len(c.words) }

func (c *Corpus) Pick(opts PickOptions) string {
	pool := filter(c.words, opts.MinLen, opts.MaxLen, opts.AllowHyphen, opts.PreferCommon, false, nil)
	if len(pool) == 0 {
		return Placeholder
	}

	c.mu.Lock()
	w := pool[c.rnd.IntN(len(pool))]
	c.mu.Unlock()
	return strings.ToUpper(w)
}

// Sample returns up to opts.Count distinct words in random order.
func (c *Corpus) Sample(opts SampleOptions) []string {
	pool := filter(c.words, opts.MinLen, opts.MaxLen, opts.AllowHyphen, opts.Common, opts.OnlyInfinitive, opts.Exclude)
	if opts.WithCore && len(c.core) > 0 {
		// core words are everyday vocabulary: no conjugation filter
		core := filter(c.core, opts.MinLen, opts.MaxLen, opts.AllowHyphen, false, opts.OnlyInfinitive, opts.Exclude)
		pool = union(core, pool)
	}

	c.mu.Lock()
	c.rnd.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
	c.mu.Unlock()

	if opts.Count > 0 && len(pool) > opts.Count {
		pool = pool[:opts.Count]
	}
	return pool
}

func union(a, b []string) []string {
	seen := make(map[string]bool, len(a)+len(b))
	out := make([]string, 0, len(a)+len(b))
	for _, list := range [][]string{a, b} {
		for _, w := range list {
			if !seen[w] {
				seen[w] = true
				out = append(out, w)
			}
		}
	}
	return out
}

func filter(words []string, minLen, maxLen int, allowHyphen, common, onlyInfinitive bool, exclude map[string]bool) []string {
	out := make([]string, 0, len(words))
	for _, w := range words {
		if !isCleanWord(w, minLen, maxLen, allowHyphen) || exclude[w] {
			continue
		}
		if common && looksConjugatedVerb(w) {
			continue
		}
		if onlyInfinitive && !isInfinitive(w) {
			continue
		}
		out = append(out, w)
	}
	return out
}

var letters = regexp.MustCompile(`^[a-zàâçéèêëîïôùûüÿœ-]+$`)

func isCleanWord(w string, minLen, maxLen int, allowHyphen bool) bool {
	if w == "" || strings.ContainsAny(w, " _'’") {
		return false
	}
	n := utf8.RuneCountInString(w)
	if n < minLen || (maxLen > 0 && n > maxLen) {
		return false
	}
	if !allowHyphen && strings.Contains(w, "-") {
		return false
	}
	return letters.MatchString(w)
}

var verbishEndings = []string{
	"ent", "ons", "ez", "ais", "ait", "ions", "iez", "aient",
	"erai", "eras", "era", "eront", "erez", "erais", "erait", "erions", "eriez", "eraient",
	"irai", "iras", "ira", "irons", "irez", "irais", "irait", "irions", "iriez", "iraient",
	"ai", "as", "a", "âmes", "âtes", "èrent", "is", "it", "îmes", "îtes", "irent",
}

// looksConjugatedVerb flags long words ending like a conjugated French verb.
func looksConjugatedVerb(w string) bool {
	if utf8.RuneCountInString(w) < 6 {
		return false
	}
	for _, e := range verbishEndings {
		if strings.HasSuffix(w, e) {
			return true
		}
	}
	return false
}

func isInfinitive(w string) bool {
	return strings.HasSuffix(w, "er") || strings.HasSuffix(w, "ir") || strings.HasSuffix(w, "re")
}
