package worddb

import (
	"regexp"
	"sort"
)

var identifierPattern = regexp.MustCompile(`[A-Za-z_][A-Za-z0-9_]*`)

// DB is a multiset of words, keyed by reference count so a word
// removed from one line but still present on another stays indexed.
// Unique words are kept in sorted order so picker entries can address
// them stably by index.
type DB struct {
	counts map[string]int
	words  []string
}

// New returns an empty word database.
func New() *DB {
	return &DB{counts: make(map[string]int)}
}

// AddLine extracts every identifier-like word from line and increments
// its count.
func (d *DB) AddLine(line string) {
	for _, w := range identifierPattern.FindAllString(line, -1) {
		d.add(w)
	}
}

// RemoveLine extracts every identifier-like word from line and
// decrements its count, dropping the word entirely once it reaches
// zero.
func (d *DB) RemoveLine(line string) {
	for _, w := range identifierPattern.FindAllString(line, -1) {
		d.remove(w)
	}
}

func (d *DB) add(w string) {
	if d.counts[w] == 0 {
		i := sort.SearchStrings(d.words, w)
		d.words = append(d.words, "")
		copy(d.words[i+1:], d.words[i:])
		d.words[i] = w
	}
	d.counts[w]++
}

func (d *DB) remove(w string) {
	c, ok := d.counts[w]
	if !ok {
		return
	}
	if c <= 1 {
		delete(d.counts, w)
		i := sort.SearchStrings(d.words, w)
		if i < len(d.words) && d.words[i] == w {
			d.words = append(d.words[:i], d.words[i+1:]...)
		}
		return
	}
	d.counts[w] = c - 1
}

// Len returns the number of distinct words currently indexed.
func (d *DB) Len() int { return len(d.words) }

// At returns the i'th word in sorted order.
func (d *DB) At(i int) string { return d.words[i] }

// Count returns how many times w currently occurs across all buffers.
func (d *DB) Count(w string) int { return d.counts[w] }

// Words returns a copy of the sorted unique word list.
func (d *DB) Words() []string {
	out := make([]string, len(d.words))
	copy(out, d.words)
	return out
}
