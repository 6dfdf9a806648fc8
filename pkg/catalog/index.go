package catalog

import (
	"strings"
	"sync/atomic"
	"unicode"
)

// Snapshot is one immutable view of the catalog. Readers obtained it from
// Index.Snapshot and may use it for a whole request without locking; a
// concurrent reload never mutates it.
type Snapshot struct {
	Entries  []Entry
	byID     map[string]int      // entry id -> position in Entries (insertion order)
	keywords map[string][]int    // token or token n-gram -> entry positions
	groups   map[string][]int    // group name -> entry positions
	synonyms SynonymTable
}

// Index holds the current catalog snapshot and swaps it atomically on
// reload. In-flight requests keep reading the snapshot they started with.
type Index struct {
	snap     atomic.Pointer[Snapshot]
	synonyms SynonymTable
}

func NewIndex(entries []Entry, synonyms SynonymTable) *Index {
	if synonyms == nil {
		synonyms = NewSynonymTable(DefaultSynonyms)
	}
	idx := &Index{synonyms: synonyms}
	idx.Reload(entries)
	return idx
}

// Reload builds a fresh snapshot from the given entries and publishes it.
func (i *Index) Reload(entries []Entry) {
	snap := buildSnapshot(entries)
	snap.synonyms = i.synonyms
	i.snap.Store(snap)
}

// Snapshot returns the current immutable catalog view.
func (i *Index) Snapshot() *Snapshot {
	return i.snap.Load()
}

func buildSnapshot(entries []Entry) *Snapshot {
	snap := &Snapshot{
		Entries:  entries,
		byID:     make(map[string]int, len(entries)),
		keywords: make(map[string][]int),
		groups:   make(map[string][]int),
	}
	for pos := range entries {
		e := &entries[pos]
		snap.byID[e.ID] = pos
		snap.groups[e.Group] = append(snap.groups[e.Group], pos)
		for _, key := range indexKeys(e) {
			snap.addKeyword(key, pos)
		}
	}
	return snap
}

func (s *Snapshot) addKeyword(key string, pos int) {
	for _, existing := range s.keywords[key] {
		if existing == pos {
			return
		}
	}
	s.keywords[key] = append(s.keywords[key], pos)
}

// indexKeys yields the lookup keys one entry is reachable under: every
// token of its name, group and description, plus adjacent name-token pairs
// so two-word lookups like "water pipe" resolve directly.
func indexKeys(e *Entry) []string {
	var keys []string
	nameTokens := Tokenize(e.Name)
	keys = append(keys, nameTokens...)
	for i := 0; i+1 < len(nameTokens); i++ {
		keys = append(keys, nameTokens[i]+" "+nameTokens[i+1])
	}
	keys = append(keys, Tokenize(strings.ReplaceAll(e.Group, "_", " "))...)
	keys = append(keys, string(e.Category))
	keys = append(keys, Tokenize(e.Description)...)
	return keys
}

// Lookup returns the positions indexed under the exact key, in catalog
// insertion order.
func (s *Snapshot) Lookup(key string) []int {
	return s.keywords[key]
}

// Group returns the positions of all entries in a merchandising group.
func (s *Snapshot) Group(name string) []int {
	return s.groups[name]
}

// GroupsMatching returns positions of entries whose group name contains the
// given fragment, e.g. "clothing" matches "hemp_clothing".
func (s *Snapshot) GroupsMatching(fragment string) []int {
	var out []int
	for pos := range s.Entries {
		if strings.Contains(s.Entries[pos].Group, fragment) {
			out = append(out, pos)
		}
	}
	return out
}

// ByID returns the entry with the given id, or nil.
func (s *Snapshot) ByID(id string) *Entry {
	if pos, ok := s.byID[id]; ok {
		return &s.Entries[pos]
	}
	return nil
}

// ByName returns the first entry whose name matches case-insensitively.
func (s *Snapshot) ByName(name string) *Entry {
	for pos := range s.Entries {
		if strings.EqualFold(s.Entries[pos].Name, name) {
			return &s.Entries[pos]
		}
	}
	return nil
}

// Position reports the insertion-order position of an entry id. Used as the
// stable tie-break when scores are equal.
func (s *Snapshot) Position(id string) int {
	if pos, ok := s.byID[id]; ok {
		return pos
	}
	return len(s.Entries)
}

// Synonyms exposes the synonym table bound to this snapshot.
func (s *Snapshot) Synonyms() SynonymTable {
	return s.synonyms
}

// Tokenize lower-cases text and splits it into alphanumeric tokens of at
// least two characters. Shared by index construction and query handling so
// both sides agree on token boundaries.
func Tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	out := fields[:0]
	for _, f := range fields {
		if len(f) >= 2 {
			out = append(out, f)
		}
	}
	return out
}
