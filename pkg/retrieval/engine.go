// Package retrieval ranks catalog entries for a normalized query. The
// pipeline runs three candidate-generation stages in order (direct keyword
// lookup, flagship shortcut, hybrid semantic+lexical), stopping at the
// first stage that produces candidates, then always deduplicates, reranks
// and filters before returning. A query that matches nothing returns an
// empty list, never an error.
package retrieval

import (
	"context"
	"log"
	"sort"
	"strings"

	"ai-support-be/pkg/catalog"
	"ai-support-be/pkg/query"
)

// Config carries the scoring constants. The absolute numbers are tunable;
// what matters is the ordering they induce: flagship kits above exact name
// matches, name matches above category matches, category above
// description-only, and replacement parts below everything unless parts
// are explicitly requested.
type Config struct {
	TopK int

	DirectHitScore float64

	NameWordScore      float64
	NameSubstringScore float64
	CategoryScore      float64
	DescriptionScore   float64
	FullPhraseScore    float64
	SemanticWeight     float64

	CategoryBoost      float64
	DevicePenalty      float64
	FlagshipBoost      float64
	FlagshipStep       float64
	ReplacementPenalty float64
}

func DefaultConfig() Config {
	return Config{
		TopK:               5,
		DirectHitScore:     1000,
		NameWordScore:      200,
		NameSubstringScore: 150,
		CategoryScore:      120,
		DescriptionScore:   50,
		FullPhraseScore:    500,
		SemanticWeight:     100,
		CategoryBoost:      20000,
		DevicePenalty:      10000,
		FlagshipBoost:      15000,
		FlagshipStep:       1000,
		ReplacementPenalty: 5000,
	}
}

// SessionHint is the slice of session state retrieval may use: the group
// the conversation was last about and any accumulated preferences.
type SessionHint struct {
	LastGroup   string
	Preferences map[string]string
}

// flagshipKits lists the complete kits in the order they should surface
// for broad "what should I buy" queries. Position is priority.
var flagshipKits = []string{
	"V5 XL",
	"Core 2.0 Deluxe",
	"V5",
	"Ruby Twist",
	"Nice Dreamz",
	"Cub",
}

// flagshipPatterns map broad storefront queries straight to the flagship
// list so incidental keyword noise can never outrank the main kits.
var flagshipPatterns = []string{
	"what do you sell", "what do you offer", "what products",
	"best vaporizer", "best device", "most popular", "best seller",
	"flagship", "main products", "starter kit", "full kit",
	"show me everything", "your catalog",
}

// categoryGroupFragments map the normalizer's coarse category filters to
// catalog group-name fragments.
var categoryGroupFragments = map[string]string{
	"clothing":  "clothing",
	"jars":      "jar",
	"glass":     "glass",
	"batteries": "batter",
}

var partsWords = []string{
	"replacement", "replacements", "spare", "spares", "part", "parts",
	"extra", "o-ring", "oring", "gasket", "screen",
}

type candidate struct {
	pos        int
	score      float64
	skipRerank bool
}

// Engine runs the pipeline over the current catalog snapshot.
type Engine struct {
	index    *catalog.Index
	semantic SemanticIndex // may be nil
	cfg      Config
	logger   *log.Logger
}

func NewEngine(index *catalog.Index, semantic SemanticIndex, cfg Config, logger *log.Logger) *Engine {
	if cfg.TopK <= 0 {
		cfg = DefaultConfig()
	}
	return &Engine{index: index, semantic: semantic, cfg: cfg, logger: logger}
}

// Retrieve returns the topK catalog entries for the query, best first.
func (e *Engine) Retrieve(ctx context.Context, q *query.Normalized, topK int, hint SessionHint) []catalog.Entry {
	if topK <= 0 {
		topK = e.cfg.TopK
	}
	snap := e.index.Snapshot()
	if snap == nil || len(snap.Entries) == 0 || q == nil || len(q.Tokens) == 0 {
		return nil
	}

	cands := e.directLookup(snap, q)
	stage := "direct"
	if len(cands) == 0 {
		cands = e.flagshipShortcut(snap, q)
		stage = "flagship"
	}
	if len(cands) == 0 {
		cands = e.hybridSearch(ctx, snap, q)
		stage = "hybrid"
	}
	if len(cands) == 0 {
		return nil
	}

	cands = dedupe(cands)
	e.rerank(snap, q, hint, cands)
	cands = e.accessoryFilter(snap, q, cands)

	// Candidates are in snapshot insertion order here, so the stable sort
	// breaks score ties by catalog load order.
	sort.SliceStable(cands, func(i, j int) bool {
		return cands[i].score > cands[j].score
	})
	if len(cands) > topK {
		cands = cands[:topK]
	}

	out := make([]catalog.Entry, len(cands))
	for i, c := range cands {
		out[i] = snap.Entries[c.pos]
	}
	e.logger.Printf("[RETRIEVAL] stage=%s query=%q results=%d", stage, q.Cleaned, len(out))
	return out
}

// directLookup is stage 1: exact keyword-index hits after synonym and
// plural expansion, plus whole-group pulls for coarse category queries.
func (e *Engine) directLookup(snap *catalog.Snapshot, q *query.Normalized) []candidate {
	positions := make(map[int]bool)

	for _, key := range expandedKeys(snap, q) {
		for _, pos := range snap.Lookup(key) {
			positions[pos] = true
		}
	}

	if q.Category != "" {
		if fragment, ok := categoryGroupFragments[q.Category]; ok {
			for _, pos := range snap.GroupsMatching(fragment) {
				positions[pos] = true
			}
		}
	}

	return toCandidates(positions, e.cfg.DirectHitScore)
}

// expandedKeys yields every index key the query can reach: each token and
// its synonym/plural variants, plus raw n-grams up to four tokens.
func expandedKeys(snap *catalog.Snapshot, q *query.Normalized) []string {
	var keys []string
	syn := snap.Synonyms()
	for _, tok := range q.Tokens {
		keys = append(keys, syn.Expand(tok)...)
	}
	for size := 2; size <= 4; size++ {
		for i := 0; i+size <= len(q.Tokens); i++ {
			keys = append(keys, strings.Join(q.Tokens[i:i+size], " "))
		}
	}
	return keys
}

// flagshipShortcut is stage 2: broad storefront queries map to the
// hand-ordered flagship kits, bypassing scoring.
func (e *Engine) flagshipShortcut(snap *catalog.Snapshot, q *query.Normalized) []candidate {
	matched := false
	for _, p := range flagshipPatterns {
		if strings.Contains(q.Cleaned, p) {
			matched = true
			break
		}
	}
	if !matched {
		return nil
	}

	var cands []candidate
	used := make(map[int]bool)
	score := e.cfg.CategoryBoost * 100 // far above anything rerank produces
	for _, kit := range flagshipKits {
		for pos := range snap.Entries {
			entry := &snap.Entries[pos]
			if used[pos] || (entry.Category != catalog.CategoryMainProduct && entry.Category != catalog.CategoryBundle) {
				continue
			}
			if containsFold(entry.Name, kit) {
				used[pos] = true
				cands = append(cands, candidate{pos: pos, score: score, skipRerank: true})
				score -= e.cfg.FlagshipStep
				break
			}
		}
	}
	return cands
}

// hybridSearch is stage 3: lexical scoring over the whole snapshot plus
// optional embedding similarity. Semantic failures degrade to pure lexical.
func (e *Engine) hybridSearch(ctx context.Context, snap *catalog.Snapshot, q *query.Normalized) []candidate {
	semantic := make(map[string]float64)
	if e.semantic != nil {
		matches, err := e.semantic.Search(ctx, q.Cleaned, e.cfg.TopK*4)
		if err != nil {
			e.logger.Printf("[RETRIEVAL] semantic search unavailable: %v", err)
		} else {
			for _, m := range matches {
				semantic[m.EntryID] = m.Score
			}
		}
	}

	var cands []candidate
	for pos := range snap.Entries {
		entry := &snap.Entries[pos]
		score := e.lexicalScore(entry, q)
		if sim, ok := semantic[entry.ID]; ok {
			score += sim * e.cfg.SemanticWeight
		}
		if score > 0 {
			cands = append(cands, candidate{pos: pos, score: score})
		}
	}
	return cands
}

// lexicalScore rewards, per query token: a word-boundary match in the name,
// else a substring match in the name, a group/category match, and a
// description match; plus a flat bonus when the whole query appears in the
// name.
func (e *Engine) lexicalScore(entry *catalog.Entry, q *query.Normalized) float64 {
	nameLower := strings.ToLower(entry.Name)
	nameWords := make(map[string]bool)
	for _, t := range catalog.Tokenize(entry.Name) {
		nameWords[t] = true
	}
	groupLower := strings.ReplaceAll(entry.Group, "_", " ")
	descLower := strings.ToLower(entry.Description)

	var score float64
	for _, tok := range q.Tokens {
		switch {
		case nameWords[tok]:
			score += e.cfg.NameWordScore
		case strings.Contains(nameLower, tok):
			score += e.cfg.NameSubstringScore
		}
		if strings.Contains(groupLower, tok) || string(entry.Category) == tok {
			score += e.cfg.CategoryScore
		}
		if strings.Contains(descLower, tok) {
			score += e.cfg.DescriptionScore
		}
	}
	if len(q.Tokens) > 1 && strings.Contains(nameLower, q.Cleaned) {
		score += e.cfg.FullPhraseScore
	}
	return score
}

// rerank applies the category-aware boosts and penalties in place.
func (e *Engine) rerank(snap *catalog.Snapshot, q *query.Normalized, hint SessionHint, cands []candidate) {
	fragment := categoryGroupFragments[q.Category]
	parts := wantsParts(q)

	material := q.Material
	if material == query.MaterialNone {
		// Fall back to what the customer told us earlier in the session.
		material = query.Material(hint.Preferences["material"])
	}

	for i := range cands {
		if cands[i].skipRerank {
			continue
		}
		entry := &snap.Entries[cands[i].pos]
		cands[i].score += entry.Boost

		if hint.LastGroup != "" && entry.Group == hint.LastGroup {
			cands[i].score += e.cfg.CategoryScore
		}

		if fragment != "" {
			if strings.Contains(entry.Group, fragment) {
				cands[i].score += e.cfg.CategoryBoost
			} else if entry.Category == catalog.CategoryMainProduct || entry.Category == catalog.CategoryBundle {
				cands[i].score -= e.cfg.DevicePenalty
			}
		}

		if material != query.MaterialNone && fragment == "" {
			for rank, kit := range flagshipKits {
				if containsFold(entry.Name, kit) {
					cands[i].score += e.cfg.FlagshipBoost - float64(rank)*e.cfg.FlagshipStep
					break
				}
			}
		}

		if entry.Category == catalog.CategoryReplacementPart && !parts {
			cands[i].score -= e.cfg.ReplacementPenalty
		}
	}
}

// accessoryFilter drops replacement parts from the final list unless the
// query asked for parts. Non-part entries are never dropped here, so a
// clothing or jar query keeps its whole category regardless of what other
// vocabulary the entry names overlap.
func (e *Engine) accessoryFilter(snap *catalog.Snapshot, q *query.Normalized, cands []candidate) []candidate {
	if wantsParts(q) {
		return cands
	}
	out := cands[:0]
	for _, c := range cands {
		if snap.Entries[c.pos].Category == catalog.CategoryReplacementPart {
			continue
		}
		out = append(out, c)
	}
	return out
}

func wantsParts(q *query.Normalized) bool {
	for _, tok := range q.Tokens {
		for _, w := range partsWords {
			if tok == w {
				return true
			}
		}
	}
	return false
}

// dedupe keeps the highest score per entry position, preserving first-seen
// order.
func dedupe(cands []candidate) []candidate {
	best := make(map[int]int) // pos -> index in out
	var out []candidate
	for _, c := range cands {
		if i, ok := best[c.pos]; ok {
			if c.score > out[i].score {
				out[i].score = c.score
			}
			out[i].skipRerank = out[i].skipRerank || c.skipRerank
			continue
		}
		best[c.pos] = len(out)
		out = append(out, c)
	}
	return out
}

func toCandidates(positions map[int]bool, score float64) []candidate {
	if len(positions) == 0 {
		return nil
	}
	ordered := make([]int, 0, len(positions))
	for pos := range positions {
		ordered = append(ordered, pos)
	}
	sort.Ints(ordered)
	cands := make([]candidate, len(ordered))
	for i, pos := range ordered {
		cands[i] = candidate{pos: pos, score: score}
	}
	return cands
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}
