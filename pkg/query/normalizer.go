// Package query turns raw user text into a normalized form the router and
// retrieval engine consume. Normalization is pure: same input, same output,
// no session state involved.
package query

import (
	"regexp"
	"strings"

	"ai-support-be/pkg/catalog"
)

// Material is what the user wants to vaporize, when detectable.
type Material string

const (
	MaterialNone        Material = ""
	MaterialConcentrate Material = "concentrate"
	MaterialDryHerb     Material = "dry_herb"
	MaterialBoth        Material = "both"
)

// Hint is a soft intent signal surfaced by the normalizer. The router makes
// the final call; hints only bias it.
type Hint string

const (
	HintTroubleshooting Hint = "troubleshooting"
	HintHowTo           Hint = "how_to"
	HintComparison      Hint = "comparison"
	HintShopping        Hint = "shopping"
)

// Normalized is the canonical form of one user message.
type Normalized struct {
	Original string
	Cleaned  string   // lower-cased, whitespace-collapsed
	Tokens   []string // stop-words removed
	URL      string   // first embedded catalog URL, if any
	Family   string   // product family tag, e.g. "v5_xl"
	Material Material
	Category string // coarse category filter: clothing, jars, glass, batteries
	Hints    map[Hint]bool
}

func (n *Normalized) Has(h Hint) bool { return n.Hints[h] }

var urlPattern = regexp.MustCompile(`https?://[^\s<>"]+`)

var stopWords = map[string]bool{
	"a": true, "an": true, "the": true, "is": true, "are": true, "was": true,
	"do": true, "does": true, "did": true, "can": true, "could": true,
	"i": true, "my": true, "me": true, "you": true, "your": true, "it": true,
	"to": true, "for": true, "of": true, "in": true, "on": true, "at": true,
	"and": true, "or": true, "with": true, "about": true, "have": true,
	"what": true, "whats": true, "please": true, "hi": true, "hello": true,
	"hey": true, "there": true, "some": true, "any": true, "this": true,
	"that": true, "get": true, "got": true, "want": true, "would": true,
	"like": true, "just": true, "so": true, "be": true, "am": true,
}

// familyAliases maps surface spellings to family tags. Order matters: the
// more specific alias must win, so "v5 xl" is tried before "v5".
var familyAliases = []struct {
	Alias  string
	Family string
}{
	{"v5 xl", "v5_xl"},
	{"v5xl", "v5_xl"},
	{"dtv5 xl", "v5_xl"},
	{"v5", "v5"},
	{"dtv5", "v5"},
	{"core 2", "core_2"}, // also matches "core 2.0" once punctuation is stripped
	{"core2", "core_2"},
	{"core", "core"},
	{"ruby twist", "ruby_twist"},
	{"nice dreamz", "nice_dreamz"},
	{"cub", "cub"},
}

var concentrateWords = []string{
	"concentrate", "concentrates", "wax", "dab", "dabs", "dabbing",
	"extract", "extracts", "rosin", "shatter", "oil",
}

var dryHerbWords = []string{
	"dry herb", "dry-herb", "flower", "herb", "herbs", "bud", "ground material",
}

// categoryKeywords maps the coarse storefront categories to trigger words.
// Declared in match order.
var categoryKeywords = []struct {
	Category string
	Words    []string
}{
	{"clothing", []string{"hoodie", "hoodies", "shirt", "shirts", "tee", "t-shirt", "hat", "hats", "beanie", "apparel", "clothing", "clothes", "merch", "sweatshirt"}},
	{"jars", []string{"jar", "jars", "container", "containers", "stash", "storage"}},
	{"glass", []string{"bubbler", "bubblers", "hydratube", "hydratubes", "water attachment", "glass", "globe"}},
	{"batteries", []string{"battery", "batteries", "mod", "box mod", "charger", "18650", "21700"}},
}

var troubleshootingWords = []string{
	"broken", "broke", "not working", "doesn't work", "dont work", "won't",
	"wont", "stopped working", "no vapor", "burnt", "burning taste",
	"tastes burnt", "leaking", "leaks", "stuck", "error", "problem",
	"issue", "defect", "won't heat", "not heating", "no heat", "resistance",
	"ohm", "ohms", "short", "rattle", "cracked", "clogged", "fix",
}

var howToWords = []string{
	"how do i", "how to", "how should", "setup", "set up", "instructions",
	"guide", "clean", "cleaning", "maintain", "temperature setting",
	"what temp", "settings", "tcr", "wattage", "load", "pack",
}

var comparisonWords = []string{
	" vs ", " vs.", "versus", "difference between", "compare", "comparison",
	"which is better", "better than", "which one", "or the",
}

var shoppingWords = []string{
	"buy", "purchase", "price", "cost", "how much", "recommend",
	"recommendation", "looking for", "need a", "want a", "shopping",
	"in stock", "available", "gift", "sale", "discount",
}

// Normalize produces the canonical form of raw user text.
func Normalize(raw string) *Normalized {
	n := &Normalized{
		Original: raw,
		Hints:    make(map[Hint]bool),
	}

	cleaned := strings.ToLower(strings.TrimSpace(raw))
	if url := urlPattern.FindString(cleaned); url != "" {
		n.URL = strings.TrimRight(url, ".,;:!?)")
		cleaned = strings.Replace(cleaned, url, " ", 1)
	}
	cleaned = strings.Join(strings.Fields(cleaned), " ")
	n.Cleaned = cleaned

	for _, tok := range catalog.Tokenize(cleaned) {
		if !stopWords[tok] {
			n.Tokens = append(n.Tokens, tok)
		}
	}

	n.Family = matchFamily(cleaned)
	n.Material = matchMaterial(cleaned)
	n.Category = matchCategory(cleaned)

	if containsAny(cleaned, troubleshootingWords) {
		n.Hints[HintTroubleshooting] = true
	}
	if containsAny(cleaned, howToWords) {
		n.Hints[HintHowTo] = true
	}
	if containsAny(cleaned, comparisonWords) {
		n.Hints[HintComparison] = true
	}
	if containsAny(cleaned, shoppingWords) {
		n.Hints[HintShopping] = true
	}

	return n
}

// boundaryForm strips punctuation (keeping dots inside version numbers) so
// word-boundary matching works on text like "the v5?" or "core 2.0!".
func boundaryForm(cleaned string) string {
	var b strings.Builder
	b.WriteByte(' ')
	for _, r := range cleaned {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteByte(' ')
		}
	}
	b.WriteByte(' ')
	return b.String()
}

func matchFamily(cleaned string) string {
	padded := boundaryForm(cleaned)
	for _, fa := range familyAliases {
		if strings.Contains(padded, " "+fa.Alias+" ") {
			return fa.Family
		}
	}
	return ""
}

func matchMaterial(cleaned string) Material {
	conc := containsAny(cleaned, concentrateWords)
	herb := containsAny(cleaned, dryHerbWords)
	switch {
	case conc && herb:
		return MaterialBoth
	case conc:
		return MaterialConcentrate
	case herb:
		return MaterialDryHerb
	}
	return MaterialNone
}

func matchCategory(cleaned string) string {
	padded := boundaryForm(cleaned)
	for _, ck := range categoryKeywords {
		for _, w := range ck.Words {
			if strings.Contains(w, " ") {
				if strings.Contains(cleaned, w) {
					return ck.Category
				}
			} else if strings.Contains(padded, " "+w+" ") {
				return ck.Category
			}
		}
	}
	return ""
}

func containsAny(text string, words []string) bool {
	for _, w := range words {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}
