package catalog

import "strings"

// SynonymTable maps a token to the other tokens the storefront's customers
// use interchangeably with it. Expansion is symmetric: if "bubbler" expands
// to "hydratube", then "hydratube" expands to "bubbler".
type SynonymTable map[string][]string

// DefaultSynonyms covers the vocabulary seen in real support chats. Entries
// are declared one way and made symmetric by NewSynonymTable.
var DefaultSynonyms = SynonymTable{
	"bubbler":     {"hydratube", "water attachment", "water pipe", "hydrotube"},
	"atomizer":    {"heater", "coil", "deck"},
	"concentrate": {"wax", "dab", "dabs", "extract", "oil", "rosin", "shatter"},
	"herb":        {"flower", "bud", "dry herb"},
	"battery":     {"mod", "box mod", "power supply"},
	"jar":         {"container", "stash", "storage"},
	"hoodie":      {"sweatshirt", "sweater"},
	"shirt":       {"tee", "t-shirt", "tshirt"},
	"glass":       {"globe", "dome"},
	"mouthpiece":  {"mp", "tip"},
	"bowl":        {"cup", "crucible", "dish"},
	"screen":      {"mesh", "filter"},
	"vaporizer":   {"vape", "vaping", "vaporiser"},
	"temperature": {"temp", "heat setting"},
}

// pluralForms holds irregular plural pairs the naive trim rules miss.
var pluralForms = map[string]string{
	"batteries":    "battery",
	"accessories":  "accessory",
	"glasses":      "glass",
	"torches":      "torch",
	"brushes":      "brush",
	"hoodies":      "hoodie",
	"supplies":     "supply",
	"concentrates": "concentrate",
}

// NewSynonymTable builds a symmetric closure of the declared table: every
// term in a group expands to every other term in that group.
func NewSynonymTable(seed SynonymTable) SynonymTable {
	groups := make(map[string][]string)
	for head, alts := range seed {
		group := append([]string{head}, alts...)
		for _, term := range group {
			groups[term] = group
		}
	}
	out := make(SynonymTable, len(groups))
	for term, group := range groups {
		for _, other := range group {
			if other != term {
				out[term] = append(out[term], other)
			}
		}
	}
	return out
}

// Expand returns the token plus all synonyms and singular/plural variants.
// The input token is always first so direct matches keep priority.
func (t SynonymTable) Expand(token string) []string {
	seen := map[string]bool{token: true}
	out := []string{token}
	add := func(term string) {
		if term != "" && !seen[term] {
			seen[term] = true
			out = append(out, term)
		}
	}
	for _, v := range variants(token) {
		add(v)
	}
	for _, base := range append([]string{token}, variants(token)...) {
		for _, syn := range t[base] {
			add(syn)
			for _, v := range variants(syn) {
				add(v)
			}
		}
	}
	return out
}

// variants returns singular/plural spellings of a token.
func variants(token string) []string {
	var out []string
	if singular, ok := pluralForms[token]; ok {
		out = append(out, singular)
	}
	for plural, singular := range pluralForms {
		if singular == token {
			out = append(out, plural)
		}
	}
	switch {
	case strings.HasSuffix(token, "es") && len(token) > 3:
		out = append(out, strings.TrimSuffix(token, "es"), strings.TrimSuffix(token, "s"))
	case strings.HasSuffix(token, "s") && len(token) > 2:
		out = append(out, strings.TrimSuffix(token, "s"))
	default:
		out = append(out, token+"s")
	}
	return out
}
