// Package router classifies a normalized query into a route via a strict
// priority cascade. The cascade is an ordered list of (predicate, handler)
// pairs: the first rule whose predicate matches wins and everything below
// it is skipped. Later rules are intentionally broad, so the ordering is
// the safety property here, not an optimization.
package router

import (
	"fmt"
	"log"
	"regexp"
	"strings"

	"ai-support-be/pkg/query"
	"ai-support-be/pkg/session"
)

// Route tags the handling strategy for a query.
type Route string

const (
	RouteVerification    Route = "verification"
	RouteModerated       Route = "moderated"
	RouteImageRequest    Route = "image_request"
	RouteQuickAnswer     Route = "quick_answer"
	RouteCustomerService Route = "customer_service"
	RouteCompetitor      Route = "competitor_mention"
	RouteTroubleshooting Route = "troubleshooting"
	RouteHowTo           Route = "how_to"
	RouteWarranty        Route = "warranty"
	RouteReturn          Route = "return"
	RouteOrder           Route = "order"
	RouteCompanyInfo     Route = "company_info"
	RouteComparison      Route = "comparison"
	RouteCatalog         Route = "rag"
	RouteGeneral         Route = "general"
)

// Decision is the cascade's output. Data carries the canned response for
// cached routes, or the extracted order number for the order route.
type Decision struct {
	Route           Route
	Data            string
	Reasoning       string
	CatalogAdjacent bool // general route only: query smelled product-ish
}

// Input bundles what every rule may inspect. Session may be nil on the
// first turn of a conversation.
type Input struct {
	Query   *query.Normalized
	Session *session.Context
}

// Rule is one cascade step.
type Rule struct {
	Name    string
	Matches func(in *Input) bool
	Decide  func(in *Input) *Decision
}

// Router evaluates the cascade.
type Router struct {
	rules  []Rule
	logger *log.Logger
}

func New(logger *log.Logger) *Router {
	r := &Router{logger: logger}
	r.rules = buildRules()
	return r
}

// Rules exposes the ordered cascade, so the priority ordering itself can be
// inspected and tested.
func (r *Router) Rules() []Rule {
	return r.rules
}

// Route classifies the query. Never returns nil: the final fallback rule
// matches everything.
func (r *Router) Route(q *query.Normalized, sess *session.Context) *Decision {
	in := &Input{Query: q, Session: sess}
	for _, rule := range r.rules {
		if !rule.Matches(in) {
			continue
		}
		d := rule.Decide(in)
		r.logger.Printf("[ROUTER] %q -> %s (%s)", truncate(q.Original, 60), d.Route, rule.Name)
		return d
	}
	// Unreachable: the fallback rule always matches.
	return &Decision{Route: RouteGeneral, Reasoning: "no rule matched"}
}

var bareOrderNumber = regexp.MustCompile(`^#?\d{5,7}$`)

func buildRules() []Rule {
	return []Rule{
		{
			Name: "pending_verification",
			Matches: func(in *Input) bool {
				return in.Session != nil && in.Session.HasPending()
			},
			Decide: func(in *Input) *Decision {
				return &Decision{
					Route:     RouteVerification,
					Reasoning: "session has an outstanding verification challenge",
				}
			},
		},
		{
			Name: "moderation",
			Matches: func(in *Input) bool {
				return matchAny(in.Query.Cleaned, moderationPatterns) != ""
			},
			Decide: func(in *Input) *Decision {
				hit := matchAny(in.Query.Cleaned, moderationPatterns)
				return &Decision{
					Route:     RouteModerated,
					Data:      moderationResponse,
					Reasoning: fmt.Sprintf("disallowed-content pattern %q", hit),
				}
			},
		},
		{
			Name: "image_request",
			Matches: func(in *Input) bool {
				return matchAny(in.Query.Cleaned, imageRequestPhrases) != ""
			},
			Decide: func(in *Input) *Decision {
				return &Decision{
					Route:     RouteImageRequest,
					Data:      imageRedirectResponse,
					Reasoning: "reads like an image-generation prompt",
				}
			},
		},
		{
			Name: "quick_answer",
			Matches: func(in *Input) bool {
				return matchCached(in.Query.Cleaned, quickAnswers) != nil
			},
			Decide: func(in *Input) *Decision {
				hit := matchCached(in.Query.Cleaned, quickAnswers)
				return &Decision{
					Route:     RouteQuickAnswer,
					Data:      hit.Response,
					Reasoning: "quick-answer cache hit: " + hit.Name,
				}
			},
		},
		{
			Name: "customer_service",
			Matches: func(in *Input) bool {
				return matchCached(in.Query.Cleaned, serviceIssues) != nil
			},
			Decide: func(in *Input) *Decision {
				hit := matchCached(in.Query.Cleaned, serviceIssues)
				return &Decision{
					Route:     RouteCustomerService,
					Data:      hit.Response,
					Reasoning: "customer-service cache hit: " + hit.Name,
				}
			},
		},
		{
			Name: "competitor_mention",
			Matches: func(in *Input) bool {
				return matchAny(in.Query.Cleaned, competitorBrands) != ""
			},
			Decide: func(in *Input) *Decision {
				hit := matchAny(in.Query.Cleaned, competitorBrands)
				return &Decision{
					Route:     RouteCompetitor,
					Data:      competitorResponse,
					Reasoning: fmt.Sprintf("competitor brand %q mentioned", strings.TrimSpace(hit)),
				}
			},
		},
		{
			Name: "troubleshooting",
			Matches: func(in *Input) bool {
				if !in.Query.Has(query.HintTroubleshooting) {
					return false
				}
				// "broken" next to shipping vocabulary is an order issue.
				if matchAny(in.Query.Cleaned, shippingConflictWords) != "" {
					return false
				}
				return matchAny(in.Query.Cleaned, creativeWords) == ""
			},
			Decide: func(in *Input) *Decision {
				return &Decision{
					Route:     RouteTroubleshooting,
					Reasoning: "problem-symptom vocabulary without shipping or creative context",
				}
			},
		},
		{
			Name: "how_to",
			Matches: func(in *Input) bool {
				return in.Query.Has(query.HintHowTo)
			},
			Decide: func(in *Input) *Decision {
				return &Decision{Route: RouteHowTo, Reasoning: "instructional vocabulary"}
			},
		},
		{
			Name: "warranty",
			Matches: func(in *Input) bool {
				return matchAny(in.Query.Cleaned, warrantyWords) != ""
			},
			Decide: func(in *Input) *Decision {
				return &Decision{
					Route:     RouteWarranty,
					Data:      supportInfo["warranty"],
					Reasoning: "warranty vocabulary",
				}
			},
		},
		{
			Name: "return",
			Matches: func(in *Input) bool {
				return matchAny(in.Query.Cleaned, returnWords) != ""
			},
			Decide: func(in *Input) *Decision {
				return &Decision{
					Route:     RouteReturn,
					Data:      supportInfo["return"],
					Reasoning: "return/refund vocabulary",
				}
			},
		},
		{
			Name: "order",
			Matches: func(in *Input) bool {
				if bareOrderNumber.MatchString(strings.TrimSpace(in.Query.Cleaned)) {
					return true
				}
				return matchAny(in.Query.Cleaned, orderWords) != ""
			},
			Decide: func(in *Input) *Decision {
				d := &Decision{Route: RouteOrder, Reasoning: "order-status vocabulary"}
				if num := strings.TrimPrefix(strings.TrimSpace(in.Query.Cleaned), "#"); bareOrderNumber.MatchString(strings.TrimSpace(in.Query.Cleaned)) {
					d.Data = num
					d.Reasoning = "bare numeral in order-number range"
				}
				return d
			},
		},
		{
			Name: "company_info",
			Matches: func(in *Input) bool {
				return matchAny(in.Query.Cleaned, companyPhrases) != ""
			},
			Decide: func(in *Input) *Decision {
				return &Decision{
					Route:     RouteCompanyInfo,
					Data:      companyResponse,
					Reasoning: "company-info phrase",
				}
			},
		},
		{
			Name: "catalog",
			Matches: func(in *Input) bool {
				return isCatalogRelevant(in.Query)
			},
			Decide: func(in *Input) *Decision {
				if pair := matchComparison(in.Query.Cleaned); pair != nil {
					return &Decision{
						Route:     RouteComparison,
						Data:      pair.Response,
						Reasoning: "known comparison pair: " + pair.Name,
					}
				}
				if in.Query.Has(query.HintComparison) {
					return &Decision{
						Route:     RouteComparison,
						Reasoning: "comparison phrasing without a known pair",
					}
				}
				return &Decision{Route: RouteCatalog, Reasoning: "catalog-relevant vocabulary"}
			},
		},
		{
			Name: "general_fallback",
			Matches: func(in *Input) bool {
				return true
			},
			Decide: func(in *Input) *Decision {
				return &Decision{
					Route:           RouteGeneral,
					Reasoning:       "no higher-priority rule matched",
					CatalogAdjacent: len(in.Query.Tokens) > 0 && nearCatalog(in.Query),
				}
			},
		},
	}
}

func isCatalogRelevant(q *query.Normalized) bool {
	if q.Family != "" || q.Material != query.MaterialNone || q.Category != "" || q.URL != "" {
		return true
	}
	if q.Has(query.HintShopping) || q.Has(query.HintComparison) {
		return true
	}
	return hasProductToken(q)
}

// hasProductToken requires a whole-token match. Short vocabulary entries
// like "hat" or "mod" must not fire on substrings of unrelated words
// ("what", "model").
func hasProductToken(q *query.Normalized) bool {
	for _, tok := range q.Tokens {
		for _, w := range productWords {
			if tok == w {
				return true
			}
		}
	}
	return false
}

// nearCatalog is deliberately looser than the catalog gate: a product word
// inside a token ("vaping", "vaporize") counts. Queries that reach the
// fallback can therefore still get the nudge-back-to-catalog tone.
func nearCatalog(q *query.Normalized) bool {
	for _, tok := range q.Tokens {
		for _, w := range productWords {
			if strings.Contains(tok, w) {
				return true
			}
		}
	}
	return false
}

func matchAny(cleaned string, patterns []string) string {
	for _, p := range patterns {
		if strings.Contains(cleaned, p) {
			return p
		}
	}
	return ""
}

func matchCached(cleaned string, table []CachedAnswer) *CachedAnswer {
	for i := range table {
		for _, kw := range table[i].Keywords {
			if strings.Contains(cleaned, kw) {
				return &table[i]
			}
		}
	}
	return nil
}

func matchComparison(cleaned string) *ComparisonPair {
	for i := range comparisonPairs {
		for _, group := range comparisonPairs[i].Keywords {
			all := true
			for _, kw := range group {
				if !strings.Contains(cleaned, kw) {
					all = false
					break
				}
			}
			if all {
				return &comparisonPairs[i]
			}
		}
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
