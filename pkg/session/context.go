// Package session holds per-conversation state: bounded exchange history,
// shown products, extracted preferences and the follow-up resolution used
// to ground pronouns like "it" in a prior turn.
package session

import (
	"strings"
	"sync"
	"time"

	"ai-support-be/pkg/catalog"
)

// Phase tracks where the conversation is, derived from recorded intents.
type Phase string

const (
	PhaseInitial         Phase = "initial"
	PhaseBrowsing        Phase = "browsing"
	PhaseComparing       Phase = "comparing"
	PhaseTroubleshooting Phase = "troubleshooting"
)

// HistoryLimit bounds the exchange ring buffer per session.
const HistoryLimit = 10

// Exchange is one user/bot turn pair.
type Exchange struct {
	UserText      string
	BotText       string
	Intent        string
	ProductsShown []catalog.Ref
	Timestamp     time.Time
}

// FollowUp is the resolved referent of a pronoun or short answer. When
// IsAnswer is set the query was a direct reply to the bot's last question
// and AnswerText carries it verbatim; the caller should reason over it
// instead of re-running retrieval.
type FollowUp struct {
	Referents  []catalog.Ref
	Group      string
	IsAnswer   bool
	AnswerText string
}

// PendingVerification is an outstanding identity challenge from the order
// service, threaded through until the customer completes it.
type PendingVerification struct {
	OrderNumber string
	Challenge   string
	IssuedAt    time.Time
}

// Context is the state of one conversation. All mutation goes through its
// methods, which serialize writers with the embedded mutex.
type Context struct {
	mu sync.Mutex

	ID           string
	History      []Exchange
	Mentioned    map[string]bool // every product id ever shown
	LastProducts []catalog.Ref   // most recent shown, in rank order
	LastGroup    string
	Preferences  map[string]string
	Phase        Phase
	LastIntent   string
	Pending      *PendingVerification
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NewContext creates an empty conversation context. Most callers go
// through Store.GetOrCreate instead.
func NewContext(id string) *Context {
	now := time.Now()
	return &Context{
		ID:          id,
		Mentioned:   make(map[string]bool),
		Preferences: make(map[string]string),
		Phase:       PhaseInitial,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// RecordExchange appends a turn, evicting the oldest once the history bound
// is reached, and folds the turn's products, preferences and phase into the
// running state.
func (c *Context) RecordExchange(userText, botText, intent string, shown []catalog.Ref) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.History = append(c.History, Exchange{
		UserText:      userText,
		BotText:       botText,
		Intent:        intent,
		ProductsShown: shown,
		Timestamp:     time.Now(),
	})
	if len(c.History) > HistoryLimit {
		c.History = c.History[len(c.History)-HistoryLimit:]
	}

	if len(shown) > 0 {
		c.LastProducts = append([]catalog.Ref(nil), shown...)
		c.LastGroup = shown[0].Group
		for _, ref := range shown {
			c.Mentioned[ref.ID] = true
		}
	}

	for key, value := range ExtractPreferences(userText) {
		c.Preferences[key] = value
	}

	if next := phaseForIntent(intent); next != "" {
		c.Phase = next
	}
	c.LastIntent = intent
	c.UpdatedAt = time.Now()
}

// SetPending installs or clears the order-verification challenge.
func (c *Context) SetPending(p *PendingVerification) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Pending = p
	c.UpdatedAt = time.Now()
}

// HasPending reports whether a verification challenge is outstanding.
func (c *Context) HasPending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.Pending != nil
}

// PendingChallenge returns a copy of the outstanding challenge, or nil.
func (c *Context) PendingChallenge() *PendingVerification {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Pending == nil {
		return nil
	}
	p := *c.Pending
	return &p
}

// LastBotText returns the bot's most recent reply, or "".
func (c *Context) LastBotText() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.History) == 0 {
		return ""
	}
	return c.History[len(c.History)-1].BotText
}

// Snapshot returns copies of the fields retrieval and response assembly
// read, so callers never hold live references into the context.
func (c *Context) Snapshot() (products []catalog.Ref, group string, prefs map[string]string, phase Phase) {
	c.mu.Lock()
	defer c.mu.Unlock()
	products = append([]catalog.Ref(nil), c.LastProducts...)
	prefs = make(map[string]string, len(c.Preferences))
	for k, v := range c.Preferences {
		prefs[k] = v
	}
	return products, c.LastGroup, prefs, c.Phase
}

// ResolveFollowUp inspects the query against this context. Pure with
// respect to state: calling it twice with the same state and query yields
// equal results.
func (c *Context) ResolveFollowUp(rawQuery string) *FollowUp {
	c.mu.Lock()
	defer c.mu.Unlock()

	cleaned := strings.ToLower(strings.TrimSpace(rawQuery))
	if cleaned == "" {
		return nil
	}

	if c.isAnswerToLastQuestion(cleaned) {
		return &FollowUp{IsAnswer: true, AnswerText: strings.TrimSpace(rawQuery)}
	}

	if !hasPronounIndicator(cleaned) {
		return nil
	}
	if len(c.LastProducts) == 0 && c.LastGroup == "" {
		return nil
	}
	return &FollowUp{
		Referents: append([]catalog.Ref(nil), c.LastProducts...),
		Group:     c.LastGroup,
	}
}

// isAnswerToLastQuestion applies the short-answer heuristic: the bot's last
// message asked a question and the reply is at most two tokens drawn from
// the answer vocabulary. Known trade-off: a short unrelated reply that
// happens to contain a vocabulary word is treated as an answer too.
func (c *Context) isAnswerToLastQuestion(cleaned string) bool {
	if len(c.History) == 0 {
		return false
	}
	if !strings.Contains(c.History[len(c.History)-1].BotText, "?") {
		return false
	}
	tokens := strings.Fields(cleaned)
	if len(tokens) == 0 || len(tokens) > 2 {
		return false
	}
	for _, tok := range tokens {
		if answerVocabulary[strings.Trim(tok, ".,!?")] {
			return true
		}
	}
	return false
}

var pronounTokens = map[string]bool{
	"it": true, "that": true, "this": true, "those": true, "these": true,
	"them": true, "they": true, "one": true,
}

var pronounPhrases = []string{
	"what about", "how about", "tell me more", "more about", "this one",
	"that one", "the first", "the second", "the last", "which of",
}

func hasPronounIndicator(cleaned string) bool {
	for _, tok := range strings.Fields(cleaned) {
		if pronounTokens[strings.Trim(tok, ".,!?")] {
			return true
		}
	}
	for _, phrase := range pronounPhrases {
		if strings.Contains(cleaned, phrase) {
			return true
		}
	}
	return false
}

// answerVocabulary is the word list a short reply must hit to count as
// answering the bot's last question.
var answerVocabulary = map[string]bool{
	"concentrate": true, "concentrates": true, "wax": true, "dab": true,
	"dabs": true, "oil": true, "flower": true, "herb": true, "herbs": true,
	"dry": true, "both": true, "either": true, "neither": true,
	"yes": true, "yeah": true, "yep": true, "no": true, "nope": true,
	"beginner": true, "advanced": true, "portable": true, "desktop": true,
	"first": true, "second": true, "smaller": true, "bigger": true,
	"cheaper": true, "clothing": true, "jars": true, "glass": true,
}

// preferenceRules is the fixed keyword to preference-key mapping applied to
// every user utterance.
var preferenceRules = []struct {
	Keywords []string
	Key      string
	Value    string
}{
	{[]string{"beginner", "new to", "first time", "never used"}, "experience_level", "beginner"},
	{[]string{"advanced", "experienced", "veteran"}, "experience_level", "advanced"},
	{[]string{"portable", "on the go", "travel"}, "form_factor", "portable"},
	{[]string{"desktop", "at home"}, "form_factor", "desktop"},
	{[]string{"discreet", "stealth", "low profile"}, "form_factor", "discreet"},
	{[]string{"flavor", "taste", "terps", "terpenes"}, "priority", "flavor"},
	{[]string{"clouds", "big hits", "vapor production"}, "priority", "vapor_production"},
	{[]string{"budget", "cheap", "affordable", "inexpensive"}, "priority", "value"},
	{[]string{"concentrate", "concentrates", "wax", "dab", "rosin"}, "material", "concentrate"},
	{[]string{"dry herb", "flower", "bud"}, "material", "dry_herb"},
}

// ExtractPreferences scans an utterance for preference keywords. Later
// rules overwrite earlier ones for the same key within one utterance.
func ExtractPreferences(userText string) map[string]string {
	cleaned := strings.ToLower(userText)
	out := make(map[string]string)
	for _, rule := range preferenceRules {
		for _, kw := range rule.Keywords {
			if strings.Contains(cleaned, kw) {
				out[rule.Key] = rule.Value
				break
			}
		}
	}
	return out
}

func phaseForIntent(intent string) Phase {
	switch intent {
	case "comparison":
		return PhaseComparing
	case "troubleshooting", "support", "warranty", "return":
		return PhaseTroubleshooting
	case "product_info", "shopping", "rag", "quick_answer":
		return PhaseBrowsing
	}
	return ""
}
