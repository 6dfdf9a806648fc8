// Package respond builds the customer-facing answer from a route decision
// and the retrieval results. The hard rule lives here: only entries the
// retrieval engine actually returned ever reach the generation prompt, so
// the model cannot be led into inventing product names, prices or links.
package respond

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"ai-support-be/pkg/catalog"
	"ai-support-be/pkg/llm"
	"ai-support-be/pkg/session"
)

// NoMatchMessage is the fixed reply when retrieval comes back empty. The
// assistant asks for clarification instead of guessing.
const NoMatchMessage = "I couldn't find a matching product for that. Could you tell me a bit more about what you're looking for? I can help with devices, glass, jars, batteries and clothing."

// PromptContext is the structured input handed to the generation service.
type PromptContext struct {
	Route          string
	Query          string
	Entries        []catalog.Entry // only what retrieval returned, may be empty
	SessionSummary string
}

// Assembler renders answers, delegating prose to the LLM provider and
// falling back to deterministic templates when the call fails or times
// out.
type Assembler struct {
	provider llm.LLMProvider
	timeout  time.Duration
	logger   *log.Logger
}

func NewAssembler(provider llm.LLMProvider, timeout time.Duration, logger *log.Logger) *Assembler {
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &Assembler{provider: provider, timeout: timeout, logger: logger}
}

// BuildContext assembles the prompt context for one turn. The session
// summary carries conversational grounding (phase, preferences, what was
// shown last) but never any product facts beyond the retrieved entries.
func BuildContext(route, queryText string, entries []catalog.Entry, sess *session.Context) PromptContext {
	pc := PromptContext{
		Route:   route,
		Query:   queryText,
		Entries: entries,
	}
	if sess != nil {
		products, group, prefs, phase := sess.Snapshot()
		var b strings.Builder
		fmt.Fprintf(&b, "phase=%s", phase)
		if group != "" {
			fmt.Fprintf(&b, "; last_group=%s", group)
		}
		if len(products) > 0 {
			names := make([]string, 0, len(products))
			for _, p := range products {
				names = append(names, p.Name)
			}
			fmt.Fprintf(&b, "; last_shown=%s", strings.Join(names, ", "))
		}
		for k, v := range prefs {
			fmt.Fprintf(&b, "; %s=%s", k, v)
		}
		pc.SessionSummary = b.String()
	}
	return pc
}

// ProductAnswer renders an answer grounded in the retrieved entries. With
// zero entries it returns the fixed no-match message without calling the
// provider at all.
func (a *Assembler) ProductAnswer(ctx context.Context, pc PromptContext) string {
	if len(pc.Entries) == 0 {
		return NoMatchMessage
	}

	prompt := a.buildProductPrompt(pc)
	text, err := a.generate(ctx, prompt)
	if err != nil {
		a.logger.Printf("[RESPOND] generation failed, using template: %v", err)
		return a.templateAnswer(pc.Entries)
	}
	return text
}

// GeneralAnswer handles the fallback route. catalogAdjacent selects a tone
// that nudges the customer back toward the catalog.
func (a *Assembler) GeneralAnswer(ctx context.Context, pc PromptContext, catalogAdjacent bool) string {
	var b strings.Builder
	b.WriteString("You are a friendly support assistant for a vaporizer hardware storefront. ")
	b.WriteString("Answer briefly and honestly. Do not invent product names, prices or links. ")
	if catalogAdjacent {
		b.WriteString("The question seems related to our products, so offer to look something up in the catalog. ")
	}
	if pc.SessionSummary != "" {
		fmt.Fprintf(&b, "\nConversation context: %s\n", pc.SessionSummary)
	}
	fmt.Fprintf(&b, "\nCustomer: %s\nAssistant:", pc.Query)

	text, err := a.generate(ctx, b.String())
	if err != nil {
		a.logger.Printf("[RESPOND] generation failed, using template: %v", err)
		if catalogAdjacent {
			return "I'm best at questions about our products and orders. Want me to look something up in the catalog for you?"
		}
		return "I'm not sure about that one. I can help with our products, orders and policies though."
	}
	return text
}

// TroubleshootingAnswer grounds a support reply in the symptom text plus
// any referenced products.
func (a *Assembler) TroubleshootingAnswer(ctx context.Context, pc PromptContext) string {
	var b strings.Builder
	b.WriteString("You are a support technician for a vaporizer hardware storefront. ")
	b.WriteString("The customer reports a device problem. Give short, concrete steps: check connections, resistance range, temperature settings, cleaning. ")
	b.WriteString("If the device may be defective, mention the 90-day warranty. Do not invent product specifics.\n")
	a.writeEntries(&b, pc.Entries)
	if pc.SessionSummary != "" {
		fmt.Fprintf(&b, "Conversation context: %s\n", pc.SessionSummary)
	}
	fmt.Fprintf(&b, "\nCustomer: %s\nAssistant:", pc.Query)

	text, err := a.generate(ctx, b.String())
	if err != nil {
		a.logger.Printf("[RESPOND] generation failed, using template: %v", err)
		return "Let's narrow it down: make sure the connection is clean and snug, confirm your mod reads the expected resistance, and try a fresh, lower temperature setting. If it still misbehaves it may be covered by the 90-day warranty; email support@ with your order number."
	}
	return text
}

func (a *Assembler) buildProductPrompt(pc PromptContext) string {
	var b strings.Builder
	b.WriteString("You are a product-support assistant for a vaporizer hardware storefront. ")
	b.WriteString("Answer the customer using ONLY the catalog entries below. ")
	b.WriteString("Never mention products, prices or links that are not listed.\n\n")
	a.writeEntries(&b, pc.Entries)
	if pc.SessionSummary != "" {
		fmt.Fprintf(&b, "Conversation context: %s\n", pc.SessionSummary)
	}
	fmt.Fprintf(&b, "\nCustomer: %s\nAssistant:", pc.Query)
	return b.String()
}

func (a *Assembler) writeEntries(b *strings.Builder, entries []catalog.Entry) {
	if len(entries) == 0 {
		return
	}
	b.WriteString("Catalog entries:\n")
	for i, e := range entries {
		fmt.Fprintf(b, "%d. %s", i+1, e.Name)
		if e.Price != nil {
			fmt.Fprintf(b, " ($%.2f)", *e.Price)
		}
		if !e.InStock {
			b.WriteString(" [out of stock]")
		}
		if e.Description != "" {
			fmt.Fprintf(b, " - %s", e.Description)
		}
		if e.URL != "" {
			fmt.Fprintf(b, " %s", e.URL)
		}
		b.WriteString("\n")
	}
}

// templateAnswer is the deterministic fallback listing when generation is
// unavailable.
func (a *Assembler) templateAnswer(entries []catalog.Entry) string {
	var b strings.Builder
	b.WriteString("Here's what matches:\n")
	for _, e := range entries {
		fmt.Fprintf(&b, "- %s", e.Name)
		if e.Price != nil {
			fmt.Fprintf(&b, " ($%.2f)", *e.Price)
		}
		if e.URL != "" {
			fmt.Fprintf(&b, " %s", e.URL)
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func (a *Assembler) generate(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()
	text, err := a.provider.Generate(ctx, prompt, llm.WithTemperature(0.4))
	if err != nil {
		return "", err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("empty generation result")
	}
	return text, nil
}
