package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	"ai-support-be/internal/dto"
	"ai-support-be/internal/pkg/logger"
	"ai-support-be/pkg/catalog"
	"ai-support-be/pkg/events"
	"ai-support-be/pkg/orders"
	"ai-support-be/pkg/query"
	"ai-support-be/pkg/respond"
	"ai-support-be/pkg/retrieval"
	"ai-support-be/pkg/router"
	"ai-support-be/pkg/session"
)

const EscalationTopic = "escalations"

const askOrderNumber = "I can check on that. Could you share your order number? It's the 5 to 7 digit number from your confirmation email."

const comparisonPrompt = "Happy to compare. Which products did you have in mind?"

// EntryIndexer re-embeds the catalog after a reload. Implemented by the
// semantic indices; nil when semantic search is off.
type EntryIndexer interface {
	IndexEntries(ctx context.Context, entries []catalog.Entry) error
}

type IAssistantService interface {
	Chat(ctx context.Context, req *dto.ChatRequest) (*dto.ChatResponse, error)
	ReloadCatalog(ctx context.Context) (int, error)
}

type assistantService struct {
	catalogIndex  *catalog.Index
	catalogSource catalog.Source
	indexer       EntryIndexer
	store         *session.Store
	router        *router.Router
	engine        *retrieval.Engine
	assembler     *respond.Assembler
	orderService  orders.Service // nil when no order backend is configured
	pubSub        *gochannel.GoChannel
	logger        logger.ILogger
}

func NewAssistantService(
	catalogIndex *catalog.Index,
	catalogSource catalog.Source,
	indexer EntryIndexer,
	store *session.Store,
	rt *router.Router,
	engine *retrieval.Engine,
	assembler *respond.Assembler,
	orderService orders.Service,
	pubSub *gochannel.GoChannel,
	log logger.ILogger,
) IAssistantService {
	return &assistantService{
		catalogIndex:  catalogIndex,
		catalogSource: catalogSource,
		indexer:       indexer,
		store:         store,
		router:        rt,
		engine:        engine,
		assembler:     assembler,
		orderService:  orderService,
		pubSub:        pubSub,
		logger:        log,
	}
}

// Chat runs one conversation turn: resolve follow-ups against the session,
// normalize, route, execute the route, then record the exchange.
func (s *assistantService) Chat(ctx context.Context, req *dto.ChatRequest) (*dto.ChatResponse, error) {
	sess := s.store.GetOrCreate(req.SessionId)
	raw := req.Message

	followUp := sess.ResolveFollowUp(raw)

	// A pronoun follow-up expands the query with its referent before
	// routing and retrieval; a short answer is handled after routing.
	effective := raw
	if followUp != nil && !followUp.IsAnswer && len(followUp.Referents) > 0 {
		effective = raw + " " + followUp.Referents[0].Name
	}

	q := query.Normalize(effective)
	decision := s.router.Route(q, sess)

	s.logger.Info("assistant", "routed query", map[string]interface{}{
		"session":   req.SessionId,
		"route":     string(decision.Route),
		"reasoning": decision.Reasoning,
	})

	resp := &dto.ChatResponse{
		SessionId: req.SessionId,
		Route:     string(decision.Route),
		Reasoning: decision.Reasoning,
	}

	var shown []catalog.Entry

	switch decision.Route {
	case router.RouteVerification:
		s.handleVerification(ctx, sess, raw, resp)

	case router.RouteOrder:
		s.handleOrder(ctx, sess, raw, decision, resp)

	case router.RouteModerated:
		resp.Reply = decision.Data
		s.escalate(ctx, decision, req.SessionId, raw)

	case router.RouteCustomerService:
		resp.Reply = decision.Data
		s.escalate(ctx, decision, req.SessionId, raw)

	case router.RouteImageRequest, router.RouteQuickAnswer, router.RouteCompetitor,
		router.RouteWarranty, router.RouteReturn, router.RouteCompanyInfo:
		resp.Reply = decision.Data

	case router.RouteComparison:
		if decision.Data != "" {
			resp.Reply = decision.Data
		} else {
			resp.Reply = comparisonPrompt
		}

	case router.RouteTroubleshooting, router.RouteHowTo:
		// Ground the advice in the device under discussion when we know it.
		if q.Family != "" || (followUp != nil && len(followUp.Referents) > 0) {
			shown = s.retrieve(ctx, q, sess, 3)
		}
		pc := respond.BuildContext(string(decision.Route), raw, shown, sess)
		resp.Reply = s.assembler.TroubleshootingAnswer(ctx, pc)

	case router.RouteCatalog:
		if followUp != nil && followUp.IsAnswer {
			// The customer answered our question; reason over the answer
			// instead of re-ranking the catalog.
			pc := respond.BuildContext(string(decision.Route), answerText(sess, followUp), nil, sess)
			resp.Reply = s.assembler.GeneralAnswer(ctx, pc, true)
			break
		}
		shown = s.retrieve(ctx, q, sess, 0)
		pc := respond.BuildContext(string(decision.Route), raw, shown, sess)
		resp.Reply = s.assembler.ProductAnswer(ctx, pc)

	default: // RouteGeneral
		text := raw
		if followUp != nil && followUp.IsAnswer {
			text = answerText(sess, followUp)
		}
		pc := respond.BuildContext(string(decision.Route), text, nil, sess)
		resp.Reply = s.assembler.GeneralAnswer(ctx, pc, decision.CatalogAdjacent)
	}

	refs := make([]catalog.Ref, 0, len(shown))
	for i := range shown {
		refs = append(refs, shown[i].Ref())
		resp.Products = append(resp.Products, dto.ProductDTO{
			Id:      shown[i].ID,
			Name:    shown[i].Name,
			Url:     shown[i].URL,
			Price:   shown[i].Price,
			InStock: shown[i].InStock,
		})
	}

	s.store.RecordExchange(req.SessionId, raw, resp.Reply, string(decision.Route), refs)
	return resp, nil
}

// ReloadCatalog pulls a fresh snapshot from the source and swaps it in.
func (s *assistantService) ReloadCatalog(ctx context.Context) (int, error) {
	entries, err := s.catalogSource.Load(ctx)
	if err != nil {
		return 0, fmt.Errorf("load catalog: %w", err)
	}
	s.catalogIndex.Reload(entries)
	if s.indexer != nil {
		if err := s.indexer.IndexEntries(ctx, entries); err != nil {
			s.logger.Warn("assistant", "semantic reindex failed", map[string]interface{}{"error": err.Error()})
		}
	}
	s.logger.Info("assistant", "catalog reloaded", map[string]interface{}{"entries": len(entries)})
	return len(entries), nil
}

func (s *assistantService) retrieve(ctx context.Context, q *query.Normalized, sess *session.Context, topK int) []catalog.Entry {
	_, group, prefs, _ := sess.Snapshot()
	return s.engine.Retrieve(ctx, q, topK, retrieval.SessionHint{
		LastGroup:   group,
		Preferences: prefs,
	})
}

// handleOrder starts an order inquiry, threading the order service's
// verification fields straight through.
func (s *assistantService) handleOrder(ctx context.Context, sess *session.Context, raw string, decision *router.Decision, resp *dto.ChatResponse) {
	number := decision.Data
	if number == "" {
		number = orders.ExtractOrderNumber(raw)
	}
	if s.orderService == nil {
		resp.Reply = askOrderNumber
		return
	}

	result, err := s.orderService.Lookup(ctx, number, raw)
	if err != nil {
		s.logger.Error("assistant", "order lookup failed", map[string]interface{}{"error": err.Error()})
		resp.Reply = "I couldn't reach the order system just now. Please try again in a minute or email support@ with your order number."
		return
	}
	s.applyOrderResult(ctx, sess, number, raw, result, resp)
}

// handleVerification continues an outstanding identity challenge with the
// customer's latest message as the answer.
func (s *assistantService) handleVerification(ctx context.Context, sess *session.Context, raw string, resp *dto.ChatResponse) {
	pending := sess.PendingChallenge()
	if pending == nil || s.orderService == nil {
		sess.SetPending(nil)
		resp.Reply = askOrderNumber
		return
	}

	result, err := s.orderService.VerifyChallenge(ctx, pending.OrderNumber, strings.TrimSpace(raw))
	if err != nil {
		s.logger.Error("assistant", "verification failed", map[string]interface{}{"error": err.Error()})
		resp.Reply = "I couldn't verify that just now. Please try again in a minute."
		return
	}
	s.applyOrderResult(ctx, sess, pending.OrderNumber, raw, result, resp)
}

func (s *assistantService) applyOrderResult(ctx context.Context, sess *session.Context, number, raw string, result *orders.Result, resp *dto.ChatResponse) {
	switch {
	case result.NeedsOrderNumber:
		sess.SetPending(nil)
		resp.Reply = askOrderNumber

	case result.Challenge != "":
		sess.SetPending(&session.PendingVerification{
			OrderNumber: number,
			Challenge:   result.Challenge,
		})
		resp.Challenge = result.Challenge
		resp.Reply = result.Challenge
		s.escalate(ctx, &router.Decision{Route: router.RouteVerification, Reasoning: "identity challenge issued"}, sess.ID, raw)

	case result.Verified:
		sess.SetPending(nil)
		resp.Reply = result.Response

	default:
		sess.SetPending(nil)
		if result.Response != "" {
			resp.Reply = result.Response
		} else {
			resp.Reply = "I couldn't verify that order. Please double-check the number, or email support@ and the team will dig in."
		}
	}
}

// escalate publishes a structured escalation record on the in-process bus;
// the consumer forwards it to the operations channel. Fire and forget.
func (s *assistantService) escalate(ctx context.Context, decision *router.Decision, sessionID, rawQuery string) {
	event := events.NewEscalation(string(decision.Route), sessionID, rawQuery, decision.Reasoning)
	payload, err := json.Marshal(event.Payload())
	if err != nil {
		s.logger.Error("assistant", "marshal escalation", map[string]interface{}{"error": err.Error()})
		return
	}
	msg := message.NewMessage(event.ID, payload)
	if err := s.pubSub.Publish(EscalationTopic, msg); err != nil {
		s.logger.Error("assistant", "publish escalation", map[string]interface{}{"error": err.Error()})
	}
}

// answerText frames a short answer together with the question it answers,
// so the generation service sees both sides.
func answerText(sess *session.Context, followUp *session.FollowUp) string {
	lastBot := sess.LastBotText()
	if lastBot == "" {
		return followUp.AnswerText
	}
	return fmt.Sprintf("You asked: %q. The customer answered: %q. Continue helping them based on that answer.", lastBot, followUp.AnswerText)
}
