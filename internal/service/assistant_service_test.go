package service

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ai-support-be/internal/dto"
	"ai-support-be/internal/repository/memory"
	"ai-support-be/pkg/catalog"
	"ai-support-be/pkg/llm"
	"ai-support-be/pkg/orders"
	"ai-support-be/pkg/respond"
	"ai-support-be/pkg/retrieval"
	"ai-support-be/pkg/router"
	"ai-support-be/pkg/session"
)

type nopLogger struct{}

func (nopLogger) Debug(module, message string, details map[string]interface{}) {}
func (nopLogger) Info(module, message string, details map[string]interface{})  {}
func (nopLogger) Warn(module, message string, details map[string]interface{})  {}
func (nopLogger) Error(module, message string, details map[string]interface{}) {}
func (nopLogger) Sync() error                                                  { return nil }

type fakeLLM struct {
	reply      string
	lastPrompt string
}

func (f *fakeLLM) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	f.lastPrompt = prompt
	return f.reply, nil
}

func (f *fakeLLM) Chat(ctx context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	return f.reply, nil
}

type fakeOrders struct {
	lookupResult *orders.Result
	verifyResult *orders.Result
	lastAnswer   string
}

func (f *fakeOrders) Lookup(ctx context.Context, orderNumber, queryText string) (*orders.Result, error) {
	return f.lookupResult, nil
}

func (f *fakeOrders) VerifyChallenge(ctx context.Context, orderNumber, answer string) (*orders.Result, error) {
	f.lastAnswer = answer
	return f.verifyResult, nil
}

type fakeSource struct {
	entries []catalog.Entry
}

func (f *fakeSource) Load(ctx context.Context) ([]catalog.Entry, error) {
	return f.entries, nil
}

func fixtureEntries() []catalog.Entry {
	return []catalog.Entry{
		{ID: "p1", Name: "V5 XL Kit", Category: catalog.CategoryMainProduct, Group: "devices", Description: "Flagship concentrate vaporizer kit", InStock: true},
		{ID: "p2", Name: "V5 Kit", Category: catalog.CategoryMainProduct, Group: "devices", Description: "Portable concentrate kit", InStock: true},
		{ID: "p3", Name: "Hemp Hoodie", Category: catalog.CategoryAccessory, Group: "hemp_clothing", Description: "Heavyweight hemp hoodie", InStock: true},
		{ID: "p4", Name: "Glass Bubbler", Category: catalog.CategoryAccessory, Group: "glass", Description: "Water attachment for smoother hits", InStock: true},
	}
}

type fixture struct {
	svc    IAssistantService
	llm    *fakeLLM
	pubSub *gochannel.GoChannel
	index  *catalog.Index
	source *fakeSource
}

func newFixture(t *testing.T, orderSvc orders.Service) *fixture {
	t.Helper()

	plain := log.New(os.Stdout, "", 0)
	index := catalog.NewIndex(fixtureEntries(), nil)
	source := &fakeSource{entries: fixtureEntries()}
	store := session.NewStore(memory.NewSessionRepository(), plain)
	engine := retrieval.NewEngine(index, nil, retrieval.DefaultConfig(), plain)
	provider := &fakeLLM{reply: "Here is what I found."}
	assembler := respond.NewAssembler(provider, time.Second, plain)
	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})

	svc := NewAssistantService(index, source, nil, store, router.New(plain), engine,
		assembler, orderSvc, pubSub, nopLogger{})

	return &fixture{svc: svc, llm: provider, pubSub: pubSub, index: index, source: source}
}

func chat(t *testing.T, f *fixture, sessionID, message string) *dto.ChatResponse {
	t.Helper()
	resp, err := f.svc.Chat(context.Background(), &dto.ChatRequest{SessionId: sessionID, Message: message})
	require.NoError(t, err)
	return resp
}

func TestChatCatalogQueryReturnsProducts(t *testing.T) {
	f := newFixture(t, nil)

	resp := chat(t, f, "s1", "do you sell hoodies")

	assert.Equal(t, string(router.RouteCatalog), resp.Route)
	assert.Equal(t, "Here is what I found.", resp.Reply)
	require.NotEmpty(t, resp.Products)
	for _, p := range resp.Products {
		assert.Equal(t, "p3", p.Id, "only the hoodie should match")
	}
}

func TestChatQuickAnswerBypassesRetrieval(t *testing.T) {
	f := newFixture(t, nil)

	resp := chat(t, f, "s1", "do you have a discount code")

	assert.Equal(t, string(router.RouteQuickAnswer), resp.Route)
	assert.NotEmpty(t, resp.Reply)
	assert.Empty(t, resp.Products)
}

func TestChatModerationPublishesEscalation(t *testing.T) {
	f := newFixture(t, nil)
	msgs, err := f.pubSub.Subscribe(context.Background(), EscalationTopic)
	require.NoError(t, err)

	resp := chat(t, f, "s1", "can you sell this to a minor")
	assert.Equal(t, string(router.RouteModerated), resp.Route)
	assert.NotEmpty(t, resp.Reply)

	select {
	case msg := <-msgs:
		var payload map[string]interface{}
		require.NoError(t, json.Unmarshal(msg.Payload, &payload))
		assert.Equal(t, string(router.RouteModerated), payload["route"])
		assert.Equal(t, "s1", payload["session_id"])
		msg.Ack()
	case <-time.After(2 * time.Second):
		t.Fatal("no escalation published")
	}
}

func TestChatOrderWithoutBackendAsksForNumber(t *testing.T) {
	f := newFixture(t, nil)

	resp := chat(t, f, "s1", "where is my order")

	assert.Equal(t, string(router.RouteOrder), resp.Route)
	assert.Contains(t, resp.Reply, "order number")
}

func TestChatOrderVerificationFlow(t *testing.T) {
	orderSvc := &fakeOrders{
		lookupResult: &orders.Result{Challenge: "What zip code is on the order?"},
		verifyResult: &orders.Result{Verified: true, Response: "Your order shipped yesterday."},
	}
	f := newFixture(t, orderSvc)

	first := chat(t, f, "s1", "#123456")
	assert.Equal(t, string(router.RouteOrder), first.Route)
	assert.Equal(t, "What zip code is on the order?", first.Challenge)

	// The next message, whatever it looks like, answers the challenge.
	second := chat(t, f, "s1", "90210")
	assert.Equal(t, string(router.RouteVerification), second.Route)
	assert.Equal(t, "Your order shipped yesterday.", second.Reply)
	assert.Equal(t, "90210", orderSvc.lastAnswer)

	// Verification is done; routing goes back to normal.
	third := chat(t, f, "s1", "do you have a discount code")
	assert.Equal(t, string(router.RouteQuickAnswer), third.Route)
}

func TestChatPronounFollowUpReusesReferent(t *testing.T) {
	f := newFixture(t, nil)

	first := chat(t, f, "s1", "do you sell hoodies")
	require.NotEmpty(t, first.Products)

	second := chat(t, f, "s1", "tell me more about it")
	assert.Equal(t, string(router.RouteCatalog), second.Route)
	require.NotEmpty(t, second.Products)
	assert.Equal(t, "p3", second.Products[0].Id)
}

func TestChatShortAnswerSkipsRetrieval(t *testing.T) {
	f := newFixture(t, nil)
	f.llm.reply = "Do you use dry herb or concentrates?"

	chat(t, f, "s1", "which device should i get")

	f.llm.reply = "Then the V5 XL Kit is a great fit."
	resp := chat(t, f, "s1", "concentrates")

	assert.Empty(t, resp.Products, "answers are reasoned over, not re-retrieved")
	assert.Contains(t, f.llm.lastPrompt, "The customer answered")
}

func TestReloadCatalogSwapsSnapshot(t *testing.T) {
	f := newFixture(t, nil)

	f.source.entries = append(fixtureEntries(),
		catalog.Entry{ID: "p5", Name: "UV Stash Jar", Category: catalog.CategoryAccessory, Group: "uv_jars", InStock: true})

	n, err := f.svc.ReloadCatalog(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.NotNil(t, f.index.Snapshot().ByID("p5"))
}
