package session

import (
	"fmt"
	"reflect"
	"testing"

	"ai-support-be/pkg/catalog"
)

func TestHistoryBounded(t *testing.T) {
	sess := NewContext("s1")

	for i := 0; i < HistoryLimit+5; i++ {
		sess.RecordExchange(fmt.Sprintf("question %d", i), "answer", "general", nil)
	}

	if len(sess.History) != HistoryLimit {
		t.Fatalf("history length = %d, want %d", len(sess.History), HistoryLimit)
	}
	// Oldest entries are evicted, newest kept.
	if sess.History[0].UserText != "question 5" {
		t.Errorf("oldest kept = %q, want question 5", sess.History[0].UserText)
	}
	if sess.History[HistoryLimit-1].UserText != fmt.Sprintf("question %d", HistoryLimit+4) {
		t.Errorf("newest = %q", sess.History[HistoryLimit-1].UserText)
	}
}

func TestRecordExchangeTracksProducts(t *testing.T) {
	sess := NewContext("s1")
	shown := []catalog.Ref{
		{ID: "p1", Name: "V5 XL Kit", Group: "devices"},
		{ID: "p2", Name: "Hemp Hoodie", Group: "hemp_clothing"},
	}

	sess.RecordExchange("what do you sell", "here you go", "rag", shown)

	if !sess.Mentioned["p1"] || !sess.Mentioned["p2"] {
		t.Error("shown products not unioned into mentioned set")
	}
	if sess.LastGroup != "devices" {
		t.Errorf("LastGroup = %q, want devices", sess.LastGroup)
	}
	if sess.Phase != PhaseBrowsing {
		t.Errorf("Phase = %s, want %s", sess.Phase, PhaseBrowsing)
	}

	sess.RecordExchange("compare them", "sure", "comparison", nil)
	if sess.Phase != PhaseComparing {
		t.Errorf("Phase = %s, want %s", sess.Phase, PhaseComparing)
	}
	// Products from the earlier turn stay current when none were shown.
	if len(sess.LastProducts) != 2 {
		t.Errorf("LastProducts = %v", sess.LastProducts)
	}
}

func TestResolveFollowUpPronoun(t *testing.T) {
	sess := NewContext("s1")
	shown := []catalog.Ref{{ID: "p1", Name: "V5 Kit", Group: "devices"}}
	sess.RecordExchange("v5", "The V5 is our concentrate kit.", "rag", shown)

	fu := sess.ResolveFollowUp("tell me more about it")
	if fu == nil {
		t.Fatal("pronoun follow-up not resolved")
	}
	if fu.IsAnswer {
		t.Error("pronoun follow-up flagged as answer")
	}
	if !reflect.DeepEqual(fu.Referents, shown) {
		t.Errorf("Referents = %v, want %v", fu.Referents, shown)
	}
}

func TestResolveFollowUpIdempotent(t *testing.T) {
	sess := NewContext("s1")
	sess.RecordExchange("v5", "The V5 is our concentrate kit.", "rag",
		[]catalog.Ref{{ID: "p1", Name: "V5 Kit", Group: "devices"}})

	first := sess.ResolveFollowUp("what about that one")
	second := sess.ResolveFollowUp("what about that one")
	if !reflect.DeepEqual(first, second) {
		t.Errorf("resolveFollowUp not idempotent: %v vs %v", first, second)
	}
}

func TestResolveFollowUpShortAnswer(t *testing.T) {
	sess := NewContext("s1")
	sess.RecordExchange("which device should i get", "Do you use dry herb or concentrates?", "rag", nil)

	fu := sess.ResolveFollowUp("concentrates")
	if fu == nil || !fu.IsAnswer {
		t.Fatalf("short answer not detected: %+v", fu)
	}
	if fu.AnswerText != "concentrates" {
		t.Errorf("AnswerText = %q", fu.AnswerText)
	}
}

func TestResolveFollowUpIgnoresLongReplies(t *testing.T) {
	sess := NewContext("s1")
	sess.RecordExchange("hi", "Do you use dry herb or concentrates?", "general", nil)

	if fu := sess.ResolveFollowUp("i mostly use concentrates on weekends honestly"); fu != nil && fu.IsAnswer {
		t.Error("long reply treated as short answer")
	}
}

func TestResolveFollowUpStandaloneQuery(t *testing.T) {
	sess := NewContext("s1")
	sess.RecordExchange("v5", "The V5 is great.", "rag",
		[]catalog.Ref{{ID: "p1", Name: "V5 Kit", Group: "devices"}})

	if fu := sess.ResolveFollowUp("do you sell hoodies"); fu != nil {
		t.Errorf("standalone query resolved as follow-up: %+v", fu)
	}
}

func TestResolveFollowUpNoReferent(t *testing.T) {
	sess := NewContext("s1")
	if fu := sess.ResolveFollowUp("tell me more about it"); fu != nil {
		t.Errorf("follow-up with nothing to refer to: %+v", fu)
	}
}

func TestExtractPreferences(t *testing.T) {
	tests := []struct {
		input string
		want  map[string]string
	}{
		{"i'm a beginner looking for something portable", map[string]string{"experience_level": "beginner", "form_factor": "portable"}},
		{"flavor matters most, i use wax", map[string]string{"priority": "flavor", "material": "concentrate"}},
		{"whats the shipping time", map[string]string{}},
	}

	for _, tt := range tests {
		got := ExtractPreferences(tt.input)
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("ExtractPreferences(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestPreferencesMergeAcrossTurns(t *testing.T) {
	sess := NewContext("s1")
	sess.RecordExchange("i'm a beginner", "welcome", "general", nil)
	sess.RecordExchange("actually i'm pretty advanced", "noted", "general", nil)

	if sess.Preferences["experience_level"] != "advanced" {
		t.Errorf("later preference did not overwrite: %v", sess.Preferences)
	}
}
