package budget

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/tokenfit/tokenfit/message"
	"github.com/tokenfit/tokenfit/tokenize"
)

func newManager(t *testing.T, opts Options) *Manager {
	t.Helper()
	m, err := NewManager(tokenize.NewEstimator(tokenize.Ratios{}), opts)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	return m
}

func TestNewManager_RejectsBadOptions(t *testing.T) {
	counter := tokenize.NewEstimator(tokenize.Ratios{})
	tests := []struct {
		name string
		opts Options
	}{
		{"negative max", Options{MaxTokens: -1}},
		{"negative reserve", Options{ReservedOutput: -5}},
		{"reserve eats window", Options{MaxTokens: 100, ReservedOutput: 100}},
		{"utilization above 1", Options{TargetUtilization: 1.5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewManager(counter, tt.opts); !errors.Is(err, ErrInvalidOptions) {
				t.Errorf("expected ErrInvalidOptions, got %v", err)
			}
		})
	}
}

func TestNewManager_ClampsProactiveThreshold(t *testing.T) {
	low := newManager(t, Options{ProactiveThreshold: 0.1})
	if low.ShouldProactivelyCompress(5500, 10000) != true {
		t.Error("threshold below 0.5 should clamp to 0.5")
	}
	high := newManager(t, Options{ProactiveThreshold: 0.99})
	if high.ShouldProactivelyCompress(9600, 10000) != true {
		t.Error("threshold above 0.95 should clamp to 0.95")
	}
}

func TestShouldProactivelyCompress_DefaultThreshold(t *testing.T) {
	m := newManager(t, Options{})
	if !m.ShouldProactivelyCompress(7600, 10000) {
		t.Error("7600/10000 crosses the default 0.75 threshold")
	}
	if m.ShouldProactivelyCompress(7400, 10000) {
		t.Error("7400/10000 stays under the default 0.75 threshold")
	}
	if m.ShouldProactivelyCompress(100, 0) {
		t.Error("zero window must never trigger")
	}
}

func TestContextWindow(t *testing.T) {
	m := newManager(t, Options{MaxTokens: 1000, ReservedOutput: 200})
	msgs := []message.Message{
		{Role: message.RoleUser, Content: strings.Repeat("question ", 50)},
	}
	w := m.ContextWindow(msgs, "be terse")
	if w.MaxTokens != 1000 || w.ReservedOutput != 200 {
		t.Errorf("window constants wrong: %+v", w)
	}
	if w.Used <= 0 {
		t.Error("expected nonzero usage")
	}
	if w.Available != 1000-200-w.Used {
		t.Errorf("available %d inconsistent with used %d", w.Available, w.Used)
	}
	if m.Usage() != w.Used {
		t.Error("manager should record usage")
	}
}

func TestContextWindow_OverflowGoesNegative(t *testing.T) {
	m := newManager(t, Options{MaxTokens: 100, ReservedOutput: 50})
	msgs := []message.Message{{Role: message.RoleUser, Content: strings.Repeat("overflowing content ", 100)}}
	if w := m.ContextWindow(msgs, ""); w.Available >= 0 {
		t.Errorf("expected negative availability, got %d", w.Available)
	}
}

func makeHistory(n int) []message.Message {
	msgs := make([]message.Message, n)
	for i := range msgs {
		role := message.RoleUser
		if i%2 == 1 {
			role = message.RoleAssistant
		}
		msgs[i] = message.Message{
			Role:    role,
			Content: fmt.Sprintf("turn %d with enough padding words to give each message real token weight", i),
		}
	}
	return msgs
}

func TestPruneMessages_KeepsFirstAndLast(t *testing.T) {
	m := newManager(t, Options{MaxTokens: 300, ReservedOutput: 50})
	msgs := makeHistory(20)

	out, res := m.PruneMessages(msgs, "", PruneOptions{KeepFirst: 2, KeepLast: 3})
	if res.RemovedMessages == 0 {
		t.Fatal("expected pruning to remove messages")
	}
	if out[0].Content != msgs[0].Content || out[1].Content != msgs[1].Content {
		t.Error("first 2 messages must survive unconditionally")
	}
	tail := out[len(out)-3:]
	for i, want := range msgs[17:] {
		if tail[i].Content != want.Content {
			t.Errorf("last 3 messages must survive; slot %d = %q", i, tail[i].Content)
		}
	}
	if res.KeptMessages != len(out) {
		t.Errorf("KeptMessages %d != len(out) %d", res.KeptMessages, len(out))
	}
	if res.TokensAfter > res.TokensBefore {
		t.Error("pruning must not grow the history")
	}
}

func TestPruneMessages_MiddleFilledNewestFirst(t *testing.T) {
	// A window that fits the unconditional set plus roughly one middle
	// message: the newest middle message is the one that survives.
	counter := tokenize.NewEstimator(tokenize.Ratios{})
	msgs := makeHistory(10)
	perMsg := counter.Count(msgs[0].Text())

	// Budget for keepFirst(1) + keepLast(2) + one extra message.
	usable := perMsg * 4
	m := newManager(t, Options{MaxTokens: usable + 50, ReservedOutput: 50, TargetUtilization: 1.0})

	out, _ := m.PruneMessages(msgs, "", PruneOptions{KeepFirst: 1, KeepLast: 2})

	// Expect msgs[0], msgs[7] (newest middle that fits), msgs[8], msgs[9].
	var contents []string
	for _, msg := range out {
		contents = append(contents, msg.Content)
	}
	if len(out) < 4 {
		t.Fatalf("expected at least 4 kept messages, got %v", contents)
	}
	if out[1].Content != msgs[7].Content {
		t.Errorf("newest middle message should survive, kept %v", contents)
	}
}

func TestPruneMessages_UnconditionalSetOverTarget(t *testing.T) {
	m := newManager(t, Options{MaxTokens: 60, ReservedOutput: 10})
	msgs := makeHistory(12)
	out, res := m.PruneMessages(msgs, "", PruneOptions{KeepFirst: 2, KeepLast: 2})
	// Even over target the unconditional messages stay; no middle fits.
	if len(out) != 4 {
		t.Errorf("expected exactly the unconditional 4 messages, got %d", len(out))
	}
	if res.RemovedMessages != 8 {
		t.Errorf("RemovedMessages = %d, want 8", res.RemovedMessages)
	}
}

func TestNeedsPruning(t *testing.T) {
	m := newManager(t, Options{MaxTokens: 200, ReservedOutput: 50})
	if m.NeedsPruning([]message.Message{{Role: message.RoleUser, Content: "hi"}}, "") {
		t.Error("tiny history should not need pruning")
	}
	big := []message.Message{{Role: message.RoleUser, Content: strings.Repeat("lots of context ", 200)}}
	if !m.NeedsPruning(big, "") {
		t.Error("oversized history should need pruning")
	}
}

func TestRoleBreakdown(t *testing.T) {
	counter := tokenize.NewEstimator(tokenize.Ratios{})
	msgs := []message.Message{
		{Role: message.RoleSystem, Content: "rules"},
		{Role: message.RoleUser, Content: "a question about the schema"},
		{Role: message.RoleUser, Content: "a follow-up"},
		{Role: message.RoleAssistant, Content: "an answer"},
	}
	br := RoleBreakdown(counter, msgs)
	if len(br) != 3 {
		t.Fatalf("expected 3 roles, got %d", len(br))
	}
	if br[message.RoleUser] <= br[message.RoleSystem] {
		t.Error("two user messages should outweigh one short system message")
	}
}
