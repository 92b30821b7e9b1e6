package tokenize

import "testing"

func newTiktokenOrSkip(t *testing.T) *Tiktoken {
	t.Helper()
	tk, err := NewTiktoken()
	if err != nil {
		t.Skipf("tiktoken encoding unavailable: %v", err)
	}
	return tk
}

func TestTiktoken_Count(t *testing.T) {
	tk := newTiktokenOrSkip(t)
	if got := tk.Count(""); got != 0 {
		t.Errorf("Count(\"\") = %d, want 0", got)
	}
	if got := tk.Count("hello world"); got < 1 || got > 5 {
		t.Errorf("Count(\"hello world\") = %d, want a small positive count", got)
	}
}

func TestTiktoken_Truncate(t *testing.T) {
	tk := newTiktokenOrSkip(t)
	s := "one two three four five six seven eight nine ten"
	out := tk.Truncate(s, 3)
	if tk.Count(out) > 3 {
		t.Errorf("truncated string still counts %d tokens", tk.Count(out))
	}
	if out = tk.Truncate("short", 100); out != "short" {
		t.Errorf("under-budget truncate changed input: %q", out)
	}
}
