package diff

import "testing"

func TestCharsRoundTrip(t *testing.T) {
	cases := []struct{ old, new string }{
		{"", ""},
		{"", "hello"},
		{"hello", ""},
		{"hello", "hello"},
		{"160cm", "162cm"},
		{"kitten", "sitting"},
		{"debuted in 2015 under Big Hit", "debuted in 2013 under HYBE"},
		{"가나다라", "가나마라"},
	}

	for _, tc := range cases {
		spans := Chars(tc.old, tc.new)
		if got := Old(spans); got != tc.old {
			t.Fatalf("Chars(%q, %q): non-added spans reassemble to %q, want %q", tc.old, tc.new, got, tc.old)
		}
		if got := New(spans); got != tc.new {
			t.Fatalf("Chars(%q, %q): non-removed spans reassemble to %q, want %q", tc.old, tc.new, got, tc.new)
		}
	}
}

func TestCharsIdenticalInputsYieldOnlyUnchangedSpans(t *testing.T) {
	spans := Chars("same text", "same text")
	if len(spans) != 1 {
		t.Fatalf("expected one merged unchanged span, got %d", len(spans))
	}
	if spans[0].Added || spans[0].Removed {
		t.Fatalf("identical inputs produced a flagged span: %+v", spans[0])
	}
}

func TestCharsEmptyInputsYieldEmptySequence(t *testing.T) {
	if spans := Chars("", ""); len(spans) != 0 {
		t.Fatalf("expected empty sequence, got %+v", spans)
	}
}

func TestCharsFlagsAreExclusive(t *testing.T) {
	spans := Chars("the quick brown fox", "the slow brown cat")
	for _, s := range spans {
		if s.Added && s.Removed {
			t.Fatalf("span carries both flags: %+v", s)
		}
		if s.Value == "" {
			t.Fatalf("empty span value in %+v", spans)
		}
	}
}

func TestCharsMergesAdjacentRuns(t *testing.T) {
	spans := Chars("aaa", "bbb")
	if len(spans) != 2 {
		t.Fatalf("expected one removed and one added span, got %+v", spans)
	}
}
