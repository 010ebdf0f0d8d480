package diff

// Span is one run of characters in a character-level diff. A span carries at
// most one of Added/Removed; unchanged spans carry neither.
type Span struct {
	Value   string `json:"value"`
	Added   bool   `json:"added,omitempty"`
	Removed bool   `json:"removed,omitempty"`
}

// Chars computes a character-level diff between two strings using the longest
// common subsequence. It is pure: concatenating the values of all non-removed
// spans reproduces newText, and all non-added spans reproduce oldText.
//
// Intended for render-time previews of long-text fields; field-level change
// sets are plain equality comparisons and never go through here.
func Chars(oldText, newText string) []Span {
	if oldText == "" && newText == "" {
		return nil
	}
	if oldText == "" {
		return []Span{{Value: newText, Added: true}}
	}
	if newText == "" {
		return []Span{{Value: oldText, Removed: true}}
	}

	a := []rune(oldText)
	b := []rune(newText)

	// LCS length table; lcs[i][j] is the length for a[i:] vs b[j:].
	lcs := make([][]int, len(a)+1)
	for i := range lcs {
		lcs[i] = make([]int, len(b)+1)
	}
	for i := len(a) - 1; i >= 0; i-- {
		for j := len(b) - 1; j >= 0; j-- {
			if a[i] == b[j] {
				lcs[i][j] = lcs[i+1][j+1] + 1
			} else if lcs[i+1][j] >= lcs[i][j+1] {
				lcs[i][j] = lcs[i+1][j]
			} else {
				lcs[i][j] = lcs[i][j+1]
			}
		}
	}

	var spans []Span
	appendRun := func(value string, added, removed bool) {
		if value == "" {
			return
		}
		if n := len(spans); n > 0 && spans[n-1].Added == added && spans[n-1].Removed == removed {
			spans[n-1].Value += value
			return
		}
		spans = append(spans, Span{Value: value, Added: added, Removed: removed})
	}

	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i] == b[j]:
			appendRun(string(a[i]), false, false)
			i++
			j++
		case lcs[i+1][j] >= lcs[i][j+1]:
			appendRun(string(a[i]), false, true)
			i++
		default:
			appendRun(string(b[j]), true, false)
			j++
		}
	}
	if i < len(a) {
		appendRun(string(a[i:]), false, true)
	}
	if j < len(b) {
		appendRun(string(b[j:]), true, false)
	}
	return spans
}

// Old reassembles the original text from a diff by keeping non-added spans.
func Old(spans []Span) string {
	var out []byte
	for _, s := range spans {
		if !s.Added {
			out = append(out, s.Value...)
		}
	}
	return string(out)
}

// New reassembles the updated text from a diff by keeping non-removed spans.
func New(spans []Span) string {
	var out []byte
	for _, s := range spans {
		if !s.Removed {
			out = append(out, s.Value...)
		}
	}
	return string(out)
}
