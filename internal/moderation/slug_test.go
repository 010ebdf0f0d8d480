package moderation

import "testing"

func TestSlugify(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"simple", "NewJeans", "newjeans"},
		{"spaces", "Kim Minji", "kim-minji"},
		{"punctuation runs", "LE SSERAFIM (르세라핌)!!", "le-sserafim-르세라핌"},
		{"leading trailing", "  --IVE--  ", "ive"},
		{"digits kept", "(G)I-DLE 2", "gi-dle-2"},
		{"ampersand stripped", "R&B Star", "rb-star"},
		{"dot stripped", "A.B", "ab"},
		{"only punctuation", "!!!", ""},
		{"empty", "", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Slugify(tc.in); got != tc.want {
				t.Fatalf("Slugify(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}
