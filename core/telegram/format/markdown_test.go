package format

import "testing"

func TestEscapeMarkdownV2(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"plain text", "plain text"},
		{"a_b*c", `a\_b\*c`},
		{"(1+1)=2!", `\(1\+1\)\=2\!`},
		{"dot.dash-pipe|", `dot\.dash\-pipe\|`},
		{"", ""},
	}
	for _, tc := range cases {
		if got := EscapeMarkdownV2(tc.in); got != tc.want {
			t.Errorf("EscapeMarkdownV2(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
