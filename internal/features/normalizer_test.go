package features

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "empty", in: "", want: ""},
		{name: "lowercases and collapses", in: "  Senior\tGo \n\nDeveloper  ", want: "senior go developer"},
		{
			name: "strips emails and urls",
			in:   "Contact: John.Doe@Example.com, see https://x.io/a or www.site.org!",
			want: "contact see or",
		},
		{name: "symbols become spaces", in: "B.Tech in C++ (2019)", want: "b tech in c"},
		{name: "non ascii letters are dropped", in: "Résumé", want: "r sum"},
		{name: "unicode spaces separate words", in: "python\u00a0java\u2003sql", want: "python java sql"},
		{name: "information separator splits words", in: "go\x1frust", want: "go rust"},
		{name: "digits only", in: "2024 - 2025", want: ""},
		{name: "dotted capital i keeps its dot", in: "\u0130Z \u0130stanbul", want: "i z i stanbul"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

func TestNormalizeIsIdempotent(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"Worked at ACME (2019-2021) | built REST APIs in Go & Python; email me: a@b.co",
		"Visit www.portfolio.dev for MY projects!!!",
		"\t\tMachine   Learning Engineer ",
		"",
	}

	for _, in := range inputs {
		once := Normalize(in)
		assert.Equal(t, once, Normalize(once), "input %q", in)
	}
}
