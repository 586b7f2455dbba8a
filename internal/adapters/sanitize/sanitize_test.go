package sanitize

import (
	"strings"
	"testing"
)

func TestSanitizeStripsMarkup(t *testing.T) {
	p := New()

	cases := []struct {
		name string
		in   string
		want func(t *testing.T, out string)
	}{
		{
			name: "plain text untouched",
			in:   "hello there",
			want: func(t *testing.T, out string) {
				if out != "hello there" {
					t.Errorf("got %q", out)
				}
			},
		},
		{
			name: "script removed",
			in:   `hi <script>alert(1)</script>`,
			want: func(t *testing.T, out string) {
				if strings.Contains(out, "<script") {
					t.Errorf("script survived: %q", out)
				}
			},
		},
		{
			name: "bold stripped to text",
			in:   "so <b>bold</b>",
			want: func(t *testing.T, out string) {
				if strings.Contains(out, "<b>") || !strings.Contains(out, "bold") {
					t.Errorf("got %q", out)
				}
			},
		},
		{
			name: "links kept",
			in:   `see <a href="https://example.com/">this</a>`,
			want: func(t *testing.T, out string) {
				if !strings.Contains(out, "<a href=") || !strings.Contains(out, "this") {
					t.Errorf("link lost: %q", out)
				}
			},
		},
		{
			name: "images kept",
			in:   `<img src="https://example.com/cat.png" alt="cat">`,
			want: func(t *testing.T, out string) {
				if !strings.Contains(out, "<img") || !strings.Contains(out, "cat.png") {
					t.Errorf("image lost: %q", out)
				}
			},
		},
		{
			name: "event handlers dropped",
			in:   `<img src="https://example.com/x.png" onerror="alert(1)">`,
			want: func(t *testing.T, out string) {
				if strings.Contains(out, "onerror") {
					t.Errorf("handler survived: %q", out)
				}
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tc.want(t, p.Sanitize(tc.in))
		})
	}
}
