// Package sanitize strips markup from user content before it is
// persisted or relayed. Only inline links and images survive.
package sanitize

import "github.com/microcosm-cc/bluemonday"

type Policy struct {
	p *bluemonday.Policy
}

func New() *Policy {
	p := bluemonday.NewPolicy()
	p.AllowStandardURLs()
	p.AllowAttrs("href").OnElements("a")
	p.AllowAttrs("src", "alt").OnElements("img")
	p.AllowElements("a", "img")
	return &Policy{p: p}
}

func (s *Policy) Sanitize(raw string) string {
	return s.p.Sanitize(raw)
}
