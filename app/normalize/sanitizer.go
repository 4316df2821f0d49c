package normalize

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// Sanitizer reduces feed-provided HTML fragments to plain text: every tag is
// stripped and every named or numeric entity decoded. Stored titles and
// descriptions must never contain markup, so this is a hard guarantee of the
// normalizer, not a cosmetic cleanup.
type Sanitizer struct {
	policy *bluemonday.Policy
}

func NewSanitizer() *Sanitizer {
	return &Sanitizer{
		policy: bluemonday.StrictPolicy(),
	}
}

func (s *Sanitizer) Run(text string) string {
	if text == "" {
		return ""
	}

	// Feeds ship entity-encoded markup (CDATA-escaped bodies) and
	// double-encoded entities ("&amp;amp;"), so a decode pass can expose tags
	// an earlier strip never saw. Stripping and decoding alternate until the
	// text is stable, with a small bound so a pathological input cannot loop.
	out := text
	for i := 0; i < 4; i++ {
		decoded := html.UnescapeString(s.policy.Sanitize(out))
		if decoded == out {
			break
		}
		out = decoded
	}

	return collapseWhitespace(out)
}

func collapseWhitespace(text string) string {
	return strings.Join(strings.Fields(text), " ")
}
