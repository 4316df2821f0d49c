package translate

import (
	"context"
	"log/slog"

	"golang.org/x/text/language"

	"github.com/veilletech/rss-engine/app/update"
)

// Service applies the display language to a batch of records. A record is
// translated only when its source language differs from the display language;
// when any field of a record fails to translate, the whole record keeps its
// original text so stored entries are never half-translated.
type Service struct {
	translator Translator
	display    language.Base
	displayTag string
}

// NewService builds a translation service targeting displayLang (a BCP-47
// tag). A nil translator disables translation entirely; records then pass
// through in their source language.
func NewService(translator Translator, displayLang string) *Service {
	tag, err := language.Parse(displayLang)
	if err != nil {
		slog.Warn("Invalid display language, falling back to French", "language", displayLang, "error", err)
		tag = language.French
	}
	base, _ := tag.Base()

	return &Service{
		translator: translator,
		display:    base,
		displayTag: base.String(),
	}
}

// NeedsTranslation compares base languages, so "en-US" and "en" agree.
func (s *Service) NeedsTranslation(sourceLang string) bool {
	if s.translator == nil || sourceLang == "" {
		return false
	}

	tag, err := language.Parse(sourceLang)
	if err != nil {
		return false
	}
	base, confidence := tag.Base()
	if confidence == language.No {
		return false
	}

	return base != s.display
}

// Run translates a batch in place and returns the number of records whose
// translation failed (those keep their original text).
func (s *Service) Run(ctx context.Context, updates []update.Update, sourceLang string) ([]update.Update, int) {
	if !s.NeedsTranslation(sourceLang) {
		return updates, 0
	}

	srcTag, _ := language.Parse(sourceLang)
	srcBase, _ := srcTag.Base()
	src := srcBase.String()

	failed := 0
	for i := range updates {
		translated, ok := s.translateUpdate(ctx, updates[i], src)
		if !ok {
			failed++
			continue
		}
		updates[i] = translated
	}

	return updates, failed
}

func (s *Service) translateUpdate(ctx context.Context, u update.Update, src string) (update.Update, bool) {
	title, err := s.translator.Translate(ctx, u.Title, src, s.displayTag)
	if err != nil {
		slog.Warn("Title translation failed, keeping original text", "id", u.ID, "error", err)
		return u, false
	}

	description := u.Description
	if description != "" {
		description, err = s.translator.Translate(ctx, u.Description, src, s.displayTag)
		if err != nil {
			slog.Warn("Description translation failed, keeping original text", "id", u.ID, "error", err)
			return u, false
		}
	}

	u.Title = title
	u.Description = description
	u.Signature = update.ComputeSignature(u.Title, u.Description, u.Link, u.PublishedDate)

	return u, true
}
