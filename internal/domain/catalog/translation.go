package catalog

import "context"

// TranslationRepository resolves free-text source strings to their
// storefront-language counterparts. Lookups that have no translation row
// fall back to the source text; implementations return ("", false) and the
// caller applies the fallback.
type TranslationRepository interface {
	// Lookup returns the translated text for the exact source text.
	// The second return value is false when no translation row exists.
	Lookup(ctx context.Context, sourceText string) (string, bool, error)
}

// Translation is one source → translated text row
type Translation struct {
	SourceText     string
	TranslatedText string
}
