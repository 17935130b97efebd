package internal

import (
	"strings"

	"golang.org/x/text/language"
)

// maxAcceptLanguageLength bounds the Accept-Language header that is parsed.
const maxAcceptLanguageLength = 4096

// ExtractorSource extracts a value from the request context.
// Returns the value and true if found, or ("", false) if not present.
type ExtractorSource = func(Context) (string, bool)

// Extractor tries multiple sources in order and returns the first match.
type Extractor struct {
	sources []ExtractorSource
}

// NewExtractor creates an Extractor that tries the given sources in order.
func NewExtractor(sources ...ExtractorSource) Extractor {
	return Extractor{sources: sources}
}

// Extract iterates sources in order and returns the first non-empty value.
// Returns ("", false) if all sources miss.
func (e Extractor) Extract(c Context) (string, bool) {
	for _, src := range e.sources {
		if v, ok := src(c); ok && v != "" {
			return v, true
		}
	}
	return "", false
}

// Len returns the number of sources.
func (e Extractor) Len() int { return len(e.sources) }

// FromQuery returns a source that reads a query parameter.
func FromQuery(name string) ExtractorSource {
	return func(c Context) (string, bool) {
		v := c.Request().QueryValue(name)
		return v, v != ""
	}
}

// FromBody returns a source that reads a scalar body field.
func FromBody(name string) ExtractorSource {
	return func(c Context) (string, bool) {
		v, ok := c.Request().BodyValue(name)
		if !ok {
			return "", false
		}
		s, ok := v.(string)
		return s, ok && s != ""
	}
}

// FromHeader returns a source that reads a request header.
func FromHeader(name string) ExtractorSource {
	return func(c Context) (string, bool) {
		v := strings.TrimSpace(c.Request().Header(name))
		return v, v != ""
	}
}

// FromAcceptLanguage returns a source that negotiates the Accept-Language
// header against the supported locales. The matched entry of supported is
// returned as written. Misses when the header is absent or nothing matches.
func FromAcceptLanguage(supported ...string) ExtractorSource {
	tags := make([]language.Tag, 0, len(supported))
	names := make([]string, 0, len(supported))
	for _, s := range supported {
		tag, err := language.Parse(s)
		if err != nil {
			continue
		}
		tags = append(tags, tag)
		names = append(names, s)
	}
	if len(tags) == 0 {
		return func(Context) (string, bool) { return "", false }
	}
	matcher := language.NewMatcher(tags)

	return func(c Context) (string, bool) {
		header := c.Request().Header("Accept-Language")
		if header == "" {
			return "", false
		}
		if len(header) > maxAcceptLanguageLength {
			header = header[:maxAcceptLanguageLength]
		}
		accepted, _, err := language.ParseAcceptLanguage(header)
		if err != nil || len(accepted) == 0 {
			return "", false
		}
		_, idx, conf := matcher.Match(accepted...)
		if conf == language.No {
			return "", false
		}
		return names[idx], true
	}
}

// FromConfig returns a source that reads a scalar key of a config category.
func FromConfig(category, key string) ExtractorSource {
	return func(c Context) (string, bool) {
		v := c.Config().Category(category).String(key)
		return v, v != ""
	}
}
