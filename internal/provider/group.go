package provider

import (
	"sort"
	"strings"
)

// CategoryOther collects voices whose language cannot be derived.
const CategoryOther = "Other"

// Group is one language category of the catalog, in presentation order.
type Group struct {
	Category string
	Voices   []Voice
}

// categorizeFunc derives the language category for one voice.
type categorizeFunc func(v Voice) string

var categorizers = map[ID]categorizeFunc{
	ElevenLabs: categorizeElevenLabs,
	EdgeTTS:    categorizeEdge,
	LemonFox:   categorizeLemonFox,
}

// GroupByLanguage buckets a catalog into language categories. The result is
// deterministic: categories sorted lexicographically, voices kept in catalog
// order. Unknown providers get a single "Other" bucket.
func GroupByLanguage(id ID, voices []Voice) []Group {
	fn, ok := categorizers[id]
	if !ok {
		fn = func(Voice) string { return CategoryOther }
	}

	buckets := make(map[string][]Voice)
	for _, v := range voices {
		category := fn(v)
		if category == "" {
			category = CategoryOther
		}
		buckets[category] = append(buckets[category], v)
	}

	categories := make([]string, 0, len(buckets))
	for category := range buckets {
		categories = append(categories, category)
	}
	sort.Strings(categories)

	groups := make([]Group, 0, len(categories))
	for _, category := range categories {
		groups = append(groups, Group{Category: category, Voices: buckets[category]})
	}

	return groups
}

// ElevenLabs descriptions are free text; a best-effort substring scan is the
// only language signal available.
func categorizeElevenLabs(v Voice) string {
	for _, name := range []string{"English", "Spanish", "German", "French", "Italian", "Portuguese", "Japanese", "Chinese"} {
		if strings.Contains(v.Description, name) {
			return name
		}
	}
	return CategoryOther
}

// Edge descriptions carry a structured "<Gender>, <Locale>" tail; the locale
// prefix resolves through the fixed language table, unknown codes fall back
// to the uppercased code itself.
func categorizeEdge(v Voice) string {
	_, locale, found := strings.Cut(v.Description, ", ")
	if !found || locale == "" {
		return CategoryOther
	}

	code := strings.ToLower(locale)
	if before, _, ok := strings.Cut(code, "-"); ok {
		code = before
	}
	if code == "" {
		return CategoryOther
	}

	if name, ok := languageNames[code]; ok {
		return name
	}
	return strings.ToUpper(code)
}

func categorizeLemonFox(v Voice) string {
	if v.Language != "" {
		return v.Language
	}
	return CategoryOther
}

// Matches reports whether term matches the voice name, case-insensitively.
// An empty term matches everything.
func Matches(v Voice, term string) bool {
	if term == "" {
		return true
	}
	return strings.Contains(strings.ToLower(v.Name), strings.ToLower(term))
}

// Filter returns the voices whose names match term, in catalog order.
func Filter(voices []Voice, term string) []Voice {
	if term == "" {
		return voices
	}

	matched := make([]Voice, 0, len(voices))
	for _, v := range voices {
		if Matches(v, term) {
			matched = append(matched, v)
		}
	}
	return matched
}
