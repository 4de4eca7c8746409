// Package prompts generates localized reflective prompts with question
// rotation. Locale data is embedded at build time.
package prompts

import (
	"embed"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"

	"golang.org/x/text/language"

	"github.com/sillycarz/reflectpause/pkg/observability/logging"
)

//go:embed locales/*.json
var localeFS embed.FS

// Data is the structured prompt payload returned to clients.
type Data struct {
	Title            string `json:"title"`
	Question         string `json:"question"`
	ReflectionPrompt string `json:"reflection_prompt"`
	ContinueText     string `json:"continue_text"`
	CancelText       string `json:"cancel_text"`
	Locale           string `json:"locale"`
}

type localeData struct {
	Title            string   `json:"title"`
	Questions        []string `json:"cbt_questions"`
	ReflectionPrompt string   `json:"reflection_prompt"`
	ContinueText     string   `json:"continue_text"`
	CancelText       string   `json:"cancel_text"`
}

// Common language-name aliases accepted in place of BCP 47 tags.
var localeAliases = map[string]string{
	"english":    "en",
	"spanish":    "es",
	"french":     "fr",
	"german":     "de",
	"japanese":   "ja",
	"vietnamese": "vi",
}

// Generator rotates through localized reflection questions. Safe for
// concurrent use.
type Generator struct {
	mu        sync.Mutex
	locales   map[string]localeData
	indices   map[string]int
	supported []string
	matcher   language.Matcher
}

// NewGenerator loads the embedded locale data.
func NewGenerator() (*Generator, error) {
	entries, err := localeFS.ReadDir("locales")
	if err != nil {
		return nil, fmt.Errorf("failed to read embedded locales: %w", err)
	}

	g := &Generator{
		locales: make(map[string]localeData),
		indices: make(map[string]int),
	}

	for _, entry := range entries {
		code := strings.TrimSuffix(entry.Name(), ".json")
		data, err := localeFS.ReadFile("locales/" + entry.Name())
		if err != nil {
			return nil, fmt.Errorf("failed to read locale %s: %w", code, err)
		}

		var locale localeData
		if err := json.Unmarshal(data, &locale); err != nil {
			return nil, fmt.Errorf("failed to parse locale %s: %w", code, err)
		}
		if len(locale.Questions) == 0 {
			return nil, fmt.Errorf("locale %s has no questions", code)
		}

		g.locales[code] = locale
		g.supported = append(g.supported, code)
	}
	sort.Strings(g.supported)

	// The matcher prefers its first tag on no match, so English leads
	tags := make([]language.Tag, 0, len(g.supported)+1)
	tags = append(tags, language.English)
	for _, code := range g.supported {
		if code == "en" {
			continue
		}
		tag, err := language.Parse(code)
		if err != nil {
			return nil, fmt.Errorf("invalid locale code %s: %w", code, err)
		}
		tags = append(tags, tag)
	}
	g.matcher = language.NewMatcher(tags)

	logging.Infof("loaded %d locales: %v", len(g.supported), g.supported)
	return g, nil
}

// AvailableLocales returns the supported locale codes in sorted order.
func (g *Generator) AvailableLocales() []string {
	return append([]string(nil), g.supported...)
}

// Normalize resolves aliases, regional variants (es-MX, en_US), and unknown
// locales to a supported code, falling back to English.
func (g *Generator) Normalize(locale string) string {
	locale = strings.ToLower(strings.TrimSpace(locale))
	if locale == "" {
		return "en"
	}

	if _, ok := g.locales[locale]; ok {
		return locale
	}

	if alias, ok := localeAliases[locale]; ok {
		if _, supported := g.locales[alias]; supported {
			return alias
		}
	}

	// BCP 47 matching handles region subtags and close variants
	tag, err := language.Parse(strings.ReplaceAll(locale, "_", "-"))
	if err == nil {
		matched, _, confidence := g.matcher.Match(tag)
		if confidence > language.No {
			base, _ := matched.Base()
			if _, supported := g.locales[base.String()]; supported {
				return base.String()
			}
		}
	}

	logging.Warnf("locale %q not supported, falling back to English", locale)
	return "en"
}

// Generate returns the localized prompt payload for locale, advancing that
// locale's question rotation.
func (g *Generator) Generate(locale string) (Data, error) {
	resolved := g.Normalize(locale)

	g.mu.Lock()
	defer g.mu.Unlock()

	data, ok := g.locales[resolved]
	if !ok {
		return Data{}, fmt.Errorf("no locale data for %q", resolved)
	}

	index := g.indices[resolved]
	question := data.Questions[index]
	g.indices[resolved] = (index + 1) % len(data.Questions)

	return Data{
		Title:            data.Title,
		Question:         question,
		ReflectionPrompt: data.ReflectionPrompt,
		ContinueText:     data.ContinueText,
		CancelText:       data.CancelText,
		Locale:           resolved,
	}, nil
}
