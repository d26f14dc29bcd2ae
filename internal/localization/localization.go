// Package localization holds the string catalogs used to render outgoing
// emails. Catalogs are JSON files named after their language code
// (e.g. "en.json"); values may contain text/template actions.
package localization

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path"
	"strings"
	"sync"
	"text/template"
)

const DefaultLang = "en"

//go:embed locales/*.json
var embedded embed.FS

// Localizer manages the translations for the application.
// It holds a map of languages, each with its own map of translation keys and values.
type Localizer struct {
	translations map[string]map[string]string
	mu           sync.RWMutex
}

// NewLocalizer loads all catalogs from a directory on disk.
func NewLocalizer(dir string) (*Localizer, error) {
	return NewLocalizerFS(os.DirFS(dir), ".")
}

// Default returns the catalogs compiled into the binary.
func Default() (*Localizer, error) {
	return NewLocalizerFS(embedded, "locales")
}

func NewLocalizerFS(fsys fs.FS, dir string) (*Localizer, error) {
	l := &Localizer{
		translations: make(map[string]map[string]string),
	}

	files, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read localization directory: %w", err)
	}

	for _, file := range files {
		if file.IsDir() || !strings.HasSuffix(file.Name(), ".json") {
			continue
		}

		lang := strings.TrimSuffix(file.Name(), ".json")
		data, err := fs.ReadFile(fsys, path.Join(dir, file.Name()))
		if err != nil {
			return nil, fmt.Errorf("failed to read localization file %s: %w", file.Name(), err)
		}

		var translations map[string]string
		if err := json.Unmarshal(data, &translations); err != nil {
			return nil, fmt.Errorf("failed to parse localization file %s: %w", file.Name(), err)
		}

		l.translations[lang] = translations
	}

	if len(l.translations) == 0 {
		return nil, fmt.Errorf("no localization files found in %s", dir)
	}
	return l, nil
}

func (l *Localizer) lookup(lang, key string) (string, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if value, ok := l.translations[lang][key]; ok {
		return value, true
	}
	if lang != DefaultLang {
		if value, ok := l.translations[DefaultLang][key]; ok {
			return value, true
		}
	}
	return "", false
}

// GetString returns the localized string for a given key and language.
// If the language or the key is not found, it returns the key itself as a fallback.
func (l *Localizer) GetString(lang, key string) string {
	if value, ok := l.lookup(lang, key); ok {
		return value
	}
	return key
}

// Render executes the catalog entry as a template with data. Missing keys
// are an error, unlike GetString.
func (l *Localizer) Render(lang, key string, data map[string]string) (string, error) {
	raw, ok := l.lookup(lang, key)
	if !ok {
		return "", fmt.Errorf("localization: unknown key %q", key)
	}

	tmpl, err := template.New(key).Option("missingkey=zero").Parse(raw)
	if err != nil {
		return "", fmt.Errorf("localization: parse %q: %w", key, err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("localization: render %q: %w", key, err)
	}
	return buf.String(), nil
}
