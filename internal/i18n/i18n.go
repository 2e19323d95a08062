// Package i18n resolves the bot's reply texts from YAML catalogs.
package i18n

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed locales/*.yaml
var locales embed.FS

// DefaultLang is the language every catalog must provide.
const DefaultLang = "ar"

// Translator resolves localized strings using dot-separated keys.
type Translator interface {
	T(key string) string
	// F formats the message under key with args, like fmt.Sprintf.
	F(key string, args ...any) string
	Lang() string
}

// catalog maps a language to its flattened key/message pairs.
type catalog map[string]map[string]string

// Manager holds the loaded catalogs.
type Manager struct {
	messages    catalog
	defaultLang string
}

// Load reads the catalogs embedded in the binary.
func Load(defaultLang string) (*Manager, error) {
	return LoadFS(locales, "locales", defaultLang)
}

// LoadFS reads every .yaml/.yml file in dir of fsys. Each file holds one top-level
// key per language with nested message groups below it.
func LoadFS(fsys fs.FS, dir, defaultLang string) (*Manager, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("i18n: read dir %s: %w", dir, err)
	}

	messages := make(catalog)
	for _, entry := range entries {
		ext := strings.ToLower(path.Ext(entry.Name()))
		if entry.IsDir() || (ext != ".yaml" && ext != ".yml") {
			continue
		}
		if err := messages.merge(fsys, path.Join(dir, entry.Name())); err != nil {
			return nil, err
		}
	}
	if len(messages) == 0 {
		return nil, fmt.Errorf("i18n: no messages found in %s", dir)
	}

	defaultLang = normalize(defaultLang)
	if defaultLang == "" {
		defaultLang = DefaultLang
	}
	if _, ok := messages[defaultLang]; !ok {
		return nil, fmt.Errorf("i18n: default language %q is missing", defaultLang)
	}

	return &Manager{messages: messages, defaultLang: defaultLang}, nil
}

func (c catalog) merge(fsys fs.FS, name string) error {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return fmt.Errorf("i18n: read file %s: %w", name, err)
	}

	var raw map[string]map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("i18n: parse file %s: %w", name, err)
	}

	for lang, tree := range raw {
		lang = normalize(lang)
		if lang == "" {
			continue
		}
		if c[lang] == nil {
			c[lang] = make(map[string]string)
		}
		flatten("", tree, c[lang])
	}
	return nil
}

// flatten turns nested groups into dotted keys; yaml.v3 decodes mappings as map[string]any.
func flatten(prefix string, tree map[string]any, out map[string]string) {
	for key, value := range tree {
		if prefix != "" {
			key = prefix + "." + key
		}
		switch v := value.(type) {
		case string:
			out[key] = v
		case map[string]any:
			flatten(key, v, out)
		}
	}
}

func normalize(lang string) string {
	return strings.ToLower(strings.TrimSpace(lang))
}

// Translator returns a translator for lang, or for the default language when lang
// has no catalog.
func (m *Manager) Translator(lang string) Translator {
	if m == nil {
		return translator{}
	}

	lang = normalize(lang)
	if m.messages[lang] == nil {
		lang = m.defaultLang
	}
	return translator{lang: lang, fallback: m.messages[m.defaultLang], messages: m.messages[lang]}
}

type translator struct {
	lang     string
	messages map[string]string
	fallback map[string]string
}

func (t translator) Lang() string {
	return t.lang
}

// T returns the message for key, then the default language's, then key itself.
func (t translator) T(key string) string {
	if v, ok := t.messages[key]; ok {
		return v
	}
	if v, ok := t.fallback[key]; ok {
		return v
	}
	return key
}

func (t translator) F(key string, args ...any) string {
	return fmt.Sprintf(t.T(key), args...)
}
