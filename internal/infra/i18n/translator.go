package i18n

import (
	"embed"
	"fmt"
	"io/fs"
	"path"

	"gopkg.in/yaml.v3"
)

//go:embed locales
var LocalesFS embed.FS

// DefaultLang is the only catalog the bot ships with.
const DefaultLang = "uk"

// Translator resolves message keys from a YAML catalog.
type Translator struct {
	translations map[string]string
	privacyText  string
}

// NewTranslator loads locales/<lang>.yaml and locales/privacy-<lang>.txt from fsys.
func NewTranslator(fsys fs.FS, langCode string) (*Translator, error) {
	filePath := path.Join("locales", fmt.Sprintf("%s.yaml", langCode))
	data, err := fs.ReadFile(fsys, filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read translation file %s: %w", filePath, err)
	}
	t, err := newTranslatorFromBytes(data)
	if err != nil {
		return nil, err
	}

	privacyPath := path.Join("locales", fmt.Sprintf("privacy-%s.txt", langCode))
	privacyBytes, err := fs.ReadFile(fsys, privacyPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read privacy file %s: %w", privacyPath, err)
	}
	t.privacyText = string(privacyBytes)
	return t, nil
}

// MustDefault loads the embedded Ukrainian catalog.
func MustDefault() *Translator {
	t, err := NewTranslator(LocalesFS, DefaultLang)
	if err != nil {
		panic(err)
	}
	return t
}

func newTranslatorFromBytes(data []byte) (*Translator, error) {
	var translations map[string]string
	if err := yaml.Unmarshal(data, &translations); err != nil {
		return nil, fmt.Errorf("failed to parse translation file: %w", err)
	}
	return &Translator{translations: translations}, nil
}

// T returns the message for key, formatted with args. Unknown keys come back verbatim.
func (t *Translator) T(key string, args ...interface{}) string {
	format, ok := t.translations[key]
	if !ok {
		return key
	}
	if len(args) > 0 {
		return fmt.Sprintf(format, args...)
	}
	return format
}

func (t *Translator) Privacy() string {
	return t.privacyText
}
