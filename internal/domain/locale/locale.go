// Package locale provides the localisation bundles used for step messages
// and app names.
package locale

import (
	"embed"
	"errors"
	"fmt"
	"path"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/pelletier/go-toml/v2"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// DefaultTag is the bundle used when none is configured.
const DefaultTag = "en_US"

// ErrUnknownLocale is returned when no bundle matches a tag.
var ErrUnknownLocale = errors.New("unknown locale")

//go:embed bundles/*.toml
var bundleFS embed.FS

// Messages are the progress messages attached to plan steps.
type Messages struct {
	Loading      string `toml:"loading"`
	Initializing string `toml:"initializing"`
	Data         string `toml:"data"`
	UI           string `toml:"ui"`
	Draw         string `toml:"draw"`
	TooltipReset string `toml:"tooltip_reset"`
}

// Bundle is one localisation.
type Bundle struct {
	Tag           string            `toml:"tag"`
	Message       Messages          `toml:"message"`
	Visualization map[string]string `toml:"visualization"`

	lang language.Tag
}

var (
	loadOnce sync.Once
	bundles  map[string]*Bundle
	loadErr  error
)

// Parse decodes a TOML bundle.
func Parse(data []byte) (*Bundle, error) {
	var b Bundle
	if err := toml.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("failed to parse locale bundle: %w", err)
	}
	if b.Tag == "" {
		return nil, fmt.Errorf("locale bundle has no tag")
	}
	lang, err := language.Parse(normalize(b.Tag))
	if err != nil {
		return nil, fmt.Errorf("locale bundle %q: %w", b.Tag, err)
	}
	b.lang = lang
	return &b, nil
}

func load() {
	bundles = make(map[string]*Bundle)
	entries, err := bundleFS.ReadDir("bundles")
	if err != nil {
		loadErr = err
		return
	}
	for _, e := range entries {
		data, err := bundleFS.ReadFile(path.Join("bundles", e.Name()))
		if err != nil {
			loadErr = err
			return
		}
		b, err := Parse(data)
		if err != nil {
			loadErr = err
			return
		}
		bundles[normalize(b.Tag)] = b
	}
}

// Default returns the en_US bundle.
func Default() *Bundle {
	b, err := Lookup(DefaultTag)
	if err != nil {
		panic("locale: embedded default bundle is invalid: " + err.Error())
	}
	return b
}

// Lookup returns the embedded bundle for tag. Both en_US and en-US forms
// are accepted.
func Lookup(tag string) (*Bundle, error) {
	loadOnce.Do(load)
	if loadErr != nil {
		return nil, loadErr
	}
	if b, ok := bundles[normalize(tag)]; ok {
		return b, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownLocale, tag)
}

// Available lists the embedded bundle tags.
func Available() []string {
	loadOnce.Do(load)
	tags := make([]string, 0, len(bundles))
	for _, b := range bundles {
		tags = append(tags, b.Tag)
	}
	sort.Strings(tags)
	return tags
}

// Language returns the parsed language tag.
func (b *Bundle) Language() language.Tag {
	return b.lang
}

// Format substitutes positional {0}, {1}, ... placeholders in msg.
func (b *Bundle) Format(msg string, args ...string) string {
	if len(args) == 0 {
		return msg
	}
	pairs := make([]string, 0, len(args)*2)
	for i, a := range args {
		pairs = append(pairs, "{"+strconv.Itoa(i)+"}", a)
	}
	return strings.NewReplacer(pairs...).Replace(msg)
}

// AppName returns the localised name of an app type, or the type itself.
func (b *Bundle) AppName(appType string) string {
	if name, ok := b.Visualization[appType]; ok && name != "" {
		return name
	}
	return appType
}

// Label returns the lower-cased localised app name used in diagnostics.
func (b *Bundle) Label(appType string) string {
	return cases.Lower(b.lang).String(b.AppName(appType))
}

func normalize(tag string) string {
	return strings.ReplaceAll(strings.TrimSpace(tag), "_", "-")
}
