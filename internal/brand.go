package internal

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/iksnae/govchat/internal/content"
)

// Suggestion is a canned question offered on an empty chat
type Suggestion struct {
	Label string `json:"label" yaml:"label" toml:"label"`
	Value string `json:"value" yaml:"value" toml:"value"`
	Icon  string `json:"icon,omitempty" yaml:"icon,omitempty" toml:"icon"`
}

// Brand holds everything that differs between assistant variants
type Brand struct {
	ID            string            `json:"id" yaml:"id" toml:"id"`
	Name          string            `json:"name" yaml:"name" toml:"name"`
	AssistantName string            `json:"assistant_name" yaml:"assistant_name" toml:"assistant_name"`
	DocsURL       string            `json:"docs_url" yaml:"docs_url" toml:"docs_url"`
	DocsLabel     string            `json:"docs_label" yaml:"docs_label" toml:"docs_label"`
	SidebarTitle  string            `json:"sidebar_title" yaml:"sidebar_title" toml:"sidebar_title"`
	Color         string            `json:"color" yaml:"color" toml:"color"`
	AccentColor   string            `json:"accent_color" yaml:"accent_color" toml:"accent_color"`
	Tagline       string            `json:"tagline" yaml:"tagline" toml:"tagline"`
	ReferenceBase string            `json:"reference_base,omitempty" yaml:"reference_base,omitempty" toml:"reference_base"`
	PrefixFixes   map[string]string `json:"prefix_fixes,omitempty" yaml:"prefix_fixes,omitempty" toml:"prefix_fixes"`
	Suggestions   []Suggestion      `json:"suggestions" yaml:"suggestions" toml:"suggestions"`
}

// Resolver returns the citation resolver for the brand's documentation site
func (b *Brand) Resolver() (*content.Resolver, error) {
	base := b.ReferenceBase
	if base == "" {
		base = content.DefaultDocsBase
	}
	fixes := b.PrefixFixes
	if fixes == nil {
		fixes = content.DefaultPrefixFixes
	}
	return content.NewResolver(base, fixes)
}

func (b *Brand) validate() error {
	if strings.TrimSpace(b.ID) == "" {
		return fmt.Errorf("brand id is required")
	}
	if strings.TrimSpace(b.AssistantName) == "" {
		return fmt.Errorf("brand %q: assistant_name is required", b.ID)
	}
	if _, err := b.Resolver(); err != nil {
		return fmt.Errorf("brand %q: %w", b.ID, err)
	}
	return nil
}

// Built-in brand ids
const (
	BrandCow      = "cow"
	BrandOptimism = "optimism"
)

var builtinBrands = []Brand{
	{
		ID:            BrandCow,
		Name:          "CoW AI",
		AssistantName: "CoW AI",
		DocsURL:       "https://docs.cow.fi",
		DocsLabel:     "CoW Docs",
		SidebarTitle:  "CoW AI",
		Color:         "#33D0FF",
		AccentColor:   "#052B65",
		Tagline:       "Ask anything about CoW Protocol",
		ReferenceBase: content.DefaultDocsBase,
		Suggestions: []Suggestion{
			{Label: "buyAmount and slippage", Value: "How do I set buyAmount with slippage when creating an order?", Icon: "code"},
			{Label: "Token approval (gasless)", Value: "How do I set token approval via ABI for a gasless swap?", Icon: "code"},
			{Label: "Fast vs optimal quote", Value: "When should I use fast vs optimal quoting?", Icon: "help"},
			{Label: "Error troubleshooting", Value: "What does InsufficientBalance mean and how do I fix it?", Icon: "alert"},
		},
	},
	{
		ID:            BrandOptimism,
		Name:          "Optimism GovGPT",
		AssistantName: "Optimism GovGPT",
		DocsURL:       "https://gov.optimism.io",
		DocsLabel:     "Forum",
		SidebarTitle:  "Optimism GovGPT",
		Color:         "#FF0420",
		AccentColor:   "#FFFFFF",
		Tagline:       "Catch up on OP Governance",
		ReferenceBase: content.DefaultDocsBase,
		Suggestions: []Suggestion{
			{Label: "Governance overview", Value: "How does Optimism governance work?", Icon: "help"},
			{Label: "Citizens' House", Value: "What is the role of the Citizens' House?", Icon: "help"},
			{Label: "Retro Funding", Value: "How does Retro Funding allocate rewards?", Icon: "code"},
			{Label: "Delegating OP", Value: "How do I delegate my OP tokens?", Icon: "alert"},
		},
	},
}

// registry of known brands keyed by id, plus the set of assistant names
var registry = struct {
	sync.RWMutex
	brands     map[string]Brand
	assistants map[string]bool
}{
	brands:     map[string]Brand{},
	assistants: map[string]bool{},
}

func init() {
	for _, b := range builtinBrands {
		registry.brands[b.ID] = b
		registry.assistants[b.AssistantName] = true
	}
}

// IsAssistantName reports whether name belongs to a registered assistant
func IsAssistantName(name string) bool {
	registry.RLock()
	defer registry.RUnlock()
	return registry.assistants[name]
}

// RegisterBrand adds or replaces a brand and recognises its assistant name
func RegisterBrand(b Brand) error {
	b.ID = strings.ToLower(strings.TrimSpace(b.ID))
	if err := b.validate(); err != nil {
		return err
	}
	registry.Lock()
	defer registry.Unlock()
	registry.brands[b.ID] = b
	registry.assistants[b.AssistantName] = true
	return nil
}

// LookupBrand returns the registered brand with the given id
func LookupBrand(id string) (Brand, bool) {
	registry.RLock()
	defer registry.RUnlock()
	b, ok := registry.brands[strings.ToLower(strings.TrimSpace(id))]
	return b, ok
}

// Brands returns all registered brands sorted by id
func Brands() []Brand {
	registry.RLock()
	defer registry.RUnlock()
	out := make([]Brand, 0, len(registry.brands))
	for _, b := range registry.brands {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// LoadBrandFile reads a brand from a .yaml, .yml or .toml file and
// registers it
func LoadBrandFile(path string) (Brand, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Brand{}, &StorageError{Path: path, Op: "read", Err: err}
	}

	var b Brand
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &b)
	case ".toml":
		_, err = toml.Decode(string(data), &b)
	default:
		return Brand{}, fmt.Errorf("unsupported brand file extension %q", ext)
	}
	if err != nil {
		return Brand{}, &ParseError{Source: "brand", Key: path, Err: err}
	}
	if b.Name == "" {
		b.Name = b.AssistantName
	}

	if err := RegisterBrand(b); err != nil {
		return Brand{}, err
	}
	LogDebug("Loaded brand %q from %s", b.ID, path)
	return b, nil
}

// ResolveBrand returns a built-in or registered brand by id, or loads one
// from a file when idOrPath names a brand file
func ResolveBrand(idOrPath string) (Brand, error) {
	if idOrPath == "" {
		idOrPath = BrandCow
	}
	if b, ok := LookupBrand(idOrPath); ok {
		return b, nil
	}
	switch strings.ToLower(filepath.Ext(idOrPath)) {
	case ".yaml", ".yml", ".toml":
		return LoadBrandFile(idOrPath)
	}
	return Brand{}, fmt.Errorf("%w: %s", ErrUnknownBrand, idOrPath)
}
