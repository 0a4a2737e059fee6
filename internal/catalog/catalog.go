// Package catalog loads and applies the seed set of domains, models and prompts.
package catalog

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/abdulachik/xstudio/internal/db"
	"github.com/abdulachik/xstudio/internal/suggest"
)

//go:embed default.yaml
var defaultCatalog []byte

// Catalog is the YAML seed document.
type Catalog struct {
	Domains []string `yaml:"domains"`
	Models  []Model  `yaml:"models"`
	Prompts []Prompt `yaml:"prompts"`
}

// Model is a seeded model entry.
type Model struct {
	Name         string   `yaml:"name"`
	Capabilities []string `yaml:"capabilities"` // "text", "image"
}

// Prompt is a seeded prompt entry.
type Prompt struct {
	Text   string `yaml:"text"`
	Type   string `yaml:"type"`   // Default: text
	Domain string `yaml:"domain"` // Optional
}

// Default returns the built-in catalog.
func Default() (*Catalog, error) {
	return Parse(defaultCatalog)
}

// Load reads a catalog file, or the built-in catalog when path is empty.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a catalog document.
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate checks entries, fills prompt type defaults and gives every prompt
// exactly one placeholder.
func (c *Catalog) Validate() error {
	for i, m := range c.Models {
		if strings.TrimSpace(m.Name) == "" {
			return fmt.Errorf("model %d: name is required", i)
		}
		if _, err := ParseCapabilities(m.Capabilities); err != nil {
			return fmt.Errorf("model %s: %w", m.Name, err)
		}
	}
	for i := range c.Prompts {
		p := &c.Prompts[i]
		if strings.TrimSpace(p.Text) == "" {
			return fmt.Errorf("prompt %d: text is required", i)
		}
		if p.Type == "" {
			p.Type = db.PromptTypeText
		}
		if p.Type != db.PromptTypeText && p.Type != db.PromptTypeImage {
			return fmt.Errorf("prompt %d: invalid type %q", i, p.Type)
		}
		text, err := suggest.EnsurePlaceholder(p.Text)
		if err != nil {
			return fmt.Errorf("prompt %d: %w", i, err)
		}
		p.Text = text
	}
	return nil
}

// ParseCapabilities converts capability names into a set.
func ParseCapabilities(names []string) (db.Capability, error) {
	var caps db.Capability
	for _, n := range names {
		switch strings.ToLower(strings.TrimSpace(n)) {
		case "text":
			caps |= db.CapText
		case "image":
			caps |= db.CapImage
		default:
			return 0, fmt.Errorf("unknown capability %q", n)
		}
	}
	if caps == 0 {
		return 0, fmt.Errorf("at least one capability is required")
	}
	return caps, nil
}

// SeedResult counts rows created by Seed.
type SeedResult struct {
	Domains int
	Models  int
	Prompts int
}

// Seed inserts catalog entries that are missing. Existing domains and models
// are matched by name; prompts are only seeded into an empty prompt table.
func Seed(ctx context.Context, store *db.Store, c *Catalog) (*SeedResult, error) {
	result := &SeedResult{}

	err := store.ExecTx(ctx, func(q *db.Queries) error {
		domainIDs := make(map[string]int64)
		for _, name := range c.Domains {
			id, created, err := ensureDomain(ctx, q, name)
			if err != nil {
				return err
			}
			if created {
				result.Domains++
			}
			domainIDs[name] = id
		}

		for _, m := range c.Models {
			_, err := q.GetModelByName(ctx, m.Name)
			if err == nil {
				continue
			}
			if !db.IsNotFound(err) {
				return fmt.Errorf("get model %s: %w", m.Name, err)
			}
			caps, _ := ParseCapabilities(m.Capabilities)
			if _, err := q.CreateModel(ctx, db.CreateModelParams{
				Name:        m.Name,
				TextOutput:  caps.Has(db.CapText),
				ImageOutput: caps.Has(db.CapImage),
			}); err != nil {
				return fmt.Errorf("create model %s: %w", m.Name, err)
			}
			result.Models++
		}

		count, err := q.CountPrompts(ctx)
		if err != nil {
			return fmt.Errorf("count prompts: %w", err)
		}
		if count > 0 {
			return nil
		}

		for _, p := range c.Prompts {
			text, err := suggest.EnsurePlaceholder(p.Text)
			if err != nil {
				return fmt.Errorf("seed prompt: %w", err)
			}
			arg := db.CreatePromptParams{
				Text:       text,
				PromptType: p.Type,
			}
			if p.Domain != "" {
				id, ok := domainIDs[p.Domain]
				if !ok {
					var created bool
					id, created, err = ensureDomain(ctx, q, p.Domain)
					if err != nil {
						return err
					}
					if created {
						result.Domains++
					}
					domainIDs[p.Domain] = id
				}
				arg.DomainID = db.NullID(id)
			}
			if _, err := q.CreatePrompt(ctx, arg); err != nil {
				return fmt.Errorf("create prompt: %w", err)
			}
			result.Prompts++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.Info("catalog seeded", "domains", result.Domains, "models", result.Models, "prompts", result.Prompts)
	return result, nil
}
