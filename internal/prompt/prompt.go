// Package prompt turns a generation request into the instruction sent to the
// language model.
package prompt

import (
	_ "embed"
	"fmt"
	"strings"
	"text/template"

	"gopkg.in/yaml.v3"

	"mal-ai/internal/models"
)

//go:embed templates.yaml
var defaultCatalog []byte

// Catalog is the YAML shape of a template set.
type Catalog struct {
	Modes        map[string]string `yaml:"modes"`
	Language     string            `yaml:"language"`
	Instructions string            `yaml:"instructions"`
	Reference    string            `yaml:"reference"`
}

// Builder executes a parsed catalog. It is safe for concurrent use.
type Builder struct {
	modes        map[models.Mode]*template.Template
	language     *template.Template
	instructions *template.Template
	reference    *template.Template
}

// NewBuilder parses the embedded catalog.
func NewBuilder() (*Builder, error) {
	return Parse(defaultCatalog)
}

// Parse builds a Builder from a YAML catalog. Every known mode must have a
// template.
func Parse(raw []byte) (*Builder, error) {
	var cat Catalog
	if err := yaml.Unmarshal(raw, &cat); err != nil {
		return nil, fmt.Errorf("decode prompt catalog: %w", err)
	}

	b := &Builder{modes: make(map[models.Mode]*template.Template, len(models.Modes))}
	for _, mode := range models.Modes {
		text, ok := cat.Modes[string(mode)]
		if !ok || strings.TrimSpace(text) == "" {
			return nil, fmt.Errorf("prompt catalog has no template for mode %s", mode)
		}
		tmpl, err := template.New(string(mode)).Option("missingkey=error").Parse(text)
		if err != nil {
			return nil, fmt.Errorf("parse %s template: %w", mode, err)
		}
		b.modes[mode] = tmpl
	}

	var err error
	if b.language, err = template.New("language").Parse(cat.Language); err != nil {
		return nil, fmt.Errorf("parse language template: %w", err)
	}
	if b.instructions, err = template.New("instructions").Parse(cat.Instructions); err != nil {
		return nil, fmt.Errorf("parse instructions template: %w", err)
	}
	if b.reference, err = template.New("reference").Parse(cat.Reference); err != nil {
		return nil, fmt.Errorf("parse reference template: %w", err)
	}
	return b, nil
}

// Build renders the instruction for req. Optional parts are appended only
// when the request carries them, in the order language, instructions,
// reference material.
func (b *Builder) Build(req models.GenerationRequest) (string, error) {
	req = req.Canonical()
	tmpl, ok := b.modes[req.Mode]
	if !ok {
		return "", fmt.Errorf("unknown mode %q", req.Mode)
	}

	var out strings.Builder
	if err := tmpl.Execute(&out, req); err != nil {
		return "", fmt.Errorf("render %s prompt: %w", req.Mode, err)
	}

	optional := []struct {
		tmpl  *template.Template
		value string
	}{
		{b.language, req.Language},
		{b.instructions, req.Instructions},
		{b.reference, req.ReferenceText},
	}
	for _, part := range optional {
		if part.value == "" {
			continue
		}
		if err := part.tmpl.Execute(&out, part.value); err != nil {
			return "", fmt.Errorf("render %s: %w", part.tmpl.Name(), err)
		}
	}
	return out.String(), nil
}
