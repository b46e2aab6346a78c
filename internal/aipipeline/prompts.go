package aipipeline

import (
	"bytes"
	_ "embed"
	"fmt"
	"strconv"
	"strings"
	"text/template"

	"marketplace_backend/platform/ai/provider"
	"marketplace_backend/platform/sanitize"

	"gopkg.in/yaml.v3"
)

//go:embed prompts.yaml
var promptsYAML []byte

const (
	maxPromptName        = 200
	maxPromptDescription = 2000
)

// ProductContext is the listing data a prompt may reference.
type ProductContext struct {
	ID          string
	Name        string
	Description string
	Category    string
	PriceCents  int64
}

type promptDef struct {
	System      string   `yaml:"system"`
	Instruction string   `yaml:"instruction"`
	Temperature *float32 `yaml:"temperature"`
	MaxTokens   int      `yaml:"max_tokens"`

	tmpl *template.Template
}

type promptFile struct {
	EnhanceImage promptDef `yaml:"enhance_image"`
	Suggestions  promptDef `yaml:"suggestions"`
	Captions     promptDef `yaml:"captions"`
}

// Prompts builds provider requests from the embedded templates.
type Prompts struct {
	file promptFile
}

// LoadPrompts parses the embedded prompt templates.
func LoadPrompts() (*Prompts, error) {
	return ParsePrompts(promptsYAML)
}

// ParsePrompts parses prompt templates from YAML.
func ParsePrompts(data []byte) (*Prompts, error) {
	var f promptFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse prompts: %w", err)
	}
	for name, def := range map[string]*promptDef{
		"enhance_image": &f.EnhanceImage,
		"suggestions":   &f.Suggestions,
		"captions":      &f.Captions,
	} {
		if strings.TrimSpace(def.Instruction) == "" {
			return nil, fmt.Errorf("prompt %s: instruction is empty", name)
		}
		tmpl, err := template.New(name).Option("missingkey=error").Parse(def.Instruction)
		if err != nil {
			return nil, fmt.Errorf("prompt %s: %w", name, err)
		}
		def.tmpl = tmpl
	}
	return &Prompts{file: f}, nil
}

type promptData struct {
	Name        string
	Description string
	Category    string
	Price       string
	Categories  string
}

func newPromptData(p ProductContext) promptData {
	return promptData{
		Name:        sanitize.ForPrompt(p.Name, maxPromptName),
		Description: sanitize.ForPrompt(p.Description, maxPromptDescription),
		Category:    sanitize.ForPrompt(p.Category, maxPromptName),
		Price:       FormatRupees(p.PriceCents),
		Categories:  strings.Join(SuggestionCategories, ", "),
	}
}

func (p *Prompts) build(def promptDef, product ProductContext, image *provider.Image, wantImage bool) (provider.Request, error) {
	var buf bytes.Buffer
	if err := def.tmpl.Execute(&buf, newPromptData(product)); err != nil {
		return provider.Request{}, fmt.Errorf("render prompt %s: %w", def.tmpl.Name(), err)
	}
	return provider.Request{
		System:      def.System,
		Instruction: strings.TrimSpace(buf.String()),
		Image:       image,
		WantImage:   wantImage,
		Temperature: def.Temperature,
		MaxTokens:   def.MaxTokens,
	}, nil
}

// EnhanceImage asks an image model to edit one product photo.
func (p *Prompts) EnhanceImage(product ProductContext, image provider.Image) (provider.Request, error) {
	return p.build(p.file.EnhanceImage, product, &image, true)
}

// Suggestions asks for the structured marketing insight document.
func (p *Prompts) Suggestions(product ProductContext, image *provider.Image) (provider.Request, error) {
	return p.build(p.file.Suggestions, product, image, false)
}

// Captions asks for per-platform social captions from listing text only.
func (p *Prompts) Captions(product ProductContext) (provider.Request, error) {
	return p.build(p.file.Captions, product, nil, false)
}

// FormatRupees renders a paise amount without trailing zero decimals.
func FormatRupees(cents int64) string {
	if cents%100 == 0 {
		return strconv.FormatInt(cents/100, 10)
	}
	return strconv.FormatFloat(float64(cents)/100, 'f', 2, 64)
}
