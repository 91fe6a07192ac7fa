// Package prompts holds the prompt templates sent to the generation backend.
// Defaults are embedded; a YAML file can override individual templates.
package prompts

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
	"text/template"

	"gopkg.in/yaml.v3"
)

// Template keys.
const (
	RouteAnalysis    = "route_analysis"
	PredictiveAlerts = "predictive_alerts"
	DescribeIssue    = "describe_issue"
)

//go:embed prompts.yaml
var defaultPrompts []byte

type definition struct {
	Name string `yaml:"name"`
	Text string `yaml:"text"`
}

// Rendered is a prompt ready to send.
type Rendered struct {
	Name string
	Text string
}

// Set is a parsed collection of prompt templates keyed by purpose.
type Set struct {
	names     map[string]string
	templates map[string]*template.Template
}

// Default parses the embedded templates.
func Default() (*Set, error) {
	return Load("")
}

// Load parses the embedded templates and applies overrides from path when set.
func Load(path string) (*Set, error) {
	defs, err := parse(defaultPrompts)
	if err != nil {
		return nil, fmt.Errorf("embedded prompts: %w", err)
	}

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read prompts %s: %w", path, err)
		}
		overrides, err := parse(raw)
		if err != nil {
			return nil, fmt.Errorf("prompts %s: %w", path, err)
		}
		for key, def := range overrides {
			base := defs[key]
			if def.Name != "" {
				base.Name = def.Name
			}
			if strings.TrimSpace(def.Text) != "" {
				base.Text = def.Text
			}
			defs[key] = base
		}
	}

	set := &Set{
		names:     make(map[string]string, len(defs)),
		templates: make(map[string]*template.Template, len(defs)),
	}
	for key, def := range defs {
		tmpl, err := template.New(key).Option("missingkey=error").Parse(def.Text)
		if err != nil {
			return nil, fmt.Errorf("prompt %s: %w", key, err)
		}
		name := def.Name
		if name == "" {
			name = key
		}
		set.names[key] = name
		set.templates[key] = tmpl
	}

	for _, key := range []string{RouteAnalysis, PredictiveAlerts, DescribeIssue} {
		if _, ok := set.templates[key]; !ok {
			return nil, fmt.Errorf("prompt %s is not defined", key)
		}
	}

	return set, nil
}

// Render executes the template registered under key with data.
func (s *Set) Render(key string, data any) (Rendered, error) {
	tmpl, ok := s.templates[key]
	if !ok {
		return Rendered{}, fmt.Errorf("prompt %s is not defined", key)
	}

	var b strings.Builder
	if err := tmpl.Execute(&b, data); err != nil {
		return Rendered{}, fmt.Errorf("render prompt %s: %w", key, err)
	}
	return Rendered{Name: s.names[key], Text: strings.TrimSpace(b.String())}, nil
}

func parse(raw []byte) (map[string]definition, error) {
	defs := map[string]definition{}
	if err := yaml.Unmarshal(raw, &defs); err != nil {
		return nil, err
	}
	return defs, nil
}
