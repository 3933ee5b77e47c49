package generate

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/joseph-ayodele/reportai/constants"
)

//go:embed templates.yaml
var defaultTemplatesYAML []byte

// Template is the section contract for one report kind.
type Template struct {
	Sections []string `yaml:"sections"`
	Tone     string   `yaml:"tone"`
	Focus    string   `yaml:"focus"`
}

type Templates map[constants.ReportKind]Template

// DefaultTemplates returns the built-in templates.
func DefaultTemplates() Templates {
	t, err := parseTemplates(defaultTemplatesYAML)
	if err != nil {
		panic(fmt.Sprintf("embedded templates: %v", err))
	}
	return t
}

// LoadTemplates overlays the YAML file at path on the built-in templates.
// An empty path returns the defaults.
func LoadTemplates(path string) (Templates, error) {
	base := DefaultTemplates()
	if path == "" {
		return base, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read templates %s: %w", path, err)
	}
	over, err := parseTemplates(b)
	if err != nil {
		return nil, fmt.Errorf("templates %s: %w", path, err)
	}
	for k, t := range over {
		base[k] = t
	}
	return base, nil
}

// For returns the template of kind.
func (ts Templates) For(kind constants.ReportKind) (Template, error) {
	t, ok := ts[kind]
	if !ok {
		return Template{}, fmt.Errorf("%w: no template for kind %q", ErrGeneration, kind)
	}
	return t, nil
}

func parseTemplates(b []byte) (Templates, error) {
	raw := map[string]Template{}
	if err := yaml.Unmarshal(b, &raw); err != nil {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	out := make(Templates, len(raw))
	for name, t := range raw {
		kind, ok := constants.ParseReportKind(name)
		if !ok {
			return nil, fmt.Errorf("unknown report kind %q", name)
		}
		if len(t.Sections) == 0 {
			return nil, fmt.Errorf("kind %s: at least one section is required", kind)
		}
		out[kind] = t
	}
	return out, nil
}
