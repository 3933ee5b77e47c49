package generate

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/joseph-ayodele/reportai/constants"
)

// Section is one heading and its markdown body.
type Section struct {
	Heading string `json:"heading"`
	Body    string `json:"body"`
}

// Render lays sections out as a markdown document titled after kind.
func Render(kind constants.ReportKind, sections []Section) string {
	var b strings.Builder
	b.WriteString("# " + kind.Title() + " Report\n")
	for _, s := range sections {
		b.WriteString("\n## " + s.Heading + "\n")
		b.WriteString(strings.TrimSpace(s.Body))
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// SectionsSchema returns the JSON Schema an LLM answer must satisfy for t.
// Heading order is checked separately by DecodeSections.
func SectionsSchema(t Template) map[string]any {
	n := len(t.Sections)
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"required":             []string{"sections"},
		"properties": map[string]any{
			"sections": map[string]any{
				"type":     "array",
				"minItems": n,
				"maxItems": n,
				"items": map[string]any{
					"type":                 "object",
					"additionalProperties": false,
					"required":             []string{"heading", "body"},
					"properties": map[string]any{
						"heading": map[string]any{"type": "string", "enum": t.Sections},
						"body":    map[string]any{"type": "string", "pattern": `\S`},
					},
				},
			},
		},
	}
}

// ValidateJSON validates data against schemaMap.
func ValidateJSON(schemaMap map[string]any, data []byte) error {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("sections.json", bytes.NewReader(b)); err != nil {
		return fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("sections.json")
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal data: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("json does not match schema: %w", err)
	}
	return nil
}

// StripCodeFences removes a surrounding ``` fence, with or without a
// language tag.
func StripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	} else {
		s = strings.TrimPrefix(s, "```")
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// SanitizeSections repairs common deviations so the answer can still
// validate: a bare array, synonym keys, stray '#' and casing in headings,
// and unknown keys. It returns what was changed.
func SanitizeSections(raw []byte, t Template) ([]byte, []string, error) {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, nil, fmt.Errorf("sanitize: decode: %w", err)
	}

	var changed []string
	var items []any
	switch top := v.(type) {
	case []any:
		items = top
		changed = append(changed, "sections(wrapped)")
	case map[string]any:
		for k := range top {
			if k != "sections" {
				changed = append(changed, k+"(unknown)")
			}
		}
		arr, ok := top["sections"].([]any)
		if !ok {
			return nil, changed, fmt.Errorf("sanitize: sections is not an array")
		}
		items = arr
	default:
		return nil, nil, fmt.Errorf("sanitize: unexpected top-level %T", v)
	}

	canonical := make(map[string]string, len(t.Sections))
	for _, h := range t.Sections {
		canonical[strings.ToLower(h)] = h
	}

	out := make([]Section, 0, len(items))
	for i, it := range items {
		m, ok := it.(map[string]any)
		if !ok {
			changed = append(changed, fmt.Sprintf("sections[%d](type)", i))
			continue
		}
		var s Section
		for k, val := range m {
			str, _ := val.(string)
			switch k {
			case "heading":
				s.Heading = str
			case "title", "section", "name":
				s.Heading = str
				changed = append(changed, k+"->heading")
			case "body":
				s.Body = str
			case "content", "text":
				s.Body = str
				changed = append(changed, k+"->body")
			default:
				changed = append(changed, k+"(unknown)")
			}
		}
		h := strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(s.Heading), "#"))
		if c, ok := canonical[strings.ToLower(h)]; ok {
			h = c
		}
		if h != s.Heading {
			changed = append(changed, fmt.Sprintf("sections[%d].heading", i))
		}
		s.Heading = h
		s.Body = strings.TrimSpace(s.Body)
		out = append(out, s)
	}

	b, err := json.Marshal(map[string]any{"sections": out})
	if err != nil {
		return nil, changed, fmt.Errorf("sanitize: encode: %w", err)
	}
	return b, changed, nil
}

// DecodeSections parses an LLM answer for t: fences are stripped, the JSON
// is validated strictly, then once more after SanitizeSections, and the
// headings must follow the template order.
func DecodeSections(answer string, t Template, logger *slog.Logger) ([]Section, error) {
	if logger == nil {
		logger = slog.Default()
	}
	content := []byte(StripCodeFences(answer))
	schema := SectionsSchema(t)

	if err := ValidateJSON(schema, content); err != nil {
		cleaned, changed, sErr := SanitizeSections(content, t)
		if sErr != nil {
			logger.Error("generate.sections.sanitize_failed", "error", sErr, "strict_error", err)
			return nil, fmt.Errorf("%w: %w", ErrGeneration, sErr)
		}
		if vErr := ValidateJSON(schema, cleaned); vErr != nil {
			logger.Error("generate.sections.schema_validation_failed", "error", vErr)
			return nil, fmt.Errorf("%w: schema validation failed: %w", ErrGeneration, vErr)
		}
		logger.Warn("generate.sections.lenient_sanitize_applied", "changed", changed)
		content = cleaned
	}

	var out struct {
		Sections []Section `json:"sections"`
	}
	if err := json.Unmarshal(content, &out); err != nil {
		return nil, fmt.Errorf("%w: unmarshal sections: %w", ErrGeneration, err)
	}
	for i, s := range out.Sections {
		if s.Heading != t.Sections[i] {
			return nil, fmt.Errorf("%w: section %d is %q, want %q", ErrGeneration, i+1, s.Heading, t.Sections[i])
		}
	}
	return out.Sections, nil
}
