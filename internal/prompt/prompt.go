// Package prompt provides template formatting and tagged-section extraction
// for building and reading LLM requests.
package prompt

import (
	"fmt"
	"strings"
)

// MissingVariableError reports a template placeholder that has no value in
// the supplied variables.
type MissingVariableError struct {
	// Name is the placeholder that could not be resolved.
	Name string
}

func (e *MissingVariableError) Error() string {
	return fmt.Sprintf("missing template variable %q", e.Name)
}

// Format substitutes every {name} placeholder in template with the value
// from vars. Doubled braces ({{ and }}) escape to literal braces. If any
// placeholder has no matching value, Format returns a *MissingVariableError
// naming it and an empty string; it never returns a partially substituted
// template. Inputs are not mutated.
func Format(template string, vars map[string]string) (string, error) {
	var b strings.Builder
	b.Grow(len(template))

	for i := 0; i < len(template); {
		c := template[i]
		switch c {
		case '{':
			if i+1 < len(template) && template[i+1] == '{' {
				b.WriteByte('{')
				i += 2
				continue
			}
			end := strings.IndexByte(template[i+1:], '}')
			if end == -1 {
				return "", fmt.Errorf("unclosed placeholder at offset %d", i)
			}
			name := template[i+1 : i+1+end]
			value, ok := vars[name]
			if !ok {
				return "", &MissingVariableError{Name: name}
			}
			b.WriteString(value)
			i += end + 2
		case '}':
			if i+1 < len(template) && template[i+1] == '}' {
				b.WriteByte('}')
				i += 2
				continue
			}
			b.WriteByte('}')
			i++
		default:
			b.WriteByte(c)
			i++
		}
	}

	return b.String(), nil
}

// ExtractTagged returns the content of the first <tag>...</tag> section in
// text. The second return value is false when no such section exists; an
// absent tag is never an error at this boundary.
func ExtractTagged(text, tag string) (string, bool) {
	open := "<" + tag + ">"
	closing := "</" + tag + ">"

	start := strings.Index(text, open)
	if start == -1 {
		return "", false
	}
	rest := text[start+len(open):]

	end := strings.Index(rest, closing)
	if end == -1 {
		return "", false
	}
	return rest[:end], true
}

// Merge combines the caller's context with a set of fixed fields. Fixed
// fields win on name collisions. Neither input is mutated.
func Merge(context, fixed map[string]string) map[string]string {
	merged := make(map[string]string, len(context)+len(fixed))
	for k, v := range context {
		merged[k] = v
	}
	for k, v := range fixed {
		merged[k] = v
	}
	return merged
}
