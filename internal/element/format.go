package element

import (
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Format selects how a Tree snapshot is rendered for a tool-call response
// (spec §4.2 "Output formats").
type Format string

const (
	FormatVerboseJSON  Format = "verbose_json"
	FormatCompactYAML  Format = "compact_yaml"
	FormatClusteredYAML Format = "clustered_yaml"
)

// compactNode is the trimmed, human/LLM-friendly shape used by both YAML
// formats: only attributes that are non-empty/non-default are kept.
type compactNode struct {
	Role     string         `yaml:"role"`
	Name     string         `yaml:"name,omitempty"`
	ID       string         `yaml:"id,omitempty"`
	Value    string         `yaml:"value,omitempty"`
	State    string         `yaml:"state,omitempty"`
	Index    int            `yaml:"index,omitempty"`
	Children []*compactNode `yaml:"children,omitempty"`
}

// Render serializes t according to format. clustered_yaml additionally
// returns an index-to-bounds map so a caller can translate a compact index
// back into click coordinates without re-walking the live tree.
func Render(t *Tree, format Format) (string, map[int]Bounds, error) {
	switch format {
	case FormatVerboseJSON, "":
		b, err := json.MarshalIndent(t, "", "  ")
		return string(b), nil, err
	case FormatCompactYAML:
		node, _ := toCompact(t, new(int), nil)
		b, err := yaml.Marshal(node)
		return string(b), nil, err
	case FormatClusteredYAML:
		index := map[int]Bounds{}
		node, _ := toCompact(t, new(int), index)
		b, err := yaml.Marshal(node)
		return string(b), index, err
	default:
		return "", nil, fmt.Errorf("unknown tree format %q", format)
	}
}

func toCompact(t *Tree, counter *int, index map[int]Bounds) (*compactNode, int) {
	if t == nil {
		return nil, -1
	}
	i := *counter
	*counter++
	if index != nil {
		index[i] = t.Attrs.Bounds
	}

	n := &compactNode{
		Role:  string(t.Attrs.Role),
		Name:  t.Attrs.Name,
		ID:    firstNonEmpty(t.Attrs.AutomationID, t.Attrs.NativeID),
		Value: t.Attrs.Value,
		State: describeState(t.Attrs),
		Index: i,
	}
	for _, c := range t.Children {
		cn, _ := toCompact(c, counter, index)
		if cn != nil {
			n.Children = append(n.Children, cn)
		}
	}
	return n, i
}

func describeState(a Attributes) string {
	var flags []string
	if !a.Enabled {
		flags = append(flags, "disabled")
	}
	if !a.Visible {
		flags = append(flags, "hidden")
	}
	if a.Focused {
		flags = append(flags, "focused")
	}
	if a.Toggled {
		flags = append(flags, "toggled")
	}
	if a.Selected {
		flags = append(flags, "selected")
	}
	return strings.Join(flags, ",")
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
