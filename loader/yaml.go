package loader

import (
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/nathoo/questline/types"
)

// Top-level keys of a YAML/JSON bundle document.
const (
	keyLanguage     = "language"
	keyTitle        = "title"
	keyInfo         = "info"
	keyCommands     = "commands"
	keyNavigation   = "navigation"
	keyActions      = "actions"
	keyRequirements = "chapterRequirements"
	keyAnswers      = "availableAnswers"
	keyInteractions = "interactions"
	keyMessage      = "message"
	keyChapters     = "chapters"
)

type docNavigation struct {
	Patterns []string  `yaml:"patterns"`
	Synonyms yaml.Node `yaml:"synonyms"`
}

type docAction struct {
	Pattern string   `yaml:"pattern"`
	Objects []string `yaml:"objects"`
}

type docRequirement struct {
	Type      string `yaml:"type"`
	Direction string `yaml:"direction"`
	Action    string `yaml:"action"`
	Object    string `yaml:"object"`
}

// parseDocument reads a bundle document. JSON is parsed as YAML. Mappings
// are walked as nodes so that action, synonym and chapter order survive.
func parseDocument(data []byte) (*rawBundle, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, errors.New("empty bundle document")
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("bundle document must be a mapping, line %d", root.Line)
	}

	raw := newRawBundle()
	raw.declared = true

	for _, f := range []struct {
		key string
		dst *string
	}{
		{keyLanguage, &raw.language},
		{keyTitle, &raw.title},
		{keyInfo, &raw.info},
	} {
		if n := lookup(root, f.key); n != nil {
			if err := n.Decode(f.dst); err != nil {
				return nil, fmt.Errorf("%s: %w", f.key, err)
			}
		}
	}

	if n := lookup(root, keyMessage); n != nil {
		if err := n.Decode(&raw.messages); err != nil {
			return nil, fmt.Errorf("%s: %w", keyMessage, err)
		}
	}

	if cmds := lookup(root, keyCommands); cmds != nil {
		if err := parseCommands(cmds, raw); err != nil {
			return nil, err
		}
	}

	if err := parseChapters(root, raw); err != nil {
		return nil, err
	}
	return raw, nil
}

func parseCommands(cmds *yaml.Node, raw *rawBundle) error {
	if n := lookup(cmds, keyNavigation); n != nil {
		var nav docNavigation
		if err := n.Decode(&nav); err != nil {
			return fmt.Errorf("commands.navigation: %w", err)
		}
		raw.navPatterns = nav.Patterns
		err := eachPair(&nav.Synonyms, func(dir string, v *yaml.Node) error {
			var aliases []string
			if err := v.Decode(&aliases); err != nil {
				return fmt.Errorf("commands.navigation.synonyms.%s: %w", dir, err)
			}
			raw.synonyms = append(raw.synonyms, types.Synonym{Canonical: dir, Aliases: aliases})
			return nil
		})
		if err != nil {
			return err
		}
	}

	if n := lookup(cmds, keyActions); n != nil {
		err := eachPair(n, func(name string, v *yaml.Node) error {
			var a docAction
			if err := v.Decode(&a); err != nil {
				return fmt.Errorf("commands.actions.%s: %w", name, err)
			}
			raw.actions = append(raw.actions, rawAction{name: name, pattern: a.Pattern, objects: a.Objects})
			return nil
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// parseChapters assembles chapters from the per-chapter sections. Play
// order comes from "chapters" when present (a list of IDs, or a mapping of
// ID to text), otherwise from the order IDs first appear in
// chapterRequirements and availableAnswers.
func parseChapters(root *yaml.Node, raw *rawBundle) error {
	requirements := map[string]*rawRequirement{}
	answers := map[string][]string{}
	interactions := map[string]map[string]string{}
	texts := map[string]string{}
	var order []string
	seen := map[string]bool{}
	appearOrder := func(id string) {
		if !seen[id] {
			seen[id] = true
			order = append(order, id)
		}
	}

	if n := lookup(root, keyRequirements); n != nil {
		err := eachPair(n, func(id string, v *yaml.Node) error {
			var r docRequirement
			if err := v.Decode(&r); err != nil {
				return fmt.Errorf("%s.%s: %w", keyRequirements, id, err)
			}
			requirements[id] = &rawRequirement{kind: r.Type, direction: r.Direction, action: r.Action, object: r.Object}
			appearOrder(id)
			return nil
		})
		if err != nil {
			return err
		}
	}

	if n := lookup(root, keyAnswers); n != nil {
		err := eachPair(n, func(id string, v *yaml.Node) error {
			// A single accepted answer may be given as a plain string.
			var list []string
			if v.Kind == yaml.ScalarNode {
				var one string
				if err := v.Decode(&one); err != nil {
					return fmt.Errorf("%s.%s: %w", keyAnswers, id, err)
				}
				list = []string{one}
			} else if err := v.Decode(&list); err != nil {
				return fmt.Errorf("%s.%s: %w", keyAnswers, id, err)
			}
			answers[id] = list
			appearOrder(id)
			return nil
		})
		if err != nil {
			return err
		}
	}

	if n := lookup(root, keyInteractions); n != nil {
		err := eachPair(n, func(id string, v *yaml.Node) error {
			var m map[string]string
			if err := v.Decode(&m); err != nil {
				return fmt.Errorf("%s.%s: %w", keyInteractions, id, err)
			}
			interactions[id] = m
			return nil
		})
		if err != nil {
			return err
		}
	}

	if n := lookup(root, keyChapters); n != nil {
		order = nil
		switch n.Kind {
		case yaml.SequenceNode:
			if err := n.Decode(&order); err != nil {
				return fmt.Errorf("%s: %w", keyChapters, err)
			}
		case yaml.MappingNode:
			err := eachPair(n, func(id string, v *yaml.Node) error {
				var text string
				if err := v.Decode(&text); err != nil {
					return fmt.Errorf("%s.%s: %w", keyChapters, id, err)
				}
				texts[id] = text
				order = append(order, id)
				return nil
			})
			if err != nil {
				return err
			}
		default:
			return fmt.Errorf("%s must be a list or a mapping, line %d", keyChapters, n.Line)
		}
	}

	for _, id := range order {
		raw.chapters = append(raw.chapters, rawChapter{
			id:           id,
			text:         texts[id],
			requires:     requirements[id],
			answers:      answers[id],
			interactions: interactions[id],
		})
	}
	return nil
}

// lookup returns the value node for key in a mapping node, or nil.
func lookup(m *yaml.Node, key string) *yaml.Node {
	if m == nil || m.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			return m.Content[i+1]
		}
	}
	return nil
}

// eachPair calls fn for each key/value of a mapping node in document order.
// A zero node is treated as an empty mapping.
func eachPair(m *yaml.Node, fn func(key string, v *yaml.Node) error) error {
	if m.Kind == 0 {
		return nil
	}
	if m.Kind != yaml.MappingNode {
		return fmt.Errorf("expected a mapping at line %d", m.Line)
	}
	for i := 0; i+1 < len(m.Content); i += 2 {
		if err := fn(m.Content[i].Value, m.Content[i+1]); err != nil {
			return err
		}
	}
	return nil
}
