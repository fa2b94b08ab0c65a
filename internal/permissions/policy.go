// Package permissions decides which document actions an admin identity may take.
package permissions

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Action is a document capability.
type Action string

const (
	ActionAdd    Action = "add"
	ActionChoose Action = "choose"
)

var knownActions = map[Action]struct{}{
	ActionAdd:    {},
	ActionChoose: {},
}

// Identity is the caller as established by the auth middleware.
type Identity struct {
	UserID string
	Groups []string
}

// Checker is what handlers depend on.
type Checker interface {
	UserHasPermission(id Identity, action Action) bool
}

//go:embed default.yaml
var defaultPolicy []byte

type policyFile struct {
	Superusers []string            `yaml:"superusers"`
	Default    []string            `yaml:"default"`
	Groups     map[string][]string `yaml:"groups"`
}

// Policy maps groups to allowed actions.
type Policy struct {
	superusers map[string]struct{}
	defaults   map[Action]struct{}
	groups     map[string]map[Action]struct{}
}

// Default returns the embedded policy.
func Default() *Policy {
	p, err := Parse(defaultPolicy)
	if err != nil {
		panic(fmt.Sprintf("embedded permissions policy: %v", err))
	}
	return p
}

// LoadFile reads a YAML policy from path.
func LoadFile(path string) (*Policy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	p, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return p, nil
}

// Parse builds a Policy from YAML. Unknown actions are rejected.
func Parse(data []byte) (*Policy, error) {
	var f policyFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, err
	}

	p := &Policy{
		superusers: make(map[string]struct{}, len(f.Superusers)),
		groups:     make(map[string]map[Action]struct{}, len(f.Groups)),
	}
	for _, g := range f.Superusers {
		p.superusers[normalizeGroup(g)] = struct{}{}
	}

	defaults, err := parseActions(f.Default)
	if err != nil {
		return nil, fmt.Errorf("default: %w", err)
	}
	p.defaults = defaults

	for name, actions := range f.Groups {
		set, err := parseActions(actions)
		if err != nil {
			return nil, fmt.Errorf("group %q: %w", name, err)
		}
		p.groups[normalizeGroup(name)] = set
	}
	return p, nil
}

// UserHasPermission reports whether id may perform action.
// Callers without a user id never have any permission.
func (p *Policy) UserHasPermission(id Identity, action Action) bool {
	if p == nil || strings.TrimSpace(id.UserID) == "" {
		return false
	}
	if _, ok := knownActions[action]; !ok {
		return false
	}
	if _, ok := p.defaults[action]; ok {
		return true
	}
	for _, g := range id.Groups {
		name := normalizeGroup(g)
		if _, ok := p.superusers[name]; ok {
			return true
		}
		if _, ok := p.groups[name][action]; ok {
			return true
		}
	}
	return false
}

func parseActions(raw []string) (map[Action]struct{}, error) {
	set := make(map[Action]struct{}, len(raw))
	for _, r := range raw {
		a := Action(strings.ToLower(strings.TrimSpace(r)))
		if _, ok := knownActions[a]; !ok {
			return nil, fmt.Errorf("unknown action %q", r)
		}
		set[a] = struct{}{}
	}
	return set, nil
}

func normalizeGroup(g string) string {
	return strings.ToLower(strings.TrimSpace(g))
}
