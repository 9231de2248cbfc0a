package access

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/giantswarm/mcp-odoo/internal/api"
)

// allOperations in a policy entry grants every operation.
const allOperations = "*"

// Policy is a local allow-list loaded from YAML:
//
//	models:
//	  res.partner: [read, write]
//	  product.product: [read]
//	  sale.order: ["*"]
//
// It can only narrow what the backend grants. When the backend's permission
// endpoints are unavailable it is the only permission source.
type Policy struct {
	Models map[string][]string `yaml:"models"`

	ops map[string]map[api.Operation]bool
}

// LoadPolicy reads and validates a policy file.
func LoadPolicy(path string) (*Policy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read policy file %s: %w", path, err)
	}
	p, err := ParsePolicy(data)
	if err != nil {
		return nil, fmt.Errorf("invalid policy file %s: %w", path, err)
	}
	return p, nil
}

// ParsePolicy parses policy YAML.
func ParsePolicy(data []byte) (*Policy, error) {
	var p Policy
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, err
	}

	p.ops = make(map[string]map[api.Operation]bool, len(p.Models))
	for model, names := range p.Models {
		model = strings.TrimSpace(model)
		if model == "" {
			return nil, fmt.Errorf("empty model name")
		}
		ops := make(map[api.Operation]bool, len(api.Operations))
		for _, name := range names {
			name = strings.ToLower(strings.TrimSpace(name))
			if name == allOperations {
				for _, op := range api.Operations {
					ops[op] = true
				}
				continue
			}
			op := api.Operation(name)
			if !op.Valid() {
				return nil, fmt.Errorf("model %s: unknown operation %q", model, name)
			}
			ops[op] = true
		}
		p.ops[model] = ops
	}
	return &p, nil
}

// ModelNames returns the models the policy mentions, sorted.
func (p *Policy) ModelNames() []string {
	names := make([]string, 0, len(p.ops))
	for name := range p.ops {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// narrow intersects backend permissions with the policy. A nil policy
// leaves them untouched.
func (p *Policy) narrow(models map[string]ModelPermissions) map[string]ModelPermissions {
	if p == nil {
		return models
	}
	out := make(map[string]ModelPermissions, len(models))
	for name, perms := range models {
		allowed, ok := p.ops[name]
		if !ok {
			continue
		}
		narrowed := ModelPermissions{
			Model:      perms.Model,
			Name:       perms.Name,
			Operations: make(map[api.Operation]bool, len(api.Operations)),
		}
		for _, op := range api.Operations {
			narrowed.Operations[op] = perms.Operations[op] && allowed[op]
		}
		out[name] = narrowed
	}
	return out
}

// permissions turns the policy into a permission matrix on its own.
func (p *Policy) permissions() map[string]ModelPermissions {
	out := make(map[string]ModelPermissions, len(p.ops))
	for name, allowed := range p.ops {
		perms := ModelPermissions{
			Model:      name,
			Name:       name,
			Operations: make(map[api.Operation]bool, len(api.Operations)),
		}
		for _, op := range api.Operations {
			perms.Operations[op] = allowed[op]
		}
		out[name] = perms
	}
	return out
}
