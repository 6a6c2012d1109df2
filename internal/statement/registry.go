package statement

import (
	"slices"
)

// Registry is the ordered statement table. Rules are kept sorted by
// priority; rules sharing a tier keep their registration order.
type Registry struct {
	rules   []*Rule
	statics []*StaticRule
}

func NewRegistry() *Registry {
	return &Registry{}
}

func (r *Registry) Add(rules ...*Rule) *Registry {
	r.rules = append(r.rules, rules...)
	slices.SortStableFunc(r.rules, func(a, b *Rule) int {
		return int(a.Priority) - int(b.Priority)
	})
	return r
}

func (r *Registry) AddStatic(rules ...*StaticRule) *Registry {
	r.statics = append(r.statics, rules...)
	slices.SortStableFunc(r.statics, func(a, b *StaticRule) int {
		return int(a.Priority) - int(b.Priority)
	})
	return r
}

func (r *Registry) Rules() []*Rule {
	return r.rules
}

func (r *Registry) Statics() []*StaticRule {
	return r.statics
}

// Descriptor is the printable form of a registered rule.
type Descriptor struct {
	Name       string
	Pattern    string
	Mode       string
	Spacing    Spacing
	Priority   string
	Separator  string
	SearchSafe bool
	Keep       bool
	Static     bool
}

// Descriptors lists static rules and then parametric rules in the order the
// engine evaluates them.
func (r *Registry) Descriptors() []Descriptor {
	out := make([]Descriptor, 0, len(r.statics)+len(r.rules))
	for _, s := range r.statics {
		out = append(out, Descriptor{
			Name:       s.Name,
			Priority:   s.Priority.String(),
			SearchSafe: s.SearchSafe,
			Static:     true,
		})
	}
	for _, rule := range r.rules {
		out = append(out, Descriptor{
			Name:       rule.Name,
			Pattern:    rule.Pattern,
			Mode:       rule.Mode.String(),
			Spacing:    rule.Spacing,
			Priority:   rule.Priority.String(),
			Separator:  rule.Separator,
			SearchSafe: rule.SearchSafe,
			Keep:       rule.KeepPattern,
		})
	}
	return out
}
