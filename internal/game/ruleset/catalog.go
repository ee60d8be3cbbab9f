// Package ruleset holds the Titan identifiers that check parameters refer to:
// attributes, skills, resistances and weapon attacks.
package ruleset

import (
	"fmt"
	"strings"
)

// AttackType distinguishes melee from ranged attacks.
type AttackType string

const (
	AttackMelee  AttackType = "melee"
	AttackRanged AttackType = "ranged"
)

// Attribute is one of the core character attributes (body, mind, soul).
type Attribute struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
}

// Skill is a trained skill. Attribute, when set, is the attribute a skill
// check uses unless the caller picks another one.
type Skill struct {
	ID        string `yaml:"id"`
	Name      string `yaml:"name"`
	Attribute string `yaml:"attribute"`
}

// Resistance is a resistance rating rolled in place of an attribute.
type Resistance struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
}

// AttackDef is a weapon attack profile.
//
// Precondition: ID, Attribute and Skill must be non-empty; Damage >= 0.
// Type is melee or ranged; NewCatalog sets an empty Type to melee.
type AttackDef struct {
	ID                string     `yaml:"id"`
	Name              string     `yaml:"name"`
	Type              AttackType `yaml:"type"`
	Attribute         string     `yaml:"attribute"`
	Skill             string     `yaml:"skill"`
	Damage            int        `yaml:"damage"`
	PlusSuccessDamage bool       `yaml:"plus_success_damage"`
}

// Content is the on-disk shape of a catalog file.
type Content struct {
	Attributes  []*Attribute  `yaml:"attributes"`
	Skills      []*Skill      `yaml:"skills"`
	Resistances []*Resistance `yaml:"resistances"`
	Attacks     []*AttackDef  `yaml:"attacks"`
}

// Catalog provides lookup of ruleset identifiers.
//
// Catalog is immutable after construction and safe for concurrent reads.
type Catalog struct {
	attributes  map[string]*Attribute
	skills      map[string]*Skill
	resistances map[string]*Resistance
	attacks     map[string]*AttackDef
}

// NewCatalog indexes content and validates it.
//
// Postcondition: Returns a non-nil Catalog, or an error listing every null
// entry, duplicate ID, unknown attack type and dangling attribute/skill
// reference.
func NewCatalog(content Content) (*Catalog, error) {
	c := &Catalog{
		attributes:  make(map[string]*Attribute, len(content.Attributes)),
		skills:      make(map[string]*Skill, len(content.Skills)),
		resistances: make(map[string]*Resistance, len(content.Resistances)),
		attacks:     make(map[string]*AttackDef, len(content.Attacks)),
	}
	var errs []string
	dup := func(kind, id string) {
		errs = append(errs, fmt.Sprintf("duplicate %s %q", kind, id))
	}

	attributes := nonNil(content.Attributes, "attribute", &errs)
	skills := nonNil(content.Skills, "skill", &errs)
	resistances := nonNil(content.Resistances, "resistance", &errs)
	attacks := nonNil(content.Attacks, "attack", &errs)

	for _, a := range attributes {
		if _, ok := c.attributes[a.ID]; ok {
			dup("attribute", a.ID)
		}
		c.attributes[a.ID] = a
	}
	for _, s := range skills {
		if _, ok := c.skills[s.ID]; ok {
			dup("skill", s.ID)
		}
		c.skills[s.ID] = s
	}
	for _, r := range resistances {
		if _, ok := c.resistances[r.ID]; ok {
			dup("resistance", r.ID)
		}
		c.resistances[r.ID] = r
	}
	for _, a := range attacks {
		if _, ok := c.attacks[a.ID]; ok {
			dup("attack", a.ID)
		}
		c.attacks[a.ID] = a
	}

	for _, s := range skills {
		if s.Attribute != "" && c.attributes[s.Attribute] == nil {
			errs = append(errs, fmt.Sprintf("skill %q references unknown attribute %q", s.ID, s.Attribute))
		}
	}
	for _, a := range attacks {
		switch a.Type {
		case "":
			a.Type = AttackMelee
		case AttackMelee, AttackRanged:
		default:
			errs = append(errs, fmt.Sprintf("attack %q has unknown type %q", a.ID, a.Type))
		}
		if a.Damage < 0 {
			errs = append(errs, fmt.Sprintf("attack %q damage must be >= 0, got %d", a.ID, a.Damage))
		}
		if c.attributes[a.Attribute] == nil {
			errs = append(errs, fmt.Sprintf("attack %q references unknown attribute %q", a.ID, a.Attribute))
		}
		if c.skills[a.Skill] == nil {
			errs = append(errs, fmt.Sprintf("attack %q references unknown skill %q", a.ID, a.Skill))
		}
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("ruleset: invalid catalog: %s", strings.Join(errs, "; "))
	}
	return c, nil
}

// nonNil drops null list entries, recording one violation per entry.
func nonNil[T any](items []*T, kind string, errs *[]string) []*T {
	out := make([]*T, 0, len(items))
	for i, item := range items {
		if item == nil {
			*errs = append(*errs, fmt.Sprintf("null %s entry at index %d", kind, i))
			continue
		}
		out = append(out, item)
	}
	return out
}

// Attribute returns the attribute with the given ID.
func (c *Catalog) Attribute(id string) (*Attribute, bool) {
	a, ok := c.attributes[id]
	return a, ok
}

// Skill returns the skill with the given ID.
func (c *Catalog) Skill(id string) (*Skill, bool) {
	s, ok := c.skills[id]
	return s, ok
}

// Resistance returns the resistance with the given ID.
func (c *Catalog) Resistance(id string) (*Resistance, bool) {
	r, ok := c.resistances[id]
	return r, ok
}

// Attack returns the attack profile with the given ID.
func (c *Catalog) Attack(id string) (*AttackDef, bool) {
	a, ok := c.attacks[id]
	return a, ok
}

// Counts returns the number of attributes, skills, resistances and attacks.
func (c *Catalog) Counts() (attributes, skills, resistances, attacks int) {
	return len(c.attributes), len(c.skills), len(c.resistances), len(c.attacks)
}
