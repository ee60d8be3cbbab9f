package check

import (
	"errors"
	"fmt"

	"github.com/cory-johannsen/titan/internal/game/ruleset"
)

// Kind selects how a check's dice pool and expertise are assembled.
type Kind int

const (
	KindBasic Kind = iota
	KindAttribute
	KindSkill
	KindResistance
	KindAttack
)

var kindNames = [...]string{"basic", "attribute", "skill", "resistance", "attack"}

// String returns the lowercase kind label.
func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "unknown"
	}
	return kindNames[k]
}

// MarshalText encodes k as its label.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText decodes a label produced by MarshalText.
func (k *Kind) UnmarshalText(text []byte) error {
	parsed, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// ParseKind maps a label produced by Kind.String back to its Kind.
func ParseKind(s string) (Kind, error) {
	for i, name := range kindNames {
		if name == s {
			return Kind(i), nil
		}
	}
	return 0, fmt.Errorf("check: unknown kind %q", s)
}

var (
	ErrUnknownAttribute  = errors.New("check: unknown attribute")
	ErrUnknownSkill      = errors.New("check: unknown skill")
	ErrUnknownResistance = errors.New("check: unknown resistance")
	ErrUnknownAttack     = errors.New("check: unknown attack")
)

// Params is a check request as a caller states it. Zero values mean
// "use the default": Difficulty 0 becomes the builder's default difficulty,
// empty identifiers fall back to body, athletics and reflexes.
type Params struct {
	Kind       Kind
	Attribute  string
	Skill      string
	Resistance string
	// Attack names a ruleset attack profile supplying attribute, skill and damage.
	Attack string

	Difficulty   int
	Complexity   int
	DiceMod      int
	TrainingMod  int
	ExpertiseMod int

	DoubleTraining         bool
	DoubleExpertise        bool
	MaximizeSuccesses      bool
	ExtraSuccessOnCritical bool
	ExtraFailureOnCritical bool

	// BaseDamage and PlusSuccessDamage apply to attacks without a profile.
	BaseDamage        int
	PlusSuccessDamage bool
}

// SkillRating is a character's standing in one skill.
type SkillRating struct {
	Training  int `yaml:"training"`
	Expertise int `yaml:"expertise"`
}

// Stats carries the numeric character values a check reads. The host resolves
// them; a missing entry reads as zero.
type Stats struct {
	Attributes  map[string]int         `yaml:"attributes"`
	Skills      map[string]SkillRating `yaml:"skills"`
	Resistances map[string]int         `yaml:"resistances"`
}

// Builder turns Params plus Stats into an engine Config.
type Builder struct {
	catalog           *ruleset.Catalog
	defaultDifficulty int
}

// NewBuilder returns a Builder validating identifiers against catalog.
//
// Precondition: catalog must be non-nil. defaultDifficulty 0 means DefaultDifficulty;
// other values are clamped into [2, 6].
func NewBuilder(catalog *ruleset.Catalog, defaultDifficulty int) *Builder {
	if defaultDifficulty == 0 {
		defaultDifficulty = DefaultDifficulty
	}
	return &Builder{
		catalog:           catalog,
		defaultDifficulty: clamp(defaultDifficulty, MinDifficulty, MaxDifficulty),
	}
}

// Build resolves p against stats.
//
// Postcondition: the returned Config satisfies the Config invariant, so it is
// always safe to pass to Evaluate. Unknown identifiers yield an error wrapping
// one of the ErrUnknown* sentinels.
func (b *Builder) Build(p Params, stats Stats) (Config, error) {
	cfg := Config{
		Difficulty:             b.defaultDifficulty,
		Complexity:             max(p.Complexity, 0),
		DoubleExpertise:        p.DoubleExpertise,
		MaximizeSuccesses:      p.MaximizeSuccesses,
		ExtraSuccessOnCritical: p.ExtraSuccessOnCritical,
		ExtraFailureOnCritical: p.ExtraFailureOnCritical,
	}
	if p.Difficulty != 0 {
		cfg.Difficulty = clamp(p.Difficulty, MinDifficulty, MaxDifficulty)
	}

	dicePool := p.DiceMod
	expertise := p.ExpertiseMod

	switch p.Kind {
	case KindBasic:
	case KindAttribute:
		attr, err := b.attribute(p.Attribute, stats)
		if err != nil {
			return Config{}, err
		}
		dicePool += attr
	case KindSkill, KindAttack:
		attrID, skillID := p.Attribute, p.Skill
		if p.Kind == KindAttack {
			cfg.Complexity = 1
			atk, err := b.attack(p)
			if err != nil {
				return Config{}, err
			}
			cfg.Attack = &Attack{
				BaseDamage:        max(atk.Damage, 0),
				PlusSuccessDamage: atk.PlusSuccessDamage,
			}
			if attrID == "" {
				attrID = atk.Attribute
			}
			if skillID == "" {
				skillID = atk.Skill
			}
		}
		if attrID == "" && skillID != "" {
			if s, ok := b.catalog.Skill(skillID); ok {
				attrID = s.Attribute
			}
		}
		attr, err := b.attribute(attrID, stats)
		if err != nil {
			return Config{}, err
		}
		rating, err := b.skill(skillID, stats)
		if err != nil {
			return Config{}, err
		}
		training := rating.Training + p.TrainingMod
		if p.DoubleTraining {
			training *= 2
		}
		dicePool += attr + training
		expertise += rating.Expertise
	case KindResistance:
		res, err := b.resistance(p.Resistance, stats)
		if err != nil {
			return Config{}, err
		}
		dicePool += res
	default:
		return Config{}, fmt.Errorf("check: unsupported kind %d", int(p.Kind))
	}

	cfg.DiceCount = max(dicePool, 0)
	cfg.Expertise = max(expertise, 0)
	return cfg, nil
}

func (b *Builder) attribute(id string, stats Stats) (int, error) {
	if id == "" {
		id = ruleset.Body
	}
	if _, ok := b.catalog.Attribute(id); !ok {
		return 0, fmt.Errorf("%w %q", ErrUnknownAttribute, id)
	}
	return stats.Attributes[id], nil
}

func (b *Builder) skill(id string, stats Stats) (SkillRating, error) {
	if id == "" {
		id = ruleset.Athletics
	}
	if _, ok := b.catalog.Skill(id); !ok {
		return SkillRating{}, fmt.Errorf("%w %q", ErrUnknownSkill, id)
	}
	return stats.Skills[id], nil
}

func (b *Builder) resistance(id string, stats Stats) (int, error) {
	if id == "" {
		id = ruleset.Reflexes
	}
	if _, ok := b.catalog.Resistance(id); !ok {
		return 0, fmt.Errorf("%w %q", ErrUnknownResistance, id)
	}
	return stats.Resistances[id], nil
}

// attack returns the profile named by p.Attack, or an ad hoc profile built
// from p's own damage fields when no profile is named.
func (b *Builder) attack(p Params) (*ruleset.AttackDef, error) {
	if p.Attack == "" {
		return &ruleset.AttackDef{
			Damage:            p.BaseDamage,
			PlusSuccessDamage: p.PlusSuccessDamage,
		}, nil
	}
	atk, ok := b.catalog.Attack(p.Attack)
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownAttack, p.Attack)
	}
	return atk, nil
}

func clamp(v, lo, hi int) int {
	return min(max(v, lo), hi)
}
