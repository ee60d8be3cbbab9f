package ruleset

// Core identifiers of the Titan ruleset.
const (
	Body = "body"
	Mind = "mind"
	Soul = "soul"

	Athletics     = "athletics"
	MeleeWeapons  = "meleeWeapons"
	RangedWeapons = "rangedWeapons"

	Reflexes   = "reflexes"
	Resilience = "resilience"
	Willpower  = "willpower"

	// DefaultAttack is the profile a newly created weapon attack starts with.
	DefaultAttack = "attack"
)

// CoreContent returns the built-in Titan content.
func CoreContent() Content {
	skill := func(id, name string) *Skill { return &Skill{ID: id, Name: name} }
	return Content{
		Attributes: []*Attribute{
			{ID: Body, Name: "Body"},
			{ID: Mind, Name: "Mind"},
			{ID: Soul, Name: "Soul"},
		},
		Skills: []*Skill{
			skill("arcana", "Arcana"),
			skill(Athletics, "Athletics"),
			skill("beastHandling", "Beast Handling"),
			skill("deception", "Deception"),
			skill("dexterity", "Dexterity"),
			skill("diplomacy", "Diplomacy"),
			skill("engineering", "Engineering"),
			skill("intimidation", "Intimidation"),
			skill("investigation", "Investigation"),
			skill("lore", "Lore"),
			skill("medicine", "Medicine"),
			skill(MeleeWeapons, "Melee Weapons"),
			skill("perception", "Perception"),
			skill("performance", "Performance"),
			skill(RangedWeapons, "Ranged Weapons"),
			skill("sleightOfHand", "Sleight of Hand"),
			skill("stealth", "Stealth"),
			skill("survival", "Survival"),
			skill("theology", "Theology"),
		},
		Resistances: []*Resistance{
			{ID: Reflexes, Name: "Reflexes"},
			{ID: Resilience, Name: "Resilience"},
			{ID: Willpower, Name: "Willpower"},
		},
		Attacks: []*AttackDef{
			{
				ID:                DefaultAttack,
				Name:              "Attack",
				Type:              AttackMelee,
				Attribute:         Body,
				Skill:             MeleeWeapons,
				Damage:            1,
				PlusSuccessDamage: true,
			},
		},
	}
}

// DefaultCatalog returns a Catalog over CoreContent.
//
// Postcondition: Returns a non-nil Catalog; panics only if CoreContent is invalid.
func DefaultCatalog() *Catalog {
	c, err := NewCatalog(CoreContent())
	if err != nil {
		panic("ruleset: core content invalid: " + err.Error())
	}
	return c
}
