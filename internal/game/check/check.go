// Package check implements Titan dice-check resolution: a pool of d6 is
// sorted, expertise is spent greedily to salvage near-miss dice, and the
// finalized pool is classified into successes, critical successes and
// critical failures.
package check

import (
	"fmt"
	"sort"

	"github.com/cory-johannsen/titan/internal/game/dice"
)

const (
	// MinDifficulty is the lowest legal difficulty.
	MinDifficulty = 2
	// MaxDifficulty is the highest legal difficulty.
	MaxDifficulty = dice.Sides
	// DefaultDifficulty applies when a caller supplies none.
	DefaultDifficulty = 4

	criticalFace = dice.Sides
	fumbleFace   = 1
)

// Attack is the attack-check extension of a Config.
type Attack struct {
	BaseDamage        int  `json:"base_damage" yaml:"base_damage"`
	PlusSuccessDamage bool `json:"plus_success_damage" yaml:"plus_success_damage"`
}

// Config holds the fully resolved inputs of one check.
//
// Invariant: DiceCount, Expertise, Complexity >= 0; Difficulty in [2, 6].
type Config struct {
	DiceCount              int  `json:"dice_count" yaml:"dice_count"`
	Difficulty             int  `json:"difficulty" yaml:"difficulty"`
	Complexity             int  `json:"complexity" yaml:"complexity"`
	Expertise              int  `json:"expertise" yaml:"expertise"`
	DoubleExpertise        bool `json:"double_expertise" yaml:"double_expertise"`
	ExtraSuccessOnCritical bool `json:"extra_success_on_critical" yaml:"extra_success_on_critical"`
	ExtraFailureOnCritical bool `json:"extra_failure_on_critical" yaml:"extra_failure_on_critical"`
	// MaximizeSuccesses is carried for compatibility; allocation is always greedy.
	MaximizeSuccesses bool `json:"maximize_successes" yaml:"maximize_successes"`
	// Attack is nil for every check that does not deal damage.
	Attack *Attack `json:"attack,omitempty" yaml:"attack,omitempty"`
}

// EffectiveExpertise returns the spendable expertise pool.
//
// Postcondition: Returns Expertise, doubled when DoubleExpertise is set.
func (c Config) EffectiveExpertise() int {
	if c.DoubleExpertise {
		return c.Expertise * 2
	}
	return c.Expertise
}

// validate panics on any precondition violation.
func (c Config) validate(faces []int) {
	if c.DiceCount < 0 {
		panic(fmt.Sprintf("check: DiceCount must be >= 0, got %d", c.DiceCount))
	}
	if c.Expertise < 0 {
		panic(fmt.Sprintf("check: Expertise must be >= 0, got %d", c.Expertise))
	}
	if c.Complexity < 0 {
		panic(fmt.Sprintf("check: Complexity must be >= 0, got %d", c.Complexity))
	}
	if c.Difficulty < MinDifficulty || c.Difficulty > MaxDifficulty {
		panic(fmt.Sprintf("check: Difficulty must be in [%d, %d], got %d", MinDifficulty, MaxDifficulty, c.Difficulty))
	}
	if c.Attack != nil && c.Attack.BaseDamage < 0 {
		panic(fmt.Sprintf("check: BaseDamage must be >= 0, got %d", c.Attack.BaseDamage))
	}
	if len(faces) != c.DiceCount {
		panic(fmt.Sprintf("check: rolled %d faces for a pool of %d", len(faces), c.DiceCount))
	}
	for _, f := range faces {
		if !dice.ValidFace(f) {
			panic(fmt.Sprintf("check: face %d out of range", f))
		}
	}
}

// DieOutcome is the per-die record of a resolved check.
type DieOutcome struct {
	Base             int  `json:"base" yaml:"base"`
	Final            int  `json:"final" yaml:"final"`
	ExpertiseApplied int  `json:"expertise_applied" yaml:"expertise_applied"`
	Success          bool `json:"success" yaml:"success"`
	CriticalSuccess  bool `json:"critical_success" yaml:"critical_success"`
	CriticalFailure  bool `json:"critical_failure" yaml:"critical_failure"`
}

// Result is the resolved outcome of a check. Optional fields are nil when
// absent: Succeeded when Complexity is 0, ExtraSuccesses without a surplus,
// Damage outside a successful attack.
type Result struct {
	Dice               []DieOutcome `json:"dice" yaml:"dice"`
	Successes          int          `json:"successes" yaml:"successes"`
	CriticalSuccesses  int          `json:"critical_successes" yaml:"critical_successes"`
	CriticalFailures   int          `json:"critical_failures" yaml:"critical_failures"`
	ExpertiseRemaining int          `json:"expertise_remaining" yaml:"expertise_remaining"`
	Succeeded          *bool        `json:"succeeded,omitempty" yaml:"succeeded,omitempty"`
	ExtraSuccesses     *int         `json:"extra_successes,omitempty" yaml:"extra_successes,omitempty"`
	Damage             *int         `json:"damage,omitempty" yaml:"damage,omitempty"`
}

// Passed reports whether the check had a pass/fail determination and passed.
func (r Result) Passed() bool { return r.Succeeded != nil && *r.Succeeded }

// ExpertiseSpent returns the total expertise applied across all dice.
func (r Result) ExpertiseSpent() int {
	spent := 0
	for _, d := range r.Dice {
		spent += d.ExpertiseApplied
	}
	return spent
}

// Evaluate resolves cfg against an already rolled pool.
//
// Precondition: cfg satisfies the Config invariant; len(faces) == cfg.DiceCount;
// every face is in [1, 6]. Violations panic.
// Postcondition: faces is not modified; Result.Dice is sorted descending by Base
// with equal faces in their rolled order.
func Evaluate(cfg Config, faces []int) Result {
	cfg.validate(faces)

	sorted := make([]int, len(faces))
	copy(sorted, faces)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i] > sorted[j] })

	pool := make([]DieOutcome, len(sorted))
	for i, f := range sorted {
		pool[i] = DieOutcome{Base: f, Final: f}
	}

	remaining := cfg.EffectiveExpertise()
	if cfg.ExtraFailureOnCritical {
		remaining = mitigateFumbles(pool, remaining)
	}
	allocate(cfg, pool, remaining)

	return Classify(cfg, pool)
}

// mitigateFumbles raises natural ones to two, one expertise each, in pool
// order until the pool runs dry.
func mitigateFumbles(pool []DieOutcome, remaining int) int {
	for i := range pool {
		if remaining < 1 {
			break
		}
		if pool[i].Final == fumbleFace {
			pool[i].Final = fumbleFace + 1
			pool[i].ExpertiseApplied++
			remaining--
		}
	}
	return remaining
}

// allocate spends expertise cheapest-first: at each increment every die that
// is exactly that far from the difficulty is raised to it, then (with extra
// successes on criticals) every die exactly that far from a six.
func allocate(cfg Config, pool []DieOutcome, remaining int) int {
	for increment := 1; increment < dice.Sides; increment++ {
		if increment > remaining {
			break
		}
		remaining = raiseTo(pool, cfg.Difficulty, increment, remaining)
		if cfg.ExtraSuccessOnCritical {
			remaining = raiseTo(pool, criticalFace, increment, remaining)
		}
	}
	return remaining
}

func raiseTo(pool []DieOutcome, target, increment, remaining int) int {
	for i := range pool {
		if remaining < increment {
			break
		}
		if pool[i].Final < target && target-pool[i].Final == increment {
			pool[i].Final = target
			pool[i].ExpertiseApplied += increment
			remaining -= increment
		}
	}
	return remaining
}

// Classify derives the success tally, pass/fail and damage from finalized dice.
// It reads only Base, Final and ExpertiseApplied, so classifying its own
// output again yields an identical Result.
//
// Postcondition: pool is not modified.
func Classify(cfg Config, pool []DieOutcome) Result {
	res := Result{Dice: make([]DieOutcome, len(pool))}
	spent := 0
	for i, d := range pool {
		d.Success, d.CriticalSuccess, d.CriticalFailure = false, false, false
		spent += d.ExpertiseApplied

		switch {
		case d.Final == criticalFace:
			d.Success = true
			d.CriticalSuccess = true
			res.CriticalSuccesses++
			if cfg.ExtraSuccessOnCritical {
				res.Successes += 2
			} else {
				res.Successes++
			}
		case d.Final >= cfg.Difficulty:
			d.Success = true
			res.Successes++
		case d.Final == fumbleFace:
			d.CriticalFailure = true
			res.CriticalFailures++
			if cfg.ExtraFailureOnCritical {
				res.Successes--
			}
		}
		res.Dice[i] = d
	}
	res.ExpertiseRemaining = cfg.EffectiveExpertise() - spent

	// Net successes may be negative; they are compared unclamped.
	if cfg.Complexity > 0 {
		succeeded := res.Successes >= cfg.Complexity
		res.Succeeded = &succeeded
		if res.Successes > cfg.Complexity {
			extra := res.Successes - cfg.Complexity
			res.ExtraSuccesses = &extra
		}
	}

	if cfg.Attack != nil && res.Passed() {
		damage := cfg.Attack.BaseDamage
		if cfg.Attack.PlusSuccessDamage && res.ExtraSuccesses != nil {
			damage += *res.ExtraSuccesses
		}
		res.Damage = &damage
	}
	return res
}
