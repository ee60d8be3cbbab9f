package check

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cory-johannsen/titan/internal/game/dice"
	"github.com/cory-johannsen/titan/internal/scripting"
)

// Outcome is a resolved check together with the faces it was resolved from.
type Outcome struct {
	ID     string `json:"id" yaml:"id"`
	Kind   Kind   `json:"kind" yaml:"kind"`
	Config Config `json:"config" yaml:"config"`
	Faces  []int  `json:"faces" yaml:"faces"`
	Result Result `json:"result" yaml:"result"`
}

// ParamsHook may rewrite a request before its Config is built.
type ParamsHook func(ctx context.Context, p Params) (Params, error)

// Option configures a Resolver.
type Option func(*Resolver)

// WithHook installs h; it runs before every ResolveParams build.
func WithHook(h ParamsHook) Option {
	return func(r *Resolver) { r.hook = h }
}

// WithIDGenerator overrides uuid-based outcome IDs.
func WithIDGenerator(gen func() string) Option {
	return func(r *Resolver) { r.newID = gen }
}

// Resolver rolls and evaluates checks. It holds no per-check state and is
// safe for concurrent use when its roller is.
type Resolver struct {
	roller  dice.PoolRoller
	builder *Builder
	hook    ParamsHook
	logger  *zap.Logger
	newID   func() string
}

// NewResolver returns a Resolver drawing faces from roller.
//
// Precondition: roller, builder and logger must be non-nil.
func NewResolver(roller dice.PoolRoller, builder *Builder, logger *zap.Logger, opts ...Option) *Resolver {
	r := &Resolver{
		roller:  roller,
		builder: builder,
		logger:  logger,
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve queries the roller exactly once for cfg.DiceCount faces and
// evaluates them.
//
// Precondition: cfg satisfies the Config invariant.
// Postcondition: Returns a fully populated Outcome, or the roller's error.
func (r *Resolver) Resolve(ctx context.Context, cfg Config) (Outcome, error) {
	return r.resolve(ctx, KindBasic, cfg)
}

// ResolveParams applies the hook, builds a Config from p and stats, and resolves it.
func (r *Resolver) ResolveParams(ctx context.Context, p Params, stats Stats) (Outcome, error) {
	if r.hook != nil {
		adjusted, err := r.hook(ctx, p)
		if err != nil {
			return Outcome{}, fmt.Errorf("check: before-check hook: %w", err)
		}
		p = adjusted
	}
	cfg, err := r.builder.Build(p, stats)
	if err != nil {
		return Outcome{}, err
	}
	return r.resolve(ctx, p.Kind, cfg)
}

func (r *Resolver) resolve(ctx context.Context, kind Kind, cfg Config) (Outcome, error) {
	faces, err := r.roller.RollPool(ctx, cfg.DiceCount)
	if err != nil {
		return Outcome{}, fmt.Errorf("check: rolling %d dice: %w", cfg.DiceCount, err)
	}
	if len(faces) != cfg.DiceCount {
		return Outcome{}, fmt.Errorf("check: roller returned %d faces for a pool of %d", len(faces), cfg.DiceCount)
	}
	for _, f := range faces {
		if !dice.ValidFace(f) {
			return Outcome{}, fmt.Errorf("check: roller returned %w: %d", dice.ErrInvalidFace, f)
		}
	}

	out := Outcome{
		ID:     r.newID(),
		Kind:   kind,
		Config: cfg,
		Faces:  faces,
		Result: Evaluate(cfg, faces),
	}

	fields := []zap.Field{
		zap.String("id", out.ID),
		zap.Stringer("kind", kind),
		zap.Ints("faces", faces),
		zap.Int("difficulty", cfg.Difficulty),
		zap.Int("complexity", cfg.Complexity),
		zap.Int("expertise", cfg.EffectiveExpertise()),
		zap.Int("successes", out.Result.Successes),
		zap.Int("expertise_remaining", out.Result.ExpertiseRemaining),
	}
	if out.Result.Succeeded != nil {
		fields = append(fields, zap.Bool("succeeded", *out.Result.Succeeded))
	}
	if out.Result.Damage != nil {
		fields = append(fields, zap.Int("damage", *out.Result.Damage))
	}
	r.logger.Debug("check resolved", fields...)
	return out, nil
}

// ScriptHook adapts a scripting Manager's before_check hook to a ParamsHook.
// Dice and expertise adjustments add to the request's mods; difficulty,
// complexity and flag adjustments replace the request's values.
func ScriptHook(m *scripting.Manager) ParamsHook {
	return func(_ context.Context, p Params) (Params, error) {
		adj, err := m.BeforeCheck(scripting.CheckInfo{
			Kind:         p.Kind.String(),
			Attribute:    p.Attribute,
			Skill:        p.Skill,
			Resistance:   p.Resistance,
			Attack:       p.Attack,
			Difficulty:   p.Difficulty,
			Complexity:   p.Complexity,
			DiceMod:      p.DiceMod,
			TrainingMod:  p.TrainingMod,
			ExpertiseMod: p.ExpertiseMod,
		})
		if err != nil {
			return Params{}, err
		}
		if adj.IsZero() {
			return p, nil
		}
		return applyAdjustment(p, adj), nil
	}
}

func applyAdjustment(p Params, adj scripting.Adjustment) Params {
	p.DiceMod += adj.DiceMod
	p.ExpertiseMod += adj.ExpertiseMod
	if adj.Difficulty != nil {
		p.Difficulty = *adj.Difficulty
	}
	if adj.Complexity != nil {
		p.Complexity = *adj.Complexity
	}
	if adj.DoubleExpertise != nil {
		p.DoubleExpertise = *adj.DoubleExpertise
	}
	if adj.ExtraSuccessOnCritical != nil {
		p.ExtraSuccessOnCritical = *adj.ExtraSuccessOnCritical
	}
	if adj.ExtraFailureOnCritical != nil {
		p.ExtraFailureOnCritical = *adj.ExtraFailureOnCritical
	}
	return p
}
