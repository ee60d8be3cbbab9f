package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/titan/internal/config"
	"github.com/cory-johannsen/titan/internal/game/check"
	"github.com/cory-johannsen/titan/internal/game/dice"
	"github.com/cory-johannsen/titan/internal/game/ruleset"
	"github.com/cory-johannsen/titan/internal/observability"
	"github.com/cory-johannsen/titan/internal/scripting"
)

// globalOptions are the flags shared by every check subcommand.
type globalOptions struct {
	configPath string
	statsPath  string
	faces      []int
	seed       int64
}

// checkOptions hold the request and stat flags of a single check.
type checkOptions struct {
	params      check.Params
	attributes  map[string]int
	training    map[string]int
	expertise   map[string]int
	resistances map[string]int
}

func newRootCmd() *cobra.Command {
	var g globalOptions

	rootCmd := &cobra.Command{
		Use:          "titan",
		Short:        "Dice-pool check resolver",
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&g.configPath, "config", "", "Config file path (empty = defaults plus TITAN_ environment)")

	checkCmd := &cobra.Command{
		Use:   "check",
		Short: "Roll a check and print the result as YAML",
	}
	checkCmd.PersistentFlags().StringVar(&g.statsPath, "stats", "", "YAML file of character attributes, skills and resistances")
	checkCmd.PersistentFlags().IntSliceVar(&g.faces, "faces", nil, "Use these die faces instead of rolling")
	checkCmd.PersistentFlags().Int64Var(&g.seed, "seed", 0, "Roll with a seeded source (overrides check.dice_source)")

	for _, kind := range []check.Kind{check.KindBasic, check.KindAttribute, check.KindSkill, check.KindResistance, check.KindAttack} {
		checkCmd.AddCommand(newKindCmd(kind, &g))
	}

	rootCmd.AddCommand(checkCmd)
	return rootCmd
}

func newKindCmd(kind check.Kind, g *globalOptions) *cobra.Command {
	opts := checkOptions{params: check.Params{Kind: kind}}

	cmd := &cobra.Command{
		Use:   kind.String(),
		Short: fmt.Sprintf("Roll a %s check", kind),
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, g, &opts)
		},
	}

	f := cmd.Flags()
	p := &opts.params
	switch kind {
	case check.KindAttribute:
		f.StringVar(&p.Attribute, "attribute", "", "Attribute to roll (default body)")
	case check.KindSkill:
		f.StringVar(&p.Attribute, "attribute", "", "Attribute paired with the skill")
		f.StringVar(&p.Skill, "skill", "", "Skill to roll (default athletics)")
		f.IntVar(&p.TrainingMod, "training-mod", 0, "Training modifier")
		f.BoolVar(&p.DoubleTraining, "double-training", false, "Double training dice")
	case check.KindResistance:
		f.StringVar(&p.Resistance, "resistance", "", "Resistance to roll (default reflexes)")
	case check.KindAttack:
		f.StringVar(&p.Attack, "attack", ruleset.DefaultAttack, "Attack profile from the ruleset (empty = ad hoc)")
		f.StringVar(&p.Attribute, "attribute", "", "Override the profile attribute")
		f.StringVar(&p.Skill, "skill", "", "Override the profile skill")
		f.IntVar(&p.TrainingMod, "training-mod", 0, "Training modifier")
		f.BoolVar(&p.DoubleTraining, "double-training", false, "Double training dice")
		f.IntVar(&p.BaseDamage, "base-damage", 1, "Base damage of an ad hoc attack")
		f.BoolVar(&p.PlusSuccessDamage, "plus-success-damage", true, "Ad hoc attack adds extra successes to damage")
	}

	f.IntVar(&p.Difficulty, "difficulty", 0, "Difficulty 2-6 (0 = configured default)")
	if kind != check.KindAttack {
		f.IntVar(&p.Complexity, "complexity", 0, "Successes required (0 = no verdict)")
	}
	f.IntVar(&p.DiceMod, "dice-mod", 0, "Dice modifier")
	f.IntVar(&p.ExpertiseMod, "expertise-mod", 0, "Expertise modifier")
	f.BoolVar(&p.DoubleExpertise, "double-expertise", false, "Double the expertise pool")
	f.BoolVar(&p.MaximizeSuccesses, "maximize-successes", false, "Prefer more successes when spending expertise")
	f.BoolVar(&p.ExtraSuccessOnCritical, "extra-success-on-critical", false, "Critical successes count twice")
	f.BoolVar(&p.ExtraFailureOnCritical, "extra-failure-on-critical", false, "Critical failures cost a success")

	f.StringToIntVar(&opts.attributes, "attr", nil, "Attribute ratings, e.g. body=3,mind=2")
	f.StringToIntVar(&opts.training, "training", nil, "Skill training, e.g. athletics=2")
	f.StringToIntVar(&opts.expertise, "expertise", nil, "Skill expertise, e.g. athletics=1")
	f.StringToIntVar(&opts.resistances, "resist", nil, "Resistance ratings, e.g. reflexes=2")

	return cmd
}

func runCheck(cmd *cobra.Command, g *globalOptions, opts *checkOptions) error {
	start := time.Now()

	cfg, err := config.Load(g.configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	catalog, err := ruleset.LoadCatalogOrDefault(cfg.Ruleset.Dir)
	if err != nil {
		return fmt.Errorf("loading ruleset: %w", err)
	}
	attrs, skills, resists, attacks := catalog.Counts()
	logger.Debug("ruleset loaded",
		zap.String("dir", cfg.Ruleset.Dir),
		zap.Int("attributes", attrs),
		zap.Int("skills", skills),
		zap.Int("resistances", resists),
		zap.Int("attacks", attacks),
	)

	stats, err := loadStats(g.statsPath)
	if err != nil {
		return err
	}
	opts.applyStats(&stats)

	var resolverOpts []check.Option
	if cfg.Scripting.Enabled() {
		mgr := scripting.NewManager(logger, cfg.Scripting.InstructionLimit)
		defer mgr.Close()
		if err := mgr.Load(cfg.Scripting.Dir); err != nil {
			return fmt.Errorf("loading rule scripts: %w", err)
		}
		resolverOpts = append(resolverOpts, check.WithHook(check.ScriptHook(mgr)))
	}

	roller := newRoller(cmd, cfg.Check, g, logger)
	resolver := check.NewResolver(roller, check.NewBuilder(catalog, cfg.Check.DefaultDifficulty), logger, resolverOpts...)

	out, err := resolver.ResolveParams(cmd.Context(), opts.params, stats)
	if err != nil {
		return err
	}
	logger.Debug("check complete", zap.Duration("elapsed", time.Since(start)))

	enc := yaml.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent(2)
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encoding outcome: %w", err)
	}
	return enc.Close()
}

// newRoller picks the face provider: explicit --faces, then --seed, then
// the configured dice source.
func newRoller(cmd *cobra.Command, cfg config.CheckConfig, g *globalOptions, logger *zap.Logger) dice.PoolRoller {
	if len(g.faces) > 0 {
		return dice.NewFixedRoller(g.faces...)
	}
	if cmd.Flags().Changed("seed") {
		return dice.NewLoggedRoller(dice.NewSeededSource(g.seed), logger)
	}
	if cfg.DiceSource == config.DiceSourceSeeded {
		return dice.NewLoggedRoller(dice.NewSeededSource(cfg.Seed), logger)
	}
	return dice.NewLoggedRoller(dice.NewCryptoSource(), logger)
}

// loadStats reads a Stats document; an empty path yields empty stats.
func loadStats(path string) (check.Stats, error) {
	var stats check.Stats
	if path == "" {
		return stats, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return stats, fmt.Errorf("reading stats %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &stats); err != nil {
		return stats, fmt.Errorf("parsing stats %s: %w", path, err)
	}
	return stats, nil
}

// applyStats overlays flag-supplied ratings on stats.
func (o *checkOptions) applyStats(stats *check.Stats) {
	if len(o.attributes) > 0 && stats.Attributes == nil {
		stats.Attributes = map[string]int{}
	}
	for id, v := range o.attributes {
		stats.Attributes[id] = v
	}
	if len(o.resistances) > 0 && stats.Resistances == nil {
		stats.Resistances = map[string]int{}
	}
	for id, v := range o.resistances {
		stats.Resistances[id] = v
	}
	if (len(o.training) > 0 || len(o.expertise) > 0) && stats.Skills == nil {
		stats.Skills = map[string]check.SkillRating{}
	}
	for id, v := range o.training {
		r := stats.Skills[id]
		r.Training = v
		stats.Skills[id] = r
	}
	for id, v := range o.expertise {
		r := stats.Skills[id]
		r.Expertise = v
		stats.Skills[id] = r
	}
}
