package main

import (
	"encoding/json"
	"fmt"

	"github.com/nvandessel/snpsim/internal/example"
	"github.com/nvandessel/snpsim/internal/logging"
	"github.com/nvandessel/snpsim/internal/snp"
	"github.com/spf13/cobra"
)

// runOutput is the --json shape of a run.
type runOutput struct {
	Seed   uint64     `json:"seed,omitempty"`
	Result snp.Result `json:"result"`
}

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Simulate the reference SNP system",
		Long: `Build the reference three-neuron system and simulate it until no rule
applies or the step budget runs out, printing a per-round trace.

Ties between applicable rules are broken at random. Pass --seed (or set
simulation.seed) to make a run reproducible.

Examples:
  snpsim run                       # Entropy-seeded run, default budget
  snpsim run --seed 7 --max-steps 20
  snpsim run --seed 7 --json       # Machine-readable result`,
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")
			quiet, _ := cmd.Flags().GetBool("quiet")

			cfg, err := loadConfig(cmd)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if cmd.Flags().Changed("max-steps") {
				cfg.Simulation.MaxSteps, _ = cmd.Flags().GetInt("max-steps")
			}
			if cmd.Flags().Changed("seed") {
				cfg.Simulation.Seed, _ = cmd.Flags().GetUint64("seed")
			}
			if cmd.Flags().Changed("log-level") {
				cfg.Logging.Level, _ = cmd.Flags().GetString("log-level")
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}

			logger := logging.NewLogger(cfg.Logging.Level, cmd.ErrOrStderr())

			var rng snp.RandomSource
			if cfg.Simulation.Seed != 0 {
				rng = snp.NewSeededSource(cfg.Simulation.Seed)
			} else {
				rng = snp.NewRandomSource()
			}

			sys, err := example.Reference(rng)
			if err != nil {
				return fmt.Errorf("failed to build system: %w", err)
			}
			sys.SetLogger(logger)

			var reporters snp.MultiReporter
			if !quiet && !jsonOut {
				reporters = append(reporters, snp.NewTextReporter(cmd.OutOrStdout()))
			}
			runLabel := fmt.Sprintf("seed-%d", cfg.Simulation.Seed)
			if rl := logging.NewRoundLogger(cfg.RoundLogDir(), cfg.Logging.Level, runLabel); rl != nil {
				defer rl.Close()
				reporters = append(reporters, rl)
			}
			if len(reporters) > 0 {
				sys.SetReporter(reporters)
			}

			logger.Debug("simulation starting", "max_steps", cfg.Simulation.MaxSteps, "seed", cfg.Simulation.Seed)
			res := sys.Simulate(cfg.Simulation.MaxSteps)
			logger.Info("simulation finished",
				"rounds", res.Rounds, "halted", res.Halted, "dropped", res.Dropped, "leftover", res.Leftover)

			if jsonOut {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(runOutput{
					Seed:   cfg.Simulation.Seed,
					Result: res,
				})
			}
			if !res.Halted && res.Rounds > 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "Step budget of %d exhausted without reaching a fixpoint.\n", cfg.Simulation.MaxSteps)
			}
			return nil
		},
	}

	cmd.Flags().Int("max-steps", 0, "Maximum number of rounds (overrides config)")
	cmd.Flags().Uint64("seed", 0, "Seed for rule tie-breaks, 0 for entropy (overrides config)")
	cmd.Flags().String("log-level", "", "Log level: info, debug, or trace (overrides config)")
	cmd.Flags().Bool("quiet", false, "Suppress the per-round trace")

	return cmd
}
