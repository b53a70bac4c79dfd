// Command stopdemo runs the cooperative-cancellation walkthroughs.
//
// Usage:
//
//	go run ./cmd/stopdemo all --time-scale 0.1
//	go run ./cmd/stopdemo pool 8 --producers 2
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/randomizedcoder/go-stop-token/internal/config"
	"github.com/randomizedcoder/go-stop-token/internal/demo"
)

var configFilePath string
var logLevel string
var noColor bool
var timeScale float64
var queueBackend string
var producers int

var cfg *config.Config
var logger *logrus.Logger

var rootCmd = &cobra.Command{
	Use:           "stopdemo",
	Short:         "cooperative cancellation walkthroughs",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var warnings []error
		cfg, warnings = config.Load(configFilePath)
		applyFlags(cmd)
		warnings = append(warnings, cfg.Validate()...)

		logger = config.NewLogger(cfg)
		config.Report(logger, warnings)
		logger.WithFields(cfg.Fields()).Debug("Configuration loaded")
		return nil
	},
}

// applyFlags overlays the flags the user actually set.
func applyFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.LogLevel = logLevel
	}
	if flags.Changed("no-color") {
		cfg.NoColor = noColor
	}
	if flags.Changed("time-scale") {
		cfg.TimeScale = timeScale
	}
	if flags.Changed("queue") {
		cfg.QueueBackend = queueBackend
	}
	if flags.Changed("producers") {
		cfg.Producers = producers
	}
}

var allCmd = &cobra.Command{
	Use:   "all",
	Short: "run every scenario in order",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEnv(cmd.Context(), func(env *demo.Env) error {
			return env.RunAll()
		})
	},
}

func scenarioCmd(s demo.Scenario) *cobra.Command {
	cmd := &cobra.Command{
		Use:   s.Name,
		Short: s.Short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(cmd.Context(), func(env *demo.Env) error {
				return env.Run(s.Name)
			})
		},
	}
	if s.Name == "pool" {
		cmd.Use = "pool [size]"
		cmd.Args = cobra.MaximumNArgs(1)
		cmd.RunE = func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				n, err := config.ParsePoolSize(args[0])
				if err != nil {
					config.Report(logger, []error{err})
				} else {
					cfg.PoolSize = n
				}
			}
			return withEnv(cmd.Context(), func(env *demo.Env) error {
				return env.Run(s.Name)
			})
		}
	}
	return cmd
}

func withEnv(ctx context.Context, run func(env *demo.Env) error) error {
	env, release := demo.NewEnv(ctx, cfg, logger)
	defer release()
	return run(env)
}

func main() {
	rootCmd.PersistentFlags().StringVarP(&configFilePath, "config", "c", "", "config file path (YAML)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug shows progress dots)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable coloured output")
	rootCmd.PersistentFlags().Float64Var(&timeScale, "time-scale", 1.0, "multiply every demo delay")
	rootCmd.PersistentFlags().StringVarP(&queueBackend, "queue", "q", "fifo", "pool queue backend: fifo, channel or ring")
	rootCmd.PersistentFlags().IntVarP(&producers, "producers", "p", 0, "feed the pool through the intake ring with this many producers")

	for _, s := range demo.Scenarios {
		rootCmd.AddCommand(scenarioCmd(s))
	}
	rootCmd.AddCommand(allCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
