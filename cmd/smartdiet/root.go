package main

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/smartdiet/smartdiet/internal/analysis"
	"github.com/smartdiet/smartdiet/internal/app"
	"github.com/smartdiet/smartdiet/internal/config"
)

type cli struct {
	dbPath  string
	envFile string
	verbose bool

	// generator replaces the Gemini client in tests.
	generator analysis.Generator
}

func newRootCmd() *cobra.Command {
	return (&cli{}).rootCmd()
}

func (c *cli) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "smartdiet",
		Short:         "smartdiet tracks meals, calorie targets and fasting from your terminal",
		Long:          "smartdiet is a local-first nutrition assistant: it derives calorie targets from your body metrics, analyzes meals with Gemini and tracks intermittent fasts.",
		Version:       Version + " (built " + BuildTime + ")",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&c.dbPath, "db", "", "Path to SQLite database (default: user config dir)")
	root.PersistentFlags().StringVar(&c.envFile, "env-file", "", "Load environment variables from this file")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "Verbose logging")

	root.AddCommand(
		c.profileCmd(),
		c.mealCmd(),
		c.fastCmd(),
		c.flagsCmd(),
		c.tokenCmd(),
	)
	return root
}

func (c *cli) logger(cmd *cobra.Command) zerolog.Logger {
	level := zerolog.WarnLevel
	if c.verbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: cmd.ErrOrStderr(), NoColor: true}).
		Level(level).
		With().
		Timestamp().
		Logger()
}

func (c *cli) config() (config.Config, error) {
	var files []string
	if c.envFile != "" {
		files = append(files, c.envFile)
	}
	cfg, err := config.Load(files...)
	if err != nil {
		return cfg, err
	}
	cfg.StorageDriver = config.DriverSQLite
	if c.dbPath != "" {
		cfg.SQLitePath = c.dbPath
	}
	return cfg, nil
}

// withServices opens the database, runs fn and closes the database again.
func (c *cli) withServices(cmd *cobra.Command, fn func(*app.Services) error) error {
	cfg, err := c.config()
	if err != nil {
		return err
	}
	log := c.logger(cmd)

	st, err := app.OpenStorage(cmd.Context(), cfg, log)
	if err != nil {
		return err
	}
	defer st.Close()

	svc := app.NewServices(cfg, st, log, app.Options{Generator: c.generator})
	if _, err := svc.Fasting.Load(cmd.Context()); err != nil {
		return err
	}
	return fn(svc)
}
