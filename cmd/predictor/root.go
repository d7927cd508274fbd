package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"alfredoptarigan/internship-predictor/internal/config"
	"alfredoptarigan/internship-predictor/internal/logger"
)

const appName = "predictor"

var (
	envFile string

	rootCmd = &cobra.Command{
		Use:          appName,
		Short:        "predictor classifies resumes into internship tracks",
		SilenceUsage: true,
	}
)

// Execute executes the root command.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "env file to load before reading the environment")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")
}

// setup loads configuration and builds a logger on stderr, keeping stdout
// for command output. Flags override the matching environment variables.
func setup(cmd *cobra.Command) (*config.Config, *zap.Logger, error) {
	v, err := config.NewViper(envFile)
	if err != nil {
		return nil, nil, err
	}
	if err := v.BindPFlag("DEBUG", cmd.Flags().Lookup("debug")); err != nil {
		return nil, nil, fmt.Errorf("binding debug flag: %w", err)
	}

	cfg := config.FromViper(v)

	format := cfg.Server.LogFormat
	if json, _ := cmd.Flags().GetBool("json"); json {
		format = "json"
	}

	log, err := logger.New(format, cfg.Server.Debug, "stderr")
	if err != nil {
		return nil, nil, fmt.Errorf("creating a logger: %w", err)
	}
	return cfg, log, nil
}
