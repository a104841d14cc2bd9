package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/ayusman/mudra/internal/config"
	"github.com/ayusman/mudra/internal/logger"
)

// newRootCommand builds the command tree around a fresh viper instance.
func newRootCommand() *cobra.Command {
	v := config.New()
	var cfgFile string

	rootCmd := &cobra.Command{
		Use:   "mudra",
		Short: "Hand-mudra recognition service",
		Long: `mudra classifies Bharatanatyam single-hand mudras from 21 hand landmarks.
It can serve an HTTP/WebSocket API fed by an external pose estimator, or classify
landmark files and raw feature vectors from the command line.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return config.ReadFile(v, cfgFile)
		},
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.mudra.yaml)")
	rootCmd.PersistentFlags().String("env", "local", "environment: local, dev or prod (or set MUDRA_ENV)")
	rootCmd.PersistentFlags().String("log-level", "", "log level override: debug, info, warn, error")
	rootCmd.PersistentFlags().String("thumb", "right", "thumb convention: right, left or auto")

	bindFlag(v, "env", rootCmd.PersistentFlags().Lookup("env"))
	bindFlag(v, "logging.level", rootCmd.PersistentFlags().Lookup("log-level"))
	bindFlag(v, "classifier.thumb", rootCmd.PersistentFlags().Lookup("thumb"))

	rootCmd.AddCommand(newServeCommand(v))
	rootCmd.AddCommand(newClassifyCommand(v))
	rootCmd.AddCommand(newRulesCommand())

	return rootCmd
}

// loadConfig resolves the configuration and builds the logger for it.
func loadConfig(v *viper.Viper) (config.Config, *zap.Logger, error) {
	cfg, err := config.Load(v)
	if err != nil {
		return config.Config{}, nil, err
	}
	log, err := logger.New(cfg.Env, cfg.Logging.Level)
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("create logger: %w", err)
	}
	return cfg, log, nil
}
