package main

import (
	"github.com/spf13/cobra"

	"showcase_ingest/internal/logger"
	"showcase_ingest/internal/models"
)

const defaultConfigPath = "config.yaml"

type commandContext struct {
	configPath string
	cfg        *models.Config
}

func (c *commandContext) ensureConfig() (*models.Config, error) {
	if c.cfg != nil {
		return c.cfg, nil
	}
	cfg, err := models.LoadConfig(c.configPath)
	if err != nil {
		return nil, err
	}
	logger.Init(cfg.LogLevel, cfg.LogFormat)
	c.cfg = cfg
	return cfg, nil
}

func newRootCommand() *cobra.Command {
	ctx := &commandContext{}

	rootCmd := &cobra.Command{
		Use:           "showcase-ingest",
		Short:         "Ingest showcase submissions into the canonical dataset",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd == cmd.Root() {
				return nil
			}
			_, err := ctx.ensureConfig()
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&ctx.configPath, "config", "c", defaultConfigPath, "Configuration file path")

	rootCmd.AddCommand(newRunCommand(ctx))
	rootCmd.AddCommand(newServeCommand(ctx))

	return rootCmd
}
