package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/chboard/chboard/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a starter config file (secrets stay in the environment)",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := &config.Config{}
		cfg.ClickHouse.BaseURL = "clickhouse.example.com"
		cfg.ClickHouse.Port = 9440
		cfg.ClickHouse.User = "default"
		cfg.ClickHouse.Database = "default"
		cfg.ClickHouse.CompressionProtocol = "lz4"
		cfg.ClickHouse.BatchSize = 65536
		cfg.Server.Port = 8230
		cfg.Logging.Level = "info"

		path := cfgFile
		if path == "" {
			path = config.DefaultPath
		}
		if err := cfg.Save(path); err != nil {
			return fmt.Errorf("writing config: %w", err)
		}

		fmt.Printf("Config written to %s\n", config.ExpandHome(path))
		fmt.Println("Set CLICKHOUSE_PASSWORD (and any overrides) in the environment.")
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Display current config (secrets masked)",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		fmt.Println("Current configuration:")
		fmt.Println()
		fmt.Printf("  ClickHouse:\n")
		fmt.Printf("    Host:        %s\n", cfg.ClickHouse.BaseURL)
		fmt.Printf("    Port:        %d\n", cfg.ClickHouse.Port)
		fmt.Printf("    Database:    %s\n", cfg.ClickHouse.Database)
		fmt.Printf("    User:        %s\n", cfg.ClickHouse.User)
		fmt.Printf("    Password:    %s\n", maskSecret(cfg.ClickHouse.Password))
		fmt.Printf("    Compression: %s\n", cfg.ClickHouse.CompressionProtocol)
		fmt.Printf("    Batch Size:  %d\n", cfg.ClickHouse.BatchSize)
		fmt.Println()
		fmt.Printf("  Server:\n")
		fmt.Printf("    Port:        %d\n", cfg.Server.Port)
		return nil
	},
}

func maskSecret(s string) string {
	if s == "" {
		return "(not set)"
	}
	return "********"
}

func init() {
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
	rootCmd.AddCommand(configCmd)
}
