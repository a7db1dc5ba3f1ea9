package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"pocketbook/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default config file",
	Long: `Init writes a commented default configuration. The target is
--config when set, otherwise ~/.pocketbook/config.yaml. An existing
file is never overwritten.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := cfgFile
		if path == "" {
			homeDir, err := os.UserHomeDir()
			if err != nil {
				return err
			}
			path = filepath.Join(homeDir, ".pocketbook", "config.yaml")
		}
		if err := config.WriteDefault(path); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", path)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configInitCmd)
}
