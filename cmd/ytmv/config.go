package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ytmv/ytmv/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or change configuration",
	Example: `  ytmv config
  ytmv config get quality.audio_format
  ytmv config set batch.parallel 5
  ytmv config path`,
	RunE: runConfigShow,
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Print one configuration value",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigGet,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Change one configuration value and persist it",
	Args:  cobra.ExactArgs(2),
	RunE:  runConfigSet,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the active config file location",
	RunE:  runConfigPath,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configGetCmd, configSetCmd, configPathCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	for _, key := range config.Keys() {
		value, err := cfg.Get(key)
		if err != nil {
			return err
		}
		fmt.Printf("%-22s = %s\n", key, value)
	}
	return nil
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	value, err := cfg.Get(args[0])
	if err != nil {
		return err
	}
	fmt.Println(value)
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := cfg.Set(args[0], args[1]); err != nil {
		return err
	}
	target := configFileTarget()
	if err := cfg.Write(target); err != nil {
		return err
	}
	fmt.Printf("%s = %s (written to %s)\n", args[0], args[1], target)
	return nil
}

func runConfigPath(cmd *cobra.Command, args []string) error {
	if configPath != "" {
		fmt.Println(configPath)
		return nil
	}
	path, err := config.Discover()
	if err != nil {
		fmt.Printf("No config file found; defaults apply. Would be created at %s\n", config.DefaultPath())
		return nil
	}
	fmt.Println(path)
	return nil
}
