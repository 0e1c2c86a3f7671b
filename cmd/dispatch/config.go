package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/ShayCichocki/dispatch/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config [key] [value]",
	Short: "Manage configuration",
	Long: `View or modify dispatch configuration.

Without arguments, displays current configuration.
With one argument (key), displays the value for that key.
With two arguments (key value), sets the configuration value.

Configuration is stored at ~/.config/dispatch/config.yaml
Project-specific overrides can be placed in .dispatch.yaml`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}

		switch len(args) {
		case 0:
			displayAllConfig(cfg)
		case 1:
			displayConfigKey(cfg, args[0])
		default:
			setConfigKey(cfg, args[0], args[1])
		}
	},
}

// displayAllConfig prints all configuration values.
func displayAllConfig(cfg *config.Config) {
	fmt.Printf("anthropic.api_key: %s\n", config.MaskAPIKey(cfg.Anthropic.APIKey))
	fmt.Printf("anthropic.model: %s\n", cfg.Anthropic.Model)
	fmt.Printf("anthropic.max_tokens: %d\n", cfg.Anthropic.MaxTokens)
	fmt.Printf("bedrock.enabled: %t\n", cfg.Bedrock.Enabled)
	fmt.Printf("bedrock.region: %s\n", cfg.Bedrock.Region)
	fmt.Printf("bedrock.profile: %s\n", cfg.Bedrock.Profile)
	fmt.Printf("defaults.workers: %d\n", cfg.Defaults.Workers)
	fmt.Printf("defaults.debug_log: %s\n", cfg.Defaults.DebugLog)
	fmt.Printf("prompts.file: %s\n", cfg.Prompts.File)
	fmt.Printf("history.enabled: %t\n", cfg.History.Enabled)
	fmt.Printf("history.path: %s\n", cfg.History.Path)
}

// displayConfigKey prints a single configuration value.
func displayConfigKey(cfg *config.Config, key string) {
	value, err := getConfigValue(cfg, key)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(value)
}

// getConfigValue returns the string form of a configuration value.
func getConfigValue(cfg *config.Config, key string) (string, error) {
	switch key {
	case "anthropic.api_key":
		return config.MaskAPIKey(cfg.Anthropic.APIKey), nil
	case "anthropic.model":
		return cfg.Anthropic.Model, nil
	case "anthropic.max_tokens":
		return strconv.FormatInt(cfg.Anthropic.MaxTokens, 10), nil
	case "bedrock.enabled":
		return strconv.FormatBool(cfg.Bedrock.Enabled), nil
	case "bedrock.region":
		return cfg.Bedrock.Region, nil
	case "bedrock.profile":
		return cfg.Bedrock.Profile, nil
	case "defaults.workers":
		return strconv.Itoa(cfg.Defaults.Workers), nil
	case "defaults.debug_log":
		return cfg.Defaults.DebugLog, nil
	case "prompts.file":
		return cfg.Prompts.File, nil
	case "history.enabled":
		return strconv.FormatBool(cfg.History.Enabled), nil
	case "history.path":
		return cfg.History.Path, nil
	default:
		return "", fmt.Errorf("unknown configuration key %q", key)
	}
}

// setConfigKey updates a configuration value and saves the user config.
func setConfigKey(cfg *config.Config, key, value string) {
	var err error
	switch key {
	case "anthropic.api_key":
		cfg.Anthropic.APIKey = value
	case "anthropic.model":
		cfg.Anthropic.Model = value
	case "anthropic.max_tokens":
		cfg.Anthropic.MaxTokens, err = strconv.ParseInt(value, 10, 64)
	case "bedrock.enabled":
		cfg.Bedrock.Enabled, err = strconv.ParseBool(value)
	case "bedrock.region":
		cfg.Bedrock.Region = value
	case "bedrock.profile":
		cfg.Bedrock.Profile = value
	case "defaults.workers":
		cfg.Defaults.Workers, err = strconv.Atoi(value)
	case "defaults.debug_log":
		cfg.Defaults.DebugLog = value
	case "prompts.file":
		cfg.Prompts.File = value
	case "history.enabled":
		cfg.History.Enabled, err = strconv.ParseBool(value)
	case "history.path":
		cfg.History.Path = value
	default:
		err = fmt.Errorf("unknown configuration key %q", key)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := config.Save(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error saving config: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Set %s\n", key)
}
