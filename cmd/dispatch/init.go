package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/ShayCichocki/dispatch/internal/config"
	"github.com/ShayCichocki/dispatch/internal/delegate"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create starter configuration",
	Long: `Set up dispatch for first use:
  - Checks that an Anthropic API key is available
  - Writes a default config file to ~/.config/dispatch/config.yaml
  - Writes the built-in prompt templates to ~/.config/dispatch/prompts.yaml
    as a starting point for customization
  - Creates the .dispatch/signals directory used to abort running delegations`,
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite existing configuration files")
}

func runInit(cmd *cobra.Command, args []string) error {
	if os.Getenv("ANTHROPIC_API_KEY") == "" {
		printStatus("⚠", "ANTHROPIC_API_KEY not set (you can set it later)", color.FgYellow)
	} else {
		printStatus("✓", "ANTHROPIC_API_KEY is set", color.FgGreen)
	}

	configPath := config.GetUserConfigPath()
	if _, err := os.Stat(configPath); err == nil && !initForce {
		printStatus("✓", fmt.Sprintf("Config already exists at %s", configPath), color.FgGreen)
	} else {
		if err := config.Save(config.Default()); err != nil {
			printStatus("✗", "Could not write config file", color.FgRed)
			return err
		}
		printStatus("✓", fmt.Sprintf("Wrote default config to %s", configPath), color.FgGreen)
	}

	promptsPath := filepath.Join(filepath.Dir(configPath), "prompts.yaml")
	if _, err := os.Stat(promptsPath); err == nil && !initForce {
		printStatus("✓", fmt.Sprintf("Prompts file already exists at %s", promptsPath), color.FgGreen)
	} else {
		if err := writeStarterPrompts(promptsPath); err != nil {
			printStatus("✗", "Could not write prompts file", color.FgRed)
			return err
		}
		printStatus("✓", fmt.Sprintf("Wrote starter prompts to %s", promptsPath), color.FgGreen)
	}

	signalsDir := filepath.Join(".dispatch", "signals")
	if err := os.MkdirAll(signalsDir, 0755); err != nil {
		printStatus("✗", "Could not create signals directory", color.FgRed)
		return err
	}
	printStatus("✓", fmt.Sprintf("Created %s", signalsDir), color.FgGreen)

	fmt.Println("\nTry it out:")
	fmt.Println("  dispatch run \"write a product description for our new thermos\"")
	return nil
}

// writeStarterPrompts saves the built-in templates as an editable YAML file.
func writeStarterPrompts(path string) error {
	templates := config.PromptTemplates{
		Orchestrator: delegate.DefaultOrchestratorTemplate,
		Worker:       delegate.DefaultWorkerTemplate,
	}

	data, err := yaml.Marshal(&templates)
	if err != nil {
		return fmt.Errorf("marshaling prompts: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

func printStatus(symbol, message string, colorAttr color.Attribute) {
	c := color.New(colorAttr)
	fmt.Printf("%s %s\n", c.Sprint(symbol), message)
}
