package commands

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/spf13/cobra"
	"github.com/vestalabs/habitat/cmd/habitatctl/templates"
	"github.com/vestalabs/habitat/core"
)

var (
	soulTemplateName string
	soulOutPath      string
	soulFile         string
	soulAPIURL       string
)

// SoulCmd represents the soul command
var SoulCmd = &cobra.Command{
	Use:   "soul",
	Short: "Manage SOUL.md starter templates",
	Long:  `List, inspect and export starter soul documents, and validate a SOUL.md file against a habitat.`,
}

// soulListCmd represents the soul list command
var soulListCmd = &cobra.Command{
	Use:   "list",
	Short: "List soul templates",
	Long:  `List all stored soul templates.`,
	Run: func(cmd *cobra.Command, args []string) {
		listSouls()
	},
}

// soulShowCmd represents the soul show command
var soulShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show a soul template",
	Long:  `Print the full SOUL.md document of a stored template.`,
	Run: func(cmd *cobra.Command, args []string) {
		showSoul()
	},
}

// soulWriteCmd represents the soul write command
var soulWriteCmd = &cobra.Command{
	Use:   "write",
	Short: "Write a soul template to a file",
	Long:  `Export a stored template to a SOUL.md file you can edit and register with.`,
	Run: func(cmd *cobra.Command, args []string) {
		writeSoul()
	},
}

// soulValidateCmd represents the soul validate command
var soulValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a SOUL.md file",
	Long:  `Check a SOUL.md file against the habitat's parser without registering.`,
	Run: func(cmd *cobra.Command, args []string) {
		if soulAPIURL == "" {
			soulAPIURL = "http://localhost:8080"
		}
		validateSoulFile()
	},
}

func init() {
	SoulCmd.AddCommand(soulListCmd)
	SoulCmd.AddCommand(soulShowCmd)
	SoulCmd.AddCommand(soulWriteCmd)
	SoulCmd.AddCommand(soulValidateCmd)

	soulShowCmd.Flags().StringVar(&soulTemplateName, "name", "", "Template name")
	soulShowCmd.MarkFlagRequired("name")

	soulWriteCmd.Flags().StringVar(&soulTemplateName, "name", "", "Template name")
	soulWriteCmd.Flags().StringVar(&soulOutPath, "out", "SOUL.md", "Output file path")
	soulWriteCmd.MarkFlagRequired("name")

	soulValidateCmd.Flags().StringVar(&soulFile, "file", "", "Path to the SOUL.md file")
	soulValidateCmd.Flags().StringVar(&soulAPIURL, "api", "", "Habitat API URL (default: http://localhost:8080)")
	soulValidateCmd.MarkFlagRequired("file")

	// Seed starter templates on first use
	registry := templates.NewRegistry()
	registry.SeedDefaults()
}

// listSouls lists all stored soul templates
func listSouls() {
	registry := templates.NewRegistry()
	names, err := registry.List()
	if err != nil {
		fmt.Printf("Error listing templates: %v\n", err)
		os.Exit(1)
	}

	if len(names) == 0 {
		fmt.Println("No templates found.")
		return
	}

	fmt.Println("Available soul templates:")
	for _, name := range names {
		if desc := registry.Describe(name); desc != "" {
			fmt.Printf("- %s: %s\n", name, desc)
		} else {
			fmt.Printf("- %s\n", name)
		}
	}
}

// showSoul prints a stored template
func showSoul() {
	registry := templates.NewRegistry()
	content, err := registry.Get(soulTemplateName)
	if err != nil {
		fmt.Printf("Error: template '%s' not found\n", soulTemplateName)
		os.Exit(1)
	}

	fmt.Println(content)
}

// writeSoul exports a stored template to a file
func writeSoul() {
	registry := templates.NewRegistry()
	content, err := registry.Get(soulTemplateName)
	if err != nil {
		fmt.Printf("Error: template '%s' not found\n", soulTemplateName)
		os.Exit(1)
	}

	if err := os.WriteFile(soulOutPath, []byte(content), 0644); err != nil {
		fmt.Printf("Error writing file: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Wrote template '%s' to %s\n", soulTemplateName, soulOutPath)
}

// validateSoulFile validates a local SOUL.md file against the habitat
func validateSoulFile() {
	content, err := os.ReadFile(soulFile)
	if err != nil {
		fmt.Printf("Error reading soul file: %v\n", err)
		os.Exit(1)
	}

	check := postSoulValidate(soulAPIURL, string(content))
	if !check.Valid {
		fmt.Printf("Soul document rejected: %s\n", check.Error)
		if check.Suggestion != "" {
			fmt.Printf("Suggestion: %s\n", check.Suggestion)
		}
		os.Exit(1)
	}

	fmt.Println(check.Message)
}

// soulCheck mirrors the habitat's soul validation response.
type soulCheck struct {
	Valid        bool           `json:"valid"`
	ParsedTraits *core.TraitSet `json:"parsed_traits,omitempty"`
	Message      string         `json:"message,omitempty"`
	Error        string         `json:"error,omitempty"`
	Suggestion   string         `json:"suggestion,omitempty"`
}

// postSoulValidate runs a document through the habitat's soul parser
func postSoulValidate(apiURL, content string) soulCheck {
	requestJSON, err := json.Marshal(map[string]string{"soul_content": content})
	if err != nil {
		fmt.Printf("Error creating request: %v\n", err)
		os.Exit(1)
	}

	resp, err := http.Post(apiURL+"/api/soul/validate", "application/json", bytes.NewBuffer(requestJSON))
	if err != nil {
		fmt.Printf("Error sending request: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		fmt.Printf("Error reading response: %v\n", err)
		os.Exit(1)
	}

	if resp.StatusCode != http.StatusOK {
		fmt.Printf("Error validating soul: %s\n", body)
		os.Exit(1)
	}

	var check soulCheck
	if err := json.Unmarshal(body, &check); err != nil {
		fmt.Printf("Error parsing response: %v\n", err)
		os.Exit(1)
	}

	return check
}
