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
	registerName     string
	registerBeacon   string
	registerSoulFile string
	registerTemplate string
	registerAPIURL   string
)

// RegisterCmd represents the register command
var RegisterCmd = &cobra.Command{
	Use:   "register",
	Short: "Register an agent with the habitat",
	Long:  `Register an agent using a beacon code, optionally seeding its personality from a SOUL.md file or a stored template.`,
	Run: func(cmd *cobra.Command, args []string) {
		if registerAPIURL == "" {
			registerAPIURL = "http://localhost:8080"
		}

		if registerSoulFile != "" && registerTemplate != "" {
			fmt.Println("Error: use either --soul or --template, not both")
			os.Exit(1)
		}

		content := resolveSoulContent()

		var dna *core.DNA
		if content != "" {
			traits := validateSoul(content)
			d := core.DefaultDNA()
			d.Personality = traits
			dna = &d
		}

		registerAgent(dna)
	},
}

func init() {
	RegisterCmd.Flags().StringVar(&registerName, "name", "", "Agent name")
	RegisterCmd.Flags().StringVar(&registerBeacon, "beacon", "", "Beacon code from a habitat operator")
	RegisterCmd.Flags().StringVar(&registerSoulFile, "soul", "", "Path to a SOUL.md file")
	RegisterCmd.Flags().StringVar(&registerTemplate, "template", "", "Stored soul template name")
	RegisterCmd.Flags().StringVar(&registerAPIURL, "api", "", "Habitat API URL (default: http://localhost:8080)")

	RegisterCmd.MarkFlagRequired("name")
	RegisterCmd.MarkFlagRequired("beacon")
}

// resolveSoulContent loads the soul document from the file or template
// flag, empty when neither is set.
func resolveSoulContent() string {
	if registerSoulFile != "" {
		content, err := os.ReadFile(registerSoulFile)
		if err != nil {
			fmt.Printf("Error reading soul file: %v\n", err)
			os.Exit(1)
		}
		return string(content)
	}

	if registerTemplate != "" {
		registry := templates.NewRegistry()
		content, err := registry.Get(registerTemplate)
		if err != nil {
			fmt.Printf("Error: template '%s' not found\n", registerTemplate)
			os.Exit(1)
		}
		return content
	}

	return ""
}

// validateSoul checks the document against the habitat's parser before
// registration so a malformed soul fails here, not server-side.
func validateSoul(content string) core.TraitSet {
	check := postSoulValidate(registerAPIURL, content)
	if !check.Valid {
		fmt.Printf("Soul document rejected: %s\n", check.Error)
		if check.Suggestion != "" {
			fmt.Printf("Suggestion: %s\n", check.Suggestion)
		}
		os.Exit(1)
	}

	fmt.Println(check.Message)
	return *check.ParsedTraits
}

// registerAgent sends the registration request to the habitat
func registerAgent(dna *core.DNA) {
	request := map[string]any{
		"name":        registerName,
		"beacon_code": registerBeacon,
	}
	if dna != nil {
		request["redacted_dna"] = dna
	}

	requestJSON, err := json.Marshal(request)
	if err != nil {
		fmt.Printf("Error creating request: %v\n", err)
		os.Exit(1)
	}

	resp, err := http.Post(registerAPIURL+"/api/register", "application/json", bytes.NewBuffer(requestJSON))
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
		fmt.Printf("Error registering agent: %s\n", body)
		os.Exit(1)
	}

	var response map[string]interface{}
	if err := json.Unmarshal(body, &response); err != nil {
		fmt.Printf("Error parsing response: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Agent registered successfully!\n")
	fmt.Printf("Entity ID: %s\n", response["entity_id"])
	fmt.Printf("%s\n", response["message"])
}
