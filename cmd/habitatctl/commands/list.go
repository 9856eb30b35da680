package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/vestalabs/habitat/core"
)

var listAPIURL string

// ListCmd represents the list command
var ListCmd = &cobra.Command{
	Use:   "list",
	Short: "List habitat residents",
	Long:  `List every entity currently registered with the habitat.`,
	Run: func(cmd *cobra.Command, args []string) {
		if listAPIURL == "" {
			listAPIURL = "http://localhost:8080"
		}

		listEntities()
	},
}

func init() {
	ListCmd.Flags().StringVar(&listAPIURL, "api", "", "Habitat API URL (default: http://localhost:8080)")
}

// listEntities prints the resident roster
func listEntities() {
	resp, err := http.Get(listAPIURL + "/api/entities")
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
		fmt.Printf("Error listing entities: %s\n", body)
		os.Exit(1)
	}

	var entities []core.Entity
	if err := json.Unmarshal(body, &entities); err != nil {
		fmt.Printf("Error parsing response: %v\n", err)
		os.Exit(1)
	}

	if len(entities) == 0 {
		fmt.Println("No entities found.")
		return
	}

	fmt.Printf("Found %d entities in the habitat:\n", len(entities))
	for _, entity := range entities {
		fmt.Printf("- %s (ID: %s)\n", entity.Name, entity.ID)
		fmt.Printf("  Location: %s | Status: %s | Tier: %s\n", entity.Location, entity.Status, entity.Tier)
		fmt.Printf("  Generation: %d | Reputation: %d\n", entity.Generation, entity.ReputationScore)

		if len(entity.DNA.Capability.Skills) > 0 {
			fmt.Printf("  Skills: %s\n", strings.Join(entity.DNA.Capability.Skills, ", "))
		}

		fmt.Println()
	}
}
