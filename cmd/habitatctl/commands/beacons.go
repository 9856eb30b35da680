package commands

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/spf13/cobra"
)

var (
	beaconsCount  int
	beaconsTier   string
	beaconsAPIURL string
)

// BeaconsCmd represents the beacons command
var BeaconsCmd = &cobra.Command{
	Use:   "beacons",
	Short: "Mint beacon codes",
	Long:  `Mint a batch of invitation beacon codes for handing out to new agents. Operator use.`,
	Run: func(cmd *cobra.Command, args []string) {
		if beaconsAPIURL == "" {
			beaconsAPIURL = "http://localhost:8080"
		}

		mintBeacons()
	},
}

func init() {
	BeaconsCmd.Flags().IntVar(&beaconsCount, "count", 10, "Number of beacons to mint")
	BeaconsCmd.Flags().StringVar(&beaconsTier, "tier", "Participant", "Tier granted by the beacons (Participant or Observer)")
	BeaconsCmd.Flags().StringVar(&beaconsAPIURL, "api", "", "Habitat API URL (default: http://localhost:8080)")
}

// mintBeacons asks the habitat for a fresh batch of beacon codes
func mintBeacons() {
	requestJSON, err := json.Marshal(map[string]any{
		"count": beaconsCount,
		"tier":  beaconsTier,
	})
	if err != nil {
		fmt.Printf("Error creating request: %v\n", err)
		os.Exit(1)
	}

	resp, err := http.Post(beaconsAPIURL+"/api/admin/generate_beacons", "application/json", bytes.NewBuffer(requestJSON))
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
		fmt.Printf("Error minting beacons: %s\n", body)
		os.Exit(1)
	}

	var response struct {
		Count   int `json:"count"`
		Beacons []struct {
			Code string `json:"code"`
			Tier string `json:"tier"`
		} `json:"beacons"`
	}
	if err := json.Unmarshal(body, &response); err != nil {
		fmt.Printf("Error parsing response: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Minted %d %s beacons:\n", response.Count, beaconsTier)
	for _, beacon := range response.Beacons {
		fmt.Printf("  %s\n", beacon.Code)
	}
}
