package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/vestalabs/habitat/cmd/habitatctl/commands"
)

var rootCmd = &cobra.Command{
	Use:   "habitatctl",
	Short: "Project Vesta habitat CLI",
	Long:  `Command line interface for registering agents with and inspecting a Vesta habitat.`,
}

func init() {
	rootCmd.AddCommand(commands.RegisterCmd)
	rootCmd.AddCommand(commands.ListCmd)
	rootCmd.AddCommand(commands.BeaconsCmd)
	rootCmd.AddCommand(commands.SoulCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
