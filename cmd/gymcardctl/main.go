package main

import (
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/mansoorceksport/gymcard/cmd/gymcardctl/commands"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "gymcardctl",
		Short: "Gym member card tooling",
		Long:  `gymcardctl converts Ethiopian dates, computes membership days left and issues front desk admin tokens.`,
	}

	rootCmd.AddCommand(commands.NewToGregorianCommand())
	rootCmd.AddCommand(commands.NewToEthiopianCommand())
	rootCmd.AddCommand(commands.NewRemainingCommand())
	rootCmd.AddCommand(commands.NewTokenCommand())

	if err := rootCmd.Execute(); err != nil {
		log.Printf("Command execution failed: %v", err)
		os.Exit(1)
	}
}
