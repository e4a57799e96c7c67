package main

import (
	"github.com/spf13/cobra"
)

var recommendCmd = &cobra.Command{
	Use:   "recommend",
	Short: "Get personalized movie recommendations",
	RunE: func(cmd *cobra.Command, args []string) error {
		result, raw, err := apiRequest("GET", "/api/v1/recommendations", nil)
		if err != nil {
			return err
		}
		printMovies(result, raw)
		return nil
	},
}
