package main

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/spf13/cobra"
)

var searchPage int

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search the movie catalog",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		query := strings.Join(args, " ")
		path := fmt.Sprintf("/api/v1/search?q=%s&page=%d", url.QueryEscape(query), searchPage)
		result, raw, err := apiRequest("GET", path, nil)
		if err != nil {
			return err
		}
		printMovies(result, raw)
		return nil
	},
}

func init() {
	searchCmd.Flags().IntVar(&searchPage, "page", 1, "Result page")
}
