package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var watchlistCmd = &cobra.Command{
	Use:   "watchlist",
	Short: "Manage your watchlist",
}

var watchlistListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show your watchlist, most recent first",
	RunE: func(cmd *cobra.Command, args []string) error {
		result, raw, err := apiRequest("GET", "/api/v1/watchlist", nil)
		if err != nil {
			return err
		}
		printMovies(result, raw)
		return nil
	},
}

var watchlistAddCmd = &cobra.Command{
	Use:   "add <tmdb-id>",
	Short: "Add a movie to your watchlist",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return toggle(args[0], "add")
	},
}

var watchlistRemoveCmd = &cobra.Command{
	Use:   "remove <tmdb-id>",
	Short: "Remove a movie from your watchlist",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return toggle(args[0], "remove")
	},
}

var watchlistWatchedCmd = &cobra.Command{
	Use:   "watched <tmdb-id>",
	Short: "Mark a movie as watched",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return toggle(args[0], "mark_watched")
	},
}

var watchlistRateCmd = &cobra.Command{
	Use:   "rate <tmdb-id> <rating>",
	Short: "Rate a movie 1-5 (0 just marks it watched)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		tmdbID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid tmdb id %q", args[0])
		}
		rating, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid rating %q", args[1])
		}

		result, raw, err := apiRequest("POST", "/api/v1/watchlist/rating", map[string]interface{}{
			"tmdb_id": tmdbID,
			"rating":  rating,
		})
		if err != nil {
			return err
		}
		if output == "json" {
			fmt.Println(string(raw))
		} else if msg, ok := result["message"].(string); ok {
			fmt.Println("✓ " + msg)
		}
		return nil
	},
}

func init() {
	watchlistCmd.AddCommand(watchlistListCmd)
	watchlistCmd.AddCommand(watchlistAddCmd)
	watchlistCmd.AddCommand(watchlistRemoveCmd)
	watchlistCmd.AddCommand(watchlistWatchedCmd)
	watchlistCmd.AddCommand(watchlistRateCmd)
}

func toggle(rawID, action string) error {
	tmdbID, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid tmdb id %q", rawID)
	}

	result, raw, err := apiRequest("POST", "/api/v1/watchlist/toggle", map[string]interface{}{
		"tmdb_id": tmdbID,
		"action":  action,
	})
	if err != nil {
		return err
	}
	if output == "json" {
		fmt.Println(string(raw))
	} else if msg, ok := result["message"].(string); ok {
		fmt.Println("✓ " + msg)
	}
	return nil
}
