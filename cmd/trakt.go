// Package cmd implements the command-line interface for madari.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/AlecAivazis/survey/v2"
	"github.com/madari-app/madari/color"
	"github.com/madari-app/madari/icon"
	"github.com/madari-app/madari/open"
	"github.com/madari-app/madari/style"
	"github.com/madari-app/madari/trakt"
	"github.com/madari-app/madari/util"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(traktCmd)
}

// traktCmd serves as the parent command for the tracking-service surface.
var traktCmd = &cobra.Command{
	Use:   "trakt",
	Short: "Authenticate with and browse the Trakt tracking service",
}

func init() {
	traktCmd.AddCommand(traktLoginCmd)
}

// traktLoginCmd walks through the OAuth device flow.
var traktLoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in to Trakt using the device flow",
	Run: func(cmd *cobra.Command, args []string) {
		_, tracker, _ := services()
		ctx := context.Background()

		if !tracker.IsConfigured() {
			var clientID, clientSecret string
			handleErr(survey.AskOne(&survey.Input{Message: "Trakt API client id:"}, &clientID, survey.WithValidator(survey.Required)))
			handleErr(survey.AskOne(&survey.Password{Message: "Trakt API client secret:"}, &clientSecret, survey.WithValidator(survey.Required)))
			handleErr(tracker.SetCredentials(clientID, clientSecret))
		}

		code, err := tracker.StartDeviceAuth(ctx)
		handleErr(err)

		fmt.Printf(
			"%s Enter the code %s at %s\n",
			icon.Get(icon.User),
			style.Fg(color.Yellow)(code.UserCode),
			style.Bold(code.VerificationURL),
		)
		_ = open.Start(code.VerificationURL)

		interval := time.Duration(code.Interval) * time.Second
		if interval <= 0 {
			interval = 5 * time.Second
		}
		deadline := time.Now().Add(time.Duration(code.ExpiresIn) * time.Second)

		erase := util.PrintErasable(fmt.Sprintf("%s Waiting for approval...", icon.Get(icon.Progress)))
		for {
			if time.Now().After(deadline) {
				erase()
				handleErr(errors.New("device code expired before approval"))
			}

			time.Sleep(interval)

			err := tracker.PollDeviceToken(ctx, code.DeviceCode)
			if errors.Is(err, trakt.ErrAuthPending) {
				continue
			}
			erase()
			handleErr(err)
			break
		}

		cfg := tracker.Config()
		username := lo.FromPtrOr(cfg.Username, "you")
		fmt.Printf("%s logged in as %s\n", style.Fg(color.Green)(icon.Get(icon.Success)), style.Bold(username))
	},
}

func init() {
	traktCmd.AddCommand(traktLogoutCmd)
}

// traktLogoutCmd revokes the token and clears local credentials.
var traktLogoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Log out and revoke the stored token",
	Run: func(cmd *cobra.Command, args []string) {
		_, tracker, _ := services()
		handleErr(tracker.Logout(context.Background()))
		fmt.Printf("%s logged out\n", style.Fg(color.Green)(icon.Get(icon.Success)))
	},
}

func init() {
	traktCmd.AddCommand(traktStatusCmd)
}

// traktStatusCmd shows the connection and sync state.
var traktStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the tracking-service connection status",
	Run: func(cmd *cobra.Command, args []string) {
		_, tracker, _ := services()
		cfg := tracker.Config()

		onOff := func(enabled bool) string {
			if enabled {
				return style.Fg(color.Green)("on")
			}
			return style.Fg(color.Red)("off")
		}

		if !cfg.IsAuthenticated() {
			fmt.Printf("%s not logged in\n", icon.Get(icon.Question))
			return
		}

		fmt.Printf("%s logged in as %s\n", icon.Get(icon.User), style.Bold(lo.FromPtrOr(cfg.Username, "unknown")))
		fmt.Printf("  progress sync:  %s\n", onOff(cfg.SyncProgress))
		fmt.Printf("  watchlist sync: %s\n", onOff(cfg.SyncWatchlist))
		fmt.Printf("  history sync:   %s\n", onOff(cfg.SyncHistory))
	},
}

func init() {
	traktCmd.AddCommand(traktSyncCmd)
	traktSyncCmd.Flags().Bool("progress", false, "Enable playback progress sync")
	traktSyncCmd.Flags().Bool("watchlist", false, "Enable watchlist sync")
	traktSyncCmd.Flags().Bool("history", false, "Enable watch history sync")
}

// traktSyncCmd updates the synchronization toggles.
var traktSyncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Configure which data is synchronized with Trakt",
	Run: func(cmd *cobra.Command, args []string) {
		_, tracker, _ := services()

		cfg := tracker.Config()
		progress := cfg.SyncProgress
		watchlist := cfg.SyncWatchlist
		historySync := cfg.SyncHistory

		if cmd.Flags().Changed("progress") {
			progress = lo.Must(cmd.Flags().GetBool("progress"))
		}
		if cmd.Flags().Changed("watchlist") {
			watchlist = lo.Must(cmd.Flags().GetBool("watchlist"))
		}
		if cmd.Flags().Changed("history") {
			historySync = lo.Must(cmd.Flags().GetBool("history"))
		}

		handleErr(tracker.SetSync(progress, watchlist, historySync))
		fmt.Printf("%s sync settings updated\n", style.Fg(color.Green)(icon.Get(icon.Success)))
	},
}

// catalogFlags registers the shared pagination flags.
func catalogFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("type", "t", "movie", "Content type: movie or show")
	cmd.Flags().IntP("page", "p", 1, "Page number")
	cmd.Flags().IntP("limit", "l", 0, "Items per page")
}

// discoveryRun builds the Run function for a discovery catalog command.
func discoveryRun(
	movies func(ctx context.Context, page, limit int) ([]trakt.Movie, error),
	shows func(ctx context.Context, page, limit int) ([]trakt.Show, error),
) func(cmd *cobra.Command, args []string) {
	return func(cmd *cobra.Command, args []string) {
		contentType := lo.Must(cmd.Flags().GetString("type"))
		page := lo.Must(cmd.Flags().GetInt("page"))
		limit := lo.Must(cmd.Flags().GetInt("limit"))
		ctx := context.Background()

		switch contentType {
		case "movie", "movies":
			rows, err := movies(ctx, page, limit)
			handleErr(err)
			for _, movie := range rows {
				printTraktItem(icon.Get(icon.Movie), movie.Title, movie.Year, movie.Ids)
			}
		case "show", "shows", "series":
			rows, err := shows(ctx, page, limit)
			handleErr(err)
			for _, show := range rows {
				printTraktItem(icon.Get(icon.Series), show.Title, show.Year, show.Ids)
			}
		default:
			handleErr(fmt.Errorf("unknown type %s, want movie or show", contentType))
		}
	}
}

// printTraktItem renders one discovery row.
func printTraktItem(symbol, title string, year *int, ids trakt.Ids) {
	line := fmt.Sprintf("%s %s", symbol, style.Bold(title))
	if year != nil {
		line += " " + style.Faint(fmt.Sprintf("(%d)", *year))
	}
	if ids.IMDB != nil {
		line += " " + style.Faint(*ids.IMDB)
	}
	fmt.Println(line)
}

func init() {
	traktCmd.AddCommand(traktTrendingCmd)
	traktCmd.AddCommand(traktPopularCmd)
	traktCmd.AddCommand(traktAnticipatedCmd)
	catalogFlags(traktTrendingCmd)
	catalogFlags(traktPopularCmd)
	catalogFlags(traktAnticipatedCmd)
}

// traktTrendingCmd lists what is being watched right now.
var traktTrendingCmd = &cobra.Command{
	Use:   "trending",
	Short: "List trending movies or shows",
	Run: func(cmd *cobra.Command, args []string) {
		_, tracker, _ := services()
		discoveryRun(tracker.TrendingMovies, tracker.TrendingShows)(cmd, args)
	},
}

// traktPopularCmd lists the most popular items.
var traktPopularCmd = &cobra.Command{
	Use:   "popular",
	Short: "List popular movies or shows",
	Run: func(cmd *cobra.Command, args []string) {
		_, tracker, _ := services()
		discoveryRun(tracker.PopularMovies, tracker.PopularShows)(cmd, args)
	},
}

// traktAnticipatedCmd lists the most anticipated upcoming items.
var traktAnticipatedCmd = &cobra.Command{
	Use:   "anticipated",
	Short: "List anticipated movies or shows",
	Run: func(cmd *cobra.Command, args []string) {
		_, tracker, _ := services()
		discoveryRun(tracker.AnticipatedMovies, tracker.AnticipatedShows)(cmd, args)
	},
}

func init() {
	traktCmd.AddCommand(traktWatchlistCmd)
	traktWatchlistCmd.Flags().StringP("type", "t", "", "Filter by type: movies or shows")
	traktWatchlistCmd.Flags().String("add", "", "Add an item by IMDB id")
	traktWatchlistCmd.Flags().String("remove", "", "Remove an item by IMDB id")
	traktWatchlistCmd.MarkFlagsMutuallyExclusive("add", "remove")
}

// traktWatchlistCmd shows or mutates the user's watchlist.
var traktWatchlistCmd = &cobra.Command{
	Use:   "watchlist",
	Short: "Show or modify the Trakt watchlist",
	Run: func(cmd *cobra.Command, args []string) {
		_, tracker, _ := services()
		ctx := context.Background()

		itemType := lo.Must(cmd.Flags().GetString("type"))

		if imdbID := lo.Must(cmd.Flags().GetString("add")); imdbID != "" {
			handleErr(tracker.AddToWatchlist(ctx, itemType, imdbID))
			fmt.Printf("%s added %s to watchlist\n", style.Fg(color.Green)(icon.Get(icon.Success)), imdbID)
			return
		}
		if imdbID := lo.Must(cmd.Flags().GetString("remove")); imdbID != "" {
			handleErr(tracker.RemoveFromWatchlist(ctx, itemType, imdbID))
			fmt.Printf("%s removed %s from watchlist\n", style.Fg(color.Green)(icon.Get(icon.Success)), imdbID)
			return
		}

		items, err := tracker.Watchlist(ctx, itemType)
		handleErr(err)

		if len(items) == 0 {
			fmt.Println(style.Faint("watchlist is empty"))
			return
		}

		for _, item := range items {
			switch {
			case item.Movie != nil:
				printTraktItem(icon.Get(icon.Movie), item.Movie.Title, item.Movie.Year, item.Movie.Ids)
			case item.Show != nil:
				printTraktItem(icon.Get(icon.Series), item.Show.Title, item.Show.Year, item.Show.Ids)
			}
		}
	},
}

func init() {
	traktCmd.AddCommand(traktSearchCmd)
	traktSearchCmd.Flags().StringP("type", "t", "", "Restrict to movie or show")
}

// traktSearchCmd queries the Trakt search endpoint directly.
var traktSearchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search the Trakt database",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		_, tracker, _ := services()

		searchType := lo.Must(cmd.Flags().GetString("type"))
		if searchType == "series" {
			searchType = "show"
		}

		results, err := tracker.Search(context.Background(), strings.Join(args, " "), searchType)
		handleErr(err)

		if len(results) == 0 {
			fmt.Println(style.Faint("no results"))
			return
		}

		for _, result := range results {
			switch {
			case result.Movie != nil:
				printTraktItem(icon.Get(icon.Movie), result.Movie.Title, result.Movie.Year, result.Movie.Ids)
			case result.Show != nil:
				printTraktItem(icon.Get(icon.Series), result.Show.Title, result.Show.Year, result.Show.Ids)
			}
		}
	},
}
