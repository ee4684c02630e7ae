// Package cmd implements the command-line interface for madari.
package cmd

import (
	"context"
	"fmt"

	"github.com/AlecAivazis/survey/v2"
	"github.com/madari-app/madari/color"
	"github.com/madari-app/madari/history"
	"github.com/madari-app/madari/icon"
	"github.com/madari-app/madari/style"
	"github.com/madari-app/madari/trakt"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(historyCmd)
}

// historyCmd serves as the parent command for the watch history.
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Manage the watch history and continue-watching list",
}

func init() {
	historyCmd.AddCommand(historyListCmd)
}

// historyListCmd prints the raw local history, most recent first.
var historyListCmd = &cobra.Command{
	Use:     "list",
	Short:   "List the local watch history",
	Aliases: []string{"ls"},
	Run: func(cmd *cobra.Command, args []string) {
		_, _, hist := services()

		entries, err := hist.All()
		handleErr(err)

		if len(entries) == 0 {
			fmt.Println(style.Faint("history is empty"))
			return
		}

		for _, entry := range entries {
			printHistoryEntry(entry)
		}
	},
}

func init() {
	rootCmd.AddCommand(continueCmd)
}

// continueCmd shows the merged continue-watching list. When the tracking
// service is connected its paused-playback rows are folded in; otherwise
// the view is purely local.
var continueCmd = &cobra.Command{
	Use:     "continue",
	Short:   "Show the continue-watching list",
	Aliases: []string{"resume"},
	Run: func(cmd *cobra.Command, args []string) {
		_, tracker, hist := services()

		local, err := hist.All()
		handleErr(err)

		var remote []trakt.PlaybackProgress
		if tracker.IsAuthenticated() && tracker.Config().SyncProgress {
			rows, err := tracker.Playback(context.Background())
			if err != nil {
				fmt.Println(style.Faint(fmt.Sprintf("remote progress unavailable: %v", err)))
			} else {
				remote = rows
			}
		}

		merged := history.Merge(local, remote)
		if len(merged) == 0 {
			fmt.Println(style.Faint("nothing to continue"))
			return
		}

		for _, entry := range merged {
			printHistoryEntry(entry)
		}
	},
}

// printHistoryEntry renders one history row with its progress.
func printHistoryEntry(entry *history.Entry) {
	label := entry.Title
	if label == "" {
		label = entry.MetaID
	}
	if entry.VideoTitle != "" {
		label += " " + style.Faint("- "+entry.VideoTitle)
	}

	percent := int(entry.Progress() * 100)
	progress := style.Fg(color.Yellow)(fmt.Sprintf("%3d%%", percent))
	if entry.Finished() {
		progress = style.Fg(color.Green)("done")
	}

	source := ""
	if entry.Source == history.SourceRemote {
		source = " " + style.Faint("(trakt)")
	}

	fmt.Printf(
		"%s %s %s%s\n  %s\n",
		typeIcon(entry.ContentType),
		style.Bold(label),
		progress,
		source,
		style.Faint(fmt.Sprintf("%s, last watched %s", entry.VideoID, entry.LastWatched.Format("2006-01-02 15:04"))),
	)
}

func init() {
	historyCmd.AddCommand(historyRemoveCmd)
	historyRemoveCmd.Flags().Bool("series", false, "Remove every episode of the given meta id")
}

// historyRemoveCmd deletes one entry, or a whole series, from the local
// history.
var historyRemoveCmd = &cobra.Command{
	Use:     "remove <meta-id> [video-id]",
	Short:   "Remove entries from the local watch history",
	Aliases: []string{"rm"},
	Args:    cobra.RangeArgs(1, 2),
	Run: func(cmd *cobra.Command, args []string) {
		_, _, hist := services()
		metaID := args[0]

		if lo.Must(cmd.Flags().GetBool("series")) || len(args) == 1 {
			handleErr(hist.RemoveSeries(metaID))
		} else {
			handleErr(hist.Remove(metaID, args[1]))
		}

		fmt.Printf("%s removed\n", style.Fg(color.Green)(icon.Get(icon.Success)))
	},
}

func init() {
	historyCmd.AddCommand(historyClearCmd)
	historyClearCmd.Flags().BoolP("force", "f", false, "Skip the confirmation prompt")
}

// historyClearCmd wipes the local history.
var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Clear the entire local watch history",
	Run: func(cmd *cobra.Command, args []string) {
		_, _, hist := services()

		if !lo.Must(cmd.Flags().GetBool("force")) {
			var confirmed bool
			handleErr(survey.AskOne(&survey.Confirm{
				Message: "Clear the entire watch history?",
			}, &confirmed))
			if !confirmed {
				return
			}
		}

		handleErr(hist.Clear())
		fmt.Printf("%s history cleared\n", style.Fg(color.Green)(icon.Get(icon.Success)))
	},
}
