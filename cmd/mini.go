// Package cmd implements the command-line interface for madari.
package cmd

import (
	"github.com/madari-app/madari/mini"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(miniCmd)
	miniCmd.Flags().BoolP("continue", "c", false, "Start in the continue-watching list")
}

// miniCmd runs the minimalist interactive mode: browse catalogs, search,
// pick a stream, play, repeat.
var miniCmd = &cobra.Command{
	Use:   "mini",
	Short: "Browse and play through a minimalist interactive mode",
	Run: func(cmd *cobra.Command, args []string) {
		CheckDependencies()

		addons, tracker, hist := services()
		handleErr(mini.Run(&mini.Options{
			Continue: lo.Must(cmd.Flags().GetBool("continue")),
			Addons:   addons,
			Tracker:  tracker,
			History:  hist,
		}))
	},
}
