// Package cmd implements the command-line interface for madari.
package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/madari-app/madari/icon"
	"github.com/madari-app/madari/style"
	"github.com/madari-app/madari/util"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(metaCmd)
}

// metaCmd resolves and prints full metadata for one content item.
var metaCmd = &cobra.Command{
	Use:   "meta <type> <id>",
	Short: "Show full metadata for a content item",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		addons, _, _ := services()
		contentType, id := args[0], args[1]

		erase := util.PrintErasable(fmt.Sprintf("%s Resolving metadata...", icon.Get(icon.Progress)))
		meta, err := addons.Meta(context.Background(), contentType, id)
		erase()
		handleErr(err)

		fmt.Printf("%s %s\n", typeIcon(meta.Type), style.Bold(meta.Name))
		if meta.ReleaseInfo != nil {
			fmt.Println(style.Faint(*meta.ReleaseInfo))
		}
		if len(meta.Genres) > 0 {
			fmt.Println(style.Faint(strings.Join(meta.Genres, ", ")))
		}
		if meta.IMDBRating != nil && *meta.IMDBRating != "" {
			fmt.Printf("%s %s\n", icon.Get(icon.Star), *meta.IMDBRating)
		}
		if meta.Description != nil && *meta.Description != "" {
			fmt.Println()
			fmt.Println(*meta.Description)
		}
		if len(meta.Cast) > 0 {
			fmt.Println()
			fmt.Printf("%s %s\n", style.Bold("Cast:"), strings.Join(meta.Cast, ", "))
		}

		if len(meta.Videos) > 0 {
			fmt.Println()
			fmt.Println(style.Bold("Videos"))
			for _, video := range meta.Videos {
				label := video.DisplayTitle()
				if video.Season != nil && video.Episode != nil {
					label = fmt.Sprintf("S%02dE%02d %s", *video.Season, *video.Episode, label)
				}
				fmt.Printf("  %s %s\n", label, style.Faint(video.ID))
			}
		}
	},
}
