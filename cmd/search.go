// Package cmd implements the command-line interface for madari.
package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/madari-app/madari/addon"
	"github.com/madari-app/madari/color"
	"github.com/madari-app/madari/icon"
	"github.com/madari-app/madari/key"
	"github.com/madari-app/madari/query"
	"github.com/madari-app/madari/stremio"
	"github.com/madari-app/madari/style"
	"github.com/madari-app/madari/util"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	rootCmd.AddCommand(searchCmd)
	searchCmd.Flags().IntP("limit", "l", 0, "Maximum number of results to print per catalog")
}

// searchCmd fans a query out to every searchable catalog of every enabled
// addon and prints the grouped results.
var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search across every installed addon",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		addons, _, _ := services()
		searchQuery := strings.Join(args, " ")

		limit := lo.Must(cmd.Flags().GetInt("limit"))
		if limit <= 0 {
			limit = viper.GetInt(key.SearchResultLimit)
		}

		if suggestion, ok := query.Suggest(searchQuery).Get(); ok && suggestion != strings.ToLower(searchQuery) {
			fmt.Println(style.Faint(fmt.Sprintf("related: %s", suggestion)))
		}

		erase := util.PrintErasable(fmt.Sprintf("%s Searching...", icon.Get(icon.Progress)))
		var groups []addon.SearchGroup
		err := addons.Search(context.Background(), searchQuery, func(group addon.SearchGroup) {
			groups = append(groups, group)
		})
		erase()
		handleErr(err)

		if len(groups) == 0 {
			fmt.Printf("%s no results for %s\n", icon.Get(icon.Question), style.Bold(searchQuery))
			return
		}

		for _, group := range groups {
			fmt.Printf(
				"%s %s %s\n",
				icon.Get(icon.Search),
				style.Bold(group.Catalog.Name),
				style.Faint(fmt.Sprintf("(%s)", group.Addon.ID())),
			)

			metas := group.Metas
			if limit > 0 && len(metas) > limit {
				metas = metas[:limit]
			}

			for _, meta := range metas {
				printMetaPreview(meta)
			}
			fmt.Println()
		}
	},
}

// printMetaPreview renders one catalog row.
func printMetaPreview(meta stremio.MetaPreview) {
	line := fmt.Sprintf("  %s %s", typeIcon(meta.Type), style.Bold(meta.Name))
	if meta.ReleaseInfo != nil && *meta.ReleaseInfo != "" {
		line += " " + style.Faint("("+*meta.ReleaseInfo+")")
	}
	if meta.IMDBRating != nil && *meta.IMDBRating != "" {
		line += " " + style.Fg(color.Yellow)(icon.Get(icon.Star)+*meta.IMDBRating)
	}
	fmt.Println(line)
	fmt.Println(style.Faint("    " + meta.Type + " " + meta.ID))
}

// typeIcon maps a content type to its registry symbol.
func typeIcon(contentType string) string {
	switch contentType {
	case "movie":
		return icon.Get(icon.Movie)
	case "series":
		return icon.Get(icon.Series)
	default:
		return icon.Get(icon.Play)
	}
}
