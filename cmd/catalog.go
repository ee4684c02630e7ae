// Package cmd implements the command-line interface for madari.
package cmd

import (
	"context"
	"fmt"

	"github.com/madari-app/madari/addon"
	"github.com/madari-app/madari/icon"
	"github.com/madari-app/madari/stremio"
	"github.com/madari-app/madari/style"
	"github.com/madari-app/madari/util"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(catalogCmd)
}

// catalogCmd serves as the parent command for browsing addon catalogs.
var catalogCmd = &cobra.Command{
	Use:     "catalog",
	Short:   "Browse the catalogs exposed by installed addons",
	Aliases: []string{"catalogs"},
}

func init() {
	catalogCmd.AddCommand(catalogListCmd)
	catalogListCmd.Flags().StringP("type", "t", "", "Only list catalogs of this content type")
}

// catalogListCmd enumerates the available catalogs.
var catalogListCmd = &cobra.Command{
	Use:     "list",
	Short:   "List the available catalogs",
	Aliases: []string{"ls"},
	Run: func(cmd *cobra.Command, args []string) {
		addons, _, _ := services()

		contentType := lo.Must(cmd.Flags().GetString("type"))
		refs := addons.AllCatalogs()
		if contentType != "" {
			refs = addons.CatalogsByType(contentType)
		}

		if len(refs) == 0 {
			fmt.Println(style.Faint("no catalogs available"))
			return
		}

		for _, ref := range refs {
			line := fmt.Sprintf(
				"%s %s %s",
				typeIcon(ref.Catalog.Type),
				style.Bold(ref.Catalog.Name),
				style.Faint(fmt.Sprintf("(%s/%s, %s)", ref.Addon.ID(), ref.Catalog.ID, ref.Catalog.Type)),
			)
			if ref.Catalog.Searchable() {
				line += " " + icon.Get(icon.Search)
			}
			fmt.Println(line)
		}
	},
}

func init() {
	catalogCmd.AddCommand(catalogGetCmd)
	catalogGetCmd.Flags().StringP("genre", "g", "", "Filter by genre")
	catalogGetCmd.Flags().IntP("skip", "s", 0, "Pagination offset")
}

// catalogGetCmd fetches one catalog page from one addon.
var catalogGetCmd = &cobra.Command{
	Use:   "get <addon-id> <catalog-id>",
	Short: "Fetch a catalog page from an addon",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		addons, _, _ := services()
		addonID, catalogID := args[0], args[1]

		ref, found := lo.Find(addons.AllCatalogs(), func(r addon.CatalogRef) bool {
			return r.Addon.ID() == addonID && r.Catalog.ID == catalogID
		})
		if !found {
			handleErr(fmt.Errorf("no catalog %s in addon %s", catalogID, addonID))
		}

		extra := &stremio.ExtraArgs{
			Genre: lo.Must(cmd.Flags().GetString("genre")),
			Skip:  lo.Must(cmd.Flags().GetInt("skip")),
		}

		erase := util.PrintErasable(fmt.Sprintf("%s Fetching %s...", icon.Get(icon.Progress), ref.Catalog.Name))
		metas, err := addons.Catalog(context.Background(), ref, extra)
		erase()
		handleErr(err)

		if len(metas) == 0 {
			fmt.Println(style.Faint("catalog page is empty"))
			return
		}

		fmt.Printf("%s %s\n", style.Bold(ref.Catalog.Name), style.Faint(fmt.Sprintf("(%d items)", len(metas))))
		for _, meta := range metas {
			printMetaPreview(meta)
		}
	},
}
