// Package cmd implements the command-line interface for madari.
package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/madari-app/madari/color"
	"github.com/madari-app/madari/icon"
	"github.com/madari-app/madari/stremio"
	"github.com/madari-app/madari/style"
	"github.com/madari-app/madari/util"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(addonCmd)
}

// addonCmd serves as the parent command for managing the addon registry.
var addonCmd = &cobra.Command{
	Use:     "addon",
	Short:   "Manage installed addons",
	Aliases: []string{"addons"},
}

func init() {
	addonCmd.AddCommand(addonInstallCmd)
}

// addonInstallCmd installs or updates an addon from its transport URL.
var addonInstallCmd = &cobra.Command{
	Use:   "install <url>",
	Short: "Install an addon from its manifest URL",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		addons, _, _ := services()

		erase := util.PrintErasable(fmt.Sprintf("%s Fetching manifest...", icon.Get(icon.Progress)))
		installed, err := addons.Install(context.Background(), args[0])
		erase()
		handleErr(err)

		fmt.Printf(
			"%s installed %s %s\n",
			style.Fg(color.Green)(icon.Get(icon.Success)),
			style.Bold(installed.Manifest.Name),
			style.Faint(fmt.Sprintf("(%s v%s)", installed.ID(), installed.Manifest.Version)),
		)
	},
}

func init() {
	addonCmd.AddCommand(addonListCmd)
}

// addonListCmd lists every installed addon with its state and capabilities.
var addonListCmd = &cobra.Command{
	Use:     "list",
	Short:   "List installed addons in display order",
	Aliases: []string{"ls"},
	Run: func(cmd *cobra.Command, args []string) {
		addons, _, _ := services()

		installed := addons.Addons()
		if len(installed) == 0 {
			fmt.Println(style.Faint("no addons installed"))
			return
		}

		for _, a := range installed {
			state := style.Fg(color.Green)("enabled")
			if !a.Enabled {
				state = style.Fg(color.Red)("disabled")
			}

			resources := lo.Map(a.Manifest.Resources, func(r stremio.ResourceDefinition, _ int) string {
				return r.Name
			})

			fmt.Printf(
				"%d. %s %s %s\n   %s\n",
				a.Order+1,
				style.Bold(a.Manifest.Name),
				style.Faint(a.ID()),
				state,
				style.Faint(fmt.Sprintf(
					"types: %s | resources: %s",
					strings.Join(a.Manifest.Types, ", "),
					strings.Join(resources, ", "),
				)),
			)
		}
	},
}

func init() {
	addonCmd.AddCommand(addonRemoveCmd)
	addonRemoveCmd.Flags().BoolP("force", "f", false, "Skip the removal confirmation prompt")
}

// addonRemoveCmd uninstalls an addon by its manifest id.
var addonRemoveCmd = &cobra.Command{
	Use:     "remove <id>",
	Short:   "Uninstall an addon",
	Aliases: []string{"uninstall", "rm"},
	Args:    cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		addons, _, _ := services()
		id := args[0]

		if !lo.Must(cmd.Flags().GetBool("force")) {
			var confirmed bool
			handleErr(survey.AskOne(&survey.Confirm{
				Message: fmt.Sprintf("Remove addon %s?", id),
			}, &confirmed))
			if !confirmed {
				return
			}
		}

		if !addons.Uninstall(id) {
			handleErr(fmt.Errorf("addon not installed: %s", id))
		}

		fmt.Printf("%s removed %s\n", style.Fg(color.Green)(icon.Get(icon.Success)), id)
	},
}

func init() {
	addonCmd.AddCommand(addonEnableCmd)
	addonCmd.AddCommand(addonDisableCmd)
}

// addonEnableCmd re-enables a disabled addon.
var addonEnableCmd = &cobra.Command{
	Use:   "enable <id>",
	Short: "Enable an installed addon",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		addons, _, _ := services()
		if !addons.SetEnabled(args[0], true) {
			handleErr(fmt.Errorf("addon not installed: %s", args[0]))
		}
		fmt.Printf("%s enabled %s\n", style.Fg(color.Green)(icon.Get(icon.Success)), args[0])
	},
}

// addonDisableCmd disables an addon without uninstalling it.
var addonDisableCmd = &cobra.Command{
	Use:   "disable <id>",
	Short: "Disable an installed addon",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		addons, _, _ := services()
		if !addons.SetEnabled(args[0], false) {
			handleErr(fmt.Errorf("addon not installed: %s", args[0]))
		}
		fmt.Printf("%s disabled %s\n", style.Fg(color.Green)(icon.Get(icon.Success)), args[0])
	},
}

func init() {
	addonCmd.AddCommand(addonMoveCmd)
	addonMoveCmd.Flags().BoolP("up", "u", false, "Move the addon one position earlier")
	addonMoveCmd.Flags().BoolP("down", "d", false, "Move the addon one position later")
	addonMoveCmd.MarkFlagsMutuallyExclusive("up", "down")
}

// addonMoveCmd changes an addon's position in the display order, which
// decides meta resolution priority.
var addonMoveCmd = &cobra.Command{
	Use:   "move <id>",
	Short: "Move an addon up or down in the display order",
	Args:  cobra.ExactArgs(1),
	PreRun: func(cmd *cobra.Command, args []string) {
		if !cmd.Flags().Changed("up") && !cmd.Flags().Changed("down") {
			handleErr(fmt.Errorf("either --up or --down must be set"))
		}
	},
	Run: func(cmd *cobra.Command, args []string) {
		addons, _, _ := services()

		direction := 1
		if lo.Must(cmd.Flags().GetBool("up")) {
			direction = -1
		}

		if !addons.Move(args[0], direction) {
			handleErr(fmt.Errorf("cannot move %s any further", args[0]))
		}
		fmt.Printf("%s moved %s\n", style.Fg(color.Green)(icon.Get(icon.Success)), args[0])
	},
}

func init() {
	addonCmd.AddCommand(addonRefreshCmd)
}

// addonRefreshCmd re-fetches every installed addon's manifest in place.
var addonRefreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Refresh the manifests of all installed addons",
	Run: func(cmd *cobra.Command, args []string) {
		addons, _, _ := services()

		for _, a := range addons.Addons() {
			erase := util.PrintErasable(fmt.Sprintf("%s Refreshing %s...", icon.Get(icon.Progress), a.ID()))
			_, err := addons.Install(context.Background(), a.TransportURL)
			erase()
			if err != nil {
				fmt.Printf("%s %s: %v\n", icon.Get(icon.Fail), a.ID(), err)
				continue
			}
			fmt.Printf("%s refreshed %s\n", style.Fg(color.Green)(icon.Get(icon.Success)), a.ID())
		}
	},
}
