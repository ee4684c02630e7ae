// Package cmd implements the command-line interface for madari.
package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/madari-app/madari/addon"
	"github.com/madari-app/madari/color"
	"github.com/madari-app/madari/constant"
	"github.com/madari-app/madari/history"
	"github.com/madari-app/madari/icon"
	"github.com/madari-app/madari/key"
	"github.com/madari-app/madari/log"
	"github.com/madari-app/madari/style"
	"github.com/madari-app/madari/trakt"
	"github.com/madari-app/madari/util"
	"github.com/madari-app/madari/version"
	"github.com/madari-app/madari/where"
	cc "github.com/ivanpirog/coloredcobra"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Shared services, loaded once on first use.
var (
	servicesOnce sync.Once
	addonService *addon.Service
	traktService *trakt.Service
	watchHistory *history.Service
)

// services lazily constructs the shared service layer.
func services() (*addon.Service, *trakt.Service, *history.Service) {
	servicesOnce.Do(func() {
		addonService = addon.NewService()
		addonService.Load()

		if viper.GetBool(key.AddonsAutoRefreshManifests) {
			addonService.RefreshManifests(context.Background())
		}

		traktService = trakt.NewService()
		traktService.Load()

		watchHistory = history.NewService()
	})
	return addonService, traktService, watchHistory
}

func init() {
	rootCmd.Flags().BoolP("version", "v", false, "Print the application version")

	rootCmd.PersistentFlags().StringP("icons", "I", "", "Set the visual icon variant (e.g., nerd, emoji, plain)")
	lo.Must0(rootCmd.RegisterFlagCompletionFunc("icons", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return icon.AvailableVariants(), cobra.ShellCompDirectiveDefault
	}))
	lo.Must0(viper.BindPFlag(key.IconsVariant, rootCmd.PersistentFlags().Lookup("icons")))

	rootCmd.PersistentFlags().BoolP("write-history", "H", true, "Persist playback progress to the localized watch history")
	lo.Must0(viper.BindPFlag(key.HistorySaveOnWatch, rootCmd.PersistentFlags().Lookup("write-history")))

	helpFunc := rootCmd.HelpFunc()
	rootCmd.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		helpFunc(cmd, args)
		version.Notify()
	})

	// Initialize cleanup of localized temporary files on application startup.
	go func() {
		_ = util.Delete(where.Temp())
	}()
}

// rootCmd defines the entry point for the madari application.
var rootCmd = &cobra.Command{
	Use:   constant.Madari,
	Short: "A command-line media center built on the addon protocol",
	Long: constant.AsciiArtLogo + "\n" +
		style.New().Italic(true).Foreground(color.HiRed).Render("    - A command-line media center built on the addon protocol"),
	Run: func(cmd *cobra.Command, args []string) {
		if cmd.Flags().Changed("version") {
			versionCmd.Run(versionCmd, args)
			return
		}

		handleErr(cmd.Help())
	},
}

// Execute initializes child command routing and processes the CLI entry point.
func Execute() {
	if viper.GetBool(key.CliColored) {
		cc.Init(&cc.Config{
			RootCmd:       rootCmd,
			Headings:      cc.HiCyan + cc.Bold + cc.Underline,
			Commands:      cc.HiYellow + cc.Bold,
			Example:       cc.Italic,
			ExecName:      cc.Bold,
			Flags:         cc.Bold,
			FlagsDataType: cc.Italic + cc.HiBlue,
		})
	}

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func handleErr(err error) {
	if err != nil {
		log.Error(err)
		_, _ = fmt.Fprintf(os.Stderr, "%s %s\n", icon.Get(icon.Fail), strings.Trim(err.Error(), " \n"))
		os.Exit(1)
	}
}
