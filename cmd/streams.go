// Package cmd implements the command-line interface for madari.
package cmd

import (
	"context"
	"errors"
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
	rootCmd.AddCommand(streamsCmd)
}

// streamsCmd fans a stream request out to every capable addon and prints
// the grouped results.
var streamsCmd = &cobra.Command{
	Use:   "streams <type> <video-id>",
	Short: "List playable streams for a video from every capable addon",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		addons, _, _ := services()
		contentType, videoID := args[0], args[1]

		erase := util.PrintErasable(fmt.Sprintf("%s Collecting streams...", icon.Get(icon.Progress)))
		groups, err := collectStreams(addons, contentType, videoID)
		erase()

		if errors.Is(err, addon.ErrNoCapableAddon) {
			fmt.Printf("%s no enabled addon serves streams for type %s\n", icon.Get(icon.Question), style.Bold(contentType))
			return
		}
		handleErr(err)

		if len(groups) == 0 {
			fmt.Printf("%s no streams found for %s\n", icon.Get(icon.Question), style.Bold(videoID))
			return
		}

		index := 0
		for _, group := range groups {
			fmt.Printf("%s %s\n", icon.Get(icon.Addon), style.Bold(group.Addon.Manifest.Name))
			for _, stream := range group.Streams {
				fmt.Printf("  [%d] %s\n", index, streamLabel(&stream))
				index++
			}
			fmt.Println()
		}
	},
}

// collectStreams gathers the settled fan-out results in arrival order.
func collectStreams(addons *addon.Service, contentType, videoID string) ([]addon.StreamGroup, error) {
	var groups []addon.StreamGroup
	err := addons.Streams(context.Background(), contentType, videoID, func(group addon.StreamGroup) {
		groups = append(groups, group)
	})
	return groups, err
}

// streamLabel renders a one-line description of a stream.
func streamLabel(stream *stremio.Stream) string {
	label := lo.FromPtrOr(stream.Name, "")
	if title := lo.FromPtrOr(stream.Title, ""); title != "" {
		if label != "" {
			label += " "
		}
		label += title
	}
	if label == "" {
		label = lo.FromPtrOr(stream.URL, lo.FromPtrOr(stream.ExternalURL, "unnamed stream"))
	}

	if !stream.Playable() {
		label += " " + style.Faint("(not directly playable)")
	}
	if group := stream.BingeGroup(); group != "" {
		label += " " + style.Faint("["+group+"]")
	}
	return label
}

func init() {
	rootCmd.AddCommand(subtitlesCmd)
	subtitlesCmd.Flags().String("hash", "", "OpenSubtitles-style hash of the local video file")
	subtitlesCmd.Flags().Int64("size", 0, "Size of the video file in bytes")
}

// subtitlesCmd fans a subtitles request out to every capable addon.
var subtitlesCmd = &cobra.Command{
	Use:   "subtitles <type> <video-id>",
	Short: "List subtitle tracks for a video from every capable addon",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		addons, _, _ := services()
		contentType, videoID := args[0], args[1]

		hash := lo.Must(cmd.Flags().GetString("hash"))
		size := lo.Must(cmd.Flags().GetInt64("size"))

		var groups []addon.SubtitleGroup
		err := addons.Subtitles(context.Background(), contentType, videoID, hash, size, func(group addon.SubtitleGroup) {
			groups = append(groups, group)
		})
		if errors.Is(err, addon.ErrNoCapableAddon) {
			fmt.Printf("%s no enabled addon serves subtitles for type %s\n", icon.Get(icon.Question), style.Bold(contentType))
			return
		}
		handleErr(err)

		if len(groups) == 0 {
			fmt.Printf("%s no subtitles found for %s\n", icon.Get(icon.Question), style.Bold(videoID))
			return
		}

		for _, group := range groups {
			fmt.Printf("%s %s\n", icon.Get(icon.Addon), style.Bold(group.Addon.Manifest.Name))
			for _, subtitle := range group.Subtitles {
				fmt.Printf("  %s %s\n", style.Bold(subtitle.Lang), style.Faint(subtitle.URL))
			}
			fmt.Println()
		}
	},
}
