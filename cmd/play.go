// Package cmd implements the command-line interface for madari.
package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/madari-app/madari/addon"
	"github.com/madari-app/madari/icon"
	"github.com/madari-app/madari/player"
	"github.com/madari-app/madari/scrobble"
	"github.com/madari-app/madari/stremio"
	"github.com/madari-app/madari/style"
	"github.com/madari-app/madari/trakt"
	"github.com/madari-app/madari/util"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(playCmd)
	playCmd.Flags().IntP("stream", "s", -1, "Play the stream at this index instead of prompting")
}

// playCmd resolves streams for a video, launches the configured player, and
// keeps history and the tracking service in sync while it runs.
var playCmd = &cobra.Command{
	Use:   "play <type> <video-id>",
	Short: "Play a video through the configured media player",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		CheckDependencies()

		addons, tracker, hist := services()
		contentType, videoID := args[0], args[1]
		ctx := context.Background()

		content := player.Content{
			Type:    contentType,
			MetaID:  metaIDOf(contentType, videoID),
			VideoID: videoID,
			Title:   videoID,
		}

		ids := trakt.ParseStremioID(videoID)
		if ids.IsEpisode {
			content.Season = ids.Season
			content.Episode = ids.Episode
		}

		// Metadata is cosmetic here; playback works without it.
		if meta, err := addons.Meta(ctx, contentType, content.MetaID); err == nil {
			content.Title = meta.Name
			content.Poster = lo.FromPtrOr(meta.Poster, "")
			for _, video := range meta.Videos {
				if video.ID == videoID {
					content.VideoTitle = video.DisplayTitle()
					break
				}
			}
		}

		erase := util.PrintErasable(fmt.Sprintf("%s Collecting streams...", icon.Get(icon.Progress)))
		groups, err := collectStreams(addons, contentType, videoID)
		erase()
		handleErr(err)

		streams := lo.Filter(
			lo.FlatMap(groups, func(group addon.StreamGroup, _ int) []stremio.Stream {
				return group.Streams
			}),
			func(stream stremio.Stream, _ int) bool {
				return stream.Playable()
			},
		)
		if len(streams) == 0 {
			handleErr(fmt.Errorf("no playable streams for %s", videoID))
		}

		stream := pickStream(cmd, streams)

		session := player.NewSession(player.New(), hist, scrobble.New(tracker))
		fmt.Printf("%s playing %s\n", icon.Get(icon.Play), style.Bold(content.Title))
		handleErr(session.Play(ctx, stream, content))
	},
}

// pickStream selects a stream by flag index or interactive prompt.
func pickStream(cmd *cobra.Command, streams []stremio.Stream) *stremio.Stream {
	index := lo.Must(cmd.Flags().GetInt("stream"))
	if index >= 0 {
		if index >= len(streams) {
			handleErr(fmt.Errorf("stream index %d out of range (%d available)", index, len(streams)))
		}
		return &streams[index]
	}

	if len(streams) == 1 {
		return &streams[0]
	}

	labels := lo.Map(streams, func(stream stremio.Stream, _ int) string {
		return streamLabel(&stream)
	})

	var choice int
	handleErr(survey.AskOne(&survey.Select{
		Message: "Pick a stream",
		Options: labels,
	}, &choice))

	return &streams[choice]
}

// metaIDOf derives the catalog-level id a video id belongs to. Episode ids
// carry a ":season:episode" suffix on top of the series id.
func metaIDOf(contentType, videoID string) string {
	if contentType != "series" {
		return videoID
	}

	ids := trakt.ParseStremioID(videoID)
	if !ids.IsEpisode {
		return videoID
	}

	parts := strings.Split(videoID, ":")
	return strings.Join(parts[:len(parts)-2], ":")
}
