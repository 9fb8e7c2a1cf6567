package main

import (
	"context"

	"github.com/loganravin4/lokedex/internal/services"
	"github.com/loganravin4/lokedex/internal/widget"
	"github.com/urfave/cli/v3"
)

// NowPlaying resolves the currently playing track once and prints it as JSON.
//
// Mirrors the data endpoint's contract: any failure prints the literal null.
func (r *Runner) NowPlaying(ctx context.Context, cmd *cli.Command) error {
	pretty := cmd.Bool("pretty")

	track, err := r.spotify.NowPlaying(ctx)
	if err != nil {
		r.logger.Warn("now-playing resolution failed", "error", err)
		return r.writePlain("null\n")
	}
	if track == nil {
		return r.writePlain("null\n")
	}

	return r.writeJSON(track, pretty)
}

// Stats resolves listening stats once and prints them as JSON.
func (r *Runner) Stats(ctx context.Context, cmd *cli.Command) error {
	pretty := cmd.Bool("pretty")

	stats, err := r.spotify.Stats(ctx)
	if err != nil {
		r.logger.Warn("stats resolution failed", "error", err)
		return r.writePlain("null\n")
	}
	if stats == nil {
		return r.writePlain("null\n")
	}

	return r.writeJSON(stats, pretty)
}

// Widget runs the terminal now-playing widget against a deployment.
func (r *Runner) Widget(ctx context.Context, cmd *cli.Command) error {
	api := r.api
	if url := cmd.String("url"); url != "" {
		api = services.NewAPIService(url, r.httpClient)
	}

	return widget.Run(api)
}

func nowPlayingCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "now-playing",
		Usage: "Print the currently playing track as JSON (null when nothing is playing)",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "pretty",
				Usage: "Pretty-print output",
				Value: true,
			},
		},
		Action: r.NowPlaying,
	}
}

func statsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "stats",
		Usage: "Print recent tracks and top artists as JSON",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "pretty",
				Usage: "Pretty-print output",
				Value: true,
			},
		},
		Action: r.Stats,
	}
}

func widgetCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "widget",
		Usage: "Run the terminal now-playing widget",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "url",
				Usage: "Deployment base URL, defaults to the configured server address",
			},
		},
		Action: r.Widget,
	}
}
