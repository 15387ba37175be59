package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/desertthunder/plbackup/internal/shared"
	"github.com/urfave/cli/v3"
)

func main() {
	logger := shared.NewLogger(nil)
	runner := NewRunner(RunnerOpts{Logger: logger})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newApp(runner).Run(ctx, os.Args); err != nil {
		logger.Fatalf("application error: %v", err)
	}
}

// newApp builds the root command. Invoked without a subcommand it backs up playlists.
func newApp(r *Runner) *cli.Command {
	return &cli.Command{
		Name:     "plbackup",
		Usage:    "Back up YouTube playlists and report what changed between runs",
		Version:  "0.1.0",
		Flags:    rootFlags(),
		Action:   r.Backup,
		Commands: r.register(),
	}
}

func rootFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "playlistId",
			Usage: "ID of the playlist to back up",
		},
		&cli.StringFlag{
			Name:  "youtubeAuthKey",
			Usage: "YouTube Data API key (defaults to youtube.api_key)",
		},
		&cli.StringFlag{
			Name:  "outputDir",
			Usage: "Directory holding snapshot and report files (defaults to the working directory)",
		},
		&cli.StringFlag{
			Name:  "playlistName",
			Usage: "Name used for output files (defaults to the playlist ID)",
		},
		&cli.BoolFlag{
			Name:  "areNewVideosLast",
			Usage: "New videos are appended to the end of the playlist",
			Value: true,
		},
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Path to configuration file",
			Value:   "config.toml",
		},
		&cli.BoolFlag{
			Name:  "all",
			Usage: "Back up every playlist listed in the configuration file",
		},
		&cli.BoolFlag{
			Name:  "debug",
			Usage: "Enable debug logging",
		},
	}
}
