// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// missingCommand compares the live playlist with a stored snapshot.
func missingCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "missing",
		Usage: "Report titles from the stored snapshot that are no longer in the playlist",
		Flags: append([]cli.Flag{
			&cli.BoolFlag{
				Name:  "previous",
				Usage: "Compare with the baseline snapshot instead of the latest one",
			},
		}, reportFlags()...),
		Action: r.Missing,
	}
}

// diffCommand prints a stored diff report.
func diffCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "diff",
		Usage: "Print the diff report written by the last backup",
		Flags: append([]cli.Flag{
			&cli.BoolFlag{
				Name:  "backup",
				Usage: "Print the previous generation of the report",
			},
		}, reportFlags()...),
		Action: r.Diff,
	}
}

// reportFlags select how a report is printed.
func reportFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "format",
			Aliases: []string{"f"},
			Usage:   "Output format: text, json or csv",
			Value:   "text",
		},
		&cli.BoolFlag{
			Name:  "pretty",
			Usage: "Pretty-print JSON output",
			Value: true,
		},
	}
}

// historyCommand lists recorded runs.
func historyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "List recorded backup runs",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Maximum number of runs to list",
				Value: 20,
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
		},
		Action: r.History,
	}
}

// configCommand manages the configuration file.
func configCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Configuration file commands",
		Commands: []*cli.Command{
			{
				Name:   "init",
				Usage:  "Write an example configuration file",
				Action: r.ConfigInit,
			},
		},
	}
}

// setupCommand prepares the configuration file and run history database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "setup",
		Usage:  "Create the configuration file if needed and migrate the run history database",
		Action: r.Setup,
	}
}

// tuiCommand returns the top-level TUI command for browsing reports.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Browse snapshots, diffs and run history interactively",
		Action:  r.TUI,
	}
}
