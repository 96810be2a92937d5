// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func credentialFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:     "username",
			Aliases:  []string{"u"},
			Usage:    "Account username",
			Sources:  cli.EnvVars("VIDGEN_USERNAME"),
			Required: true,
		},
		&cli.StringFlag{
			Name:     "password",
			Aliases:  []string{"p"},
			Usage:    "Account password",
			Sources:  cli.EnvVars("VIDGEN_PASSWORD"),
			Required: true,
		},
	}
}

func videoIDArg() []cli.Argument {
	return []cli.Argument{&cli.StringArg{Name: "id"}}
}

// setupCommand handles setup operations for configuration and the local database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:  "config",
				Usage: "Write an example config.toml",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "path",
						Aliases: []string{"c"},
						Usage:   "Path to configuration file",
						Value:   "config.toml",
					},
				},
				Action: r.SetupConfig,
			},
			{
				Name:   "database",
				Usage:  "Initialize database and run migrations",
				Action: r.SetupDatabase,
			},
		},
	}
}

// authCommand handles session operations
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Manage the stored session",
		Commands: []*cli.Command{
			{
				Name:   "login",
				Usage:  "Exchange username and password for a token and store it",
				Flags:  credentialFlags(),
				Action: r.withStack(r.AuthLogin),
			},
			{
				Name:   "register",
				Usage:  "Create an account, then log in with it",
				Flags:  credentialFlags(),
				Action: r.withStack(r.AuthRegister),
			},
			{
				Name:   "logout",
				Usage:  "Erase the stored token",
				Action: r.withStack(r.AuthLogout),
			},
			{
				Name:  "status",
				Usage: "Verify the stored token with the backend",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.withStack(r.AuthStatus),
			},
		},
	}
}

// videoCommand handles generation and gallery operations
func videoCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "video",
		Aliases: []string{"v"},
		Usage:   "Generate and manage videos",
		Commands: []*cli.Command{
			{
				Name:  "generate",
				Usage: "Submit a prompt for generation",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "prompt"},
				},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "story",
						Usage: "Generate a multi-scene story",
					},
					&cli.BoolFlag{
						Name:    "watch",
						Aliases: []string{"w"},
						Usage:   "Wait until the video is completed or failed",
					},
				},
				Action: r.withStack(r.VideoGenerate),
			},
			{
				Name:    "list",
				Aliases: []string{"ls"},
				Usage:   "List videos in the gallery",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Output format (txt, csv, markdown, json)",
						Value:   "txt",
					},
					&cli.BoolFlag{
						Name:  "offline",
						Usage: "Read the local cache instead of the backend",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Write to a file instead of stdout",
					},
				},
				Action: r.withStack(r.VideoList),
			},
			{
				Name:      "watch",
				Usage:     "Poll a video until it is completed or failed",
				Arguments: videoIDArg(),
				Flags: []cli.Flag{
					&cli.DurationFlag{
						Name:  "interval",
						Usage: "Polling interval (default: gallery.poll_interval_seconds)",
					},
				},
				Action: r.withStack(r.VideoWatch),
			},
			{
				Name:      "open",
				Usage:     "Open a video's media in the browser",
				Arguments: videoIDArg(),
				Action:    r.VideoOpen,
			},
			{
				Name:      "download",
				Usage:     "Save media as video_<id>.mp4",
				Arguments: videoIDArg(),
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "all",
						Usage: "Download every completed video",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output directory (default: gallery.download_dir)",
					},
					&cli.BoolFlag{
						Name:  "overwrite",
						Usage: "Replace files that already exist",
					},
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Concurrent downloads for --all",
						Value: 3,
					},
				},
				Action: r.withStack(r.VideoDownload),
			},
			{
				Name:      "archive",
				Usage:     "Upload a video's media to the configured S3 bucket",
				Arguments: videoIDArg(),
				Action:    r.VideoArchive,
			},
		},
	}
}

// apiCommand handles direct backend calls
func apiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "api",
		Usage: "Direct calls to the backend",
		Commands: []*cli.Command{
			{
				Name:  "get",
				Usage: "Direct GET, prints the response",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "path"},
				},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "auth",
						Usage: "Send the stored token",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print JSON",
						Value: true,
					},
				},
				Action: r.withStack(r.APIGet),
			},
			{
				Name:  "post",
				Usage: "Direct POST with a JSON body",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "path"},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "data",
						Aliases:  []string{"d"},
						Usage:    "JSON body to send",
						Required: true,
					},
					&cli.BoolFlag{
						Name:  "auth",
						Usage: "Send the stored token",
					},
				},
				Action: r.withStack(r.APIPost),
			},
		},
	}
}

// tuiCommand returns the top-level TUI command.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch the interactive generator and gallery",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "log-file",
				Usage: "Where logs go while the TUI owns the terminal",
				Value: "./tmp/vidgen-tui.log",
			},
		},
		Action: r.TUI,
	}
}

// mockCommand serves the in-memory backend.
func mockCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "mock",
		Usage: "Run a local mock of the video generation backend",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "host",
				Usage: "Listen host (default: mock.host)",
			},
			&cli.IntFlag{
				Name:  "port",
				Usage: "Listen port (default: mock.port)",
			},
			&cli.DurationFlag{
				Name:  "complete-after",
				Usage: "How long generations stay processing (default: mock.complete_after_seconds)",
			},
		},
		Action: r.Mock,
	}
}
