package main

import (
	"log"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/kulaginds/aniplay/internal/config"
	"github.com/kulaginds/aniplay/internal/logging"
)

const (
	appName    = "aniplay"
	appVersion = "1.0.0"
)

func init() {
	cli.VersionFlag = &cli.BoolFlag{
		Name:  "version, V",
		Usage: "print the version",
	}
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	app := cli.NewApp()

	app.Name = appName
	app.Usage = "Spidy ANI animation decoder and player"
	app.Version = appVersion

	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "log-level",
			EnvVars: []string{"LOG_LEVEL"},
			Value:   "info",
			Usage:   "log level (debug, info, warn, error)",
		},
		&cli.StringFlag{
			Name:    "timing-table",
			EnvVars: []string{"TIMING_TABLE"},
			Usage:   "YAML frame rate table replacing the built-in one",
		},
		&cli.Float64Flag{
			Name:    "fallback-fps",
			EnvVars: []string{"FALLBACK_FPS"},
			Usage:   "frame rate for animations missing from the timing table",
		},
	}

	app.Before = func(c *cli.Context) error {
		if err := logging.SetLevelFromString(c.String("log-level")); err != nil {
			return cli.NewExitError(err, 2)
		}
		logging.Default().SetOutput(c.App.ErrWriter)
		return nil
	}

	app.Commands = []*cli.Command{
		{
			Name:      "info",
			Usage:     "Print the header and block statistics of an animation",
			ArgsUsage: "FILE",
			Action:    infoAction,
		},
		{
			Name:      "extract",
			Usage:     "Decode an animation into PNG frames and a WAV soundtrack",
			ArgsUsage: "FILE",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:  "out",
					Value: ".",
					Usage: "output directory",
				},
			},
			Action: extractAction,
		},
		{
			Name:      "gif",
			Usage:     "Convert an animation into an animated GIF",
			ArgsUsage: "FILE",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:  "out",
					Usage: "output file, defaults to FILE with a .gif extension",
				},
			},
			Action: gifAction,
		},
		{
			Name:  "serve",
			Usage: "Stream animations to browsers over websockets",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:  "host",
					Usage: "listen host (default from SERVER_HOST or 0.0.0.0)",
				},
				&cli.StringFlag{
					Name:  "port",
					Usage: "listen port (default from SERVER_PORT or 8080)",
				},
				&cli.StringFlag{
					Name:  "media",
					Usage: "directory holding the animations (default from MEDIA_DIR or .)",
				},
			},
			Action: serveAction,
		},
	}

	return app
}

// loadConfig merges the global flags over the environment.
func loadConfig(c *cli.Context, opts config.LoadOptions) (*config.Config, error) {
	opts.LogLevel = c.String("log-level")
	opts.TimingTable = c.String("timing-table")
	opts.FallbackFPS = c.Float64("fallback-fps")

	cfg, err := config.LoadWithOverrides(opts)
	if err != nil {
		return nil, cli.NewExitError(err, 2)
	}
	return cfg, nil
}
