package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/kulaginds/aniplay/internal/ani"
	"github.com/kulaginds/aniplay/internal/config"
	"github.com/kulaginds/aniplay/internal/export"
	"github.com/kulaginds/aniplay/internal/logging"
	"github.com/kulaginds/aniplay/internal/player"
	"github.com/kulaginds/aniplay/internal/source"
)

// stats summarizes the blocks of a container.
type stats struct {
	blocks     int
	palettes   int
	sounds     int
	soundBytes int
	images     int
	rows       int
}

func scan(path string) (ani.Header, stats, error) {
	var st stats

	in, err := source.Open(path)
	if err != nil {
		return ani.Header{}, st, err
	}
	defer in.Close()

	r, err := ani.Open(in)
	if err != nil {
		return ani.Header{}, st, err
	}

	h, err := r.Load()
	if err != nil {
		return h, st, err
	}

	for {
		b, err := r.Next()
		st.blocks = r.Blocks()
		if errors.Is(err, io.EOF) {
			return h, st, nil
		}
		if err != nil {
			return h, st, err
		}

		switch b.Kind {
		case ani.KindPalette:
			st.palettes++
		case ani.KindSound:
			st.sounds++
			st.soundBytes += len(b.Sound)
		case ani.KindImage:
			st.images++
			st.rows += b.Image.Rows
		}
	}
}

func requireFile(c *cli.Context) string {
	if c.NArg() < 1 {
		cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
	}
	return c.Args().First()
}

func infoAction(c *cli.Context) error {
	path := requireFile(c)

	h, st, err := scan(path)
	if err != nil {
		return cli.NewExitError(err, 1)
	}

	w := c.App.Writer
	fmt.Fprintf(w, "file:      %s\n", path)
	fmt.Fprintf(w, "header:    %s\n", h)
	fmt.Fprintf(w, "blocks:    %d\n", st.blocks)
	fmt.Fprintf(w, "palettes:  %d\n", st.palettes)
	fmt.Fprintf(w, "sounds:    %d (%d bytes)\n", st.sounds, st.soundBytes)
	fmt.Fprintf(w, "images:    %d\n", st.images)
	fmt.Fprintf(w, "frames:    %d\n", st.rows/h.Height)

	cfg, err := loadConfig(c, config.LoadOptions{})
	if err != nil {
		return err
	}
	table, err := cfg.Playback.Timing()
	if err != nil {
		return cli.NewExitError(err, 2)
	}
	if rate, err := table.Lookup(filepath.Base(path), h.Language); err == nil {
		fmt.Fprintf(w, "timing:    %.2f fps, audio delay %d frames\n", rate.FPS, rate.AudioDelay)
	} else {
		fmt.Fprintf(w, "timing:    unknown\n")
	}

	return nil
}

// record plays path into sinks until it ends or the process is interrupted.
// It uses the configuration the calling action loaded.
func record(c *cli.Context, path string, sinks ...export.Sink) (*export.Recorder, error) {
	cfg := config.GetGlobalConfig()
	if cfg == nil {
		var err error
		if cfg, err = loadConfig(c, config.LoadOptions{}); err != nil {
			return nil, err
		}
	}
	table, err := cfg.Playback.Timing()
	if err != nil {
		return nil, cli.NewExitError(err, 2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	rec := export.NewRecorder(path, sinks...)
	p := player.New(table, player.WithLogger(logging.Default().Named(filepath.Base(path))))
	p.Play(ctx, rec)

	if err := rec.Err(); err != nil {
		return rec, cli.NewExitError(err, 1)
	}
	return rec, nil
}

func extractAction(c *cli.Context) error {
	path := requireFile(c)
	out := c.String("out")

	if err := os.MkdirAll(out, 0o755); err != nil {
		return cli.NewExitError(err, 1)
	}

	cfg, err := loadConfig(c, config.LoadOptions{})
	if err != nil {
		return err
	}

	wav, err := os.Create(filepath.Join(out, "audio.wav"))
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	defer wav.Close()

	rec, err := record(c, path,
		export.NewPNGSequence(out),
		export.NewWAV(wav, cfg.Playback.AudioSampleRate),
	)
	if err != nil {
		return err
	}
	if err := wav.Close(); err != nil {
		return cli.NewExitError(err, 1)
	}

	fmt.Fprintf(c.App.Writer, "extracted %d frames to %s\n", rec.Frames(), out)
	return nil
}

func gifAction(c *cli.Context) error {
	path := requireFile(c)

	out := c.String("out")
	if out == "" {
		base := filepath.Base(path)
		for _, ext := range []string{".gz", ".zst", ".ani"} {
			if strings.HasSuffix(strings.ToLower(base), ext) {
				base = base[:len(base)-len(ext)]
			}
		}
		out = base + ".gif"
	}

	if _, err := loadConfig(c, config.LoadOptions{}); err != nil {
		return err
	}

	f, err := os.Create(out)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	defer f.Close()

	rec, err := record(c, path, export.NewGIF(f))
	if err != nil {
		return err
	}
	if err := f.Close(); err != nil {
		return cli.NewExitError(err, 1)
	}

	fmt.Fprintf(c.App.Writer, "wrote %d frames to %s\n", rec.Frames(), out)
	return nil
}
