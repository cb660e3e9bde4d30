package main

import (
	"context"
	"errors"
	"fmt"
	"image"

	"github.com/spf13/cobra"

	"github.com/example/scrcap/internal/autocapture"
	"github.com/example/scrcap/internal/capture"
	"github.com/example/scrcap/internal/config"
	"github.com/example/scrcap/internal/filename"
	"github.com/example/scrcap/internal/logger"
	"github.com/example/scrcap/internal/output"
)

type autoCmd struct {
	a    *app
	rect string
}

func newAutoCmd(a *app) *cobra.Command {
	c := &autoCmd{a: a}
	cmd := &cobra.Command{
		Use:   "auto",
		Short: "Capture a rectangle periodically",
		Long: `Capture the same root rectangle on a fixed interval and save every image into
the save directory. The first capture happens immediately. A failed capture
stops the loop and raises a notification.`,
		Example: `  scrcap auto --rect 0,0,800,600 --interval 10s --dir ~/shots`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.run(cmd.Context())
		},
	}
	f := cmd.Flags()
	f.StringVar(&c.rect, "rect", "", "rectangle x,y,w,h (default is the last captured rectangle)")
	f.Duration("interval", 0, "time between captures")
	f.Bool("include-cursor", false, "draw the mouse pointer into each image")
	f.String("dir", "", "save directory")
	f.String("template", "", "filename template")
	f.String("format", "", "image format: png, jpg, bmp or tiff")
	bindFlags(a, cmd, map[string]string{
		"auto_interval":     "interval",
		"include_pointer":   "include-cursor",
		"save_dir":          "dir",
		"filename_template": "template",
		"format":            "format",
	})
	return cmd
}

func (c *autoCmd) region() (image.Rectangle, error) {
	if c.rect != "" {
		return parseRect(c.rect)
	}
	path, err := stateFile()
	if err != nil {
		return image.Rectangle{}, err
	}
	st, err := config.LoadState(path)
	if err != nil {
		return image.Rectangle{}, err
	}
	r, ok := st.Last()
	if !ok {
		return image.Rectangle{}, errors.New("no --rect given and no previous capture rectangle")
	}
	return r, nil
}

func (c *autoCmd) run(ctx context.Context) error {
	a := c.a
	log := logger.WithComponent("cli")
	if ctx == nil {
		ctx = context.Background()
	}
	rect, err := c.region()
	if err != nil {
		return err
	}
	format, err := output.ParseFormat(a.v.GetString("format"))
	if err != nil {
		return err
	}
	cp, err := a.connect()
	if err != nil {
		return err
	}

	dir := a.v.GetString("save_dir")
	if dir == "" {
		dir = "."
	}
	tmpl := a.v.GetString("filename_template")
	if tmpl == "" {
		tmpl = filename.DefaultTemplate
	}
	gen := filename.NewGenerator(dir, tmpl, string(format))

	runner, err := autocapture.New(cp, autocapture.Options{
		Rect:          rect,
		Interval:      config.Duration(a.v, "auto_interval"),
		IncludeCursor: a.v.GetBool("include_pointer"),
		OnCapture: func(res capture.Result) error {
			path := gen.Next(res.Image.Bounds().Size())
			if err := output.Save(path, res.Image, format); err != nil {
				return err
			}
			log.Info().Str("path", path).Msg("saved")
			fmt.Fprintln(a.stdout, path)
			a.notifier.Save(path, res.Image)
			return nil
		},
		OnFailure: a.notifier.AutoFailure,
	})
	if err != nil {
		return err
	}

	err = runner.Run(ctx)
	if errors.Is(err, context.Canceled) {
		log.Info().Int("count", runner.Count()).Msg("auto capture stopped")
		return nil
	}
	return err
}
