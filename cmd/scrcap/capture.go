package main

import (
	"context"
	"errors"
	"fmt"
	"image"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/example/scrcap/internal/capture"
	"github.com/example/scrcap/internal/clipboard"
	"github.com/example/scrcap/internal/config"
	"github.com/example/scrcap/internal/filename"
	"github.com/example/scrcap/internal/logger"
	"github.com/example/scrcap/internal/output"
	"github.com/example/scrcap/internal/ui"
)

// modeLast repeats the previous capture rectangle.
const modeLast = "last"

// Interactive pickers and the preview window. Tests replace them.
var (
	grabWindow   = ui.GrabWindow
	grabRegion   = ui.GrabRegion
	showPreview  = ui.Preview
	writeClip    = clipboard.WriteImage
	stateFile    = config.StatePath
	captureSleep = sleep
)

type captureCmd struct {
	a *app

	monitor     string
	rect        string
	window      string
	output      string
	stdout      bool
	toClipboard bool
	preview     bool
}

func newCaptureCmd(a *app) *cobra.Command {
	c := &captureCmd{a: a}
	cmd := &cobra.Command{
		Use:   "capture [full|screen|window|region|child|last]",
		Short: "Take a screenshot",
		Long: `Capture the full screen, the monitor under the pointer, the window under the
pointer, a rectangle, a child window or the previous rectangle again.

Without a destination flag the image is saved into the save directory using
the filename template.`,
		Example: `  # Window under the pointer, with its frame, after 2 seconds
  scrcap capture window --include-decorations --delay 2s

  # A fixed rectangle to stdout
  scrcap capture region --rect 0,0,640,480 --stdout > shot.png

  # Pick a window interactively and copy it
  scrcap capture child --to-clipboard`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mode := ""
			if len(args) == 1 {
				mode = args[0]
			}
			return c.run(cmd.Context(), mode)
		},
	}
	f := cmd.Flags()
	f.StringVar(&c.monitor, "monitor", "", "monitor for screen mode: index, #index, name or primary")
	f.StringVar(&c.rect, "rect", "", "rectangle x,y,w,h for region and child modes")
	f.StringVar(&c.window, "window", "", "window id for child mode (hex 0x... or decimal)")
	f.StringVarP(&c.output, "output", "o", "", "output file; the extension selects the format")
	f.BoolVar(&c.stdout, "stdout", false, "write the image to stdout")
	f.BoolVar(&c.toClipboard, "to-clipboard", false, "copy the image to the clipboard")
	f.BoolVar(&c.preview, "preview", false, "show a preview window after capturing")
	f.Bool("include-decorations", true, "include the window manager frame in window mode")
	f.Bool("include-cursor", false, "draw the mouse pointer into the image")
	f.Duration("delay", 0, "wait before capturing")
	f.String("dir", "", "save directory")
	f.String("template", "", "filename template (%N counter, %w %h size, %y %m %d %t date)")
	f.String("format", "", "image format: png, jpg, bmp or tiff")
	bindFlags(a, cmd, map[string]string{
		"include_decorations": "include-decorations",
		"include_pointer":     "include-cursor",
		"delay":               "delay",
		"save_dir":            "dir",
		"filename_template":   "template",
		"format":              "format",
	})
	return cmd
}

// bindFlags ties cmd's flags to configuration keys when cmd runs. Several
// commands share keys, so binding happens only for the command executing.
func bindFlags(a *app, cmd *cobra.Command, keys map[string]string) {
	cmd.PreRunE = func(cmd *cobra.Command, args []string) error {
		for key, flag := range keys {
			if err := a.v.BindPFlag(key, cmd.Flags().Lookup(flag)); err != nil {
				return fmt.Errorf("bind --%s: %w", flag, err)
			}
		}
		return nil
	}
}

func (c *captureCmd) run(ctx context.Context, mode string) error {
	a := c.a
	log := logger.WithComponent("cli")
	if mode == "" {
		mode = a.v.GetString("mode")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	cp, err := a.connect()
	if err != nil {
		return err
	}
	includeCursor := a.v.GetBool("include_pointer")
	if includeCursor {
		if x, ok := a.srv.(interface{ HasXFixes() bool }); ok && !x.HasXFixes() {
			log.Warn().Msg("XFixes unavailable, capturing without the pointer")
			includeCursor = false
		}
	}

	if err := captureSleep(ctx, config.Duration(a.v, "delay")); err != nil {
		return err
	}

	res, err := c.capture(cp, mode, includeCursor)
	if err != nil {
		return fmt.Errorf("capture %s: %w", mode, err)
	}
	if res.Empty() {
		return fmt.Errorf("capture %s: nothing to capture", mode)
	}
	c.remember(res.Rect)
	a.notifier.Capture(fmt.Sprintf("%s %s", mode, formatRect(res.Rect)), res.Image)
	return c.deliver(ctx, res)
}

func (c *captureCmd) capture(cp *capture.Capturer, mode string, includeCursor bool) (capture.Result, error) {
	a := c.a
	if strings.EqualFold(strings.TrimSpace(mode), modeLast) {
		st, err := c.loadState()
		if err != nil {
			return capture.Result{}, err
		}
		r, ok := st.Last()
		if !ok {
			return capture.Result{}, errors.New("no previous capture rectangle")
		}
		return cp.CaptureRootRegion(r, includeCursor)
	}

	m, err := capture.ParseMode(mode)
	if err != nil {
		return capture.Result{}, err
	}
	req := capture.Request{
		Mode:               m,
		Monitor:            c.monitor,
		IncludeDecorations: a.v.GetBool("include_decorations"),
		IncludeCursor:      includeCursor,
	}
	if c.rect != "" {
		if req.Rect, err = parseRect(c.rect); err != nil {
			return capture.Result{}, err
		}
	}
	if c.window != "" {
		if req.Window, err = parseWindowID(c.window); err != nil {
			return capture.Result{}, err
		}
	}

	switch {
	case m == capture.ModeRegion && c.rect == "":
		return c.picked(includeCursor)(grabRegion(cp))
	case m == capture.ModeChildWindow && c.window == "" && c.rect == "":
		return c.picked(includeCursor)(grabWindow(cp))
	}
	return cp.Capture(req)
}

// picked finishes an interactive selection, adding the pointer when asked.
func (c *captureCmd) picked(includeCursor bool) func(capture.Result, error) (capture.Result, error) {
	return func(res capture.Result, err error) (capture.Result, error) {
		if err != nil || res.Empty() || !includeCursor {
			return res, err
		}
		res.Image = capture.BlendCursor(c.a.srv, res.Image, res.Rect)
		return res, nil
	}
}

func (c *captureCmd) loadState() (*config.State, error) {
	path, err := stateFile()
	if err != nil {
		return nil, err
	}
	return config.LoadState(path)
}

func (c *captureCmd) remember(r image.Rectangle) {
	log := logger.WithComponent("cli")
	path, err := stateFile()
	if err != nil {
		log.Debug().Err(err).Msg("state not saved")
		return
	}
	st, err := config.LoadState(path)
	if err != nil {
		log.Warn().Err(err).Msg("state unreadable, overwriting")
		st = &config.State{}
	}
	st.Remember(r)
	if err := st.Save(path); err != nil {
		log.Warn().Err(err).Msg("state not saved")
	}
}

func (c *captureCmd) deliver(ctx context.Context, res capture.Result) error {
	a := c.a
	format, err := output.ParseFormat(a.v.GetString("format"))
	if err != nil {
		return err
	}

	saved := false
	switch {
	case c.stdout:
		if err := output.Encode(a.stdout, res.Image, format); err != nil {
			return fmt.Errorf("write stdout: %w", err)
		}
	case c.output != "":
		if err := output.Save(c.output, res.Image, format); err != nil {
			return err
		}
		saved = true
		a.notifier.Save(c.output, res.Image)
	case !c.toClipboard:
		dir := a.v.GetString("save_dir")
		if dir == "" {
			dir = "."
		}
		tmpl := a.v.GetString("filename_template")
		if tmpl == "" {
			tmpl = filename.DefaultTemplate
		}
		path := filename.NewGenerator(dir, tmpl, string(format)).Next(res.Image.Bounds().Size())
		if err := output.Save(path, res.Image, format); err != nil {
			return err
		}
		saved = true
		fmt.Fprintln(a.stdout, path)
		a.notifier.Save(path, res.Image)
	}

	if c.preview {
		if err := showPreview(res.Image); err != nil {
			logger.WithComponent("cli").Warn().Err(err).Msg("preview failed")
		}
	}

	if c.toClipboard {
		changed, err := writeClip(res.Image)
		if err != nil {
			if saved {
				logger.WithComponent("cli").Warn().Err(err).Msg("clipboard unavailable")
				return nil
			}
			return fmt.Errorf("copy to clipboard: %w", err)
		}
		a.notifier.Copy(formatRect(res.Rect))
		if a.holdClipboard {
			logger.WithComponent("cli").Info().Msg("serving clipboard until another client takes it")
			select {
			case <-changed:
			case <-ctx.Done():
			}
		}
	}
	return nil
}

// sleep waits for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
