package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/example/scrcap/internal/capture"
	"github.com/example/scrcap/internal/config"
	"github.com/example/scrcap/internal/logger"
	"github.com/example/scrcap/internal/notify"
	"github.com/example/scrcap/internal/xserver"
)

// dialServer connects to the X server. Tests replace it with a fake.
var dialServer = func(display string) (xserver.Server, func(), error) {
	conn, err := xserver.Dial(display)
	if err != nil {
		return nil, nil, err
	}
	return conn, conn.Close, nil
}

// app is the state shared by every command of one process.
type app struct {
	v         *viper.Viper
	cfgFile   string
	display   string
	logPretty bool

	cfg      *config.Config
	notifier *notify.Notifier
	stdout   io.Writer
	stdin    io.Reader

	srv      xserver.Server
	capturer *capture.Capturer
	closeSrv func()

	// holdClipboard keeps the process alive until another client takes the
	// clipboard selection. The interactive loop serves it while running.
	holdClipboard bool
}

func newApp() *app {
	return &app{
		v:             viper.New(),
		cfgFile:       configPathOverride,
		stdout:        os.Stdout,
		stdin:         os.Stdin,
		holdClipboard: true,
	}
}

func newRootCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scrcap",
		Short: "scrcap - X11 screenshot tool",
		Long: `scrcap captures the screen, a monitor, a window or a region of an X11
display and saves the result, copies it to the clipboard or writes it to stdout.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return a.init() },
	}
	cmd.SetOut(a.stdout)
	cmd.SetIn(a.stdin)

	pf := cmd.PersistentFlags()
	pf.StringVar(&a.cfgFile, "config", a.cfgFile, "config file (default is $XDG_CONFIG_HOME/scrcap/config.yaml)")
	pf.String("log-level", "", "log level (debug, info, warn, error)")
	pf.BoolVar(&a.logPretty, "log-pretty", false, "human readable log output")
	pf.StringVar(&a.display, "display", "", "X display to connect to (default is $DISPLAY)")
	_ = a.v.BindPFlag("log_level", pf.Lookup("log-level"))

	cmd.AddCommand(
		newCaptureCmd(a),
		newAutoCmd(a),
		newWindowsCmd(a),
		newMonitorsCmd(a),
		newInteractiveCmd(a),
		newConfigCmd(a),
		newVersionCmd(a),
	)
	return cmd
}

// init loads configuration and sets up logging and notifications.
func (a *app) init() error {
	cfg, err := config.NewLoader(version, a.cfgFile).Load(a.v)
	if err != nil {
		return err
	}
	a.cfg = cfg
	logger.Init(cfg.LogLevel, a.logPretty)

	a.notifier = notify.New(notify.DefaultPreferences())
	a.notifier.Enable(notify.EventCapture, cfg.Notify.Capture)
	a.notifier.Enable(notify.EventSave, cfg.Notify.Save)
	a.notifier.Enable(notify.EventCopy, cfg.Notify.Copy)
	a.notifier.Enable(notify.EventAutoFailure, cfg.Notify.AutoFailure)
	return nil
}

// connect dials the X server on first use.
func (a *app) connect() (*capture.Capturer, error) {
	if a.capturer != nil {
		return a.capturer, nil
	}
	srv, closeFn, err := dialServer(a.display)
	if err != nil {
		return nil, fmt.Errorf("connect to X server: %w", err)
	}
	a.srv = srv
	a.closeSrv = closeFn
	a.capturer = capture.New(srv)
	return a.capturer, nil
}

func (a *app) close() {
	if a.closeSrv != nil {
		a.closeSrv()
		a.closeSrv = nil
	}
}
