package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/example/scrcap/internal/xserver"
)

type windowsCmd struct {
	a      *app
	window string
	root   bool
	frame  bool
}

func newWindowsCmd(a *app) *cobra.Command {
	c := &windowsCmd{a: a}
	cmd := &cobra.Command{
		Use:   "windows",
		Short: "List the window rectangles under a window",
		Long: `Print the viewable descendants of the window under the pointer, smallest
first, in coordinates relative to that window.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error { return c.run() },
	}
	cmd.Flags().StringVar(&c.window, "window", "", "start at this window id instead of the one under the pointer")
	cmd.Flags().BoolVar(&c.root, "root", false, "start at the root window")
	cmd.Flags().BoolVar(&c.frame, "frame", true, "use the window manager frame of the window under the pointer")
	return cmd
}

func (c *windowsCmd) run() error {
	cp, err := c.a.connect()
	if err != nil {
		return err
	}
	var start xserver.Window
	switch {
	case c.window != "":
		if start, err = parseWindowID(c.window); err != nil {
			return err
		}
	case c.root:
		start = cp.Root()
	default:
		start = cp.LocateWindowUnderCursor(c.frame)
	}
	abs, err := cp.QueryGeometry(start)
	if err != nil {
		return fmt.Errorf("windows %s: %w", start, err)
	}

	tw := tabwriter.NewWriter(c.a.stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "window\t%s\t%s\n", start, formatRect(abs))
	for i, r := range cp.EnumerateWindowTree(start) {
		fmt.Fprintf(tw, "%d\t%s\t%s\n", i, formatRect(r), formatRect(r.Add(abs.Min)))
	}
	return tw.Flush()
}

func newMonitorsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "monitors",
		Short: "List RandR monitors",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cp, err := a.connect()
			if err != nil {
				return err
			}
			mons, err := cp.Monitors()
			if err != nil {
				return fmt.Errorf("monitors: %w", err)
			}
			tw := tabwriter.NewWriter(a.stdout, 0, 4, 2, ' ', 0)
			for _, m := range mons {
				primary := ""
				if m.Primary {
					primary = "primary"
				}
				fmt.Fprintf(tw, "#%d\t%s\t%s\t%s\n", m.Index, m.Name, formatRect(m.Rect), primary)
			}
			return tw.Flush()
		},
	}
}
