package main

import (
	"bufio"
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newInteractiveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "interactive",
		Short: "Read capture commands from stdin",
		Long: `Start a prompt that accepts capture, windows and monitors commands with the
same flags as on the command line. A failed command is reported and the
prompt continues. Type "exit" or send EOF to quit.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInteractive(cmd.Context(), a)
		},
	}
}

// newShellCmd builds the command tree used for one prompt line.
func newShellCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "scrcap>",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.SetOut(a.stdout)
	cmd.SetErr(a.stdout)
	cmd.AddCommand(newCaptureCmd(a), newWindowsCmd(a), newMonitorsCmd(a))
	cmd.CompletionOptions.DisableDefaultCmd = true
	return cmd
}

func runInteractive(ctx context.Context, a *app) error {
	if ctx == nil {
		ctx = context.Background()
	}
	a.holdClipboard = false
	defer func() { a.holdClipboard = true }()

	sc := bufio.NewScanner(a.stdin)
	fmt.Fprint(a.stdout, "scrcap> ")
	for sc.Scan() {
		if ctx.Err() != nil {
			return nil
		}
		line := strings.TrimSpace(sc.Text())
		switch line {
		case "":
		case "exit", "quit":
			return nil
		default:
			sh := newShellCmd(a)
			sh.SetArgs(strings.Fields(line))
			if err := sh.ExecuteContext(ctx); err != nil {
				fmt.Fprintf(a.stdout, "error: %v\n", err)
			}
		}
		fmt.Fprint(a.stdout, "scrcap> ")
	}
	return sc.Err()
}
