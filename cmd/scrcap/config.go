package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/example/scrcap/internal/config"
)

func newConfigCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or save the effective configuration",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "print",
		Short: "Print the effective configuration as yaml",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprint(a.stdout, a.cfg.String())
			return nil
		},
	}, &cobra.Command{
		Use:   "save [path]",
		Short: "Write the effective configuration to a file",
		Long:  `Write the effective configuration to path, the --config file, or the default location.`,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := a.cfgFile
			if len(args) == 1 {
				path = args[0]
			}
			if path == "" {
				path = config.DefaultPath()
			}
			if path == "" {
				return fmt.Errorf("no configuration path")
			}
			if err := a.cfg.Save(path); err != nil {
				return err
			}
			fmt.Fprintln(a.stdout, path)
			return nil
		},
	})
	return cmd
}

func newVersionCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(a.stdout, "scrcap version %s", version)
			if commit != "" {
				fmt.Fprintf(a.stdout, " (%s)", commit)
			}
			if date != "" {
				fmt.Fprintf(a.stdout, " built %s", date)
			}
			fmt.Fprintln(a.stdout)
			return nil
		},
	}
}
