package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/smartdiet/smartdiet/internal/app"
	"github.com/smartdiet/smartdiet/internal/featureflags"
)

func (c *cli) flagsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "flags",
		Short: "Inspect and flip runtime feature flags",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List feature flags",
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withServices(cmd, func(svc *app.Services) error {
				flags, err := svc.Flags.List(cmd.Context())
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				for _, f := range flags {
					fmt.Fprintf(out, "%s\t%t\t%s\n", f.Key, f.Enabled, featureflags.Known[f.Key])
				}
				return nil
			})
		},
	}

	set := &cobra.Command{
		Use:   "set <key>=<true|false>...",
		Short: "Set one or more feature flags",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			values, err := parseFlagArgs(args)
			if err != nil {
				return err
			}
			return c.withServices(cmd, func(svc *app.Services) error {
				updated, err := svc.Flags.Set(cmd.Context(), values)
				if err != nil {
					return err
				}
				for _, f := range updated {
					fmt.Fprintf(cmd.OutOrStdout(), "%s=%t\n", f.Key, f.Enabled)
				}
				return nil
			})
		},
	}

	reset := &cobra.Command{
		Use:   "reset <key>",
		Short: "Drop a stored flag value so it reverts to its default",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withServices(cmd, func(svc *app.Services) error {
				if err := svc.Flags.Reset(cmd.Context(), args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s reset\n", args[0])
				return nil
			})
		},
	}

	cmd.AddCommand(list, set, reset)
	return cmd
}

func parseFlagArgs(args []string) (map[string]bool, error) {
	values := make(map[string]bool, len(args))
	for _, arg := range args {
		key, raw, ok := strings.Cut(arg, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid flag assignment %q (expected key=true|false)", arg)
		}
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid value for %s: %q", key, raw)
		}
		values[key] = v
	}
	return values, nil
}
