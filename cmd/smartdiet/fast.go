package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/smartdiet/smartdiet/internal/app"
	"github.com/smartdiet/smartdiet/internal/fasting"
	"github.com/smartdiet/smartdiet/internal/notify"
	"github.com/smartdiet/smartdiet/internal/worker"
)

func (c *cli) fastCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fast",
		Short: "Track intermittent fasting",
	}

	toggle := &cobra.Command{
		Use:   "toggle",
		Short: "Start an open-ended fast, or end the current one",
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withServices(cmd, func(svc *app.Services) error {
				s, err := svc.Fasting.Toggle(cmd.Context())
				if err != nil {
					return err
				}
				printTransition(cmd.OutOrStdout(), s)
				return nil
			})
		},
	}

	var target int
	start := &cobra.Command{
		Use:   "start",
		Short: "Start a fast",
		RunE: func(cmd *cobra.Command, args []string) error {
			if target < 0 {
				return fmt.Errorf("--target must be >= 0")
			}
			return c.withServices(cmd, func(svc *app.Services) error {
				before := svc.Fasting.Now()
				s, err := svc.Fasting.Start(cmd.Context(), target)
				if err != nil {
					return err
				}
				if before.Active() && s.ID == before.SessionID {
					fmt.Fprintf(cmd.OutOrStdout(), "Already fasting since %s (fast %d)\n", s.StartTime.Local().Format("15:04"), s.ID)
					return nil
				}
				printTransition(cmd.OutOrStdout(), s)
				return nil
			})
		},
	}
	start.Flags().IntVar(&target, "target", fasting.DefaultTargetHours, "Target duration in hours (0 for open-ended)")

	stop := &cobra.Command{
		Use:   "stop",
		Short: "End the current fast",
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withServices(cmd, func(svc *app.Services) error {
				s, err := svc.Fasting.Stop(cmd.Context())
				if err != nil {
					return err
				}
				printTransition(cmd.OutOrStdout(), s)
				return nil
			})
		},
	}

	var follow bool
	status := &cobra.Command{
		Use:   "status",
		Short: "Show the current fast and its stage",
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withServices(cmd, func(svc *app.Services) error {
				if !follow {
					printSnapshot(cmd.OutOrStdout(), svc.Fasting.Now())
					return nil
				}
				ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
				defer stop()
				svc.Fasting.Run(ctx, time.Second, func(snap fasting.Snapshot) {
					fmt.Fprintf(cmd.OutOrStdout(), "\r%s", statusLine(snap))
				})
				fmt.Fprintln(cmd.OutOrStdout())
				return nil
			})
		},
	}
	status.Flags().BoolVarP(&follow, "follow", "f", false, "Refresh the elapsed time every second until interrupted")

	var limit int
	history := &cobra.Command{
		Use:   "history",
		Short: "List past fasts, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withServices(cmd, func(svc *app.Services) error {
				sessions, err := svc.Fasting.History(cmd.Context(), limit)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintln(out, "ID\tSTART\tDURATION\tTARGET")
				for _, s := range sessions {
					end := time.Now()
					if s.EndTime != nil {
						end = *s.EndTime
					}
					fmt.Fprintf(out, "%d\t%s\t%s\t%s\n", s.ID,
						s.StartTime.Local().Format("2006-01-02 15:04"),
						fasting.FormatElapsed(end.Sub(s.StartTime)),
						targetLabel(s.TargetDurationHours))
				}
				return nil
			})
		},
	}
	history.Flags().IntVar(&limit, "limit", 30, "Number of sessions to show")

	stages := &cobra.Command{
		Use:   "stages",
		Short: "List the fasting stage timeline",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			for _, s := range fasting.Stages() {
				span := fmt.Sprintf("%dh-%dh", s.StartHour, s.EndHour)
				if s.Final() {
					span = fmt.Sprintf("%dh+", s.StartHour)
				}
				fmt.Fprintf(out, "%s\t%s %s\t%s\n", span, s.Icon, s.Title, s.Description)
			}
			return nil
		},
	}

	var (
		interval    time.Duration
		desktopNote bool
	)
	watch := &cobra.Command{
		Use:   "watch",
		Short: "Stay running and announce each new fasting stage",
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withServices(cmd, func(svc *app.Services) error {
				notifiers := notify.Multi{&writerNotifier{out: cmd.OutOrStdout()}}
				if desktopNote {
					notifiers = append(notifiers, notify.NewDesktopNotifier(""))
				}
				watcher := worker.NewStageWatcher(worker.StageWatcherConfig{
					Config:   worker.WatchConfig{Interval: interval},
					Sessions: svc.Fasting,
					Notifier: notifiers,
					Flags:    svc.Flags,
					Logger:   c.logger(cmd),
				})

				printSnapshot(cmd.OutOrStdout(), svc.Fasting.Now())
				ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
				defer stop()
				watcher.Run(ctx)
				return nil
			})
		},
	}
	watch.Flags().DurationVar(&interval, "interval", time.Minute, "Check interval")
	watch.Flags().BoolVar(&desktopNote, "notify", false, "Also raise desktop notifications")

	cmd.AddCommand(toggle, start, stop, status, history, stages, watch)
	return cmd
}

type writerNotifier struct {
	out io.Writer
}

func (n *writerNotifier) Notify(_ context.Context, msg notify.Message) error {
	_, err := fmt.Fprintf(n.out, "[%s] %s: %s\n", time.Now().Format("15:04"), msg.Title, msg.Body)
	return err
}

func printTransition(out io.Writer, s *fasting.Session) {
	if s.Active() {
		fmt.Fprintf(out, "Started fast %d at %s (%s)\n", s.ID, s.StartTime.Local().Format("15:04"), targetLabel(s.TargetDurationHours))
		return
	}
	fmt.Fprintf(out, "Ended fast %d after %s\n", s.ID, fasting.FormatElapsed(s.EndTime.Sub(s.StartTime)))
}

func printSnapshot(out io.Writer, snap fasting.Snapshot) {
	if !snap.Active() {
		fmt.Fprintln(out, "Not fasting")
		return
	}
	fmt.Fprintf(out, "Fasting for %s (%s)\n", snap.ElapsedString, targetLabel(snap.TargetHours))
	if snap.TargetHours > fasting.OpenEnded {
		fmt.Fprintf(out, "Target progress %.0f%%\n", snap.TargetProgress*100)
	}
	if snap.CurrentStage != nil {
		fmt.Fprintf(out, "Stage %s %s (%.0f%%)\n", snap.CurrentStage.Icon, snap.CurrentStage.Title, snap.StageProgress*100)
	}
	if snap.NextStage != nil {
		fmt.Fprintf(out, "Next %s in %.1fh\n", snap.NextStage.Title, snap.HoursUntilNextStage)
	}
}

func statusLine(snap fasting.Snapshot) string {
	if !snap.Active() {
		return "Not fasting"
	}
	line := snap.ElapsedString
	if snap.CurrentStage != nil {
		line += "  " + snap.CurrentStage.Icon + " " + snap.CurrentStage.Title
	}
	if snap.TargetHours > fasting.OpenEnded {
		line += fmt.Sprintf("  %.0f%% of %dh", snap.TargetProgress*100, snap.TargetHours)
	}
	return line
}

func targetLabel(hours int) string {
	if hours <= fasting.OpenEnded {
		return "open-ended"
	}
	return fmt.Sprintf("target %dh", hours)
}
