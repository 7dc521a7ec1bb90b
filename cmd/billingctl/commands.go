package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/praneeth552/Jobfinder/internal/app/jobsapp"
	"github.com/praneeth552/Jobfinder/internal/jobs/reconcile"
	redrepo "github.com/praneeth552/Jobfinder/internal/repo/redis"
)

var (
	followupsLimit int
	resolveID      string
	resolveNote    string
)

var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Run renewal reminders and the expiry sweep",
	Long:  `Run both daily billing scans concurrently under the reconcile lock.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, "billingctl", func(ctx context.Context, app *jobsapp.App, log *zap.Logger) error {
			report, err := app.Reconcile(ctx)
			if errors.Is(err, redrepo.ErrLockHeld) {
				log.Info("another reconcile run holds the lock, skipping")
				return nil
			}
			printReport(report)
			return err
		})
	},
}

var remindersCmd = &cobra.Command{
	Use:   "reminders",
	Short: "Send renewal reminders only",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, "billingctl", func(ctx context.Context, app *jobsapp.App, _ *zap.Logger) error {
			report, err := app.Reminders(ctx)
			printReport(report)
			return err
		})
	},
}

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Downgrade expired pro users only",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, "billingctl", func(ctx context.Context, app *jobsapp.App, _ *zap.Logger) error {
			report, err := app.Sweep(ctx)
			printReport(report)
			return err
		})
	},
}

var notifierCmd = &cobra.Command{
	Use:   "notifier",
	Short: "Deliver queued notification emails",
	Long:  `Consume the notification queue and deliver each message through Postmark until interrupted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, "notifier", func(ctx context.Context, app *jobsapp.App, _ *zap.Logger) error {
			err := app.RunNotifier(ctx)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		})
	},
}

var followupsCmd = &cobra.Command{
	Use:   "followups",
	Short: "List or resolve billing events that need manual review",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, "billingctl", func(ctx context.Context, app *jobsapp.App, _ *zap.Logger) error {
			if resolveID != "" {
				if strings.TrimSpace(resolveNote) == "" {
					return fmt.Errorf("--note is required with --resolve")
				}
				if err := app.ResolveFollowup(ctx, resolveID, resolveNote); err != nil {
					return err
				}
				fmt.Printf("resolved %s\n", resolveID)
				return nil
			}

			events, err := app.Followups(ctx, followupsLimit)
			if err != nil {
				return err
			}
			if len(events) == 0 {
				fmt.Println("no billing events need review")
				return nil
			}
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tEVENT\tPAYMENT\tSUBSCRIPTION\tRECEIVED")
			for _, ev := range events {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", ev.ID, ev.Event, ev.PaymentID, ev.SubscriptionID, ev.ReceivedAt.Format("2006-01-02 15:04"))
			}
			return w.Flush()
		})
	},
}

var inspectCmd = &cobra.Command{
	Use:   "inspect <subscription-id>",
	Short: "Show Razorpay's view of a subscription",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, "billingctl", func(ctx context.Context, app *jobsapp.App, _ *zap.Logger) error {
			sub, err := app.Inspect(ctx, args[0])
			if err != nil {
				return err
			}
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(sub)
		})
	},
}

func init() {
	followupsCmd.Flags().IntVar(&followupsLimit, "limit", 50, "maximum events to list")
	followupsCmd.Flags().StringVar(&resolveID, "resolve", "", "mark the event with this id as resolved")
	followupsCmd.Flags().StringVar(&resolveNote, "note", "", "resolution note recorded with --resolve")
}

func printReport(r reconcile.Report) {
	fmt.Printf("reminders: sent=%d skipped=%d failed=%d\n", r.RemindersSent, r.RemindersSkipped, r.RemindersFailed)
	fmt.Printf("sweep: downgraded=%d skipped=%d failed=%d\n", r.Downgraded, r.SweepSkipped, r.SweepFailed)
}
