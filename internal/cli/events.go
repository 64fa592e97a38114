package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/randalmurphal/kitbridge/pkg/kitbridge/destination"
)

// EventsOptions holds flags for the events command.
type EventsOptions struct {
	*RootOptions
	Database string
	Name     string // optional - only events with this name
}

// NewEventsCommand creates the events command.
func NewEventsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &EventsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "events",
		Short: "List records captured in a SQLite database",
		Long: `List the records a replay captured with --db, in delivery order.

Examples:
  kitbridge events --db ./captured.db
  kitbridge events --db ./captured.db --name "eCommerce - purchase - Total" --format json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEvents(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.Name, "name", "", "only list records with this event name")

	return cmd
}

func runEvents(opts *EventsOptions, cmd *cobra.Command) error {
	if _, err := os.Stat(opts.Database); err != nil {
		return WrapExitError(ExitCommandError, "database not found", err)
	}

	client, err := destination.NewSQLiteClient(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer client.Close()

	all, err := client.List()
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to list records", err)
	}

	events := make([]destination.TrackedEvent, 0, len(all))
	for _, ev := range all {
		if opts.Name == "" || ev.Name == opts.Name {
			events = append(events, ev)
		}
	}

	if opts.Format == "json" {
		return writeJSON(cmd.OutOrStdout(), events)
	}

	w := cmd.OutOrStdout()
	if len(events) == 0 {
		fmt.Fprintln(w, "No records found.")
		return nil
	}
	for _, ev := range events {
		fmt.Fprintf(w, "%d %s %s user=%s", ev.Sequence, ev.Timestamp.Format("15:04:05.000"), ev.Name, ev.UserID)
		if len(ev.EventAttributes) > 0 {
			fmt.Fprintf(w, " attrs=%s", formatAttrs(ev.EventAttributes))
		}
		fmt.Fprintln(w)
	}
	return nil
}
