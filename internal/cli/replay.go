package cli

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/spf13/cobra"

	"github.com/randalmurphal/kitbridge/pkg/kitbridge"
	"github.com/randalmurphal/kitbridge/pkg/kitbridge/config"
	"github.com/randalmurphal/kitbridge/pkg/kitbridge/destination"
	"github.com/randalmurphal/kitbridge/pkg/kitbridge/observability"
)

// ReplayOptions holds flags for the replay command.
type ReplayOptions struct {
	*RootOptions
	Script     string
	Settings   string
	Set        map[string]string
	Database   string
	ReadyAfter int  // steps logged before the client becomes ready; negative means never
	Pin        bool // pin the client before the first step
}

// ReplayStep is the outcome of one script step.
type ReplayStep struct {
	Name     string `json:"name"`
	Reported bool   `json:"reported"`
}

// ReplayResult summarizes a replay.
type ReplayResult struct {
	Steps     []ReplayStep               `json:"steps"`
	Delivered []destination.TrackedEvent `json:"delivered"`
	Pending   int                        `json:"pending"`
	Lost      int                        `json:"lost"`
}

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Replay a scripted host session through the kit",
		Long: `Replay a scripted host session through the kit and report what the
destination client received.

The destination client becomes ready after --ready-after steps; records
logged before then are buffered and replayed in order. With --pin the
client is set explicitly before the first step instead.

Exit codes:
  0 - Every produced record reached the client
  1 - Records were evicted or are still pending
  2 - Command error (bad script, unreadable settings, etc.)

Examples:
  kitbridge replay --script session.yaml --set projectId=123
  kitbridge replay --script session.yaml --settings kit.yaml --ready-after 12
  kitbridge replay --script session.yaml --set projectId=123 --db ./captured.db --format json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(cmd.Context(), opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Script, "script", "", "path to the session script (required)")
	_ = cmd.MarkFlagRequired("script")
	cmd.Flags().StringVar(&opts.Settings, "settings", "", "kit settings file (yaml or json)")
	cmd.Flags().StringToStringVar(&opts.Set, "set", nil, "override a kit setting (key=value)")
	cmd.Flags().StringVar(&opts.Database, "db", "", "capture delivered records in this SQLite database")
	cmd.Flags().IntVar(&opts.ReadyAfter, "ready-after", 0, "steps logged before the client becomes ready (-1 for never)")
	cmd.Flags().BoolVar(&opts.Pin, "pin", false, "pin the client explicitly before the first step")

	return cmd
}

// capture is a destination client whose received calls can be listed.
type capture interface {
	destination.Client
	List() ([]destination.TrackedEvent, error)
}

// memoryCapture lists a MemoryClient's calls.
type memoryCapture struct {
	*destination.MemoryClient
}

func (m memoryCapture) List() ([]destination.TrackedEvent, error) {
	return m.Calls(), nil
}

func runReplay(ctx context.Context, opts *ReplayOptions, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}
	logger := newLogger(opts.RootOptions, cmd.ErrOrStderr())

	script, err := LoadScript(opts.Script)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load script", err)
	}

	settings := config.New(nil)
	if opts.Settings != "" {
		settings, err = config.FromFile(opts.Settings)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to load settings", err)
		}
	}
	settings = settings.With(opts.Set)

	var client capture = memoryCapture{destination.NewMemoryClient()}
	if opts.Database != "" {
		sqlite, err := destination.NewSQLiteClient(opts.Database)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to open database", err)
		}
		defer sqlite.Close()
		client = sqlite
	}

	metrics, err := observability.NewPrometheusMetrics(prometheus.NewRegistry())
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to register metrics", err)
	}

	starter := &destination.ManualStarter{}
	kit := kitbridge.New(script.Host(),
		kitbridge.WithLogger(logger),
		kitbridge.WithMetrics(metrics),
		kitbridge.WithStarter(starter),
	)
	defer kit.Destroy()

	if opts.Pin {
		kit.SetClient(client)
	}
	if err := kit.Create(ctx, settings.Strings()); err != nil {
		return WrapExitError(ExitCommandError, "failed to create kit", err)
	}

	ready := func() error {
		if opts.Pin {
			return nil
		}
		return starter.Fire(client)
	}

	result := ReplayResult{Steps: make([]ReplayStep, 0, len(script.Steps))}
	for i, step := range script.Steps {
		if i == opts.ReadyAfter {
			if err := ready(); err != nil {
				return WrapExitError(ExitCommandError, "failed to ready client", err)
			}
		}

		var msgs []kitbridge.ReportingMessage
		if step.Event != nil {
			msgs = kit.LogEvent(ctx, step.Event)
		} else {
			msgs = kit.LogCommerceEvent(ctx, step.Commerce)
		}
		result.Steps = append(result.Steps, ReplayStep{Name: step.Name(), Reported: len(msgs) > 0})
	}
	if opts.ReadyAfter >= len(script.Steps) {
		if err := ready(); err != nil {
			return WrapExitError(ExitCommandError, "failed to ready client", err)
		}
	}

	result.Delivered, err = client.List()
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to list delivered records", err)
	}
	result.Pending = kit.Gate().Pending()
	result.Lost = counterValue(metrics.Evicted)

	if opts.Format == "json" {
		if err := writeJSON(cmd.OutOrStdout(), result); err != nil {
			return err
		}
	} else {
		writeReplayText(cmd, result)
	}

	if result.Pending > 0 || result.Lost > 0 {
		return NewExitError(ExitFailure,
			fmt.Sprintf("%d records evicted, %d still pending", result.Lost, result.Pending))
	}
	return nil
}

func counterValue(c prometheus.Counter) int {
	var m dto.Metric
	if err := c.Write(&m); err != nil {
		return 0
	}
	return int(m.GetCounter().GetValue())
}

func writeReplayText(cmd *cobra.Command, result ReplayResult) {
	w := cmd.OutOrStdout()
	for i, step := range result.Steps {
		status := "reported"
		if !step.Reported {
			status = "not reported"
		}
		fmt.Fprintf(w, "step %d: %s (%s)\n", i+1, step.Name, status)
	}
	fmt.Fprintf(w, "\nDelivered %d records:\n", len(result.Delivered))
	for _, ev := range result.Delivered {
		fmt.Fprintf(w, "  %s user=%s", ev.Name, ev.UserID)
		if len(ev.EventAttributes) > 0 {
			fmt.Fprintf(w, " attrs=%s", formatAttrs(ev.EventAttributes))
		}
		fmt.Fprintln(w)
	}
	if result.Lost > 0 {
		fmt.Fprintf(w, "\n%d records evicted before the client was ready\n", result.Lost)
	}
	if result.Pending > 0 {
		fmt.Fprintf(w, "\n%d records still pending\n", result.Pending)
	}
}

func formatAttrs(attrs map[string]any) string {
	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%v", k, attrs[k])
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
