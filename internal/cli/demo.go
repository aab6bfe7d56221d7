package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/arec/internal/activerecord"
	"github.com/roach88/arec/internal/demo"
	"github.com/roach88/arec/internal/store"
)

// DemoOptions holds flags for the demo command.
type DemoOptions struct {
	*RootOptions
	Eager bool
}

// DemoResult is the JSON payload of the demo command.
type DemoResult struct {
	Session string       `json:"session"`
	Report  *demo.Report `json:"report"`
}

// String renders the demo report as text.
func (r DemoResult) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Saved person with id %d\n", r.Report.SavedID)
	fmt.Fprintf(&b, "By id:\n  %s\n", r.Report.ByID)
	b.WriteString("By name:\n")
	for _, s := range r.Report.ByName {
		fmt.Fprintf(&b, "  %s\n", s)
	}
	b.WriteString("All:\n")
	for _, s := range r.Report.All {
		fmt.Fprintf(&b, "  %s\n", s)
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// NewDemoCommand creates the demo command.
func NewDemoCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &DemoOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Save and reload a person through the mapping layer",
		Long: `Recreate the demo tables, save one person and read it back by id,
by name and as part of the whole table.

The demo tables in the target database are dropped first. Use --db
":memory:" to leave no file behind.

Examples:
  arec demo --db :memory:
  arec demo --db ./people.db --eager --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDemo(cmd.Context(), opts, cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Eager, "eager", false, "validate every entity mapping before running")

	return cmd
}

func runDemo(ctx context.Context, opts *DemoOptions, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}
	out := opts.formatter(cmd.OutOrStdout())
	logger := opts.logger()

	s, err := store.Open(opts.database())
	if err != nil {
		_ = out.Error(ErrCodeStore, fmt.Sprintf("failed to open database: %v", err), nil)
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer s.Close()
	logger.Debug("database opened", "path", opts.database(), "driver", store.DriverPackage())

	if err := demo.Setup(ctx, s); err != nil {
		_ = out.Error(ErrCodeStore, err.Error(), nil)
		return WrapExitError(ExitFailure, "failed to prepare demo tables", err)
	}

	dbOpts := []activerecord.Option{activerecord.WithLogger(logger)}
	if opts.Eager || opts.Config.Eager {
		dbOpts = append(dbOpts, activerecord.WithEntities(demo.Kinds()...))
	}
	db, err := activerecord.New(s, dbOpts...)
	if err != nil {
		_ = out.Error(ErrCodeMapping, err.Error(), nil)
		return WrapExitError(ExitFailure, "failed to configure entities", err)
	}

	report, err := demo.Run(ctx, db)
	if err != nil {
		_ = out.Error(ErrCodeMapping, err.Error(), nil)
		return WrapExitError(ExitFailure, "demo failed", err)
	}

	return out.Success(DemoResult{Session: db.Session(), Report: report})
}
