package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/arec/internal/demo"
	"github.com/roach88/arec/internal/store"
)

// SchemaOptions holds flags for the schema command.
type SchemaOptions struct {
	*RootOptions
	Apply bool
}

// SchemaResult is the JSON payload of the schema command.
type SchemaResult struct {
	Schema   string `json:"schema"`
	Applied  bool   `json:"applied"`
	Database string `json:"database,omitempty"`
}

// NewSchemaCommand creates the schema command.
func NewSchemaCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SchemaOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Print or apply the demo table definitions",
		Long: `Print the DDL for the demo tables.

With --apply the tables are dropped and recreated in the configured
database instead.

Examples:
  arec schema
  arec schema --apply --db ./people.db`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSchema(cmd.Context(), opts, cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Apply, "apply", false, "drop and recreate the demo tables in the database")

	return cmd
}

func runSchema(ctx context.Context, opts *SchemaOptions, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}
	out := opts.formatter(cmd.OutOrStdout())

	if !opts.Apply {
		if opts.Format == "json" {
			return out.Success(SchemaResult{Schema: demo.Schema()})
		}
		fmt.Fprint(cmd.OutOrStdout(), demo.Schema())
		return nil
	}

	path := opts.database()
	s, err := store.Open(path)
	if err != nil {
		_ = out.Error(ErrCodeStore, fmt.Sprintf("failed to open database: %v", err), nil)
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer s.Close()

	if err := demo.Setup(ctx, s); err != nil {
		_ = out.Error(ErrCodeStore, err.Error(), nil)
		return WrapExitError(ExitFailure, "failed to apply schema", err)
	}
	opts.logger().Info("schema applied", "database", path, "driver", store.DriverPackage())

	if opts.Format == "json" {
		return out.Success(SchemaResult{Schema: demo.Schema(), Applied: true, Database: path})
	}
	fmt.Fprintln(cmd.OutOrStdout(), pass(fmt.Sprintf("schema applied to %s", path)))
	return nil
}
