package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/arec/internal/demo"
	"github.com/roach88/arec/internal/meta"
)

// DescribeResult is the payload of the describe command.
type DescribeResult struct {
	Entities []meta.Info `json:"entities"`
}

// String renders each entity with its columns and statements.
func (r DescribeResult) String() string {
	var b strings.Builder
	for i, info := range r.Entities {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "%s -> %s (%s keys)\n", info.Type, info.Table, info.Keys)
		for _, c := range info.Columns {
			fmt.Fprintf(&b, "  %-14s %-10s %s\n", c.Field, c.Column, c.Type)
		}
		fmt.Fprintf(&b, "  select:  %s\n", info.Statements.Select)
		fmt.Fprintf(&b, "  insert:  %s\n", insertFor(info))
		fmt.Fprintf(&b, "  update:  %s\n", info.Statements.Update)
		fmt.Fprintf(&b, "  delete:  %s\n", info.Statements.Delete)
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func insertFor(info meta.Info) string {
	if info.Keys == meta.KeyInternal.String() {
		return info.Statements.InsertInternal
	}
	return info.Statements.InsertExternal
}

// NewDescribeCommand creates the describe command.
func NewDescribeCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "describe",
		Short: "Show how each demo entity maps onto its table",
		Long: `Resolve every demo entity mapping and print its table, key strategy,
columns and generated SQL. No database is opened.

Examples:
  arec describe
  arec describe --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDescribe(rootOpts, cmd)
		},
	}
	return cmd
}

func runDescribe(opts *RootOptions, cmd *cobra.Command) error {
	out := opts.formatter(cmd.OutOrStdout())
	registry := meta.NewRegistry(opts.logger())

	result := DescribeResult{Entities: []meta.Info{}}
	for _, k := range demo.Kinds() {
		info, err := k.Describe(registry)
		if err != nil {
			_ = out.Error(ErrCodeMapping, err.Error(), nil)
			return WrapExitError(ExitFailure, "failed to describe entities", err)
		}
		result.Entities = append(result.Entities, info)
	}

	return out.Success(result)
}
