package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/rickgao/abri-data/internal/database"
	"github.com/rickgao/abri-data/internal/model"
	"github.com/rickgao/abri-data/internal/query"
	"github.com/rickgao/abri-data/internal/schema"
	"github.com/rickgao/abri-data/internal/version"
)

var (
	errUnhealthy   = errors.New("database unhealthy")
	errSchemaDrift = errors.New("database schema differs from the table mapping")
)

func (a *app) initCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create missing tables and indexes, then verify the columns",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withStore(cmd.Context(), func(ctx context.Context, st *database.Store) error {
				if err := st.InitSchema(ctx); err != nil {
					return err
				}
				drift, err := st.VerifySchema(ctx)
				if err != nil {
					return err
				}
				if !drift.Empty() {
					if err := writeJSON(cmd.OutOrStdout(), drift); err != nil {
						return err
					}
					return errSchemaDrift
				}
				fmt.Fprintf(cmd.OutOrStdout(), "schema ready: %d tables\n", len(schema.TableNames()))
				return nil
			})
		},
	}
}

func (a *app) healthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check that the database answers; exits 1 when it does not",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withStore(cmd.Context(), func(ctx context.Context, st *database.Store) error {
				status := st.Health(ctx)
				if err := writeJSON(cmd.OutOrStdout(), status); err != nil {
					return err
				}
				if !status.OK {
					return errUnhealthy
				}
				return nil
			})
		},
	}
}

func (a *app) infoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Print pool and server diagnostics as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withStore(cmd.Context(), func(ctx context.Context, st *database.Store) error {
				return writeJSON(cmd.OutOrStdout(), st.Info(ctx))
			})
		},
	}
}

// schemaCmd prints the DDL without touching a database.
func schemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the schema DDL",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := io.WriteString(cmd.OutOrStdout(), schema.Script())
			return err
		},
	}
}

func (a *app) tasksCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "tasks",
		Short: "List open manual data-entry tasks, most urgent first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withStore(cmd.Context(), func(ctx context.Context, st *database.Store) error {
				var tasks []model.PendingManualTask
				err := st.WithSession(ctx, func(ctx context.Context, sess *database.Session) error {
					var err error
					tasks, err = query.PendingTasks(ctx, sess, limit)
					return err
				})
				if err != nil {
					return err
				}
				return writeTasks(cmd.OutOrStdout(), tasks)
			})
		},
	}
	cmd.Flags().IntVar(&limit, "limit", query.DefaultLimit, "maximum tasks to list")
	return cmd
}

func (a *app) latestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "latest",
		Short: "Print the most recent ABRI reading",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withStore(cmd.Context(), func(ctx context.Context, st *database.Store) error {
				var row model.ABRIHistory
				err := st.WithSession(ctx, func(ctx context.Context, sess *database.Session) error {
					var err error
					row, err = query.LatestABRI(ctx, sess)
					return err
				})
				if errors.Is(err, query.ErrNotFound) {
					fmt.Fprintln(cmd.OutOrStdout(), "no ABRI history recorded")
					return nil
				}
				if err != nil {
					return err
				}
				return writeABRI(cmd.OutOrStdout(), row)
			})
		},
	}
}

func versionCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), version.Get())
			}
			_, err := fmt.Fprintln(cmd.OutOrStdout(), "abrictl", version.String())
			return err
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "output as JSON")
	return cmd
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeTasks(w io.Writer, tasks []model.PendingManualTask) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTYPE\tPRIORITY\tSTATUS\tDUE\tCREATED")
	for _, t := range tasks {
		due := "-"
		if t.DueDate != nil {
			due = t.DueDate.Format(time.DateOnly)
		}
		fmt.Fprintf(tw, "%d\t%s\t%d\t%s\t%s\t%s\n",
			t.TaskID, t.TaskType, t.Priority, t.Status, due, t.CreatedAt.Format(time.DateTime))
	}
	return tw.Flush()
}

func writeABRI(w io.Writer, h model.ABRIHistory) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "date\t%s\n", h.Date.Format(time.DateOnly))
	for _, f := range []struct {
		name string
		v    *float64
	}{
		{"concentration", h.ConcentrationScore},
		{"correlation", h.CorrelationScore},
		{"credit_stress", h.CreditStressScore},
		{"gpu_deflation", h.GPUDeflationScore},
		{"capex_intensity", h.CapexIntensityScore},
		{"revenue_gap", h.RevenueGapScore},
		{"deal_flow", h.DealFlowScore},
		{"composite", h.CompositeScore},
	} {
		fmt.Fprintf(tw, "%s\t%s\n", f.name, formatScore(f.v))
	}
	fmt.Fprintf(tw, "calculated_at\t%s\n", h.CalculatedAt.Format(time.DateTime))
	return tw.Flush()
}

func formatScore(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%.2f", *v)
}
