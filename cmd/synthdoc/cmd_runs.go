package main

import (
	"errors"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/BaSui01/synthdoc/store"
	"github.com/BaSui01/synthdoc/types"
)

// =============================================================================
// 📜 运行记录查询
// =============================================================================

func newRunsCmd(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "Inspect persisted runs (requires database.enabled)",
	}
	cmd.AddCommand(newRunsListCmd(root), newRunsShowCmd(root))
	return cmd
}

func newRunsListCmd(root *rootOptions) *cobra.Command {
	var opts store.ListOptions

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent runs, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := openRunStore(root.configPath)
			if err != nil {
				return err
			}
			defer s.Close()

			runs, err := s.List(cmd.Context(), opts)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "RUN\tPROCESS\tSTATUS\tATTEMPTS\tSTARTED\tDURATION")
			for _, r := range runs {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\t%s\n",
					r.ID, r.Process, r.Status, r.Attempts,
					r.StartedAt.Local().Format(time.DateTime),
					r.FinishedAt.Sub(r.StartedAt).Round(time.Millisecond))
			}
			return tw.Flush()
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.Process, "process", "", "Only runs of this thought process")
	f.StringVar(&opts.Status, "status", "", "Only runs with this status (accepted, exhausted, failed)")
	f.IntVar(&opts.Limit, "limit", 50, "Maximum number of runs")
	return cmd
}

func newRunsShowCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show <run-id>",
		Short: "Show a run with its attempt history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openRunStore(root.configPath)
			if err != nil {
				return err
			}
			defer s.Close()

			run, err := s.Get(cmd.Context(), args[0])
			if errors.Is(err, store.ErrNotFound) {
				return fmt.Errorf("run %s not found", args[0])
			}
			if err != nil {
				return err
			}
			printRun(cmd.OutOrStdout(), run)
			return nil
		},
	}
}

// openRunStore 只打开运行记录存储，不装配生成依赖
func openRunStore(configPath string) (*store.RunStore, error) {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return nil, err
	}
	if !cfg.Database.Enabled {
		return nil, types.NewConfigurationError("database.enabled is false; no runs are persisted")
	}
	return store.Open(cfg.Database, initLogger(cfg.Log).With(zap.String("command", "runs")), nil)
}

func printRun(w io.Writer, run *store.Run) {
	fmt.Fprintf(w, "Run:       %s\n", run.ID)
	fmt.Fprintf(w, "Process:   %s\n", run.Process)
	fmt.Fprintf(w, "Status:    %s\n", run.Status)
	fmt.Fprintf(w, "Attempts:  %d\n", run.Attempts)
	fmt.Fprintf(w, "Started:   %s\n", run.StartedAt.Local().Format(time.RFC3339))
	fmt.Fprintf(w, "Finished:  %s\n", run.FinishedAt.Local().Format(time.RFC3339))
	if run.ErrorCode != "" {
		fmt.Fprintf(w, "Error:     [%s] %s\n", run.ErrorCode, firstLine(run.ErrorMessage))
	}
	if run.Message != "" {
		fmt.Fprintf(w, "\nLast report:\n%s\n", run.Message)
	}

	if len(run.History) > 0 {
		fmt.Fprintf(w, "\nHistory:\n")
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "  #\tTEMP\tVALID\tDURATION\tREPORT")
		for _, a := range run.History {
			temp := "default"
			if a.Temperature != nil {
				temp = fmt.Sprintf("%.2f", *a.Temperature)
			}
			fmt.Fprintf(tw, "  %d\t%s\t%t\t%s\t%s\n", a.Idx, temp, a.Valid, a.Duration(), types.Truncate(firstLine(a.Message), 80))
		}
		_ = tw.Flush()
	}

	fmt.Fprintf(w, "\nArtifact:\n%s\n", run.Artifact)
}
