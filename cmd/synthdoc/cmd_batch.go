package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/BaSui01/synthdoc/repair"
	"github.com/BaSui01/synthdoc/specinput"
	"github.com/BaSui01/synthdoc/types"
)

type batchOptions struct {
	process      string
	documentType string
	outDir       string
	ext          string
	splitRoots   bool
	parallelism  int
	vars         map[string]string
}

// batchJob 一个待生成的文档
type batchJob struct {
	Name string
	Seed map[string]any
}

// batchOutcome 单个文档的生成结果
type batchOutcome struct {
	Name     string
	Status   string
	Attempts int
	RunID    string
	Output   string
	Err      error
}

func newBatchCmd(root *rootOptions) *cobra.Command {
	opts := &batchOptions{}

	cmd := &cobra.Command{
		Use:   "batch <spec.json>...",
		Short: "Generate one document per specification file concurrently",
		Long: "Runs the generate/validate/repair loop once per specification file, or once per\n" +
			"document root with --split-roots. Accepted documents are written to --out-dir.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBatch(cmd, root, opts, args)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.process, "process", "p", "", "Thought process to run (default: generation.process)")
	f.StringVar(&opts.documentType, "document-type", "", "Document type injected into prompts (default: generation.document_type)")
	f.StringVar(&opts.outDir, "out-dir", ".", "Directory for accepted documents")
	f.StringVar(&opts.ext, "ext", ".xml", "File extension for written documents")
	f.BoolVar(&opts.splitRoots, "split-roots", false, "Generate one document per XPath root in each specification")
	f.IntVar(&opts.parallelism, "parallelism", 0, "Concurrent runs (default: generation.parallelism)")
	f.StringToStringVar(&opts.vars, "var", nil, "Extra context fields (key=value), available to templates")

	return cmd
}

func runBatch(cmd *cobra.Command, root *rootOptions, opts *batchOptions, specs []string) error {
	cfg, err := loadConfig(root.configPath)
	if err != nil {
		return err
	}

	jobs, err := planBatch(specs, opts, firstNonEmpty(opts.documentType, cfg.Generation.DocumentType))
	if err != nil {
		return err
	}
	if err := os.MkdirAll(opts.outDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	a, err := newApp(cfg)
	if err != nil {
		return err
	}
	defer a.close()

	loop, err := a.newLoop(firstNonEmpty(opts.process, cfg.Generation.Process))
	if err != nil {
		return err
	}

	limit := opts.parallelism
	if limit <= 0 {
		limit = cfg.Generation.Parallelism
	}
	a.logger.Info("starting batch", zap.Int("documents", len(jobs)), zap.Int("parallelism", limit))

	outcomes := make([]batchOutcome, len(jobs))
	g, gctx := errgroup.WithContext(cmd.Context())
	g.SetLimit(limit)
	for i, job := range jobs {
		g.Go(func() error {
			outcomes[i] = runBatchJob(gctx, loop, job, opts, cfg.Generation.RunTimeout)
			return nil
		})
	}
	_ = g.Wait() // 错误记录在 batchOutcome.Err 中

	failed := printBatchSummary(cmd.OutOrStdout(), outcomes)
	if failed > 0 {
		return fmt.Errorf("%d of %d documents failed", failed, len(outcomes))
	}
	return nil
}

// planBatch 读取规范文件并展开为任务列表
func planBatch(specs []string, opts *batchOptions, documentType string) ([]batchJob, error) {
	var jobs []batchJob
	seen := make(map[string]int)

	for _, path := range specs {
		records, err := specinput.Load(path)
		if err != nil {
			return nil, err
		}

		base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		prefixes := []string{""}
		if opts.splitRoots {
			prefixes = records.Roots()
		}

		for _, prefix := range prefixes {
			seed, err := buildSeed(records, seedOptions{documentType: documentType, prefix: prefix, vars: opts.vars})
			if err != nil {
				return nil, fmt.Errorf("%s: %w", path, err)
			}

			name := base
			if prefix != "" {
				name = base + "-" + strings.TrimPrefix(prefix, "/")
			}
			// 同名文件追加序号，避免互相覆盖
			if n := seen[name]; n > 0 {
				seen[name] = n + 1
				name = fmt.Sprintf("%s-%d", name, n+1)
			} else {
				seen[name] = 1
			}
			jobs = append(jobs, batchJob{Name: name, Seed: seed})
		}
	}
	return jobs, nil
}

func runBatchJob(ctx context.Context, loop *repair.Loop, job batchJob, opts *batchOptions, timeout time.Duration) batchOutcome {
	out := batchOutcome{Name: job.Name, Status: repair.StatusFailed}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	res, err := loop.Run(ctx, job.Seed)
	if res != nil {
		out.Status = res.Status
		out.Attempts = res.Attempts
		out.RunID = res.RunID
	}
	if err != nil {
		out.Err = err
		return out
	}

	out.Output = filepath.Join(opts.outDir, job.Name+opts.ext)
	if werr := os.WriteFile(out.Output, []byte(res.Artifact+"\n"), 0o644); werr != nil {
		out.Status = repair.StatusFailed
		out.Err = fmt.Errorf("write output: %w", werr)
		out.Output = ""
	}
	return out
}

// printBatchSummary 打印每个文档的结果，返回失败数
func printBatchSummary(w io.Writer, outcomes []batchOutcome) int {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "DOCUMENT\tSTATUS\tATTEMPTS\tRUN\tRESULT")

	failed := 0
	for _, o := range outcomes {
		result := o.Output
		if o.Err != nil {
			failed++
			result = failureReason(o.Err)
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\n", o.Name, o.Status, o.Attempts, o.RunID, result)
	}
	_ = tw.Flush()
	return failed
}

func failureReason(err error) string {
	return types.Truncate(firstLine(err.Error()), 160)
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return line
}
