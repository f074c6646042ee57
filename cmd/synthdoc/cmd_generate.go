package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/BaSui01/synthdoc/repair"
	"github.com/BaSui01/synthdoc/specinput"
	"github.com/BaSui01/synthdoc/types"
)

type generateOptions struct {
	specPath     string
	process      string
	documentType string
	prefix       string
	output       string
	vars         map[string]string
}

func newGenerateCmd(root *rootOptions) *cobra.Command {
	opts := &generateOptions{}

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate one validated document from a specification",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runGenerate(cmd, root, opts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.specPath, "spec", "s", "", "Path to the element specification (JSON, required)")
	f.StringVarP(&opts.process, "process", "p", "", "Thought process to run (default: generation.process)")
	f.StringVar(&opts.documentType, "document-type", "", "Document type injected into prompts (default: generation.document_type)")
	f.StringVar(&opts.prefix, "prefix", "", "Only use specification records whose XPath starts with this prefix")
	f.StringVarP(&opts.output, "output", "o", "", "Write the accepted document to this file instead of stdout")
	f.StringToStringVar(&opts.vars, "var", nil, "Extra context fields (key=value), available to templates")
	_ = cmd.MarkFlagRequired("spec")

	return cmd
}

func runGenerate(cmd *cobra.Command, root *rootOptions, opts *generateOptions) error {
	cfg, err := loadConfig(root.configPath)
	if err != nil {
		return err
	}
	records, err := specinput.Load(opts.specPath)
	if err != nil {
		return err
	}

	a, err := newApp(cfg)
	if err != nil {
		return err
	}
	defer a.close()

	process := firstNonEmpty(opts.process, cfg.Generation.Process)
	loop, err := a.newLoop(process)
	if err != nil {
		return err
	}

	seed, err := buildSeed(records, seedOptions{
		documentType: firstNonEmpty(opts.documentType, cfg.Generation.DocumentType),
		prefix:       opts.prefix,
		vars:         opts.vars,
	})
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if cfg.Generation.RunTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Generation.RunTimeout)
		defer cancel()
	}

	res, err := loop.Run(ctx, seed)
	if err != nil {
		reportFailure(cmd.ErrOrStderr(), res, err)
		return err
	}

	a.logger.Info("document accepted",
		zap.String("run_id", res.RunID),
		zap.String("process", res.Process),
		zap.Int("attempts", res.Attempts),
	)
	fmt.Fprintf(cmd.ErrOrStderr(), "accepted after %d attempt(s), run %s\n", res.Attempts, res.RunID)

	if opts.output == "" {
		_, err = fmt.Fprintln(cmd.OutOrStdout(), res.Artifact)
		return err
	}
	if err := os.WriteFile(opts.output, []byte(res.Artifact+"\n"), 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}

// reportFailure 输出未收敛的产物与失败原因，便于人工排查
func reportFailure(w io.Writer, res *repair.Result, err error) {
	var exhausted *repair.ExhaustedError
	switch {
	case errors.As(err, &exhausted):
		fmt.Fprintf(w, "validation did not converge after %d attempt(s)\n", exhausted.Attempts)
		fmt.Fprintf(w, "\nlast artifact:\n%s\n", exhausted.Artifact)
		fmt.Fprintf(w, "\nvalidator report:\n%s\n", exhausted.Message)
		return
	case res != nil && res.Artifact != "":
		failed := strconv.Itoa(res.Attempts)
		if e, ok := types.AsError(err); ok && e.Detail(types.DetailFailedAttempt) != "" {
			failed = e.Detail(types.DetailFailedAttempt)
		}
		fmt.Fprintf(w, "run failed on attempt %s\n", failed)
		fmt.Fprintf(w, "\nlast artifact:\n%s\n", res.Artifact)
	default:
		fmt.Fprintln(w, "run failed before any document was produced")
	}

	if e, ok := types.AsError(err); ok {
		if stage := e.Detail(types.DetailStage); stage != "" {
			fmt.Fprintf(w, "failed stage: %s\n", stage)
		}
		if prompt := e.Detail(types.DetailLastPrompt); prompt != "" {
			fmt.Fprintf(w, "\nlast prompt:\n%s\n", prompt)
		}
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
