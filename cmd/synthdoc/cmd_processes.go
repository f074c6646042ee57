package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/BaSui01/synthdoc/prompt"
	"github.com/BaSui01/synthdoc/prompts"
	"github.com/BaSui01/synthdoc/workflow"
)

func newProcessesCmd(root *rootOptions) *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "processes",
		Short: "List registered thought processes and their stages",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(root.configPath)
			if err != nil {
				return err
			}
			defs, err := prompts.Load(cfg.Generation.ProcessFiles...)
			if err != nil {
				return err
			}
			reg, err := workflow.NewRegistry(defs)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "PROCESS\tOUTPUT\tSTAGES\tDESCRIPTION")
			for _, name := range reg.Names() {
				p, _ := reg.Process(name)
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", p.Name, p.Output(), strings.Join(p.StageNames(), " -> "), p.Description)
				if !verbose {
					continue
				}
				for _, s := range p.Stages {
					inputs := prompt.Placeholders(s.SystemPrompt + "\n" + s.Template)
					fmt.Fprintf(tw, "  %s\t\t%s\tinputs: %s\n", s.Name, stageKind(s), strings.Join(inputs, ", "))
				}
			}
			return tw.Flush()
		},
	}
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Show each stage with the context fields its prompts read")
	return cmd
}

func stageKind(s workflow.StageSpec) string {
	if s.Kind == "" {
		return workflow.KindThinker
	}
	return s.Kind
}
