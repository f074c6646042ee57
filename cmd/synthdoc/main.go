// =============================================================================
// synthdoc 主入口
// =============================================================================
// 命令行入口：生成、批量生成、流程列表、运行记录与数据库迁移
//
// 使用方法:
//
//	synthdoc generate --spec spec.json              # 生成一个样例文档
//	synthdoc generate --spec spec.json -o out.xml   # 写入文件
//	synthdoc batch a.json b.json --out-dir ./out    # 并发生成多个文档
//	synthdoc processes                              # 列出思维流程
//	synthdoc runs list --status exhausted           # 查看未收敛的运行
//	synthdoc migrate up                             # 运行数据库迁移
//	synthdoc version                                # 显示版本信息
// =============================================================================

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

// =============================================================================
// 📦 版本信息（构建时注入）
// =============================================================================

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

type rootOptions struct {
	configPath string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "synthdoc",
		Short: "Generate validated synthetic documents from element specifications",
		Long: "synthdoc drafts synthetic documents with a generative model, checks them\n" +
			"against an external validator and repairs them until they pass.",
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			HiddenDefaultCmd: true,
		},
		Version: Version,
	}
	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "Path to config file (YAML)")

	root.AddCommand(
		newGenerateCmd(opts),
		newBatchCmd(opts),
		newProcessesCmd(opts),
		newRunsCmd(opts),
		newMigrateCmd(opts),
		newVersionCmd(),
	)
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "synthdoc %s\n", Version)
			fmt.Fprintf(out, "  Build Time: %s\n", BuildTime)
			fmt.Fprintf(out, "  Git Commit: %s\n", GitCommit)
		},
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
