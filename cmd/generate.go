package cmd

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/spf13/cobra"

	"licext/internal/report"
	"licext/internal/scanner"
)

// newGenerateCmd 创建 generate 子命令。
// 示例：
//
//	licext generate .
//	licext generate ./licenses.json --target-dir reports --license-dir third-party
//	licext generate ./project --format json --output result.json
func newGenerateCmd(root *rootOptions) *cobra.Command {
	generateCmd := &cobra.Command{
		Use:   "generate [path...]",
		Short: "生成 .ext.json 报告并复制许可证文件",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := root.setup(cmd)
			if err != nil {
				return err
			}

			service := scanner.NewService(scanner.Options{
				TargetDir:  cfg.TargetDir,
				SourceDir:  cfg.SourceDir,
				LicenseDir: cfg.LicenseDir,
				Pattern:    cfg.Pattern,
				Exclude:    cfg.Exclude,
				NoIgnore:   cfg.NoIgnore,
				DryRun:     cfg.DryRun,
			}, cfg.Workers, logger)

			result, err := service.ScanPaths(cmd.Context(), args)
			if err != nil {
				return err
			}

			switch strings.ToLower(strings.TrimSpace(cfg.Format)) {
			case "json":
				if err := report.PrintJSON(cmd.OutOrStdout(), result); err != nil {
					return err
				}
				if outputPath := strings.TrimSpace(cfg.Output); outputPath != "" {
					if err := report.WriteJSONFile(outputPath, result); err != nil {
						return err
					}
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "\nJSON exported to %s\n", outputPath)
				}
			default:
				if err := report.PrintTable(cmd.OutOrStdout(), result); err != nil {
					return err
				}
			}

			if err := result.Err(); err != nil {
				return fmt.Errorf("%d file(s) failed: %w", len(result.Errors), err)
			}
			return nil
		},
	}

	addDirectoryFlags(generateCmd)
	flags := generateCmd.Flags()
	flags.String("license-dir", "", "许可证文件复制目录，默认 <source-dir>/licenses")
	flags.String("pattern", scanner.DefaultPattern, "目录扫描时匹配汇总文件的 glob")
	flags.StringSlice("exclude", nil, "排除的 glob（相对扫描目录，可重复）")
	flags.Bool("no-ignore", false, "不读取 .gitignore")
	flags.Int("workers", runtime.NumCPU(), "并发 worker 数量")
	flags.String("format", "table", "输出格式: table 或 json")
	flags.String("output", "", "json 格式时额外导出结果的文件路径")
	flags.Bool("dry-run", false, "只计算输出位置，不写任何文件")

	return generateCmd
}
