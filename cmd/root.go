// Package cmd 提供 licext 的命令行入口与子命令编排。
package cmd

import (
	"context"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"licext/internal/config"
	licextlog "licext/internal/log"
)

// rootOptions 存放所有子命令共享的参数。
type rootOptions struct {
	configFile string
	logLevel   string
	logFormat  string
}

// Execute 组装根命令并执行。
// version 参数由 main 包注入，便于在 CI/CD 中打包不同版本。
func Execute(ctx context.Context, version string) error {
	return newRootCmd(version).ExecuteContext(ctx)
}

// newRootCmd 创建根命令并注册全部子命令。
func newRootCmd(version string) *cobra.Command {
	options := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "licext",
		Short: "扩展许可证汇总并收集许可证文件",
		Long: "licext 读取 license-checker 风格的 licenses.json，\n" +
			"为每个包补充 scope/name/version，复制许可证文件并输出 .ext.json 报告。",
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&options.configFile, "config", "", "配置文件路径，默认查找 .licext.toml")
	rootCmd.PersistentFlags().StringVar(&options.logLevel, "log-level", "info", "日志级别: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&options.logFormat, "log-format", licextlog.TextFormat, "日志格式: text, json, logfmt")

	rootCmd.AddCommand(newVersionCmd(version))
	rootCmd.AddCommand(newGenerateCmd(options))
	rootCmd.AddCommand(newTargetCmd(options))
	rootCmd.AddCommand(newFolderCmd(options))
	rootCmd.AddCommand(newNameCmd())

	return rootCmd
}

// setup 合并配置并创建日志器，日志写到 stderr。
func (o *rootOptions) setup(cmd *cobra.Command) (config.Config, *log.Logger, error) {
	cfg, used, err := config.Load(o.configFile, cmd.Flags())
	if err != nil {
		return config.Config{}, nil, err
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, nil, err
	}

	logger, err := licextlog.New(cmd.ErrOrStderr(), cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return config.Config{}, nil, err
	}
	if used != "" {
		logger.Debug("using config file", "path", used)
	}
	return cfg, logger, nil
}

// addDirectoryFlags 注册 target-dir 与 source-dir，多个子命令共用。
func addDirectoryFlags(cmd *cobra.Command) {
	cmd.Flags().String("target-dir", "", ".ext.json 报告输出目录，默认与来源文件同目录")
	cmd.Flags().String("source-dir", "", "替代来源文件所在目录")
}
