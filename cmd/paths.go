package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"licext/internal/pathname"
)

// newTargetCmd 创建 target 子命令，输出来源文件对应的报告路径。
// 示例：licext target ./licenses.json --target-dir reports
func newTargetCmd(root *rootOptions) *cobra.Command {
	targetCmd := &cobra.Command{
		Use:   "target <source>",
		Short: "显示来源文件对应的 .ext.json 路径",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := root.setup(cmd)
			if err != nil {
				return err
			}

			target, err := pathname.TargetFilename(args[0], cfg.TargetDir, cfg.SourceDir)
			if err != nil {
				return err
			}
			logger.Debug("derived target", "source", args[0], "target", target)

			_, err = fmt.Fprintln(cmd.OutOrStdout(), target)
			return err
		},
	}

	addDirectoryFlags(targetCmd)
	return targetCmd
}

// newFolderCmd 创建 folder 子命令，输出许可证文件的复制目录。
func newFolderCmd(root *rootOptions) *cobra.Command {
	folderCmd := &cobra.Command{
		Use:   "folder",
		Short: "显示许可证文件复制目录",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, _, err := root.setup(cmd)
			if err != nil {
				return err
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), pathname.LicenseFolder(cfg.LicenseDir, cfg.SourceDir))
			return err
		},
	}

	folderCmd.Flags().String("license-dir", "", "许可证文件复制目录")
	folderCmd.Flags().String("source-dir", "", "来源目录，许可证目录默认为其下的 licenses")
	return folderCmd
}

// newNameCmd 创建 name 子命令，展示包标识拆分结果。
// 参数可以带版本，例如 @babel/core@7.24.0。
func newNameCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "name <identifier...>",
		Short: "拆分包标识为 scope 与 name",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			writer := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)

			if _, err := fmt.Fprintln(writer, "IDENTIFIER\tSCOPE\tNAME\tVERSION"); err != nil {
				return err
			}

			for _, arg := range args {
				identifier, version := pathname.ParseEntryKey(arg)
				name := pathname.SplitPackageIdentifier(identifier)
				if _, err := fmt.Fprintf(writer, "%s\t%s\t%s\t%s\n", arg, dash(name.Scope), name.Name, dash(version)); err != nil {
					return err
				}
			}

			return writer.Flush()
		},
	}
}

func dash(value string) string {
	if value == "" {
		return "-"
	}
	return value
}
