// Package report 提供 licext 的输出能力。
// 包含运行结果的 table/JSON 输出、.ext.json 报告落盘以及许可证文件复制。
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"text/tabwriter"

	"licext/internal/model"
	"licext/internal/summary"
)

// PrintTable 使用表格展示运行结果。
func PrintTable(writer io.Writer, result model.ScanResult) error {
	tw := tabwriter.NewWriter(writer, 0, 4, 2, ' ', 0)

	if result.DryRun {
		if _, err := fmt.Fprintln(tw, "DRY RUN: no files were written"); err != nil {
			return err
		}
		if _, err := fmt.Fprintln(tw); err != nil {
			return err
		}
	}

	if _, err := fmt.Fprintln(tw, "SOURCE\tTARGET\tLICENSE FOLDER\tPACKAGES\tCOPIED\tFAILED"); err != nil {
		return err
	}
	for _, item := range result.Files {
		if _, err := fmt.Fprintf(
			tw,
			"%s\t%s\t%s\t%d\t%d\t%d\n",
			item.Source,
			item.Target,
			item.LicenseFolder,
			item.Packages,
			item.Copied,
			item.Failed,
		); err != nil {
			return err
		}
	}

	if _, err := fmt.Fprintf(
		tw,
		"\nTOTAL\t%d files\t\t%d\t%d\t%d\n",
		result.Total.Files,
		result.Total.Packages,
		result.Total.Copied,
		result.Total.Failed,
	); err != nil {
		return err
	}

	if len(result.Errors) > 0 {
		if _, err := fmt.Fprintln(tw, "\nERROR FILE\tMESSAGE"); err != nil {
			return err
		}
		for _, item := range result.Errors {
			if _, err := fmt.Fprintf(tw, "%s\t%s\n", item.Path, item.Error); err != nil {
				return err
			}
		}
	}

	return tw.Flush()
}

// PrintJSON 把运行结果按易读 JSON 输出到任意 writer。
func PrintJSON(writer io.Writer, result model.ScanResult) error {
	content, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}

	if _, err := writer.Write(content); err != nil {
		return fmt.Errorf("write json: %w", err)
	}
	return nil
}

// WriteJSONFile 将运行结果导出到指定路径。
// 如果目录不存在会自动创建。
func WriteJSONFile(path string, result model.ScanResult) error {
	content, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}

	if err := ensureParent(path); err != nil {
		return err
	}

	if writeErr := os.WriteFile(path, content, 0o644); writeErr != nil {
		return fmt.Errorf("write output file: %w", writeErr)
	}
	return nil
}

// WriteSummaryFile 把扩展后的汇总写入 .ext.json 报告。
func WriteSummaryFile(path string, content model.Summary) (err error) {
	if err := ensureParent(path); err != nil {
		return err
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report file: %w", err)
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close report file: %w", closeErr)
		}
	}()

	return summary.Write(file, content)
}

// CopyFile 复制单个文件，目标目录不存在时自动创建。
func CopyFile(src string, dst string) (err error) {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open license file: %w", err)
	}
	defer in.Close()

	if err := ensureParent(dst); err != nil {
		return err
	}

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("create license copy: %w", err)
	}
	defer func() {
		if closeErr := out.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close license copy: %w", closeErr)
		}
	}()

	if _, err := io.Copy(out, in); err != nil {
		return fmt.Errorf("copy license file: %w", err)
	}
	return nil
}

func ensureParent(path string) error {
	directory := filepath.Dir(path)
	if directory != "." && directory != "" {
		if mkErr := os.MkdirAll(directory, 0o755); mkErr != nil {
			return fmt.Errorf("create output directory: %w", mkErr)
		}
	}
	return nil
}
