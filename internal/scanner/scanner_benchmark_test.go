package scanner

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"licext/internal/model"
	"licext/internal/summary"
)

// prepareBenchmarkSummary 创建一个包含大量条目的汇总文件（不带许可证文件）。
func prepareBenchmarkSummary(b *testing.B, dir string, entries int) string {
	b.Helper()

	content := make(model.Summary, entries)
	for i := 0; i < entries; i++ {
		content["@scope"+strconv.Itoa(i%10)+"/pkg"+strconv.Itoa(i)+"@1.0."+strconv.Itoa(i)] = model.LicenseEntry{Licenses: "MIT"}
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		b.Fatalf("mkdir benchmark dir failed: %v", err)
	}
	path := filepath.Join(dir, "licenses.json")
	file, err := os.Create(path)
	if err != nil {
		b.Fatalf("create benchmark fixture failed: %v", err)
	}
	defer file.Close()
	if err := summary.Write(file, content); err != nil {
		b.Fatalf("write benchmark fixture failed: %v", err)
	}
	return path
}

// BenchmarkScanSingleFile 评估单个大汇总文件的处理性能。
func BenchmarkScanSingleFile(b *testing.B) {
	path := prepareBenchmarkSummary(b, b.TempDir(), 5000)
	service := NewService(Options{DryRun: true}, 4, nil)

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := service.ScanPaths(context.Background(), []string{path}); err != nil {
			b.Fatalf("scan failed: %v", err)
		}
	}
}

// BenchmarkScanDirectory 评估目录发现加并发处理的性能。
func BenchmarkScanDirectory(b *testing.B) {
	root := b.TempDir()
	for i := 0; i < 100; i++ {
		prepareBenchmarkSummary(b, filepath.Join(root, "pkg"+strconv.Itoa(i)), 50)
	}
	service := NewService(Options{DryRun: true}, 4, nil)

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := service.ScanPaths(context.Background(), []string{root}); err != nil {
			b.Fatalf("scan failed: %v", err)
		}
	}
}
