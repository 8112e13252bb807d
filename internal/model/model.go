// Package model 定义 licext 的核心数据模型。
// 这些结构会被扫描器、输出层和命令层共同使用。
package model

import (
	"fmt"

	"github.com/hashicorp/go-multierror"
)

// LicenseEntry 表示汇总文件中的单个包记录。
//
// 前半部分字段来自 license-checker 风格的输入，
// 后半部分（PackageName 起）是 licext 写入 .ext.json 时追加的扩展字段。
type LicenseEntry struct {
	Licenses    any    `json:"licenses,omitempty"`
	Repository  string `json:"repository,omitempty"`
	Publisher   string `json:"publisher,omitempty"`
	Email       string `json:"email,omitempty"`
	URL         string `json:"url,omitempty"`
	Path        string `json:"path,omitempty"`
	LicenseFile string `json:"licenseFile,omitempty"`

	PackageName       string `json:"packageName,omitempty"`
	Scope             string `json:"scope,omitempty"`
	Version           string `json:"version,omitempty"`
	CopiedLicenseFile string `json:"copiedLicenseFile,omitempty"`
}

// Summary 是 "name@version" 到包记录的映射。
type Summary map[string]LicenseEntry

// FileReport 表示单个汇总文件的处理结果。
type FileReport struct {
	Source        string `json:"source"`
	Target        string `json:"target"`
	LicenseFolder string `json:"license_folder"`
	Packages      int64  `json:"packages"`
	Copied        int64  `json:"copied"`
	Failed        int64  `json:"failed"`
}

// ScanError 记录单文件处理失败信息。
// 单个文件失败不阻断整次运行。
type ScanError struct {
	Path  string `json:"path"`
	Error string `json:"error"`
}

// TotalMetrics 表示本次运行的总计。
type TotalMetrics struct {
	Files    int64 `json:"files"`
	Packages int64 `json:"packages"`
	Copied   int64 `json:"copied"`
	Failed   int64 `json:"failed"`
}

// AddFileReport 累加一个文件的结果。
func (m *TotalMetrics) AddFileReport(report FileReport) {
	m.Files++
	m.Packages += report.Packages
	m.Copied += report.Copied
	m.Failed += report.Failed
}

// ScanResult 是 generate 命令的完整输出模型。
type ScanResult struct {
	ScannedPaths []string     `json:"scanned_paths"`
	DryRun       bool         `json:"dry_run"`
	Files        []FileReport `json:"files"`
	Total        TotalMetrics `json:"total"`
	Errors       []ScanError  `json:"errors"`
}

// Err 把全部失败合并为一个错误，没有失败时返回 nil。
func (r ScanResult) Err() error {
	var result *multierror.Error
	for _, item := range r.Errors {
		result = multierror.Append(result, fmt.Errorf("%s: %s", item.Path, item.Error))
	}
	return result.ErrorOrNil()
}
