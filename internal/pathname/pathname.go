// Package pathname 负责推导报告文件与许可证文件的输出位置。
// 这里只做纯字符串计算：不读写文件，也不检查路径是否存在，
// 因此所有函数都可以被多个 goroutine 并发调用。
package pathname

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

const (
	// TargetSuffix 是扩展报告文件的固定后缀。
	TargetSuffix = ".ext.json"
	// DefaultLicenseFolder 是未指定任何目录时的许可证目录名。
	DefaultLicenseFolder = "licenses"
	// DefaultLicenseFile 在来源许可证文件名未知时使用。
	DefaultLicenseFile = "LICENSE"
)

// ErrInvalidArgument 表示调用方传入了不可用的参数。
var ErrInvalidArgument = errors.New("invalid argument")

// TargetFilename 根据来源文件路径推导 .ext.json 报告路径。
//
// 目录选择顺序：targetDirectory > sourceDirectory > sourcePath 所在目录。
// 空字符串表示未提供。targetDirectory 原样使用，不与来源目录合并。
func TargetFilename(sourcePath, targetDirectory, sourceDirectory string) (string, error) {
	if strings.TrimSpace(sourcePath) == "" {
		return "", fmt.Errorf("source path is empty: %w", ErrInvalidArgument)
	}

	base := filepath.Base(sourcePath)
	targetName := strings.TrimSuffix(base, filepath.Ext(base)) + TargetSuffix

	directory := filepath.Dir(sourcePath)
	switch {
	case targetDirectory != "":
		directory = targetDirectory
	case sourceDirectory != "":
		directory = sourceDirectory
	}

	return filepath.Join(directory, targetName), nil
}

// LicenseFolder 返回许可证文件的复制目录。
func LicenseFolder(licenseDirectory, sourceDirectory string) string {
	if licenseDirectory != "" {
		return licenseDirectory
	}
	if sourceDirectory != "" {
		return filepath.Join(sourceDirectory, DefaultLicenseFolder)
	}
	return DefaultLicenseFolder
}

// PackageName 是拆分后的包标识。
// Scope 为空或带前导 @（例如 "@test"），Name 不含 scope。
type PackageName struct {
	Scope string `json:"scope"`
	Name  string `json:"packageName"`
}

// String 还原为 "@scope/name" 或 "name"。
func (p PackageName) String() string {
	if p.Scope == "" {
		return p.Name
	}
	return p.Scope + "/" + p.Name
}

// SplitPackageIdentifier 把 "@scope/name" 拆为 scope 与 name。
//
// 最后一个 "/" 之后的部分总是 name；之前的部分只有以 @ 开头时才视为 scope。
// 例如 "a/b" 得到 {"", "b"}，"@only" 得到 {"", "@only"}。
func SplitPackageIdentifier(identifier string) PackageName {
	idx := strings.LastIndex(identifier, "/")
	if idx < 0 {
		return PackageName{Name: identifier}
	}

	result := PackageName{Name: identifier[idx+1:]}
	if prefix := identifier[:idx]; strings.HasPrefix(prefix, "@") {
		result.Scope = prefix
	}
	return result
}

// ParseEntryKey 拆分汇总文件中的 "name@version" 键。
// 分隔符是最后一个不在首位的 @，因此 "@scope/name@1.0.0" 可以正确处理。
func ParseEntryKey(key string) (identifier string, version string) {
	idx := strings.LastIndex(key, "@")
	if idx <= 0 {
		return key, ""
	}
	return key[:idx], key[idx+1:]
}

// LicenseFilePath 计算某个包的许可证文件在 folder 中的位置：
// <folder>/<scope>/<name>-<version>-<来源文件名>。
func LicenseFilePath(folder string, name PackageName, version string, sourceLicenseFile string) string {
	fileName := DefaultLicenseFile
	if sourceLicenseFile != "" {
		fileName = filepath.Base(sourceLicenseFile)
	}

	parts := []string{name.Name}
	if version != "" {
		parts = append(parts, version)
	}
	parts = append(parts, fileName)

	return filepath.Join(folder, name.Scope, strings.Join(parts, "-"))
}
