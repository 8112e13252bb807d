// Package summary 读写 license-checker 风格的汇总 JSON。
package summary

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"licext/internal/model"
)

// Read 从 reader 解析汇总内容。
// 顶层必须是对象；空对象是合法输入。
func Read(reader io.Reader) (model.Summary, error) {
	var result model.Summary
	if err := json.NewDecoder(reader).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode summary: %w", err)
	}
	if result == nil {
		return nil, fmt.Errorf("decode summary: top-level value must be an object")
	}
	return result, nil
}

// ReadFile 读取并解析指定路径的汇总文件。
func ReadFile(path string) (model.Summary, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open summary: %w", err)
	}
	defer file.Close()

	return Read(file)
}

// Write 以两个空格缩进输出汇总，键按字典序排列。
func Write(writer io.Writer, content model.Summary) error {
	encoder := json.NewEncoder(writer)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(content); err != nil {
		return fmt.Errorf("encode summary: %w", err)
	}
	return nil
}
