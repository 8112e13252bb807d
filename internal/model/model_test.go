package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTotalMetricsAddFileReport(t *testing.T) {
	t.Parallel()

	var total TotalMetrics
	total.AddFileReport(FileReport{Packages: 3, Copied: 2, Failed: 1})
	total.AddFileReport(FileReport{Packages: 1, Copied: 1})

	assert.Equal(t, TotalMetrics{Files: 2, Packages: 4, Copied: 3, Failed: 1}, total)
}

func TestScanResultErr(t *testing.T) {
	t.Parallel()

	require.NoError(t, ScanResult{}.Err())

	err := ScanResult{Errors: []ScanError{
		{Path: "a/licenses.json", Error: "decode summary: EOF"},
		{Path: "b/licenses.json", Error: "open summary: missing"},
	}}.Err()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "a/licenses.json: decode summary: EOF")
	assert.Contains(t, err.Error(), "b/licenses.json")
}
