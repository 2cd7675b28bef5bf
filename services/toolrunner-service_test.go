package services

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunToolCapturesOutput(t *testing.T) {
	root := t.TempDir()
	svc := NewToolRunnerService(root)
	svc.Commands = map[string][]string{
		"echo": {"echo", "scanning", "{case_dir}"},
	}

	err := svc.RunTool(context.Background(), "case-1", "echo")
	require.NoError(t, err)

	logPath := filepath.Join(root, "case-1", "echo_run.log")
	output, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Contains(t, string(output), "scanning")
	assert.Contains(t, string(output), filepath.Join(root, "case-1"))
}

func TestRunToolUnknownTool(t *testing.T) {
	svc := NewToolRunnerService(t.TempDir())

	err := svc.RunTool(context.Background(), "case-1", "nmap")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown tool")
}

func TestRunToolFailureStillWritesLog(t *testing.T) {
	root := t.TempDir()
	svc := NewToolRunnerService(root)
	svc.Commands = map[string][]string{
		"fail": {"false"},
	}
	svc.Timeout = 5 * time.Second

	err := svc.RunTool(context.Background(), "case-1", "fail")
	require.Error(t, err)

	_, statErr := os.Stat(filepath.Join(root, "case-1", "fail_run.log"))
	assert.NoError(t, statErr)
}

func TestKnownTools(t *testing.T) {
	svc := NewToolRunnerService(t.TempDir())
	assert.ElementsMatch(t, []string{"sparrow", "hawk", "loki", "yara", "monkey365"}, svc.KnownTools())
}
