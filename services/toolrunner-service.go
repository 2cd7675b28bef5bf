package services

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/jeturing/Segrd-forensics-sub000/logging"
)

// ToolRunnerService launches the external forensic tools. Each tool has an
// argv template; {case_dir} is replaced with the case evidence directory, so
// tool output lands where the graph builder reads.
type ToolRunnerService struct {
	EvidenceRoot string
	Commands     map[string][]string
	Timeout      time.Duration
}

func NewToolRunnerService(evidenceRoot string) *ToolRunnerService {
	return &ToolRunnerService{
		EvidenceRoot: evidenceRoot,
		Commands: map[string][]string{
			"sparrow":   {"pwsh", "-File", "Sparrow.ps1", "-ExportDir", "{case_dir}"},
			"hawk":      {"pwsh", "-File", "Start-HawkTenantInvestigation.ps1", "-FilePath", "{case_dir}"},
			"loki":      {"loki", "--noindicator", "-p", "{case_dir}", "-l", "{case_dir}/loki_scan.log"},
			"yara":      {"yara", "-r", "rules/index.yar", "{case_dir}"},
			"monkey365": {"pwsh", "-File", "Invoke-Monkey365.ps1", "-ExportTo", "{case_dir}"},
		},
		Timeout: 10 * time.Minute,
	}
}

// RunTool executes the named tool for a case and captures its combined output
// into <case_dir>/<tool>_run.log. The call blocks until the tool finishes.
func (s *ToolRunnerService) RunTool(ctx context.Context, caseID, tool string) error {
	argv, ok := s.Commands[tool]
	if !ok {
		return fmt.Errorf("unknown tool: %s", tool)
	}

	caseDir := filepath.Join(s.EvidenceRoot, caseID)
	if err := os.MkdirAll(caseDir, 0750); err != nil {
		return fmt.Errorf("failed to create evidence directory: %v", err)
	}

	expanded := make([]string, len(argv))
	for i, arg := range argv {
		expanded[i] = strings.ReplaceAll(arg, "{case_dir}", caseDir)
	}

	runCtx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()

	logging.Logger.Infof("Event ID: TOOL_RUN_START, Description: Running %s for case %s.", tool, caseID)

	cmd := exec.CommandContext(runCtx, expanded[0], expanded[1:]...)
	output, err := cmd.CombinedOutput()

	logPath := filepath.Join(caseDir, tool+"_run.log")
	if writeErr := os.WriteFile(logPath, output, 0640); writeErr != nil {
		logging.Logger.Warnf("Event ID: TOOL_RUN_LOG_FAILED, Description: Failed to write %s run log: %v", tool, writeErr)
	}

	if err != nil {
		logging.Logger.Warnf("Event ID: TOOL_RUN_FAILED, Description: Tool %s failed for case %s: %v", tool, caseID, err)
		return fmt.Errorf("tool %s failed: %v", tool, err)
	}

	logging.Logger.Infof("Event ID: TOOL_RUN_DONE, Description: Tool %s finished for case %s.", tool, caseID)
	return nil
}

// KnownTools lists the configured tool names.
func (s *ToolRunnerService) KnownTools() []string {
	tools := make([]string, 0, len(s.Commands))
	for name := range s.Commands {
		tools = append(tools, name)
	}
	return tools
}
