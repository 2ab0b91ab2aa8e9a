package ocr

import (
	"bytes"
	"context"
	"log/slog"
	"os/exec"
	"strings"
	"time"
)

// stderrLogLimit caps how much of a failed tool's stderr goes into the log.
const stderrLogLimit = 8 << 10

// Runner invokes the text-extraction binaries (pdftotext, pdftoppm,
// tesseract). Tests swap in a fake through WithRunner.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (stdout, stderr []byte, err error)
}

type toolRunner struct {
	logger *slog.Logger
}

func (r toolRunner) Run(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	start := time.Now()
	cmd := exec.CommandContext(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	attrs := []any{"tool", name, "args", strings.Join(args, " "), "duration_ms", time.Since(start).Milliseconds()}
	if err != nil {
		r.logger.Error("ocr.tool.failed", append(attrs, "error", err, "stderr", clip(stderr.String(), stderrLogLimit))...)
	} else {
		r.logger.Debug("ocr.tool.ok", append(attrs, "stdout_bytes", stdout.Len())...)
	}
	return stdout.Bytes(), stderr.Bytes(), err
}

func clip(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "...(truncated)"
}
