package pdfconv

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// officeConverter shells out to LibreOffice in headless mode.
type officeConverter struct {
	binary  string
	timeout time.Duration
	workDir string
}

func (o *officeConverter) convert(ctx context.Context, in []byte, ext string) ([]byte, error) {
	dir, err := os.MkdirTemp(o.workDir, "pdfconv-*")
	if err != nil {
		return nil, fmt.Errorf("create work dir: %w", err)
	}
	defer os.RemoveAll(dir)

	src := filepath.Join(dir, "document"+ext)
	if err := os.WriteFile(src, in, 0o600); err != nil {
		return nil, fmt.Errorf("write source: %w", err)
	}

	timeout := o.timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, o.binary, "--headless", "--convert-to", "pdf", "--outdir", dir, src)
	// a private profile lets conversions run concurrently
	cmd.Env = append(os.Environ(), "HOME="+dir)
	out, err := cmd.CombinedOutput()
	if ctx.Err() != nil {
		return nil, fmt.Errorf("%s timed out after %s", o.binary, timeout)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %v: %s", o.binary, err, strings.TrimSpace(string(out)))
	}

	pdf, err := os.ReadFile(filepath.Join(dir, "document.pdf"))
	if err != nil {
		return nil, fmt.Errorf("read converted pdf: %w", err)
	}
	return pdf, nil
}
