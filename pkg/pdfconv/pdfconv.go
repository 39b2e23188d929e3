// Package pdfconv converts uploaded clinical documents to PDF. The converter
// is chosen by file extension.
package pdfconv

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/iequus/iequus_backend/config"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported document format")
	ErrConversionFailed  = errors.New("document conversion failed")
)

// Func converts one document held in memory.
type Func func(ctx context.Context, in []byte, ext string) ([]byte, error)

// Converter dispatches on the lower-cased extension, dot included.
type Converter struct {
	byExt map[string]Func
}

func New(cfg config.ConversionConfig, maxImageDim int) *Converter {
	office := &officeConverter{
		binary:  cfg.OfficeBinary,
		timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
		workDir: cfg.WorkDir,
	}
	images := imageToPDF(maxImageDim)

	c := &Converter{byExt: map[string]Func{
		".pdf":  passthrough,
		".txt":  textToPDF,
		".csv":  textToPDF,
		".png":  images,
		".jpg":  images,
		".jpeg": images,
		".gif":  images,
		".webp": images,
		".bmp":  images,
	}}
	for _, ext := range []string{".doc", ".docx", ".odt", ".rtf", ".xls", ".xlsx", ".ods", ".ppt", ".pptx"} {
		c.byExt[ext] = office.convert
	}
	return c
}

// Supported reports whether filename has a known extension.
func (c *Converter) Supported(filename string) bool {
	_, ok := c.byExt[strings.ToLower(filepath.Ext(filename))]
	return ok
}

// Convert returns r rendered as PDF.
func (c *Converter) Convert(ctx context.Context, filename string, r io.Reader) ([]byte, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	fn, ok := c.byExt[ext]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}

	in, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}

	out, err := fn(ctx, in, ext)
	if err != nil {
		if errors.Is(err, ErrUnsupportedFormat) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrConversionFailed, err)
	}
	return out, nil
}

func passthrough(_ context.Context, in []byte, _ string) ([]byte, error) {
	if !bytes.HasPrefix(in, []byte("%PDF-")) {
		return nil, fmt.Errorf("%w: file does not look like a PDF", ErrUnsupportedFormat)
	}
	return in, nil
}
