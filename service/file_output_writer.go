package service

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/ieg-tools/projcodes/domain"
)

// FileOutputWriter writes reports and charts to files or provided writers and
// optionally opens HTML output in a browser.
type FileOutputWriter struct {
	notices domain.NoticeSink
	open    func(url string) error
}

// NewFileOutputWriter creates a writer reporting browser problems to sink.
// A nil sink discards them.
func NewFileOutputWriter(sink domain.NoticeSink) *FileOutputWriter {
	return &FileOutputWriter{notices: sink, open: OpenBrowser}
}

// Write implements domain.ReportWriter. Missing parent directories are
// created. A target that cannot be created, typically because another
// program holds it open, is reported as a resource error.
func (w *FileOutputWriter) Write(writer io.Writer, outputPath string, format domain.OutputFormat, noOpen bool, writeFunc func(io.Writer) error) error {
	if outputPath == "" {
		if err := writeFunc(writer); err != nil {
			return domain.NewOutputError("failed to write output", err)
		}
		return nil
	}

	if dir := filepath.Dir(outputPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return domain.NewResourceError(fmt.Sprintf("cannot create output directory %s", dir), err)
		}
	}
	if err := replaceFile(outputPath, writeFunc); err != nil {
		return err
	}

	if format == domain.OutputFormatHTML && !noOpen {
		absPath, err := filepath.Abs(outputPath)
		if err != nil {
			absPath = outputPath
		}
		if err := w.open("file://" + filepath.ToSlash(absPath)); err != nil && w.notices != nil {
			w.notices.Notify(domain.WarningNotice(fmt.Sprintf("Could not open browser: %v", err)))
		}
	}
	return nil
}

// replaceFile writes to a temporary file next to path and renames it over
// path, so a failed encode leaves any previous output intact
func replaceFile(path string, writeFunc func(io.Writer) error) error {
	locked := func(err error) error {
		return domain.NewResourceError(fmt.Sprintf("%s cannot be written; close it in any program holding it open and retry", path), err)
	}
	if _, err := os.Stat(path); err == nil {
		existing, err := os.OpenFile(path, os.O_WRONLY, 0)
		if err != nil {
			return locked(err)
		}
		existing.Close()
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return locked(err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if err := writeFunc(tmp); err != nil {
		tmp.Close()
		return domain.NewOutputError(fmt.Sprintf("failed to write %s", path), err)
	}
	if err := tmp.Close(); err != nil {
		return domain.NewResourceError(fmt.Sprintf("failed to finish writing %s", path), err)
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		return domain.NewResourceError(fmt.Sprintf("failed to finish writing %s", path), err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return locked(err)
	}
	return nil
}
