package service

import (
	"path/filepath"
	"strings"

	"github.com/ieg-tools/projcodes/domain"
)

// OutputFormatResolver picks the format of a saved report or chart
type OutputFormatResolver struct {
	fallback domain.OutputFormat
}

// NewOutputFormatResolver creates a resolver falling back to the given format
func NewOutputFormatResolver(fallback domain.OutputFormat) *OutputFormatResolver {
	return &OutputFormatResolver{fallback: fallback}
}

// Determine returns the explicitly named format, else the format implied by
// the extension of path, else the fallback. The returned path always carries
// the extension of the chosen format.
func (r *OutputFormatResolver) Determine(name, path string) (domain.OutputFormat, string, error) {
	if name != "" {
		format, err := domain.ParseOutputFormat(strings.ToLower(name))
		if err != nil {
			return "", "", err
		}
		return format, withExtension(path, format), nil
	}

	if ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), "."); ext != "" {
		if ext == "txt" {
			return domain.OutputFormatText, path, nil
		}
		if ext == "yml" {
			return domain.OutputFormatYAML, path, nil
		}
		if format, err := domain.ParseOutputFormat(ext); err == nil {
			return format, path, nil
		}
	}
	return r.fallback, withExtension(path, r.fallback), nil
}

func withExtension(path string, format domain.OutputFormat) string {
	if path == "" {
		return ""
	}
	want := "." + format.Extension()
	if strings.EqualFold(filepath.Ext(path), want) {
		return path
	}
	return path + want
}
