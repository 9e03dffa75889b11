package service

import (
	"strings"

	"github.com/ieg-tools/projcodes/domain"
)

// ErrorCategorizerImpl implements the ErrorCategorizer interface
type ErrorCategorizerImpl struct {
	byCode   map[string]domain.ErrorCategory
	patterns []categoryPatterns
}

type categoryPatterns struct {
	category domain.ErrorCategory
	patterns []string
}

// NewErrorCategorizer creates a new error categorizer
func NewErrorCategorizer() domain.ErrorCategorizer {
	return &ErrorCategorizerImpl{
		byCode: map[string]domain.ErrorCategory{
			domain.ErrCodeValidation:        domain.ErrorCategoryInput,
			domain.ErrCodeRange:             domain.ErrorCategoryInput,
			domain.ErrCodeMissingColumn:     domain.ErrorCategoryInput,
			domain.ErrCodeUnsupportedFormat: domain.ErrorCategoryInput,
			domain.ErrCodeState:             domain.ErrorCategoryState,
			domain.ErrCodeFileNotFound:      domain.ErrorCategoryConfig,
			domain.ErrCodeConfigError:       domain.ErrorCategoryConfig,
			domain.ErrCodeLoadError:         domain.ErrorCategoryProcessing,
			domain.ErrCodeResource:          domain.ErrorCategoryOutput,
			domain.ErrCodeOutputError:       domain.ErrorCategoryOutput,
		},
		patterns: initializeErrorPatterns(),
	}
}

// initializeErrorPatterns covers errors raised outside the domain layer, such
// as flag parsing; checked in order
func initializeErrorPatterns() []categoryPatterns {
	return []categoryPatterns{
		{domain.ErrorCategoryInput, []string{"unknown flag", "invalid argument", "flag needs an argument", "accepts", "required flag"}},
		{domain.ErrorCategoryConfig, []string{"config", "toml", "environment"}},
		{domain.ErrorCategoryProcessing, []string{"timed out", "deadline", "context canceled", "xlsx", "sheet"}},
		{domain.ErrorCategoryOutput, []string{"permission denied", "cannot create", "write"}},
	}
}

// Categorize determines the category of an error, preferring its domain code
func (ec *ErrorCategorizerImpl) Categorize(err error) *domain.CategorizedError {
	if err == nil {
		return nil
	}

	if category, ok := ec.byCode[domain.ErrorCode(err)]; ok {
		return &domain.CategorizedError{Category: category, Message: categoryMessage(category), Original: err}
	}

	errMsg := strings.ToLower(err.Error())
	for _, cp := range ec.patterns {
		if containsAnyPattern(errMsg, cp.patterns) {
			return &domain.CategorizedError{Category: cp.category, Message: categoryMessage(cp.category), Original: err}
		}
	}

	return &domain.CategorizedError{
		Category: domain.ErrorCategoryUnknown,
		Message:  err.Error(),
		Original: err,
	}
}

// GetRecoverySuggestions returns recovery suggestions for an error category
func (ec *ErrorCategorizerImpl) GetRecoverySuggestions(category domain.ErrorCategory) []string {
	switch category {
	case domain.ErrorCategoryInput:
		return []string{
			"Check the codes, project ids and filter values passed on the command line",
			"Run: projcodes info --scheme <scheme> to list the values present in the data",
		}
	case domain.ErrorCategoryState:
		return []string{
			"Load the data before querying it",
			"Run a projects or codes query before saving or plotting",
		}
	case domain.ErrorCategoryConfig:
		return []string{
			"Check source.directory and source.pattern in .projcodes.toml",
			"Try: projcodes init to generate a config file",
			"Set PROJCODES_SOURCE_PATH to point at the export workbook directly",
		}
	case domain.ErrorCategoryProcessing:
		return []string{
			"Check that the workbook is a complete export with the expected sheets",
			"Re-download the export if the file may be truncated",
		}
	case domain.ErrorCategoryOutput:
		return []string{
			"Close the output file if it is open in another program",
			"Ensure the output directory is writable",
		}
	default:
		return []string{
			"Run with --log-level debug for detailed information",
			"Report the issue if it persists",
		}
	}
}

func categoryMessage(category domain.ErrorCategory) string {
	switch category {
	case domain.ErrorCategoryInput:
		return "Invalid query arguments"
	case domain.ErrorCategoryState:
		return "Operation invoked out of sequence"
	case domain.ErrorCategoryConfig:
		return "Configuration or data source error"
	case domain.ErrorCategoryProcessing:
		return "Failed to read classification data"
	case domain.ErrorCategoryOutput:
		return "Failed to write output"
	default:
		return "An unexpected error occurred"
	}
}

// containsAnyPattern checks if a string contains any of the given patterns
func containsAnyPattern(str string, patterns []string) bool {
	for _, pattern := range patterns {
		if strings.Contains(str, pattern) {
			return true
		}
	}
	return false
}
