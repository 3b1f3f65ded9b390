package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/harunari/meisai/internal/model"
)

// Validation errors.
var (
	ErrNilContext      = errors.New("context cannot be nil")
	ErrEmptyString     = errors.New("string parameter cannot be empty")
	ErrNilParameter    = errors.New("parameter cannot be nil")
	ErrInvalidAnalysis = errors.New("invalid analysis result")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateAnalysis validates an analysis result before persisting it.
func validateAnalysis(result *model.AnalysisResult) error {
	if result == nil {
		return fmt.Errorf("%w: result", ErrNilParameter)
	}
	if strings.TrimSpace(result.ID) == "" {
		return fmt.Errorf("%w: missing ID", ErrInvalidAnalysis)
	}
	if !result.Carrier.Valid() {
		return fmt.Errorf("%w: unknown carrier %q", ErrInvalidAnalysis, result.Carrier)
	}
	if result.Confidence < 0 || result.Confidence > 1 {
		return fmt.Errorf("%w: confidence must be between 0 and 1", ErrInvalidAnalysis)
	}
	if result.AnalyzedAt.IsZero() {
		return fmt.Errorf("%w: missing analyzed_at timestamp", ErrInvalidAnalysis)
	}
	for i := range result.BillLines {
		if err := result.BillLines[i].Validate(); err != nil {
			return fmt.Errorf("bill line at index %d: %w", i, err)
		}
	}
	return nil
}
