// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"time"

	"github.com/harunari/meisai/internal/model"
)

// AnalysisFilter defines filtering options for stored analysis queries.
type AnalysisFilter struct {
	Carrier      model.Carrier
	OnlyReliable bool
	Since        *time.Time
	Limit        int
	Offset       int
}

// CarrierStats aggregates the stored analyses for one carrier.
type CarrierStats struct {
	Carrier        model.Carrier
	Count          int
	ReliableCount  int
	AvgConfidence  float64
	AvgLineCostYen float64
}

// UsageStats summarizes the analysis history.
type UsageStats struct {
	TotalAnalyses  int
	ReliableCount  int
	AvgConfidence  float64
	ByCarrier      []CarrierStats
	OldestAnalyzed *time.Time
	LatestAnalyzed *time.Time
}

// Storage defines the contract for the analysis-history persistence layer.
type Storage interface {
	// Analysis operations
	SaveAnalysis(ctx context.Context, result *model.AnalysisResult) error
	GetAnalysis(ctx context.Context, id string) (*model.AnalysisResult, error)
	ListAnalyses(ctx context.Context, filter AnalysisFilter) ([]model.AnalysisResult, error)
	DeleteAnalysis(ctx context.Context, id string) error

	// Aggregates
	GetUsageStats(ctx context.Context) (*UsageStats, error)

	Close() error
}
