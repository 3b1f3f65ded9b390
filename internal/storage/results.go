package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/harunari/meisai/internal/common"
	"github.com/harunari/meisai/internal/model"
	"github.com/harunari/meisai/internal/service"
	"github.com/shopspring/decimal"
)

// SaveAnalysis persists an analysis result with its bill lines and details.
func (s *SQLiteStorage) SaveAnalysis(ctx context.Context, result *model.AnalysisResult) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateAnalysis(result); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO analyses (
			id, carrier, line_cost, total_cost, terminal_cost,
			subtotal, tax_amount, total_amount, summary_line_cost,
			confidence, reliable, method, analyzed_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		result.ID,
		string(result.Carrier),
		result.LineCost.String(),
		result.TotalCost.String(),
		result.TerminalCost.String(),
		result.Summary.Subtotal.String(),
		result.Summary.TaxAmount.String(),
		result.Summary.TotalAmount.String(),
		result.Summary.LineCost.String(),
		result.Confidence,
		result.Reliable,
		result.Method,
		result.AnalyzedAt,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return fmt.Errorf("%w: analysis %s", common.ErrDuplicateEntry, result.ID)
		}
		return fmt.Errorf("failed to insert analysis: %w", err)
	}

	lineStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO analysis_lines (
			analysis_id, position, label, amount,
			tax_category, bill_category, confidence, raw_text
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare line statement: %w", err)
	}
	defer func() { _ = lineStmt.Close() }()

	for i, line := range result.BillLines {
		if _, err := lineStmt.ExecContext(ctx,
			result.ID,
			i,
			line.Label,
			line.Amount.String(),
			string(line.TaxCategory),
			string(line.BillCategory),
			line.Confidence,
			line.RawText,
		); err != nil {
			return fmt.Errorf("failed to insert bill line %d: %w", i, err)
		}
	}

	detailStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO analysis_details (analysis_id, position, detail) VALUES (?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare detail statement: %w", err)
	}
	defer func() { _ = detailStmt.Close() }()

	for i, detail := range result.AnalysisDetails {
		if _, err := detailStmt.ExecContext(ctx, result.ID, i, detail); err != nil {
			return fmt.Errorf("failed to insert analysis detail %d: %w", i, err)
		}
	}

	return tx.Commit()
}

// GetAnalysis loads a single analysis result by ID, including its bill lines
// and details. Returns common.ErrNotFound when no analysis has that ID.
func (s *SQLiteStorage) GetAnalysis(ctx context.Context, id string) (*model.AnalysisResult, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT id, carrier, line_cost, total_cost, terminal_cost,
		       subtotal, tax_amount, total_amount, summary_line_cost,
		       confidence, reliable, method, analyzed_at
		FROM analyses WHERE id = ?
	`, id)

	result, err := scanAnalysis(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%w: analysis %s", common.ErrNotFound, id)
		}
		return nil, err
	}

	if err := s.loadBillLines(ctx, result); err != nil {
		return nil, err
	}
	if err := s.loadDetails(ctx, result); err != nil {
		return nil, err
	}

	return result, nil
}

// ListAnalyses returns stored analyses matching the filter, newest first.
// Bill lines and details are not loaded; use GetAnalysis for the full record.
func (s *SQLiteStorage) ListAnalyses(ctx context.Context, filter service.AnalysisFilter) ([]model.AnalysisResult, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	query := `
		SELECT id, carrier, line_cost, total_cost, terminal_cost,
		       subtotal, tax_amount, total_amount, summary_line_cost,
		       confidence, reliable, method, analyzed_at
		FROM analyses WHERE 1=1
	`
	args := []any{}

	if filter.Carrier != "" {
		query += " AND carrier = ?"
		args = append(args, string(filter.Carrier))
	}
	if filter.OnlyReliable {
		query += " AND reliable = 1"
	}
	if filter.Since != nil {
		query += " AND analyzed_at >= ?"
		args = append(args, *filter.Since)
	}

	query += " ORDER BY analyzed_at DESC"

	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
		if filter.Offset > 0 {
			query += " OFFSET ?"
			args = append(args, filter.Offset)
		}
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query analyses: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []model.AnalysisResult
	for rows.Next() {
		result, scanErr := scanAnalysis(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		results = append(results, *result)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate analyses: %w", err)
	}

	return results, nil
}

// DeleteAnalysis removes an analysis and its dependent rows.
func (s *SQLiteStorage) DeleteAnalysis(ctx context.Context, id string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(id, "id"); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	// Foreign keys are not enforced by default, so delete dependents first.
	for _, table := range []string{"analysis_lines", "analysis_details"} {
		if _, err := tx.ExecContext(ctx,
			fmt.Sprintf("DELETE FROM %s WHERE analysis_id = ?", table), id); err != nil {
			return fmt.Errorf("failed to delete from %s: %w", table, err)
		}
	}

	res, err := tx.ExecContext(ctx, "DELETE FROM analyses WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete analysis: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: analysis %s", common.ErrNotFound, id)
	}

	return tx.Commit()
}

// GetUsageStats aggregates the stored analysis history.
func (s *SQLiteStorage) GetUsageStats(ctx context.Context) (*service.UsageStats, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	stats := &service.UsageStats{}

	var avgConfidence sql.NullFloat64
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(SUM(reliable), 0), AVG(confidence) FROM analyses
	`).Scan(&stats.TotalAnalyses, &stats.ReliableCount, &avgConfidence)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate analyses: %w", err)
	}
	if avgConfidence.Valid {
		stats.AvgConfidence = avgConfidence.Float64
	}

	// MIN/MAX over a DATETIME column loses the declared type, so the driver
	// cannot convert the result back to time.Time. Query the column directly.
	if stats.TotalAnalyses > 0 {
		var oldest, latest time.Time
		if err := s.db.QueryRowContext(ctx,
			`SELECT analyzed_at FROM analyses ORDER BY analyzed_at ASC LIMIT 1`).Scan(&oldest); err != nil {
			return nil, fmt.Errorf("failed to read oldest analysis: %w", err)
		}
		if err := s.db.QueryRowContext(ctx,
			`SELECT analyzed_at FROM analyses ORDER BY analyzed_at DESC LIMIT 1`).Scan(&latest); err != nil {
			return nil, fmt.Errorf("failed to read latest analysis: %w", err)
		}
		stats.OldestAnalyzed = &oldest
		stats.LatestAnalyzed = &latest
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT carrier,
		       COUNT(*),
		       COALESCE(SUM(reliable), 0),
		       AVG(confidence),
		       AVG(CAST(line_cost AS REAL))
		FROM analyses
		GROUP BY carrier
		ORDER BY COUNT(*) DESC, carrier
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate carriers: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var cs service.CarrierStats
		var carrier string
		var avgConf, avgCost sql.NullFloat64
		if err := rows.Scan(&carrier, &cs.Count, &cs.ReliableCount, &avgConf, &avgCost); err != nil {
			return nil, fmt.Errorf("failed to scan carrier stats: %w", err)
		}
		cs.Carrier = model.Carrier(carrier)
		if avgConf.Valid {
			cs.AvgConfidence = avgConf.Float64
		}
		if avgCost.Valid {
			cs.AvgLineCostYen = avgCost.Float64
		}
		stats.ByCarrier = append(stats.ByCarrier, cs)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate carrier stats: %w", err)
	}

	return stats, nil
}

// scanner abstracts sql.Row and sql.Rows for scanAnalysis.
type scanner interface {
	Scan(dest ...any) error
}

func scanAnalysis(row scanner) (*model.AnalysisResult, error) {
	var result model.AnalysisResult
	var carrier, lineCost, totalCost, terminalCost string
	var subtotal, taxAmount, totalAmount, summaryLineCost string
	var analyzedAt time.Time

	err := row.Scan(
		&result.ID,
		&carrier,
		&lineCost,
		&totalCost,
		&terminalCost,
		&subtotal,
		&taxAmount,
		&totalAmount,
		&summaryLineCost,
		&result.Confidence,
		&result.Reliable,
		&result.Method,
		&analyzedAt,
	)
	if err != nil {
		return nil, err
	}

	result.Carrier = model.Carrier(carrier)
	result.AnalyzedAt = analyzedAt

	fields := []struct {
		dst  *decimal.Decimal
		raw  string
		name string
	}{
		{&result.LineCost, lineCost, "line_cost"},
		{&result.TotalCost, totalCost, "total_cost"},
		{&result.TerminalCost, terminalCost, "terminal_cost"},
		{&result.Summary.Subtotal, subtotal, "subtotal"},
		{&result.Summary.TaxAmount, taxAmount, "tax_amount"},
		{&result.Summary.TotalAmount, totalAmount, "total_amount"},
		{&result.Summary.LineCost, summaryLineCost, "summary_line_cost"},
	}
	for _, f := range fields {
		d, parseErr := decimal.NewFromString(f.raw)
		if parseErr != nil {
			return nil, fmt.Errorf("%w: corrupt %s value %q", common.ErrDatabaseCorrupted, f.name, f.raw)
		}
		*f.dst = d
	}

	return &result, nil
}

func (s *SQLiteStorage) loadBillLines(ctx context.Context, result *model.AnalysisResult) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT label, amount, tax_category, bill_category, confidence, raw_text
		FROM analysis_lines WHERE analysis_id = ? ORDER BY position
	`, result.ID)
	if err != nil {
		return fmt.Errorf("failed to query bill lines: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var line model.BillLine
		var amount, taxCategory, billCategory string
		if err := rows.Scan(&line.Label, &amount, &taxCategory, &billCategory,
			&line.Confidence, &line.RawText); err != nil {
			return fmt.Errorf("failed to scan bill line: %w", err)
		}
		d, parseErr := decimal.NewFromString(amount)
		if parseErr != nil {
			return fmt.Errorf("%w: corrupt line amount %q", common.ErrDatabaseCorrupted, amount)
		}
		line.Amount = d
		line.TaxCategory = model.TaxCategory(taxCategory)
		line.BillCategory = model.BillCategory(billCategory)
		result.BillLines = append(result.BillLines, line)
	}
	return rows.Err()
}

func (s *SQLiteStorage) loadDetails(ctx context.Context, result *model.AnalysisResult) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT detail FROM analysis_details WHERE analysis_id = ? ORDER BY position
	`, result.ID)
	if err != nil {
		return fmt.Errorf("failed to query analysis details: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var detail string
		if err := rows.Scan(&detail); err != nil {
			return fmt.Errorf("failed to scan analysis detail: %w", err)
		}
		result.AnalysisDetails = append(result.AnalysisDetails, detail)
	}
	return rows.Err()
}
