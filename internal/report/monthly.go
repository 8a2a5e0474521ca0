// Package report exports punch outcomes as Excel workbooks.
package report

import (
	"context"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/garyjia/hrone-autopunch/internal/application/port"
	"github.com/garyjia/hrone-autopunch/internal/domain/entity"
)

const (
	sheetOutcomes = "Outcomes"
	sheetSummary  = "Summary"
)

var outcomeHeader = []interface{}{"Time", "Tick", "Account", "Username", "Outcome", "Stage", "Reason", "Direction", "Punch Time"}

var summaryHeader = []interface{}{"Account", "Username", "Punched", "Skipped", "Failed"}

// MonthlyReport builds a workbook of every outcome recorded in one month
type MonthlyReport struct {
	ticks    port.TickRepository
	location *time.Location
	logger   *zap.Logger
}

// NewMonthlyReport creates a monthly report generator. Month boundaries are taken in loc.
func NewMonthlyReport(ticks port.TickRepository, loc *time.Location, logger *zap.Logger) *MonthlyReport {
	if loc == nil {
		loc = time.UTC
	}
	return &MonthlyReport{
		ticks:    ticks,
		location: loc,
		logger:   logger,
	}
}

// Build returns the workbook for year/month. The caller must Close it.
func (r *MonthlyReport) Build(ctx context.Context, year int, month time.Month) (*excelize.File, error) {
	if month < time.January || month > time.December {
		return nil, fmt.Errorf("invalid month %d", month)
	}

	from := time.Date(year, month, 1, 0, 0, 0, 0, r.location)
	to := from.AddDate(0, 1, 0)

	outcomes, err := r.ticks.ListOutcomes(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("list outcomes: %w", err)
	}

	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", sheetOutcomes); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to rename sheet: %w", err)
	}
	if _, err := f.NewSheet(sheetSummary); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create summary sheet: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	if err := r.fillOutcomes(f, outcomes, bold); err != nil {
		f.Close()
		return nil, err
	}
	if err := r.fillSummary(f, outcomes, bold); err != nil {
		f.Close()
		return nil, err
	}

	r.logger.Info("Monthly report built",
		zap.Int("year", year),
		zap.Int("month", int(month)),
		zap.Int("outcomes", len(outcomes)))

	return f, nil
}

// Write builds the workbook for year/month and writes it to w as xlsx
func (r *MonthlyReport) Write(ctx context.Context, w io.Writer, year int, month time.Month) error {
	f, err := r.Build(ctx, year, month)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func (r *MonthlyReport) fillOutcomes(f *excelize.File, outcomes []*entity.PunchOutcome, headerStyle int) error {
	if err := writeRow(f, sheetOutcomes, 1, outcomeHeader); err != nil {
		return err
	}
	if err := f.SetRowStyle(sheetOutcomes, 1, 1, headerStyle); err != nil {
		return fmt.Errorf("failed to style header: %w", err)
	}

	for i, o := range outcomes {
		row := []interface{}{
			o.CreatedAt.In(r.location).Format("2006-01-02 15:04"),
			o.TickID,
			o.AccountID,
			o.Username,
			o.Outcome,
			o.Stage,
			o.Reason,
			o.Direction,
			o.PunchTime,
		}
		if err := writeRow(f, sheetOutcomes, i+2, row); err != nil {
			return err
		}
	}

	return f.SetColWidth(sheetOutcomes, "A", "I", 18)
}

type accountTotals struct {
	accountID int64
	username  string
	punched   int
	skipped   int
	failed    int
}

func (r *MonthlyReport) fillSummary(f *excelize.File, outcomes []*entity.PunchOutcome, headerStyle int) error {
	totals := make(map[int64]*accountTotals)
	for _, o := range outcomes {
		t, ok := totals[o.AccountID]
		if !ok {
			t = &accountTotals{accountID: o.AccountID, username: o.Username}
			totals[o.AccountID] = t
		}
		switch o.Outcome {
		case entity.OutcomePunched:
			t.punched++
		case entity.OutcomeSkipped:
			t.skipped++
		case entity.OutcomeFailed:
			t.failed++
		}
	}

	rows := make([]*accountTotals, 0, len(totals))
	for _, t := range totals {
		rows = append(rows, t)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].accountID < rows[j].accountID })

	if err := writeRow(f, sheetSummary, 1, summaryHeader); err != nil {
		return err
	}
	if err := f.SetRowStyle(sheetSummary, 1, 1, headerStyle); err != nil {
		return fmt.Errorf("failed to style header: %w", err)
	}

	for i, t := range rows {
		if err := writeRow(f, sheetSummary, i+2, []interface{}{t.accountID, t.username, t.punched, t.skipped, t.failed}); err != nil {
			return err
		}
	}

	return nil
}

func writeRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("failed to write row %d of %s: %w", row, sheet, err)
	}
	return nil
}
