// Package export builds the xlsx register workbooks pulled by branch admins.
package export

import (
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// Sheet names inside a register workbook.
const (
	ReportsSheet = "Reports"
	OffersSheet  = "Offers"
)

// reportColumns defines the reports register header row (11 columns).
var reportColumns = []string{
	"Branch",
	"Title",
	"Status",
	"Customer",
	"Building",
	"Inspector",
	"Scheduled",
	"Inspected",
	"Condition Grade",
	"Findings",
	"Created",
}

// offerColumns defines the offers register header row (12 columns).
var offerColumns = []string{
	"Branch",
	"Title",
	"Status",
	"Customer",
	"Currency",
	"Subtotal",
	"VAT",
	"Total",
	"Valid Until",
	"Sent",
	"Decided",
	"Created",
}

// ReportRow is one line of the reports register, with ids already resolved
// to display names.
type ReportRow struct {
	Branch         string
	Title          string
	Status         string
	Customer       string
	Building       string
	Inspector      string
	ScheduledFor   *time.Time
	InspectedAt    *time.Time
	ConditionGrade *int
	FindingCount   int
	CreatedAt      time.Time
}

// OfferRow is one line of the offers register.
type OfferRow struct {
	Branch     string
	Title      string
	Status     string
	Customer   string
	Currency   string
	Subtotal   decimal.Decimal
	VATAmount  decimal.Decimal
	Total      decimal.Decimal
	ValidUntil *time.Time
	SentAt     *time.Time
	DecidedAt  *time.Time
	CreatedAt  time.Time
}

// Workbook assembles an xlsx register export. Dates and money are written
// as native cell types so the registers sort and filter cleanly in a
// spreadsheet.
type Workbook struct {
	f           *excelize.File
	headerStyle int
	dateStyle   int
	moneyStyle  int
	sheets      int
}

// NewWorkbook creates an empty workbook with the shared cell styles.
func NewWorkbook() (*Workbook, error) {
	f := excelize.NewFile()

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("header style: %w", err)
	}
	dateFmt := "yyyy-mm-dd"
	dateStyle, err := f.NewStyle(&excelize.Style{CustomNumFmt: &dateFmt})
	if err != nil {
		return nil, fmt.Errorf("date style: %w", err)
	}
	moneyStyle, err := f.NewStyle(&excelize.Style{NumFmt: 2})
	if err != nil {
		return nil, fmt.Errorf("money style: %w", err)
	}

	return &Workbook{
		f:           f,
		headerStyle: headerStyle,
		dateStyle:   dateStyle,
		moneyStyle:  moneyStyle,
	}, nil
}

// AddReportsSheet appends the reports register sheet.
func (w *Workbook) AddReportsSheet(rows []ReportRow) error {
	if err := w.addSheet(ReportsSheet); err != nil {
		return err
	}
	if err := w.f.SetColStyle(ReportsSheet, "G:H", w.dateStyle); err != nil {
		return err
	}
	if err := w.f.SetColStyle(ReportsSheet, "K", w.dateStyle); err != nil {
		return err
	}
	if err := w.f.SetColWidth(ReportsSheet, "A", "K", 18); err != nil {
		return err
	}
	if err := w.writeHeader(ReportsSheet, reportColumns); err != nil {
		return err
	}
	for i := range rows {
		r := &rows[i]
		cells := []any{
			r.Branch,
			r.Title,
			r.Status,
			r.Customer,
			r.Building,
			r.Inspector,
			cellTime(r.ScheduledFor),
			cellTime(r.InspectedAt),
			cellInt(r.ConditionGrade),
			r.FindingCount,
			r.CreatedAt,
		}
		if err := w.writeRow(ReportsSheet, i+2, cells); err != nil {
			return err
		}
	}
	return nil
}

// AddOffersSheet appends the offers register sheet.
func (w *Workbook) AddOffersSheet(rows []OfferRow) error {
	if err := w.addSheet(OffersSheet); err != nil {
		return err
	}
	if err := w.f.SetColStyle(OffersSheet, "F:H", w.moneyStyle); err != nil {
		return err
	}
	if err := w.f.SetColStyle(OffersSheet, "I:L", w.dateStyle); err != nil {
		return err
	}
	if err := w.f.SetColWidth(OffersSheet, "A", "L", 18); err != nil {
		return err
	}
	if err := w.writeHeader(OffersSheet, offerColumns); err != nil {
		return err
	}
	for i := range rows {
		r := &rows[i]
		cells := []any{
			r.Branch,
			r.Title,
			r.Status,
			r.Customer,
			r.Currency,
			r.Subtotal.InexactFloat64(),
			r.VATAmount.InexactFloat64(),
			r.Total.InexactFloat64(),
			cellTime(r.ValidUntil),
			cellTime(r.SentAt),
			cellTime(r.DecidedAt),
			r.CreatedAt,
		}
		if err := w.writeRow(OffersSheet, i+2, cells); err != nil {
			return err
		}
	}
	return nil
}

// WriteTo streams the finished workbook.
func (w *Workbook) WriteTo(out io.Writer) (int64, error) {
	return w.f.WriteTo(out)
}

// Close releases the workbook buffers.
func (w *Workbook) Close() error {
	return w.f.Close()
}

// addSheet renames the default sheet on first use and appends afterwards.
func (w *Workbook) addSheet(name string) error {
	if w.sheets == 0 {
		if err := w.f.SetSheetName("Sheet1", name); err != nil {
			return err
		}
	} else if _, err := w.f.NewSheet(name); err != nil {
		return err
	}
	w.sheets++
	return nil
}

func (w *Workbook) writeHeader(sheet string, columns []string) error {
	for i, title := range columns {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := w.f.SetCellValue(sheet, cell, title); err != nil {
			return err
		}
		if err := w.f.SetCellStyle(sheet, cell, cell, w.headerStyle); err != nil {
			return err
		}
	}
	return nil
}

// writeRow fills one data row. Nil cells stay empty.
func (w *Workbook) writeRow(sheet string, rowNo int, cells []any) error {
	for i, v := range cells {
		if v == nil {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(i+1, rowNo)
		if err != nil {
			return err
		}
		if err := w.f.SetCellValue(sheet, cell, v); err != nil {
			return err
		}
	}
	return nil
}

func cellTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}

func cellInt(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}

// nonAlphanumeric matches characters that are not alphanumeric, hyphen, or underscore.
var nonAlphanumeric = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

// multiUnderscore matches consecutive underscores.
var multiUnderscore = regexp.MustCompile(`_{2,}`)

// SanitizeFilename cleans a register or branch name for use in
// Content-Disposition. Replaces non-alphanumeric chars (except - _) with _,
// collapses consecutive underscores, and truncates to 100 chars.
func SanitizeFilename(name string) string {
	s := nonAlphanumeric.ReplaceAllString(name, "_")
	s = multiUnderscore.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")
	if len(s) > 100 {
		s = s[:100]
	}
	return s
}

// BuildFilename returns a sanitized filename for the Content-Disposition
// header. Format: {sanitized_name}_{YYYY-MM-DD}.xlsx
func BuildFilename(name string) string {
	sanitized := SanitizeFilename(name)
	date := time.Now().Format("2006-01-02")
	return fmt.Sprintf("%s_%s.xlsx", sanitized, date)
}
