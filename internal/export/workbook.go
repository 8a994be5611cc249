package export

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/forestar-be/forestar-facturation/internal/view"
)

// Sheet names of the exported workbook.
const (
	DataSheet = "Correspondances"
	InfoSheet = "Informations Export"
)

// Meta describes the view an export was taken from.
type Meta struct {
	ReconciliationID   string
	ReconciliationName string
	// ReferenceDate is the reconciliation's own date. It names the file.
	ReferenceDate time.Time
	SearchTerm    string
	Filters       []view.FilterType
	Sort          view.SortConfig
	// ExportedAt defaults to the current time.
	ExportedAt time.Time
	// Location renders dates; UTC when nil.
	Location *time.Location
}

// HasActiveFilters reports whether a search term or a filter was active.
func (m Meta) HasActiveFilters() bool {
	return m.SearchTerm != "" || len(m.Filters) > 0
}

func (m Meta) location() *time.Location {
	if m.Location == nil {
		return time.UTC
	}
	return m.Location
}

// InfoRows are the property/value pairs of the metadata sheet.
func (m Meta) InfoRows(total int) [][2]string {
	exportedAt := m.ExportedAt
	if exportedAt.IsZero() {
		exportedAt = time.Now()
	}

	search := m.SearchTerm
	if search == "" {
		search = "Aucun"
	}
	filters := "Aucun"
	if len(m.Filters) > 0 {
		names := make([]string, len(m.Filters))
		for i, f := range m.Filters {
			names[i] = string(f)
		}
		filters = strings.Join(names, ", ")
	}
	sort := "Aucun"
	if m.Sort.Field != view.SortDefault {
		sort = fmt.Sprintf("%s (%s)", m.Sort.Field, m.Sort.Direction)
	}

	return [][2]string{
		{"ID Réconciliation", m.ReconciliationID},
		{"Nom", m.ReconciliationName},
		{"Date d'export", exportedAt.In(m.location()).Format("02/01/2006 15:04:05")},
		{"Nombre total d'éléments", fmt.Sprintf("%d", total)},
		{"Terme de recherche", search},
		{"Filtres appliqués", filters},
		{"Tri appliqué", sort},
	}
}

// FileName is Réconciliation_<DD-MM-YYYY>_<HHhMM>[_avec_filtres].xlsx, dated
// from the reconciliation's reference date.
func FileName(m Meta) string {
	ref := m.ReferenceDate
	if ref.IsZero() {
		ref = time.Now()
	}
	ref = ref.In(m.location())

	suffix := ""
	if m.HasActiveFilters() {
		suffix = "_avec_filtres"
	}
	return fmt.Sprintf("Réconciliation_%s_%s%s.xlsx", ref.Format("02-01-2006"), ref.Format("15h04"), suffix)
}

// Write renders items as an xlsx document to w.
func Write(w io.Writer, items []view.DisplayItem, meta Meta) error {
	const op = "Write"

	f, err := build(BuildRows(items), meta)
	if err != nil {
		return newExportError(op, fmt.Errorf("%w: %w", ErrWorkbook, err), "")
	}
	defer f.Close()

	if err := f.Write(w); err != nil {
		return newExportError(op, err, "writing document")
	}
	return nil
}

// Snapshot renders items as xlsx bytes.
func Snapshot(items []view.DisplayItem, meta Meta) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(&buf, items, meta); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func build(rows []Row, meta Meta) (*excelize.File, error) {
	f := excelize.NewFile()

	if err := f.SetSheetName("Sheet1", DataSheet); err != nil {
		f.Close()
		return nil, err
	}
	if err := writeDataSheet(f, rows); err != nil {
		f.Close()
		return nil, err
	}
	if _, err := f.NewSheet(InfoSheet); err != nil {
		f.Close()
		return nil, err
	}
	if err := writeInfoSheet(f, meta.InfoRows(len(rows))); err != nil {
		f.Close()
		return nil, err
	}
	f.SetActiveSheet(0)
	return f, nil
}

func writeDataSheet(f *excelize.File, rows []Row) error {
	header := make([]interface{}, len(Headers))
	for i, h := range Headers {
		header[i] = h
	}
	if err := f.SetSheetRow(DataSheet, "A1", &header); err != nil {
		return err
	}
	if err := styleHeader(f, DataSheet, len(Headers)); err != nil {
		return err
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := row.Values()
		if err := f.SetSheetRow(DataSheet, cell, &values); err != nil {
			return err
		}
	}

	return setWidths(f, DataSheet, columnWidths)
}

func writeInfoSheet(f *excelize.File, info [][2]string) error {
	if err := f.SetSheetRow(InfoSheet, "A1", &[]interface{}{"Propriété", "Valeur"}); err != nil {
		return err
	}
	if err := styleHeader(f, InfoSheet, 2); err != nil {
		return err
	}
	for i, kv := range info {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(InfoSheet, cell, &[]interface{}{kv[0], kv[1]}); err != nil {
			return err
		}
	}
	return setWidths(f, InfoSheet, []float64{25, 50})
}

func styleHeader(f *excelize.File, sheet string, columns int) error {
	style, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6E6E6"}, Pattern: 1},
	})
	if err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(columns, 1)
	if err != nil {
		return err
	}
	return f.SetCellStyle(sheet, "A1", last, style)
}

func setWidths(f *excelize.File, sheet string, widths []float64) error {
	for i, w := range widths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(sheet, col, col, w); err != nil {
			return err
		}
	}
	return nil
}
