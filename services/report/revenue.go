// Package reportsvc renders reports as spreadsheets.
package reportsvc

import (
	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"

	"github.com/trezcool/schoolops/core/tuition"
)

const (
	SummarySheet = "Tổng hợp"
	DetailSheet  = "Chi tiết"

	XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	moneyFormat = `#,##0 "₫"`
	timeLayout  = "02/01/2006 15:04"
)

var DetailHeader = []string{"Mã HS", "Họ tên", "Lớp", "Số tiền", "Trạng thái", "Ngày thanh toán", "Mã học phí"}

// RevenueFilename is the download name of the revenue workbook of month.
func RevenueFilename(month string) string { return "doanh-thu-" + month + ".xlsx" }

type sheetWriter struct {
	f     *excelize.File
	sheet string
	row   int
}

func (w *sheetWriter) writeRow(values ...interface{}) error {
	w.row++
	cell, err := excelize.CoordinatesToCellName(1, w.row)
	if err != nil {
		return err
	}
	return w.f.SetSheetRow(w.sheet, cell, &values)
}

func (w *sheetWriter) style(styleID int, cols int) error {
	last, err := excelize.CoordinatesToCellName(cols, w.row)
	if err != nil {
		return err
	}
	first, _ := excelize.CoordinatesToCellName(1, w.row)
	return w.f.SetCellStyle(w.sheet, first, last, styleID)
}

// RevenueWorkbook renders rep as an xlsx workbook: a summary sheet & one line per tuition.
func RevenueWorkbook(rep tuition.RevenueReport) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SummarySheet); err != nil {
		return nil, errors.Wrap(err, "renaming summary sheet")
	}
	if _, err := f.NewSheet(DetailSheet); err != nil {
		return nil, errors.Wrap(err, "creating detail sheet")
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6F3FF"}, Pattern: 1},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, errors.Wrap(err, "creating header style")
	}
	moneyStyle, err := f.NewStyle(&excelize.Style{CustomNumFmt: strPtr(moneyFormat)})
	if err != nil {
		return nil, errors.Wrap(err, "creating money style")
	}

	if err = f.SetColStyle(SummarySheet, "C", moneyStyle); err != nil {
		return nil, errors.Wrap(err, "styling summary sheet")
	}
	if err = f.SetColStyle(DetailSheet, "D", moneyStyle); err != nil {
		return nil, errors.Wrap(err, "styling detail sheet")
	}

	if err = writeSummary(f, rep, headerStyle); err != nil {
		return nil, errors.Wrap(err, "writing summary sheet")
	}
	if err = writeDetail(f, rep, headerStyle); err != nil {
		return nil, errors.Wrap(err, "writing detail sheet")
	}

	f.SetActiveSheet(0)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, errors.Wrap(err, "writing workbook")
	}
	return buf.Bytes(), nil
}

func writeSummary(f *excelize.File, rep tuition.RevenueReport, headerStyle int) error {
	w := &sheetWriter{f: f, sheet: SummarySheet}

	rows := [][]interface{}{
		{"Tháng", rep.Month},
		{"Số học phí", rep.Count},
		{"Tổng", "", rep.Total},
		{"Đã thu", "", rep.Collected},
		{"Còn lại", "", rep.Outstanding},
		{},
	}
	for _, r := range rows {
		if err := w.writeRow(r...); err != nil {
			return err
		}
	}

	if err := w.writeRow("Trạng thái", "Số lượng", "Số tiền"); err != nil {
		return err
	}
	if err := w.style(headerStyle, 3); err != nil {
		return err
	}
	for _, st := range rep.ByStatus {
		if err := w.writeRow(st.Status, st.Count, st.Amount); err != nil {
			return err
		}
	}

	if err := w.writeRow(); err != nil {
		return err
	}
	if err := w.writeRow("Khoản thu", "Số lượng", "Số tiền"); err != nil {
		return err
	}
	if err := w.style(headerStyle, 3); err != nil {
		return err
	}
	for _, it := range rep.Items {
		if err := w.writeRow(it.Name, it.Count, it.Amount); err != nil {
			return err
		}
	}
	return f.SetColWidth(SummarySheet, "A", "C", 20)
}

func writeDetail(f *excelize.File, rep tuition.RevenueReport, headerStyle int) error {
	w := &sheetWriter{f: f, sheet: DetailSheet}

	header := make([]interface{}, len(DetailHeader))
	for i, h := range DetailHeader {
		header[i] = h
	}
	if err := w.writeRow(header...); err != nil {
		return err
	}
	if err := w.style(headerStyle, len(DetailHeader)); err != nil {
		return err
	}

	for _, l := range rep.Lines {
		paidAt := ""
		if l.PaidAt != nil {
			paidAt = l.PaidAt.Format(timeLayout)
		}
		if err := w.writeRow(l.StudentCode, l.StudentName, l.ClassName, l.Amount, l.Status, paidAt, l.TuitionID); err != nil {
			return err
		}
	}

	widths := []float64{12, 28, 12, 16, 18, 18, 38}
	for i, wd := range widths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err = f.SetColWidth(DetailSheet, col, col, wd); err != nil {
			return err
		}
	}
	return nil
}

func strPtr(s string) *string { return &s }
