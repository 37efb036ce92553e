// Package export produces admin-facing snapshots of the booking list:
// an xlsx workbook on demand and an optional Google Sheets mirror.
package export

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"slotbot/internal/models"
	"slotbot/internal/worker"

	"github.com/xuri/excelize/v2"
)

const sheetName = "Записи"

// ToExcel writes all bookings into an xlsx file under dir and returns
// the file path. Bookings are written in the order given (days
// ascending, insertion order within a day).
func ToExcel(dir string, bookings []models.Appointment) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create export directory: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return "", fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(index)

	for col, title := range headerRow() {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		_ = f.SetCellValue(sheetName, cell, title)
	}
	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	_ = f.SetCellStyle(sheetName, "A1", "D1", headerStyle)

	for i, row := range BookingRows(bookings) {
		for col, val := range row {
			cell, _ := excelize.CoordinatesToCellName(col+1, i+2)
			_ = f.SetCellValue(sheetName, cell, val)
		}
	}

	_ = f.SetColWidth(sheetName, "A", "A", 16)
	_ = f.SetColWidth(sheetName, "B", "D", 20)
	_ = f.DeleteSheet("Sheet1")

	fileName := fmt.Sprintf("bookings_%s.xlsx", time.Now().Format("2006-01-02"))
	filePath := filepath.Join(dir, fileName)
	if err := f.SaveAs(filePath); err != nil {
		return "", fmt.Errorf("save export file: %w", err)
	}
	return filePath, nil
}

func headerRow() []string {
	return []string{"Дата", "Время", "Имя", "Телефон"}
}

// BookingRows converts appointments to spreadsheet rows. Shared by the
// xlsx export and the Sheets mirror.
func BookingRows(bookings []models.Appointment) [][]interface{} {
	rows := make([][]interface{}, 0, len(bookings))
	for _, b := range bookings {
		rows = append(rows, []interface{}{worker.FormatDayRU(b.Day), b.Hour, b.Name, b.Phone})
	}
	return rows
}
