package analytics

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"
)

var exportHeader = []string{
	"Order ID",
	"Robot ID",
	"Robot Name",
	"Station ID",
	"Station Name",
	"Created At",
	"Start Time",
	"End Time",
	"Duration (min)",
	"Wait (min)",
	"Energy (kWh)",
	"Efficiency (%)",
	"Status",
}

// ExportFilename builds the download name for an export taken at the given
// time, e.g. energy_efficiency_data_20250114.csv.
func ExportFilename(ext string, now time.Time) string {
	return fmt.Sprintf("energy_efficiency_data_%s.%s", now.Format("20060102"), ext)
}

func exportRow(ev *ChargingEvent) []string {
	var endTime, duration, wait string
	if ev.EndTime != nil {
		endTime = ev.EndTime.Format(time.RFC3339)
		duration = strconv.FormatFloat(round2(ev.EndTime.Sub(ev.StartTime).Minutes()), 'f', -1, 64)
	}
	if w := ev.StartTime.Sub(ev.CreatedAt).Minutes(); w > 0 {
		wait = strconv.FormatFloat(round2(w), 'f', -1, 64)
	}
	var energy, efficiency string
	if ev.EnergyConsumed != nil {
		energy = strconv.FormatFloat(*ev.EnergyConsumed, 'f', -1, 64)
	}
	if ev.Efficiency != nil {
		efficiency = strconv.FormatFloat(*ev.Efficiency, 'f', -1, 64)
	}

	return []string{
		strconv.FormatUint(uint64(ev.ID), 10),
		strconv.FormatUint(uint64(ev.RobotID), 10),
		ev.RobotName,
		strconv.FormatUint(uint64(ev.StationID), 10),
		ev.StationName,
		ev.CreatedAt.Format(time.RFC3339),
		ev.StartTime.Format(time.RFC3339),
		endTime,
		duration,
		wait,
		energy,
		efficiency,
		ev.Status,
	}
}

// ExportCSV renders the events as a CSV document with a header row.
func ExportCSV(events []ChargingEvent) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(exportHeader); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}
	for i := range events {
		if err := w.Write(exportRow(&events[i])); err != nil {
			return nil, fmt.Errorf("write csv row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

// ExportXLSX renders the events as a single-sheet xlsx workbook.
func ExportXLSX(events []ChargingEvent) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Energy Efficiency"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return nil, fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	for col, title := range exportHeader {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, fmt.Errorf("header cell name: %w", err)
		}
		if err := f.SetCellValue(sheet, cell, title); err != nil {
			return nil, fmt.Errorf("write header cell: %w", err)
		}
	}

	for i := range events {
		row := exportRow(&events[i])
		for col, value := range row {
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				return nil, fmt.Errorf("cell name: %w", err)
			}
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return nil, fmt.Errorf("write cell: %w", err)
			}
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
