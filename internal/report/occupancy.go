package report

import (
	"bytes"
	"fmt"

	"propertypal/internal/domain"

	"github.com/xuri/excelize/v2"
)

const (
	OccupancySheet = "Occupancy"
	SummarySheet   = "Summary"
)

// OccupancyHeader columns of the occupancy sheet
var OccupancyHeader = []string{
	"Building",
	"Floor",
	"Room",
	"Share Type",
	"Bed",
	"Status",
	"Member",
	"Phone",
	"Monthly Price",
}

var occupancyColumnWidths = []float64{20, 10, 12, 12, 8, 12, 24, 16, 14}

// OccupancyWorkbook renders one row per bed of p with the member holding it,
// plus a summary sheet. Status is taken from member assignments, not from the
// stored bed flags.
func OccupancyWorkbook(p domain.Property, members []domain.Member) ([]byte, error) {
	holders := make(map[domain.BedPath]domain.Member, len(members))
	for _, m := range members {
		if path, ok := m.Assignment(); ok && path.PropertyID == p.ID {
			holders[path] = m
		}
	}
	prices := make(map[int]domain.Money, len(p.BedPricing))
	for _, bp := range p.BedPricing {
		prices[bp.BedCount] = bp.MonthlyPrice
	}

	f := excelize.NewFile()

	index, err := f.NewSheet(OccupancySheet)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.DeleteSheet("Sheet1")
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#E6F3FF"},
			Pattern: 1,
		},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	if err := writeRow(f, OccupancySheet, 1, toAny(OccupancyHeader)); err != nil {
		f.Close()
		return nil, err
	}
	last, _ := excelize.CoordinatesToCellName(len(OccupancyHeader), 1)
	if err := f.SetCellStyle(OccupancySheet, "A1", last, headerStyle); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to set header style: %w", err)
	}
	for i, w := range occupancyColumnWidths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		if err := f.SetColWidth(OccupancySheet, col, col, w); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to set column width: %w", err)
		}
	}

	row := 2
	occupied := 0
	for _, b := range p.Buildings {
		for _, fl := range b.Floors {
			for _, r := range fl.Rooms {
				for _, bed := range r.Beds {
					path := domain.BedPath{PropertyID: p.ID, BuildingID: b.ID, FloorID: fl.ID, RoomID: r.ID, BedID: bed.ID}
					status, name, phone := "Available", "", ""
					if m, ok := holders[path]; ok {
						status, name, phone = "Occupied", m.Name, m.Phone
						occupied++
					}
					values := []any{b.Name, fl.Label, r.RoomNumber, string(r.ShareType), bed.ID, status, name, phone, nil}
					if price, ok := prices[len(r.Beds)]; ok && price > 0 {
						values[8] = float64(price)
					}
					if err := writeRow(f, OccupancySheet, row, values); err != nil {
						f.Close()
						return nil, err
					}
					row++
				}
			}
		}
	}

	if err := f.SetPanes(OccupancySheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to freeze panes: %w", err)
	}

	if err := writeSummary(f, p, occupied); err != nil {
		f.Close()
		return nil, err
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to write to buffer: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("failed to close file: %w", err)
	}
	return buf.Bytes(), nil
}

func writeSummary(f *excelize.File, p domain.Property, occupied int) error {
	if _, err := f.NewSheet(SummarySheet); err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}
	s := domain.Summarize(&p)
	rows := [][]any{
		{"Property", p.Name},
		{"Type", string(p.Type)},
		{"City", p.City},
		{"Buildings", s.TotalBuildings},
		{"Floors", s.TotalFloors},
		{"Rooms", s.TotalRooms},
		{"Beds", s.TotalBeds},
		{"Occupied", occupied},
		{"Available", s.TotalBeds - occupied},
	}
	for i, values := range rows {
		if err := writeRow(f, SummarySheet, i+1, values); err != nil {
			return err
		}
	}
	return f.SetColWidth(SummarySheet, "A", "B", 18)
}

// writeRow writes values left to right starting at column A; nil cells are skipped.
func writeRow(f *excelize.File, sheet string, row int, values []any) error {
	for i, v := range values {
		if v == nil {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(i+1, row)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, v); err != nil {
			return fmt.Errorf("failed to set cell %s: %w", cell, err)
		}
	}
	return nil
}

func toAny(in []string) []any {
	out := make([]any, len(in))
	for i, s := range in {
		out[i] = s
	}
	return out
}
