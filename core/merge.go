package core

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// Writes to a non-anchor cell of a merged region are dropped by Excel, so every
// write goes through a mergeIndex that redirects it to the region's top-left cell.

type mergeRegion struct {
	StartCol, StartRow, EndCol, EndRow int
}

func (m mergeRegion) contains(col, row int) bool {
	return col >= m.StartCol && col <= m.EndCol && row >= m.StartRow && row <= m.EndRow
}

type mergeIndex struct {
	regions []mergeRegion
}

func buildMergeIndex(f ExcelFile, sheet string) (*mergeIndex, error) {
	merged, err := f.GetMergeCells(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read merged cells: %w", err)
	}
	idx := &mergeIndex{regions: make([]mergeRegion, 0, len(merged))}
	for _, mc := range merged {
		region, err := parseMergeCell(mc)
		if err != nil {
			return nil, err
		}
		idx.regions = append(idx.regions, region)
	}
	return idx, nil
}

func parseMergeCell(mc excelize.MergeCell) (mergeRegion, error) {
	c1, r1, err := excelize.CellNameToCoordinates(mc.GetStartAxis())
	if err != nil {
		return mergeRegion{}, err
	}
	c2, r2, err := excelize.CellNameToCoordinates(mc.GetEndAxis())
	if err != nil {
		return mergeRegion{}, err
	}
	return mergeRegion{StartCol: c1, StartRow: r1, EndCol: c2, EndRow: r2}, nil
}

// resolve returns the anchor of the merged region containing cell, or cell itself.
func (m *mergeIndex) resolve(cell string) (string, error) {
	col, row, err := excelize.CellNameToCoordinates(cell)
	if err != nil {
		return "", err
	}
	for _, r := range m.regions {
		if r.contains(col, row) {
			return excelize.CoordinatesToCellName(r.StartCol, r.StartRow)
		}
	}
	return cell, nil
}

// setCell writes value to cell, redirecting merged cells to their anchor.
func (m *mergeIndex) setCell(f ExcelFile, sheet, cell string, value interface{}) error {
	target, err := m.resolve(cell)
	if err != nil {
		return fmt.Errorf("invalid cell %s: %w", cell, err)
	}
	return f.SetCellValue(sheet, target, value)
}
