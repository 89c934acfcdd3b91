package core

import (
	"bytes"
	"io"

	"github.com/xuri/excelize/v2"
)

// ExcelFile abstracts workbook operations to decouple loader and filler logic from excelize.
type ExcelFile interface {
	Close() error
	GetActiveSheetIndex() int
	GetCellStyle(sheet, cell string) (int, error)
	GetCellValue(sheet, cell string) (string, error)
	GetMergeCells(sheet string) ([]excelize.MergeCell, error)
	GetRowHeight(sheet string, row int) (float64, error)
	GetRows(sheet string) ([][]string, error)
	GetSheetDimension(sheet string) (string, error)
	GetSheetList() []string
	GetSheetName(index int) string
	InsertRows(sheet string, row, rows int) error
	MergeCell(sheet, hcell, vcell string) error
	SaveAs(name string) error
	SetActiveSheet(index int)
	SetCellStyle(sheet, hcell, vcell string, styleID int) error
	SetCellValue(sheet, cell string, value interface{}) error
	SetRowHeight(sheet string, row int, height float64) error
	SetSelection(sheetName, cell string) error
	WriteToBuffer() (*bytes.Buffer, error)
}

type ExcelizeFile struct {
	file *excelize.File
}

func openExcelFile(path string) (ExcelFile, error) {
	file, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	return &ExcelizeFile{file: file}, nil
}

func openExcelReader(r io.Reader) (ExcelFile, error) {
	file, err := excelize.OpenReader(r)
	if err != nil {
		return nil, err
	}
	return &ExcelizeFile{file: file}, nil
}

func (e *ExcelizeFile) Close() error {
	return e.file.Close()
}

func (e *ExcelizeFile) GetActiveSheetIndex() int {
	return e.file.GetActiveSheetIndex()
}

func (e *ExcelizeFile) GetCellStyle(sheet, cell string) (int, error) {
	return e.file.GetCellStyle(sheet, cell)
}

func (e *ExcelizeFile) GetCellValue(sheet, cell string) (string, error) {
	return e.file.GetCellValue(sheet, cell)
}

func (e *ExcelizeFile) GetMergeCells(sheet string) ([]excelize.MergeCell, error) {
	return e.file.GetMergeCells(sheet)
}

func (e *ExcelizeFile) GetRowHeight(sheet string, row int) (float64, error) {
	return e.file.GetRowHeight(sheet, row)
}

func (e *ExcelizeFile) GetRows(sheet string) ([][]string, error) {
	return e.file.GetRows(sheet)
}

func (e *ExcelizeFile) GetSheetDimension(sheet string) (string, error) {
	return e.file.GetSheetDimension(sheet)
}

func (e *ExcelizeFile) GetSheetList() []string {
	return e.file.GetSheetList()
}

func (e *ExcelizeFile) GetSheetName(index int) string {
	return e.file.GetSheetName(index)
}

func (e *ExcelizeFile) InsertRows(sheet string, row, rows int) error {
	return e.file.InsertRows(sheet, row, rows)
}

func (e *ExcelizeFile) MergeCell(sheet, hcell, vcell string) error {
	return e.file.MergeCell(sheet, hcell, vcell)
}

func (e *ExcelizeFile) SaveAs(name string) error {
	return e.file.SaveAs(name)
}

func (e *ExcelizeFile) SetActiveSheet(index int) {
	e.file.SetActiveSheet(index)
}

func (e *ExcelizeFile) SetCellStyle(sheet, hcell, vcell string, styleID int) error {
	return e.file.SetCellStyle(sheet, hcell, vcell, styleID)
}

func (e *ExcelizeFile) SetCellValue(sheet, cell string, value interface{}) error {
	return e.file.SetCellValue(sheet, cell, value)
}

func (e *ExcelizeFile) SetRowHeight(sheet string, row int, height float64) error {
	return e.file.SetRowHeight(sheet, row, height)
}

func (e *ExcelizeFile) SetSelection(sheetName, cell string) error {
	// Keep frozen/split panes if the sheet has them, only move the selection.
	panes, err := e.file.GetPanes(sheetName)
	if err == nil {
		panes.Selection = []excelize.Selection{
			{
				ActiveCell: cell,
				SQRef:      cell,
			},
		}
		return e.file.SetPanes(sheetName, &panes)
	}

	return e.file.SetPanes(sheetName, &excelize.Panes{
		Selection: []excelize.Selection{
			{
				ActiveCell: cell,
				SQRef:      cell,
			},
		},
	})
}

func (e *ExcelizeFile) WriteToBuffer() (*bytes.Buffer, error) {
	return e.file.WriteToBuffer()
}
