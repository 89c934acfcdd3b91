package core

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinels for errors.Is. Each typed error below matches exactly one of them.
var (
	ErrMissingColumn    = errors.New("missing column")
	ErrSheetNotFound    = errors.New("sheet not found")
	ErrStyleNotFound    = errors.New("style not found")
	ErrUnknownColor     = errors.New("unknown color")
	ErrTemplateNotFound = errors.New("template not found")
	ErrNoStyleCodes     = errors.New("no style codes")
)

// MissingColumnError reports required source columns that are absent.
type MissingColumnError struct {
	Columns []string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("source is missing required columns: [%s]", strings.Join(e.Columns, ", "))
}

func (e *MissingColumnError) Is(target error) bool { return target == ErrMissingColumn }

// SheetNotFoundError reports a source workbook without the expected worksheet.
type SheetNotFoundError struct {
	Sheet string
}

func (e *SheetNotFoundError) Error() string {
	return fmt.Sprintf("worksheet '%s' not found in source workbook", e.Sheet)
}

func (e *SheetNotFoundError) Is(target error) bool { return target == ErrSheetNotFound }

// StyleNotFoundError reports a style code with no source row.
type StyleNotFoundError struct {
	StyleCode string
}

func (e *StyleNotFoundError) Error() string {
	return fmt.Sprintf("style code '%s' not found in source", e.StyleCode)
}

func (e *StyleNotFoundError) Is(target error) bool { return target == ErrStyleNotFound }

// UnknownColorError reports a dev colour that has no code in the colour table.
type UnknownColorError struct {
	Color     string
	StyleCode string
}

func (e *UnknownColorError) Error() string {
	if e.StyleCode == "" {
		return fmt.Sprintf("color '%s' not found in color code table", e.Color)
	}
	return fmt.Sprintf("color '%s' of style '%s' not found in color code table", e.Color, e.StyleCode)
}

func (e *UnknownColorError) Is(target error) bool { return target == ErrUnknownColor }

// TemplateNotFoundError reports a missing template workbook.
type TemplateNotFoundError struct {
	Path string
}

func (e *TemplateNotFoundError) Error() string {
	return fmt.Sprintf("template file not found: %s", e.Path)
}

func (e *TemplateNotFoundError) Is(target error) bool { return target == ErrTemplateNotFound }
