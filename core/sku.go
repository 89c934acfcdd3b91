package core

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// ColorCodeTable maps a colour name to its two-digit SKU code. It is read-only after construction.
type ColorCodeTable struct {
	codes map[string]string
}

// NewColorCodeTable copies codes into a new table. Names are NFKC-normalised.
func NewColorCodeTable(codes map[string]string) *ColorCodeTable {
	t := &ColorCodeTable{codes: make(map[string]string, len(codes))}
	for name, code := range codes {
		t.codes[normalizeColor(name)] = code
	}
	return t
}

// Code returns the code for a colour name.
func (t *ColorCodeTable) Code(color string) (string, bool) {
	code, ok := t.codes[normalizeColor(color)]
	return code, ok
}

// Len returns the number of colours in the table.
func (t *ColorCodeTable) Len() int {
	return len(t.codes)
}

// SKU is the code of one size of one colour.
type SKU struct {
	Size string
	Code string
}

// SkuEntry holds the SKUs of one colour, in size order.
type SkuEntry struct {
	Color string
	Code  string // two-digit colour code
	SKUs  []SKU
}

// SKU returns the SKU for size, or "" if the size was not derived.
func (e SkuEntry) SKU(size string) string {
	for _, s := range e.SKUs {
		if s.Size == size {
			return s.Code
		}
	}
	return ""
}

// SplitColors splits a dev colours string on "/" and trims each name. Empty names are dropped.
// Full-width separators and spaces are folded to ASCII first.
func SplitColors(devColors string) []string {
	var colors []string
	for _, tok := range strings.Split(norm.NFKC.String(devColors), "/") {
		if tok = strings.TrimSpace(tok); tok != "" {
			colors = append(colors, tok)
		}
	}
	return colors
}

// Derive builds style code + colour code + size for every colour of devColors and every size.
// Colour and size order are preserved; repeated colours give repeated entries.
func (t *ColorCodeTable) Derive(styleCode, devColors string, sizes []string) ([]SkuEntry, error) {
	colors := SplitColors(devColors)
	entries := make([]SkuEntry, 0, len(colors))
	for _, color := range colors {
		code, ok := t.Code(color)
		if !ok {
			return nil, &UnknownColorError{Color: color, StyleCode: styleCode}
		}
		entry := SkuEntry{Color: color, Code: code, SKUs: make([]SKU, 0, len(sizes))}
		for _, size := range sizes {
			entry.SKUs = append(entry.SKUs, SKU{Size: size, Code: styleCode + code + size})
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func normalizeColor(name string) string {
	return strings.TrimSpace(norm.NFKC.String(name))
}
