package core

import (
	"archive/zip"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"
)

// Status classifies the outcome of a batch.
type Status int

const (
	AllSucceeded Status = iota
	Partial
	AllFailed
)

func (s Status) String() string {
	switch s {
	case AllSucceeded:
		return "succeeded"
	case Partial:
		return "partial"
	default:
		return "failed"
	}
}

// Failure is one style code that could not be generated.
type Failure struct {
	StyleCode string
	Err       error
}

func (f Failure) String() string {
	return fmt.Sprintf("%s: %v", f.StyleCode, f.Err)
}

// Summary is the result of one batch run.
type Summary struct {
	Total     int
	Succeeded int
	Failures  []Failure
	Output    string
}

// Status returns AllSucceeded, Partial or AllFailed.
func (s *Summary) Status() Status {
	switch {
	case s.Succeeded == s.Total:
		return AllSucceeded
	case s.Succeeded > 0:
		return Partial
	default:
		return AllFailed
	}
}

// Message renders the summary for a person: totals, then the first failures.
func (s *Summary) Message() string {
	var b strings.Builder
	switch s.Status() {
	case AllSucceeded:
		fmt.Fprintf(&b, "Done.\n\nGenerated %d BOM files.", s.Succeeded)
		if s.Output != "" {
			fmt.Fprintf(&b, "\nOutput: %s", s.Output)
		}
	case Partial:
		fmt.Fprintf(&b, "Done (partial).\n\nSucceeded: %d\nFailed: %d\n\nFailures:\n", s.Succeeded, len(s.Failures))
		b.WriteString(s.failureList(5))
	default:
		fmt.Fprintf(&b, "Failed.\n\nAll %d style codes failed.\n\nFailures:\n", s.Total)
		b.WriteString(s.failureList(3))
	}
	return b.String()
}

func (s *Summary) failureList(limit int) string {
	lines := make([]string, 0, min(limit, len(s.Failures)))
	for i, f := range s.Failures {
		if i == limit {
			break
		}
		lines = append(lines, f.String())
	}
	out := strings.Join(lines, "\n")
	if rest := len(s.Failures) - limit; rest > 0 {
		out += fmt.Sprintf("\n... and %d more", rest)
	}
	return out
}

// Batch generates BOMs for a list of style codes with one Filler.
type Batch struct {
	Filler *Filler
}

func NewBatch(ctx *GenerationContext) *Batch {
	return &Batch{Filler: NewFiller(ctx)}
}

// Run calls emit for every code in order. A failing code is recorded and the run continues.
// An empty list returns ErrNoStyleCodes.
func (b *Batch) Run(codes []string, emit func(styleCode string) error) (*Summary, error) {
	if len(codes) == 0 {
		slog.Warn("No style codes selected")
		return nil, ErrNoStyleCodes
	}

	start := time.Now()
	sum := &Summary{Total: len(codes)}
	for i, code := range codes {
		slog.Debug("Processing style", "style", code, "index", i+1, "total", len(codes))
		if err := emit(code); err != nil {
			slog.Warn("Style failed", "style", code, "error", err)
			sum.Failures = append(sum.Failures, Failure{StyleCode: code, Err: err})
			continue
		}
		sum.Succeeded++
	}

	slog.Info("Batch finished",
		"total", sum.Total,
		"succeeded", sum.Succeeded,
		"failed", len(sum.Failures),
		"duration", time.Since(start),
	)
	return sum, nil
}

// WriteDir writes one workbook per code under outputRoot.
func (b *Batch) WriteDir(codes []string, outputRoot string) (*Summary, error) {
	sum, err := b.Run(codes, func(code string) error {
		_, err := b.Filler.WriteFile(code, outputRoot)
		return err
	})
	if sum != nil {
		sum.Output = outputRoot
	}
	return sum, err
}

// FailuresEntry is the archive entry listing failed codes, present only when some failed.
const FailuresEntry = "failures.txt"

// WriteArchive writes one {style_code}.xlsx entry per successful code into a zip on w.
func (b *Batch) WriteArchive(w io.Writer, codes []string) (*Summary, error) {
	zw := zip.NewWriter(w)
	seen := make(map[string]int)
	sum, err := b.Run(codes, func(code string) error {
		data, err := b.Filler.WriteBuffer(code)
		if err != nil {
			return err
		}
		base := OutputFileName(strings.TrimSpace(code))
		name := base
		if n := seen[base]; n > 0 {
			name = fmt.Sprintf("%s (%d).xlsx", strings.TrimSuffix(base, ".xlsx"), n)
		}
		seen[base]++

		entry, err := zw.Create(name)
		if err != nil {
			return fmt.Errorf("failed to add archive entry: %w", err)
		}
		if _, err := entry.Write(data); err != nil {
			return fmt.Errorf("failed to write archive entry: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if len(sum.Failures) > 0 {
		entry, err := zw.Create(FailuresEntry)
		if err != nil {
			return sum, fmt.Errorf("failed to add failure list: %w", err)
		}
		for _, f := range sum.Failures {
			if _, err := fmt.Fprintln(entry, f.String()); err != nil {
				return sum, fmt.Errorf("failed to write failure list: %w", err)
			}
		}
	}

	if err := zw.Close(); err != nil {
		return sum, fmt.Errorf("failed to finalize archive: %w", err)
	}
	return sum, nil
}
