package web

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"bom-gen/config"
	"bom-gen/core"
)

const (
	headerGenerated = "X-Bom-Generated"
	headerFailed    = "X-Bom-Failed"
)

type indexData struct {
	Format      string // upload format: xlsx or csv
	Sheet       string
	HeaderRow   int
	Templates   []string
	ArchiveName string
}

// codesResponse is the body of POST /codes.
type codesResponse struct {
	Codes []string `json:"codes"`
	Count int      `json:"count"`
}

// generateRequest is the selection part of the POST /generate form.
type generateRequest struct {
	All   bool
	Codes []string `validate:"required_without=All,dive,required"`
}

// handleHealthCheck returns server health status.
func (s *Server) handleHealthCheck(w http.ResponseWriter, _ *http.Request) {
	success(w, map[string]string{"status": "healthy"}, s.logger)
}

// handleIndex renders the upload form.
func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	b := s.opts.Bundle
	data := indexData{
		Format:      uploadFormat(b.Source),
		Sheet:       b.Source.Sheet,
		HeaderRow:   b.Source.HeaderRow,
		ArchiveName: s.archiveName(),
	}
	for _, tpl := range b.Templates {
		data.Templates = append(data.Templates, tpl.File)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.index.Execute(w, data); err != nil {
		s.logger.Error("Failed to render index", "error", err)
	}
}

// handleCodes lists the style codes of an uploaded source workbook.
func (s *Server) handleCodes(w http.ResponseWriter, r *http.Request) {
	index, status, err := s.loadUpload(w, r)
	if err != nil {
		failure(w, status, err.Error(), s.logger)
		return
	}
	codes := index.AllStyleCodes()
	success(w, codesResponse{Codes: codes, Count: len(codes)}, s.logger)
}

// handleGenerate builds the selected BOMs from the uploaded source and returns them as a zip.
func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	index, status, err := s.loadUpload(w, r)
	if err != nil {
		failure(w, status, err.Error(), s.logger)
		return
	}

	req := generateRequest{
		All:   isChecked(r.FormValue("all")),
		Codes: formCodes(r),
	}
	if err := s.validate.Struct(req); err != nil {
		failure(w, http.StatusBadRequest, "select style codes or all", s.logger)
		return
	}
	codes := req.Codes
	if req.All {
		codes = index.AllStyleCodes()
	}

	ctx, err := core.NewGenerationContext(s.opts.Bundle, index, s.opts.TemplateRoot, nil)
	if err != nil {
		s.logger.Error("Failed to create generation context", "error", err)
		failure(w, http.StatusInternalServerError, "generator is misconfigured", s.logger)
		return
	}

	tplFile, _, err := r.FormFile("template")
	switch {
	case err == nil:
		data, readErr := io.ReadAll(tplFile)
		tplFile.Close()
		if readErr != nil {
			failure(w, http.StatusBadRequest, "failed to read template upload", s.logger)
			return
		}
		ctx.Override = &core.TemplateOverride{Data: data}
	case !errors.Is(err, http.ErrMissingFile):
		failure(w, http.StatusBadRequest, "failed to read template upload", s.logger)
		return
	}

	var buf bytes.Buffer
	sum, err := core.NewBatch(ctx).WriteArchive(&buf, codes)
	if errors.Is(err, core.ErrNoStyleCodes) {
		failure(w, http.StatusBadRequest, "no style codes selected", s.logger)
		return
	}
	if err != nil {
		s.logger.Error("Failed to build archive", "error", err)
		failure(w, http.StatusInternalServerError, "failed to build archive", s.logger)
		return
	}
	if sum.Succeeded == 0 {
		writeJSON(w, http.StatusUnprocessableEntity, Envelope{
			Error:   "no BOM could be generated",
			Message: sum.Message(),
		}, s.logger)
		return
	}

	s.logger.Info("Archive generated",
		"requestId", requestID(r),
		"generated", sum.Succeeded,
		"failed", len(sum.Failures),
	)
	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": s.archiveName()}))
	w.Header().Set(headerGenerated, strconv.Itoa(sum.Succeeded))
	w.Header().Set(headerFailed, strconv.Itoa(len(sum.Failures)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(buf.Bytes()); err != nil {
		s.logger.Error("Failed to write archive", "error", err)
	}
}

// loadUpload parses the multipart form and indexes its "source" workbook.
// The returned status is the HTTP status to report on error.
func (s *Server) loadUpload(w http.ResponseWriter, r *http.Request) (*core.StyleIndex, int, error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.opts.MaxUploadBytes)
	if err := r.ParseMultipartForm(s.opts.MaxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, http.StatusRequestEntityTooLarge, fmt.Errorf("upload exceeds %d bytes", tooLarge.Limit)
		}
		return nil, http.StatusBadRequest, fmt.Errorf("invalid form: %w", err)
	}

	file, _, err := r.FormFile("source")
	if err != nil {
		return nil, http.StatusBadRequest, errors.New("source file is required")
	}
	defer file.Close()

	src := s.opts.Bundle.Source
	index, err := core.LoadStyleIndex(r.Context(), uploadFetcher(src, file), src.Columns)
	switch {
	case err == nil:
		return index, http.StatusOK, nil
	case errors.Is(err, core.ErrMissingColumn), errors.Is(err, core.ErrSheetNotFound):
		return nil, http.StatusUnprocessableEntity, err
	default:
		s.logger.Warn("Failed to read source upload", "requestId", requestID(r), "error", err)
		return nil, http.StatusBadRequest, fmt.Errorf("source is not a readable %s file", uploadFormat(src))
	}
}

// uploadFetcher reads an uploaded source: csv exports when the bundle's driver is
// csv, the xlsx development sheet for every other driver.
func uploadFetcher(src config.SourceConfig, r io.Reader) core.RecordFetcher {
	if src.Driver == config.DriverCsv {
		return core.NewCsvReaderFetcher(r, src.Encoding)
	}
	return core.NewXlsxReaderFetcher(r, sheetOrDefault(src.Sheet), src.HeaderRow)
}

func uploadFormat(src config.SourceConfig) string {
	if src.Driver == config.DriverCsv {
		return "csv"
	}
	return "xlsx"
}

func (s *Server) archiveName() string {
	if name := s.opts.Bundle.Output.ArchiveName; name != "" {
		return name
	}
	return config.DefaultArchiveName
}

func sheetOrDefault(sheet string) string {
	if sheet == "" {
		return config.DefaultSheet
	}
	return sheet
}

// formCodes collects "codes" values; each value may hold several comma or newline separated codes.
func formCodes(r *http.Request) []string {
	var codes []string
	for _, v := range r.Form["codes"] {
		for _, c := range strings.FieldsFunc(v, func(r rune) bool { return r == ',' || r == '\n' || r == '\r' }) {
			if c = strings.TrimSpace(c); c != "" {
				codes = append(codes, c)
			}
		}
	}
	return codes
}

func isChecked(v string) bool {
	switch strings.ToLower(v) {
	case "true", "on", "1", "yes":
		return true
	}
	return false
}
