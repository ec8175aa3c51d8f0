package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mgpai22/subtrans/internal/language"
	"github.com/mgpai22/subtrans/internal/lookup"
	"github.com/mgpai22/subtrans/internal/pipeline"
	"github.com/mgpai22/subtrans/internal/subtitle"
)

const savedSuffix = "tr"

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, status int) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func (s *Server) decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, s.opts.MaxUploadBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		jsonError(w, "invalid request body", http.StatusBadRequest)
		return false
	}
	return true
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type translateResponse struct {
	ID             string                 `json:"id"`
	SourceLanguage string                 `json:"source_language"`
	TargetLanguage string                 `json:"target_language"`
	Content        string                 `json:"content"`
	Chunks         []pipeline.ChunkReport `json:"chunks"`
	Warnings       []string               `json:"warnings"`
	Issues         []string               `json:"issues"`
}

// translate accepts a multipart upload ("file", "target_language" and an
// optional "source_language") and returns the translated document.
func (s *Server) translate(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.opts.MaxUploadBytes)
	if err := r.ParseMultipartForm(s.opts.MaxUploadBytes); err != nil {
		jsonError(w, "invalid upload: "+err.Error(), http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		jsonError(w, "file is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	if ext := strings.ToLower(filepath.Ext(header.Filename)); ext != ".srt" {
		jsonError(w, "only .srt files are supported", http.StatusBadRequest)
		return
	}

	raw, err := io.ReadAll(file)
	if err != nil {
		jsonError(w, "failed to read upload", http.StatusBadRequest)
		return
	}
	content, err := subtitle.Decode(raw)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	subs, err := subtitle.Parse(content)
	if err != nil {
		jsonError(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	if len(subs) == 0 {
		jsonError(w, "file contains no subtitles", http.StatusUnprocessableEntity)
		return
	}

	target := strings.TrimSpace(r.FormValue("target_language"))
	if target == "" {
		jsonError(w, "target_language is required", http.StatusBadRequest)
		return
	}
	source := strings.TrimSpace(r.FormValue("source_language"))
	if source == "" {
		detected, ok := language.Detect(texts(subs))
		if !ok {
			jsonError(w, "could not detect the source language, set source_language", http.StatusBadRequest)
			return
		}
		source = detected
	}
	if language.Same(source, target) {
		jsonError(w, "source and target language cannot be the same", http.StatusBadRequest)
		return
	}

	opts := s.opts.Document
	opts.SourceLanguage = language.Name(source)
	opts.TargetLanguage = language.Name(target)
	opts.Progress = nil

	id := uuid.NewString()
	logger := s.logger.With("id", id, "file", header.Filename)
	start := time.Now()

	result, err := pipeline.TranslateDocument(r.Context(), s.oracle, content, opts, logger)
	if err != nil {
		TranslationsTotal.WithLabelValues("failed").Inc()
		logger.Errorw("Translation failed", "error", err)

		status := http.StatusInternalServerError
		var chunkErr *pipeline.ChunkError
		if errors.As(err, &chunkErr) {
			status = http.StatusBadGateway
		}
		jsonError(w, err.Error(), status)
		return
	}

	TranslationsTotal.WithLabelValues("succeeded").Inc()
	TranslationDuration.Observe(time.Since(start).Seconds())
	ChunksTranslatedTotal.Add(float64(len(result.Chunks)))
	TranslationWarningsTotal.Add(float64(len(result.Warnings)))

	writeJSON(w, http.StatusOK, translateResponse{
		ID:             id,
		SourceLanguage: opts.SourceLanguage,
		TargetLanguage: opts.TargetLanguage,
		Content:        result.Content,
		Chunks:         result.Chunks,
		Warnings:       nonNil(result.Warnings),
		Issues:         nonNil(result.Issues),
	})
}

func (s *Server) stats(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Original      string `json:"original"`
		Translated    string `json:"translated"`
		MaxLineLength int    `json:"max_line_length"`
	}
	if !s.decodeJSON(w, r, &req) {
		return
	}
	if req.Original == "" || req.Translated == "" {
		jsonError(w, "original and translated are required", http.StatusBadRequest)
		return
	}
	if req.MaxLineLength <= 0 {
		req.MaxLineLength = s.opts.Document.MaxLineLength
	}

	issues := subtitle.Stats(req.Original, req.Translated, req.MaxLineLength)
	writeJSON(w, http.StatusOK, map[string][]string{"issues": nonNil(issues)})
}

func (s *Server) verify(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Original  string `json:"original"`
		Processed string `json:"processed"`
	}
	if !s.decodeJSON(w, r, &req) {
		return
	}

	result, err := subtitle.Verify(req.Original, req.Processed)
	if err != nil {
		jsonError(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) format(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Content       string `json:"content"`
		MaxLines      int    `json:"max_lines"`
		MaxLineLength int    `json:"max_line_length"`
	}
	if !s.decodeJSON(w, r, &req) {
		return
	}

	result, err := subtitle.NewFormatter(req.MaxLines, req.MaxLineLength).Format(req.Content)
	if err != nil {
		jsonError(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	result.Warnings = nonNil(result.Warnings)
	writeJSON(w, http.StatusOK, struct {
		Content string `json:"content"`
		*subtitle.FormattingResult
	}{
		Content:          result.Text,
		FormattingResult: result,
	})
}

func (s *Server) define(w http.ResponseWriter, r *http.Request) {
	if s.lookup == nil {
		jsonError(w, "dictionary lookups are disabled", http.StatusServiceUnavailable)
		return
	}

	var req struct {
		Words    []string `json:"words"`
		Language string   `json:"language"`
	}
	if !s.decodeJSON(w, r, &req) {
		return
	}
	if len(req.Words) == 0 {
		jsonError(w, "words are required", http.StatusBadRequest)
		return
	}

	lang := lookup.DefaultLanguage
	if code, ok := language.Code(req.Language); ok {
		lang = code
	}

	result := s.lookup.Lookup(r.Context(), req.Words, lang, s.opts.LookupMaxAttempts, s.opts.LookupMaxWords)
	result.Definitions = nonNilDefs(result.Definitions)
	result.NotFound = nonNil(result.NotFound)
	writeJSON(w, http.StatusOK, result)
}

// save stores edited content as <output_dir>/<stem>-tr.srt.
func (s *Server) save(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name    string `json:"name"`
		Content string `json:"content"`
	}
	if !s.decodeJSON(w, r, &req) {
		return
	}

	name := filepath.Base(strings.TrimSpace(req.Name))
	if name == "" || name == "." || name == string(filepath.Separator) {
		jsonError(w, "name is required", http.StatusBadRequest)
		return
	}
	if strings.ToLower(filepath.Ext(name)) != ".srt" {
		jsonError(w, "only .srt files can be saved", http.StatusBadRequest)
		return
	}
	if _, err := subtitle.Parse(req.Content); err != nil {
		jsonError(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}

	path := subtitle.TranslatedPath(name, s.opts.OutputDir, savedSuffix)
	if err := subtitle.WriteFile(path, req.Content); err != nil {
		s.logger.Errorw("Failed to save subtitles", "path", path, "error", err)
		jsonError(w, "failed to save file", http.StatusInternalServerError)
		return
	}

	s.logger.Infow("Saved subtitles", "path", path)
	writeJSON(w, http.StatusCreated, map[string]string{"path": path})
}

func texts(subs []subtitle.Subtitle) []string {
	out := make([]string, len(subs))
	for i, sub := range subs {
		out[i] = sub.Text
	}
	return out
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func nonNilDefs(d []lookup.Definition) []lookup.Definition {
	if d == nil {
		return []lookup.Definition{}
	}
	return d
}
