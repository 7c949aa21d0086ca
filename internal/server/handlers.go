package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/jonathan/job-assistant/internal/extract"
	"github.com/jonathan/job-assistant/internal/intake"
	"github.com/jonathan/job-assistant/internal/server/middleware"
	"github.com/jonathan/job-assistant/internal/server/ratelimit"
	"github.com/jonathan/job-assistant/internal/types"
)

// handleUploadResume accepts a multipart "file" field and returns its analysis.
func (s *Server) handleUploadResume(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload)
	if err := r.ParseMultipartForm(s.maxUpload); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeDetail(w, http.StatusBadRequest,
				fmt.Sprintf("File size exceeds maximum limit of %gMB", float64(extract.DefaultMaxBytes)/(1<<20)))
			return
		}
		writeDetail(w, http.StatusBadRequest, "Invalid multipart body")
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	file, header, err := r.FormFile("file")
	if err != nil {
		writeDetail(w, http.StatusBadRequest, "No file uploaded")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeDetail(w, http.StatusBadRequest, "Failed to read uploaded file")
		return
	}

	caller, _ := middleware.GetEmail(r)
	resp, err := s.intake.Intake(r.Context(), intake.Upload{
		Caller:    caller,
		ClientKey: extractClientID(r),
		Filename:  header.Filename,
		Data:      data,
		OnRateLimit: func(info ratelimit.Info) {
			setRateLimitHeaders(w, info)
		},
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleSearchJobs filters the catalog by the query and location parameters.
func (s *Server) handleSearchJobs(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	writeJSON(w, http.StatusOK, types.JobSearchResponse{
		Jobs: s.catalog.Search(q.Get("query"), q.Get("location")),
	})
}

// handleGenerateResume writes a résumé from the contact block and résumé text.
func (s *Server) handleGenerateResume(w http.ResponseWriter, r *http.Request) {
	var req types.GenerateResumeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	resume, err := s.generator.Generate(r.Context(), &req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, types.GenerateResumeResponse{Resume: resume})
}
