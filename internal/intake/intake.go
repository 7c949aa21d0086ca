// Package intake runs the résumé upload pipeline: file type check, rate
// limiting, text extraction and entity analysis.
package intake

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/jonathan/job-assistant/internal/apperrors"
	"github.com/jonathan/job-assistant/internal/server/ratelimit"
	"github.com/jonathan/job-assistant/internal/types"
	"golang.org/x/sync/semaphore"
)

// Admitter decides whether a client may make another request.
type Admitter interface {
	Allow(clientID string) (bool, ratelimit.Info)
}

// Extractor turns PDF bytes into text.
type Extractor interface {
	Extract(data []byte) (string, error)
}

// Analyzer turns extracted text into an analysis result.
type Analyzer interface {
	Analyze(text string) *types.AnalysisResult
}

// Upload is one résumé submission.
type Upload struct {
	// Caller is the authenticated user's email, used for logging only.
	Caller string
	// ClientKey is the rate-limit bucket, usually the client IP.
	ClientKey string
	Filename  string
	Data      []byte
	// OnRateLimit, when set, receives the limiter decision whether or not
	// the upload was admitted.
	OnRateLimit func(ratelimit.Info)
}

// Service is the intake orchestrator. It is safe for concurrent use.
type Service struct {
	limiter   Admitter
	extractor Extractor
	analyzer  Analyzer
	slots     *semaphore.Weighted
}

// NewService creates an orchestrator. workers bounds the number of uploads
// extracted and analyzed at once; values below 1 use GOMAXPROCS.
func NewService(limiter Admitter, extractor Extractor, analyzer Analyzer, workers int) *Service {
	if workers < 1 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Service{
		limiter:   limiter,
		extractor: extractor,
		analyzer:  analyzer,
		slots:     semaphore.NewWeighted(int64(workers)),
	}
}

// Intake validates, rate limits, extracts and analyzes one upload.
func (s *Service) Intake(ctx context.Context, up Upload) (*types.UploadResponse, error) {
	if !strings.EqualFold(filepath.Ext(up.Filename), ".pdf") {
		return nil, apperrors.InvalidInput("Only PDF files are allowed")
	}

	if s.limiter != nil {
		allowed, info := s.limiter.Allow(up.ClientKey)
		if up.OnRateLimit != nil {
			up.OnRateLimit(info)
		}
		if !allowed {
			log.Printf("[intake] rate limit exceeded for client=%s user=%s", up.ClientKey, up.Caller)
			return nil, &apperrors.ErrRateLimitExceeded{RetryAfter: info.RetryAfter}
		}
	}

	if err := s.slots.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("failed to acquire intake slot: %w", err)
	}
	defer s.slots.Release(1)

	text, err := s.extractor.Extract(up.Data)
	if err != nil {
		log.Printf("[intake] extraction failed for %s: %v", up.Filename, err)
		return nil, err
	}

	result := s.analyzer.Analyze(text)
	log.Printf("[intake] processed %s for user=%s: %d skills, %d organizations",
		up.Filename, up.Caller, len(result.Skills), len(result.Organizations))

	return &types.UploadResponse{
		Filename:   up.Filename,
		ParsedData: result,
	}, nil
}
