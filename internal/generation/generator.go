// Package generation writes tailored résumés with an LLM.
package generation

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"
	"unicode/utf8"

	"github.com/jonathan/job-assistant/internal/apperrors"
	"github.com/jonathan/job-assistant/internal/llm"
	"github.com/jonathan/job-assistant/internal/prompts"
	"github.com/jonathan/job-assistant/internal/types"
)

const (
	// DefaultTimeout bounds one LLM call.
	DefaultTimeout = 30 * time.Second
	// MaxResumeTextLength is the longest accepted resumeText, in characters.
	MaxResumeTextLength = 5000

	promptFile = "resume.json"
	promptKey  = "executive-resume"
)

// Generator builds the résumé prompt and calls the model.
type Generator struct {
	client  llm.Client
	tier    llm.ModelTier
	timeout time.Duration
}

// New creates a Generator. A zero timeout uses DefaultTimeout.
func New(client llm.Client, timeout time.Duration) *Generator {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Generator{client: client, tier: llm.TierStandard, timeout: timeout}
}

// Generate validates req and returns the generated résumé text.
func (g *Generator) Generate(ctx context.Context, req *types.GenerateResumeRequest) (string, error) {
	if err := req.Validate(); err != nil {
		return "", apperrors.InvalidInput("Required personal information is missing")
	}
	if utf8.RuneCountInString(req.ResumeText) > MaxResumeTextLength {
		return "", apperrors.InvalidInput("Resume text exceeds maximum length of %d characters", MaxResumeTextLength)
	}

	prompt, err := BuildPrompt(req)
	if err != nil {
		return "", &apperrors.ErrProcessing{Op: "Error generating resume", Cause: err}
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	start := time.Now()
	resume, err := g.client.GenerateContent(ctx, prompt, g.tier)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			log.Printf("[generation] model call timed out after %v", g.timeout)
			return "", &apperrors.ErrUpstreamTimeout{Upstream: "llm", After: g.timeout}
		}
		log.Printf("[generation] model call failed: %v", err)
		return "", &apperrors.ErrProcessing{Op: "Error generating resume", Cause: err}
	}

	log.Printf("[generation] generated resume for %s in %v", req.UserInfo.Email, time.Since(start).Round(time.Millisecond))
	return resume, nil
}

// BuildPrompt renders the executive résumé prompt. Missing optional contact
// fields fall back to asking the model to read them from the résumé text.
func BuildPrompt(req *types.GenerateResumeRequest) (string, error) {
	info := req.UserInfo
	data := map[string]string{
		"FullName":          info.FullName,
		"Location":          info.Location,
		"Email":             info.Email,
		"Phone":             info.Phone,
		"LinkedIn":          info.LinkedIn,
		"ResumeText":        req.ResumeText,
		"Education":         orDefault(info.Education, "Extract from resume text"),
		"Certifications":    orDefault(info.Certifications, "Extract from resume text"),
		"YearsOfExperience": orDefault(info.YearsOfExperience, "Extract from resume"),
		"Skills":            req.Skills,
		"JobDesc":           req.JobDesc,
	}

	prompt, err := prompts.Render(promptFile, promptKey, data)
	if err != nil {
		return "", fmt.Errorf("failed to build prompt: %w", err)
	}
	return prompt, nil
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
