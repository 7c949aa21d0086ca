package generation

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/jonathan/job-assistant/internal/apperrors"
	"github.com/jonathan/job-assistant/internal/llm"
	"github.com/jonathan/job-assistant/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClient struct {
	response string
	err      error
	// wait blocks until the context is done.
	wait   bool
	prompt string
	tier   llm.ModelTier
}

func (f *fakeClient) GenerateContent(ctx context.Context, prompt string, tier llm.ModelTier) (string, error) {
	f.prompt = prompt
	f.tier = tier
	if f.wait {
		<-ctx.Done()
		return "", ctx.Err()
	}
	return f.response, f.err
}

func (f *fakeClient) Close() error { return nil }

func validRequest() *types.GenerateResumeRequest {
	return &types.GenerateResumeRequest{
		UserInfo: types.UserInfo{
			FullName: "Ada Lovelace",
			Email:    "ada@example.com",
			Phone:    "555-0100",
			LinkedIn: "linkedin.com/in/ada",
		},
		Skills:     "Python, Leadership",
		JobDesc:    "CTO",
		ResumeText: "Led the analytical engine team.",
	}
}

func TestGenerate_Success(t *testing.T) {
	client := &fakeClient{response: "ADA LOVELACE\nCTO"}
	g := New(client, time.Second)

	resume, err := g.Generate(context.Background(), validRequest())
	require.NoError(t, err)
	assert.Equal(t, "ADA LOVELACE\nCTO", resume)
	assert.Equal(t, llm.TierStandard, client.tier)
	assert.Contains(t, client.prompt, "ada@example.com | 555-0100")
	assert.Contains(t, client.prompt, "Target Position: CTO")
	assert.Contains(t, client.prompt, "Led the analytical engine team.")
}

func TestGenerate_MissingRequiredField(t *testing.T) {
	client := &fakeClient{response: "x"}
	req := validRequest()
	req.UserInfo.Phone = ""

	_, err := New(client, time.Second).Generate(context.Background(), req)
	require.Error(t, err)
	assert.True(t, apperrors.IsInvalidInput(err))
	assert.Equal(t, "Required personal information is missing", err.Error())
	assert.Empty(t, client.prompt, "model must not be called")
}

func TestGenerate_ResumeTextTooLong(t *testing.T) {
	req := validRequest()
	req.ResumeText = strings.Repeat("a", MaxResumeTextLength+1)

	_, err := New(&fakeClient{}, time.Second).Generate(context.Background(), req)
	require.Error(t, err)
	assert.True(t, apperrors.IsInvalidInput(err))
	assert.Contains(t, err.Error(), "5000")
}

func TestGenerate_ResumeTextAtLimitCountsCharacters(t *testing.T) {
	req := validRequest()
	// Multi-byte runes count once each.
	req.ResumeText = strings.Repeat("é", MaxResumeTextLength)

	_, err := New(&fakeClient{response: "ok"}, time.Second).Generate(context.Background(), req)
	assert.NoError(t, err)
}

func TestGenerate_Timeout(t *testing.T) {
	g := New(&fakeClient{wait: true}, 20*time.Millisecond)

	_, err := g.Generate(context.Background(), validRequest())
	require.Error(t, err)
	assert.True(t, apperrors.IsUpstreamTimeout(err))
	assert.Equal(t, "Request timed out", err.Error())
}

func TestGenerate_UpstreamFailure(t *testing.T) {
	g := New(&fakeClient{err: errors.New("quota exhausted")}, time.Second)

	_, err := g.Generate(context.Background(), validRequest())
	require.Error(t, err)

	var perr *apperrors.ErrProcessing
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "Error generating resume: quota exhausted", err.Error())
}

func TestBuildPrompt_DefaultsForOptionalFields(t *testing.T) {
	prompt, err := BuildPrompt(validRequest())
	require.NoError(t, err)

	assert.Contains(t, prompt, "Education: Extract from resume text")
	assert.Contains(t, prompt, "Certifications: Extract from resume text")
	assert.Contains(t, prompt, "Years of Experience: Extract from resume")
	assert.NotContains(t, prompt, "{{.")
}

func TestBuildPrompt_UsesProvidedOptionalFields(t *testing.T) {
	req := validRequest()
	req.UserInfo.Education = "BSc Mathematics"
	req.UserInfo.YearsOfExperience = "15"

	prompt, err := BuildPrompt(req)
	require.NoError(t, err)
	assert.Contains(t, prompt, "Education: BSc Mathematics")
	assert.Contains(t, prompt, "Years of Experience: 15")
}

func TestNew_DefaultTimeout(t *testing.T) {
	assert.Equal(t, DefaultTimeout, New(&fakeClient{}, 0).timeout)
}
