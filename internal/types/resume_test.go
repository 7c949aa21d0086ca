package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateResumeRequest_RequiredContactFields(t *testing.T) {
	valid := UserInfo{FullName: "Ada Lovelace", Email: "ada@example.com", Phone: "555-0100"}

	tests := []struct {
		name    string
		mutate  func(*UserInfo)
		wantErr bool
	}{
		{name: "all required present", mutate: func(*UserInfo) {}},
		{name: "missing full name", mutate: func(u *UserInfo) { u.FullName = "" }, wantErr: true},
		{name: "missing email", mutate: func(u *UserInfo) { u.Email = "" }, wantErr: true},
		{name: "missing phone", mutate: func(u *UserInfo) { u.Phone = "" }, wantErr: true},
		{name: "optional fields empty", mutate: func(u *UserInfo) { u.LinkedIn = ""; u.Location = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := valid
			tt.mutate(&info)
			req := GenerateResumeRequest{UserInfo: info, ResumeText: "text"}
			if tt.wantErr {
				assert.Error(t, req.Validate())
			} else {
				assert.NoError(t, req.Validate())
			}
		})
	}
}

func TestGenerateResumeRequest_DecodesClientBody(t *testing.T) {
	body := `{
		"userInfo": {"fullName": "Ada", "email": "ada@example.com", "phone": "1", "linkedIn": "in/ada", "yearsOfExperience": "12"},
		"skills": "Python, Leadership",
		"job_desc": "CTO",
		"resumeText": "Led teams"
	}`

	var req GenerateResumeRequest
	require.NoError(t, json.Unmarshal([]byte(body), &req))
	assert.Equal(t, "in/ada", req.UserInfo.LinkedIn)
	assert.Equal(t, "12", req.UserInfo.YearsOfExperience)
	assert.Equal(t, "CTO", req.JobDesc)
	assert.NoError(t, req.Validate())
}

func TestAnalysisResult_JSONShape(t *testing.T) {
	data, err := json.Marshal(UploadResponse{
		Filename:   "cv.pdf",
		ParsedData: &AnalysisResult{Skills: []string{}, FullText: "hi"},
	})
	require.NoError(t, err)
	assert.JSONEq(t,
		`{"filename":"cv.pdf","parsed_data":{"skills":[],"organizations":null,"education":null,"locations":null,"dates":null,"full_text":"hi"}}`,
		string(data))
}
