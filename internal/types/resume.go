package types

import "github.com/go-playground/validator/v10"

// AnalysisResult is the structured record extracted from a résumé.
// Each list is a set: entries are unique and their order carries no meaning.
type AnalysisResult struct {
	Skills        []string `json:"skills"`
	Organizations []string `json:"organizations"`
	Education     []string `json:"education"`
	Locations     []string `json:"locations"`
	Dates         []string `json:"dates"`
	FullText      string   `json:"full_text"`
}

// UploadResponse is returned by the résumé upload endpoint.
type UploadResponse struct {
	Filename   string          `json:"filename"`
	ParsedData *AnalysisResult `json:"parsed_data"`
}

// UserInfo is the contact block of a résumé generation request.
type UserInfo struct {
	FullName          string `json:"fullName" validate:"required"`
	Email             string `json:"email" validate:"required"`
	Phone             string `json:"phone" validate:"required"`
	Location          string `json:"location,omitempty"`
	LinkedIn          string `json:"linkedIn,omitempty"`
	Education         string `json:"education,omitempty"`
	Certifications    string `json:"certifications,omitempty"`
	YearsOfExperience string `json:"yearsOfExperience,omitempty"`
}

// GenerateResumeRequest is the body of the résumé generation endpoint.
type GenerateResumeRequest struct {
	UserInfo   UserInfo `json:"userInfo"`
	Skills     string   `json:"skills"`
	JobDesc    string   `json:"job_desc"`
	ResumeText string   `json:"resumeText"`
}

// Validate checks the nested UserInfo required fields.
func (r *GenerateResumeRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// GenerateResumeResponse carries the generated résumé text.
type GenerateResumeResponse struct {
	Resume string `json:"resume"`
}
