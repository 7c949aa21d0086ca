package analysis

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubRecognizer returns canned annotations.
type stubRecognizer struct {
	ann Annotations
	err error
}

func (s stubRecognizer) Recognize(string) (Annotations, error) {
	return s.ann, s.err
}

func TestAnalyze_EducationSentenceAndOrganization(t *testing.T) {
	result := New(RuleRecognizer{}).Analyze("I have a Bachelor degree from MIT")

	assert.Contains(t, result.Organizations, "MIT")
	assert.Equal(t, []string{"I have a Bachelor degree from MIT"}, result.Education)
}

func TestAnalyze_SkillKeywordsDeduplicated(t *testing.T) {
	result := New(RuleRecognizer{}).Analyze("Python developer. Wrote python daily.")

	count := 0
	for _, s := range result.Skills {
		if s == "Python" {
			count++
		}
	}
	assert.Equal(t, 1, count, "mixed-case mentions should collapse to one title-cased skill")
	assert.NotContains(t, result.Skills, "python")
}

func TestAnalyze_SkillKeywordsAreSubstrings(t *testing.T) {
	result := New(RuleRecognizer{}).Analyze("Built JavaScript apps in C++ with agile project management")

	// "java" is a substring of "javascript" and "management" of "project management".
	for _, want := range []string{"Javascript", "Java", "C++", "Agile", "Project Management", "Management"} {
		assert.Contains(t, result.Skills, want)
	}
}

func TestAnalyze_EntityRouting(t *testing.T) {
	stub := stubRecognizer{ann: Annotations{
		Entities: []Entity{
			{Text: "Acme Corp", Label: LabelOrganization},
			{Text: "Berlin", Label: LabelPlace},
			{Text: "2019", Label: LabelDate},
			{Text: "Kubernetes", Label: LabelProduct},
			{Text: "The Art of Go", Label: LabelCreativeWork},
			{Text: "Ada Lovelace", Label: LabelOther},
			{Text: "Acme Corp", Label: LabelOrganization},
		},
	}}

	result := New(stub).Analyze("irrelevant")

	assert.Equal(t, []string{"Acme Corp"}, result.Organizations)
	assert.Equal(t, []string{"Berlin"}, result.Locations)
	assert.Equal(t, []string{"2019"}, result.Dates)
	assert.ElementsMatch(t, []string{"Kubernetes", "The Art of Go"}, result.Skills)
	assert.Empty(t, result.Education)
}

func TestAnalyze_DedupIsCaseSensitive(t *testing.T) {
	stub := stubRecognizer{ann: Annotations{
		Entities: []Entity{
			{Text: "ACME", Label: LabelOrganization},
			{Text: "Acme", Label: LabelOrganization},
		},
	}}

	result := New(stub).Analyze("x")
	assert.ElementsMatch(t, []string{"ACME", "Acme"}, result.Organizations)
}

func TestAnalyze_EducationKeywordsCaseInsensitive(t *testing.T) {
	stub := stubRecognizer{ann: Annotations{
		Sentences: []string{
			"  Earned a PhD in physics.  ",
			"Worked at a bakery.",
			"Attended Community COLLEGE",
			"Holds a HIGH SCHOOL DIPLOMA",
		},
	}}

	result := New(stub).Analyze("x")
	assert.ElementsMatch(t, []string{
		"Earned a PhD in physics.",
		"Attended Community COLLEGE",
		"Holds a HIGH SCHOOL DIPLOMA",
	}, result.Education)
}

func TestAnalyze_RecognizerFailureFallsBack(t *testing.T) {
	stub := stubRecognizer{err: errors.New("model unavailable")}

	result := New(stub).Analyze("Studied at a university. Loves python.")
	assert.Equal(t, []string{"Studied at a university."}, result.Education)
	assert.Equal(t, []string{"Python"}, result.Skills)
	assert.Empty(t, result.Organizations)
}

func TestAnalyze_EmptyText(t *testing.T) {
	result := New(RuleRecognizer{}).Analyze("   ")

	assert.Empty(t, result.Skills)
	assert.Empty(t, result.Organizations)
	assert.Empty(t, result.Education)
	assert.Empty(t, result.Locations)
	assert.Empty(t, result.Dates)
	assert.Equal(t, "   ", result.FullText)
}

func TestAnalyze_ReturnsFullText(t *testing.T) {
	text := "Jane Doe. Senior Engineer at Globex Corporation, Springfield, IL. 2018 - 2022."
	result := New(RuleRecognizer{}).Analyze(text)

	assert.Equal(t, text, result.FullText)
	assert.Contains(t, result.Organizations, "Globex Corporation")
	assert.Contains(t, result.Locations, "Springfield, IL")
	assert.NotContains(t, result.Organizations, "IL", "state codes belong to the place")
	assert.Contains(t, result.Dates, "2018 - 2022")
}

func TestAnalyze_ResultsAreSorted(t *testing.T) {
	result := New(RuleRecognizer{}).Analyze("sales marketing analytics")
	assert.Equal(t, []string{"Analytics", "Marketing", "Sales"}, result.Skills)
}

func TestAnalyze_ConcurrentUse(t *testing.T) {
	a := New(RuleRecognizer{})
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result := a.Analyze("React and Node developer with leadership experience")
			assert.ElementsMatch(t, []string{"React", "Node", "Leadership"}, result.Skills)
		}()
	}
	wg.Wait()
}

func TestAnalyze_DefaultRecognizer(t *testing.T) {
	result := New(nil).Analyze("I have a Bachelor degree from MIT. I write Python and python.")

	require.NotEmpty(t, result.Education)
	assert.Contains(t, result.Education[0], "Bachelor degree")
	assert.Contains(t, result.Organizations, "MIT")
	assert.Contains(t, result.Skills, "Python")
	assert.NotContains(t, result.Skills, "python")
}

func TestAnalyze_DefaultRecognizerLocations(t *testing.T) {
	text := "Jane Doe. San Francisco, CA. Software Engineer at Google from January 2019 to 2023. " +
		"I have a Bachelor degree from Stanford University. Skilled in Python, Go, Docker and project management."
	result := New(nil).Analyze(text)

	assert.Contains(t, result.Locations, "San Francisco, CA")
	for _, notPlace := range []string{"Google", "Python", "Go", "Bachelor", "CA", "Docker", "Stanford", "Jane Doe"} {
		assert.NotContains(t, result.Locations, notPlace)
	}
	assert.Contains(t, result.Organizations, "Google")
	assert.Contains(t, result.Organizations, "Stanford University")
	assert.Contains(t, result.Skills, "Docker", "known products are reported as skills")
	assert.Contains(t, result.Dates, "January 2019")
}
