// Package analysis extracts skills, organizations, education, locations and
// dates from résumé text.
package analysis

import (
	"log"
	"sort"
	"strings"

	"github.com/jonathan/job-assistant/internal/types"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// EducationKeywords mark a sentence as describing education.
var EducationKeywords = []string{"university", "college", "bachelor", "master", "phd", "degree", "diploma"}

// SkillKeywords are matched as substrings of the lowercased text.
var SkillKeywords = []string{
	"python", "javascript", "java", "c++", "react", "angular", "vue", "node",
	"management", "leadership", "communication", "project management", "agile",
	"marketing", "sales", "analytics", "design", "research", "development",
	"strategy", "planning", "analysis", "operations", "coordination",
}

// Analyzer runs the entity, education and skill passes over a text.
type Analyzer struct {
	recognizer Recognizer
}

// New creates an Analyzer. A nil recognizer selects DefaultRecognizer.
func New(recognizer Recognizer) *Analyzer {
	if recognizer == nil {
		recognizer = DefaultRecognizer()
	}
	return &Analyzer{
		recognizer: recognizer,
	}
}

var sharedProse = NewProseRecognizer()

// DefaultRecognizer combines the prose model with the rule patterns. Every
// default recognizer shares one loaded model.
func DefaultRecognizer() Recognizer {
	return MultiRecognizer{sharedProse, RuleRecognizer{}}
}

type stringSet map[string]struct{}

func (s stringSet) add(v string) {
	if v = strings.TrimSpace(v); v != "" {
		s[v] = struct{}{}
	}
}

func (s stringSet) sorted() []string {
	out := make([]string, 0, len(s))
	for v := range s {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// Analyze never fails: a recognizer error is logged and only the keyword
// passes contribute.
func (a *Analyzer) Analyze(text string) *types.AnalysisResult {
	skills := stringSet{}
	organizations := stringSet{}
	education := stringSet{}
	locations := stringSet{}
	dates := stringSet{}

	var ann Annotations
	if strings.TrimSpace(text) != "" {
		var err error
		ann, err = a.recognizer.Recognize(text)
		if err != nil {
			log.Printf("[analysis] entity recognition failed: %v", err)
			ann = Annotations{Sentences: splitSentences(text)}
		}
	}

	for _, ent := range ann.Entities {
		switch ent.Label {
		case LabelOrganization:
			organizations.add(ent.Text)
		case LabelPlace:
			locations.add(ent.Text)
		case LabelDate:
			dates.add(ent.Text)
		case LabelProduct, LabelCreativeWork:
			skills.add(ent.Text)
		}
	}

	for _, sent := range ann.Sentences {
		lower := strings.ToLower(sent)
		for _, kw := range EducationKeywords {
			if strings.Contains(lower, kw) {
				education.add(sent)
				break
			}
		}
	}

	// Casers carry state and cannot be shared between goroutines.
	title := cases.Title(language.English)
	lower := strings.ToLower(text)
	for _, kw := range SkillKeywords {
		if strings.Contains(lower, kw) {
			skills.add(title.String(kw))
		}
	}

	return &types.AnalysisResult{
		Skills:        skills.sorted(),
		Organizations: organizations.sorted(),
		Education:     education.sorted(),
		Locations:     locations.sorted(),
		Dates:         dates.sorted(),
		FullText:      text,
	}
}
