package analysis

import (
	"fmt"
	"regexp"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/jdkato/prose/v2"
)

// Label classifies a recognized span.
type Label string

// Span labels the analyzer routes into result sets.
const (
	LabelOrganization Label = "organization"
	LabelPlace        Label = "place"
	LabelDate         Label = "date"
	LabelProduct      Label = "product"
	LabelCreativeWork Label = "creative_work"
	LabelOther        Label = "other"
)

// Entity is a typed span of the input text.
type Entity struct {
	Text  string
	Label Label
}

// Annotations is the output of one recognition pass.
type Annotations struct {
	Entities  []Entity
	Sentences []string
}

// Recognizer finds typed entities and sentence boundaries in text.
type Recognizer interface {
	Recognize(text string) (Annotations, error)
}

// proseLabels maps the statistical model's tag set onto Label. The bundled
// English model emits only PERSON and GPE; people are not routed anywhere.
var proseLabels = map[string]Label{
	"GPE": LabelPlace,
}

// ProseRecognizer runs the prose NER model and sentence segmenter. The model
// is loaded on first use and reused by every later call.
type ProseRecognizer struct {
	once  sync.Once
	model *prose.Model
	err   error

	// Serializes inference on the shared model.
	mu sync.Mutex
}

// NewProseRecognizer creates a ProseRecognizer with a lazily loaded model.
func NewProseRecognizer() *ProseRecognizer {
	return &ProseRecognizer{}
}

func (p *ProseRecognizer) loadModel() (*prose.Model, error) {
	p.once.Do(func() {
		doc, err := prose.NewDocument("")
		if err != nil {
			p.err = fmt.Errorf("failed to load entity model: %w", err)
			return
		}
		p.model = doc.Model
	})
	return p.model, p.err
}

// Recognize implements Recognizer. Place spans the model is known to confuse
// with skills, degrees or state codes are dropped.
func (p *ProseRecognizer) Recognize(text string) (Annotations, error) {
	model, err := p.loadModel()
	if err != nil {
		return Annotations{}, err
	}

	p.mu.Lock()
	doc, err := prose.NewDocument(text, prose.UsingModel(model))
	p.mu.Unlock()
	if err != nil {
		return Annotations{}, fmt.Errorf("failed to analyze document: %w", err)
	}

	var out Annotations
	for _, ent := range doc.Entities() {
		label, ok := proseLabels[ent.Label]
		if !ok {
			label = LabelOther
		}
		if label == LabelPlace && !plausiblePlace(ent.Text) {
			continue
		}
		out.Entities = append(out.Entities, Entity{Text: ent.Text, Label: label})
	}
	for _, sent := range doc.Sentences() {
		out.Sentences = append(out.Sentences, sent.Text)
	}
	return out, nil
}

// plausiblePlace rejects short or all-caps spans, skill and degree words,
// and anything shaped like an organization or known product.
func plausiblePlace(s string) bool {
	s = strings.TrimSpace(s)
	if utf8.RuneCountInString(s) < 3 || strings.ToUpper(s) == s {
		return false
	}
	lower := strings.ToLower(s)
	for _, kw := range EducationKeywords {
		if strings.Contains(lower, kw) {
			return false
		}
	}
	for _, kw := range SkillKeywords {
		if lower == kw {
			return false
		}
	}
	return !orgSuffixPattern.MatchString(s) &&
		!knownOrgPattern.MatchString(s) &&
		!knownProductPattern.MatchString(s)
}

// Employers common enough on résumés to recognize by name.
var knownOrganizations = []string{
	"Google", "Microsoft", "Amazon", "Apple", "Meta", "Facebook", "Netflix",
	"Oracle", "Salesforce", "Adobe", "Intel", "Nvidia", "Uber", "Airbnb",
	"Stripe", "Shopify", "Spotify", "Deloitte", "Accenture", "Walmart",
}

// Tools and platforms reported as skills.
var knownProducts = []string{
	"Kubernetes", "Docker", "Terraform", "AWS", "Azure", "GCP", "Linux",
	"PostgreSQL", "MySQL", "MongoDB", "Redis", "Kafka", "Spark", "Hadoop",
	"TypeScript", "Golang", "Django", "Flask", "Excel", "Tableau", "Jira",
	"Figma", "Photoshop", "SAP", "HubSpot", "QuickBooks",
}

func wordListPattern(words []string) *regexp.Regexp {
	quoted := make([]string, len(words))
	for i, w := range words {
		quoted[i] = regexp.QuoteMeta(w)
	}
	return regexp.MustCompile(`\b(?:` + strings.Join(quoted, "|") + `)\b`)
}

var (
	knownOrgPattern     = wordListPattern(knownOrganizations)
	knownProductPattern = wordListPattern(knownProducts)
)

var (
	// Two to six capitals, e.g. MIT, IBM, UCLA.
	acronymPattern = regexp.MustCompile(`\b[A-Z]{2,6}\b`)
	// Capitalized words ending in a company or institution suffix.
	orgSuffixPattern = regexp.MustCompile(`\b(?:[A-Z][\w&'.-]*\s+){0,4}(?:Inc\.?|LLC|Ltd\.?|Corp\.?|Corporation|Company|Group|Technologies|Systems|Labs|University|College|Institute|School)\b(?:\s+of(?:\s+[A-Z][\w'-]*){1,3})?`)
	// City, ST.
	placePattern = regexp.MustCompile(`\b[A-Z][a-z]+(?:\s[A-Z][a-z]+)*,\s[A-Z]{2}\b`)
	// Month Year, MM/YYYY, bare years and year ranges.
	datePattern = regexp.MustCompile(`(?i)\b(?:(?:jan(?:uary)?|feb(?:ruary)?|mar(?:ch)?|apr(?:il)?|may|june?|july?|aug(?:ust)?|sep(?:t(?:ember)?)?|oct(?:ober)?|nov(?:ember)?|dec(?:ember)?)\.?\s+(?:19|20)\d{2}|\d{1,2}/(?:19|20)\d{2}|(?:19|20)\d{2}(?:\s*[-–]\s*(?:(?:19|20)\d{2}|present))?)\b`)
	// Sentence terminator followed by whitespace, or a line break.
	sentenceBreak = regexp.MustCompile(`[.!?]\s+|\n+`)
)

// RuleRecognizer tags entities with deterministic patterns.
type RuleRecognizer struct{}

// Recognize implements Recognizer.
func (RuleRecognizer) Recognize(text string) (Annotations, error) {
	var out Annotations

	placeSpans := placePattern.FindAllStringIndex(text, -1)
	for _, span := range placeSpans {
		out.Entities = append(out.Entities, Entity{Text: text[span[0]:span[1]], Label: LabelPlace})
	}

	for _, m := range orgSuffixPattern.FindAllString(text, -1) {
		out.Entities = append(out.Entities, Entity{Text: strings.TrimSpace(m), Label: LabelOrganization})
	}
	for _, m := range knownOrgPattern.FindAllString(text, -1) {
		out.Entities = append(out.Entities, Entity{Text: m, Label: LabelOrganization})
	}

	productSpans := knownProductPattern.FindAllStringIndex(text, -1)
	for _, span := range productSpans {
		out.Entities = append(out.Entities, Entity{Text: text[span[0]:span[1]], Label: LabelProduct})
	}

	for _, span := range acronymPattern.FindAllStringIndex(text, -1) {
		// State codes inside "City, ST" belong to the place, and AWS is a product.
		if within(span, placeSpans) || within(span, productSpans) {
			continue
		}
		out.Entities = append(out.Entities, Entity{Text: text[span[0]:span[1]], Label: LabelOrganization})
	}

	for _, m := range datePattern.FindAllString(text, -1) {
		out.Entities = append(out.Entities, Entity{Text: m, Label: LabelDate})
	}

	out.Sentences = splitSentences(text)
	return out, nil
}

func within(span []int, spans [][]int) bool {
	for _, s := range spans {
		if span[0] >= s[0] && span[1] <= s[1] {
			return true
		}
	}
	return false
}

func splitSentences(text string) []string {
	var sentences []string
	last := 0
	for _, loc := range sentenceBreak.FindAllStringIndex(text, -1) {
		// Keep the terminator, drop the whitespace after it.
		end := loc[0]
		if text[loc[0]] != '\n' {
			end++
		}
		if s := strings.TrimSpace(text[last:end]); s != "" {
			sentences = append(sentences, s)
		}
		last = loc[1]
	}
	if s := strings.TrimSpace(text[last:]); s != "" {
		sentences = append(sentences, s)
	}
	return sentences
}

// MultiRecognizer merges the output of several recognizers. Sentences come
// from the first recognizer that returns any. A place that is also named as an
// organization or product, or that sits inside a longer span, is dropped.
type MultiRecognizer []Recognizer

// Recognize implements Recognizer. It fails only when every recognizer fails.
func (m MultiRecognizer) Recognize(text string) (Annotations, error) {
	var out Annotations
	var errs []string
	for _, r := range m {
		ann, err := r.Recognize(text)
		if err != nil {
			errs = append(errs, err.Error())
			continue
		}
		out.Entities = append(out.Entities, ann.Entities...)
		if len(out.Sentences) == 0 {
			out.Sentences = ann.Sentences
		}
	}
	if len(errs) == len(m) && len(m) > 0 {
		return Annotations{}, fmt.Errorf("all recognizers failed: %s", strings.Join(errs, "; "))
	}
	out.Entities = resolvePlaces(out.Entities)
	return out, nil
}

func resolvePlaces(entities []Entity) []Entity {
	var named []Entity
	for _, ent := range entities {
		if ent.Label != LabelOther && ent.Label != LabelDate {
			named = append(named, ent)
		}
	}

	kept := entities[:0]
	for _, ent := range entities {
		if ent.Label == LabelPlace && shadowed(ent.Text, named) {
			continue
		}
		kept = append(kept, ent)
	}
	return kept
}

// shadowed reports whether place is labeled otherwise elsewhere or appears as
// whole words inside a longer span.
func shadowed(place string, named []Entity) bool {
	for _, n := range named {
		if n.Text == place {
			if n.Label != LabelPlace {
				return true
			}
			continue
		}
		if strings.Contains(" "+n.Text+" ", " "+place+" ") || strings.Contains(" "+n.Text+",", " "+place+",") {
			return true
		}
	}
	return false
}
