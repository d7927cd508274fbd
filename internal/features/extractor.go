package features

import (
	"strconv"
	"strings"
)

// Extraction is the signal vector of one resume plus the category keywords
// that were found, keyed by category name.
type Extraction struct {
	Vector       Vector
	CategoryHits map[string][]string
}

type Extractor struct {
	profile Profile
}

func NewExtractor(profile Profile) *Extractor {
	return &Extractor{profile: profile}
}

var (
	servingExtractor  = NewExtractor(Serving)
	trainingExtractor = NewExtractor(Training)
)

// Extract applies the Serving profile.
func Extract(text string) Extraction {
	return servingExtractor.Extract(text)
}

// ExtractTraining applies the boosted Training profile.
func ExtractTraining(text string) Extraction {
	return trainingExtractor.Extract(text)
}

// Extract derives counts, flags, experience and category scores from text.
// Substring checks assume text is already lowercase.
func (e *Extractor) Extract(text string) Extraction {
	p := e.profile
	words := tokens(text)

	unique := make(map[string]struct{}, len(words))
	for _, w := range words {
		unique[w] = struct{}{}
	}

	fields := make([]Field, 0, 2+len(p.Skills)+len(p.Education)+3+len(p.Categories))
	fields = append(fields,
		Field{Name: "word_count", Value: len(words)},
		Field{Name: "unique_words", Value: len(unique)},
	)

	for _, skill := range p.Skills {
		fields = append(fields, Field{Name: "skill_" + skill, Value: flag(strings.Contains(text, skill))})
	}

	for _, rule := range p.Education {
		fields = append(fields, Field{Name: rule.Field, Value: flag(rule.Pattern.MatchString(text))})
	}

	fields = append(fields,
		Field{Name: "years_experience", Value: e.yearsOfExperience(text)},
		Field{Name: "project_mentioned", Value: flag(containsAny(text, p.ProjectKeywords))},
		Field{Name: "internship_mentioned", Value: flag(containsAny(text, p.InternshipKeywords))},
	)

	hits := make(map[string][]string)
	for _, category := range p.Categories {
		var found []string
		for _, kw := range category.Keywords {
			if strings.Contains(text, kw) {
				found = append(found, kw)
			}
		}
		fields = append(fields, Field{Name: category.Column(), Value: len(found) * p.KeywordWeight})
		if len(found) > 0 {
			hits[category.Name] = found
		}
	}

	return Extraction{
		Vector:       NewVector(fields...),
		CategoryHits: hits,
	}
}

// yearsOfExperience returns the largest figure mentioned by any experience
// pattern. Four-digit figures are read as a start year when the profile says so.
func (e *Extractor) yearsOfExperience(text string) int {
	best, found := 0, false
	for _, pattern := range e.profile.Experience {
		for _, m := range pattern.FindAllStringSubmatch(text, -1) {
			n, err := strconv.Atoi(m[1])
			if err != nil {
				continue
			}
			if e.profile.ConvertYears && len(m[1]) == 4 {
				n = ReferenceYear - n
			}
			if !found || n > best {
				best, found = n, true
			}
		}
	}
	return best
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

func flag(ok bool) int {
	if ok {
		return 1
	}
	return 0
}
