package prediction

import (
	"strings"
)

// ExtractedFeatures is the human-readable digest of an Analysis returned to API clients.
type ExtractedFeatures struct {
	WordCount               int                 `json:"word_count"`
	UniqueWords             int                 `json:"unique_words"`
	DetectedSkills          []string            `json:"detected_skills"`
	Education               []string            `json:"education"`
	YearsExperience         int                 `json:"years_experience"`
	HasProjects             bool                `json:"has_projects"`
	HasInternshipExperience bool                `json:"has_internship_experience"`
	CategoryKeywordHits     map[string][]string `json:"category_keyword_hits"`
}

func Summarize(a *Analysis) ExtractedFeatures {
	out := ExtractedFeatures{
		DetectedSkills:      []string{},
		Education:           []string{},
		CategoryKeywordHits: map[string][]string{},
	}
	if a == nil {
		return out
	}

	v := a.Features
	out.WordCount = v.Int("word_count")
	out.UniqueWords = v.Int("unique_words")
	out.YearsExperience = v.Int("years_experience")
	out.HasProjects = v.Int("project_mentioned") != 0
	out.HasInternshipExperience = v.Int("internship_mentioned") != 0

	for _, key := range v.Keys() {
		if v.Int(key) != 1 {
			continue
		}
		switch {
		case strings.HasPrefix(key, "skill_"):
			out.DetectedSkills = append(out.DetectedSkills,
				strings.ReplaceAll(strings.TrimPrefix(key, "skill_"), "_", " "))
		case strings.HasPrefix(key, "has_"):
			out.Education = append(out.Education, strings.ToUpper(strings.TrimPrefix(key, "has_")))
		}
	}

	for category, hits := range a.CategoryHits {
		out.CategoryKeywordHits[category] = hits
	}

	return out
}
