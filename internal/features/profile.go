package features

import (
	"regexp"
	"strings"
)

// ReferenceYear converts "since YYYY" mentions into years of experience.
const ReferenceYear = 2025

// EducationRule sets Field to 1 when Pattern matches.
type EducationRule struct {
	Field   string
	Pattern *regexp.Regexp
}

// Category groups the keywords that hint at one internship track.
type Category struct {
	Name     string
	Keywords []string
}

// Column is the vector key holding the category's keyword score.
func (c Category) Column() string {
	return strings.ReplaceAll(strings.ToLower(c.Name), " ", "_") + "_keywords"
}

// Profile is a declarative extraction table. Rules are evaluated in slice order
// and the resulting vector keys follow the same order.
type Profile struct {
	Skills             []string
	Education          []EducationRule
	Experience         []*regexp.Regexp
	ConvertYears       bool
	ProjectKeywords    []string
	InternshipKeywords []string
	Categories         []Category
	KeywordWeight      int
}

var skills = []string{
	"python", "java", "c++", "sql", "machine learning", "deep learning",
	"nlp", "html", "css", "javascript", "react", "django", "flask",
}

// Serving is the profile applied to uploaded resumes at prediction time.
var Serving = Profile{
	Skills: skills,
	Education: []EducationRule{
		{Field: "has_btech", Pattern: regexp.MustCompile(`\bb\.?tech\b`)},
		{Field: "has_mtech", Pattern: regexp.MustCompile(`\bm\.?tech\b`)},
		{Field: "has_phd", Pattern: regexp.MustCompile(`\bph\.?d\b`)},
		{Field: "has_mba", Pattern: regexp.MustCompile(`\bmba\b`)},
		{Field: "has_bsc", Pattern: regexp.MustCompile(`\bb\.?sc\b`)},
		{Field: "has_msc", Pattern: regexp.MustCompile(`\bm\.?sc\b`)},
	},
	Experience: []*regexp.Regexp{
		regexp.MustCompile(`(\d+)\s*(?:years?|yrs?)\s*(?:of\s*)?(?:experience|exp)`),
		regexp.MustCompile(`(\d+)\s*(?:\+|plus)\s*(?:years?|yrs?)`),
		regexp.MustCompile(`over\s+(\d+)\s*(?:years?|yrs?)`),
		regexp.MustCompile(`since\s+(\d{4})`),
	},
	ConvertYears: true,
	ProjectKeywords: []string{
		"project", "developed", "built", "implemented", "designed",
		"created", "contributed", "engineered",
	},
	InternshipKeywords: []string{"internship", "intern", "trainee", "apprentice", "fellowship"},
	Categories: []Category{
		{Name: "Data Science", Keywords: []string{"tensorflow", "pytorch", "pandas", "numpy", "scikit-learn", "matplotlib", "seaborn", "jupyter"}},
		{Name: "Web Development", Keywords: []string{"nodejs", "angular", "vue", "bootstrap", "express", "typescript"}},
		{Name: "DevOps Engineer", Keywords: []string{"docker", "kubernetes", "jenkins", "terraform", "ansible", "aws", "azure", "gcp", "ci/cd"}},
		{Name: "Automation Testing", Keywords: []string{"selenium", "pytest", "junit", "testng", "cypress", "automation framework"}},
		{Name: "Blockchain", Keywords: []string{"blockchain", "ethereum", "solidity", "smart contract", "web3"}},
		{Name: "Mobile App Development", Keywords: []string{"android", "ios", "flutter", "react native", "swift", "kotlin"}},
		{Name: "Java Developer", Keywords: []string{"spring boot", "hibernate", "jsp", "servlets"}},
	},
	KeywordWeight: 1,
}

// Training reproduces the feature table the classifiers were fit on. Its
// keyword lists are narrower and category scores are boosted five-fold, so it
// must not be swapped for Serving.
var Training = Profile{
	Skills: skills,
	Education: []EducationRule{
		{Field: "has_btech", Pattern: regexp.MustCompile(`\bb\.?tech\b`)},
		{Field: "has_mtech", Pattern: regexp.MustCompile(`\bm\.?tech\b`)},
		{Field: "has_phd", Pattern: regexp.MustCompile(`\bph\.?d\b`)},
		{Field: "has_mba", Pattern: regexp.MustCompile(`mba`)},
		{Field: "has_bsc", Pattern: regexp.MustCompile(`\bb\.?sc\b`)},
		{Field: "has_msc", Pattern: regexp.MustCompile(`\bm\.?sc\b`)},
	},
	Experience: []*regexp.Regexp{
		regexp.MustCompile(`(\d+)\s*(?:years?|yrs?)\s*(?:experience|exp)`),
		regexp.MustCompile(`(\d+)\s*(?:\+|plus)\s*(?:years?|yrs?)`),
	},
	ProjectKeywords:    []string{"project", "developed", "built"},
	InternshipKeywords: []string{"internship", "intern", "trainee"},
	Categories: []Category{
		{Name: "Data Science", Keywords: []string{"tensorflow", "pytorch", "pandas", "numpy", "scikit-learn", "matplotlib", "seaborn"}},
		{Name: "Web Development", Keywords: []string{"nodejs", "angular", "vue", "bootstrap", "express", "typescript"}},
		{Name: "DevOps Engineer", Keywords: []string{"docker", "kubernetes", "jenkins", "terraform", "ansible", "aws", "azure", "gcp"}},
		{Name: "Automation Testing", Keywords: []string{"selenium", "pytest", "junit", "testng", "cypress"}},
		{Name: "Blockchain", Keywords: []string{"blockchain", "ethereum", "solidity", "smart contract", "web3"}},
		{Name: "Mobile App Development", Keywords: []string{"android", "ios", "flutter", "react native", "swift", "kotlin"}},
		{Name: "Java Developer", Keywords: []string{"spring boot", "hibernate", "jsp", "servlets"}},
	},
	KeywordWeight: 5,
}
