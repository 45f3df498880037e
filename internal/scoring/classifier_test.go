package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/campus2career-api/internal/models"
)

func TestClassifySkills(t *testing.T) {
	cases := []struct {
		name       string
		skills     []string
		domain     string
		confidence int
	}{
		{"web", []string{"React", " html ", "CSS", "python"}, "Web Development", 45},
		{"none", []string{"cooking"}, GeneralDomain, 0},
		{"empty", nil, GeneralDomain, 0},
		{"tie goes to first declared", []string{"react", "pandas"}, "Web Development", 15},
		{"clamped", []string{"html", "css", "javascript", "typescript", "react", "angular", "vue", "php"}, "Web Development", 100},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ClassifySkills(tc.skills)
			assert.Equal(t, tc.domain, got.Domain)
			assert.Equal(t, tc.confidence, got.Confidence)
		})
	}
}

func TestClassifySubjectsUsesWholeWords(t *testing.T) {
	got := ClassifySubjects([]models.SubjectPerformance{
		{Subject: "data structures and algorithms", Average: 82},
		{Subject: "operating systems", Average: 70},
		{Subject: "google workspace", Average: 90},
		{Subject: "machine learning", Average: 30},
	})
	assert.Equal(t, "Software Engineering", got.Domain)
	assert.Equal(t, 30, got.Confidence)
}

func TestFillMissingSkills(t *testing.T) {
	assert.Equal(t, []string{"keep"}, FillMissingSkills("Web Development", nil, []string{"keep"}))

	filled := FillMissingSkills("Mobile Development", []string{"Kotlin", "ANDROID"}, nil)
	assert.NotContains(t, filled, "kotlin")
	assert.NotContains(t, filled, "android")
	assert.Contains(t, filled, "flutter")

	assert.Empty(t, FillMissingSkills(GeneralDomain, nil, nil))
}

func TestRankDomains(t *testing.T) {
	ranked := RankDomains([]string{"docker", "aws", "python"}, []models.SubjectPerformance{{Subject: "cloud computing", Average: 80}})
	if assert.Len(t, ranked, 2) {
		assert.Equal(t, DomainScore{Domain: "Cloud & DevOps", Matches: 3}, ranked[0])
		assert.Equal(t, DomainScore{Domain: "Data Science", Matches: 1}, ranked[1])
	}
}

func TestMentionedKeywords(t *testing.T) {
	text := "Built REST API services in Node.js and Docker; learning Kubernetes. Docker again. Pythonic code."
	assert.Equal(t, []string{"node.js", "rest api", "docker", "kubernetes"}, MentionedKeywords(text))
	assert.Empty(t, MentionedKeywords(""))
}

func TestLookup(t *testing.T) {
	d, ok := Lookup("Cybersecurity")
	assert.True(t, ok)
	assert.NotEmpty(t, d.Roles)
	_, ok = Lookup(GeneralDomain)
	assert.False(t, ok)
}
