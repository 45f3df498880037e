package scoring

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/campus2career-api/internal/models"
)

func marksheet(semester string, subjects ...models.Subject) models.Marksheet {
	return models.Marksheet{Semester: semester, Subjects: subjects, OverallPercentage: OverallPercentage(subjects)}
}

func subj(name string, marks, max float64) models.Subject {
	return models.Subject{Name: name, Marks: marks, MaxMarks: max}
}

func TestSummarizeSingleSemester(t *testing.T) {
	first := marksheet("Semester 1", subj("Math", 90, 100), subj("History", 40, 100))
	require.Equal(t, 65.0, first.OverallPercentage)

	summary := Summarize("student-1", []models.Marksheet{first})
	require.NotNil(t, summary)

	assert.Equal(t, []string{"math"}, []string(summary.Strengths))
	assert.Equal(t, []string{"history"}, []string(summary.Weaknesses))
	assert.Equal(t, 100.0, summary.ConsistencyScore)
	assert.Equal(t, 65.0, summary.OverallAverage)
	assert.Equal(t, 1, summary.TotalSemesters)
	require.Len(t, summary.SemesterTrend, 1)
	assert.Equal(t, models.TrendStable, summary.SemesterTrend[0].Trend)
	assert.Equal(t, models.SubjectPerformances{
		{Subject: "history", Average: 40, Attempts: 1},
		{Subject: "math", Average: 90, Attempts: 1},
	}, summary.SubjectWisePerformance)
}

func TestSummarizeSecondSemesterTrendsUp(t *testing.T) {
	first := marksheet("Semester 1", subj("Math", 90, 100), subj("History", 40, 100))
	second := marksheet("Semester 2", subj("Physics", 70, 100), subj("math", 70, 100))
	require.Equal(t, 70.0, second.OverallPercentage)

	summary := Summarize("student-1", []models.Marksheet{first, second})
	require.Len(t, summary.SemesterTrend, 2)
	assert.Equal(t, models.TrendUp, summary.SemesterTrend[1].Trend)
	assert.Equal(t, 95.0, summary.ConsistencyScore)
	assert.Equal(t, 67.5, summary.OverallAverage)
	assert.Equal(t, 2, summary.TotalSemesters)
	// math averages (90+70)/2 = 80 across both sheets
	assert.Contains(t, summary.Strengths, "math")
}

func TestSummarizeEmptyIsNil(t *testing.T) {
	assert.Nil(t, Summarize("student-1", nil))
}

func TestSummarizeThresholdBoundaries(t *testing.T) {
	summary := Summarize("s", []models.Marksheet{marksheet("S1",
		subj("Exactly Strong", 75, 100),
		subj("Exactly Neutral", 50, 100),
		subj("Just Weak", 49.99, 100),
	)})
	assert.Equal(t, []string{"exactly strong"}, []string(summary.Strengths))
	assert.Equal(t, []string{"just weak"}, []string(summary.Weaknesses))
}

func TestSummarizeIsDeterministic(t *testing.T) {
	sheets := []models.Marksheet{
		marksheet("S1", subj("Data Structures", 81, 100), subj("Python Programming", 77, 100), subj("English", 45, 100)),
		marksheet("S2", subj("Algorithms", 64, 100), subj("SQL and Databases", 88, 100)),
		marksheet("S3", subj("Operating Systems", 58, 100)),
	}
	a, err := json.Marshal(Summarize("s", sheets))
	require.NoError(t, err)
	b, err := json.Marshal(Summarize("s", sheets))
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))
}

func TestSummarizeInvariantsOnRandomInput(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for round := 0; round < 200; round++ {
		n := 1 + rng.Intn(6)
		sheets := make([]models.Marksheet, 0, n)
		for i := 0; i < n; i++ {
			var subjects []models.Subject
			for j := 0; j < 1+rng.Intn(5); j++ {
				subjects = append(subjects, subj(fmt.Sprintf("Subject %d", rng.Intn(6)), float64(rng.Intn(101)), 100))
			}
			sheets = append(sheets, marksheet(fmt.Sprintf("S%d", i+1), subjects...))
		}

		summary := Summarize("s", sheets)
		assert.GreaterOrEqual(t, summary.ConsistencyScore, 0.0)
		assert.LessOrEqual(t, summary.ConsistencyScore, 100.0)
		if n == 1 {
			assert.Equal(t, 100.0, summary.ConsistencyScore)
		}
		weak := map[string]bool{}
		for _, w := range summary.Weaknesses {
			weak[w] = true
		}
		for _, s := range summary.Strengths {
			assert.False(t, weak[s], "%s is both strength and weakness", s)
		}
		assert.Equal(t, models.TrendStable, summary.SemesterTrend[0].Trend)
	}
}

func TestConsistencyFloorsAtZero(t *testing.T) {
	assert.Equal(t, 0.0, Consistency(0, 100, 2))
	assert.Equal(t, 100.0, Consistency(40, 90, 1))
	assert.Equal(t, 87.5, Consistency(60, 72.5, 3))
}

func TestTrend(t *testing.T) {
	cases := []struct {
		prev, cur float64
		want      string
	}{
		{65, 70, models.TrendUp},
		{70, 65, models.TrendDown},
		{65, 67, models.TrendStable},
		{67, 65, models.TrendStable},
		{65, 67.01, models.TrendUp},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Trend(tc.prev, tc.cur), "%v -> %v", tc.prev, tc.cur)
	}
}

func TestOverallPercentage(t *testing.T) {
	assert.Equal(t, 65.0, OverallPercentage([]models.Subject{subj("Math", 90, 100), subj("History", 40, 100)}))
	assert.Equal(t, 66.67, OverallPercentage([]models.Subject{subj("A", 2, 3)}))
	assert.Equal(t, 0.0, OverallPercentage(nil))
}
