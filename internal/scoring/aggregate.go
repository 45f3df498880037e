package scoring

import (
	"sort"

	"github.com/noah-isme/campus2career-api/internal/models"
)

const (
	StrengthThreshold = 75.0
	WeaknessThreshold = 50.0
	trendTolerance    = 2.0
)

// OverallPercentage is total marks over total maximum marks, as a percentage
// rounded to two decimals. It is 0 when no subject carries maximum marks.
func OverallPercentage(subjects []models.Subject) float64 {
	var marks, maxMarks float64
	for _, s := range subjects {
		marks += s.Marks
		maxMarks += s.MaxMarks
	}
	if maxMarks <= 0 {
		return 0
	}
	return Round2(marks / maxMarks * 100)
}

// Summarize derives the academic summary of a student from all of their
// marksheets, which must be ordered by creation time. It returns nil for an
// empty set. UpdatedAt is left for the caller to stamp.
func Summarize(studentID string, marksheets []models.Marksheet) *models.AcademicSummary {
	if len(marksheets) == 0 {
		return nil
	}

	type acc struct {
		sum   float64
		count int
	}
	totals := make(map[string]*acc)
	var order []string
	for _, m := range marksheets {
		for _, s := range m.Subjects {
			key := normalize(s.Name)
			if key == "" || s.MaxMarks <= 0 {
				continue
			}
			a, ok := totals[key]
			if !ok {
				a = &acc{}
				totals[key] = a
				order = append(order, key)
			}
			a.sum += s.Percentage()
			a.count++
		}
	}

	summary := &models.AcademicSummary{
		StudentID:              studentID,
		Strengths:              []string{},
		Weaknesses:             []string{},
		SemesterTrend:          make(models.SemesterTrend, 0, len(marksheets)),
		SubjectWisePerformance: make(models.SubjectPerformances, 0, len(order)),
		TotalSemesters:         len(marksheets),
	}

	for _, key := range order {
		a := totals[key]
		avg := Round2(a.sum / float64(a.count))
		switch {
		case avg >= StrengthThreshold:
			summary.Strengths = append(summary.Strengths, key)
		case avg < WeaknessThreshold:
			summary.Weaknesses = append(summary.Weaknesses, key)
		}
		summary.SubjectWisePerformance = append(summary.SubjectWisePerformance, models.SubjectPerformance{
			Subject:  key,
			Average:  avg,
			Attempts: a.count,
		})
	}
	sort.Slice(summary.SubjectWisePerformance, func(i, j int) bool {
		return summary.SubjectWisePerformance[i].Subject < summary.SubjectWisePerformance[j].Subject
	})

	var sum float64
	lo, hi := marksheets[0].OverallPercentage, marksheets[0].OverallPercentage
	for i, m := range marksheets {
		p := m.OverallPercentage
		sum += p
		if p < lo {
			lo = p
		}
		if p > hi {
			hi = p
		}
		trend := models.TrendStable
		if i > 0 {
			trend = Trend(marksheets[i-1].OverallPercentage, p)
		}
		summary.SemesterTrend = append(summary.SemesterTrend, models.SemesterTrendPoint{
			Semester:   m.Semester,
			Percentage: p,
			Trend:      trend,
		})
	}

	summary.OverallAverage = Round2(sum / float64(len(marksheets)))
	summary.ConsistencyScore = Consistency(lo, hi, len(marksheets))

	domain := ClassifySubjects(summary.SubjectWisePerformance)
	summary.RecommendedDomain = domain.Domain
	summary.DomainConfidence = domain.Confidence

	return summary
}

// Trend labels the move from prev to cur.
func Trend(prev, cur float64) string {
	diff := Round2(cur - prev)
	switch {
	case diff > trendTolerance:
		return models.TrendUp
	case diff < -trendTolerance:
		return models.TrendDown
	default:
		return models.TrendStable
	}
}

// Consistency is 100 minus the spread of semester percentages, floored at 0.
// A single semester is fully consistent.
func Consistency(lo, hi float64, semesters int) float64 {
	if semesters <= 1 {
		return 100
	}
	score := 100 - (hi - lo)
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return Round2(score)
}
