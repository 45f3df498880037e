package scoring

import (
	"math"
	"sort"

	"github.com/noah-isme/campus2career-api/internal/models"
)

const (
	overlapWeight    = 0.7
	breadthWeight    = 0.3
	breadthSaturates = 20.0
)

// Match scores candidate skills against required skills. Both sides are
// trimmed, lower-cased and de-duplicated; matched and missing keep the order
// of required. An empty required set scores 0.
func Match(candidate, required []string) models.MatchResult {
	req := uniqueNormalized(required)
	have := make(map[string]struct{}, len(candidate))
	for _, c := range uniqueNormalized(candidate) {
		have[c] = struct{}{}
	}

	result := models.MatchResult{MatchedSkills: []string{}, MissingSkills: []string{}}
	for _, r := range req {
		if _, ok := have[r]; ok {
			result.MatchedSkills = append(result.MatchedSkills, r)
		} else {
			result.MissingSkills = append(result.MissingSkills, r)
		}
	}
	if len(req) > 0 {
		result.MatchScore = Round2(float64(len(result.MatchedSkills)) / float64(len(req)) * 100)
	}
	return result
}

// Relevance blends the overlap ratio (70%) with the breadth of the candidate's
// skill set (30%, saturating at 20 skills) on a 0..100 scale.
func Relevance(candidate, required []string) float64 {
	cand := uniqueNormalized(candidate)
	req := uniqueNormalized(required)

	var overlap float64
	if len(req) > 0 {
		have := make(map[string]struct{}, len(cand))
		for _, c := range cand {
			have[c] = struct{}{}
		}
		matched := 0
		for _, r := range req {
			if _, ok := have[r]; ok {
				matched++
			}
		}
		overlap = float64(matched) / float64(len(req))
	}
	breadth := math.Min(1, float64(len(cand))/breadthSaturates)
	return Round2((overlapWeight*overlap + breadthWeight*breadth) * 100)
}

// SortByMatchScore orders matches by descending match score, keeping input
// order for ties.
func SortByMatchScore(matches []models.JobMatch) {
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Match.MatchScore > matches[j].Match.MatchScore
	})
}

// SortByRelevance orders matches by descending relevance, keeping input order
// for ties.
func SortByRelevance(matches []models.JobMatch) {
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Relevance > matches[j].Relevance
	})
}

// Round2 rounds half away from zero to two decimals.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func uniqueNormalized(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, item := range items {
		n := normalize(item)
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}
