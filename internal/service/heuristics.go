package service

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/noah-isme/campus2career-api/internal/models"
	"github.com/noah-isme/campus2career-api/internal/scoring"
)

var (
	semesterPattern = regexp.MustCompile(`(?i)\b(?:semester|sem)\.?\s*[:#\-]?\s*([ivx]{1,4}|\d{1,2})\b`)
	// A label that is nothing but a semester marker or a bare number.
	semesterLabelPattern = regexp.MustCompile(`(?i)^(?:(?:semester|sem)\.?\s*[:#\-]?\s*)?([ivx]{1,4}|\d{1,2})$`)
	subjectPattern       = regexp.MustCompile(`(?i)^\s*(?:\d{1,3}[.)]\s+)?([a-z][a-z0-9&/().,'\- ]*?[a-z)])\s*[:|\-]?\s+(\d{1,3}(?:\.\d+)?)(?:\s*(?:/|\bout of\b|\bof\b)\s*(\d{1,4}(?:\.\d+)?))?(?:\s+([a-f][+-]?|o|p))?\s*$`)
	bulletPrefix         = regexp.MustCompile(`^\s*(?:[-*•▪◦]|\d{1,2}[.)])\s*`)

	romanNumerals = map[string]int{"i": 1, "ii": 2, "iii": 3, "iv": 4, "v": 5, "vi": 6, "vii": 7, "viii": 8, "ix": 9, "x": 10, "xi": 11, "xii": 12}

	nonSubjectNames = map[string]struct{}{
		"total": {}, "grand total": {}, "percentage": {}, "result": {}, "cgpa": {}, "sgpa": {}, "gpa": {},
		"roll no": {}, "roll number": {}, "year": {}, "marks obtained": {}, "max marks": {}, "page": {}, "age": {},
	}

	resumeSections = map[string]string{
		"experience": "experience", "work experience": "experience", "professional experience": "experience", "internships": "experience", "internship": "experience",
		"education": "education", "academics": "education", "qualifications": "education",
		"projects": "projects", "academic projects": "projects", "personal projects": "projects",
		"skills": "skills", "technical skills": "skills", "summary": "summary", "objective": "summary",
		"certifications": "certifications", "achievements": "achievements",
	}
)

const (
	maxHeuristicItems   = 10
	maxExperienceRunes  = 400
	offlineDomainsLimit = 3
	offlineGapsLimit    = 8
)

// DetectSemester returns "Semester <n>" for the first semester marker in text.
func DetectSemester(text string) string {
	m := semesterPattern.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return semesterFromToken(m[1])
}

func semesterFromToken(token string) string {
	token = strings.ToLower(token)
	if n, ok := romanNumerals[token]; ok {
		return "Semester " + strconv.Itoa(n)
	}
	n, err := strconv.Atoi(token)
	if err != nil || n == 0 {
		return ""
	}
	return "Semester " + strconv.Itoa(n)
}

func parseMarksheetText(text string) *MarksheetDraft {
	draft := &MarksheetDraft{Semester: DetectSemester(text), Subjects: []SubjectDraft{}}
	for _, line := range strings.Split(text, "\n") {
		if semesterPattern.MatchString(line) {
			continue
		}
		m := subjectPattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		name := strings.Join(strings.Fields(m[1]), " ")
		if _, skip := nonSubjectNames[strings.ToLower(name)]; skip {
			continue
		}
		row := SubjectDraft{Name: name, Grade: strings.ToUpper(m[4])}
		if v, err := strconv.ParseFloat(m[2], 64); err == nil {
			row.Marks = &v
		}
		if m[3] != "" {
			if v, err := strconv.ParseFloat(m[3], 64); err == nil {
				row.MaxMarks = &v
			}
		}
		draft.Subjects = append(draft.Subjects, row)
	}
	return draft
}

func splitSections(text string) map[string][]string {
	sections := make(map[string][]string)
	current := "summary"
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		heading := strings.ToLower(strings.TrimRight(trimmed, ": "))
		if key, ok := resumeSections[heading]; ok {
			current = key
			continue
		}
		item := strings.TrimSpace(bulletPrefix.ReplaceAllString(trimmed, ""))
		if item != "" {
			sections[current] = append(sections[current], item)
		}
	}
	return sections
}

func parseResumeText(text string) *models.ResumeFields {
	sections := splitSections(text)
	skills := scoring.MentionedKeywords(text)
	fields := &models.ResumeFields{
		Skills:        skills,
		Education:     firstN(dedupeStrings(sections["education"]), maxHeuristicItems),
		Projects:      firstN(dedupeStrings(sections["projects"]), maxHeuristicItems),
		SuitableRoles: []string{},
		MissingSkills: []string{},
	}
	if exp := sections["experience"]; len(exp) > 0 {
		fields.ExperienceSummary = truncateRunes(strings.Join(firstN(exp, 3), " "), maxExperienceRunes)
	}
	if d, ok := scoring.Lookup(scoring.ClassifySkills(skills).Domain); ok {
		fields.SuitableRoles = append(fields.SuitableRoles, d.Roles...)
	}
	return fields
}

func analyseCareerOffline(in CareerContext) *CareerAnalysis {
	var skills []string
	if in.Resume != nil {
		skills = in.Resume.Skills
	}
	var subjects []models.SubjectPerformance
	if in.Summary != nil {
		subjects = in.Summary.SubjectWisePerformance
	}

	out := &CareerAnalysis{
		CareerDomains:     models.CareerDomains{},
		RecommendedRoles:  []string{},
		SkillGaps:         []string{},
		Certifications:    []string{},
		SuggestedProjects: []string{},
		LearningRoadmap:   models.Roadmap{},
	}
	ranked := scoring.RankDomains(skills, subjects)
	if len(ranked) == 0 {
		out.CareerDomains = append(out.CareerDomains, models.CareerDomain{Domain: scoring.GeneralDomain})
		return out
	}
	for i, r := range ranked {
		if i == offlineDomainsLimit {
			break
		}
		out.CareerDomains = append(out.CareerDomains, models.CareerDomain{Domain: r.Domain, MatchScore: float64(scoring.Confidence(r.Matches))})
	}

	top, _ := scoring.Lookup(ranked[0].Domain)
	out.RecommendedRoles = append(out.RecommendedRoles, top.Roles...)
	out.Certifications = append(out.Certifications, top.Certifications...)
	out.SuggestedProjects = append(out.SuggestedProjects, top.Projects...)
	out.SkillGaps = firstN(scoring.FillMissingSkills(top.Name, skills, nil), offlineGapsLimit)

	if len(out.SkillGaps) > 0 {
		out.LearningRoadmap = append(out.LearningRoadmap, models.RoadmapStep{
			Step:        "Close core skill gaps",
			Description: "Learn " + strings.Join(firstN(out.SkillGaps, 3), ", "),
			Duration:    "4 weeks",
		})
	}
	if len(top.Projects) > 0 {
		out.LearningRoadmap = append(out.LearningRoadmap, models.RoadmapStep{
			Step:        "Build a portfolio project",
			Description: top.Projects[0],
			Duration:    "6 weeks",
		})
	}
	if len(top.Certifications) > 0 {
		out.LearningRoadmap = append(out.LearningRoadmap, models.RoadmapStep{
			Step:        "Earn a certification",
			Description: top.Certifications[0],
			Duration:    "4 weeks",
		})
	}
	out.LearningRoadmap = append(out.LearningRoadmap, models.RoadmapStep{
		Step:        "Apply for roles",
		Description: "Target " + strings.Join(top.Roles, ", ") + " openings",
		Duration:    "ongoing",
	})
	return out
}

func firstN(items []string, n int) []string {
	if len(items) > n {
		return items[:n]
	}
	if items == nil {
		return []string{}
	}
	return items
}
