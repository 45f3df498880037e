package service

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/noah-isme/campus2career-api/internal/models"
	"github.com/noah-isme/campus2career-api/pkg/llm"
)

const maxPromptTextRunes = 12000

// Extraction modes.
const (
	ModeAI        = "ai"
	ModeHeuristic = "heuristic"
)

type completer interface {
	Complete(ctx context.Context, messages []llm.Message) (string, error)
}

// SubjectDraft is a marksheet row as extracted, before coercion.
type SubjectDraft struct {
	Name     string
	Marks    *float64
	MaxMarks *float64
	Grade    string
	Credits  *float64
}

// MarksheetDraft is the structured form of a marksheet document.
type MarksheetDraft struct {
	Semester string
	Subjects []SubjectDraft
}

// CareerContext is what the career analysis is based on. Either part may be nil.
type CareerContext struct {
	Summary *models.AcademicSummary
	Resume  *models.Resume
}

// CareerAnalysis is the structured result of a career analysis.
type CareerAnalysis struct {
	CareerDomains     models.CareerDomains
	RecommendedRoles  []string
	SkillGaps         []string
	Certifications    []string
	SuggestedProjects []string
	LearningRoadmap   models.Roadmap
}

// StructuredExtractor turns free text into structured records, through the
// completion endpoint when one is configured and through text heuristics
// otherwise.
type StructuredExtractor struct {
	llm    completer
	logger *zap.Logger
}

// NewStructuredExtractor builds an extractor. A nil completer selects the heuristics.
func NewStructuredExtractor(c completer, logger *zap.Logger) *StructuredExtractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StructuredExtractor{llm: c, logger: logger}
}

// Mode reports which strategy is in use.
func (e *StructuredExtractor) Mode() string {
	if e.llm == nil {
		return ModeHeuristic
	}
	return ModeAI
}

const systemPrompt = "You convert documents into structured data. Reply with exactly one JSON object and no other text."

const marksheetPrompt = `Extract ALL subjects from the marksheet below.
Return JSON of the form:
{"semester": "Semester 1", "subjects": [{"name": "Mathematics", "marks": 85, "maxMarks": 100, "grade": "A", "credits": 4}]}
Rules:
- include every subject row, even failed ones
- marks and maxMarks are numbers; use 100 when the maximum is not printed
- missing grade -> empty string; missing credits -> null
- semester is empty when the document does not state it

Marksheet:
%s`

const resumePrompt = `Analyse the resume below.
Return JSON of the form:
{"skills": [], "experienceSummary": "", "education": [], "suitableRoles": [], "projects": [], "missingSkills": []}
Rules:
- skills are short technology or competency names
- experienceSummary is at most three sentences
- missingSkills are skills commonly expected for the suitable roles that the resume lacks

Resume:
%s`

const careerPrompt = `Suggest career directions for the student profile below.
Return JSON of the form:
{"careerDomains": [{"domain": "", "matchScore": 0}], "recommendedRoles": [], "skillGaps": [], "certifications": [], "suggestedProjects": [], "learningRoadmap": [{"step": "", "description": "", "duration": ""}]}
Rules:
- matchScore is a number from 0 to 100
- list at most three career domains, best first
- the roadmap has three to six steps

Profile:
%s`

type rawSubject struct {
	Name     flexString `json:"name"`
	Subject  flexString `json:"subject"`
	Marks    flexNumber `json:"marks"`
	MaxMarks flexNumber `json:"maxMarks"`
	Grade    flexString `json:"grade"`
	Credits  flexNumber `json:"credits"`
}

type rawMarksheet struct {
	Semester flexString   `json:"semester"`
	Subjects []rawSubject `json:"subjects"`
}

type rawResume struct {
	Skills            flexStrings `json:"skills"`
	ExperienceSummary flexString  `json:"experienceSummary"`
	Education         flexStrings `json:"education"`
	SuitableRoles     flexStrings `json:"suitableRoles"`
	Projects          flexStrings `json:"projects"`
	MissingSkills     flexStrings `json:"missingSkills"`
}

type rawCareerDomain struct {
	Domain     flexString `json:"domain"`
	MatchScore flexNumber `json:"matchScore"`
}

type rawRoadmapStep struct {
	Step        flexString `json:"step"`
	Description flexString `json:"description"`
	Duration    flexString `json:"duration"`
}

type rawCareer struct {
	CareerDomains     []rawCareerDomain `json:"careerDomains"`
	RecommendedRoles  flexStrings       `json:"recommendedRoles"`
	SkillGaps         flexStrings       `json:"skillGaps"`
	Certifications    flexStrings       `json:"certifications"`
	SuggestedProjects flexStrings       `json:"suggestedProjects"`
	LearningRoadmap   []rawRoadmapStep  `json:"learningRoadmap"`
}

// Marksheet structures marksheet text.
func (e *StructuredExtractor) Marksheet(ctx context.Context, text string) (*MarksheetDraft, error) {
	if e.llm == nil {
		return parseMarksheetText(text), nil
	}
	var raw rawMarksheet
	if err := e.ask(ctx, marksheetPrompt, text, &raw); err != nil {
		return nil, err
	}
	draft := &MarksheetDraft{Semester: string(raw.Semester), Subjects: make([]SubjectDraft, 0, len(raw.Subjects))}
	for _, s := range raw.Subjects {
		name := string(s.Name)
		if name == "" {
			name = string(s.Subject)
		}
		draft.Subjects = append(draft.Subjects, SubjectDraft{
			Name:     name,
			Marks:    s.Marks.ptr(),
			MaxMarks: s.MaxMarks.ptr(),
			Grade:    string(s.Grade),
			Credits:  s.Credits.ptr(),
		})
	}
	return draft, nil
}

// Resume structures resume text.
func (e *StructuredExtractor) Resume(ctx context.Context, text string) (*models.ResumeFields, error) {
	if e.llm == nil {
		return parseResumeText(text), nil
	}
	var raw rawResume
	if err := e.ask(ctx, resumePrompt, text, &raw); err != nil {
		return nil, err
	}
	return &models.ResumeFields{
		Skills:            raw.Skills,
		ExperienceSummary: string(raw.ExperienceSummary),
		Education:         raw.Education,
		SuitableRoles:     raw.SuitableRoles,
		Projects:          raw.Projects,
		MissingSkills:     raw.MissingSkills,
	}, nil
}

// Career produces a career analysis for the given context.
func (e *StructuredExtractor) Career(ctx context.Context, in CareerContext) (*CareerAnalysis, error) {
	if e.llm == nil {
		return analyseCareerOffline(in), nil
	}
	var raw rawCareer
	if err := e.ask(ctx, careerPrompt, describeCareerContext(in), &raw); err != nil {
		return nil, err
	}
	out := &CareerAnalysis{
		CareerDomains:     models.CareerDomains{},
		RecommendedRoles:  raw.RecommendedRoles,
		SkillGaps:         raw.SkillGaps,
		Certifications:    raw.Certifications,
		SuggestedProjects: raw.SuggestedProjects,
		LearningRoadmap:   models.Roadmap{},
	}
	for _, d := range raw.CareerDomains {
		if d.Domain == "" {
			continue
		}
		out.CareerDomains = append(out.CareerDomains, models.CareerDomain{
			Domain:     string(d.Domain),
			MatchScore: clamp(d.MatchScore.Value, 0, 100),
		})
	}
	for _, step := range raw.LearningRoadmap {
		if step.Step == "" && step.Description == "" {
			continue
		}
		out.LearningRoadmap = append(out.LearningRoadmap, models.RoadmapStep{
			Step:        string(step.Step),
			Description: string(step.Description),
			Duration:    string(step.Duration),
		})
	}
	return out, nil
}

func (e *StructuredExtractor) ask(ctx context.Context, prompt, text string, target interface{}) error {
	reply, err := e.llm.Complete(ctx, []llm.Message{
		{Role: llm.RoleSystem, Content: systemPrompt},
		{Role: llm.RoleUser, Content: fmt.Sprintf(prompt, truncateRunes(text, maxPromptTextRunes))},
	})
	if err != nil {
		return err
	}
	if err := llm.DecodeJSONObject(reply, target); err != nil {
		e.logger.Warn("unparseable completion", zap.Int("reply_bytes", len(reply)), zap.Error(err))
		return err
	}
	return nil
}

func describeCareerContext(in CareerContext) string {
	var b strings.Builder
	if s := in.Summary; s != nil {
		fmt.Fprintf(&b, "Academic record: %d semesters, overall average %.2f%%, consistency %.2f.\n", s.TotalSemesters, s.OverallAverage, s.ConsistencyScore)
		if len(s.Strengths) > 0 {
			fmt.Fprintf(&b, "Strong subjects: %s.\n", strings.Join(s.Strengths, ", "))
		}
		if len(s.Weaknesses) > 0 {
			fmt.Fprintf(&b, "Weak subjects: %s.\n", strings.Join(s.Weaknesses, ", "))
		}
		if s.RecommendedDomain != "" {
			fmt.Fprintf(&b, "Domain suggested by coursework: %s.\n", s.RecommendedDomain)
		}
	}
	if r := in.Resume; r != nil {
		if len(r.Skills) > 0 {
			fmt.Fprintf(&b, "Skills: %s.\n", strings.Join(r.Skills, ", "))
		}
		if r.ExperienceSummary != "" {
			fmt.Fprintf(&b, "Experience: %s\n", r.ExperienceSummary)
		}
		if len(r.Education) > 0 {
			fmt.Fprintf(&b, "Education: %s.\n", strings.Join(r.Education, "; "))
		}
		if len(r.Projects) > 0 {
			fmt.Fprintf(&b, "Projects: %s.\n", strings.Join(r.Projects, "; "))
		}
	}
	return b.String()
}

func truncateRunes(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return string(runes[:limit])
}
