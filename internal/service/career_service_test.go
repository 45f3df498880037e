package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/campus2career-api/internal/models"
	appErrors "github.com/noah-isme/campus2career-api/pkg/errors"
)

type memoryProfiles struct {
	items map[string]models.CareerProfile
}

func (m *memoryProfiles) Upsert(_ context.Context, p *models.CareerProfile) error {
	if m.items == nil {
		m.items = make(map[string]models.CareerProfile)
	}
	m.items[p.StudentID] = *p
	return nil
}

func (m *memoryProfiles) Get(_ context.Context, studentID string) (*models.CareerProfile, error) {
	p, ok := m.items[studentID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &p, nil
}

type staticJobs struct {
	jobs []models.Job
}

func (s staticJobs) ListAll(context.Context) ([]models.Job, error) {
	return s.jobs, nil
}

func (s staticJobs) FindByID(_ context.Context, id string) (*models.Job, error) {
	for _, j := range s.jobs {
		if j.ID == id {
			job := j
			return &job, nil
		}
	}
	return nil, sql.ErrNoRows
}

type staticSummaries struct {
	summary *models.AcademicSummary
}

func (s staticSummaries) Get(context.Context, string) (*models.AcademicSummary, error) {
	return s.summary, nil
}

type staticResumes struct {
	resume *models.Resume
}

func (s staticResumes) Get(context.Context, string) (*models.Resume, error) {
	return s.resume, nil
}

func sampleJobs() staticJobs {
	return staticJobs{jobs: []models.Job{
		{ID: "job-1", Title: "Frontend Developer", RequiredSkills: pq.StringArray{"React", "CSS"}},
		{ID: "job-2", Title: "Data Analyst", RequiredSkills: pq.StringArray{"Python", "SQL"}},
		{ID: "job-3", Title: "Backend Developer", RequiredSkills: pq.StringArray{"Go", "SQL"}},
	}}
}

func TestCareerAnalyzeStoresProfile(t *testing.T) {
	profiles := &memoryProfiles{}
	resume := &models.Resume{Skills: pq.StringArray{"docker", "kubernetes"}}
	svc := NewCareerService(staticSummaries{}, staticResumes{resume: resume}, profiles, sampleJobs(), NewStructuredExtractor(nil, nil), nil)
	fixed := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	profile, err := svc.Analyze(context.Background(), "student-1")
	require.NoError(t, err)
	assert.Equal(t, "Cloud & DevOps", profile.CareerDomains[0].Domain)
	assert.Equal(t, fixed, profile.LastAnalyzed)
	assert.NotEmpty(t, profile.LearningRoadmap)

	stored, err := svc.Profile(context.Background(), "student-1")
	require.NoError(t, err)
	assert.Equal(t, profile.RecommendedRoles, stored.RecommendedRoles)
}

func TestCareerAnalyzeNeedsEvidence(t *testing.T) {
	svc := NewCareerService(staticSummaries{}, staticResumes{}, &memoryProfiles{}, sampleJobs(), NewStructuredExtractor(nil, nil), nil)

	_, err := svc.Analyze(context.Background(), "student-1")
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))

	profile, err := svc.Profile(context.Background(), "student-1")
	require.NoError(t, err)
	assert.Nil(t, profile)
}

func TestCareerAnalyzeUsesCompletion(t *testing.T) {
	fc := &fakeCompleter{reply: `{"careerDomains":[{"domain":"Data Science","matchScore":82}],"recommendedRoles":["Data Analyst","data analyst"],"skillGaps":["statistics"]}`}
	summary := &models.AcademicSummary{TotalSemesters: 2, OverallAverage: 78.5, Strengths: pq.StringArray{"statistics"}}
	profiles := &memoryProfiles{}
	svc := NewCareerService(staticSummaries{summary: summary}, staticResumes{}, profiles, sampleJobs(), NewStructuredExtractor(fc, nil), nil)

	profile, err := svc.Analyze(context.Background(), "student-1")
	require.NoError(t, err)
	assert.Contains(t, fc.messages[1].Content, "overall average 78.50%")
	assert.Equal(t, models.CareerDomains{{Domain: "Data Science", MatchScore: 82}}, profile.CareerDomains)
	assert.Equal(t, []string{"Data Analyst"}, []string(profile.RecommendedRoles))
	assert.Equal(t, models.Roadmap{}, profile.LearningRoadmap)
}

func TestCareerOpportunitiesRankByRelevance(t *testing.T) {
	resume := &models.Resume{Skills: pq.StringArray{"python", "sql"}}
	svc := NewCareerService(staticSummaries{}, staticResumes{resume: resume}, &memoryProfiles{}, sampleJobs(), nil, nil)

	matches, err := svc.Opportunities(context.Background(), "student-1")
	require.NoError(t, err)
	require.Len(t, matches, 3)
	assert.Equal(t, "job-2", matches[0].Job.ID)
	assert.Equal(t, 73.0, matches[0].Relevance)
	assert.Equal(t, "job-3", matches[1].Job.ID)
	assert.Equal(t, "job-1", matches[2].Job.ID)
	assert.Equal(t, 0.0, matches[2].Match.MatchScore)
}

func TestCareerOpportunitiesWithoutResume(t *testing.T) {
	svc := NewCareerService(staticSummaries{}, staticResumes{}, &memoryProfiles{}, sampleJobs(), nil, nil)

	matches, err := svc.Opportunities(context.Background(), "student-1")
	require.NoError(t, err)
	require.Len(t, matches, 3)
	for i, m := range matches {
		assert.Equal(t, sampleJobs().jobs[i].ID, m.Job.ID)
		assert.Zero(t, m.Relevance)
	}
}

func TestCareerJobMatch(t *testing.T) {
	resume := &models.Resume{Skills: pq.StringArray{"python"}}
	svc := NewCareerService(staticSummaries{}, staticResumes{resume: resume}, &memoryProfiles{}, sampleJobs(), nil, nil)

	match, err := svc.JobMatch(context.Background(), "student-1", "job-2")
	require.NoError(t, err)
	assert.Equal(t, 50.0, match.Match.MatchScore)
	assert.Equal(t, []string{"python"}, match.Match.MatchedSkills)
	assert.Equal(t, []string{"sql"}, match.Match.MissingSkills)

	_, err = svc.JobMatch(context.Background(), "student-1", "missing")
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
}
