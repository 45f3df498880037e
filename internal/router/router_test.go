package router

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/campus2career-api/internal/handler"
	"github.com/noah-isme/campus2career-api/internal/models"
)

type tokenTable map[string]*models.JWTClaims

func (t tokenTable) ValidateToken(token string) (*models.JWTClaims, error) {
	if claims, ok := t[token]; ok {
		return claims, nil
	}
	return nil, errors.New("unknown token")
}

func newEngine() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	tokens := tokenTable{
		"student":   {UserID: "s1", Role: models.RoleStudent},
		"recruiter": {UserID: "r1", Role: models.RoleRecruiter},
	}
	RegisterRoutes(r.Group("/api/v1"), Handlers{
		Auth:            handler.NewAuthHandler(nil),
		Users:           handler.NewUserHandler(nil),
		Marksheets:      handler.NewMarksheetHandler(nil, 0),
		AcademicSummary: handler.NewAcademicSummaryHandler(nil),
		Resume:          handler.NewResumeHandler(nil, 0),
		Career:          handler.NewCareerHandler(nil),
		Jobs:            handler.NewJobHandler(nil),
		Applications:    handler.NewApplicationHandler(nil, 0),
		Analytics:       handler.NewAnalyticsHandler(nil, nil),
	}, Options{Tokens: tokens})
	return r
}

func TestRoutesEnforceRoles(t *testing.T) {
	r := newEngine()

	cases := []struct {
		name   string
		method string
		path   string
		token  string
		want   int
	}{
		{"marksheets need a token", http.MethodGet, "/api/v1/marksheets", "", http.StatusUnauthorized},
		{"recruiters cannot upload marksheets", http.MethodPost, "/api/v1/marksheets", "recruiter", http.StatusForbidden},
		{"students cannot post jobs", http.MethodPost, "/api/v1/jobs", "student", http.StatusForbidden},
		{"students cannot change application status", http.MethodPatch, "/api/v1/applications/a1/status", "student", http.StatusForbidden},
		{"recruiters cannot run career analysis", http.MethodPost, "/api/v1/career/analyze", "recruiter", http.StatusForbidden},
		{"admin area rejects students", http.MethodGet, "/api/v1/admin/users", "student", http.StatusForbidden},
		{"admin analytics rejects recruiters", http.MethodGet, "/api/v1/admin/analytics", "recruiter", http.StatusForbidden},
		{"local files route absent without local storage", http.MethodGet, "/api/v1/files/abc", "", http.StatusNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.path, nil)
			if tc.token != "" {
				req.Header.Set("Authorization", "Bearer "+tc.token)
			}
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)
			assert.Equal(t, tc.want, rec.Code)
		})
	}
}
