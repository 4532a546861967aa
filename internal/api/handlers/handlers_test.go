package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/craftnest/teamforge-backend/internal/config"
	"github.com/craftnest/teamforge-backend/internal/models"
	"github.com/craftnest/teamforge-backend/internal/rank"
	"github.com/craftnest/teamforge-backend/internal/repository"
	"github.com/craftnest/teamforge-backend/internal/service"
	"github.com/craftnest/teamforge-backend/internal/types"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T) (*gin.Engine, *Handlers, *repository.Repositories) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	catalog, err := rank.Load(rank.DefaultRanks())
	require.NoError(t, err)

	repos := repository.NewRepositories()
	services := service.NewServices(&service.ServiceDeps{
		Config: &config.Config{
			JWTSecret:     "test-secret",
			JWTExpiry:     1,
			RefreshExpiry: 1,
		},
		Repos:   repos,
		Catalog: catalog,
		Clock:   func() time.Time { return time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC) },
	})

	h := NewHandlers(services, catalog)
	router := gin.New()
	return router, h, repos
}

func seedMember(t *testing.T, repos *repository.Repositories, username string, points int) *repository.Member {
	t.Helper()

	member := &repository.Member{
		Username:    username,
		DisplayName: username,
		Password:    "not-a-real-hash",
		Status:      types.MemberActive,
	}
	require.NoError(t, repos.MemberRepo.Create(context.Background(), member))

	if points != 0 {
		require.NoError(t, repos.PointEventRepo.Append(context.Background(), &repository.PointEvent{
			MemberID: member.ID,
			ActorID:  "seed",
			Kind:     types.KindManual,
			Delta:    points,
			Binding:  true,
		}))
	}
	return member
}

// asMember stands in for the JWT middleware in tests.
func asMember(memberID string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("memberID", memberID)
		c.Next()
	}
}

func TestCreateTaskEndpoint(t *testing.T) {
	router, h, repos := newTestRouter(t)
	admin := seedMember(t, repos, "admin", 700)

	router.POST("/api/tasks", asMember(admin.ID), h.Task.Create)

	body, _ := json.Marshal(models.CreateTaskRequest{
		Title:      "Build new spawn hub",
		Category:   types.CategoryBuild,
		Priority:   types.PriorityHigh,
		AssigneeID: types.AssigneeAll,
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/tasks", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)

	var resp models.TaskResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Build new spawn hub", resp.Title)
	assert.Equal(t, types.TaskPending, resp.Status)
	assert.Equal(t, types.AssigneeAll, resp.AssigneeID)
}

func TestCreateTaskEndpointForbidden(t *testing.T) {
	router, h, repos := newTestRouter(t)
	// 150 points resolves to Supporter, which cannot manage the story.
	supporter := seedMember(t, repos, "supporter", 150)

	router.POST("/api/tasks", asMember(supporter.ID), h.Task.Create)

	body, _ := json.Marshal(models.CreateTaskRequest{
		Title:      "Sneaky task",
		Category:   types.CategoryTask,
		AssigneeID: types.AssigneeAll,
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/tasks", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRecordPointsEndpointErrorMapping(t *testing.T) {
	router, h, repos := newTestRouter(t)
	admin := seedMember(t, repos, "admin", 700)
	target := seedMember(t, repos, "target", 0)

	router.POST("/api/members/:id/points", asMember(admin.ID), h.Point.Record)

	tests := []struct {
		name     string
		memberID string
		req      models.RecordPointsRequest
		want     int
	}{
		{"valid manual award", target.ID, models.RecordPointsRequest{Kind: types.KindManual, Delta: 25}, http.StatusCreated},
		{"zero manual delta", target.ID, models.RecordPointsRequest{Kind: types.KindManual, Delta: 0}, http.StatusBadRequest},
		{"positive infraction delta", target.ID, models.RecordPointsRequest{Kind: types.KindSpam, Delta: 5}, http.StatusBadRequest},
		{"unknown member", "no-such-member", models.RecordPointsRequest{Kind: types.KindManual, Delta: 10}, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, _ := json.Marshal(tt.req)
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/api/members/"+tt.memberID+"/points", bytes.NewReader(body))
			req.Header.Set("Content-Type", "application/json")
			router.ServeHTTP(w, req)
			assert.Equal(t, tt.want, w.Code)
		})
	}
}

func TestRankEndpoints(t *testing.T) {
	router, h, repos := newTestRouter(t)
	member := seedMember(t, repos, "member", 0)

	router.GET("/api/ranks", asMember(member.ID), h.Rank.List)
	router.GET("/api/ranks/resolve", asMember(member.ID), h.Rank.Resolve)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/ranks", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var ranks []models.RankResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &ranks))
	require.Len(t, ranks, 8)
	assert.Equal(t, "Owner", ranks[0].Name)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/ranks/resolve?points=430", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var resolved models.RankResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resolved))
	assert.Equal(t, "Sr. Moderator", resolved.Name)
}
