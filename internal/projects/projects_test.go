package projects

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/onyxandcode/onyx-site/pkg/logging"
)

func sampleProjects() []Project {
	base := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	demo := "/labs"
	return []Project{
		{ID: "b", Name: "Coffee House", CreatedAt: base.Add(48 * time.Hour), UpdatedAt: base.Add(49 * time.Hour)},
		{ID: "a", Name: "Onyx Vault", Has3D: true, DemoURL: &demo, CreatedAt: base, UpdatedAt: base.Add(72 * time.Hour)},
		{ID: "c", Name: "Local Magnet", CreatedAt: base.Add(24 * time.Hour), UpdatedAt: base.Add(25 * time.Hour)},
	}
}

func ids(list []Project) []string {
	out := make([]string, 0, len(list))
	for _, p := range list {
		out = append(out, p.ID)
	}
	return out
}

func TestInMemoryRepository_Orders(t *testing.T) {
	repo := NewInMemoryRepository(sampleProjects()...)

	asc, err := repo.List(context.Background(), OrderCreatedAsc)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "c", "b"}, ids(asc))

	desc, err := repo.List(context.Background(), OrderUpdatedDesc)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, ids(desc))
}

func TestPostgresRepository_ListOrdersByCreation(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	demo := "/labs"
	rows := pgxmock.NewRows([]string{"id", "name", "description", "image_url", "live_url", "has_3d", "demo_url", "created_at", "updated_at"}).
		AddRow("p1", "Onyx Vault", "3D vault", "https://img/1.png", "https://vault.example", true, &demo, now, now).
		AddRow("p2", "Coffee House", "Splash page", "https://img/2.png", "https://coffee.example", false, nil, now, now)
	mock.ExpectQuery("ORDER BY created_at ASC").WillReturnRows(rows)

	repo := NewPostgresRepository(mock)
	list, err := repo.List(context.Background(), OrderCreatedAsc)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.True(t, list[0].Has3D)
	require.NotNil(t, list[0].DemoURL)
	assert.Equal(t, "/labs", *list[0].DemoURL)
	assert.Nil(t, list[1].DemoURL)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_ListDashboardOrder(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("ORDER BY updated_at DESC").WillReturnError(errors.New("timeout"))

	repo := NewPostgresRepository(mock)
	_, err = repo.List(context.Background(), OrderUpdatedDesc)
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

type countingRepo struct {
	calls int
	list  []Project
	err   error
}

func (c *countingRepo) List(context.Context, Order) ([]Project, error) {
	c.calls++
	return c.list, c.err
}

func TestCachedRepository_ServesFromRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	source := &countingRepo{list: sampleProjects()}

	repo := NewCachedRepository(source, client, time.Minute, logging.New("error"))

	first, err := repo.List(context.Background(), OrderCreatedAsc)
	require.NoError(t, err)
	second, err := repo.List(context.Background(), OrderCreatedAsc)
	require.NoError(t, err)

	assert.Equal(t, 1, source.calls)
	assert.Equal(t, ids(first), ids(second))
	assert.True(t, mr.Exists(cacheKeyPrefix+"created_asc"))

	mr.FastForward(2 * time.Minute)
	_, err = repo.List(context.Background(), OrderCreatedAsc)
	require.NoError(t, err)
	assert.Equal(t, 2, source.calls)
}

func TestCachedRepository_FallsThroughWhenRedisDown(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	source := &countingRepo{list: sampleProjects()}
	repo := NewCachedRepository(source, client, time.Minute, logging.New("error"))
	mr.Close()

	list, err := repo.List(context.Background(), OrderCreatedAsc)
	require.NoError(t, err)
	assert.Len(t, list, 3)
	assert.Equal(t, 1, source.calls)
}

func TestNewCachedRepository_DisabledReturnsSource(t *testing.T) {
	source := &countingRepo{}
	assert.Same(t, source, NewCachedRepository(source, nil, time.Minute, nil))
}

func TestHandler_ListPublic(t *testing.T) {
	h := NewHandler(NewInMemoryRepository(sampleProjects()...), logging.New("error"))
	w := httptest.NewRecorder()
	h.ListPublic(w, httptest.NewRequest(http.MethodGet, "/api/projects", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var resp ListProjectsResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, []string{"a", "c", "b"}, ids(resp.Projects))
}

func TestHandler_ListPublicErrorYieldsEmpty(t *testing.T) {
	h := NewHandler(&countingRepo{err: errors.New("db down")}, logging.New("error"))
	w := httptest.NewRecorder()
	h.ListPublic(w, httptest.NewRequest(http.MethodGet, "/api/projects", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"projects":[]}`, w.Body.String())
}
