package server_test

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/Adeolu5678/EchoinWhispr-sub001/internal/app"
	"github.com/Adeolu5678/EchoinWhispr-sub001/internal/cache"
	"github.com/Adeolu5678/EchoinWhispr-sub001/internal/config"
	"github.com/Adeolu5678/EchoinWhispr-sub001/internal/db"
	"github.com/Adeolu5678/EchoinWhispr-sub001/internal/server"
	"github.com/Adeolu5678/EchoinWhispr-sub001/internal/service/match"
	"github.com/Adeolu5678/EchoinWhispr-sub001/internal/service/ratelimit"
)

// setupApp wires the full HTTP stack over in-memory SQLite and miniredis.
// The injected policy table keeps the rate-limit tests short.
func setupApp(t *testing.T, policies ratelimit.PolicySet) *fiber.App {
	t.Helper()

	dbName := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	gdb, err := gorm.Open(sqlite.Open(dbName), &gorm.Config{
		NowFunc:                func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, gdb.AutoMigrate(&db.User{}, &db.ActionEvent{}, &db.Match{}))
	require.NoError(t, db.SeedMinimalTestData(gdb))

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(func() { mr.Close() })

	cfg := config.New()
	cfg.Redis.Addr = mr.Addr()

	redisCache := cache.NewRedisCache(cfg)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	appCtx := app.New(gdb, redisCache, logger)

	limiter := ratelimit.NewService(appCtx, policies)
	matcher := match.NewService(appCtx)
	return server.New(appCtx, limiter, matcher)
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var out map[string]any
	require.NoError(t, json.Unmarshal(body, &out))
	return out
}

func TestHealthEndpoint(t *testing.T) {
	fiberApp := setupApp(t, ratelimit.DefaultPolicies())

	resp, err := fiberApp.Test(httptest.NewRequest(http.MethodGet, "/healthz", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestCheckQuotaEndpoint(t *testing.T) {
	fiberApp := setupApp(t, ratelimit.DefaultPolicies())

	resp, err := fiberApp.Test(httptest.NewRequest(http.MethodGet, "/v1/quota/send-whisper?user_id=1", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, true, body["allowed"])
	assert.Equal(t, float64(20), body["remaining"])
}

func TestCheckQuotaUnknownActionEndpoint(t *testing.T) {
	fiberApp := setupApp(t, ratelimit.DefaultPolicies())

	resp, err := fiberApp.Test(httptest.NewRequest(http.MethodGet, "/v1/quota/shout?user_id=1", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestPerformActionRateLimited(t *testing.T) {
	fiberApp := setupApp(t, ratelimit.PolicySet{
		ratelimit.ActionSendWhisper: {Limit: 1, Window: time.Hour},
	})

	post := func() *http.Response {
		req := httptest.NewRequest(http.MethodPost, "/v1/actions",
			strings.NewReader(`{"user_id": 1, "action": "send-whisper"}`))
		req.Header.Set("Content-Type", "application/json")
		resp, err := fiberApp.Test(req, -1)
		require.NoError(t, err)
		return resp
	}

	resp := post()
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = post()
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Contains(t, body["error"], "Try again in")
}

func TestFindMatchEndpoint(t *testing.T) {
	fiberApp := setupApp(t, ratelimit.DefaultPolicies())

	post := func(userID uint64) *http.Response {
		req := httptest.NewRequest(http.MethodPost, "/v1/matches",
			strings.NewReader(fmt.Sprintf(`{"user_id": %d}`, userID)))
		req.Header.Set("Content-Type", "application/json")
		resp, err := fiberApp.Test(req, -1)
		require.NoError(t, err)
		return resp
	}

	// unknown user is a hard error
	resp := post(99)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	// ada has two eligible candidates; both matches land, then the pool
	// is exhausted and "no match" is a normal 200 with a null match
	for i := 0; i < 2; i++ {
		resp = post(1)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		body := decodeBody(t, resp)
		require.NotNil(t, body["match"])
	}

	resp = post(1)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Nil(t, body["match"])
}

func TestRecentMatchesInvalidPageToken(t *testing.T) {
	fiberApp := setupApp(t, ratelimit.DefaultPolicies())

	// a token that is not valid base64 is caller error, not a server fault
	req := httptest.NewRequest(http.MethodGet, "/v1/matches/recent?user_id=1&page_token=not-a-cursor!", nil)
	resp, err := fiberApp.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Contains(t, body["error"], "pagination token")
}

func TestMatchStatsEndpoint(t *testing.T) {
	fiberApp := setupApp(t, ratelimit.DefaultPolicies())

	resp, err := fiberApp.Test(httptest.NewRequest(http.MethodGet, "/v1/matches/stats?user_id=1", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, float64(0), body["total_matches"])
	assert.Equal(t, []any{}, body["top_interests"])
}
