package api_test

import (
	"Keystone/internal/api/config"
	"Keystone/internal/pkg/security"
	"Keystone/internal/testinfra"
	"Keystone/internal/wire"
	"bytes"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type client struct {
	t      *testing.T
	router http.Handler
}

func (c *client) do(method, path, token string, body any) envelope {
	c.t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(c.t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	c.router.ServeHTTP(w, req)

	require.Equal(c.t, http.StatusOK, w.Code, w.Body.String())
	var env envelope
	require.NoError(c.t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func TestRouter_FollowSuggestAndDeleteAccount(t *testing.T) {
	gin.SetMode(gin.TestMode)
	security.Init("route-test-secret", 1)
	testinfra.NewTestRedis(t)
	db := testinfra.NewTestDB(t)

	cfg := &config.Config{}
	cfg.Suggestion.DefaultLimit = 10
	cfg.Suggestion.MaxLimit = 50
	cfg.Follow.ListCacheTTLMin = 1
	app, err := wire.BuildApplication(db, wire.Externals{}, cfg)
	require.NoError(t, err)
	c := &client{t: t, router: app.Router}

	alice := testinfra.CreateUser(t, db, "alice", false)
	bob := testinfra.CreateUser(t, db, "bob", true)
	carol := testinfra.CreateUser(t, db, "carol", true)
	token, err := security.GenerateToken(alice.ID)
	require.NoError(t, err)
	bobID := strconv.FormatUint(bob.ID, 10)

	assert.Equal(t, 200, c.do(http.MethodGet, "/api/ping", "", nil).Code)

	env := c.do(http.MethodPost, "/api/user-relation/follow/"+bobID, "", nil)
	assert.Equal(t, 401, env.Code)

	env = c.do(http.MethodPost, "/api/user-relation/follow/"+bobID, token, nil)
	require.Equal(t, 200, env.Code, env.Message)
	var toggled struct {
		Following  bool    `json:"following"`
		FollowedAt *string `json:"followed_at"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &toggled))
	assert.True(t, toggled.Following)
	assert.NotNil(t, toggled.FollowedAt)

	env = c.do(http.MethodPost, "/api/user-relation/follow/"+strconv.FormatUint(alice.ID, 10), token, nil)
	assert.Equal(t, 400, env.Code)

	env = c.do(http.MethodGet, "/api/user-relation/status/"+bobID, "", nil)
	require.Equal(t, 200, env.Code)
	var status struct {
		Following      bool  `json:"following"`
		FollowersCount int64 `json:"followers_count"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &status))
	assert.False(t, status.Following)
	assert.Equal(t, int64(1), status.FollowersCount)

	env = c.do(http.MethodGet, "/api/user-relation/status/"+bobID, token, nil)
	require.NoError(t, json.Unmarshal(env.Data, &status))
	assert.True(t, status.Following)

	env = c.do(http.MethodGet, "/api/user-relation/"+bobID+"/followers?page=1&page_size=5", "", nil)
	require.Equal(t, 200, env.Code)
	var list struct {
		Items []struct {
			User struct {
				ID uint64 `json:"id"`
			} `json:"user"`
		} `json:"items"`
		Pagination struct {
			Total int64 `json:"total"`
		} `json:"pagination"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &list))
	require.Len(t, list.Items, 1)
	assert.Equal(t, alice.ID, list.Items[0].User.ID)
	assert.Equal(t, int64(1), list.Pagination.Total)

	assert.Equal(t, 400, c.do(http.MethodGet, "/api/user-relation/abc/followers", "", nil).Code)
	assert.Equal(t, 400, c.do(http.MethodGet, "/api/user-relation/"+bobID+"/followings?page_size=500", "", nil).Code)
	assert.Equal(t, 404, c.do(http.MethodGet, "/api/user-relation/status/999999", "", nil).Code)

	env = c.do(http.MethodGet, "/api/user-relation/suggestions?limit=5", token, nil)
	require.Equal(t, 200, env.Code, env.Message)
	var suggestions []struct {
		User struct {
			ID uint64 `json:"id"`
		} `json:"user"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &suggestions))
	require.Len(t, suggestions, 1)
	assert.Equal(t, carol.ID, suggestions[0].User.ID)

	assert.Equal(t, 400, c.do(http.MethodDelete, "/api/user/account", token, map[string]string{}).Code)
	assert.Equal(t, 401, c.do(http.MethodDelete, "/api/user/account", token, map[string]string{"password": "wrong-pass"}).Code)

	env = c.do(http.MethodDelete, "/api/user/account", token, map[string]string{"password": testinfra.Password})
	require.Equal(t, 200, env.Code, env.Message)
	app.PurgeSvc.Wait()

	// token 已失效
	assert.Equal(t, 401, c.do(http.MethodGet, "/api/user-relation/suggestions", token, nil).Code)

	env = c.do(http.MethodGet, "/api/user-relation/status/"+bobID, "", nil)
	require.NoError(t, json.Unmarshal(env.Data, &status))
	assert.Equal(t, int64(0), status.FollowersCount)
}
