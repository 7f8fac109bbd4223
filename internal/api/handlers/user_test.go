package handlers_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/dom/videotube-backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type userBody struct {
	ID         string `json:"_id"`
	Username   string `json:"username"`
	Email      string `json:"email"`
	Avatar     string `json:"avatar"`
	CoverImage string `json:"coverImage"`
}

func registerRequest(t *testing.T, ts *testutil.TestServer, b *testutil.UserBuilder, files ...testutil.FileField) *http.Request {
	t.Helper()
	return testutil.NewMultipartRequest(t, http.MethodPost, ts.APIURL("/user/register"), b.RegisterForm(), files...)
}

func avatarFile() testutil.FileField {
	return testutil.FileField{Field: "avatar", Filename: "me.png", Content: testutil.PNGBytes}
}

func TestRegister(t *testing.T) {
	ts := testutil.NewTestServer(t)

	t.Run("creates user without secrets in the response", func(t *testing.T) {
		b := testutil.NewUserBuilder().WithUsername("MixedCase")
		cover := testutil.FileField{Field: "coverImage", Filename: "cover.png", Content: testutil.PNGBytes}

		resp := testutil.Do(t, registerRequest(t, ts, b, avatarFile(), cover))

		var raw map[string]any
		testutil.AssertEnvelope(t, resp, http.StatusCreated, &raw)
		assert.Equal(t, "mixedcase", raw["username"])
		assert.NotEmpty(t, raw["avatar"])
		assert.NotEmpty(t, raw["coverImage"])
		assert.NotContains(t, raw, "password")
		assert.NotContains(t, raw, "passwordHash")
		assert.NotContains(t, raw, "refreshToken")
		assert.Len(t, ts.Relay.Uploads(), 2)
	})

	t.Run("duplicate username in another case", func(t *testing.T) {
		testutil.NewUserBuilder().WithUsername("taken").Build(t, ts.Store)
		b := testutil.NewUserBuilder().WithUsername("TAKEN").WithEmail("fresh@example.com")

		resp := testutil.Do(t, registerRequest(t, ts, b, avatarFile()))
		testutil.AssertErrorResponse(t, resp, http.StatusConflict, "already exists")
	})

	t.Run("missing avatar", func(t *testing.T) {
		resp := testutil.Do(t, registerRequest(t, ts, testutil.NewUserBuilder()))
		testutil.AssertErrorResponse(t, resp, http.StatusBadRequest, "Avatar is required")
	})

	t.Run("missing fields", func(t *testing.T) {
		req := testutil.NewMultipartRequest(t, http.MethodPost, ts.APIURL("/user/register"),
			map[string]string{"username": "solo"}, avatarFile())
		resp := testutil.Do(t, req)
		testutil.AssertErrorResponse(t, resp, http.StatusBadRequest, "Missing required fields")
	})
}

func TestLoginAndSession(t *testing.T) {
	ts := testutil.NewTestServer(t)
	b := testutil.NewUserBuilder().WithUsername("alice")
	b.Build(t, ts.Store)

	t.Run("login sets http-only cookies", func(t *testing.T) {
		resp := testutil.Do(t, testutil.NewJSONRequest(t, http.MethodPost, ts.APIURL("/user/login"), b.LoginBody(), ""))

		var data struct {
			User         userBody `json:"user"`
			AccessToken  string   `json:"accessToken"`
			RefreshToken string   `json:"refreshToken"`
		}
		testutil.AssertEnvelope(t, resp, http.StatusOK, &data)
		assert.Equal(t, "alice", data.User.Username)
		assert.NotEmpty(t, data.AccessToken)
		assert.NotEmpty(t, data.RefreshToken)

		cookies := map[string]*http.Cookie{}
		for _, c := range resp.Cookies() {
			cookies[c.Name] = c
		}
		require.Contains(t, cookies, "accessToken")
		require.Contains(t, cookies, "refreshToken")
		assert.True(t, cookies["accessToken"].HttpOnly)
		assert.Equal(t, data.RefreshToken, cookies["refreshToken"].Value)
	})

	t.Run("wrong password is 401 not 404", func(t *testing.T) {
		body := b.LoginBody()
		body["password"] = "wrong"
		resp := testutil.Do(t, testutil.NewJSONRequest(t, http.MethodPost, ts.APIURL("/user/login"), body, ""))
		testutil.AssertErrorResponse(t, resp, http.StatusUnauthorized, "Invalid credentials")
	})

	t.Run("unknown user", func(t *testing.T) {
		body := testutil.NewUserBuilder().LoginBody()
		resp := testutil.Do(t, testutil.NewJSONRequest(t, http.MethodPost, ts.APIURL("/user/login"), body, ""))
		testutil.AssertErrorResponse(t, resp, http.StatusNotFound, "User does not exist")
	})

	t.Run("refresh rotates and rejects the superseded token", func(t *testing.T) {
		tokens := b.Login(t, ts)

		resp := testutil.Do(t, testutil.NewJSONRequest(t, http.MethodPost, ts.APIURL("/user/refresh-token"),
			map[string]string{"refreshToken": tokens.RefreshToken}, ""))
		var rotated testutil.Tokens
		testutil.AssertEnvelope(t, resp, http.StatusOK, &rotated)
		assert.NotEqual(t, tokens.RefreshToken, rotated.RefreshToken)

		resp = testutil.Do(t, testutil.NewJSONRequest(t, http.MethodPost, ts.APIURL("/user/refresh-token"),
			map[string]string{"refreshToken": tokens.RefreshToken}, ""))
		testutil.AssertErrorResponse(t, resp, http.StatusUnauthorized, "expired or used")
	})

	t.Run("refresh reads the cookie", func(t *testing.T) {
		tokens := b.Login(t, ts)

		req := testutil.NewJSONRequest(t, http.MethodPost, ts.APIURL("/user/refresh-token"), nil, "")
		req.AddCookie(&http.Cookie{Name: "refreshToken", Value: tokens.RefreshToken})
		resp := testutil.Do(t, req)
		testutil.AssertEnvelope(t, resp, http.StatusOK, nil)
	})

	t.Run("refresh without a token", func(t *testing.T) {
		resp := testutil.Do(t, testutil.NewJSONRequest(t, http.MethodPost, ts.APIURL("/user/refresh-token"), nil, ""))
		testutil.AssertErrorResponse(t, resp, http.StatusBadRequest, "Refresh token is required")
	})

	t.Run("logout invalidates the refresh token", func(t *testing.T) {
		tokens := b.Login(t, ts)

		resp := testutil.Do(t, testutil.NewJSONRequest(t, http.MethodPost, ts.APIURL("/user/logout"), nil, tokens.AccessToken))
		testutil.AssertEnvelope(t, resp, http.StatusOK, nil)
		for _, c := range resp.Cookies() {
			assert.Empty(t, c.Value)
			assert.Negative(t, c.MaxAge)
		}

		resp = testutil.Do(t, testutil.NewJSONRequest(t, http.MethodPost, ts.APIURL("/user/refresh-token"),
			map[string]string{"refreshToken": tokens.RefreshToken}, ""))
		testutil.AssertErrorResponse(t, resp, http.StatusUnauthorized, "expired or used")
	})
}

func TestGuardedRoutes(t *testing.T) {
	ts := testutil.NewTestServer(t)

	for _, route := range []struct{ method, path string }{
		{http.MethodPost, "/user/logout"},
		{http.MethodPost, "/user/change-password"},
		{http.MethodGet, "/user/current-user"},
		{http.MethodPatch, "/user/avatar"},
		{http.MethodPatch, "/user/cover-image"},
		{http.MethodGet, "/user/c/someone"},
		{http.MethodGet, "/user/history"},
	} {
		t.Run(route.method+" "+route.path, func(t *testing.T) {
			resp := testutil.Do(t, testutil.NewJSONRequest(t, route.method, ts.APIURL(route.path), nil, ""))
			testutil.AssertErrorResponse(t, resp, http.StatusUnauthorized, "Unauthorized request")
		})
	}

	t.Run("routes mount under the singular base path", func(t *testing.T) {
		resp := testutil.Do(t, testutil.NewJSONRequest(t, http.MethodGet, ts.APIURL("/users/current-user"), nil, ""))
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("deleted user token", func(t *testing.T) {
		other := testutil.NewTestServer(t)
		b := testutil.NewUserBuilder()
		b.Build(t, other.Store)
		tokens := b.Login(t, other)

		resp := testutil.Do(t, testutil.NewJSONRequest(t, http.MethodGet, ts.APIURL("/user/current-user"), nil, tokens.AccessToken))
		testutil.AssertErrorResponse(t, resp, http.StatusUnauthorized, "Unauthorized request")
	})
}

func TestAccountRoutes(t *testing.T) {
	ts := testutil.NewTestServer(t)
	b := testutil.NewUserBuilder().WithUsername("owner")
	owner, _ := b.Build(t, ts.Store)
	tokens := b.Login(t, ts)

	t.Run("current user via cookie", func(t *testing.T) {
		req := testutil.NewJSONRequest(t, http.MethodGet, ts.APIURL("/user/current-user"), nil, "")
		req.AddCookie(&http.Cookie{Name: "accessToken", Value: tokens.AccessToken})
		resp := testutil.Do(t, req)

		var user userBody
		testutil.AssertEnvelope(t, resp, http.StatusOK, &user)
		assert.Equal(t, owner.ID.String(), user.ID)
	})

	t.Run("change password", func(t *testing.T) {
		body := map[string]string{"currentPassword": "testpassword123", "newPassword": "changed456"}
		resp := testutil.Do(t, testutil.NewJSONRequest(t, http.MethodPost, ts.APIURL("/user/change-password"), body, tokens.AccessToken))
		testutil.AssertEnvelope(t, resp, http.StatusOK, nil)

		login := b.LoginBody()
		login["password"] = "changed456"
		resp = testutil.Do(t, testutil.NewJSONRequest(t, http.MethodPost, ts.APIURL("/user/login"), login, ""))
		testutil.AssertEnvelope(t, resp, http.StatusOK, nil)
	})

	t.Run("update avatar", func(t *testing.T) {
		req := testutil.NewMultipartRequest(t, http.MethodPatch, ts.APIURL("/user/avatar"), nil,
			testutil.FileField{Field: "avatar", Filename: "face.png", Content: testutil.PNGBytes})
		req.Header.Set("Authorization", "Bearer "+tokens.AccessToken)
		resp := testutil.Do(t, req)

		var data struct {
			User userBody `json:"user"`
		}
		testutil.AssertEnvelope(t, resp, http.StatusOK, &data)
		assert.Contains(t, data.User.Avatar, "avatar-")
		assert.NotEqual(t, owner.Avatar, data.User.Avatar)
		assert.Equal(t, owner.CoverImage, data.User.CoverImage)

		stored, err := ts.Store.GetByID(context.Background(), owner.ID)
		require.NoError(t, err)
		assert.Equal(t, data.User.Avatar, stored.Avatar)
	})

	t.Run("update avatar without a file", func(t *testing.T) {
		req := testutil.NewMultipartRequest(t, http.MethodPatch, ts.APIURL("/user/avatar"), nil)
		req.Header.Set("Authorization", "Bearer "+tokens.AccessToken)
		resp := testutil.Do(t, req)
		testutil.AssertErrorResponse(t, resp, http.StatusBadRequest, "Avatar is required")
	})

	t.Run("update cover image", func(t *testing.T) {
		req := testutil.NewMultipartRequest(t, http.MethodPatch, ts.APIURL("/user/cover-image"), nil,
			testutil.FileField{Field: "coverImage", Filename: "banner.png", Content: testutil.PNGBytes})
		req.Header.Set("Authorization", "Bearer "+tokens.AccessToken)
		resp := testutil.Do(t, req)

		var data struct {
			User userBody `json:"user"`
		}
		testutil.AssertEnvelope(t, resp, http.StatusOK, &data)
		assert.Contains(t, data.User.CoverImage, "coverImage-")
		assert.Equal(t, owner.Avatar, data.User.Avatar)
	})

	t.Run("update cover image without a file", func(t *testing.T) {
		req := testutil.NewMultipartRequest(t, http.MethodPatch, ts.APIURL("/user/cover-image"), nil)
		req.Header.Set("Authorization", "Bearer "+tokens.AccessToken)
		resp := testutil.Do(t, req)
		testutil.AssertErrorResponse(t, resp, http.StatusBadRequest, "Cover image is required")
	})

	t.Run("channel profile", func(t *testing.T) {
		for i := 0; i < 2; i++ {
			fan, _ := testutil.NewUserBuilder().Build(t, ts.Store)
			ts.Store.Subscribe(fan.ID, owner.ID)
		}
		viewerBuilder := testutil.NewUserBuilder()
		viewer, _ := viewerBuilder.Build(t, ts.Store)
		ts.Store.Subscribe(viewer.ID, owner.ID)
		viewerTokens := viewerBuilder.Login(t, ts)

		resp := testutil.Do(t, testutil.NewJSONRequest(t, http.MethodGet, ts.APIURL("/user/c/owner"), nil, viewerTokens.AccessToken))

		var profile struct {
			Username         string `json:"username"`
			SubscribersCount int64  `json:"subscribersCount"`
			SubscribedCount  int64  `json:"subscribedCount"`
			IsSubscribed     bool   `json:"isSubscribed"`
		}
		testutil.AssertEnvelope(t, resp, http.StatusOK, &profile)
		assert.Equal(t, "owner", profile.Username)
		assert.Equal(t, int64(3), profile.SubscribersCount)
		assert.True(t, profile.IsSubscribed)
	})

	t.Run("unknown channel", func(t *testing.T) {
		resp := testutil.Do(t, testutil.NewJSONRequest(t, http.MethodGet, ts.APIURL("/user/c/nobody"), nil, tokens.AccessToken))
		testutil.AssertErrorResponse(t, resp, http.StatusNotFound, "Channel does not exist")
	})

	t.Run("watch history", func(t *testing.T) {
		video := ts.Store.AddVideo(owner.ID, "clip")
		ts.Store.SetWatchHistory(owner.ID, video)

		resp := testutil.Do(t, testutil.NewJSONRequest(t, http.MethodGet, ts.APIURL("/user/history"), nil, tokens.AccessToken))

		var data struct {
			WatchHistory []struct {
				ID    string `json:"_id"`
				Owner struct {
					Username string `json:"username"`
				} `json:"owner"`
			} `json:"watchHistory"`
		}
		testutil.AssertEnvelope(t, resp, http.StatusOK, &data)
		require.Len(t, data.WatchHistory, 1)
		assert.Equal(t, video.String(), data.WatchHistory[0].ID)
		assert.Equal(t, "owner", data.WatchHistory[0].Owner.Username)
	})
}

func TestHealth(t *testing.T) {
	ts := testutil.NewTestServer(t)

	resp := testutil.Do(t, testutil.NewJSONRequest(t, http.MethodGet, ts.BaseURL()+"/health", nil, ""))
	var data struct {
		Status string `json:"status"`
	}
	testutil.AssertEnvelope(t, resp, http.StatusOK, &data)
	assert.Equal(t, "ok", data.Status)
}
