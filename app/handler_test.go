package main

import (
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func signupTestUser(t *testing.T, ts *testServer, firstName, lastName, email string) string {
	t.Helper()

	status, _, body := ts.post(t, "/v1/auth/signup", map[string]any{
		"first_name": firstName,
		"last_name":  lastName,
		"email":      email,
		"password":   "Test_1234!",
	}, nil)
	assert.Equal(t, http.StatusCreated, status)

	token, ok := body["token"].(string)
	assert.True(t, ok, "expected a token in the signup response")

	return token
}

func createTestBlog(t *testing.T, ts *testServer, token string, payload map[string]any) int {
	t.Helper()

	status, _, body := ts.post(t, "/v1/blogs", payload, &token)
	assert.Equal(t, http.StatusCreated, status)

	blog, ok := body["blog"].(map[string]any)
	assert.True(t, ok, "expected a blog in the create response")

	return int(blog["id"].(float64))
}

func publishTestBlog(t *testing.T, ts *testServer, token string, id int) {
	t.Helper()

	status, _, _ := ts.patch(t, fmt.Sprintf("/v1/blogs/%d/state", id), map[string]any{"state": "published"}, &token)
	assert.Equal(t, http.StatusOK, status)
}

func TestSignupUserHandler(t *testing.T) {
	app, db := newTestApplication(t)
	ts := newTestServer(t, app.routes())

	testCases := []struct {
		name       string
		payload    any
		setup      func()
		wantStatus int
		wantBody   envelope
	}{
		{
			name: "valid request",
			payload: map[string]any{
				"first_name": "Test",
				"last_name":  "User",
				"email":      "testuser@example.com",
				"password":   "Test_1234!",
			},
			wantStatus: http.StatusCreated,
		},
		{
			name: "invalid email",
			payload: map[string]any{
				"first_name": "Test",
				"last_name":  "User",
				"email":      "not-an-email",
				"password":   "Test_1234!",
			},
			wantStatus: http.StatusBadRequest,
			wantBody:   envelope{"error": map[string]string{"email": "must be a valid email address"}},
		},
		{
			name: "duplicate email",
			payload: map[string]any{
				"first_name": "Another",
				"last_name":  "User",
				"email":      "testuser@example.com",
				"password":   "Test_1234!",
			},
			setup: func() {
				signupTestUser(t, ts, "Test", "User", "testuser@example.com")
			},
			wantStatus: http.StatusBadRequest,
			wantBody:   envelope{"error": "Email already in use"},
		},
		{
			name:       "empty payload",
			payload:    map[string]any{},
			wantStatus: http.StatusBadRequest,
			wantBody: envelope{"error": map[string]string{
				"first_name": "must be provided",
				"last_name":  "must be provided",
				"email":      "must be provided",
				"password":   "must be provided",
			}},
		},
		{
			name: "unknown field",
			payload: map[string]any{
				"first_name": "Test",
				"last_name":  "User",
				"email":      "testuser@example.com",
				"password":   "Test_1234!",
				"role":       "admin",
			},
			wantStatus: http.StatusBadRequest,
			wantBody:   envelope{"error": `request body contains unknown field "role"`},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if tc.setup != nil {
				tc.setup()
			}

			status, header, gotBody := ts.post(t, "/v1/auth/signup", tc.payload, nil)
			assert.Equal(t, tc.wantStatus, status)

			if tc.wantBody != nil {
				assert.JSONEq(t, tc.wantBody.JSON(), gotBody.JSON())
			}

			if status == http.StatusCreated {
				assert.Contains(t, header.Get("Set-Cookie"), tokenCookieName+"=")
				assert.NotEmpty(t, gotBody["token"])

				user := gotBody["user"].(map[string]any)
				assert.Equal(t, "testuser@example.com", user["email"])
				assert.NotContains(t, user, "password")
			}

			t.Cleanup(func() {
				_, err := db.Exec("DELETE FROM auth_tokens")
				assert.NoError(t, err)
				_, err = db.Exec("DELETE FROM users")
				assert.NoError(t, err)
			})
		})
	}
}

func TestSigninUserHandler(t *testing.T) {
	app, _ := newTestApplication(t)
	ts := newTestServer(t, app.routes())

	signupTestUser(t, ts, "Test", "User", "testuser@example.com")

	testCases := []struct {
		name       string
		payload    any
		wantStatus int
		wantBody   envelope
	}{
		{
			name: "valid credentials",
			payload: map[string]any{
				"email":    "testuser@example.com",
				"password": "Test_1234!",
			},
			wantStatus: http.StatusOK,
		},
		{
			name: "wrong password",
			payload: map[string]any{
				"email":    "testuser@example.com",
				"password": "Wrong_1234!",
			},
			wantStatus: http.StatusUnauthorized,
			wantBody:   envelope{"error": "invalid authentication credentials"},
		},
		{
			name: "unknown email",
			payload: map[string]any{
				"email":    "nobody@example.com",
				"password": "Test_1234!",
			},
			wantStatus: http.StatusUnauthorized,
			wantBody:   envelope{"error": "invalid authentication credentials"},
		},
		{
			name:       "empty payload",
			payload:    map[string]any{},
			wantStatus: http.StatusBadRequest,
			wantBody: envelope{"error": map[string]string{
				"email":    "must be provided",
				"password": "must be provided",
			}},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			status, _, gotBody := ts.post(t, "/v1/auth/signin", tc.payload, nil)
			assert.Equal(t, tc.wantStatus, status)

			if tc.wantBody != nil {
				assert.JSONEq(t, tc.wantBody.JSON(), gotBody.JSON())
			}

			if status == http.StatusOK {
				assert.NotEmpty(t, gotBody["token"])
			}
		})
	}
}

func TestMeAndLogoutHandlers(t *testing.T) {
	app, _ := newTestApplication(t)
	ts := newTestServer(t, app.routes())

	token := signupTestUser(t, ts, "Test", "User", "testuser@example.com")

	t.Run("me with valid token", func(t *testing.T) {
		status, _, body := ts.get(t, "/v1/auth/me", &token)
		assert.Equal(t, http.StatusOK, status)

		user := body["user"].(map[string]any)
		assert.Equal(t, "testuser@example.com", user["email"])
		assert.Equal(t, "Test", user["first_name"])
	})

	t.Run("me without token", func(t *testing.T) {
		status, _, _ := ts.get(t, "/v1/auth/me", nil)
		assert.Equal(t, http.StatusUnauthorized, status)
	})

	t.Run("logout revokes the token", func(t *testing.T) {
		status, _, _ := ts.post(t, "/v1/auth/logout", nil, &token)
		assert.Equal(t, http.StatusOK, status)

		status, _, _ = ts.get(t, "/v1/auth/me", &token)
		assert.Equal(t, http.StatusUnauthorized, status)
	})
}

func TestCreateBlogHandler(t *testing.T) {
	app, _ := newTestApplication(t)
	ts := newTestServer(t, app.routes())

	token := signupTestUser(t, ts, "Test", "User", "testuser@example.com")

	t.Run("requested state is ignored", func(t *testing.T) {
		status, _, body := ts.post(t, "/v1/blogs", map[string]any{
			"title": "Sneaky Publish",
			"body":  "short body",
			"state": "published",
		}, &token)
		assert.Equal(t, http.StatusCreated, status)

		blog := body["blog"].(map[string]any)
		assert.Equal(t, "draft", blog["state"])
		assert.Equal(t, float64(0), blog["read_count"])
		assert.Equal(t, "1 min read", blog["reading_time"])
	})

	t.Run("reading time rounds up", func(t *testing.T) {
		status, _, body := ts.post(t, "/v1/blogs", map[string]any{
			"title": "Long Read",
			"body":  strings.TrimSpace(strings.Repeat("word ", 400)),
		}, &token)
		assert.Equal(t, http.StatusCreated, status)

		blog := body["blog"].(map[string]any)
		assert.Equal(t, "2 min read", blog["reading_time"])
	})

	t.Run("duplicate title", func(t *testing.T) {
		status, _, body := ts.post(t, "/v1/blogs", map[string]any{
			"title": "Sneaky Publish",
			"body":  "another body",
		}, &token)
		assert.Equal(t, http.StatusBadRequest, status)
		assert.JSONEq(t, envelope{"error": "Title must be unique"}.JSON(), body.JSON())
	})

	t.Run("missing body", func(t *testing.T) {
		status, _, body := ts.post(t, "/v1/blogs", map[string]any{
			"title": "No Body",
		}, &token)
		assert.Equal(t, http.StatusBadRequest, status)
		assert.JSONEq(t, envelope{"error": map[string]string{"body": "must be provided"}}.JSON(), body.JSON())
	})

	t.Run("anonymous caller", func(t *testing.T) {
		status, _, _ := ts.post(t, "/v1/blogs", map[string]any{
			"title": "Anonymous Blog",
			"body":  "some body",
		}, nil)
		assert.Equal(t, http.StatusUnauthorized, status)
	})
}

func TestBlogLifecycle(t *testing.T) {
	app, _ := newTestApplication(t)
	ts := newTestServer(t, app.routes())

	ownerToken := signupTestUser(t, ts, "Owner", "User", "owner@example.com")
	otherToken := signupTestUser(t, ts, "Other", "User", "other@example.com")

	blogID := createTestBlog(t, ts, ownerToken, map[string]any{
		"title":       "Lifecycle Blog",
		"description": "following a blog around",
		"tags":        []string{"go", "testing"},
		"body":        "a modest body of text",
	})
	blogPath := fmt.Sprintf("/v1/blogs/%d", blogID)

	t.Run("draft is invisible to readers", func(t *testing.T) {
		status, _, _ := ts.get(t, blogPath, nil)
		assert.Equal(t, http.StatusNotFound, status)

		status, _, body := ts.get(t, "/v1/blogs", nil)
		assert.Equal(t, http.StatusOK, status)
		assert.Empty(t, body["blogs"])
	})

	t.Run("draft is invisible to its owner on the public path", func(t *testing.T) {
		status, _, _ := ts.get(t, blogPath, &ownerToken)
		assert.Equal(t, http.StatusNotFound, status)
	})

	t.Run("non-owner cannot mutate", func(t *testing.T) {
		status, _, body := ts.put(t, blogPath, map[string]any{"title": "Hijacked"}, &otherToken)
		assert.Equal(t, http.StatusForbidden, status)
		assert.JSONEq(t, envelope{"error": "you can only modify your own blogs"}.JSON(), body.JSON())

		status, _, _ = ts.patch(t, blogPath+"/state", map[string]any{"state": "published"}, &otherToken)
		assert.Equal(t, http.StatusForbidden, status)

		status, _, _ = ts.delete(t, blogPath, &otherToken)
		assert.Equal(t, http.StatusForbidden, status)
	})

	t.Run("anonymous cannot mutate", func(t *testing.T) {
		status, _, _ := ts.put(t, blogPath, map[string]any{"title": "Hijacked"}, nil)
		assert.Equal(t, http.StatusUnauthorized, status)
	})

	t.Run("owner publishes", func(t *testing.T) {
		status, _, body := ts.patch(t, blogPath+"/state", map[string]any{"state": "published"}, &ownerToken)
		assert.Equal(t, http.StatusOK, status)

		blog := body["blog"].(map[string]any)
		assert.Equal(t, "published", blog["state"])
	})

	t.Run("published blog counts reads", func(t *testing.T) {
		status, _, body := ts.get(t, blogPath, nil)
		assert.Equal(t, http.StatusOK, status)

		blog := body["blog"].(map[string]any)
		assert.Equal(t, float64(1), blog["read_count"])

		status, _, body = ts.get(t, blogPath, nil)
		assert.Equal(t, http.StatusOK, status)

		blog = body["blog"].(map[string]any)
		assert.Equal(t, float64(2), blog["read_count"])
	})

	t.Run("owner edits the body", func(t *testing.T) {
		status, _, body := ts.put(t, blogPath, map[string]any{
			"body": strings.TrimSpace(strings.Repeat("word ", 400)),
		}, &ownerToken)
		assert.Equal(t, http.StatusOK, status)

		blog := body["blog"].(map[string]any)
		assert.Equal(t, "2 min read", blog["reading_time"])
		assert.Equal(t, "Lifecycle Blog", blog["title"])
	})

	t.Run("owner unpublishes", func(t *testing.T) {
		status, _, _ := ts.patch(t, blogPath+"/state", map[string]any{"state": "draft"}, &ownerToken)
		assert.Equal(t, http.StatusOK, status)

		status, _, _ = ts.get(t, blogPath, nil)
		assert.Equal(t, http.StatusNotFound, status)
	})

	t.Run("invalid state transition request", func(t *testing.T) {
		status, _, body := ts.patch(t, blogPath+"/state", map[string]any{"state": "archived"}, &ownerToken)
		assert.Equal(t, http.StatusBadRequest, status)
		assert.JSONEq(t, envelope{"error": map[string]string{"state": `must be either "draft" or "published"`}}.JSON(), body.JSON())
	})

	t.Run("owner deletes", func(t *testing.T) {
		status, _, body := ts.delete(t, blogPath, &ownerToken)
		assert.Equal(t, http.StatusNoContent, status)
		assert.Nil(t, body)

		status, _, _ = ts.delete(t, blogPath, &ownerToken)
		assert.Equal(t, http.StatusNotFound, status)
	})

	t.Run("malformed id parameter", func(t *testing.T) {
		status, _, _ := ts.get(t, "/v1/blogs/abc", nil)
		assert.Equal(t, http.StatusBadRequest, status)
	})
}

func TestListBlogsHandlers(t *testing.T) {
	app, _ := newTestApplication(t)
	ts := newTestServer(t, app.routes())

	ownerToken := signupTestUser(t, ts, "Grace", "Hopper", "grace@example.com")
	otherToken := signupTestUser(t, ts, "Alan", "Turing", "alan@example.com")

	goBlog := createTestBlog(t, ts, ownerToken, map[string]any{
		"title": "Go Concurrency Patterns",
		"tags":  []string{"go", "concurrency"},
		"body":  "channels and goroutines",
	})
	sqlBlog := createTestBlog(t, ts, ownerToken, map[string]any{
		"title": "SQL Indexing",
		"tags":  []string{"sql"},
		"body":  "btrees all the way down",
	})
	draftBlog := createTestBlog(t, ts, ownerToken, map[string]any{
		"title": "Unfinished Thoughts",
		"tags":  []string{"go"},
		"body":  "still cooking",
	})
	otherBlog := createTestBlog(t, ts, otherToken, map[string]any{
		"title": "Computing Machinery",
		"tags":  []string{"history"},
		"body":  "can machines think",
	})

	publishTestBlog(t, ts, ownerToken, goBlog)
	publishTestBlog(t, ts, ownerToken, sqlBlog)
	publishTestBlog(t, ts, otherToken, otherBlog)
	_ = draftBlog

	listTitles := func(body envelope) []string {
		raw := body["blogs"].([]any)
		titles := make([]string, 0, len(raw))
		for _, b := range raw {
			titles = append(titles, b.(map[string]any)["title"].(string))
		}
		return titles
	}

	t.Run("public list excludes drafts", func(t *testing.T) {
		status, _, body := ts.get(t, "/v1/blogs", nil)
		assert.Equal(t, http.StatusOK, status)
		assert.ElementsMatch(t, []string{"Go Concurrency Patterns", "SQL Indexing", "Computing Machinery"}, listTitles(body))

		pagination := body["pagination"].(map[string]any)
		assert.Equal(t, float64(1), pagination["currentPage"])
		assert.Equal(t, float64(3), pagination["totalBlogs"])
		assert.Equal(t, float64(20), pagination["limit"])
		assert.Equal(t, false, pagination["hasNextPage"])
		assert.Equal(t, false, pagination["hasPrevPage"])
	})

	t.Run("tag filter", func(t *testing.T) {
		status, _, body := ts.get(t, "/v1/blogs?tags=go,history", nil)
		assert.Equal(t, http.StatusOK, status)
		assert.ElementsMatch(t, []string{"Go Concurrency Patterns", "Computing Machinery"}, listTitles(body))
	})

	t.Run("title filter", func(t *testing.T) {
		status, _, body := ts.get(t, "/v1/blogs?title=sql", nil)
		assert.Equal(t, http.StatusOK, status)
		assert.ElementsMatch(t, []string{"SQL Indexing"}, listTitles(body))
	})

	t.Run("author filter", func(t *testing.T) {
		status, _, body := ts.get(t, "/v1/blogs?author=turing", nil)
		assert.Equal(t, http.StatusOK, status)
		assert.ElementsMatch(t, []string{"Computing Machinery"}, listTitles(body))
	})

	t.Run("unknown author is an empty page", func(t *testing.T) {
		status, _, body := ts.get(t, "/v1/blogs?author=lovelace", nil)
		assert.Equal(t, http.StatusOK, status)
		assert.Empty(t, body["blogs"])

		pagination := body["pagination"].(map[string]any)
		assert.Equal(t, float64(0), pagination["totalBlogs"])
	})

	t.Run("pagination walks the set", func(t *testing.T) {
		status, _, body := ts.get(t, "/v1/blogs?page=2&limit=2", nil)
		assert.Equal(t, http.StatusOK, status)
		assert.Len(t, body["blogs"], 1)

		pagination := body["pagination"].(map[string]any)
		assert.Equal(t, float64(2), pagination["currentPage"])
		assert.Equal(t, float64(2), pagination["totalPages"])
		assert.Equal(t, true, pagination["hasPrevPage"])
		assert.Equal(t, false, pagination["hasNextPage"])
	})

	t.Run("malformed page parameter", func(t *testing.T) {
		status, _, _ := ts.get(t, "/v1/blogs?page=abc", nil)
		assert.Equal(t, http.StatusBadRequest, status)
	})

	t.Run("my blogs includes drafts and a summary", func(t *testing.T) {
		status, _, body := ts.get(t, "/v1/blogs/my-blogs", &ownerToken)
		assert.Equal(t, http.StatusOK, status)
		assert.ElementsMatch(t, []string{"Go Concurrency Patterns", "SQL Indexing", "Unfinished Thoughts"}, listTitles(body))

		summary := body["summary"].(map[string]any)
		assert.Equal(t, float64(3), summary["totalBlogs"])
		assert.Equal(t, float64(1), summary["draftBlogs"])
		assert.Equal(t, float64(2), summary["publishedBlogs"])
	})

	t.Run("my blogs filtered by state", func(t *testing.T) {
		status, _, body := ts.get(t, "/v1/blogs/my-blogs?state=draft", &ownerToken)
		assert.Equal(t, http.StatusOK, status)
		assert.ElementsMatch(t, []string{"Unfinished Thoughts"}, listTitles(body))
	})

	t.Run("my blogs rejects an unknown state", func(t *testing.T) {
		status, _, body := ts.get(t, "/v1/blogs/my-blogs?state=archived", &ownerToken)
		assert.Equal(t, http.StatusBadRequest, status)
		assert.JSONEq(t, envelope{"error": map[string]string{"state": `must be either "draft" or "published"`}}.JSON(), body.JSON())
	})

	t.Run("my blogs requires authentication", func(t *testing.T) {
		status, _, _ := ts.get(t, "/v1/blogs/my-blogs", nil)
		assert.Equal(t, http.StatusUnauthorized, status)
	})
}
