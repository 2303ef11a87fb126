//go:build integration_test || all_tests

package test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2beens/blogpress/internal/blog"
)

func newPostBody(category string) map[string]any {
	return map[string]any{
		"title":    gofakeit.Sentence(5),
		"excerpt":  gofakeit.Sentence(12),
		"content":  gofakeit.Paragraph(2, 3, 10, "\n"),
		"author":   gofakeit.Name(),
		"category": category,
		"readTime": "5",
		"image":    gofakeit.URL(),
	}
}

func (s *IntegrationTestSuite) createPost(ctx context.Context, body map[string]any) blog.Post {
	t := s.T()
	status, respBytes := s.doRequest(ctx, "POST", "/api/blogs", body, "")
	require.Equal(t, http.StatusCreated, status, string(respBytes))

	var post blog.Post
	require.NoError(t, json.Unmarshal(respBytes, &post))
	require.False(t, post.ID.IsZero())
	return post
}

func (s *IntegrationTestSuite) TestBlog_CreateGetUpdateDelete() {
	t := s.T()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	body := newPostBody("Student Life")
	body["title"] = "  Surviving finals week  "
	created := s.createPost(ctx, body)
	assert.Equal(t, "Surviving finals week", created.Title)
	assert.Equal(t, float64(5), created.ReadTime)
	assert.Zero(t, created.Likes)
	assert.Zero(t, created.Comments)
	assert.False(t, created.Featured)

	id := created.ID.Hex()
	status, respBytes := s.doRequest(ctx, "GET", blogPath(id), nil, "")
	require.Equal(t, http.StatusOK, status)
	var fetched blog.Post
	require.NoError(t, json.Unmarshal(respBytes, &fetched))
	assert.Equal(t, created.Title, fetched.Title)
	assert.Equal(t, created.Content, fetched.Content)

	// update changes only the title
	status, respBytes = s.doRequest(ctx, "PUT", blogPath(id), map[string]any{"title": "Finals, revisited"}, "")
	require.Equal(t, http.StatusOK, status, string(respBytes))
	var updated blog.Post
	require.NoError(t, json.Unmarshal(respBytes, &updated))
	assert.Equal(t, "Finals, revisited", updated.Title)
	assert.Equal(t, created.Excerpt, updated.Excerpt)
	assert.Equal(t, created.Author, updated.Author)

	status, respBytes = s.doRequest(ctx, "PATCH", blogPath(id)+"/like", nil, "")
	require.Equal(t, http.StatusOK, status, string(respBytes))
	var liked blog.Post
	require.NoError(t, json.Unmarshal(respBytes, &liked))
	assert.Equal(t, 1, liked.Likes)

	status, respBytes = s.doRequest(ctx, "DELETE", blogPath(id), nil, "")
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"message":"Blog post deleted successfully"}`, string(respBytes))

	status, _ = s.doRequest(ctx, "GET", blogPath(id), nil, "")
	assert.Equal(t, http.StatusNotFound, status)
	status, _ = s.doRequest(ctx, "PUT", blogPath(id), map[string]any{"title": "ghost"}, "")
	assert.Equal(t, http.StatusNotFound, status)
	status, _ = s.doRequest(ctx, "DELETE", blogPath(id), nil, "")
	assert.Equal(t, http.StatusNotFound, status)

	status, respBytes = s.doRequest(ctx, "GET", blogPath("not-an-id"), nil, "")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, string(respBytes), "Invalid blog post ID format")
}

func (s *IntegrationTestSuite) TestBlog_CreateValidation() {
	t := s.T()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	body := newPostBody("Admissions")
	delete(body, "author")
	body["title"] = strings.Repeat("a", 201)

	status, respBytes := s.doRequest(ctx, "POST", "/api/blogs", body, "")
	require.Equal(t, http.StatusBadRequest, status)

	var errResp struct {
		Message string            `json:"message"`
		Errors  map[string]string `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(respBytes, &errResp))
	assert.Equal(t, "Validation error", errResp.Message)
	assert.Contains(t, errResp.Errors, "author")
	assert.Contains(t, errResp.Errors, "title")

	body = newPostBody("Admissions")
	body["title"] = strings.Repeat("a", 200)
	s.createPost(ctx, body)
}

func (s *IntegrationTestSuite) TestBlog_ListPagination() {
	t := s.T()
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	category := fmt.Sprintf("Pagination %d", time.Now().UnixNano())
	for i := 0; i < 12; i++ {
		body := newPostBody(category)
		body["featured"] = i%4 == 0
		s.createPost(ctx, body)
	}

	query := url.Values{}
	query.Set("category", category)
	query.Set("page", "2")
	query.Set("limit", "5")
	status, respBytes := s.doRequest(ctx, "GET", "/api/blogs?"+query.Encode(), nil, "")
	require.Equal(t, http.StatusOK, status, string(respBytes))

	var listResp blog.ListResponse
	require.NoError(t, json.Unmarshal(respBytes, &listResp))
	assert.Len(t, listResp.Blogs, 5)
	assert.Equal(t, 2, listResp.CurrentPage)
	assert.Equal(t, 3, listResp.TotalPages)
	assert.Equal(t, int64(12), listResp.TotalBlogs)

	query.Set("page", "1")
	query.Set("featured", "true")
	status, respBytes = s.doRequest(ctx, "GET", "/api/blogs?"+query.Encode(), nil, "")
	require.Equal(t, http.StatusOK, status)
	require.NoError(t, json.Unmarshal(respBytes, &listResp))
	assert.Equal(t, int64(3), listResp.TotalBlogs)
	for _, p := range listResp.Blogs {
		assert.True(t, p.Featured)
	}

	status, respBytes = s.doRequest(ctx, "GET", "/api/categories", nil, "")
	require.Equal(t, http.StatusOK, status)
	var categories []string
	require.NoError(t, json.Unmarshal(respBytes, &categories))
	assert.Contains(t, categories, category)
}
