//go:build integration_test || all_tests

package test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/2beens/blogpress/internal/auth"
	"github.com/2beens/blogpress/internal/misc"
)

// doRequest sends body (marshalled to JSON when not nil) and returns the status code and the raw response.
func (s *IntegrationTestSuite) doRequest(
	ctx context.Context,
	method, path string,
	body any,
	authToken string,
) (int, []byte) {
	t := s.T()

	var reqBody io.Reader
	if body != nil {
		bodyBytes, err := json.Marshal(body)
		require.NoError(t, err)
		reqBody = bytes.NewReader(bodyBytes)
	}

	req, err := http.NewRequestWithContext(ctx, method, serverEndpoint+path, reqBody)
	require.NoError(t, err)
	req.Header.Set("User-Agent", "test-agent")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authToken != "" {
		req.Header.Set(auth.TokenHeader, authToken)
	}

	resp, err := s.httpClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	return resp.StatusCode, respBytes
}

func (s *IntegrationTestSuite) doLogin(ctx context.Context, t *testing.T) string {
	status, respBytes := s.doRequest(ctx, "POST", "/a/login", auth.Credentials{
		Username: testUsername,
		Password: testPassword,
	}, "")
	require.Equal(t, http.StatusOK, status, string(respBytes))

	var loginResp misc.LoginResponse
	require.NoError(t, json.Unmarshal(respBytes, &loginResp))
	require.NotEmpty(t, loginResp.Token)

	return loginResp.Token
}

func blogPath(id string) string {
	return fmt.Sprintf("/api/blogs/%s", id)
}
