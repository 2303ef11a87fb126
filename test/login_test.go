//go:build integration_test || all_tests

package test

import (
	"context"
	"net/http"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/2beens/blogpress/internal/auth"
)

func (s *IntegrationTestSuite) TestLogin() {
	t := s.T()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cases := map[string]struct {
		creds              auth.Credentials
		expectedStatusCode int
	}{
		"bad password": {
			creds:              auth.Credentials{Username: testUsername, Password: "bad-password"},
			expectedStatusCode: http.StatusUnauthorized,
		},
		"bad username": {
			creds:              auth.Credentials{Username: "nobody", Password: testPassword},
			expectedStatusCode: http.StatusUnauthorized,
		},
		"missing password": {
			creds:              auth.Credentials{Username: testUsername},
			expectedStatusCode: http.StatusBadRequest,
		},
	}

	for name, tc := range cases {
		s.Run(name, func() {
			status, _ := s.doRequest(ctx, "POST", "/a/login", tc.creds, "")
			assert.Equal(s.T(), tc.expectedStatusCode, status)
		})
	}

	token := s.doLogin(ctx, t)

	status, _ := s.doRequest(ctx, "GET", "/a/logout", nil, token)
	assert.Equal(t, http.StatusOK, status)

	// the session is gone
	status, _ = s.doRequest(ctx, "GET", "/a/logout", nil, token)
	assert.Equal(t, http.StatusUnauthorized, status)
	status, _ = s.doRequest(ctx, "GET", "/api/users/getUsers", nil, token)
	assert.Equal(t, http.StatusUnauthorized, status)
}
