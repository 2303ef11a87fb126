package middleware

import (
	"context"
	"net/http"
	"strings"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/codes"

	"github.com/2beens/blogpress/internal/auth"
	"github.com/2beens/blogpress/internal/telemetry/tracing"
	"github.com/2beens/blogpress/pkg"
)

//go:generate mockgen -source=$GOFILE -destination=auth_mocks_test.go -package=middleware_test

type loginChecker interface {
	IsLogged(ctx context.Context, token string) (bool, error)
}

// AuthMiddlewareHandler guards the admin-only paths. Everything else passes through.
type AuthMiddlewareHandler struct {
	loginChecker           loginChecker
	protectedPaths         map[string]bool
	protectedPathsPrefixes []string
}

func NewAuthMiddlewareHandler(
	loginChecker loginChecker,
	protectedPaths []string,
	protectedPathsPrefixes []string,
) *AuthMiddlewareHandler {
	h := &AuthMiddlewareHandler{
		loginChecker:           loginChecker,
		protectedPaths:         make(map[string]bool, len(protectedPaths)),
		protectedPathsPrefixes: protectedPathsPrefixes,
	}
	for _, p := range protectedPaths {
		h.protectedPaths[p] = true
	}
	return h
}

func (h *AuthMiddlewareHandler) pathIsProtected(path string) bool {
	if h.protectedPaths[path] {
		return true
	}
	for _, prefix := range h.protectedPathsPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

func (h *AuthMiddlewareHandler) AuthCheck() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodOptions {
				w.Header().Add("Allow", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
				w.WriteHeader(http.StatusOK)
				return
			}

			if !h.pathIsProtected(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			ctx, span := tracing.GlobalTracer.Start(r.Context(), "middleware.auth")
			defer span.End()

			authToken := r.Header.Get(auth.TokenHeader)
			if authToken == "" {
				log.Tracef("[missing token] [auth middleware] unauthorized => %s", r.URL.Path)
				pkg.WriteError(w, http.StatusUnauthorized, "Unauthorized")
				span.SetStatus(codes.Error, "missing-auth-token")
				return
			}

			isLogged, err := h.loginChecker.IsLogged(ctx, authToken)
			if err != nil {
				log.Errorf("[failed login check] => %s: %s", r.URL.Path, err)
				pkg.WriteError(w, http.StatusUnauthorized, "Unauthorized")
				span.SetStatus(codes.Error, "check-logged-err")
				span.RecordError(err)
				return
			}
			if !isLogged {
				log.Tracef("[invalid token] [auth middleware] unauthorized => %s", r.URL.Path)
				pkg.WriteError(w, http.StatusUnauthorized, "Unauthorized")
				span.SetStatus(codes.Error, "not-logged")
				return
			}

			span.SetStatus(codes.Ok, "ok")
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
