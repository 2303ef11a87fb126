package misc

import (
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/codes"

	"github.com/2beens/blogpress/internal/auth"
	"github.com/2beens/blogpress/internal/middleware"
	"github.com/2beens/blogpress/internal/telemetry/metrics"
	"github.com/2beens/blogpress/internal/telemetry/tracing"
	"github.com/2beens/blogpress/pkg"
)

type LoginResponse struct {
	Token string `json:"token"`
}

type Handler struct {
	versionInfo string
	authService *auth.Service
	// session creation time, replaced in tests
	now func() time.Time
}

func NewHandler(
	versionInfo string,
	authService *auth.Service,
) *Handler {
	return &Handler{
		versionInfo: versionInfo,
		authService: authService,
		now:         time.Now,
	}
}

func (handler *Handler) SetupRoutes(
	mainRouter *mux.Router,
	rateLimiter middleware.RequestRateLimiter,
	loginsPerMin int,
	metricsManager *metrics.Manager,
) {
	mainRouter.HandleFunc("/", handler.handleRoot).Methods("GET", "OPTIONS").Name("root")
	mainRouter.HandleFunc("/version", handler.handleGetVersionInfo).Methods("GET").Name("version")

	loginSubrouter := mainRouter.PathPrefix("/a").Subrouter()
	loginSubrouter.
		HandleFunc("/login", handler.handleLogin).
		Methods("POST", "OPTIONS").Name("login")
	loginSubrouter.
		HandleFunc("/logout", handler.handleLogout).
		Methods("GET", "OPTIONS").Name("logout")

	// rate limit the /login and /logout endpoints to prevent abuse
	loginSubrouter.Use(middleware.RateLimit(rateLimiter, "login", loginsPerMin, metricsManager))
}

func (handler *Handler) handleRoot(w http.ResponseWriter, _ *http.Request) {
	pkg.WriteJSON(w, http.StatusOK, map[string]string{"server": "server started"})
}

func (handler *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "miscHandler.login")
	defer span.End()

	if r.Method == http.MethodOptions {
		w.Header().Add("Allow", "POST, OPTIONS")
		w.WriteHeader(http.StatusOK)
		return
	}

	var creds auth.Credentials
	if err := pkg.DecodeJSONBody(r, &creds); err != nil {
		log.Debugf("login, decode body: %s", err)
		pkg.WriteDecodeError(w, err)
		return
	}

	if creds.Username == "" {
		pkg.WriteError(w, http.StatusBadRequest, "Username is required")
		return
	}
	if creds.Password == "" {
		pkg.WriteError(w, http.StatusBadRequest, "Password is required")
		return
	}

	token, err := handler.authService.Login(ctx, creds, handler.now())
	if err != nil {
		if errors.Is(err, auth.ErrWrongUsername) || errors.Is(err, auth.ErrWrongPassword) {
			log.Tracef("failed login attempt for user [%s]: %s", creds.Username, err)
			span.SetStatus(codes.Error, "wrong-credentials")
			pkg.WriteError(w, http.StatusUnauthorized, "Wrong credentials")
			return
		}
		log.Errorf("login failed: %s", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "login-failed")
		pkg.WriteError(w, http.StatusInternalServerError, "Something went wrong!")
		return
	}

	log.Trace("new login success")
	pkg.WriteJSON(w, http.StatusOK, LoginResponse{Token: token})
}

func (handler *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "miscHandler.logout")
	defer span.End()

	if r.Method == http.MethodOptions {
		w.Header().Add("Allow", "GET, OPTIONS")
		w.WriteHeader(http.StatusOK)
		return
	}

	authToken := r.Header.Get(auth.TokenHeader)
	if authToken == "" {
		pkg.WriteError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	if err := handler.authService.Logout(ctx, authToken); err != nil {
		if errors.Is(err, auth.ErrNotLoggedIn) {
			pkg.WriteError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		log.Errorf("logout: %s", err)
		span.RecordError(err)
		pkg.WriteError(w, http.StatusInternalServerError, "Something went wrong!")
		return
	}

	log.Trace("logout success")
	pkg.WriteMessage(w, http.StatusOK, "Logged out")
}

func (handler *Handler) handleGetVersionInfo(w http.ResponseWriter, _ *http.Request) {
	pkg.WriteTextResponseOK(w, handler.versionInfo)
}
