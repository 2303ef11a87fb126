package users

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/codes"

	"github.com/2beens/blogpress/internal/middleware"
	"github.com/2beens/blogpress/internal/telemetry/metrics"
	"github.com/2beens/blogpress/internal/telemetry/tracing"
	"github.com/2beens/blogpress/pkg"
)

//go:generate mockgen -source=$GOFILE -destination=handler_mocks_test.go -package=users_test

type usersRepo interface {
	Add(ctx context.Context, user *User) error
	List(ctx context.Context, search string) ([]*User, error)
}

type RegisterResponse struct {
	Message string `json:"message"`
	User    *User  `json:"user"`
}

type ListResponse struct {
	Data []*User `json:"data"`
}

type Handler struct {
	repo           usersRepo
	metricsManager *metrics.Manager
	// used to bound the date of birth, replaced in tests
	now func() time.Time
}

func NewHandler(repo usersRepo, metricsManager *metrics.Manager) *Handler {
	return &Handler{
		repo:           repo,
		metricsManager: metricsManager,
		now:            time.Now,
	}
}

// SetupRoutes registers the users routes; registration is rate limited per client.
func (handler *Handler) SetupRoutes(
	router *mux.Router,
	rateLimiter middleware.RequestRateLimiter,
	registrationsPerMin int,
) {
	router.HandleFunc("/users/getUsers", handler.handleList).Methods("GET", "OPTIONS").Name("list-users")

	registerRouter := router.PathPrefix("/users").Subrouter()
	registerRouter.HandleFunc("", handler.handleRegister).Methods("POST", "OPTIONS").Name("register-user")
	if rateLimiter != nil {
		registerRouter.Use(middleware.RateLimit(rateLimiter, "register", registrationsPerMin, handler.metricsManager))
	}
}

func (handler *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "usersHandler.register")
	defer span.End()

	var input RegistrationInput
	if err := pkg.DecodeJSONBody(r, &input); err != nil {
		log.Debugf("register user, decode body: %s", err)
		span.SetStatus(codes.Error, "invalid-body")
		pkg.WriteDecodeError(w, err)
		return
	}

	if err := input.Validate(handler.now()); err != nil {
		span.SetStatus(codes.Error, "validation-failed")
		var validationErr *pkg.ValidationError
		if errors.As(err, &validationErr) {
			pkg.WriteValidationError(w, validationErr)
			return
		}
		pkg.WriteErrorDetails(w, http.StatusBadRequest, "Validation error", err.Error())
		return
	}

	user := input.toUser()
	if err := handler.repo.Add(ctx, user); err != nil {
		if errors.Is(err, ErrEmailTaken) {
			span.SetStatus(codes.Error, "email-taken")
			pkg.WriteError(w, http.StatusConflict, "Email already registered")
			return
		}
		log.WithField("request_id", middleware.RequestIDFromContext(r.Context())).Errorf("register user: %s", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "add-failed")
		pkg.WriteError(w, http.StatusInternalServerError, "Something went wrong!")
		return
	}

	if handler.metricsManager != nil {
		handler.metricsManager.CounterUsersRegistered.Inc()
	}
	log.Debugf("new user registered: %d", user.ID)

	pkg.WriteJSON(w, http.StatusCreated, RegisterResponse{
		Message: "User registered successfully",
		User:    user,
	})
}

func (handler *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "usersHandler.list")
	defer span.End()

	search := strings.TrimSpace(r.URL.Query().Get("search"))
	users, err := handler.repo.List(ctx, search)
	if err != nil {
		log.WithField("request_id", middleware.RequestIDFromContext(r.Context())).Errorf("list users: %s", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "list-failed")
		pkg.WriteError(w, http.StatusInternalServerError, "Error fetching users")
		return
	}
	if users == nil {
		users = []*User{}
	}

	pkg.WriteJSON(w, http.StatusOK, ListResponse{Data: users})
}
