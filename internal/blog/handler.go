package blog

import (
	"context"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/2beens/blogpress/internal/telemetry/metrics"
	"github.com/2beens/blogpress/internal/telemetry/tracing"
	"github.com/2beens/blogpress/pkg"
)

//go:generate mockgen -source=$GOFILE -destination=handler_mocks_test.go -package=blog_test

type blogRepo interface {
	List(ctx context.Context, params ListParams) ([]*Post, int64, error)
	Get(ctx context.Context, id primitive.ObjectID) (*Post, error)
	Create(ctx context.Context, post *Post) error
	Update(ctx context.Context, id primitive.ObjectID, patch *PostPatch) (*Post, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	Like(ctx context.Context, id primitive.ObjectID) (*Post, error)
	Categories(ctx context.Context) ([]string, error)
}

type ListResponse struct {
	Blogs       []*Post `json:"blogs"`
	CurrentPage int     `json:"currentPage"`
	TotalPages  int     `json:"totalPages"`
	TotalBlogs  int64   `json:"totalBlogs"`
}

const (
	msgInvalidID     = "Invalid blog post ID format"
	msgNotFound      = "Blog post not found"
	msgInternalError = "Something went wrong!"
)

type Handler struct {
	repo            blogRepo
	categoriesCache *CategoriesCache
	metricsManager  *metrics.Manager
	maxListLimit    int
}

func NewHandler(
	repo blogRepo,
	categoriesCache *CategoriesCache,
	metricsManager *metrics.Manager,
	maxListLimit int,
) *Handler {
	return &Handler{
		repo:            repo,
		categoriesCache: categoriesCache,
		metricsManager:  metricsManager,
		maxListLimit:    maxListLimit,
	}
}

func (handler *Handler) SetupRoutes(router *mux.Router) {
	router.HandleFunc("/categories", handler.handleCategories).Methods("GET").Name("blog-categories")
	router.HandleFunc("/blogs", handler.handleList).Methods("GET").Name("blogs-list")
	router.HandleFunc("/blogs", handler.handleCreate).Methods("POST", "OPTIONS").Name("new-blog")
	router.HandleFunc("/blogs/{id}", handler.handleGet).Methods("GET").Name("get-blog")
	router.HandleFunc("/blogs/{id}", handler.handleUpdate).Methods("PUT", "OPTIONS").Name("update-blog")
	router.HandleFunc("/blogs/{id}", handler.handleDelete).Methods("DELETE", "OPTIONS").Name("delete-blog")
	router.HandleFunc("/blogs/{id}/like", handler.handleLike).Methods("PATCH", "OPTIONS").Name("like-blog")
}

func (handler *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "blogHandler.list")
	defer span.End()

	params, err := ParseListParams(r.URL.Query(), handler.maxListLimit)
	if err != nil {
		span.SetStatus(codes.Error, "invalid-params")
		pkg.WriteErrorDetails(w, http.StatusBadRequest, "Invalid query parameters", err.Error())
		return
	}
	span.SetAttributes(attribute.Int("page", params.Page))
	span.SetAttributes(attribute.Int("limit", params.Limit))

	posts, total, err := handler.repo.List(ctx, params)
	if err != nil {
		log.Errorf("list blog posts: %s", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "list-failed")
		pkg.WriteError(w, http.StatusInternalServerError, "Error fetching blogs")
		return
	}
	if posts == nil {
		posts = []*Post{}
	}

	log.Tracef("listed %d blog posts, page %d, total %d", len(posts), params.Page, total)

	pkg.WriteJSON(w, http.StatusOK, ListResponse{
		Blogs:       posts,
		CurrentPage: params.Page,
		TotalPages:  params.TotalPages(total),
		TotalBlogs:  total,
	})
}

func (handler *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "blogHandler.get")
	defer span.End()

	id, ok := parsePathID(w, r)
	if !ok {
		span.SetStatus(codes.Error, "invalid-id")
		return
	}

	post, err := handler.repo.Get(ctx, id)
	if err != nil {
		handler.writeRepoError(w, err, "get blog post")
		span.SetStatus(codes.Error, "get-failed")
		return
	}

	pkg.WriteJSON(w, http.StatusOK, post)
}

func (handler *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "blogHandler.create")
	defer span.End()

	var input PostInput
	if err := pkg.DecodeJSONBody(r, &input); err != nil {
		log.Debugf("new blog post, decode body: %s", err)
		span.SetStatus(codes.Error, "invalid-body")
		pkg.WriteDecodeError(w, err)
		return
	}

	if err := input.Validate(); err != nil {
		span.SetStatus(codes.Error, "validation-failed")
		writeValidationError(w, err)
		return
	}

	post := input.toPost()
	if err := handler.repo.Create(ctx, post); err != nil {
		log.Errorf("create blog post: %s", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "create-failed")
		pkg.WriteError(w, http.StatusInternalServerError, msgInternalError)
		return
	}

	handler.invalidateCategories()
	if handler.metricsManager != nil {
		handler.metricsManager.CounterPostsCreated.Inc()
	}
	log.Debugf("new blog post %s: [%s] added", post.ID.Hex(), post.Title)

	pkg.WriteJSON(w, http.StatusCreated, post)
}

func (handler *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "blogHandler.update")
	defer span.End()

	id, ok := parsePathID(w, r)
	if !ok {
		span.SetStatus(codes.Error, "invalid-id")
		return
	}

	post, err := handler.repo.Get(ctx, id)
	if err != nil {
		handler.writeRepoError(w, err, "update blog post, get")
		span.SetStatus(codes.Error, "get-failed")
		return
	}

	var patch PostPatch
	if err := pkg.DecodeJSONBody(r, &patch); err != nil {
		log.Debugf("update blog post %s, decode body: %s", id.Hex(), err)
		span.SetStatus(codes.Error, "invalid-body")
		pkg.WriteDecodeError(w, err)
		return
	}

	// the merged copy is only validated, the store receives the patch itself
	patch.ApplyTo(post)
	if err := ValidatePost(post); err != nil {
		span.SetStatus(codes.Error, "validation-failed")
		writeValidationError(w, err)
		return
	}

	updated, err := handler.repo.Update(ctx, id, &patch)
	if err != nil {
		handler.writeRepoError(w, err, "update blog post")
		span.SetStatus(codes.Error, "update-failed")
		return
	}

	handler.invalidateCategories()
	log.Debugf("blog post %s updated", id.Hex())

	pkg.WriteJSON(w, http.StatusOK, updated)
}

func (handler *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "blogHandler.delete")
	defer span.End()

	id, ok := parsePathID(w, r)
	if !ok {
		span.SetStatus(codes.Error, "invalid-id")
		return
	}

	if err := handler.repo.Delete(ctx, id); err != nil {
		handler.writeRepoError(w, err, "delete blog post")
		span.SetStatus(codes.Error, "delete-failed")
		return
	}

	handler.invalidateCategories()
	if handler.metricsManager != nil {
		handler.metricsManager.CounterPostsDeleted.Inc()
	}
	log.Debugf("blog post %s deleted", id.Hex())

	pkg.WriteMessage(w, http.StatusOK, "Blog post deleted successfully")
}

func (handler *Handler) handleLike(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "blogHandler.like")
	defer span.End()

	id, ok := parsePathID(w, r)
	if !ok {
		span.SetStatus(codes.Error, "invalid-id")
		return
	}

	post, err := handler.repo.Like(ctx, id)
	if err != nil {
		handler.writeRepoError(w, err, "like blog post")
		span.SetStatus(codes.Error, "like-failed")
		return
	}

	pkg.WriteJSON(w, http.StatusOK, post)
}

// handleCategories never fails: on an empty or failing store the defaults are served.
func (handler *Handler) handleCategories(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "blogHandler.categories")
	defer span.End()

	if handler.categoriesCache != nil {
		if categories, found := handler.categoriesCache.Get(); found {
			span.SetAttributes(attribute.Bool("cached", true))
			pkg.WriteJSON(w, http.StatusOK, categories)
			return
		}
	}

	categories, err := handler.repo.Categories(ctx)
	if err != nil || len(categories) == 0 {
		if err != nil {
			log.Errorf("get blog categories: %s", err)
			span.RecordError(err)
		}
		if handler.metricsManager != nil {
			handler.metricsManager.CounterCategoriesFallback.Inc()
		}
		pkg.WriteJSON(w, http.StatusOK, DefaultCategories())
		return
	}

	if handler.categoriesCache != nil {
		handler.categoriesCache.Set(categories)
	}
	pkg.WriteJSON(w, http.StatusOK, categories)
}

func (handler *Handler) invalidateCategories() {
	if handler.categoriesCache != nil {
		handler.categoriesCache.Invalidate()
	}
}

func (handler *Handler) writeRepoError(w http.ResponseWriter, err error, operation string) {
	if errors.Is(err, ErrPostNotFound) {
		pkg.WriteError(w, http.StatusNotFound, msgNotFound)
		return
	}
	log.Errorf("%s: %s", operation, err)
	pkg.WriteError(w, http.StatusInternalServerError, msgInternalError)
}

func parsePathID(w http.ResponseWriter, r *http.Request) (primitive.ObjectID, bool) {
	id, err := ParseID(mux.Vars(r)["id"])
	if err != nil {
		log.Tracef("blog post id: %s", err)
		pkg.WriteError(w, http.StatusBadRequest, msgInvalidID)
		return primitive.NilObjectID, false
	}
	return id, true
}

func writeValidationError(w http.ResponseWriter, err error) {
	var validationErr *pkg.ValidationError
	if errors.As(err, &validationErr) {
		pkg.WriteValidationError(w, validationErr)
		return
	}
	pkg.WriteErrorDetails(w, http.StatusBadRequest, "Validation error", err.Error())
}
