package blog

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"time"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.opentelemetry.io/otel/attribute"

	"github.com/2beens/blogpress/internal/telemetry/tracing"
)

const CollectionName = "blogposts"

var _ blogRepo = (*Repo)(nil)

type Repo struct {
	collection *mongo.Collection
}

func NewRepo(db *mongo.Database) *Repo {
	return &Repo{
		collection: db.Collection(CollectionName),
	}
}

// EnsureIndexes creates the text, category and date indexes; it is safe to call on every start.
func (r *Repo) EnsureIndexes(ctx context.Context) error {
	ctx, span := tracing.GlobalTracer.Start(ctx, "blogRepo.EnsureIndexes")
	defer span.End()

	names, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{
			{Key: "title", Value: "text"},
			{Key: "content", Value: "text"},
			{Key: "excerpt", Value: "text"},
		}},
		{Keys: bson.D{{Key: "category", Value: 1}}},
		{Keys: bson.D{{Key: "date", Value: -1}}},
	})
	if err != nil {
		return fmt.Errorf("create indexes: %w", err)
	}

	log.Debugf("blog posts indexes ensured: %v", names)
	return nil
}

func (r *Repo) List(ctx context.Context, params ListParams) ([]*Post, int64, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "blogRepo.List")
	span.SetAttributes(attribute.Int("page", params.Page))
	span.SetAttributes(attribute.Int("limit", params.Limit))
	defer span.End()

	filter := buildListFilter(params)
	findOpts := options.Find().
		SetSort(buildListSort(params)).
		SetSkip(int64(params.Skip())).
		SetLimit(int64(params.Limit))

	cursor, err := r.collection.Find(ctx, filter, findOpts)
	if err != nil {
		return nil, 0, fmt.Errorf("find posts: %w", err)
	}
	defer cursor.Close(ctx)

	posts := make([]*Post, 0, params.Limit)
	if err := cursor.All(ctx, &posts); err != nil {
		return nil, 0, fmt.Errorf("decode posts: %w", err)
	}

	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("count posts: %w", err)
	}

	return posts, total, nil
}

func (r *Repo) Get(ctx context.Context, id primitive.ObjectID) (*Post, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "blogRepo.Get")
	span.SetAttributes(attribute.String("id", id.Hex()))
	defer span.End()

	post := &Post{}
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(post)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrPostNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find post %s: %w", id.Hex(), err)
	}
	return post, nil
}

// Create stores a new post. The id, date and counters are set here, whatever the caller passed.
func (r *Repo) Create(ctx context.Context, post *Post) error {
	ctx, span := tracing.GlobalTracer.Start(ctx, "blogRepo.Create")
	defer span.End()

	post.ID = primitive.NewObjectID()
	post.Date = time.Now().UTC().Truncate(time.Millisecond)
	post.Comments = 0
	post.Likes = 0

	if _, err := r.collection.InsertOne(ctx, post); err != nil {
		return fmt.Errorf("insert post: %w", err)
	}
	return nil
}

// Update sets only the fields the patch carried, so a concurrent Like is kept.
func (r *Repo) Update(ctx context.Context, id primitive.ObjectID, patch *PostPatch) (*Post, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "blogRepo.Update")
	span.SetAttributes(attribute.String("id", id.Hex()))
	defer span.End()

	set := buildPatchSet(patch)
	if len(set) == 0 {
		return r.Get(ctx, id)
	}

	post := &Post{}
	err := r.collection.FindOneAndUpdate(
		ctx,
		bson.M{"_id": id},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(post)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrPostNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update post %s: %w", id.Hex(), err)
	}
	return post, nil
}

func (r *Repo) Delete(ctx context.Context, id primitive.ObjectID) error {
	ctx, span := tracing.GlobalTracer.Start(ctx, "blogRepo.Delete")
	span.SetAttributes(attribute.String("id", id.Hex()))
	defer span.End()

	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete post %s: %w", id.Hex(), err)
	}
	if res.DeletedCount == 0 {
		return ErrPostNotFound
	}
	return nil
}

// Like atomically bumps the likes counter and returns the updated post.
func (r *Repo) Like(ctx context.Context, id primitive.ObjectID) (*Post, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "blogRepo.Like")
	span.SetAttributes(attribute.String("id", id.Hex()))
	defer span.End()

	post := &Post{}
	err := r.collection.FindOneAndUpdate(
		ctx,
		bson.M{"_id": id},
		bson.M{"$inc": bson.M{"likes": 1}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(post)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrPostNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("like post %s: %w", id.Hex(), err)
	}
	return post, nil
}

// Categories returns the distinct categories in use, sorted.
func (r *Repo) Categories(ctx context.Context) ([]string, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "blogRepo.Categories")
	defer span.End()

	values, err := r.collection.Distinct(ctx, "category", bson.M{})
	if err != nil {
		return nil, fmt.Errorf("distinct categories: %w", err)
	}

	categories := make([]string, 0, len(values))
	for _, v := range values {
		if c, ok := v.(string); ok && c != "" {
			categories = append(categories, c)
		}
	}
	sort.Strings(categories)

	return categories, nil
}

func buildPatchSet(patch *PostPatch) bson.M {
	set := bson.M{}
	if patch == nil {
		return set
	}
	patch.normalize()
	for field, value := range map[string]*string{
		"title":    patch.Title,
		"excerpt":  patch.Excerpt,
		"content":  patch.Content,
		"author":   patch.Author,
		"category": patch.Category,
		"image":    patch.Image,
	} {
		if value != nil {
			set[field] = *value
		}
	}
	if patch.Featured != nil {
		set["featured"] = *patch.Featured
	}
	if patch.ReadTime != nil {
		set["readTime"] = float64(*patch.ReadTime)
	}
	if patch.Date != nil && !patch.Date.IsZero() {
		set["date"] = patch.Date.UTC().Truncate(time.Millisecond)
	}
	// counters only when sent
	if patch.Comments != nil {
		set["comments"] = *patch.Comments
	}
	if patch.Likes != nil {
		set["likes"] = *patch.Likes
	}
	return set
}

func buildListFilter(params ListParams) bson.M {
	filter := bson.M{}
	if params.Category != "" {
		filter["category"] = params.Category
	}
	if params.Featured != nil {
		filter["featured"] = *params.Featured
	}
	if params.Search != "" {
		// the search term is matched literally, not as a pattern
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(params.Search), Options: "i"}
		filter["$or"] = bson.A{
			bson.M{"title": pattern},
			bson.M{"excerpt": pattern},
			bson.M{"content": pattern},
		}
	}
	return filter
}

// buildListSort breaks ties by _id so paging is stable.
func buildListSort(params ListParams) bson.D {
	direction := -1
	if params.SortAscending {
		direction = 1
	}
	return bson.D{
		{Key: params.SortBy, Value: direction},
		{Key: "_id", Value: direction},
	}
}
