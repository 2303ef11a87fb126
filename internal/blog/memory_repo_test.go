package blog_test

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/2beens/blogpress/internal/blog"
)

// memoryRepo mirrors the mongo repo semantics closely enough for handler tests.
type memoryRepo struct {
	mutex sync.Mutex
	posts map[primitive.ObjectID]*blog.Post
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{
		posts: make(map[primitive.ObjectID]*blog.Post),
	}
}

func (m *memoryRepo) count() int {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return len(m.posts)
}

func (m *memoryRepo) List(_ context.Context, params blog.ListParams) ([]*blog.Post, int64, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	var matching []*blog.Post
	for _, p := range m.posts {
		if params.Category != "" && p.Category != params.Category {
			continue
		}
		if params.Featured != nil && p.Featured != *params.Featured {
			continue
		}
		if params.Search != "" {
			s := strings.ToLower(params.Search)
			if !strings.Contains(strings.ToLower(p.Title), s) &&
				!strings.Contains(strings.ToLower(p.Excerpt), s) &&
				!strings.Contains(strings.ToLower(p.Content), s) {
				continue
			}
		}
		copied := *p
		matching = append(matching, &copied)
	}

	sort.Slice(matching, func(i, j int) bool {
		a, b := matching[i], matching[j]
		cmp := compareBy(params.SortBy, a, b)
		if cmp == 0 {
			cmp = strings.Compare(a.ID.Hex(), b.ID.Hex())
		}
		if params.SortAscending {
			return cmp < 0
		}
		return cmp > 0
	})

	total := int64(len(matching))
	start := params.Skip()
	if start > len(matching) {
		start = len(matching)
	}
	end := start + params.Limit
	if end > len(matching) {
		end = len(matching)
	}
	return matching[start:end], total, nil
}

func compareBy(field string, a, b *blog.Post) int {
	switch field {
	case "title":
		return strings.Compare(a.Title, b.Title)
	case "author":
		return strings.Compare(a.Author, b.Author)
	case "category":
		return strings.Compare(a.Category, b.Category)
	case "readTime":
		return compareNum(a.ReadTime, b.ReadTime)
	case "likes":
		return compareNum(float64(a.Likes), float64(b.Likes))
	case "comments":
		return compareNum(float64(a.Comments), float64(b.Comments))
	default:
		return a.Date.Compare(b.Date)
	}
}

func compareNum(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func (m *memoryRepo) Get(_ context.Context, id primitive.ObjectID) (*blog.Post, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	p, ok := m.posts[id]
	if !ok {
		return nil, blog.ErrPostNotFound
	}
	copied := *p
	return &copied, nil
}

func (m *memoryRepo) Create(_ context.Context, post *blog.Post) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	post.ID = primitive.NewObjectID()
	post.Date = time.Now().UTC().Truncate(time.Millisecond)
	post.Comments = 0
	post.Likes = 0
	copied := *post
	m.posts[post.ID] = &copied
	return nil
}

func (m *memoryRepo) Update(_ context.Context, id primitive.ObjectID, patch *blog.PostPatch) (*blog.Post, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	stored, ok := m.posts[id]
	if !ok {
		return nil, blog.ErrPostNotFound
	}
	patch.ApplyTo(stored)
	copied := *stored
	return &copied, nil
}

func (m *memoryRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if _, ok := m.posts[id]; !ok {
		return blog.ErrPostNotFound
	}
	delete(m.posts, id)
	return nil
}

func (m *memoryRepo) Like(_ context.Context, id primitive.ObjectID) (*blog.Post, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	p, ok := m.posts[id]
	if !ok {
		return nil, blog.ErrPostNotFound
	}
	p.Likes++
	copied := *p
	return &copied, nil
}

func (m *memoryRepo) Categories(_ context.Context) ([]string, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	set := map[string]bool{}
	for _, p := range m.posts {
		set[p.Category] = true
	}
	categories := make([]string, 0, len(set))
	for c := range set {
		categories = append(categories, c)
	}
	sort.Strings(categories)
	return categories, nil
}
