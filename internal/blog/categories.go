package blog

import (
	"encoding/json"
	"errors"

	"github.com/coocood/freecache"
	log "github.com/sirupsen/logrus"
)

const (
	categoriesCacheKey  = "blog::categories"
	categoriesCacheSize = 1024 * 1024
)

// DefaultCategories is served when no category is stored yet or the store fails.
// A fresh slice is returned on every call.
func DefaultCategories() []string {
	return []string{"Admissions", "Visa Guidance", "Scholarships", "Student Life"}
}

// CategoriesCache keeps the last distinct-categories result in process.
type CategoriesCache struct {
	cache      *freecache.Cache
	expireSecs int
}

func NewCategoriesCache(expireSecs int) *CategoriesCache {
	return &CategoriesCache{
		cache:      freecache.NewCache(categoriesCacheSize),
		expireSecs: expireSecs,
	}
}

func (c *CategoriesCache) Get() ([]string, bool) {
	categoriesBytes, err := c.cache.Get([]byte(categoriesCacheKey))
	if err != nil {
		if !errors.Is(err, freecache.ErrNotFound) {
			log.Errorf("get categories from cache: %s", err)
		}
		return nil, false
	}

	var categories []string
	if err := json.Unmarshal(categoriesBytes, &categories); err != nil {
		log.Errorf("unmarshal cached categories: %s", err)
		return nil, false
	}
	return categories, true
}

func (c *CategoriesCache) Set(categories []string) {
	categoriesBytes, err := json.Marshal(categories)
	if err != nil {
		log.Errorf("marshal categories for cache: %s", err)
		return
	}
	if err := c.cache.Set([]byte(categoriesCacheKey), categoriesBytes, c.expireSecs); err != nil {
		log.Errorf("write categories cache: %s", err)
	}
}

func (c *CategoriesCache) Invalidate() {
	c.cache.Del([]byte(categoriesCacheKey))
}
