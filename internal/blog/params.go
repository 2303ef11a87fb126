package blog

import (
	"errors"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"
)

const (
	DefaultPage       = 1
	DefaultLimit      = 10
	DefaultSortBy     = "date"
	categoryFilterAll = "all"
)

var ErrInvalidListParams = errors.New("invalid list parameters")

// sortable query keys mapped to document fields
var sortFields = map[string]string{
	"date":     "date",
	"title":    "title",
	"author":   "author",
	"category": "category",
	"readTime": "readTime",
	"likes":    "likes",
	"comments": "comments",
	"featured": "featured",
}

type ListParams struct {
	Page          int
	Limit         int
	SortBy        string
	SortAscending bool
	Category      string
	Featured      *bool
	Search        string
}

// Skip is the number of matching posts before the requested page.
func (p ListParams) Skip() int {
	return (p.Page - 1) * p.Limit
}

// TotalPages returns ceil(total/limit).
func (p ListParams) TotalPages(total int64) int {
	if p.Limit <= 0 {
		return 0
	}
	limit := int64(p.Limit)
	return int((total + limit - 1) / limit)
}

// ParseListParams reads the list query. A limit over maxLimit is capped, not refused.
func ParseListParams(query url.Values, maxLimit int) (ListParams, error) {
	params := ListParams{
		Page:   DefaultPage,
		Limit:  DefaultLimit,
		SortBy: DefaultSortBy,
	}

	if pageStr := strings.TrimSpace(query.Get("page")); pageStr != "" {
		page, err := strconv.Atoi(pageStr)
		if err != nil || page < 1 {
			return params, fmt.Errorf("%w: page must be a positive integer", ErrInvalidListParams)
		}
		params.Page = page
	}

	if limitStr := strings.TrimSpace(query.Get("limit")); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil || limit < 1 {
			return params, fmt.Errorf("%w: limit must be a positive integer", ErrInvalidListParams)
		}
		params.Limit = limit
	}
	if maxLimit > 0 && params.Limit > maxLimit {
		params.Limit = maxLimit
	}
	// skip must fit in an int
	if params.Page-1 > math.MaxInt/params.Limit {
		return params, fmt.Errorf("%w: page is too large", ErrInvalidListParams)
	}

	if sortBy := strings.TrimSpace(query.Get("sortBy")); sortBy != "" {
		field, ok := sortFields[sortBy]
		if !ok {
			return params, fmt.Errorf("%w: cannot sort by %q", ErrInvalidListParams, sortBy)
		}
		params.SortBy = field
	}
	params.SortAscending = strings.TrimSpace(query.Get("sortOrder")) == "asc"

	if category := strings.TrimSpace(query.Get("category")); category != categoryFilterAll {
		params.Category = category
	}

	if featuredStr := strings.TrimSpace(query.Get("featured")); featuredStr != "" {
		featured, err := strconv.ParseBool(featuredStr)
		if err != nil {
			return params, fmt.Errorf("%w: featured must be true or false", ErrInvalidListParams)
		}
		params.Featured = &featured
	}

	params.Search = strings.TrimSpace(query.Get("search"))

	return params, nil
}
