package blog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/multierr"

	"github.com/2beens/blogpress/pkg"
)

const (
	maxTitleLength   = 200
	maxExcerptLength = 500
	minReadTime      = 1
)

// ReadTime accepts both a JSON number and a numeric string, as forms tend to send the latter.
type ReadTime float64

func (rt *ReadTime) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		data = []byte(strings.TrimSpace(s))
	}

	value, err := strconv.ParseFloat(string(data), 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
		return fmt.Errorf("readTime: %q is not a number", string(data))
	}
	*rt = ReadTime(value)
	return nil
}

// PostInput is the body of a create request. Nil fields were not sent.
type PostInput struct {
	Title    *string   `json:"title"`
	Excerpt  *string   `json:"excerpt"`
	Content  *string   `json:"content"`
	Author   *string   `json:"author"`
	Category *string   `json:"category"`
	Featured *bool     `json:"featured"`
	ReadTime *ReadTime `json:"readTime"`
	Image    *string   `json:"image"`
}

// PostPatch is the body of an update request; only the sent fields are applied.
type PostPatch struct {
	PostInput
	Date     *time.Time `json:"date"`
	Comments *int       `json:"comments"`
	Likes    *int       `json:"likes"`
}

func (in *PostInput) normalize() {
	for _, s := range []*string{in.Title, in.Excerpt, in.Content, in.Author, in.Category, in.Image} {
		if s != nil {
			*s = strings.TrimSpace(*s)
		}
	}
}

// Validate trims the text fields and checks the input can become a new post.
func (in *PostInput) Validate() error {
	in.normalize()
	post := in.toPost()

	var errs error
	errs = multierr.Append(errs, validateTextFields(post))
	errs = multierr.Append(errs, validateReadTime(in.ReadTime))
	return pkg.NewValidationError(errs)
}

func (in *PostInput) toPost() *Post {
	post := &Post{}
	in.applyTo(post)
	return post
}

func (in *PostInput) applyTo(post *Post) {
	if in.Title != nil {
		post.Title = *in.Title
	}
	if in.Excerpt != nil {
		post.Excerpt = *in.Excerpt
	}
	if in.Content != nil {
		post.Content = *in.Content
	}
	if in.Author != nil {
		post.Author = *in.Author
	}
	if in.Category != nil {
		post.Category = *in.Category
	}
	if in.Featured != nil {
		post.Featured = *in.Featured
	}
	if in.ReadTime != nil {
		post.ReadTime = float64(*in.ReadTime)
	}
	if in.Image != nil {
		post.Image = *in.Image
	}
}

// ApplyTo merges the sent fields onto the stored post. The id is never touched.
func (p *PostPatch) ApplyTo(post *Post) {
	p.normalize()
	p.applyTo(post)
	if p.Date != nil && !p.Date.IsZero() {
		post.Date = *p.Date
	}
	if p.Comments != nil {
		post.Comments = *p.Comments
	}
	if p.Likes != nil {
		post.Likes = *p.Likes
	}
}

// ValidatePost checks a complete post, e.g. after an update merge.
func ValidatePost(post *Post) error {
	readTime := ReadTime(post.ReadTime)

	var errs error
	errs = multierr.Append(errs, validateTextFields(post))
	errs = multierr.Append(errs, validateReadTime(&readTime))
	if post.Comments < 0 {
		errs = multierr.Append(errs, pkg.NewFieldError("comments", "Comments cannot be negative"))
	}
	if post.Likes < 0 {
		errs = multierr.Append(errs, pkg.NewFieldError("likes", "Likes cannot be negative"))
	}
	return pkg.NewValidationError(errs)
}

func validateTextFields(post *Post) error {
	var errs error
	required := []struct {
		field, value, message string
	}{
		{"title", post.Title, "Title is required"},
		{"excerpt", post.Excerpt, "Excerpt is required"},
		{"content", post.Content, "Content is required"},
		{"author", post.Author, "Author is required"},
		{"category", post.Category, "Category is required"},
		{"image", post.Image, "Image URL is required"},
	}
	for _, r := range required {
		if r.value == "" {
			errs = multierr.Append(errs, pkg.NewFieldError(r.field, r.message))
		}
	}

	if utf8.RuneCountInString(post.Title) > maxTitleLength {
		errs = multierr.Append(errs, pkg.NewFieldError(
			"title", fmt.Sprintf("Title cannot be more than %d characters", maxTitleLength),
		))
	}
	if utf8.RuneCountInString(post.Excerpt) > maxExcerptLength {
		errs = multierr.Append(errs, pkg.NewFieldError(
			"excerpt", fmt.Sprintf("Excerpt cannot be more than %d characters", maxExcerptLength),
		))
	}

	return errs
}

func validateReadTime(readTime *ReadTime) error {
	if readTime == nil {
		return pkg.NewFieldError("readTime", "Read time is required")
	}
	if *readTime < minReadTime {
		return pkg.NewFieldError("readTime", "Read time must be at least 1 minute")
	}
	return nil
}
