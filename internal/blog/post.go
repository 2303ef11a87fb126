package blog

import (
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrPostNotFound = errors.New("blog post not found")
	ErrInvalidID    = errors.New("invalid blog post id")
)

type Post struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Title    string             `bson:"title" json:"title"`
	Excerpt  string             `bson:"excerpt" json:"excerpt"`
	Content  string             `bson:"content" json:"content"`
	Author   string             `bson:"author" json:"author"`
	Category string             `bson:"category" json:"category"`
	Featured bool               `bson:"featured" json:"featured"`
	ReadTime float64            `bson:"readTime" json:"readTime"` // minutes
	Image    string             `bson:"image" json:"image"`
	Date     time.Time          `bson:"date" json:"date"`
	Comments int                `bson:"comments" json:"comments"`
	Likes    int                `bson:"likes" json:"likes"`
}

// ParseID checks the path id is a well formed ObjectID (24 hex chars).
func ParseID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: %s", ErrInvalidID, err)
	}
	return oid, nil
}
