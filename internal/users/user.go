package users

import (
	"errors"
	"time"
)

const DateLayout = "2006-01-02"

var ErrEmailTaken = errors.New("email already registered")

type User struct {
	ID          int       `json:"id"`
	Username    string    `json:"username"`
	Email       string    `json:"email"`
	Phone       string    `json:"phone"`
	DOB         string    `json:"dob"` // YYYY-MM-DD
	CollegeName string    `json:"collegeName"`
	State       string    `json:"state"`
	CreatedAt   time.Time `json:"createdAt"`
}
