package users

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"

	"github.com/2beens/blogpress/internal/telemetry/tracing"
	"github.com/2beens/blogpress/pkg"
)

const SchemaSQL = `
CREATE TABLE IF NOT EXISTS public.registered_user
(
    id           SERIAL PRIMARY KEY,
    username     VARCHAR     NOT NULL,
    email        VARCHAR     NOT NULL,
    phone        VARCHAR(10) NOT NULL,
    dob          DATE        NOT NULL,
    college_name VARCHAR     NOT NULL,
    state        VARCHAR     NOT NULL,
    created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE UNIQUE INDEX IF NOT EXISTS ux_registered_user_email ON public.registered_user (lower(email));
CREATE INDEX IF NOT EXISTS ix_registered_user_created_at ON public.registered_user (created_at);
`

var _ usersRepo = (*Repo)(nil)

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

func (r *Repo) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, SchemaSQL); err != nil {
		return fmt.Errorf("create users schema: %w", err)
	}
	return nil
}

func (r *Repo) Add(ctx context.Context, user *User) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "usersRepo.Add")
	defer func() {
		// a taken email is a client error, not a failed span
		if errors.Is(err, ErrEmailTaken) {
			span.End()
			return
		}
		tracing.EndSpan(span, err)
	}()

	dob, err := time.Parse(DateLayout, user.DOB)
	if err != nil {
		return fmt.Errorf("parse dob: %w", err)
	}

	err = r.db.QueryRow(
		ctx,
		`INSERT INTO registered_user (username, email, phone, dob, college_name, state)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at;`,
		user.Username, user.Email, user.Phone, dob, user.CollegeName, user.State,
	).Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		if pkg.IsUniqueViolationError(err) {
			return ErrEmailTaken
		}
		return fmt.Errorf("insert user: %w", err)
	}

	span.SetAttributes(attribute.Int("user.id", user.ID))
	return nil
}

// List returns users newest first. A non-empty search matches username or email, case-insensitive.
func (r *Repo) List(ctx context.Context, search string) (_ []*User, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "usersRepo.List")
	defer func() {
		tracing.EndSpan(span, err)
	}()

	query := `SELECT id, username, email, phone, dob, college_name, state, created_at FROM registered_user`
	var args []any
	if search != "" {
		query += ` WHERE username ILIKE $1 OR email ILIKE $1`
		args = append(args, "%"+escapeLike(search)+"%")
	}
	query += ` ORDER BY created_at DESC, id DESC;`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	defer rows.Close()

	users := make([]*User, 0)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}

	log.Tracef("listed %d users", len(users))
	return users, nil
}

func scanUser(rows pgx.Rows) (*User, error) {
	var user User
	var dob time.Time
	if err := rows.Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.Phone,
		&dob,
		&user.CollegeName,
		&user.State,
		&user.CreatedAt,
	); err != nil {
		return nil, fmt.Errorf("scan user: %w", err)
	}
	user.DOB = dob.Format(DateLayout)
	return &user, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
