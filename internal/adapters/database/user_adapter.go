package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/jmoiron/sqlx"
	"github.com/reelspot/backend/internal/domain/entities"
	"github.com/reelspot/backend/internal/domain/repositories"
	apperrors "github.com/reelspot/backend/pkg/errors"
)

type userRow struct {
	ID           int64  `db:"id"`
	Username     string `db:"username"`
	PasswordHash string `db:"password_hash"`
	CreatedAt    string `db:"created_at"`
}

func (r userRow) toEntity() *entities.User {
	user := &entities.User{
		ID:           r.ID,
		Username:     r.Username,
		PasswordHash: r.PasswordHash,
	}
	if createdAt, err := parseTimestamp(r.CreatedAt); err == nil {
		user.CreatedAt = createdAt
	}
	return user
}

// UserAdapter implements user persistence
type UserAdapter struct {
	client Client
	db     *goqu.Database
	x      *sqlx.DB
}

// NewUserAdapter creates a new user adapter
func NewUserAdapter(client Client) repositories.UserRepository {
	db, x := newQueryBuilders(client)
	return &UserAdapter{client: client, db: db, x: x}
}

// Create inserts a user and fills its ID
func (a *UserAdapter) Create(ctx context.Context, user *entities.User) error {
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	record := goqu.Record{
		"username":      user.Username,
		"password_hash": user.PasswordHash,
		"created_at":    formatTimestamp(user.CreatedAt),
	}
	insert := a.db.Insert(usersTable).Prepared(true).Rows(record)

	var err error
	if a.client.Dialect() == dialectPostgres {
		query, args, buildErr := insert.Returning("id").ToSQL()
		if buildErr != nil {
			return apperrors.NewInternalError("failed to build user insert query", buildErr)
		}
		err = a.client.DB().QueryRowContext(ctx, query, args...).Scan(&user.ID)
	} else {
		query, args, buildErr := insert.ToSQL()
		if buildErr != nil {
			return apperrors.NewInternalError("failed to build user insert query", buildErr)
		}
		var result sql.Result
		if result, err = a.client.DB().ExecContext(ctx, query, args...); err == nil {
			user.ID, err = result.LastInsertId()
		}
	}

	if isUniqueViolation(err) {
		return apperrors.NewConflictError("Username already exists.")
	}
	if err != nil {
		return apperrors.NewInternalError("failed to create account", err)
	}
	return nil
}

// GetByID retrieves a user by ID
func (a *UserAdapter) GetByID(ctx context.Context, id int64) (*entities.User, error) {
	return a.getOne(ctx, goqu.C("id").Eq(id), fmt.Sprintf("user %d not found", id))
}

// GetByUsername retrieves a user by username
func (a *UserAdapter) GetByUsername(ctx context.Context, username string) (*entities.User, error) {
	return a.getOne(ctx, goqu.C("username").Eq(username), fmt.Sprintf("user %q not found", username))
}

func (a *UserAdapter) getOne(ctx context.Context, where exp.Expression, notFound string) (*entities.User, error) {
	query, args, err := a.db.From(usersTable).
		Prepared(true).
		Select("id", "username", "password_hash", "created_at").
		Where(where).
		Limit(1).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build user query", err)
	}

	var row userRow
	err = a.x.GetContext(ctx, &row, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFoundError(notFound)
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get user", err)
	}
	return row.toEntity(), nil
}
