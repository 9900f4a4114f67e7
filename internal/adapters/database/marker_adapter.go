package database

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/jmoiron/sqlx"
	"github.com/reelspot/backend/internal/domain/entities"
	"github.com/reelspot/backend/internal/domain/repositories"
	apperrors "github.com/reelspot/backend/pkg/errors"
)

type markerRow struct {
	ID        int64   `db:"id"`
	UserID    int64   `db:"user_id"`
	Latitude  float64 `db:"latitude"`
	Longitude float64 `db:"longitude"`
	Name      string  `db:"name"`
	Address   string  `db:"address"`
	Emoji     string  `db:"emoji"`
	CreatedAt string  `db:"created_at"`
}

func (r markerRow) toEntity() (*entities.Marker, error) {
	createdAt, err := parseTimestamp(r.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("marker %d has invalid created_at %q: %w", r.ID, r.CreatedAt, err)
	}
	return &entities.Marker{
		ID:        r.ID,
		AccountID: r.UserID,
		Latitude:  r.Latitude,
		Longitude: r.Longitude,
		Name:      r.Name,
		Address:   r.Address,
		Emoji:     r.Emoji,
		CreatedAt: createdAt,
	}, nil
}

// MarkerAdapter implements the append-only marker store on SQL.
// Appends are serialised so ID assignment and the insert happen as one step.
type MarkerAdapter struct {
	client Client
	db     *goqu.Database
	x      *sqlx.DB
	mu     sync.Mutex
	now    func() time.Time
}

// NewMarkerAdapter creates a new marker adapter
func NewMarkerAdapter(client Client) repositories.MarkerRepository {
	return newMarkerAdapter(client, time.Now)
}

func newMarkerAdapter(client Client, now func() time.Time) *MarkerAdapter {
	db, x := newQueryBuilders(client)
	return &MarkerAdapter{
		client: client,
		db:     db,
		x:      x,
		now:    now,
	}
}

// Append inserts marker and fills its ID and CreatedAt
func (a *MarkerAdapter) Append(ctx context.Context, marker *entities.Marker) error {
	if marker == nil {
		return apperrors.NewInternalError("marker is nil", fmt.Errorf("marker is nil"))
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	createdAt := a.now().UTC()
	record := goqu.Record{
		"user_id":    marker.AccountID,
		"latitude":   marker.Latitude,
		"longitude":  marker.Longitude,
		"name":       marker.Name,
		"address":    marker.Address,
		"emoji":      marker.Emoji,
		"created_at": formatTimestamp(createdAt),
	}
	insert := a.db.Insert(markersTable).Prepared(true).Rows(record)

	var id int64
	if a.client.Dialect() == dialectPostgres {
		query, args, err := insert.Returning("id").ToSQL()
		if err != nil {
			return apperrors.NewInternalError("failed to build marker insert query", err)
		}
		if err := a.client.DB().QueryRowContext(ctx, query, args...).Scan(&id); err != nil {
			return apperrors.NewInternalError("failed to save marker", err)
		}
	} else {
		query, args, err := insert.ToSQL()
		if err != nil {
			return apperrors.NewInternalError("failed to build marker insert query", err)
		}
		result, err := a.client.DB().ExecContext(ctx, query, args...)
		if err != nil {
			return apperrors.NewInternalError("failed to save marker", err)
		}
		if id, err = result.LastInsertId(); err != nil {
			return apperrors.NewInternalError("failed to read marker id", err)
		}
	}

	marker.ID = id
	marker.CreatedAt = createdAt
	return nil
}

// List returns the account's markers in insertion order
func (a *MarkerAdapter) List(ctx context.Context, accountID int64) ([]*entities.Marker, error) {
	query, args, err := a.db.From(markersTable).
		Prepared(true).
		Select("id", "user_id", "latitude", "longitude", "name", "address", "emoji", "created_at").
		Where(goqu.C("user_id").Eq(accountID)).
		Order(goqu.C("id").Asc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build marker list query", err)
	}

	var rows []markerRow
	if err := a.x.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, apperrors.NewInternalError("failed to load markers", err)
	}

	markers := make([]*entities.Marker, 0, len(rows))
	for _, row := range rows {
		marker, err := row.toEntity()
		if err != nil {
			return nil, apperrors.NewInternalError("failed to load markers", err)
		}
		markers = append(markers, marker)
	}
	return markers, nil
}
