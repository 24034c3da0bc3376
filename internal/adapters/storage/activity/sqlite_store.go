package activity

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"activityboard/internal/adapters/storage"
	domain "activityboard/internal/domain/activity"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new activity Store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// List returns the whole catalog.
// POST: Every activity has a non-nil roster in sign-up order
func (s *SQLiteStore) List(ctx context.Context) (domain.Catalog, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT name, description, schedule, max_participants FROM activity")
	if err != nil {
		return nil, err
	}
	cat := domain.Catalog{}
	for rows.Next() {
		var a domain.Activity
		if err := rows.Scan(&a.Name, &a.Description, &a.Schedule, &a.MaxParticipants); err != nil {
			rows.Close()
			return nil, err
		}
		a.Participants = []string{}
		cat[a.Name] = a
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	prows, err := s.db.QueryContext(ctx, "SELECT activity_name, email FROM participant ORDER BY activity_name, position")
	if err != nil {
		return nil, err
	}
	defer prows.Close()
	for prows.Next() {
		var name, email string
		if err := prows.Scan(&name, &email); err != nil {
			return nil, err
		}
		a := cat[name]
		a.Participants = append(a.Participants, email)
		cat[name] = a
	}
	return cat, prows.Err()
}

// Save upserts an activity and replaces its roster.
// PRE: value has been validated
// POST: Activity and roster are persisted in order
func (s *SQLiteStore) Save(ctx context.Context, value domain.Activity) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO activity (name, description, schedule, max_participants) VALUES (?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET description=excluded.description, schedule=excluded.schedule, max_participants=excluded.max_participants`,
		value.Name, value.Description, value.Schedule, value.MaxParticipants,
	)
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM participant WHERE activity_name = ?", value.Name); err != nil {
		return err
	}
	for i, email := range value.Participants {
		if _, err := tx.ExecContext(ctx, "INSERT INTO participant (activity_name, email, position) VALUES (?, ?, ?)", value.Name, email, i+1); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// AddParticipant appends email to the roster of the named activity.
// PRE: name and email are non-empty
// POST: Returns domain.ErrActivityNotFound, domain.ErrAlreadySignedUp or
// domain.ErrActivityFull when the sign-up cannot be taken
func (s *SQLiteStore) AddParticipant(ctx context.Context, name, email string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var maxParticipants int
	err = tx.QueryRowContext(ctx, "SELECT max_participants FROM activity WHERE name = ?", name).Scan(&maxParticipants)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("activity %q: %w", name, domain.ErrActivityNotFound)
	}
	if err != nil {
		return err
	}

	var exists bool
	if err := tx.QueryRowContext(ctx, "SELECT EXISTS(SELECT 1 FROM participant WHERE activity_name = ? AND email = ?)", name, email).Scan(&exists); err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("%s in %q: %w", email, name, domain.ErrAlreadySignedUp)
	}

	var count, lastPosition int
	if err := tx.QueryRowContext(ctx, "SELECT COUNT(*), COALESCE(MAX(position), 0) FROM participant WHERE activity_name = ?", name).Scan(&count, &lastPosition); err != nil {
		return err
	}
	if count >= maxParticipants {
		return fmt.Errorf("activity %q: %w", name, domain.ErrActivityFull)
	}

	if _, err := tx.ExecContext(ctx, "INSERT INTO participant (activity_name, email, position) VALUES (?, ?, ?)", name, email, lastPosition+1); err != nil {
		return err
	}
	return tx.Commit()
}

// RemoveParticipant deletes email from the roster of the named activity.
// PRE: name and email are non-empty
// POST: Returns domain.ErrActivityNotFound or domain.ErrNotSignedUp when
// there is nothing to remove
func (s *SQLiteStore) RemoveParticipant(ctx context.Context, name, email string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var exists bool
	if err := tx.QueryRowContext(ctx, "SELECT EXISTS(SELECT 1 FROM activity WHERE name = ?)", name).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("activity %q: %w", name, domain.ErrActivityNotFound)
	}

	res, err := tx.ExecContext(ctx, "DELETE FROM participant WHERE activity_name = ? AND email = ?", name, email)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%s in %q: %w", email, name, domain.ErrNotSignedUp)
	}
	return tx.Commit()
}
