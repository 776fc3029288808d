package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"campusevents/internal/domain"
)

const eventColumns = `e.id, e.title, e.description, e.date, e.time, e.location, e.price, e.image_url, e.slug,
		e.organizer_id, e.status, e.benefits, e.created_at, e.updated_at, u.id, u.name, u.email`

const eventFrom = `FROM events e JOIN users u ON u.id = e.organizer_id`

type rowScanner interface {
	Scan(dest ...any) error
}

type eventRepository struct {
	DB *sql.DB
}

func NewEventRepository(db *sql.DB) domain.EventRepository {
	return &eventRepository{DB: db}
}

func encodeBenefits(b []string) (string, error) {
	if b == nil {
		b = []string{}
	}
	raw, err := json.Marshal(b)
	if err != nil {
		return "", fmt.Errorf("encode benefits: %w", err)
	}
	return string(raw), nil
}

func decodeBenefits(raw string) ([]string, error) {
	out := []string{}
	if raw == "" {
		return out, nil
	}
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, fmt.Errorf("decode benefits: %w", err)
	}
	if out == nil {
		out = []string{}
	}
	return out, nil
}

// scanEventFields scans the event columns, preceded by prefix and followed by suffix destinations.
func scanEventFields(row rowScanner, e *domain.Event, prefix, suffix []any) error {
	var status, benefits string
	dest := append(prefix,
		&e.ID, &e.Title, &e.Description, &e.Date, &e.Time, &e.Location, &e.Price, &e.ImageURL, &e.Slug,
		&e.OrganizerID, &status, &benefits, &e.CreatedAt, &e.UpdatedAt,
	)
	if err := row.Scan(append(dest, suffix...)...); err != nil {
		return err
	}
	e.Status = domain.EventStatus(status)
	b, err := decodeBenefits(benefits)
	if err != nil {
		return err
	}
	e.Benefits = b
	return nil
}

func scanEvent(row rowScanner) (*domain.Event, error) {
	e := &domain.Event{Organizer: &domain.UserSummary{}}
	organizer := []any{&e.Organizer.ID, &e.Organizer.Name, &e.Organizer.Email}
	if err := scanEventFields(row, e, nil, organizer); err != nil {
		return nil, err
	}
	return e, nil
}

func (r *eventRepository) Create(ctx context.Context, e *domain.Event) error {
	benefits, err := encodeBenefits(e.Benefits)
	if err != nil {
		return err
	}
	id := uuid.NewString()
	query := `
		INSERT INTO events (id, title, description, date, time, location, price, image_url, slug, organizer_id, status, benefits, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = r.DB.ExecContext(ctx, query,
		id, e.Title, e.Description, e.Date.UTC(), e.Time, e.Location, e.Price, e.ImageURL, e.Slug,
		e.OrganizerID, string(e.Status), benefits, e.CreatedAt.UTC(), e.UpdatedAt.UTC(),
	)
	switch {
	case err == nil:
		e.ID = id
		return nil
	case isUniqueViolation(err):
		return domain.ErrDuplicateSlug
	case isForeignKeyViolation(err):
		return domain.ErrUserNotFound
	}
	return err
}

func (r *eventRepository) getOne(ctx context.Context, where string, arg any) (*domain.Event, error) {
	e, err := scanEvent(r.DB.QueryRowContext(ctx, `SELECT `+eventColumns+` `+eventFrom+` WHERE `+where, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return e, nil
}

func (r *eventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	return r.getOne(ctx, `e.id = ?`, id)
}

func (r *eventRepository) GetBySlug(ctx context.Context, slug string) (*domain.Event, error) {
	return r.getOne(ctx, `e.slug = ?`, slug)
}

func (r *eventRepository) SlugExists(ctx context.Context, slug, excludeID string) (bool, error) {
	var exists bool
	err := r.DB.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM events WHERE slug = ? AND id <> ?)`, slug, excludeID,
	).Scan(&exists)
	return exists, err
}

func whereClause(filter domain.EventFilter) (string, []any) {
	var conds []string
	var args []any
	if filter.Status != "" {
		conds = append(conds, "e.status = ?")
		args = append(args, string(filter.Status))
	}
	if filter.OrganizerID != "" {
		conds = append(conds, "e.organizer_id = ?")
		args = append(args, filter.OrganizerID)
	}
	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func orderClause(order domain.EventOrder) string {
	if order == domain.EventOrderDateAsc {
		return " ORDER BY e.date ASC, e.created_at ASC"
	}
	return " ORDER BY e.created_at DESC"
}

func (r *eventRepository) List(ctx context.Context, filter domain.EventFilter) ([]*domain.Event, error) {
	where, args := whereClause(filter)
	query := `SELECT ` + eventColumns + ` ` + eventFrom + where + orderClause(filter.OrderBy)
	if p := filter.Pagination; p.Paged() {
		query += " LIMIT ? OFFSET ?"
		args = append(args, p.PageSize, p.Offset())
	}
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	events := make([]*domain.Event, 0)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

func (r *eventRepository) Count(ctx context.Context, filter domain.EventFilter) (int, error) {
	where, args := whereClause(filter)
	var n int
	err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM events e`+where, args...).Scan(&n)
	return n, err
}

func (r *eventRepository) Update(ctx context.Context, e *domain.Event) error {
	benefits, err := encodeBenefits(e.Benefits)
	if err != nil {
		return err
	}
	query := `
		UPDATE events
		SET title = ?, description = ?, date = ?, time = ?, location = ?, price = ?,
			image_url = ?, slug = ?, status = ?, benefits = ?, updated_at = ?
		WHERE id = ?
	`
	result, err := r.DB.ExecContext(ctx, query,
		e.Title, e.Description, e.Date.UTC(), e.Time, e.Location, e.Price,
		e.ImageURL, e.Slug, string(e.Status), benefits, e.UpdatedAt.UTC(), e.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateSlug
		}
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *eventRepository) Delete(ctx context.Context, id string) error {
	result, err := r.DB.ExecContext(ctx, `DELETE FROM events WHERE id = ?`, id)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}
