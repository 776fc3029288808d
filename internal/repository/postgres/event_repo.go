package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"

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
	return &eventRepository{
		DB: db,
	}
}

func scanEvent(row rowScanner) (*domain.Event, error) {
	e := &domain.Event{Organizer: &domain.UserSummary{}}
	var status string
	err := row.Scan(
		&e.ID, &e.Title, &e.Description, &e.Date, &e.Time, &e.Location, &e.Price, &e.ImageURL, &e.Slug,
		&e.OrganizerID, &status, pq.Array(&e.Benefits), &e.CreatedAt, &e.UpdatedAt,
		&e.Organizer.ID, &e.Organizer.Name, &e.Organizer.Email,
	)
	if err != nil {
		return nil, err
	}
	e.Status = domain.EventStatus(status)
	if e.Benefits == nil {
		e.Benefits = []string{}
	}
	return e, nil
}

func benefitsArg(b []string) any {
	if b == nil {
		b = []string{}
	}
	return pq.Array(b)
}

func (r *eventRepository) Create(ctx context.Context, e *domain.Event) error {
	query := `
		INSERT INTO events (title, description, date, time, location, price, image_url, slug, organizer_id, status, benefits, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id
	`
	err := r.DB.QueryRowContext(ctx, query,
		e.Title, e.Description, e.Date, e.Time, e.Location, e.Price, e.ImageURL, e.Slug,
		e.OrganizerID, string(e.Status), benefitsArg(e.Benefits), e.CreatedAt, e.UpdatedAt,
	).Scan(&e.ID)
	switch {
	case err == nil:
		return nil
	case isUniqueViolation(err):
		return domain.ErrDuplicateSlug
	case isForeignKeyViolation(err):
		return domain.ErrUserNotFound
	}
	return err
}

func (r *eventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	query := `SELECT ` + eventColumns + ` ` + eventFrom + ` WHERE e.id = $1`
	e, err := scanEvent(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) || isInvalidTextRepresentation(err) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return e, nil
}

func (r *eventRepository) GetBySlug(ctx context.Context, slug string) (*domain.Event, error) {
	query := `SELECT ` + eventColumns + ` ` + eventFrom + ` WHERE e.slug = $1`
	e, err := scanEvent(r.DB.QueryRowContext(ctx, query, slug))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return e, nil
}

func (r *eventRepository) SlugExists(ctx context.Context, slug, excludeID string) (bool, error) {
	var exists bool
	var err error
	if excludeID == "" {
		err = r.DB.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM events WHERE slug = $1)`, slug).Scan(&exists)
	} else {
		err = r.DB.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM events WHERE slug = $1 AND id <> $2)`, slug, excludeID).Scan(&exists)
	}
	return exists, err
}

// whereClause builds the WHERE clause for filter. Placeholders start at $1.
func whereClause(filter domain.EventFilter) (string, []any) {
	var conds []string
	var args []any
	if filter.Status != "" {
		args = append(args, string(filter.Status))
		conds = append(conds, fmt.Sprintf("e.status = $%d", len(args)))
	}
	if filter.OrganizerID != "" {
		args = append(args, filter.OrganizerID)
		conds = append(conds, fmt.Sprintf("e.organizer_id = $%d", len(args)))
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
		args = append(args, p.PageSize, p.Offset())
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)-1, len(args))
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
	query := `
		UPDATE events
		SET title = $1, description = $2, date = $3, time = $4, location = $5, price = $6,
			image_url = $7, slug = $8, status = $9, benefits = $10, updated_at = $11
		WHERE id = $12
	`
	result, err := r.DB.ExecContext(ctx, query,
		e.Title, e.Description, e.Date, e.Time, e.Location, e.Price,
		e.ImageURL, e.Slug, string(e.Status), benefitsArg(e.Benefits), e.UpdatedAt, e.ID,
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
	query := `DELETE FROM events WHERE id = $1`
	result, err := r.DB.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}
