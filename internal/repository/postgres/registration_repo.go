package postgres

import (
	"context"
	"database/sql"

	"github.com/lib/pq"

	"campusevents/internal/domain"
)

type registrationRepository struct {
	DB *sql.DB
}

func NewRegistrationRepository(db *sql.DB) domain.RegistrationRepository {
	return &registrationRepository{
		DB: db,
	}
}

// Create relies on the (user_id, event_id) unique constraint; concurrent duplicates lose there.
func (r *registrationRepository) Create(ctx context.Context, reg *domain.Registration) error {
	query := `
		INSERT INTO registrations (user_id, event_id, registered_at)
		VALUES ($1, $2, $3)
		RETURNING id
	`
	err := r.DB.QueryRowContext(ctx, query, reg.UserID, reg.EventID, reg.RegisteredAt).Scan(&reg.ID)
	switch {
	case err == nil:
		return nil
	case isUniqueViolation(err):
		return domain.ErrAlreadyRegistered
	case isForeignKeyViolation(err):
		return domain.ErrNotFound
	}
	return err
}

func (r *registrationRepository) Exists(ctx context.Context, userID, eventID string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM registrations WHERE user_id = $1 AND event_id = $2)`
	var exists bool
	err := r.DB.QueryRowContext(ctx, query, userID, eventID).Scan(&exists)
	if isInvalidTextRepresentation(err) {
		return false, nil
	}
	return exists, err
}

func (r *registrationRepository) ListByEventID(ctx context.Context, eventID string) ([]*domain.Registrant, error) {
	query := `
		SELECT r.id, r.registered_at, u.id, u.name, u.email
		FROM registrations r
		JOIN users u ON u.id = r.user_id
		WHERE r.event_id = $1
		ORDER BY r.registered_at ASC
	`
	rows, err := r.DB.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]*domain.Registrant, 0)
	for rows.Next() {
		p := &domain.Registrant{}
		if err := rows.Scan(&p.RegistrationID, &p.RegisteredAt, &p.User.ID, &p.User.Name, &p.User.Email); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *registrationRepository) ListByUserID(ctx context.Context, userID string) ([]*domain.RegistrationWithEvent, error) {
	query := `
		SELECT r.id, r.user_id, r.event_id, r.registered_at,
			e.id, e.title, e.description, e.date, e.time, e.location, e.price, e.image_url, e.slug,
			e.organizer_id, e.status, e.benefits, e.created_at, e.updated_at
		FROM registrations r
		JOIN events e ON e.id = r.event_id
		WHERE r.user_id = $1
		ORDER BY r.registered_at DESC
	`
	rows, err := r.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]*domain.RegistrationWithEvent, 0)
	for rows.Next() {
		reg := &domain.Registration{}
		e := &domain.Event{}
		var status string
		if err := rows.Scan(
			&reg.ID, &reg.UserID, &reg.EventID, &reg.RegisteredAt,
			&e.ID, &e.Title, &e.Description, &e.Date, &e.Time, &e.Location, &e.Price, &e.ImageURL, &e.Slug,
			&e.OrganizerID, &status, pq.Array(&e.Benefits), &e.CreatedAt, &e.UpdatedAt,
		); err != nil {
			return nil, err
		}
		e.Status = domain.EventStatus(status)
		if e.Benefits == nil {
			e.Benefits = []string{}
		}
		out = append(out, &domain.RegistrationWithEvent{Registration: reg, Event: e})
	}
	return out, rows.Err()
}
