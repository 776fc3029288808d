package sqlite

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"campusevents/internal/domain"
)

type registrationRepository struct {
	DB *sql.DB
}

func NewRegistrationRepository(db *sql.DB) domain.RegistrationRepository {
	return &registrationRepository{DB: db}
}

func (r *registrationRepository) Create(ctx context.Context, reg *domain.Registration) error {
	id := uuid.NewString()
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO registrations (id, user_id, event_id, registered_at) VALUES (?, ?, ?, ?)`,
		id, reg.UserID, reg.EventID, reg.RegisteredAt.UTC(),
	)
	switch {
	case err == nil:
		reg.ID = id
		return nil
	case isUniqueViolation(err):
		return domain.ErrAlreadyRegistered
	case isForeignKeyViolation(err):
		return domain.ErrNotFound
	}
	return err
}

func (r *registrationRepository) Exists(ctx context.Context, userID, eventID string) (bool, error) {
	var exists bool
	err := r.DB.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM registrations WHERE user_id = ? AND event_id = ?)`, userID, eventID,
	).Scan(&exists)
	return exists, err
}

func (r *registrationRepository) ListByEventID(ctx context.Context, eventID string) ([]*domain.Registrant, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT r.id, r.registered_at, u.id, u.name, u.email
		FROM registrations r
		JOIN users u ON u.id = r.user_id
		WHERE r.event_id = ?
		ORDER BY r.registered_at ASC`, eventID)
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
	rows, err := r.DB.QueryContext(ctx, `
		SELECT r.id, r.user_id, r.event_id, r.registered_at,
			e.id, e.title, e.description, e.date, e.time, e.location, e.price, e.image_url, e.slug,
			e.organizer_id, e.status, e.benefits, e.created_at, e.updated_at
		FROM registrations r
		JOIN events e ON e.id = r.event_id
		WHERE r.user_id = ?
		ORDER BY r.registered_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]*domain.RegistrationWithEvent, 0)
	for rows.Next() {
		reg := &domain.Registration{}
		e := &domain.Event{}
		prefix := []any{&reg.ID, &reg.UserID, &reg.EventID, &reg.RegisteredAt}
		if err := scanEventFields(rows, e, prefix, nil); err != nil {
			return nil, err
		}
		out = append(out, &domain.RegistrationWithEvent{Registration: reg, Event: e})
	}
	return out, rows.Err()
}
