package domain

import (
	"context"
	"strings"
	"time"
)

// Role is the application role of a user. It is assigned once, when the account is created.
type Role string

const (
	RoleUser      Role = "USER"
	RoleOrganizer Role = "ORGANIZER"
	RoleAdmin     Role = "ADMIN"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleOrganizer, RoleAdmin:
		return true
	}
	return false
}

// Caller is the identity performing a request. The zero value is the anonymous caller.
type Caller struct {
	ID   string
	Role Role
}

// Authenticated reports whether the caller carries an identity.
func (c Caller) Authenticated() bool {
	return c.ID != ""
}

// User represents a registered user
// swagger:model User
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	ImageURL     string    `json:"image_url,omitempty"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// NewUser returns a new User with the given fields. ID is typically set by the repository on create.
func NewUser(name, email, passwordHash string, role Role, createdAt, updatedAt time.Time) *User {
	return &User{
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		Role:         role,
		CreatedAt:    createdAt,
		UpdatedAt:    updatedAt,
	}
}

// UserSummary is the public projection of a user embedded in events and registrant lists.
// swagger:model UserSummary
type UserSummary struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// RoleRules assigns roles to new accounts from static allowlists. Entries are compared
// case-insensitively. A domain entry matches the domain itself and its subdomains.
type RoleRules struct {
	AdminEmails      []string
	OrganizerEmails  []string
	OrganizerDomains []string
}

// RoleFor returns the role a new account with the given email receives.
func (r RoleRules) RoleFor(email string) Role {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return RoleUser
	}
	for _, e := range r.AdminEmails {
		if strings.ToLower(strings.TrimSpace(e)) == email {
			return RoleAdmin
		}
	}
	for _, e := range r.OrganizerEmails {
		if strings.ToLower(strings.TrimSpace(e)) == email {
			return RoleOrganizer
		}
	}
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return RoleUser
	}
	host := email[at+1:]
	for _, d := range r.OrganizerDomains {
		d = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(d)), "@")
		if d == "" {
			continue
		}
		if host == d || strings.HasSuffix(host, "."+d) {
			return RoleOrganizer
		}
	}
	return RoleUser
}

// PasswordHasher hashes and verifies passwords.
// Implementations may use bcrypt, argon2, etc.
type PasswordHasher interface {
	Hash(password string) (hash string, err error)
	Compare(hash, password string) error
}

// TokenIssuer issues tokens (e.g. JWT) for an authenticated user.
type TokenIssuer interface {
	Issue(userID, email string, role Role, expiry time.Duration) (string, error)
}

// TokenVerifier verifies a token and returns the caller it identifies.
type TokenVerifier interface {
	Verify(token string) (Caller, error)
}

// UserRepository defines the interface for user storage
type UserRepository interface {
	// Create inserts the user and sets its ID. Returns ErrDuplicateEmail when the email is taken.
	Create(ctx context.Context, user *User) error
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
	UpdateImage(ctx context.Context, id, imageURL string, updatedAt time.Time) error
}

// AuthService handles account creation and credential login.
type AuthService interface {
	SignUp(ctx context.Context, name, email, password string) (*User, error)
	Login(ctx context.Context, email, password string) (token string, user *User, err error)
}

// UserService defines profile operations for the current caller.
type UserService interface {
	Me(ctx context.Context, caller Caller) (*User, error)
	UpdateAvatar(ctx context.Context, caller Caller, image *Image) (*User, error)
}
