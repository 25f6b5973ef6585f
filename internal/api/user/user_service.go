package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/shop-api/internal/db"
)

// ErrEmailTaken is returned when an email is already registered. The
// database UNIQUE constraint is the final arbiter: a duplicate-key error on
// insert maps to this as well, so concurrent registrations can't both win.
var ErrEmailTaken = errors.New("email already exists")

// ValidationErrors carries the store's field validation failures as a flat
// ordered list of descriptions.
type ValidationErrors []string

func (v ValidationErrors) Error() string {
	return strings.Join(v, "; ")
}

var passwordDigit = regexp.MustCompile(`[0-9]`)

const mysqlDuplicateEntry = 1062

// Service is the identity store: it owns user persistence, the password
// policy, and credential verification.
type Service struct {
	db *sql.DB
}

func NewService(database *sql.DB) *Service {
	return &Service{db: database}
}

// FindByEmail returns (nil, nil) when no user exists with the given email.
func (s *Service) FindByEmail(ctx context.Context, email string) (*db.User, error) {
	var u db.User
	var id string
	err := s.db.QueryRowContext(ctx,
		"SELECT id, name, email, password_hash, created_at, updated_at FROM users WHERE email = ?", email).
		Scan(&id, &u.Name, &u.Email, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("finding user by email: %w", err)
	}

	u.ID, err = uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("parsing user id: %w", err)
	}

	return &u, nil
}

// Create validates the registration fields, hashes the password and inserts
// the user. Failures are either ValidationErrors or ErrEmailTaken.
func (s *Service) Create(ctx context.Context, name, email, password string) (*db.User, error) {
	if errs := validateRegistration(name, email, password); len(errs) > 0 {
		return nil, errs
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	u := &db.User{
		ID:           uuid.New(),
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
	}

	_, err = s.db.ExecContext(ctx,
		"INSERT INTO users (id, name, email, password_hash) VALUES (?, ?, ?, ?)",
		u.ID.String(), u.Name, u.Email, u.PasswordHash)
	if err != nil {
		var mysqlErr *mysql.MySQLError
		if errors.As(err, &mysqlErr) && mysqlErr.Number == mysqlDuplicateEntry {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("creating user: %w", err)
	}

	return u, nil
}

// CheckPassword verifies a candidate password against the stored hash.
func (s *Service) CheckPassword(u *db.User, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}

// validateRegistration applies the store's field rules in a fixed order so
// the resulting descriptions are stable.
func validateRegistration(name, email, password string) ValidationErrors {
	var errs ValidationErrors

	checks := []struct {
		field string
		value string
		rules []validation.Rule
	}{
		{"email", email, []validation.Rule{validation.Required, is.Email}},
		{"name", name, []validation.Rule{validation.Required, validation.Length(1, 100)}},
		{"password", password, []validation.Rule{
			validation.Required,
			validation.Length(8, 72),
			validation.Match(passwordDigit).Error("must contain at least one digit"),
		}},
	}

	for _, c := range checks {
		if err := validation.Validate(c.value, c.rules...); err != nil {
			errs = append(errs, c.field+" "+err.Error())
		}
	}

	return errs
}
