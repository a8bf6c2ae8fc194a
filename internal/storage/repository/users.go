package repository

import (
	"context"
	"fmt"

	"github.com/gymhub/gymhub/internal/models"
)

// CreateUser stores a new member and returns the generated id.
func (s *Storage) CreateUser(ctx context.Context, user models.User) (int64, error) {
	const op = "storage.CreateUser"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO users (first_name, last_name, email, phone_number, gender,
			      birth_date, doc_type, doc_number, nif, address, address2, zipcode,
			      country, city, membership_number, password_hash, stripe_customer_id, role)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
			  RETURNING id`
	var newID int64
	err := s.q(ctx).QueryRowContext(ctx, query,
		user.FirstName, user.LastName, user.Email, user.PhoneNumber, user.Gender,
		user.BirthDate, user.DocType, user.DocNumber, user.NIF, user.Address,
		user.Address2, user.Zipcode, user.Country, user.City, user.MembershipNumber,
		user.PasswordHash, user.StripeCustomerID, user.Role).Scan(&newID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// GetUser returns a member by id.
func (s *Storage) GetUser(ctx context.Context, id int64) (*models.User, error) {
	const op = "storage.GetUser"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, first_name, last_name, email, phone_number, gender, birth_date,
			      doc_type, doc_number, nif, address, address2, zipcode, country, city,
			      membership_number, password_hash, stripe_customer_id, role,
			      profile_picture_url, created_at
			  FROM users
			  WHERE id = $1`
	u := &models.User{}
	row := s.q(ctx).QueryRowContext(ctx, query, id)
	if err := row.Scan(&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.PhoneNumber,
		&u.Gender, &u.BirthDate, &u.DocType, &u.DocNumber, &u.NIF, &u.Address,
		&u.Address2, &u.Zipcode, &u.Country, &u.City, &u.MembershipNumber,
		&u.PasswordHash, &u.StripeCustomerID, &u.Role, &u.ProfilePictureURL,
		&u.CreatedAt); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

// GetUserByEmail returns a member by e-mail address.
func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	const op = "storage.GetUserByEmail"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, first_name, last_name, email, phone_number, gender, birth_date,
			      doc_type, doc_number, nif, address, address2, zipcode, country, city,
			      membership_number, password_hash, stripe_customer_id, role,
			      profile_picture_url, created_at
			  FROM users
			  WHERE email = $1`
	u := &models.User{}
	row := s.q(ctx).QueryRowContext(ctx, query, email)
	if err := row.Scan(&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.PhoneNumber,
		&u.Gender, &u.BirthDate, &u.DocType, &u.DocNumber, &u.NIF, &u.Address,
		&u.Address2, &u.Zipcode, &u.Country, &u.City, &u.MembershipNumber,
		&u.PasswordHash, &u.StripeCustomerID, &u.Role, &u.ProfilePictureURL,
		&u.CreatedAt); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

// UserExistsByEmail reports whether a member with that e-mail is registered.
func (s *Storage) UserExistsByEmail(ctx context.Context, email string) (bool, error) {
	const op = "storage.UserExistsByEmail"

	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM users WHERE email = $1)`
	if err := s.q(ctx).QueryRowContext(ctx, query, email).Scan(&exists); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return exists, nil
}

// UserExistsByNIF reports whether a member with that tax id is registered.
func (s *Storage) UserExistsByNIF(ctx context.Context, nif string) (bool, error) {
	const op = "storage.UserExistsByNIF"

	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM users WHERE nif = $1)`
	if err := s.q(ctx).QueryRowContext(ctx, query, nif).Scan(&exists); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return exists, nil
}

// MembershipNumberExists reports whether a membership number is taken.
func (s *Storage) MembershipNumberExists(ctx context.Context, number string) (bool, error) {
	const op = "storage.MembershipNumberExists"

	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM users WHERE membership_number = $1)`
	if err := s.q(ctx).QueryRowContext(ctx, query, number).Scan(&exists); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return exists, nil
}
