package repository

import (
	"context"
	"fmt"

	"github.com/gymhub/gymhub/internal/models"
)

// CreatePayment stores a new payment in pending status and returns its id.
func (s *Storage) CreatePayment(ctx context.Context, p models.Payment) (int64, error) {
	const op = "storage.CreatePayment"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO payments (signature_id, title, amount, date)
			  VALUES ($1, $2, $3, $4)
			  RETURNING id`
	var newID int64
	err := s.q(ctx).QueryRowContext(ctx, query,
		p.SignatureID, p.Title, p.Amount, p.Date).Scan(&newID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// GetPayment returns a payment by id with its status name.
func (s *Storage) GetPayment(ctx context.Context, id int64) (*models.Payment, error) {
	const op = "storage.GetPayment"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT p.id, p.signature_id, p.title, p.amount, p.date, p.stripe_payment_id,
			      p.status_id, st.name
			  FROM payments p
			  JOIN payment_statuses st ON st.id = p.status_id
			  WHERE p.id = $1`
	var item models.Payment
	row := s.q(ctx).QueryRowContext(ctx, query, id)
	if err := row.Scan(&item.ID, &item.SignatureID, &item.Title, &item.Amount, &item.Date,
		&item.StripePaymentID, &item.StatusID, &item.StatusName); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &item, nil
}

// ListPaymentsByUser returns the payment history of a member, newest first.
func (s *Storage) ListPaymentsByUser(ctx context.Context, userID int64) ([]*models.Payment, error) {
	const op = "storage.ListPaymentsByUser"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT p.id, p.signature_id, p.title, p.amount, p.date, p.stripe_payment_id,
			      p.status_id, st.name
			  FROM payments p
			  JOIN payment_statuses st ON st.id = p.status_id
			  JOIN signatures s ON s.id = p.signature_id
			  WHERE s.user_id = $1
			  ORDER BY p.date DESC`
	rows, err := s.q(ctx).QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Payment
	for rows.Next() {
		var item models.Payment
		if err := rows.Scan(&item.ID, &item.SignatureID, &item.Title, &item.Amount,
			&item.Date, &item.StripePaymentID, &item.StatusID, &item.StatusName); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &item)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// CountPendingPaymentsByUser counts the pending payments attached to any
// signature of a member. The plan-change gate reads this inside its
// transaction.
func (s *Storage) CountPendingPaymentsByUser(ctx context.Context, userID int64) (int, error) {
	const op = "storage.CountPendingPaymentsByUser"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT COUNT(*)
			  FROM payments p
			  JOIN signatures s ON s.id = p.signature_id
			  WHERE s.user_id = $1 AND p.status_id = $2`
	var count int
	if err := s.q(ctx).QueryRowContext(ctx, query, userID, models.PaymentStatusPending).Scan(&count); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return count, nil
}

// MarkPaymentPaid records the gateway payment reference and moves the
// payment to paid. The transition is conditional on the payment not being
// paid already, which makes a replayed success notification a no-op; the
// return value reports whether this call performed the transition.
func (s *Storage) MarkPaymentPaid(ctx context.Context, paymentID int64, stripePaymentID string) (bool, error) {
	const op = "storage.MarkPaymentPaid"
	select {
	case <-ctx.Done():
		return false, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE payments
			  SET status_id = $1, stripe_payment_id = $2
			  WHERE id = $3 AND status_id <> $1`
	result, err := s.q(ctx).ExecContext(ctx, query, models.PaymentStatusPaid, stripePaymentID, paymentID)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return rowsAffected > 0, nil
}

// MarkPaymentPending records the gateway payment reference and puts the
// payment back into pending, the awaiting-retry state after a failed
// charge.
func (s *Storage) MarkPaymentPending(ctx context.Context, paymentID int64, stripePaymentID string) error {
	const op = "storage.MarkPaymentPending"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE payments
			  SET status_id = $1, stripe_payment_id = $2
			  WHERE id = $3`
	if _, err := s.q(ctx).ExecContext(ctx, query, models.PaymentStatusPending, stripePaymentID, paymentID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// GetPaymentBilling returns a payment together with the owner and plan
// details needed to start collecting it at the gateway.
func (s *Storage) GetPaymentBilling(ctx context.Context, paymentID int64) (*models.PaymentBilling, error) {
	const op = "storage.GetPaymentBilling"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT p.id, p.amount, p.status_id, s.id, u.id, u.email, u.stripe_customer_id, gp.name
			  FROM payments p
			  JOIN signatures s ON s.id = p.signature_id
			  JOIN users u ON u.id = s.user_id
			  JOIN gym_plans gp ON gp.id = s.gym_plan_id
			  WHERE p.id = $1`
	var b models.PaymentBilling
	row := s.q(ctx).QueryRowContext(ctx, query, paymentID)
	if err := row.Scan(&b.PaymentID, &b.Amount, &b.StatusID, &b.SignatureID, &b.UserID,
		&b.Email, &b.StripeCustomerID, &b.PlanName); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &b, nil
}

// FindPaymentDetails looks a payment up by its gateway reference, falling
// back to the local id carried in the intent metadata.
func (s *Storage) FindPaymentDetails(ctx context.Context, stripePaymentID string, paymentID int64) (*models.PaymentDetails, error) {
	const op = "storage.FindPaymentDetails"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT p.id, p.amount, p.date, st.name, u.id, u.email
			  FROM payments p
			  JOIN payment_statuses st ON st.id = p.status_id
			  JOIN signatures s ON s.id = p.signature_id
			  JOIN users u ON u.id = s.user_id
			  WHERE p.stripe_payment_id = $1 OR p.id = $2
			  LIMIT 1`
	var d models.PaymentDetails
	row := s.q(ctx).QueryRowContext(ctx, query, stripePaymentID, paymentID)
	if err := row.Scan(&d.PaymentID, &d.Amount, &d.Date, &d.StatusName, &d.UserID, &d.Email); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &d, nil
}
