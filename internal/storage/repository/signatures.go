package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/gymhub/gymhub/internal/models"
)

// CreateSignature stores a new signature and returns its id.
func (s *Storage) CreateSignature(ctx context.Context, sig models.Signature) (int64, error) {
	const op = "storage.CreateSignature"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO signatures (user_id, gym_plan_id, start_date, end_date, is_active)
			  VALUES ($1, $2, $3, $4, $5)
			  RETURNING id`
	var newID int64
	err := s.q(ctx).QueryRowContext(ctx, query,
		sig.UserID, sig.GymPlanID, sig.StartDate, sig.EndDate, sig.IsActive).Scan(&newID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// CurrentSignatureByUser returns the member's current signature with its
// plan: the most recent one whose end date is unset or still in the future.
func (s *Storage) CurrentSignatureByUser(ctx context.Context, userID int64) (*models.SignatureWithPlan, error) {
	const op = "storage.CurrentSignatureByUser"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT s.id, s.user_id, s.gym_plan_id, s.start_date, s.end_date, s.is_active,
			      p.id, p.name, p.price, p.stripe_product_id, p.stripe_price_id, p.is_active
			  FROM signatures s
			  JOIN gym_plans p ON p.id = s.gym_plan_id
			  WHERE s.user_id = $1
			    AND (s.end_date IS NULL OR s.end_date > now())
			  ORDER BY s.start_date DESC
			  LIMIT 1`
	var result models.SignatureWithPlan
	var endDate sql.NullTime
	row := s.q(ctx).QueryRowContext(ctx, query, userID)
	if err := row.Scan(&result.ID, &result.UserID, &result.GymPlanID, &result.StartDate,
		&endDate, &result.IsActive, &result.Plan.ID, &result.Plan.Name, &result.Plan.Price,
		&result.Plan.StripeProductID, &result.Plan.StripePriceID, &result.Plan.IsActive); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if endDate.Valid {
		result.EndDate = &endDate.Time
	}
	return &result, nil
}

// ListSignaturesByUser returns all signatures of a member with their plans.
func (s *Storage) ListSignaturesByUser(ctx context.Context, userID int64) ([]*models.SignatureWithPlan, error) {
	const op = "storage.ListSignaturesByUser"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT s.id, s.user_id, s.gym_plan_id, s.start_date, s.end_date, s.is_active,
			      p.id, p.name, p.price, p.stripe_product_id, p.stripe_price_id, p.is_active
			  FROM signatures s
			  JOIN gym_plans p ON p.id = s.gym_plan_id
			  WHERE s.user_id = $1
			  ORDER BY s.start_date DESC`
	rows, err := s.q(ctx).QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.SignatureWithPlan
	for rows.Next() {
		var item models.SignatureWithPlan
		var endDate sql.NullTime
		if err := rows.Scan(&item.ID, &item.UserID, &item.GymPlanID, &item.StartDate,
			&endDate, &item.IsActive, &item.Plan.ID, &item.Plan.Name, &item.Plan.Price,
			&item.Plan.StripeProductID, &item.Plan.StripePriceID, &item.Plan.IsActive); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if endDate.Valid {
			item.EndDate = &endDate.Time
		}
		result = append(result, &item)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// UpdateSignaturePlan moves a signature to another plan and sets its active
// flag in the same statement.
func (s *Storage) UpdateSignaturePlan(ctx context.Context, signatureID, gymPlanID int64, isActive bool) error {
	const op = "storage.UpdateSignaturePlan"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE signatures
			  SET gym_plan_id = $1, is_active = $2
			  WHERE id = $3`
	if _, err := s.q(ctx).ExecContext(ctx, query, gymPlanID, isActive, signatureID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// SetSignatureActive toggles the active flag of a signature.
func (s *Storage) SetSignatureActive(ctx context.Context, signatureID int64, isActive bool) error {
	const op = "storage.SetSignatureActive"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE signatures
			  SET is_active = $1
			  WHERE id = $2`
	if _, err := s.q(ctx).ExecContext(ctx, query, isActive, signatureID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// GetBillingRefs returns the gateway references needed to provision
// recurring billing for a signature: its plan's price id and its owner's
// customer id.
func (s *Storage) GetBillingRefs(ctx context.Context, signatureID int64) (*models.BillingRefs, error) {
	const op = "storage.GetBillingRefs"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT p.stripe_price_id, u.stripe_customer_id
			  FROM signatures s
			  JOIN gym_plans p ON p.id = s.gym_plan_id
			  JOIN users u ON u.id = s.user_id
			  WHERE s.id = $1`
	var refs models.BillingRefs
	row := s.q(ctx).QueryRowContext(ctx, query, signatureID)
	if err := row.Scan(&refs.StripePriceID, &refs.StripeCustomerID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &refs, nil
}
