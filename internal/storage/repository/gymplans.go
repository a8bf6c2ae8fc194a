package repository

import (
	"context"
	"fmt"

	"github.com/gymhub/gymhub/internal/models"
)

// ListActiveGymPlans returns the plan catalog entries currently on sale.
func (s *Storage) ListActiveGymPlans(ctx context.Context) ([]*models.GymPlan, error) {
	const op = "storage.ListActiveGymPlans"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, name, price, stripe_product_id, stripe_price_id, is_active
			  FROM gym_plans
			  WHERE is_active = true
			  ORDER BY price`
	rows, err := s.q(ctx).QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.GymPlan
	for rows.Next() {
		var item models.GymPlan
		if err := rows.Scan(&item.ID, &item.Name, &item.Price, &item.StripeProductID,
			&item.StripePriceID, &item.IsActive); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &item)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// GetGymPlan returns a plan by id.
func (s *Storage) GetGymPlan(ctx context.Context, id int64) (*models.GymPlan, error) {
	const op = "storage.GetGymPlan"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, name, price, stripe_product_id, stripe_price_id, is_active
			  FROM gym_plans
			  WHERE id = $1`
	var item models.GymPlan
	row := s.q(ctx).QueryRowContext(ctx, query, id)
	if err := row.Scan(&item.ID, &item.Name, &item.Price, &item.StripeProductID,
		&item.StripePriceID, &item.IsActive); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &item, nil
}
