// Package signature implements the plan-change engine: it evaluates a
// member's request to switch gym plans, blocks the change while payments
// are outstanding, computes the proration owed on upgrades and mutates the
// signature accordingly.
package signature

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/gymhub/gymhub/internal/models"
)

// Errors reported to the HTTP layer. PendingPaymentsError is separate
// because it carries the outstanding count.
var (
	ErrUserNotFound      = errors.New("user not found")
	ErrPlanNotFound      = errors.New("gym plan not found")
	ErrNoActiveSignature = errors.New("no active signature found for the user")
)

// PendingPaymentsError rejects a plan change while the member still owes
// payments. A member with unpaid dues cannot switch plans.
type PendingPaymentsError struct {
	Count int
}

func (e *PendingPaymentsError) Error() string {
	return fmt.Sprintf("there are %d pending payments", e.Count)
}

// Repository defines the storage methods the engine needs.
type Repository interface {
	// WithinTx runs fn inside one transaction; queries made with fn's
	// context join it.
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
	// GetUser returns a member by id.
	GetUser(ctx context.Context, id int64) (*models.User, error)
	// CountPendingPaymentsByUser counts pending payments across all of a
	// member's signatures.
	CountPendingPaymentsByUser(ctx context.Context, userID int64) (int, error)
	// GetGymPlan returns a plan by id.
	GetGymPlan(ctx context.Context, id int64) (*models.GymPlan, error)
	// CurrentSignatureByUser returns the member's current signature with
	// its plan.
	CurrentSignatureByUser(ctx context.Context, userID int64) (*models.SignatureWithPlan, error)
	// ListSignaturesByUser returns all signatures of a member.
	ListSignaturesByUser(ctx context.Context, userID int64) ([]*models.SignatureWithPlan, error)
	// CreatePayment stores a new pending payment and returns its id.
	CreatePayment(ctx context.Context, p models.Payment) (int64, error)
	// UpdateSignaturePlan moves a signature to another plan and sets its
	// active flag.
	UpdateSignaturePlan(ctx context.Context, signatureID, gymPlanID int64, isActive bool) error
}

// Service implements the plan-change engine over a Repository.
type Service struct {
	repo Repository
	log  *slog.Logger
}

// New creates a Service.
func New(repo Repository, log *slog.Logger) *Service {
	return &Service{
		repo: repo,
		log:  log,
	}
}

// ChangeResult is the outcome of a successful plan change. Payment is set
// only when an upgrade created a proration charge.
type ChangeResult struct {
	Message string          `json:"message"`
	Payment *models.Payment `json:"payment,omitempty"`
}

// ChangeGymPlan moves the member's current signature to the target plan.
//
// Upgrades (target price strictly above current) create a pending payment
// for the price difference and deactivate the signature until that payment
// clears. Downgrades and equal-price switches take effect immediately; the
// lower price applies from the next billing cycle. Requesting the current
// plan is a no-op.
//
// The decide-and-write sequence runs inside one transaction and the
// pending-payment gate is re-read there, so two concurrent requests cannot
// both slip past the gate.
func (s *Service) ChangeGymPlan(ctx context.Context, userID, gymPlanID int64) (*ChangeResult, error) {
	if _, err := s.repo.GetUser(ctx, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	pending, err := s.repo.CountPendingPaymentsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if pending > 0 {
		return nil, &PendingPaymentsError{Count: pending}
	}

	plan, err := s.repo.GetGymPlan(ctx, gymPlanID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPlanNotFound
		}
		return nil, err
	}

	current, err := s.repo.CurrentSignatureByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNoActiveSignature
		}
		return nil, err
	}

	if plan.ID == current.Plan.ID {
		return &ChangeResult{Message: "The selected gym plan is already active."}, nil
	}

	var result *ChangeResult
	err = s.repo.WithinTx(ctx, func(ctx context.Context) error {
		// Re-read the gate and the signature: the pre-checks above ran
		// outside the transaction and may be stale by now.
		pending, err := s.repo.CountPendingPaymentsByUser(ctx, userID)
		if err != nil {
			return err
		}
		if pending > 0 {
			return &PendingPaymentsError{Count: pending}
		}

		current, err := s.repo.CurrentSignatureByUser(ctx, userID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrNoActiveSignature
			}
			return err
		}
		if plan.ID == current.Plan.ID {
			result = &ChangeResult{Message: "The selected gym plan is already active."}
			return nil
		}

		if plan.Price.GreaterThan(current.Plan.Price) {
			priceDifference := plan.Price.Sub(current.Plan.Price)
			payment := models.Payment{
				SignatureID: current.ID,
				Title:       fmt.Sprintf("Upgrade from %s to %s", current.Plan.Name, plan.Name),
				Amount:      priceDifference,
				Date:        time.Now(),
				StatusID:    models.PaymentStatusPending,
				StatusName:  "pending",
			}
			id, err := s.repo.CreatePayment(ctx, payment)
			if err != nil {
				return err
			}
			payment.ID = id

			// The signature stays inactive until the proration payment
			// clears.
			if err := s.repo.UpdateSignaturePlan(ctx, current.ID, plan.ID, false); err != nil {
				return err
			}

			s.log.Info("plan upgraded, proration payment created",
				slog.Int64("user_id", userID),
				slog.Int64("payment_id", id),
				slog.String("amount", priceDifference.String()))
			result = &ChangeResult{
				Message: "Gym plan updated successfully with payment.",
				Payment: &payment,
			}
			return nil
		}

		// Downgrade or equal-price switch: effective immediately, the new
		// price is billed from the next cycle.
		if err := s.repo.UpdateSignaturePlan(ctx, current.ID, plan.ID, true); err != nil {
			return err
		}

		s.log.Info("plan changed without extra charge",
			slog.Int64("user_id", userID),
			slog.Int64("gym_plan_id", plan.ID))
		result = &ChangeResult{Message: "Gym plan updated successfully without requiring payment."}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// ListUserSignatures returns the member's signatures with their plans.
func (s *Service) ListUserSignatures(ctx context.Context, userID int64) ([]*models.SignatureWithPlan, error) {
	if _, err := s.repo.GetUser(ctx, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return s.repo.ListSignaturesByUser(ctx, userID)
}
