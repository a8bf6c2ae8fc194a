package payment

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
)

// HandleIntentSucceeded reconciles a successful Stripe payment: the local
// payment moves to paid, the signature it belongs to activates, and when
// the intent was flagged as a subscription setup a recurring Stripe
// subscription is provisioned for the member.
//
// The paid transition is conditional, so a redelivered webhook finds the
// payment already paid, logs, and does nothing further — in particular it
// never provisions a second subscription.
func (s *Service) HandleIntentSucceeded(ctx context.Context, paymentID int64, stripePaymentID string, isSubscription bool) error {
	const op = "services.payment.HandleIntentSucceeded"

	pmt, err := s.repo.GetPayment(ctx, paymentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrPaymentNotFound
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	var transitioned bool
	err = s.repo.WithinTx(ctx, func(ctx context.Context) error {
		transitioned, err = s.repo.MarkPaymentPaid(ctx, paymentID, stripePaymentID)
		if err != nil {
			return err
		}
		if !transitioned {
			return nil
		}
		return s.repo.SetSignatureActive(ctx, pmt.SignatureID, true)
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if !transitioned {
		s.log.Info("payment already reconciled, skipping",
			slog.Int64("payment_id", paymentID),
			slog.String("stripe_payment_id", stripePaymentID))
		return nil
	}

	s.log.Info("payment marked as paid",
		slog.Int64("payment_id", paymentID),
		slog.Int64("signature_id", pmt.SignatureID))

	if isSubscription {
		// The charge is already settled; a provisioning failure must not
		// bounce the webhook, so it is logged and retried out of band.
		if err := s.provisionSubscription(ctx, pmt.SignatureID); err != nil {
			s.log.Error("failed to provision subscription",
				slog.Int64("payment_id", paymentID),
				slog.Int64("signature_id", pmt.SignatureID),
				slog.String("error", err.Error()))
		}
	}

	return nil
}

// HandleIntentFailed reconciles a failed Stripe payment: the payment
// returns to pending so the member can retry, keeping the Stripe id of
// the failed attempt, and the signature deactivates.
func (s *Service) HandleIntentFailed(ctx context.Context, paymentID int64, stripePaymentID string) error {
	const op = "services.payment.HandleIntentFailed"

	pmt, err := s.repo.GetPayment(ctx, paymentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrPaymentNotFound
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	err = s.repo.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.repo.MarkPaymentPending(ctx, paymentID, stripePaymentID); err != nil {
			return err
		}
		return s.repo.SetSignatureActive(ctx, pmt.SignatureID, false)
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("payment attempt failed, returned to pending",
		slog.Int64("payment_id", paymentID),
		slog.String("stripe_payment_id", stripePaymentID))
	return nil
}

func (s *Service) provisionSubscription(ctx context.Context, signatureID int64) error {
	const op = "services.payment.provisionSubscription"

	refs, err := s.repo.GetBillingRefs(ctx, signatureID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	subID, err := s.gateway.CreateSubscription(ctx, refs.StripeCustomerID, refs.StripePriceID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("recurring subscription provisioned",
		slog.Int64("signature_id", signatureID),
		slog.String("subscription_id", subID))
	return nil
}
