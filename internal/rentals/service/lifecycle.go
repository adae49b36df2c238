package service

import (
	"context"
	"errors"
	"net/http"
	"time"

	rentalserrors "carrental/internal/rentals/errors"
	"carrental/internal/rentals/events"
	apperrors "carrental/pkg/errors"
	"carrental/pkg/model"
	"carrental/pkg/sanitizer"

	"go.mongodb.org/mongo-driver/mongo"
)

// Cancel cancels a Booked or Confirmed rental before its start date and credits
// whatever the customer already paid to their redeemable cash.
func (s *rentalService) Cancel(ctx context.Context, id string) (*model.RentalView, error) {
	rental, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !s.editable(rental) {
		return nil, notEditable(rental)
	}

	previous := rental.Status
	refund := rental.PaidCents + rental.RedeemedCents
	rental.Status = model.StatusCancelled

	err = s.rentalRepo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		if err := s.rentalRepo.UpdateIfStatus(sessCtx, rental, previous); err != nil {
			return s.transitionError(err, "cancel")
		}
		if err := s.walletRepo.Credit(sessCtx, rental.CustomerID, refund); err != nil {
			return apperrors.Internal("Failed to credit redeemable cash", err)
		}
		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Failed to cancel rental", "id", id, "error", err)
		return nil, err
	}

	s.cfg.Log.Info("Rental cancelled", "id", id, "customer_id", rental.CustomerID, "refund_cents", refund)
	s.publish(ctx, events.RentalCancelled, rental)
	return s.view(rental), nil
}

// Reschedule moves a rental to a new window on the same car and reprices it.
func (s *rentalService) Reschedule(ctx context.Context, id string, req *model.RescheduleRequest) (*model.RentalView, error) {
	sanitizeWindow(&req.RentalWindowRequest)
	window, err := checkWindow(s.calc, &req.RentalWindowRequest, s.validator.ValidateWindow(&req.RentalWindowRequest), "Invalid reschedule request")
	if err != nil {
		return nil, err
	}

	rental, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !s.editable(rental) {
		return nil, notEditable(rental)
	}

	car, err := s.carRepo.FindByID(ctx, rental.CarID)
	if err != nil {
		return nil, carLookupError(err, rental.CarID)
	}

	previous := rental.Status
	applyWindow(rental, &req.RentalWindowRequest, window, s.calc)
	rental.AmountCents = priceCents(car, req.RentalType, req.NumberOfHours, window)

	release, err := s.acquireCarLock(ctx, car.ID)
	if err != nil {
		return nil, err
	}
	defer release()

	err = s.rentalRepo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		if err := s.verifyNoOverlap(sessCtx, rental, window); err != nil {
			return err
		}
		if err := s.rentalRepo.UpdateIfStatus(sessCtx, rental, previous); err != nil {
			return s.transitionError(err, "reschedule")
		}
		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Failed to reschedule rental", "id", id, "error", err)
		return nil, err
	}

	s.cfg.Log.Info("Rental rescheduled", "id", id, "start", rental.StartAt, "end", rental.EndAt, "amount_cents", rental.AmountCents)
	s.publish(ctx, events.RentalRescheduled, rental)
	return s.view(rental), nil
}

// Pay records the advance on a Booked rental or settles a Final Pending one.
func (s *rentalService) Pay(ctx context.Context, id string, req *model.PaymentRequest) (*model.RentalView, error) {
	req.CardNumber = sanitizer.NormalizeCardNumber(req.CardNumber)
	req.CardHolderName = sanitizer.NormalizeName(req.CardHolderName)
	req.UPIID = sanitizer.NormalizeUPIID(req.UPIID)
	if err := s.validator.ValidatePayment(req); err != nil {
		s.cfg.Log.Warn("Payment validation failed", "id", id, "method", req.Method, "error", err)
		return nil, validationError("Invalid payment", err)
	}

	rental, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	payment := model.Payment{
		Method:    req.Method,
		Reference: paymentReference(req),
		PaidAt:    time.Now().UTC().Truncate(time.Millisecond),
	}
	var redeem int64

	previous := rental.Status
	switch previous {
	case model.StatusBooked:
		payment.Kind = model.PaymentKindAdvance
		payment.AmountCents = advanceCents(rental.AmountCents, s.cfg.RentalAdvancePercent)
		rental.PaidCents += payment.AmountCents
		rental.Status = model.StatusPending

	case model.StatusFinalPending:
		due := rental.BalanceCents()
		if req.UseRedeemable {
			wallet, err := s.walletRepo.Get(ctx, rental.CustomerID)
			if err != nil {
				return nil, apperrors.Internal("Failed to retrieve redeemable cash", err)
			}
			redeem = min(wallet.RedeemableCents, due)
		}
		payment.Kind = model.PaymentKindFinal
		payment.AmountCents = due - redeem
		payment.RedeemedCents = redeem
		rental.PaidCents += payment.AmountCents
		rental.RedeemedCents += redeem
		rental.Status = model.StatusCompleted

	default:
		return nil, apperrors.Conflict("Rental is not awaiting a payment").
			WithDetails(map[string]any{"status": rental.Status})
	}
	rental.Payments = append(rental.Payments, payment)

	err = s.rentalRepo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		if err := s.walletRepo.Debit(sessCtx, rental.CustomerID, redeem); err != nil {
			if errors.Is(err, rentalserrors.ErrInsufficientRedeemable) {
				return apperrors.Wrap(err, apperrors.CodeConflict, "Redeemable cash changed, please try again", http.StatusConflict)
			}
			return apperrors.Internal("Failed to redeem cash", err)
		}
		if err := s.rentalRepo.UpdateIfStatus(sessCtx, rental, previous); err != nil {
			return s.transitionError(err, "pay")
		}
		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Failed to record payment", "id", id, "error", err)
		return nil, err
	}

	s.cfg.Log.Info("Payment recorded",
		"id", id,
		"kind", payment.Kind,
		"method", payment.Method,
		"amount_cents", payment.AmountCents,
		"redeemed_cents", payment.RedeemedCents,
		"status", rental.Status,
	)
	s.publish(ctx, events.RentalPaymentReceived, rental)
	return s.view(rental), nil
}

// Approve is the manager accepting the advance: Pending -> Confirmed.
func (s *rentalService) Approve(ctx context.Context, id string) (*model.RentalView, error) {
	return s.transition(ctx, id, model.StatusPending, model.StatusConfirmed, events.RentalConfirmed)
}

// Submit is the manager taking the car back: Confirmed -> Final Pending.
func (s *rentalService) Submit(ctx context.Context, id string) (*model.RentalView, error) {
	return s.transition(ctx, id, model.StatusConfirmed, model.StatusFinalPending, events.RentalSubmitted)
}

func (s *rentalService) transition(ctx context.Context, id, from, to, eventType string) (*model.RentalView, error) {
	rental, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if rental.Status != from {
		return nil, apperrors.Wrap(rentalserrors.ErrInvalidTransition, apperrors.CodeConflict,
			"Rental must be "+from+" for this operation", http.StatusConflict).
			WithDetails(map[string]any{"status": rental.Status})
	}

	rental.Status = to
	if err := s.rentalRepo.UpdateIfStatus(ctx, rental, from); err != nil {
		s.cfg.Log.Error("Failed to update rental status", "id", id, "from", from, "to", to, "error", err)
		return nil, s.transitionError(err, to)
	}

	s.cfg.Log.Info("Rental status changed", "id", id, "from", from, "to", to)
	s.publish(ctx, eventType, rental)
	return s.view(rental), nil
}

func (s *rentalService) transitionError(err error, operation string) error {
	if isTransitionError(err) {
		return apperrors.Wrap(err, apperrors.CodeConflict,
			"Rental was changed by another request, please reload", http.StatusConflict)
	}
	return apperrors.Internal("Failed to "+operation+" rental", err)
}

func notEditable(r *model.Rental) error {
	return apperrors.Wrap(rentalserrors.ErrNotCancellable, apperrors.CodeConflict,
		"Rental can no longer be cancelled or rescheduled", http.StatusConflict).
		WithDetails(map[string]any{"status": r.Status, "start_date": r.StartDate})
}

// advanceCents is percent of amount, rounded half up.
func advanceCents(amount int64, percent int) int64 {
	return (amount*int64(percent) + 50) / 100
}

func paymentReference(req *model.PaymentRequest) string {
	switch req.Method {
	case model.PaymentMethodCard:
		if n := len(req.CardNumber); n >= 4 {
			return "card ending " + req.CardNumber[n-4:]
		}
		return "card"
	case model.PaymentMethodUPI:
		return req.UPIID
	default:
		return "cash"
	}
}
