package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	rentalserrors "carrental/internal/rentals/errors"
	"carrental/internal/rentals/events"
	"carrental/internal/rentals/repository"
	"carrental/internal/rentals/validator"
	"carrental/internal/rentalwindow"
	"carrental/pkg/config"
	apperrors "carrental/pkg/errors"
	"carrental/pkg/model"
	"carrental/pkg/sanitizer"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/sync/errgroup"
)

type RentalService interface {
	Book(ctx context.Context, req *model.CreateRentalRequest) (*model.RentalView, error)
	GetByID(ctx context.Context, id string) (*model.RentalView, error)
	ListByCustomer(ctx context.Context, customerID string, limit int, offset int64) ([]*model.RentalView, int64, error)
	Cancel(ctx context.Context, id string) (*model.RentalView, error)
	Reschedule(ctx context.Context, id string, req *model.RescheduleRequest) (*model.RentalView, error)
	Pay(ctx context.Context, id string, req *model.PaymentRequest) (*model.RentalView, error)
	Approve(ctx context.Context, id string) (*model.RentalView, error)
	Submit(ctx context.Context, id string) (*model.RentalView, error)
	RedeemableCash(ctx context.Context, customerID string) (*model.RedeemableCash, error)
}

type rentalService struct {
	rentalRepo repository.RentalRepository
	carRepo    repository.CarRepository
	walletRepo repository.WalletRepository
	lockRepo   repository.RentalLockRepository
	validator  *validator.RentalValidator
	calc       *rentalwindow.Calculator
	publisher  events.Publisher
	cfg        *config.Config
}

func NewRentalService(
	rentalRepo repository.RentalRepository,
	carRepo repository.CarRepository,
	walletRepo repository.WalletRepository,
	lockRepo repository.RentalLockRepository,
	validator *validator.RentalValidator,
	calc *rentalwindow.Calculator,
	publisher events.Publisher,
	cfg *config.Config,
) RentalService {
	return &rentalService{
		rentalRepo: rentalRepo,
		carRepo:    carRepo,
		walletRepo: walletRepo,
		lockRepo:   lockRepo,
		validator:  validator,
		calc:       calc,
		publisher:  publisher,
		cfg:        cfg,
	}
}

func (s *rentalService) Book(ctx context.Context, req *model.CreateRentalRequest) (*model.RentalView, error) {
	req.CarID = sanitizer.NormalizeCustomerID(req.CarID)
	req.CustomerID = sanitizer.NormalizeCustomerID(req.CustomerID)
	req.LicenseNumber = sanitizer.NormalizeLicense(req.LicenseNumber)
	sanitizeWindow(&req.RentalWindowRequest)

	window, err := checkWindow(s.calc, &req.RentalWindowRequest, s.validator.ValidateCreate(req), "Invalid rental request")
	if err != nil {
		s.cfg.Log.Warn("Rental request rejected", "car_id", req.CarID, "error", err)
		return nil, err
	}

	car, err := s.carRepo.FindByID(ctx, req.CarID)
	if err != nil {
		return nil, carLookupError(err, req.CarID)
	}
	if !car.Active {
		return nil, apperrors.Conflict("This car is not available for rental")
	}

	rental := &model.Rental{
		CarID:         car.ID,
		CarName:       car.Name,
		State:         car.State,
		City:          car.City,
		CustomerID:    req.CustomerID,
		LicenseNumber: req.LicenseNumber,
		Payments:      []model.Payment{},
		Status:        model.StatusBooked,
	}
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
		if err := s.rentalRepo.Create(sessCtx, rental); err != nil {
			return apperrors.Internal("Failed to create rental", err)
		}
		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Failed to book rental", "car_id", car.ID, "customer_id", req.CustomerID, "error", err)
		return nil, err
	}

	s.cfg.Log.Info("Rental booked successfully",
		"id", rental.ID,
		"car_id", rental.CarID,
		"customer_id", rental.CustomerID,
		"start", rental.StartAt,
		"end", rental.EndAt,
		"amount_cents", rental.AmountCents,
	)
	s.publish(ctx, events.RentalBooked, rental)
	return s.view(rental), nil
}

func (s *rentalService) GetByID(ctx context.Context, id string) (*model.RentalView, error) {
	rental, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.view(rental), nil
}

func (s *rentalService) ListByCustomer(ctx context.Context, customerID string, limit int, offset int64) ([]*model.RentalView, int64, error) {
	customerID = sanitizer.NormalizeCustomerID(customerID)
	if customerID == "" {
		return nil, 0, apperrors.InvalidInput("Customer ID cannot be empty")
	}
	limit = config.NormalizePaginationLimit(limit)
	offset = config.NormalizeOffset(offset)

	var count int64
	var rentals []*model.Rental
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		count, err = s.rentalRepo.CountByCustomer(gctx, customerID)
		return err
	})
	g.Go(func() error {
		var err error
		rentals, err = s.rentalRepo.FindByCustomer(gctx, customerID, limit, offset)
		return err
	})
	if err := g.Wait(); err != nil {
		s.cfg.Log.Error("Failed to list customer rentals", "customer_id", customerID, "error", err)
		return nil, 0, apperrors.Internal("Failed to retrieve rentals", err)
	}

	views := make([]*model.RentalView, 0, len(rentals))
	for _, r := range rentals {
		views = append(views, s.view(r))
	}
	return views, count, nil
}

func (s *rentalService) RedeemableCash(ctx context.Context, customerID string) (*model.RedeemableCash, error) {
	customerID = sanitizer.NormalizeCustomerID(customerID)
	if customerID == "" {
		return nil, apperrors.InvalidInput("Customer ID cannot be empty")
	}

	wallet, err := s.walletRepo.Get(ctx, customerID)
	if err != nil {
		s.cfg.Log.Error("Failed to load wallet", "customer_id", customerID, "error", err)
		return nil, apperrors.Internal("Failed to retrieve redeemable cash", err)
	}
	return &model.RedeemableCash{CustomerID: customerID, RedeemableCents: wallet.RedeemableCents}, nil
}

// --- Helpers ---

func (s *rentalService) find(ctx context.Context, id string) (*model.Rental, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Rental ID cannot be empty")
	}
	rental, err := s.rentalRepo.FindByID(ctx, id)
	if err != nil {
		return nil, rentalLookupError(err, id)
	}
	return rental, nil
}

// verifyNoOverlap re-reads the car's calendar inside the transaction.
func (s *rentalService) verifyNoOverlap(ctx context.Context, rental *model.Rental, window rentalwindow.RentalWindow) error {
	existing, err := s.rentalRepo.FindActiveByCars(ctx, []string{rental.CarID}, rental.StartAt, rental.EndAt, rental.ID)
	if err != nil {
		return apperrors.Internal("Failed to check existing rentals", err)
	}

	set := bookingSetOf(existing)
	if err := set.Validate(rental.CarID); err != nil {
		return windowError(err)
	}
	for i, booked := range set {
		if rentalwindow.WindowsOverlap(window, booked) {
			other := existing[i]
			return apperrors.Wrap(rentalserrors.ErrTimeConflict, apperrors.CodeConflict, fmt.Sprintf(
				"Car is already rented from %s %s to %s %s",
				other.StartDate, other.PickUpTime, other.EndDate, other.DropTime,
			), http.StatusConflict)
		}
	}
	return nil
}

// acquireCarLock takes the advisory lock on a car's calendar. The returned func releases it.
func (s *rentalService) acquireCarLock(ctx context.Context, carID string) (func(), error) {
	lockID := "rental_lock_" + carID
	owner := uuid.NewString()

	lock := func() error {
		return s.lockRepo.Create(ctx, &model.RentalLock{
			ID:        lockID,
			Owner:     owner,
			ExpiresAt: time.Now().UTC().Add(s.cfg.RentalLockTTL),
		})
	}

	err := lock()
	if err != nil && mongo.IsDuplicateKeyError(err) {
		// The TTL monitor only runs once a minute; clear a stale lock ourselves.
		if cleared, clearErr := s.lockRepo.DeleteExpired(ctx, lockID, time.Now().UTC()); clearErr == nil && cleared {
			err = lock()
		}
	}
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			s.cfg.Log.Warn("Car lock is held", "car_id", carID)
			return nil, apperrors.Wrap(rentalserrors.ErrLockHeld, apperrors.CodeConflict,
				"This car is currently being booked by another request. Please try again.", http.StatusConflict)
		}
		return nil, apperrors.Internal("Failed to acquire car lock", err)
	}

	return func() {
		// the request context may already be done
		releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := s.lockRepo.Delete(releaseCtx, lockID, owner); err != nil {
			s.cfg.Log.Warn("Failed to release car lock", "lock_id", lockID, "error", err)
		}
	}, nil
}

// publish never fails the request: the rental is already committed.
func (s *rentalService) publish(ctx context.Context, eventType string, rental *model.Rental) {
	if err := s.publisher.Publish(ctx, eventType, rental); err != nil {
		s.cfg.Log.Error("Failed to publish rental event",
			"event_type", eventType,
			"rental_id", rental.ID,
			"error", err,
		)
	}
}

// editable reports whether the customer may still cancel or move the rental:
// it must start after today and not be past the booking stage.
func (s *rentalService) editable(r *model.Rental) bool {
	if r.Status != model.StatusBooked && r.Status != model.StatusConfirmed {
		return false
	}
	start, err := rentalwindow.ParseDate(r.StartDate)
	if err != nil {
		return false
	}
	return start.After(s.calc.Today())
}

func (s *rentalService) view(r *model.Rental) *model.RentalView {
	v := &model.RentalView{
		Rental:         r,
		BalanceDue:     r.BalanceCents(),
		CanCancel:      s.editable(r),
		CanUpdateDates: s.editable(r),
		CanPay:         r.Status == model.StatusBooked || r.Status == model.StatusFinalPending,
		CanSubmit:      r.Status == model.StatusConfirmed,
	}
	if t, err := rentalwindow.ParseTimeOfDay(r.PickUpTime); err == nil {
		v.PickUpTime12h = t.Format12()
	}
	if t, err := rentalwindow.ParseTimeOfDay(r.DropTime); err == nil {
		v.DropTime12h = t.Format12()
	}
	return v
}

func isTransitionError(err error) bool {
	return errors.Is(err, rentalserrors.ErrInvalidTransition)
}
