package service

import (
	"context"

	"carrental/internal/rentals/repository"
	"carrental/internal/rentals/validator"
	"carrental/internal/rentalwindow"
	"carrental/pkg/config"
	apperrors "carrental/pkg/errors"
	"carrental/pkg/model"
	"carrental/pkg/sanitizer"

	"golang.org/x/sync/errgroup"
)

type AvailabilityService interface {
	Quote(ctx context.Context, req *model.RentalWindowRequest) (*model.Quote, error)
	Availability(ctx context.Context, req *model.AvailabilityRequest) ([]*model.AvailableCar, error)
	ListStates(ctx context.Context) ([]string, error)
	ListCities(ctx context.Context, state string) ([]string, error)
}

type availabilityService struct {
	carRepo    repository.CarRepository
	rentalRepo repository.RentalRepository
	validator  *validator.RentalValidator
	calc       *rentalwindow.Calculator
	cfg        *config.Config
}

func NewAvailabilityService(
	carRepo repository.CarRepository,
	rentalRepo repository.RentalRepository,
	validator *validator.RentalValidator,
	calc *rentalwindow.Calculator,
	cfg *config.Config,
) AvailabilityService {
	return &availabilityService{
		carRepo:    carRepo,
		rentalRepo: rentalRepo,
		validator:  validator,
		calc:       calc,
		cfg:        cfg,
	}
}

func (s *availabilityService) Quote(_ context.Context, req *model.RentalWindowRequest) (*model.Quote, error) {
	sanitizeWindow(req)
	window, err := checkWindow(s.calc, req, s.validator.ValidateWindow(req), "Invalid rental request")
	if err != nil {
		s.cfg.Log.Warn("Quote rejected", "error", err)
		return nil, err
	}

	return quoteOf(req, window), nil
}

// Availability lists the cars of a city that are free for the whole requested window,
// in catalog order, each priced for that window.
func (s *availabilityService) Availability(ctx context.Context, req *model.AvailabilityRequest) ([]*model.AvailableCar, error) {
	req.State = sanitizer.NormalizeLocation(req.State)
	req.City = sanitizer.NormalizeLocation(req.City)
	sanitizeWindow(&req.RentalWindowRequest)

	window, err := checkWindow(s.calc, &req.RentalWindowRequest, s.validator.ValidateAvailability(req), "Invalid availability request")
	if err != nil {
		s.cfg.Log.Warn("Availability request rejected", "error", err)
		return nil, err
	}
	loc := s.calc.Policy().Location
	from, to := window.Start().In(loc), window.End().In(loc)

	var cars []*model.Car
	var rentals []*model.Rental
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		cars, err = s.carRepo.FindActiveByLocation(gctx, req.State, req.City)
		return err
	})
	g.Go(func() error {
		var err error
		rentals, err = s.rentalRepo.FindActiveByLocation(gctx, req.State, req.City, from, to)
		return err
	})
	if err := g.Wait(); err != nil {
		s.cfg.Log.Error("Failed to load availability data", "state", req.State, "city", req.City, "error", err)
		return nil, apperrors.Internal("Failed to check availability", err)
	}

	byCar := make(map[string][]*model.Rental, len(cars))
	for _, r := range rentals {
		byCar[r.CarID] = append(byCar[r.CarID], r)
	}

	resources := make([]rentalwindow.ResourceBookings, 0, len(cars))
	carsByID := make(map[string]*model.Car, len(cars))
	for _, car := range cars {
		carsByID[car.ID] = car
		resources = append(resources, rentalwindow.ResourceBookings{
			ResourceID: car.ID,
			Bookings:   bookingSetOf(byCar[car.ID]),
		})
	}

	freeIDs, err := rentalwindow.FilterAvailable(window, resources)
	if err != nil {
		s.cfg.Log.Error("Availability filter failed", "state", req.State, "city", req.City, "error", err)
		return nil, windowError(err)
	}

	available := make([]*model.AvailableCar, 0, len(freeIDs))
	for _, id := range freeIDs {
		car := carsByID[id]
		available = append(available, &model.AvailableCar{
			Car:               *car,
			QuotedAmountCents: priceCents(car, req.RentalType, req.NumberOfHours, window),
		})
	}

	s.cfg.Log.Debug("Availability computed",
		"state", req.State,
		"city", req.City,
		"cars", len(cars),
		"available", len(available),
	)
	return available, nil
}

func (s *availabilityService) ListStates(ctx context.Context) ([]string, error) {
	states, err := s.carRepo.DistinctStates(ctx)
	if err != nil {
		s.cfg.Log.Error("Failed to list states", "error", err)
		return nil, apperrors.Internal("Failed to list states", err)
	}
	return states, nil
}

func (s *availabilityService) ListCities(ctx context.Context, state string) ([]string, error) {
	state = sanitizer.NormalizeLocation(state)
	if state == "" {
		return nil, apperrors.InvalidInput("State cannot be empty")
	}

	cities, err := s.carRepo.DistinctCities(ctx, state)
	if err != nil {
		s.cfg.Log.Error("Failed to list cities", "state", state, "error", err)
		return nil, apperrors.Internal("Failed to list cities", err)
	}
	return cities, nil
}
