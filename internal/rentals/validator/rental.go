package validator

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"time"

	"carrental/internal/rentalwindow"
	"carrental/pkg/logger"
	"carrental/pkg/model"

	"github.com/go-playground/validator/v10"
)

var (
	licenseRegex = regexp.MustCompile(`^[A-Za-z0-9]{6,15}$`)
	upiRegex     = regexp.MustCompile(`^[A-Za-z0-9._-]{2,256}@[A-Za-z]{2,64}$`)
	cardRegex    = regexp.MustCompile(`^\d{16}$`)
	cvvRegex     = regexp.MustCompile(`^\d{3}$`)
)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return ""
	}
	var messages []string
	for _, err := range v {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %d error(s): [%s]", len(v), strings.Join(messages, "; "))
}

func (v ValidationErrors) orNil() error {
	if len(v) == 0 {
		return nil
	}
	return v
}

// RentalValidator checks request shapes. Calendar rules (start not in the past, hourly
// limits, end after start) belong to rentalwindow.Calculator and are not repeated here.
type RentalValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
	now      func() time.Time
}

func NewRentalValidator(log *logger.Logger) *RentalValidator {
	v := validator.New()
	v.RegisterTagNameFunc(jsonFieldName)

	custom := map[string]validator.Func{
		"iso_date":       validateISODate,
		"time_of_day":    validateTimeOfDay,
		"license_number": validateLicenseNumber,
		"upi_id":         validateUPIID,
	}
	for tag, fn := range custom {
		if err := v.RegisterValidation(tag, fn); err != nil {
			log.Fatal("Failed to register validator", "tag", tag, "error", err)
		}
	}

	log.Info("Rental validator initialized successfully")

	return &RentalValidator{
		validate: v,
		logger:   log,
		now:      time.Now,
	}
}

func jsonFieldName(field reflect.StructField) string {
	name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
	if name == "-" || name == "" {
		return field.Name
	}
	return name
}

func validateISODate(fl validator.FieldLevel) bool {
	_, err := rentalwindow.ParseDate(fl.Field().String())
	return err == nil
}

func validateTimeOfDay(fl validator.FieldLevel) bool {
	_, err := rentalwindow.ParseTimeOfDay(fl.Field().String())
	return err == nil
}

func validateLicenseNumber(fl validator.FieldLevel) bool {
	return licenseRegex.MatchString(strings.TrimSpace(fl.Field().String()))
}

func validateUPIID(fl validator.FieldLevel) bool {
	return upiRegex.MatchString(fl.Field().String())
}

func (v *RentalValidator) ValidateAvailability(req *model.AvailabilityRequest) error {
	return v.validateStruct(req)
}

func (v *RentalValidator) ValidateCreate(req *model.CreateRentalRequest) error {
	return v.validateStruct(req)
}

func (v *RentalValidator) ValidateWindow(req *model.RentalWindowRequest) error {
	return v.validateStruct(req)
}

func (v *RentalValidator) ValidateCar(car *model.Car) error {
	return v.validateStruct(car)
}

// ValidatePayment checks the tags and then the fields each payment method needs.
func (v *RentalValidator) ValidatePayment(req *model.PaymentRequest) error {
	var errs ValidationErrors
	if err := v.validateStruct(req); err != nil {
		var tagErrs ValidationErrors
		if !errors.As(err, &tagErrs) {
			return err
		}
		errs = append(errs, tagErrs...)
	}

	switch req.Method {
	case model.PaymentMethodCash:
		if !req.CashReceived {
			errs = append(errs, ValidationError{Field: "cash_received", Message: "cash payment must be acknowledged"})
		}
	case model.PaymentMethodCard:
		errs = append(errs, v.cardErrors(req)...)
	case model.PaymentMethodUPI:
		if req.UPIID == "" {
			errs = append(errs, ValidationError{Field: "upi_id", Message: "upi_id is required for UPI payments"})
		}
	}

	return errs.orNil()
}

func (v *RentalValidator) cardErrors(req *model.PaymentRequest) ValidationErrors {
	var errs ValidationErrors

	if !cardRegex.MatchString(req.CardNumber) {
		errs = append(errs, ValidationError{Field: "card_number", Message: "card_number must be 16 digits"})
	}
	if len(strings.TrimSpace(req.CardHolderName)) < 2 {
		errs = append(errs, ValidationError{Field: "card_holder_name", Message: "card_holder_name is required"})
	}
	if req.ExpiryMonth < 1 || req.ExpiryMonth > 12 {
		errs = append(errs, ValidationError{Field: "expiry_month", Message: "expiry_month must be between 1 and 12"})
	}
	now := v.now()
	switch {
	case req.ExpiryYear < now.Year():
		errs = append(errs, ValidationError{Field: "expiry_year", Message: fmt.Sprintf("expiry_year cannot be earlier than %d", now.Year())})
	case req.ExpiryYear == now.Year() && req.ExpiryMonth >= 1 && req.ExpiryMonth < int(now.Month()):
		errs = append(errs, ValidationError{Field: "expiry_month", Message: "card has expired"})
	}
	if !cvvRegex.MatchString(req.CVV) {
		errs = append(errs, ValidationError{Field: "cvv", Message: "cvv must be 3 digits"})
	}

	return errs
}

func (v *RentalValidator) validateStruct(s any) error {
	if err := v.validate.Struct(s); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}
	return nil
}

func (v *RentalValidator) translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
	var validationErrors ValidationErrors

	for _, err := range errs {
		field := err.Field()
		var message string

		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", field)
		case "oneof":
			message = fmt.Sprintf("%s must be one of: %s", field, err.Param())
		case "iso_date":
			message = fmt.Sprintf("%s must be a date in YYYY-MM-DD format", field)
		case "time_of_day":
			message = fmt.Sprintf("%s must be a time like 14:30 or 2:30 PM", field)
		case "license_number":
			message = fmt.Sprintf("%s must be 6 to 15 letters or digits", field)
		case "upi_id":
			message = fmt.Sprintf("%s must look like name@bank", field)
		case "mongodb":
			message = fmt.Sprintf("%s must be a valid ID", field)
		case "min":
			message = fmt.Sprintf("%s must be at least %s", field, err.Param())
		case "max":
			message = fmt.Sprintf("%s must be at most %s", field, err.Param())
		case "gte":
			message = fmt.Sprintf("%s cannot be negative", field)
		case "gt":
			message = fmt.Sprintf("%s must be greater than %s", field, err.Param())
		case "numeric":
			message = fmt.Sprintf("%s must contain only digits", field)
		case "len":
			message = fmt.Sprintf("%s must be exactly %s characters", field, err.Param())
		default:
			message = fmt.Sprintf("%s failed %s validation", field, err.Tag())
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   field,
			Message: message,
		})
	}

	return validationErrors
}
