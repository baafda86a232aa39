package validator

import (
	"errors"
	"fmt"
	"slotbook/internal/availability"
	"slotbook/pkg/logger"
	"slotbook/pkg/model"
	"strings"

	"github.com/go-playground/validator/v10"
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

type ProviderValidator struct {
	validate *validator.Validate
}

func NewProviderValidator(log *logger.Logger) *ProviderValidator {
	v := validator.New()

	if err := v.RegisterValidation("hhmm", validateHHMM); err != nil {
		log.Fatal("Failed to register 'hhmm' validator", "error", err)
	}
	if err := v.RegisterValidation("weekday", validateWeekday); err != nil {
		log.Fatal("Failed to register 'weekday' validator", "error", err)
	}
	if err := v.RegisterValidation("category", validateCategory); err != nil {
		log.Fatal("Failed to register 'category' validator", "error", err)
	}

	return &ProviderValidator{
		validate: v,
	}
}

func validateHHMM(fl validator.FieldLevel) bool {
	_, err := availability.ParseClock(fl.Field().String())
	return err == nil
}

func validateWeekday(fl validator.FieldLevel) bool {
	switch model.Weekday(fl.Field().String()) {
	case model.Sunday, model.Monday, model.Tuesday, model.Wednesday,
		model.Thursday, model.Friday, model.Saturday:
		return true
	}
	return false
}

func validateCategory(fl validator.FieldLevel) bool {
	c := model.Category(fl.Field().String())
	for _, known := range model.Categories {
		if c == known {
			return true
		}
	}
	return false
}

func (v *ProviderValidator) Validate(p *model.Provider) error {
	if err := v.validateStruct(p); err != nil {
		return err
	}

	var errs ValidationErrors
	errs = append(errs, workingHoursRules(p.WorkingHours)...)
	for i, exc := range p.AvailabilityExceptions {
		errs = append(errs, exceptionWindowRules(fmt.Sprintf("availability_exceptions[%d].custom_hours", i), p, exc)...)
	}
	errs = append(errs, exceptionDateRules(p.AvailabilityExceptions)...)
	errs = append(errs, serviceRules(p.Services)...)
	if len(errs) > 0 {
		return errs
	}
	return nil
}

func (v *ProviderValidator) ValidateUpdate(u *model.ProviderUpdate) error {
	return v.validateStruct(u)
}

func (v *ProviderValidator) ValidateWorkingHours(req *model.WorkingHoursRequest) error {
	if err := v.validateStruct(req); err != nil {
		return err
	}
	if errs := workingHoursRules(req.WorkingHours); len(errs) > 0 {
		return errs
	}
	return nil
}

func (v *ProviderValidator) ValidateException(req *model.ExceptionRequest) error {
	if err := v.validateStruct(req); err != nil {
		return err
	}
	if errs := customHoursRules("custom_hours", req.CustomHours); len(errs) > 0 {
		return errs
	}
	return nil
}

// ValidateExceptionFor checks exc against the provider it will be stored on,
// so partial custom hours are judged after the weekday fills the gaps.
func (v *ProviderValidator) ValidateExceptionFor(p *model.Provider, exc model.AvailabilityException) error {
	if errs := exceptionWindowRules("custom_hours", p, exc); len(errs) > 0 {
		return errs
	}
	return nil
}

func (v *ProviderValidator) ValidateService(req *model.ServiceRequest) error {
	return v.validateStruct(req)
}

func (v *ProviderValidator) ValidateServiceUpdate(u *model.ServiceUpdate) error {
	return v.validateStruct(u)
}

func (v *ProviderValidator) validateStruct(s any) error {
	if err := v.validate.Struct(s); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}
	return nil
}

// workingHoursRules enforces one entry per weekday and, for open days, a
// same-day window with open <= close. Overnight windows are not supported.
func workingHoursRules(hours []model.DayHours) ValidationErrors {
	var errs ValidationErrors
	seen := make(map[model.Weekday]bool, len(hours))

	for i, h := range hours {
		field := fmt.Sprintf("working_hours[%d]", i)
		if seen[h.Day] {
			errs = append(errs, ValidationError{Field: field + ".day", Message: fmt.Sprintf("%s is listed more than once", h.Day)})
		}
		seen[h.Day] = true

		if h.IsClosed {
			continue
		}
		if h.Open == "" || h.Close == "" {
			errs = append(errs, ValidationError{Field: field, Message: "open and close are required unless is_closed is set"})
			continue
		}
		open, errOpen := availability.ParseClock(h.Open)
		closing, errClose := availability.ParseClock(h.Close)
		if errOpen != nil || errClose != nil {
			continue
		}
		if closing < open {
			errs = append(errs, ValidationError{Field: field, Message: "close must not be before open; overnight hours are not supported"})
		}
	}
	return errs
}

func customHoursRules(field string, ch *model.CustomHours) ValidationErrors {
	if ch == nil || ch.Open == "" || ch.Close == "" {
		return nil
	}
	open, errOpen := availability.ParseClock(ch.Open)
	closing, errClose := availability.ParseClock(ch.Close)
	if errOpen != nil || errClose != nil || closing >= open {
		return nil
	}
	return ValidationErrors{{Field: field, Message: "custom close must not be before custom open"}}
}

// exceptionWindowRules rejects an available exception whose custom hours,
// merged with the weekday's hours, are inverted or still incomplete.
func exceptionWindowRules(field string, p *model.Provider, exc model.AvailabilityException) ValidationErrors {
	if !exc.IsAvailable || exc.CustomHours == nil || (exc.CustomHours.Open == "" && exc.CustomHours.Close == "") {
		return nil
	}
	if _, err := availability.CustomWindow(p, exc.Date, *exc.CustomHours); err != nil {
		return ValidationErrors{{Field: field, Message: err.Error()}}
	}
	return nil
}

func exceptionDateRules(excs []model.AvailabilityException) ValidationErrors {
	var errs ValidationErrors
	for i := range excs {
		for j := 0; j < i; j++ {
			if availability.SameDay(excs[i].Date, excs[j].Date) {
				errs = append(errs, ValidationError{
					Field:   fmt.Sprintf("availability_exceptions[%d].date", i),
					Message: "only one exception per calendar date is allowed",
				})
				break
			}
		}
	}
	return errs
}

func serviceRules(services []model.Service) ValidationErrors {
	var errs ValidationErrors
	seen := make(map[string]bool, len(services))
	for i, s := range services {
		if seen[s.ID] {
			errs = append(errs, ValidationError{Field: fmt.Sprintf("services[%d].id", i), Message: "duplicate service id"})
		}
		seen[s.ID] = true
	}
	return errs
}

func (v *ProviderValidator) translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
	var validationErrors ValidationErrors

	for _, err := range errs {
		message := err.Error()

		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", err.Field())
		case "min":
			message = fmt.Sprintf("%s must be at least %s", err.Field(), err.Param())
		case "max":
			message = fmt.Sprintf("%s must be at most %s", err.Field(), err.Param())
		case "hhmm":
			message = fmt.Sprintf("%s must be a 24-hour HH:mm time", err.Field())
		case "weekday":
			message = fmt.Sprintf("%s must be a lowercase weekday name (sunday-saturday)", err.Field())
		case "category":
			message = fmt.Sprintf("%s must be one of the supported categories", err.Field())
		case "timezone":
			message = fmt.Sprintf("%s must be an IANA time zone", err.Field())
		case "datetime":
			message = fmt.Sprintf("%s must be a YYYY-MM-DD date", err.Field())
		case "mongodb":
			message = fmt.Sprintf("%s must be a valid id", err.Field())
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Namespace(),
			Message: message,
		})
	}

	return validationErrors
}
