package validator

import (
	"errors"
	"slotbook/pkg/logger"
	"slotbook/pkg/model"
	"strings"
	"testing"
	"time"
	_ "time/tzdata"
)

func validProvider() *model.Provider {
	return &model.Provider{
		BusinessName: "Fade Factory",
		Category:     model.CategoryBarber,
		TimeZone:     "Europe/London",
		WorkingHours: []model.DayHours{
			{Day: model.Monday, Open: "09:00", Close: "17:00"},
			{Day: model.Sunday, IsClosed: true},
		},
		AvailabilityExceptions: []model.AvailabilityException{
			{Date: time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC), IsAvailable: false},
		},
		Services: []model.Service{
			{ID: "svc-1", Name: "Haircut", Duration: 30, Price: 25},
		},
	}
}

func fieldsOf(t *testing.T, err error) []string {
	t.Helper()
	var verrs ValidationErrors
	if !errors.As(err, &verrs) {
		t.Fatalf("expected ValidationErrors, got %T: %v", err, err)
	}
	fields := make([]string, 0, len(verrs))
	for _, v := range verrs {
		fields = append(fields, v.Field)
	}
	return fields
}

func TestValidate(t *testing.T) {
	v := NewProviderValidator(logger.Discard())

	tests := []struct {
		name      string
		mutate    func(p *model.Provider)
		wantErr   bool
		wantField string
	}{
		{
			name:   "valid provider",
			mutate: func(p *model.Provider) {},
		},
		{
			name:      "missing business name",
			mutate:    func(p *model.Provider) { p.BusinessName = "" },
			wantErr:   true,
			wantField: "BusinessName",
		},
		{
			name:      "unknown category",
			mutate:    func(p *model.Provider) { p.Category = "plumbing" },
			wantErr:   true,
			wantField: "Category",
		},
		{
			name:      "invalid time zone",
			mutate:    func(p *model.Provider) { p.TimeZone = "Mars/Olympus" },
			wantErr:   true,
			wantField: "TimeZone",
		},
		{
			name:      "bad clock format",
			mutate:    func(p *model.Provider) { p.WorkingHours[0].Open = "9:00" },
			wantErr:   true,
			wantField: "Open",
		},
		{
			name:      "unknown weekday",
			mutate:    func(p *model.Provider) { p.WorkingHours[0].Day = "funday" },
			wantErr:   true,
			wantField: "Day",
		},
		{
			name: "duplicate weekday",
			mutate: func(p *model.Provider) {
				p.WorkingHours = append(p.WorkingHours, model.DayHours{Day: model.Monday, Open: "10:00", Close: "12:00"})
			},
			wantErr:   true,
			wantField: "working_hours[2].day",
		},
		{
			name:      "open day without hours",
			mutate:    func(p *model.Provider) { p.WorkingHours[0].Close = "" },
			wantErr:   true,
			wantField: "working_hours[0]",
		},
		{
			name: "overnight hours rejected",
			mutate: func(p *model.Provider) {
				p.WorkingHours[0].Open, p.WorkingHours[0].Close = "22:00", "02:00"
			},
			wantErr:   true,
			wantField: "working_hours[0]",
		},
		{
			name: "equal open and close allowed",
			mutate: func(p *model.Provider) {
				p.WorkingHours[0].Open, p.WorkingHours[0].Close = "09:00", "09:00"
			},
		},
		{
			name: "two exceptions on one date",
			mutate: func(p *model.Provider) {
				p.AvailabilityExceptions = append(p.AvailabilityExceptions, model.AvailabilityException{
					Date: time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC), IsAvailable: true,
				})
			},
			wantErr:   true,
			wantField: "availability_exceptions[1].date",
		},
		{
			name: "inverted custom hours",
			mutate: func(p *model.Provider) {
				p.AvailabilityExceptions[0].IsAvailable = true
				p.AvailabilityExceptions[0].CustomHours = &model.CustomHours{Open: "15:00", Close: "10:00"}
			},
			wantErr:   true,
			wantField: "availability_exceptions[0]",
		},
		{
			name:      "service duration zero",
			mutate:    func(p *model.Provider) { p.Services[0].Duration = 0 },
			wantErr:   true,
			wantField: "Duration",
		},
		{
			name:      "negative price",
			mutate:    func(p *model.Provider) { p.Services[0].Price = -1 },
			wantErr:   true,
			wantField: "Price",
		},
		{
			name: "duplicate service id",
			mutate: func(p *model.Provider) {
				p.Services = append(p.Services, model.Service{ID: "svc-1", Name: "Beard trim", Duration: 15})
			},
			wantErr:   true,
			wantField: "services[1].id",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validProvider()
			tt.mutate(p)

			err := v.Validate(p)
			if !tt.wantErr {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("expected validation error, got nil")
			}

			found := false
			for _, f := range fieldsOf(t, err) {
				if strings.HasSuffix(f, tt.wantField) {
					found = true
				}
			}
			if !found {
				t.Errorf("expected an error on %q, got %v", tt.wantField, err)
			}
		})
	}
}

func TestValidateException(t *testing.T) {
	v := NewProviderValidator(logger.Discard())

	tests := []struct {
		name    string
		req     model.ExceptionRequest
		wantErr bool
	}{
		{"closed day", model.ExceptionRequest{Date: "2025-01-10"}, false},
		{"custom hours", model.ExceptionRequest{Date: "2025-01-10", IsAvailable: true, CustomHours: &model.CustomHours{Open: "10:00", Close: "14:00"}}, false},
		{"missing date", model.ExceptionRequest{}, true},
		{"bad date", model.ExceptionRequest{Date: "10/01/2025"}, true},
		{"bad clock", model.ExceptionRequest{Date: "2025-01-10", IsAvailable: true, CustomHours: &model.CustomHours{Open: "25:00", Close: "26:00"}}, true},
		{"inverted", model.ExceptionRequest{Date: "2025-01-10", IsAvailable: true, CustomHours: &model.CustomHours{Open: "14:00", Close: "10:00"}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateException(&tt.req)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateException() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateWorkingHours_Empty(t *testing.T) {
	v := NewProviderValidator(logger.Discard())

	if err := v.ValidateWorkingHours(&model.WorkingHoursRequest{WorkingHours: []model.DayHours{}}); err != nil {
		t.Errorf("empty schedule should be valid, got %v", err)
	}

	eight := make([]model.DayHours, 8)
	for i := range eight {
		eight[i] = model.DayHours{Day: model.Monday, IsClosed: true}
	}
	if err := v.ValidateWorkingHours(&model.WorkingHoursRequest{WorkingHours: eight}); err == nil {
		t.Error("more than seven entries should fail")
	}
}

func TestValidateServiceUpdate(t *testing.T) {
	v := NewProviderValidator(logger.Discard())

	zero := 0
	if err := v.ValidateServiceUpdate(&model.ServiceUpdate{Duration: &zero}); err == nil {
		t.Error("explicit zero duration should fail")
	}

	ninety := 90
	if err := v.ValidateServiceUpdate(&model.ServiceUpdate{Duration: &ninety}); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestValidationErrors_Error(t *testing.T) {
	errs := ValidationErrors{
		{Field: "a", Message: "bad"},
		{Field: "b", Message: "worse"},
	}
	want := "validation failed: 2 error(s): [a: bad; b: worse]"
	if got := errs.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if got := (ValidationErrors{}).Error(); got != "" {
		t.Errorf("empty Error() = %q", got)
	}
}

func TestValidateExceptionFor(t *testing.T) {
	v := NewProviderValidator(logger.Discard())
	// 2025-01-13 is a Monday (09:00-17:00), 2025-01-12 a closed Sunday and
	// 2025-01-14 a Tuesday with no entry.
	monday := time.Date(2025, 1, 13, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		exc     model.AvailabilityException
		wantErr bool
	}{
		{"closed day", model.AvailabilityException{Date: monday}, false},
		{"open only inside weekday", model.AvailabilityException{Date: monday, IsAvailable: true, CustomHours: &model.CustomHours{Open: "12:00"}}, false},
		{"open after weekday close", model.AvailabilityException{Date: monday, IsAvailable: true, CustomHours: &model.CustomHours{Open: "18:00"}}, true},
		{"close before weekday open", model.AvailabilityException{Date: monday, IsAvailable: true, CustomHours: &model.CustomHours{Close: "08:00"}}, true},
		{"partial on closed weekday", model.AvailabilityException{Date: time.Date(2025, 1, 12, 0, 0, 0, 0, time.UTC), IsAvailable: true, CustomHours: &model.CustomHours{Open: "10:00"}}, true},
		{"partial on missing weekday", model.AvailabilityException{Date: time.Date(2025, 1, 14, 0, 0, 0, 0, time.UTC), IsAvailable: true, CustomHours: &model.CustomHours{Close: "10:00"}}, true},
		{"full hours on missing weekday", model.AvailabilityException{Date: time.Date(2025, 1, 14, 0, 0, 0, 0, time.UTC), IsAvailable: true, CustomHours: &model.CustomHours{Open: "10:00", Close: "12:00"}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateExceptionFor(validProvider(), tt.exc)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateExceptionFor() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidate_ExceptionMergedWithWeekday(t *testing.T) {
	v := NewProviderValidator(logger.Discard())
	p := validProvider()
	p.AvailabilityExceptions = []model.AvailabilityException{{
		Date:        time.Date(2025, 1, 13, 0, 0, 0, 0, time.UTC),
		IsAvailable: true,
		CustomHours: &model.CustomHours{Open: "18:00"},
	}}

	fields := fieldsOf(t, v.Validate(p))
	want := "availability_exceptions[0].custom_hours"
	for _, f := range fields {
		if f == want {
			return
		}
	}
	t.Errorf("fields = %v, want %s", fields, want)
}
