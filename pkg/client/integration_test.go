//go:build integration

package client

import (
	"context"
	"errors"
	"net/http"
	"os"
	"slotbook/pkg/model"
	"sync"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
)

// Run against live services:
//
//	PROVIDERS_URL=http://localhost:8080 BOOKINGS_URL=http://localhost:8081 go test -tags integration ./pkg/client/...
func liveClients(t *testing.T) (*ProviderClient, *BookingClient) {
	t.Helper()
	providersURL, bookingsURL := os.Getenv("PROVIDERS_URL"), os.Getenv("BOOKINGS_URL")
	if providersURL == "" || bookingsURL == "" {
		t.Skip("PROVIDERS_URL and BOOKINGS_URL are required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	for _, url := range []string{providersURL, bookingsURL} {
		if err := NewHttpClient(url).WaitForHealthy(ctx, 30*time.Second); err != nil {
			t.Fatalf("%s not healthy: %v", url, err)
		}
	}
	return NewProviderClient(providersURL), NewBookingClient(bookingsURL)
}

func newLiveProvider(t *testing.T, ctx context.Context, providers *ProviderClient) (*model.Provider, string) {
	t.Helper()
	hours := make([]model.DayHours, 0, 7)
	for _, d := range []model.Weekday{model.Sunday, model.Monday, model.Tuesday, model.Wednesday, model.Thursday, model.Friday, model.Saturday} {
		hours = append(hours, model.DayHours{Day: d, Open: "09:00", Close: "17:00"})
	}
	p, err := providers.Create(ctx, &model.Provider{
		BusinessName: gofakeit.Company(),
		Category:     model.CategoryBarber,
		TimeZone:     "UTC",
		WorkingHours: hours,
		Services:     []model.Service{{Name: "Haircut", Duration: 30, Price: 25}},
	})
	if err != nil {
		t.Fatalf("create provider: %v", err)
	}
	return p, p.Services[0].ID
}

func asCustomer() model.Actor {
	return model.Actor{ID: uuid.NewString(), Role: model.RoleCustomer}
}

func requireCode(t *testing.T, err error, status int, code string) {
	t.Helper()
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %v", err)
	}
	if apiErr.Status != status || apiErr.Code != code {
		t.Fatalf("expected %d %s, got %d %s", status, code, apiErr.Status, apiErr.Code)
	}
}

func TestIntegration_BookingLifecycle(t *testing.T) {
	providers, bookings := liveClients(t)
	ctx := context.Background()

	p, serviceID := newLiveProvider(t, ctx, providers)
	day := time.Now().UTC().AddDate(0, 0, 2).Format("2006-01-02")
	start, _ := time.Parse("2006-01-02 15:04", day+" 10:00")

	customer := asCustomer()
	b, err := bookings.As(customer).Create(ctx, model.CreateBookingRequest{
		ProviderID: p.ID,
		ServiceID:  serviceID,
		DateTime:   start,
	})
	if err != nil {
		t.Fatalf("create booking: %v", err)
	}
	if b.Status != model.Pending {
		t.Fatalf("expected pending, got %s", b.Status)
	}

	slots, err := providers.Slots(ctx, p.ID, serviceID, day)
	if err != nil {
		t.Fatalf("slots: %v", err)
	}
	for _, s := range slots.Slots {
		if s == "10:00" {
			t.Fatal("booked slot still listed as free")
		}
	}

	_, err = bookings.As(asCustomer()).Create(ctx, model.CreateBookingRequest{
		ProviderID: p.ID,
		ServiceID:  serviceID,
		DateTime:   start,
	})
	requireCode(t, err, http.StatusConflict, "SLOT_TAKEN")

	_, err = bookings.As(customer).Review(ctx, b.ID, 5, "early")
	requireCode(t, err, http.StatusConflict, "NOT_COMPLETED")

	owner := bookings.As(model.Actor{ID: p.ID, Role: model.RoleProvider})
	for _, status := range []model.BookingStatus{model.Confirmed, model.Completed} {
		if _, err := owner.ChangeStatus(ctx, b.ID, status); err != nil {
			t.Fatalf("change status to %s: %v", status, err)
		}
	}

	if _, err := bookings.As(customer).Review(ctx, b.ID, 4, "Great cut"); err != nil {
		t.Fatalf("review: %v", err)
	}
	_, err = bookings.As(customer).Review(ctx, b.ID, 5, "again")
	requireCode(t, err, http.StatusConflict, "ALREADY_REVIEWED")

	updated, err := providers.GetByID(ctx, p.ID)
	if err != nil {
		t.Fatalf("get provider: %v", err)
	}
	if updated.Rating != 4 || updated.TotalRatings != 1 {
		t.Errorf("expected rating 4 over 1 review, got %v over %d", updated.Rating, updated.TotalRatings)
	}
}

func TestIntegration_ConcurrentBookingsForOneSlot(t *testing.T) {
	providers, bookings := liveClients(t)
	ctx := context.Background()

	p, serviceID := newLiveProvider(t, ctx, providers)
	start, _ := time.Parse("2006-01-02 15:04", time.Now().UTC().AddDate(0, 0, 3).Format("2006-01-02")+" 11:30")

	const racers = 10
	var wg sync.WaitGroup
	errs := make([]error, racers)
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func(index int) {
			defer wg.Done()
			_, errs[index] = bookings.As(asCustomer()).Create(ctx, model.CreateBookingRequest{
				ProviderID: p.ID,
				ServiceID:  serviceID,
				DateTime:   start,
			})
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		requireCode(t, err, http.StatusConflict, "SLOT_TAKEN")
	}
	if succeeded != 1 {
		t.Fatalf("expected exactly one booking to win the slot, got %d", succeeded)
	}
}
