package main

import (
	"context"
	"flag"
	"os"
	"slotbook/pkg/client"
	"slotbook/pkg/logger"
	"slotbook/pkg/model"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
)

const JobName = "seed"

var serviceNames = []string{
	"Haircut", "Beard Trim", "Massage", "Manicure", "Personal Training",
	"Consultation", "Deep Clean", "Math Lesson",
}

func main() {
	providersURL := flag.String("providers-url", envOr("PROVIDERS_URL", "http://localhost:8080"), "providers service base URL")
	bookingsURL := flag.String("bookings-url", envOr("BOOKINGS_URL", "http://localhost:8081"), "bookings service base URL")
	count := flag.Int("providers", 10, "number of providers to create")
	perProvider := flag.Int("bookings", 3, "bookings to attempt per provider")
	flag.Parse()

	log := logger.New(logger.Config{Level: "info", Service: JobName})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	for _, url := range []string{*providersURL, *bookingsURL} {
		if err := client.NewHttpClient(url).WaitForHealthy(ctx, time.Minute); err != nil {
			log.Fatal("Service not healthy", "url", url, "error", err)
		}
	}

	gofakeit.Seed(time.Now().UnixNano())

	providers := client.NewProviderClient(*providersURL)
	bookings := client.NewBookingClient(*bookingsURL)

	day := time.Now().UTC().AddDate(0, 0, 1).Format("2006-01-02")
	created, booked := 0, 0
	for i := 0; i < *count; i++ {
		p, err := providers.Create(ctx, fakeProvider())
		if err != nil {
			log.Error("Failed to create provider", "error", err)
			continue
		}
		created++
		booked += seedBookings(ctx, log, bookings, providers, p, day, *perProvider)
	}

	log.Info("Seed complete", "providers", created, "bookings", booked, "date", day)
}

func fakeProvider() *model.Provider {
	hours := []model.DayHours{{Day: model.Sunday, IsClosed: true}}
	for _, d := range []model.Weekday{model.Monday, model.Tuesday, model.Wednesday, model.Thursday, model.Friday} {
		hours = append(hours, model.DayHours{Day: d, Open: "09:00", Close: "17:00"})
	}
	hours = append(hours, model.DayHours{Day: model.Saturday, Open: "10:00", Close: "14:00"})

	services := make([]model.Service, 0, 2)
	for i := 0; i < 2; i++ {
		services = append(services, model.Service{
			Name:     serviceNames[gofakeit.Number(0, len(serviceNames)-1)],
			Duration: []int{30, 45, 60}[gofakeit.Number(0, 2)],
			Price:    float64(gofakeit.Number(20, 150)),
		})
	}

	return &model.Provider{
		BusinessName: gofakeit.Company(),
		Category:     model.Categories[gofakeit.Number(0, len(model.Categories)-1)],
		TimeZone:     "UTC",
		WorkingHours: hours,
		Services:     services,
	}
}

// seedBookings books random free slots on day for fake customers and
// confirms each booking as the provider.
func seedBookings(ctx context.Context, log *logger.Logger, bookings *client.BookingClient, providers *client.ProviderClient, p *model.Provider, day string, n int) int {
	if len(p.Services) == 0 {
		return 0
	}
	svc := p.Services[gofakeit.Number(0, len(p.Services)-1)]
	slots, err := providers.Slots(ctx, p.ID, svc.ID, day)
	if err != nil {
		log.Error("Failed to read slots", "provider_id", p.ID, "error", err)
		return 0
	}
	loc, err := time.LoadLocation(slots.TimeZone)
	if err != nil {
		loc = time.UTC
	}

	asProvider := bookings.As(model.Actor{ID: p.ID, Role: model.RoleProvider})
	booked := 0
	for i := 0; i < n && len(slots.Slots) > 0; i++ {
		idx := gofakeit.Number(0, len(slots.Slots)-1)
		start, err := time.ParseInLocation("2006-01-02 15:04", day+" "+slots.Slots[idx], loc)
		slots.Slots = append(slots.Slots[:idx], slots.Slots[idx+1:]...)
		if err != nil {
			continue
		}

		customer := model.Actor{ID: uuid.NewString(), Role: model.RoleCustomer}
		b, err := bookings.As(customer).Create(ctx, model.CreateBookingRequest{
			ProviderID: p.ID,
			ServiceID:  svc.ID,
			DateTime:   start,
			Notes:      "Booked for " + gofakeit.Name(),
		})
		if err != nil {
			log.Warn("Failed to create booking", "provider_id", p.ID, "date_time", start, "error", err)
			continue
		}
		if _, err := asProvider.ChangeStatus(ctx, b.ID, model.Confirmed); err != nil {
			log.Warn("Failed to confirm booking", "booking_id", b.ID, "error", err)
		}
		booked++
	}
	return booked
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
