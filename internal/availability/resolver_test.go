package availability

import (
	"errors"
	"reflect"
	"slotbook/pkg/model"
	"testing"
	"time"

	_ "time/tzdata"
)

// 2025-01-10 is a Friday.
var friday = time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)

func weekdayProvider() *model.Provider {
	return &model.Provider{
		WorkingHours: []model.DayHours{
			{Day: model.Friday, Open: "09:00", Close: "17:00"},
			{Day: model.Saturday, IsClosed: true},
			{Day: model.Monday, Open: "09:00", Close: "09:45"},
		},
	}
}

func TestParseClock(t *testing.T) {
	tests := []struct {
		in      string
		want    Clock
		wantErr bool
	}{
		{"00:00", 0, false},
		{"09:30", 570, false},
		{"23:59", 1439, false},
		{"24:00", 0, true},
		{"9:30", 0, true},
		{"09:60", 0, true},
		{"09-30", 0, true},
		{"ab:cd", 0, true},
		{"", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseClock(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseClock(%q) err = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseClock(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestClockString(t *testing.T) {
	if got := Clock(545).String(); got != "09:05" {
		t.Errorf("String() = %q, want 09:05", got)
	}
}

func TestResolveSlots_FullDay(t *testing.T) {
	got := ResolveSlots(weekdayProvider(), friday, 60)
	want := []string{"09:00", "10:00", "11:00", "12:00", "13:00", "14:00", "15:00", "16:00"}

	if !reflect.DeepEqual(got, want) {
		t.Errorf("ResolveSlots() = %v, want %v", got, want)
	}
}

func TestResolveSlots_NoPartialSlot(t *testing.T) {
	monday := time.Date(2025, 1, 13, 0, 0, 0, 0, time.UTC)

	got := ResolveSlots(weekdayProvider(), monday, 60)
	if len(got) != 0 {
		t.Errorf("09:00-09:45 with 60m service should be empty, got %v", got)
	}
	if got == nil {
		t.Errorf("empty result should be a non-nil slice")
	}
}

func TestResolveSlots_ClosedWeekday(t *testing.T) {
	saturday := friday.AddDate(0, 0, 1)

	if got := ResolveSlots(weekdayProvider(), saturday, 30); len(got) != 0 {
		t.Errorf("closed weekday should be empty, got %v", got)
	}
}

func TestResolveSlots_MissingWeekday(t *testing.T) {
	sunday := friday.AddDate(0, 0, 2)

	if got := ResolveSlots(weekdayProvider(), sunday, 30); len(got) != 0 {
		t.Errorf("weekday without entry should be empty, got %v", got)
	}
}

func TestResolveSlots_Exceptions(t *testing.T) {
	tests := []struct {
		name      string
		exception model.AvailabilityException
		date      time.Time
		duration  int
		want      []string
	}{
		{
			name:      "unavailable overrides open weekday",
			exception: model.AvailabilityException{Date: friday, IsAvailable: false},
			date:      friday,
			duration:  60,
			want:      []string{},
		},
		{
			name: "custom hours replace weekly hours",
			exception: model.AvailabilityException{
				Date:        friday,
				IsAvailable: true,
				CustomHours: &model.CustomHours{Open: "10:00", Close: "12:00"},
			},
			date:     friday,
			duration: 60,
			want:     []string{"10:00", "11:00"},
		},
		{
			name: "missing custom close falls back to weekday close",
			exception: model.AvailabilityException{
				Date:        friday,
				IsAvailable: true,
				CustomHours: &model.CustomHours{Open: "15:00"},
			},
			date:     friday,
			duration: 60,
			want:     []string{"15:00", "16:00"},
		},
		{
			name:      "available without custom hours uses weekday",
			exception: model.AvailabilityException{Date: friday, IsAvailable: true},
			date:      friday,
			duration:  240,
			want:      []string{"09:00", "13:00"},
		},
		{
			name: "available on closed weekday with full custom hours",
			exception: model.AvailabilityException{
				Date:        friday.AddDate(0, 0, 1),
				IsAvailable: true,
				CustomHours: &model.CustomHours{Open: "08:00", Close: "10:00"},
			},
			date:     friday.AddDate(0, 0, 1),
			duration: 60,
			want:     []string{"08:00", "09:00"},
		},
		{
			name: "available on missing weekday with partial custom hours",
			exception: model.AvailabilityException{
				Date:        friday.AddDate(0, 0, 2),
				IsAvailable: true,
				CustomHours: &model.CustomHours{Open: "08:00"},
			},
			date:     friday.AddDate(0, 0, 2),
			duration: 60,
			want:     []string{},
		},
		{
			name:      "exception on another date is ignored",
			exception: model.AvailabilityException{Date: friday.AddDate(0, 0, 7), IsAvailable: false},
			date:      friday,
			duration:  240,
			want:      []string{"09:00", "13:00"},
		},
		{
			name: "inverted custom hours are closed",
			exception: model.AvailabilityException{
				Date:        friday,
				IsAvailable: true,
				CustomHours: &model.CustomHours{Open: "12:00", Close: "10:00"},
			},
			date:     friday,
			duration: 30,
			want:     []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := weekdayProvider()
			p.AvailabilityExceptions = []model.AvailabilityException{tt.exception}

			got := ResolveSlots(p, tt.date, tt.duration)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ResolveSlots() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestResolveSlots_ExceptionMatchedByCalendarDay(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}
	p := weekdayProvider()
	p.AvailabilityExceptions = []model.AvailabilityException{{Date: friday, IsAvailable: false}}

	// 20:00 on Friday in New York is already Saturday in UTC; the local
	// calendar day must still select Friday's exception.
	localEvening := time.Date(2025, 1, 10, 20, 0, 0, 0, loc)
	if got := ResolveSlots(p, localEvening, 60); len(got) != 0 {
		t.Errorf("exception for Friday should close local Friday, got %v", got)
	}
}

func TestResolveSlots_DurationEdges(t *testing.T) {
	p := weekdayProvider()

	for _, d := range []int{0, -30, 481} {
		if got := ResolveSlots(p, friday, d); len(got) != 0 {
			t.Errorf("duration %d should yield no slots, got %v", d, got)
		}
	}

	if got := ResolveSlots(p, friday, 480); !reflect.DeepEqual(got, []string{"09:00"}) {
		t.Errorf("duration equal to window should yield one slot, got %v", got)
	}
}

func TestResolveSlots_InvalidStoredHours(t *testing.T) {
	p := &model.Provider{WorkingHours: []model.DayHours{{Day: model.Friday, Open: "9am", Close: "17:00"}}}

	if got := ResolveSlots(p, friday, 60); len(got) != 0 {
		t.Errorf("unparseable hours should fail safe to empty, got %v", got)
	}
}

func TestResolveSlots_Properties(t *testing.T) {
	p := weekdayProvider()
	w, ok := ResolveWindow(p, friday)
	if !ok {
		t.Fatal("expected open window on friday")
	}

	for _, d := range []int{15, 25, 45, 60, 90, 120} {
		slots := ResolveSlots(p, friday, d)
		for i, s := range slots {
			c, err := ParseClock(s)
			if err != nil {
				t.Fatalf("slot %q is not HH:mm", s)
			}
			if c < w.Open || c+Clock(d) > w.Close {
				t.Errorf("duration %d: slot %s escapes window", d, s)
			}
			if i > 0 {
				prev, _ := ParseClock(slots[i-1])
				if c-prev != Clock(d) {
					t.Errorf("duration %d: step %d between %s and %s", d, c-prev, slots[i-1], s)
				}
			}
		}
		if want := w.Len() / d; len(slots) != want {
			t.Errorf("duration %d: %d slots, want %d", d, len(slots), want)
		}
	}
}

func TestContains(t *testing.T) {
	slots := []string{"09:00", "10:00"}
	if !Contains(slots, "10:00") || Contains(slots, "09:30") {
		t.Errorf("Contains() mismatch")
	}
}

func TestDateOfAndAt(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Tokyo")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}

	// 2025-01-09T20:00Z is 05:00 on 2025-01-10 in Tokyo.
	instant := time.Date(2025, 1, 9, 20, 0, 0, 0, time.UTC)
	if got := DateOf(instant, loc); !got.Equal(friday) {
		t.Errorf("DateOf() = %v, want %v", got, friday)
	}

	at := At(friday, Clock(9*60), loc)
	if at.Hour() != 9 || at.Location() != loc || at.Day() != 10 {
		t.Errorf("At() = %v", at)
	}

	c, whole := ClockOf(at)
	if c != Clock(540) || !whole {
		t.Errorf("ClockOf() = %v, %v", c, whole)
	}
	if _, whole := ClockOf(at.Add(30 * time.Second)); whole {
		t.Errorf("ClockOf() should reject sub-minute instants")
	}
}

func TestParseDate(t *testing.T) {
	got, err := ParseDate("2025-01-10")
	if err != nil || !got.Equal(friday) {
		t.Errorf("ParseDate() = %v, %v", got, err)
	}
	if _, err := ParseDate("10/01/2025"); err == nil {
		t.Errorf("expected error for non-ISO date")
	}
}

func TestCustomWindow(t *testing.T) {
	saturday, sunday := friday.AddDate(0, 0, 1), friday.AddDate(0, 0, 2)

	tests := []struct {
		name    string
		date    time.Time
		hours   model.CustomHours
		want    Window
		wantErr error
	}{
		{"open only fills weekday close", friday, model.CustomHours{Open: "15:00"}, Window{Open: 900, Close: 1020}, nil},
		{"close only fills weekday open", friday, model.CustomHours{Close: "12:00"}, Window{Open: 540, Close: 720}, nil},
		{"late open inverts merged window", friday, model.CustomHours{Open: "18:00"}, Window{}, ErrInvertedHours},
		{"early close inverts merged window", friday, model.CustomHours{Close: "08:00"}, Window{}, ErrInvertedHours},
		{"inverted full custom hours", friday, model.CustomHours{Open: "12:00", Close: "10:00"}, Window{}, ErrInvertedHours},
		{"closed weekday fills nothing", saturday, model.CustomHours{Open: "10:00"}, Window{}, ErrIncompleteHours},
		{"missing weekday fills nothing", sunday, model.CustomHours{Close: "10:00"}, Window{}, ErrIncompleteHours},
		{"full hours on closed weekday", saturday, model.CustomHours{Open: "08:00", Close: "10:00"}, Window{Open: 480, Close: 600}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CustomWindow(weekdayProvider(), tt.date, tt.hours)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("CustomWindow() error = %v, want %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("CustomWindow() = %+v, want %+v", got, tt.want)
			}
		})
	}
}
