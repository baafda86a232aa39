package model

import "time"

type Weekday string

const (
	Sunday    Weekday = "sunday"
	Monday    Weekday = "monday"
	Tuesday   Weekday = "tuesday"
	Wednesday Weekday = "wednesday"
	Thursday  Weekday = "thursday"
	Friday    Weekday = "friday"
	Saturday  Weekday = "saturday"
)

// WeekdayOf maps a time.Weekday onto the lowercase names stored in working hours.
func WeekdayOf(d time.Weekday) Weekday {
	return [...]Weekday{Sunday, Monday, Tuesday, Wednesday, Thursday, Friday, Saturday}[d]
}

type Category string

const (
	CategoryBarber   Category = "barber"
	CategoryBeauty   Category = "beauty"
	CategorySpa      Category = "spa"
	CategoryFitness  Category = "fitness"
	CategoryHealth   Category = "health"
	CategoryCleaning Category = "cleaning"
	CategoryTutoring Category = "tutoring"
	CategoryOther    Category = "other"
)

var Categories = []Category{
	CategoryBarber, CategoryBeauty, CategorySpa, CategoryFitness,
	CategoryHealth, CategoryCleaning, CategoryTutoring, CategoryOther,
}

type DayHours struct {
	Day      Weekday `json:"day" bson:"day" validate:"required,weekday"`
	Open     string  `json:"open" bson:"open" validate:"omitempty,hhmm"`
	Close    string  `json:"close" bson:"close" validate:"omitempty,hhmm"`
	IsClosed bool    `json:"is_closed" bson:"is_closed"`
}

type CustomHours struct {
	Open  string `json:"open,omitempty" bson:"open,omitempty" validate:"omitempty,hhmm"`
	Close string `json:"close,omitempty" bson:"close,omitempty" validate:"omitempty,hhmm"`
}

// AvailabilityException overrides the weekly schedule for one calendar date.
// Date is stored as midnight UTC of that calendar day.
type AvailabilityException struct {
	Date        time.Time    `json:"date" bson:"date" validate:"required"`
	IsAvailable bool         `json:"is_available" bson:"is_available"`
	CustomHours *CustomHours `json:"custom_hours,omitempty" bson:"custom_hours,omitempty" validate:"omitempty"`
}

type Service struct {
	ID          string  `json:"id" bson:"id" validate:"required"`
	Name        string  `json:"name" bson:"name" validate:"required,min=2,max=100"`
	Duration    int     `json:"duration" bson:"duration" validate:"required,min=1,max=1440"`
	Price       float64 `json:"price" bson:"price" validate:"min=0"`
	Description string  `json:"description,omitempty" bson:"description" validate:"max=500"`
}

type Provider struct {
	ID                     string                  `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	BusinessName           string                  `json:"business_name" bson:"business_name" validate:"required,min=2,max=100"`
	Category               Category                `json:"category" bson:"category" validate:"required,category"`
	TimeZone               string                  `json:"time_zone,omitempty" bson:"time_zone" validate:"omitempty,timezone"`
	WorkingHours           []DayHours              `json:"working_hours" bson:"working_hours" validate:"max=7,dive"`
	AvailabilityExceptions []AvailabilityException `json:"availability_exceptions" bson:"availability_exceptions" validate:"dive"`
	Services               []Service               `json:"services" bson:"services" validate:"dive"`
	Rating                 float64                 `json:"rating" bson:"rating"`
	TotalRatings           int64                   `json:"total_ratings" bson:"total_ratings"`
	CreatedAt              time.Time               `json:"created_at" bson:"created_at"`
	UpdatedAt              time.Time               `json:"updated_at" bson:"updated_at"`
}

// Location returns the provider's configured time zone, falling back to UTC.
func (p *Provider) Location() *time.Location {
	if p.TimeZone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(p.TimeZone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func (p *Provider) FindService(id string) (*Service, bool) {
	for i := range p.Services {
		if p.Services[i].ID == id {
			return &p.Services[i], true
		}
	}
	return nil, false
}

func (p *Provider) HoursFor(day Weekday) (*DayHours, bool) {
	for i := range p.WorkingHours {
		if p.WorkingHours[i].Day == day {
			return &p.WorkingHours[i], true
		}
	}
	return nil, false
}

type ProviderUpdate struct {
	BusinessName string   `json:"business_name,omitempty" validate:"omitempty,min=2,max=100"`
	Category     Category `json:"category,omitempty" validate:"omitempty,category"`
	TimeZone     string   `json:"time_zone,omitempty" validate:"omitempty,timezone"`
}

type ServiceUpdate struct {
	Name        string   `json:"name,omitempty" validate:"omitempty,min=2,max=100"`
	Duration    *int     `json:"duration,omitempty" validate:"omitempty,min=1,max=1440"`
	Price       *float64 `json:"price,omitempty" validate:"omitempty,min=0"`
	Description *string  `json:"description,omitempty" validate:"omitempty,max=500"`
}

type WorkingHoursRequest struct {
	WorkingHours []DayHours `json:"working_hours" validate:"max=7,dive"`
}

// ExceptionRequest carries a calendar date as YYYY-MM-DD.
type ExceptionRequest struct {
	Date        string       `json:"date" validate:"required,datetime=2006-01-02"`
	IsAvailable bool         `json:"is_available"`
	CustomHours *CustomHours `json:"custom_hours,omitempty" validate:"omitempty"`
}

type ServiceRequest struct {
	Name        string  `json:"name" validate:"required,min=2,max=100"`
	Duration    int     `json:"duration" validate:"required,min=1,max=1440"`
	Price       float64 `json:"price" validate:"min=0"`
	Description string  `json:"description,omitempty" validate:"max=500"`
}

type Slots struct {
	ProviderID string   `json:"provider_id"`
	ServiceID  string   `json:"service_id"`
	Date       string   `json:"date"`
	TimeZone   string   `json:"time_zone"`
	Slots      []string `json:"slots"`
}
