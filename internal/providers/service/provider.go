package service

import (
	"context"
	"errors"
	"fmt"
	"slotbook/internal/availability"
	providerserrors "slotbook/internal/providers/errors"
	"slotbook/internal/providers/repository"
	"slotbook/internal/providers/validator"
	"slotbook/pkg/config"
	apperrors "slotbook/pkg/errors"
	"slotbook/pkg/model"
	"slotbook/pkg/sanitizer"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/mongo"
)

// OccupancyReader lists start instants held by active bookings of a provider
// within [from, to).
type OccupancyReader interface {
	ActiveStartsBetween(ctx context.Context, providerID string, from, to time.Time) ([]time.Time, error)
}

type ProviderService interface {
	Create(ctx context.Context, actor *model.Actor, p *model.Provider) error
	GetByID(ctx context.Context, id string) (*model.Provider, error)
	List(ctx context.Context, category model.Category, limit int, offset int64) ([]*model.Provider, int64, error)
	Update(ctx context.Context, actor model.Actor, id string, update *model.ProviderUpdate) (*model.Provider, error)

	SetWorkingHours(ctx context.Context, actor model.Actor, id string, req *model.WorkingHoursRequest) (*model.Provider, error)
	UpsertException(ctx context.Context, actor model.Actor, id string, req *model.ExceptionRequest) (*model.Provider, error)
	RemoveException(ctx context.Context, actor model.Actor, id string, date string) (*model.Provider, error)
	AddService(ctx context.Context, actor model.Actor, id string, req *model.ServiceRequest) (*model.Service, error)
	UpdateService(ctx context.Context, actor model.Actor, id string, serviceID string, update *model.ServiceUpdate) (*model.Service, error)

	Slots(ctx context.Context, id string, serviceID string, date string) (*model.Slots, error)
}

type providerService struct {
	repo      repository.ProviderRepository
	occupancy OccupancyReader
	validator *validator.ProviderValidator
	cfg       *config.Config
}

func NewProviderService(
	repo repository.ProviderRepository,
	occupancy OccupancyReader,
	validator *validator.ProviderValidator,
	cfg *config.Config,
) ProviderService {
	return &providerService{
		repo:      repo,
		occupancy: occupancy,
		validator: validator,
		cfg:       cfg,
	}
}

func validationError(message string, err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return apperrors.Validation(message, map[string]any{"errors": verrs})
	}
	return apperrors.Validation(message, map[string]any{"error": err.Error()})
}

// authorizeOwner allows only the provider itself to change its profile.
func authorizeOwner(actor model.Actor, providerID string) error {
	if !actor.IsProvider() || actor.ID != providerID {
		return apperrors.NotAuthorized("only the provider may modify this profile")
	}
	return nil
}

func (s *providerService) translateRepoError(err error, id string, op string) error {
	switch {
	case errors.Is(err, providerserrors.ErrNotFound):
		return apperrors.NotFoundWithID("Provider", id)
	case errors.Is(err, providerserrors.ErrInvalidID):
		return apperrors.InvalidInput("Invalid provider ID format")
	case errors.Is(err, providerserrors.ErrServiceNotFound):
		return apperrors.NotFound("Service")
	case apperrors.IsAppError(err):
		return err
	}
	s.cfg.Log.Error("Provider repository failure", "operation", op, "provider_id", id, "error", err)
	return apperrors.Internal(fmt.Sprintf("Failed to %s", op), err)
}

func (s *providerService) Create(ctx context.Context, actor *model.Actor, p *model.Provider) error {
	if actor != nil && !actor.IsProvider() {
		return apperrors.NotAuthorized("only providers may register a provider profile")
	}

	s.sanitize(p)
	s.applyDefaults(p)

	if err := s.validator.Validate(p); err != nil {
		s.cfg.Log.Warn("Provider validation failed",
			"business_name", p.BusinessName,
			"error", err,
		)
		return validationError("Provider validation failed", err)
	}

	if err := s.repo.Create(ctx, p); err != nil {
		return s.translateRepoError(err, "", "create provider")
	}

	s.cfg.Log.Info("Provider created successfully",
		"provider_id", p.ID,
		"business_name", p.BusinessName,
		"category", p.Category,
		"time_zone", p.TimeZone,
	)
	return nil
}

func (s *providerService) sanitize(p *model.Provider) {
	p.ID = ""
	p.BusinessName = sanitizer.NormalizeName(p.BusinessName)
	p.Category = model.Category(sanitizer.NormalizeToken(string(p.Category)))
	p.TimeZone = sanitizer.TrimAndNormalize(p.TimeZone)
	for i := range p.WorkingHours {
		p.WorkingHours[i].Day = model.Weekday(sanitizer.NormalizeToken(string(p.WorkingHours[i].Day)))
		if p.WorkingHours[i].IsClosed {
			p.WorkingHours[i].Open, p.WorkingHours[i].Close = "", ""
		}
	}
	for i := range p.Services {
		p.Services[i].Name = sanitizer.NormalizeName(p.Services[i].Name)
		p.Services[i].Description = sanitizer.NormalizeText(p.Services[i].Description)
	}
}

// applyDefaults fills server-owned fields. Derived rating fields always start at zero.
func (s *providerService) applyDefaults(p *model.Provider) {
	if p.TimeZone == "" {
		p.TimeZone = s.cfg.DefaultTimeZone
	}
	if p.WorkingHours == nil {
		p.WorkingHours = []model.DayHours{}
	}
	if p.AvailabilityExceptions == nil {
		p.AvailabilityExceptions = []model.AvailabilityException{}
	}
	for i := range p.AvailabilityExceptions {
		p.AvailabilityExceptions[i].Date = availability.DateOf(p.AvailabilityExceptions[i].Date, time.UTC)
		normalizeException(&p.AvailabilityExceptions[i])
	}
	if p.Services == nil {
		p.Services = []model.Service{}
	}
	for i := range p.Services {
		p.Services[i].ID = uuid.NewString()
	}
	p.Rating = 0
	p.TotalRatings = 0
}

// normalizeException drops custom hours that can never apply: those on an
// unavailable day and empty ones.
func normalizeException(exc *model.AvailabilityException) {
	if !exc.IsAvailable || (exc.CustomHours != nil && exc.CustomHours.Open == "" && exc.CustomHours.Close == "") {
		exc.CustomHours = nil
	}
}

func (s *providerService) GetByID(ctx context.Context, id string) (*model.Provider, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Provider ID cannot be empty")
	}

	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.translateRepoError(err, id, "retrieve provider")
	}
	return p, nil
}

func (s *providerService) List(ctx context.Context, category model.Category, limit int, offset int64) ([]*model.Provider, int64, error) {
	category = model.Category(sanitizer.NormalizeToken(string(category)))
	if category != "" {
		known := false
		for _, c := range model.Categories {
			known = known || c == category
		}
		if !known {
			return nil, 0, apperrors.InvalidInput(fmt.Sprintf("unknown category: %s", category))
		}
	}

	var (
		count             int64
		providers         []*model.Provider
		errCount, errFind error
		wg                sync.WaitGroup
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		count, errCount = s.repo.Count(ctx, category)
	}()
	go func() {
		defer wg.Done()
		providers, errFind = s.repo.FindAll(ctx, category, limit, offset)
	}()
	wg.Wait()

	if errCount != nil {
		return nil, 0, s.translateRepoError(errCount, "", "count providers")
	}
	if errFind != nil {
		return nil, 0, s.translateRepoError(errFind, "", "list providers")
	}
	return providers, count, nil
}

func (s *providerService) Update(ctx context.Context, actor model.Actor, id string, update *model.ProviderUpdate) (*model.Provider, error) {
	if err := authorizeOwner(actor, id); err != nil {
		return nil, err
	}

	update.BusinessName = sanitizer.NormalizeName(update.BusinessName)
	update.Category = model.Category(sanitizer.NormalizeToken(string(update.Category)))
	update.TimeZone = sanitizer.TrimAndNormalize(update.TimeZone)
	if err := s.validator.ValidateUpdate(update); err != nil {
		return nil, validationError("Provider validation failed", err)
	}

	if err := s.repo.Update(ctx, id, update); err != nil {
		return nil, s.translateRepoError(err, id, "update provider")
	}

	s.cfg.Log.Info("Provider updated successfully", "provider_id", id)
	return s.GetByID(ctx, id)
}

func (s *providerService) SetWorkingHours(ctx context.Context, actor model.Actor, id string, req *model.WorkingHoursRequest) (*model.Provider, error) {
	if err := authorizeOwner(actor, id); err != nil {
		return nil, err
	}

	for i := range req.WorkingHours {
		req.WorkingHours[i].Day = model.Weekday(sanitizer.NormalizeToken(string(req.WorkingHours[i].Day)))
		if req.WorkingHours[i].IsClosed {
			req.WorkingHours[i].Open, req.WorkingHours[i].Close = "", ""
		}
	}
	if req.WorkingHours == nil {
		req.WorkingHours = []model.DayHours{}
	}
	if err := s.validator.ValidateWorkingHours(req); err != nil {
		s.cfg.Log.Warn("Working hours validation failed", "provider_id", id, "error", err)
		return nil, validationError("Working hours validation failed", err)
	}

	if err := s.repo.SetWorkingHours(ctx, id, req.WorkingHours); err != nil {
		return nil, s.translateRepoError(err, id, "set working hours")
	}

	s.cfg.Log.Info("Working hours updated", "provider_id", id, "days", len(req.WorkingHours))
	return s.GetByID(ctx, id)
}

// UpsertException replaces any exception already stored for the same
// calendar date. The pull and push run in one transaction.
func (s *providerService) UpsertException(ctx context.Context, actor model.Actor, id string, req *model.ExceptionRequest) (*model.Provider, error) {
	if err := authorizeOwner(actor, id); err != nil {
		return nil, err
	}

	if err := s.validator.ValidateException(req); err != nil {
		return nil, validationError("Availability exception validation failed", err)
	}
	date, err := availability.ParseDate(req.Date)
	if err != nil {
		return nil, apperrors.InvalidInput("invalid date: " + req.Date)
	}

	exc := model.AvailabilityException{
		Date:        date,
		IsAvailable: req.IsAvailable,
		CustomHours: req.CustomHours,
	}
	normalizeException(&exc)

	p, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.validator.ValidateExceptionFor(p, exc); err != nil {
		s.cfg.Log.Warn("Availability exception rejected against weekly hours",
			"provider_id", id,
			"date", req.Date,
			"error", err,
		)
		return nil, validationError("Availability exception validation failed", err)
	}

	var replaced bool
	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		removed, err := s.repo.RemoveException(sessCtx, id, date)
		if err != nil {
			return err
		}
		replaced = removed
		return s.repo.AddException(sessCtx, id, exc)
	})
	if err != nil {
		return nil, s.translateRepoError(err, id, "save availability exception")
	}

	s.cfg.Log.Info("Availability exception saved",
		"provider_id", id,
		"date", req.Date,
		"is_available", exc.IsAvailable,
		"replaced", replaced,
	)
	return s.GetByID(ctx, id)
}

func (s *providerService) RemoveException(ctx context.Context, actor model.Actor, id string, date string) (*model.Provider, error) {
	if err := authorizeOwner(actor, id); err != nil {
		return nil, err
	}

	d, err := availability.ParseDate(date)
	if err != nil {
		return nil, apperrors.InvalidInput("date must be YYYY-MM-DD, got: " + date)
	}

	removed, err := s.repo.RemoveException(ctx, id, d)
	if err != nil {
		return nil, s.translateRepoError(err, id, "remove availability exception")
	}
	if !removed {
		return nil, apperrors.NotFoundWithID("Availability exception", date)
	}

	s.cfg.Log.Info("Availability exception removed", "provider_id", id, "date", date)
	return s.GetByID(ctx, id)
}

func (s *providerService) AddService(ctx context.Context, actor model.Actor, id string, req *model.ServiceRequest) (*model.Service, error) {
	if err := authorizeOwner(actor, id); err != nil {
		return nil, err
	}

	req.Name = sanitizer.NormalizeName(req.Name)
	req.Description = sanitizer.NormalizeText(req.Description)
	if err := s.validator.ValidateService(req); err != nil {
		return nil, validationError("Service validation failed", err)
	}

	svc := model.Service{
		ID:          uuid.NewString(),
		Name:        req.Name,
		Duration:    req.Duration,
		Price:       req.Price,
		Description: req.Description,
	}
	if err := s.repo.AddService(ctx, id, svc); err != nil {
		return nil, s.translateRepoError(err, id, "add service")
	}

	s.cfg.Log.Info("Service added", "provider_id", id, "service_id", svc.ID, "duration", svc.Duration)
	return &svc, nil
}

func (s *providerService) UpdateService(ctx context.Context, actor model.Actor, id string, serviceID string, update *model.ServiceUpdate) (*model.Service, error) {
	if err := authorizeOwner(actor, id); err != nil {
		return nil, err
	}

	update.Name = sanitizer.NormalizeName(update.Name)
	if err := s.validator.ValidateServiceUpdate(update); err != nil {
		return nil, validationError("Service validation failed", err)
	}

	p, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	existing, ok := p.FindService(serviceID)
	if !ok {
		return nil, apperrors.NotFoundWithID("Service", serviceID)
	}

	merged := mergeService(*existing, update)
	if err := s.repo.UpdateService(ctx, id, merged); err != nil {
		return nil, s.translateRepoError(err, id, "update service")
	}

	s.cfg.Log.Info("Service updated", "provider_id", id, "service_id", serviceID)
	return &merged, nil
}

func mergeService(svc model.Service, update *model.ServiceUpdate) model.Service {
	if update.Name != "" {
		svc.Name = update.Name
	}
	if update.Duration != nil {
		svc.Duration = *update.Duration
	}
	if update.Price != nil {
		svc.Price = *update.Price
	}
	if update.Description != nil {
		svc.Description = sanitizer.NormalizeText(*update.Description)
	}
	return svc
}

// Slots lists the bookable starts for a service on a calendar date, in the
// provider's time zone, minus starts already held by active bookings.
func (s *providerService) Slots(ctx context.Context, id string, serviceID string, date string) (*model.Slots, error) {
	day, err := availability.ParseDate(date)
	if err != nil {
		return nil, apperrors.InvalidInput("date must be YYYY-MM-DD, got: " + date)
	}
	if serviceID == "" {
		return nil, apperrors.InvalidInput("service_id is required")
	}

	p, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	svc, ok := p.FindService(serviceID)
	if !ok {
		return nil, apperrors.NotFoundWithID("Service", serviceID)
	}

	slots := availability.ResolveSlots(p, day, svc.Duration)

	if s.occupancy != nil && len(slots) > 0 {
		loc := p.Location()
		from := availability.At(day, availability.Midnight, loc)
		to := from.AddDate(0, 0, 1)

		taken, err := s.occupancy.ActiveStartsBetween(ctx, p.ID, from, to)
		if err != nil {
			s.cfg.Log.Error("Failed to read occupied slots", "provider_id", id, "date", date, "error", err)
			return nil, apperrors.Internal("Failed to read occupied slots", err)
		}
		slots = withoutTaken(slots, taken, loc)
	}

	return &model.Slots{
		ProviderID: p.ID,
		ServiceID:  serviceID,
		Date:       date,
		TimeZone:   p.Location().String(),
		Slots:      slots,
	}, nil
}

func withoutTaken(slots []string, taken []time.Time, loc *time.Location) []string {
	if len(taken) == 0 {
		return slots
	}
	held := make(map[string]bool, len(taken))
	for _, t := range taken {
		held[t.In(loc).Format("15:04")] = true
	}
	free := make([]string, 0, len(slots))
	for _, s := range slots {
		if !held[s] {
			free = append(free, s)
		}
	}
	return free
}
