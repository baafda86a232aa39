package service

import (
	"context"
	"errors"
	"fmt"
	"slotbook/internal/availability"
	bookingserrors "slotbook/internal/bookings/errors"
	"slotbook/internal/bookings/lifecycle"
	"slotbook/internal/bookings/locker"
	"slotbook/internal/bookings/repository"
	"slotbook/internal/bookings/validator"
	"slotbook/internal/notifications"
	providerserrors "slotbook/internal/providers/errors"
	"slotbook/internal/ratings"
	"slotbook/pkg/config"
	apperrors "slotbook/pkg/errors"
	"slotbook/pkg/model"
	"slotbook/pkg/sanitizer"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
)

type ProviderReader interface {
	FindByID(ctx context.Context, id string) (*model.Provider, error)
}

type RatingRecomputer interface {
	Recompute(ctx context.Context, providerID string) (*ratings.Aggregate, error)
}

// RecomputeRequester queues a recompute that could not run in-request.
type RecomputeRequester interface {
	RequestRecompute(ctx context.Context, providerID string) error
}

// ListQuery bounds a booking listing by slot start. Zero times are open ends.
type ListQuery struct {
	From   time.Time
	To     time.Time
	Limit  int
	Offset int64
}

type BookingService interface {
	Create(ctx context.Context, actor model.Actor, req *model.CreateBookingRequest) (*model.Booking, error)
	GetByID(ctx context.Context, actor model.Actor, id string) (*model.Booking, error)
	List(ctx context.Context, actor model.Actor, q ListQuery) ([]*model.Booking, int64, error)
	ChangeStatus(ctx context.Context, actor model.Actor, id string, req *model.StatusChangeRequest) (*model.Booking, error)
	AddReview(ctx context.Context, actor model.Actor, id string, req *model.ReviewRequest) (*model.Booking, error)
}

type Dependencies struct {
	Repo      repository.BookingRepository
	Providers ProviderReader
	Locker    locker.SlotLocker
	Validator *validator.BookingValidator
	Notifier  notifications.Notifier
	Ratings   RatingRecomputer
	Retry     RecomputeRequester
}

type bookingService struct {
	repo      repository.BookingRepository
	providers ProviderReader
	locker    locker.SlotLocker
	validator *validator.BookingValidator
	notifier  notifications.Notifier
	ratings   RatingRecomputer
	retry     RecomputeRequester
	cfg       *config.Config
}

func NewBookingService(deps Dependencies, cfg *config.Config) BookingService {
	notifier := deps.Notifier
	if notifier == nil {
		notifier = notifications.NewNopNotifier()
	}
	return &bookingService{
		repo:      deps.Repo,
		providers: deps.Providers,
		locker:    deps.Locker,
		validator: deps.Validator,
		notifier:  notifier,
		ratings:   deps.Ratings,
		retry:     deps.Retry,
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

func (s *bookingService) translateRepoError(err error, id string, op string) error {
	switch {
	case errors.Is(err, bookingserrors.ErrNotFound):
		return apperrors.NotFoundWithID("Booking", id)
	case errors.Is(err, bookingserrors.ErrInvalidID):
		return apperrors.InvalidInput("Invalid booking ID format")
	case apperrors.IsAppError(err):
		return err
	}
	s.cfg.Log.Error("Booking repository failure", "operation", op, "booking_id", id, "error", err)
	return apperrors.Internal(fmt.Sprintf("Failed to %s", op), err)
}

// authorizeParty allows only the booking's customer or its provider.
func authorizeParty(actor model.Actor, b *model.Booking) error {
	switch {
	case actor.IsCustomer() && actor.ID == b.CustomerID:
		return nil
	case actor.IsProvider() && actor.ID == b.ProviderID:
		return nil
	}
	return apperrors.NotAuthorized("only the booking's customer or provider may access it")
}

func (s *bookingService) Create(ctx context.Context, actor model.Actor, req *model.CreateBookingRequest) (*model.Booking, error) {
	if !actor.IsCustomer() {
		return nil, apperrors.NotAuthorized("only customers may create bookings")
	}

	req.Notes = sanitizer.NormalizeText(req.Notes)
	if err := s.validator.ValidateCreate(req); err != nil {
		s.cfg.Log.Warn("Booking validation failed", "customer_id", actor.ID, "error", err)
		return nil, validationError("Booking validation failed", err)
	}

	provider, err := s.providers.FindByID(ctx, req.ProviderID)
	if err != nil {
		switch {
		case errors.Is(err, providerserrors.ErrNotFound):
			return nil, apperrors.NotFoundWithID("Provider", req.ProviderID)
		case errors.Is(err, providerserrors.ErrInvalidID):
			return nil, apperrors.InvalidInput("Invalid provider ID format")
		}
		s.cfg.Log.Error("Failed to load provider for booking", "provider_id", req.ProviderID, "error", err)
		return nil, apperrors.Internal("Failed to load provider", err)
	}

	svc, ok := provider.FindService(req.ServiceID)
	if !ok {
		return nil, apperrors.NotFoundWithID("Service", req.ServiceID)
	}

	dateTime := req.DateTime.UTC()
	if !s.isOffered(provider, dateTime, svc.Duration) {
		return nil, apperrors.SlotUnavailable(dateTime.Format(time.RFC3339))
	}

	booking := &model.Booking{
		CustomerID: actor.ID,
		ProviderID: provider.ID,
		Service: model.ServiceSnapshot{
			ServiceID:   svc.ID,
			ServiceName: svc.Name,
			Duration:    svc.Duration,
			Price:       svc.Price,
		},
		DateTime: dateTime,
		Status:   model.Pending,
		Notes:    req.Notes,
	}

	err = s.locker.WithSlotLock(ctx, provider.ID, dateTime, func(lockCtx context.Context) error {
		return s.repo.ExecuteTransaction(lockCtx, func(sessCtx mongo.SessionContext) error {
			free, err := s.isSlotFree(sessCtx, provider.ID, dateTime)
			if err != nil {
				return err
			}
			if !free {
				return bookingserrors.ErrDuplicate
			}
			return s.repo.Create(sessCtx, booking)
		})
	})
	if err != nil {
		if errors.Is(err, locker.ErrLockNotAcquired) || errors.Is(err, bookingserrors.ErrDuplicate) {
			s.cfg.Log.Info("Slot already taken",
				"provider_id", provider.ID,
				"date_time", dateTime,
				"customer_id", actor.ID,
			)
			return nil, apperrors.SlotTaken(dateTime.Format(time.RFC3339))
		}
		return nil, s.translateRepoError(err, "", "create booking")
	}

	s.cfg.Log.Info("Booking created successfully",
		"booking_id", booking.ID,
		"provider_id", booking.ProviderID,
		"customer_id", booking.CustomerID,
		"service_id", booking.Service.ServiceID,
		"date_time", booking.DateTime,
	)
	s.notifier.Notify(ctx, notifications.BookingCreated(booking, actor))
	return booking, nil
}

// isOffered reports whether dateTime is one of the provider's resolved slot
// starts on its local calendar day.
func (s *bookingService) isOffered(p *model.Provider, dateTime time.Time, duration int) bool {
	loc := p.Location()
	clock, ok := availability.ClockOf(dateTime.In(loc))
	if !ok {
		return false
	}
	slots := availability.ResolveSlots(p, availability.DateOf(dateTime, loc), duration)
	return availability.Contains(slots, clock.String())
}

// isSlotFree reports whether no pending or confirmed booking of the provider
// starts at exactly dateTime.
func (s *bookingService) isSlotFree(ctx context.Context, providerID string, dateTime time.Time) (bool, error) {
	n, err := s.repo.CountActiveAt(ctx, providerID, dateTime)
	if err != nil {
		return false, err
	}
	return n == 0, nil
}

func (s *bookingService) GetByID(ctx context.Context, actor model.Actor, id string) (*model.Booking, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}

	b, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.translateRepoError(err, id, "retrieve booking")
	}
	if err := authorizeParty(actor, b); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *bookingService) List(ctx context.Context, actor model.Actor, q ListQuery) ([]*model.Booking, int64, error) {
	var filter repository.Filter
	switch {
	case actor.IsCustomer():
		filter.CustomerID = actor.ID
	case actor.IsProvider():
		filter.ProviderID = actor.ID
	default:
		return nil, 0, apperrors.NotAuthorized("unknown actor role")
	}
	if !q.From.IsZero() && !q.To.IsZero() && !q.To.After(q.From) {
		return nil, 0, apperrors.InvalidInput("to must be after from")
	}
	filter.From, filter.To = q.From, q.To

	var (
		count             int64
		bookings          []*model.Booking
		errCount, errFind error
		wg                sync.WaitGroup
	)
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.Count(ctx, filter)
	}()

	go func() {
		defer wg.Done()
		bookings, errFind = s.repo.FindAll(ctx, filter, q.Limit, q.Offset)
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, s.translateRepoError(errCount, "", "count bookings")
	}
	if errFind != nil {
		return nil, 0, s.translateRepoError(errFind, "", "list bookings")
	}
	return bookings, count, nil
}

func (s *bookingService) ChangeStatus(ctx context.Context, actor model.Actor, id string, req *model.StatusChangeRequest) (*model.Booking, error) {
	if err := s.validator.ValidateStatusChange(req); err != nil {
		return nil, validationError("Status change validation failed", err)
	}

	current, err := s.GetByID(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	from, to := current.Status, req.Status
	if !lifecycle.CanTransition(from, to) {
		return nil, apperrors.InvalidTransition(string(from), string(to))
	}
	if !lifecycle.AllowedFor(actor.Role, from, to) {
		return nil, apperrors.NotAuthorized(fmt.Sprintf("only the provider may move a booking from %s to %s", from, to))
	}

	updated, err := s.repo.UpdateStatus(ctx, id, from, to)
	if err != nil {
		if errors.Is(err, bookingserrors.ErrStatusConflict) {
			return nil, s.staleTransition(ctx, id, from, to)
		}
		return nil, s.translateRepoError(err, id, "update booking status")
	}

	s.cfg.Log.Info("Booking status changed",
		"booking_id", id,
		"from", from,
		"to", to,
		"actor_id", actor.ID,
		"actor_role", actor.Role,
	)
	s.notifier.Notify(ctx, notifications.StatusChanged(updated, from, actor))
	return updated, nil
}

// staleTransition reports a transition that lost a race: the booking left
// from before the update landed.
func (s *bookingService) staleTransition(ctx context.Context, id string, from, to model.BookingStatus) error {
	latest, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return s.translateRepoError(err, id, "reload booking")
	}
	s.cfg.Log.Warn("Concurrent booking status change",
		"booking_id", id,
		"expected", from,
		"actual", latest.Status,
		"requested", to,
	)
	return apperrors.InvalidTransition(string(latest.Status), string(to))
}

func (s *bookingService) AddReview(ctx context.Context, actor model.Actor, id string, req *model.ReviewRequest) (*model.Booking, error) {
	if !actor.IsCustomer() {
		return nil, apperrors.NotAuthorized("only the customer may review a booking")
	}

	req.Comment = sanitizer.NormalizeText(req.Comment)
	if err := s.validator.ValidateReview(req); err != nil {
		return nil, validationError("Review validation failed", err)
	}

	current, err := s.GetByID(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if current.Status != model.Completed {
		return nil, apperrors.NotCompleted(id)
	}
	if current.Rating != nil {
		return nil, apperrors.AlreadyReviewed(id)
	}

	reviewed, err := s.repo.AddReview(ctx, id, req.Rating, req.Comment)
	if err != nil {
		if errors.Is(err, bookingserrors.ErrReviewConflict) {
			// Status cannot leave completed, so a miss means another review won.
			return nil, apperrors.AlreadyReviewed(id)
		}
		return nil, s.translateRepoError(err, id, "add review")
	}

	s.cfg.Log.Info("Booking reviewed",
		"booking_id", id,
		"provider_id", reviewed.ProviderID,
		"rating", req.Rating,
	)
	s.recomputeRating(ctx, reviewed.ProviderID)
	s.notifier.Notify(ctx, notifications.BookingReviewed(reviewed, actor))
	return reviewed, nil
}

// recomputeRating refreshes the provider aggregate. Failures never fail the
// review; they are queued for the ratings worker instead.
func (s *bookingService) recomputeRating(ctx context.Context, providerID string) {
	if s.ratings == nil {
		return
	}
	_, err := s.ratings.Recompute(ctx, providerID)
	if err == nil {
		return
	}

	s.cfg.Log.Warn("Rating recompute failed, scheduling retry", "provider_id", providerID, "error", err)
	if s.retry == nil {
		return
	}
	if err := s.retry.RequestRecompute(ctx, providerID); err != nil {
		s.cfg.Log.Error("Failed to schedule rating recompute", "provider_id", providerID, "error", err)
	}
}
