package service

import (
	"context"
	"errors"
	"time"

	bookingserrors "slotly/internal/bookings/errors"
	"slotly/internal/bookings/events"
	"slotly/internal/bookings/repository"
	"slotly/internal/bookings/validator"
	userserrors "slotly/internal/users/errors"
	usersrepository "slotly/internal/users/repository"
	apperrors "slotly/pkg/errors"
	"slotly/pkg/logger"
	"slotly/pkg/model"
	"slotly/pkg/sanitizer"
)

const (
	msgSlotTaken    = "The requested slot is already booked. Please pick a different slot."
	msgUnauthorized = "User not authorized for this booking"
)

type BookingService interface {
	CheckSlotAvailability(ctx context.Context, guestEmail, hostEmail, date, slot string) error
	ResolveParticipantNames(ctx context.Context, guestEmail, hostEmail string) (guestName, hostName string, err error)
	CreateBooking(ctx context.Context, booking *model.Booking) error
	BookAppointment(ctx context.Context, req *model.BookingRequest) (*model.Booking, error)
	UpdateBooking(ctx context.Context, id, callerEmail string, update *model.BookingUpdate) error
	DeleteBooking(ctx context.Context, id, callerEmail string) error
	ListHosted(ctx context.Context, hostEmail string) ([]*model.Booking, error)
	ListGuest(ctx context.Context, guestEmail string) ([]*model.Booking, error)
	ListAll(ctx context.Context, userEmail string, partition model.Partition) (*model.PartitionedBookings, error)
	FetchTodayTomorrowSlots(ctx context.Context, caller model.Caller) (*model.DailySlots, error)
}

type Option func(*bookingService)

// WithClock replaces the wall clock used for "today" in slot and partition queries.
func WithClock(now func() time.Time) Option {
	return func(s *bookingService) {
		s.now = now
	}
}

type bookingService struct {
	repo      repository.BookingRepository
	users     usersrepository.UserDirectory
	validator *validator.BookingValidator
	publisher events.Publisher
	log       *logger.Logger
	now       func() time.Time
}

func NewBookingService(
	repo repository.BookingRepository,
	users usersrepository.UserDirectory,
	validator *validator.BookingValidator,
	publisher events.Publisher,
	log *logger.Logger,
	opts ...Option,
) BookingService {
	s := &bookingService{
		repo:      repo,
		users:     users,
		validator: validator,
		publisher: publisher,
		log:       log,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.publisher == nil {
		s.publisher = events.NopPublisher{}
	}
	return s
}

func (s *bookingService) opLog(ctx context.Context, operation string) *logger.Logger {
	return logger.FromContext(ctx, s.log).Operation(operation)
}

// CheckSlotAvailability returns nil when no booking holds (hostEmail, date, slot).
// A nil result is not a reservation.
func (s *bookingService) CheckSlotAvailability(ctx context.Context, guestEmail, hostEmail, date, slot string) error {
	log := s.opLog(ctx, "check_slot_availability")
	hostEmail = sanitizer.SanitizeEmail(hostEmail)
	date = sanitizer.SanitizeSlot(date)
	slot = sanitizer.SanitizeSlot(slot)

	if hostEmail == "" || date == "" || slot == "" {
		return apperrors.InvalidInput("host_email, date and slot are required")
	}

	existing, err := s.repo.FindSlot(ctx, hostEmail, date, slot)
	if err != nil {
		if errors.Is(err, bookingserrors.ErrNotFound) {
			log.Debug("Slot is available", "host_email", hostEmail, "date", date, "slot", slot)
			return nil
		}
		log.Error("Failed to verify slot availability", "error", err)
		return apperrors.Internal("Internal server error. Please try again.", err)
	}

	log.Info("Requested slot is already taken",
		"host_email", hostEmail,
		"guest_email", sanitizer.SanitizeEmail(guestEmail),
		"date", date,
		"slot", slot,
		"booking_id", existing.ID,
	)
	return apperrors.Conflict(msgSlotTaken)
}

// ResolveParticipantNames looks up the guest, then the host. An unknown guest stops
// the chain before the host lookup.
func (s *bookingService) ResolveParticipantNames(ctx context.Context, guestEmail, hostEmail string) (string, string, error) {
	log := s.opLog(ctx, "resolve_participant_names")

	guestName, err := s.lookupName(ctx, log, sanitizer.SanitizeEmail(guestEmail), "Guest")
	if err != nil {
		return "", "", err
	}

	hostName, err := s.lookupName(ctx, log, sanitizer.SanitizeEmail(hostEmail), "Host")
	if err != nil {
		return "", "", err
	}

	return guestName, hostName, nil
}

func (s *bookingService) lookupName(ctx context.Context, log *logger.Logger, email, role string) (string, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, userserrors.ErrNotFound) {
			log.Info("Participant not found", "role", role, "email", email)
			return "", apperrors.NotFound(role)
		}
		log.Error("Failed to look up participant", "role", role, "error", err)
		return "", apperrors.Internal("Internal server error. Please try again.", err)
	}
	return user.Name, nil
}

// CreateBooking persists booking as given. It does not re-check availability; only the
// optional unique slot index can turn a double booking into a conflict here.
func (s *bookingService) CreateBooking(ctx context.Context, booking *model.Booking) error {
	log := s.opLog(ctx, "create_booking")

	if err := s.repo.Create(ctx, booking); err != nil {
		if errors.Is(err, bookingserrors.ErrSlotTaken) {
			log.Info("Slot taken by a concurrent booking",
				"host_email", booking.HostEmail,
				"date", booking.Date,
				"slot", booking.Slot,
			)
			return apperrors.Conflict(msgSlotTaken)
		}
		log.Error("Appointment booking failed", "error", err)
		return apperrors.Internal("Internal server error. Please try again.", err)
	}

	log.Info("Appointment successfully booked",
		"id", booking.ID,
		"host_email", booking.HostEmail,
		"date", booking.Date,
		"slot", booking.Slot,
	)
	s.publisher.Publish(ctx, events.BookingCreated, booking.HostEmail, booking)
	return nil
}

// BookAppointment runs check, name resolution and creation in sequence. The first
// failure is returned as is.
func (s *bookingService) BookAppointment(ctx context.Context, req *model.BookingRequest) (*model.Booking, error) {
	sanitizeRequest(req)
	if err := s.validator.ValidateRequest(req); err != nil {
		return nil, s.validationError(ctx, "book_appointment", err)
	}

	if err := s.CheckSlotAvailability(ctx, req.GuestEmail, req.HostEmail, req.Date, req.Slot); err != nil {
		return nil, err
	}

	guestName, hostName, err := s.ResolveParticipantNames(ctx, req.GuestEmail, req.HostEmail)
	if err != nil {
		return nil, err
	}

	booking := &model.Booking{
		GuestEmail: req.GuestEmail,
		GuestName:  guestName,
		HostEmail:  req.HostEmail,
		HostName:   hostName,
		Date:       req.Date,
		Slot:       req.Slot,
		Note:       req.Note,
	}
	if err := s.CreateBooking(ctx, booking); err != nil {
		return nil, err
	}
	return booking, nil
}

// UpdateBooking replaces date, slot, note and any supplied names on a booking hosted by
// callerEmail. An unknown id, a malformed id and a booking hosted by someone else all
// produce the same Unauthorized error.
func (s *bookingService) UpdateBooking(ctx context.Context, id, callerEmail string, update *model.BookingUpdate) error {
	log := s.opLog(ctx, "update_booking")
	callerEmail = sanitizer.SanitizeEmail(callerEmail)
	if callerEmail == "" {
		return apperrors.Unauthorized(msgUnauthorized)
	}

	sanitizeUpdate(update)
	if err := s.validator.ValidateUpdate(update); err != nil {
		return s.validationError(ctx, "update_booking", err)
	}

	matched, err := s.repo.UpdateOwned(ctx, id, callerEmail, update)
	if err != nil {
		switch {
		case errors.Is(err, bookingserrors.ErrInvalidID):
			matched = 0
		case errors.Is(err, bookingserrors.ErrSlotTaken):
			log.Info("Update rejected, slot already booked", "id", id, "date", update.Date, "slot", update.Slot)
			return apperrors.Conflict(msgSlotTaken)
		default:
			log.Error("Appointment update failed", "id", id, "error", err)
			return apperrors.Internal("Internal server error. Please try again.", err)
		}
	}
	if matched == 0 {
		log.Info("Appointment update blocked, user unauthorized", "id", id, "caller_email", callerEmail)
		return apperrors.Unauthorized(msgUnauthorized)
	}

	log.Info("Appointment successfully updated", "id", id)
	s.publisher.Publish(ctx, events.BookingUpdated, callerEmail, events.Updated{
		ID:        id,
		HostEmail: callerEmail,
		Date:      update.Date,
		Slot:      update.Slot,
		Note:      update.Note,
	})
	return nil
}

// DeleteBooking physically removes a booking hosted by callerEmail, with the same
// ownership rule as UpdateBooking.
func (s *bookingService) DeleteBooking(ctx context.Context, id, callerEmail string) error {
	log := s.opLog(ctx, "delete_booking")
	callerEmail = sanitizer.SanitizeEmail(callerEmail)
	if callerEmail == "" {
		return apperrors.Unauthorized(msgUnauthorized)
	}

	deleted, err := s.repo.DeleteOwned(ctx, id, callerEmail)
	if err != nil && !errors.Is(err, bookingserrors.ErrInvalidID) {
		log.Error("Appointment deletion failed", "id", id, "error", err)
		return apperrors.Internal("Internal server error. Please try again.", err)
	}
	if deleted == 0 {
		log.Info("Appointment deletion blocked, user unauthorized", "id", id, "caller_email", callerEmail)
		return apperrors.Unauthorized(msgUnauthorized)
	}

	log.Info("Appointment successfully deleted", "id", id)
	s.publisher.Publish(ctx, events.BookingDeleted, callerEmail, events.Deleted{
		ID:        id,
		HostEmail: callerEmail,
	})
	return nil
}

func (s *bookingService) ListHosted(ctx context.Context, hostEmail string) ([]*model.Booking, error) {
	return s.list(ctx, "get_hosted_appointments", hostEmail, s.repo.FindByHost)
}

func (s *bookingService) ListGuest(ctx context.Context, guestEmail string) ([]*model.Booking, error) {
	return s.list(ctx, "get_guest_appointments", guestEmail, s.repo.FindByGuest)
}

func (s *bookingService) list(
	ctx context.Context,
	operation, email string,
	find func(context.Context, string) ([]*model.Booking, error),
) ([]*model.Booking, error) {
	log := s.opLog(ctx, operation)
	email = sanitizer.SanitizeEmail(email)
	if email == "" {
		return nil, apperrors.InvalidInput("email is required")
	}

	bookings, err := find(ctx, email)
	if err != nil {
		log.Error("Fetching appointments failed", "email", email, "error", err)
		return nil, apperrors.Internal("Internal server error. Please try again.", err)
	}

	log.Debug("Appointments fetched", "email", email, "count", len(bookings))
	return bookings, nil
}

// ListAll fetches every booking userEmail takes part in with a single query and splits
// it locally. By role, a booking lands in Hosted when userEmail is its host, otherwise in
// Guest. By time, bookings dated before today are Past, the rest Upcoming.
func (s *bookingService) ListAll(ctx context.Context, userEmail string, partition model.Partition) (*model.PartitionedBookings, error) {
	if partition == "" {
		partition = model.PartitionByRole
	}
	if partition != model.PartitionByRole && partition != model.PartitionByTime {
		return nil, apperrors.InvalidInput("partition must be one of: role, time")
	}

	bookings, err := s.list(ctx, "get_all_appointments", userEmail, s.repo.FindByParticipant)
	if err != nil {
		return nil, err
	}
	userEmail = sanitizer.SanitizeEmail(userEmail)

	result := &model.PartitionedBookings{Partition: partition}
	switch partition {
	case model.PartitionByRole:
		result.Hosted, result.Guest = partitionByRole(bookings, userEmail)
	case model.PartitionByTime:
		result.Past, result.Upcoming = partitionByDate(bookings, s.now().Format(model.DateLayout))
	}
	return result, nil
}

func partitionByRole(bookings []*model.Booking, userEmail string) (hosted, guest []*model.Booking) {
	hosted = make([]*model.Booking, 0)
	guest = make([]*model.Booking, 0)
	for _, b := range bookings {
		if b.HostEmail == userEmail {
			hosted = append(hosted, b)
		} else {
			guest = append(guest, b)
		}
	}
	return hosted, guest
}

// partitionByDate compares YYYY-MM-DD strings, whose lexical order is calendar order.
func partitionByDate(bookings []*model.Booking, today string) (past, upcoming []*model.Booking) {
	past = make([]*model.Booking, 0)
	upcoming = make([]*model.Booking, 0)
	for _, b := range bookings {
		if b.Date < today {
			past = append(past, b)
		} else {
			upcoming = append(upcoming, b)
		}
	}
	return past, upcoming
}

// FetchTodayTomorrowSlots returns the slots the caller is booked into today and tomorrow
// (local server time), alongside the caller's own name, email and available slots.
func (s *bookingService) FetchTodayTomorrowSlots(ctx context.Context, caller model.Caller) (*model.DailySlots, error) {
	log := s.opLog(ctx, "fetch_today_tomorrow_slots")
	email := sanitizer.SanitizeEmail(caller.Email)
	if email == "" {
		return nil, apperrors.Unauthorized("Caller identity is required")
	}

	now := s.now()
	today := now.Format(model.DateLayout)
	tomorrow := now.AddDate(0, 0, 1).Format(model.DateLayout)

	bookings, err := s.repo.FindByParticipantOnDates(ctx, email, []string{today, tomorrow})
	if err != nil {
		log.Error("Fetching today and tomorrow slots failed", "error", err)
		return nil, apperrors.Internal("Internal server error. Please try again.", err)
	}

	result := &model.DailySlots{
		Name:           caller.Name,
		Email:          email,
		AvailableSlots: caller.AvailableSlots,
		Today:          today,
		Tomorrow:       tomorrow,
		TodaySlots:     make([]string, 0),
		TomorrowSlots:  make([]string, 0),
	}
	if result.AvailableSlots == nil {
		result.AvailableSlots = make([]string, 0)
	}
	for _, b := range bookings {
		switch b.Date {
		case today:
			result.TodaySlots = append(result.TodaySlots, b.Slot)
		case tomorrow:
			result.TomorrowSlots = append(result.TomorrowSlots, b.Slot)
		}
	}

	log.Debug("Today and tomorrow slots fetched",
		"today_count", len(result.TodaySlots),
		"tomorrow_count", len(result.TomorrowSlots),
	)
	return result, nil
}

// --- Helpers ---

func sanitizeRequest(req *model.BookingRequest) {
	req.GuestEmail = sanitizer.SanitizeEmail(req.GuestEmail)
	req.HostEmail = sanitizer.SanitizeEmail(req.HostEmail)
	req.Date = sanitizer.SanitizeSlot(req.Date)
	req.Slot = sanitizer.SanitizeSlot(req.Slot)
	req.Note = sanitizer.SanitizeText(req.Note)
}

func sanitizeUpdate(update *model.BookingUpdate) {
	update.GuestName = sanitizer.SanitizeText(update.GuestName)
	update.HostName = sanitizer.SanitizeText(update.HostName)
	update.Date = sanitizer.SanitizeSlot(update.Date)
	update.Slot = sanitizer.SanitizeSlot(update.Slot)
	update.Note = sanitizer.SanitizeText(update.Note)
}

func (s *bookingService) validationError(ctx context.Context, operation string, err error) error {
	s.opLog(ctx, operation).Info("Booking validation failed", "error", err)

	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		return apperrors.Validation("Booking validation failed", validationErrs.Details())
	}
	return apperrors.Validation("Booking validation failed", map[string]any{"error": err.Error()})
}
