package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"slotly/internal/bookings/service"
	userserrors "slotly/internal/users/errors"
	usersrepository "slotly/internal/users/repository"
	apperrors "slotly/pkg/errors"
	httputil "slotly/pkg/http"
	"slotly/pkg/logger"
	"slotly/pkg/middleware"
	"slotly/pkg/model"
	"slotly/pkg/sanitizer"

	"github.com/julienschmidt/httprouter"
)

type BookingHandler struct {
	service   service.BookingService
	users     usersrepository.UserDirectory
	jwtSecret string
	log       *logger.Logger
}

func NewBookingHandler(service service.BookingService, users usersrepository.UserDirectory, jwtSecret string, log *logger.Logger) *BookingHandler {
	return &BookingHandler{
		service:   service,
		users:     users,
		jwtSecret: jwtSecret,
		log:       log,
	}
}

func (h *BookingHandler) Book(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.BookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, r, "Book", apperrors.InvalidInput("Invalid request body"))
		return
	}

	booking, err := h.service.BookAppointment(r.Context(), &req)
	if err != nil {
		h.writeError(w, r, "Book", err)
		return
	}

	if err := httputil.WriteCreated(w, "Appointment successfully booked", booking); err != nil {
		h.log.Error("failed to write created response", "handler", "Book", "operation", "WriteCreated", "error", err)
	}
}

func (h *BookingHandler) Availability(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	query := r.URL.Query()

	err := h.service.CheckSlotAvailability(r.Context(),
		query.Get("guest_email"),
		query.Get("host_email"),
		query.Get("date"),
		query.Get("slot"),
	)
	if err != nil {
		h.writeError(w, r, "Availability", err)
		return
	}

	if err := httputil.WriteSuccess(w, "The requested slot is available", map[string]bool{"available": true}); err != nil {
		h.log.Error("failed to write success response", "handler", "Availability", "operation", "WriteSuccess", "error", err)
	}
}

func (h *BookingHandler) Update(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	caller, _ := middleware.CallerEmailFromContext(r.Context())

	var update model.BookingUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		h.writeError(w, r, "Update", apperrors.InvalidInput("Invalid request body"))
		return
	}

	if err := h.service.UpdateBooking(r.Context(), ps.ByName("id"), caller, &update); err != nil {
		h.writeError(w, r, "Update", err)
		return
	}

	if err := httputil.WriteSuccess(w, "Appointment successfully updated", nil); err != nil {
		h.log.Error("failed to write success response", "handler", "Update", "operation", "WriteSuccess", "error", err)
	}
}

func (h *BookingHandler) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	caller, _ := middleware.CallerEmailFromContext(r.Context())

	if err := h.service.DeleteBooking(r.Context(), ps.ByName("id"), caller); err != nil {
		h.writeError(w, r, "Delete", err)
		return
	}

	httputil.WriteNoContent(w)
}

func (h *BookingHandler) Hosted(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	bookings, err := h.service.ListHosted(r.Context(), ps.ByName("email"))
	if err != nil {
		h.writeError(w, r, "Hosted", err)
		return
	}

	if err := httputil.WriteSuccess(w, "Hosted appointments successfully fetched", bookings); err != nil {
		h.log.Error("failed to write success response", "handler", "Hosted", "operation", "WriteSuccess", "error", err)
	}
}

func (h *BookingHandler) Guest(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	bookings, err := h.service.ListGuest(r.Context(), ps.ByName("email"))
	if err != nil {
		h.writeError(w, r, "Guest", err)
		return
	}

	if err := httputil.WriteSuccess(w, "Guest appointments successfully fetched", bookings); err != nil {
		h.log.Error("failed to write success response", "handler", "Guest", "operation", "WriteSuccess", "error", err)
	}
}

func (h *BookingHandler) All(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	partition := model.Partition(r.URL.Query().Get("partition"))

	result, err := h.service.ListAll(r.Context(), ps.ByName("email"), partition)
	if err != nil {
		h.writeError(w, r, "All", err)
		return
	}

	if err := httputil.WriteSuccess(w, "All appointments of user successfully fetched", result); err != nil {
		h.log.Error("failed to write success response", "handler", "All", "operation", "WriteSuccess", "error", err)
	}
}

func (h *BookingHandler) Slots(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	caller, err := h.resolveCaller(r)
	if err != nil {
		h.writeError(w, r, "Slots", err)
		return
	}

	slots, err := h.service.FetchTodayTomorrowSlots(r.Context(), caller)
	if err != nil {
		h.writeError(w, r, "Slots", err)
		return
	}

	if err := httputil.WriteSuccess(w, "Today and tomorrow slots successfully fetched", slots); err != nil {
		h.log.Error("failed to write success response", "handler", "Slots", "operation", "WriteSuccess", "error", err)
	}
}

// resolveCaller turns the authenticated email into the caller's directory entry.
// A token for a user the directory does not know is treated as unauthorized.
func (h *BookingHandler) resolveCaller(r *http.Request) (model.Caller, error) {
	email, ok := middleware.CallerEmailFromContext(r.Context())
	email = sanitizer.SanitizeEmail(email)
	if !ok || email == "" {
		return model.Caller{}, apperrors.Unauthorized("Caller identity is required")
	}

	user, err := h.users.FindByEmail(r.Context(), email)
	if err != nil {
		if errors.Is(err, userserrors.ErrNotFound) {
			return model.Caller{}, apperrors.Unauthorized("Caller identity is required")
		}
		logger.FromContext(r.Context(), h.log).Error("Failed to resolve caller", "operation", "resolve_caller", "error", err)
		return model.Caller{}, apperrors.Internal("Internal server error. Please try again.", err)
	}
	return user.Caller(), nil
}

func (h *BookingHandler) writeError(w http.ResponseWriter, r *http.Request, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		logger.FromContext(r.Context(), h.log).Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func (h *BookingHandler) RegisterRoutes(router *httprouter.Router) {
	requireIdentity := middleware.RequireIdentity(h.jwtSecret, h.log)

	router.POST("/api/v1/bookings", h.Book)
	router.GET("/api/v1/bookings/availability", h.Availability)
	router.PUT("/api/v1/bookings/id/:id", requireIdentity(h.Update))
	router.DELETE("/api/v1/bookings/id/:id", requireIdentity(h.Delete))
	router.GET("/api/v1/bookings/hosted/:email", h.Hosted)
	router.GET("/api/v1/bookings/guest/:email", h.Guest)
	router.GET("/api/v1/bookings/all/:email", h.All)
	router.GET("/api/v1/bookings/slots", requireIdentity(h.Slots))
}
