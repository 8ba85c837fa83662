package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/shareeat/shareeat/internal/models"
	"github.com/shareeat/shareeat/internal/repository"
	"github.com/shareeat/shareeat/internal/service"
	"github.com/sirupsen/logrus"
)

// Server provides the HTTP API.
type Server struct {
	svc    *service.Service
	logger *logrus.Logger
	mux    *http.ServeMux
}

// NewServer creates a Server, registers all routes, and returns it.
func NewServer(svc *service.Service, logger *logrus.Logger) *Server {
	s := &Server{svc: svc, logger: logger, mux: http.NewServeMux()}
	s.routes()
	return s
}

// Handler returns the http.Handler that can be passed to http.Server.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// ---------------------------------------------------------------------------
// Routes
// ---------------------------------------------------------------------------

func (s *Server) routes() {
	// API – Food items
	s.mux.HandleFunc("POST /api/items", s.handleCreateItem)
	s.mux.HandleFunc("GET /api/items", s.handleListItems)
	s.mux.HandleFunc("GET /api/items/urgent", s.handleUrgentItems)
	s.mux.HandleFunc("GET /api/items/prioritized", s.handlePrioritizedItems)
	s.mux.HandleFunc("GET /api/items/{id}/matches", s.handleFindMatches)
	s.mux.HandleFunc("POST /api/items/{id}/request", s.handleRequestItem)

	// API – Donations
	s.mux.HandleFunc("GET /api/donations", s.handleListDonations)
	s.mux.HandleFunc("GET /api/donations/{id}", s.handleGetDonation)
	s.mux.HandleFunc("POST /api/donations/{id}/confirm", s.handleConfirmDonation)
	s.mux.HandleFunc("POST /api/donations/{id}/pickup", s.handlePickupDonation)
	s.mux.HandleFunc("POST /api/donations/{id}/transit", s.handleTransitDonation)
	s.mux.HandleFunc("POST /api/donations/{id}/delivered", s.handleDeliveredDonation)
	s.mux.HandleFunc("POST /api/donations/{id}/receipt", s.handleConfirmReceipt)
	s.mux.HandleFunc("POST /api/donations/{id}/cancel", s.handleCancelDonation)
	s.mux.HandleFunc("POST /api/donations/{id}/resolve", s.handleResolveDonation)

	// API – Delivery requests
	s.mux.HandleFunc("GET /api/requests", s.handleListRequests)
	s.mux.HandleFunc("POST /api/requests/{id}/accept", s.handleAcceptRequest)
	s.mux.HandleFunc("POST /api/requests/{id}/reject", s.handleRejectRequest)

	// API – Directory
	s.mux.HandleFunc("GET /api/recipients", s.handleListRecipients)
	s.mux.HandleFunc("GET /api/volunteers", s.handleListVolunteers)

	// API – Notifications
	s.mux.HandleFunc("GET /api/notifications", s.handleGetNotifications)
	s.mux.HandleFunc("PUT /api/notifications/{id}/read", s.handleMarkNotificationRead)

	s.mux.HandleFunc("GET /api/stats", s.handleStats)
	s.mux.HandleFunc("GET /healthz", s.handleHealth)
}

// ---------------------------------------------------------------------------
// JSON helpers
// ---------------------------------------------------------------------------

func (s *Server) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			s.logger.WithError(err).Error("failed to encode JSON response")
		}
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}

// respondServiceError translates service-layer failures to HTTP status
// codes. Guard rejections map to 409, authorization guards to 403,
// validation failures to 422, missing entities to 404, and anything
// else is treated as an infrastructure error.
func (s *Server) respondServiceError(w http.ResponseWriter, err error, action string) {
	var guard *service.GuardError
	var invalid *service.ValidationError
	switch {
	case errors.As(err, &guard):
		status := http.StatusConflict
		if guard.Code == service.ReasonForbidden {
			status = http.StatusForbidden
		}
		s.respondJSON(w, status, guard)
	case errors.As(err, &invalid):
		s.respondJSON(w, http.StatusUnprocessableEntity, invalid)
	case errors.Is(err, service.ErrNotFound):
		s.respondError(w, http.StatusNotFound, "not found")
	default:
		s.logger.WithError(err).Errorf("failed to %s", action)
		s.respondError(w, http.StatusInternalServerError, fmt.Sprintf("failed to %s", action))
	}
}

// decodeJSON reads the request body into dst and returns an error message on
// failure.  The caller should return immediately when ok == false.
func (s *Server) decodeJSON(r *http.Request, dst any) (ok bool, errMsg string) {
	if r.Body == nil {
		return false, "request body is empty"
	}
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return false, fmt.Sprintf("invalid JSON: %v", err)
	}
	return true, ""
}

// pathID extracts the {id} path value and converts it to int64.
func pathID(r *http.Request) (int64, error) {
	raw := r.PathValue("id")
	if raw == "" {
		return 0, fmt.Errorf("missing id in path")
	}
	return strconv.ParseInt(raw, 10, 64)
}

// requireActor resolves the caller from the X-Actor-Role and X-Actor-ID
// headers.  It writes an error response and returns ok == false when
// either header is absent or invalid.
func (s *Server) requireActor(w http.ResponseWriter, r *http.Request) (models.Actor, bool) {
	role := models.ActorRole(r.Header.Get("X-Actor-Role"))
	switch role {
	case models.RoleDonor, models.RoleRecipient, models.RoleVolunteer, models.RoleAdmin:
	default:
		s.respondError(w, http.StatusBadRequest, "X-Actor-Role header must be donor, recipient, volunteer or admin")
		return models.Actor{}, false
	}

	raw := r.Header.Get("X-Actor-ID")
	if raw == "" {
		s.respondError(w, http.StatusBadRequest, "X-Actor-ID header is required")
		return models.Actor{}, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		s.respondError(w, http.StatusBadRequest, "X-Actor-ID must be a positive integer")
		return models.Actor{}, false
	}

	return models.Actor{Role: role, ProfileID: id}, true
}

// ---------------------------------------------------------------------------
// Food items
// ---------------------------------------------------------------------------

type createItemRequest struct {
	CategoryID   int64   `json:"category_id"`
	Name         string  `json:"name"`
	Description  string  `json:"description"`
	Quantity     float64 `json:"quantity"`
	Unit         string  `json:"unit"`
	Condition    string  `json:"condition"`
	ExpiryDate   string  `json:"expiry_date"`   // RFC 3339
	PickupBefore string  `json:"pickup_before"` // RFC 3339
}

func (s *Server) handleCreateItem(w http.ResponseWriter, r *http.Request) {
	actor, ok := s.requireActor(w, r)
	if !ok {
		return
	}

	var req createItemRequest
	if ok, msg := s.decodeJSON(r, &req); !ok {
		s.respondError(w, http.StatusBadRequest, msg)
		return
	}

	if strings.TrimSpace(req.Name) == "" {
		s.respondError(w, http.StatusBadRequest, "name is required")
		return
	}
	if req.CategoryID == 0 {
		s.respondError(w, http.StatusBadRequest, "category_id is required")
		return
	}
	if req.ExpiryDate == "" {
		s.respondError(w, http.StatusBadRequest, "expiry_date is required")
		return
	}

	expiry, err := time.Parse(time.RFC3339, req.ExpiryDate)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "expiry_date must be RFC 3339 format")
		return
	}

	pickupBefore := expiry
	if req.PickupBefore != "" {
		pickupBefore, err = time.Parse(time.RFC3339, req.PickupBefore)
		if err != nil {
			s.respondError(w, http.StatusBadRequest, "pickup_before must be RFC 3339 format")
			return
		}
	}

	condition := models.FoodConditionGood
	if req.Condition != "" {
		condition = models.FoodCondition(req.Condition)
	}
	unit := req.Unit
	if unit == "" {
		unit = "kg"
	}

	item := &models.FoodItem{
		DonorID:      actor.ProfileID,
		CategoryID:   req.CategoryID,
		Name:         strings.TrimSpace(req.Name),
		Description:  strings.TrimSpace(req.Description),
		Quantity:     req.Quantity,
		Unit:         unit,
		Condition:    condition,
		ExpiryDate:   expiry,
		PickupBefore: pickupBefore,
		IsAvailable:  true,
	}

	created, err := s.svc.CreateFoodItem(r.Context(), actor, item)
	if err != nil {
		s.respondServiceError(w, err, "create food item")
		return
	}

	s.respondJSON(w, http.StatusCreated, created)
}

func (s *Server) handleListItems(w http.ResponseWriter, r *http.Request) {
	items, err := s.svc.AvailableItems(r.Context())
	if err != nil {
		s.respondServiceError(w, err, "list items")
		return
	}
	s.respondJSON(w, http.StatusOK, items)
}

func (s *Server) handleUrgentItems(w http.ResponseWriter, r *http.Request) {
	items, err := s.svc.UrgentItems(r.Context())
	if err != nil {
		s.respondServiceError(w, err, "list urgent items")
		return
	}
	s.respondJSON(w, http.StatusOK, items)
}

func (s *Server) handlePrioritizedItems(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			limit = v
		}
	}

	items, err := s.svc.PrioritizedItems(r.Context(), limit)
	if err != nil {
		s.respondServiceError(w, err, "list prioritized items")
		return
	}
	s.respondJSON(w, http.StatusOK, items)
}

func (s *Server) handleFindMatches(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid food item id")
		return
	}

	maxResults := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			maxResults = v
		}
	}

	matches, err := s.svc.FindMatches(r.Context(), id, maxResults)
	if err != nil {
		s.respondServiceError(w, err, "find matches")
		return
	}
	s.respondJSON(w, http.StatusOK, matches)
}

type requestItemRequest struct {
	Quantity float64 `json:"quantity"`
}

func (s *Server) handleRequestItem(w http.ResponseWriter, r *http.Request) {
	actor, ok := s.requireActor(w, r)
	if !ok {
		return
	}

	id, err := pathID(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid food item id")
		return
	}

	// The body is optional; an empty or absent quantity claims the whole
	// item.
	var req requestItemRequest
	if r.ContentLength > 0 {
		if ok, msg := s.decodeJSON(r, &req); !ok {
			s.respondError(w, http.StatusBadRequest, msg)
			return
		}
	}

	donation, err := s.svc.RequestItem(r.Context(), actor, id, req.Quantity)
	if err != nil {
		s.respondServiceError(w, err, "request food item")
		return
	}

	s.respondJSON(w, http.StatusCreated, donation)
}

// ---------------------------------------------------------------------------
// Donations
// ---------------------------------------------------------------------------

func (s *Server) handleListDonations(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var filters repository.DonationFilters

	if status := q.Get("status"); status != "" {
		st := models.DonationStatus(status)
		filters.Status = &st
	}
	if raw := q.Get("donor_id"); raw != "" {
		if v, err := strconv.ParseInt(raw, 10, 64); err == nil {
			filters.DonorID = &v
		}
	}
	if raw := q.Get("recipient_id"); raw != "" {
		if v, err := strconv.ParseInt(raw, 10, 64); err == nil {
			filters.RecipientID = &v
		}
	}
	if raw := q.Get("volunteer_id"); raw != "" {
		if v, err := strconv.ParseInt(raw, 10, 64); err == nil {
			filters.VolunteerID = &v
		}
	}
	if raw := q.Get("limit"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			filters.Limit = v
		}
	}
	if raw := q.Get("offset"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			filters.Offset = v
		}
	}

	donations, err := s.svc.ListDonations(r.Context(), filters)
	if err != nil {
		s.respondServiceError(w, err, "list donations")
		return
	}

	s.respondJSON(w, http.StatusOK, donations)
}

func (s *Server) handleGetDonation(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid donation id")
		return
	}

	donation, err := s.svc.GetDonation(r.Context(), id)
	if err != nil {
		s.respondServiceError(w, err, "get donation")
		return
	}

	s.respondJSON(w, http.StatusOK, donation)
}

// donationAction factors the shared shape of the lifecycle endpoints:
// resolve the actor and the donation id, run the transition, return the
// updated donation.
func (s *Server) donationAction(w http.ResponseWriter, r *http.Request, action string,
	fn func(actor models.Actor, id int64) (*models.Donation, error)) {

	actor, ok := s.requireActor(w, r)
	if !ok {
		return
	}

	id, err := pathID(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid donation id")
		return
	}

	donation, err := fn(actor, id)
	if err != nil {
		s.respondServiceError(w, err, action)
		return
	}

	s.respondJSON(w, http.StatusOK, donation)
}

func (s *Server) handleConfirmDonation(w http.ResponseWriter, r *http.Request) {
	s.donationAction(w, r, "confirm donation", func(actor models.Actor, id int64) (*models.Donation, error) {
		return s.svc.Confirm(r.Context(), actor, id)
	})
}

func (s *Server) handlePickupDonation(w http.ResponseWriter, r *http.Request) {
	s.donationAction(w, r, "mark donation picked up", func(actor models.Actor, id int64) (*models.Donation, error) {
		return s.svc.MarkPickedUp(r.Context(), actor, id)
	})
}

func (s *Server) handleTransitDonation(w http.ResponseWriter, r *http.Request) {
	s.donationAction(w, r, "mark donation in transit", func(actor models.Actor, id int64) (*models.Donation, error) {
		return s.svc.MarkInTransit(r.Context(), actor, id)
	})
}

func (s *Server) handleDeliveredDonation(w http.ResponseWriter, r *http.Request) {
	s.donationAction(w, r, "mark donation delivered", func(actor models.Actor, id int64) (*models.Donation, error) {
		return s.svc.MarkDelivered(r.Context(), actor, id)
	})
}

type confirmReceiptRequest struct {
	Rating   *int   `json:"rating"`
	Feedback string `json:"feedback"`
}

func (s *Server) handleConfirmReceipt(w http.ResponseWriter, r *http.Request) {
	actor, ok := s.requireActor(w, r)
	if !ok {
		return
	}

	id, err := pathID(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid donation id")
		return
	}

	var req confirmReceiptRequest
	if r.ContentLength > 0 {
		if ok, msg := s.decodeJSON(r, &req); !ok {
			s.respondError(w, http.StatusBadRequest, msg)
			return
		}
	}

	donation, err := s.svc.ConfirmReceipt(r.Context(), actor, id, req.Rating, strings.TrimSpace(req.Feedback))
	if err != nil {
		s.respondServiceError(w, err, "confirm receipt")
		return
	}

	s.respondJSON(w, http.StatusOK, donation)
}

func (s *Server) handleCancelDonation(w http.ResponseWriter, r *http.Request) {
	s.donationAction(w, r, "cancel donation", func(actor models.Actor, id int64) (*models.Donation, error) {
		return s.svc.Cancel(r.Context(), actor, id)
	})
}

type resolveDonationRequest struct {
	Resolution string `json:"resolution"` // completed or cancelled
}

func (s *Server) handleResolveDonation(w http.ResponseWriter, r *http.Request) {
	actor, ok := s.requireActor(w, r)
	if !ok {
		return
	}

	id, err := pathID(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid donation id")
		return
	}

	var req resolveDonationRequest
	if ok, msg := s.decodeJSON(r, &req); !ok {
		s.respondError(w, http.StatusBadRequest, msg)
		return
	}

	donation, err := s.svc.ResolveException(r.Context(), actor, id, models.DonationStatus(req.Resolution))
	if err != nil {
		s.respondServiceError(w, err, "resolve donation")
		return
	}

	s.respondJSON(w, http.StatusOK, donation)
}

// ---------------------------------------------------------------------------
// Delivery requests
// ---------------------------------------------------------------------------

func (s *Server) handleListRequests(w http.ResponseWriter, r *http.Request) {
	actor, ok := s.requireActor(w, r)
	if !ok {
		return
	}
	if actor.Role != models.RoleVolunteer {
		s.respondError(w, http.StatusForbidden, "only volunteers have delivery requests")
		return
	}

	requests, err := s.svc.RequestsForVolunteer(r.Context(), actor.ProfileID)
	if err != nil {
		s.respondServiceError(w, err, "list delivery requests")
		return
	}

	s.respondJSON(w, http.StatusOK, requests)
}

func (s *Server) handleAcceptRequest(w http.ResponseWriter, r *http.Request) {
	actor, ok := s.requireActor(w, r)
	if !ok {
		return
	}

	id, err := pathID(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request id")
		return
	}

	req, err := s.svc.AcceptRequest(r.Context(), actor, id)
	if err != nil {
		s.respondServiceError(w, err, "accept delivery request")
		return
	}

	s.respondJSON(w, http.StatusOK, req)
}

func (s *Server) handleRejectRequest(w http.ResponseWriter, r *http.Request) {
	actor, ok := s.requireActor(w, r)
	if !ok {
		return
	}

	id, err := pathID(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request id")
		return
	}

	req, err := s.svc.RejectRequest(r.Context(), actor, id)
	if err != nil {
		s.respondServiceError(w, err, "reject delivery request")
		return
	}

	s.respondJSON(w, http.StatusOK, req)
}

// ---------------------------------------------------------------------------
// Directory
// ---------------------------------------------------------------------------

func (s *Server) handleListRecipients(w http.ResponseWriter, r *http.Request) {
	recipients, err := s.svc.Recipients(r.Context())
	if err != nil {
		s.respondServiceError(w, err, "list recipients")
		return
	}
	s.respondJSON(w, http.StatusOK, recipients)
}

func (s *Server) handleListVolunteers(w http.ResponseWriter, r *http.Request) {
	volunteers, err := s.svc.Volunteers(r.Context())
	if err != nil {
		s.respondServiceError(w, err, "list volunteers")
		return
	}
	s.respondJSON(w, http.StatusOK, volunteers)
}

// ---------------------------------------------------------------------------
// Notifications
// ---------------------------------------------------------------------------

func (s *Server) handleGetNotifications(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("user_id")
	if raw == "" {
		s.respondError(w, http.StatusBadRequest, "user_id query parameter is required")
		return
	}
	userID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "user_id must be an integer")
		return
	}

	unreadOnly := r.URL.Query().Get("unread") == "true"

	notes, err := s.svc.Notifications(r.Context(), userID, unreadOnly)
	if err != nil {
		s.respondServiceError(w, err, "list notifications")
		return
	}

	s.respondJSON(w, http.StatusOK, notes)
}

func (s *Server) handleMarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid notification id")
		return
	}

	if err := s.svc.MarkNotificationRead(r.Context(), id); err != nil {
		s.respondServiceError(w, err, "mark notification read")
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]string{"status": "read"})
}

// ---------------------------------------------------------------------------
// Stats & health
// ---------------------------------------------------------------------------

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]int64{
		"sweep_cancelled_total": service.SweepCancelledTotal(),
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
