package routes_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BruksfildServices01/vet-scheduler/internal/audit"
	"github.com/BruksfildServices01/vet-scheduler/internal/config"
	"github.com/BruksfildServices01/vet-scheduler/internal/domain"
	"github.com/BruksfildServices01/vet-scheduler/internal/domain/calendar"
	"github.com/BruksfildServices01/vet-scheduler/internal/infra/memory"
	"github.com/BruksfildServices01/vet-scheduler/internal/models"
	"github.com/BruksfildServices01/vet-scheduler/internal/routes"
)

const secret = "test-secret"

// domingo; a agenda de teste abre só na segunda 2026-10-19, 09:00-11:00 UTC
var now = time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)

func init() {
	gin.SetMode(gin.TestMode)
}

type server struct {
	engine *gin.Engine
	store  *memory.Store
	audit  *audit.Dispatcher
	tutor  uuid.UUID
	staff  uuid.UUID
}

func newServer(t *testing.T) *server {
	t.Helper()

	sched, err := calendar.NewSchedule(time.UTC, 15*time.Minute, map[time.Weekday]calendar.DayHours{
		time.Monday: {OpenMin: 9 * 60, CloseMin: 11 * 60},
	})
	require.NoError(t, err)

	cfg := &config.Config{
		JWTSecret:                secret,
		CORSOrigins:              "http://localhost:3000",
		ReturnBatchShelfLifeDays: 30,
	}

	s := memory.New()
	dispatcher := audit.NewDispatcher(audit.New(s), zerolog.Nop(), 50)

	r := gin.New()
	routes.RegisterRoutes(r, routes.Dependencies{
		Config:     cfg,
		Schedule:   sched,
		Runner:     s,
		AuditStore: s,
		Audit:      dispatcher,
		Registry:   prometheus.NewRegistry(),
		Log:        zerolog.Nop(),
		Now:        func() time.Time { return now },
	})

	return &server{engine: r, store: s, audit: dispatcher, tutor: uuid.New(), staff: uuid.New()}
}

func token(t *testing.T, sub uuid.UUID, role string) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  sub.String(),
		"role": role,
		"exp":  time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(secret))
	require.NoError(t, err)
	return tok
}

func (s *server) do(t *testing.T, method, path, bearer string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func (s *server) consult() models.Service {
	return s.store.PutService(models.Service{
		Name:        "Consulta general",
		BasePrice:   decimal.NewFromInt(15000),
		DurationMin: 30,
		Active:      true,
	})
}

func (s *server) pet() models.Pet {
	return s.store.PutPet(models.Pet{TutorID: s.tutor, Name: "Toby", Species: "canine"})
}

func (s *server) book(t *testing.T, svc models.Service, pet models.Pet, start string) *httptest.ResponseRecorder {
	return s.do(t, http.MethodPost, "/api/appointments", token(t, s.tutor, domain.RoleTutor), gin.H{
		"items": []gin.H{{"service_id": svc.ID, "pet_id": pet.ID}},
		"start": start,
	})
}

// ======================================================
// PUBLIC
// ======================================================

func TestHealth(t *testing.T) {
	s := newServer(t)
	w := s.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestClinicHours(t *testing.T) {
	s := newServer(t)

	w := s.do(t, http.MethodGet, "/api/clinic/hours", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	body := decode(t, w)
	assert.Equal(t, "UTC", body["timezone"])
	assert.EqualValues(t, 15, body["granularity_minutes"])
	assert.Len(t, body["hours"], 1)
}

func TestSlots(t *testing.T) {
	s := newServer(t)

	w := s.do(t, http.MethodGet, "/api/slots?date=2026-10-19&duration=30", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 7, decode(t, w)["total"])

	w = s.do(t, http.MethodGet, "/api/slots?date=2026-10-19", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid_duration", decode(t, w)["error_code"])

	w = s.do(t, http.MethodGet, "/api/slots?date=19/10/2026&duration=30", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid_date", decode(t, w)["error_code"])
}

func TestServicesFiltersBySpecies(t *testing.T) {
	s := newServer(t)
	s.consult()
	s.store.PutService(models.Service{
		Name:           "Vacuna triple felina",
		BasePrice:      decimal.NewFromInt(12000),
		DurationMin:    15,
		Active:         true,
		AllowedSpecies: "feline",
	})

	w := s.do(t, http.MethodGet, "/api/services", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 2, decode(t, w)["total"])

	w = s.do(t, http.MethodGet, "/api/services?species=canine", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, decode(t, w)["total"])
}

func TestWebhookWithoutGateway(t *testing.T) {
	s := newServer(t)

	w := s.do(t, http.MethodPost, "/api/webhooks/mercadopago?type=payment&data.id=123", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "payments_disabled", decode(t, w)["error_code"])

	w = s.do(t, http.MethodPost, "/api/webhooks/mercadopago", "", gin.H{"type": "merchant_order"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ignored", decode(t, w)["status"])
}

// ======================================================
// AUTH
// ======================================================

func TestAuthRequired(t *testing.T) {
	s := newServer(t)

	w := s.do(t, http.MethodGet, "/api/me/appointments", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(t, http.MethodGet, "/api/me/appointments", "not-a-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(t, http.MethodGet, "/api/me/appointments", token(t, s.tutor, "admin"), nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestStaffRoutesRejectTutors(t *testing.T) {
	s := newServer(t)

	w := s.do(t, http.MethodGet, "/api/staff/appointments?date=2026-10-19", token(t, s.tutor, domain.RoleTutor), nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(t, http.MethodGet, "/api/staff/appointments?date=2026-10-19", token(t, s.staff, domain.RoleStaff), nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCORS(t *testing.T) {
	s := newServer(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/slots", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodOptions, "/api/slots", nil)
	req.Header.Set("Origin", "http://evil.example")
	w = httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

// ======================================================
// BOOKING FLOW
// ======================================================

func TestBookingFlow(t *testing.T) {
	s := newServer(t)
	svc := s.consult()
	pet := s.pet()

	w := s.book(t, svc, pet, "2026-10-19T09:00:00Z")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	ap := decode(t, w)["appointment"].(map[string]any)
	assert.Equal(t, "PENDING_PAYMENT", ap["status"])
	id := ap["id"].(string)

	// slot ocupado some da consulta pública
	w = s.do(t, http.MethodGet, "/api/slots?date=2026-10-19&duration=30", "", nil)
	assert.EqualValues(t, 5, decode(t, w)["total"])

	// segundo pedido no mesmo horário
	w = s.book(t, svc, pet, "2026-10-19T09:00:00Z")
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "slot_unavailable", decode(t, w)["error_code"])

	w = s.do(t, http.MethodGet, "/api/me/appointments", token(t, s.tutor, domain.RoleTutor), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, decode(t, w)["total"])

	staff := token(t, s.staff, domain.RoleStaff)

	// pagamento registrado pela recepção
	w = s.do(t, http.MethodPatch, "/api/staff/appointments/"+id+"/status", staff, gin.H{
		"status":            "CONFIRMED",
		"amount":            "15000",
		"payment_reference": "POS-001",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "CONFIRMED", decode(t, w)["status"])

	w = s.do(t, http.MethodPatch, "/api/staff/appointments/"+id+"/status", staff, gin.H{"status": "IN_ATTENTION"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = s.do(t, http.MethodPatch, "/api/staff/appointments/"+id+"/status", staff, gin.H{"status": "PENDING_PAYMENT"})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "invalid_transition", decode(t, w)["error_code"])

	w = s.do(t, http.MethodPatch, "/api/staff/appointments/"+id+"/status", staff, gin.H{"status": "FINALIZED"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "FINALIZED", decode(t, w)["status"])

	w = s.do(t, http.MethodGet, "/api/staff/appointments?date=2026-10-19", staff, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, decode(t, w)["total"])

	w = s.do(t, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), "vet_booking_appointments_created_total"))

	// Close drena a fila antes da leitura
	s.audit.Close()
	w = s.do(t, http.MethodGet, "/api/staff/audit-logs?action=appointment_created", staff, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, decode(t, w)["total"])
}

func TestTutorCancelsOwnAppointment(t *testing.T) {
	s := newServer(t)
	svc := s.consult()
	pet := s.pet()

	w := s.book(t, svc, pet, "2026-10-19 10:00")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	id := decode(t, w)["appointment"].(map[string]any)["id"].(string)

	other := token(t, uuid.New(), domain.RoleTutor)
	w = s.do(t, http.MethodPost, "/api/me/appointments/"+id+"/cancel", other, gin.H{"reason": "x"})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "appointment_not_owned_by_requester", decode(t, w)["error_code"])

	w = s.do(t, http.MethodPost, "/api/me/appointments/"+id+"/cancel", token(t, s.tutor, domain.RoleTutor), gin.H{"reason": "viaje"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "CANCELLED", decode(t, w)["status"])
}

func TestBookingValidationErrors(t *testing.T) {
	s := newServer(t)
	tutor := token(t, s.tutor, domain.RoleTutor)

	w := s.do(t, http.MethodPost, "/api/appointments", tutor, gin.H{"start": "2026-10-19T09:00:00Z"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "empty_cart", decode(t, w)["error_code"])

	w = s.do(t, http.MethodPost, "/api/appointments", tutor, gin.H{
		"items": []gin.H{{"service_id": uuid.New()}},
		"start": "2026-10-19T09:00:00Z",
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
	body := decode(t, w)
	assert.Equal(t, "service_not_found", body["error_code"])
	assert.EqualValues(t, 0, body["details"].(map[string]any)["item_index"])

	w = s.do(t, http.MethodPost, "/api/appointments", tutor, gin.H{
		"items": []gin.H{{"service_id": "nope"}},
		"start": "2026-10-19T09:00:00Z",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid_request", decode(t, w)["error_code"])
}

// ======================================================
// STAFF
// ======================================================

func TestBlocksHideSlots(t *testing.T) {
	s := newServer(t)
	staff := token(t, s.staff, domain.RoleStaff)

	w := s.do(t, http.MethodPost, "/api/staff/blocks", staff, gin.H{
		"start":  "2026-10-19 09:00",
		"end":    "2026-10-19 10:00",
		"reason": "Cirugía",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	blockID := decode(t, w)["id"].(string)

	w = s.do(t, http.MethodGet, "/api/slots?date=2026-10-19&duration=30", "", nil)
	assert.EqualValues(t, 3, decode(t, w)["total"])

	w = s.do(t, http.MethodGet, "/api/staff/blocks?from=2026-10-19&to=2026-10-19", staff, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, decode(t, w)["total"])

	w = s.do(t, http.MethodDelete, "/api/staff/blocks/"+blockID, staff, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = s.do(t, http.MethodDelete, "/api/staff/blocks/"+blockID, staff, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestReceiveBatchAndLowStock(t *testing.T) {
	s := newServer(t)
	staff := token(t, s.staff, domain.RoleStaff)

	item := s.store.PutSupplyItem(models.SupplyItem{
		Name:         "Vacuna antirrábica",
		Unit:         "dosis",
		CurrentStock: decimal.Zero,
		MinimumStock: decimal.NewFromInt(5),
	})

	w := s.do(t, http.MethodGet, "/api/staff/supplies/low-stock", staff, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, decode(t, w)["total"])

	w = s.do(t, http.MethodPost, "/api/staff/supplies/"+item.ID.String()+"/batches", staff, gin.H{
		"lot_code":   "L-2026-01",
		"expires_at": "2027-06-30",
		"quantity":   "10",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = s.do(t, http.MethodGet, "/api/staff/supplies/low-stock", staff, nil)
	assert.EqualValues(t, 0, decode(t, w)["total"])
}

func TestUpdatePrerequisitesRejectsCycle(t *testing.T) {
	s := newServer(t)
	staff := token(t, s.staff, domain.RoleStaff)
	a := s.consult()
	b := s.store.PutService(models.Service{Name: "Cirugía", BasePrice: decimal.NewFromInt(90000), DurationMin: 60, Active: true})

	w := s.do(t, http.MethodPut, "/api/staff/services/"+b.ID.String()+"/prerequisites", staff, gin.H{
		"prerequisites": []gin.H{{"required_service_id": a.ID}},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = s.do(t, http.MethodPut, "/api/staff/services/"+a.ID.String()+"/prerequisites", staff, gin.H{
		"prerequisites": []gin.H{{"required_service_id": b.ID}},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "prerequisite_cycle", decode(t, w)["error_code"])
}
