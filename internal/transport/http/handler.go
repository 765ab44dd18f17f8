package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	accountapp "github.com/railbook-io/railbook/internal/account/application"
	accountdomain "github.com/railbook-io/railbook/internal/account/domain"
	bookingapp "github.com/railbook-io/railbook/internal/booking/application"
	inventoryapp "github.com/railbook-io/railbook/internal/inventory/application"
	inventorydomain "github.com/railbook-io/railbook/internal/inventory/domain"
	"github.com/railbook-io/railbook/internal/outcome"
	"github.com/railbook-io/railbook/internal/session"
)

// Liveness is the slice of the persistence gateway the health probe
// needs.
type Liveness interface {
	IsConnected(ctx context.Context) bool
}

type Handler struct {
	log      *slog.Logger
	accounts *accountapp.Service
	trains   *inventoryapp.Service
	bookings *bookingapp.Service
	orch     *bookingapp.Orchestrator
	sessions *session.Manager
	gateway  Liveness
	tracer   trace.Tracer
}

func NewHandler(
	log *slog.Logger,
	accounts *accountapp.Service,
	trains *inventoryapp.Service,
	bookings *bookingapp.Service,
	orch *bookingapp.Orchestrator,
	sessions *session.Manager,
	gateway Liveness,
) *Handler {
	return &Handler{
		log:      log,
		accounts: accounts,
		trains:   trains,
		bookings: bookings,
		orch:     orch,
		sessions: sessions,
		gateway:  gateway,
		tracer:   otel.Tracer("railbook-http"),
	}
}

func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()

	r.Get("/health", h.health)
	r.Post("/api/register", h.register)
	r.Post("/api/auth/{role}/login", h.login)
	r.Post("/api/auth/{role}/logout", h.logout)

	// Train reads are open to any authenticated role.
	r.Group(func(r chi.Router) {
		r.Use(h.requireAny(accountdomain.RoleCustomer, accountdomain.RoleAdmin))
		r.Get("/api/trains", h.listTrains)
		r.Get("/api/trains/search", h.searchTrains)
		r.Get("/api/trains/{number}", h.getTrain)
	})

	// Inventory and account administration.
	r.Group(func(r chi.Router) {
		r.Use(h.requireAny(accountdomain.RoleAdmin))
		r.Post("/api/trains", h.addTrain)
		r.Put("/api/trains/{number}", h.updateTrain)
		r.Delete("/api/trains/{number}", h.deleteTrain)
		r.Get("/api/accounts", h.listAccounts)
		r.Delete("/api/accounts/{email}", h.deleteAccount)
	})

	// Customer booking flow and profile.
	r.Group(func(r chi.Router) {
		r.Use(h.requireAny(accountdomain.RoleCustomer))
		r.Post("/api/bookings/stage", h.stageBooking)
		r.Post("/api/bookings/confirm", h.confirmBooking)
		r.Get("/api/bookings", h.bookingHistory)
		r.Put("/api/profile", h.updateProfile)
		r.Put("/api/password", h.changePassword)
	})

	return r
}

type ctxKey int

const sessionKey ctxKey = 0

// requireAny admits a request carrying a live session for any of the
// given roles; otherwise the uniform session-expired failure.
func (h *Handler) requireAny(roles ...accountdomain.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for _, role := range roles {
				rec, err := h.sessions.Validate(r.Context(), r, role)
				if err == nil {
					token, _ := h.sessions.Token(r, role)
					ctx := withSession(r.Context(), sessionInfo{record: rec, token: token})
					next.ServeHTTP(w, r.WithContext(ctx))
					return
				}
			}
			writeError(w, &outcome.Error{
				StatusCode: outcome.Unauthorized.Status(),
				ErrorCode:  outcome.Unauthorized.String(),
				Message:    session.ExpiredMessage,
			})
		})
	}
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if h.gateway.IsConnected(r.Context()) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"UP"}`))
		return
	}
	w.WriteHeader(http.StatusInternalServerError)
	_, _ = w.Write([]byte(`{"status":"DOWN"}`))
}

type registerReq struct {
	Email     string `json:"mailid"`
	Password  string `json:"password"`
	FirstName string `json:"fname"`
	LastName  string `json:"lname"`
	Address   string `json:"addr"`
	Phone     int64  `json:"phno"`
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "Register")
	defer span.End()

	var req registerReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, outcome.FromCode(outcome.BadRequest))
		return
	}
	if req.Email == "" || req.Password == "" {
		writeError(w, outcome.FromCode(outcome.BadRequest))
		return
	}
	a := accountdomain.Account{
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Address:   req.Address,
		Phone:     req.Phone,
		Role:      accountdomain.RoleCustomer,
	}
	if err := h.accounts.Register(ctx, a, req.Password); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"result": outcome.Success.String()})
}

type loginReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "Login")
	defer span.End()

	role, ok := accountdomain.ParseRole(chi.URLParam(r, "role"))
	if !ok {
		writeError(w, outcome.FromCode(outcome.BadRequest))
		return
	}
	var req loginReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, outcome.FromCode(outcome.BadRequest))
		return
	}

	a, err := h.sessions.Login(ctx, w, role, req.Username, req.Password)
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"result": session.LoginResult(err)})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"result":   session.LoginResult(nil),
		"username": a.FirstName,
	})
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	role, ok := accountdomain.ParseRole(chi.URLParam(r, "role"))
	if !ok {
		writeError(w, outcome.FromCode(outcome.BadRequest))
		return
	}
	h.sessions.Logout(r.Context(), w, r, role)
	writeJSON(w, http.StatusOK, map[string]string{"result": outcome.Success.String()})
}

type trainReq struct {
	Number   int64   `json:"tr_no"`
	Name     string  `json:"tr_name"`
	From     string  `json:"from_stn"`
	To       string  `json:"to_stn"`
	Capacity int     `json:"total_seats"`
	Seats    int     `json:"seats"`
	Fare     float64 `json:"fare"`
}

func (t trainReq) toDomain() inventorydomain.Train {
	return inventorydomain.Train{
		Number:      t.Number,
		Name:        t.Name,
		FromStation: t.From,
		ToStation:   t.To,
		Capacity:    t.Capacity,
		Available:   t.Seats,
		Fare:        t.Fare,
	}
}

func trainJSON(t inventorydomain.Train) map[string]any {
	return map[string]any{
		"tr_no":       t.Number,
		"tr_name":     t.Name,
		"from_stn":    t.FromStation,
		"to_stn":      t.ToStation,
		"total_seats": t.Capacity,
		"seats":       t.Available,
		"fare":        t.Fare,
	}
}

func (h *Handler) addTrain(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "AddTrain")
	defer span.End()

	var req trainReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, outcome.FromCode(outcome.BadRequest))
		return
	}
	if err := h.trains.Add(ctx, req.toDomain()); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"result": outcome.Success.String()})
}

func (h *Handler) updateTrain(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "UpdateTrain")
	defer span.End()

	number, err := strconv.ParseInt(chi.URLParam(r, "number"), 10, 64)
	if err != nil {
		writeError(w, outcome.New("invalid train number"))
		return
	}
	var req trainReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, outcome.FromCode(outcome.BadRequest))
		return
	}
	req.Number = number
	if err := h.trains.Update(ctx, req.toDomain()); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"result": outcome.Success.String()})
}

func (h *Handler) deleteTrain(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "DeleteTrain")
	defer span.End()

	number, err := strconv.ParseInt(chi.URLParam(r, "number"), 10, 64)
	if err != nil {
		writeError(w, outcome.New("invalid train number"))
		return
	}
	if err := h.trains.Delete(ctx, number); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"result": outcome.Success.String()})
}

func (h *Handler) getTrain(w http.ResponseWriter, r *http.Request) {
	number, err := strconv.ParseInt(chi.URLParam(r, "number"), 10, 64)
	if err != nil {
		writeError(w, outcome.New("invalid train number"))
		return
	}
	t, err := h.trains.GetByNumber(r.Context(), number)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, trainJSON(t))
}

func (h *Handler) listTrains(w http.ResponseWriter, r *http.Request) {
	trains, err := h.trains.GetAll(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]map[string]any, 0, len(trains))
	for _, t := range trains {
		out = append(out, trainJSON(t))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) searchTrains(w http.ResponseWriter, r *http.Request) {
	from := r.URL.Query().Get("from")
	to := r.URL.Query().Get("to")
	if from == "" || to == "" {
		writeError(w, outcome.FromCode(outcome.BadRequest))
		return
	}
	trains, err := h.trains.GetBetweenStations(r.Context(), from, to)
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]map[string]any, 0, len(trains))
	for _, t := range trains {
		out = append(out, trainJSON(t))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) listAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.accounts.GetAll(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]map[string]any, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, map[string]any{
			"mailid": a.Email,
			"fname":  a.FirstName,
			"lname":  a.LastName,
			"addr":   a.Address,
			"phno":   a.Phone,
			"role":   string(a.Role),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) deleteAccount(w http.ResponseWriter, r *http.Request) {
	email := chi.URLParam(r, "email")
	if err := h.accounts.Delete(r.Context(), email); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"result": outcome.Success.String()})
}

type stageReq struct {
	TrainNumber string `json:"trainnumber"`
	Seats       string `json:"seats"`
	Class       string `json:"class"`
	JourneyDate string `json:"journeydate"`
}

func (h *Handler) stageBooking(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "StageBooking")
	defer span.End()

	var req stageReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, outcome.FromCode(outcome.BadRequest))
		return
	}
	number, err := strconv.ParseInt(req.TrainNumber, 10, 64)
	if err != nil {
		writeError(w, outcome.New("invalid train number"))
		return
	}
	seats, err := strconv.Atoi(req.Seats)
	if err != nil {
		writeError(w, outcome.New("invalid seat count"))
		return
	}

	info := sessionFrom(ctx)
	staged := bookingapp.StagedBooking{
		TrainNumber: number,
		Seats:       seats,
		Class:       req.Class,
		JourneyDate: req.JourneyDate,
	}
	if err := h.orch.Stage(ctx, info.token, staged); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"result": outcome.Success.String()})
}

func (h *Handler) confirmBooking(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "ConfirmBooking")
	defer span.End()

	traceparent := r.Header.Get("traceparent")
	if traceparent == "" {
		carrier := propagation.MapCarrier{}
		otel.GetTextMapPropagator().Inject(ctx, carrier)
		traceparent = carrier["traceparent"]
	}

	info := sessionFrom(ctx)
	transID, err := h.orch.Confirm(ctx, info.token, info.record.Email, traceparent)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"result":  outcome.Success.String(),
		"transid": transID,
	})
}

func (h *Handler) bookingHistory(w http.ResponseWriter, r *http.Request) {
	info := sessionFrom(r.Context())
	records, err := h.bookings.GetAllByAccount(r.Context(), info.record.Email)
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]map[string]any, 0, len(records))
	for _, rec := range records {
		out = append(out, map[string]any{
			"transid":  rec.TransactionID,
			"mailid":   rec.Email,
			"tr_no":    rec.TrainNumber,
			"date":     rec.JourneyDate,
			"from_stn": rec.FromStation,
			"to_stn":   rec.ToStation,
			"seats":    rec.Seats,
			"amount":   rec.Amount,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

type profileReq struct {
	FirstName string `json:"fname"`
	LastName  string `json:"lname"`
	Address   string `json:"addr"`
	Phone     int64  `json:"phno"`
}

func (h *Handler) updateProfile(w http.ResponseWriter, r *http.Request) {
	var req profileReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, outcome.FromCode(outcome.BadRequest))
		return
	}
	info := sessionFrom(r.Context())
	a := accountdomain.Account{
		Email:     info.record.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Address:   req.Address,
		Phone:     req.Phone,
		Role:      accountdomain.RoleCustomer,
	}
	if err := h.accounts.Update(r.Context(), a); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"result": outcome.Success.String()})
}

type passwordReq struct {
	OldPassword string `json:"oldpassword"`
	NewPassword string `json:"newpassword"`
}

func (h *Handler) changePassword(w http.ResponseWriter, r *http.Request) {
	var req passwordReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, outcome.FromCode(outcome.BadRequest))
		return
	}
	info := sessionFrom(r.Context())
	if err := h.accounts.ChangePassword(r.Context(), info.record.Email, req.OldPassword, req.NewPassword); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"result": outcome.Success.String()})
}
