package httpserver

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"minihotel/internal/app"
	"minihotel/internal/domain"
)

type Handlers struct {
	Catalog  *app.CatalogService
	Sessions *app.SessionStore
	Settler  domain.Settler
}

var validate = validator.New()

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })

	s.mux.Get("/v1/rooms", h.listRooms)
	s.mux.Get("/v1/rooms/{id}", h.getRoom)

	s.mux.Post("/v1/sessions", h.createSession)
	s.mux.Route("/v1/sessions/{sid}", func(r chi.Router) {
		r.Get("/", h.getSession)
		r.Post("/search", h.search)
		r.Post("/room", h.selectRoom)
		r.Post("/booking", h.startBooking)
		r.Patch("/booking", h.updateBooking)
		r.Post("/booking/submit", h.submitBooking)
		r.Patch("/payment", h.enterCard)
		r.Post("/payment/submit", h.submitPayment)
		r.Post("/cancel", h.cancel)
	})
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

// writeErr maps domain errors onto problem responses.
func writeErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeProblem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, domain.ErrIncomplete),
		errors.Is(err, domain.ErrDateNotSelectable),
		errors.Is(err, domain.ErrGuestsOutOfRange):
		writeProblem(w, http.StatusUnprocessableEntity, "Unprocessable Entity", err.Error())
	case errors.Is(err, domain.ErrInvalidTransition),
		errors.Is(err, domain.ErrOutOfOrder),
		errors.Is(err, domain.ErrSettlementInProgress):
		writeProblem(w, http.StatusConflict, "Conflict", err.Error())
	case errors.Is(err, domain.ErrSearchUnsupported):
		writeProblem(w, http.StatusNotImplemented, "Not Implemented", err.Error())
	default:
		log.Error().Err(err).Msg("unhandled error")
		writeProblem(w, http.StatusInternalServerError, "Internal Server Error", "")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("write JSON response failed")
	}
}

// decode reads a JSON body into dst and runs its validate tags.
func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid body", err.Error())
		return false
	}
	if err := validate.Struct(dst); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid body", err.Error())
		return false
	}
	return true
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal object for ETag/body")
		return "", nil
	}
	sum := sha1.Sum(body)
	etag := `W/"` + hex.EncodeToString(sum[:]) + `"`
	return etag, body
}

func writeCached(w http.ResponseWriter, r *http.Request, v any) {
	etag, body := calcETagAndBody(v)
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag)
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("failed to write body")
	}
}

// ---- catalog ----

func (h *Handlers) listRooms(w http.ResponseWriter, r *http.Request) {
	rooms, err := h.Catalog.List(r.Context())
	if err != nil {
		writeErr(w, err)
		return
	}
	writeCached(w, r, struct {
		Items []domain.Room `json:"items"`
	}{Items: rooms})
}

func (h *Handlers) getRoom(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid ID", "id must be a number")
		return
	}
	room, err := h.Catalog.Get(r.Context(), id)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeCached(w, r, room.Details())
}

// ---- sessions ----

type sessionResponse struct {
	ID string `json:"id"`
	app.Snapshot
}

func (h *Handlers) session(w http.ResponseWriter, r *http.Request) (*app.Session, bool) {
	s, err := h.Sessions.Get(chi.URLParam(r, "sid"))
	if err != nil {
		writeProblem(w, http.StatusNotFound, "Not Found", "session not found")
		return nil, false
	}
	return s, true
}

func (h *Handlers) writeSession(w http.ResponseWriter, status int, s *app.Session) {
	writeJSON(w, status, sessionResponse{ID: s.ID, Snapshot: s.Snapshot()})
}

// withSession runs op on the flow of the addressed session and answers
// with the resulting snapshot.
func (h *Handlers) withSession(w http.ResponseWriter, r *http.Request, op func(f *app.Flow) error) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	if err := s.Do(op); err != nil {
		writeErr(w, err)
		return
	}
	h.writeSession(w, http.StatusOK, s)
}

func (h *Handlers) createSession(w http.ResponseWriter, r *http.Request) {
	s := h.Sessions.Create()
	log.Debug().Str("session", s.ID).Msg("session created")
	h.writeSession(w, http.StatusCreated, s)
}

func (h *Handlers) getSession(w http.ResponseWriter, r *http.Request) {
	if s, ok := h.session(w, r); ok {
		h.writeSession(w, http.StatusOK, s)
	}
}

type searchRequest struct {
	Location string  `json:"location" validate:"max=200"`
	CheckIn  *string `json:"check_in" validate:"omitempty,datetime=2006-01-02"`
	CheckOut *string `json:"check_out" validate:"omitempty,datetime=2006-01-02"`
	Guests   int     `json:"guests" validate:"gte=0"`
}

func (h *Handlers) search(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if !decode(w, r, &req) {
		return
	}
	filters := domain.SearchFilters{Location: req.Location, Guests: req.Guests}
	var err error
	if filters.CheckIn, err = optDate(req.CheckIn); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid body", err.Error())
		return
	}
	if filters.CheckOut, err = optDate(req.CheckOut); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid body", err.Error())
		return
	}
	h.withSession(w, r, func(f *app.Flow) error { return f.Search(filters) })
}

type roomRequest struct {
	RoomID int64 `json:"room_id" validate:"required,gt=0"`
}

func (h *Handlers) roomFromBody(w http.ResponseWriter, r *http.Request) (domain.Room, bool) {
	var req roomRequest
	if !decode(w, r, &req) {
		return domain.Room{}, false
	}
	room, err := h.Catalog.Get(r.Context(), req.RoomID)
	if err != nil {
		writeErr(w, err)
		return domain.Room{}, false
	}
	return room, true
}

func (h *Handlers) selectRoom(w http.ResponseWriter, r *http.Request) {
	if room, ok := h.roomFromBody(w, r); ok {
		h.withSession(w, r, func(f *app.Flow) error { return f.SelectRoom(room) })
	}
}

func (h *Handlers) startBooking(w http.ResponseWriter, r *http.Request) {
	if room, ok := h.roomFromBody(w, r); ok {
		h.withSession(w, r, func(f *app.Flow) error { return f.StartBooking(room) })
	}
}

type bookingRequest struct {
	CheckIn       *string `json:"check_in" validate:"omitempty,datetime=2006-01-02"`
	CheckOut      *string `json:"check_out" validate:"omitempty,datetime=2006-01-02"`
	ClearCheckIn  bool    `json:"clear_check_in"`
	ClearCheckOut bool    `json:"clear_check_out"`
	Guests        *int    `json:"guests"`
	FirstName     *string `json:"first_name" validate:"omitempty,max=200"`
	LastName      *string `json:"last_name" validate:"omitempty,max=200"`
	Email         *string `json:"email" validate:"omitempty,max=320"`
	Phone         *string `json:"phone" validate:"omitempty,max=64"`
}

func optDate(s *string) (*domain.Date, error) {
	if s == nil {
		return nil, nil
	}
	d, err := domain.ParseDate(*s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (h *Handlers) updateBooking(w http.ResponseWriter, r *http.Request) {
	var req bookingRequest
	if !decode(w, r, &req) {
		return
	}
	p := app.BookingPatch{
		ClearCheckIn:  req.ClearCheckIn,
		ClearCheckOut: req.ClearCheckOut,
		Guests:        req.Guests,
		FirstName:     req.FirstName,
		LastName:      req.LastName,
		Email:         req.Email,
		Phone:         req.Phone,
	}
	var err error
	if p.CheckIn, err = optDate(req.CheckIn); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid body", err.Error())
		return
	}
	if p.CheckOut, err = optDate(req.CheckOut); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid body", err.Error())
		return
	}
	h.withSession(w, r, func(f *app.Flow) error {
		_, err := f.UpdateBooking(p)
		return err
	})
}

func (h *Handlers) submitBooking(w http.ResponseWriter, r *http.Request) {
	h.withSession(w, r, func(f *app.Flow) error {
		_, err := f.SubmitBooking()
		return err
	})
}

type cardRequest struct {
	Number *string `json:"number" validate:"omitempty,max=64"`
	Expiry *string `json:"expiry" validate:"omitempty,max=16"`
	CVV    *string `json:"cvv" validate:"omitempty,max=16"`
	Holder *string `json:"holder" validate:"omitempty,max=200"`
}

func (h *Handlers) enterCard(w http.ResponseWriter, r *http.Request) {
	var req cardRequest
	if !decode(w, r, &req) {
		return
	}
	p := app.CardPatch{Number: req.Number, Expiry: req.Expiry, CVV: req.CVV, Holder: req.Holder}
	h.withSession(w, r, func(f *app.Flow) error {
		_, err := f.EnterCard(p)
		return err
	})
}

func (h *Handlers) submitPayment(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	// the settlement outlives this request
	if err := s.Pay(context.WithoutCancel(r.Context()), h.Settler); err != nil {
		writeErr(w, err)
		return
	}
	h.writeSession(w, http.StatusAccepted, s)
}

func (h *Handlers) cancel(w http.ResponseWriter, r *http.Request) {
	h.withSession(w, r, func(f *app.Flow) error { return f.Cancel() })
}
