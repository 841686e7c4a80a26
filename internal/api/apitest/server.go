// Package apitest serves an in-memory RSVP backend with the same REST
// surface and server-side rules as the real one, for tests.
package apitest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/mux"

	"rsvp-table/internal/models"
)

// Request is one request received by the server
type Request struct {
	Method string
	Path   string
	Body   map[string]any
}

type event struct {
	id     int
	name   string
	notes  string
	target *int
}

type guest struct {
	id        int
	firstName string
	lastName  string
	gender    models.Gender
	notes     string
	isMe      bool
	created   time.Time
	edited    *time.Time
}

type invitation struct {
	id            int
	eventID       int
	guestID       int
	status        models.Status
	channel       string
	notes         string
	dateInvited   *time.Time
	dateResponded *time.Time
}

// Server is the fake backend
type Server struct {
	*httptest.Server

	// CSRFToken, when set, is required on every mutating request
	CSRFToken string
	// Token, when set, is required as a bearer token
	Token string
	// Today is the date stamped on sends and responses
	Today time.Time

	mu          sync.Mutex
	nextID      int
	events      map[int]*event
	guests      map[int]*guest
	invitations map[int]*invitation
	requests    []Request
	failures    map[int]int
}

// NewServer starts a fake backend; close it with Close
func NewServer() *Server {
	s := &Server{
		Today:       time.Date(2024, time.June, 12, 0, 0, 0, 0, time.UTC),
		nextID:      1,
		events:      make(map[int]*event),
		guests:      make(map[int]*guest),
		invitations: make(map[int]*invitation),
		failures:    make(map[int]int),
	}
	s.Server = httptest.NewServer(s.router())
	return s
}

func (s *Server) router() http.Handler {
	r := mux.NewRouter()
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(s.record, s.auth)

	api.HandleFunc("/events/{id:[0-9]+}", s.getEvent).Methods(http.MethodGet)
	api.HandleFunc("/events/{id:[0-9]+}", s.updateEvent).Methods(http.MethodPut)
	api.HandleFunc("/events/{id:[0-9]+}/invitations", s.listInvitations).Methods(http.MethodGet)
	api.HandleFunc("/events/{id:[0-9]+}/available-guests", s.availableGuests).Methods(http.MethodGet)
	api.HandleFunc("/events/{id:[0-9]+}/invitations/bulk", s.bulkAdd).Methods(http.MethodPost)
	api.HandleFunc("/events/{id:[0-9]+}/invitations/bulk-create", s.bulkCreateAndInvite).Methods(http.MethodPost)
	api.HandleFunc("/invitations/{id:[0-9]+}", s.updateInvitation).Methods(http.MethodPut)
	api.HandleFunc("/invitations/{id:[0-9]+}", s.deleteInvitation).Methods(http.MethodDelete)
	api.HandleFunc("/guests/bulk", s.bulkCreateGuests).Methods(http.MethodPost)
	api.HandleFunc("/guests/{id:[0-9]+}", s.getGuest).Methods(http.MethodGet)
	api.HandleFunc("/guests/{id:[0-9]+}", s.updateGuest).Methods(http.MethodPut)
	return r
}

// -- fixtures -------------------------------------------------------------

// AddEvent creates an event; target 0 means no target
func (s *Server) AddEvent(name string, target int) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	ev := &event{id: s.id(), name: name}
	if target > 0 {
		ev.target = &target
	}
	s.events[ev.id] = ev
	return ev.id
}

// AddGuest creates a guest
func (s *Server) AddGuest(first, last string, gender models.Gender) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	g := &guest{id: s.id(), firstName: first, lastName: last, gender: gender, created: s.Today}
	s.guests[g.id] = g
	return g.id
}

// Invite creates an invitation in the given status
func (s *Server) Invite(eventID, guestID int, status models.Status) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	inv := &invitation{id: s.id(), eventID: eventID, guestID: guestID, status: status}
	if status != models.StatusNotSent {
		d := s.Today
		inv.dateInvited = &d
		if status != models.StatusPending {
			inv.dateResponded = &d
		}
	}
	s.invitations[inv.id] = inv
	return inv.id
}

// FailInvitation makes requests on an invitation answer with code
func (s *Server) FailInvitation(invitationID, code int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[invitationID] = code
}

// Invitation returns the stored projection of an invitation
func (s *Server) Invitation(id int) (models.InvitationPayload, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	inv, ok := s.invitations[id]
	if !ok {
		return models.InvitationPayload{}, false
	}
	return s.brief(inv), true
}

// Guest returns the stored projection of a guest
func (s *Server) Guest(id int) (models.Guest, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, ok := s.guests[id]
	if !ok {
		return models.Guest{}, false
	}
	return s.guestJSON(g), true
}

// EventNotes returns the stored notes of an event
func (s *Server) EventNotes(id int) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ev, ok := s.events[id]; ok {
		return ev.notes
	}
	return ""
}

// Requests returns every request received so far
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}

// RequestsTo returns the requests whose path ends with suffix
func (s *Server) RequestsTo(method, suffix string) []Request {
	var out []Request
	for _, r := range s.Requests() {
		if r.Method == method && strings.HasSuffix(r.Path, suffix) {
			out = append(out, r)
		}
	}
	return out
}

// ResetRequests clears the request log
func (s *Server) ResetRequests() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = nil
}

func (s *Server) id() int {
	id := s.nextID
	s.nextID++
	return id
}

// -- middleware -----------------------------------------------------------

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		if r.Body != nil && r.ContentLength != 0 {
			_ = json.NewDecoder(r.Body).Decode(&body)
		}
		s.mu.Lock()
		s.requests = append(s.requests, Request{Method: r.Method, Path: r.URL.Path, Body: body})
		s.mu.Unlock()

		raw, _ := json.Marshal(body)
		r.Body = http.NoBody
		if body != nil {
			r.Body = readCloser{strings.NewReader(string(raw))}
		}
		next.ServeHTTP(w, r)
	})
}

type readCloser struct{ *strings.Reader }

func (readCloser) Close() error { return nil }

func (s *Server) auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.Token != "" && r.Header.Get("Authorization") != "Bearer "+s.Token {
			apiError(w, http.StatusUnauthorized, "AUTH_REQUIRED", "Authentication required")
			return
		}
		if s.CSRFToken != "" && r.Method != http.MethodGet && r.Header.Get("X-CSRFToken") != s.CSRFToken {
			apiError(w, http.StatusBadRequest, "CSRF_FAILED", "The CSRF token is missing.")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// -- responses ------------------------------------------------------------

func apiSuccess(w http.ResponseWriter, code int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]any{"status": "success", "data": data})
}

func apiError(w http.ResponseWriter, code int, errCode, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]any{"status": "error", "message": msg, "code": errCode})
}

func pathID(r *http.Request) int {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])
	return id
}

func decode(r *http.Request) (map[string]json.RawMessage, bool) {
	var data map[string]json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&data); err != nil || len(data) == 0 {
		return nil, false
	}
	return data, true
}

func displayDate(t *time.Time) (string, string) {
	if t == nil {
		return "", ""
	}
	return t.Format(models.DisplayDateLayout), t.Format(models.ISODateLayout)
}

func (s *Server) brief(inv *invitation) models.InvitationPayload {
	g := s.guests[inv.guestID]
	p := models.InvitationPayload{
		InvitationID: inv.id,
		GuestID:      inv.guestID,
		Status:       inv.status,
		Channel:      inv.channel,
		Notes:        inv.notes,
	}
	if g != nil {
		p.FirstName, p.LastName, p.Gender = g.firstName, g.lastName, g.gender
	}
	p.DateInvited, p.DateInvitedISO = displayDate(inv.dateInvited)
	p.DateResponded, p.DateRespondedISO = displayDate(inv.dateResponded)
	return p
}

func (s *Server) full(inv *invitation) models.Invitation {
	b := s.brief(inv)
	out := models.Invitation{
		ID:               inv.id,
		EventID:          inv.eventID,
		GuestID:          inv.guestID,
		Status:           inv.status,
		Channel:          inv.channel,
		Notes:            inv.notes,
		DateInvited:      b.DateInvited,
		DateInvitedISO:   b.DateInvitedISO,
		DateResponded:    b.DateResponded,
		DateRespondedISO: b.DateRespondedISO,
	}
	if g := s.guests[inv.guestID]; g != nil {
		out.Guest = models.GuestRef{
			ID: g.id, FirstName: g.firstName, LastName: g.lastName,
			Gender: g.gender, FullName: models.DisplayName(g.firstName, g.lastName),
		}
	}
	return out
}

func (s *Server) eventInvitations(eventID int) []*invitation {
	var out []*invitation
	for _, inv := range s.invitations {
		if inv.eventID == eventID {
			out = append(out, inv)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].id < out[j].id })
	return out
}

func (s *Server) eventJSON(ev *event) models.Event {
	invs := s.eventInvitations(ev.id)
	out := models.Event{
		ID:              ev.id,
		Name:            ev.name,
		EventType:       "Other",
		Date:            s.Today.Format(models.ISODateLayout),
		Notes:           ev.notes,
		TargetAttendees: ev.target,
		InvitationCount: len(invs),
		Invitations:     make([]models.InvitationPayload, 0, len(invs)),
	}
	for _, inv := range invs {
		if inv.status == models.StatusAttending {
			out.AttendingCount++
		}
		out.Invitations = append(out.Invitations, s.brief(inv))
	}
	return out
}

func (s *Server) guestJSON(g *guest) models.Guest {
	out := models.Guest{
		ID:          g.id,
		FirstName:   g.firstName,
		LastName:    g.lastName,
		Gender:      g.gender,
		IsMe:        g.isMe,
		Notes:       g.notes,
		FullName:    models.DisplayName(g.firstName, g.lastName),
		Invitations: []models.GuestInvitation{},
	}
	created := g.created.Format(time.RFC3339)
	out.DateCreated = &created
	if g.edited != nil {
		edited := g.edited.Format(time.RFC3339)
		out.DateEdited = &edited
	}

	var ids []int
	for id, inv := range s.invitations {
		if inv.guestID == g.id {
			ids = append(ids, id)
		}
	}
	sort.Ints(ids)
	for _, id := range ids {
		inv := s.invitations[id]
		switch inv.status {
		case models.StatusAttending:
			out.InvitationSummary.Attending++
		case models.StatusPending:
			out.InvitationSummary.Pending++
		case models.StatusDeclined:
			out.InvitationSummary.Declined++
		default:
			continue
		}
		name, date := "", ""
		if ev := s.events[inv.eventID]; ev != nil {
			name, date = ev.name, s.Today.Format("02/01/2006")
		}
		out.Invitations = append(out.Invitations, models.GuestInvitation{EventName: name, EventDate: date, Status: inv.status})
	}
	sum := &out.InvitationSummary
	sum.Invited = sum.Attending + sum.Pending + sum.Declined
	return out
}

// -- handlers -------------------------------------------------------------

func (s *Server) getEvent(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ev, ok := s.events[pathID(r)]
	if !ok {
		apiError(w, http.StatusNotFound, "NOT_FOUND", "Resource not found")
		return
	}
	apiSuccess(w, http.StatusOK, s.eventJSON(ev))
}

func (s *Server) updateEvent(w http.ResponseWriter, r *http.Request) {
	data, ok := decode(r)
	if !ok {
		apiError(w, http.StatusBadRequest, "INVALID_FORMAT", "Request body must be JSON")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ev, ok := s.events[pathID(r)]
	if !ok {
		apiError(w, http.StatusNotFound, "NOT_FOUND", "Resource not found")
		return
	}
	if raw, ok := data["notes"]; ok {
		_ = json.Unmarshal(raw, &ev.notes)
	}
	if raw, ok := data["name"]; ok {
		_ = json.Unmarshal(raw, &ev.name)
	}
	out := s.eventJSON(ev)
	out.Invitations = nil
	apiSuccess(w, http.StatusOK, out)
}

func (s *Server) listInvitations(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ev, ok := s.events[pathID(r)]
	if !ok {
		apiError(w, http.StatusNotFound, "NOT_FOUND", "Resource not found")
		return
	}
	apiSuccess(w, http.StatusOK, s.eventJSON(ev).Invitations)
}

func (s *Server) availableGuests(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ev, ok := s.events[pathID(r)]
	if !ok {
		apiError(w, http.StatusNotFound, "NOT_FOUND", "Resource not found")
		return
	}
	invited := make(map[int]bool)
	for _, inv := range s.eventInvitations(ev.id) {
		invited[inv.guestID] = true
	}

	out := make([]models.AvailableGuest, 0, len(s.guests))
	for _, g := range s.guests {
		out = append(out, models.AvailableGuest{
			ID: g.id, FirstName: g.firstName, LastName: g.lastName,
			Gender: g.gender, AlreadyInvited: invited[g.id],
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].FirstName != out[j].FirstName {
			return out[i].FirstName < out[j].FirstName
		}
		return out[i].LastName < out[j].LastName
	})
	apiSuccess(w, http.StatusOK, out)
}

func (s *Server) bulkAdd(w http.ResponseWriter, r *http.Request) {
	var body struct {
		GuestIDs []int `json:"guest_ids"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		apiError(w, http.StatusBadRequest, "INVALID_FORMAT", "Request body must be JSON")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ev, ok := s.events[pathID(r)]
	if !ok {
		apiError(w, http.StatusNotFound, "NOT_FOUND", "Resource not found")
		return
	}
	invited := make(map[int]bool)
	for _, inv := range s.eventInvitations(ev.id) {
		invited[inv.guestID] = true
	}

	added := make([]models.InvitationPayload, 0, len(body.GuestIDs))
	for _, gid := range body.GuestIDs {
		if invited[gid] || s.guests[gid] == nil {
			continue
		}
		inv := &invitation{id: s.id(), eventID: ev.id, guestID: gid, status: models.StatusNotSent}
		s.invitations[inv.id] = inv
		invited[gid] = true
		added = append(added, s.brief(inv))
	}
	apiSuccess(w, http.StatusCreated, added)
}

func (s *Server) createGuests(in []models.NewGuest) []*guest {
	var out []*guest
	for _, ng := range in {
		first := strings.TrimSpace(ng.FirstName)
		if first == "" {
			continue
		}
		gender := ng.Gender
		if gender == "" {
			gender = models.GenderMale
		}
		g := &guest{
			id:        s.id(),
			firstName: first,
			lastName:  strings.TrimSpace(ng.LastName),
			gender:    gender,
			notes:     strings.TrimSpace(ng.Notes),
			created:   s.Today,
		}
		s.guests[g.id] = g
		out = append(out, g)
	}
	return out
}

func (s *Server) bulkCreateAndInvite(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Guests []models.NewGuest `json:"guests"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		apiError(w, http.StatusBadRequest, "INVALID_FORMAT", "Request body must be JSON")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ev, ok := s.events[pathID(r)]
	if !ok {
		apiError(w, http.StatusNotFound, "NOT_FOUND", "Resource not found")
		return
	}
	added := make([]models.InvitationPayload, 0, len(body.Guests))
	for _, g := range s.createGuests(body.Guests) {
		inv := &invitation{id: s.id(), eventID: ev.id, guestID: g.id, status: models.StatusNotSent}
		s.invitations[inv.id] = inv
		added = append(added, s.brief(inv))
	}
	apiSuccess(w, http.StatusCreated, added)
}

func (s *Server) bulkCreateGuests(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Guests []models.NewGuest `json:"guests"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		apiError(w, http.StatusBadRequest, "INVALID_FORMAT", "Request body must be JSON")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	added := make([]models.Guest, 0, len(body.Guests))
	for _, g := range s.createGuests(body.Guests) {
		added = append(added, s.guestJSON(g))
	}
	apiSuccess(w, http.StatusCreated, added)
}

func (s *Server) lookupInvitation(w http.ResponseWriter, r *http.Request) (*invitation, bool) {
	id := pathID(r)
	if code, ok := s.failures[id]; ok {
		apiError(w, code, "INJECTED", fmt.Sprintf("invitation %d unavailable", id))
		return nil, false
	}
	inv, ok := s.invitations[id]
	if !ok {
		apiError(w, http.StatusNotFound, "NOT_FOUND", "Resource not found")
		return nil, false
	}
	return inv, true
}

func (s *Server) updateInvitation(w http.ResponseWriter, r *http.Request) {
	data, ok := decode(r)
	if !ok {
		apiError(w, http.StatusBadRequest, "INVALID_FORMAT", "Request body must be JSON")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	inv, ok := s.lookupInvitation(w, r)
	if !ok {
		return
	}

	var toggle bool
	if raw, ok := data["toggle_send"]; ok {
		_ = json.Unmarshal(raw, &toggle)
	}
	if toggle {
		if inv.status == models.StatusNotSent {
			d := s.Today
			inv.status = models.StatusPending
			inv.dateInvited = &d
		} else {
			inv.status = models.StatusNotSent
			inv.dateInvited = nil
			inv.dateResponded = nil
		}
	}

	if raw, ok := data["status"]; ok {
		var st models.Status
		_ = json.Unmarshal(raw, &st)
		if !st.IsResponse() {
			apiError(w, http.StatusBadRequest, "BAD_REQUEST", "Invalid status")
			return
		}
		if st != inv.status {
			inv.status = st
			switch st {
			case models.StatusAttending, models.StatusDeclined:
				d := s.Today
				inv.dateResponded = &d
			case models.StatusPending:
				inv.dateResponded = nil
			}
		}
	}
	if raw, ok := data["channel"]; ok {
		_ = json.Unmarshal(raw, &inv.channel)
	}
	if raw, ok := data["notes"]; ok {
		_ = json.Unmarshal(raw, &inv.notes)
	}

	apiSuccess(w, http.StatusOK, s.full(inv))
}

func (s *Server) deleteInvitation(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	inv, ok := s.lookupInvitation(w, r)
	if !ok {
		return
	}
	delete(s.invitations, inv.id)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) getGuest(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, ok := s.guests[pathID(r)]
	if !ok {
		apiError(w, http.StatusNotFound, "NOT_FOUND", "Resource not found")
		return
	}
	apiSuccess(w, http.StatusOK, s.guestJSON(g))
}

func (s *Server) updateGuest(w http.ResponseWriter, r *http.Request) {
	data, ok := decode(r)
	if !ok {
		apiError(w, http.StatusBadRequest, "INVALID_FORMAT", "Request body must be JSON")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	g, ok := s.guests[pathID(r)]
	if !ok {
		apiError(w, http.StatusNotFound, "NOT_FOUND", "Resource not found")
		return
	}

	if raw, ok := data["gender"]; ok {
		var gender models.Gender
		_ = json.Unmarshal(raw, &gender)
		if !gender.IsValid() {
			apiError(w, http.StatusBadRequest, "BAD_REQUEST", "Gender must be Male or Female")
			return
		}
		g.gender = gender
	}
	if raw, ok := data["first_name"]; ok {
		_ = json.Unmarshal(raw, &g.firstName)
	}
	if raw, ok := data["last_name"]; ok {
		_ = json.Unmarshal(raw, &g.lastName)
	}
	if raw, ok := data["notes"]; ok {
		_ = json.Unmarshal(raw, &g.notes)
	}
	if raw, ok := data["is_me"]; ok {
		var isMe bool
		_ = json.Unmarshal(raw, &isMe)
		if isMe && !g.isMe {
			for _, other := range s.guests {
				other.isMe = false
			}
		}
		g.isMe = isMe
	}
	now := s.Today
	g.edited = &now
	apiSuccess(w, http.StatusOK, s.guestJSON(g))
}
