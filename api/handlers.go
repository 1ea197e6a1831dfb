/*
handlers.go - HTTP handlers for the working-time recording API

PURPOSE:
  Thin translation layer between HTTP and the engine: parse, call, render.
  No accounting logic lives here. The only temporal decision this layer makes
  is defaulting the reference date to the server's current day when the
  caller does not pin one - the engine itself never reads a clock.

ERROR MAPPING:
  invalid input / inverted intervals        400
  unknown person or contract                404
  carryover precondition failure            409
  holiday calendar unavailable              502
  anything else                             500
*/
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sort"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/henrydatei/working-time-recording/engine"
)

// Store is everything the API needs from persistence: the engine's record
// store plus the administrative directory around it.
type Store interface {
	engine.RecordStore

	CreatePerson(ctx context.Context, p engine.Person) error
	PersonByID(ctx context.Context, id engine.PersonID) (engine.Person, error)
	People(ctx context.Context) ([]engine.Person, error)
	CreateContract(ctx context.Context, c engine.Contract) error
	CreateHolidayRequest(ctx context.Context, r engine.HolidayRequest) error
	CreateTask(ctx context.Context, t engine.Task) error
}

// Handler holds the API dependencies.
type Handler struct {
	store  Store
	engine *engine.Engine
	logger *slog.Logger

	// now supplies the default reference date; overridable in tests.
	now func() engine.Date
}

func NewHandler(store Store, eng *engine.Engine, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		store:  store,
		engine: eng,
		logger: logger,
		now: func() engine.Date {
			t := time.Now().UTC()
			return engine.NewDate(t.Year(), t.Month(), t.Day())
		},
	}
}

// =============================================================================
// PEOPLE
// =============================================================================

func (h *Handler) CreatePerson(w http.ResponseWriter, r *http.Request) {
	var req createPersonRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, err)
		return
	}
	if req.Name == "" {
		h.writeErrorMsg(w, http.StatusBadRequest, "name is required")
		return
	}

	person := engine.Person{ID: engine.PersonID(uuid.NewString()), Name: req.Name, Email: req.Email}
	if err := h.store.CreatePerson(r.Context(), person); err != nil {
		h.writeError(w, http.StatusInternalServerError, err)
		return
	}

	if req.Contract != nil {
		if _, err := h.createContract(w, r, person.ID, *req.Contract); err != nil {
			return
		}
	}
	h.writeJSON(w, http.StatusCreated, toPersonResponse(person))
}

func (h *Handler) ListPeople(w http.ResponseWriter, r *http.Request) {
	people, err := h.store.People(r.Context())
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err)
		return
	}
	out := make([]personResponse, 0, len(people))
	for _, p := range people {
		out = append(out, toPersonResponse(p))
	}
	h.writeJSON(w, http.StatusOK, out)
}

func (h *Handler) GetPerson(w http.ResponseWriter, r *http.Request) {
	person, err := h.store.PersonByID(r.Context(), engine.PersonID(chi.URLParam(r, "id")))
	if err != nil {
		h.writeEngineError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, toPersonResponse(person))
}

// =============================================================================
// CONTRACTS AND RATE CHANGES
// =============================================================================

func (h *Handler) CreateContract(w http.ResponseWriter, r *http.Request) {
	var req createContractRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, err)
		return
	}
	person := engine.PersonID(chi.URLParam(r, "id"))
	if _, err := h.store.PersonByID(r.Context(), person); err != nil {
		h.writeEngineError(w, err)
		return
	}
	contract, err := h.createContract(w, r, person, req)
	if err != nil {
		return
	}
	h.writeJSON(w, http.StatusCreated, toContractResponse(contract))
}

func (h *Handler) createContract(w http.ResponseWriter, r *http.Request, person engine.PersonID, req createContractRequest) (engine.Contract, error) {
	start, err := engine.ParseDate(req.Start)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err)
		return engine.Contract{}, err
	}
	end, err := engine.ParseDate(req.End)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err)
		return engine.Contract{}, err
	}
	if start.After(end) {
		err := &engine.IntervalError{From: start, To: end}
		h.writeError(w, http.StatusBadRequest, err)
		return engine.Contract{}, err
	}

	contract := engine.Contract{
		ID:                    engine.ContractID(uuid.NewString()),
		PersonID:              person,
		SupervisorID:          engine.PersonID(req.SupervisorID),
		Start:                 start,
		End:                   end,
		HoursPerWeek:          decimal.NewFromFloat(req.HoursPerWeek),
		CarryoverHours:        decimal.NewFromFloat(req.CarryoverHours),
		CarryoverHolidayHours: decimal.NewFromFloat(req.CarryoverHolidayHours),
	}
	if err := h.store.CreateContract(r.Context(), contract); err != nil {
		h.writeError(w, http.StatusInternalServerError, err)
		return engine.Contract{}, err
	}
	return contract, nil
}

func (h *Handler) ListContracts(w http.ResponseWriter, r *http.Request) {
	contracts, err := h.store.ContractsByPerson(r.Context(), engine.PersonID(chi.URLParam(r, "id")))
	if err != nil {
		h.writeEngineError(w, err)
		return
	}
	out := make([]contractResponse, 0, len(contracts))
	for _, c := range contracts {
		out = append(out, toContractResponse(c))
	}
	h.writeJSON(w, http.StatusOK, out)
}

func (h *Handler) CreateRateChange(w http.ResponseWriter, r *http.Request) {
	var req createRateChangeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, err)
		return
	}
	start, err := engine.ParseDate(req.Start)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err)
		return
	}
	change := engine.RateChange{
		ContractID:   engine.ContractID(chi.URLParam(r, "id")),
		Start:        start,
		HoursPerWeek: decimal.NewFromFloat(req.HoursPerWeek),
	}
	if req.End != nil {
		end, err := engine.ParseDate(*req.End)
		if err != nil {
			h.writeError(w, http.StatusBadRequest, err)
			return
		}
		change.End = &end
	}

	created, err := h.engine.AddRateChange(r.Context(), change)
	if err != nil {
		h.writeEngineError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, toRateChangeResponse(created))
}

func (h *Handler) ListRateChanges(w http.ResponseWriter, r *http.Request) {
	changes, err := h.store.RateChangesByContract(r.Context(), engine.ContractID(chi.URLParam(r, "id")))
	if err != nil {
		h.writeEngineError(w, err)
		return
	}
	out := make([]rateChangeResponse, 0, len(changes))
	for _, rc := range changes {
		out = append(out, toRateChangeResponse(rc))
	}
	h.writeJSON(w, http.StatusOK, out)
}

// =============================================================================
// HOLIDAY REQUESTS AND TASKS
// =============================================================================

func (h *Handler) CreateHolidayRequest(w http.ResponseWriter, r *http.Request) {
	var req createHolidayRequestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, err)
		return
	}
	from, err := engine.ParseDate(req.From)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err)
		return
	}
	to, err := engine.ParseDate(req.To)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err)
		return
	}
	if from.After(to) {
		h.writeError(w, http.StatusBadRequest, &engine.IntervalError{From: from, To: to})
		return
	}

	hr := engine.HolidayRequest{
		ID:       uuid.NewString(),
		PersonID: engine.PersonID(chi.URLParam(r, "id")),
		From:     from,
		To:       to,
	}
	if err := h.store.CreateHolidayRequest(r.Context(), hr); err != nil {
		h.writeError(w, http.StatusInternalServerError, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, holidayRequestResponse{
		ID: hr.ID, PersonID: string(hr.PersonID), From: hr.From.String(), To: hr.To.String(),
	})
}

func (h *Handler) ListHolidayRequests(w http.ResponseWriter, r *http.Request) {
	requests, err := h.store.HolidayRequestsByPerson(r.Context(), engine.PersonID(chi.URLParam(r, "id")))
	if err != nil {
		h.writeEngineError(w, err)
		return
	}
	out := make([]holidayRequestResponse, 0, len(requests))
	for _, hr := range requests {
		out = append(out, holidayRequestResponse{
			ID: hr.ID, PersonID: string(hr.PersonID), From: hr.From.String(), To: hr.To.String(),
		})
	}
	h.writeJSON(w, http.StatusOK, out)
}

func (h *Handler) CreateTask(w http.ResponseWriter, r *http.Request) {
	var req createTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, err)
		return
	}
	deadline, err := engine.ParseDate(req.Deadline)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err)
		return
	}

	task := engine.Task{
		ID:          uuid.NewString(),
		PersonID:    engine.PersonID(chi.URLParam(r, "id")),
		AssignerID:  engine.PersonID(req.AssignerID),
		Text:        req.Text,
		TotalHours:  decimal.NewFromFloat(req.TotalHours),
		WorkedHours: decimal.NewFromFloat(req.WorkedHours),
		Deadline:    deadline,
	}
	if err := h.store.CreateTask(r.Context(), task); err != nil {
		h.writeError(w, http.StatusInternalServerError, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, toTaskResponse(task))
}

func (h *Handler) ListTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.store.TasksByPerson(r.Context(), engine.PersonID(chi.URLParam(r, "id")))
	if err != nil {
		h.writeEngineError(w, err)
		return
	}
	out := make([]taskResponse, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, toTaskResponse(t))
	}
	h.writeJSON(w, http.StatusOK, out)
}

// =============================================================================
// ACCOUNTING
// =============================================================================

func (h *Handler) GetEmploymentWindow(w http.ResponseWriter, r *http.Request) {
	asOf, ok := h.refDate(w, r, "asOf")
	if !ok {
		return
	}
	window, err := h.engine.EmploymentWindow(r.Context(), engine.PersonID(chi.URLParam(r, "id")), asOf)
	if err != nil {
		h.writeEngineError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, window)
}

func (h *Handler) GetWorkingTime(w http.ResponseWriter, r *http.Request) {
	asOf, ok := h.refDate(w, r, "asOf")
	if !ok {
		return
	}
	wt, err := h.engine.WorkingTime(r.Context(), engine.PersonID(chi.URLParam(r, "id")), asOf)
	if err != nil {
		h.writeEngineError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, toWorkingTimeResponse(asOf, wt))
}

func (h *Handler) GetHolidayBalance(w http.ResponseWriter, r *http.Request) {
	asOf, ok := h.refDate(w, r, "asOf")
	if !ok {
		return
	}
	hb, err := h.engine.HolidayBalance(r.Context(), engine.PersonID(chi.URLParam(r, "id")), asOf)
	if err != nil {
		h.writeEngineError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, toHolidayBalanceResponse(asOf, hb))
}

func (h *Handler) GetRateOnDay(w http.ResponseWriter, r *http.Request) {
	day, ok := h.refDate(w, r, "date")
	if !ok {
		return
	}
	rate, err := h.engine.RateOnDay(r.Context(), engine.PersonID(chi.URLParam(r, "id")), day)
	if err != nil {
		h.writeEngineError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, rateResponse{Date: day.String(), Hours: rate.InexactFloat64()})
}

func (h *Handler) RunCarryover(w http.ResponseWriter, r *http.Request) {
	var req carryoverRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.writeError(w, http.StatusBadRequest, err)
			return
		}
	}
	asOf := h.now()
	if req.AsOf != "" {
		parsed, err := engine.ParseDate(req.AsOf)
		if err != nil {
			h.writeError(w, http.StatusBadRequest, err)
			return
		}
		asOf = parsed
	}

	result, err := h.engine.Carryover(r.Context(), engine.PersonID(chi.URLParam(r, "id")), asOf)
	if err != nil {
		h.writeEngineError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, carryoverResponse{
		AsOf:           asOf.String(),
		Hours:          result.Hours.InexactFloat64(),
		HolidayHours:   result.HolidayHours.InexactFloat64(),
		TargetContract: string(result.TargetContract),
	})
}

func (h *Handler) ListFreeDays(w http.ResponseWriter, r *http.Request) {
	from, ok := h.refDate(w, r, "from")
	if !ok {
		return
	}
	to, ok := h.refDate(w, r, "to")
	if !ok {
		return
	}
	free, err := h.engine.FreeDays(r.Context(), from, to)
	if err != nil {
		h.writeEngineError(w, err)
		return
	}
	out := make([]freeDayResponse, 0, len(free))
	for d, name := range free {
		out = append(out, freeDayResponse{Date: d.String(), Name: name})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	h.writeJSON(w, http.StatusOK, out)
}

// =============================================================================
// HELPERS
// =============================================================================

// refDate parses a date query parameter, defaulting to the current day.
func (h *Handler) refDate(w http.ResponseWriter, r *http.Request, param string) (engine.Date, bool) {
	raw := r.URL.Query().Get(param)
	if raw == "" {
		return h.now(), true
	}
	d, err := engine.ParseDate(raw)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err)
		return engine.Date{}, false
	}
	return d, true
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("encoding response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, err error) {
	if status >= 500 {
		h.logger.Error("request failed", "error", err)
	}
	h.writeJSON(w, status, errorResponse{Error: err.Error()})
}

func (h *Handler) writeErrorMsg(w http.ResponseWriter, status int, msg string) {
	h.writeJSON(w, status, errorResponse{Error: msg})
}

// writeEngineError maps engine error kinds to HTTP status codes.
func (h *Handler) writeEngineError(w http.ResponseWriter, err error) {
	switch {
	case engine.IsNotFound(err):
		h.writeError(w, http.StatusNotFound, err)
	case errors.Is(err, engine.ErrNoActiveOrPastContract):
		h.writeError(w, http.StatusConflict, err)
	case errors.Is(err, engine.ErrInvalidInterval):
		h.writeError(w, http.StatusBadRequest, err)
	case errors.Is(err, engine.ErrCalendarUnavailable):
		h.writeError(w, http.StatusBadGateway, err)
	default:
		h.writeError(w, http.StatusInternalServerError, err)
	}
}
