package api

import (
	"github.com/shopspring/decimal"

	"github.com/henrydatei/working-time-recording/engine"
)

// =============================================================================
// REQUEST BODIES
// =============================================================================

type createPersonRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`

	// Optional first contract, provisioned in the same request. This replaces
	// implicit companion-record creation: a person gets a contract only when
	// the caller asks for one.
	Contract *createContractRequest `json:"contract,omitempty"`
}

type createContractRequest struct {
	SupervisorID          string  `json:"supervisorId"`
	Start                 string  `json:"start"`
	End                   string  `json:"end"`
	HoursPerWeek          float64 `json:"hoursPerWeek"`
	CarryoverHours        float64 `json:"carryoverHours"`
	CarryoverHolidayHours float64 `json:"carryoverHolidayHours"`
}

type createRateChangeRequest struct {
	Start        string  `json:"start"`
	End          *string `json:"end,omitempty"` // null = open-ended
	HoursPerWeek float64 `json:"hoursPerWeek"`
}

type createHolidayRequestRequest struct {
	From string `json:"from"`
	To   string `json:"to"`
}

type createTaskRequest struct {
	AssignerID  string  `json:"assignerId"`
	Text        string  `json:"text"`
	TotalHours  float64 `json:"totalHours"`
	WorkedHours float64 `json:"workedHours"`
	Deadline    string  `json:"deadline"`
}

type carryoverRequest struct {
	AsOf string `json:"asOf,omitempty"`
}

// =============================================================================
// RESPONSES
// =============================================================================

type personResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

func toPersonResponse(p engine.Person) personResponse {
	return personResponse{ID: string(p.ID), Name: p.Name, Email: p.Email}
}

type contractResponse struct {
	ID                    string  `json:"id"`
	PersonID              string  `json:"personId"`
	SupervisorID          string  `json:"supervisorId,omitempty"`
	Start                 string  `json:"start"`
	End                   string  `json:"end"`
	HoursPerWeek          float64 `json:"hoursPerWeek"`
	CarryoverHours        float64 `json:"carryoverHours"`
	CarryoverHolidayHours float64 `json:"carryoverHolidayHours"`
}

func toContractResponse(c engine.Contract) contractResponse {
	return contractResponse{
		ID:                    string(c.ID),
		PersonID:              string(c.PersonID),
		SupervisorID:          string(c.SupervisorID),
		Start:                 c.Start.String(),
		End:                   c.End.String(),
		HoursPerWeek:          c.HoursPerWeek.InexactFloat64(),
		CarryoverHours:        c.CarryoverHours.InexactFloat64(),
		CarryoverHolidayHours: c.CarryoverHolidayHours.InexactFloat64(),
	}
}

type rateChangeResponse struct {
	ID           string  `json:"id"`
	ContractID   string  `json:"contractId"`
	Start        string  `json:"start"`
	End          *string `json:"end,omitempty"`
	HoursPerWeek float64 `json:"hoursPerWeek"`
}

func toRateChangeResponse(rc engine.RateChange) rateChangeResponse {
	resp := rateChangeResponse{
		ID:           string(rc.ID),
		ContractID:   string(rc.ContractID),
		Start:        rc.Start.String(),
		HoursPerWeek: rc.HoursPerWeek.InexactFloat64(),
	}
	if rc.End != nil {
		end := rc.End.String()
		resp.End = &end
	}
	return resp
}

type holidayRequestResponse struct {
	ID       string `json:"id"`
	PersonID string `json:"personId"`
	From     string `json:"from"`
	To       string `json:"to"`
}

type taskResponse struct {
	ID          string  `json:"id"`
	PersonID    string  `json:"personId"`
	AssignerID  string  `json:"assignerId,omitempty"`
	Text        string  `json:"text"`
	TotalHours  float64 `json:"totalHours"`
	WorkedHours float64 `json:"workedHours"`
	Deadline    string  `json:"deadline"`
}

func toTaskResponse(t engine.Task) taskResponse {
	return taskResponse{
		ID:          t.ID,
		PersonID:    string(t.PersonID),
		AssignerID:  string(t.AssignerID),
		Text:        t.Text,
		TotalHours:  t.TotalHours.InexactFloat64(),
		WorkedHours: t.WorkedHours.InexactFloat64(),
		Deadline:    t.Deadline.String(),
	}
}

type workingTimeResponse struct {
	AsOf         string  `json:"asOf"`
	HoursToWork  float64 `json:"hoursToWork"`
	WorkedHours  float64 `json:"workedHours"`
	WorkedPct    float64 `json:"workedPct"`
	PlannedHours float64 `json:"plannedHours"`
	PlannedPct   float64 `json:"plannedPct"`
	ExcessHours  float64 `json:"excessHours"`
}

func toWorkingTimeResponse(asOf engine.Date, wt engine.WorkTime) workingTimeResponse {
	return workingTimeResponse{
		AsOf:         asOf.String(),
		HoursToWork:  wt.HoursToWork.InexactFloat64(),
		WorkedHours:  wt.WorkedHours.InexactFloat64(),
		WorkedPct:    pctOf(wt.WorkedHours, wt.HoursToWork),
		PlannedHours: wt.PlannedHours.InexactFloat64(),
		PlannedPct:   pctOf(wt.PlannedHours, wt.HoursToWork),
		ExcessHours:  wt.ExcessHours.InexactFloat64(),
	}
}

// pctOf returns part/total as a percentage rounded to two places, capped at
// 100 for dashboard display.
func pctOf(part, total decimal.Decimal) float64 {
	if !total.IsPositive() {
		return 0
	}
	if part.GreaterThanOrEqual(total) {
		return 100
	}
	return part.Mul(decimal.NewFromInt(100)).Div(total).Round(2).InexactFloat64()
}

type holidayBalanceResponse struct {
	AsOf        string  `json:"asOf"`
	Entitlement float64 `json:"entitlement"`
	NotTaken    float64 `json:"notTaken"`
	TakenDays   int     `json:"takenDays"`
	Remaining   float64 `json:"remaining"`
}

func toHolidayBalanceResponse(asOf engine.Date, hb engine.HolidayBalance) holidayBalanceResponse {
	return holidayBalanceResponse{
		AsOf:        asOf.String(),
		Entitlement: hb.Entitlement.InexactFloat64(),
		NotTaken:    hb.NotTaken.InexactFloat64(),
		TakenDays:   hb.TakenDays,
		Remaining:   hb.Remaining.InexactFloat64(),
	}
}

type rateResponse struct {
	Date  string  `json:"date"`
	Hours float64 `json:"hours"`
}

type carryoverResponse struct {
	AsOf           string  `json:"asOf"`
	Hours          float64 `json:"hours"`
	HolidayHours   float64 `json:"holidayHours"`
	TargetContract string  `json:"targetContract"`
}

type freeDayResponse struct {
	Date string `json:"date"`
	Name string `json:"name"`
}

type errorResponse struct {
	Error string `json:"error"`
}
