package handlers

import (
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jjenkins/prazos/internal/model"
)

// CalculationRequest is the JSON body of POST /api/prazos
type CalculationRequest struct {
	DeadlineTypeCode string `json:"deadline_type_code"`
	ExpeditionDate   string `json:"expedition_date"`
	State            string `json:"state"`
	Municipality     string `json:"municipality"`
	PublicDefender   bool   `json:"public_defender"`
	CaseRef          string `json:"case_ref"`
}

// TraceEntryResponse is one pipeline stage of a calculation
type TraceEntryResponse struct {
	Rule   model.Rule `json:"rule"`
	Before string     `json:"before"`
	After  string     `json:"after"`
	Reason string     `json:"reason"`
}

// CalculationResponse is a calculated deadline. Dates are YYYY-MM-DD.
type CalculationResponse struct {
	ID                         string               `json:"id,omitempty"`
	CaseRef                    string               `json:"case_ref,omitempty"`
	DeadlineTypeCode           string               `json:"deadline_type_code"`
	State                      string               `json:"state"`
	Municipality               string               `json:"municipality,omitempty"`
	ExpeditionDate             string               `json:"expedition_date"`
	ReadingDate                string               `json:"reading_date"`
	RawDeadlineDate            string               `json:"raw_deadline_date"`
	FinalDeadlineDate          string               `json:"final_deadline_date"`
	LegalDays                  int                  `json:"legal_days"`
	EffectiveDays              int                  `json:"effective_days"`
	MultiplierApplied          int                  `json:"multiplier_applied"`
	CountingMode               model.CountingMode   `json:"counting_mode"`
	JurisdictionDataIncomplete bool                 `json:"jurisdiction_data_incomplete"`
	Trace                      []TraceEntryResponse `json:"trace"`
	CreatedAt                  *time.Time           `json:"created_at,omitempty"`
}

func newCalculationResponse(res *model.CalculationResult) CalculationResponse {
	out := CalculationResponse{
		DeadlineTypeCode:           res.DeadlineTypeCode,
		State:                      res.Jurisdiction.State,
		Municipality:               res.Jurisdiction.Municipality,
		ExpeditionDate:             res.ExpeditionDate.Format(model.DateLayout),
		ReadingDate:                res.ReadingDate.Format(model.DateLayout),
		RawDeadlineDate:            res.RawDeadlineDate.Format(model.DateLayout),
		FinalDeadlineDate:          res.FinalDeadlineDate.Format(model.DateLayout),
		LegalDays:                  res.LegalDays,
		EffectiveDays:              res.EffectiveDays,
		MultiplierApplied:          res.MultiplierApplied,
		CountingMode:               res.CountingMode,
		JurisdictionDataIncomplete: res.JurisdictionDataIncomplete,
		Trace:                      make([]TraceEntryResponse, 0, len(res.Trace)),
	}
	for _, e := range res.Trace {
		out.Trace = append(out.Trace, TraceEntryResponse{
			Rule:   e.Rule,
			Before: e.Before.Format(model.DateLayout),
			After:  e.After.Format(model.DateLayout),
			Reason: e.Reason,
		})
	}
	return out
}

func newRecordResponse(rec *model.CalculationRecord) CalculationResponse {
	out := newCalculationResponse(&rec.Result)
	out.ID = rec.ID
	out.CaseRef = rec.CaseRef
	created := rec.CreatedAt
	out.CreatedAt = &created
	return out
}

func jsonError(c *fiber.Ctx, status int, err error) error {
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}

// CalculateAPIHandler calculates a deadline from a JSON request
func CalculateAPIHandler(d Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CalculationRequest
		if err := c.BodyParser(&body); err != nil {
			return jsonError(c, fiber.StatusBadRequest, err)
		}

		expedition, err := model.ParseDate(strings.TrimSpace(body.ExpeditionDate))
		if err != nil {
			return jsonError(c, statusFor(err), err)
		}
		req := model.CalculationRequest{
			ExpeditionDate:        expedition,
			DeadlineTypeCode:      body.DeadlineTypeCode,
			Jurisdiction:          model.Jurisdiction{State: body.State, Municipality: body.Municipality}.Normalize(),
			IsPublicDefenderParty: body.PublicDefender,
		}
		if req.Jurisdiction.State == "" {
			return jsonError(c, fiber.StatusBadRequest, errStateRequired)
		}

		res, err := d.Engine.CalculateByCode(req)
		if err != nil {
			status := statusFor(err)
			if status == fiber.StatusInternalServerError {
				d.Logger.Error("failed to calculate deadline", "error", err)
			}
			return jsonError(c, status, err)
		}

		if rec := record(c, d, strings.TrimSpace(body.CaseRef), res); rec != nil {
			return c.JSON(newRecordResponse(rec))
		}
		return c.JSON(newCalculationResponse(res))
	}
}

// CalculationAPIHandler returns a recorded calculation by ID
func CalculationAPIHandler(d Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if d.Audit == nil {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "calculation log is disabled"})
		}

		rec, err := d.Audit.GetByID(c.UserContext(), c.Params("id"))
		if err != nil {
			d.Logger.Error("failed to load calculation", "id", c.Params("id"), "error", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to load calculation"})
		}
		if rec == nil {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "calculation not found"})
		}

		return c.JSON(newRecordResponse(rec))
	}
}

// DeadlineTypeResponse is a deadline type as listed by GET /api/tipos
type DeadlineTypeResponse struct {
	Code                     string             `json:"code"`
	Name                     string             `json:"name"`
	LegalBasis               string             `json:"legal_basis"`
	LegalDays                int                `json:"legal_days"`
	DoublesForPublicDefender bool               `json:"doubles_for_public_defender"`
	CountingMode             model.CountingMode `json:"counting_mode"`
	ReadingTimeDays          int                `json:"reading_time_days"`
	AreaOfLaw                model.AreaOfLaw    `json:"area_of_law"`
	Category                 string             `json:"category"`
}

// DeadlineTypesHandler lists the configured deadline types, optionally
// filtered by ?area=
func DeadlineTypesHandler(d Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		area := model.AreaOfLaw(strings.ToUpper(c.Query("area")))

		out := []DeadlineTypeResponse{}
		for _, t := range d.Templates.All() {
			if area != "" && t.AreaOfLaw != area {
				continue
			}
			out = append(out, DeadlineTypeResponse{
				Code:                     t.Code,
				Name:                     t.Name,
				LegalBasis:               t.LegalBasis,
				LegalDays:                t.LegalDays,
				DoublesForPublicDefender: t.DoublesForPublicDefender,
				CountingMode:             t.CountingMode(),
				ReadingTimeDays:          t.ReadingTimeDays,
				AreaOfLaw:                t.AreaOfLaw,
				Category:                 t.Category,
			})
		}

		return c.JSON(out)
	}
}

// HolidayResponse is one holiday as listed by GET /api/feriados/:year
type HolidayResponse struct {
	Date  string `json:"date"`
	Name  string `json:"name"`
	Layer string `json:"layer"`
}

// HolidaysAPIHandler lists the holidays of a year for ?uf= and ?municipio=
func HolidaysAPIHandler(d Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		year, err := strconv.Atoi(c.Params("year"))
		if err != nil {
			return jsonError(c, fiber.StatusBadRequest, model.ErrInvalidYear)
		}
		j := model.Jurisdiction{State: c.Query("uf"), Municipality: c.Query("municipio")}.Normalize()

		holidays, err := d.Holidays.Holidays(year, j)
		if err != nil {
			return jsonError(c, statusFor(err), err)
		}

		out := make([]HolidayResponse, 0, len(holidays))
		for _, h := range holidays {
			out = append(out, HolidayResponse{
				Date:  h.Date.Format(model.DateLayout),
				Name:  h.Name,
				Layer: string(h.Layer),
			})
		}

		return c.JSON(fiber.Map{
			"year":                         year,
			"state":                        j.State,
			"municipality":                 j.Municipality,
			"jurisdiction_data_incomplete": d.Holidays.Incomplete(j),
			"holidays":                     out,
		})
	}
}
