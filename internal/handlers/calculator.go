package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jjenkins/prazos/internal/model"
	"github.com/jjenkins/prazos/internal/templates"
)

// CalculatorHandler renders the empty calculator
func CalculatorHandler(d Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		page := templates.CalculatorPage{
			Types: d.Templates.All(),
			Form: templates.CalculatorForm{
				ExpeditionDate: civilToday(d.Now).Format(model.DateLayout),
				PublicDefender: true,
			},
		}
		return render(c, fiber.StatusOK, templates.Calculator(page))
	}
}

// CalculateFormHandler calculates a deadline submitted by the calculator
// form. htmx requests get only the result fragment.
func CalculateFormHandler(d Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		form := templates.CalculatorForm{
			DeadlineTypeCode: c.FormValue("deadline_type_code"),
			ExpeditionDate:   strings.TrimSpace(c.FormValue("expedition_date")),
			State:            c.FormValue("state"),
			Municipality:     c.FormValue("municipality"),
			PublicDefender:   c.FormValue("public_defender") == "true",
			CaseRef:          strings.TrimSpace(c.FormValue("case_ref")),
		}
		htmx := c.Get("HX-Request") == "true"

		view, err := calculate(c, d, form)
		if err != nil {
			status := statusFor(err)
			if status == fiber.StatusInternalServerError {
				d.Logger.Error("failed to calculate deadline", "error", err)
			}
			if htmx {
				return render(c, fiber.StatusOK, templates.ErrorMessage(userMessage(err)))
			}
			page := templates.CalculatorPage{Types: d.Templates.All(), Form: form, Error: userMessage(err)}
			return render(c, status, templates.Calculator(page))
		}

		if htmx {
			return render(c, fiber.StatusOK, templates.Result(*view))
		}
		page := templates.CalculatorPage{Types: d.Templates.All(), Form: form, Result: view}
		return render(c, fiber.StatusOK, templates.Calculator(page))
	}
}

func calculate(c *fiber.Ctx, d Deps, form templates.CalculatorForm) (*templates.ResultView, error) {
	expedition, err := model.ParseDate(form.ExpeditionDate)
	if err != nil {
		return nil, err
	}
	req := model.CalculationRequest{
		ExpeditionDate:        expedition,
		DeadlineTypeCode:      form.DeadlineTypeCode,
		Jurisdiction:          model.Jurisdiction{State: form.State, Municipality: form.Municipality}.Normalize(),
		IsPublicDefenderParty: form.PublicDefender,
	}
	if req.Jurisdiction.State == "" {
		return nil, errStateRequired
	}

	res, err := d.Engine.CalculateByCode(req)
	if err != nil {
		return nil, err
	}
	tmpl, err := d.Templates.Get(res.DeadlineTypeCode)
	if err != nil {
		return nil, err
	}

	view := &templates.ResultView{Type: *tmpl, Result: res}
	view.BusinessDaysLeft, view.DaysLeftUnknown = businessDaysLeft(d, res)
	if rec := record(c, d, form.CaseRef, res); rec != nil {
		view.RecordID = rec.ID
	}
	return view, nil
}

// businessDaysLeft counts business days from today up to the final deadline,
// or -1 once it has passed. unknown is set when the deadline is too far ahead
// to count.
func businessDaysLeft(d Deps, res *model.CalculationResult) (left int, unknown bool) {
	today := civilToday(d.Now)
	if res.FinalDeadlineDate.Before(today) {
		return -1, false
	}
	n, err := d.Engine.Calendar().CountBusinessDays(today, res.FinalDeadlineDate, res.Jurisdiction)
	if err != nil {
		return 0, true
	}
	return n, false
}

// record writes the result to the audit log, if there is one. A failed
// write is logged and does not fail the calculation.
func record(c *fiber.Ctx, d Deps, caseRef string, res *model.CalculationResult) *model.CalculationRecord {
	if d.Audit == nil {
		return nil
	}
	rec, err := d.Audit.Insert(c.UserContext(), caseRef, res)
	if err != nil {
		d.Logger.Error("failed to record calculation", "deadline_type", res.DeadlineTypeCode, "error", err)
		return nil
	}
	return rec
}
