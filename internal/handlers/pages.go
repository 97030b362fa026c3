package handlers

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jjenkins/prazos/internal/model"
	"github.com/jjenkins/prazos/internal/templates"
)

const historyLimit = 50

// HolidaysHandler renders the holidays of ?ano= for ?uf= and ?municipio=
func HolidaysHandler(d Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		page := templates.HolidaysPage{
			Year:         civilToday(d.Now).Year(),
			Jurisdiction: model.Jurisdiction{State: c.Query("uf"), Municipality: c.Query("municipio")}.Normalize(),
		}

		if s := c.Query("ano"); s != "" {
			year, err := strconv.Atoi(s)
			if err != nil {
				page.Error = "Ano inválido."
				return render(c, fiber.StatusBadRequest, templates.Holidays(page))
			}
			page.Year = year
		}

		holidays, err := d.Holidays.Holidays(page.Year, page.Jurisdiction)
		if err != nil {
			page.Error = userMessage(err)
			return render(c, statusFor(err), templates.Holidays(page))
		}
		page.Holidays = holidays
		page.Incomplete = page.Jurisdiction.State != "" && d.Holidays.Incomplete(page.Jurisdiction)

		return render(c, fiber.StatusOK, templates.Holidays(page))
	}
}

// HistoryHandler renders the most recent calculations, or every calculation
// of one case with ?processo=
func HistoryHandler(d Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		page := templates.HistoryPage{
			Enabled: d.Audit != nil,
			CaseRef: strings.TrimSpace(c.Query("processo")),
		}
		if !page.Enabled {
			return render(c, fiber.StatusOK, templates.History(page))
		}

		ctx := c.UserContext()
		var (
			records []model.CalculationRecord
			err     error
		)
		if page.CaseRef != "" {
			records, err = d.Audit.GetByCaseRef(ctx, page.CaseRef)
		} else {
			records, err = d.Audit.GetRecent(ctx, historyLimit)
		}
		if err != nil {
			d.Logger.Error("failed to load calculations", "error", err)
			return c.Status(fiber.StatusInternalServerError).SendString("Erro ao carregar o histórico")
		}
		page.Records = records

		if d.Summary != nil {
			summary, err := d.Summary.GetLatestMetrics(ctx)
			if err != nil {
				d.Logger.Warn("failed to load audit summary", "error", err)
			} else {
				page.Summary = summary
			}
		}

		return render(c, fiber.StatusOK, templates.History(page))
	}
}
