package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/a-h/templ"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jjenkins/prazos/internal/calendar"
	"github.com/jjenkins/prazos/internal/model"
	"github.com/jjenkins/prazos/internal/service"
)

// TemplateCatalog lists and resolves deadline types
type TemplateCatalog interface {
	All() []model.DeadlineType
	Get(code string) (*model.DeadlineType, error)
}

// HolidayLister lists the holidays of a year for a jurisdiction
type HolidayLister interface {
	Holidays(year int, j model.Jurisdiction) ([]calendar.Holiday, error)
	Incomplete(j model.Jurisdiction) bool
}

// AuditLog records calculations
type AuditLog interface {
	Insert(ctx context.Context, caseRef string, res *model.CalculationResult) (*model.CalculationRecord, error)
	GetByID(ctx context.Context, id string) (*model.CalculationRecord, error)
	GetRecent(ctx context.Context, limit int) ([]model.CalculationRecord, error)
	GetByCaseRef(ctx context.Context, caseRef string) ([]model.CalculationRecord, error)
}

// SummarySource returns the latest audit log summary
type SummarySource interface {
	GetLatestMetrics(ctx context.Context) (map[string]string, error)
}

// Deps are the collaborators of the HTTP handlers. Audit, Summary and
// Gatherer are optional.
type Deps struct {
	Engine    *service.DeadlineEngine
	Templates TemplateCatalog
	Holidays  HolidayLister
	Audit     AuditLog
	Summary   SummarySource
	Gatherer  prometheus.Gatherer
	Logger    *slog.Logger
	Now       func() time.Time
}

// Register mounts every route on app
func Register(app *fiber.App, d Deps) {
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	if d.Now == nil {
		d.Now = time.Now
	}

	app.Get("/", CalculatorHandler(d))
	app.Post("/calcular", CalculateFormHandler(d))
	app.Get("/feriados", HolidaysHandler(d))
	app.Get("/historico", HistoryHandler(d))

	api := app.Group("/api")
	api.Post("/prazos", CalculateAPIHandler(d))
	api.Get("/prazos/:id", CalculationAPIHandler(d))
	api.Get("/tipos", DeadlineTypesHandler(d))
	api.Get("/feriados/:year", HolidaysAPIHandler(d))

	if d.Gatherer != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{})))
	}
}

func render(c *fiber.Ctx, status int, page templ.Component) error {
	handler := adaptor.HTTPHandler(templ.Handler(page, templ.WithStatus(status)))
	return handler(c)
}

var errStateRequired = errors.New("state is required")

// statusFor maps engine errors to HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, model.ErrUnknownDeadlineType):
		return http.StatusNotFound
	case errors.Is(err, model.ErrInvalidDate), errors.Is(err, model.ErrInvalidYear), errors.Is(err, errStateRequired):
		return http.StatusBadRequest
	case errors.Is(err, model.ErrInvalidTemplate):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// userMessage translates an error for the calculator page
func userMessage(err error) string {
	switch {
	case errors.Is(err, model.ErrUnknownDeadlineType):
		return "Tipo de prazo desconhecido."
	case errors.Is(err, model.ErrInvalidDate), errors.Is(err, model.ErrInvalidYear):
		return "Data inválida: informe uma data no formato AAAA-MM-DD."
	case errors.Is(err, errStateRequired):
		return "Informe a UF."
	case errors.Is(err, model.ErrInvalidTemplate):
		return "O tipo de prazo está mal configurado. Avise a administração do sistema."
	default:
		return "Não foi possível calcular o prazo."
	}
}

// civilToday returns the current civil date of the clock's location
func civilToday(now func() time.Time) time.Time {
	t := now()
	return model.Date(t.Year(), t.Month(), t.Day())
}
