package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/suite"

	"github.com/jjenkins/prazos/internal/calendar"
	"github.com/jjenkins/prazos/internal/metrics"
	"github.com/jjenkins/prazos/internal/model"
	"github.com/jjenkins/prazos/internal/service"
	"github.com/jjenkins/prazos/seed"
)

// memoryAudit is an in-memory AuditLog
type memoryAudit struct {
	mu      sync.Mutex
	records []model.CalculationRecord
}

func (a *memoryAudit) Insert(_ context.Context, caseRef string, res *model.CalculationResult) (*model.CalculationRecord, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	rec := model.CalculationRecord{ID: uuid.NewString(), CaseRef: caseRef, Result: *res, CreatedAt: time.Now()}
	a.records = append(a.records, rec)
	return &rec, nil
}

func (a *memoryAudit) GetByID(_ context.Context, id string) (*model.CalculationRecord, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, r := range a.records {
		if r.ID == id {
			return &r, nil
		}
	}
	return nil, nil
}

func (a *memoryAudit) GetRecent(_ context.Context, limit int) ([]model.CalculationRecord, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if len(a.records) < limit {
		limit = len(a.records)
	}
	return append([]model.CalculationRecord(nil), a.records[:limit]...), nil
}

func (a *memoryAudit) GetByCaseRef(_ context.Context, caseRef string) ([]model.CalculationRecord, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	var out []model.CalculationRecord
	for _, r := range a.records {
		if r.CaseRef == caseRef {
			out = append(out, r)
		}
	}
	return out, nil
}

type HandlersSuite struct {
	suite.Suite
	app   *fiber.App
	audit *memoryAudit
}

func TestHandlersSuite(t *testing.T) {
	suite.Run(t, new(HandlersSuite))
}

func (s *HandlersSuite) SetupTest() {
	parser := service.NewParser()

	content, err := seed.Read("", seed.HolidaysFile)
	s.Require().NoError(err)
	hs, err := parser.ParseHolidays(content)
	s.Require().NoError(err)
	registry, err := calendar.NewRegistry(hs.Config, calendar.NewYearCache())
	s.Require().NoError(err)

	content, err = seed.Read("", seed.DeadlineTypesFile)
	s.Require().NoError(err)
	ds, err := parser.ParseDeadlineTypes(content)
	s.Require().NoError(err)
	templates, err := service.NewTemplateRegistry(ds.Types)
	s.Require().NoError(err)

	reg := prometheus.NewRegistry()
	engine := service.NewDeadlineEngine(registry, templates, metrics.New(reg), nil)

	s.audit = &memoryAudit{}
	s.app = fiber.New()
	Register(s.app, Deps{
		Engine:    engine,
		Templates: templates,
		Holidays:  registry,
		Audit:     s.audit,
		Gatherer:  reg,
		Now:       func() time.Time { return time.Date(2025, time.December, 10, 15, 0, 0, 0, time.UTC) },
	})
}

func (s *HandlersSuite) do(req *http.Request) (*http.Response, string) {
	resp, err := s.app.Test(req, -1)
	s.Require().NoError(err)
	body, err := io.ReadAll(resp.Body)
	s.Require().NoError(err)
	resp.Body.Close()
	return resp, string(body)
}

func (s *HandlersSuite) postJSON(path, body string) (*http.Response, string) {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return s.do(req)
}

func (s *HandlersSuite) postForm(form url.Values, htmx bool) (*http.Response, string) {
	req := httptest.NewRequest(http.MethodPost, "/calcular", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if htmx {
		req.Header.Set("HX-Request", "true")
	}
	return s.do(req)
}

func (s *HandlersSuite) TestCalculateAPI() {
	resp, body := s.postJSON("/api/prazos", `{
		"deadline_type_code": "resposta_acusacao",
		"expedition_date": "2025-11-28",
		"state": "sp",
		"public_defender": true,
		"case_ref": "0001234-56.2025.8.26.0050"
	}`)
	s.Require().Equal(http.StatusOK, resp.StatusCode, body)

	var out CalculationResponse
	s.Require().NoError(json.Unmarshal([]byte(body), &out))
	s.Equal("RESPOSTA_ACUSACAO", out.DeadlineTypeCode)
	s.Equal("SP", out.State)
	s.Equal("2025-12-08", out.ReadingDate)
	s.Equal("2025-12-28", out.RawDeadlineDate)
	s.Equal("2026-01-07", out.FinalDeadlineDate)
	s.Equal(2, out.MultiplierApplied)
	s.Equal(20, out.EffectiveDays)
	s.Equal(model.CalendarDays, out.CountingMode)
	s.False(out.JurisdictionDataIncomplete)
	s.Len(out.Trace, 4)
	s.Equal(model.RuleRollForward, out.Trace[3].Rule)
	s.NotEmpty(out.ID)
	s.Require().Len(s.audit.records, 1)
	s.Equal("0001234-56.2025.8.26.0050", s.audit.records[0].CaseRef)

	resp, body = s.do(httptest.NewRequest(http.MethodGet, "/api/prazos/"+out.ID, nil))
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	var stored CalculationResponse
	s.Require().NoError(json.Unmarshal([]byte(body), &stored))
	s.Equal(out.FinalDeadlineDate, stored.FinalDeadlineDate)
	s.Equal(out.CaseRef, stored.CaseRef)

	resp, _ = s.do(httptest.NewRequest(http.MethodGet, "/api/prazos/"+uuid.NewString(), nil))
	s.Equal(http.StatusNotFound, resp.StatusCode)
}

func (s *HandlersSuite) TestCalculateAPIErrors() {
	tests := []struct {
		name   string
		body   string
		status int
	}{
		{"unknown type", `{"deadline_type_code":"NAO_EXISTE","expedition_date":"2025-11-28","state":"SP"}`, http.StatusNotFound},
		{"bad date", `{"deadline_type_code":"CONTESTACAO","expedition_date":"28/11/2025","state":"SP"}`, http.StatusBadRequest},
		{"pre gregorian date", `{"deadline_type_code":"CONTESTACAO","expedition_date":"1500-01-01","state":"SP"}`, http.StatusBadRequest},
		{"missing state", `{"deadline_type_code":"CONTESTACAO","expedition_date":"2025-11-28"}`, http.StatusBadRequest},
		{"malformed json", `{"deadline_type_code":`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			resp, body := s.postJSON("/api/prazos", tt.body)
			s.Equal(tt.status, resp.StatusCode, body)
			s.Contains(body, `"error"`)
		})
	}
	s.Empty(s.audit.records)
}

func (s *HandlersSuite) TestIncompleteJurisdiction() {
	resp, body := s.postJSON("/api/prazos", `{"deadline_type_code":"CONTESTACAO","expedition_date":"2025-06-02","state":"AC"}`)
	s.Require().Equal(http.StatusOK, resp.StatusCode, body)
	s.Contains(body, `"jurisdiction_data_incomplete":true`)
}

func (s *HandlersSuite) TestDeadlineTypes() {
	resp, body := s.do(httptest.NewRequest(http.MethodGet, "/api/tipos?area=civil", nil))
	s.Require().Equal(http.StatusOK, resp.StatusCode)

	var out []DeadlineTypeResponse
	s.Require().NoError(json.Unmarshal([]byte(body), &out))
	s.Len(out, 4)
	for _, t := range out {
		s.Equal(model.AreaCivil, t.AreaOfLaw)
		s.Equal(model.BusinessDays, t.CountingMode)
	}

	_, body = s.do(httptest.NewRequest(http.MethodGet, "/api/tipos", nil))
	s.Require().NoError(json.Unmarshal([]byte(body), &out))
	s.Len(out, 12)
}

func (s *HandlersSuite) TestHolidaysAPI() {
	path := "/api/feriados/2026?uf=SP&municipio=" + url.QueryEscape("São Paulo")
	resp, body := s.do(httptest.NewRequest(http.MethodGet, path, nil))
	s.Require().Equal(http.StatusOK, resp.StatusCode, body)

	var out struct {
		Year       int               `json:"year"`
		Incomplete bool              `json:"jurisdiction_data_incomplete"`
		Holidays   []HolidayResponse `json:"holidays"`
	}
	s.Require().NoError(json.Unmarshal([]byte(body), &out))
	s.Equal(2026, out.Year)
	s.False(out.Incomplete)

	byDate := make(map[string]HolidayResponse)
	for _, h := range out.Holidays {
		byDate[h.Date] = h
	}
	s.Equal("MUNICIPAL", byDate["2026-01-25"].Layer)
	s.Equal("STATE", byDate["2026-07-09"].Layer)
	s.Equal("NATIONAL_MOVING", byDate["2026-04-03"].Layer)
	s.Equal("RECESS", byDate["2026-12-21"].Layer)

	resp, _ = s.do(httptest.NewRequest(http.MethodGet, "/api/feriados/1500", nil))
	s.Equal(http.StatusBadRequest, resp.StatusCode)
	resp, _ = s.do(httptest.NewRequest(http.MethodGet, "/api/feriados/abc", nil))
	s.Equal(http.StatusBadRequest, resp.StatusCode)
}

func (s *HandlersSuite) TestCalculatorPage() {
	resp, body := s.do(httptest.NewRequest(http.MethodGet, "/", nil))
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	s.Contains(resp.Header.Get("Content-Type"), "text/html")
	s.Contains(body, `value="2025-12-10"`)
	s.Contains(body, `value="RESPOSTA_ACUSACAO"`)
}

func (s *HandlersSuite) TestCalculateForm() {
	form := url.Values{
		"deadline_type_code": {"RESPOSTA_ACUSACAO"},
		"expedition_date":    {"2025-11-28"},
		"state":              {"SP"},
		"public_defender":    {"true"},
		"case_ref":           {"0009999-00.2025.8.26.0001"},
	}

	resp, body := s.postForm(form, true)
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	s.Contains(body, "Vencimento: 07/01/2026 (quarta-feira)")
	s.Contains(body, "Restam 8 dias úteis.")
	s.NotContains(body, "<html")

	resp, body = s.postForm(form, false)
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	s.Contains(body, "<html")
	s.Contains(body, "Vencimento: 07/01/2026")

	_, body = s.do(httptest.NewRequest(http.MethodGet, "/historico", nil))
	s.Contains(body, "0009999-00.2025.8.26.0001")

	_, body = s.do(httptest.NewRequest(http.MethodGet, "/historico?processo=0009999-00.2025.8.26.0001", nil))
	s.Contains(body, "RESPOSTA_ACUSACAO")

	_, body = s.do(httptest.NewRequest(http.MethodGet, "/historico?processo=0000000-00.2025.8.26.0001", nil))
	s.Contains(body, "Nenhum cálculo registrado.")
}

func (s *HandlersSuite) TestCalculateFormErrors() {
	form := url.Values{"deadline_type_code": {"CONTESTACAO"}, "expedition_date": {"ontem"}, "state": {"SP"}}

	resp, body := s.postForm(form, false)
	s.Equal(http.StatusBadRequest, resp.StatusCode)
	s.Contains(body, "Data inválida")
	s.Contains(body, `value="ontem"`)

	resp, body = s.postForm(form, true)
	s.Equal(http.StatusOK, resp.StatusCode)
	s.Contains(body, "Data inválida")

	form.Set("expedition_date", "2025-11-28")
	form.Set("deadline_type_code", "NAO_EXISTE")
	resp, body = s.postForm(form, false)
	s.Equal(http.StatusNotFound, resp.StatusCode)
	s.Contains(body, "Tipo de prazo desconhecido.")

	_, body = s.do(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	s.Contains(body, `prazos_calculation_failures_total{kind="unknown_type"} 1`)
}

func (s *HandlersSuite) TestCalculateFormFarDeadline() {
	form := url.Values{
		"deadline_type_code": {"RESPOSTA_ACUSACAO"},
		"expedition_date":    {"9000-01-10"},
		"state":              {"SP"},
	}

	resp, body := s.postForm(form, true)
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	s.Contains(body, "Vencimento:")
	s.NotContains(body, "Restam")
	s.NotContains(body, "Prazo vencido.")
}

func (s *HandlersSuite) TestIncompleteJurisdictionMetricLabel() {
	for i := range 3 {
		body := fmt.Sprintf(`{"deadline_type_code":"CONTESTACAO","expedition_date":"2025-06-02","state":"Z%d"}`, i)
		resp, _ := s.postJSON("/api/prazos", body)
		s.Require().Equal(http.StatusOK, resp.StatusCode)
	}

	_, body := s.do(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	s.Contains(body, `prazos_incomplete_jurisdiction_total{state="unknown"} 3`)
	s.NotContains(body, `state="Z0"`)
}

func (s *HandlersSuite) TestHolidaysPage() {
	resp, body := s.do(httptest.NewRequest(http.MethodGet, "/feriados?ano=2026&uf=ac", nil))
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	s.Contains(body, "não estão cadastrados")
	s.Contains(body, "Corpus Christi")

	resp, _ = s.do(httptest.NewRequest(http.MethodGet, "/feriados?ano=x", nil))
	s.Equal(http.StatusBadRequest, resp.StatusCode)
}

func (s *HandlersSuite) TestMetrics() {
	s.postJSON("/api/prazos", `{"deadline_type_code":"CONTESTACAO","expedition_date":"2025-06-02","state":"SP"}`)

	resp, body := s.do(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	s.Contains(body, `prazos_calculations_total{counting_mode="BUSINESS_DAYS",deadline_type="CONTESTACAO"} 1`)
}

func (s *HandlersSuite) TestHistoryDisabled() {
	app := fiber.New()
	Register(app, Deps{Templates: &service.TemplateRegistry{}})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/historico", nil), -1)
	s.Require().NoError(err)
	body, _ := io.ReadAll(resp.Body)
	s.Equal(http.StatusOK, resp.StatusCode)
	s.Contains(string(body), "desativado")

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil), -1)
	s.Require().NoError(err)
	s.Equal(http.StatusNotFound, resp.StatusCode)
}
