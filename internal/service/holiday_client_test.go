package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jjenkins/prazos/internal/model"
)

func newTestClient(url string) *HolidayClient {
	c := NewHolidayClient(url + "/")
	c.backoff = time.Millisecond
	return c
}

func TestHolidayClientFetchHolidays(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/2025", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"date":"2025-01-01","name":"Confraternização mundial","type":"national"},
			{"date":"2025-03-04","name":"Carnaval","type":"national"}
		]`))
	}))
	defer srv.Close()

	hs, err := newTestClient(srv.URL).FetchHolidays(context.Background(), 2025)
	require.NoError(t, err)
	require.Len(t, hs, 2)
	assert.Equal(t, model.Date(2025, time.March, 4), hs[1].Date)
	assert.Equal(t, "Carnaval", hs[1].Name)
	assert.Equal(t, "national", hs[1].Type)
}

func TestHolidayClientRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	hs, err := newTestClient(srv.URL).FetchHolidays(context.Background(), 2025)
	require.NoError(t, err)
	assert.Empty(t, hs)
	assert.Equal(t, int32(3), calls.Load())
}

func TestHolidayClientGivesUp(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).FetchHolidays(context.Background(), 2025)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed after 3 attempts")
	assert.Equal(t, int32(maxRetries), calls.Load())
}

func TestHolidayClientDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).FetchHolidays(context.Background(), 2025)
	assert.ErrorIs(t, err, errNotRetryable)
	assert.Equal(t, int32(1), calls.Load())
}

func TestHolidayClientRejectsBadInput(t *testing.T) {
	c := newTestClient("http://127.0.0.1:0")
	_, err := c.FetchHolidays(context.Background(), 1500)
	assert.ErrorIs(t, err, model.ErrInvalidYear)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"date":"01/01/2025","name":"x","type":"national"}]`))
	}))
	defer srv.Close()

	_, err = newTestClient(srv.URL).FetchHolidays(context.Background(), 2025)
	assert.ErrorIs(t, err, model.ErrInvalidDate)
}
