package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lumitemp/pkg/model"
)

func TestRecordFetch(t *testing.T) {
	before := testutil.ToFloat64(fetches.WithLabelValues("humidity", OutcomeStatus))
	RecordFetch(model.Humidity, OutcomeStatus)
	RecordFetch(model.Humidity, OutcomeStatus)
	after := testutil.ToFloat64(fetches.WithLabelValues("humidity", OutcomeStatus))
	assert.Equal(t, before+2, after)
}

func TestRecordAppend(t *testing.T) {
	before := testutil.ToFloat64(samplesAppended.WithLabelValues("temperature"))
	RecordAppend(model.Temperature, 3, 7)
	RecordAppend(model.Temperature, 0, 7)
	assert.Equal(t, before+3, testutil.ToFloat64(samplesAppended.WithLabelValues("temperature")))
	assert.Equal(t, 7.0, testutil.ToFloat64(seriesLength.WithLabelValues("temperature")))
}

func TestObserveTick(t *testing.T) {
	ObserveTick(20 * time.Millisecond)
	assert.GreaterOrEqual(t, testutil.CollectAndCount(tickDuration), 1)
}

func TestInstrumentHandler(t *testing.T) {
	r := mux.NewRouter()
	r.Use(InstrumentHandler)
	r.HandleFunc("/api/figure", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	before := testutil.ToFloat64(httpRequests.WithLabelValues("GET", "/api/figure", "418"))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/figure", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Equal(t, before+1, testutil.ToFloat64(httpRequests.WithLabelValues("GET", "/api/figure", "418")))
}

func TestInstrumentHandler_ImplicitOK(t *testing.T) {
	r := mux.NewRouter()
	r.Use(InstrumentHandler)
	r.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	before := testutil.ToFloat64(httpRequests.WithLabelValues("GET", "/healthz", "200"))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, before+1, testutil.ToFloat64(httpRequests.WithLabelValues("GET", "/healthz", "200")))
}

func TestHandler(t *testing.T) {
	RecordFetch(model.Luminosity, OutcomeOK)

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, `lumitemp_sth_fetches_total{kind="luminosity",outcome="ok"}`))
}
