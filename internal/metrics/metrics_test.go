package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUploadStarted(t *testing.T) {
	m := New(prometheus.NewRegistry())

	done := m.UploadStarted()
	assert.Equal(t, 1.0, testutil.ToFloat64(m.InFlight))
	done(StatusOK, "photo", 1024)

	done = m.UploadStarted()
	done(StatusBadRequest, "", 0)

	assert.Equal(t, 0.0, testutil.ToFloat64(m.InFlight))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.UploadsTotal.WithLabelValues(StatusOK, "photo")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.UploadsTotal.WithLabelValues(StatusBadRequest, "unknown")))
	assert.Equal(t, 1024.0, testutil.ToFloat64(m.UploadBytes.WithLabelValues("photo")))
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	m.UploadStarted()(StatusError, "video", 10)
	m.PartSpooled()
	m.Deleted()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandler(t *testing.T) {
	m := New(nil)
	m.PartSpooled()
	m.Deleted()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.True(t, strings.Contains(body, "media_spooled_parts_total 1"))
	assert.True(t, strings.Contains(body, "media_deletes_total 1"))
	assert.True(t, strings.Contains(body, "go_goroutines"))
}
