package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"classdraw/internal/models"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollector_RecordDraw(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordDraw(false, 0)
	c.RecordDraw(false, 0)
	c.RecordDraw(true, 2)

	assert.Equal(t, 2.0, testutil.ToFloat64(c.draws.WithLabelValues("lose")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.draws.WithLabelValues("win")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.awards.WithLabelValues("2")))
}

func TestCollector_SetRemaining(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.SetRemaining([]models.Prize{{ID: 1, Level: 1, Remaining: 1}, {ID: 3, Level: 3, Remaining: 4}})
	assert.Equal(t, 4.0, testutil.ToFloat64(c.remaining.WithLabelValues("3", "3")))

	c.SetRemaining([]models.Prize{{ID: 3, Level: 3, Remaining: 3}})
	assert.Equal(t, 3.0, testutil.ToFloat64(c.remaining.WithLabelValues("3", "3")))
}

func TestHandler_ExposesMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)
	c.RecordRegistration()

	rec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "classdraw_registrations_total 1"))
}
