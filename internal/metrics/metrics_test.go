package metrics

import (
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCounters(t *testing.T) {
	m := New()

	m.LoadFinished(nil)
	m.LoadFinished(nil)
	m.LoadFinished(errors.New("boom"))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Loads.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Loads.WithLabelValues("error")))

	m.HitTest(true)
	m.HitTest(false)
	m.HitTest(false)
	assert.Equal(t, 2.0, testutil.ToFloat64(m.HitTests.WithLabelValues("miss")))

	m.SetRebuilds(3, 0)
	m.SetRebuilds(3, 3)
	m.SetRebuilds(5, 3)
	assert.Equal(t, 5.0, testutil.ToFloat64(m.IndexRebuilds))

	m.SetState(4, 2)
	assert.Equal(t, 4.0, testutil.ToFloat64(m.VisibleRegions))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.ActiveFades))

	m.ObserveDecode(20 * time.Millisecond)
	assert.Equal(t, 1, testutil.CollectAndCount(m.DecodeDuration))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.LoadFinished(nil)
	m.HitTest(true)
	m.SetRebuilds(1, 0)
	m.SetState(1, 1)
	m.ObserveDecode(time.Second)
}

func TestHandler(t *testing.T) {
	m := New()
	m.LoadFinished(nil)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	assert.Equal(t, 200, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), `neuroview_region_loads_total{result="ok"} 1`))
}
