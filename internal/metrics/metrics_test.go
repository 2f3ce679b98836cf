package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCountersRegistered(t *testing.T) {
	m := New()

	m.SharesCreated.WithLabelValues("FILE").Inc()
	m.SharesCreated.WithLabelValues("FILE").Inc()
	m.SharesCreated.WithLabelValues("PASTE").Inc()
	m.ShareViews.Inc()
	m.ViewsRejected.WithLabelValues("password").Inc()

	assert.Equal(t, float64(2), testutil.ToFloat64(m.SharesCreated.WithLabelValues("FILE")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.SharesCreated.WithLabelValues("PASTE")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.ShareViews))
}

func TestHandlerServesScrape(t *testing.T) {
	m := New()
	m.ArchivesBuilt.Inc()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "shareforge_archives_built_total 1")
}
