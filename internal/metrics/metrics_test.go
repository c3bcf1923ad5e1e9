package metrics

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCollectorsNilSafe(t *testing.T) {
	var c *Collectors
	require.NotPanics(t, func() {
		c.ObserveAppend(1)
		c.ObserveRemove(1)
		c.ObserveCompaction()
		c.SetRemoveLogSize(1)
		c.SetDataFileBytes(1)
		c.SetPruneListSize(1)
	})
}

func TestCollectorsHandlerServesMetrics(t *testing.T) {
	c := New()
	c.ObserveAppend(3)
	c.SetDataFileBytes(120)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/metrics", nil)
	c.Handler().ServeHTTP(rec, req)

	require.Equal(t, 200, rec.Code)
	require.Contains(t, rec.Body.String(), "pmmrstore_appends_total 3")
	require.Contains(t, rec.Body.String(), "pmmrstore_data_file_bytes 120")
}
