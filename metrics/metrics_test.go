package metrics

import (
	"context"
	"io"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserOpMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewUserOpMetrics(reg)

	m.IncUserOp("SUBMITTED")
	m.IncUserOp("SUBMITTED")
	m.IncUserOp("FAILED")
	m.ObserveStage("FEES_SET", 20*time.Millisecond)

	assert.Equal(t, float64(2), testutil.ToFloat64(m.numUserOps.WithLabelValues("SUBMITTED")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.numUserOps.WithLabelValues("FAILED")))

	count, err := testutil.GatherAndCount(reg, "ap_userop_stage_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestDuplicateRegistrationPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewUserOpMetrics(reg)
	assert.Panics(t, func() { NewUserOpMetrics(reg) })
}

func TestServe(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewUserOpMetrics(reg)
	m.IncUserOp("SUBMITTED")

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	errC := Serve(ctx, ln, reg, nil)

	resp, err := http.Get("http://" + ln.Addr().String() + "/metrics")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	assert.Contains(t, string(body), `ap_num_userops_total{status="SUBMITTED"} 1`)

	cancel()
	for err := range errC {
		assert.NoError(t, err)
	}
}
