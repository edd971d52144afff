package metrics

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestRecorderCounts(t *testing.T) {
	r := New()

	r.RecordInvocation("Requirements Agent", nil, 2*time.Second)
	r.RecordInvocation("Requirements Agent", nil, time.Second)
	r.RecordInvocation("Coordinator Agent", errors.New("boom"), time.Second)
	r.RecordFallback("schemas")
	r.RecordToolCall("save_endpoints", false)
	r.RecordToolCall("save_endpoints", true)

	require.Equal(t, 2.0, testutil.ToFloat64(r.invocations.WithLabelValues("Requirements Agent", "success")))
	require.Equal(t, 1.0, testutil.ToFloat64(r.invocations.WithLabelValues("Coordinator Agent", "error")))
	require.Equal(t, 1.0, testutil.ToFloat64(r.fallbacks.WithLabelValues("schemas")))
	require.Equal(t, 1.0, testutil.ToFloat64(r.toolCalls.WithLabelValues("save_endpoints", "error")))
	require.Equal(t, 1.0, testutil.ToFloat64(r.toolCalls.WithLabelValues("save_endpoints", "success")))
}

func TestRecorderNilSafe(t *testing.T) {
	var r *Recorder
	require.NotPanics(t, func() {
		r.RecordInvocation("x", nil, time.Second)
		r.RecordFallback("x")
		r.RecordToolCall("x", true)
	})
}

func TestRecorderWriteFile(t *testing.T) {
	r := New()
	r.RecordFallback("endpoints")

	path := filepath.Join(t.TempDir(), "specwright.prom")
	require.NoError(t, r.WriteFile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), `specwright_extraction_fallbacks_total{artifact="endpoints"} 1`)
}
