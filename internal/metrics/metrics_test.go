package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, c.Write(&m))
	return m.GetCounter().GetValue()
}

func TestGet_Singleton(t *testing.T) {
	assert.Same(t, Get(), Get())
}

func TestObserveAttempt(t *testing.T) {
	m := Get()
	before := counterValue(t, m.BackendAttempts.WithLabelValues("ocr", "failure"))

	m.ObserveAttempt("ocr", "failure", 20*time.Millisecond)

	assert.Equal(t, before+1, counterValue(t, m.BackendAttempts.WithLabelValues("ocr", "failure")))
}

func TestObserveExtraction(t *testing.T) {
	m := Get()
	before := counterValue(t, m.ExtractionsTotal.WithLabelValues("resolved"))

	m.ObserveExtraction("resolved", time.Second)

	assert.Equal(t, before+1, counterValue(t, m.ExtractionsTotal.WithLabelValues("resolved")))
}
