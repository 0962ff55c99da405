package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordReport(t *testing.T) {
	before := testutil.ToFloat64(reportsTotal.WithLabelValues(KindException))

	RecordReport(KindException)
	RecordReport(KindException)

	assert.Equal(t, before+2, testutil.ToFloat64(reportsTotal.WithLabelValues(KindException)))
}

func TestRecordReportFailure(t *testing.T) {
	before := testutil.ToFloat64(reportFailures.WithLabelValues(KindShutdown))

	RecordReportFailure(KindShutdown)

	assert.Equal(t, before+1, testutil.ToFloat64(reportFailures.WithLabelValues(KindShutdown)))
	assert.Equal(t, 0.0, testutil.ToFloat64(reportFailures.WithLabelValues(KindError)))
}
