package outcome

import (
	"tilecore/internal/app/ports"
	"tilecore/internal/domain/world"
)

// Record classifies err for metrics: nil is a success, a domain error
// with a reason code is a rejection, anything else is a failure.
func Record(m ports.OperationMetrics, op string, err error) {
	if m == nil {
		return
	}
	if err == nil {
		m.RecordSuccess(op)
		return
	}
	if code, ok := world.ReasonCode(err); ok {
		m.RecordRejected(op, code)
		return
	}
	m.RecordFailure(op)
}
