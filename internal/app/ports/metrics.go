package ports

// OperationMetrics counts outcomes of map operations. op names the
// operation ("place", "remove", "harvest", ...); code is the domain
// reason a request was rejected.
type OperationMetrics interface {
	RecordSuccess(op string)
	RecordRejected(op, code string)
	RecordFailure(op string)
}
