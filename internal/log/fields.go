package log

// Field names shared across components so log lines stay queryable.
const (
	FieldComponent  = "component"
	FieldRequestID  = "request_id"
	FieldClientIP   = "client_ip"
	FieldMethod     = "method"
	FieldPath       = "path"
	FieldStatusCode = "status_code"
	FieldDuration   = "duration_ms"
	FieldError      = "error"

	FieldUserID      = "user_id"
	FieldEmail       = "email"
	FieldCategoryID  = "category_id"
	FieldCategory    = "category"
	FieldKind        = "kind"
	FieldTxID        = "transaction_id"
	FieldAmountCents = "amount_cents"
	FieldDate        = "date"
)

// Component names.
const (
	ComponentApp     = "app"
	ComponentHTTP    = "http"
	ComponentStorage = "storage"
	ComponentAMQP    = "amqp"
	ComponentWorker  = "worker"
	ComponentExport  = "export"
)
