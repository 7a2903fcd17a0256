package log

// Common field names for structured logging.
const (
	FieldComponent  = "component"
	FieldRequestID  = "request_id"
	FieldClientIP   = "client_ip"
	FieldMethod     = "method"
	FieldPath       = "path"
	FieldStatusCode = "status_code"
	FieldDuration   = "duration_ms"
	FieldError      = "error"

	FieldTaskID       = "task_id"
	FieldFlatmateID   = "flatmate_id"
	FieldGroceryID    = "grocery_item_id"
	FieldExpenseID    = "expense_id"
	FieldShareID      = "share_id"
	FieldActivityType = "activity_type"
	FieldAmountCents  = "amount_cents"
	FieldBackend      = "backend"
)

// Standard component names.
const (
	ComponentApp     = "app"
	ComponentHTTP    = "http"
	ComponentStore   = "store"
	ComponentStorage = "storage"
	ComponentAMQP    = "amqp"
	ComponentWorker  = "worker"
	ComponentBackend = "backend"
)
