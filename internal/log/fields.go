package log

// Common field names for structured logging
const (
	FieldComponent   = "component"
	FieldOperation   = "operation"
	FieldError       = "error"
	FieldSuccess     = "success"
	FieldBackend     = "backend"
	FieldCategory    = "category"
	FieldAmountCents = "amount_cents"
	FieldDate        = "date"
	FieldMonthKey    = "month_key"
	FieldRuleDesc    = "rule_description"
	FieldCount       = "count"
	FieldRecipients  = "recipients"
	FieldPath        = "path"
	FieldMethod      = "method"
	FieldStatusCode  = "status_code"
	FieldDuration    = "duration_ms"
)

// Standard component names
const (
	ComponentApp       = "app"
	ComponentHTTP      = "http"
	ComponentService   = "service"
	ComponentStore     = "store"
	ComponentBackend   = "backend"
	ComponentRecurring = "recurring"
	ComponentScheduler = "scheduler"
	ComponentMail      = "mail"
	ComponentConfig    = "config"
	ComponentAMQP      = "amqp"
	ComponentWorker    = "worker"
)
