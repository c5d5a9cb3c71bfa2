package log

// Common field names for structured logging
const (
	FieldComponent  = "component"
	FieldBatchID    = "batch_id"
	FieldSourceType = "source_type"
	FieldRowIndex   = "row"
	FieldGroupID    = "group_id"
	FieldError      = "error"
	FieldOperation  = "operation"
	FieldOutcome    = "outcome"
	FieldDuration   = "duration_ms"
)

// Components defines standard component names
const (
	ComponentApp      = "app"
	ComponentImport   = "import"
	ComponentStorage  = "storage"
	ComponentAMQP     = "amqp"
	ComponentWorker   = "worker"
	ComponentSheets   = "sheets"
	ComponentClassify = "classify"
	ComponentTransfer = "transfer"
)

// Operations defines standard operation names
const (
	OpImport   = "import"
	OpInsert   = "insert"
	OpPair     = "pair"
	OpExport   = "export"
	OpShutdown = "shutdown"
	OpStartup  = "startup"
)
