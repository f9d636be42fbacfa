package logger

// Fields is an alias for map[string]interface{} for convenience.
type Fields map[string]interface{}

// ============================================
// Tracing Fields (Context level)
// Propagated through the call chain of one generation request
// ============================================

const (
	// FieldRequestID is the HTTP request ID (UUID)
	FieldRequestID = "request_id"

	// FieldGenerationID identifies one orchestrator call
	FieldGenerationID = "generation_id"

	// FieldKeyword is the user keyword driving the generation
	FieldKeyword = "keyword"

	// FieldAttempt is the 1-based attempt number inside a generation
	FieldAttempt = "attempt"

	// FieldStage is the orchestrator stage currently running
	FieldStage = "stage"

	// FieldComponent is the component/module name
	FieldComponent = "component"

	// FieldTemplateID is the resolved template identifier
	FieldTemplateID = "template_id"
)

// ============================================
// Metric Fields (Entry level)
// ============================================

const (
	// FieldDurationMs is the execution duration in milliseconds
	FieldDurationMs = "duration_ms"

	// FieldCount is a generic count field
	FieldCount = "count"

	// FieldScore is a humor score
	FieldScore = "score"

	// FieldStatus is the operation status
	FieldStatus = "status"

	// FieldAttemptsUsed is the number of attempts a generation consumed
	FieldAttemptsUsed = "attempts_used"

	// FieldSize is a response size in bytes
	FieldSize = "size"
)
