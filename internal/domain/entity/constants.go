package entity

// Counter defaults
const (
	DefaultCounterKey   = "presupuestoN" // persisted key of the running document number
	DefaultFirstNumber  = 1
	QuoteFileNamePrefix = "Presupuesto"
	QuoteFileExtension  = ".pdf"
)

// Counter backend names
const (
	CounterBackendSQLite = "sqlite"
	CounterBackendRedis  = "redis"
	CounterBackendMemory = "memory"
)

// Generation modes
const (
	ModePreview = "PREVIEW"
	ModeFinal   = "FINAL"
)
