package ir

// Version constants for persisted records.
const (
	// SchemaVersion is the version of the canonical record layout.
	SchemaVersion = "1"

	// CoreVersion is the statecore version stamped on recorded traces.
	CoreVersion = "0.1.0"
)
