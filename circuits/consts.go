package circuits

// used across the credential circuit and its callers
const (
	// DefaultCensusDepth is the number of merkle levels of the published
	// credential circuit artifacts.
	DefaultCensusDepth = 15
	// SerializedFieldSize is the size in bytes of a serialized field element.
	SerializedFieldSize = 32
)
