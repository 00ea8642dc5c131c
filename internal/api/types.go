package api

// EngineError represents a structured error response with context
type EngineError struct {
	Type      string         `json:"type"`
	Message   string         `json:"message"`
	Context   map[string]any `json:"context,omitempty"`
	RequestID string         `json:"request_id,omitempty"`
}

// Error implements the error interface
func (e EngineError) Error() string {
	return e.Message
}

// Error types with proper categorization
const (
	ErrTypeValidation    = "validation_error"
	ErrTypeMethodUnknown = "method_unknown"
	ErrTypeNotFound      = "not_found"
	ErrTypeTimeout       = "timeout"
	ErrTypeInternal      = "internal_error"
)

// FindRequest is the body of a single-creature frame search.
type FindRequest struct {
	Method      string `json:"method"`
	Version     string `json:"version"`
	PID         uint32 `json:"pid"`
	GenderRatio uint8  `json:"gender_ratio"`
	OriginSeed  uint32 `json:"origin_seed"`
}

// FoundFrame is one candidate in a FindResponse.
type FoundFrame struct {
	Seed uint32 `json:"seed"`
	ESV  uint16 `json:"esv"`
	Lead string `json:"lead"`
}

// FindResponse lists every candidate frame for one origin seed.
type FindResponse struct {
	Frames        []FoundFrame `json:"frames"`
	Count         int          `json:"count"`
	Nature        uint32       `json:"nature"`
	EngineVersion string       `json:"engine_version"`
	Echo          FindRequest  `json:"echo"`
}

// MethodInfo describes one supported derivation method.
type MethodInfo struct {
	Name      string `json:"name"`
	EggOrigin bool   `json:"egg_origin"`
	CuteCharm bool   `json:"cute_charm"`
}

// VersionInfo reports build metadata.
type VersionInfo struct {
	EngineVersion string `json:"engine_version"`
	GitCommit     string `json:"git_commit"`
	BuildTime     string `json:"build_time"`
}
