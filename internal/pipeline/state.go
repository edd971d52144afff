package pipeline

// State is a step of a run. States only advance, in declaration order.
type State int

const (
	StateStart State = iota
	StateRequirements
	StateArchitecture
	StateEndpoints
	StateSpecAndDocs
	StateDone
)

func (s State) String() string {
	switch s {
	case StateStart:
		return "START"
	case StateRequirements:
		return "REQUIREMENTS"
	case StateArchitecture:
		return "ARCHITECTURE"
	case StateEndpoints:
		return "ENDPOINTS"
	case StateSpecAndDocs:
		return "SPEC_AND_DOCS"
	case StateDone:
		return "DONE"
	default:
		return "UNKNOWN"
	}
}
