package capacity

// State is a self-assessed capacity snapshot. Each field is on a 0-12 scale
// where 12 is full and 0 is depleted.
type State struct {
	Energy    int `json:"energy"`
	Attention int `json:"attention"`
	Physical  int `json:"physical"`
}

// Type classifies a check-in against its chronological predecessor.
type Type string

const (
	TypeNormal   Type = "normal"
	TypeIncrease Type = "increase"
	TypeDrop     Type = "drop"
)

// Valid reports whether t is one of the known classifications.
func (t Type) Valid() bool {
	switch t {
	case TypeNormal, TypeIncrease, TypeDrop:
		return true
	}
	return false
}

// Icon returns the glyph the log view shows for t.
func (t Type) Icon() string {
	switch t {
	case TypeIncrease:
		return "▲"
	case TypeDrop:
		return "▼"
	default:
		return "●"
	}
}

// CheckIn is one recorded sample. It is immutable once created: OverallCapacity
// and Type are computed at creation and stored, never recomputed.
// The JSON shape is the durable storage format.
type CheckIn struct {
	// ID is a ULID assigned at creation
	ID string `json:"id"`

	// Timestamp is epoch milliseconds, interpreted in local time for day boundaries
	Timestamp int64 `json:"timestamp"`

	Capacity State `json:"capacity"`

	// Journal is free text and may be empty
	Journal string `json:"journal"`

	OverallCapacity float64 `json:"overallCapacity"`

	Type Type `json:"type"`
}
