package enrich

// State is a step of the enrichment workflow.
type State string

const (
	StateCreated         State = "Created"
	StateGlobalIDPending State = "GlobalIdPending"
	StateGlobalIDDone    State = "GlobalIdDone"
	StateGlobalIDFailed  State = "GlobalIdFailed"
	StateEntityPending   State = "EntityPending"
	StateEntityDone      State = "EntityDone"
	StateEntityFailed    State = "EntityFailed"
	StateComplete        State = "Complete"
)

// Status is the outcome of one sub-lookup.
type Status string

const (
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
	StatusSkipped   Status = "skipped"
)

// SubResult reports one sub-lookup.
type SubResult struct {
	Status  Status
	Changed bool
	Err     error
}

// Summary reports both sub-lookups of one enrichment.
type Summary struct {
	GlobalID    SubResult
	Entity      SubResult
	FIGIChanged bool
	LEIChanged  bool
}

// Partial reports whether at least one sub-lookup failed.
func (s Summary) Partial() bool {
	return s.GlobalID.Status == StatusFailed || s.Entity.Status == StatusFailed
}

var transitions = map[State][]State{
	StateCreated:         {StateGlobalIDPending, StateEntityPending, StateComplete},
	StateGlobalIDPending: {StateGlobalIDDone, StateGlobalIDFailed},
	StateGlobalIDDone:    {StateEntityPending, StateComplete},
	StateGlobalIDFailed:  {StateEntityPending, StateComplete},
	StateEntityPending:   {StateEntityDone, StateEntityFailed},
	StateEntityDone:      {StateComplete},
	StateEntityFailed:    {StateComplete},
}

// machine records the path taken through the workflow.
type machine struct {
	current State
	history []State
}

func newMachine() *machine {
	return &machine{current: StateCreated, history: []State{StateCreated}}
}

// to moves to next. Illegal transitions indicate a programming error.
func (m *machine) to(next State) {
	for _, allowed := range transitions[m.current] {
		if allowed == next {
			m.current = next
			m.history = append(m.history, next)
			return
		}
	}
	panic("enrich: illegal transition " + string(m.current) + " -> " + string(next))
}
