package model

// Agreement is a message every agent is assumed to know and accept at
// logical time At. Agreements are created by a synchronizer-driven
// consensus step outside this core and live only in the synchronized
// agreement store.
type Agreement struct {
	Message Message   `json:"message"`
	At      Timestamp `json:"at"`
}

// ID returns the identity of the embedded message.
func (a Agreement) ID() MessageID { return a.Message.ID }

// AuthorID returns the author of the embedded message.
func (a Agreement) AuthorID() AgentID { return a.Message.Author }

// When returns the timestamp at which the agreement applies.
func (a Agreement) When() Timestamp { return a.At }

// Equal reports whether two agreements embed equal messages at the same
// timestamp.
func (a Agreement) Equal(other Agreement) bool {
	return a.At == other.At && a.Message.Equal(other.Message)
}

// Action is a write-once enactment: an actor commits to the statement
// Enacts, justified by the agreement Basis plus the Extra statements, at
// declared time Taken. Actions are never retracted.
type Action struct {
	ID     ActionID   `json:"id"`
	Actor  AgentID    `json:"actor"`
	Basis  Agreement  `json:"basis"`
	Extra  MessageSet `json:"extra"`
	Enacts Message    `json:"enacts"`
	Taken  Timestamp  `json:"taken"`
}

// ActorID returns the agent that took the action.
func (a Action) ActorID() AgentID { return a.Actor }

// When returns the declared time the action was taken at.
func (a Action) When() Timestamp { return a.Taken }

// Justification returns the full set of messages offered to support the
// action: the basis, the extra statements, and the enacted statement
// itself. Folding the basis and enactment in here is what makes the
// audit's completeness property hold by construction.
func (a Action) Justification() MessageSet {
	just := NewMessageSet()
	for m := range a.Extra.All() {
		just.Add(m)
	}
	just.Add(a.Basis.Message)
	just.Add(a.Enacts)
	return just
}
