// Package runtime drives agents and a synchronizer against a view source
// in rounds until every agent reports done or the synchronizer breaks.
//
// The core packages are pure; everything scheduling-shaped lives here. A
// round polls every live agent concurrently, each against a fresh view,
// then polls the synchronizer once. A participant's poll error is fatal to
// that participant only: the agent is dropped and the error reported when
// the run finishes.
package runtime

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Lut99/justact-go/pkg/model"
	"github.com/Lut99/justact-go/pkg/view"
)

// AgentPoll is an agent's verdict after one activation.
type AgentPoll int

const (
	// Pending means the agent wants to be polled again.
	Pending AgentPoll = iota
	// Ready means the agent is done and must not be polled again.
	Ready
)

// String implements fmt.Stringer.
func (p AgentPoll) String() string {
	switch p {
	case Pending:
		return "pending"
	case Ready:
		return "ready"
	default:
		return fmt.Sprintf("AgentPoll(%d)", int(p))
	}
}

// SyncPoll is a synchronizer's verdict after one activation.
type SyncPoll int

const (
	// Continue means the run should proceed to the next round.
	Continue SyncPoll = iota
	// Break means the run should stop now, regardless of agent state.
	Break
)

// String implements fmt.Stringer.
func (p SyncPoll) String() string {
	switch p {
	case Continue:
		return "continue"
	case Break:
		return "break"
	default:
		return fmt.Sprintf("SyncPoll(%d)", int(p))
	}
}

// Agent is an ordinary participant. Poll is handed a fresh view of what
// the agent can currently see and may state, gossip, and enact through it.
type Agent interface {
	ID() model.AgentID
	Poll(v *view.View) (AgentPoll, error)
}

// Synchronizer is the participant that may additionally rotate agreements
// and advance the current time through its view.
type Synchronizer interface {
	ID() model.AgentID
	Poll(v *view.View) (SyncPoll, error)
}

// ViewSource constructs the composite view a participant polls against.
// *store.Store satisfies this.
type ViewSource interface {
	ViewFor(agent model.AgentID) *view.View
}

// ParticipantError records a poll failure. The participant is dropped from
// the run; the error surfaces from Run joined with any others.
type ParticipantError struct {
	Agent model.AgentID
	Round int
	Err   error
}

func (e *ParticipantError) Error() string {
	return fmt.Sprintf("participant %s failed in round %d: %v", e.Agent, e.Round, e.Err)
}

func (e *ParticipantError) Unwrap() error { return e.Err }

// Runtime polls agents and a synchronizer in rounds.
type Runtime struct {
	src ViewSource
	log *zap.Logger
}

// Option configures a Runtime.
type Option func(*Runtime)

// WithLogger sets the logger. The default is zap.NewNop().
func WithLogger(log *zap.Logger) Option {
	return func(r *Runtime) { r.log = log }
}

// New creates a Runtime over the given view source.
func New(src ViewSource, opts ...Option) *Runtime {
	r := &Runtime{src: src, log: zap.NewNop()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run polls every agent once per round, concurrently, then the
// synchronizer. Agents that report Ready or fail are dropped. The run ends
// when no agents remain, when the synchronizer reports Break or fails, or
// when ctx is cancelled. Participant errors are joined into the result;
// context cancellation is returned as ctx.Err().
func (r *Runtime) Run(ctx context.Context, agents []Agent, sync Synchronizer) error {
	live := make([]Agent, len(agents))
	copy(live, agents)

	var failures []error
	for round := 1; len(live) > 0; round++ {
		if err := ctx.Err(); err != nil {
			return errors.Join(append(failures, err)...)
		}
		r.log.Debug("round start", zap.Int("round", round), zap.Int("agents", len(live)))

		polls := make([]AgentPoll, len(live))
		errs := make([]error, len(live))
		g, _ := errgroup.WithContext(ctx)
		for i, agent := range live {
			g.Go(func() error {
				polls[i], errs[i] = agent.Poll(r.src.ViewFor(agent.ID()))
				return nil
			})
		}
		// Goroutines record outcomes instead of returning errors, so one
		// failing agent never cancels the rest of the round.
		_ = g.Wait()

		var next []Agent
		for i, agent := range live {
			switch {
			case errs[i] != nil:
				failures = append(failures, &ParticipantError{Agent: agent.ID(), Round: round, Err: errs[i]})
				r.log.Warn("agent failed", zap.String("agent", string(agent.ID())), zap.Int("round", round), zap.Error(errs[i]))
			case polls[i] == Ready:
				r.log.Debug("agent done", zap.String("agent", string(agent.ID())), zap.Int("round", round))
			default:
				next = append(next, agent)
			}
		}
		live = next

		if sync == nil {
			continue
		}
		verdict, err := sync.Poll(r.src.ViewFor(sync.ID()))
		if err != nil {
			failures = append(failures, &ParticipantError{Agent: sync.ID(), Round: round, Err: err})
			break
		}
		if verdict == Break {
			r.log.Debug("synchronizer break", zap.Int("round", round))
			break
		}
	}
	return errors.Join(failures...)
}
