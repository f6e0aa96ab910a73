// view.go assembles an agent's composite view over the shared database.
package store

import (
	"github.com/Lut99/justact-go/pkg/model"
	"github.com/Lut99/justact-go/pkg/view"
)

var _ view.Times = (*timesStore)(nil)

// ViewFor builds the composite view the given agent has on the shared
// database. Times and Agreed read the same rows for every agent; Stated
// and Enacted are scoped to the agent's recipient rows.
func (s *Store) ViewFor(agent model.AgentID) *view.View {
	return &view.View{
		ID:      agent,
		Times:   s.Times(),
		Agreed:  s.Agreements(),
		Stated:  s.Stated(agent),
		Enacted: s.Enacted(agent),
	}
}
