package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/Lut99/justact-go/pkg/clock"
	"github.com/Lut99/justact-go/pkg/model"
	"github.com/Lut99/justact-go/pkg/view"
)

func (a *app) cmdAdvance(args []string) int {
	flags := flag.NewFlagSet("advance", flag.ContinueOnError)
	agent := flags.String("agent", "", "synchronizer agent ID")
	to := flags.Int64("to", -1, "target time (-1 = current + 1)")
	jsonOut := flags.Bool("json", false, "JSON output")
	if err := flags.Parse(args); err != nil {
		return 1
	}

	agentID, err := a.resolveAgent(*agent)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ja: %v\n", err)
		return 1
	}
	v := a.viewFor(agentID)

	current, err := v.Times.Current()
	if err != nil {
		fmt.Fprintf(os.Stderr, "ja: advance: %v\n", err)
		return 1
	}

	next := model.Timestamp(*to)
	if *to < 0 {
		// The synchronizer's clock is seeded from the store. An agent may
		// have declared an enactment against a time the synchronizer has
		// not caught up with yet; observing the latest declared stamp
		// (IR2) keeps the minted time ahead of it. Without enactments
		// the rollover is a plain internal event (IR1).
		c := &clock.Clock{}
		c.Set(current)
		latest, ok, err := latestEnactment(v)
		if err != nil {
			fmt.Fprintf(os.Stderr, "ja: advance: %v\n", err)
			return 1
		}
		if ok {
			next = c.Observe(latest.Taken)
		} else {
			next = c.Tick()
		}
	} else if next <= current {
		fmt.Fprintf(os.Stderr, "ja: advance: target %d is not after current time %d\n", next, current)
		return 1
	}

	if err := v.Advance(next); err != nil {
		fmt.Fprintf(os.Stderr, "ja: advance: %v\n", err)
		return 1
	}

	if *jsonOut {
		printJSON(map[string]interface{}{"from": current, "to": next})
	} else {
		fmt.Printf("advanced time %d -> %d\n", current, next)
	}
	return 0
}

// latestEnactment returns the enactment the agent sees that is maximal
// under the deterministic total order over (declared time, actor), so
// every synchronizer candidate picks the same one.
func latestEnactment(v *view.View) (model.Action, bool, error) {
	acts, err := v.Enacted.All()
	if err != nil {
		return model.Action{}, false, err
	}
	var best model.Action
	found := false
	for act := range acts {
		if !found || clock.TotalOrderLess(best.Taken, best.Actor, act.Taken, act.Actor) {
			best = act
			found = true
		}
	}
	return best, found, nil
}
