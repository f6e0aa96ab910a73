package main

import (
	"flag"
	"fmt"
	"os"
)

func (a *app) cmdStatus(args []string) int {
	flags := flag.NewFlagSet("status", flag.ContinueOnError)
	agent := flags.String("agent", "", "agent ID for per-agent store sizes")
	jsonOut := flags.Bool("json", false, "JSON output")
	if err := flags.Parse(args); err != nil {
		return 1
	}

	agents, err := a.store.ListAgents()
	if err != nil {
		fmt.Fprintf(os.Stderr, "ja: status: %v\n", err)
		return 1
	}
	current, err := a.store.Times().Current()
	if err != nil {
		fmt.Fprintf(os.Stderr, "ja: status: %v\n", err)
		return 1
	}
	agreed, err := a.store.Agreements().Len()
	if err != nil {
		fmt.Fprintf(os.Stderr, "ja: status: %v\n", err)
		return 1
	}

	out := map[string]interface{}{
		"current_time": current,
		"agents":       agents,
		"agreements":   agreed,
	}

	// Stated/enacted counts are per-agent; only meaningful with an identity.
	agentID, err := a.resolveAgent(*agent)
	if err == nil {
		v := a.viewFor(agentID)
		if n, err := v.Stated.Len(); err == nil {
			out["stated"] = n
		}
		if n, err := v.Enacted.Len(); err == nil {
			out["enacted"] = n
		}
		out["agent"] = agentID
	}

	if *jsonOut {
		printJSON(out)
		return 0
	}

	fmt.Printf("current time: %d\n", current)
	fmt.Printf("agreements:   %d\n", agreed)
	if n, ok := out["stated"]; ok {
		fmt.Printf("stated:       %d (visible to %s)\n", n, agentID)
	}
	if n, ok := out["enacted"]; ok {
		fmt.Printf("enacted:      %d (visible to %s)\n", n, agentID)
	}
	fmt.Printf("agents:       %d\n", len(agents))
	for _, ag := range agents {
		fmt.Printf("  %s (last seen %s)\n", ag.ID, ag.LastSeen.Format("2006-01-02 15:04:05"))
	}
	return 0
}
