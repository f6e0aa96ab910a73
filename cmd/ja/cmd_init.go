package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/Lut99/justact-go/pkg/model"
)

func (a *app) cmdInit(args []string) int {
	flags := flag.NewFlagSet("init", flag.ContinueOnError)
	agent := flags.String("agent", "", "agent ID to register (optional)")
	jsonOut := flags.Bool("json", false, "JSON output")
	if err := flags.Parse(args); err != nil {
		return 1
	}

	dbPath := envOr("JUSTACT_DB", defaultDB)

	agents, err := a.store.ListAgents()
	if err != nil {
		fmt.Fprintf(os.Stderr, "ja: init: database error: %v\n", err)
		return 1
	}
	current, err := a.store.Times().Current()
	if err != nil {
		fmt.Fprintf(os.Stderr, "ja: init: database error: %v\n", err)
		return 1
	}

	agentID := *agent
	if agentID == "" {
		agentID = a.agentID
	}
	if agentID != "" {
		if _, err := a.store.RegisterAgent(model.AgentID(agentID)); err != nil {
			fmt.Fprintf(os.Stderr, "ja: init: register: %v\n", err)
			return 1
		}
	}

	if *jsonOut {
		printJSON(map[string]interface{}{
			"db": dbPath, "agents": len(agents), "current_time": current, "registered": agentID,
		})
		return 0
	}

	fmt.Printf("initialized justact (db: %s, current time: %d)\n", dbPath, current)
	if len(agents) > 0 {
		fmt.Printf("  %d existing agent(s)\n", len(agents))
	}
	if agentID != "" {
		fmt.Printf("  registered agent %q\n", agentID)
	} else {
		fmt.Println()
		fmt.Println("next steps:")
		fmt.Println("  export JUSTACT_AGENT=<your-id>")
		fmt.Println("  ja register <your-id>")
	}
	return 0
}
