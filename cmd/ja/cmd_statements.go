package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/Lut99/justact-go/pkg/model"
)

func (a *app) cmdStatements(args []string) int {
	flags := flag.NewFlagSet("statements", flag.ContinueOnError)
	agent := flags.String("agent", "", "agent ID")
	jsonOut := flags.Bool("json", false, "JSON output")
	if err := flags.Parse(args); err != nil {
		return 1
	}

	agentID, err := a.resolveAgent(*agent)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ja: %v\n", err)
		return 1
	}

	seq, err := a.viewFor(agentID).Statements()
	if err != nil {
		fmt.Fprintf(os.Stderr, "ja: statements: %v\n", err)
		return 1
	}

	// Collapse the multiset projection to set semantics for display.
	visible := model.NewMessageSet()
	for msg := range seq {
		visible.Add(msg)
	}

	if *jsonOut {
		printJSON(visible)
		return 0
	}

	fmt.Printf("%d message(s) visible to %s:\n", visible.Len(), agentID)
	for msg := range visible.All() {
		payload := string(msg.Payload)
		if len(payload) > 80 {
			payload = payload[:80] + "..."
		}
		fmt.Printf("  %s (by %s): %s\n", msg.ID, msg.Author, payload)
	}
	return 0
}
