package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/Lut99/justact-go/pkg/collections"
	"github.com/Lut99/justact-go/pkg/model"
)

func (a *app) cmdGossip(args []string) int {
	flags := flag.NewFlagSet("gossip", flag.ContinueOnError)
	agent := flags.String("agent", "", "forwarding agent ID")
	to := flags.String("to", "", "recipient agent ID (default: everyone)")
	jsonOut := flags.Bool("json", false, "JSON output")
	if err := flags.Parse(args); err != nil {
		return 1
	}
	if flags.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "usage: ja gossip <message_id> [--to A] [--agent ID] [--json]")
		return 1
	}

	agentID, err := a.resolveAgent(*agent)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ja: %v\n", err)
		return 1
	}

	rec := collections.Everyone[model.AgentID]()
	if *to != "" {
		rec = collections.One(model.AgentID(*to))
	}

	id := model.MessageID(flags.Arg(0))
	if err := a.viewFor(agentID).Gossip(rec, id); err != nil {
		fmt.Fprintf(os.Stderr, "ja: gossip: %v\n", err)
		return 1
	}

	target := *to
	if target == "" {
		target = "everyone"
	}
	if *jsonOut {
		printJSON(map[string]interface{}{"message_id": id, "to": target})
	} else {
		fmt.Printf("gossiped %s to %s\n", id, target)
	}
	return 0
}
