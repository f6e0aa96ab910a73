package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"

	"github.com/Lut99/justact-go/pkg/model"
)

func (a *app) cmdState(args []string) int {
	flags := flag.NewFlagSet("state", flag.ContinueOnError)
	agent := flags.String("agent", "", "author agent ID")
	msgID := flags.String("id", "", "message ID (default: random)")
	jsonOut := flags.Bool("json", false, "JSON output")
	if err := flags.Parse(args); err != nil {
		return 1
	}
	if flags.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "usage: ja state <policy> [--id M] [--agent ID] [--json]")
		return 1
	}

	agentID, err := a.resolveAgent(*agent)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ja: %v\n", err)
		return 1
	}

	id := *msgID
	if id == "" {
		id = uuid.NewString()
	}
	msg := model.Message{
		ID:      model.MessageID(id),
		Author:  agentID,
		Payload: []byte(strings.Join(flags.Args(), " ")),
	}

	if err := a.viewFor(agentID).State(msg); err != nil {
		fmt.Fprintf(os.Stderr, "ja: state: %v\n", err)
		return 1
	}

	if *jsonOut {
		printJSON(map[string]interface{}{"message_id": id, "author": agentID})
	} else {
		fmt.Printf("stated %s as %s\n", id, agentID)
	}
	return 0
}
