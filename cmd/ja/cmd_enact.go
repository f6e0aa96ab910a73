package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"

	"github.com/Lut99/justact-go/pkg/model"
)

func (a *app) cmdEnact(args []string) int {
	flags := flag.NewFlagSet("enact", flag.ContinueOnError)
	agent := flags.String("agent", "", "acting agent ID")
	basis := flags.String("basis", "", "agreement message ID justifying the action")
	extra := flags.String("extra", "", "comma-separated extra message IDs")
	actID := flags.String("id", "", "action ID (default: random)")
	taken := flags.Int64("taken", -1, "declared time (-1 = current time)")
	jsonOut := flags.Bool("json", false, "JSON output")
	if err := flags.Parse(args); err != nil {
		return 1
	}
	if flags.NArg() < 1 || *basis == "" {
		fmt.Fprintln(os.Stderr, "usage: ja enact <enacts_id> --basis B [--extra M1,M2] [--id A] [--agent ID] [--json]")
		return 1
	}

	agentID, err := a.resolveAgent(*agent)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ja: %v\n", err)
		return 1
	}
	v := a.viewFor(agentID)

	agree, ok, err := v.Agreed.Get(model.MessageID(*basis))
	if err != nil {
		fmt.Fprintf(os.Stderr, "ja: enact: %v\n", err)
		return 1
	}
	if !ok {
		fmt.Fprintf(os.Stderr, "ja: enact: no agreement %q\n", *basis)
		return 1
	}

	extraSet := model.NewMessageSet()
	if *extra != "" {
		for _, raw := range strings.Split(*extra, ",") {
			id := model.MessageID(strings.TrimSpace(raw))
			if id == "" {
				continue
			}
			msg, ok, err := v.GetStatement(id)
			if err != nil {
				fmt.Fprintf(os.Stderr, "ja: enact: %v\n", err)
				return 1
			}
			if !ok {
				fmt.Fprintf(os.Stderr, "ja: enact: message %q not visible to %s\n", id, agentID)
				return 1
			}
			extraSet.Add(msg)
		}
	}

	enactsID := model.MessageID(flags.Arg(0))
	enacts, ok, err := v.GetStatement(enactsID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ja: enact: %v\n", err)
		return 1
	}
	if !ok {
		fmt.Fprintf(os.Stderr, "ja: enact: message %q not visible to %s\n", enactsID, agentID)
		return 1
	}

	at := model.Timestamp(*taken)
	if *taken < 0 {
		at, err = v.Times.Current()
		if err != nil {
			fmt.Fprintf(os.Stderr, "ja: enact: %v\n", err)
			return 1
		}
	}

	id := *actID
	if id == "" {
		id = uuid.NewString()
	}
	act := model.Action{
		ID:     model.ActionID(id),
		Actor:  agentID,
		Basis:  agree,
		Extra:  extraSet,
		Enacts: enacts,
		Taken:  at,
	}

	if err := v.Enact(act); err != nil {
		fmt.Fprintf(os.Stderr, "ja: enact: %v\n", err)
		return 1
	}

	if *jsonOut {
		printJSON(map[string]interface{}{
			"action_id": id, "actor": agentID, "basis": *basis,
			"enacts": enactsID, "taken": at,
		})
	} else {
		fmt.Printf("enacted %s (action %s, taken at %d)\n", enactsID, id, at)
	}
	return 0
}
