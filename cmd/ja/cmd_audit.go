package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/Lut99/justact-go/pkg/audit"
	"github.com/Lut99/justact-go/pkg/datalog"
	"github.com/Lut99/justact-go/pkg/model"
)

func (a *app) cmdAudit(args []string) int {
	flags := flag.NewFlagSet("audit", flag.ContinueOnError)
	agent := flags.String("agent", "", "auditing agent ID")
	jsonOut := flags.Bool("json", false, "JSON output")
	if err := flags.Parse(args); err != nil {
		return 1
	}
	if flags.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "usage: ja audit <action_id> [--agent ID] [--json]")
		return 1
	}

	agentID, err := a.resolveAgent(*agent)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ja: %v\n", err)
		return 1
	}
	v := a.viewFor(agentID)

	id := model.ActionID(flags.Arg(0))
	act, ok, err := v.Enacted.Get(id)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ja: audit: %v\n", err)
		return 1
	}
	if !ok {
		fmt.Fprintf(os.Stderr, "ja: audit: action %q not visible to %s\n", id, agentID)
		return 1
	}

	verdict := audit.New(datalog.NewExtractor()).Audit(v, act)
	if verdict != nil {
		if *jsonOut {
			printJSON(map[string]interface{}{
				"action_id": id, "ok": false, "reason": verdict.Error(),
			})
		} else {
			fmt.Printf("REJECTED %s: %v\n", id, verdict)
		}
		return 2
	}

	if *jsonOut {
		printJSON(map[string]interface{}{"action_id": id, "ok": true})
	} else {
		fmt.Printf("OK %s: action is justified\n", id)
	}
	return 0
}
