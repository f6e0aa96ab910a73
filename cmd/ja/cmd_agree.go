package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/Lut99/justact-go/pkg/model"
)

func (a *app) cmdAgree(args []string) int {
	flags := flag.NewFlagSet("agree", flag.ContinueOnError)
	agent := flags.String("agent", "", "synchronizer agent ID")
	at := flags.Int64("at", -1, "time the agreements apply at (-1 = current time)")
	jsonOut := flags.Bool("json", false, "JSON output")
	if err := flags.Parse(args); err != nil {
		return 1
	}
	if flags.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "usage: ja agree <msg_id>... --at N [--agent ID] [--json]")
		return 1
	}

	agentID, err := a.resolveAgent(*agent)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ja: %v\n", err)
		return 1
	}
	v := a.viewFor(agentID)

	appliesAt := model.Timestamp(*at)
	if *at < 0 {
		appliesAt, err = v.Times.Current()
		if err != nil {
			fmt.Fprintf(os.Stderr, "ja: agree: %v\n", err)
			return 1
		}
	}

	var agreed []model.Agreement
	for _, raw := range flags.Args() {
		id := model.MessageID(raw)
		msg, ok, err := v.GetStatement(id)
		if err != nil {
			fmt.Fprintf(os.Stderr, "ja: agree: %v\n", err)
			return 1
		}
		if !ok {
			fmt.Fprintf(os.Stderr, "ja: agree: message %q not visible to %s\n", id, agentID)
			return 1
		}
		agreed = append(agreed, model.Agreement{Message: msg, At: appliesAt})
	}

	if err := v.Agree(agreed); err != nil {
		fmt.Fprintf(os.Stderr, "ja: agree: %v\n", err)
		return 1
	}

	if *jsonOut {
		printJSON(map[string]interface{}{"agreements": len(agreed), "at": appliesAt})
	} else {
		fmt.Printf("agreement set replaced: %d agreement(s) at time %d\n", len(agreed), appliesAt)
	}
	return 0
}
