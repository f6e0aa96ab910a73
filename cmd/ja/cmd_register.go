package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/Lut99/justact-go/pkg/model"
)

func (a *app) cmdRegister(args []string) int {
	flags := flag.NewFlagSet("register", flag.ContinueOnError)
	jsonOut := flags.Bool("json", false, "JSON output")
	if err := flags.Parse(args); err != nil {
		return 1
	}
	if flags.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "usage: ja register <agent_id> [--json]")
		return 1
	}

	ag, err := a.store.RegisterAgent(model.AgentID(flags.Arg(0)))
	if err != nil {
		fmt.Fprintf(os.Stderr, "ja: register: %v\n", err)
		return 1
	}

	if *jsonOut {
		printJSON(ag)
	} else {
		fmt.Printf("registered agent %q\n", ag.ID)
	}
	return 0
}
