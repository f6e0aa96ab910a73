// Command ja drives a multi-agent justification exchange over a shared
// SQLite database: agents state and gossip messages, enact actions backed
// by an agreed basis, and audit each other's actions.
package main

import (
	"fmt"
	"os"
)

const version = "0.1.0"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "--help", "-h", "help":
		printUsage()
		return
	case "--version", "-v", "version":
		fmt.Println("ja", version)
		return
	}

	a, err := newApp()
	if err != nil {
		fatal("%v", err)
	}
	defer a.Close()

	switch os.Args[1] {
	// Setup
	case "init":
		os.Exit(a.cmdInit(os.Args[2:]))
	case "register":
		os.Exit(a.cmdRegister(os.Args[2:]))

	// Agent operations
	case "state":
		os.Exit(a.cmdState(os.Args[2:]))
	case "gossip":
		os.Exit(a.cmdGossip(os.Args[2:]))
	case "enact":
		os.Exit(a.cmdEnact(os.Args[2:]))
	case "audit":
		os.Exit(a.cmdAudit(os.Args[2:]))

	// Synchronizer operations
	case "agree":
		os.Exit(a.cmdAgree(os.Args[2:]))
	case "advance":
		os.Exit(a.cmdAdvance(os.Args[2:]))

	// Inspection
	case "statements":
		os.Exit(a.cmdStatements(os.Args[2:]))
	case "status":
		os.Exit(a.cmdStatus(os.Args[2:]))

	default:
		fmt.Fprintf(os.Stderr, "ja: unknown command %q\n", os.Args[1])
		fmt.Fprintln(os.Stderr, "Run 'ja --help' for usage.")
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Print(`ja — justified actions for multiple agents

Messages carry Datalog policy fragments. Actions must be justified by an
agreed basis plus stated messages. Shared SQLite is the only channel.

Usage:
  ja <command> [flags]

Setup:
  init                          Initialize the shared database
  register <agent_id>           Register an agent

Agent operations:
  state <policy> [--id M]       Publish a message to all agents
  gossip <message_id> [--to A]  Forward a held message (default: everyone)
  enact <enacts_id> --basis B   Enact an action justified by basis B
                                [--extra M1,M2] [--id A]
  audit <action_id>             Audit an action against your view

Synchronizer operations:
  agree <msg_id>... --at N      Replace the agreement set wholesale
  advance [--to N]              Advance the current logical time

Inspection:
  statements                    List every message visible to you
  status                        Agents, current time, store sizes

Environment:
  JUSTACT_DB      SQLite database path (default: .justact/justact.db)
  JUSTACT_AGENT   Default agent ID (avoids passing --agent every time)

All commands support --json for machine-readable output.
All agent commands support --agent <id> to override JUSTACT_AGENT.

Exit codes:
  0  success
  1  error
  2  audit rejected the action
`)
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func fatal(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "ja: "+format+"\n", args...)
	os.Exit(1)
}
