package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/Lut99/justact-go/pkg/model"
	"github.com/Lut99/justact-go/pkg/store"
	"github.com/Lut99/justact-go/pkg/view"
)

const (
	defaultDir = ".justact"
	defaultDB  = ".justact/justact.db"
)

// app holds shared state for all CLI subcommands.
type app struct {
	store   *store.Store
	agentID string // default agent from JUSTACT_AGENT
}

// newApp opens the database and resolves the default agent identity.
// Creates the .justact/ directory if using the default DB path.
func newApp() (*app, error) {
	dbPath := envOr("JUSTACT_DB", defaultDB)
	if dbPath == defaultDB {
		if err := os.MkdirAll(defaultDir, 0755); err != nil {
			return nil, fmt.Errorf("cannot create %s: %w", defaultDir, err)
		}
	}
	s, err := store.New(dbPath)
	if err != nil {
		return nil, fmt.Errorf("cannot open database %q: %w", dbPath, err)
	}
	return &app{
		store:   s,
		agentID: envOr("JUSTACT_AGENT", ""),
	}, nil
}

// Close releases the database connection.
func (a *app) Close() { a.store.Close() }

// resolveAgent returns the agent ID from the flag (if non-empty), falling
// back to the JUSTACT_AGENT environment variable.
func (a *app) resolveAgent(flagVal string) (model.AgentID, error) {
	if flagVal != "" {
		return model.AgentID(flagVal), nil
	}
	if a.agentID != "" {
		return model.AgentID(a.agentID), nil
	}
	return "", fmt.Errorf("no agent ID: pass --agent or set JUSTACT_AGENT")
}

// viewFor builds the agent's composite view on the shared stores.
func (a *app) viewFor(agent model.AgentID) *view.View {
	return a.store.ViewFor(agent)
}

// printJSON writes v to stdout as indented JSON.
func printJSON(v interface{}) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}
