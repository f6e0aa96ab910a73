// async.go implements the asynchronous stores: statements and enactments.
// Both tables carry a recipient column; a row addressed to '*' is visible
// to every agent, a row addressed to one agent only to that agent. The read
// side of each store is scoped to the owning agent, so two agents can hold
// genuinely different views of what has been stated.
package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"iter"
	"slices"
	"time"

	"github.com/Lut99/justact-go/pkg/collections"
	"github.com/Lut99/justact-go/pkg/model"
)

// statementStore is one agent's view of the statement pool.
type statementStore struct {
	db    *sql.DB
	owner model.AgentID
}

var _ collections.AsyncMap[model.AgentID, model.MessageID, model.Message] = (*statementStore)(nil)

// Stated returns the statement store as seen by the given agent.
func (s *Store) Stated(owner model.AgentID) collections.AsyncMap[model.AgentID, model.MessageID, model.Message] {
	return &statementStore{db: s.db, owner: owner}
}

func (st *statementStore) Get(id model.MessageID) (model.Message, bool, error) {
	row := st.db.QueryRow(
		`SELECT message_id, author, payload FROM statements
		 WHERE message_id = ? AND recipient IN (?, ?)
		 LIMIT 1`,
		string(id), string(st.owner), recipientAll,
	)
	var msg model.Message
	err := row.Scan(&msg.ID, &msg.Author, &msg.Payload)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Message{}, false, nil
	}
	if err != nil {
		return model.Message{}, false, err
	}
	return msg, true, nil
}

func (st *statementStore) All() (iter.Seq[model.Message], error) {
	rows, err := st.db.Query(
		`SELECT message_id, author, payload FROM statements
		 WHERE recipient IN (?, ?)
		 GROUP BY message_id ORDER BY message_id`,
		string(st.owner), recipientAll,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var msgs []model.Message
	for rows.Next() {
		var msg model.Message
		if err := rows.Scan(&msg.ID, &msg.Author, &msg.Payload); err != nil {
			return nil, err
		}
		msgs = append(msgs, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return slices.Values(msgs), nil
}

func (st *statementStore) Len() (int, error) {
	var n int
	err := st.db.QueryRow(
		`SELECT COUNT(DISTINCT message_id) FROM statements
		 WHERE recipient IN (?, ?)`,
		string(st.owner), recipientAll,
	).Scan(&n)
	return n, err
}

func (st *statementStore) Add(rec collections.Recipient[model.AgentID], msg model.Message) error {
	target := recipientAll
	if agent, ok := rec.Agent(); ok {
		target = string(agent)
	}
	now := time.Now().UTC().Format(time.RFC3339Nano)
	return retryOnContention(func() error {
		_, err := st.db.Exec(
			`INSERT INTO statements (recipient, message_id, author, payload, stated_at)
			 VALUES (?, ?, ?, ?, ?)
			 ON CONFLICT(recipient, message_id) DO UPDATE SET
			   author = excluded.author,
			   payload = excluded.payload`,
			target, string(msg.ID), string(msg.Author), msg.Payload, now,
		)
		return err
	})
}

// enactmentStore is one agent's view of the enactment pool. Actions are
// stored as JSON bodies since their justification is a nested set.
type enactmentStore struct {
	db    *sql.DB
	owner model.AgentID
}

var _ collections.AsyncMap[model.AgentID, model.ActionID, model.Action] = (*enactmentStore)(nil)

// Enacted returns the enactment store as seen by the given agent.
func (s *Store) Enacted(owner model.AgentID) collections.AsyncMap[model.AgentID, model.ActionID, model.Action] {
	return &enactmentStore{db: s.db, owner: owner}
}

func (en *enactmentStore) Get(id model.ActionID) (model.Action, bool, error) {
	row := en.db.QueryRow(
		`SELECT body FROM enactments
		 WHERE action_id = ? AND recipient IN (?, ?)
		 LIMIT 1`,
		string(id), string(en.owner), recipientAll,
	)
	var body []byte
	err := row.Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Action{}, false, nil
	}
	if err != nil {
		return model.Action{}, false, err
	}
	var act model.Action
	if err := json.Unmarshal(body, &act); err != nil {
		return model.Action{}, false, fmt.Errorf("decode action %s: %w", id, err)
	}
	return act, true, nil
}

func (en *enactmentStore) All() (iter.Seq[model.Action], error) {
	rows, err := en.db.Query(
		`SELECT action_id, body FROM enactments
		 WHERE recipient IN (?, ?)
		 GROUP BY action_id ORDER BY action_id`,
		string(en.owner), recipientAll,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var acts []model.Action
	for rows.Next() {
		var id string
		var body []byte
		if err := rows.Scan(&id, &body); err != nil {
			return nil, err
		}
		var act model.Action
		if err := json.Unmarshal(body, &act); err != nil {
			return nil, fmt.Errorf("decode action %s: %w", id, err)
		}
		acts = append(acts, act)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return slices.Values(acts), nil
}

func (en *enactmentStore) Len() (int, error) {
	var n int
	err := en.db.QueryRow(
		`SELECT COUNT(DISTINCT action_id) FROM enactments
		 WHERE recipient IN (?, ?)`,
		string(en.owner), recipientAll,
	).Scan(&n)
	return n, err
}

func (en *enactmentStore) Add(rec collections.Recipient[model.AgentID], act model.Action) error {
	target := recipientAll
	if agent, ok := rec.Agent(); ok {
		target = string(agent)
	}
	body, err := json.Marshal(act)
	if err != nil {
		return fmt.Errorf("encode action %s: %w", act.ID, err)
	}
	now := time.Now().UTC().Format(time.RFC3339Nano)
	return retryOnContention(func() error {
		_, err := en.db.Exec(
			`INSERT INTO enactments (recipient, action_id, actor, body, taken_at, enacted_at)
			 VALUES (?, ?, ?, ?, ?, ?)
			 ON CONFLICT(recipient, action_id) DO UPDATE SET
			   actor = excluded.actor,
			   body = excluded.body,
			   taken_at = excluded.taken_at`,
			target, string(act.ID), string(act.Actor), string(body), int64(act.Taken), now,
		)
		return err
	})
}
