// agreements.go implements the synchronized stores: the agreement
// collection and the logical-time ledger. Both are global tables that every
// agent process reads identically, which is what makes them synchronized.
package store

import (
	"database/sql"
	"errors"
	"iter"
	"slices"

	"github.com/Lut99/justact-go/pkg/collections"
	"github.com/Lut99/justact-go/pkg/model"
	"github.com/Lut99/justact-go/pkg/view"
)

// agreementStore backs the synchronized agreement collection with the
// agreements table.
type agreementStore struct {
	db *sql.DB
}

var _ collections.ReplaceMap[model.MessageID, model.Agreement] = (*agreementStore)(nil)

// Agreements returns the shared agreement store.
func (s *Store) Agreements() collections.ReplaceMap[model.MessageID, model.Agreement] {
	return &agreementStore{db: s.db}
}

func (a *agreementStore) Get(id model.MessageID) (model.Agreement, bool, error) {
	row := a.db.QueryRow(
		`SELECT message_id, author, payload, applies_at
		 FROM agreements WHERE message_id = ?`, string(id),
	)
	agree, err := scanAgreement(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Agreement{}, false, nil
	}
	if err != nil {
		return model.Agreement{}, false, err
	}
	return agree, true, nil
}

func (a *agreementStore) All() (iter.Seq[model.Agreement], error) {
	rows, err := a.db.Query(
		`SELECT message_id, author, payload, applies_at
		 FROM agreements ORDER BY message_id`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	// Read eagerly so the returned sequence is restartable and holds no
	// database resources.
	var agreed []model.Agreement
	for rows.Next() {
		agree, err := scanAgreement(rows)
		if err != nil {
			return nil, err
		}
		agreed = append(agreed, agree)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return slices.Values(agreed), nil
}

func (a *agreementStore) Len() (int, error) {
	var n int
	err := a.db.QueryRow(`SELECT COUNT(*) FROM agreements`).Scan(&n)
	return n, err
}

func (a *agreementStore) Add(agree model.Agreement) (model.Agreement, bool, error) {
	var prev model.Agreement
	var replaced bool
	// Read the previous entry and upsert in one transaction so a
	// concurrent Add for the same id cannot slip between the two. The
	// whole transaction retries on contention, so both are reset at the
	// top of every attempt.
	err := retryOnContention(func() error {
		prev, replaced = model.Agreement{}, false

		tx, err := a.db.Begin()
		if err != nil {
			return err
		}
		defer tx.Rollback()

		row := tx.QueryRow(
			`SELECT message_id, author, payload, applies_at
			 FROM agreements WHERE message_id = ?`, string(agree.ID()),
		)
		got, err := scanAgreement(row)
		switch {
		case errors.Is(err, sql.ErrNoRows):
			// Fresh insert below.
		case err != nil:
			return err
		default:
			prev, replaced = got, true
		}

		_, err = tx.Exec(
			`INSERT INTO agreements (message_id, author, payload, applies_at)
			 VALUES (?, ?, ?, ?)
			 ON CONFLICT(message_id) DO UPDATE SET
			   author = excluded.author,
			   payload = excluded.payload,
			   applies_at = excluded.applies_at`,
			string(agree.ID()), string(agree.AuthorID()), agree.Message.Payload, int64(agree.At),
		)
		if err != nil {
			return err
		}
		return tx.Commit()
	})
	if err != nil {
		return model.Agreement{}, false, err
	}
	return prev, replaced, nil
}

func (a *agreementStore) Replace(agreed []model.Agreement) error {
	return retryOnContention(func() error {
		tx, err := a.db.Begin()
		if err != nil {
			return err
		}
		defer tx.Rollback()

		if _, err := tx.Exec(`DELETE FROM agreements`); err != nil {
			return err
		}
		for _, agree := range agreed {
			_, err := tx.Exec(
				`INSERT INTO agreements (message_id, author, payload, applies_at)
				 VALUES (?, ?, ?, ?)`,
				string(agree.ID()), string(agree.AuthorID()), agree.Message.Payload, int64(agree.At),
			)
			if err != nil {
				return err
			}
		}
		return tx.Commit()
	})
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAgreement(row rowScanner) (model.Agreement, error) {
	var agree model.Agreement
	var at int64
	err := row.Scan(&agree.Message.ID, &agree.Message.Author, &agree.Message.Payload, &at)
	if err != nil {
		return model.Agreement{}, err
	}
	agree.At = model.Timestamp(at)
	return agree, nil
}

// timesStore backs the logical-time ledger with the times table. Exactly
// one row carries the current flag at any moment; Advance moves it
// transactionally.
type timesStore struct {
	db *sql.DB
}

// Times returns the shared logical-time ledger.
func (s *Store) Times() view.Times {
	return &timesStore{db: s.db}
}

func (t *timesStore) Current() (model.Timestamp, error) {
	var ts int64
	err := t.db.QueryRow(`SELECT ts FROM times WHERE current = 1`).Scan(&ts)
	if err != nil {
		return 0, err
	}
	return model.Timestamp(ts), nil
}

func (t *timesStore) All() (iter.Seq[model.Timestamp], error) {
	rows, err := t.db.Query(`SELECT ts FROM times ORDER BY ts`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stamps []model.Timestamp
	for rows.Next() {
		var ts int64
		if err := rows.Scan(&ts); err != nil {
			return nil, err
		}
		stamps = append(stamps, model.Timestamp(ts))
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return slices.Values(stamps), nil
}

func (t *timesStore) Advance(ts model.Timestamp) error {
	return retryOnContention(func() error {
		tx, err := t.db.Begin()
		if err != nil {
			return err
		}
		defer tx.Rollback()

		if _, err := tx.Exec(`UPDATE times SET current = 0 WHERE current = 1`); err != nil {
			return err
		}
		_, err = tx.Exec(
			`INSERT INTO times (ts, current) VALUES (?, 1)
			 ON CONFLICT(ts) DO UPDATE SET current = 1`,
			int64(ts),
		)
		if err != nil {
			return err
		}
		return tx.Commit()
	})
}
