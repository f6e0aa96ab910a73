// Package audit certifies enacted actions.
//
// An action is well-behaved when four properties hold, checked in a fixed
// order so a rejection always reports the first violated property:
//
//  1. Stated — every message in the justification is agreed or stated.
//  2. Complete — basis and enactment are members of the justification.
//     This holds by construction of Action.Justification and is not an
//     independent runtime check.
//  3. Valid — the justification extracts to a syntactically and
//     semantically valid policy.
//  4. Based — the basis is a current agreement whose applicability time
//     equals the action's declared time.
//
// Auditing is a pure, read-only function of an action and a view: it may
// run concurrently with other audits as long as the underlying stores give
// read consistency for the duration of one call.
package audit

import (
	"fmt"

	"github.com/Lut99/justact-go/pkg/collections"
	"github.com/Lut99/justact-go/pkg/model"
	"github.com/Lut99/justact-go/pkg/policy"
	"github.com/Lut99/justact-go/pkg/view"
)

// StatedError rejects an action because a justification message is
// neither agreed nor visible in the auditor's stated set.
type StatedError struct {
	ID model.MessageID
}

func (e *StatedError) Error() string {
	return fmt.Sprintf("justification message %q is not stated", e.ID)
}

// ExtractError rejects an action because its justification does not form
// a syntactically correct policy.
type ExtractError struct {
	Err error
}

func (e *ExtractError) Error() string {
	return fmt.Sprintf("cannot extract policy from justification: %v", e.Err)
}

func (e *ExtractError) Unwrap() error { return e.Err }

// ValidError rejects an action because the extracted policy is
// semantically invalid.
type ValidError struct {
	Expl error
}

func (e *ValidError) Error() string {
	return fmt.Sprintf("justification policy is not valid: %v", e.Expl)
}

func (e *ValidError) Unwrap() error { return e.Expl }

// BasedError rejects an action because its basis is not a member of the
// agreed set.
type BasedError struct {
	ID model.MessageID
}

func (e *BasedError) Error() string {
	return fmt.Sprintf("basis %q is not an agreement", e.ID)
}

// TimelyError rejects an action because its declared time differs from
// the time its basis applies at.
type TimelyError struct {
	ID        model.MessageID
	AppliesAt model.Timestamp
	TakenAt   model.Timestamp
}

func (e *TimelyError) Error() string {
	return fmt.Sprintf("basis %q applies at time %d but the action was taken at time %d", e.ID, e.AppliesAt, e.TakenAt)
}

// Auditor runs audits with a fixed policy extractor.
type Auditor struct {
	Extractor policy.Extractor
}

// New returns an Auditor using the given extractor.
func New(ex policy.Extractor) Auditor { return Auditor{Extractor: ex} }

// Audit checks the well-behavedness of act against what v's agent can
// see. A nil return certifies the action. A rejection is reported as
// exactly one of *StatedError, *ExtractError, *ValidError, *BasedError or
// *TimelyError — the first violated property in the fixed order. Store
// failures are passed through as *view.StoreError and are not verdicts.
func (a Auditor) Audit(v *view.View, act model.Action) error {
	just := act.Justification()

	// Stated: every justification message must be agreed or stated.
	// Iteration is in message-id order, so the reported message is
	// deterministic when several are missing.
	for msg := range just.All() {
		agreed, err := collections.Contains(v.Agreed, msg.ID)
		if err != nil {
			return &view.StoreError{Kind: view.KindAgreements, Err: err}
		}
		if agreed {
			continue
		}
		stated, err := collections.Contains(v.Stated, msg.ID)
		if err != nil {
			return &view.StoreError{Kind: view.KindStatements, Err: err}
		}
		if !stated {
			return &StatedError{ID: msg.ID}
		}
	}

	// Complete: basis and enactment are in the justification by
	// construction of Action.Justification.

	// Valid: the justification must extract and hold up semantically.
	pol, err := a.Extractor.Extract(just.Map())
	if err != nil {
		return &ExtractError{Err: err}
	}
	if err := pol.Validate(); err != nil {
		return &ValidError{Expl: err}
	}

	// Based: the basis must be a current agreement...
	agree, ok, err := v.Agreed.Get(act.Basis.ID())
	if err != nil {
		return &view.StoreError{Kind: view.KindAgreements, Err: err}
	}
	if !ok || !agree.Equal(act.Basis) {
		return &BasedError{ID: act.Basis.ID()}
	}

	// ...and timely: its applicability must equal the declared time.
	if act.Basis.At != act.Taken {
		return &TimelyError{ID: act.Basis.ID(), AppliesAt: act.Basis.At, TakenAt: act.Taken}
	}

	return nil
}
