package table

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"rsvp-table/internal/models"
)

var (
	ErrUnknownAction = errors.New("unknown batch action")
	ErrPartialBatch  = errors.New("batch partially failed")
)

// Action is a bulk action offered by the batch bar
type Action string

const (
	ActionSend      Action = "send"
	ActionUnsend    Action = "unsend"
	ActionAttending Action = "attending"
	ActionPending   Action = "pending"
	ActionDeclined  Action = "declined"
	ActionRemove    Action = "remove"
)

// Actions in batch bar order
var Actions = []Action{ActionSend, ActionUnsend, ActionAttending, ActionPending, ActionDeclined, ActionRemove}

// ParseAction accepts an action name in any case
func ParseAction(v string) (Action, error) {
	a := Action(strings.ToLower(strings.TrimSpace(v)))
	for _, known := range Actions {
		if a == known {
			return a, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownAction, v)
}

// Status returns the target status of a status action
func (a Action) Status() (models.Status, bool) {
	switch a {
	case ActionAttending:
		return models.StatusAttending, true
	case ActionPending:
		return models.StatusPending, true
	case ActionDeclined:
		return models.StatusDeclined, true
	}
	return "", false
}

// RowOutcome is what a batch did to one row
type RowOutcome struct {
	InvitationID int
	Name         string
	// Requests is the number of requests that succeeded for the row
	Requests int
	Skipped  bool
	Err      error
}

// BatchResult reports every row of a batch
type BatchResult struct {
	Action   Action
	Outcomes []RowOutcome
}

// Succeeded counts rows whose chain completed with at least one request
func (r BatchResult) Succeeded() int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Err == nil && !o.Skipped {
			n++
		}
	}
	return n
}

// Skipped counts rows the action did not apply to
func (r BatchResult) Skipped() int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Skipped {
			n++
		}
	}
	return n
}

// Failed returns the outcomes of rows whose chain failed
func (r BatchResult) Failed() []RowOutcome {
	var out []RowOutcome
	for _, o := range r.Outcomes {
		if o.Err != nil {
			out = append(out, o)
		}
	}
	return out
}

// BatchBar is the state of the bulk action bar
type BatchBar struct {
	Count       int
	Visible     bool
	AllSelected bool
	Action      Action
}

// BatchBar returns the bar state for the current selection
func (t *Table) BatchBar() BatchBar {
	n := len(t.store.GetSelectedRows())
	total := t.store.Len()

	t.mu.Lock()
	defer t.mu.Unlock()
	return BatchBar{
		Count:       n,
		Visible:     n > 0,
		AllSelected: total > 0 && n == total,
		Action:      t.batchAction,
	}
}

// ChooseBatchAction presets the action of the batch bar
func (t *Table) ChooseBatchAction(a Action) error {
	a, err := ParseAction(string(a))
	if err != nil {
		return err
	}
	t.mu.Lock()
	t.batchAction = a
	t.mu.Unlock()
	return nil
}

// BatchApply runs action on every selected row. Rows run concurrently and
// independently: a failed row does not stop the others. When every chain
// has settled the summary is recomputed once, rows that succeeded are
// deselected and the chosen action is reset. Failed rows stay selected and
// the returned error wraps ErrPartialBatch.
//
// remove asks confirm once for the whole selection; a nil confirm skips
// the prompt.
func (t *Table) BatchApply(ctx context.Context, action Action, confirm func(n int) bool) (BatchResult, error) {
	action, err := ParseAction(string(action))
	if err != nil {
		return BatchResult{}, err
	}

	res := BatchResult{Action: action}
	rows := t.store.GetSelectedRows()
	if len(rows) == 0 {
		return res, nil
	}
	if action == ActionRemove && confirm != nil && !confirm(len(rows)) {
		return res, ErrCancelled
	}

	t.log.Info().Str("action", string(action)).Int("rows", len(rows)).Msg("Batch started")

	res.Outcomes = make([]RowOutcome, len(rows))
	var g errgroup.Group
	if t.opts.BatchLimit > 0 {
		g.SetLimit(t.opts.BatchLimit)
	}
	for i, r := range rows {
		g.Go(func() error {
			res.Outcomes[i] = t.applyRow(ctx, action, r)
			return nil
		})
	}
	_ = g.Wait()

	var errs []error
	for _, o := range res.Outcomes {
		if o.Err != nil {
			errs = append(errs, o.Err)
			continue
		}
		if action != ActionRemove || o.Skipped {
			_ = t.store.SetSelected(o.InvitationID, false)
		}
	}

	t.mu.Lock()
	t.batchAction = ""
	notifier := t.opts.Notifier
	t.mu.Unlock()
	s := t.refresh()

	t.log.Info().
		Str("action", string(action)).
		Int("succeeded", res.Succeeded()).
		Int("skipped", res.Skipped()).
		Int("failed", len(errs)).
		Msg("Batch finished")

	if notifier != nil {
		if err := notifier.BatchDone(ctx, res, s); err != nil {
			t.log.Warn().Err(err).Msg("Failed to notify batch result")
		}
	}

	if len(errs) > 0 {
		return res, fmt.Errorf("%w: %d of %d rows: %w", ErrPartialBatch, len(errs), len(rows), errors.Join(errs...))
	}
	return res, nil
}

// applyRow runs the request chain of one row
func (t *Table) applyRow(ctx context.Context, action Action, r models.Row) RowOutcome {
	out := RowOutcome{InvitationID: r.InvitationID, Name: r.DisplayName()}

	switch action {
	case ActionSend:
		if r.Sent() {
			out.Skipped = true
			return out
		}
		_, out.Err = t.toggle(ctx, r.InvitationID)

	case ActionUnsend:
		if !r.Sent() {
			out.Skipped = true
			return out
		}
		_, out.Err = t.toggle(ctx, r.InvitationID)

	case ActionRemove:
		out.Err = t.remove(ctx, r.InvitationID)

	case ActionAttending, ActionPending, ActionDeclined:
		status, _ := action.Status()
		if !r.Sent() {
			if _, err := t.toggle(ctx, r.InvitationID); err != nil {
				out.Err = err
				return out
			}
			out.Requests++
		}
		_, out.Err = t.setStatus(ctx, r.InvitationID, status)

	default:
		out.Err = fmt.Errorf("%w: %q", ErrUnknownAction, action)
		return out
	}

	if out.Err == nil {
		out.Requests++
	}
	return out
}
