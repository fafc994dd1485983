package workflow

import (
	"fmt"

	"github.com/jakeh134/motionflow/model"
	"github.com/jakeh134/motionflow/pkg/apperr"
)

// Selection is the set of motion ids picked on the dashboard, kept in pick
// order. Ids can only be added while visible; a filter change never prunes
// ids that fall out of view, and bulk actions still apply to them.
type Selection struct {
	ids   []string
	index map[string]struct{}
}

func NewSelection() *Selection {
	return &Selection{index: make(map[string]struct{})}
}

func (s *Selection) Has(id string) bool {
	_, ok := s.index[id]
	return ok
}

func (s *Selection) Len() int {
	return len(s.ids)
}

// IDs returns a copy of the selected ids in pick order.
func (s *Selection) IDs() []string {
	return append([]string(nil), s.ids...)
}

// Toggle selects id when it is visible and not yet selected, and unselects
// it when already selected. It reports whether id is selected afterwards.
func (s *Selection) Toggle(id string, visible []string) bool {
	if s.Has(id) {
		s.remove(id)
		return false
	}
	if !contains(visible, id) {
		return false
	}
	s.add(id)
	return true
}

// ToggleAll selects every visible id, or unselects them all when every
// visible id is already selected. Hidden selections are left alone.
func (s *Selection) ToggleAll(visible []string) {
	if len(visible) > 0 && s.AllSelected(visible) {
		for _, id := range visible {
			s.remove(id)
		}
		return
	}
	for _, id := range visible {
		if !s.Has(id) {
			s.add(id)
		}
	}
}

// AllSelected reports whether every visible id is selected (the header
// checkbox state). It is false for an empty view.
func (s *Selection) AllSelected(visible []string) bool {
	if len(visible) == 0 {
		return false
	}
	for _, id := range visible {
		if !s.Has(id) {
			return false
		}
	}
	return true
}

// Hidden returns selected ids that are not in the visible view.
func (s *Selection) Hidden(visible []string) []string {
	var hidden []string
	for _, id := range s.ids {
		if !contains(visible, id) {
			hidden = append(hidden, id)
		}
	}
	return hidden
}

func (s *Selection) Clear() {
	s.ids = nil
	s.index = make(map[string]struct{})
}

func (s *Selection) add(id string) {
	s.ids = append(s.ids, id)
	s.index[id] = struct{}{}
}

func (s *Selection) remove(id string) {
	delete(s.index, id)
	for i, v := range s.ids {
		if v == id {
			s.ids = append(s.ids[:i], s.ids[i+1:]...)
			return
		}
	}
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

// BulkAction names a decision fanned out over a selection.
type BulkAction string

const (
	BulkAccept BulkAction = "accept"
	BulkReject BulkAction = "reject"
)

// BulkRequest describes a bulk decision. Reject requires Reason, exactly as a
// single rejection does.
type BulkRequest struct {
	Action BulkAction
	Reason RejectionReason
	Notes  string
}

// Validate checks the request before anything is touched.
func (r BulkRequest) Validate() error {
	switch r.Action {
	case BulkAccept:
		return nil
	case BulkReject:
		return ValidateReason(r.Reason)
	default:
		return apperr.NewValidation("action", r.Action, "unknown bulk action")
	}
}

// Updater applies fn to the stored motion with the given id atomically.
type Updater interface {
	Update(id string, fn func(*model.Motion) error) error
}

// BulkFailure records one motion the bulk action could not be applied to.
type BulkFailure struct {
	ID  string `json:"id"`
	Err string `json:"error"`
}

// BulkResult summarises a bulk dispatch.
type BulkResult struct {
	Action  BulkAction    `json:"action"`
	Applied []string      `json:"applied"`
	Failed  []BulkFailure `json:"failed,omitempty"`
}

// Dispatch applies req to every selected motion, then clears the selection.
// An invalid request fails before any motion is touched and keeps the
// selection. Per-motion failures are collected, not fatal.
func (s *Selection) Dispatch(req BulkRequest, m Machine, store Updater, by Actor) (BulkResult, error) {
	if err := req.Validate(); err != nil {
		return BulkResult{}, err
	}

	result := BulkResult{Action: req.Action, Applied: make([]string, 0, len(s.ids))}
	for _, id := range s.ids {
		err := store.Update(id, func(mo *model.Motion) error {
			if req.Action == BulkAccept {
				return m.Accept(mo, by)
			}
			return m.Reject(mo, req.Reason, req.Notes, by)
		})
		if err != nil {
			result.Failed = append(result.Failed, BulkFailure{ID: id, Err: err.Error()})
			continue
		}
		result.Applied = append(result.Applied, id)
	}

	s.Clear()
	return result, nil
}

// String implements fmt.Stringer for log lines.
func (r BulkResult) String() string {
	return fmt.Sprintf("%s: %d applied, %d failed", r.Action, len(r.Applied), len(r.Failed))
}
