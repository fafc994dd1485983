package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jakeh134/motionflow/model"
	"github.com/jakeh134/motionflow/pkg/apperr"
)

type mapStore map[string]*model.Motion

func (s mapStore) Update(id string, fn func(*model.Motion) error) error {
	mo, ok := s[id]
	if !ok {
		return apperr.ErrNotFound
	}
	c := mo.Clone()
	if err := fn(c); err != nil {
		return err
	}
	s[id] = c
	return nil
}

func storeOf(motions []*model.Motion) mapStore {
	s := make(mapStore, len(motions))
	for _, mo := range motions {
		s[mo.ID] = mo
	}
	return s
}

func allPending(n int) []*model.Motion {
	ids := []string{"m1", "m2", "m3", "m4", "m5"}
	out := make([]*model.Motion, n)
	for i := 0; i < n; i++ {
		out[i] = pendingMotion(ids[i])
	}
	return out
}

func TestToggleOnlySelectsVisible(t *testing.T) {
	s := NewSelection()
	visible := []string{"m1", "m2"}

	assert.True(t, s.Toggle("m1", visible))
	assert.False(t, s.Toggle("m9", visible), "hidden id must not be selectable")
	assert.Equal(t, []string{"m1"}, s.IDs())

	assert.False(t, s.Toggle("m1", visible))
	assert.Zero(t, s.Len())
}

func TestToggleAllSelectsOnlyFilteredView(t *testing.T) {
	list := sampleMotions()
	visible := IDs(Filter(list, Criteria{Status: "accepted"}))

	s := NewSelection()
	s.ToggleAll(visible)
	assert.Equal(t, []string{"m3", "m5"}, s.IDs())
	assert.True(t, s.AllSelected(visible))

	s.ToggleAll(visible)
	assert.Zero(t, s.Len())
	assert.False(t, s.AllSelected(nil))
}

func TestSelectionPersistsAcrossFilterChanges(t *testing.T) {
	list := sampleMotions()
	s := NewSelection()
	s.Toggle("m1", IDs(list))

	visible := IDs(Filter(list, Criteria{Status: "accepted"}))
	assert.True(t, s.Has("m1"))
	assert.Equal(t, []string{"m1"}, s.Hidden(visible))

	// Toggling all on the new view keeps the hidden selection.
	s.ToggleAll(visible)
	assert.Equal(t, []string{"m1", "m3", "m5"}, s.IDs())
	s.ToggleAll(visible)
	assert.Equal(t, []string{"m1"}, s.IDs())
}

func TestBulkAcceptAppliesOnlyToSelected(t *testing.T) {
	motions := allPending(5)
	store := storeOf(motions)
	visible := IDs(motions)

	s := NewSelection()
	s.Toggle("m2", visible)
	s.Toggle("m4", visible)

	res, err := s.Dispatch(BulkRequest{Action: BulkAccept}, testMachine(), store, clerk)
	require.NoError(t, err)
	assert.Equal(t, []string{"m2", "m4"}, res.Applied)
	assert.Empty(t, res.Failed)

	for _, id := range []string{"m2", "m4"} {
		assert.Equal(t, model.StatusAccepted, store[id].Status, id)
	}
	for _, id := range []string{"m1", "m3", "m5"} {
		assert.Equal(t, model.StatusPending, store[id].Status, id)
	}
	assert.Zero(t, s.Len())
}

func TestBulkActionIncludesHiddenSelection(t *testing.T) {
	motions := allPending(3)
	store := storeOf(motions)

	s := NewSelection()
	s.Toggle("m1", IDs(motions))
	// Filter narrows the view to m2 only, then m2 is selected too.
	s.Toggle("m2", []string{"m2"})

	res, err := s.Dispatch(BulkRequest{Action: BulkAccept}, testMachine(), store, clerk)
	require.NoError(t, err)
	assert.Equal(t, []string{"m1", "m2"}, res.Applied)
	assert.Equal(t, model.StatusAccepted, store["m1"].Status)
	assert.Equal(t, model.StatusPending, store["m3"].Status)
}

func TestBulkRejectWithoutReasonIsRefused(t *testing.T) {
	motions := allPending(2)
	store := storeOf(motions)
	s := NewSelection()
	s.ToggleAll(IDs(motions))

	_, err := s.Dispatch(BulkRequest{Action: BulkReject}, testMachine(), store, clerk)
	require.Error(t, err)
	assert.True(t, apperr.IsValidation(err))
	assert.Equal(t, 2, s.Len(), "selection kept after refused bulk action")
	assert.Equal(t, model.StatusPending, store["m1"].Status)
	assert.Equal(t, model.StatusPending, store["m2"].Status)
}

func TestBulkRejectCollectsFailures(t *testing.T) {
	motions := allPending(3)
	motions[1].Status = model.StatusAccepted
	store := storeOf(motions)
	s := NewSelection()
	s.ToggleAll(IDs(motions))
	delete(store, "m3")

	res, err := s.Dispatch(BulkRequest{Action: BulkReject, Reason: ReasonFeeUnpaid}, testMachine(), store, clerk)
	require.NoError(t, err)
	assert.Equal(t, []string{"m1"}, res.Applied)
	require.Len(t, res.Failed, 2)
	assert.Equal(t, "m2", res.Failed[0].ID)
	assert.Equal(t, "m3", res.Failed[1].ID)
	assert.Equal(t, model.StatusRejected, store["m1"].Status)
	assert.Equal(t, model.StatusAccepted, store["m2"].Status)
	assert.Zero(t, s.Len())
	assert.Equal(t, "reject: 1 applied, 2 failed", res.String())
}

func TestBulkRequestUnknownAction(t *testing.T) {
	err := BulkRequest{Action: "archive"}.Validate()
	assert.True(t, apperr.IsValidation(err))
}
