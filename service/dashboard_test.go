package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jakeh134/motionflow/model"
	"github.com/jakeh134/motionflow/pkg/apperr"
	"github.com/jakeh134/motionflow/workflow"
)

func newTestDashboard(t *testing.T) (*DashboardService, *MotionStore) {
	t.Helper()
	svc, store := newTestMotionService(t)
	return NewDashboardService(svc), store
}

func TestDashboardViewFilters(t *testing.T) {
	d, _ := newTestDashboard(t)

	v := d.View(travisClerk, workflow.Criteria{Status: string(model.StatusPending)})
	assert.Equal(t, []string{"m1"}, workflow.IDs(v.Motions))
	assert.False(t, v.Empty)

	v = d.View(travisClerk, workflow.Criteria{Status: workflow.StatusAll, Query: "nobody"})
	assert.True(t, v.Empty)
	assert.NotNil(t, v.Motions)
}

func TestDashboardSelectionSurvivesFilterChange(t *testing.T) {
	d, _ := newTestDashboard(t)

	d.View(travisClerk, workflow.Criteria{Status: workflow.StatusAll})
	d.Toggle(travisClerk, "m1")
	d.Toggle(travisClerk, "m2")

	v := d.View(travisClerk, workflow.Criteria{Status: string(model.StatusPending)})
	assert.Equal(t, []string{"m1", "m2"}, v.Selected)
	assert.Equal(t, []string{"m2"}, v.Hidden)
	assert.True(t, v.AllSelected)
}

func TestDashboardToggleIgnoresOtherCourts(t *testing.T) {
	d, _ := newTestDashboard(t)

	v := d.Toggle(travisClerk, "m6")
	assert.Empty(t, v.Selected)
}

func TestDashboardBulkIncludesHiddenSelection(t *testing.T) {
	d, store := newTestDashboard(t)
	ctx := context.Background()

	d.View(travisClerk, workflow.Criteria{Status: workflow.StatusAll})
	d.Toggle(travisClerk, "m1")
	d.Toggle(travisClerk, "m2")
	d.View(travisClerk, workflow.Criteria{Status: string(model.StatusPending)})

	res, err := d.Bulk(ctx, travisClerk, workflow.BulkRequest{Action: workflow.BulkAccept})
	require.NoError(t, err)
	assert.Equal(t, []string{"m1", "m2"}, res.Applied)

	m2, _ := store.Get("m2")
	assert.Equal(t, model.StatusAccepted, m2.Status)
	assert.Empty(t, d.Current(travisClerk).Selected)
}

func TestDashboardBulkRejectRequiresReason(t *testing.T) {
	d, store := newTestDashboard(t)

	d.ToggleAll(travisClerk)
	_, err := d.Bulk(context.Background(), travisClerk, workflow.BulkRequest{Action: workflow.BulkReject})
	assert.True(t, apperr.IsValidation(err))

	assert.Len(t, d.Current(travisClerk).Selected, 5)
	m1, _ := store.Get("m1")
	assert.Equal(t, model.StatusPending, m1.Status)
}

func TestDashboardBulkReportsTerminalFailures(t *testing.T) {
	d, _ := newTestDashboard(t)

	d.ToggleAll(travisClerk)
	res, err := d.Bulk(context.Background(), travisClerk, workflow.BulkRequest{
		Action: workflow.BulkReject,
		Reason: workflow.ReasonFeeUnpaid,
	})
	require.NoError(t, err)
	// m3 is accepted; m4 already rejected is a no-op.
	assert.Equal(t, []string{"m1", "m2", "m4", "m5"}, res.Applied)
	require.Len(t, res.Failed, 1)
	assert.Equal(t, "m3", res.Failed[0].ID)
}

func TestDashboardsAreIsolatedPerSession(t *testing.T) {
	d, _ := newTestDashboard(t)
	other := *travisClerk
	other.TokenID = "tok-second-tab"

	d.Toggle(travisClerk, "m1")
	assert.Empty(t, d.Current(&other).Selected)

	d.Drop(travisClerk)
	assert.Empty(t, d.Current(travisClerk).Selected)
}

func TestDashboardClearAndToggleAll(t *testing.T) {
	d, _ := newTestDashboard(t)

	v := d.ToggleAll(travisClerk)
	assert.True(t, v.AllSelected)

	v = d.ToggleAll(travisClerk)
	assert.Empty(t, v.Selected)

	d.Toggle(travisClerk, "m1")
	v = d.ClearSelection(travisClerk)
	assert.Empty(t, v.Selected)
}
