package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var allStatuses = []LoanApplicationStatus{StatusPending, StatusSubmitted, StatusApproved, StatusRejected}

func TestCanTransitionTo(t *testing.T) {
	t.Parallel()

	legal := map[[2]LoanApplicationStatus]bool{
		{StatusPending, StatusSubmitted}:  true,
		{StatusSubmitted, StatusApproved}: true,
		{StatusSubmitted, StatusRejected}: true,
	}

	for _, from := range allStatuses {
		for _, to := range allStatuses {
			from, to := from, to
			t.Run(from.String()+"->"+to.String(), func(t *testing.T) {
				require.Equal(t, legal[[2]LoanApplicationStatus{from, to}], from.CanTransitionTo(to))
			})
		}
	}
}

func TestPendingNeverReachesDecision(t *testing.T) {
	t.Parallel()

	require.False(t, StatusPending.CanTransitionTo(StatusApproved))
	require.False(t, StatusPending.CanTransitionTo(StatusRejected))
}

func TestTerminalStatuses(t *testing.T) {
	t.Parallel()

	for _, status := range allStatuses {
		terminal := status == StatusApproved || status == StatusRejected
		if terminal {
			for _, next := range allStatuses {
				require.False(t, status.CanTransitionTo(next))
			}
		}
	}
}

func TestRequiredPriorStatus(t *testing.T) {
	t.Parallel()

	prior, ok := RequiredPriorStatus(StatusSubmitted)
	require.True(t, ok)
	require.Equal(t, StatusPending, prior)

	prior, ok = RequiredPriorStatus(StatusApproved)
	require.True(t, ok)
	require.Equal(t, StatusSubmitted, prior)

	prior, ok = RequiredPriorStatus(StatusRejected)
	require.True(t, ok)
	require.Equal(t, StatusSubmitted, prior)

	_, ok = RequiredPriorStatus(StatusPending)
	require.False(t, ok)
}

func TestStatusJSON(t *testing.T) {
	t.Parallel()

	payload, err := json.Marshal(struct {
		Status LoanApplicationStatus `json:"status"`
	}{StatusSubmitted})
	require.NoError(t, err)
	require.JSONEq(t, `{"status":"Submitted"}`, string(payload))

	var decoded struct {
		Status LoanApplicationStatus `json:"status"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"status":"Rejected"}`), &decoded))
	require.Equal(t, StatusRejected, decoded.Status)

	require.Error(t, json.Unmarshal([]byte(`{"status":"Closed"}`), &decoded))

	_, err = LoanApplicationStatus(9).MarshalText()
	require.Error(t, err)
}

func TestParseUserRole(t *testing.T) {
	t.Parallel()

	role, err := ParseUserRole("Admin")
	require.NoError(t, err)
	require.Equal(t, RoleAdmin, role)

	role, err = ParseUserRole("Customer")
	require.NoError(t, err)
	require.Equal(t, RoleCustomer, role)

	_, err = ParseUserRole("admin")
	require.Error(t, err)
	_, err = ParseUserRole("")
	require.Error(t, err)
}

func TestInviteCodeRedeemableBy(t *testing.T) {
	t.Parallel()

	code := &InviteCode{Email: "a@x.com"}
	require.True(t, code.RedeemableBy("a@x.com"))
	require.True(t, code.RedeemableBy(" A@X.com "))
	require.False(t, code.RedeemableBy("b@x.com"))

	code.IsUsed = true
	require.False(t, code.RedeemableBy("a@x.com"))

	var missing *InviteCode
	require.False(t, missing.RedeemableBy("a@x.com"))
}

func TestBuildPortfolioMetrics(t *testing.T) {
	t.Parallel()

	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC)
	rows := []StatusAggregate{
		{Status: StatusPending, Count: 4, Amount: 400},
		{Status: StatusSubmitted, Count: 2, Amount: 2500.5},
		{Status: StatusApproved, Count: 3, Amount: 15000},
		{Status: StatusRejected, Count: 1, Amount: 700},
	}

	metrics := BuildPortfolioMetrics(start, end, rows)

	require.Equal(t, "2025-01-01 to 2025-03-31", metrics.Period)
	require.Equal(t, MetricData{Count: 2, Amount: 2500.5}, metrics.Submitted)
	require.Equal(t, MetricData{Count: 3, Amount: 15000}, metrics.Approved)
	require.Equal(t, MetricData{Count: 1, Amount: 700}, metrics.Rejected)

	union := metrics.Submitted.Count + metrics.Approved.Count + metrics.Rejected.Count
	require.Equal(t, metrics.Total.Count, union)
	require.InDelta(t, metrics.Total.Amount, metrics.Submitted.Amount+metrics.Approved.Amount+metrics.Rejected.Amount, 0.0001)
}

func TestBuildPortfolioMetricsEmpty(t *testing.T) {
	t.Parallel()

	day := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	metrics := BuildPortfolioMetrics(day, day.AddDate(0, 0, 1), nil)
	require.Zero(t, metrics.Total)
	require.Zero(t, metrics.Submitted)
}
