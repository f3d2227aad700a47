package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

func TestCollectorRegisters(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := New(reg)

	c.ObserveAutoFill("roles", 5, 8, 0.002)
	c.ObserveAutoFill("generic", 2, 2, 0.001)
	c.ObserveRequest("POST", "/api/autofill", 200)

	families, err := reg.Gather()
	require.NoError(t, err)

	byName := make(map[string]bool, len(families))
	for _, mf := range families {
		byName[mf.GetName()] = true
	}
	require.True(t, byName["raidledger_autofill_runs_total"])
	require.True(t, byName["raidledger_autofill_seats_filled_total"])
	require.True(t, byName["raidledger_autofill_seats_unfilled_total"])
	require.True(t, byName["raidledger_autofill_duration_seconds"])
	require.True(t, byName["raidledger_http_requests_total"])
}

func TestObserveAutoFillUnfilled(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := New(reg)

	// Fully filled runs must not emit an unfilled sample.
	c.ObserveAutoFill("roles", 3, 3, 0.001)

	families, err := reg.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		require.NotEqual(t, "raidledger_autofill_seats_unfilled_total", mf.GetName())
	}
}
