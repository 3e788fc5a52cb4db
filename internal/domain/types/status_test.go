package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusGraphIsStrictlyForward(t *testing.T) {
	chain := []RequestStatus{
		StatusAssigned,
		StatusEnroute,
		StatusArrived,
		StatusTransporting,
		StatusDelivered,
		StatusCompleted,
	}

	for i := 0; i < len(chain)-1; i++ {
		assert.True(t, chain[i].CanAdvanceTo(chain[i+1]),
			"%s -> %s must be allowed", chain[i], chain[i+1])
	}

	// No skipping, no re-entry, no backwards moves.
	for i, from := range chain {
		for j, to := range chain {
			if j == i+1 {
				continue
			}
			assert.False(t, from.CanAdvanceTo(to),
				"%s -> %s must be rejected", from, to)
		}
	}
}

func TestTerminalStatesHaveNoSuccessor(t *testing.T) {
	for _, s := range []RequestStatus{StatusCompleted, StatusRejected, StatusCancelled} {
		assert.True(t, s.Terminal())
		assert.Empty(t, s.Next())
	}
}

func TestPendingAdvancesOnlyThroughApproveOrReject(t *testing.T) {
	for _, to := range []RequestStatus{StatusAssigned, StatusEnroute, StatusCompleted, StatusRejected} {
		assert.False(t, StatusPending.CanAdvanceTo(to))
	}
}

func TestActiveStatuses(t *testing.T) {
	active := map[RequestStatus]bool{
		StatusAssigned:     true,
		StatusEnroute:      true,
		StatusArrived:      true,
		StatusTransporting: true,
	}

	all := []RequestStatus{
		StatusPending, StatusAssigned, StatusEnroute, StatusArrived,
		StatusTransporting, StatusDelivered, StatusCompleted,
		StatusRejected, StatusCancelled,
	}
	for _, s := range all {
		assert.Equal(t, active[s], s.Active(), "status %s", s)
	}
}
