package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gas_checker/internal/domain/entity"
)

// scriptedChecker returns per-route results and can hold a route until released.
type scriptedChecker struct {
	mu          sync.Mutex
	results     map[string][]entity.GasSufficiency
	gates       map[string]chan struct{}
	calls       map[string]int
	invalidated int
}

func newScriptedChecker() *scriptedChecker {
	return &scriptedChecker{
		results: make(map[string][]entity.GasSufficiency),
		gates:   make(map[string]chan struct{}),
		calls:   make(map[string]int),
	}
}

func (c *scriptedChecker) Check(ctx context.Context, account entity.Account, route *entity.Route) ([]entity.GasSufficiency, error) {
	if !account.IsConnected() || route == nil {
		return nil, ErrCheckDisabled
	}
	c.mu.Lock()
	c.calls[route.ID]++
	gate := c.gates[route.ID]
	res := c.results[route.ID]
	c.mu.Unlock()
	if gate != nil {
		// Ignores ctx on purpose: the late result must still be discarded.
		<-gate
	}
	return res, nil
}

func (c *scriptedChecker) Invalidate(string, string) {
	c.mu.Lock()
	c.invalidated++
	c.mu.Unlock()
}

func (c *scriptedChecker) callCount(routeID string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls[routeID]
}

func flagged(chainID uint64) []entity.GasSufficiency {
	return []entity.GasSufficiency{{Insufficient: true, Token: entity.Token{ChainID: chainID}}}
}

func TestSufficiencyMonitorTrackPublishes(t *testing.T) {
	checker := newScriptedChecker()
	checker.results["r1"] = flagged(chainA)
	monitor := NewSufficiencyMonitor(checker, time.Hour, testLogger)
	defer monitor.Stop()

	updates, unsubscribe := monitor.Subscribe()
	defer unsubscribe()

	route := entity.Route{ID: "r1", FromChainID: chainA, ToChainID: chainA}
	monitor.Track(account, &route)

	select {
	case snap := <-updates:
		assert.Equal(t, "r1", snap.Key.RouteID)
		assert.Equal(t, walletAddr, snap.Key.AccountAddress)
		require.Len(t, snap.Results, 1)
		assert.NoError(t, snap.Err)
	case <-time.After(time.Second):
		t.Fatal("no snapshot published")
	}
	require.NotNil(t, monitor.Latest())
	assert.Equal(t, "r1", monitor.Latest().Key.RouteID)
}

func TestSufficiencyMonitorDiscardsStaleResult(t *testing.T) {
	checker := newScriptedChecker()
	slowGate := make(chan struct{})
	checker.gates["old"] = slowGate
	checker.results["old"] = flagged(chainA)
	checker.results["new"] = flagged(chainB)
	monitor := NewSufficiencyMonitor(checker, time.Hour, testLogger)
	defer monitor.Stop()

	oldRoute := entity.Route{ID: "old", FromChainID: chainA, ToChainID: chainA}
	newRoute := entity.Route{ID: "new", FromChainID: chainB, ToChainID: chainB}

	monitor.Track(account, &oldRoute)
	require.Eventually(t, func() bool { return checker.callCount("old") == 1 }, time.Second, 5*time.Millisecond)

	monitor.Track(account, &newRoute)
	require.Eventually(t, func() bool {
		snap := monitor.Latest()
		return snap != nil && snap.Key.RouteID == "new"
	}, time.Second, 5*time.Millisecond)

	close(slowGate)
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, "new", monitor.Latest().Key.RouteID)
	assert.Equal(t, chainB, monitor.Latest().Results[0].Token.ChainID)
}

func TestSufficiencyMonitorDisable(t *testing.T) {
	checker := newScriptedChecker()
	monitor := NewSufficiencyMonitor(checker, time.Hour, testLogger)
	defer monitor.Stop()

	route := entity.Route{ID: "r1", FromChainID: chainA, ToChainID: chainA}
	monitor.Track(account, &route)
	require.Eventually(t, func() bool { return monitor.Latest() != nil }, time.Second, 5*time.Millisecond)

	monitor.Track(entity.Account{}, &route)
	assert.Nil(t, monitor.Latest())

	monitor.Refresh()
	assert.Nil(t, monitor.Latest())
	assert.Equal(t, 1, checker.callCount("r1"))
}

func TestSufficiencyMonitorRefreshBypassesCache(t *testing.T) {
	checker := newScriptedChecker()
	monitor := NewSufficiencyMonitor(checker, time.Hour, testLogger)
	defer monitor.Stop()

	route := entity.Route{ID: "r1", FromChainID: chainA, ToChainID: chainA}
	monitor.Track(account, &route)
	require.Eventually(t, func() bool { return checker.callCount("r1") == 1 }, time.Second, 5*time.Millisecond)

	monitor.Refresh()
	assert.Equal(t, 2, checker.callCount("r1"))
	checker.mu.Lock()
	assert.Equal(t, 1, checker.invalidated)
	checker.mu.Unlock()
}

func TestSufficiencyMonitorScheduledRuns(t *testing.T) {
	checker := newScriptedChecker()
	monitor := NewSufficiencyMonitor(checker, time.Hour, testLogger)

	route := entity.Route{ID: "r1", FromChainID: chainA, ToChainID: chainA}
	monitor.Track(account, &route)
	require.NoError(t, monitor.Start())

	// One run from Track, one from the scheduler starting.
	assert.Eventually(t, func() bool { return checker.callCount("r1") >= 2 }, 2*time.Second, 10*time.Millisecond)

	updates, _ := monitor.Subscribe()
	monitor.Stop()
	drained := make(chan struct{})
	go func() {
		for range updates {
		}
		close(drained)
	}()
	select {
	case <-drained:
	case <-time.After(time.Second):
		t.Fatal("subscription not closed on Stop")
	}

	monitor.Track(account, &route)
	time.Sleep(20 * time.Millisecond)
	assert.LessOrEqual(t, checker.callCount("r1"), 3)
}

func TestSufficiencyMonitorSlowSubscriberSeesLatest(t *testing.T) {
	checker := newScriptedChecker()
	checker.results["r1"] = flagged(chainA)
	monitor := NewSufficiencyMonitor(checker, time.Hour, testLogger)
	defer monitor.Stop()

	updates, unsubscribe := monitor.Subscribe()
	route := entity.Route{ID: "r1", FromChainID: chainA, ToChainID: chainA}
	monitor.Track(account, &route)
	require.Eventually(t, func() bool { return monitor.Latest() != nil }, time.Second, 5*time.Millisecond)

	monitor.Refresh()
	monitor.Refresh()

	snap := <-updates
	assert.Equal(t, monitor.Latest().EvaluatedAt, snap.EvaluatedAt)

	unsubscribe()
	unsubscribe()
	_, open := <-updates
	assert.False(t, open)
}

// sequencedChecker answers the n-th call with results[n]; the first call waits for gate.
type sequencedChecker struct {
	mu      sync.Mutex
	calls   int
	results [][]entity.GasSufficiency
	gate    chan struct{}
}

func (c *sequencedChecker) Check(ctx context.Context, account entity.Account, route *entity.Route) ([]entity.GasSufficiency, error) {
	c.mu.Lock()
	n := c.calls
	c.calls++
	c.mu.Unlock()
	if n == 0 {
		<-c.gate
	}
	return c.results[n], nil
}

func (c *sequencedChecker) callCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

func TestSufficiencyMonitorDropsOvertakenRun(t *testing.T) {
	checker := &sequencedChecker{
		results: [][]entity.GasSufficiency{flagged(chainA), flagged(chainB)},
		gate:    make(chan struct{}),
	}
	monitor := NewSufficiencyMonitor(checker, time.Hour, testLogger)
	defer monitor.Stop()

	route := entity.Route{ID: "r1", FromChainID: chainA, ToChainID: chainB}
	monitor.Track(account, &route)
	require.Eventually(t, func() bool { return checker.callCount() == 1 }, time.Second, 5*time.Millisecond)

	monitor.Refresh()
	require.NotNil(t, monitor.Latest())
	assert.Equal(t, chainB, monitor.Latest().Results[0].Token.ChainID)

	close(checker.gate)
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, chainB, monitor.Latest().Results[0].Token.ChainID)
}
