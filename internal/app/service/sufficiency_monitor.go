package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-co-op/gocron"

	"gas_checker/internal/app/port"
	"gas_checker/internal/domain/entity"
)

type invalidator interface {
	Invalidate(address, routeID string)
}

// SufficiencyMonitor re-evaluates the tracked (account, route) pair on a fixed interval and
// publishes every result as an immutable snapshot. Switching the tracked pair abandons the
// evaluation in flight for the old pair; its result is never published.
type SufficiencyMonitor struct {
	checker   port.SufficiencyChecker
	interval  time.Duration
	logger    port.Logger
	scheduler *gocron.Scheduler

	mu         sync.Mutex
	account    entity.Account
	route      *entity.Route
	generation uint64
	// runSeq numbers runs; lastPublished is the newest run whose result was published.
	runSeq        uint64
	lastPublished uint64
	genCtx        context.Context
	genCancel     context.CancelFunc
	stopped       bool

	latest atomic.Pointer[entity.SufficiencySnapshot]

	subsMu  sync.Mutex
	subs    map[int]chan entity.SufficiencySnapshot
	nextSub int
}

// NewSufficiencyMonitor creates a monitor. Call Start to begin periodic evaluation.
func NewSufficiencyMonitor(checker port.SufficiencyChecker, interval time.Duration, l port.Logger) *SufficiencyMonitor {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &SufficiencyMonitor{
		checker:   checker,
		interval:  interval,
		logger:    l,
		scheduler: gocron.NewScheduler(time.UTC),
		genCtx:    ctx,
		genCancel: cancel,
		subs:      make(map[int]chan entity.SufficiencySnapshot),
	}
}

// Start schedules the periodic evaluation. Runs never overlap.
func (m *SufficiencyMonitor) Start() error {
	_, err := m.scheduler.Every(m.interval).SingletonMode().Do(func() {
		defer func() {
			if r := recover(); r != nil {
				m.logger.Error("Sufficiency monitor tick panicked", "panic", fmt.Sprint(r))
			}
		}()
		m.Refresh()
	})
	if err != nil {
		return fmt.Errorf("failed to schedule sufficiency monitor: %w", err)
	}
	m.scheduler.StartAsync()
	m.logger.Info("Sufficiency monitor started", "interval", m.interval)
	return nil
}

// Stop halts the schedule, abandons in-flight evaluations and closes all subscriptions.
func (m *SufficiencyMonitor) Stop() {
	m.scheduler.Stop()

	m.mu.Lock()
	m.stopped = true
	m.generation++
	m.genCancel()
	m.mu.Unlock()

	m.subsMu.Lock()
	for id, ch := range m.subs {
		close(ch)
		delete(m.subs, id)
	}
	m.subsMu.Unlock()
}

// Track switches the monitored pair and evaluates it immediately. An account without address
// or a nil route disables evaluation and clears the latest snapshot.
func (m *SufficiencyMonitor) Track(account entity.Account, route *entity.Route) {
	m.mu.Lock()
	if m.stopped {
		m.mu.Unlock()
		return
	}
	m.genCancel()
	m.generation++
	m.genCtx, m.genCancel = context.WithCancel(context.Background())
	m.account = account
	if route != nil {
		routeCopy := *route
		m.route = &routeCopy
	} else {
		m.route = nil
	}
	enabled := m.enabledLocked()
	if !enabled {
		m.latest.Store(nil)
	}
	m.mu.Unlock()

	if enabled {
		go m.run(false)
	}
}

// Refresh evaluates the tracked pair now, bypassing cached results.
func (m *SufficiencyMonitor) Refresh() {
	m.run(true)
}

// Latest returns the most recent snapshot, nil before the first evaluation.
func (m *SufficiencyMonitor) Latest() *entity.SufficiencySnapshot {
	return m.latest.Load()
}

// Subscribe returns a channel receiving every published snapshot. Slow subscribers only see
// the newest one. The returned func cancels the subscription.
func (m *SufficiencyMonitor) Subscribe() (<-chan entity.SufficiencySnapshot, func()) {
	ch := make(chan entity.SufficiencySnapshot, 1)

	m.subsMu.Lock()
	id := m.nextSub
	m.nextSub++
	m.subs[id] = ch
	m.subsMu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			m.subsMu.Lock()
			defer m.subsMu.Unlock()
			if _, ok := m.subs[id]; ok {
				delete(m.subs, id)
				close(ch)
			}
		})
	}
}

func (m *SufficiencyMonitor) enabledLocked() bool {
	return m.account.IsConnected() && m.route != nil
}

func (m *SufficiencyMonitor) run(bypassCache bool) {
	m.mu.Lock()
	if m.stopped || !m.enabledLocked() {
		m.mu.Unlock()
		return
	}
	gen := m.generation
	m.runSeq++
	seq := m.runSeq
	ctx := m.genCtx
	account := m.account
	route := *m.route
	m.mu.Unlock()

	if bypassCache {
		if inv, ok := m.checker.(invalidator); ok {
			inv.Invalidate(account.Address, route.ID)
		}
	}

	results, err := m.checker.Check(ctx, account, &route)
	if errors.Is(err, ErrCheckDisabled) || ctx.Err() != nil {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if gen != m.generation {
		m.logger.Debug("Discarding stale sufficiency result", "route", route.ID)
		return
	}
	if seq < m.lastPublished {
		m.logger.Debug("Discarding result overtaken by a newer run", "route", route.ID)
		return
	}
	m.lastPublished = seq

	snapshot := &entity.SufficiencySnapshot{
		Key:         entity.SufficiencyKey{AccountAddress: account.Address, RouteID: route.ID},
		Results:     results,
		EvaluatedAt: time.Now(),
		Err:         err,
	}
	m.latest.Store(snapshot)
	m.publish(*snapshot)
}

// publish is called with m.mu held, so publishers never interleave.
func (m *SufficiencyMonitor) publish(snapshot entity.SufficiencySnapshot) {
	m.subsMu.Lock()
	defer m.subsMu.Unlock()
	for _, ch := range m.subs {
		select {
		case ch <- snapshot:
			continue
		default:
		}
		// Drop the unread snapshot in favour of the newer one.
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- snapshot:
		default:
		}
	}
}
