// Package countdown runs one ticking task per displayed reservation.
//
// Each tracked reservation owns a goroutine that re-evaluates its
// window once per second, phase-aligned to whole wall-clock seconds so
// the rendered countdown does not drift. A task stops on its own once
// the reservation reaches a terminal state, or promptly when the row
// is forgotten (removed from view) or the manager shuts down.
package countdown

import (
	"context"
	"sync"
	"time"

	"ureserve/internal/metrics"
	"ureserve/internal/models"
	"ureserve/internal/window"
)

// Listener receives every published evaluation for a tracked row.
type Listener func(code string, res window.Result)

type row struct {
	cancel context.CancelFunc
}

// Manager tracks countdown tasks keyed by reservation code.
type Manager struct {
	eval     *window.Evaluator
	listener Listener

	mu   sync.Mutex
	rows map[string]*row
	wg   sync.WaitGroup
}

// NewManager creates a manager publishing evaluations to listener.
func NewManager(eval *window.Evaluator, listener Listener) *Manager {
	if eval == nil {
		eval = window.NewEvaluator(nil)
	}
	return &Manager{
		eval:     eval,
		listener: listener,
		rows:     make(map[string]*row),
	}
}

// Track starts a ticking task for the reservation. Tracking a code that
// is already tracked restarts its task with the new record.
func (m *Manager) Track(ctx context.Context, r *models.Reservation) {
	rowCtx, cancel := context.WithCancel(ctx)
	rw := &row{cancel: cancel}

	m.mu.Lock()
	if prev, ok := m.rows[r.Code]; ok {
		prev.cancel()
	}
	m.rows[r.Code] = rw
	metrics.SetActiveCountdowns(len(m.rows))
	m.mu.Unlock()

	m.wg.Add(1)
	go m.run(rowCtx, r, rw)
}

// Forget cancels the task for a reservation no longer displayed.
func (m *Manager) Forget(code string) {
	m.mu.Lock()
	if rw, ok := m.rows[code]; ok {
		rw.cancel()
		delete(m.rows, code)
		metrics.SetActiveCountdowns(len(m.rows))
	}
	m.mu.Unlock()
}

// Stop cancels every task and waits for them to finish.
func (m *Manager) Stop() {
	m.mu.Lock()
	for code, rw := range m.rows {
		rw.cancel()
		delete(m.rows, code)
	}
	metrics.SetActiveCountdowns(0)
	m.mu.Unlock()
	m.wg.Wait()
}

// Active returns the number of currently tracked rows.
func (m *Manager) Active() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rows)
}

func (m *Manager) run(ctx context.Context, r *models.Reservation, rw *row) {
	defer m.wg.Done()

	m.publish(r.Code, window.Result{State: window.StatePending, Text: window.TextPending})

	w := window.For(r)
	for {
		res := window.EvaluateAt(w, m.eval.Now())
		m.publish(r.Code, res)
		metrics.IncEvaluation(string(res.State))

		if res.State.IsTerminal() {
			m.release(r.Code, rw)
			return
		}

		timer := time.NewTimer(alignDelay(time.Now()))
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
	}
}

// release drops the row only if it still owns its slot. A restarted
// task under the same code must not be cancelled by its predecessor.
func (m *Manager) release(code string, rw *row) {
	m.mu.Lock()
	if current, ok := m.rows[code]; ok && current == rw {
		rw.cancel()
		delete(m.rows, code)
		metrics.SetActiveCountdowns(len(m.rows))
	}
	m.mu.Unlock()
}

func (m *Manager) publish(code string, res window.Result) {
	if m.listener != nil {
		m.listener(code, res)
	}
}

// alignDelay returns the delay until the next whole wall-clock second,
// so successive ticks land on second boundaries instead of drifting.
func alignDelay(now time.Time) time.Duration {
	ms := now.UnixMilli() % 1000
	return time.Duration(1000-ms) * time.Millisecond
}
