package countdown

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ureserve/internal/models"
	"ureserve/internal/window"
)

type recorder struct {
	mu      sync.Mutex
	results []window.Result
	notify  chan window.Result
}

func newRecorder() *recorder {
	return &recorder{notify: make(chan window.Result, 64)}
}

func (r *recorder) listen(_ string, res window.Result) {
	r.mu.Lock()
	r.results = append(r.results, res)
	r.mu.Unlock()
	r.notify <- res
}

func (r *recorder) wait(t *testing.T, state window.State) window.Result {
	t.Helper()
	deadline := time.After(3 * time.Second)
	for {
		select {
		case res := <-r.notify:
			if res.State == state {
				return res
			}
		case <-deadline:
			t.Fatalf("timed out waiting for state %s", state)
		}
	}
}

func reservation(code, date, start, end string) *models.Reservation {
	return &models.Reservation{
		Code:      code,
		Type:      models.TypeCubicle,
		Date:      date,
		StartTime: start,
		EndTime:   end,
	}
}

func TestManager_ExpiredIsTerminal(t *testing.T) {
	now := time.Date(2024, 3, 12, 10, 0, 0, 0, time.UTC)
	eval := window.NewEvaluator(window.FixedClock{At: now})

	rec := newRecorder()
	m := NewManager(eval, rec.listen)
	defer m.Stop()

	m.Track(context.Background(), reservation("A-1", "2024-03-10", "10:00", "12:00"))

	res := rec.wait(t, window.StateExpired)
	assert.Equal(t, window.TextExpired, res.Text)

	// The task releases itself once terminal.
	assert.Eventually(t, func() bool { return m.Active() == 0 },
		2*time.Second, 10*time.Millisecond)
}

func TestManager_InvalidIsTerminal(t *testing.T) {
	eval := window.NewEvaluator(window.FixedClock{At: time.Now().UTC()})

	rec := newRecorder()
	m := NewManager(eval, rec.listen)
	defer m.Stop()

	m.Track(context.Background(), reservation("B-2", "not-a-date", "10:00", "12:00"))

	res := rec.wait(t, window.StateInvalid)
	assert.Equal(t, window.TextInvalid, res.Text)
	assert.Eventually(t, func() bool { return m.Active() == 0 },
		2*time.Second, 10*time.Millisecond)
}

func TestManager_PendingPublishedFirst(t *testing.T) {
	now := time.Date(2024, 3, 12, 10, 0, 0, 0, time.UTC)
	eval := window.NewEvaluator(window.FixedClock{At: now})

	rec := newRecorder()
	m := NewManager(eval, rec.listen)
	defer m.Stop()

	m.Track(context.Background(), reservation("C-3", "2024-03-10", "10:00", "12:00"))
	rec.wait(t, window.StateExpired)

	rec.mu.Lock()
	defer rec.mu.Unlock()
	require.NotEmpty(t, rec.results)
	assert.Equal(t, window.StatePending, rec.results[0].State)
	assert.Equal(t, window.TextPending, rec.results[0].Text)
}

func TestManager_ForgetCancelsActiveRow(t *testing.T) {
	// Window far in the future keeps the row ACTIVE and ticking.
	future := time.Now().UTC().Add(48 * time.Hour).Format("2006-01-02")
	eval := window.NewEvaluator(nil)

	rec := newRecorder()
	m := NewManager(eval, rec.listen)
	defer m.Stop()

	m.Track(context.Background(), reservation("D-4", future, "00:00", "23:00"))
	rec.wait(t, window.StateActive)
	assert.Equal(t, 1, m.Active())

	m.Forget("D-4")
	assert.Eventually(t, func() bool { return m.Active() == 0 },
		2*time.Second, 10*time.Millisecond)
}

func TestManager_StopWaitsForAllRows(t *testing.T) {
	future := time.Now().UTC().Add(48 * time.Hour).Format("2006-01-02")
	rec := newRecorder()
	m := NewManager(window.NewEvaluator(nil), rec.listen)

	for _, code := range []string{"E-1", "E-2", "E-3"} {
		m.Track(context.Background(), reservation(code, future, "00:00", "23:00"))
	}
	assert.Equal(t, 3, m.Active())

	m.Stop()
	assert.Equal(t, 0, m.Active())
}

func TestAlignDelay(t *testing.T) {
	at := time.UnixMilli(1710240000250)
	assert.Equal(t, 750*time.Millisecond, alignDelay(at))

	whole := time.UnixMilli(1710240000000)
	assert.Equal(t, time.Second, alignDelay(whole))
}
