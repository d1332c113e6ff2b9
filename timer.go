package fsm

import (
	"time"
)

// timerEntry tracks an armed timer
type timerEntry struct {
	timer *time.Timer
	event string
	args  []any
	delay time.Duration
}

// PostEventAfter arms a named timer that posts event with args once delay
// has elapsed. Arming an existing name replaces the earlier timer.
// Nothing is queued until the timer fires.
func (m *Machine) PostEventAfter(name string, delay time.Duration, event string, args ...any) {
	m.timerMu.Lock()
	defer m.timerMu.Unlock()

	// Cancel existing timer with same name
	if existing, ok := m.timers[name]; ok {
		existing.timer.Stop()
		delete(m.timers, name)
	}

	entry := &timerEntry{
		event: event,
		args:  args,
		delay: delay,
	}
	entry.timer = time.AfterFunc(delay, func() {
		m.timerMu.Lock()
		// Re-armed or stopped since this callback was scheduled
		if m.timers[name] != entry {
			m.timerMu.Unlock()
			return
		}
		delete(m.timers, name)
		m.timerMu.Unlock()

		m.logger.Debug("timer fired", "name", name, "event", event)

		c := m.PostEvent(event, args...)
		go func() {
			if err := c.Await(); err != nil {
				m.logger.Debug("timer event failed", "name", name, "event", event, "id", c.ID(), "error", err)
			}
		}()
	})
	m.timers[name] = entry

	m.logger.Debug("timer started", "name", name, "delay", delay, "event", event)
}

// StopTimer stops a timer by name. No-op if the timer doesn't exist or has fired.
func (m *Machine) StopTimer(name string) {
	m.timerMu.Lock()
	defer m.timerMu.Unlock()

	if entry, ok := m.timers[name]; ok {
		entry.timer.Stop()
		delete(m.timers, name)
		m.logger.Debug("timer stopped", "name", name)
	}
}

// StopAllTimers stops all armed timers
func (m *Machine) StopAllTimers() {
	m.timerMu.Lock()
	defer m.timerMu.Unlock()

	for name, entry := range m.timers {
		entry.timer.Stop()
		m.logger.Debug("timer stopped (cleanup)", "name", name)
	}
	m.timers = make(map[string]*timerEntry)
}

// TimerActive checks if a timer is armed
func (m *Machine) TimerActive(name string) bool {
	m.timerMu.Lock()
	defer m.timerMu.Unlock()
	_, ok := m.timers[name]
	return ok
}

// ResetTimer re-arms a timer with a new delay, keeping its event and arguments
func (m *Machine) ResetTimer(name string, delay time.Duration) {
	m.timerMu.Lock()
	entry, ok := m.timers[name]
	if !ok {
		m.timerMu.Unlock()
		return
	}
	entry.timer.Stop()
	delete(m.timers, name)
	m.timerMu.Unlock()

	m.PostEventAfter(name, delay, entry.event, entry.args...)
}
