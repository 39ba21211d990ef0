package radio

import "time"

// FireSleepTimersAfter makes every sleep timer armed on s fire after d.
func FireSleepTimersAfter(s *Session, d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.afterFunc = func(_ time.Duration, f func()) *time.Timer {
		return time.AfterFunc(d, f)
	}
}
