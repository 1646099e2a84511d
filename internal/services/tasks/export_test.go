package services

import "time"

// SetClock подменяет источник времени в тестах.
func (s *TaskService) SetClock(now func() time.Time) {
	s.now = now
}
