package models

import (
	"fmt"
	"time"
)

// TaskStatus — состояние задачи. По сети передаётся целым кодом.
type TaskStatus int

const (
	TaskStatusToDo     TaskStatus = 0
	TaskStatusInWork   TaskStatus = 1
	TaskStatusComplete TaskStatus = 2
)

// ParseTaskStatus проверяет, что код входит в множество {0,1,2}.
// Значения вне множества отклоняются, а не приводятся.
func ParseTaskStatus(code int) (TaskStatus, error) {
	s := TaskStatus(code)
	if !s.Valid() {
		return 0, fmt.Errorf("unknown task status %d: %w", code, ErrInvalidInput)
	}
	return s, nil
}

// Valid сообщает, является ли значение одним из трёх допустимых статусов.
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusToDo, TaskStatusInWork, TaskStatusComplete:
		return true
	}
	return false
}

func (s TaskStatus) String() string {
	switch s {
	case TaskStatusToDo:
		return "TO_DO"
	case TaskStatusInWork:
		return "IN_WORK"
	case TaskStatusComplete:
		return "COMPLETE"
	}
	return fmt.Sprintf("TaskStatus(%d)", int(s))
}

// Task — задача, принадлежащая ровно одному пользователю.
// UserID задаётся при создании и больше не меняется.
type Task struct {
	ID        int64      `json:"id"`
	Title     string     `json:"title"`
	Content   *string    `json:"content"`
	Status    TaskStatus `json:"status"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	UserID    int64      `json:"user_id"`
}

// NewTask используется для приёма данных создания задачи.
// Status == nil означает статус по умолчанию TO_DO.
type NewTask struct {
	Title   string
	Content *string
	Status  *int
}

// TaskPatch — частичное обновление задачи. Пустые строки и nil не применяются.
type TaskPatch struct {
	Title   string
	Content string
	Status  *int
}
