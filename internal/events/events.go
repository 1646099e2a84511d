// Package events описывает события изменения задач и их публикацию
// в RabbitMQ после фиксации транзакции.
package events

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/task-tracker/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/task-tracker/internal/models"
)

// Типы событий. Используются как routing key.
const (
	TaskCreated       = "task.created"
	TaskUpdated       = "task.updated"
	TaskStatusChanged = "task.status_changed"
	TaskDeleted       = "task.deleted"
)

// TaskEvent сообщение об изменении задачи.
type TaskEvent struct {
	EventID    string            `json:"event_id"`
	Type       string            `json:"type"`
	TaskID     int64             `json:"task_id"`
	UserID     int64             `json:"user_id"`
	Status     models.TaskStatus `json:"status"`
	OccurredAt time.Time         `json:"occurred_at"`
}

// NewTaskEvent собирает событие по состоянию задачи.
func NewTaskEvent(eventType string, task *models.Task, at time.Time) TaskEvent {
	return TaskEvent{
		EventID:    uuid.NewString(),
		Type:       eventType,
		TaskID:     task.ID,
		UserID:     task.UserID,
		Status:     task.Status,
		OccurredAt: at.UTC(),
	}
}

// Noop отбрасывает события. Используется, когда брокер не настроен.
type Noop struct{}

// Publish ничего не делает.
func (Noop) Publish(context.Context, TaskEvent) error { return nil }

// Close ничего не делает.
func (Noop) Close() error { return nil }

// AMQPPublisher публикует события в topic exchange.
type AMQPPublisher struct {
	mu       sync.Mutex
	conn     *amqp.Connection
	ch       *amqp.Channel
	exchange string
	log      *slog.Logger
}

// NewAMQPPublisher подключается к брокеру и объявляет exchange.
func NewAMQPPublisher(url, exchange string, retries int, delay time.Duration, log *slog.Logger) (*AMQPPublisher, error) {
	const op = "events.NewAMQPPublisher"

	conn, err := rabbitmq.Connect(url, retries, delay)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	ch, err := rabbitmq.SetupExchange(conn, exchange)
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("task events publisher connected", slog.String("exchange", exchange))
	return &AMQPPublisher{
		conn:     conn,
		ch:       ch,
		exchange: exchange,
		log:      log,
	}, nil
}

// Publish отправляет событие с routing key, равным его типу.
func (p *AMQPPublisher) Publish(ctx context.Context, event TaskEvent) error {
	const op = "events.AMQPPublisher.Publish"
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if err := rabbitmq.PublishMessage(p.ch, p.exchange, event.Type, event.EventID, event); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Close закрывает канал и соединение.
func (p *AMQPPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	chErr := p.ch.Close()
	connErr := p.conn.Close()
	if chErr != nil {
		return chErr
	}
	return connErr
}
