package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

var (
	// ErrPublish возвращается при ошибке публикации события
	ErrPublish = errors.New("events: failed to publish event")

	// ErrConnect возвращается при ошибке подключения к брокеру
	ErrConnect = errors.New("events: failed to connect to broker")
)

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
}

// Publisher публикует доменные события
type Publisher interface {
	Publish(ctx context.Context, event BookingEvent) error
	Close() error
}

// RabbitPublisher публикует события в durable topic exchange RabbitMQ.
// Сообщения persistent, routing key совпадает с типом события.
type RabbitPublisher struct {
	conn     *amqp.Connection
	ch       *amqp.Channel
	exchange string
	mu       sync.Mutex
	logger   Logger
}

// NewRabbitPublisher подключается к брокеру и объявляет exchange
func NewRabbitPublisher(url, exchange string, logger Logger) (*RabbitPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("%w: dial: %v", ErrConnect, err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("%w: open channel: %v", ErrConnect, err)
	}

	if err := ch.ExchangeDeclare(
		exchange,
		amqp.ExchangeTopic,
		true,  // durable
		false, // autoDelete
		false, // internal
		false, // noWait
		nil,
	); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("%w: declare exchange %s: %v", ErrConnect, exchange, err)
	}

	logger.Info("RabbitMQ publisher ready (exchange=%s)", exchange)

	return &RabbitPublisher{conn: conn, ch: ch, exchange: exchange, logger: logger}, nil
}

// Publish отправляет событие
func (p *RabbitPublisher) Publish(ctx context.Context, event BookingEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("%w: marshal: %v", ErrPublish, err)
	}

	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    uuid.NewString(),
		Timestamp:    event.OccurredAt.UTC(),
		Type:         string(event.Type),
		Body:         body,
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.ch.PublishWithContext(ctx, p.exchange, string(event.Type), false, false, msg); err != nil {
		return fmt.Errorf("%w: %s booking_id=%d: %v", ErrPublish, event.Type, event.BookingID, err)
	}

	return nil
}

// Close закрывает канал и соединение
func (p *RabbitPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	chErr := p.ch.Close()
	connErr := p.conn.Close()
	return errors.Join(chErr, connErr)
}

// NopPublisher используется, когда брокер отключен в конфигурации
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, BookingEvent) error { return nil }

func (NopPublisher) Close() error { return nil }
