package broker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/Werneck0live/cadastro-empresas-api/internal/models"
)

// Publisher envia CompanyEvent para uma fila durável pelo exchange default.
type Publisher struct {
	mu    sync.Mutex
	conn  *amqp.Connection
	ch    *amqp.Channel
	queue string
}

func NewPublisher(uri, queue string) (*Publisher, error) {
	conn, ch, err := dialQueue(uri, queue)
	if err != nil {
		return nil, err
	}
	return &Publisher{conn: conn, ch: ch, queue: queue}, nil
}

// dialQueue abre conexão e canal e garante que a fila exista (durável).
func dialQueue(uri, queue string) (*amqp.Connection, *amqp.Channel, error) {
	conn, err := amqp.Dial(uri)
	if err != nil {
		return nil, nil, fmt.Errorf("rabbit dial: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, nil, fmt.Errorf("rabbit channel: %w", err)
	}

	_, err = ch.QueueDeclare(
		queue,
		true,  // durable
		false, // auto-delete
		false, // exclusive
		false, // no-wait
		nil,   // args
	)
	if err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, nil, fmt.Errorf("rabbit queue declare %q: %w", queue, err)
	}
	return conn, ch, nil
}

// eventPublishing monta a mensagem persistente; os headers repetem os campos
// usados para roteamento/filtro pelos consumidores.
func eventPublishing(ev models.CompanyEvent) (amqp.Publishing, error) {
	body, err := json.Marshal(ev)
	if err != nil {
		return amqp.Publishing{}, err
	}
	return amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    ev.EventID,
		Timestamp:    ev.Timestamp,
		Type:         "company." + ev.Action,
		Body:         body,
		Headers: amqp.Table{
			"action":     ev.Action,
			"company_id": ev.CompanyID,
			"cnpj":       ev.CNPJ,
		},
	}, nil
}

func (p *Publisher) Publish(ctx context.Context, ev models.CompanyEvent) error {
	if ctx == nil {
		c, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		ctx = c
	}
	msg, err := eventPublishing(ev)
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ch.PublishWithContext(
		ctx,
		"",      // default exchange
		p.queue, // routing key = nome da fila
		false,   // mandatory
		false,   // immediate
		msg,
	)
}

func (p *Publisher) Close() error {
	return closeAll(p.ch, p.conn)
}

// Consumer entrega as mensagens da fila com auto-ack.
type Consumer struct {
	conn  *amqp.Connection
	ch    *amqp.Channel
	queue string
}

func NewConsumer(uri, queue string, prefetch int) (*Consumer, error) {
	conn, ch, err := dialQueue(uri, queue)
	if err != nil {
		return nil, err
	}
	if prefetch > 0 {
		if err := ch.Qos(prefetch, 0, false); err != nil {
			_ = closeAll(ch, conn)
			return nil, fmt.Errorf("rabbit qos: %w", err)
		}
	}
	return &Consumer{conn: conn, ch: ch, queue: queue}, nil
}

func (c *Consumer) Deliveries(consumerTag string) (<-chan amqp.Delivery, error) {
	return c.ch.Consume(
		c.queue,
		consumerTag,
		true,  // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
}

func (c *Consumer) Close() error {
	return closeAll(c.ch, c.conn)
}

func closeAll(ch *amqp.Channel, conn *amqp.Connection) error {
	var errCh, errConn error
	if ch != nil {
		errCh = ch.Close()
	}
	if conn != nil {
		errConn = conn.Close()
	}
	return errors.Join(errCh, errConn)
}
