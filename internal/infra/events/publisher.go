package events

import (
	"context"
	"encoding/json"
	"log"

	"shop/internal/usecase"

	amqp "github.com/rabbitmq/amqp091-go"
)

// 注文ライフサイクルのイベントをtopic exchangeへ流す。
// fire-and-forget: 配信失敗はログのみ。
type AMQPPublisher struct {
	conn     *amqp.Connection
	ch       *amqp.Channel
	exchange string
}

func NewAMQPPublisher(url string, exchange string) (*AMQPPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, err
	}

	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}

	return &AMQPPublisher{conn: conn, ch: ch, exchange: exchange}, nil
}

func (p *AMQPPublisher) PublishOrderEvent(ctx context.Context, evt usecase.OrderEvent) {
	body, err := json.Marshal(evt)
	if err != nil {
		log.Printf("events: marshal %s: %v", evt.Kind, err)
		return
	}

	err = p.ch.PublishWithContext(ctx, p.exchange, evt.Kind, false, false, amqp.Publishing{
		ContentType: "application/json",
		Timestamp:   evt.At,
		Body:        body,
	})
	if err != nil {
		log.Printf("events: publish %s for order %d: %v", evt.Kind, evt.OrderID, err)
	}
}

func (p *AMQPPublisher) Close() {
	p.ch.Close()
	p.conn.Close()
}

// AMQP未設定のとき
type NopPublisher struct{}

func (NopPublisher) PublishOrderEvent(ctx context.Context, evt usecase.OrderEvent) {}
