// This file contains the background consumer that listens to the
// booking.created and booking.cancelled queues and appends structured
// lines to logs/booking.log.
package queue

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// StartBookingConsumer connects to RabbitMQ, declares the booking queues
// (durable), and starts consuming messages from both.  Each message is
// appended to logs/booking.log in a single-line, human-friendly format.
// The function runs a reconnect loop; it keeps running across broker
// restarts and rejects malformed messages without requeueing so the
// server continues operating.
func StartBookingConsumer() error {
	url := brokerURL()

	backoff := time.Second
	for {
		conn, err := amqp.Dial(url)
		if err != nil {
			log.Printf("booking-consumer: failed to dial broker: %v; retrying in %s", err, backoff)
			time.Sleep(backoff)
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second // reset after successful connect

		if err := consumeLoop(conn); err != nil {
			log.Printf("booking-consumer: consume loop ended: %v; reconnecting", err)
			time.Sleep(2 * time.Second)
			continue
		}
	}
}

// consumeLoop consumes both queues over one channel and blocks until the
// connection drops.
func consumeLoop(conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		log.Printf("booking-consumer: set QoS failed: %v", err)
	}

	type namedDelivery struct {
		queue string
		d     amqp.Delivery
	}
	merged := make(chan namedDelivery)
	for _, name := range []string{createdQueueName, cancelledQueueName} {
		if _, err := ch.QueueDeclare(name, true, false, false, false, nil); err != nil {
			return fmt.Errorf("queue declare %s: %w", name, err)
		}
		msgs, err := ch.Consume(name, "", false, false, false, false, nil)
		if err != nil {
			return fmt.Errorf("queue consume %s: %w", name, err)
		}
		go func(name string, msgs <-chan amqp.Delivery) {
			for d := range msgs {
				merged <- namedDelivery{queue: name, d: d}
			}
		}(name, msgs)
	}

	closed := make(chan *amqp.Error, 1)
	conn.NotifyClose(closed)
	for {
		select {
		case nd := <-merged:
			if err := handleMessage(nd.queue, nd.d.Body); err != nil {
				log.Printf("booking-consumer: handle message failed: %v", err)
				_ = nd.d.Nack(false, false) // reject, do not requeue to avoid tight loops
				continue
			}
			_ = nd.d.Ack(false)
		case <-closed:
			return errors.New("connection closed")
		}
	}
}

func handleMessage(queueName string, body []byte) error {
	var line string
	switch queueName {
	case createdQueueName:
		var ev BookingCreatedEvent
		if err := json.Unmarshal(body, &ev); err != nil {
			return fmt.Errorf("unmarshal: %w", err)
		}
		line = fmt.Sprintf("[%s] Booking created | booking_id=%d | user_id=%d | screen_id=%d | movie=%q | show_time=%s | total=%.2f | seats=%s\n",
			ev.BookedAt, ev.BookingID, ev.UserID, ev.ScreenID, ev.MovieName, ev.ShowTime, ev.TotalPrice, seatList(ev.Seats))
	case cancelledQueueName:
		var ev BookingCancelledEvent
		if err := json.Unmarshal(body, &ev); err != nil {
			return fmt.Errorf("unmarshal: %w", err)
		}
		line = fmt.Sprintf("[%s] Booking cancelled | booking_id=%d | user_id=%d | screen_id=%d | seats=%s\n",
			ev.CancelledAt, ev.BookingID, ev.UserID, ev.ScreenID, seatList(ev.Seats))
	default:
		return fmt.Errorf("unknown queue %q", queueName)
	}

	if err := os.MkdirAll("logs", 0o755); err != nil {
		return fmt.Errorf("mkdir logs: %w", err)
	}
	fpath := filepath.Join("logs", "booking.log")
	f, err := os.OpenFile(fpath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(line); err != nil {
		return fmt.Errorf("write log: %w", err)
	}
	return nil
}

func seatList(labels []string) string {
	if len(labels) == 0 {
		return "[]"
	}
	return fmt.Sprintf("[%s]", strings.Join(labels, ","))
}
