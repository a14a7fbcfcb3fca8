package main

import (
	"encoding/json"
	"log"

	"github.com/joho/godotenv"
	"github.com/streadway/amqp"

	"github.com/redwoodtel/callwave-backend/internal/config"
	"github.com/redwoodtel/callwave-backend/internal/db"
	"github.com/redwoodtel/callwave-backend/internal/repository"
	"github.com/redwoodtel/callwave-backend/internal/service"
)

// StatusJob is one engine terminal-status event delivered over the queue.
// Engines that cannot reach the HTTP callback endpoint can bridge their
// events here instead; both paths land in the same StatusService.
type StatusJob struct {
	CallID string `json:"call_id"`
	Status string `json:"status"`
}

const statusQueue = "call_status_events"

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️ No .env file found, relying on OS environment variables")
	}

	cfg := config.FromEnv()
	db.Init(cfg)

	statusService := &service.StatusService{
		Calls:      &repository.CallRepository{DB: db.DB},
		Broadcasts: &repository.BroadcastRepository{DB: db.DB},
	}

	conn, err := amqp.Dial(cfg.AMQPURL)
	if err != nil {
		log.Fatal("Failed to connect to RabbitMQ:", err)
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		log.Fatal("Failed to open a channel:", err)
	}
	defer ch.Close()

	q, err := ch.QueueDeclare(
		statusQueue, // name
		true,        // durable
		false,       // delete when unused
		false,       // exclusive
		false,       // no-wait
		nil,         // arguments
	)
	if err != nil {
		log.Fatal("Failed to declare queue:", err)
	}

	msgs, err := ch.Consume(
		q.Name,
		"",
		false, // autoAck = false for reliability
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		log.Fatal("Failed to register consumer:", err)
	}

	forever := make(chan bool)

	go func() {
		for d := range msgs {
			var job StatusJob
			if err := json.Unmarshal(d.Body, &job); err != nil {
				log.Println("Invalid status event:", err)
				d.Ack(false)
				continue
			}

			known, err := statusService.Apply(job.CallID, job.Status)
			if err != nil {
				log.Println("Failed to apply status event:", err)
				// Retry store faults a few times before giving up.
				var retryCount int
				if d.Headers["x-retry-count"] != nil {
					retryCount, _ = d.Headers["x-retry-count"].(int)
				}
				if retryCount < 3 {
					d.Nack(false, true) // requeue
					continue
				}
			}
			if !known {
				log.Println("Ignored status event for unknown call:", job.CallID)
			}

			d.Ack(false)
		}
	}()

	log.Println("Worker running, waiting for status events...")
	<-forever
}
