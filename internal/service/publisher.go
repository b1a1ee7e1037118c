package service

import (
    "context"
    "encoding/json"
    "fmt"
    "time"

    "cloud.google.com/go/pubsub"
    amqp "github.com/rabbitmq/amqp091-go"
    "google.golang.org/api/option"

    "github.com/iliyamo/visitor-register/internal/queue"
)

// Publisher delivers domain events.  Callers treat failures as best effort.
type Publisher interface {
    PublishVisitorRegistered(ctx context.Context, ev queue.VisitorRegisteredEvent) error
}

// NopPublisher drops every event.  Used when EVENT_BROKER=none.
type NopPublisher struct{}

func (NopPublisher) PublishVisitorRegistered(context.Context, queue.VisitorRegisteredEvent) error {
    return nil
}

// RabbitPublisher publishes persistent JSON messages to the durable
// visitor.registered queue via the default exchange.  A connection is
// dialled per publish; volume is one message per check-in.
type RabbitPublisher struct {
    URL string
}

func NewRabbitPublisher(url string) *RabbitPublisher {
    return &RabbitPublisher{URL: url}
}

func (p *RabbitPublisher) PublishVisitorRegistered(ctx context.Context, ev queue.VisitorRegisteredEvent) error {
    body, err := json.Marshal(ev)
    if err != nil {
        return fmt.Errorf("marshal event: %w", err)
    }
    conn, err := amqp.Dial(p.URL)
    if err != nil {
        return fmt.Errorf("rabbitmq dial: %w", err)
    }
    defer func() { _ = conn.Close() }()

    ch, err := conn.Channel()
    if err != nil {
        return fmt.Errorf("rabbitmq channel: %w", err)
    }
    defer func() { _ = ch.Close() }()

    if _, err := ch.QueueDeclare(queue.VisitorRegisteredQueue, true, false, false, false, nil); err != nil {
        return fmt.Errorf("rabbitmq queue declare: %w", err)
    }
    return ch.PublishWithContext(ctx, "", queue.VisitorRegisteredQueue, false, false, amqp.Publishing{
        ContentType:  "application/json",
        DeliveryMode: amqp.Persistent,
        Timestamp:    time.Now().UTC(),
        Body:         body,
    })
}

// PubSubPublisher publishes to a Google Cloud Pub/Sub topic.
type PubSubPublisher struct {
    client *pubsub.Client
    topic  *pubsub.Topic
}

// NewPubSubPublisher opens a client for projectID.  credentialsJSON may be
// empty to use application default credentials.
func NewPubSubPublisher(ctx context.Context, projectID, topic, credentialsJSON string) (*PubSubPublisher, error) {
    if projectID == "" {
        return nil, fmt.Errorf("PUBSUB_PROJECT_ID not set")
    }
    var opts []option.ClientOption
    if credentialsJSON != "" {
        opts = append(opts, option.WithCredentialsJSON([]byte(credentialsJSON)))
    }
    client, err := pubsub.NewClient(ctx, projectID, opts...)
    if err != nil {
        return nil, err
    }
    return &PubSubPublisher{client: client, topic: client.Topic(topic)}, nil
}

func (p *PubSubPublisher) PublishVisitorRegistered(ctx context.Context, ev queue.VisitorRegisteredEvent) error {
    body, err := json.Marshal(ev)
    if err != nil {
        return fmt.Errorf("marshal event: %w", err)
    }
    res := p.topic.Publish(ctx, &pubsub.Message{
        Data:       body,
        Attributes: map[string]string{"event": queue.VisitorRegisteredQueue},
    })
    _, err = res.Get(ctx)
    return err
}

// Close flushes pending messages and releases the client.
func (p *PubSubPublisher) Close() error {
    p.topic.Stop()
    return p.client.Close()
}
