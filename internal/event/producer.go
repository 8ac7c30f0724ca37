package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/utafrali/addressbook/internal/domain"
	pkgkafka "github.com/utafrali/addressbook/pkg/kafka"
	"github.com/utafrali/addressbook/pkg/logger"
)

// Topics for address book domain events.
var (
	TopicIdentityRegistered = pkgkafka.Topic("identity", "registered")
	TopicAddressAdded       = pkgkafka.Topic("address", "added")
)

// Event types carried in the envelope.
const (
	TypeIdentityRegistered = "identity.registered"
	TypeAddressAdded       = "address.added"
)

// AggregateTypeIdentity keys every event by the owning identity so a
// consumer sees one identity's events in order.
const AggregateTypeIdentity = "identity"

// SourceAddressBook identifies this service as the event source.
const SourceAddressBook = "addressbook"

// IdentityRegisteredData is the payload of identity.registered.
type IdentityRegisteredData struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// AddressAddedData is the payload of address.added.
type AddressAddedData struct {
	ID          string `json:"id"`
	UserID      string `json:"user_id"`
	Category    string `json:"category"`
	FullAddress string `json:"fullAddress"`
}

// Publisher is what Producer needs from the Kafka layer.
type Publisher interface {
	Publish(ctx context.Context, topic string, event *pkgkafka.Event) error
}

// Producer publishes address book domain events.
type Producer struct {
	publisher Publisher
	logger    *slog.Logger
}

// NewProducer creates an event producer over publisher.
func NewProducer(publisher Publisher, logger *slog.Logger) *Producer {
	return &Producer{
		publisher: publisher,
		logger:    logger,
	}
}

// PublishIdentityRegistered publishes identity.registered.
func (p *Producer) PublishIdentityRegistered(ctx context.Context, identity *domain.Identity) error {
	return p.publish(ctx, TopicIdentityRegistered, TypeIdentityRegistered, identity.ID, IdentityRegisteredData{
		ID:       identity.ID,
		Username: identity.Username,
	})
}

// PublishAddressAdded publishes address.added.
func (p *Producer) PublishAddressAdded(ctx context.Context, address *domain.Address) error {
	return p.publish(ctx, TopicAddressAdded, TypeAddressAdded, address.UserID, AddressAddedData{
		ID:          address.ID,
		UserID:      address.UserID,
		Category:    address.Category,
		FullAddress: address.FullAddress,
	})
}

func (p *Producer) publish(ctx context.Context, topic, eventType, aggregateID string, data any) error {
	evt, err := pkgkafka.NewEvent(eventType, aggregateID, AggregateTypeIdentity, SourceAddressBook, data)
	if err != nil {
		return fmt.Errorf("create %s event: %w", eventType, err)
	}
	if id := logger.CorrelationIDFromContext(ctx); id != "" {
		evt.WithCorrelationID(id)
	}

	if err := p.publisher.Publish(ctx, topic, evt); err != nil {
		return fmt.Errorf("publish %s event: %w", eventType, err)
	}

	p.logger.DebugContext(ctx, "published event",
		slog.String("event_type", eventType),
		slog.String("aggregate_id", aggregateID),
	)
	return nil
}

// Noop discards every event. It is used when no brokers are configured.
type Noop struct{}

// PublishIdentityRegistered implements service.EventPublisher.
func (Noop) PublishIdentityRegistered(context.Context, *domain.Identity) error { return nil }

// PublishAddressAdded implements service.EventPublisher.
func (Noop) PublishAddressAdded(context.Context, *domain.Address) error { return nil }
