package services

import (
	"fmt"
	"log"

	"github.com/freshwash/freshwash-api/config"
	"github.com/freshwash/freshwash-api/models"
)

// EventType identifies a lifecycle event carried on the notification channel
type EventType string

// Lifecycle events that produce customer emails
const (
	EventOrderCreated       EventType = "order.created"
	EventOrderStatusChanged EventType = "order.status_changed"
	EventContactReceived    EventType = "contact.received"
)

// Event is an outbound domain event. Lifecycle operations publish these;
// the dispatcher consumes them off the request path, so delivery failures can
// never fail or roll back the operation that emitted them.
type Event struct {
	Type      EventType
	To        string
	Name      string
	Order     *models.Order
	OldStatus string
	NewStatus string
	Contact   *models.Contact
}

// Dispatcher consumes lifecycle events from a buffered channel and turns them
// into templated emails. Failures are logged, never surfaced.
type Dispatcher struct {
	mailer      Mailer
	frontendURL string
	adminEmail  string
	events      chan Event
	done        chan struct{}
}

// NewDispatcher starts a dispatcher with its consumer goroutine running
func NewDispatcher(mailer Mailer, cfg *config.Config) *Dispatcher {
	d := &Dispatcher{
		mailer:      mailer,
		frontendURL: cfg.FrontendURL,
		adminEmail:  cfg.AdminEmail,
		events:      make(chan Event, 64),
		done:        make(chan struct{}),
	}
	go d.run()
	return d
}

// Publish enqueues an event without blocking the caller. When the queue is
// full the event is dropped and logged; notifications are best-effort.
func (d *Dispatcher) Publish(e Event) {
	select {
	case d.events <- e:
	default:
		log.Printf("Notification queue full, dropping %s event", e.Type)
	}
}

// Close drains the queue and stops the consumer
func (d *Dispatcher) Close() {
	close(d.events)
	<-d.done
}

func (d *Dispatcher) run() {
	defer close(d.done)
	for e := range d.events {
		if err := d.deliver(e); err != nil {
			log.Printf("Failed to send %s notification: %v", e.Type, err)
		}
	}
}

func (d *Dispatcher) deliver(e Event) error {
	switch e.Type {
	case EventOrderCreated:
		body, err := renderOrderConfirmation(e.Name, e.Order)
		if err != nil {
			return err
		}
		return d.mailer.Send(e.To, "Order Confirmation - FreshWash Laundry", body)

	case EventOrderStatusChanged:
		orderURL := fmt.Sprintf("%s/orders/%d", d.frontendURL, e.Order.ID)
		body, err := renderStatusUpdate(e.Name, e.Order, e.OldStatus, e.NewStatus, orderURL)
		if err != nil {
			return err
		}
		return d.mailer.Send(e.To, "Order Status Update - FreshWash Laundry", body)

	case EventContactReceived:
		body, err := renderContactAcknowledgment(e.Name, e.Contact)
		if err != nil {
			return err
		}
		if err := d.mailer.Send(e.To, "We received your message - FreshWash Laundry", body); err != nil {
			return err
		}
		if d.adminEmail != "" {
			alert, err := renderContactAdminAlert(e.Contact)
			if err != nil {
				return err
			}
			subject := fmt.Sprintf("New Contact Message: %s", e.Contact.Subject)
			return d.mailer.Send(d.adminEmail, subject, alert)
		}
		return nil
	}
	return fmt.Errorf("unknown event type %q", e.Type)
}

// The package-level dispatcher is wired in main; controllers publish through
// Notify so that in tests (where no dispatcher exists) events are simply dropped.
var defaultDispatcher *Dispatcher

// SetDispatcher installs the process-wide dispatcher
func SetDispatcher(d *Dispatcher) {
	defaultDispatcher = d
}

// Notify publishes an event to the process-wide dispatcher, if one is installed
func Notify(e Event) {
	if defaultDispatcher != nil {
		defaultDispatcher.Publish(e)
	}
}
