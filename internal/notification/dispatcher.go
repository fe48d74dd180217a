package notification

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/SscSPs/koperasi_backend/internal/core/domain"
	portsrepo "github.com/SscSPs/koperasi_backend/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/koperasi_backend/internal/core/ports/services"
	"github.com/SscSPs/koperasi_backend/internal/platform/metrics"
)

const sendTimeout = 15 * time.Second

// Dispatcher queues workflow events and turns them into notifications on a fixed
// pool of workers. Publish never blocks: when the queue is full the event is dropped.
type Dispatcher struct {
	users    portsrepo.UserReader
	notifier Notifier
	metrics  *metrics.Metrics
	logger   *slog.Logger
	workers  int

	mu     sync.RWMutex
	queue  chan domain.WorkflowEvent
	closed bool
	wg     sync.WaitGroup
}

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithWorkers sets the number of delivery goroutines.
func WithWorkers(n int) DispatcherOption {
	return func(d *Dispatcher) {
		if n > 0 {
			d.workers = n
		}
	}
}

// WithDispatcherMetrics counts deliveries and drops.
func WithDispatcherMetrics(m *metrics.Metrics) DispatcherOption {
	return func(d *Dispatcher) {
		d.metrics = m
	}
}

// WithLogger sets the logger used by workers.
func WithLogger(l *slog.Logger) DispatcherOption {
	return func(d *Dispatcher) {
		if l != nil {
			d.logger = l
		}
	}
}

// NewDispatcher creates a dispatcher with room for queueSize pending events. Call Start before publishing.
func NewDispatcher(users portsrepo.UserReader, notifier Notifier, queueSize int, options ...DispatcherOption) *Dispatcher {
	if queueSize <= 0 {
		queueSize = 1
	}
	d := &Dispatcher{
		users:    users,
		notifier: notifier,
		logger:   slog.Default(),
		workers:  1,
		queue:    make(chan domain.WorkflowEvent, queueSize),
	}
	for _, option := range options {
		option(d)
	}
	return d
}

var _ portssvc.EventPublisher = (*Dispatcher)(nil)

// Start launches the workers. They stop once Close has been called and the queue is drained.
func (d *Dispatcher) Start(ctx context.Context) {
	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)
		go func() {
			defer d.wg.Done()
			for evt := range d.queue {
				d.handle(ctx, evt)
			}
		}()
	}
}

// Publish enqueues events without waiting. Events published after Close are ignored.
func (d *Dispatcher) Publish(_ context.Context, events ...domain.WorkflowEvent) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return
	}
	for _, evt := range events {
		select {
		case d.queue <- evt:
		default:
			d.metrics.EventDropped()
			d.logger.Warn("Notification queue full, dropping event",
				slog.String("kind", string(evt.Kind)),
				slog.String("instance_id", evt.InstanceID))
		}
	}
}

// Close stops accepting events and waits for queued ones to be delivered.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	close(d.queue)
	d.mu.Unlock()
	d.wg.Wait()
}

type recipient struct {
	user     domain.User
	audience Audience
}

func (d *Dispatcher) handle(ctx context.Context, evt domain.WorkflowEvent) {
	recipients, err := d.recipients(ctx, evt)
	if err != nil {
		d.logger.Error("Failed to resolve notification recipients",
			slog.String("error", err.Error()),
			slog.String("kind", string(evt.Kind)),
			slog.String("instance_id", evt.InstanceID))
		return
	}

	for _, r := range recipients {
		subject, body, err := Render(evt.Kind, r.audience, templateData(evt, r.user))
		if err != nil {
			d.logger.Error("Failed to render notification", slog.String("error", err.Error()), slog.String("kind", string(evt.Kind)))
			continue
		}

		sendCtx, cancel := context.WithTimeout(ctx, sendTimeout)
		err = d.notifier.Send(sendCtx, Message{To: r.user.Email, Kind: evt.Kind, Subject: subject, Body: body})
		cancel()

		d.metrics.NotificationSent(string(evt.Kind), err)
		if err != nil {
			d.logger.Warn("Notification delivery failed",
				slog.String("error", err.Error()),
				slog.String("kind", string(evt.Kind)),
				slog.String("instance_id", evt.InstanceID),
				slog.String("user_id", r.user.UserID))
		}
	}
}

// recipients resolves who hears about evt. Role holders of the affected step learn about
// submissions, advances and cancellations; the owner learns the outcome, and on completion
// so do the workflow's interested roles. The actor is never notified of their own action.
func (d *Dispatcher) recipients(ctx context.Context, evt domain.WorkflowEvent) ([]recipient, error) {
	def, ok := domain.LookupDefinition(evt.Type)
	if !ok {
		return nil, domain.ErrUnknownWorkflow
	}

	var out []recipient
	seen := map[string]bool{evt.ActorID: true}
	addRole := func(role domain.Role, audience Audience) error {
		users, err := d.users.FindUsersByRole(ctx, role)
		if err != nil {
			return err
		}
		for _, u := range users {
			if seen[u.UserID] || u.Email == "" {
				continue
			}
			seen[u.UserID] = true
			out = append(out, recipient{user: u, audience: audience})
		}
		return nil
	}
	addOwner := func() error {
		if seen[evt.OwnerID] {
			return nil
		}
		owner, err := d.users.FindUserByID(ctx, evt.OwnerID)
		if err != nil {
			return err
		}
		seen[owner.UserID] = true
		out = append(out, recipient{user: *owner, audience: AudienceOwner})
		return nil
	}

	switch evt.Kind {
	case domain.EventSubmitted, domain.EventStepAdvanced, domain.EventCancelled:
		if evt.Step == nil {
			return nil, nil
		}
		role, ok := def.RoleFor(*evt.Step)
		if !ok {
			return nil, nil
		}
		if err := addRole(role, AudienceApprover); err != nil {
			return nil, err
		}
	case domain.EventRejected:
		if err := addOwner(); err != nil {
			return nil, err
		}
	case domain.EventCompleted:
		if err := addOwner(); err != nil {
			return nil, err
		}
		for _, role := range def.InterestedRoles {
			if err := addRole(role, AudienceApprover); err != nil {
				return nil, err
			}
		}
	}
	return out, nil
}

func templateData(evt domain.WorkflowEvent, to domain.User) TemplateData {
	data := TemplateData{
		RecipientName: to.Name,
		Workflow:      WorkflowLabel(evt.Type),
		HumanNumber:   evt.HumanNumber,
		Step:          stepLabel(evt.Step),
		Status:        string(evt.Status),
	}
	if data.RecipientName == "" {
		data.RecipientName = to.Email
	}
	if evt.Notes != nil {
		data.Notes = *evt.Notes
	}
	return data
}
