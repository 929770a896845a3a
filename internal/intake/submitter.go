package intake

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/onyxandcode/onyx-site/internal/leads"
	"github.com/onyxandcode/onyx-site/internal/notify"
	"github.com/onyxandcode/onyx-site/internal/sidechannel"
	"github.com/onyxandcode/onyx-site/pkg/logging"
)

var submitTracer = otel.Tracer("onyx.internal.intake")

// SuccessPath is where the visitor lands once the lead is stored.
const SuccessPath = "/success"

// Side-channel task names, also used as metric labels.
const (
	TaskNotify     = "notify"
	TaskAttachment = "attachment_archive"
)

// Submission outcomes recorded in metrics.
const (
	OutcomePersisted          = "persisted"
	OutcomePersistenceFailure = "persistence_failure"
	OutcomeInvalid            = "invalid"
)

// Form is one contact form submission as received.
type Form struct {
	Name       string
	Email      string
	Message    string
	Attachment *notify.Attachment
}

// Result describes a submission whose durable write succeeded.
type Result struct {
	LeadID   string
	Redirect string
}

// LeadCreator is the durable store for leads.
type LeadCreator interface {
	Create(ctx context.Context, req *leads.CreateLeadRequest) (*leads.Lead, error)
}

// AttachmentStore archives uploads.
type AttachmentStore interface {
	Enabled() bool
	Put(ctx context.Context, leadID, filename, contentType string, data []byte) (string, error)
}

// Dispatcher runs best-effort work.
type Dispatcher interface {
	Go(ctx context.Context, name string, task sidechannel.Task)
}

// Recorder counts submission outcomes.
type Recorder interface {
	ObserveLeadSubmission(outcome string)
}

// Submitter stores a lead, then hands notification to the side-channel dispatcher.
// Only the store result decides what the visitor sees.
type Submitter struct {
	leads       LeadCreator
	notifier    notify.Notifier
	attachments AttachmentStore
	dispatch    Dispatcher
	recorder    Recorder
	logger      *logging.Logger
}

// SubmitterConfig wires a Submitter. Notifier, Attachments and Recorder are optional.
type SubmitterConfig struct {
	Leads       LeadCreator
	Notifier    notify.Notifier
	Attachments AttachmentStore
	Dispatcher  Dispatcher
	Recorder    Recorder
	Logger      *logging.Logger
}

// NewSubmitter builds a Submitter. A nil dispatcher runs side channels inline.
func NewSubmitter(cfg SubmitterConfig) *Submitter {
	if cfg.Leads == nil {
		panic("intake: lead store required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	dispatch := cfg.Dispatcher
	if dispatch == nil {
		dispatch = sidechannel.NewDispatcher(logger, sidechannel.WithInline(true))
	}
	return &Submitter{
		leads:       cfg.Leads,
		notifier:    cfg.Notifier,
		attachments: cfg.Attachments,
		dispatch:    dispatch,
		recorder:    cfg.Recorder,
		logger:      logger,
	}
}

// Submit runs one submission. Concurrent calls are independent: there is no
// deduplication, so two calls with the same form create two leads.
func (s *Submitter) Submit(ctx context.Context, form Form) (*Result, error) {
	ctx, span := submitTracer.Start(ctx, "intake.submit")
	defer span.End()
	span.SetAttributes(attribute.Bool("has_attachment", form.Attachment != nil))

	req := &leads.CreateLeadRequest{
		Name:    form.Name,
		Email:   form.Email,
		Message: form.Message,
	}
	if err := req.Validate(); err != nil {
		s.observe(OutcomeInvalid)
		return nil, fmt.Errorf("%w: %w", ErrInvalidForm, err)
	}

	lead, err := s.leads.Create(ctx, req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "persist lead")
		s.observe(OutcomePersistenceFailure)
		s.logger.Error("lead persistence failed", "error", err)
		return nil, &PersistenceFailure{Err: err}
	}
	s.observe(OutcomePersisted)
	span.SetAttributes(attribute.String("lead_id", lead.ID))
	s.logger.Info("lead stored", "lead_id", lead.ID)

	sub := notify.Submission{
		LeadID:     lead.ID,
		Name:       form.Name,
		Email:      form.Email,
		Message:    form.Message,
		Attachment: form.Attachment,
	}
	if s.notifier != nil {
		notifier := s.notifier
		s.dispatch.Go(ctx, TaskNotify, func(taskCtx context.Context) error {
			if err := notifier.Notify(taskCtx, sub); err != nil {
				return &NotificationFailure{Channel: TaskNotify, LeadID: sub.LeadID, Err: err}
			}
			return nil
		})
	}
	if form.Attachment != nil && s.attachments != nil && s.attachments.Enabled() {
		store := s.attachments
		att := form.Attachment
		s.dispatch.Go(ctx, TaskAttachment, func(taskCtx context.Context) error {
			if _, err := store.Put(taskCtx, sub.LeadID, att.Filename, att.ContentType, att.Data); err != nil {
				return &NotificationFailure{Channel: TaskAttachment, LeadID: sub.LeadID, Err: err}
			}
			return nil
		})
	}

	return &Result{LeadID: lead.ID, Redirect: SuccessPath}, nil
}

func (s *Submitter) observe(outcome string) {
	if s.recorder != nil {
		s.recorder.ObserveLeadSubmission(outcome)
	}
}
