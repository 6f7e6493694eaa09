package contact

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Guard rejections. None of them issue a request.
var (
	ErrDialogClosed   = errors.New("contact dialog is not open")
	ErrSubmitInFlight = errors.New("a submission is already in flight")
	ErrIncomplete     = errors.New("name, email, inquiry type and message are required")
)

// DefaultTimeout bounds one relay call.
const DefaultTimeout = 10 * time.Second

// DialogState is where the contact dialog is in its lifecycle.
type DialogState int

const (
	Closed DialogState = iota
	Open
	Submitting
)

func (s DialogState) String() string {
	switch s {
	case Closed:
		return "closed"
	case Open:
		return "open"
	case Submitting:
		return "submitting"
	}
	return "unknown"
}

// CancelPolicy decides what Cancel does with the fields.
type CancelPolicy int

const (
	// KeepOnCancel leaves the fields so reopening the dialog restores them.
	KeepOnCancel CancelPolicy = iota
	// ClearOnCancel empties the form when the dialog is dismissed.
	ClearOnCancel
)

// ParseCancelPolicy accepts "keep" or "clear".
func ParseCancelPolicy(s string) (CancelPolicy, error) {
	switch s {
	case "", "keep":
		return KeepOnCancel, nil
	case "clear":
		return ClearOnCancel, nil
	}
	return KeepOnCancel, errors.New("cancel policy must be keep or clear")
}

// NoticeKind tells the presentation layer how to style a Notice.
type NoticeKind string

const (
	NoticeSuccess NoticeKind = "success"
	NoticeFailure NoticeKind = "failure"
)

const (
	successMessage = "Thank you! Your message has been sent successfully."
	failureMessage = "Sorry, there was an error sending your message. Please try again."
)

// Notice is the acknowledgment shown after a submission.
type Notice struct {
	Kind    NoticeKind
	Message string
}

// Controller owns one visitor's inquiry form and dialog.
type Controller struct {
	relay   Relay
	logger  *zap.Logger
	timeout time.Duration
	cancel  CancelPolicy

	mu    sync.Mutex
	form  Inquiry
	state DialogState
}

// ControllerOption configures a Controller.
type ControllerOption func(*Controller)

// WithTimeout bounds each relay call. Non-positive values keep the default.
func WithTimeout(d time.Duration) ControllerOption {
	return func(c *Controller) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithCancelPolicy sets what Cancel does with the fields.
func WithCancelPolicy(p CancelPolicy) ControllerOption {
	return func(c *Controller) { c.cancel = p }
}

// NewController returns a controller with an empty form and a closed dialog.
func NewController(relay Relay, logger *zap.Logger, opts ...ControllerOption) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Controller{relay: relay, logger: logger, timeout: DefaultTimeout}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State returns the dialog state.
func (c *Controller) State() DialogState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Form returns the current form snapshot.
func (c *Controller) Form() Inquiry {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.form
}

// Open shows the dialog. It is a no-op while a submission is in flight.
func (c *Controller) Open() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == Closed {
		c.state = Open
	}
}

// Cancel dismisses the dialog. An in-flight submission still completes and
// decides the final state.
func (c *Controller) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != Open {
		return
	}
	c.state = Closed
	if c.cancel == ClearOnCancel {
		c.form = Inquiry{}
	}
}

// SetField replaces one field of the form.
func (c *Controller) SetField(field Field, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	next, err := c.form.With(field, value)
	if err != nil {
		return err
	}
	c.form = next
	return nil
}

// CanSubmit reports whether every required field is filled in.
func (c *Controller) CanSubmit() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.form.Complete()
}

// SubmitEnabled is CanSubmit for an open dialog; the submit control stays
// disabled while a submission is in flight.
func (c *Controller) SubmitEnabled() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state == Open && c.form.Complete()
}

// Submit sends the current form to the relay exactly once. Guard failures are
// returned as errors and send nothing. A delivery failure is logged and
// reported through the returned Notice with the form left intact.
func (c *Controller) Submit(ctx context.Context) (Notice, error) {
	return c.SubmitWith(ctx, nil)
}

// SubmitWith applies fields to an open dialog and then submits. When the
// dialog is closed or a submission is in flight the fields are discarded.
func (c *Controller) SubmitWith(ctx context.Context, fields map[Field]string) (Notice, error) {
	c.mu.Lock()
	switch c.state {
	case Submitting:
		c.mu.Unlock()
		return Notice{}, ErrSubmitInFlight
	case Closed:
		c.mu.Unlock()
		return Notice{}, ErrDialogClosed
	}

	form := c.form
	for _, f := range Fields {
		v, ok := fields[f]
		if !ok {
			continue
		}
		next, err := form.With(f, v)
		if err != nil {
			c.mu.Unlock()
			return Notice{}, err
		}
		form = next
	}
	c.form = form
	if !form.Complete() {
		c.mu.Unlock()
		return Notice{}, ErrIncomplete
	}
	snapshot := form
	c.state = Submitting
	c.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	err := c.relay.Deliver(ctx, snapshot.Payload())

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.state = Open
		fields := []zap.Field{
			zap.String("inquiry_type", string(snapshot.InquiryType)),
			zap.Error(err),
		}
		var se *StatusError
		if errors.As(err, &se) {
			fields = append(fields, zap.Int("status", se.StatusCode))
		}
		c.logger.Error("Error sending form", fields...)
		return Notice{Kind: NoticeFailure, Message: failureMessage}, nil
	}

	c.form = Inquiry{}
	c.state = Closed
	c.logger.Info("Inquiry delivered", zap.String("inquiry_type", string(snapshot.InquiryType)))
	return Notice{Kind: NoticeSuccess, Message: successMessage}, nil
}
