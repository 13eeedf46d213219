package downloads

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-sitecms/internal/apperrors"
	"github.com/goliatone/go-sitecms/internal/crm"
	"github.com/goliatone/go-sitecms/internal/email"
	"github.com/goliatone/go-sitecms/internal/logging"
	"github.com/goliatone/go-sitecms/pkg/interfaces"
)

// CRM is the marketing automation surface used after a download.
type CRM interface {
	UpsertContact(ctx context.Context, contact crm.Contact) (int, error)
	AddToSegment(ctx context.Context, contactID, segmentID int) error
	AddToCampaign(ctx context.Context, contactID, campaignID int) error
	AddTags(ctx context.Context, contactID int, tags []string) error
	AddPoints(ctx context.Context, contactID, points int) error
}

// Mailer sends transactional email.
type Mailer interface {
	Send(ctx context.Context, msg email.Message) (string, error)
}

// Step names reported in a Result.
const (
	StepPersist  = "persist"
	StepContact  = "crm.contact"
	StepSegment  = "crm.segment"
	StepCampaign = "crm.campaign"
	StepTags     = "crm.tags"
	StepPoints   = "crm.points"
	StepEmail    = "email.requester"
	StepNotify   = "email.notify"
)

// StepStatus is the outcome of one step.
type StepStatus string

const (
	StatusOK      StepStatus = "ok"
	StatusFailed  StepStatus = "failed"
	StatusSkipped StepStatus = "skipped"
)

type Step struct {
	Name   string     `json:"name"`
	Status StepStatus `json:"status"`
	Error  string     `json:"error,omitempty"`
}

// Result reports a submission. Success follows the persistence step only.
type Result struct {
	Request *Request `json:"request"`
	Success bool     `json:"success"`
	Steps   []Step   `json:"steps"`
}

// Step returns the named step outcome.
func (r Result) Step(name string) (Step, bool) {
	for _, step := range r.Steps {
		if step.Name == name {
			return step, true
		}
	}
	return Step{}, false
}

// LinkFunc builds the download URL mailed to the requester.
type LinkFunc func(req *Request) string

// Handler processes download form submissions.
type Handler struct {
	repo          Repository
	crm           CRM
	mailer        Mailer
	link          LinkFunc
	notifyAddress string
	logger        interfaces.Logger
	now           func() time.Time
}

type HandlerOption func(*Handler)

func WithCRM(client CRM) HandlerOption {
	return func(h *Handler) { h.crm = client }
}

func WithMailer(mailer Mailer) HandlerOption {
	return func(h *Handler) { h.mailer = mailer }
}

func WithLink(link LinkFunc) HandlerOption {
	return func(h *Handler) {
		if link != nil {
			h.link = link
		}
	}
}

// WithNotifyAddress copies every submission to an internal inbox.
func WithNotifyAddress(address string) HandlerOption {
	return func(h *Handler) { h.notifyAddress = strings.TrimSpace(address) }
}

func WithLogger(logger interfaces.Logger) HandlerOption {
	return func(h *Handler) {
		if logger != nil {
			h.logger = logger
		}
	}
}

func WithClock(now func() time.Time) HandlerOption {
	return func(h *Handler) {
		if now != nil {
			h.now = now
		}
	}
}

// ErrRepositoryRequired signals a handler built without persistence.
var ErrRepositoryRequired = errors.New("downloads: repository is required")

func NewHandler(repo Repository, opts ...HandlerOption) (*Handler, error) {
	if repo == nil {
		return nil, ErrRepositoryRequired
	}
	h := &Handler{
		repo:   repo,
		link:   func(req *Request) string { return req.FileKey },
		logger: logging.NoOp(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h, nil
}

// Submit validates and stores the request, then runs the CRM and email steps.
// Only validation and the database write can fail the submission; every
// later step is logged and reported in the Result.
func (h *Handler) Submit(ctx context.Context, req Request) (*Result, error) {
	req.normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if req.CreatedAt.IsZero() {
		req.CreatedAt = h.now().UTC()
	}

	logger := logging.WithFields(h.logger, map[string]any{"file_key": req.FileKey}).WithContext(ctx)
	stored, err := h.repo.Create(ctx, &req)
	if err != nil {
		logger.Error("downloads.persist.failed", "error", err)
		return nil, apperrors.Integration("DOWNLOAD_PERSIST_FAILED", err, "downloads: store request")
	}

	result := &Result{Request: stored, Success: true, Steps: []Step{{Name: StepPersist, Status: StatusOK}}}
	result.Steps = append(result.Steps, h.syncCRM(ctx, logger, stored)...)
	result.Steps = append(result.Steps, h.sendEmails(ctx, logger, stored)...)
	logger.Info("downloads.submit.success", "request_id", stored.ID.String())
	return result, nil
}

func (h *Handler) syncCRM(ctx context.Context, logger interfaces.Logger, req *Request) []Step {
	names := []string{StepContact, StepSegment, StepCampaign, StepTags, StepPoints}
	if h.crm == nil {
		return skipped(names...)
	}

	contactID, err := h.crm.UpsertContact(ctx, crm.Contact{
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Company:   req.Company,
		Country:   req.Country,
		Phone:     req.Phone,
		Language:  req.Language,
	})
	if err != nil {
		logger.Warn("downloads.crm.contact.failed", "error", err)
		return append([]Step{failed(StepContact, err)}, skipped(names[1:]...)...)
	}
	steps := []Step{{Name: StepContact, Status: StatusOK}}

	mapping, err := h.repo.Mapping(ctx, req.FileKey)
	if err != nil {
		if !apperrors.IsNotFound(err) {
			logger.Warn("downloads.mapping.failed", "error", err)
		}
		return append(steps, skipped(names[1:]...)...)
	}

	run := func(name string, enabled bool, call func() error) {
		if !enabled {
			steps = append(steps, Step{Name: name, Status: StatusSkipped})
			return
		}
		if err := call(); err != nil {
			logger.Warn("downloads.crm.step.failed", "step", name, "error", err)
			steps = append(steps, failed(name, err))
			return
		}
		steps = append(steps, Step{Name: name, Status: StatusOK})
	}
	run(StepSegment, mapping.SegmentID > 0, func() error { return h.crm.AddToSegment(ctx, contactID, mapping.SegmentID) })
	run(StepCampaign, mapping.CampaignID > 0, func() error { return h.crm.AddToCampaign(ctx, contactID, mapping.CampaignID) })
	run(StepTags, len(mapping.Tags) > 0, func() error { return h.crm.AddTags(ctx, contactID, mapping.Tags) })
	run(StepPoints, mapping.Points != 0, func() error { return h.crm.AddPoints(ctx, contactID, mapping.Points) })
	return steps
}

func (h *Handler) sendEmails(ctx context.Context, logger interfaces.Logger, req *Request) []Step {
	if h.mailer == nil {
		return skipped(StepEmail, StepNotify)
	}
	steps := make([]Step, 0, 2)

	name := req.FileName
	if name == "" {
		name = req.FileKey
	}
	_, err := h.mailer.Send(ctx, email.Message{
		To:      []string{req.Email},
		Subject: "Your download: " + name,
		Text:    fmt.Sprintf("Hello %s,\n\nthank you for your interest. Your file is available here:\n%s\n", req.FirstName, h.link(req)),
	})
	if err != nil {
		logger.Warn("downloads.email.failed", "error", err)
		steps = append(steps, failed(StepEmail, err))
	} else {
		steps = append(steps, Step{Name: StepEmail, Status: StatusOK})
	}

	if h.notifyAddress == "" {
		return append(steps, Step{Name: StepNotify, Status: StatusSkipped})
	}
	_, err = h.mailer.Send(ctx, email.Message{
		To:      []string{h.notifyAddress},
		ReplyTo: req.Email,
		Subject: "New download request: " + name,
		Text: fmt.Sprintf("%s %s <%s>\nCompany: %s\nCountry: %s\nPhone: %s\nLanguage: %s\nFile: %s\n",
			req.FirstName, req.LastName, req.Email, req.Company, req.Country, req.Phone, req.Language, req.FileKey),
	})
	if err != nil {
		logger.Warn("downloads.notify.failed", "error", err)
		return append(steps, failed(StepNotify, err))
	}
	return append(steps, Step{Name: StepNotify, Status: StatusOK})
}

func failed(name string, err error) Step {
	return Step{Name: name, Status: StatusFailed, Error: err.Error()}
}

func skipped(names ...string) []Step {
	out := make([]Step, 0, len(names))
	for _, name := range names {
		out = append(out, Step{Name: name, Status: StatusSkipped})
	}
	return out
}
