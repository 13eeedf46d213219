package downloads

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/goliatone/go-sitecms/internal/apperrors"
	"github.com/goliatone/go-sitecms/internal/crm"
	"github.com/goliatone/go-sitecms/internal/email"
)

type fakeCRM struct {
	calls      []string
	contactErr error
	failStep   string
}

func (f *fakeCRM) UpsertContact(_ context.Context, contact crm.Contact) (int, error) {
	f.calls = append(f.calls, "contact:"+contact.Email)
	if f.contactErr != nil {
		return 0, f.contactErr
	}
	return 7, nil
}

func (f *fakeCRM) step(name string) error {
	f.calls = append(f.calls, name)
	if f.failStep == name {
		return apperrors.Integration("CRM_REQUEST_FAILED", errors.New("boom"), "crm: %s", name)
	}
	return nil
}

func (f *fakeCRM) AddToSegment(context.Context, int, int) error  { return f.step(StepSegment) }
func (f *fakeCRM) AddToCampaign(context.Context, int, int) error { return f.step(StepCampaign) }
func (f *fakeCRM) AddTags(context.Context, int, []string) error  { return f.step(StepTags) }
func (f *fakeCRM) AddPoints(context.Context, int, int) error     { return f.step(StepPoints) }

type fakeMailer struct {
	sent []email.Message
	err  error
}

func (f *fakeMailer) Send(_ context.Context, msg email.Message) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.sent = append(f.sent, msg)
	return "id", nil
}

func validRequest() Request {
	return Request{
		FirstName: " Ada ",
		LastName:  "Lovelace",
		Email:     "Ada@Example.com",
		Company:   "Analytical Engines",
		FileKey:   "datasheets/te42.pdf",
		Language:  "de",
		Consent:   true,
	}
}

func seededRepo(t *testing.T) *MemoryRepository {
	t.Helper()
	repo := NewMemoryRepository()
	_, err := repo.SaveMapping(context.Background(), &FileSegmentMapping{
		FileKey: "datasheets/te42.pdf", SegmentID: 3, CampaignID: 9, Tags: []string{"te42"}, Points: 10,
	})
	if err != nil {
		t.Fatalf("seed mapping: %v", err)
	}
	return repo
}

func statusOf(t *testing.T, res *Result, name string) StepStatus {
	t.Helper()
	step, ok := res.Step(name)
	if !ok {
		t.Fatalf("step %s missing from %+v", name, res.Steps)
	}
	return step.Status
}

func TestSubmitRunsEveryStep(t *testing.T) {
	repo := seededRepo(t)
	client := &fakeCRM{}
	mailer := &fakeMailer{}
	h, err := NewHandler(repo, WithCRM(client), WithMailer(mailer), WithNotifyAddress("sales@example.com"),
		WithLink(func(r *Request) string { return "https://files.example.com/" + r.FileKey }),
		WithClock(func() time.Time { return time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC) }))
	if err != nil {
		t.Fatalf("new handler: %v", err)
	}

	res, err := h.Submit(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if !res.Success || res.Request.Email != "ada@example.com" || res.Request.FirstName != "Ada" {
		t.Fatalf("unexpected result %+v", res.Request)
	}
	for _, name := range []string{StepPersist, StepContact, StepSegment, StepCampaign, StepTags, StepPoints, StepEmail, StepNotify} {
		if got := statusOf(t, res, name); got != StatusOK {
			t.Fatalf("step %s = %s", name, got)
		}
	}
	if len(mailer.sent) != 2 || mailer.sent[1].ReplyTo != "ada@example.com" {
		t.Fatalf("unexpected mails %+v", mailer.sent)
	}
	stored, _ := repo.List(context.Background(), 0)
	if len(stored) != 1 {
		t.Fatalf("expected one stored request, got %d", len(stored))
	}
}

func TestSubmitToleratesPartialCRMFailure(t *testing.T) {
	client := &fakeCRM{failStep: StepCampaign}
	h, _ := NewHandler(seededRepo(t), WithCRM(client), WithMailer(&fakeMailer{}))

	res, err := h.Submit(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if !res.Success {
		t.Fatalf("partial crm failure must not fail the submission")
	}
	if statusOf(t, res, StepCampaign) != StatusFailed {
		t.Fatalf("campaign step should fail")
	}
	if statusOf(t, res, StepTags) != StatusOK || statusOf(t, res, StepPoints) != StatusOK {
		t.Fatalf("steps after a failure should still run: %+v", res.Steps)
	}
	if statusOf(t, res, StepNotify) != StatusSkipped {
		t.Fatalf("notify without address should be skipped")
	}
}

func TestSubmitSkipsCRMListsWhenContactFails(t *testing.T) {
	client := &fakeCRM{contactErr: errors.New("crm down")}
	mailer := &fakeMailer{err: errors.New("smtp down")}
	h, _ := NewHandler(seededRepo(t), WithCRM(client), WithMailer(mailer))

	res, err := h.Submit(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if statusOf(t, res, StepContact) != StatusFailed || statusOf(t, res, StepSegment) != StatusSkipped {
		t.Fatalf("unexpected crm steps %+v", res.Steps)
	}
	if len(client.calls) != 1 {
		t.Fatalf("expected only the contact call, got %v", client.calls)
	}
	if statusOf(t, res, StepEmail) != StatusFailed || !res.Success {
		t.Fatalf("email failure is best-effort: %+v", res)
	}
}

func TestSubmitWithoutMappingSkipsLists(t *testing.T) {
	client := &fakeCRM{}
	h, _ := NewHandler(NewMemoryRepository(), WithCRM(client))
	res, err := h.Submit(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if statusOf(t, res, StepContact) != StatusOK || statusOf(t, res, StepTags) != StatusSkipped {
		t.Fatalf("unexpected steps %+v", res.Steps)
	}
}

func TestSubmitPersistenceFailureIsFatal(t *testing.T) {
	repo := seededRepo(t)
	repo.FailCreate = errors.New("db down")
	client := &fakeCRM{}
	h, _ := NewHandler(repo, WithCRM(client))

	_, err := h.Submit(context.Background(), validRequest())
	if !apperrors.IsIntegration(err) {
		t.Fatalf("expected integration error, got %v", err)
	}
	if len(client.calls) != 0 {
		t.Fatalf("crm must not be called when persistence fails")
	}
}

func TestSubmitValidation(t *testing.T) {
	cases := map[string]func(*Request){
		"missing email":   func(r *Request) { r.Email = "" },
		"bad email":       func(r *Request) { r.Email = "not-an-email" },
		"no consent":      func(r *Request) { r.Consent = false },
		"missing file":    func(r *Request) { r.FileKey = " " },
		"bad language":    func(r *Request) { r.Language = "fr" },
		"bad phone":       func(r *Request) { r.Phone = "call me" },
		"missing surname": func(r *Request) { r.LastName = "" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			repo := NewMemoryRepository()
			h, _ := NewHandler(repo)
			req := validRequest()
			mutate(&req)
			if _, err := h.Submit(context.Background(), req); !apperrors.IsValidation(err) {
				t.Fatalf("expected validation error, got %v", err)
			}
			if stored, _ := repo.List(context.Background(), 0); len(stored) != 0 {
				t.Fatalf("invalid form must not be stored")
			}
		})
	}
}
