package billing_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Magneteek/SmileLAB-sub002/internal/application/billing"
	"github.com/Magneteek/SmileLAB-sub002/internal/application/dto"
	"github.com/Magneteek/SmileLAB-sub002/internal/domain"
	"github.com/Magneteek/SmileLAB-sub002/internal/domain/entity"
	"github.com/Magneteek/SmileLAB-sub002/internal/domain/repository"
	"github.com/Magneteek/SmileLAB-sub002/internal/infrastructure/memory"
)

func TestSend_FirstSuccessMovesToSent(t *testing.T) {
	f := newFixture()
	inv := f.readyInvoice(t, "ozolins@example.com")
	sender := &stubSender{}
	send := f.sendWith(sender, stubArtifactsFor(inv))

	resp, err := send.Send(ctx, office, inv.ID, dto.SendInvoiceRequest{})
	require.NoError(t, err)

	assert.Equal(t, entity.EmailStatusSent, resp.Status)
	assert.Equal(t, "ozolins@example.com", resp.Recipient, "the dentist's address is the default")
	assert.Equal(t, "Invoice "+inv.Number, resp.Subject)

	require.Len(t, sender.sent, 1)
	mail := sender.sent[0]
	assert.Equal(t, inv.Number+".pdf", mail.AttachmentName)
	assert.Equal(t, []byte("%PDF-fake"), mail.Attachment)

	stored, err := f.store.Invoices().GetByID(ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.PaymentStatusSent, stored.PaymentStatus)

	entries, err := f.store.Audit().List(ctx, repository.AuditFilter{Action: entity.AuditActionInvoiceSent})
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestSend_ResendIsLoggedButStatusStays(t *testing.T) {
	f := newFixture()
	inv := f.readyInvoice(t, "ozolins@example.com")
	send := f.sendWith(&stubSender{}, stubArtifactsFor(inv))

	_, err := send.Send(ctx, office, inv.ID, dto.SendInvoiceRequest{})
	require.NoError(t, err)
	_, err = send.Send(ctx, office, inv.ID, dto.SendInvoiceRequest{})
	require.NoError(t, err, "resending a mislaid invoice is routine")

	stored, err := f.store.Invoices().GetByID(ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.PaymentStatusSent, stored.PaymentStatus)

	history, err := send.History(ctx, inv.ID)
	require.NoError(t, err)
	assert.Len(t, history, 2, "every attempt lands in the log")
}

func TestSend_ExplicitRecipientWins(t *testing.T) {
	f := newFixture()
	inv := f.readyInvoice(t, "ozolins@example.com")
	sender := &stubSender{}
	send := f.sendWith(sender, stubArtifactsFor(inv))

	resp, err := send.Send(ctx, office, inv.ID, dto.SendInvoiceRequest{Recipient: "billing@practice.example"})
	require.NoError(t, err)

	assert.Equal(t, "billing@practice.example", resp.Recipient)
	require.Len(t, sender.sent, 1)
	assert.Equal(t, "billing@practice.example", sender.sent[0].To)
}

func TestSend_FailureIsLoggedAndReturned(t *testing.T) {
	f := newFixture()
	inv := f.readyInvoice(t, "ozolins@example.com")
	send := f.sendWith(&stubSender{err: errors.New("smtp 550 mailbox unavailable")}, stubArtifactsFor(inv))

	_, err := send.Send(ctx, office, inv.ID, dto.SendInvoiceRequest{})
	require.Error(t, err)
	assert.ErrorContains(t, err, "smtp 550")

	history, err := send.History(ctx, inv.ID)
	require.NoError(t, err)
	require.Len(t, history, 1, "failures are logged too")
	assert.Equal(t, entity.EmailStatusFailed, history[0].Status)
	assert.Contains(t, history[0].Error, "smtp 550")

	stored, err := f.store.Invoices().GetByID(ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.PaymentStatusFinalized, stored.PaymentStatus, "a failed send moves nothing")
}

func TestSend_DraftRefused(t *testing.T) {
	f := newFixture()
	d := f.seedDentist(t, "ozolins@example.com")
	draft := f.draftFor(t, d.ID)
	send := f.sendWith(&stubSender{}, &stubArtifacts{})

	_, err := send.Send(ctx, office, draft.ID, dto.SendInvoiceRequest{})
	require.Error(t, err, "drafts have no number and no PDF")
	assert.ErrorIs(t, err, domain.ErrValidationFailed)
}

func TestSend_SettledInvoiceRefused(t *testing.T) {
	f := newFixture()
	inv := f.readyInvoice(t, "ozolins@example.com")
	_, err := f.finalize.MarkPaid(ctx, office, inv.ID)
	require.NoError(t, err)
	send := f.sendWith(&stubSender{}, stubArtifactsFor(inv))

	_, err = send.Send(ctx, office, inv.ID, dto.SendInvoiceRequest{})
	require.Error(t, err, "dunning a paid invoice annoys customers")
	assert.ErrorIs(t, err, domain.ErrValidationFailed)
}

func TestSend_NeedsARenderedPDF(t *testing.T) {
	f := newFixture()
	inv := f.readyInvoice(t, "ozolins@example.com")
	inv.PDFPath = ""
	require.NoError(t, f.store.Invoices().Update(ctx, inv))
	send := f.sendWith(&stubSender{}, &stubArtifacts{})

	_, err := send.Send(ctx, office, inv.ID, dto.SendInvoiceRequest{})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrValidationFailed)
}

func TestSend_NoTransportConfigured(t *testing.T) {
	f := newFixture()
	inv := f.readyInvoice(t, "ozolins@example.com")
	send := f.sendWith(nil, stubArtifactsFor(inv))

	_, err := send.Send(ctx, office, inv.ID, dto.SendInvoiceRequest{})
	require.Error(t, err)
	assert.ErrorContains(t, err, "email transport is not configured")
}

func TestSend_NoRecipientAnywhere(t *testing.T) {
	f := newFixture()
	inv := f.readyInvoice(t, "")
	send := f.sendWith(&stubSender{}, stubArtifactsFor(inv))

	_, err := send.Send(ctx, office, inv.ID, dto.SendInvoiceRequest{})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// ── test doubles ──────────────────────────────────────────────────────────────

type stubSender struct {
	sent []billing.OutboundEmail
	err  error
}

func (s *stubSender) Send(ctx context.Context, mail billing.OutboundEmail) error {
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, mail)
	return nil
}

type stubArtifacts struct {
	blobs map[string][]byte
}

func (s *stubArtifacts) Get(ctx context.Context, key string) ([]byte, error) {
	b, ok := s.blobs[key]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return b, nil
}

func (s *stubArtifacts) Delete(ctx context.Context, key string) error {
	delete(s.blobs, key)
	return nil
}

// stubArtifactsFor serves a fake PDF under the invoice's stored path.
func stubArtifactsFor(inv *entity.Invoice) *stubArtifacts {
	return &stubArtifacts{blobs: map[string][]byte{inv.PDFPath: []byte("%PDF-fake")}}
}

func (f *fixture) sendWith(sender billing.EmailSender, artifacts billing.ArtifactStore) *billing.SendUseCase {
	return billing.NewSendUseCase(
		memory.NewBillingTxRunner(f.store),
		f.store.Invoices(),
		f.store.Dentists(),
		f.store.EmailLogs(),
		sender,
		artifacts,
	)
}

// readyInvoice drives an invoice to FINALIZED with a rendered PDF on record.
func (f *fixture) readyInvoice(t *testing.T, email string) *entity.Invoice {
	t.Helper()
	d := f.seedDentist(t, email)
	draft := f.draftFor(t, d.ID)
	_, err := f.finalize.Finalize(ctx, office, draft.ID)
	require.NoError(t, err)

	inv, err := f.store.Invoices().GetByID(ctx, draft.ID)
	require.NoError(t, err)
	inv.PDFPath = "invoices/" + inv.Number + ".pdf"
	require.NoError(t, f.store.Invoices().Update(ctx, inv))
	return inv
}
