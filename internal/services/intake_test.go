package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	apperrors "github.com/welldanyogia/webrana-catchmail/internal/errors"
	"github.com/welldanyogia/webrana-catchmail/internal/models"
	"github.com/welldanyogia/webrana-catchmail/internal/repository"
	"github.com/welldanyogia/webrana-catchmail/tests/mocks"
	"github.com/welldanyogia/webrana-catchmail/tests/testutil"
)

const rawMessage = "From: Alice <alice@example.org>\r\n" +
	"To: inbox@example.com\r\n" +
	"Subject: Welcome\r\n" +
	"Content-Type: text/plain; charset=utf-8\r\n" +
	"\r\n" +
	"Hello there\r\n"

// recordingNotifier captures notified emails
type recordingNotifier struct {
	mu     sync.Mutex
	emails []*models.Email
}

func (n *recordingNotifier) NotifyNewEmail(email *models.Email) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.emails = append(n.emails, email)
}

func newIntake(t *testing.T, sweeper Sweeper, notifier Notifier) (*IntakeService, repository.EmailRepository) {
	t.Helper()
	db := testutil.NewSQLiteDB(t)
	repo := repository.NewEmailRepository(db)
	svc := NewIntakeService(repo, sweeper, notifier, IntakeConfig{
		TargetEmail: testutil.TargetEmail,
		Now:         fixedClock(sweepNow),
	})
	return svc, repo
}

func TestIntakeService_Accepts(t *testing.T) {
	svc, _ := newIntake(t, nil, nil)

	assert.True(t, svc.Accepts("inbox@example.com"))
	assert.True(t, svc.Accepts("  inbox@example.com "))
	assert.True(t, svc.Accepts("<inbox@example.com>"))
	assert.False(t, svc.Accepts("Inbox@example.com"))
	assert.False(t, svc.Accepts("other@example.com"))
	assert.False(t, svc.Accepts(""))
}

func TestIntakeService_Receive_Stores(t *testing.T) {
	notifier := &recordingNotifier{}
	sweeper := &countingSweeper{result: SweepResult{Success: true}}
	svc, repo := newIntake(t, sweeper, notifier)

	email, err := svc.Receive(context.Background(), Envelope{
		To:   testutil.TargetEmail,
		From: "bounce@example.org",
		Raw:  strings.NewReader(rawMessage),
	})

	require.NoError(t, err)
	assert.Equal(t, StatusAccepted, StatusFor(err))
	assert.NotZero(t, email.ID)
	assert.Equal(t, testutil.TargetEmail, email.Recipient)
	assert.Equal(t, "alice@example.org", email.Sender)
	assert.Equal(t, "Welcome", email.Subject)
	assert.Contains(t, email.Body, "Hello there")
	assert.Equal(t, "2026-03-01T12:00:00.000Z", email.ReceivedAt)

	stored, err := repo.GetByID(context.Background(), testutil.TargetEmail, email.ID)
	require.NoError(t, err)
	assert.Equal(t, "Welcome", stored.Subject)

	assert.Len(t, notifier.emails, 1)
	assert.Equal(t, 1, sweeper.callCount())
}

func TestIntakeService_Receive_SenderFallsBackToEnvelope(t *testing.T) {
	svc, _ := newIntake(t, nil, nil)

	email, err := svc.Receive(context.Background(), Envelope{
		To:   testutil.TargetEmail,
		From: "<envelope@example.org>",
		Raw:  strings.NewReader("Subject: no from\r\n\r\nbody\r\n"),
	})

	require.NoError(t, err)
	assert.Equal(t, "envelope@example.org", email.Sender)
}

func TestIntakeService_Receive_UnparseableFromUsesEnvelope(t *testing.T) {
	svc, _ := newIntake(t, nil, nil)

	email, err := svc.Receive(context.Background(), Envelope{
		To:   testutil.TargetEmail,
		From: "envelope@example.org",
		Raw:  strings.NewReader("From: undisclosed sender\r\nSubject: odd from\r\n\r\nbody\r\n"),
	})

	require.NoError(t, err)
	assert.Equal(t, "envelope@example.org", email.Sender)
}

func TestIntakeService_Receive_RejectsForeignRecipient(t *testing.T) {
	notifier := &recordingNotifier{}
	sweeper := &countingSweeper{}
	svc, repo := newIntake(t, sweeper, notifier)

	email, err := svc.Receive(context.Background(), Envelope{
		To:  "someone@example.com",
		Raw: strings.NewReader(rawMessage),
	})

	assert.Nil(t, email)
	assert.ErrorIs(t, err, ErrRejected)
	assert.True(t, apperrors.IsRejected(err))
	assert.Equal(t, StatusRejected, StatusFor(err))

	all, listErr := repo.ListByRecipient(context.Background(), "someone@example.com")
	require.NoError(t, listErr)
	assert.Empty(t, all)
	assert.Empty(t, notifier.emails)
	assert.Equal(t, 0, sweeper.callCount())
}

func TestIntakeService_Receive_ParseFailure(t *testing.T) {
	sweeper := &countingSweeper{}
	svc, repo := newIntake(t, sweeper, nil)

	_, err := svc.Receive(context.Background(), Envelope{
		To:  testutil.TargetEmail,
		Raw: strings.NewReader("   "),
	})

	assert.ErrorIs(t, err, ErrParse)
	assert.Equal(t, StatusFailed, StatusFor(err))

	all, listErr := repo.ListByRecipient(context.Background(), testutil.TargetEmail)
	require.NoError(t, listErr)
	assert.Empty(t, all)
	assert.Equal(t, 0, sweeper.callCount())
}

func TestIntakeService_Receive_NilBody(t *testing.T) {
	svc, _ := newIntake(t, nil, nil)

	_, err := svc.Receive(context.Background(), Envelope{To: testutil.TargetEmail})

	assert.ErrorIs(t, err, ErrParse)
}

func TestIntakeService_Receive_StoreFailure(t *testing.T) {
	repo := new(mocks.MockEmailRepository)
	repo.On("Create", mock.Anything, mock.AnythingOfType("*models.Email")).Return(errors.New("disk full"))
	notifier := &recordingNotifier{}

	svc := NewIntakeService(repo, nil, notifier, IntakeConfig{TargetEmail: testutil.TargetEmail})

	_, err := svc.Receive(context.Background(), Envelope{
		To:  testutil.TargetEmail,
		Raw: strings.NewReader(rawMessage),
	})

	assert.Error(t, err)
	assert.Equal(t, StatusFailed, StatusFor(err))
	assert.Empty(t, notifier.emails)
	repo.AssertExpectations(t)
}

func TestIntakeService_Receive_SweepFailureIgnored(t *testing.T) {
	sweeper := &countingSweeper{result: SweepResult{Success: false, Error: "locked"}}
	svc, _ := newIntake(t, sweeper, nil)

	email, err := svc.Receive(context.Background(), Envelope{
		To:  testutil.TargetEmail,
		Raw: strings.NewReader(rawMessage),
	})

	require.NoError(t, err)
	assert.NotNil(t, email)
	assert.Equal(t, 1, sweeper.callCount())
}

func TestIntakeService_Receive_RunsRetention(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := repository.NewEmailRepository(db)
	testutil.InsertEmail(t, db, testutil.TargetEmail, sweepNow.Add(-time.Hour), "stale")

	retention := NewRetentionService(repo, RetentionConfig{RetentionMinutes: 15, Now: fixedClock(sweepNow)})
	svc := NewIntakeService(repo, retention, nil, IntakeConfig{
		TargetEmail: testutil.TargetEmail,
		Now:         fixedClock(sweepNow),
	})

	_, err := svc.Receive(context.Background(), Envelope{
		To:  testutil.TargetEmail,
		Raw: strings.NewReader(rawMessage),
	})
	require.NoError(t, err)

	all, err := repo.ListByRecipient(context.Background(), testutil.TargetEmail)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "Welcome", all[0].Subject)
}
