//go:build integration

package integration

import (
	"context"
	"errors"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/emersion/go-smtp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/welldanyogia/webrana-catchmail/internal/database"
	"github.com/welldanyogia/webrana-catchmail/internal/repository"
	"github.com/welldanyogia/webrana-catchmail/internal/services"
	smtpserver "github.com/welldanyogia/webrana-catchmail/internal/smtp"
	"github.com/welldanyogia/webrana-catchmail/tests/fixtures"
	"github.com/welldanyogia/webrana-catchmail/tests/mocks"
	"gorm.io/gorm"
)

// SMTPIntegrationTestSuite tests the SMTP server with a real database
type SMTPIntegrationTestSuite struct {
	suite.Suite
	db         *gorm.DB
	repo       repository.EmailRepository
	notifier   *mocks.MockNotifier
	smtpServer *smtp.Server
	smtpAddr   string
}

// SetupSuite starts the SMTP server on a random port
func (s *SMTPIntegrationTestSuite) SetupSuite() {
	db, err := database.Connect("sqlite://:memory:", false)
	require.NoError(s.T(), err)
	require.NoError(s.T(), database.InitSchema(context.Background(), db))
	s.db = db
	s.repo = repository.NewEmailRepository(db)

	s.notifier = mocks.NewMockNotifier()
	s.notifier.On("NotifyNewEmail", mock.Anything).Return()

	retention := services.NewRetentionService(s.repo, services.RetentionConfig{RetentionMinutes: 15})
	intake := services.NewIntakeService(s.repo, retention, s.notifier, services.IntakeConfig{
		TargetEmail: fixtures.TargetEmail,
	})

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(s.T(), err)
	s.smtpAddr = listener.Addr().String()

	backend := smtpserver.NewBackend(&smtpserver.BackendConfig{Intake: intake})
	s.smtpServer = smtpserver.NewSecureServer(backend, &smtpserver.ServerConfig{
		Addr:          s.smtpAddr,
		Domain:        "localhost",
		AllowInsecure: true,
	})

	go func() {
		_ = s.smtpServer.Serve(listener)
	}()
}

// TearDownSuite stops the SMTP server
func (s *SMTPIntegrationTestSuite) TearDownSuite() {
	if s.smtpServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.smtpServer.Shutdown(ctx)
	}
	if s.db != nil {
		_ = database.Close(s.db)
	}
}

// SetupTest empties the table before each test
func (s *SMTPIntegrationTestSuite) SetupTest() {
	s.db.Exec("DELETE FROM emails")
}

// TestSMTPIntegrationTestSuite runs the test suite
func TestSMTPIntegrationTestSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	suite.Run(t, new(SMTPIntegrationTestSuite))
}

func (s *SMTPIntegrationTestSuite) dial() *smtp.Client {
	client, err := smtp.Dial(s.smtpAddr)
	require.NoError(s.T(), err)
	s.T().Cleanup(func() { _ = client.Close() })
	return client
}

func (s *SMTPIntegrationTestSuite) TestSMTP_Hello() {
	client := s.dial()
	assert.NoError(s.T(), client.Hello("client.test"))
}

func (s *SMTPIntegrationTestSuite) TestSMTP_DeliverEmail() {
	before := s.notifier.Count()
	msg := fixtures.NewMessageBuilder().
		Subject("Integration delivery").
		Text("Plain part").
		HTML("<p>HTML part</p>")

	err := smtp.SendMail(s.smtpAddr, nil, "sender@external.com",
		[]string{fixtures.TargetEmail}, msg.Reader())
	require.NoError(s.T(), err)

	emails, err := s.repo.ListByRecipient(context.Background(), fixtures.TargetEmail)
	require.NoError(s.T(), err)
	require.Len(s.T(), emails, 1)
	assert.Equal(s.T(), "Integration delivery", emails[0].Subject)
	assert.Equal(s.T(), "sender@external.com", emails[0].Sender)
	assert.Contains(s.T(), emails[0].Body, "Plain part")
	assert.Contains(s.T(), emails[0].HTML, "<p>HTML part</p>")

	assert.Equal(s.T(), before+1, s.notifier.Count())
	assert.Equal(s.T(), emails[0].ID, s.notifier.Last().ID)
}

func (s *SMTPIntegrationTestSuite) TestSMTP_RejectsForeignRecipient() {
	client := s.dial()
	require.NoError(s.T(), client.Hello("client.test"))
	require.NoError(s.T(), client.Mail("sender@external.com", nil))

	err := client.Rcpt("someone-else@example.com", nil)

	var smtpErr *smtp.SMTPError
	require.True(s.T(), errors.As(err, &smtpErr))
	assert.Equal(s.T(), 550, smtpErr.Code)

	var count int64
	require.NoError(s.T(), s.db.Table("emails").Count(&count).Error)
	assert.Zero(s.T(), count)
}

func (s *SMTPIntegrationTestSuite) TestSMTP_MixedRecipientsKeepsTargetOnly() {
	client := s.dial()
	require.NoError(s.T(), client.Hello("client.test"))
	require.NoError(s.T(), client.Mail("sender@external.com", nil))
	require.Error(s.T(), client.Rcpt("other@example.com", nil))
	require.NoError(s.T(), client.Rcpt(fixtures.TargetEmail, nil))

	w, err := client.Data()
	require.NoError(s.T(), err)
	_, err = w.Write([]byte(fixtures.NewMessageBuilder().Subject("mixed").String()))
	require.NoError(s.T(), err)
	require.NoError(s.T(), w.Close())
	require.NoError(s.T(), client.Quit())

	emails, err := s.repo.ListByRecipient(context.Background(), fixtures.TargetEmail)
	require.NoError(s.T(), err)
	require.Len(s.T(), emails, 1)
	assert.Equal(s.T(), "mixed", emails[0].Subject)
}

func (s *SMTPIntegrationTestSuite) TestSMTP_MissingHeadersStoredEmpty() {
	raw := "To: " + fixtures.TargetEmail + "\r\n\r\njust a body line\r\n"

	err := smtp.SendMail(s.smtpAddr, nil, "bare@external.com",
		[]string{fixtures.TargetEmail}, strings.NewReader(raw))
	require.NoError(s.T(), err)

	email, err := s.repo.GetLatest(context.Background(), fixtures.TargetEmail)
	require.NoError(s.T(), err)
	assert.Empty(s.T(), email.Subject)
	assert.Equal(s.T(), "bare@external.com", email.Sender)
}
