package handlers

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	apperrors "github.com/welldanyogia/webrana-catchmail/internal/errors"
	"github.com/welldanyogia/webrana-catchmail/internal/logger"
	"github.com/welldanyogia/webrana-catchmail/internal/repository"
	"github.com/welldanyogia/webrana-catchmail/internal/services"
	"github.com/welldanyogia/webrana-catchmail/tests/testutil"
	"gorm.io/gorm"
)

const inboundMessage = "From: Bob <bob@example.org>\r\n" +
	"To: inbox@example.com\r\n" +
	"Subject: Webhook delivery\r\n" +
	"Content-Type: text/plain; charset=utf-8\r\n" +
	"\r\n" +
	"Delivered over HTTP\r\n"

func newInboundEcho(t *testing.T, cfg InboundConfig) (*echo.Echo, *gorm.DB) {
	t.Helper()

	db := testutil.NewSQLiteDB(t)
	intake := services.NewIntakeService(repository.NewEmailRepository(db), nil, nil, services.IntakeConfig{
		TargetEmail: testutil.TargetEmail,
	})

	e := echo.New()
	e.POST("/inbound", NewInboundHandler(intake, cfg).Receive)
	return e, db
}

func postInbound(t *testing.T, e *echo.Echo, target, body string, headers map[string]string) (*httptest.ResponseRecorder, InboundResponse) {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, "message/rfc822")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	var resp InboundResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return rec, resp
}

func TestInboundHandler_Accepted(t *testing.T) {
	e, db := newInboundEcho(t, InboundConfig{})

	rec, resp := postInbound(t, e, "/inbound?to=inbox@example.com&from=bob@example.org", inboundMessage, nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, http.StatusOK, resp.Status)
	assert.True(t, resp.Accepted)
	assert.NotZero(t, resp.ID)
	assert.Equal(t, int64(1), testutil.CountEmails(t, db))
}

func TestInboundHandler_EnvelopeFromHeaders(t *testing.T) {
	e, db := newInboundEcho(t, InboundConfig{})

	rec, resp := postInbound(t, e, "/inbound", inboundMessage, map[string]string{
		HeaderEnvelopeTo:   "inbox@example.com",
		HeaderEnvelopeFrom: "bob@example.org",
	})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, resp.Accepted)
	assert.Equal(t, int64(1), testutil.CountEmails(t, db))
}

func TestInboundHandler_Rejected(t *testing.T) {
	var buf bytes.Buffer
	sec := logger.NewSecurityLogger(slog.NewJSONHandler(&buf, nil))
	e, db := newInboundEcho(t, InboundConfig{SecurityLogger: sec})

	rec, resp := postInbound(t, e, "/inbound?to=stranger@example.com", inboundMessage, nil)

	assert.Equal(t, services.StatusRejected, rec.Code)
	assert.Equal(t, services.StatusRejected, resp.Status)
	assert.False(t, resp.Accepted)
	assert.Equal(t, apperrors.CodeRecipientRejected, resp.Code)
	assert.Equal(t, int64(0), testutil.CountEmails(t, db))
	assert.Contains(t, buf.String(), "stranger@example.com")
}

func TestInboundHandler_MissingRecipient(t *testing.T) {
	e, db := newInboundEcho(t, InboundConfig{})

	rec, _ := postInbound(t, e, "/inbound", inboundMessage, nil)

	assert.Equal(t, services.StatusRejected, rec.Code)
	assert.Equal(t, int64(0), testutil.CountEmails(t, db))
}

func TestInboundHandler_ParseFailure(t *testing.T) {
	e, db := newInboundEcho(t, InboundConfig{})

	rec, resp := postInbound(t, e, "/inbound?to=inbox@example.com", "   ", nil)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, apperrors.CodeParseFailed, resp.Code)
	assert.Equal(t, int64(0), testutil.CountEmails(t, db))
}

func TestInboundHandler_BodyTooLarge(t *testing.T) {
	e, db := newInboundEcho(t, InboundConfig{MaxBytes: 16})

	rec, resp := postInbound(t, e, "/inbound?to=inbox@example.com", inboundMessage, nil)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.False(t, resp.Accepted)
	assert.Equal(t, int64(0), testutil.CountEmails(t, db))
}
