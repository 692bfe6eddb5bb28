package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/welldanyogia/webrana-catchmail/internal/database"
	"github.com/welldanyogia/webrana-catchmail/tests/testutil"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupHealthTestDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	// GORM pings during initialization
	mock.ExpectPing()

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn:       db,
		DriverName: "postgres",
	}), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	return gormDB, mock
}

func newBareSQLiteDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Connect("sqlite://:memory:", false)
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })
	return db
}

func runHealth(t *testing.T, h *HealthHandler, fn func(*HealthHandler, echo.Context) error, path string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, fn(h, c))

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec, body
}

func TestHealthHandler_Health_ReturnsOKWhenHealthy(t *testing.T) {
	handler := NewHealthHandler(testutil.NewSQLiteDB(t), nil)

	rec, body := runHealth(t, handler, (*HealthHandler).Health, "/health")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "healthy", body["status"])
	assert.NotContains(t, body, "reason")
}

func TestHealthHandler_Health_SchemaMissing(t *testing.T) {
	handler := NewHealthHandler(newBareSQLiteDB(t), nil)

	rec, body := runHealth(t, handler, (*HealthHandler).Health, "/health")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "unhealthy", body["status"])
	assert.Equal(t, ReasonSchemaMissing, body["reason"])
	assert.Equal(t, "schema not initialized", body["error"])
}

func TestHealthHandler_Health_DatabaseUnreachable(t *testing.T) {
	gormDB, mock := setupHealthTestDB(t)
	mock.ExpectQuery("SELECT 1").WillReturnError(errors.New("connection refused"))

	handler := NewHealthHandler(gormDB, nil)

	rec, body := runHealth(t, handler, (*HealthHandler).Health, "/health")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "unhealthy", body["status"])
	assert.Equal(t, ReasonDBUnreachable, body["reason"])
	assert.Contains(t, body["error"], "connection refused")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHealthHandler_Health_SchemaLookupFailure(t *testing.T) {
	gormDB, mock := setupHealthTestDB(t)
	mock.ExpectQuery("SELECT 1").WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))
	mock.ExpectQuery("information_schema.tables").WillReturnError(errors.New("server closed the connection"))

	handler := NewHealthHandler(gormDB, nil)

	rec, body := runHealth(t, handler, (*HealthHandler).Health, "/health")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, ReasonDBUnreachable, body["reason"])
	assert.Contains(t, body["error"], "server closed the connection")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHealthHandler_DBInit_CreatesSchema(t *testing.T) {
	db := newBareSQLiteDB(t)
	handler := NewHealthHandler(db, nil)

	rec, body := runHealth(t, handler, (*HealthHandler).DBInit, "/db-init")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["success"])
	exists, err := database.HasSchema(context.Background(), db)
	require.NoError(t, err)
	assert.True(t, exists)

	// Second call is a no-op
	rec, _ = runHealth(t, handler, (*HealthHandler).DBInit, "/db-init")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHealthHandler_DBInit_Failure(t *testing.T) {
	gormDB, mock := setupHealthTestDB(t)
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS emails").
		WillReturnError(errors.New("permission denied for schema public"))

	handler := NewHealthHandler(gormDB, nil)

	rec, body := runHealth(t, handler, (*HealthHandler).DBInit, "/db-init")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, false, body["success"])
	assert.Contains(t, body["error"], "permission denied")
}
