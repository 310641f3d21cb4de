package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"savings_system/internal/domain"
	"savings_system/internal/middleware"
	"savings_system/internal/service"
	"savings_system/internal/utils"
)

const testSecret = "test-secret"

// bodyMap is a JSON request body in tests
type bodyMap = map[string]any

// mustDec parses a decimal literal
func mustDec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// testEnv bundles the router and services for handler tests
type testEnv struct {
	db     *gorm.DB
	router *gin.Engine
	auth   *service.AuthService
	ledger *service.LedgerService
	admin  *service.AdminService
}

// newTestEnv wires the real route layout over an in-memory SQLite
// database. The Redis rate limiters are left out: they are exercised
// against a live Redis, not in handler tests.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:api_%s?mode=memory&cache=shared&_busy_timeout=10000", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.User{}, &domain.Device{}, &domain.Account{}, &domain.Transaction{}))

	env := &testEnv{
		db:     db,
		auth:   service.NewAuthService(db, testSecret, time.Hour, false),
		ledger: service.NewLedgerService(db),
		admin:  service.NewAdminService(db),
	}

	r := gin.New()
	r.GET("/health", HealthHandler())

	authGroup := r.Group("/api/auth")
	authGroup.POST("/register", RegisterHandler(env.auth))
	authGroup.POST("/login", LoginHandler(env.auth))
	authGroup.GET("/verify-token", VerifyTokenHandler(env.auth))
	authGroup.POST("/request-password-reset", RequestPasswordResetHandler(env.auth))

	accountGroup := r.Group("/api/account")
	accountGroup.Use(middleware.JWTAuthMiddleware(db, testSecret))
	accountGroup.GET("/balance", BalanceHandler(env.ledger))
	accountGroup.POST("/deposit", DepositHandler(env.ledger))
	accountGroup.POST("/withdraw", WithdrawHandler(env.ledger))
	accountGroup.GET("/transactions", TransactionsHandler(env.ledger))

	adminGroup := r.Group("/api/admin")
	adminGroup.Use(middleware.JWTAuthMiddleware(db, testSecret), middleware.AdminOnlyMiddleware(db))
	adminGroup.GET("/users", AdminListUsersHandler(env.admin))
	adminGroup.GET("/users/:id", AdminGetUserHandler(env.admin))
	adminGroup.GET("/users/:id/details", AdminUserDetailsHandler(env.admin))
	adminGroup.PATCH("/users/:id/access", AdminSetAccessHandler(env.admin))
	adminGroup.DELETE("/users/:id", AdminDeleteUserHandler(env.admin))
	adminGroup.POST("/users/:id/devices", AdminAssignDeviceHandler(env.admin))
	adminGroup.GET("/devices", AdminListDevicesHandler(env.admin))
	adminGroup.POST("/devices/:deviceId/verify", AdminVerifyDeviceHandler(env.admin))
	adminGroup.DELETE("/devices/:deviceId", AdminDeleteDeviceHandler(env.admin))
	adminGroup.GET("/accounts", AdminListAccountsHandler(env.admin))
	adminGroup.GET("/transactions", AdminListTransactionsHandler(env.admin))
	adminGroup.GET("/stats", AdminStatsHandler(env.admin))

	env.router = r
	return env
}

// do performs a request against the test router, JSON-encoding body when
// present and attaching token as a bearer header when non-empty
func (e *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

// decode unmarshals a recorded JSON response body
func decode(t *testing.T, w *httptest.ResponseRecorder, dest any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), dest))
}

// registerVerified registers a user, verifies its device and returns a
// live bearer token
func (e *testEnv) registerVerified(t *testing.T, email, password string) string {
	t.Helper()
	result, err := e.auth.Register(email, password, "Test", "User")
	require.NoError(t, err)
	_, err = e.admin.VerifyDevice(result.Device.DeviceID)
	require.NoError(t, err)
	login, err := e.auth.Login(email, password, "")
	require.NoError(t, err)
	return login.Token
}

// seedAdmin creates an active admin directly and returns a bearer token
func (e *testEnv) seedAdmin(t *testing.T, email, password string) string {
	t.Helper()
	hash := mustHash(t, password)
	admin := domain.User{
		Email:     email,
		Password:  hash,
		FirstName: "Admin",
		LastName:  "User",
		Role:      domain.RoleAdmin,
		IsActive:  true,
	}
	require.NoError(t, e.db.Create(&admin).Error)
	login, err := e.auth.Login(email, password, "")
	require.NoError(t, err)
	return login.Token
}

func mustHash(t *testing.T, password string) string {
	t.Helper()
	hash, err := utils.HashPassword(password)
	require.NoError(t, err)
	return hash
}

// expectStatus fails with the response body for easier debugging
func expectStatus(t *testing.T, w *httptest.ResponseRecorder, want int) {
	t.Helper()
	require.Equal(t, want, w.Code, "body: %s", w.Body.String())
}
