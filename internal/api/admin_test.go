package api

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"savings_system/internal/domain"
)

func TestAdminRoutesRequireAdminRole(t *testing.T) {
	env := newTestEnv(t)
	userToken := env.registerVerified(t, "a@x.com", "secret1")

	// A regular user is rejected on every admin route
	w := env.do(t, http.MethodGet, "/api/admin/users", userToken, nil)
	expectStatus(t, w, http.StatusForbidden)
	w = env.do(t, http.MethodGet, "/api/admin/stats", userToken, nil)
	expectStatus(t, w, http.StatusForbidden)

	// No token at all
	w = env.do(t, http.MethodGet, "/api/admin/users", "", nil)
	expectStatus(t, w, http.StatusUnauthorized)
}

func TestAdminRoleReCheckedAgainstStorage(t *testing.T) {
	env := newTestEnv(t)
	adminToken := env.seedAdmin(t, "admin@x.com", "admin-pass")

	w := env.do(t, http.MethodGet, "/api/admin/users", adminToken, nil)
	expectStatus(t, w, http.StatusOK)

	// Demote the admin while the token is still live; the role claim
	// inside the token must not be trusted
	require.NoError(t, env.db.Model(&domain.User{}).
		Where("email = ?", "admin@x.com").
		Update("role", domain.RoleUser).Error)

	w = env.do(t, http.MethodGet, "/api/admin/users", adminToken, nil)
	expectStatus(t, w, http.StatusForbidden)
}

func TestAdminUserManagementFlow(t *testing.T) {
	env := newTestEnv(t)
	adminToken := env.seedAdmin(t, "admin@x.com", "admin-pass")

	// A user registers and deposits
	result, err := env.auth.Register("a@x.com", "secret1", "A", "B")
	require.NoError(t, err)

	// Admin sees the pending device and verifies it
	w := env.do(t, http.MethodGet, fmt.Sprintf("/api/admin/devices?userId=%d", result.User.ID), adminToken, nil)
	expectStatus(t, w, http.StatusOK)
	var deviceList struct {
		Devices []domain.Device `json:"devices"`
	}
	decode(t, w, &deviceList)
	require.Len(t, deviceList.Devices, 1)
	assert.False(t, deviceList.Devices[0].IsVerified)

	w = env.do(t, http.MethodPost, "/api/admin/devices/"+result.Device.DeviceID+"/verify", adminToken, nil)
	expectStatus(t, w, http.StatusOK)

	// The user can log in now
	_, err = env.auth.Login("a@x.com", "secret1", "")
	require.NoError(t, err)
	_, err = env.ledger.Deposit(result.User.ID, mustDec("75"), "")
	require.NoError(t, err)

	// Details bundle account, devices and transactions
	w = env.do(t, http.MethodGet, fmt.Sprintf("/api/admin/users/%d/details", result.User.ID), adminToken, nil)
	expectStatus(t, w, http.StatusOK)
	var details struct {
		User         domain.User          `json:"user"`
		Account      *domain.Account      `json:"account"`
		Devices      []domain.Device      `json:"devices"`
		Transactions []domain.Transaction `json:"transactions"`
	}
	decode(t, w, &details)
	require.NotNil(t, details.Account)
	assert.True(t, details.Account.Balance.Equal(mustDec("75")))
	assert.Len(t, details.Devices, 1)
	assert.Len(t, details.Transactions, 1)

	// Deny access
	w = env.do(t, http.MethodPatch, fmt.Sprintf("/api/admin/users/%d/access", result.User.ID), adminToken, bodyMap{"isActive": false})
	expectStatus(t, w, http.StatusOK)
	_, err = env.auth.Login("a@x.com", "secret1", "")
	require.Error(t, err)

	// Cascading delete
	w = env.do(t, http.MethodDelete, fmt.Sprintf("/api/admin/users/%d", result.User.ID), adminToken, nil)
	expectStatus(t, w, http.StatusOK)
	var count int64
	require.NoError(t, env.db.Model(&domain.Device{}).Where("user_id = ?", result.User.ID).Count(&count).Error)
	assert.Zero(t, count)

	// Gone now
	w = env.do(t, http.MethodGet, fmt.Sprintf("/api/admin/users/%d", result.User.ID), adminToken, nil)
	expectStatus(t, w, http.StatusNotFound)
}

func TestAdminAssignDeviceEndpoint(t *testing.T) {
	env := newTestEnv(t)
	adminToken := env.seedAdmin(t, "admin@x.com", "admin-pass")

	result, err := env.auth.Register("a@x.com", "secret1", "A", "B")
	require.NoError(t, err)

	// Generated identifier, pre-verified
	w := env.do(t, http.MethodPost, fmt.Sprintf("/api/admin/users/%d/devices", result.User.ID), adminToken, bodyMap{"isVerified": true})
	expectStatus(t, w, http.StatusCreated)
	var device domain.Device
	decode(t, w, &device)
	assert.NotEmpty(t, device.DeviceID)
	assert.True(t, device.IsVerified)

	// The assigned device satisfies the login policy
	_, err = env.auth.Login("a@x.com", "secret1", "")
	assert.NoError(t, err)

	// Explicit identifier
	w = env.do(t, http.MethodPost, fmt.Sprintf("/api/admin/users/%d/devices", result.User.ID), adminToken, bodyMap{"deviceId": "tablet"})
	expectStatus(t, w, http.StatusCreated)

	// Re-assigning the same identifier conflicts instead of erroring out
	w = env.do(t, http.MethodPost, fmt.Sprintf("/api/admin/users/%d/devices", result.User.ID), adminToken, bodyMap{"deviceId": "tablet"})
	expectStatus(t, w, http.StatusConflict)
	var body bodyMap
	decode(t, w, &body)
	assert.Equal(t, "device already assigned", body["error"])
}

func TestAdminStatsAndAccountsEndpoints(t *testing.T) {
	env := newTestEnv(t)
	adminToken := env.seedAdmin(t, "admin@x.com", "admin-pass")

	result, err := env.auth.Register("a@x.com", "secret1", "A", "B")
	require.NoError(t, err)
	_, err = env.ledger.Deposit(result.User.ID, mustDec("100"), "")
	require.NoError(t, err)

	w := env.do(t, http.MethodGet, "/api/admin/stats", adminToken, nil)
	expectStatus(t, w, http.StatusOK)
	var stats struct {
		TotalUsers        int64  `json:"totalUsers"`
		TotalAccounts     int64  `json:"totalAccounts"`
		TotalBalance      string `json:"totalBalance"`
		TotalTransactions int64  `json:"totalTransactions"`
	}
	decode(t, w, &stats)
	assert.EqualValues(t, 2, stats.TotalUsers, "admin plus the registered user")
	assert.EqualValues(t, 1, stats.TotalAccounts)
	assert.EqualValues(t, 1, stats.TotalTransactions)

	// Accounts listing carries the owner email
	w = env.do(t, http.MethodGet, "/api/admin/accounts", adminToken, nil)
	expectStatus(t, w, http.StatusOK)
	assert.Contains(t, w.Body.String(), "a@x.com")

	// Transactions listing with a type filter
	w = env.do(t, http.MethodGet, "/api/admin/transactions?type=DEPOSIT", adminToken, nil)
	expectStatus(t, w, http.StatusOK)
	var txResp struct {
		Transactions []domain.Transaction `json:"transactions"`
		Total        int64                `json:"total"`
	}
	decode(t, w, &txResp)
	assert.EqualValues(t, 1, txResp.Total)
}
