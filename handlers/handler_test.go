package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jeturing/Segrd-forensics-sub000/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckRole(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/cases", nil)
	req.Header.Set("Role", models.RoleViewer)

	assert.NoError(t, checkRole(req, []string{models.RoleAdmin, models.RoleViewer}))
	assert.Error(t, checkRole(req, []string{models.RoleAdmin}))

	noRole := httptest.NewRequest(http.MethodGet, "/api/cases", nil)
	assert.Error(t, checkRole(noRole, []string{models.RoleAdmin}))
}

func TestRequestTenantID(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/cases", nil)
	req.Header.Set("Tenant-ID", "64f000000000000000000001")

	tenantID, err := requestTenantID(req)
	require.NoError(t, err)
	assert.Equal(t, "64f000000000000000000001", tenantID.Hex())

	bad := httptest.NewRequest(http.MethodGet, "/api/cases", nil)
	bad.Header.Set("Tenant-ID", "not-an-object-id")
	_, err = requestTenantID(bad)
	assert.Error(t, err)
}
