package plugin

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestPermissionGateDisabled is spec.md §8 scenario S3: a disabled plugin
// row with permissions.core.call=1 still gets forbidden.
func TestPermissionGateDisabled(t *testing.T) {
	perms := ParsePermissions(false, `{"core":{"call":true}}`)
	h := NewHost()

	_, err := h.CallRaw(context.Background(), "missing", perms, `{"method":"fs.readFile","params":{"path":"/tmp"}}`)
	require.Error(t, err)
	kind, ok := Kind(err)
	require.True(t, ok)
	require.Equal(t, ErrForbidden, kind)
}

// TestNetDomainAllowlist is spec.md §8 scenario S4.
func TestNetDomainAllowlist(t *testing.T) {
	perms := ParsePermissions(true, `{"core":{"call":true},"net":{"request":true,"domains":["api.example.com"]}}`)

	err := checkNetDomain([]byte(`{"url":"https://api.example.com/v1"}`), perms.NetDomains)
	require.NoError(t, err)

	err = checkNetDomain([]byte(`{"url":"https://other.com/"}`), perms.NetDomains)
	require.Error(t, err)
	kind, ok := Kind(err)
	require.True(t, ok)
	require.Equal(t, ErrForbiddenNetDomain, kind)
}

func TestMethodPermissionTable(t *testing.T) {
	perms := ParsePermissions(true, `{"core":{"call":true},"fs":{"read":true}}`)
	require.NoError(t, checkMethodPermission("fs.readFile", perms))
	require.Error(t, checkMethodPermission("fs.write", perms))
}
