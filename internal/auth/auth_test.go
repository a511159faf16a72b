package auth

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCapabilityIssuance(t *testing.T) {
	a := New([]string{"root", "ops"})

	require.True(t, a.Capability("root").Privileged())
	require.True(t, a.Capability("ops").Privileged())
	require.False(t, a.Capability("alice").Privileged())

	require.True(t, a.IsAdmin("root"))
	require.False(t, a.IsAdmin("alice"))
}

func TestEmptyAdminList(t *testing.T) {
	a := New(nil)
	require.False(t, a.Capability("root").Privileged())
}
