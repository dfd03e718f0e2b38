package domain

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	derrors "convoy/pkg/domain-errors"
)

// TestParseUUID_Invariants validates the parsing invariant:
// IDs must be valid, non-empty, non-nil UUIDs.
func TestParseUUID_Invariants(t *testing.T) {
	t.Run("rejects empty string", func(t *testing.T) {
		_, err := ParseDriverID("")
		require.Error(t, err)
		assert.True(t, derrors.HasCode(err, derrors.CodeInvalidInput))
	})

	t.Run("rejects invalid format", func(t *testing.T) {
		_, err := ParseDriverID("not-a-uuid")
		require.Error(t, err)
		assert.True(t, derrors.HasCode(err, derrors.CodeInvalidInput))
	})

	t.Run("rejects nil UUID", func(t *testing.T) {
		_, err := ParseOrgID(uuid.Nil.String())
		require.Error(t, err)
		assert.True(t, derrors.HasCode(err, derrors.CodeInvalidInput))
	})

	t.Run("accepts valid UUID", func(t *testing.T) {
		validUUID := uuid.New()
		id, err := ParseDriverID(validUUID.String())
		require.NoError(t, err)
		assert.Equal(t, DriverID(validUUID), id)
	})

	t.Run("rejects attack vectors", func(t *testing.T) {
		for _, input := range []string{
			"'; DROP TABLE drivers;--",
			"../../../etc/passwd",
			strings.Repeat("a", 1000),
		} {
			_, err := ParseWorkOrderID(input)
			assert.Error(t, err, "input %q should be rejected", input)
		}
	})
}

// TestTypeDistinction verifies the compiler enforces type safety.
// This is a compile-time check - if this compiles, the invariant holds.
func TestTypeDistinction(t *testing.T) {
	driverID := DriverID(uuid.New())
	orgID := OrgID(uuid.New())

	// These would fail to compile if types were interchangeable:
	// var _ DriverID = orgID   // compile error
	// var _ OrgID = driverID   // compile error

	assert.NotEqual(t, uuid.UUID(driverID), uuid.UUID(orgID))
}

func TestParseRole(t *testing.T) {
	t.Run("accepts supported roles", func(t *testing.T) {
		for _, s := range []string{"admin", "manager", "viewer"} {
			r, err := ParseRole(s)
			require.NoError(t, err)
			assert.True(t, r.IsValid())
		}
	})

	t.Run("rejects unknown role", func(t *testing.T) {
		_, err := ParseRole("superuser")
		require.Error(t, err)
		assert.True(t, derrors.HasCode(err, derrors.CodeInvalidInput))
	})

	t.Run("only admin and manager can approve", func(t *testing.T) {
		assert.True(t, RoleAdmin.CanApprove())
		assert.True(t, RoleManager.CanApprove())
		assert.False(t, RoleViewer.CanApprove())
	})
}
