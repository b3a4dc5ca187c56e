package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlotsScan(t *testing.T) {
	t.Run("json array", func(t *testing.T) {
		var s Slots
		require.NoError(t, s.Scan([]byte(`[1, 2.5, 0]`)))
		assert.Equal(t, Slots{1, 2.5, 0}, s)
	})

	t.Run("null elements are zero", func(t *testing.T) {
		var s Slots
		require.NoError(t, s.Scan(`[null, 3]`))
		assert.Equal(t, Slots{0, 3}, s)
	})

	t.Run("sql null", func(t *testing.T) {
		s := Slots{1}
		require.NoError(t, s.Scan(nil))
		assert.Nil(t, s)
		assert.Equal(t, 0.0, s.At(4))
	})

	t.Run("garbage", func(t *testing.T) {
		var s Slots
		assert.Error(t, s.Scan("not json"))
		assert.Error(t, s.Scan(42))
	})
}

func TestSlotsValue(t *testing.T) {
	v, err := Slots{1, 2}.Value()
	require.NoError(t, err)
	assert.Equal(t, "[1,2]", v)

	v, err = Slots(nil).Value()
	require.NoError(t, err)
	assert.Equal(t, "[]", v)
}

func TestRecordCredentialAndIdentity(t *testing.T) {
	empty := ""
	hash := "$2a$10$abc"

	assert.False(t, (&Record{}).HasCredential())
	assert.False(t, (&Record{Password: &empty}).HasCredential())
	assert.True(t, (&Record{Password: &hash}).HasCredential())

	assert.True(t, (&Record{Course: AdminCourse, UserID: AdminUserID}).IsAdmin())
	assert.False(t, (&Record{Course: "CS101", UserID: AdminUserID}).IsAdmin())
	assert.Equal(t, RoleAdmin, RoleFor(AdminCourse, AdminUserID))
	assert.Equal(t, RoleStudent, RoleFor(AdminCourse, "alice"))
}

func TestCourseValidate(t *testing.T) {
	ok := &Course{Code: "CS101", Name: "Intro", Status: StatusActive}
	assert.NoError(t, ok.Validate())

	assert.Error(t, (&Course{Name: "Intro", Status: StatusActive}).Validate())
	assert.Error(t, (&Course{Code: AdminCourse, Name: "Admin", Status: StatusActive}).Validate())
	assert.Error(t, (&Course{Code: "CS101", Name: "Intro", Status: "closed"}).Validate())
	assert.Equal(t, StatusActive, StatusSuspended.Toggled())
}
