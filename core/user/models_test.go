package user

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRandomPassword(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 10; i++ {
		pwd, err := RandomPassword()
		require.NoError(t, err)
		assert.Len(t, pwd, tempPasswordLen)
		assert.False(t, seen[pwd], "generated the same password twice")
		seen[pwd] = true
	}
}

func TestUser_SetPassword(t *testing.T) {
	var usr User
	require.NoError(t, usr.SetPassword("S3cur3!pass"))
	assert.NotEmpty(t, usr.PasswordHash)
	assert.NotContains(t, string(usr.PasswordHash), "S3cur3!pass")

	assert.NoError(t, usr.CheckPassword("S3cur3!pass"))
	assert.Error(t, usr.CheckPassword("wrong"))
}

func TestUser_roles(t *testing.T) {
	schoolID := "sch-1"

	tests := []struct {
		name                           string
		usr                            User
		admin, teacher, student, pfAdm bool
	}{
		{name: "no roles", usr: User{}},
		{name: "student", usr: User{SchoolID: &schoolID, Roles: StudentRoles}, student: true},
		{name: "teacher", usr: User{SchoolID: &schoolID, Roles: TeacherRoles}, teacher: true},
		{name: "school admin", usr: User{SchoolID: &schoolID, Roles: []string{RoleAdminPrincipal}}, admin: true},
		{name: "platform admin", usr: User{Roles: []string{RoleAdminOwner}}, admin: true, pfAdm: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.admin, tt.usr.IsAdmin())
			assert.Equal(t, tt.teacher, tt.usr.IsTeacher())
			assert.Equal(t, tt.student, tt.usr.IsStudent())
			assert.Equal(t, tt.pfAdm, tt.usr.IsPlatformAdmin())
		})
	}
}

func TestUser_BelongsTo(t *testing.T) {
	schoolID := "sch-1"
	usr := User{SchoolID: &schoolID}
	assert.True(t, usr.BelongsTo("sch-1"))
	assert.False(t, usr.BelongsTo("sch-2"))

	var platformAdm User
	assert.False(t, platformAdm.BelongsTo("sch-1"))
}

func TestMaxRolePriority(t *testing.T) {
	assert.Equal(t, 0, MaxRolePriority(nil))
	assert.Equal(t, rolePriorities[RoleTeacher], MaxRolePriority([]string{RoleStudent, RoleTeacher}))
	assert.Equal(t, rolePriorities[RoleAdminOwner], MaxRolePriority(AllRoles))
}
