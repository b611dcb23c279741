package user

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/shule/core"
)

func validationTags(t *testing.T, err error) map[string]string {
	t.Helper()
	var vErrs validator.ValidationErrors
	require.ErrorAs(t, err, &vErrs)

	tags := make(map[string]string, len(vErrs))
	for _, fe := range vErrs {
		tags[fe.Field()] = fe.Tag()
	}
	return tags
}

func Test_userStructValidation_passwordPolicy(t *testing.T) {
	newUser := func(pwd string) NewUser {
		return NewUser{
			Name:            "Awe Lmao",
			Username:        "awelmao",
			Email:           "awe@test.cd",
			Password:        pwd,
			PasswordConfirm: pwd,
		}
	}

	tests := []struct {
		name    string
		pwd     string
		wantTag string
	}{
		{name: "too short", pwd: "Sh0r!", wantTag: pwdMinLenTag},
		{name: "whitespace", pwd: "S3cur3! pass", wantTag: pwdNoSpaceTag},
		{name: "all numeric", pwd: "1234567890", wantTag: pwdNotAllNumTag},
		{name: "no special char", pwd: "S3cur3pass", wantTag: pwdComplexityTag},
		{name: "no uppercase", pwd: "s3cur3!pass", wantTag: pwdComplexityTag},
		{name: "similar to username", pwd: "Awelmao1!", wantTag: pwdAttrSimTag},
		{name: "acceptable", pwd: "G00d&pr0per"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := core.Validate.Struct(newUser(tt.pwd))
			if tt.wantTag == "" {
				assert.NoError(t, err)
				return
			}
			tags := validationTags(t, err)
			assert.Equal(t, tt.wantTag, tags["password"])
		})
	}
}

func Test_userStructValidation_usernameOrEmail(t *testing.T) {
	nu := NewUser{
		Name:            "Awe Lmao",
		Password:        "G00d&pr0per",
		PasswordConfirm: "G00d&pr0per",
	}
	tags := validationTags(t, core.Validate.Struct(nu))
	assert.Equal(t, usernameOrEmailTag, tags["username"])
	assert.Equal(t, usernameOrEmailTag, tags["email"])
}

func Test_allRolesValidation(t *testing.T) {
	nu := NewUser{
		Name:            "Awe Lmao",
		Username:        "awelmao",
		Password:        "G00d&pr0per",
		PasswordConfirm: "G00d&pr0per",
		Roles:           []string{"superhero:"},
	}
	tags := validationTags(t, core.Validate.Struct(nu))
	assert.Equal(t, allRolesTag, tags["roles"])

	nu.Roles = AdminRoles
	assert.NoError(t, core.Validate.Struct(nu))
}
