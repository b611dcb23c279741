package teacher

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/shule/core"
)

func TestNewTeacher_Validate(t *testing.T) {
	newValid := func() NewTeacher {
		return NewTeacher{
			EmployeeNo:      "EMP-001",
			FirstName:       " John ",
			LastName:        "Doe",
			Email:           "John@School.Test",
			PrimarySubjects: []string{"sub-1"},
		}
	}

	t.Run("valid", func(t *testing.T) {
		nt := newValid()
		require.NoError(t, nt.Validate())

		// inputs are cleaned in place
		assert.Equal(t, "emp-001", nt.EmployeeNo)
		assert.Equal(t, "John", nt.FirstName)
		assert.Equal(t, "john@school.test", nt.Email)
	})

	t.Run("empty primary subjects", func(t *testing.T) {
		tests := []struct {
			name     string
			subjects []string
		}{
			{name: "nil", subjects: nil},
			{name: "empty slice", subjects: []string{}},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				nt := newValid()
				nt.PrimarySubjects = tt.subjects

				err := nt.Validate()
				require.Error(t, err)

				var vErr *core.ValidationError
				require.True(t, errors.As(err, &vErr))
				require.Len(t, vErr.Fields, 1)
				assert.Equal(t, "primary_subjects", vErr.Fields[0].Field)
				assert.Equal(t, "At least one primary subject is required", vErr.Fields[0].Error)
			})
		}
	})

	t.Run("missing required fields", func(t *testing.T) {
		nt := newValid()
		nt.EmployeeNo = ""
		nt.Email = "not-an-email"
		assert.Error(t, nt.Validate())
	})
}
