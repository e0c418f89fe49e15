package docs

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saturnino-fabrica-de-software/chamada/internal/domain"
)

func TestIdentityKeyExamplesMatchKeyFormat(t *testing.T) {
	for _, v := range []any{RegisterStudentResponse{}, AttendanceRecordResponse{}} {
		typ := reflect.TypeOf(v)
		field, ok := typ.FieldByName("IdentityKey")
		require.True(t, ok, typ.Name())

		example := field.Tag.Get("example")
		parts, err := domain.ParseIdentityKey(example)
		require.NoError(t, err, typ.Name())
		assert.Equal(t, domain.NewIdentityKey(parts.RollNo, parts.Semester, parts.Name, parts.Branch), domain.IdentityKey(example), typ.Name())
	}
}
