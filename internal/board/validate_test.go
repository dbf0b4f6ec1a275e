package board

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateDescription(t *testing.T) {
	assert.NoError(t, ValidateDescription("fix my fence, paint included"))
	assert.NoError(t, ValidateDescription(strings.Repeat("x", MaxDescriptionLen)))

	err := ValidateDescription("")
	ve, ok := AsValidation(err)
	require.True(t, ok)
	assert.Contains(t, ve.Reason, "empty")

	err = ValidateDescription(strings.Repeat("x", MaxDescriptionLen+1))
	_, ok = AsValidation(err)
	assert.True(t, ok)
}

func TestValidateDescriptionCountsRunes(t *testing.T) {
	// 500 multibyte characters are within the limit even though the byte
	// length is far over it.
	assert.NoError(t, ValidateDescription(strings.Repeat("ї", MaxDescriptionLen)))
}

func TestValidateContact(t *testing.T) {
	cases := []struct {
		contact string
		ok      bool
	}{
		{"", true},
		{"0671234567", true},
		{"+380671234567", true},
		{"@handyman", true},
		{"@ab", false},
		{"067123456", false},
		{"+3806712345678", false},
		{"call me maybe", false},
		{"handyman", false},
	}
	for _, tc := range cases {
		err := ValidateContact(tc.contact)
		if tc.ok {
			assert.NoError(t, err, "contact %q", tc.contact)
		} else {
			assert.Error(t, err, "contact %q", tc.contact)
		}
	}
}

func TestEditableAt(t *testing.T) {
	window := 15 * time.Minute
	created := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	l := Listing{CreatedAt: created}

	assert.True(t, l.EditableAt(created.Add(14*time.Minute+59*time.Second), window))
	assert.False(t, l.EditableAt(created.Add(15*time.Minute), window))
	assert.False(t, l.EditableAt(created.Add(15*time.Minute+1*time.Second), window))
}

func TestParseKind(t *testing.T) {
	k, ok := ParseKind("job")
	require.True(t, ok)
	assert.Equal(t, KindJob, k)

	k, ok = ParseKind("service")
	require.True(t, ok)
	assert.Equal(t, KindService, k)

	_, ok = ParseKind("banana")
	assert.False(t, ok)
}
