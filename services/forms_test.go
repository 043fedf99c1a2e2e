package services

import (
	"strings"
	"testing"

	"taskdesk/taskdesk/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeTaskForm(t *testing.T) {
	tests := []struct {
		name        string
		title       string
		description string
		priority    string
		wantErr     []string
		want        models.TaskFields
	}{
		{
			name:        "valid with priority",
			title:       "  Buy milk ",
			description: "2%",
			priority:    "Low",
			want:        models.TaskFields{Title: "Buy milk", Description: "2%", Priority: models.PriorityLow},
		},
		{
			name:        "priority may be empty",
			title:       "Call mom",
			description: "Sunday",
			want:        models.TaskFields{Title: "Call mom", Description: "Sunday", Priority: models.PriorityUnset},
		},
		{
			name:        "whitespace title is missing",
			title:       "   ",
			description: "x",
			wantErr:     []string{"title"},
		},
		{
			name:        "title too long",
			title:       strings.Repeat("a", 101),
			description: "x",
			wantErr:     []string{"title"},
		},
		{
			name:        "description too long",
			title:       "ok",
			description: strings.Repeat("d", 501),
			wantErr:     []string{"description"},
		},
		{
			name:     "everything wrong",
			priority: "Urgent",
			wantErr:  []string{"title", "description", "priority"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeTaskForm(tt.title, tt.description, tt.priority)
			if len(tt.wantErr) == 0 {
				require.NoError(t, err)
				assert.Equal(t, tt.want, got)
				return
			}

			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.ErrorIs(t, err, ErrValidation)
			assert.Len(t, ve.Fields, len(tt.wantErr))
			for _, field := range tt.wantErr {
				assert.Contains(t, ve.Fields, field)
			}
		})
	}
}

func TestNormalizeTaskForm_BoundaryLengths(t *testing.T) {
	fields, err := NormalizeTaskForm(strings.Repeat("t", 100), strings.Repeat("d", 500), "High")
	require.NoError(t, err)
	assert.Len(t, fields.Title, 100)
	assert.Len(t, fields.Description, 500)
}

func TestNormalizeTaskUpdate_OmittedFieldsStayNil(t *testing.T) {
	update, err := NormalizeTaskUpdate(nil, nil, nil)
	require.NoError(t, err)
	assert.True(t, update.IsEmpty())

	title := " New "
	update, err = NormalizeTaskUpdate(&title, nil, nil)
	require.NoError(t, err)
	require.NotNil(t, update.Title)
	assert.Equal(t, "New", *update.Title)
	assert.Nil(t, update.Description)
	assert.Nil(t, update.Priority)
}

func TestNormalizeTaskUpdate_RejectsBlankProvidedField(t *testing.T) {
	blank := ""
	_, err := NormalizeTaskUpdate(nil, &blank, nil)
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Fields, "description")
}

func TestNormalizeSignupForm(t *testing.T) {
	fields, err := NormalizeSignupForm(" a@x.com ", " A ", " pw1 ")
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", fields.Email)
	assert.Equal(t, "A", fields.Name)
	assert.Equal(t, " pw1 ", fields.Password)

	_, err = NormalizeSignupForm("not-an-email", "", strings.Repeat("p", 73))
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "email must be a valid email", ve.Fields["email"])
	assert.Equal(t, "name is required", ve.Fields["name"])
	assert.Contains(t, ve.Fields, "password")
}

func TestNormalizeSigninForm(t *testing.T) {
	_, err := NormalizeSigninForm("", "")
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Fields, "email")
	assert.Contains(t, ve.Fields, "password")

	fields, err := NormalizeSigninForm("a@x.com", "pw1")
	require.NoError(t, err)
	assert.Equal(t, SigninFields{Email: "a@x.com", Password: "pw1"}, fields)
}

func TestValidationErrorMessageIsSorted(t *testing.T) {
	ve := &ValidationError{}
	ve.add("title", "title is required")
	ve.add("description", "description is required")
	ve.add("title", "ignored second message")

	assert.Equal(t, "validation error: description is required; title is required", ve.Error())
}
