package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPriorityFromString(t *testing.T) {
	testCases := []struct {
		in      string
		want    Priority
		wantErr bool
	}{
		{in: "", want: PriorityUnset},
		{in: "Low", want: PriorityLow},
		{in: "Medium", want: PriorityMedium},
		{in: "High", want: PriorityHigh},
		{in: "low", wantErr: true},
		{in: "Urgent", wantErr: true},
		{in: "unset", wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := PriorityFromString(tc.in)
			if tc.wantErr {
				assert.ErrorIs(t, err, ErrInvalidPriority)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestTaskUpdateIsEmpty(t *testing.T) {
	assert.True(t, TaskUpdate{}.IsEmpty())

	title := "New"
	assert.False(t, TaskUpdate{Title: &title}.IsEmpty())
}

func TestDateLayoutIsHumanReadable(t *testing.T) {
	ts := time.Date(2024, time.March, 5, 14, 7, 9, 0, time.UTC)
	assert.Equal(t, "Tue Mar  5 14:07:09 2024", ts.Format(DateLayout))
}

func TestSessionExpired(t *testing.T) {
	now := time.Now()
	assert.False(t, Session{ExpiresAt: now.Add(time.Minute)}.Expired(now))
	assert.True(t, Session{ExpiresAt: now}.Expired(now))
	assert.True(t, Session{ExpiresAt: now.Add(-time.Minute)}.Expired(now))
}
