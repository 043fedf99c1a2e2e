package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewEvent(t *testing.T) {
	testCases := []struct {
		name    string
		event   string
		entity  string
		actorID uint
		data    interface{}
		wantErr bool
	}{
		{
			name:    "Valid event",
			event:   "task.created",
			entity:  "task",
			actorID: 7,
			data:    map[string]interface{}{"task_id": 1},
			wantErr: false,
		},
		{
			name:    "Invalid JSON data",
			event:   "task.created",
			entity:  "task",
			data:    make(chan int),
			wantErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			event, err := NewEvent(tc.event, tc.entity, tc.actorID, tc.data)
			if tc.wantErr {
				assert.Error(t, err)
				assert.Nil(t, event)
				return
			}

			assert.NoError(t, err)
			assert.Equal(t, tc.event, event.Event)
			assert.Equal(t, tc.entity, event.Entity)
			assert.Equal(t, tc.actorID, event.ActorID)
			assert.Equal(t, 1, event.Version)
			assert.False(t, event.Timestamp.IsZero())
			assert.JSONEq(t, `{"task_id":1}`, string(event.Data))
		})
	}
}

func TestFromEvent(t *testing.T) {
	event, err := NewEvent("task.resolved", "task", 3, map[string]interface{}{"task_id": 9})
	assert.NoError(t, err)

	msg := FromEvent(event)
	assert.Equal(t, EventMessage, msg.Type)
	assert.Equal(t, "task.resolved", msg.Event)
	assert.NotEmpty(t, msg.ID)

	raw, err := json.Marshal(msg)
	assert.NoError(t, err)
	assert.Contains(t, string(raw), `"payload":{"task_id":9}`)
}
