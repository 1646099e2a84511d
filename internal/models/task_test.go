package models

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTaskStatus(t *testing.T) {
	tests := []struct {
		name    string
		code    int
		want    TaskStatus
		wantErr bool
	}{
		{name: "to do", code: 0, want: TaskStatusToDo},
		{name: "in work", code: 1, want: TaskStatusInWork},
		{name: "complete", code: 2, want: TaskStatusComplete},
		{name: "out of range", code: 99, wantErr: true},
		{name: "negative", code: -1, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTaskStatus(tt.code)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrInvalidInput))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTaskStatus_String(t *testing.T) {
	assert.Equal(t, "TO_DO", TaskStatusToDo.String())
	assert.Equal(t, "IN_WORK", TaskStatusInWork.String())
	assert.Equal(t, "COMPLETE", TaskStatusComplete.String())
	assert.Equal(t, "TaskStatus(7)", TaskStatus(7).String())
}

func TestUser_HashNeverSerialized(t *testing.T) {
	u := User{ID: 1, Name: "alice", PasswordHash: "$2a$10$secret"}

	data, err := json.Marshal(u)
	require.NoError(t, err)

	assert.NotContains(t, string(data), "secret")
	assert.NotContains(t, string(data), "password")
}

func TestTask_StatusIsIntegerOnWire(t *testing.T) {
	task := Task{ID: 3, Title: "buy milk", Status: TaskStatusComplete, UserID: 1}

	data, err := json.Marshal(task)
	require.NoError(t, err)

	assert.Contains(t, string(data), `"status":2`)
	assert.Contains(t, string(data), `"content":null`)
}
