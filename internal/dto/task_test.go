package dto

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/taskmanager-api/internal/models"
)

func TestTotalPages(t *testing.T) {
	tests := []struct {
		total int64
		limit int
		want  int
	}{
		{0, 10, 0},
		{1, 10, 1},
		{10, 10, 1},
		{11, 10, 2},
		{25, 7, 4},
		{5, 0, 0},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, TotalPages(tt.total, tt.limit), "total=%d limit=%d", tt.total, tt.limit)
	}
}

func TestToTaskListResponse_EmptyIsArray(t *testing.T) {
	resp := ToTaskListResponse(nil, 1, 10, 0)

	body, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.JSONEq(t, `{"tasks":[],"pagination":{"page":1,"limit":10,"total":0,"totalPages":0}}`, string(body))
}

func TestToPublicUser_OmitsPassword(t *testing.T) {
	user := models.User{
		ID:           "u-1",
		Name:         "Alice",
		Email:        "a@x.com",
		PasswordHash: "$2a$10$secret",
		CreatedAt:    time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
	}

	body, err := json.Marshal(ToPublicUser(user))
	require.NoError(t, err)

	assert.NotContains(t, string(body), "secret")
	assert.NotContains(t, string(body), "password")
	assert.JSONEq(t, `{"id":"u-1","name":"Alice","email":"a@x.com","createdAt":"2024-01-02T03:04:05Z"}`, string(body))
}
