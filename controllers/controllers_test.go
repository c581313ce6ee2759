package controllers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStageForLevel(t *testing.T) {
	cases := []struct {
		level int
		stage int
	}{
		{1, 1},
		{4, 1},
		{5, 2},
		{9, 2},
		{10, 3},
		{24, 3},
		{25, 4},
		{39, 4},
		{40, 5},
		{100, 5},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.stage, stageForLevel(tc.level), "level %d", tc.level)
	}
}

func TestSanitizeUsername(t *testing.T) {
	assert.Equal(t, "alice", sanitizeUsername("Alice"))
	assert.Equal(t, "alice_b", sanitizeUsername("alice.b"))
	assert.Equal(t, "a_b_c", sanitizeUsername(" a-b_c "))
	assert.Equal(t, "", sanitizeUsername("日本語"))
	assert.Equal(t, "user42", sanitizeUsername("__user42__"))
}

func TestValidUsername(t *testing.T) {
	assert.True(t, validUsername("alice"))
	assert.True(t, validUsername("Alice-99"))
	assert.False(t, validUsername("ab"))
	assert.False(t, validUsername("has space"))
	assert.False(t, validUsername("semi;colon"))
}

func TestParsePagination(t *testing.T) {
	page, size := parsePagination("", "")
	assert.Equal(t, 1, page)
	assert.Equal(t, 10, size)

	page, size = parsePagination("3", "50")
	assert.Equal(t, 3, page)
	assert.Equal(t, 50, size)

	page, size = parsePagination("-1", "9999")
	assert.Equal(t, 1, page)
	assert.Equal(t, 10, size)
}
