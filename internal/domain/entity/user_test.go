package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUser_BeforeSave_HashesPassword(t *testing.T) {
	user := &User{Username: "student", Email: "s@example.com", Password: "plain-password"}

	require.NoError(t, user.BeforeSave(nil))

	assert.NotEqual(t, "plain-password", user.Password)
	assert.True(t, user.CheckPassword("plain-password"))
	assert.False(t, user.CheckPassword("wrong"))
}

func TestUser_BeforeSave_DoesNotRehash(t *testing.T) {
	user := &User{Password: "plain-password"}
	require.NoError(t, user.BeforeSave(nil))

	hashed := user.Password
	require.NoError(t, user.BeforeSave(nil))

	assert.Equal(t, hashed, user.Password, "уже захешированный пароль не хешируется повторно")
}

func TestUser_Roles(t *testing.T) {
	assert.True(t, (&User{Role: RoleAdmin}).IsAdmin())
	assert.False(t, (&User{Role: RoleTeacher}).IsAdmin())
	assert.False(t, (&User{Role: RoleStudent}).IsAdmin())

	assert.True(t, IsValidRole(RoleStudent))
	assert.True(t, IsValidRole(RoleTeacher))
	assert.True(t, IsValidRole(RoleAdmin))
	assert.False(t, IsValidRole("superuser"))
	assert.False(t, IsValidRole(""))
}

func TestFindOption(t *testing.T) {
	options := []Option{
		{ID: 1, OptionText: "A"},
		{ID: 2, OptionText: "B"},
	}

	found := FindOption(options, 2)
	require.NotNil(t, found)
	assert.Equal(t, "B", found.OptionText)

	assert.Nil(t, FindOption(options, 99))
	assert.Nil(t, FindOption(nil, 1))
}

func TestQuestion_IsAutoGraded(t *testing.T) {
	assert.True(t, (&Question{QuestionType: QuestionTypeMCQ}).IsAutoGraded())
	assert.False(t, (&Question{QuestionType: QuestionTypeText}).IsAutoGraded())
}
