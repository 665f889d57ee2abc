package main

import (
	"context"
	"database/sql"
	"errors"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maktabuz/maktab/core/access"
	"github.com/maktabuz/maktab/core/user"
	inmemdb "github.com/maktabuz/maktab/storage/database/inmem"
)

func newTestCLI() *commandLine {
	return &commandLine{
		usrRepo: inmemdb.NewUserRepository(inmemdb.NewDB()),
	}
}

func mockPassword(t *testing.T, pwd string) {
	t.Helper()
	orig := readPasswordFunc
	readPasswordFunc = func(int) ([]byte, error) { return []byte(pwd), nil }
	t.Cleanup(func() { readPasswordFunc = orig })
}

func TestRunUsage(t *testing.T) {
	cli := newTestCLI()

	for _, args := range [][]string{
		{"admin"},
		{"admin", "nope"},
		{"admin", "adduser"},
		{"admin", "adduser", "-username", "x"},
		{"admin", "resetpassword"},
		{"admin", "adduser", "-username", "x", "-email", "x@test.uz", "-role", "boss"},
	} {
		assert.True(t, errors.Is(cli.run(args), errHelp), "args: %v", args)
	}
}

func TestRunAddUser(t *testing.T) {
	ctx := context.Background()
	cli := newTestCLI()
	mockPassword(t, "Sekret!pwd1")

	err := cli.run([]string{"admin", "adduser", "-username", "Boss", "-email", "Boss@Test.uz"})
	require.NoError(t, err)

	usr, err := cli.usrRepo.GetUser(ctx, user.GetFilter{Username: "boss"})
	require.NoError(t, err)
	assert.Equal(t, "boss@test.uz", usr.Email)
	assert.Equal(t, access.RoleAdmin, usr.Role)
	assert.True(t, usr.Active())
	assert.NoError(t, usr.CheckPassword("Sekret!pwd1"))

	t.Run("existing user is updated, not duplicated", func(t *testing.T) {
		mockPassword(t, "NewSekret!2")
		err := cli.run([]string{"admin", "adduser", "-username", "boss", "-email", "new@test.uz", "-role", "teacher"})
		require.NoError(t, err)

		usr, err := cli.usrRepo.GetUser(ctx, user.GetFilter{Username: "boss"})
		require.NoError(t, err)
		assert.Equal(t, "new@test.uz", usr.Email)
		assert.NoError(t, usr.CheckPassword("NewSekret!2"))
		// role is not changed on update
		assert.Equal(t, access.RoleAdmin, usr.Role)
	})
}

func TestRunResetPassword(t *testing.T) {
	ctx := context.Background()
	cli := newTestCLI()

	mockPassword(t, "Sekret!pwd1")
	require.NoError(t, cli.run([]string{"admin", "adduser", "-username", "boss", "-email", "boss@test.uz"}))

	mockPassword(t, "Changed!pwd2")
	require.NoError(t, cli.run([]string{"admin", "resetpassword", "-username", "boss@test.uz"}))

	usr, err := cli.usrRepo.GetUser(ctx, user.GetFilter{Username: "boss"})
	require.NoError(t, err)
	assert.NoError(t, usr.CheckPassword("Changed!pwd2"))

	t.Run("unknown user", func(t *testing.T) {
		mockPassword(t, "whatever1!")
		assert.Error(t, cli.run([]string{"admin", "resetpassword", "-username", "ghost"}))
	})
}

func TestRunMigrate(t *testing.T) {
	var gotCommand string
	var gotArgs []string
	orig := gooseRunFunc
	gooseRunFunc = func(command string, db *sql.DB, fsys fs.FS, dir string, args ...string) error {
		gotCommand = command
		gotArgs = args
		return nil
	}
	t.Cleanup(func() { gooseRunFunc = orig })

	cli := newTestCLI()

	require.NoError(t, cli.run([]string{"admin", "migrate"}))
	assert.Equal(t, "up", gotCommand)
	assert.Empty(t, gotArgs)

	require.NoError(t, cli.run([]string{"admin", "migrate", "down-to", "3"}))
	assert.Equal(t, "down-to", gotCommand)
	assert.Equal(t, []string{"3"}, gotArgs)
}
