package main

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/rongwang/timesheet-server/internal/config"
	"github.com/rongwang/timesheet-server/internal/models"
	"github.com/rongwang/timesheet-server/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func useSQLiteFile(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "data", "timesheets.db")
	t.Setenv("DB_DRIVER", config.DriverSQLite)
	t.Setenv("SQLITE_PATH", path)
	t.Setenv("LOG_LEVEL", "error")
	return path
}

func runCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	root := newRootCmd()
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)

	err := root.Execute()
	return stdout.String(), err
}

func TestMigrateCmd(t *testing.T) {
	path := useSQLiteFile(t)

	_, err := runCmd(t, "migrate")
	require.NoError(t, err)
	assert.FileExists(t, path)

	// Second run finds nothing to do
	_, err = runCmd(t, "migrate")
	require.NoError(t, err)
}

func TestExportCmd(t *testing.T) {
	useSQLiteFile(t)
	ctx := context.Background()

	// Seed through the service against the same database file
	cfg, _, err := setup(&bytes.Buffer{})
	require.NoError(t, err)
	db, svc, err := openService(cfg, utils.NopLogger())
	require.NoError(t, err)

	user, err := svc.SignUp(ctx, models.SignUpRequest{
		Email: "worker@example.com", Password: "password123", ConfirmPassword: "password123", Name: "Worker",
	})
	require.NoError(t, err)
	_, err = svc.UpdateProfile(ctx, user.UserID, models.UpdateProfileRequest{HourlyRate: "10"})
	require.NoError(t, err)
	ts, err := svc.CreateTimesheet(ctx, user.UserID, models.CreateTimesheetRequest{Month: 1, Year: 2024})
	require.NoError(t, err)
	_, err = svc.AddEntry(ctx, user.UserID, ts.Timesheet.ID, models.AddEntryRequest{Date: "2024-01-03", HoursWorked: "2"})
	require.NoError(t, err)
	_, err = svc.AddEntry(ctx, user.UserID, ts.Timesheet.ID, models.AddEntryRequest{Date: "2024-01-01", HoursWorked: "3", Note: "a"})
	require.NoError(t, err)
	require.NoError(t, db.Close())

	out, err := runCmd(t, "export", "--email", "worker@example.com", "--month", "1", "--year", "2024")
	require.NoError(t, err)
	assert.Equal(t, "Date,Hours Worked,Daily Amount,Note\r\n"+
		"2024-01-01,3,30,a\r\n"+
		"2024-01-03,2,20,\r\n"+
		"\r\n"+
		"Total,5,50\r\n", out)

	_, err = runCmd(t, "export", "--email", "worker@example.com", "--month", "2", "--year", "2024")
	assert.Error(t, err)
}

func TestExportCmd_RequiresEmail(t *testing.T) {
	useSQLiteFile(t)

	_, err := runCmd(t, "export", "--month", "1", "--year", "2024")
	assert.Error(t, err)
}

func TestSetup_InvalidConfig(t *testing.T) {
	useSQLiteFile(t)
	t.Setenv("LOG_FORMAT", "xml")

	_, _, err := setup(&bytes.Buffer{})
	assert.Error(t, err)
}
