package api_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/rongwang/timesheet-server/internal/api/testutils"
	"github.com/rongwang/timesheet-server/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDashboard_NoTimesheets(t *testing.T) {
	testCtx := testutils.SetupTestContext(t)
	defer testutils.CleanupTestContext(testCtx)

	w := testutils.PerformRequest(
		testCtx.Router,
		http.MethodGet,
		"/api/dashboard",
		nil,
		testutils.AuthHeaders(testCtx.TestUserJWT),
	)
	require.Equal(t, http.StatusOK, w.Code)

	var dash models.DashboardResponse
	testutils.DecodeJSON(t, w, &dash)
	now := time.Now()
	assert.Equal(t, int(now.Month()), dash.Month)
	assert.Equal(t, now.Year(), dash.Year)
	assert.Nil(t, dash.CurrentTimesheet)
	assert.Empty(t, dash.RecentTimesheets)
	assert.True(t, dash.CurrentTotal.IsZero())
	assert.True(t, dash.PreviousTotal.IsZero())
	assert.True(t, dash.AverageDailyHours.IsZero())
}

func TestDashboard_PeriodStatistics(t *testing.T) {
	testCtx := testutils.SetupTestContext(t)
	defer testutils.CleanupTestContext(testCtx)

	setRate(t, testCtx, testCtx.TestUserJWT, "10")
	jan := createTimesheet(t, testCtx, testCtx.TestUserJWT, 1, 2024)
	// February is created strictly after January
	time.Sleep(5 * time.Millisecond)
	feb := createTimesheet(t, testCtx, testCtx.TestUserJWT, 2, 2024)

	addEntry(t, testCtx, testCtx.TestUserJWT, jan.ID, "2024-01-01", "3", "")
	addEntry(t, testCtx, testCtx.TestUserJWT, feb.ID, "2024-01-01", "2", "")
	addEntry(t, testCtx, testCtx.TestUserJWT, feb.ID, "2024-01-02", "4", "")

	w := testutils.PerformRequest(
		testCtx.Router,
		http.MethodGet,
		"/api/dashboard?month=2&year=2024",
		nil,
		testutils.AuthHeaders(testCtx.TestUserJWT),
	)
	require.Equal(t, http.StatusOK, w.Code)

	var dash models.DashboardResponse
	testutils.DecodeJSON(t, w, &dash)
	require.NotNil(t, dash.CurrentTimesheet)
	assert.Equal(t, feb.ID, dash.CurrentTimesheet.ID)
	assert.Equal(t, "60", dash.CurrentTotal.String())
	assert.Equal(t, "30", dash.PreviousTotal.String())
	assert.Equal(t, "4.5", dash.AverageDailyHours.String())
	require.Len(t, dash.RecentTimesheets, 2)
	assert.Equal(t, feb.ID, dash.RecentTimesheets[0].ID)
	assert.Equal(t, jan.ID, dash.RecentTimesheets[1].ID)
}

func TestDashboard_RecentIsCapped(t *testing.T) {
	testCtx := testutils.SetupTestContext(t)
	defer testutils.CleanupTestContext(testCtx)

	for month := 1; month <= 8; month++ {
		createTimesheet(t, testCtx, testCtx.TestUserJWT, month, 2023)
	}

	w := testutils.PerformRequest(
		testCtx.Router,
		http.MethodGet,
		"/api/dashboard?month=8&year=2023",
		nil,
		testutils.AuthHeaders(testCtx.TestUserJWT),
	)
	require.Equal(t, http.StatusOK, w.Code)

	var dash models.DashboardResponse
	testutils.DecodeJSON(t, w, &dash)
	require.Len(t, dash.RecentTimesheets, 6)
	assert.Equal(t, 8, dash.RecentTimesheets[0].Month)
	assert.Equal(t, 3, dash.RecentTimesheets[5].Month)
}

func TestDashboard_InvalidQuery(t *testing.T) {
	testCtx := testutils.SetupTestContext(t)
	defer testutils.CleanupTestContext(testCtx)

	for _, query := range []string{"?month=abc", "?month=13&year=2024", "?year=-1"} {
		w := testutils.PerformRequest(
			testCtx.Router,
			http.MethodGet,
			"/api/dashboard"+query,
			nil,
			testutils.AuthHeaders(testCtx.TestUserJWT),
		)
		assert.Equal(t, http.StatusBadRequest, w.Code, query)
	}
}
