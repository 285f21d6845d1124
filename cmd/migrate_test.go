package cmd

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urocare/clinic/internal/model"
)

func TestSplitStatements(t *testing.T) {
	script := "-- header\n\nDROP TABLE IF EXISTS a;\nCREATE TABLE a (\n  id INT\n);\nSELECT 1"
	got := splitStatements(script)
	require.Len(t, got, 3)
	assert.Equal(t, "DROP TABLE IF EXISTS a", got[0])
	assert.Contains(t, got[1], "CREATE TABLE a (")
	assert.Equal(t, "SELECT 1", got[2])
}

func TestSplitStatements_InitMigration(t *testing.T) {
	b, err := os.ReadFile(filepath.Join("..", "migrations", "001_init.sql"))
	require.NoError(t, err)

	got := splitStatements(string(b))
	require.Len(t, got, 4)
	assert.Contains(t, got[2], "CREATE TABLE booking_requests")
	assert.Contains(t, got[3], "CREATE TABLE contact_messages")
}

func TestDemoData_ValidAndCoversStatuses(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	seen := map[model.BookingStatus]bool{}
	for _, b := range demoBookings(now) {
		_, err := uuid.Parse(b.ID)
		require.NoError(t, err)
		assert.True(t, b.Status.Valid())
		seen[b.Status] = true
	}
	assert.Len(t, seen, 4)

	for _, m := range demoMessages(now) {
		_, err := uuid.Parse(m.ID)
		require.NoError(t, err)
	}
}
