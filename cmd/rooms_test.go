package cmd

import (
	"bytes"
	"testing"
	"time"

	"travelmate/backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestPrintRooms(t *testing.T) {
	var buf bytes.Buffer
	rooms := []models.ChatRoom{{
		ID:          primitive.NewObjectID(),
		Name:        "Tokyo Squad",
		Destination: "Tokyo",
		Members:     []models.Member{{Email: "a@x.com"}},
		MaxMembers:  5,
		CreatedAt:   time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
	}}
	require.NoError(t, printRooms(&buf, rooms))

	out := buf.String()
	assert.Contains(t, out, "DESTINATION")
	assert.Contains(t, out, "Tokyo Squad")
	assert.Contains(t, out, "1/5")
	assert.Contains(t, out, "2026-03-01")
}

func TestCommandsAreRegistered(t *testing.T) {
	cmd, _, err := rootCmd.Find([]string{"rooms", "list"})
	require.NoError(t, err)
	assert.Equal(t, "list", cmd.Name())
	assert.NotNil(t, cmd.Flags().Lookup("destination"))

	cmd, _, err = rootCmd.Find([]string{"serve"})
	require.NoError(t, err)
	assert.Equal(t, "serve", cmd.Name())
}
