package validators

import (
	"testing"

	"travelmate/backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateChatRoomRequestRequiredFields(t *testing.T) {
	err := Struct(models.CreateChatRoomRequest{Name: "Tokyo Squad"})
	require.Error(t, err)

	var verrs ValidationErrors
	require.ErrorAs(t, err, &verrs)
	fields := map[string]bool{}
	for _, e := range verrs {
		fields[e.Field] = true
	}
	assert.True(t, fields["Description"])
	assert.True(t, fields["Destination"])
	assert.True(t, fields["Creator"])
	assert.True(t, fields["CreatorName"])
	assert.False(t, fields["Name"])
}

func TestEnumValidation(t *testing.T) {
	req := models.CreateChatRoomRequest{
		Name: "n", Description: "d", Destination: "Lima",
		Creator: "a@x.com", CreatorName: "A",
		Continent: "Atlantis",
	}
	err := Struct(req)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Atlantis")

	req.Continent = models.ContinentSouthAmerica
	req.Category = models.CategoryFoodTour
	assert.NoError(t, Struct(req))

	req.Category = "Spa"
	assert.Error(t, Struct(req))
}

func TestDestinationRequest(t *testing.T) {
	req := models.CreateDestinationRequest{
		Name:      "Kyoto",
		Details:   "Temples",
		Continent: models.ContinentAsia,
		Expense:   models.ExpenseBudget,
		Images:    []string{"https://img.example.com/kyoto.jpg"},
	}
	assert.NoError(t, Struct(req))

	req.Images = []string{"not a url"}
	assert.Error(t, Struct(req))

	req.Images = nil
	req.Continent = ""
	assert.Error(t, Struct(req))
}
