package services_test

import (
	"context"
	"testing"

	"travelmate/backend/cache"
	"travelmate/backend/database"
	"travelmate/backend/logger"
	"travelmate/backend/models"
	"travelmate/backend/services"
	"travelmate/backend/services/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/mock/gomock"
)

func newDestinationService(t *testing.T) (*mocks.MockDestinationRepository, *services.DestinationService) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockDestinationRepository(ctrl)
	c, err := cache.NewLRUCache(16)
	require.NoError(t, err)
	return repo, services.NewDestinationService(repo, c, logger.Nop())
}

func TestDestinationGetIsCached(t *testing.T) {
	repo, svc := newDestinationService(t)
	d := &models.Destination{ID: primitive.NewObjectID(), Name: "Kyoto", Continent: models.ContinentAsia}

	repo.EXPECT().FindByID(gomock.Any(), d.ID).Return(d, nil).Times(1)

	first, err := svc.Get(context.Background(), d.ID.Hex())
	require.NoError(t, err)
	second, err := svc.Get(context.Background(), d.ID.Hex())
	require.NoError(t, err)

	assert.Equal(t, "Kyoto", first.Name)
	assert.Equal(t, first.ID, second.ID)
}

func TestDestinationDeleteInvalidatesCache(t *testing.T) {
	repo, svc := newDestinationService(t)
	d := &models.Destination{ID: primitive.NewObjectID(), Name: "Kyoto"}

	gomock.InOrder(
		repo.EXPECT().FindByID(gomock.Any(), d.ID).Return(d, nil),
		repo.EXPECT().Delete(gomock.Any(), d.ID).Return(nil),
		repo.EXPECT().FindByID(gomock.Any(), d.ID).Return(nil, database.ErrNotFound),
	)

	_, err := svc.Get(context.Background(), d.ID.Hex())
	require.NoError(t, err)
	require.NoError(t, svc.Delete(context.Background(), d.ID.Hex()))

	_, err = svc.Get(context.Background(), d.ID.Hex())
	assert.ErrorIs(t, err, services.ErrDestinationNotFound)
}

func TestDestinationGetInvalidID(t *testing.T) {
	_, svc := newDestinationService(t)
	_, err := svc.Get(context.Background(), "kyoto")
	assert.ErrorIs(t, err, services.ErrInvalidID)
}

func TestDestinationCreateDefaults(t *testing.T) {
	repo, svc := newDestinationService(t)
	repo.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(nil)

	d, err := svc.Create(context.Background(), models.CreateDestinationRequest{
		Name: "Lisbon", Details: "Hills and trams", Continent: models.ContinentEurope,
	})

	require.NoError(t, err)
	assert.Equal(t, models.DestinationThingsToDo, d.Category)
	assert.Equal(t, models.ExpenseMidRange, d.Expense)
	assert.Equal(t, []string{}, d.Tags)
}

func TestDestinationCreateRejectsMissingContinent(t *testing.T) {
	_, svc := newDestinationService(t)
	_, err := svc.Create(context.Background(), models.CreateDestinationRequest{Name: "Lisbon", Details: "x"})
	assert.Error(t, err)
}
