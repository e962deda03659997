package services

import (
	"context"
	"errors"
	"time"

	"travelmate/backend/cache"
	"travelmate/backend/database"
	"travelmate/backend/logger"
	"travelmate/backend/models"
	"travelmate/backend/validators"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const destinationTTL = 10 * time.Minute

// DestinationService serves the destination guide. Single entries are read
// through the cache; listings always hit the store.
type DestinationService struct {
	repo  DestinationRepository
	cache cache.Cache
	log   *logger.Logger
}

func NewDestinationService(repo DestinationRepository, c cache.Cache, log *logger.Logger) *DestinationService {
	return &DestinationService{repo: repo, cache: c, log: log}
}

func destinationKey(id primitive.ObjectID) string {
	return "destination:" + id.Hex()
}

func (s *DestinationService) List(ctx context.Context, f models.DestinationFilter) ([]models.Destination, error) {
	return s.repo.List(ctx, f)
}

func (s *DestinationService) Get(ctx context.Context, id string) (*models.Destination, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrInvalidID
	}

	var cached models.Destination
	err = s.cache.Get(ctx, destinationKey(oid), &cached)
	if err == nil {
		return &cached, nil
	}
	if !errors.Is(err, cache.ErrMiss) {
		s.log.WithContext(ctx).WithError(err).Warn("Destination cache read failed")
	}

	d, err := s.repo.FindByID(ctx, oid)
	if errors.Is(err, database.ErrNotFound) {
		return nil, ErrDestinationNotFound
	}
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, destinationKey(oid), d, destinationTTL); err != nil {
		s.log.WithContext(ctx).WithError(err).Warn("Destination cache write failed")
	}
	return d, nil
}

func (s *DestinationService) Create(ctx context.Context, req models.CreateDestinationRequest) (*models.Destination, error) {
	if err := validators.Struct(req); err != nil {
		return nil, err
	}

	now := time.Now()
	d := &models.Destination{
		Name:        req.Name,
		Details:     req.Details,
		WhatToDo:    orEmpty(req.WhatToDo),
		PackingList: orEmpty(req.PackingList),
		Images:      orEmpty(req.Images),
		Category:    req.Category,
		Continent:   req.Continent,
		Expense:     req.Expense,
		Tags:        orEmpty(req.Tags),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if d.Category == "" {
		d.Category = models.DestinationThingsToDo
	}
	if d.Expense == "" {
		d.Expense = models.ExpenseMidRange
	}

	if err := s.repo.Insert(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

func (s *DestinationService) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrInvalidID
	}
	if err := s.repo.Delete(ctx, oid); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return ErrDestinationNotFound
		}
		return err
	}
	if err := s.cache.Delete(ctx, destinationKey(oid)); err != nil {
		s.log.WithContext(ctx).WithError(err).Warn("Destination cache invalidation failed")
	}
	return nil
}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
