package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Destination 旅遊指南條目
type Destination struct {
	ID          primitive.ObjectID  `bson:"_id,omitempty" json:"id,omitempty"`
	Name        string              `bson:"name" json:"name"`
	Details     string              `bson:"details" json:"details"`
	WhatToDo    []string            `bson:"whatToDo" json:"whatToDo"`
	PackingList []string            `bson:"packingList" json:"packingList"`
	Images      []string            `bson:"images" json:"images"`
	Category    DestinationCategory `bson:"category" json:"category"`
	Continent   Continent           `bson:"continent" json:"continent"`
	Expense     Expense             `bson:"expense" json:"expense"`
	Tags        []string            `bson:"tags" json:"tags"`
	CreatedAt   time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time           `bson:"updatedAt" json:"updatedAt"`
}

// CreateDestinationRequest 新增旅遊指南條目的請求體
type CreateDestinationRequest struct {
	Name        string              `json:"name" validate:"required,max=60"`
	Details     string              `json:"details" validate:"required"`
	WhatToDo    []string            `json:"whatToDo,omitempty"`
	PackingList []string            `json:"packingList,omitempty"`
	Images      []string            `json:"images,omitempty" validate:"omitempty,dive,url"`
	Category    DestinationCategory `json:"category,omitempty" validate:"omitempty,destination_category"`
	Continent   Continent           `json:"continent" validate:"required,continent"`
	Expense     Expense             `json:"expense,omitempty" validate:"omitempty,expense"`
	Tags        []string            `json:"tags,omitempty"`
}

// DestinationFilter holds the listing filters of GET /destinations.
type DestinationFilter struct {
	Query     string
	Category  DestinationCategory
	Continent Continent
	Expense   Expense
}
