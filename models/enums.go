package models

import "fmt"

// Continent 限定的洲別
type Continent string

const (
	ContinentAfrica       Continent = "Africa"
	ContinentAsia         Continent = "Asia"
	ContinentEurope       Continent = "Europe"
	ContinentNorthAmerica Continent = "North America"
	ContinentSouthAmerica Continent = "South America"
	ContinentAustralia    Continent = "Australia"
	ContinentAntarctica   Continent = "Antarctica"
)

var continents = []Continent{
	ContinentAfrica, ContinentAsia, ContinentEurope, ContinentNorthAmerica,
	ContinentSouthAmerica, ContinentAustralia, ContinentAntarctica,
}

// RoomCategory 聊天室分類
type RoomCategory string

const (
	CategoryAdventure   RoomCategory = "Adventure"
	CategoryBackpacking RoomCategory = "Backpacking"
	CategoryLuxury      RoomCategory = "Luxury"
	CategoryFoodTour    RoomCategory = "Food Tour"
	CategoryCultural    RoomCategory = "Cultural"
	CategoryBeach       RoomCategory = "Beach"
	CategoryCityBreak   RoomCategory = "City Break"
	CategoryRoadTrip    RoomCategory = "Road Trip"
)

var roomCategories = []RoomCategory{
	CategoryAdventure, CategoryBackpacking, CategoryLuxury, CategoryFoodTour,
	CategoryCultural, CategoryBeach, CategoryCityBreak, CategoryRoadTrip,
}

// DestinationCategory 旅遊指南分類
type DestinationCategory string

const (
	DestinationHotels        DestinationCategory = "Hotels"
	DestinationThingsToDo    DestinationCategory = "Things to Do"
	DestinationRestaurants   DestinationCategory = "Restaurants"
	DestinationTravelStories DestinationCategory = "Travel Stories"
)

var destinationCategories = []DestinationCategory{
	DestinationHotels, DestinationThingsToDo, DestinationRestaurants, DestinationTravelStories,
}

// Expense 花費等級
type Expense string

const (
	ExpenseBudget   Expense = "Budget"
	ExpenseMidRange Expense = "Mid-range"
	ExpenseLuxury   Expense = "Luxury"
)

var expenses = []Expense{ExpenseBudget, ExpenseMidRange, ExpenseLuxury}

// MessageKind 聊天室訊息類型
type MessageKind string

const (
	KindText  MessageKind = "text"
	KindPoll  MessageKind = "poll"
	KindTip   MessageKind = "tip"
	KindJoin  MessageKind = "join"
	KindLeave MessageKind = "leave"
)

// InvalidEnumError is returned when a categorical field holds a value
// outside its closed set.
type InvalidEnumError struct {
	Field string
	Value string
}

func (e *InvalidEnumError) Error() string {
	return fmt.Sprintf("invalid %s: %q", e.Field, e.Value)
}

func parseEnum[T ~string](field, value string, allowed []T) (T, error) {
	for _, v := range allowed {
		if string(v) == value {
			return v, nil
		}
	}
	var zero T
	return zero, &InvalidEnumError{Field: field, Value: value}
}

func ParseContinent(s string) (Continent, error) {
	return parseEnum("continent", s, continents)
}

func ParseRoomCategory(s string) (RoomCategory, error) {
	return parseEnum("category", s, roomCategories)
}

func ParseDestinationCategory(s string) (DestinationCategory, error) {
	return parseEnum("category", s, destinationCategories)
}

func ParseExpense(s string) (Expense, error) {
	return parseEnum("expense", s, expenses)
}

func (c Continent) Valid() bool {
	_, err := ParseContinent(string(c))
	return err == nil
}

func (c RoomCategory) Valid() bool {
	_, err := ParseRoomCategory(string(c))
	return err == nil
}

func (c DestinationCategory) Valid() bool {
	_, err := ParseDestinationCategory(string(c))
	return err == nil
}

func (e Expense) Valid() bool {
	_, err := ParseExpense(string(e))
	return err == nil
}

