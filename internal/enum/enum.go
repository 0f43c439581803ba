// Package enum centralizes the string constants shared across packages:
// menu categories, staff roles, persistence section keys and websocket
// event types.
package enum

// Menu categories.
const (
	CategoryStarters   = "STARTERS"
	CategoryMainDishes = "MAIN_DISHES"
	CategoryDesserts   = "DESSERTS"
	CategoryDrinks     = "DRINKS"
	CategoryMenuOfDay  = "MENU_OF_DAY"
)

// Staff roles.
const (
	UserRoleAdmin   = "ADMIN"
	UserRoleWaiter  = "WAITER"
	UserRoleKitchen = "KITCHEN"
)

// Table number bands. Physical tables are 1..29, the terrace runs 30..59
// and takeaway orders get slots from 100 up.
const (
	TableBandRegularMax = 29
	TableBandTerraceMax = 59
	TableBandTakeaway   = 100
)

// Table zones derived from the number bands.
const (
	ZoneDining   = "dining"
	ZoneTerrace  = "terrace"
	ZoneTakeaway = "takeaway"
)

// TableZone classifies a table number into its zone.
func TableZone(table int) string {
	switch {
	case table >= TableBandTakeaway:
		return ZoneTakeaway
	case table > TableBandRegularMax && table <= TableBandTerraceMax:
		return ZoneTerrace
	default:
		return ZoneDining
	}
}

// Persistence section keys. Each key maps to one JSON blob in the local
// store and one PUT path on the remote mirror.
const (
	SectionTableOrders       = "table_orders"
	SectionTableHistory      = "table_history"
	SectionTableDiscounts    = "table_discounts"
	SectionKitchenTimestamps = "kitchen_timestamps"
	SectionKitchenCompleted  = "kitchen_completed"
	SectionKitchenComments   = "kitchen_comments"
	SectionMenuItems         = "menu_items"
	SectionDrinkOptions      = "drink_options"
	SectionUsers             = "users"
	SectionAppSettings       = "app_settings"
)

// Websocket event types.
const (
	EventKitchenSent  = "kitchen.sent"
	EventKitchenReady = "kitchen.ready"
	EventTablePaid    = "table.paid"
)
