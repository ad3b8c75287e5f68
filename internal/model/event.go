package model

// Event levels
const (
	EventLevelInfo    = "info"
	EventLevelWarning = "warning"
	EventLevelError   = "error"
)

// Event categories
const (
	EventCategoryAuth      = "auth"
	EventCategoryPurchase  = "purchase"
	EventCategoryInventory = "inventory"
	EventCategoryUser      = "user"
	EventCategorySystem    = "system"
)
