package models

// All lists every model for AutoMigrate, in dependency order.
func All() []interface{} {
	return []interface{}{&User{}, &Gig{}, &Bid{}}
}
