// internal/storage/models/listing.go
package models

import (
	"time"
)

// ListingSnapshot is the last observed state of a listing, keyed by mint.
type ListingSnapshot struct {
	BaseModel
	Mint     string    `gorm:"unique;not null;type:varchar(44)"`
	Listing  string    `gorm:"not null;type:varchar(44)"`
	Seller   string    `gorm:"index;not null;type:varchar(44)"`
	Escrow   string    `gorm:"not null;type:varchar(44)"`
	Price    uint64    `gorm:"not null"`
	LastSeen time.Time `gorm:"index;not null"`
}
