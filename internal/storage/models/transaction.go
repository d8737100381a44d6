// internal/storage/models/transaction.go
package models

// Transaction statuses.
const (
	StatusConfirmed = "confirmed"
	StatusFailed    = "failed"
	StatusRejected  = "rejected"
)

// Transaction is one buy or withdraw attempt that reached the network or the wallet.
type Transaction struct {
	BaseModel
	Signature     string  `gorm:"index;type:varchar(88)"`
	WalletAddress string  `gorm:"index;not null;type:varchar(44)"`
	Kind          string  `gorm:"not null;type:varchar(20)"`
	Mint          string  `gorm:"index;not null;type:varchar(44)"`
	Listing       string  `gorm:"not null;type:varchar(44)"`
	Seller        string  `gorm:"not null;type:varchar(44)"`
	TokenSymbol   string  `gorm:"type:varchar(16)"`
	TokenMint     string  `gorm:"type:varchar(44)"`
	BasePrice     uint64  `gorm:"not null"`
	Amount        float64 `gorm:"type:decimal(20,9)"`
	Status        string  `gorm:"not null;type:varchar(20)"`
	ErrorMessage  string  `gorm:"type:text"`
	ProgramError  *int
	ExecutionTime float64 `gorm:"type:decimal(10,3)"`
}
