// internal/storage/storage.go
package storage

import (
	"context"

	"github.com/rovshanmuradov/nft-marketplace/internal/storage/models"
)

// Storage определяет интерфейс журнала маркетплейса
type Storage interface {
	// Транзакции
	SaveTransaction(ctx context.Context, tx *models.Transaction) error
	GetTransaction(ctx context.Context, signature string) (*models.Transaction, error)
	ListTransactions(ctx context.Context, walletAddress string, limit, offset int) ([]*models.Transaction, error)
	UpdateTransactionStatus(ctx context.Context, signature string, status string, errorMsg string) error

	// Снимки листингов
	SaveListingSnapshots(ctx context.Context, snapshots []*models.ListingSnapshot) error
	GetListingSnapshot(ctx context.Context, mint string) (*models.ListingSnapshot, error)

	// Миграции
	RunMigrations() error
	Close() error
}
