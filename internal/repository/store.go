// Package repository defines the persistence contract shared by the MongoDB and
// in-memory stores.
package repository

import (
	"context"
	"errors"

	"github.com/jobh/imoveis/internal/domain/models"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("record not found")

// Store persists owners, rentals, occurrences and settings.
type Store interface {
	SaveOwner(ctx context.Context, owner models.Owner) error
	GetOwner(ctx context.Context, id string) (models.Owner, error)
	ListOwners(ctx context.Context) ([]models.Owner, error)
	DeleteOwner(ctx context.Context, id string) error

	SaveRental(ctx context.Context, rental models.Rental) error
	GetRental(ctx context.Context, id string) (models.Rental, error)
	ListRentals(ctx context.Context, filter models.RentalFilter) ([]models.Rental, error)
	DeleteRental(ctx context.Context, id string) error
	DeleteRentals(ctx context.Context, filter models.RentalFilter) (int64, error)

	SaveOccurrence(ctx context.Context, occurrence models.Occurrence) error
	GetOccurrence(ctx context.Context, id string) (models.Occurrence, error)
	ListOccurrences(ctx context.Context) ([]models.Occurrence, error)

	GetPixConfig(ctx context.Context) (*models.PixConfig, error)
	SavePixConfig(ctx context.Context, cfg models.PixConfig) error

	// ReplaceAll swaps the whole state for the snapshot contents.
	ReplaceAll(ctx context.Context, snapshot models.Snapshot) error
}
