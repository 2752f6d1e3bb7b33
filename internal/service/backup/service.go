// Package backup exports and restores the whole application state, locally or through
// Google Drive.
package backup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/jobh/imoveis/internal/domain/models"
	"github.com/jobh/imoveis/internal/repository"
)

// SnapshotVersion is written into every exported snapshot.
const SnapshotVersion = "1.0"

// ErrDriveDisabled is returned by the Drive operations when no Drive repository is wired.
var ErrDriveDisabled = errors.New("google drive backup is not configured")

// FileStore keeps whole files by name.
type FileStore interface {
	Upload(ctx context.Context, name string, content []byte) (string, error)
	Download(ctx context.Context, name string) ([]byte, error)
}

// Service moves snapshots between the store and backup files.
type Service struct {
	store    repository.Store
	drive    FileStore
	fileName string
	logger   *zap.Logger
	now      func() time.Time
}

// NewService wires a backup service. drive may be nil.
func NewService(store repository.Store, drive FileStore, fileName string, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:    store,
		drive:    drive,
		fileName: fileName,
		logger:   logger,
		now:      time.Now,
	}
}

// Export reads the whole state into a snapshot.
func (s *Service) Export(ctx context.Context) (models.Snapshot, error) {
	owners, err := s.store.ListOwners(ctx)
	if err != nil {
		return models.Snapshot{}, fmt.Errorf("list owners: %w", err)
	}
	rentals, err := s.store.ListRentals(ctx, models.RentalFilter{})
	if err != nil {
		return models.Snapshot{}, fmt.Errorf("list rentals: %w", err)
	}
	occurrences, err := s.store.ListOccurrences(ctx)
	if err != nil {
		return models.Snapshot{}, fmt.Errorf("list occurrences: %w", err)
	}
	pix, err := s.store.GetPixConfig(ctx)
	if err != nil {
		return models.Snapshot{}, fmt.Errorf("load pix config: %w", err)
	}

	return models.Snapshot{
		Owners:      owners,
		Rentals:     rentals,
		Occurrences: occurrences,
		PixConfig:   pix,
		Version:     SnapshotVersion,
		LastUpdated: s.now().UTC(),
	}, nil
}

// Import replaces the whole state with the snapshot.
func (s *Service) Import(ctx context.Context, snapshot models.Snapshot) error {
	if err := s.store.ReplaceAll(ctx, snapshot); err != nil {
		return fmt.Errorf("replace state: %w", err)
	}
	s.logger.Info("state imported",
		zap.Int("owners", len(snapshot.Owners)),
		zap.Int("rentals", len(snapshot.Rentals)),
		zap.Int("occurrences", len(snapshot.Occurrences)))
	return nil
}

// PushToDrive uploads the current snapshot and returns the Drive file id.
func (s *Service) PushToDrive(ctx context.Context) (string, error) {
	if s.drive == nil {
		return "", ErrDriveDisabled
	}

	snapshot, err := s.Export(ctx)
	if err != nil {
		return "", err
	}
	content, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode snapshot: %w", err)
	}

	id, err := s.drive.Upload(ctx, s.fileName, content)
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", s.fileName, err)
	}
	s.logger.Info("backup pushed to drive", zap.String("file_id", id), zap.Int("bytes", len(content)))
	return id, nil
}

// PullFromDrive downloads the stored snapshot and imports it.
func (s *Service) PullFromDrive(ctx context.Context) (models.Snapshot, error) {
	if s.drive == nil {
		return models.Snapshot{}, ErrDriveDisabled
	}

	content, err := s.drive.Download(ctx, s.fileName)
	if err != nil {
		return models.Snapshot{}, fmt.Errorf("download %s: %w", s.fileName, err)
	}
	snapshot, err := Decode(content)
	if err != nil {
		return models.Snapshot{}, err
	}
	if err := s.Import(ctx, snapshot); err != nil {
		return models.Snapshot{}, err
	}
	return snapshot, nil
}

// Decode parses a snapshot file.
func Decode(content []byte) (models.Snapshot, error) {
	var snapshot models.Snapshot
	if err := json.Unmarshal(content, &snapshot); err != nil {
		return models.Snapshot{}, fmt.Errorf("decode snapshot: %w", err)
	}
	return snapshot, nil
}
