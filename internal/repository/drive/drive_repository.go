package drive

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"
	driveapi "google.golang.org/api/drive/v3"
	"google.golang.org/api/option"

	"github.com/jobh/imoveis/internal/config"
)

// ErrFileNotFound is returned when the state file does not exist in the folder.
var ErrFileNotFound = errors.New("drive file not found")

const jsonMimeType = "application/json"

// Repository stores whole files in Google Drive by name.
type Repository interface {
	Upload(ctx context.Context, name string, content []byte) (string, error)
	Download(ctx context.Context, name string) ([]byte, error)
}

// GoogleDriveRepository implements Repository on the Drive v3 API with a service account.
type GoogleDriveRepository struct {
	service  *driveapi.Service
	folderID string
	logger   *zap.Logger
}

// NewGoogleDriveRepository builds a Drive backed repository instance.
func NewGoogleDriveRepository(ctx context.Context, cfg config.GoogleConfig, logger *zap.Logger) (*GoogleDriveRepository, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	service, err := driveapi.NewService(ctx, option.WithCredentialsFile(cfg.CredentialsPath), option.WithScopes(driveapi.DriveFileScope))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize drive client: %w", err)
	}

	return &GoogleDriveRepository{
		service:  service,
		folderID: cfg.DriveFolderID,
		logger:   logger,
	}, nil
}

// Upload creates the file, or replaces the contents of the existing file with that name.
// It returns the Drive file id.
func (r *GoogleDriveRepository) Upload(ctx context.Context, name string, content []byte) (string, error) {
	if name == "" {
		return "", fmt.Errorf("file name must not be empty")
	}

	existing, err := r.find(ctx, name)
	if err != nil && !errors.Is(err, ErrFileNotFound) {
		return "", err
	}

	if existing != nil {
		file, err := r.service.Files.Update(existing.Id, &driveapi.File{}).
			Media(bytes.NewReader(content)).
			Context(ctx).
			Do()
		if err != nil {
			return "", fmt.Errorf("update drive file %s: %w", name, err)
		}
		r.logger.Debug("drive file updated", zap.String("name", name), zap.String("id", file.Id))
		return file.Id, nil
	}

	meta := &driveapi.File{Name: name, MimeType: jsonMimeType}
	if r.folderID != "" {
		meta.Parents = []string{r.folderID}
	}
	file, err := r.service.Files.Create(meta).
		Media(bytes.NewReader(content)).
		Context(ctx).
		Do()
	if err != nil {
		return "", fmt.Errorf("create drive file %s: %w", name, err)
	}

	r.logger.Debug("drive file created", zap.String("name", name), zap.String("id", file.Id))
	return file.Id, nil
}

// Download returns the contents of the named file.
func (r *GoogleDriveRepository) Download(ctx context.Context, name string) ([]byte, error) {
	file, err := r.find(ctx, name)
	if err != nil {
		return nil, err
	}

	resp, err := r.service.Files.Get(file.Id).Context(ctx).Download()
	if err != nil {
		return nil, fmt.Errorf("download drive file %s: %w", name, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read drive file %s: %w", name, err)
	}
	return data, nil
}

func (r *GoogleDriveRepository) find(ctx context.Context, name string) (*driveapi.File, error) {
	resp, err := r.service.Files.List().
		Q(fileQuery(name, r.folderID)).
		Fields("files(id, name, modifiedTime)").
		OrderBy("modifiedTime desc").
		PageSize(1).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("search drive file %s: %w", name, err)
	}
	if len(resp.Files) == 0 {
		return nil, ErrFileNotFound
	}
	return resp.Files[0], nil
}

func fileQuery(name, folderID string) string {
	q := fmt.Sprintf("name = '%s' and trashed = false", escapeQuery(name))
	if folderID != "" {
		q += fmt.Sprintf(" and '%s' in parents", escapeQuery(folderID))
	}
	return q
}

func escapeQuery(v string) string {
	return strings.NewReplacer(`\`, `\\`, `'`, `\'`).Replace(v)
}
