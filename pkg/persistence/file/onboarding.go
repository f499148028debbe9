package file

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path"
	"strconv"
	"sync"

	"github.com/stageflow/stageflow/pkg/models"
	"github.com/stageflow/stageflow/pkg/persistence"
)

// OnboardingRepository handles onboarding-related file operations.
type OnboardingRepository struct {
	root string
	mu   sync.RWMutex
}

func NewOnboardingRepository(root string) *OnboardingRepository {
	return &OnboardingRepository{root: root}
}

func (or *OnboardingRepository) dir() string {
	return path.Join(or.root, "onboardings")
}

func (or *OnboardingRepository) filePath(id int64) string {
	return path.Join(or.dir(), strconv.FormatInt(id, 10)+".json")
}

func (or *OnboardingRepository) GetByID(_ context.Context, id int64) (*models.Onboarding, error) {
	or.mu.RLock()
	defer or.mu.RUnlock()

	data, err := os.ReadFile(or.filePath(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &persistence.OnboardingError{
				Op: "GetByID", OnboardingID: id, Err: persistence.ErrOnboardingNotFound,
			}
		}

		return nil, &persistence.OnboardingError{Op: "GetByID", OnboardingID: id, Err: err}
	}

	var onboarding models.Onboarding
	if err := json.Unmarshal(data, &onboarding); err != nil {
		return nil, &persistence.OnboardingError{Op: "GetByID", OnboardingID: id, Err: err}
	}

	return &onboarding, nil
}

func (or *OnboardingRepository) Save(_ context.Context, onboarding *models.Onboarding) error {
	or.mu.Lock()
	defer or.mu.Unlock()

	if err := os.MkdirAll(or.dir(), 0o755); err != nil {
		return &persistence.OnboardingError{Op: "Save", OnboardingID: onboarding.ID, Err: err}
	}

	data, err := json.MarshalIndent(onboarding, "", "  ")
	if err != nil {
		return &persistence.OnboardingError{Op: "Save", OnboardingID: onboarding.ID, Err: err}
	}

	if err := os.WriteFile(or.filePath(onboarding.ID), data, 0o644); err != nil {
		return &persistence.OnboardingError{Op: "Save", OnboardingID: onboarding.ID, Err: err}
	}

	return nil
}

func (or *OnboardingRepository) ListByStatus(ctx context.Context, status models.OnboardingStatus) ([]*models.Onboarding, error) {
	or.mu.RLock()

	if _, err := os.Stat(or.dir()); os.IsNotExist(err) {
		or.mu.RUnlock()

		return []*models.Onboarding{}, nil
	}

	jsonFiles, err := fs.Glob(os.DirFS(or.dir()), "*.json")

	or.mu.RUnlock()

	if err != nil {
		return nil, fmt.Errorf("failed to list onboarding files: %w", err)
	}

	onboardings := make([]*models.Onboarding, 0, len(jsonFiles))

	for _, file := range jsonFiles {
		id, err := strconv.ParseInt(file[:len(file)-5], 10, 64)
		if err != nil {
			continue
		}

		onboarding, err := or.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}

		if onboarding.Status == status {
			onboardings = append(onboardings, onboarding)
		}
	}

	return onboardings, nil
}
