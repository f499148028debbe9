// Package file provides file-based persistence for onboarding cases and
// actions. Each entity is stored as one JSON document under the root
// directory.
package file

import (
	"context"
	"os"
	"strings"

	"github.com/stageflow/stageflow/pkg/persistence"
)

// Persistence implements the persistence.Persistence interface using the file system.
type Persistence struct {
	root           string
	onboardingRepo *OnboardingRepository
	actionRepo     *ActionRepository
}

// NewPersistence creates a new instance of Persistence with the specified root directory.
func NewPersistence(root string) persistence.Persistence {
	cleanRoot := strings.Replace(root, "file://", "", 1)

	return &Persistence{
		root:           cleanRoot,
		onboardingRepo: NewOnboardingRepository(cleanRoot),
		actionRepo:     NewActionRepository(cleanRoot),
	}
}

// Close performs any necessary cleanup. For file-based persistence, there is nothing to clean up.
func (fp *Persistence) Close(_ context.Context) error {
	return nil
}

// HealthCheck checks if the file persistence layer is healthy by verifying the root directory exists.
func (fp *Persistence) HealthCheck(_ context.Context) error {
	if _, err := os.Stat(fp.root); os.IsNotExist(err) {
		return os.ErrNotExist
	}

	return nil
}

func (fp *Persistence) OnboardingRepository() persistence.OnboardingRepository {
	return fp.onboardingRepo
}

func (fp *Persistence) ActionRepository() persistence.ActionRepository {
	return fp.actionRepo
}
