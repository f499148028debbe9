package file

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"strconv"
	"sync"

	"github.com/stageflow/stageflow/pkg/models"
	"github.com/stageflow/stageflow/pkg/persistence"
)

// ActionRepository handles action definition and execution file operations.
type ActionRepository struct {
	root string
	mu   sync.RWMutex
}

func NewActionRepository(root string) *ActionRepository {
	return &ActionRepository{root: root}
}

func (ar *ActionRepository) definitionsDir() string {
	return path.Join(ar.root, "actions")
}

func (ar *ActionRepository) executionsDir() string {
	return path.Join(ar.root, "executions")
}

func (ar *ActionRepository) GetDefinition(_ context.Context, id int64) (*models.ActionDefinition, error) {
	ar.mu.RLock()
	defer ar.mu.RUnlock()

	file := path.Join(ar.definitionsDir(), strconv.FormatInt(id, 10)+".json")

	data, err := os.ReadFile(file)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &persistence.ActionError{
				Op: "GetDefinition", ActionID: id, Err: persistence.ErrActionNotFound,
			}
		}

		return nil, &persistence.ActionError{Op: "GetDefinition", ActionID: id, Err: err}
	}

	var definition models.ActionDefinition
	if err := json.Unmarshal(data, &definition); err != nil {
		return nil, &persistence.ActionError{Op: "GetDefinition", ActionID: id, Err: err}
	}

	return &definition, nil
}

func (ar *ActionRepository) SaveDefinition(_ context.Context, definition *models.ActionDefinition) error {
	ar.mu.Lock()
	defer ar.mu.Unlock()

	if err := os.MkdirAll(ar.definitionsDir(), 0o755); err != nil {
		return &persistence.ActionError{Op: "SaveDefinition", ActionID: definition.ID, Err: err}
	}

	data, err := json.MarshalIndent(definition, "", "  ")
	if err != nil {
		return &persistence.ActionError{Op: "SaveDefinition", ActionID: definition.ID, Err: err}
	}

	file := path.Join(ar.definitionsDir(), strconv.FormatInt(definition.ID, 10)+".json")
	if err := os.WriteFile(file, data, 0o644); err != nil {
		return &persistence.ActionError{Op: "SaveDefinition", ActionID: definition.ID, Err: err}
	}

	return nil
}

func (ar *ActionRepository) ListDefinitions(ctx context.Context) ([]*models.ActionDefinition, error) {
	ar.mu.RLock()

	if _, err := os.Stat(ar.definitionsDir()); os.IsNotExist(err) {
		ar.mu.RUnlock()

		return []*models.ActionDefinition{}, nil
	}

	jsonFiles, err := fs.Glob(os.DirFS(ar.definitionsDir()), "*.json")

	ar.mu.RUnlock()

	if err != nil {
		return nil, fmt.Errorf("failed to list action files: %w", err)
	}

	definitions := make([]*models.ActionDefinition, 0, len(jsonFiles))

	for _, file := range jsonFiles {
		id, err := strconv.ParseInt(file[:len(file)-5], 10, 64)
		if err != nil {
			continue
		}

		definition, err := ar.GetDefinition(ctx, id)
		if err != nil {
			return nil, err
		}

		definitions = append(definitions, definition)
	}

	sort.Slice(definitions, func(i, j int) bool {
		return definitions[i].ID < definitions[j].ID
	})

	return definitions, nil
}

func (ar *ActionRepository) GetExecution(_ context.Context, id string) (*models.ActionExecution, error) {
	ar.mu.RLock()
	defer ar.mu.RUnlock()

	data, err := os.ReadFile(path.Join(ar.executionsDir(), id+".json"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, persistence.ErrExecutionNotFound
		}

		return nil, fmt.Errorf("failed to read execution %s: %w", id, err)
	}

	var execution models.ActionExecution
	if err := json.Unmarshal(data, &execution); err != nil {
		return nil, fmt.Errorf("failed to decode execution %s: %w", id, err)
	}

	return &execution, nil
}

func (ar *ActionRepository) SaveExecution(_ context.Context, execution *models.ActionExecution) error {
	ar.mu.Lock()
	defer ar.mu.Unlock()

	if err := os.MkdirAll(ar.executionsDir(), 0o755); err != nil {
		return fmt.Errorf("failed to create executions directory: %w", err)
	}

	data, err := json.MarshalIndent(execution, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode execution %s: %w", execution.ID, err)
	}

	file := path.Join(ar.executionsDir(), execution.ID+".json")
	if err := os.WriteFile(file, data, 0o644); err != nil {
		return fmt.Errorf("failed to write execution %s: %w", execution.ID, err)
	}

	return nil
}

func (ar *ActionRepository) ListExecutionsByAction(ctx context.Context, actionID int64) ([]*models.ActionExecution, error) {
	ar.mu.RLock()

	if _, err := os.Stat(ar.executionsDir()); os.IsNotExist(err) {
		ar.mu.RUnlock()

		return []*models.ActionExecution{}, nil
	}

	jsonFiles, err := fs.Glob(os.DirFS(ar.executionsDir()), "*.json")

	ar.mu.RUnlock()

	if err != nil {
		return nil, fmt.Errorf("failed to list execution files: %w", err)
	}

	executions := make([]*models.ActionExecution, 0)

	for _, file := range jsonFiles {
		execution, err := ar.GetExecution(ctx, file[:len(file)-5])
		if err != nil {
			return nil, err
		}

		if execution.ActionID == actionID {
			executions = append(executions, execution)
		}
	}

	sort.Slice(executions, func(i, j int) bool {
		return executions[i].StartedAt.Before(executions[j].StartedAt)
	})

	return executions, nil
}
