package registry

import (
	"fmt"

	"github.com/xeipuuv/gojsonschema"

	"github.com/stageflow/stageflow/pkg/models"
	"github.com/stageflow/stageflow/pkg/protocol"
)

// ValidateConfig checks an action configuration document against the schema
// published by its executor. Executors without a schema accept any document.
func (r *Registry) ValidateConfig(actionType models.ActionType, config string) error {
	executor, err := r.Executor(actionType)
	if err != nil {
		return err
	}

	provider, ok := executor.(protocol.SchemaProvider)
	if !ok {
		return nil
	}

	schemaLoader := gojsonschema.NewGoLoader(provider.Schema())

	documentLoader := gojsonschema.NewStringLoader(config)
	if config == "" {
		documentLoader = gojsonschema.NewStringLoader("{}")
	}

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return fmt.Errorf("invalid %s action config: %w", actionType, err)
	}

	if !result.Valid() {
		errs := result.Errors()
		if len(errs) > 0 {
			return fmt.Errorf("invalid %s action config: %s", actionType, errs[0])
		}

		return fmt.Errorf("invalid %s action config", actionType)
	}

	return nil
}
