// Package cmd provides common initialization functions for command-line applications.
package cmd

import (
	"log/slog"

	"github.com/stageflow/stageflow/pkg/executors/email"
	"github.com/stageflow/stageflow/pkg/executors/httpapi"
	"github.com/stageflow/stageflow/pkg/executors/remotescript"
	"github.com/stageflow/stageflow/pkg/executors/system"
	"github.com/stageflow/stageflow/pkg/registry"
	"github.com/stageflow/stageflow/pkg/sandbox"
	"github.com/stageflow/stageflow/pkg/workflow"
)

// ExecutorConfig carries the external endpoints the executors depend on.
type ExecutorConfig struct {
	SandboxURL string
	SMTP       email.SMTPConfig
}

// NewRegistry builds the dispatch registry with every native executor
// registered.
func NewRegistry(logger *slog.Logger, orchestrator *workflow.Orchestrator, config ExecutorConfig) *registry.Registry {
	reg := registry.NewRegistry(logger)

	reg.Register(httpapi.NewExecutor())
	reg.Register(email.NewExecutor(email.NewSMTPMailer(config.SMTP)))
	reg.Register(remotescript.NewExecutor(sandbox.NewClient(config.SandboxURL)))
	reg.Register(system.NewExecutor(orchestrator))

	return reg
}
