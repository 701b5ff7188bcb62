package handlers

import (
	"bank-api/internal/orchestrator"
)

// Dependencies mirrors the teacher's HandlerDependencies closure pattern
// (internal/api/handlers/container.go): it breaks the circular dependency
// between handlers and the DI container package, generalized from a
// database+publisher pair to the single orchestrator every handler needs.
type Dependencies interface {
	GetOrchestrator() *orchestrator.Orchestrator
}
