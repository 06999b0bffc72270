package server

import "errors"

// ErrOrchestratorRequired indicates a server was created without an orchestrator.
var ErrOrchestratorRequired = errors.New("orchestrator is required")
