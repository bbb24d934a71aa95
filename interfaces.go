package mymarket

import (
	"github.com/itsneelabh/mymarket/pkg/logger"
	"github.com/itsneelabh/mymarket/pkg/storage"
	"github.com/itsneelabh/mymarket/pkg/telemetry"
)

// Type aliases for the collaborator interfaces
type Logger = logger.Logger
type Telemetry = telemetry.Telemetry
type Span = telemetry.Span
type Backend = storage.Backend
type StorageKey = storage.Key
