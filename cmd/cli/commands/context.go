package commands

import (
	"context"

	"go.uber.org/zap"

	"github.com/hackneyvolunteers/shifthub/internal/config"
	"github.com/hackneyvolunteers/shifthub/pkg/clock"
	"github.com/hackneyvolunteers/shifthub/pkg/events"
	"github.com/hackneyvolunteers/shifthub/pkg/postgres"
)

// AppContext holds the application dependencies shared across all commands
type AppContext struct {
	Cfg      *config.Config
	Database *postgres.DB
	Bus      events.Bus
	Clock    clock.Clock
	Logger   *zap.Logger
	Ctx      context.Context
}
