package editorcmd

import (
	"errors"

	command "github.com/goliatone/go-command"

	"github.com/goliatone/go-sitecms/internal/commands"
	"github.com/goliatone/go-sitecms/internal/glossary"
	"github.com/goliatone/go-sitecms/internal/metrics"
	"github.com/goliatone/go-sitecms/internal/segments"
	"github.com/goliatone/go-sitecms/internal/shortcuts"
	"github.com/goliatone/go-sitecms/pkg/interfaces"
)

// CommandRegistry is the registration contract of a go-command registry.
type CommandRegistry interface {
	RegisterCommand(handler any) error
}

// Services are the editor-facing services the handlers delegate to.
type Services struct {
	Segments  *segments.Service
	Shortcuts *shortcuts.Service
	Glossary  *glossary.Service
	// Metrics, when set, receives every command outcome.
	Metrics *metrics.Metrics
}

// HandlerSet groups the editor command handlers.
type HandlerSet struct {
	SaveSegment    *commands.Handler[SaveSegmentCommand]
	DeleteSegment  *commands.Handler[DeleteSegmentCommand]
	SetShortcut    *commands.Handler[SetShortcutCommand]
	ClearShortcut  *commands.Handler[ClearShortcutCommand]
	UpsertGlossary *commands.Handler[UpsertGlossaryEntryCommand]
	DeleteGlossary *commands.Handler[DeleteGlossaryEntryCommand]
}

// RegisterEditorCommands builds the handlers and registers them with reg
// when it is not nil.
func RegisterEditorCommands(reg CommandRegistry, services Services, provider interfaces.LoggerProvider) (*HandlerSet, error) {
	if services.Segments == nil || services.Shortcuts == nil || services.Glossary == nil {
		return nil, errors.New("editor command registration: services are incomplete")
	}
	logger := commands.CommandLogger(provider, "editor")

	set := &HandlerSet{
		SaveSegment:    NewSaveSegmentHandler(services.Segments, logger, telemetry[SaveSegmentCommand](services.Metrics, logger)...),
		DeleteSegment:  NewDeleteSegmentHandler(services.Segments, logger, telemetry[DeleteSegmentCommand](services.Metrics, logger)...),
		SetShortcut:    NewSetShortcutHandler(services.Shortcuts, logger, telemetry[SetShortcutCommand](services.Metrics, logger)...),
		ClearShortcut:  NewClearShortcutHandler(services.Shortcuts, logger, telemetry[ClearShortcutCommand](services.Metrics, logger)...),
		UpsertGlossary: NewUpsertGlossaryEntryHandler(services.Glossary, logger, telemetry[UpsertGlossaryEntryCommand](services.Metrics, logger)...),
		DeleteGlossary: NewDeleteGlossaryEntryHandler(services.Glossary, logger, telemetry[DeleteGlossaryEntryCommand](services.Metrics, logger)...),
	}
	if reg != nil {
		for _, handler := range []any{set.SaveSegment, set.DeleteSegment, set.SetShortcut, set.ClearShortcut, set.UpsertGlossary, set.DeleteGlossary} {
			if err := reg.RegisterCommand(handler); err != nil {
				return nil, err
			}
		}
	}
	return set, nil
}

func telemetry[T command.Message](m *metrics.Metrics, logger interfaces.Logger) []commands.HandlerOption[T] {
	if m == nil {
		return nil
	}
	return []commands.HandlerOption[T]{
		commands.WithTelemetry(metrics.CommandTelemetry(m, commands.DefaultTelemetry[T](logger))),
	}
}
