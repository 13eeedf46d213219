package editorcmd

import (
	"context"

	"github.com/goliatone/go-sitecms/internal/commands"
	"github.com/goliatone/go-sitecms/internal/glossary"
	"github.com/goliatone/go-sitecms/internal/locale"
	"github.com/goliatone/go-sitecms/internal/segments"
	"github.com/goliatone/go-sitecms/internal/shortcuts"
	"github.com/goliatone/go-sitecms/pkg/interfaces"
)

// NewSaveSegmentHandler validates the payload against the segment schema and
// stores it through the segment service.
func NewSaveSegmentHandler(service *segments.Service, logger interfaces.Logger, opts ...commands.HandlerOption[SaveSegmentCommand]) *commands.Handler[SaveSegmentCommand] {
	exec := func(ctx context.Context, msg SaveSegmentCommand) error {
		data, err := segments.ParseData(service.Schemas(), msg.Type, msg.Data)
		if err != nil {
			return err
		}
		result, err := service.Save(ctx, segments.SaveInput{
			PageSlug:     msg.PageSlug,
			Language:     locale.Language(msg.Language),
			ID:           msg.ID,
			Type:         msg.Type,
			Data:         data,
			UpdatedBy:    msg.UpdatedBy,
			BackfillType: msg.BackfillType,
		})
		if err != nil {
			return err
		}
		if msg.Result != nil {
			*msg.Result = result
		}
		return nil
	}
	return commands.NewHandler(exec, append([]commands.HandlerOption[SaveSegmentCommand]{
		commands.WithLogger[SaveSegmentCommand](logger),
		commands.WithOperation[SaveSegmentCommand]("segments.save"),
		commands.WithMessageFields(func(msg SaveSegmentCommand) map[string]any {
			return map[string]any{
				"page_slug":    msg.PageSlug,
				"language":     msg.Language,
				"segment_id":   msg.ID.String(),
				"segment_type": string(msg.Type),
			}
		}),
	}, opts...)...)
}

func NewDeleteSegmentHandler(service *segments.Service, logger interfaces.Logger, opts ...commands.HandlerOption[DeleteSegmentCommand]) *commands.Handler[DeleteSegmentCommand] {
	exec := func(ctx context.Context, msg DeleteSegmentCommand) error {
		deleted, err := service.Delete(ctx, segments.DeleteInput{
			PageSlug:  msg.PageSlug,
			Language:  locale.Language(msg.Language),
			ID:        msg.ID,
			UpdatedBy: msg.UpdatedBy,
		})
		if err != nil {
			return err
		}
		if msg.Deleted != nil {
			*msg.Deleted = deleted
		}
		return nil
	}
	return commands.NewHandler(exec, append([]commands.HandlerOption[DeleteSegmentCommand]{
		commands.WithLogger[DeleteSegmentCommand](logger),
		commands.WithOperation[DeleteSegmentCommand]("segments.delete"),
		commands.WithMessageFields(func(msg DeleteSegmentCommand) map[string]any {
			return map[string]any{"page_slug": msg.PageSlug, "language": msg.Language, "segment_id": msg.ID.String()}
		}),
	}, opts...)...)
}

func NewSetShortcutHandler(service *shortcuts.Service, logger interfaces.Logger, opts ...commands.HandlerOption[SetShortcutCommand]) *commands.Handler[SetShortcutCommand] {
	exec := func(ctx context.Context, msg SetShortcutCommand) error {
		result, err := service.SetShortcut(ctx, msg.PageID, msg.Target)
		if err != nil {
			return err
		}
		if msg.Result != nil {
			*msg.Result = result
		}
		return nil
	}
	return commands.NewHandler(exec, append([]commands.HandlerOption[SetShortcutCommand]{
		commands.WithLogger[SetShortcutCommand](logger),
		commands.WithOperation[SetShortcutCommand]("shortcuts.set"),
		commands.WithMessageFields(func(msg SetShortcutCommand) map[string]any {
			return map[string]any{"page_id": msg.PageID, "target": msg.Target}
		}),
	}, opts...)...)
}

func NewClearShortcutHandler(service *shortcuts.Service, logger interfaces.Logger, opts ...commands.HandlerOption[ClearShortcutCommand]) *commands.Handler[ClearShortcutCommand] {
	exec := func(ctx context.Context, msg ClearShortcutCommand) error {
		result, err := service.ClearShortcut(ctx, msg.PageID)
		if err != nil {
			return err
		}
		if msg.Result != nil {
			*msg.Result = result
		}
		return nil
	}
	return commands.NewHandler(exec, append([]commands.HandlerOption[ClearShortcutCommand]{
		commands.WithLogger[ClearShortcutCommand](logger),
		commands.WithOperation[ClearShortcutCommand]("shortcuts.clear"),
		commands.WithMessageFields(func(msg ClearShortcutCommand) map[string]any {
			return map[string]any{"page_id": msg.PageID}
		}),
	}, opts...)...)
}

func NewUpsertGlossaryEntryHandler(service *glossary.Service, logger interfaces.Logger, opts ...commands.HandlerOption[UpsertGlossaryEntryCommand]) *commands.Handler[UpsertGlossaryEntryCommand] {
	exec := func(ctx context.Context, msg UpsertGlossaryEntryCommand) error {
		stored, err := service.Upsert(ctx, msg.Entry)
		if err != nil {
			return err
		}
		if msg.Result != nil {
			*msg.Result = *stored
		}
		return nil
	}
	return commands.NewHandler(exec, append([]commands.HandlerOption[UpsertGlossaryEntryCommand]{
		commands.WithLogger[UpsertGlossaryEntryCommand](logger),
		commands.WithOperation[UpsertGlossaryEntryCommand]("glossary.upsert"),
		commands.WithMessageFields(func(msg UpsertGlossaryEntryCommand) map[string]any {
			return map[string]any{"term": msg.Entry.Term, "term_type": string(msg.Entry.TermType)}
		}),
	}, opts...)...)
}

func NewDeleteGlossaryEntryHandler(service *glossary.Service, logger interfaces.Logger, opts ...commands.HandlerOption[DeleteGlossaryEntryCommand]) *commands.Handler[DeleteGlossaryEntryCommand] {
	exec := func(ctx context.Context, msg DeleteGlossaryEntryCommand) error {
		return service.Delete(ctx, msg.Term)
	}
	return commands.NewHandler(exec, append([]commands.HandlerOption[DeleteGlossaryEntryCommand]{
		commands.WithLogger[DeleteGlossaryEntryCommand](logger),
		commands.WithOperation[DeleteGlossaryEntryCommand]("glossary.delete"),
	}, opts...)...)
}
