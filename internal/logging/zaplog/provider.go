package zaplog

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/goliatone/go-sitecms/internal/logging"
	"github.com/goliatone/go-sitecms/pkg/interfaces"
)

// Config selects the zap preset and level.
type Config struct {
	Level  string
	Format string
}

// Provider serves named zap sugared loggers.
type Provider struct {
	root *zap.Logger
}

// NewProvider builds a zap provider. Format "json" uses the production preset,
// anything else the development preset.
func NewProvider(cfg Config) (*Provider, error) {
	var zcfg zap.Config
	switch strings.ToLower(strings.TrimSpace(cfg.Format)) {
	case "", "json":
		zcfg = zap.NewProductionConfig()
	case "console", "pretty":
		zcfg = zap.NewDevelopmentConfig()
	default:
		return nil, fmt.Errorf("logging: unsupported zap format %q", cfg.Format)
	}

	level := zapcore.InfoLevel
	switch raw := strings.ToLower(strings.TrimSpace(cfg.Level)); raw {
	case "":
	case "trace":
		level = zapcore.DebugLevel
	default:
		if err := level.UnmarshalText([]byte(raw)); err != nil {
			return nil, fmt.Errorf("logging: invalid zap level %q: %w", cfg.Level, err)
		}
	}
	zcfg.Level = zap.NewAtomicLevelAt(level)

	root, err := zcfg.Build()
	if err != nil {
		return nil, err
	}
	return &Provider{root: root}, nil
}

// NewFromLogger wraps an existing zap logger.
func NewFromLogger(root *zap.Logger) *Provider {
	return &Provider{root: root}
}

func (p *Provider) GetLogger(name string) interfaces.Logger {
	if p == nil || p.root == nil {
		return logging.NoOp()
	}
	named := p.root
	if name = strings.TrimSpace(name); name != "" {
		named = named.Named(name)
	}
	return &adapter{sugar: named.Sugar()}
}

// Sync flushes buffered entries.
func (p *Provider) Sync() error {
	if p == nil || p.root == nil {
		return nil
	}
	return p.root.Sync()
}

type adapter struct {
	sugar *zap.SugaredLogger
}

var (
	_ interfaces.Logger       = (*adapter)(nil)
	_ interfaces.FieldsLogger = (*adapter)(nil)
)

// zap has no trace level; trace entries go to debug.
func (l *adapter) Trace(msg string, args ...any) { l.sugar.Debugw(msg, sanitize(args)...) }
func (l *adapter) Debug(msg string, args ...any) { l.sugar.Debugw(msg, sanitize(args)...) }
func (l *adapter) Info(msg string, args ...any)  { l.sugar.Infow(msg, sanitize(args)...) }
func (l *adapter) Warn(msg string, args ...any)  { l.sugar.Warnw(msg, sanitize(args)...) }
func (l *adapter) Error(msg string, args ...any) { l.sugar.Errorw(msg, sanitize(args)...) }
func (l *adapter) Fatal(msg string, args ...any) { l.sugar.Fatalw(msg, sanitize(args)...) }

func (l *adapter) WithFields(fields map[string]any) interfaces.Logger {
	if len(fields) == 0 {
		return l
	}
	keys := make([]string, 0, len(fields))
	for key := range fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	args := make([]any, 0, len(keys)*2)
	for _, key := range keys {
		args = append(args, key, fields[key])
	}
	return &adapter{sugar: l.sugar.With(sanitize(args)...)}
}

func (l *adapter) WithContext(ctx context.Context) interfaces.Logger {
	fields := logging.ContextFields(ctx)
	if len(fields) == 0 {
		return l
	}
	return l.WithFields(fields)
}

var redactedKeys = map[string]bool{
	"api_key":  true,
	"token":    true,
	"password": true,
	"secret":   true,
}

var hashedKeys = map[string]bool{
	"email": true,
}

// sanitize redacts credentials and hashes contact details.
func sanitize(kv []any) []any {
	if len(kv) == 0 {
		return kv
	}
	out := make([]any, 0, len(kv))
	for i := 0; i < len(kv); i += 2 {
		if i == len(kv)-1 {
			out = append(out, kv[i])
			break
		}
		key := strings.ToLower(strings.TrimSpace(fmt.Sprint(kv[i])))
		value := kv[i+1]
		switch {
		case redactedKeys[key]:
			value = "[REDACTED]"
		case hashedKeys[key]:
			sum := sha256.Sum256([]byte(strings.ToLower(fmt.Sprint(value))))
			value = hex.EncodeToString(sum[:8])
		}
		out = append(out, kv[i], value)
	}
	return out
}
