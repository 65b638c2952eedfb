package depot

import (
	"go.uber.org/zap"
)

var (
	_ WorldDebugListener   = &LogListener{}
	_ SystemsDebugListener = &LogListener{}
)

// LogListener writes world and systems diagnostics to a zap logger.
type LogListener struct {
	logger *zap.Logger
}

func NewLogListener(logger *zap.Logger) *LogListener {
	return &LogListener{logger: logger.Named("debug")}
}

func (l *LogListener) OnEntityCreated(e Entity) {
	l.logger.Debug("entity created", zap.Int32("entity", e.id), zap.Uint16("gen", e.gen))
}

func (l *LogListener) OnEntityDestroyed(e Entity) {
	l.logger.Debug("entity destroyed", zap.Int32("entity", e.id), zap.Uint16("gen", e.gen))
}

func (l *LogListener) OnComponentListChanged(e Entity) {
	if !e.Alive() {
		return
	}
	names := make([]string, 0, e.ComponentCount())
	for c := range e.ComponentTypes() {
		names = append(names, componentName(c))
	}
	l.logger.Debug("components changed",
		zap.Int32("entity", e.id),
		zap.Uint16("gen", e.gen),
		zap.Strings("components", names),
	)
}

func (l *LogListener) OnFilterCreated(f *Filter) {
	l.logger.Debug("filter created",
		zap.Int32s("include", f.include),
		zap.Int32s("exclude", f.exclude),
	)
}

func (l *LogListener) OnWorldDestroyed(w *World) {
	l.logger.Info("world destroyed", zap.Int("entities", len(w.entities)))
}

func (l *LogListener) OnSystemsDestroyed(s *Systems) {
	l.logger.Info("systems destroyed", zap.String("systems", s.name))
}
