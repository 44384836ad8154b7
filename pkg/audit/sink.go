package audit

import "github.com/platinummonkey/poolguide/pkg/observability"

// SinkConfig selects the sinks built by NewSink
type SinkConfig struct {
	Enabled bool

	// File adds a rotating JSON-lines sink when set
	File *FileLoggerConfig
}

// NewSink returns NopLogger when auditing is disabled. Otherwise the
// structured log always receives events and File adds the file sink.
func NewSink(cfg SinkConfig, logger *observability.Logger) (Logger, error) {
	if !cfg.Enabled {
		return NopLogger{}, nil
	}

	sinks := []Logger{NewLogLogger(logger)}
	if cfg.File != nil {
		fileCfg := *cfg.File
		if fileCfg.Logger == nil {
			fileCfg.Logger = logger
		}
		file, err := NewFileLogger(fileCfg)
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, file)
	}
	return NewMultiLogger(sinks...), nil
}
