package log

import (
	"fmt"

	"gopkg.in/natefinch/lumberjack.v2"

	"firestige.xyz/layerspy/internal/config"
	"firestige.xyz/layerspy/internal/core"
)

// AddFileAppender adds a rotating file writer and returns it so callers can
// close it.
func (m *MultiWriter) AddFileAppender(fc config.FileOutputConfig) (*lumberjack.Logger, error) {
	if fc.Path == "" {
		return nil, fmt.Errorf("%w: file output requires 'path' field", core.ErrConfigInvalid)
	}
	writer := &lumberjack.Logger{
		Filename:   fc.Path,
		MaxSize:    fc.Rotation.MaxSizeMB,  // megabytes
		MaxBackups: fc.Rotation.MaxBackups, // number of backups
		MaxAge:     fc.Rotation.MaxAgeDays, // days
		Compress:   fc.Rotation.Compress,   // compress the backups
	}
	m.Add(writer)
	return writer, nil
}
