package emit

import (
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/pkgerrors"
)

const defaultChunkSize = 32 * 1024

var logger *zerolog.Logger
var chunkSize = defaultChunkSize

func SetupEmitLogger(l *zerolog.Logger) {
	zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack

	logger = l
}

// SetupEmit sets the logger and the size of the chunks the body is copied in.
// A non-positive size restores the default.
func SetupEmit(l *zerolog.Logger, cs int) {
	zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack

	logger = l
	if cs <= 0 {
		cs = defaultChunkSize
	}
	chunkSize = cs
}

func GetLogger() *zerolog.Logger {
	return logger
}

func GetChunkSize() int {
	return chunkSize
}
