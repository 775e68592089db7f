package shared

import "github.com/rs/zerolog"

// LoggerOrNop returns the provided logger or a disabled one when none is provided.
func LoggerOrNop(logger *zerolog.Logger) *zerolog.Logger {
	if logger != nil {
		return logger
	}

	nop := zerolog.Nop()
	return &nop
}
