package logging

import (
	"fmt"
	"log/slog"
	"os"
)

// Setup installs the process-wide JSON logger. Unknown level strings fall
// back to info; config validation rejects them before this runs anyway.
func Setup(level string) {
	logLevel := slog.LevelInfo
	if err := logLevel.UnmarshalText([]byte(level)); err != nil {
		logLevel = slog.LevelInfo
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})

	slog.SetDefault(slog.New(handler).With("service", "vitals-alert"))
}

func Fatalf(format string, args ...any) {
	slog.Error(fmt.Sprintf(format, args...))
	os.Exit(1)
}
