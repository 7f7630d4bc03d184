package logging

import "context"

type LogEntry struct {
	Key   string
	Value interface{}
}

func Entry(k string, v interface{}) LogEntry {
	return LogEntry{Key: k, Value: v}
}

type Logger interface {
	Debug(ctx context.Context, msg string, entries ...LogEntry)
	Info(ctx context.Context, msg string, entries ...LogEntry)
	Warning(ctx context.Context, msg string, entries ...LogEntry)
	Error(ctx context.Context, msg string, entries ...LogEntry)
}

// Error logs an unexpected error together with optional context entries.
func Error(ctx context.Context, log Logger, err error, entries ...LogEntry) {
	entries = append([]LogEntry{Entry("err", err)}, entries...)
	log.Error(ctx, "Unexpected error.", entries...)
}
