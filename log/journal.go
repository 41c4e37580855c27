package log

import (
	"context"

	"github.com/coreos/go-systemd/v22/journal"
)

// InitJournalHandler sends the logs to the journal when stderr is connected to it, or
// unconditionally when force is set.
func InitJournalHandler(force bool) {
	if !force {
		isJournalStream, err := journal.StderrIsJournalStream()
		if err != nil {
			Warningf(context.Background(), "Error checking if stderr is connected to the journal: %v", err)
			return
		}
		if !isJournalStream {
			return
		}
	}

	SetHandler(func(_ context.Context, level Level, format string, args ...interface{}) {
		_ = journal.Print(journalPriority(level), format, args...)
	})
}

func journalPriority(level Level) journal.Priority {
	switch {
	case level <= DebugLevel:
		return journal.PriDebug
	case level <= InfoLevel:
		return journal.PriInfo
	case level <= NoticeLevel:
		return journal.PriNotice
	case level <= WarnLevel:
		return journal.PriWarning
	case level <= ErrorLevel:
		return journal.PriErr
	default:
		return journal.PriCrit
	}
}
