package stattop

import (
	"context"
	"fmt"
	"io"
	"sync"
)

// LineLabels is a Labels implementation for headless mode. It keeps the label text
// and writes one summary line each time the last update label is set, which happens
// once per poll cycle.
type LineLabels struct {
	mu     sync.Mutex
	w      io.Writer
	texts  map[string]string
	online bool
}

func NewLineLabels(w io.Writer) *LineLabels {
	return &LineLabels{w: w, texts: make(map[string]string)}
}

func (l *LineLabels) SetText(id, text string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.texts[id] = text
	if id != LAST_UPDATE {
		return
	}
	if !l.online {
		fmt.Fprintf(l.w, "%s\n", text)
		return
	}
	fmt.Fprintf(l.w, "%s cpu=%s mem=%s disk=%s up=%s down=%s\n",
		text,
		l.texts[CPU_VALUE], l.texts[MEM_VALUE], l.texts[DISK_VALUE],
		l.texts[SENT_VALUE], l.texts[RECV_VALUE],
	)
}

func (l *LineLabels) SetClass(id, class string, present bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if id == SERVER_STATUS && class == STATUS_ONLINE_CLASS {
		l.online = present
	}
}

// RunHeadless polls without a terminal UI, printing one line per cycle to w
func RunHeadless(ctx context.Context, source Source, w io.Writer) error {
	poller, err := NewPoller(source, NewScreen(), NewLineLabels(w))
	if err != nil {
		return fmt.Errorf("initialising poller: %w", err)
	}
	return poller.Run(ctx)
}
