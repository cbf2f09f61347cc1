package telemetry

import (
	"fmt"
	"log/slog"
)

// BookmarkType identifies the type of bookmark.
type BookmarkType string

const (
	BookmarkPreyExtinct     BookmarkType = "prey_extinct"
	BookmarkPredatorCap     BookmarkType = "predator_cap"
	BookmarkConversionSurge BookmarkType = "conversion_surge"
)

// Bookmark represents an automatically triggered bookmark.
type Bookmark struct {
	Type        BookmarkType `csv:"type" json:"type"`
	Tick        int32        `csv:"tick" json:"tick"`
	Description string       `csv:"description" json:"description"`
}

// LogBookmark logs the bookmark using slog.
func (b Bookmark) LogBookmark() {
	slog.Info("bookmark",
		"type", string(b.Type),
		"tick", b.Tick,
		"description", b.Description,
	)
}

// SurgeParams configures conversion surge detection.
type SurgeParams struct {
	Multiplier     float64 // conversions must exceed this multiple of the rolling average
	MinConversions int     // and reach at least this count
}

// BookmarkDetector detects notable moments in an outbreak.
type BookmarkDetector struct {
	// Rolling history (circular buffer)
	history     []WindowStats
	historySize int
	historyIdx  int
	historyFull bool

	surge SurgeParams
}

// NewBookmarkDetector creates a detector with the given history size.
func NewBookmarkDetector(historySize int, surge SurgeParams) *BookmarkDetector {
	if historySize < 3 {
		historySize = 3 // minimum for a meaningful rolling average
	}
	return &BookmarkDetector{
		history:     make([]WindowStats, historySize),
		historySize: historySize,
		surge:       surge,
	}
}

// Check analyzes the latest stats and returns any triggered bookmarks.
func (bd *BookmarkDetector) Check(stats WindowStats) []Bookmark {
	var bookmarks []Bookmark

	if prev, ok := bd.previous(); ok {
		if b := bd.checkPreyExtinct(prev, stats); b != nil {
			bookmarks = append(bookmarks, *b)
		}
		if b := bd.checkPredatorCap(prev, stats); b != nil {
			bookmarks = append(bookmarks, *b)
		}
		if b := bd.checkConversionSurge(stats); b != nil {
			bookmarks = append(bookmarks, *b)
		}
	}

	bd.addToHistory(stats)

	return bookmarks
}

func (bd *BookmarkDetector) addToHistory(stats WindowStats) {
	bd.history[bd.historyIdx] = stats
	bd.historyIdx = (bd.historyIdx + 1) % bd.historySize
	if bd.historyIdx == 0 {
		bd.historyFull = true
	}
}

func (bd *BookmarkDetector) getHistory() []WindowStats {
	if bd.historyFull {
		return bd.history
	}
	return bd.history[:bd.historyIdx]
}

// previous returns the most recently added window.
func (bd *BookmarkDetector) previous() (WindowStats, bool) {
	if !bd.historyFull && bd.historyIdx == 0 {
		return WindowStats{}, false
	}
	idx := (bd.historyIdx - 1 + bd.historySize) % bd.historySize
	return bd.history[idx], true
}

func (bd *BookmarkDetector) checkPreyExtinct(prev, stats WindowStats) *Bookmark {
	if prev.PreyCount == 0 || stats.PreyCount != 0 {
		return nil
	}
	return &Bookmark{
		Type:        BookmarkPreyExtinct,
		Tick:        stats.WindowEndTick,
		Description: fmt.Sprintf("Last prey converted after %.1fs, %d predators remain", stats.SimTimeSec, stats.PredCount),
	}
}

func (bd *BookmarkDetector) checkPredatorCap(prev, stats WindowStats) *Bookmark {
	if stats.Evictions == 0 || prev.Evictions > 0 {
		return nil
	}
	return &Bookmark{
		Type:        BookmarkPredatorCap,
		Tick:        stats.WindowEndTick,
		Description: fmt.Sprintf("Predator cap reached, %d evicted this window", stats.Evictions),
	}
}

func (bd *BookmarkDetector) checkConversionSurge(stats WindowStats) *Bookmark {
	history := bd.getHistory()
	if len(history) < 2 || stats.Conversions < bd.surge.MinConversions {
		return nil
	}

	var total int
	for _, h := range history {
		total += h.Conversions
	}
	avg := float64(total) / float64(len(history))

	if float64(stats.Conversions) > avg*bd.surge.Multiplier {
		return &Bookmark{
			Type:        BookmarkConversionSurge,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("%d conversions vs rolling average %.2f", stats.Conversions, avg),
		}
	}

	return nil
}
