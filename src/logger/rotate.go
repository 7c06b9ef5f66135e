// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package logger

import (
	"os"
	"sync"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"
)

// DailyFile is an [io.WriteCloser] that keeps one log file per calendar day.
//
// The active file is always Filename. When the first write of a new day
// arrives, or the first write of the process finds a file last modified on an
// earlier day, the active file is moved aside under a timestamped name and a
// fresh one is started. Old files are pruned according to MaxBackups and
// MaxAge. Files also roll over once they exceed lumberjack's default size.
//
// DailyFile is safe for concurrent use by multiple goroutines.
type DailyFile struct {
	// Filename is the active log file. Its directory is created if missing.
	Filename string
	// MaxBackups is the number of old files to keep. Zero keeps all.
	MaxBackups int
	// MaxAge is the number of days to keep old files. Zero keeps all.
	MaxAge int
	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time

	mu   sync.Mutex
	file *lumberjack.Logger
	day  string
}

func (d *DailyFile) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}

// Write implements io.Writer, rotating first if the day has changed.
func (d *DailyFile) Write(p []byte) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.file == nil {
		d.file = &lumberjack.Logger{
			Filename:   d.Filename,
			MaxBackups: d.MaxBackups,
			MaxAge:     d.MaxAge,
			LocalTime:  true,
		}
	}

	now := d.now()
	today := now.Format(time.DateOnly)

	switch {
	case d.day == "":
		if fi, err := os.Stat(d.Filename); err == nil && fi.Size() > 0 &&
			fi.ModTime().In(now.Location()).Format(time.DateOnly) != today {
			if err := d.file.Rotate(); err != nil {
				return 0, err
			}
		}
	case d.day != today:
		if err := d.file.Rotate(); err != nil {
			return 0, err
		}
	}
	d.day = today

	return d.file.Write(p)
}

// Close closes the active file. A later Write reopens it.
func (d *DailyFile) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.file == nil {
		return nil
	}
	return d.file.Close()
}
