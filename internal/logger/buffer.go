// internal/logger/buffer.go
package logger

import (
	"bytes"
	"sync"
	"time"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// LogEntry represents a single log entry in the buffer
type LogEntry struct {
	Timestamp time.Time              `json:"timestamp"`
	Level     string                 `json:"level"`
	Logger    string                 `json:"logger,omitempty"`
	Message   string                 `json:"msg"`
	Fields    map[string]interface{} `json:"-"`
}

// LogBuffer - потокобезопасный кольцевой буфер последних записей.
// Принимает JSON строки от zap как zapcore.WriteSyncer.
type LogBuffer struct {
	mu           sync.Mutex
	ring         []LogEntry
	maxSize      int
	currentIndex int
	wrapped      bool

	totalEntries   uint64
	droppedEntries uint64
}

func NewLogBuffer(maxSize int) *LogBuffer {
	if maxSize < 1 {
		maxSize = 1
	}
	return &LogBuffer{
		ring:    make([]LogEntry, maxSize),
		maxSize: maxSize,
	}
}

// Write разбирает одну или несколько JSON строк.
func (lb *LogBuffer) Write(p []byte) (int, error) {
	for _, line := range bytes.Split(p, []byte{'\n'}) {
		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}
		var raw map[string]interface{}
		if err := json.Unmarshal(line, &raw); err != nil {
			lb.mu.Lock()
			lb.droppedEntries++
			lb.mu.Unlock()
			continue
		}
		lb.Add(entryFromMap(raw))
	}
	return len(p), nil
}

func (lb *LogBuffer) Sync() error {
	return nil
}

func entryFromMap(raw map[string]interface{}) LogEntry {
	e := LogEntry{Timestamp: time.Now()}
	if s, ok := raw["timestamp"].(string); ok {
		if t, err := time.Parse("2006-01-02T15:04:05.000Z0700", s); err == nil {
			e.Timestamp = t
		}
	}
	e.Level, _ = raw["level"].(string)
	e.Logger, _ = raw["logger"].(string)
	e.Message, _ = raw["msg"].(string)
	for _, k := range []string{"timestamp", "level", "logger", "msg", "caller", "stacktrace"} {
		delete(raw, k)
	}
	if len(raw) > 0 {
		e.Fields = raw
	}
	return e
}

// Add adds a new log entry to the buffer
func (lb *LogBuffer) Add(entry LogEntry) {
	lb.mu.Lock()
	defer lb.mu.Unlock()

	lb.ring[lb.currentIndex] = entry
	lb.currentIndex = (lb.currentIndex + 1) % lb.maxSize
	if lb.currentIndex == 0 {
		lb.wrapped = true
	}
	lb.totalEntries++
}

// Recent возвращает до limit последних записей, от старых к новым.
func (lb *LogBuffer) Recent(limit int) []LogEntry {
	lb.mu.Lock()
	defer lb.mu.Unlock()

	count := lb.currentIndex
	start := 0
	if lb.wrapped {
		count = lb.maxSize
		start = lb.currentIndex
	}
	if limit > 0 && limit < count {
		start += count - limit
		count = limit
	}

	logs := make([]LogEntry, 0, count)
	for i := 0; i < count; i++ {
		logs = append(logs, lb.ring[(start+i)%lb.maxSize])
	}
	return logs
}

// Stats returns buffer statistics
func (lb *LogBuffer) Stats() (total, dropped uint64) {
	lb.mu.Lock()
	defer lb.mu.Unlock()
	return lb.totalEntries, lb.droppedEntries
}
