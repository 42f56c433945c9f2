package logger

import (
	"context"
	"fmt"
	"sync"
	"time"

	"crm-notifications/internal/common/models"
	"crm-notifications/internal/config"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap/zapcore"
)

const logBuffer = 1000

// LogEntry holds the data passed from Zap to our worker
type LogEntry struct {
	Level     zapcore.Level
	Message   string
	IpAddress string
	Caller    string
	Fields    map[string]any
	Time      time.Time
}

// LogSink receives log rows
type LogSink interface {
	InsertOne(ctx context.Context, document interface{}) error
}

type collectionSink struct {
	collection *mongo.Collection
}

func (s collectionSink) InsertOne(ctx context.Context, document interface{}) error {
	_, err := s.collection.InsertOne(ctx, document)
	return err
}

// DBLogWriter handles the async writing
type DBLogWriter struct {
	sink    LogSink
	logChan chan LogEntry
	appId   string
	done    chan struct{}
	once    sync.Once
}

// NewDBLogWriter starts a worker writing into the logs collection
func NewDBLogWriter(db *mongo.Database, cfg *config.Config) *DBLogWriter {
	return NewDBLogWriterWithSink(collectionSink{collection: db.Collection("logs")}, cfg.AppId)
}

func NewDBLogWriterWithSink(sink LogSink, appId string) *DBLogWriter {
	writer := &DBLogWriter{
		sink:    sink,
		logChan: make(chan LogEntry, logBuffer),
		appId:   appId,
		done:    make(chan struct{}),
	}

	go writer.processLogs()

	return writer
}

// AddLog never blocks the caller: entries are dropped while the buffer is full
func (w *DBLogWriter) AddLog(entry LogEntry) {
	select {
	case w.logChan <- entry:
	default:
		fmt.Println("DB Log Channel Full! Dropping log:", entry.Message)
	}
}

// Close stops accepting entries and waits until the buffer is written
func (w *DBLogWriter) Close(ctx context.Context) error {
	w.once.Do(func() { close(w.logChan) })
	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (w *DBLogWriter) processLogs() {
	defer close(w.done)
	for entry := range w.logChan {
		created := entry.Time.UTC()
		if entry.Time.IsZero() {
			created = time.Now().UTC()
		}
		logRecord := models.Log{
			ApplicationID: w.appId,
			Message:       entry.Message,
			LogLevelId:    mapLevelToInt(entry.Level),
			Caller:        entry.Caller,
			IpAddress:     entry.IpAddress,
			Fields:        entry.Fields,
			CreatedOnUtc:  created,
		}

		// Errors are ignored so logging never takes the app down
		_ = w.sink.InsertOne(context.Background(), logRecord)
	}
}

func mapLevelToInt(l zapcore.Level) int {
	switch l {
	case zapcore.DebugLevel:
		return 10
	case zapcore.InfoLevel:
		return 20
	case zapcore.WarnLevel:
		return 30
	case zapcore.ErrorLevel:
		return 40
	case zapcore.FatalLevel:
		return 50
	default:
		return 20
	}
}
