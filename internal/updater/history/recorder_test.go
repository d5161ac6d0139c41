package history

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/mock"

	"alchemy/internal/updater"
	"alchemy/internal/utils/logger"
)

// MockJournal is a mock implementation of the Journal interface for testing
type MockJournal struct {
	mock.Mock
}

func (m *MockJournal) Add(ctx context.Context, e Entry) (int64, error) {
	args := m.Called(ctx, e)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockJournal) List(ctx context.Context, limit int) ([]Entry, error) {
	args := m.Called(ctx, limit)
	entries, _ := args.Get(0).([]Entry)
	return entries, args.Error(1)
}

// MockClient is a mock implementation of updater.Client for testing
type MockClient struct {
	mock.Mock
}

func (m *MockClient) DownloadComplete(rec updater.DownloadRecord) {
	m.Called(rec)
}

func (m *MockClient) DownloadError(reason string) {
	m.Called(reason)
}

func TestRecorder_DownloadComplete(t *testing.T) {
	journal := new(MockJournal)
	next := new(MockClient)
	rec := updater.DownloadRecord{
		URL:           "http://localhost/update.bin",
		Path:          "/tmp/update.bin",
		UpdateChannel: "Release",
		UpdateVersion: "6.1.0",
		Required:      true,
	}

	journal.On("Add", mock.Anything, Entry{
		URL:      rec.URL,
		Channel:  "Release",
		Version:  "6.1.0",
		Path:     rec.Path,
		Outcome:  OutcomeCompleted,
		Required: true,
	}).Return(int64(1), nil)
	next.On("DownloadComplete", rec).Return()

	NewRecorder(next, journal, logger.Discard()).DownloadComplete(rec)

	journal.AssertExpectations(t)
	next.AssertExpectations(t)
}

func TestRecorder_DownloadError(t *testing.T) {
	journal := new(MockJournal)
	next := new(MockClient)

	journal.On("Add", mock.Anything, mock.MatchedBy(func(e Entry) bool {
		return e.Outcome == OutcomeFailed && e.Reason == updater.ReasonHashCheck &&
			e.URL == "http://localhost/update.bin" && e.Version == "6.1.0"
	})).Return(int64(2), nil)
	next.On("DownloadError", updater.ReasonHashCheck).Return()

	recorder := NewRecorder(next, journal, logger.Discard())
	recorder.Expect("http://localhost/update.bin", "Release", "6.1.0", false)
	recorder.DownloadError(updater.ReasonHashCheck)

	journal.AssertExpectations(t)
	next.AssertExpectations(t)
}

func TestRecorder_ExpectRecord(t *testing.T) {
	journal := new(MockJournal)
	next := new(MockClient)

	journal.On("Add", mock.Anything, Entry{
		URL:      "http://localhost/update.bin",
		Channel:  "Beta",
		Version:  "6.2.0",
		Path:     "/tmp/update.bin",
		Outcome:  OutcomeFailed,
		Reason:   updater.ReasonTransport,
		Required: true,
	}).Return(int64(3), nil)
	next.On("DownloadError", updater.ReasonTransport).Return()

	recorder := NewRecorder(next, journal, logger.Discard())
	recorder.ExpectRecord(updater.DownloadRecord{
		URL:           "http://localhost/update.bin",
		Path:          "/tmp/update.bin",
		UpdateChannel: "Beta",
		UpdateVersion: "6.2.0",
		Required:      true,
	})
	recorder.DownloadError(updater.ReasonTransport)

	journal.AssertExpectations(t)
	next.AssertExpectations(t)
}

func TestRecorder_JournalErrorStillForwards(t *testing.T) {
	journal := new(MockJournal)
	next := new(MockClient)

	journal.On("Add", mock.Anything, mock.Anything).Return(int64(0), errors.New("database is locked"))
	next.On("DownloadError", updater.ReasonTransport).Return()

	NewRecorder(next, journal, logger.Discard()).DownloadError(updater.ReasonTransport)

	next.AssertExpectations(t)
}
