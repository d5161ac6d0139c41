package history

import (
	"errors"
	"testing"

	"github.com/golang-migrate/migrate/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockMigrator - мок для интерфейса Migrator
type MockMigrator struct {
	mock.Mock
}

func (m *MockMigrator) Up() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockMigrator) Close() (error, error) {
	args := m.Called()
	return args.Error(0), args.Error(1)
}

func TestMigration_Up_Success(t *testing.T) {
	mockM := new(MockMigrator)
	mockM.On("Up").Return(nil)
	mockM.On("Close").Return(nil, nil)

	var gotURL string
	engine := func(databaseURL string) (Migrator, error) {
		gotURL = databaseURL
		return mockM, nil
	}

	err := NewMigration("/tmp/updates.db", engine).Up()

	assert.NoError(t, err)
	assert.Equal(t, "sqlite3:///tmp/updates.db", gotURL)
	mockM.AssertExpectations(t)
}

func TestMigration_Up_NoChange(t *testing.T) {
	mockM := new(MockMigrator)
	// ErrNoChange не должна считаться ошибкой в методе Up()
	mockM.On("Up").Return(migrate.ErrNoChange)
	mockM.On("Close").Return(nil, nil)

	engine := func(string) (Migrator, error) { return mockM, nil }

	assert.NoError(t, NewMigration("updates.db", engine).Up())
}

func TestMigration_Up_Error(t *testing.T) {
	mockM := new(MockMigrator)
	mockM.On("Up").Return(errors.New("syntax error"))
	mockM.On("Close").Return(nil, errors.New("database locked"))

	engine := func(string) (Migrator, error) { return mockM, nil }

	err := NewMigration("updates.db", engine).Up()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "syntax error")
	assert.Contains(t, err.Error(), "database locked")
}

func TestMigration_Up_EngineError(t *testing.T) {
	engine := func(string) (Migrator, error) {
		return nil, errors.New("engine crash")
	}

	err := NewMigration("updates.db", engine).Up()
	assert.Error(t, err)
	assert.Equal(t, "engine crash", err.Error())
}
