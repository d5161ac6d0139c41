package secapi

import (
	"errors"
	"fmt"
)

// ErrProtectedData хранилище не удалось прочитать; сохраненные учетные данные недоступны
var ErrProtectedData = errors.New("protected data error")

// ErrNotInitialized хранилище не прочитано, запись на диск запрещена
var ErrNotInitialized = errors.New("protected data store is not initialized")

type FailureKind int

const (
	FailureRead FailureKind = iota + 1
	FailureTooShort
	FailureParse
	FailureLegacyParse
)

func (k FailureKind) String() string {
	switch k {
	case FailureRead:
		return "config file cannot be read"
	case FailureTooShort:
		return "config file too short"
	case FailureParse:
		return "config file cannot be parsed"
	case FailureLegacyParse:
		return "config file cannot be decrypted"
	}
	return "unknown failure"
}

// ProtectedDataError ошибка чтения защищенного хранилища
type ProtectedDataError struct {
	Kind FailureKind
	Path string
	Err  error
}

func (e *ProtectedDataError) Error() string {
	msg := "protected data"
	if e.Path != "" {
		msg += " " + e.Path
	}
	msg += ": " + e.Kind.String()
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *ProtectedDataError) Unwrap() error {
	return e.Err
}

func (e *ProtectedDataError) Is(target error) bool {
	return target == ErrProtectedData
}
