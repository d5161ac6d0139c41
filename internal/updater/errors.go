package updater

import (
	"errors"
	"fmt"
)

// Причины, передаваемые в Client.DownloadError
const (
	ReasonInProgress = "download in progress"
	ReasonNoFilePath = "no file path"
	ReasonNoMarker   = "no download marker"
	ReasonNoInfo     = "no download information in marker"
	ReasonHashCheck  = "failed hash check"
	ReasonTransport  = "curl error"
)

// ErrCheckInProgress проверка обновлений уже выполняется
var ErrCheckInProgress = errors.New("update check in progress")

// StatusError сервер ответил статусом ошибки
type StatusError struct {
	StatusCode int
	URL        string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("сервер вернул статус %d для %s", e.StatusCode, e.URL)
}

// CheckError ошибка запроса к сервису обновлений
type CheckError struct {
	StatusCode int
	Err        error
}

func (e *CheckError) Error() string {
	if e.StatusCode != 0 && e.Err != nil {
		return fmt.Sprintf("проверка обновлений: статус %d: %v", e.StatusCode, e.Err)
	}
	if e.StatusCode != 0 {
		return fmt.Sprintf("проверка обновлений: статус %d", e.StatusCode)
	}
	return fmt.Sprintf("проверка обновлений: %v", e.Err)
}

func (e *CheckError) Unwrap() error {
	return e.Err
}
