package updater

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/moby/sys/atomicwriter"
)

// MarkerFileName имя файла-маркера незавершенной загрузки в каталоге логов
const MarkerFileName = "AlchemyUpdateDownload.json"

// DownloadRecord описание загрузки, сохраняемое в маркере для возобновления
type DownloadRecord struct {
	URL            string `json:"url"`
	Hash           string `json:"hash"`
	Path           string `json:"path"`
	Size           int64  `json:"size"`
	UpdateChannel  string `json:"update_channel"`
	UpdateVersion  string `json:"update_version"`
	InfoURL        string `json:"info_url,omitempty"`
	Required       bool   `json:"required"`
	CurrentVersion string `json:"current_version"`
}

// Empty запись без адреса загрузки непригодна для возобновления
func (r *DownloadRecord) Empty() bool {
	return r == nil || r.URL == ""
}

// errNoMarker маркера нет на диске
var errNoMarker = errors.New("маркер загрузки не найден")

func readMarker(path string) (*DownloadRecord, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, errNoMarker
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения маркера: %w", err)
	}

	var rec DownloadRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("ошибка разбора маркера: %w", err)
	}
	return &rec, nil
}

func writeMarker(path string, rec *DownloadRecord) error {
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("ошибка сериализации маркера: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("ошибка создания директории маркера: %w", err)
	}

	if err := atomicwriter.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("ошибка записи маркера: %w", err)
	}
	return nil
}

func removeFile(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
