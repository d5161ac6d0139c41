package updater

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"os"
)

// fileMD5 hex-дайджест файла в нижнем регистре
func fileMD5(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := md5.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("ошибка чтения %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// validate сверяет MD5 файла с ожидаемым хэшем (с учетом регистра).
// Пустой хэш означает отсутствие проверки.
func (d *Downloader) validate(rec *DownloadRecord) bool {
	digest, err := fileMD5(rec.Path)
	if err != nil {
		d.log.Info("Файл загрузки недоступен", "path", rec.Path, "error", err)
		return false
	}

	if rec.Hash == "" {
		d.log.Info("Хэш не указан, файл не проверен", "path", rec.Path)
		return true
	}

	if rec.Hash != digest {
		d.log.Warn("Хэш загрузки не совпадает", "path", rec.Path, "expected", rec.Hash, "computed", digest)
		return false
	}

	d.log.Info("Хэш загрузки подтвержден", "path", rec.Path, "hash", rec.Hash)
	return true
}

func (d *Downloader) validateOrRemove(rec *DownloadRecord) bool {
	if d.validate(rec) {
		return true
	}
	d.log.Info("Удаление файла загрузки", "path", rec.Path)
	if err := removeFile(rec.Path); err != nil {
		d.log.Warn("Ошибка удаления файла загрузки", "path", rec.Path, "error", err)
	}
	return false
}
