package updater

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"

	"golang.org/x/exp/slog"
)

// ProtocolVersion версия протокола сервиса обновлений
const ProtocolVersion = "v1.1"

// maxCheckResponse ограничение на размер ответа проверки
const maxCheckResponse = 1 << 20

// CheckParams параметры запроса проверки обновлений
type CheckParams struct {
	BaseURL         string
	Channel         string
	Version         string
	Platform        string
	PlatformVersion string
	UniqueID        string
	WillingToTest   bool
}

// UpdateInfo ответ сервиса обновлений
type UpdateInfo struct {
	Version  string `json:"version"`
	URL      string `json:"url,omitempty"`
	Hash     string `json:"hash,omitempty"`
	Required bool   `json:"required"`
	MoreInfo string `json:"more_info,omitempty"`
	Channel  string `json:"channel,omitempty"`
}

// Available есть ли пакет для загрузки
func (u *UpdateInfo) Available() bool {
	return u.URL != ""
}

type serviceError struct {
	Code string `json:"error_code"`
	Text string `json:"error_text"`
}

// Checker запрашивает у сервиса обновлений сведения о новой версии
type Checker struct {
	transport  *transport
	inProgress atomic.Bool
	log        *slog.Logger
}

func NewChecker(opts TransportOptions, log *slog.Logger) (*Checker, error) {
	t, err := newTransport(opts)
	if err != nil {
		return nil, err
	}
	return &Checker{
		transport: t,
		log:       log.With(slog.String("component", "updater.checker")),
	}, nil
}

// CheckVersion выполняет одну проверку; параллельная проверка
// возвращает ErrCheckInProgress
func (c *Checker) CheckVersion(ctx context.Context, p CheckParams) (*UpdateInfo, error) {
	if !c.inProgress.CompareAndSwap(false, true) {
		c.log.Warn("Проверка обновлений уже выполняется")
		return nil, ErrCheckInProgress
	}
	defer c.inProgress.Store(false)

	checkURL, err := BuildCheckURL(p)
	if err != nil {
		return nil, &CheckError{Err: err}
	}

	c.log.Info("Проверка обновлений", "url", checkURL)

	resp, err := c.transport.do(ctx, checkURL, 0)
	if err != nil {
		return nil, &CheckError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxCheckResponse))
	if err != nil {
		return nil, &CheckError{Err: fmt.Errorf("ошибка чтения ответа: %w", err)}
	}

	if resp.StatusCode != http.StatusOK {
		var svcErr serviceError
		_ = json.Unmarshal(body, &svcErr)
		detail := svcErr.Code
		if svcErr.Text != "" {
			if detail != "" {
				detail += ": "
			}
			detail += svcErr.Text
		}
		c.log.Warn("Сервис обновлений вернул ошибку", "status", resp.StatusCode, "detail", detail)

		cerr := &CheckError{StatusCode: resp.StatusCode}
		if detail != "" {
			cerr.Err = errors.New(detail)
		}
		return nil, cerr
	}

	var info UpdateInfo
	if err := json.Unmarshal(body, &info); err != nil {
		return nil, &CheckError{Err: fmt.Errorf("ошибка разбора ответа: %w", err)}
	}

	c.log.Info("Ответ сервиса обновлений", "version", info.Version, "required", info.Required, "available", info.Available())
	return &info, nil
}

// BuildCheckURL собирает адрес проверки:
// <base>/v1.1/<channel>/<version>/<platform>/<platform_version>/<testok|testno>/<unique_id>
func BuildCheckURL(p CheckParams) (string, error) {
	if p.BaseURL == "" {
		return "", fmt.Errorf("адрес сервиса обновлений не задан")
	}

	base, err := url.Parse(p.BaseURL)
	if err != nil {
		return "", fmt.Errorf("неверный адрес сервиса обновлений: %w", err)
	}

	test := "testno"
	if p.WillingToTest {
		test = "testok"
	}

	segments := []string{ProtocolVersion, p.Channel, p.Version, p.Platform, p.PlatformVersion, test, p.UniqueID}
	escaped := make([]string, len(segments))
	for i, s := range segments {
		escaped[i] = url.PathEscape(s)
	}

	return strings.TrimRight(base.String(), "/") + "/" + strings.Join(escaped, "/"), nil
}

// UniqueIDFromMachine MD5-хэш идентификатора машины, передаваемый сервису
func UniqueIDFromMachine(id []byte) string {
	sum := md5.Sum(id)
	return hex.EncodeToString(sum[:])
}
