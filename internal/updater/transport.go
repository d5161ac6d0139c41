package updater

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"
)

const defaultUserAgent = "Alchemy-Updater/1.0"

// TransportOptions параметры HTTP-транспорта обновлений
type TransportOptions struct {
	// CACertPath PEM-файл доверенных корневых сертификатов; пусто - системные
	CACertPath            string
	UserAgent             string
	ResponseHeaderTimeout time.Duration
}

// transport HTTP-клиент загрузчика и проверки обновлений.
// Общего таймаута нет: загрузка большого файла может идти долго.
type transport struct {
	client    *http.Client
	userAgent string
}

func newTransport(opts TransportOptions) (*transport, error) {
	tlsConfig := &tls.Config{MinVersion: tls.VersionTLS12}

	if opts.CACertPath != "" {
		pem, err := os.ReadFile(opts.CACertPath)
		if err != nil {
			return nil, fmt.Errorf("ошибка чтения CA сертификата: %w", err)
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(pem) {
			return nil, fmt.Errorf("в %s нет PEM сертификатов", opts.CACertPath)
		}
		tlsConfig.RootCAs = pool
	}

	userAgent := opts.UserAgent
	if userAgent == "" {
		userAgent = defaultUserAgent
	}

	client := &http.Client{
		Transport: &http.Transport{
			Proxy: http.ProxyFromEnvironment,
			DialContext: (&net.Dialer{
				Timeout:   30 * time.Second,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			TLSClientConfig:       tlsConfig,
			MaxIdleConns:          10,
			IdleConnTimeout:       90 * time.Second,
			ResponseHeaderTimeout: opts.ResponseHeaderTimeout,
			// Content-Length нужен как есть, без прозрачной распаковки
			DisableCompression: true,
		},
	}

	return &transport{client: client, userAgent: userAgent}, nil
}

// get выполняет GET; при offset > 0 запрашивает диапазон bytes=offset-.
// Статус 400 и выше считается ошибкой.
func (t *transport) get(ctx context.Context, url string, offset int64) (*http.Response, error) {
	resp, err := t.do(ctx, url, offset)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode >= http.StatusBadRequest {
		resp.Body.Close()
		return nil, &StatusError{StatusCode: resp.StatusCode, URL: url}
	}

	return resp, nil
}

func (t *transport) do(ctx context.Context, url string, offset int64) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания запроса: %w", err)
	}

	req.Header.Set("User-Agent", t.userAgent)
	if offset > 0 {
		req.Header.Set("Range", fmt.Sprintf("bytes=%d-", offset))
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("сервер недоступен: %w", err)
	}

	return resp, nil
}
