// Package catalog каталог выпусков сервера обновлений в YAML
package catalog

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Release один выпуск клиента для канала и платформы
type Release struct {
	Channel  string `yaml:"channel"`
	Version  string `yaml:"version"`
	Platform string `yaml:"platform"`
	File     string `yaml:"file"`
	Hash     string `yaml:"hash,omitempty"`
	Required bool   `yaml:"required,omitempty"`
	// MinVersion клиенты ниже этой версии обязаны обновиться
	MinVersion string `yaml:"min_version,omitempty"`
	MoreInfo   string `yaml:"more_info,omitempty"`
	// Test выпуск только для клиентов, согласных на тестовые сборки
	Test bool `yaml:"test,omitempty"`
}

// RequiredFor обязателен ли выпуск для клиента версии clientVersion
func (r *Release) RequiredFor(clientVersion string) bool {
	if r.Required {
		return true
	}
	return r.MinVersion != "" && CompareVersions(clientVersion, r.MinVersion) < 0
}

type Catalog struct {
	FilesDir string    `yaml:"files_dir"`
	Releases []Release `yaml:"releases"`
}

// Load читает каталог; files_dir считается относительно файла каталога.
// Недостающие хэши вычисляются по файлам выпусков.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения каталога: %w", err)
	}

	c, err := Parse(data)
	if err != nil {
		return nil, err
	}

	if c.FilesDir == "" {
		c.FilesDir = "."
	}
	if !filepath.IsAbs(c.FilesDir) {
		c.FilesDir = filepath.Join(filepath.Dir(path), c.FilesDir)
	}

	for i := range c.Releases {
		r := &c.Releases[i]
		if r.Hash != "" {
			continue
		}
		hash, err := fileMD5(c.FilePath(r.File))
		if err != nil {
			return nil, fmt.Errorf("ошибка вычисления хэша %s: %w", r.File, err)
		}
		r.Hash = hash
	}

	return c, nil
}

func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("ошибка разбора каталога: %w", err)
	}

	for i, r := range c.Releases {
		if r.Channel == "" || r.Version == "" || r.Platform == "" || r.File == "" {
			return nil, fmt.Errorf("выпуск #%d: channel, version, platform и file обязательны", i+1)
		}
		if strings.ContainsAny(r.File, `/\`) {
			return nil, fmt.Errorf("выпуск #%d: file должен быть именем файла", i+1)
		}
	}

	return &c, nil
}

// Find новейший выпуск канала для платформы
func (c *Catalog) Find(channel, platform string, willingToTest bool) (*Release, bool) {
	var best *Release
	for i := range c.Releases {
		r := &c.Releases[i]
		if r.Channel != channel || r.Platform != platform {
			continue
		}
		if r.Test && !willingToTest {
			continue
		}
		if best == nil || CompareVersions(r.Version, best.Version) > 0 {
			best = r
		}
	}
	return best, best != nil
}

func (c *Catalog) Count() int {
	return len(c.Releases)
}

// HasFile есть ли в каталоге выпуск с таким файлом
func (c *Catalog) HasFile(name string) bool {
	for _, r := range c.Releases {
		if r.File == name {
			return true
		}
	}
	return false
}

func (c *Catalog) FilePath(name string) string {
	return filepath.Join(c.FilesDir, name)
}

// CompareVersions сравнивает версии вида 6.1.2 по числовым компонентам
func CompareVersions(a, b string) int {
	as := strings.Split(a, ".")
	bs := strings.Split(b, ".")

	for i := 0; i < len(as) || i < len(bs); i++ {
		av, bv := component(as, i), component(bs, i)
		if av != bv {
			if av < bv {
				return -1
			}
			return 1
		}
	}
	return 0
}

func component(parts []string, i int) int {
	if i >= len(parts) {
		return 0
	}
	n, err := strconv.Atoi(strings.TrimSpace(parts[i]))
	if err != nil {
		return 0
	}
	return n
}

func fileMD5(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := md5.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
