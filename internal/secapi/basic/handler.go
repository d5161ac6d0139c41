// Package basic реализует файловое защищенное хранилище.
//
// Файл хранилища: 32 байта соли, замаскированной XOR-падом от
// идентификатора машины, и JSON-документ, зашифрованный ChaCha20
// с солью в качестве ключа. При чтении поддерживается старый формат
// (16 байт соли и RC4). Это защита от случайного чтения, а не от
// целенаправленной атаки.
package basic

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/moby/sys/atomicwriter"
	"golang.org/x/exp/slog"

	"alchemy/internal/machineid"
	"alchemy/internal/secapi"
)

const legacyPasswordSize = 32

type Handler struct {
	path               string
	legacyPasswordPath string
	machine            machineid.Provider
	log                *slog.Logger

	data        protectedData
	initialized bool
}

var _ secapi.Handler = (*Handler)(nil)

func New(path, legacyPasswordPath string, machine machineid.Provider, log *slog.Logger) *Handler {
	return &Handler{
		path:               path,
		legacyPasswordPath: legacyPasswordPath,
		machine:            machine,
		log:                log.With(slog.String("component", "secapi.basic")),
		data:               make(protectedData),
	}
}

// NewDefaultRegistry реестр с базовым хранилищем по умолчанию
func NewDefaultRegistry(path, legacyPasswordPath string, machine machineid.Provider, log *slog.Logger) *secapi.Registry {
	registry := secapi.NewRegistry(log)
	registry.Register(secapi.BasicHandlerName, New(path, legacyPasswordPath, machine, log))
	return registry
}

// Init читает файл хранилища. Отсутствующий файл означает пустое хранилище.
// При ошибке хранилище остается пустым и не перезаписывает файл при Close.
func (h *Handler) Init() error {
	h.data = make(protectedData)
	h.initialized = false

	if len(h.machine.UniqueID()) == 0 {
		h.log.Warn("Идентификатор машины пуст, хранилище не будет привязано к машине")
	}

	raw, err := os.ReadFile(h.path)
	if errors.Is(err, fs.ErrNotExist) {
		h.initialized = true
		return nil
	}
	if err != nil {
		return &secapi.ProtectedDataError{Kind: secapi.FailureRead, Path: h.path, Err: err}
	}

	data, err := decodeProtectedData(raw, h.machine.UniqueID())
	if err != nil {
		var pde *secapi.ProtectedDataError
		if errors.As(err, &pde) {
			pde.Path = h.path
		}
		h.log.Warn("Ошибка чтения защищенного хранилища", "path", h.path, "error", err)
		return err
	}

	h.data = data
	h.initialized = true
	h.log.Debug("Защищенное хранилище загружено", "path", h.path, "types", len(data))
	return nil
}

func (h *Handler) ProtectedData(dataType, dataID string) json.RawMessage {
	value, ok := h.data[dataType][dataID]
	if !ok {
		return nil
	}
	return append(json.RawMessage(nil), value...)
}

func (h *Handler) SetProtectedData(dataType, dataID string, data json.RawMessage) {
	byID, ok := h.data[dataType]
	if !ok {
		byID = make(map[string]json.RawMessage)
		h.data[dataType] = byID
	}
	byID[dataID] = append(json.RawMessage(nil), data...)
}

func (h *Handler) DeleteProtectedData(dataType, dataID string) {
	byID, ok := h.data[dataType]
	if !ok {
		return
	}
	delete(byID, dataID)
}

func (h *Handler) CreateCredential(grid string, identifier *secapi.Identifier, authenticator *secapi.Authenticator) *secapi.Credential {
	cred := secapi.NewCredential(grid)
	cred.SetCredentialData(identifier, authenticator)
	return cred
}

// LoadCredential ищет учетные данные по userID. Пустой userID
// возвращает первую запись грида. Если ничего не найдено, возвращается
// анонимный Credential.
func (h *Handler) LoadCredential(grid, userID string) *secapi.Credential {
	cred := secapi.NewCredential(grid)
	for _, stored := range h.storedCredentials(grid) {
		if stored.Identifier == nil {
			continue
		}
		if userID == "" || secapi.UserIDFromIdentifier(stored.Identifier) == userID {
			cred.SetCredentialData(stored.Identifier, stored.Authenticator)
			break
		}
	}
	return cred
}

func (h *Handler) LoadCredentialByIdentifier(grid string, identifier *secapi.Identifier) *secapi.Credential {
	userID := secapi.UserIDFromIdentifier(identifier)
	if userID == "" {
		return secapi.NewCredential(grid)
	}
	return h.LoadCredential(grid, userID)
}

// SaveCredential добавляет или заменяет запись с тем же userID и
// сохраняет хранилище. Секрет пишется только при saveAuthenticator.
func (h *Handler) SaveCredential(cred *secapi.Credential, saveAuthenticator bool) {
	if !cred.HasIdentifier() {
		h.log.Warn("Анонимные учетные данные не сохраняются", "grid", cred.Grid())
		return
	}

	stored := cred.Stored(saveAuthenticator)
	userID := cred.UserID()

	list := h.storedCredentials(cred.Grid())
	replaced := false
	for i := range list {
		if list[i].Identifier != nil && secapi.UserIDFromIdentifier(list[i].Identifier) == userID {
			list[i] = stored
			replaced = true
			break
		}
	}
	if !replaced {
		list = append(list, stored)
	}

	h.setStoredCredentials(cred.Grid(), list)
	h.log.Debug("Учетные данные сохранены", "credential", cred.String())
	h.persist()
}

// DeleteIdentifier удаляет запись и сохраняет хранилище.
// Грид без записей удаляется целиком.
func (h *Handler) DeleteIdentifier(grid string, identifier *secapi.Identifier) {
	userID := secapi.UserIDFromIdentifier(identifier)

	list := h.storedCredentials(grid)
	kept := list[:0]
	for _, stored := range list {
		if stored.Identifier != nil && secapi.UserIDFromIdentifier(stored.Identifier) == userID {
			continue
		}
		kept = append(kept, stored)
	}

	if len(kept) == 0 {
		h.DeleteProtectedData(secapi.CredentialsDataType, grid)
	} else {
		h.setStoredCredentials(grid, kept)
	}
	h.persist()
}

func (h *Handler) DeleteCredential(cred *secapi.Credential) {
	h.DeleteIdentifier(cred.Grid(), cred.Identifier())
	cred.SetCredentialData(nil, nil)
}

func (h *Handler) CredentialIdentifiers(grid string) []*secapi.Identifier {
	var ids []*secapi.Identifier
	for _, stored := range h.storedCredentials(grid) {
		if stored.Identifier != nil {
			ids = append(ids, stored.Identifier)
		}
	}
	return ids
}

// Grids гриды, для которых есть сохраненные учетные данные
func (h *Handler) Grids() []string {
	grids := make([]string, 0, len(h.data[secapi.CredentialsDataType]))
	for grid := range h.data[secapi.CredentialsDataType] {
		grids = append(grids, grid)
	}
	return grids
}

// Flush сохраняет хранилище на диск. До успешного Init возвращает
// secapi.ErrNotInitialized и файл не трогает.
func (h *Handler) Flush() error {
	return h.writeProtectedData()
}

// Close сохраняет хранилище, если оно было успешно инициализировано
func (h *Handler) Close() error {
	if !h.initialized {
		return nil
	}
	return h.writeProtectedData()
}

// LegacyPassword читает пароль из старого файла password.dat.
// Отсутствующий или короткий файл дает пустую строку.
func (h *Handler) LegacyPassword() string {
	if h.legacyPasswordPath == "" {
		return ""
	}

	f, err := os.Open(h.legacyPasswordPath)
	if err != nil {
		return ""
	}
	defer f.Close()

	buf := make([]byte, legacyPasswordSize)
	if _, err := io.ReadFull(f, buf); err != nil {
		h.log.Debug("Старый файл пароля поврежден", "path", h.legacyPasswordPath, "error", err)
		return ""
	}

	newXORCipher(h.machine.UniqueID()).apply(buf)
	return string(buf)
}

func (h *Handler) storedCredentials(grid string) []secapi.StoredCredential {
	raw := h.data[secapi.CredentialsDataType][grid]
	if len(raw) == 0 {
		return nil
	}

	var list []secapi.StoredCredential
	if err := json.Unmarshal(raw, &list); err != nil {
		h.log.Warn("Список учетных данных поврежден", "grid", grid, "error", err)
		return nil
	}
	return list
}

func (h *Handler) setStoredCredentials(grid string, list []secapi.StoredCredential) {
	raw, err := json.Marshal(list)
	if err != nil {
		h.log.Error("Ошибка сериализации учетных данных", "grid", grid, "error", err)
		return
	}
	h.SetProtectedData(secapi.CredentialsDataType, grid, raw)
}

// persist сохраняет хранилище после изменения учетных данных; ошибка
// записи только логируется
func (h *Handler) persist() {
	err := h.writeProtectedData()
	if errors.Is(err, secapi.ErrNotInitialized) {
		h.log.Warn("Хранилище не инициализировано, изменения не записаны", "path", h.path)
		return
	}
	if err != nil {
		h.log.Warn("Ошибка сохранения защищенного хранилища", "path", h.path, "error", err)
	}
}

func (h *Handler) writeProtectedData() error {
	// Нечитаемый файл может еще пригодиться, пустой документ поверх не пишем
	if !h.initialized {
		return secapi.ErrNotInitialized
	}

	doc, err := json.Marshal(h.data)
	if err != nil {
		return fmt.Errorf("ошибка сериализации хранилища: %w", err)
	}
	defer clearMemory(doc)

	blob, err := encodeProtectedData(doc, h.machine.UniqueID())
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(h.path), 0700); err != nil {
		return fmt.Errorf("ошибка создания директории хранилища: %w", err)
	}

	if err := atomicwriter.WriteFile(h.path, blob, 0600); err != nil {
		return fmt.Errorf("ошибка записи хранилища %s: %w", h.path, err)
	}
	return nil
}
