// Package secapi описывает защищенное хранилище данных и учетных записей.
//
// Реализации регистрируются в Registry по имени; сейчас есть только
// базовая файловая реализация (пакет basic), но граница интерфейса
// оставляет место для хранилищ на основе системной связки ключей.
package secapi

import "encoding/json"

const (
	// CredentialsDataType тип защищенных данных, в котором лежат учетные записи
	CredentialsDataType = "credentials"
	// BasicHandlerName имя базового файлового хранилища в реестре
	BasicHandlerName = "BASIC_SECHANDLER"
)

// ProtectedStorage произвольные небольшие данные, ключ (dataType, dataID).
// Изменения живут в памяти, пока хранилище не будет сохранено.
type ProtectedStorage interface {
	ProtectedData(dataType, dataID string) json.RawMessage
	SetProtectedData(dataType, dataID string, data json.RawMessage)
	DeleteProtectedData(dataType, dataID string)
}

// CredentialStore учетные записи по гридам.
// Save и Delete сохраняют хранилище на диск сразу.
type CredentialStore interface {
	CreateCredential(grid string, identifier *Identifier, authenticator *Authenticator) *Credential
	LoadCredential(grid, userID string) *Credential
	LoadCredentialByIdentifier(grid string, identifier *Identifier) *Credential
	SaveCredential(cred *Credential, saveAuthenticator bool)
	DeleteCredential(cred *Credential)
	DeleteIdentifier(grid string, identifier *Identifier)
	CredentialIdentifiers(grid string) []*Identifier
}

// Handler хранилище с жизненным циклом Init -> ... -> Close
type Handler interface {
	ProtectedStorage
	CredentialStore

	Init() error
	Flush() error
	Close() error
}
