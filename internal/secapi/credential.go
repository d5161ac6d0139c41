package secapi

import (
	"strings"
)

const (
	IdentifierTypeAccount  = "account"
	IdentifierTypeAgent    = "agent"
	AuthenticatorTypeClear = "clear"
	AuthenticatorTypeHash  = "hash"
)

// Identifier "кто": агент (имя и фамилия) или аккаунт
type Identifier struct {
	Type        string `json:"type"`
	FirstName   string `json:"first_name,omitempty"`
	LastName    string `json:"last_name,omitempty"`
	AccountName string `json:"account_name,omitempty"`
}

func NewAgentIdentifier(firstName, lastName string) *Identifier {
	return &Identifier{Type: IdentifierTypeAgent, FirstName: firstName, LastName: lastName}
}

func NewAccountIdentifier(accountName string) *Identifier {
	return &Identifier{Type: IdentifierTypeAccount, AccountName: accountName}
}

// Authenticator секрет: пароль в открытом виде или хэш
type Authenticator struct {
	Type      string `json:"type"`
	Algorithm string `json:"algorithm,omitempty"`
	Secret    string `json:"secret"`
}

func NewClearAuthenticator(secret string) *Authenticator {
	return &Authenticator{Type: AuthenticatorTypeClear, Secret: secret}
}

func NewHashAuthenticator(algorithm, secret string) *Authenticator {
	return &Authenticator{Type: AuthenticatorTypeHash, Algorithm: algorithm, Secret: secret}
}

// StoredCredential форма, в которой учетные данные лежат в хранилище
type StoredCredential struct {
	Identifier    *Identifier    `json:"identifier,omitempty"`
	Authenticator *Authenticator `json:"authenticator,omitempty"`
}

// Credential учетные данные для одного грида.
// Credential без идентификатора считается анонимным.
type Credential struct {
	grid          string
	identifier    *Identifier
	authenticator *Authenticator
}

func NewCredential(grid string) *Credential {
	return &Credential{grid: grid}
}

func (c *Credential) Grid() string {
	return c.grid
}

func (c *Credential) SetCredentialData(identifier *Identifier, authenticator *Authenticator) {
	c.identifier = copyIdentifier(identifier)
	c.authenticator = copyAuthenticator(authenticator)
}

func (c *Credential) Identifier() *Identifier {
	return copyIdentifier(c.identifier)
}

func (c *Credential) Authenticator() *Authenticator {
	return copyAuthenticator(c.authenticator)
}

func (c *Credential) HasIdentifier() bool {
	return c.identifier != nil
}

func (c *Credential) HasAuthenticator() bool {
	return c.authenticator != nil
}

func (c *Credential) ClearAuthenticator() {
	c.authenticator = nil
}

func (c *Credential) IdentifierType() string {
	if c.identifier == nil {
		return ""
	}
	return c.identifier.Type
}

func (c *Credential) AuthenticatorType() string {
	if c.authenticator == nil {
		return ""
	}
	return c.authenticator.Type
}

func (c *Credential) UserID() string {
	return UserIDFromIdentifier(c.identifier)
}

func (c *Credential) Username() string {
	return UsernameFromIdentifier(c.identifier)
}

// Stored возвращает запись для хранилища; секрет сохраняется только по запросу
// ("запомнить пароль")
func (c *Credential) Stored(saveAuthenticator bool) StoredCredential {
	stored := StoredCredential{Identifier: copyIdentifier(c.identifier)}
	if saveAuthenticator {
		stored.Authenticator = copyAuthenticator(c.authenticator)
	}
	return stored
}

// LoginParams параметры для запроса логина
func (c *Credential) LoginParams() map[string]string {
	params := make(map[string]string)
	if c.identifier == nil {
		return params
	}

	secret := ""
	if c.authenticator != nil {
		secret = c.authenticator.Secret
	}

	switch c.identifier.Type {
	case IdentifierTypeAgent:
		params["first"] = c.identifier.FirstName
		params["last"] = c.identifier.LastName
		params["passwd"] = "$1$" + secret
	case IdentifierTypeAccount:
		params["username"] = c.identifier.AccountName
		params["passwd"] = secret
	}

	return params
}

func (c *Credential) String() string {
	if c.identifier == nil {
		return c.grid + ":(null)"
	}

	switch c.identifier.Type {
	case IdentifierTypeAgent:
		return c.grid + ":" + c.identifier.FirstName + " " + c.identifier.LastName
	case IdentifierTypeAccount:
		return c.grid + ":" + c.identifier.AccountName
	}

	return c.grid + ":(unknown type)"
}

// UserIDFromIdentifier стабильный ключ учетных данных внутри грида
func UserIDFromIdentifier(id *Identifier) string {
	if id == nil {
		return ""
	}

	switch id.Type {
	case IdentifierTypeAgent:
		return strings.ToLower(id.FirstName + "_" + id.LastName)
	case IdentifierTypeAccount:
		return strings.ToLower(id.AccountName)
	}

	return ""
}

// UsernameFromIdentifier имя для отображения; фамилия Resident опускается
func UsernameFromIdentifier(id *Identifier) string {
	if id == nil {
		return ""
	}

	switch id.Type {
	case IdentifierTypeAgent:
		if id.LastName == "" || strings.EqualFold(id.LastName, "resident") {
			return id.FirstName
		}
		return id.FirstName + " " + id.LastName
	case IdentifierTypeAccount:
		return id.AccountName
	}

	return ""
}

func copyIdentifier(id *Identifier) *Identifier {
	if id == nil {
		return nil
	}
	cp := *id
	return &cp
}

func copyAuthenticator(auth *Authenticator) *Authenticator {
	if auth == nil {
		return nil
	}
	cp := *auth
	return &cp
}
