// Package machineid определяет стабильный идентификатор машины, которым
// обфусцируется защищенное хранилище.
package machineid

import (
	"sync"

	"github.com/google/uuid"
)

// MaxLen максимальная длина идентификатора
const MaxLen = 32

// Provider источник идентификатора машины
type Provider interface {
	UniqueID() []byte
}

// Host берет аппаратный адрес сетевого интерфейса (node id).
// Если интерфейс не найден, идентификатор пустой: случайный node id
// не подходит, так как меняется между запусками.
type Host struct {
	once sync.Once
	id   []byte
}

func NewHost() *Host {
	return &Host{}
}

func (h *Host) UniqueID() []byte {
	h.once.Do(func() {
		if !uuid.SetNodeInterface("") {
			return
		}
		h.id = truncate(uuid.NodeID())
	})

	return clone(h.id)
}

// Static фиксированный идентификатор
type Static []byte

func (s Static) UniqueID() []byte {
	return clone(truncate(s))
}

func truncate(id []byte) []byte {
	if len(id) > MaxLen {
		return id[:MaxLen]
	}
	return id
}

func clone(id []byte) []byte {
	if len(id) == 0 {
		return nil
	}
	out := make([]byte, len(id))
	copy(out, id)
	return out
}
