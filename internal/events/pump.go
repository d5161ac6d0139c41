// Package events именованные каналы событий процесса.
// Загрузчик обновлений публикует прогресс в канал "updater".
package events

import (
	"fmt"
	"sort"
	"sync"
)

// Listener обработчик события; вызывается синхронно в горутине публикующего
type Listener func(payload any)

// Pump именованный канал с набором слушателей
type Pump struct {
	name      string
	mu        sync.RWMutex
	listeners map[string]Listener
}

func NewPump(name string) *Pump {
	return &Pump{name: name, listeners: make(map[string]Listener)}
}

func (p *Pump) Name() string {
	return p.name
}

// Listen подписывает слушателя под уникальным именем
func (p *Pump) Listen(name string, l Listener) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, ok := p.listeners[name]; ok {
		return fmt.Errorf("слушатель %q уже подписан на %q", name, p.name)
	}
	p.listeners[name] = l
	return nil
}

func (p *Pump) StopListening(name string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.listeners, name)
}

// Post отправляет событие всем слушателям в порядке их имен
func (p *Pump) Post(payload any) {
	p.mu.RLock()
	names := make([]string, 0, len(p.listeners))
	for name := range p.listeners {
		names = append(names, name)
	}
	listeners := make([]Listener, 0, len(names))
	sort.Strings(names)
	for _, name := range names {
		listeners = append(listeners, p.listeners[name])
	}
	p.mu.RUnlock()

	for _, l := range listeners {
		l(payload)
	}
}

// Pumps реестр каналов по имени
type Pumps struct {
	mu    sync.Mutex
	pumps map[string]*Pump
}

func NewPumps() *Pumps {
	return &Pumps{pumps: make(map[string]*Pump)}
}

// Obtain возвращает канал, создавая его при первом обращении
func (ps *Pumps) Obtain(name string) *Pump {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	if p, ok := ps.pumps[name]; ok {
		return p
	}
	p := NewPump(name)
	ps.pumps[name] = p
	return p
}
