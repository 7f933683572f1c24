package network

import (
	"fishgame-server/pkg/api"
	"sync"
)

// Broadcaster занимается только рассылкой снимков подписчикам сессии.
// У сессии может быть несколько подписчиков: игрок и зрители.
type Broadcaster struct {
	mu sync.RWMutex
	// Мапа: SessionID -> Личные каналы подписчиков
	subscribers map[string]map[chan api.ServerResponse]struct{}
}

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{
		subscribers: make(map[string]map[chan api.ServerResponse]struct{}),
	}
}

// Subscribe создает личный канал для нового подписчика сессии
func (b *Broadcaster) Subscribe(sessionID string) chan api.ServerResponse {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan api.ServerResponse, 100)
	subs, ok := b.subscribers[sessionID]
	if !ok {
		subs = make(map[chan api.ServerResponse]struct{})
		b.subscribers[sessionID] = subs
	}
	subs[ch] = struct{}{}
	return ch
}

// Unsubscribe удаляет подписчика и закрывает его канал
func (b *Broadcaster) Unsubscribe(sessionID string, ch chan api.ServerResponse) {
	b.mu.Lock()
	defer b.mu.Unlock()

	subs, ok := b.subscribers[sessionID]
	if !ok {
		return
	}
	if _, ok := subs[ch]; ok {
		delete(subs, ch)
		close(ch)
	}
	if len(subs) == 0 {
		delete(b.subscribers, sessionID)
	}
}

// CloseSession отключает всех подписчиков сессии
func (b *Broadcaster) CloseSession(sessionID string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for ch := range b.subscribers[sessionID] {
		close(ch)
	}
	delete(b.subscribers, sessionID)
}

// SendTo отправляет снимок всем подписчикам сессии.
// Медленные подписчики пропускают сообщение, игровой цикл не ждет.
func (b *Broadcaster) SendTo(sessionID string, msg api.ServerResponse) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for ch := range b.subscribers[sessionID] {
		select {
		case ch <- msg:
		default:
		}
	}
}

// HasSubscriber проверяет, смотрит ли кто-нибудь на сессию
func (b *Broadcaster) HasSubscriber(sessionID string) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers[sessionID]) > 0
}

// SubscriberCount возвращает количество активных подписчиков по всем сессиям.
func (b *Broadcaster) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	n := 0
	for _, subs := range b.subscribers {
		n += len(subs)
	}
	return n
}
