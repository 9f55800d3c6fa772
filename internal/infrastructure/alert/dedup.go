package alert

import (
	"sync"
	"time"
)

// Deduper помнит показанные оповещения. Оповещение считается показанным,
// пока не истекло окно window с момента показа.
type Deduper struct {
	window time.Duration
	now    func() time.Time

	mu    sync.Mutex
	shown map[string]time.Time
}

func NewDeduper(window time.Duration) *Deduper {
	return &Deduper{
		window: window,
		now:    time.Now,
		shown:  make(map[string]time.Time),
	}
}

// Allow сообщает, можно ли показать оповещение, и отмечает его показанным.
func (d *Deduper) Allow(title, message string) bool {
	key := title + "\x00" + message

	d.mu.Lock()
	defer d.mu.Unlock()

	now := d.now()
	if at, ok := d.shown[key]; ok && now.Sub(at) < d.window {
		return false
	}
	d.shown[key] = now

	// чистим истёкшие записи
	for k, at := range d.shown {
		if now.Sub(at) >= d.window {
			delete(d.shown, k)
		}
	}
	return true
}

// Dismiss закрывает оповещение, после чего его можно показать снова.
func (d *Deduper) Dismiss(title, message string) {
	d.mu.Lock()
	delete(d.shown, title+"\x00"+message)
	d.mu.Unlock()
}
