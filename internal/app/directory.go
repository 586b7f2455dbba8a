package app

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/Chat/internal/domain"
)

// Directory mirrors the persisted room set in memory. Mutation happens
// only after the corresponding storage call succeeded; on storage
// failure the directory stays untouched.
type Directory struct {
	mu    sync.RWMutex
	rooms map[domain.RoomName]*domain.Room
}

func NewDirectory() *Directory {
	return &Directory{rooms: make(map[domain.RoomName]*domain.Room)}
}

// Seed loads the durable room set, typically at startup.
func (d *Directory) Seed(rooms []*domain.Room) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, r := range rooms {
		d.rooms[r.Name] = r
	}
	log.Info().Str("module", "app.directory").Int("rooms", len(rooms)).Msg("directory seeded")
}

// Put mirrors a durably created room.
func (d *Directory) Put(r *domain.Room) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.rooms[r.Name] = r
}

// Drop mirrors a durable delete.
func (d *Directory) Drop(name domain.RoomName) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.rooms, name)
}

func (d *Directory) Get(name domain.RoomName) (*domain.Room, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	r, ok := d.rooms[name]
	return r, ok
}

// List snapshots the known rooms.
func (d *Directory) List() []*domain.Room {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]*domain.Room, 0, len(d.rooms))
	for _, r := range d.rooms {
		out = append(out, r)
	}
	return out
}
