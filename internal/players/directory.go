// Package players owns the player directory.
package players

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/verte-zerg/meeple/internal/model"
)

// Directory errors.
var (
	ErrNameRequired   = errors.New("player name is required")
	ErrNameTaken      = errors.New("a player with this name already exists")
	ErrPlayerNotFound = errors.New("player not found")
)

const legacyIDPrefix = "player_"

// Remote is the document store players are mirrored to.
type Remote interface {
	AddPlayer(ctx context.Context, name string) (model.Player, error)
	ListPlayers(ctx context.Context) ([]model.Player, error)
	UpdatePlayerName(ctx context.Context, id model.ID, name string) error
	DeletePlayer(ctx context.Context, id model.ID) error
}

// Cache is the local fallback copy of the directory.
type Cache interface {
	LoadPlayers(ctx context.Context) ([]model.Player, int, error)
	SavePlayers(ctx context.Context, players []model.Player, nextID int) error
}

// SessionRenamer rewrites a player's name across recorded sessions.
type SessionRenamer interface {
	RenamePlayer(ctx context.Context, oldName, newName string) (int, error)
}

// Directory holds player identities.
type Directory struct {
	mu      sync.RWMutex
	players []model.Player
	nextID  int

	remote  Remote
	cache   Cache
	renamer SessionRenamer
	logger  *log.Logger
	now     func() time.Time
}

// New creates an empty directory. Remote, cache and renamer may be nil.
func New(remote Remote, cache Cache, renamer SessionRenamer, logger *log.Logger) *Directory {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Directory{
		nextID:  1,
		remote:  remote,
		cache:   cache,
		renamer: renamer,
		logger:  logger,
		now:     time.Now,
	}
}

// Load fills the directory from the remote store. A reachable but empty
// remote receives all cached players first; otherwise only players created
// offline are uploaded. Any remote failure falls back to the cache. It only
// fails when ctx is done.
func (d *Directory) Load(ctx context.Context) error {
	if d.remote == nil {
		d.logger.Printf("warning: remote store not configured, using local cache")
		d.loadCache(ctx)
		return ctx.Err()
	}

	list, err := d.remote.ListPlayers(ctx)
	if err != nil {
		d.logger.Printf("warning: failed to load players from remote, using local cache: %v", err)
		d.loadCache(ctx)
		return ctx.Err()
	}
	cached, floor := d.loadCache(ctx)
	pending := cached
	if len(list) > 0 {
		pending = createdOffline(cached)
	}
	if len(pending) > 0 {
		if err := d.migrate(ctx, pending); err != nil {
			d.logger.Printf("warning: failed to migrate cached players: %v", err)
			return ctx.Err()
		}
		if list, err = d.remote.ListPlayers(ctx); err != nil {
			d.logger.Printf("warning: failed to reload players from remote, using local cache: %v", err)
			return ctx.Err()
		}
	}
	if len(list) == 0 {
		return ctx.Err()
	}

	d.mu.Lock()
	d.players = validate(list, d.logger)
	d.nextID = nextLocalID(d.players, floor)
	d.mu.Unlock()
	d.saveCache(ctx)
	d.logger.Printf("loaded %d players from remote", len(list))
	return ctx.Err()
}

// loadCache replaces the directory with the cached players and returns
// them with the cached next local id.
func (d *Directory) loadCache(ctx context.Context) ([]model.Player, int) {
	if d.cache == nil {
		return nil, 0
	}
	list, next, err := d.cache.LoadPlayers(ctx)
	if err != nil {
		d.logger.Printf("warning: failed to load local cache: %v", err)
		return nil, 0
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.players = validate(list, d.logger)
	d.nextID = nextLocalID(d.players, next)
	return clonePlayers(d.players), d.nextID
}

func createdOffline(list []model.Player) []model.Player {
	var out []model.Player
	for _, p := range list {
		if p.ID.IsLocal() {
			out = append(out, p)
		}
	}
	return out
}

// migrate adds cached players missing from the remote, matching names case-insensitively.
func (d *Directory) migrate(ctx context.Context, cached []model.Player) error {
	existing, err := d.remote.ListPlayers(ctx)
	if err != nil {
		return err
	}
	names := make(map[string]struct{}, len(existing)+len(cached))
	for _, p := range existing {
		names[foldName(p.Name)] = struct{}{}
	}
	added := 0
	for _, p := range cached {
		key := foldName(p.Name)
		if _, ok := names[key]; ok {
			continue
		}
		if _, err := d.remote.AddPlayer(ctx, p.Name); err != nil {
			return fmt.Errorf("failed to add player %q: %w", p.Name, err)
		}
		names[key] = struct{}{}
		added++
	}
	d.logger.Printf("migrated %d cached players to remote", added)
	return nil
}

// Create adds a player. The id is remote-assigned when the remote store
// accepts the write, otherwise a local integer.
func (d *Directory) Create(ctx context.Context, name string) (model.Player, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return model.Player{}, ErrNameRequired
	}
	d.mu.RLock()
	_, taken := d.byNameLocked(name)
	d.mu.RUnlock()
	if taken {
		return model.Player{}, ErrNameTaken
	}

	var player model.Player
	created := false
	if d.remote != nil {
		p, err := d.remote.AddPlayer(ctx, name)
		if err != nil {
			d.logger.Printf("warning: failed to create player remotely, creating locally: %v", err)
		} else {
			player = p
			created = true
		}
	}

	d.mu.Lock()
	if _, ok := d.byNameLocked(name); ok {
		d.mu.Unlock()
		return model.Player{}, ErrNameTaken
	}
	if !created {
		player = model.Player{
			ID:        model.LocalID(d.nextID),
			Name:      name,
			CreatedAt: d.now().UTC(),
		}
		d.nextID++
	}
	d.players = append(d.players, player)
	d.mu.Unlock()
	d.saveCache(ctx)
	return player, nil
}

// Rename changes a player's name and rewrites their sessions. It returns
// the number of sessions changed.
func (d *Directory) Rename(ctx context.Context, id model.ID, newName string) (int, error) {
	newName = strings.TrimSpace(newName)
	if newName == "" {
		return 0, ErrNameRequired
	}

	d.mu.Lock()
	i := d.indexLocked(id)
	if i < 0 {
		d.mu.Unlock()
		return 0, ErrPlayerNotFound
	}
	player := d.players[i]
	if player.Name == newName {
		d.mu.Unlock()
		return 0, nil
	}
	if other, ok := d.byNameLocked(newName); ok && other.ID != player.ID {
		d.mu.Unlock()
		return 0, ErrNameTaken
	}
	d.mu.Unlock()

	if d.remote != nil && !player.ID.IsLocal() {
		if err := d.remote.UpdatePlayerName(ctx, player.ID, newName); err != nil {
			d.logger.Printf("warning: failed to rename player %s remotely: %v", player.ID, err)
		}
	}

	d.mu.Lock()
	if i = d.indexLocked(player.ID); i >= 0 {
		d.players[i].Name = newName
	}
	d.mu.Unlock()
	d.saveCache(ctx)

	if d.renamer == nil {
		return 0, nil
	}
	n, err := d.renamer.RenamePlayer(ctx, player.Name, newName)
	if err != nil {
		return n, fmt.Errorf("failed to rename %q in sessions: %w", player.Name, err)
	}
	return n, nil
}

// Delete removes the player record. Sessions keep the historical name.
func (d *Directory) Delete(ctx context.Context, id model.ID) error {
	d.mu.Lock()
	i := d.indexLocked(id)
	if i < 0 {
		d.mu.Unlock()
		return ErrPlayerNotFound
	}
	player := d.players[i]
	d.players = append(d.players[:i:i], d.players[i+1:]...)
	d.mu.Unlock()

	if d.remote != nil && !player.ID.IsLocal() {
		if err := d.remote.DeletePlayer(ctx, player.ID); err != nil {
			d.logger.Printf("warning: failed to delete player %s remotely: %v", player.ID, err)
		}
	}
	d.saveCache(ctx)
	return nil
}

// GetByID finds a player by id. The legacy "player_<n>" form is accepted too.
func (d *Directory) GetByID(id model.ID) (model.Player, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if i := d.indexLocked(id); i >= 0 {
		return d.players[i], true
	}
	return model.Player{}, false
}

// GetByName finds a player by name, case-insensitively.
func (d *Directory) GetByName(name string) (model.Player, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.byNameLocked(name)
}

// All returns the players in directory order.
func (d *Directory) All() []model.Player {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return clonePlayers(d.players)
}

// Names returns player names sorted case-insensitively.
func (d *Directory) Names() []string {
	d.mu.RLock()
	names := make([]string, 0, len(d.players))
	for _, p := range d.players {
		names = append(names, p.Name)
	}
	d.mu.RUnlock()
	sort.Slice(names, func(i, j int) bool {
		return foldName(names[i]) < foldName(names[j])
	})
	return names
}

func (d *Directory) indexLocked(id model.ID) int {
	raw := strings.TrimSpace(string(id))
	bare := strings.TrimPrefix(raw, legacyIDPrefix)
	for i, p := range d.players {
		switch p.ID {
		case model.ID(raw), model.ID(bare), model.ID(legacyIDPrefix + bare):
			return i
		}
	}
	return -1
}

func (d *Directory) byNameLocked(name string) (model.Player, bool) {
	for _, p := range d.players {
		if model.SameName(p.Name, name) {
			return p, true
		}
	}
	return model.Player{}, false
}

func (d *Directory) saveCache(ctx context.Context) {
	if d.cache == nil {
		return
	}
	d.mu.RLock()
	snapshot := clonePlayers(d.players)
	next := d.nextID
	d.mu.RUnlock()
	if err := d.cache.SavePlayers(ctx, snapshot, next); err != nil {
		d.logger.Printf("warning: failed to save local cache: %v", err)
	}
}

// validate drops records without an id, a name or a creation time, and
// later duplicates of a name.
func validate(list []model.Player, logger *log.Logger) []model.Player {
	out := make([]model.Player, 0, len(list))
	seen := make(map[string]struct{}, len(list))
	for _, p := range list {
		p.Name = strings.TrimSpace(p.Name)
		if strings.TrimSpace(string(p.ID)) == "" || p.Name == "" || p.CreatedAt.IsZero() {
			logger.Printf("warning: dropping invalid player record %+v", p)
			continue
		}
		key := foldName(p.Name)
		if _, ok := seen[key]; ok {
			logger.Printf("warning: dropping duplicate player %q (%s)", p.Name, p.ID)
			continue
		}
		seen[key] = struct{}{}
		out = append(out, p)
	}
	return out
}

// nextLocalID returns the next free local id, never below floor.
func nextLocalID(list []model.Player, floor int) int {
	next := 1
	for _, p := range list {
		if n, ok := p.ID.LocalNumber(); ok && n >= next {
			next = n + 1
		}
	}
	if floor > next {
		next = floor
	}
	return next
}

func clonePlayers(list []model.Player) []model.Player {
	return append([]model.Player(nil), list...)
}

func foldName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
