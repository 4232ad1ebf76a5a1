package players

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/verte-zerg/meeple/internal/model"
)

type fakeRemote struct {
	players []model.Player
	seq     int
	fail    bool
	renamed map[model.ID]string
	deleted []model.ID
}

func (f *fakeRemote) AddPlayer(_ context.Context, name string) (model.Player, error) {
	if f.fail {
		return model.Player{}, errors.New("remote down")
	}
	f.seq++
	p := model.Player{ID: model.ID(fmt.Sprintf("uuid-%d", f.seq)), Name: name, CreatedAt: time.Now()}
	f.players = append(f.players, p)
	return p, nil
}

func (f *fakeRemote) ListPlayers(context.Context) ([]model.Player, error) {
	if f.fail {
		return nil, errors.New("remote down")
	}
	return append([]model.Player(nil), f.players...), nil
}

func (f *fakeRemote) UpdatePlayerName(_ context.Context, id model.ID, name string) error {
	if f.fail {
		return errors.New("remote down")
	}
	if f.renamed == nil {
		f.renamed = map[model.ID]string{}
	}
	f.renamed[id] = name
	return nil
}

func (f *fakeRemote) DeletePlayer(_ context.Context, id model.ID) error {
	if f.fail {
		return errors.New("remote down")
	}
	f.deleted = append(f.deleted, id)
	return nil
}

type fakeCache struct {
	players []model.Player
	nextID  int
}

func (f *fakeCache) LoadPlayers(context.Context) ([]model.Player, int, error) {
	return f.players, f.nextID, nil
}

func (f *fakeCache) SavePlayers(_ context.Context, list []model.Player, nextID int) error {
	f.players = list
	f.nextID = nextID
	return nil
}

type fakeRenamer struct {
	calls [][2]string
}

func (f *fakeRenamer) RenamePlayer(_ context.Context, oldName, newName string) (int, error) {
	f.calls = append(f.calls, [2]string{oldName, newName})
	return 4, nil
}

func TestCreateValidatesNames(t *testing.T) {
	d := New(nil, &fakeCache{}, nil, nil)
	ctx := context.Background()
	ann, err := d.Create(ctx, "  Ann  ")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if ann.Name != "Ann" || ann.ID != "1" || ann.CreatedAt.IsZero() {
		t.Fatalf("unexpected player: %+v", ann)
	}
	if _, err := d.Create(ctx, "   "); !errors.Is(err, ErrNameRequired) {
		t.Fatalf("expected ErrNameRequired, got %v", err)
	}
	if _, err := d.Create(ctx, "ANN"); !errors.Is(err, ErrNameTaken) {
		t.Fatalf("expected ErrNameTaken, got %v", err)
	}
	bob, err := d.Create(ctx, "Bob")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if bob.ID != "2" {
		t.Fatalf("expected incrementing local id, got %q", bob.ID)
	}
}

func TestCreateUsesRemoteIDAndFallsBack(t *testing.T) {
	remote := &fakeRemote{}
	cache := &fakeCache{}
	d := New(remote, cache, nil, nil)
	ctx := context.Background()
	p, err := d.Create(ctx, "Ann")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if p.ID != "uuid-1" {
		t.Fatalf("expected remote id, got %q", p.ID)
	}
	remote.fail = true
	q, err := d.Create(ctx, "Bob")
	if err != nil {
		t.Fatalf("remote failure must not surface: %v", err)
	}
	if !q.ID.IsLocal() {
		t.Fatalf("expected local id, got %q", q.ID)
	}
	if len(cache.players) != 2 || cache.nextID != 2 {
		t.Fatalf("expected cache to hold both players, got %+v next=%d", cache.players, cache.nextID)
	}
}

func TestRenameCascadesToSessions(t *testing.T) {
	remote := &fakeRemote{}
	renamer := &fakeRenamer{}
	d := New(remote, &fakeCache{}, renamer, nil)
	ctx := context.Background()
	ann, _ := d.Create(ctx, "Ann")
	bob, _ := d.Create(ctx, "Bob")

	if _, err := d.Rename(ctx, ann.ID, "bob"); !errors.Is(err, ErrNameTaken) {
		t.Fatalf("expected ErrNameTaken, got %v", err)
	}
	n, err := d.Rename(ctx, ann.ID, "Anna")
	if err != nil {
		t.Fatalf("rename: %v", err)
	}
	if n != 4 || len(renamer.calls) != 1 || renamer.calls[0] != [2]string{"Ann", "Anna"} {
		t.Fatalf("expected cascade Ann->Anna, got %d %v", n, renamer.calls)
	}
	if remote.renamed[ann.ID] != "Anna" {
		t.Fatalf("expected remote rename, got %v", remote.renamed)
	}
	if p, ok := d.GetByName("anna"); !ok || p.ID != ann.ID {
		t.Fatalf("expected lookup by new name")
	}

	if n, err := d.Rename(ctx, bob.ID, "Bob"); err != nil || n != 0 || len(renamer.calls) != 1 {
		t.Fatalf("expected same-name rename to be a no-op")
	}
	if _, err := d.Rename(ctx, bob.ID, "BOB"); err != nil {
		t.Fatalf("expected case-only rename to be allowed: %v", err)
	}
	if _, err := d.Rename(ctx, "missing", "Zed"); !errors.Is(err, ErrPlayerNotFound) {
		t.Fatalf("expected ErrPlayerNotFound, got %v", err)
	}
}

func TestDeleteKeepsGoingWhenRemoteFails(t *testing.T) {
	remote := &fakeRemote{}
	d := New(remote, &fakeCache{}, nil, nil)
	ctx := context.Background()
	ann, _ := d.Create(ctx, "Ann")
	remote.fail = true
	if err := d.Delete(ctx, ann.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok := d.GetByID(ann.ID); ok {
		t.Fatalf("expected player removed locally")
	}
	if err := d.Delete(ctx, ann.ID); !errors.Is(err, ErrPlayerNotFound) {
		t.Fatalf("expected ErrPlayerNotFound, got %v", err)
	}
}

func TestLoadMigratesCachedPlayersToEmptyRemote(t *testing.T) {
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	cache := &fakeCache{players: []model.Player{
		{ID: "1", Name: "Ann", CreatedAt: created},
		{ID: "2", Name: "Bob", CreatedAt: created},
		{ID: "3", Name: "", CreatedAt: created},
	}, nextID: 4}
	remote := &fakeRemote{}
	d := New(remote, cache, nil, nil)
	if err := d.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(remote.players) != 2 {
		t.Fatalf("expected 2 players migrated, got %d", len(remote.players))
	}
	all := d.All()
	if len(all) != 2 || all[0].ID.IsLocal() {
		t.Fatalf("expected remote players after migration, got %+v", all)
	}

	// A second load finds the remote populated and does not migrate again.
	if err := d.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(remote.players) != 2 {
		t.Fatalf("expected no duplicate migration, got %d", len(remote.players))
	}
}

func TestLoadUploadsPlayersCreatedOffline(t *testing.T) {
	remote := &fakeRemote{}
	cache := &fakeCache{}
	ctx := context.Background()
	d := New(remote, cache, nil, nil)
	if _, err := d.Create(ctx, "Ann"); err != nil {
		t.Fatalf("create: %v", err)
	}
	remote.fail = true
	zoe, err := d.Create(ctx, "Zoe")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if zoe.ID != "1" {
		t.Fatalf("expected local id while offline, got %q", zoe.ID)
	}

	remote.fail = false
	reloaded := New(remote, cache, nil, nil)
	if err := reloaded.Load(ctx); err != nil {
		t.Fatalf("load: %v", err)
	}
	all := reloaded.All()
	if len(all) != 2 || len(remote.players) != 2 {
		t.Fatalf("expected Ann and Zoe on both sides, got %+v remote=%+v", all, remote.players)
	}
	p, ok := reloaded.GetByName("zoe")
	if !ok || p.ID.IsLocal() {
		t.Fatalf("expected Zoe uploaded with a remote id, got %+v", p)
	}

	remote.fail = true
	later, err := reloaded.Create(ctx, "Max")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if later.ID != "2" {
		t.Fatalf("expected local ids not to be reused, got %q", later.ID)
	}
}

func TestLoadFallsBackToCache(t *testing.T) {
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	cache := &fakeCache{players: []model.Player{
		{ID: "7", Name: "Ann", CreatedAt: created},
		{ID: "8", Name: "ann", CreatedAt: created},
		{ID: "9", Name: "Cid"},
	}, nextID: 3}
	d := New(&fakeRemote{fail: true}, cache, nil, nil)
	if err := d.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	if all := d.All(); len(all) != 1 || all[0].Name != "Ann" {
		t.Fatalf("expected invalid and duplicate records dropped, got %+v", all)
	}
	p, err := d.Create(context.Background(), "Dee")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if p.ID != "8" {
		t.Fatalf("expected next id after highest local id, got %q", p.ID)
	}
}

func TestGetByIDAcceptsLegacyForm(t *testing.T) {
	d := New(nil, nil, nil, nil)
	p, _ := d.Create(context.Background(), "Ann")
	if got, ok := d.GetByID(model.ID("player_" + string(p.ID))); !ok || got.Name != "Ann" {
		t.Fatalf("expected legacy id lookup to succeed")
	}
	if names := d.Names(); len(names) != 1 || names[0] != "Ann" {
		t.Fatalf("unexpected names: %v", names)
	}
}
