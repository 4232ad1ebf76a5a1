package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/verte-zerg/meeple/internal/model"
)

const (
	sessionsCollection = "sessions"
	playersCollection  = "players"
)

// AddSession stores a session under a newly assigned document id and returns the stored record.
func (c *Client) AddSession(ctx context.Context, session model.Session) (model.Session, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	stored := session.Clone()
	stored.ID = model.ID(uuid.NewString())
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now().UTC()
	}
	data, err := json.Marshal(stored)
	if err != nil {
		return model.Session{}, fmt.Errorf("marshaling session: %w", err)
	}
	if err := c.rdb.HSet(ctx, c.key(sessionsCollection), string(stored.ID), data).Err(); err != nil {
		return model.Session{}, err
	}
	return stored, nil
}

// ListSessions returns all sessions ordered by date, creation time and id.
func (c *Client) ListSessions(ctx context.Context) ([]model.Session, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	docs, err := c.rdb.HGetAll(ctx, c.key(sessionsCollection)).Result()
	if err != nil {
		return nil, err
	}
	sessions := make([]model.Session, 0, len(docs))
	for id, doc := range docs {
		var s model.Session
		if err := json.Unmarshal([]byte(doc), &s); err != nil {
			c.logger.Printf("warning: skipping undecodable session %s: %v", id, err)
			continue
		}
		s.ID = model.ID(id)
		sessions = append(sessions, s)
	}
	sort.Slice(sessions, func(i, j int) bool {
		a, b := sessions[i], sessions[j]
		if a.Date != b.Date {
			return a.Date < b.Date
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	})
	return sessions, nil
}

// DeleteSession removes a session document.
func (c *Client) DeleteSession(ctx context.Context, id model.ID) error {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	n, err := c.rdb.HDel(ctx, c.key(sessionsCollection), string(id)).Result()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("session %s: %w", id, ErrNotFound)
	}
	return nil
}

// UpdateSessions overwrites the given session documents in a single transaction.
func (c *Client) UpdateSessions(ctx context.Context, sessions []model.Session) error {
	if len(sessions) == 0 {
		return nil
	}
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	key := c.key(sessionsCollection)
	_, err := c.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, s := range sessions {
			data, err := json.Marshal(s)
			if err != nil {
				return fmt.Errorf("marshaling session %s: %w", s.ID, err)
			}
			pipe.HSet(ctx, key, string(s.ID), data)
		}
		return nil
	})
	return err
}

// AddPlayer creates a player document.
func (c *Client) AddPlayer(ctx context.Context, name string) (model.Player, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	p := model.Player{
		ID:        model.ID(uuid.NewString()),
		Name:      name,
		CreatedAt: time.Now().UTC(),
	}
	data, err := json.Marshal(p)
	if err != nil {
		return model.Player{}, fmt.Errorf("marshaling player: %w", err)
	}
	if err := c.rdb.HSet(ctx, c.key(playersCollection), string(p.ID), data).Err(); err != nil {
		return model.Player{}, err
	}
	return p, nil
}

// ListPlayers returns all players sorted by name.
func (c *Client) ListPlayers(ctx context.Context) ([]model.Player, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	docs, err := c.rdb.HGetAll(ctx, c.key(playersCollection)).Result()
	if err != nil {
		return nil, err
	}
	players := make([]model.Player, 0, len(docs))
	for id, doc := range docs {
		var p model.Player
		if err := json.Unmarshal([]byte(doc), &p); err != nil {
			c.logger.Printf("warning: skipping undecodable player %s: %v", id, err)
			continue
		}
		p.ID = model.ID(id)
		players = append(players, p)
	}
	sort.Slice(players, func(i, j int) bool {
		a, b := strings.ToLower(players[i].Name), strings.ToLower(players[j].Name)
		if a != b {
			return a < b
		}
		return players[i].ID < players[j].ID
	})
	return players, nil
}

// UpdatePlayerName renames a player document.
func (c *Client) UpdatePlayerName(ctx context.Context, id model.ID, name string) error {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	key := c.key(playersCollection)
	doc, err := c.rdb.HGet(ctx, key, string(id)).Result()
	if err == redis.Nil {
		return fmt.Errorf("player %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return err
	}
	var p model.Player
	if err := json.Unmarshal([]byte(doc), &p); err != nil {
		return fmt.Errorf("unmarshaling player: %w", err)
	}
	p.ID = id
	p.Name = name
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshaling player: %w", err)
	}
	return c.rdb.HSet(ctx, key, string(id), data).Err()
}

// DeletePlayer removes a player document.
func (c *Client) DeletePlayer(ctx context.Context, id model.ID) error {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	n, err := c.rdb.HDel(ctx, c.key(playersCollection), string(id)).Result()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("player %s: %w", id, ErrNotFound)
	}
	return nil
}
