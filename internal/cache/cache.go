// Package cache holds the device-local snapshot of the signed-in user's
// profile. Exactly one profile is cached at a time; switching users must
// Clear before Save (the sync engine enforces that ordering).
package cache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/abhisek/topiq/internal/profile"
)

// profileKey is the well-known slot the active profile snapshot lives under.
const profileKey = "profile"

// ProfileCache is the local half of the dual-store model. Load returns
// (nil, nil) when no snapshot exists or the stored one fails to parse; a
// corrupt snapshot is treated as absent, never surfaced as an error.
type ProfileCache interface {
	Load() (*profile.Profile, error)
	Save(p *profile.Profile) error
	Clear() error
}

// KVProfileCache stores the snapshot as one JSON record in a KeyValue.
type KVProfileCache struct {
	kv KeyValue
}

func NewProfileCache(kv KeyValue) *KVProfileCache {
	return &KVProfileCache{kv: kv}
}

func (c *KVProfileCache) Load() (*profile.Profile, error) {
	data, ok, err := c.kv.Get(profileKey)
	if err != nil {
		return nil, fmt.Errorf("load profile snapshot: %w", err)
	}
	if !ok {
		return nil, nil
	}
	var p profile.Profile
	if err := json.Unmarshal(data, &p); err != nil {
		// Corrupt snapshot behaves like no snapshot.
		return nil, nil
	}
	if p.KnowledgeByTopic == nil {
		p.KnowledgeByTopic = make(map[string]profile.TopicKnowledge)
	}
	return &p, nil
}

func (c *KVProfileCache) Save(p *profile.Profile) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal profile snapshot: %w", err)
	}
	if err := c.kv.Set(profileKey, data); err != nil {
		return fmt.Errorf("save profile snapshot: %w", err)
	}
	return nil
}

func (c *KVProfileCache) Clear() error {
	if err := c.kv.Delete(profileKey); err != nil {
		return fmt.Errorf("clear profile snapshot: %w", err)
	}
	return nil
}

// DefaultDataDir resolves the local cache directory in priority order:
// 1. TOPIQ_DATA_DIR environment variable
// 2. $XDG_DATA_HOME/topiq
// 3. ~/.local/share/topiq
func DefaultDataDir() (string, error) {
	if d := os.Getenv("TOPIQ_DATA_DIR"); d != "" {
		return d, nil
	}

	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		dataHome = filepath.Join(home, ".local", "share")
	}

	return filepath.Join(dataHome, "topiq"), nil
}
