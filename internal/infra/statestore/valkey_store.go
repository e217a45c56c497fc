package statestore

import (
	"context"
	"encoding/json"

	"github.com/valkey-io/valkey-go"

	"github.com/yanqian/solar-dashboard/internal/domain/dashboard"
)

const defaultKey = "solar:dashboard:state"

// ValkeyStore persists the snapshot pair as JSON under a single key.
type ValkeyStore struct {
	client valkey.Client
	key    string
}

// NewValkeyStore constructs a new store backed by Valkey.
func NewValkeyStore(client valkey.Client, key string) *ValkeyStore {
	if key == "" {
		key = defaultKey
	}
	return &ValkeyStore{client: client, key: key}
}

// Load implements dashboard.StateStore.
func (s *ValkeyStore) Load(ctx context.Context) (dashboard.StoredState, bool, error) {
	payload, err := s.client.Do(ctx, s.client.B().Get().Key(s.key).Build()).ToString()
	if err != nil {
		if valkey.IsValkeyNil(err) {
			return dashboard.StoredState{}, false, nil
		}
		return dashboard.StoredState{}, false, err
	}
	var state dashboard.StoredState
	if err := json.Unmarshal([]byte(payload), &state); err != nil {
		return dashboard.StoredState{}, false, err
	}
	return state, true, nil
}

// Save implements dashboard.StateStore.
func (s *ValkeyStore) Save(ctx context.Context, state dashboard.StoredState) error {
	payload, err := json.Marshal(state)
	if err != nil {
		return err
	}
	return s.client.Do(ctx, s.client.B().Set().Key(s.key).Value(string(payload)).Build()).Error()
}

var _ dashboard.StateStore = (*ValkeyStore)(nil)
