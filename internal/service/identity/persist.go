package identity

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/zhouzirui/kairn/backend/internal/metrics"
	"github.com/zhouzirui/kairn/backend/internal/model/identity"
	"github.com/zhouzirui/kairn/backend/internal/storage"
)

const persistTimeout = 2 * time.Second

// PersistOnChange returns a hook writing every state change to p under key.
// Writes are fire-and-forget: failures are logged and counted, never retried. An absent
// state removes the entry.
func PersistOnChange(p storage.Persister, key string, log *zap.Logger) ChangeHook {
	log = log.Named("identity")
	return func(state identity.State) {
		ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
		defer cancel()

		// reset destroys the entry rather than storing a null name
		if state.UserName == nil {
			if err := p.Delete(ctx, key); err != nil {
				metrics.PersistFailures.Inc()
				log.Warn("delete identity state", zap.String("key", key), zap.Error(err))
			}
			return
		}

		data, err := json.Marshal(state)
		if err != nil {
			metrics.PersistFailures.Inc()
			log.Warn("encode identity state", zap.Error(err))
			return
		}
		if err := p.Save(ctx, key, data); err != nil {
			metrics.PersistFailures.Inc()
			log.Warn("persist identity state", zap.String("key", key), zap.Error(err))
		}
	}
}

// Restore reads the persisted state. A missing, unreadable or corrupt entry yields the
// absent state.
func Restore(ctx context.Context, p storage.Persister, key string, log *zap.Logger) identity.State {
	log = log.Named("identity")

	data, err := p.Load(ctx, key)
	if errors.Is(err, storage.ErrNotFound) {
		return identity.State{}
	}
	if err != nil {
		log.Warn("load identity state", zap.String("key", key), zap.Error(err))
		return identity.State{}
	}

	var state identity.State
	if err := json.Unmarshal(data, &state); err != nil {
		log.Warn("decode identity state", zap.String("key", key), zap.Error(err))
		return identity.State{}
	}
	return state
}
