package engine

import (
	"github.com/example/drillbot/internal/catalog"
	"github.com/example/drillbot/internal/progress"
	"github.com/example/drillbot/pkg/models"
)

// UnlockLimit is how many new items one unlock request introduces.
const UnlockLimit = 5

// UnlockBatch scans a level in catalog order and returns up to limit items
// the learner has never interacted with. An empty result means the level is
// exhausted and the caller should offer the challenge instead. Items that
// already have a record are never re-offered, even stale or failed ones.
func UnlockBatch(lvl *catalog.Level, prog *progress.Store, limit int) []models.Item {
	var batch []models.Item
	if lvl == nil {
		return batch
	}
	for _, item := range lvl.Items() {
		if len(batch) >= limit {
			break
		}
		if _, ok := prog.Get(item.ID); !ok {
			batch = append(batch, item)
		}
	}
	return batch
}

// Unlock injects a batch of new items from the current level into the queue.
// It reports whether anything was unlocked; false signals the level is
// exhausted.
func (s *Session) Unlock() bool {
	batch := UnlockBatch(s.Catalog.Level(s.Level), s.Progress, UnlockLimit)
	if len(batch) == 0 {
		return false
	}
	s.Queue = batch
	return true
}
