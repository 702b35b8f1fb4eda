package module

import (
	"context"

	"go-melodium/debug"
	"go-melodium/sequencer"
)

// asyncSaver moves persistence off the module loop. Only the newest pending
// snapshot is kept; older ones are replaced before they reach the disk.
type asyncSaver struct {
	store   sequencer.Saver
	pending chan *sequencer.Snapshot
	done    chan struct{}
}

func newAsyncSaver(store sequencer.Saver) *asyncSaver {
	return &asyncSaver{
		store:   store,
		pending: make(chan *sequencer.Snapshot, 1),
		done:    make(chan struct{}),
	}
}

// Save queues snap. Called from the module loop only.
func (a *asyncSaver) Save(snap *sequencer.Snapshot) error {
	for {
		select {
		case a.pending <- snap:
			return nil
		default:
		}
		// replace the stale snapshot
		select {
		case <-a.pending:
		default:
		}
	}
}

// run writes snapshots until ctx is done, then flushes what is left
func (a *asyncSaver) run(ctx context.Context) {
	defer close(a.done)
	for {
		select {
		case snap := <-a.pending:
			a.write(snap)
		case <-ctx.Done():
			select {
			case snap := <-a.pending:
				a.write(snap)
			default:
			}
			return
		}
	}
}

func (a *asyncSaver) write(snap *sequencer.Snapshot) {
	if a.store == nil {
		return
	}
	if err := a.store.Save(snap); err != nil {
		debug.Log("state", "save failed: %v", err)
		return
	}
	debug.Log("state", "saved (slot %d, cycle %v)", snap.PatternSlot, snap.CycleMode)
}
