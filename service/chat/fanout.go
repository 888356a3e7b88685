package chat

import (
	"hash/fnv"
	"sync"

	"WeGap/logger"
	"WeGap/tools/safe"
)

type fanoutJob struct {
	conn    *Client
	deliver func(c *Client)
}

// Fanout pushes live messages to connections off the caller's
// goroutine. Jobs are sharded by connection id onto a fixed worker per
// shard, so deliveries to one connection run in submission order and a
// recipient always observes one conversation's ids in increasing order.
// Handoff into a shard is non-blocking: an overloaded shard skips the
// frame and replay covers it later.
type Fanout struct {
	shards    []chan fanoutJob
	wg        sync.WaitGroup
	closeOnce sync.Once
}

func NewFanout(workers, queue int) *Fanout {
	if workers <= 0 {
		workers = 4
	}
	if queue <= 0 {
		queue = 1024
	}
	f := &Fanout{shards: make([]chan fanoutJob, workers)}
	for i := range f.shards {
		shard := make(chan fanoutJob, queue)
		f.shards[i] = shard
		f.wg.Add(1)
		safe.Go("fanout-worker", func() {
			defer f.wg.Done()
			for job := range shard {
				job.deliver(job.conn)
			}
		})
	}
	return f
}

// Broadcast queues one delivery per connection. deliver runs on the
// connection's shard worker; calls for the same connection never
// reorder against each other.
func (f *Fanout) Broadcast(conns []*Client, deliver func(c *Client)) {
	if len(conns) == 0 || deliver == nil {
		return
	}
	for _, c := range conns {
		shard := f.shards[shardIndex(c.ConnID, len(f.shards))]
		select {
		case shard <- fanoutJob{conn: c, deliver: deliver}:
		default:
			logger.Warnf("fanout shard full, skipping push to conn %s", c.ConnID)
		}
	}
}

func shardIndex(connID string, n int) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(connID))
	return int(h.Sum32() % uint32(n))
}

// Close stops the workers after draining queued jobs.
func (f *Fanout) Close() {
	f.closeOnce.Do(func() {
		for _, s := range f.shards {
			close(s)
		}
	})
	f.wg.Wait()
}
