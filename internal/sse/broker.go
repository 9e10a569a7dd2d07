// Package sse streams entry and statistics changes to browsers as
// Server-Sent Events.
package sse

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"
)

// Change kinds accepted by PublishEntryEvent.
const (
	KindCreated = "created"
	KindDeleted = "deleted"
	KindChanged = "changed"
)

// StatsEvent tells clients to refetch /api/stats.
const StatsEvent = "stats.updated"

var eventTypes = map[string]string{
	KindCreated: "entry.created",
	KindDeleted: "entry.deleted",
	KindChanged: "entries.changed",
}

const (
	subscriberBuffer = 64
	retryMillis      = 3000
)

type change struct {
	kind string
	id   int64
}

// Broker fans entry changes out to connected event streams.
//
// A single goroutine owns the subscriber set, the event sequence and the stats
// debounce. Every other method talks to it over channels.
type Broker struct {
	statsEvery time.Duration
	keepAlive  time.Duration

	join    chan chan []byte
	leave   chan chan []byte
	changes chan change
	count   chan chan int

	stop   chan struct{}
	done   chan struct{}
	closed atomic.Bool
}

// NewBroker starts a broker. StatsEvent is sent on the first change and then
// at most once per statsEvery; a change inside that window is covered by one
// trailing StatsEvent when the window ends.
func NewBroker(statsEvery time.Duration) *Broker {
	if statsEvery <= 0 {
		statsEvery = 2 * time.Second
	}
	b := &Broker{
		statsEvery: statsEvery,
		keepAlive:  15 * time.Second,
		join:       make(chan chan []byte),
		leave:      make(chan chan []byte),
		changes:    make(chan change, 256),
		count:      make(chan chan int),
		stop:       make(chan struct{}),
		done:       make(chan struct{}),
	}
	go b.loop()
	return b
}

// encodeFrame renders one event in text/event-stream format.
func encodeFrame(seq uint64, eventType string, data any) ([]byte, error) {
	payload, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return fmt.Appendf(nil, "id: %d\nevent: %s\ndata: %s\n\n", seq, eventType, payload), nil
}

func (b *Broker) loop() {
	defer close(b.done)

	subs := make(map[chan []byte]struct{})
	var (
		seq       uint64
		lastStats time.Time
		trailing  *time.Timer
		trailingC <-chan time.Time
	)

	send := func(eventType string, data any) {
		seq++
		frame, err := encodeFrame(seq, eventType, data)
		if err != nil {
			return
		}
		for ch := range subs {
			select {
			case ch <- frame:
			default:
				// Slow reader; it refetches on the next event anyway.
			}
		}
	}

	for {
		select {
		case <-b.stop:
			if trailing != nil {
				trailing.Stop()
			}
			for ch := range subs {
				close(ch)
			}
			return

		case ch := <-b.join:
			subs[ch] = struct{}{}

		case ch := <-b.leave:
			if _, ok := subs[ch]; ok {
				delete(subs, ch)
				close(ch)
			}

		case c := <-b.changes:
			eventType, ok := eventTypes[c.kind]
			if !ok {
				continue
			}
			if c.kind == KindChanged {
				send(eventType, struct{}{})
			} else {
				send(eventType, map[string]int64{"id": c.id})
			}

			wait := b.statsEvery - time.Since(lastStats)
			switch {
			case wait <= 0:
				lastStats = time.Now()
				send(StatsEvent, struct{}{})
			case trailingC == nil:
				trailing = time.NewTimer(wait)
				trailingC = trailing.C
			}

		case <-trailingC:
			trailingC = nil
			lastStats = time.Now()
			send(StatsEvent, struct{}{})

		case resp := <-b.count:
			resp <- len(subs)
		}
	}
}

// Close stops the broker and ends every open stream. It is safe to call more
// than once.
func (b *Broker) Close() {
	if b.closed.CompareAndSwap(false, true) {
		close(b.stop)
	}
	<-b.done
}

// Subscribe registers a stream and returns the channel its frames arrive on.
// The channel is closed by Unsubscribe or Close.
func (b *Broker) Subscribe() chan []byte {
	ch := make(chan []byte, subscriberBuffer)
	if b.closed.Load() {
		close(ch)
		return ch
	}
	select {
	case b.join <- ch:
	case <-b.done:
		close(ch)
	}
	return ch
}

// Unsubscribe removes a stream.
func (b *Broker) Unsubscribe(ch chan []byte) {
	if b.closed.Load() {
		return
	}
	select {
	case b.leave <- ch:
	case <-b.done:
	}
}

// ClientCount returns the number of open streams.
func (b *Broker) ClientCount() int {
	if b.closed.Load() {
		return 0
	}
	resp := make(chan int, 1)
	select {
	case b.count <- resp:
	case <-b.done:
		return 0
	}
	select {
	case n := <-resp:
		return n
	case <-b.done:
		return 0
	}
}

// PublishEntryEvent reports an entry change. id is ignored for KindChanged;
// unknown kinds are dropped.
func (b *Broker) PublishEntryEvent(kind string, id int64) {
	if b.closed.Load() {
		return
	}
	select {
	case b.changes <- change{kind: kind, id: id}:
	case <-b.done:
	}
}

// ServeHTTP streams events to one client (GET /api/events) until the client
// disconnects or the broker closes. Idle streams get a comment line every
// keepAlive so proxies keep them open.
func (b *Broker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, "retry: %d\n\n", retryMillis)
	flusher.Flush()

	frames := b.Subscribe()
	defer b.Unsubscribe(frames)

	ping := time.NewTicker(b.keepAlive)
	defer ping.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case frame, ok := <-frames:
			if !ok {
				return
			}
			_, _ = w.Write(frame)
			flusher.Flush()
		case <-ping.C:
			_, _ = fmt.Fprint(w, ": keep-alive\n\n")
			flusher.Flush()
		}
	}
}
