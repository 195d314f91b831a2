package broadcast

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBroadcast_Fanout(t *testing.T) {
	source := make(chan int)
	b := NewBroadcastServer("test", source, WithSendTimeout[int](time.Second))

	const listeners = 3
	results := make([][]int, listeners)
	wg := sync.WaitGroup{}
	for i := range listeners {
		ch := b.Subscribe()
		wg.Add(1)
		go func() {
			defer wg.Done()
			for v := range ch {
				results[i] = append(results[i], v)
			}
		}()
	}
	for i := range 5 {
		source <- i
	}
	close(source)
	<-b.Done()
	wg.Wait()

	for i := range listeners {
		assert.Equal(t, []int{0, 1, 2, 3, 4}, results[i], "listener %d", i)
	}
}

func TestBroadcast_SlowListenerIsSkipped(t *testing.T) {
	source := make(chan int)
	b := NewBroadcastServer("slow", source, WithSendTimeout[int](10*time.Millisecond))
	defer b.Close()

	_ = b.Subscribe() // never read
	fast := b.Subscribe()
	got := make(chan int, 10)
	go func() {
		for v := range fast {
			got <- v
		}
	}()
	source <- 1
	source <- 2
	assert.Equal(t, 1, <-got)
	assert.Equal(t, 2, <-got)
}

func TestBroadcast_CancelAndClose(t *testing.T) {
	source := make(chan string)
	b := NewBroadcastServer("cancel", source)

	ch := b.Subscribe()
	b.CancelSubscription(ch)
	_, ok := <-ch
	assert.False(t, ok, "cancelled listener is closed")

	b.Close()
	late := b.Subscribe()
	_, ok = <-late
	assert.False(t, ok, "subscribe after close returns closed channel")
	b.CancelSubscription(late)
}
