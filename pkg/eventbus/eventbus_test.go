package eventbus

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishReachesOnlyMatchingKey(t *testing.T) {
	b := New[string, int]()
	defer b.Close()

	a := b.Subscribe("a")
	c := b.Subscribe("c")

	b.Publish("a", 42)

	select {
	case got := <-a:
		assert.Equal(t, 42, got)
	default:
		t.Fatal("subscriber on matching key received nothing")
	}

	select {
	case got := <-c:
		t.Fatalf("subscriber on other key received %d", got)
	default:
	}
}

func TestPublishFansOutToAllSubscribers(t *testing.T) {
	b := New[string, string]()
	defer b.Close()

	first := b.Subscribe("k")
	second := b.Subscribe("k")

	b.Publish("k", "event")

	assert.Equal(t, "event", <-first)
	assert.Equal(t, "event", <-second)
}

func TestSlowSubscriberDoesNotBlockPublish(t *testing.T) {
	b := New[string, int]()
	defer b.Close()

	// Never drained; its buffer fills up and further events are dropped.
	sub := b.Subscribe("k")

	for i := 0; i < subscriberBuffer*10; i++ {
		b.Publish("k", i)
	}

	// The buffered head survives, the overflow was dropped.
	assert.Equal(t, 0, <-sub)
	assert.Len(t, sub, subscriberBuffer-1)
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	b := New[string, int]()
	defer b.Close()

	sub := b.Subscribe("k")
	require.Equal(t, 1, b.Subscribers("k"))

	b.Unsubscribe("k", sub)
	assert.Equal(t, 0, b.Subscribers("k"))

	_, open := <-sub
	assert.False(t, open)
}

func TestCloseIsIdempotentAndStopsDelivery(t *testing.T) {
	b := New[string, int]()
	sub := b.Subscribe("k")

	b.Close()
	b.Close()

	_, open := <-sub
	assert.False(t, open)

	// Publishing after close must not panic.
	b.Publish("k", 1)
}
