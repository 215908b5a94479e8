package activity

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/holps-7/striko/pkg/model"
)

func req(id string) model.Request {
	return model.Request{ID: id, Name: id, URL: "https://example.com/" + id, Method: "GET"}
}

func ids(reqs []model.Request) []string {
	out := make([]string, len(reqs))
	for i, r := range reqs {
		out[i] = r.ID
	}
	return out
}

func TestRecord_IgnoresEmptyURL(t *testing.T) {
	tr := NewTracker()
	assert.False(t, tr.Record(model.Request{ID: "1"}))
	assert.Equal(t, 0, tr.Len())
}

func TestRecord_SameIDTwiceKeepsLatest(t *testing.T) {
	tr := NewTracker()

	first := req("1")
	second := req("1")
	second.URL = "https://example.com/changed"

	tr.Record(first)
	tr.Record(second)

	list := tr.List()
	require.Len(t, list, 1)
	assert.Equal(t, "https://example.com/changed", list[0].URL)
}

func TestRecord_MovesExistingToFront(t *testing.T) {
	tr := NewTracker()
	tr.Record(req("a"))
	tr.Record(req("b"))
	tr.Record(req("c"))
	tr.Record(req("a"))

	assert.Equal(t, []string{"a", "c", "b"}, ids(tr.List()))
}

func TestRecord_BoundedToLimit(t *testing.T) {
	tr := NewTracker()
	for i := 0; i < 25; i++ {
		tr.Record(req(fmt.Sprintf("r%02d", i)))
	}

	list := tr.List()
	require.Len(t, list, Limit)
	assert.Equal(t, "r24", list[0].ID)
	assert.Equal(t, "r05", list[Limit-1].ID)
}

func TestRecord_StoresSnapshot(t *testing.T) {
	tr := NewTracker()
	live := req("1")
	live.Headers = map[string]string{"X": "1"}
	live.Body = map[string]any{"k": "v"}

	tr.Record(live)
	live.Headers["X"] = "2"
	live.Body.(map[string]any)["k"] = "changed"
	live.URL = "https://elsewhere"

	got, ok := tr.Get("1")
	require.True(t, ok)
	assert.Equal(t, "1", got.Headers["X"])
	assert.Equal(t, "v", got.Body.(map[string]any)["k"])
	assert.Equal(t, "https://example.com/1", got.URL)
}

func TestList_IsDefensiveCopy(t *testing.T) {
	tr := NewTracker()
	tr.Record(req("1"))

	list := tr.List()
	list[0].URL = "mutated"
	_ = append(list, req("2"))

	assert.Equal(t, "https://example.com/1", tr.List()[0].URL)
	assert.Equal(t, 1, tr.Len())
}

func TestRemove(t *testing.T) {
	tr := NewTracker()
	tr.Record(req("1"))
	tr.Record(req("2"))

	assert.True(t, tr.Remove("1"))
	assert.False(t, tr.Remove("1"))
	assert.Equal(t, []string{"2"}, ids(tr.List()))
}

func TestSubscribe_Notifications(t *testing.T) {
	tr := NewTracker()
	ch, cancel := tr.Subscribe()
	defer cancel()

	pending := func() bool {
		select {
		case <-ch:
			return true
		default:
			return false
		}
	}

	tr.Record(model.Request{ID: "x"})
	assert.False(t, pending(), "ignored record must not notify")

	tr.Record(req("1"))
	assert.True(t, pending())

	tr.Record(req("2"))
	tr.Record(req("3"))
	assert.True(t, pending())
	assert.False(t, pending(), "notifications coalesce")

	tr.Remove("missing")
	assert.False(t, pending(), "no-op remove must not notify")

	tr.Remove("1")
	assert.True(t, pending())
}

func TestSubscribe_CancelClosesChannel(t *testing.T) {
	tr := NewTracker()
	ch, cancel := tr.Subscribe()
	cancel()
	cancel()

	_, open := <-ch
	assert.False(t, open)

	tr.Record(req("1"))
}
