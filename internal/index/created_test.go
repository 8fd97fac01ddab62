package index

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCreatedIndex_RecordKeepsGatewayOrder(t *testing.T) {
	c := New()
	c.Record("users", []string{"b", "a"})
	c.Record("users", []string{"a"})
	c.Record("orders", nil)

	assert.Equal(t, []string{"b", "a", "a"}, c.Get("users"))
	assert.Empty(t, c.Get("orders"))
	assert.Equal(t, map[string][]string{"users": {"b", "a", "a"}}, c.All())
}

func TestCreatedIndex_SnapshotsAreCopies(t *testing.T) {
	c := New()
	c.Record("users", []string{"1"})

	got := c.Get("users")
	got[0] = "changed"
	all := c.All()
	all["users"][0] = "changed"

	assert.Equal(t, []string{"1"}, c.Get("users"))
}

func TestCreatedIndex_ReleaseKeepsLaterAppends(t *testing.T) {
	c := New()
	c.Record("users", []string{"1", "2"})
	snapshot := c.Get("users")
	c.Record("users", []string{"3"})

	c.Release("users", snapshot)
	assert.Equal(t, []string{"3"}, c.Get("users"))

	c.Release("users", []string{"3", "4"})
	assert.Empty(t, c.All())
}

func TestCreatedIndex_ReleaseTwiceFromSameSnapshot(t *testing.T) {
	c := New()
	c.Record("users", []string{"a"})
	first := c.Get("users")
	second := c.Get("users")
	c.Record("users", []string{"c"})

	c.Release("users", first)
	c.Release("users", second)
	assert.Equal(t, []string{"c"}, c.Get("users"))
}

func TestCreatedIndex_ReleaseCountsDuplicates(t *testing.T) {
	c := New()
	c.Record("users", []string{"a", "b", "a"})
	c.Release("users", []string{"a"})
	assert.Equal(t, []string{"b", "a"}, c.Get("users"))
}

func TestCreatedIndex_Restore(t *testing.T) {
	c := New()
	c.Record("users", []string{"1"})
	c.Restore(map[string][]string{"users": {"0"}, "orders": {"9"}, "empty": nil})

	assert.Equal(t, []string{"1", "0"}, c.Get("users"))
	assert.Equal(t, []string{"9"}, c.Get("orders"))
	assert.NotContains(t, c.All(), "empty")
}

func TestCreatedIndex_ConcurrentRecord(t *testing.T) {
	c := New()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			c.Record("users", []string{fmt.Sprintf("id-%d", i)})
		}(i)
	}
	wg.Wait()

	assert.Len(t, c.Get("users"), 50)
}
