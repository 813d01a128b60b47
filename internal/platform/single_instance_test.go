package platform

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPortFromNameIsStable(t *testing.T) {
	port := portFromName("BoxBreathing")
	assert.Equal(t, port, portFromName("BoxBreathing"))
	assert.GreaterOrEqual(t, port, 20000)
	assert.LessOrEqual(t, port, 39999)
}

func TestSecondInstanceForwardsLink(t *testing.T) {
	first, err := acquire("127.0.0.1:0", "", nil)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = first.Release()
	})

	links := make(chan string, 1)
	first.SetHandler(func(link string) {
		links <- link
	})

	second, err := acquire(first.Address(), "/?view=exercise&phase=5", nil)
	require.ErrorIs(t, err, ErrAlreadyRunning)
	assert.Nil(t, second)

	select {
	case link := <-links:
		assert.Equal(t, "/?view=exercise&phase=5", link)
	case <-time.After(2 * time.Second):
		t.Fatal("link was not forwarded")
	}
}

func TestForwardedLinksWaitForHandler(t *testing.T) {
	first, err := acquire("127.0.0.1:0", "", nil)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = first.Release()
	})

	_, err = acquire(first.Address(), "/", nil)
	require.ErrorIs(t, err, ErrAlreadyRunning)

	require.Eventually(t, func() bool {
		first.mu.Lock()
		defer first.mu.Unlock()
		return len(first.pending) == 1
	}, 2*time.Second, 10*time.Millisecond)

	var received []string
	first.SetHandler(func(link string) {
		received = append(received, link)
	})
	assert.Equal(t, []string{"/"}, received)
}

func TestReleaseNilGuard(t *testing.T) {
	var guard *InstanceGuard
	assert.NoError(t, guard.Release())
	assert.Empty(t, guard.Address())
}
