package clipboard

import (
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrenko/passlock/internal/logging"
)

// fakeClipboard records writes so tests do not depend on a real system
// clipboard being present.
type fakeClipboard struct {
	mu     sync.Mutex
	values []string
}

func (f *fakeClipboard) write(s string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.values = append(f.values, s)
	return nil
}

func (f *fakeClipboard) all() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.values...)
}

func withFake(t *testing.T) *fakeClipboard {
	t.Helper()
	fake := &fakeClipboard{}
	orig := writeAll
	writeAll = fake.write
	t.Cleanup(func() { writeAll = orig })
	return fake
}

func TestManager_CopyThenAutoClear(t *testing.T) {
	fake := withFake(t)
	m := NewManager(logging.NewDefault(io.Discard))
	defer m.Close()

	require.NoError(t, m.Copy("s3cret", 30*time.Millisecond))

	assert.Equal(t, []string{"s3cret"}, fake.all())
	require.Eventually(t, func() bool {
		vals := fake.all()
		return len(vals) == 2 && vals[1] == ""
	}, 2*time.Second, 10*time.Millisecond)
}

func TestManager_RecopyCancelsPendingClear(t *testing.T) {
	fake := withFake(t)
	m := NewManager(logging.NewDefault(io.Discard))
	defer m.Close()

	require.NoError(t, m.Copy("first", 30*time.Millisecond))
	require.NoError(t, m.Copy("second", time.Hour))

	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, []string{"first", "second"}, fake.all(),
		"the first timer must not fire after the second copy")
}

func TestManager_Clear(t *testing.T) {
	fake := withFake(t)
	m := NewManager(logging.NewDefault(io.Discard))
	defer m.Close()

	require.NoError(t, m.Copy("secret", time.Hour))
	require.NoError(t, m.Clear())

	vals := fake.all()
	require.Len(t, vals, 2)
	assert.Equal(t, "", vals[1])

	time.Sleep(50 * time.Millisecond)
	assert.Len(t, fake.all(), 2, "cancelled timer must not fire")
}

func TestManager_CloseLeavesClipboardAlone(t *testing.T) {
	fake := withFake(t)
	m := NewManager(logging.NewDefault(io.Discard))

	require.NoError(t, m.Copy("secret", 30*time.Millisecond))
	m.Close()

	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, []string{"secret"}, fake.all())
}
