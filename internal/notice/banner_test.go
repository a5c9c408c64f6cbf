package notice

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBannerClearsAfterTTL(t *testing.T) {
	b := NewBanner(30 * time.Millisecond)
	cleared := make(chan struct{}, 1)
	b.OnChange(func(text string) {
		if text == "" {
			cleared <- struct{}{}
		}
	})

	b.Set("Product created successfully")
	assert.Equal(t, "Product created successfully", b.Text())

	select {
	case <-cleared:
	case <-time.After(time.Second):
		t.Fatal("banner was not cleared")
	}
	assert.Empty(t, b.Text())
}

func TestBannerSetCancelsPreviousClear(t *testing.T) {
	b := NewBanner(60 * time.Millisecond)
	b.Set("first")
	time.Sleep(40 * time.Millisecond)
	b.Set("second")
	time.Sleep(40 * time.Millisecond)
	assert.Equal(t, "second", b.Text(), "first timer must not clear the newer message")

	require.Eventually(t, func() bool { return b.Text() == "" }, time.Second, 5*time.Millisecond)
}

func TestBannerEmptyTextClearsImmediately(t *testing.T) {
	b := NewBanner(time.Hour)
	var mu sync.Mutex
	var seen []string
	b.OnChange(func(text string) {
		mu.Lock()
		seen = append(seen, text)
		mu.Unlock()
	})
	b.Set("Delete failed")
	b.Clear()
	assert.Empty(t, b.Text())

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"Delete failed", ""}, seen)
}

func TestBannerLastCallbackMatchesTextWhenSetRacesExpiry(t *testing.T) {
	b := NewBanner(time.Hour)
	defer b.Stop()
	clearing := make(chan struct{})
	release := make(chan struct{})
	var mu sync.Mutex
	var seen []string
	b.OnChange(func(text string) {
		if text == "" {
			close(clearing)
			<-release
		}
		mu.Lock()
		seen = append(seen, text)
		mu.Unlock()
	})

	b.Set("first")
	b.mu.Lock()
	seq := b.seq
	b.mu.Unlock()

	expired := make(chan struct{})
	go func() {
		b.expire(seq)
		close(expired)
	}()
	<-clearing

	setDone := make(chan struct{})
	go func() {
		b.Set("second")
		close(setDone)
	}()
	time.Sleep(20 * time.Millisecond)
	close(release)
	<-expired
	<-setDone

	mu.Lock()
	defer mu.Unlock()
	require.NotEmpty(t, seen)
	assert.Equal(t, "second", b.Text())
	assert.Equal(t, b.Text(), seen[len(seen)-1])
}

func TestBannerStopKeepsText(t *testing.T) {
	b := NewBanner(20 * time.Millisecond)
	b.Set("sticky")
	b.Stop()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, "sticky", b.Text())
}

func TestNewBannerDefaultsTTL(t *testing.T) {
	assert.Equal(t, DefaultTTL, NewBanner(0).TTL())
}
