package web_test

import (
	"testing"
	"time"

	"github.com/vitos/futures_day_bot/internal/domain"
	"github.com/vitos/futures_day_bot/internal/web"
	"go.uber.org/zap"
)

func TestPublishWithoutSubscribers(t *testing.T) {
	hub := web.NewHub(zap.NewNop())

	// Publish must never block the caller, subscribers or not.
	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			hub.Publish(domain.Event{
				Type:   domain.EventStatusChanged,
				UserID: "user-1",
				At:     time.Now(),
			})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Publish blocked with no subscribers")
	}
}
