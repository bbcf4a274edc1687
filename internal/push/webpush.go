// Package push delivers Web Push messages signed with VAPID keys.
package push

import (
	"context"
	"fmt"
	"io"
	"net/http"

	webpush "github.com/SherClockHolmes/webpush-go"
	"github.com/deatransindo/absensi/internal/domain"
	"github.com/deatransindo/absensi/internal/ports"
)

// WebPushSender implements ports.PushSender on top of the Web Push protocol.
type WebPushSender struct {
	PublicKey  string
	PrivateKey string
	Subject    string
	TTL        int
}

func (s WebPushSender) Send(ctx context.Context, sub domain.PushSubscription, payload []byte) error {
	ttl := s.TTL
	if ttl == 0 {
		ttl = 3600
	}
	resp, err := webpush.SendNotificationWithContext(ctx, payload, &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256dh,
			Auth:   sub.Auth,
		},
	}, &webpush.Options{
		Subscriber:      s.Subject,
		VAPIDPublicKey:  s.PublicKey,
		VAPIDPrivateKey: s.PrivateKey,
		TTL:             ttl,
	})
	if err != nil {
		return err
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	switch {
	case resp.StatusCode == http.StatusGone, resp.StatusCode == http.StatusNotFound:
		return ports.ErrSubscriptionGone
	case resp.StatusCode >= 400:
		return fmt.Errorf("push endpoint returned status %d", resp.StatusCode)
	}
	return nil
}
