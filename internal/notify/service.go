// Package notify resolves who should hear about a verdict and delivers a
// multicast push. Delivery is best-effort: the persisted verdict is the
// authoritative state, and transport failures are logged, never propagated.
package notify

import (
	"context"
	"log/slog"

	"github.com/your-org/watchdog/internal/models"
	"github.com/your-org/watchdog/internal/observability"
)

const pushTitle = "Powiadomienie o detekcji"

var categoryMessages = map[models.Category]string{
	models.CategoryIntruder: "Wykryto intruza",
	models.CategoryFriend:   "Wykryto przyjaciela",
	models.CategoryUnknown:  "Rozpoczęto nagrywanie",
}

// TargetStore resolves the distinct opted-in push tokens for a camera.
type TargetStore interface {
	NotificationTargets(ctx context.Context, cameraID int64, category models.Category) ([]string, error)
}

// Pusher delivers one multicast push to a set of device tokens.
type Pusher interface {
	SendMulticast(ctx context.Context, tokens []string, title, body string) (success, failure int, err error)
}

type Service struct {
	store  TargetStore
	pusher Pusher
}

func NewService(store TargetStore, pusher Pusher) *Service {
	return &Service{store: store, pusher: pusher}
}

// Notify sends the category push to every eligible user of the camera.
// Tokens reachable through multiple shared groups receive exactly one push.
func (s *Service) Notify(ctx context.Context, cameraID int64, category models.Category) {
	body, ok := categoryMessages[category]
	if !ok {
		slog.Warn("unknown notification category", "category", category)
		return
	}

	tokens, err := s.store.NotificationTargets(ctx, cameraID, category)
	if err != nil {
		slog.Error("resolve notification targets", "camera_id", cameraID, "error", err)
		return
	}

	tokens = dedupe(tokens)
	if len(tokens) == 0 {
		return
	}

	success, failure, err := s.pusher.SendMulticast(ctx, tokens, pushTitle, body)
	if err != nil {
		slog.Error("send multicast push", "camera_id", cameraID, "error", err)
		observability.PushesSent.WithLabelValues("error").Add(float64(len(tokens)))
		return
	}

	slog.Info("push notifications sent",
		"camera_id", cameraID,
		"category", category,
		"success", success,
		"failure", failure,
	)
	observability.PushesSent.WithLabelValues("success").Add(float64(success))
	if failure > 0 {
		observability.PushesSent.WithLabelValues("failure").Add(float64(failure))
	}
}

// dedupe removes duplicate tokens preserving first-seen order.
func dedupe(tokens []string) []string {
	seen := make(map[string]struct{}, len(tokens))
	out := tokens[:0]
	for _, t := range tokens {
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
