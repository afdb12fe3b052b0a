package usecase

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"time"

	"instagram-relay/domain/dto"
	"instagram-relay/domain/repository"
	"instagram-relay/infrastructure/logger"
	"instagram-relay/infrastructure/signature"
	"instagram-relay/infrastructure/worker"
)

type IWebhookUsecase interface {
	VerifySubscription(mode, token, challenge string) (string, bool)
	Enqueue(rawBody []byte, signatureHeader string) bool
	Process(ctx context.Context, rawBody []byte, signatureHeader string)
	Stats() WebhookStats
}

// WebhookStats aggregates processing counters with the worker pool's queue
// counters for the stats endpoint.
type WebhookStats struct {
	Forwarded         uint64       `json:"forwarded"`
	ForwardFailures   uint64       `json:"forward_failures"`
	InvalidSignatures uint64       `json:"invalid_signatures"`
	Pool              worker.Stats `json:"pool"`
}

type webhookUsecase struct {
	verifier    *signature.Verifier
	forwarder   repository.IForwarder
	pool        *worker.Pool
	verifyToken string

	forwarded         uint64
	forwardFailures   uint64
	invalidSignatures uint64
}

func NewWebhookUsecase(verifier *signature.Verifier, forwarder repository.IForwarder, pool *worker.Pool, verifyToken string) IWebhookUsecase {
	return &webhookUsecase{
		verifier:    verifier,
		forwarder:   forwarder,
		pool:        pool,
		verifyToken: verifyToken,
	}
}

// VerifySubscription answers the platform's GET handshake. The challenge is
// echoed back only when the mode is "subscribe" and the token matches.
func (u *webhookUsecase) VerifySubscription(mode, token, challenge string) (string, bool) {
	if mode != "subscribe" || token == "" || token != u.verifyToken {
		return "", false
	}
	return challenge, true
}

// Enqueue hands the raw delivery to the worker pool. The caller has already
// acknowledged the request, so a full queue drops the delivery rather than
// blocking the acknowledgment path.
func (u *webhookUsecase) Enqueue(rawBody []byte, signatureHeader string) bool {
	body := make([]byte, len(rawBody))
	copy(body, rawBody)
	ok := u.pool.Submit(func(ctx context.Context) {
		u.Process(ctx, body, signatureHeader)
	})
	if !ok {
		logger.GetLogger().Warn("Webhook queue full, delivery dropped")
	}
	return ok
}

// Process verifies, classifies, and forwards one delivery. Runs on a worker
// goroutine; all failures are swallowed after counting because the platform
// already got its 200.
func (u *webhookUsecase) Process(ctx context.Context, rawBody []byte, signatureHeader string) {
	if !u.verifier.Verify(rawBody, signatureHeader) {
		atomic.AddUint64(&u.invalidSignatures, 1)
		logger.GetLogger().Warn("Webhook delivery failed signature verification")
		return
	}

	var notification dto.Notification
	if err := json.Unmarshal(rawBody, &notification); err != nil {
		logger.GetLogger().WithField("error", err).Warn("Webhook delivery is not valid JSON")
		return
	}

	events := ClassifyNotification(&notification, time.Now().UTC())
	for _, event := range events {
		if err := u.forwarder.Forward(ctx, event); err != nil {
			atomic.AddUint64(&u.forwardFailures, 1)
			logger.GetLogger().WithField("error", err).WithField("eventType", event.Type).Error("Event forward failed")
			continue
		}
		atomic.AddUint64(&u.forwarded, 1)
	}
}

func (u *webhookUsecase) Stats() WebhookStats {
	return WebhookStats{
		Forwarded:         atomic.LoadUint64(&u.forwarded),
		ForwardFailures:   atomic.LoadUint64(&u.forwardFailures),
		InvalidSignatures: atomic.LoadUint64(&u.invalidSignatures),
		Pool:              u.pool.Stats(),
	}
}
