package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	svix "github.com/svix/svix-webhooks/go"

	"github.com/GRAMAPHENIA/gestion-escolar-web-app-sub001/internal/api/metrics"
	"github.com/GRAMAPHENIA/gestion-escolar-web-app-sub001/internal/core/domain"
)

const (
	headerWebhookID = "Webhook-Id"
	headerSvixID    = "Svix-Id"
	secretPrefix    = "whsec_"
	maxWebhookBody  = 1 << 20
)

var errNoWebhookSecret = errors.New("webhook secret not configured")

// EventDispatcher is the interface the handler uses to enqueue events.
type EventDispatcher interface {
	Enqueue(ctx context.Context, event domain.IdentityEvent) error
}

// WebhookHandler receives signed lifecycle deliveries from the identity
// provider and hands them to the dispatcher. Signatures follow the Standard
// Webhooks scheme and are checked by the svix library.
type WebhookHandler struct {
	verifier   *svix.Webhook
	dispatcher EventDispatcher
	log        zerolog.Logger
}

// NewWebhookHandler creates a WebhookHandler. A secret carrying the whsec_
// prefix is base64-decoded; any other value is used verbatim. With an empty
// secret every delivery is rejected.
func NewWebhookHandler(secret string, dispatcher EventDispatcher, log zerolog.Logger) *WebhookHandler {
	return &WebhookHandler{
		verifier:   newVerifier(secret),
		dispatcher: dispatcher,
		log:        log,
	}
}

func newVerifier(secret string) *svix.Webhook {
	if secret == "" {
		return nil
	}
	if strings.HasPrefix(secret, secretPrefix) {
		if wh, err := svix.NewWebhook(secret); err == nil {
			return wh
		}
	}
	wh, err := svix.NewWebhookRaw([]byte(secret))
	if err != nil {
		return nil
	}
	return wh
}

// Receive handles POST /api/v1/webhooks/identity, verifies the signature,
// enqueues the event and returns 202.
//
// @Summary      Identity provider lifecycle webhook
// @Tags         webhooks
// @Accept       json
// @Produce      json
// @Param        Webhook-Id         header    string          true  "Delivery id, reused on retries"
// @Param        Webhook-Timestamp  header    string          true  "Unix seconds"
// @Param        Webhook-Signature  header    string          true  "v1,<base64 HMAC-SHA256>"
// @Param        body               body      webhookPayload  true  "Lifecycle event"
// @Success      202                {object}  acceptedResponse
// @Failure      400                {object}  errorResponse
// @Failure      401                {object}  errorResponse
// @Router       /api/v1/webhooks/identity [post]
func (h *WebhookHandler) Receive(c echo.Context) error {
	body, err := io.ReadAll(io.LimitReader(c.Request().Body, maxWebhookBody))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "unreadable body")
	}

	req := c.Request()
	deliveryID := req.Header.Get(headerWebhookID)
	if deliveryID == "" {
		deliveryID = req.Header.Get(headerSvixID)
	}
	if err := h.verify(body, req.Header); err != nil {
		metrics.WebhookDeliveriesTotal.WithLabelValues("invalid_signature").Inc()
		h.log.Warn().Err(err).Str("delivery_id", deliveryID).Msg("webhook rejected")
		return domain.ErrInvalidSignature
	}

	var payload webhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		metrics.WebhookDeliveriesTotal.WithLabelValues("invalid_payload").Inc()
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&payload); err != nil {
		metrics.WebhookDeliveriesTotal.WithLabelValues("invalid_payload").Inc()
		return err
	}

	occurred := payload.Timestamp
	if occurred.IsZero() {
		occurred = time.Now().UTC()
	}
	event := domain.IdentityEvent{
		DeliveryID: deliveryID,
		Type:       domain.IdentityEventType(payload.Type),
		Subject:    payload.Data.ID,
		Email:      payload.Data.Email,
		OccurredAt: occurred,
		Payload:    body,
	}
	if err := h.dispatcher.Enqueue(req.Context(), event); err != nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "event queue unavailable")
	}

	metrics.WebhookDeliveriesTotal.WithLabelValues("accepted").Inc()
	return c.JSON(http.StatusAccepted, acceptedResponse{Message: "event accepted"})
}

// verify checks Webhook-Id, Webhook-Timestamp (five minutes either way) and
// every "v1,<sig>" entry of Webhook-Signature against the body.
func (h *WebhookHandler) verify(body []byte, headers http.Header) error {
	if h.verifier == nil {
		return errNoWebhookSecret
	}
	return h.verifier.Verify(body, headers)
}
