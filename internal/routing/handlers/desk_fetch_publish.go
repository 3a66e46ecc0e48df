// Package handlers holds the built-in routing rule handlers.
package handlers

import (
	"context"
	"fmt"

	"content-router/internal/circuitbreaker"
	"content-router/internal/common/logging"
	"content-router/internal/models"
)

// DeskFetchPublishName is the id of the built-in handler.
const DeskFetchPublishName = models.DefaultRuleHandler

// Item types the desk handler accepts.
var deskItemTypes = map[string]struct{}{
	"text":         {},
	"preformatted": {},
	"picture":      {},
	"graphic":      {},
	"video":        {},
	"audio":        {},
	"composite":    {},
}

// RoutedItemStore persists routed item records.
type RoutedItemStore interface {
	CreateRoutedItem(ctx context.Context, item *models.RoutedItem) error
}

// Publisher sends a notification on a channel.
type Publisher interface {
	Publish(ctx context.Context, channel string, message interface{}) error
}

// PublishNotification is sent for every publish action performed.
type PublishNotification struct {
	RoutedItemID      string   `json:"routed_item_id"`
	ItemID            string   `json:"item_id"`
	SchemeID          string   `json:"scheme_id"`
	Rule              string   `json:"rule"`
	Desk              string   `json:"desk,omitempty"`
	Stage             string   `json:"stage,omitempty"`
	TargetSubscribers []string `json:"target_subscribers,omitempty"`
	TargetTypes       []string `json:"target_types,omitempty"`
}

// DeskFetchPublish records fetch and publish actions against desks and
// notifies subscribers of publishes.
type DeskFetchPublish struct {
	store     RoutedItemStore
	publisher Publisher
	channel   string
	breaker   *circuitbreaker.Breaker
	logger    logging.Logger
}

// Option configures a DeskFetchPublish handler.
type Option func(*DeskFetchPublish)

// WithPublisher sends a PublishNotification on channel after each publish.
func WithPublisher(p Publisher, channel string) Option {
	return func(h *DeskFetchPublish) {
		h.publisher = p
		h.channel = channel
	}
}

// WithBreaker guards notifications with a circuit breaker.
func WithBreaker(b *circuitbreaker.Breaker) Option {
	return func(h *DeskFetchPublish) {
		h.breaker = b
	}
}

// NewDeskFetchPublish creates the built-in handler.
func NewDeskFetchPublish(store RoutedItemStore, logger logging.Logger, opts ...Option) *DeskFetchPublish {
	if logger == nil {
		logger = logging.GetGlobalLogger()
	}
	h := &DeskFetchPublish{
		store:  store,
		logger: logger.WithFields(logging.String("handler", DeskFetchPublishName)),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *DeskFetchPublish) Name() string {
	return DeskFetchPublishName
}

// CanHandle accepts identified items of a desk content type.
func (h *DeskFetchPublish) CanHandle(rule *models.RoutingRule, item *models.Item, scheme *models.RoutingScheme) bool {
	if item == nil || item.ID == "" {
		return false
	}
	_, ok := deskItemTypes[item.Type]
	return ok
}

// ApplyRule records every fetch action, then every publish action. The first
// failed write is returned; notification failures are only logged.
func (h *DeskFetchPublish) ApplyRule(ctx context.Context, rule *models.RoutingRule, item *models.Item, scheme *models.RoutingScheme) error {
	if rule.Actions == nil {
		return nil
	}
	actions := rule.Actions

	for _, fetch := range actions.Fetch {
		desk, stage := h.destination(actions, item, fetch.Desk, fetch.Stage)
		routed := &models.RoutedItem{
			ItemID:   item.ID,
			SchemeID: scheme.ID,
			RuleName: rule.Name,
			Action:   models.ActionFetch,
			Desk:     desk,
			Stage:    stage,
			Macro:    fetch.Macro,
			Extra:    actions.Extra,
		}
		if err := h.store.CreateRoutedItem(ctx, routed); err != nil {
			return fmt.Errorf("fetch to desk %q: %w", desk, err)
		}
		h.logger.Debug("Item fetched",
			logging.String("item_id", item.ID),
			logging.String("rule", rule.Name),
			logging.String("desk", desk),
			logging.String("stage", stage),
		)
	}

	for _, publish := range actions.Publish {
		desk, stage := h.destination(actions, item, publish.Desk, publish.Stage)
		routed := &models.RoutedItem{
			ItemID:            item.ID,
			SchemeID:          scheme.ID,
			RuleName:          rule.Name,
			Action:            models.ActionPublish,
			Desk:              desk,
			Stage:             stage,
			Macro:             publish.Macro,
			TargetSubscribers: publish.TargetSubscribers,
			TargetTypes:       publish.TargetTypes,
			Extra:             actions.Extra,
		}
		if err := h.store.CreateRoutedItem(ctx, routed); err != nil {
			return fmt.Errorf("publish from desk %q: %w", desk, err)
		}
		h.notify(ctx, routed)
	}

	return nil
}

// destination keeps the item's own desk and stage when preserve_desk is set
// and the item carries a desk.
func (h *DeskFetchPublish) destination(actions *models.ActionSet, item *models.Item, desk, stage string) (string, string) {
	if !actions.PreserveDesk {
		return desk, stage
	}
	itemDesk, _ := item.Field("desk").(string)
	if itemDesk == "" {
		return desk, stage
	}
	itemStage, _ := item.Field("stage").(string)
	return itemDesk, itemStage
}

func (h *DeskFetchPublish) notify(ctx context.Context, routed *models.RoutedItem) {
	if h.publisher == nil {
		return
	}

	msg := PublishNotification{
		RoutedItemID:      routed.ID,
		ItemID:            routed.ItemID,
		SchemeID:          routed.SchemeID,
		Rule:              routed.RuleName,
		Desk:              routed.Desk,
		Stage:             routed.Stage,
		TargetSubscribers: routed.TargetSubscribers,
		TargetTypes:       routed.TargetTypes,
	}

	send := func(ctx context.Context) error {
		return h.publisher.Publish(ctx, h.channel, msg)
	}

	var err error
	if h.breaker != nil {
		err = h.breaker.Execute(ctx, send)
	} else {
		err = send(ctx)
	}
	if err != nil {
		h.logger.Warn("Failed to send publish notification",
			logging.String("item_id", routed.ItemID),
			logging.String("channel", h.channel),
			logging.Err(err),
		)
	}
}
