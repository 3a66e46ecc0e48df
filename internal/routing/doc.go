// Package routing applies routing schemes to ingested content items.
//
// A routing scheme is an ordered list of rules. When an item arrives from an
// ingest provider, the SchemeRouter decides which of the provider's rules
// apply at this instant and hands the item to each applicable rule's handler.
//
// # Evaluation
//
// ApplyRoutingScheme evaluates a scheme in four steps:
//
//  1. Rules whose schedule is not active at the current instant are dropped.
//     Relative order is preserved.
//  2. Each remaining rule resolves its handler from the HandlerRegistry. A rule
//     without a handler uses "desk_fetch_publish".
//  3. If the handler accepts the item and the rule's content filter matches,
//     the handler applies the rule's actions.
//  4. A rule whose actions carry exit=true stops evaluation once applied.
//
// A handler that refuses the item, or a filter that does not match, only
// skips that rule. A handler that fails aborts the whole evaluation and the
// error is returned to the caller. Rules are never retried.
//
// # Handlers
//
// Handlers implement RuleHandler and are registered once at startup:
//
//	registry, err := routing.NewHandlerRegistry(
//		handlers.NewDeskFetchPublish(store, logger,
//			handlers.WithPublisher(client, client.Key(redis.PublishedChannel))),
//	)
//	if err != nil {
//		return err
//	}
//	router := routing.NewSchemeRouter(registry, matcher, logger)
//
//	result, err := router.ApplyRoutingScheme(ctx, item, provider, scheme)
//
// The registry is read-only after construction and safe for concurrent use.
//
// # Schedules
//
// Schedules are evaluated by package schedule against the UTC instant
// returned by the router's clock. Tests substitute the clock with WithClock.
package routing
