package logging

import "context"

type contextKey string

// Context keys picked up by Logger.WithContext.
const (
	ItemIDKey     contextKey = "item_id"
	ProviderIDKey contextKey = "provider_id"
	SchemeIDKey   contextKey = "scheme_id"
)

var contextKeys = []contextKey{ItemIDKey, ProviderIDKey, SchemeIDKey}

// ContextWithRouting returns ctx carrying the identifiers of one routing
// pass. Empty values are not stored.
func ContextWithRouting(ctx context.Context, itemID, providerID, schemeID string) context.Context {
	for key, value := range map[contextKey]string{
		ItemIDKey:     itemID,
		ProviderIDKey: providerID,
		SchemeIDKey:   schemeID,
	} {
		if value != "" {
			ctx = context.WithValue(ctx, key, value)
		}
	}
	return ctx
}

func contextFields(ctx context.Context) []Field {
	var fields []Field
	for _, key := range contextKeys {
		if value, ok := ctx.Value(key).(string); ok && value != "" {
			fields = append(fields, String(string(key), value))
		}
	}
	return fields
}
