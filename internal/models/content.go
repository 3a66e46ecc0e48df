package models

import "time"

// Item is an ingested content item. The router only reads it; handlers
// decide what, if anything, to write.
type Item struct {
	ID       string                 `json:"id" validate:"required"`
	GUID     string                 `json:"guid,omitempty"`
	Type     string                 `json:"type,omitempty"`
	Headline string                 `json:"headline,omitempty"`
	Source   string                 `json:"source,omitempty"`
	Fields   map[string]interface{} `json:"fields,omitempty"`
}

// Field returns a value from Fields, or nil.
func (i *Item) Field(key string) interface{} {
	if i == nil || i.Fields == nil {
		return nil
	}
	return i.Fields[key]
}

// Provider is an ingest provider configuration. RoutingScheme references a
// scheme id and may be empty.
type Provider struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	RoutingScheme string    `json:"routing_scheme,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// ContentFilter is a named boolean expression evaluated against items.
type ContentFilter struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Expression string    `json:"expression"`
	CreatedAt  time.Time `json:"created_at"`
}

// Routed item actions.
const (
	ActionFetch   = "fetch"
	ActionPublish = "publish"
)

// RoutedItem records one fetch or publish performed by a rule handler.
type RoutedItem struct {
	ID                string                 `json:"id"`
	ItemID            string                 `json:"item_id"`
	SchemeID          string                 `json:"scheme_id"`
	RuleName          string                 `json:"rule_name"`
	Action            string                 `json:"action"`
	Desk              string                 `json:"desk,omitempty"`
	Stage             string                 `json:"stage,omitempty"`
	Macro             string                 `json:"macro,omitempty"`
	TargetSubscribers []string               `json:"target_subscribers,omitempty"`
	TargetTypes       []string               `json:"target_types,omitempty"`
	Extra             map[string]interface{} `json:"extra,omitempty"`
	CreatedAt         time.Time              `json:"created_at"`
}
