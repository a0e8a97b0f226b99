// pkg/stapi/order.go
package stapi

import (
	"encoding/json"
	"time"
)

type OrderStatusCode string

const (
	OrderReceived      OrderStatusCode = "received"
	OrderAccepted      OrderStatusCode = "accepted"
	OrderRejected      OrderStatusCode = "rejected"
	OrderCompleted     OrderStatusCode = "completed"
	OrderCancelled     OrderStatusCode = "cancelled"
	OrderScheduled     OrderStatusCode = "scheduled"
	OrderHeld          OrderStatusCode = "held"
	OrderProcessing    OrderStatusCode = "processing"
	OrderReserved      OrderStatusCode = "reserved"
	OrderTasked        OrderStatusCode = "tasked"
	OrderUserCancelled OrderStatusCode = "user_cancelled"
	OrderExpired       OrderStatusCode = "expired"
	OrderFailed        OrderStatusCode = "failed"
)

func (c OrderStatusCode) Terminal() bool {
	switch c {
	case OrderRejected, OrderCompleted, OrderCancelled, OrderUserCancelled, OrderExpired, OrderFailed:
		return true
	}
	return false
}

type OrderStatus struct {
	Timestamp  time.Time       `json:"timestamp"`
	StatusCode OrderStatusCode `json:"status_code"`
	ReasonCode string          `json:"reason_code,omitempty"`
	ReasonText string          `json:"reason_text,omitempty"`
	Links      []Link          `json:"links,omitempty"`
}

// NewOrderStatus stamps a status entry with the current UTC time.
func NewOrderStatus(code OrderStatusCode, reasonText string) OrderStatus {
	return OrderStatus{Timestamp: time.Now().UTC(), StatusCode: code, ReasonText: reasonText}
}

// OrderSearchParameters echoes the constraint set the order was placed
// against.
type OrderSearchParameters struct {
	Datetime string          `json:"datetime"`
	Geometry json.RawMessage `json:"geometry"`
	Filter   json.RawMessage `json:"filter,omitempty"`
}

type OrderProperties struct {
	ProductID             string                `json:"product_id"`
	Created               time.Time             `json:"created"`
	Status                OrderStatus           `json:"status"`
	SearchParameters      OrderSearchParameters `json:"search_parameters"`
	OpportunityProperties json.RawMessage       `json:"opportunity_properties,omitempty"`
	OrderParameters       json.RawMessage       `json:"order_parameters,omitempty"`
}

// Order is a placed tasking request, GeoJSON-feature shaped. Status history is
// append-only; each entry is immutable once written.
type Order struct {
	ID           string          `json:"id"`
	Type         string          `json:"type"`
	StapiType    string          `json:"stapi_type"`
	StapiVersion string          `json:"stapi_version"`
	Geometry     json.RawMessage `json:"geometry"`
	Properties   OrderProperties `json:"properties"`
	Links        []Link          `json:"links"`
}

func NewOrder(id string, geometry json.RawMessage, props OrderProperties) Order {
	return Order{
		ID:           id,
		Type:         "Feature",
		StapiType:    "Order",
		StapiVersion: Version,
		Geometry:     geometry,
		Properties:   props,
		Links:        []Link{},
	}
}

type OrderCollection struct {
	Type     string  `json:"type"`
	Features []Order `json:"features"`
	Links    []Link  `json:"links"`
}

type OrderStatusesCollection struct {
	Statuses []OrderStatus `json:"statuses"`
	Links    []Link        `json:"links"`
}

// OrderPayload is the body of a create-order request.
type OrderPayload struct {
	Datetime        string          `json:"datetime"`
	Geometry        json.RawMessage `json:"geometry"`
	Filter          json.RawMessage `json:"filter,omitempty"`
	OrderParameters json.RawMessage `json:"order_parameters,omitempty"`
}
