package models

// Requests for insight HTTP endpoints. Defined in domain for consistency and reuse.

type InsightsRequest struct {
	Country string `query:"country" json:"country" validate:"required,len=2,alpha"`
	Window  string `query:"window" json:"window" default:"30d" validate:"oneof=7d 30d 90d"`
	Period  int    `query:"period" json:"period" default:"7" validate:"gte=2,lte=30"`
}

type AnomaliesRequest struct {
	Country string `query:"country" json:"country" validate:"required,len=2,alpha"`
	Window  string `query:"window" json:"window" default:"30d" validate:"oneof=7d 30d 90d"`
}

type TrendRequest struct {
	Country string `query:"country" json:"country" validate:"required,len=2,alpha"`
	Window  string `query:"window" json:"window" default:"30d" validate:"oneof=7d 30d 90d"`
}

type TrendsRequest struct {
	Window string `query:"window" json:"window" default:"30d" validate:"oneof=7d 30d 90d"`
	Span   int    `query:"span" json:"span" default:"7" validate:"gte=4,lte=90"`
}

type EventsRequest struct {
	Country string `query:"country" json:"country" validate:"required,len=2,alpha"`
	From    string `query:"from" json:"from" validate:"required"`
	To      string `query:"to" json:"to" validate:"required"`
	Limit   int    `query:"limit" json:"limit" default:"1000" validate:"gte=1,lte=10000"`
}
