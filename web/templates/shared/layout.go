package shared

import (
	"context"
)

// Breadcrumb represents a navigation trail
type Breadcrumb struct {
	Title string
}

// PageData carries per-request values into views.
type PageData struct {
	Username    string
	Flash       string
	Breadcrumbs []Breadcrumb
}

type pageDataKey struct{}

// WithPageData attaches data to ctx for views rendered later in the request.
func WithPageData(ctx context.Context, data PageData) context.Context {
	return context.WithValue(ctx, pageDataKey{}, data)
}

// PageDataFromContext returns the data attached by WithPageData.
func PageDataFromContext(ctx context.Context) PageData {
	data, _ := ctx.Value(pageDataKey{}).(PageData)
	return data
}
