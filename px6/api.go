package px6

import (
	"context"
)

// API defines the blocking px6 operations
type API interface {
	// TestConnection verifies the key is accepted
	TestConnection(ctx context.Context) error

	// Read-only operations
	GetPrice(ctx context.Context, params GetPriceParams) (*GetPriceResult, error)
	GetCount(ctx context.Context, params GetCountParams) (*GetCountResult, error)
	GetCountry(ctx context.Context, params GetCountryParams) (*GetCountryResult, error)
	GetProxy(ctx context.Context, params GetProxyParams) (*GetProxyResult, error)
	Check(ctx context.Context, params CheckParams) (*CheckResult, error)

	// Operations that change the account
	SetType(ctx context.Context, params SetTypeParams) (*SetTypeResult, error)
	SetDescription(ctx context.Context, params SetDescriptionParams) (*SetDescriptionResult, error)
	Buy(ctx context.Context, params BuyParams) (*BuyResult, error)
	Prolong(ctx context.Context, params ProlongParams) (*ProlongResult, error)
	Delete(ctx context.Context, params DeleteParams) (*DeleteResult, error)
	IPAuth(ctx context.Context, params IPAuthParams) (*IPAuthResult, error)
}

var _ API = (*Client)(nil)
