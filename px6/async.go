package px6

import "context"

// Pending is the outcome of an in-flight call. It completes exactly once.
type Pending[T any] struct {
	done   chan struct{}
	result *T
	err    error
}

func newPending[T any]() *Pending[T] {
	return &Pending[T]{done: make(chan struct{})}
}

func (p *Pending[T]) complete(result *T, err error) {
	p.result, p.err = result, err
	close(p.done)
}

// Done is closed once the outcome is available.
func (p *Pending[T]) Done() <-chan struct{} {
	return p.done
}

// Wait blocks until the call completes or ctx ends. Abandoning a wait does not
// cancel the call itself; cancel the context passed to the call for that.
func (p *Pending[T]) Wait(ctx context.Context) (*T, error) {
	select {
	case <-p.done:
		return p.result, p.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// invokeAsync is the suspending calling convention. Validation failures
// complete the Pending before it is returned.
func invokeAsync[T any](ctx context.Context, c *Client, method Method, params Params) *Pending[T] {
	p := newPending[T]()
	req, err := c.prepare(method, params)
	if err != nil {
		p.complete(nil, err)
		return p
	}
	go func() {
		p.complete(execute[T](ctx, c, req))
	}()
	return p
}

// AsyncClient exposes the client's operations without blocking the caller.
type AsyncClient struct {
	client *Client
}

func (a *AsyncClient) GetPrice(ctx context.Context, params GetPriceParams) *Pending[GetPriceResult] {
	return invokeAsync[GetPriceResult](ctx, a.client, MethodGetPrice, params)
}

func (a *AsyncClient) GetCount(ctx context.Context, params GetCountParams) *Pending[GetCountResult] {
	return invokeAsync[GetCountResult](ctx, a.client, MethodGetCount, params)
}

func (a *AsyncClient) GetCountry(ctx context.Context, params GetCountryParams) *Pending[GetCountryResult] {
	return invokeAsync[GetCountryResult](ctx, a.client, MethodGetCountry, params)
}

func (a *AsyncClient) GetProxy(ctx context.Context, params GetProxyParams) *Pending[GetProxyResult] {
	return invokeAsync[GetProxyResult](ctx, a.client, MethodGetProxy, params)
}

func (a *AsyncClient) SetType(ctx context.Context, params SetTypeParams) *Pending[SetTypeResult] {
	return invokeAsync[SetTypeResult](ctx, a.client, MethodSetType, params)
}

func (a *AsyncClient) SetDescription(ctx context.Context, params SetDescriptionParams) *Pending[SetDescriptionResult] {
	return invokeAsync[SetDescriptionResult](ctx, a.client, MethodSetDescription, params)
}

func (a *AsyncClient) Buy(ctx context.Context, params BuyParams) *Pending[BuyResult] {
	return invokeAsync[BuyResult](ctx, a.client, MethodBuy, params)
}

func (a *AsyncClient) Prolong(ctx context.Context, params ProlongParams) *Pending[ProlongResult] {
	return invokeAsync[ProlongResult](ctx, a.client, MethodProlong, params)
}

func (a *AsyncClient) Delete(ctx context.Context, params DeleteParams) *Pending[DeleteResult] {
	return invokeAsync[DeleteResult](ctx, a.client, MethodDelete, params)
}

func (a *AsyncClient) Check(ctx context.Context, params CheckParams) *Pending[CheckResult] {
	return invokeAsync[CheckResult](ctx, a.client, MethodCheck, params)
}

func (a *AsyncClient) IPAuth(ctx context.Context, params IPAuthParams) *Pending[IPAuthResult] {
	return invokeAsync[IPAuthResult](ctx, a.client, MethodIPAuth, params)
}
