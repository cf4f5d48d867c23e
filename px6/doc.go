// Package px6 provides a client for the px6.link proxy-provisioning API.
//
// Every call is a GET to {base}/api/{api_key}/{method}?{query}. The API answers
// with a JSON object whose "status" field is "yes" or "no"; failures carry an
// "error_id" and an "error" message.
//
// # Architecture
//
// The package is organized into several components:
//
//   - Values: validated scalars (Country, Period, ProxyIDs, ...) that can only
//     be obtained through their constructors
//   - Params: one struct per operation, rendered into an ordered Query
//   - Transport: the single capability that performs HTTP; HTTPTransport is the default
//   - Client / AsyncClient: blocking and non-blocking adapters over the same
//     request and classification code
//   - Errors: five error kinds, matched with errors.Is / errors.As
//
// # Usage
//
//	logger := zerolog.New(os.Stderr)
//	client, err := px6.NewClient("your-api-key", logger,
//		px6.WithTimeout(20*time.Second),
//	)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	country, err := px6.NewCountry("us")
//	if err != nil {
//		log.Fatal(err) // *px6.ValidationError
//	}
//	period, _ := px6.NewPeriod(30)
//
//	res, err := client.GetPrice(ctx, px6.GetPriceParams{
//		Count:   5,
//		Period:  period,
//		Version: px6.ProxyVersionIPv6,
//	})
//
// The same operations are available without blocking:
//
//	pending := client.Async().GetCount(ctx, px6.GetCountParams{Country: country})
//	// ...
//	count, err := pending.Wait(ctx)
//
// # Error Handling
//
// Errors are never retried or recovered inside the package:
//
//   - ErrValidation / *ValidationError: rejected locally, nothing was sent
//   - ErrTransport / *TransportError: no HTTP response was obtained
//   - ErrRateLimited / *RateLimitedError: HTTP 429
//   - ErrDocumented / *DocumentedError: the API returned status "no"
//   - ErrUnexpectedResponse / *UnexpectedResponseError: the body did not match
//
// KindOf maps any error to its ErrorKind:
//
//	switch px6.KindOf(err) {
//	case px6.KindRateLimited:
//		// safe to retry read-only calls after a delay
//	case px6.KindDocumented:
//		var apiErr *px6.DocumentedError
//		errors.As(err, &apiErr)
//		fmt.Println(apiErr.Code, apiErr.Description())
//	}
package px6
