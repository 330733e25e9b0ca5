// Package pairing provides an HTTP client for the pairing-code endpoint.
//
// The endpoint issues short-lived codes that a companion device uses to
// claim this screen. A request is a plain GET:
//
//	GET https://qa.api.astacms.com/api/pair-code?oldCode=
//
// and the response body nests the code under data:
//
//	{"data": {"code": "ABC123"}}
//
// Any transport error, non-2xx status, undecodable body or empty code is
// reported as an error from FetchCode. The client never retries; callers
// decide when to ask again.
//
// Each request carries a fresh X-Request-ID (uuid v4) which is also written
// to the client's logger so a failed fetch can be matched with server logs.
//
// Usage:
//
//	client, err := pairing.NewClient(cfg.PairingEndpoint,
//		pairing.WithTimeout(cfg.RequestTimeout),
//		pairing.WithLogger(logger))
//	if err != nil {
//		return err
//	}
//	code, err := client.FetchCode(ctx, "")
package pairing
