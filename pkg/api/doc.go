// Package api talks to the device-management server's classic XML API.
//
// The API interface moves tree values: request bodies are encoded with
// convert.TreeToXML and responses decoded with convert.XMLToTree, so callers
// never handle XML text. Client implements API over net/http with retries on
// transport errors and server errors, exponential backoff between attempts,
// an X-Request-ID on every request, and structured logs, metrics and spans
// per call.
//
// Basic usage:
//
//	client, err := api.NewClient(cfg.Server, api.ClientOptions{})
//	if err != nil {
//	    return err
//	}
//	doc, err := client.Get(ctx, "policies/id/12")
package api
