// Package client contains the CLI's view of the gophauth API.
//
// # Overview
//
// The Client interface lists every remote operation. HTTPClient implements
// it over JSON using netx.DoJSON, GRPCClient over the gophauth.v1.AuthService
// gRPC service.
//
// # Error Handling
//
// Transport failures are reported as ErrUnavailable and rejected credentials
// or tokens as ErrUnauthorized, both matchable with errors.Is. Any other
// HTTP failure is a *netx.APIError carrying the server's detail and field
// errors.
package client
