// Package common contains shared constants and sentinel errors used across
// gophauth components.
package common

// AuthorizationHeaderName is the HTTP header / gRPC metadata key carrying the
// bearer access token.
const AuthorizationHeaderName = "authorization"

// BearerTokenType is the token_type reported to clients on login.
const BearerTokenType = "bearer"

// ForgotPasswordAck is returned by forgot-password regardless of whether the
// account exists.
const ForgotPasswordAck = "If an account exists for that email, a reset link has been sent."
