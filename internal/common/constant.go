package common

import "github.com/awnumar/memguard"

// AuthorizationHeaderName carries "<scheme> <token>" on gated requests.
const AuthorizationHeaderName = "Authorization"

// RequestIDHeaderName is echoed on every HTTP response.
const RequestIDHeaderName = "X-Request-ID"

// WipeByteArray overwrites b with zeros. A nil slice is a no-op.
func WipeByteArray(b []byte) {
	memguard.WipeBytes(b)
}
