// Package httpx builds the outbound HTTP clients used to reach the generator
// and the validator: hardened TLS (1.2+, AEAD only), a request timeout, and
// an optional client-side rate limit.
package httpx
