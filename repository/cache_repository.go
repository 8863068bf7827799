package repository

// CacheRepository is a small string store. The debt service keeps payment
// records keyed by client idempotency keys here, so a retried request can be
// answered with the originally applied payment.
type CacheRepository interface {
	Get(key string) (string, bool)
	Set(key string, value string) error
}
