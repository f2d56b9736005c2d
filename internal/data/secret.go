package data

// Secrets keeps secret ciphertexts generated at order-data time, before the
// signed order itself lands in the orders table.
type Secrets interface {
	Store(orderHash, ciphertext string) error
	// Get returns "" when no secret is escrowed for the hash.
	Get(orderHash string) (string, error)
}
