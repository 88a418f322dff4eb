package signer

// Verifier checks detached signatures over downloaded channel metadata
type Verifier interface {
	// Verify returns nil when signature is a valid detached signature of data
	Verify(data, signature []byte) error
}
