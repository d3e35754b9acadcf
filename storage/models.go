package storage

// Profile is a named signing identity stored in the keyring file.
// The private key is kept as raw bytes; the JSON layer base64-encodes it.
type Profile struct {
	Name       string
	PrivateKey []byte
}
