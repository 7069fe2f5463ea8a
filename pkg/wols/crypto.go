package wols

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"

	"golang.org/x/crypto/pbkdf2"
)

// Key derivation and envelope constants. The salt is version-tagged: a
// future derivation change gets a new salt, keeping old envelopes decodable.
const (
	// DefaultIterations is the PBKDF2 count used when the caller does not
	// choose one.
	DefaultIterations = 310000
	// MinIterations is the lowest accepted PBKDF2 count. Weaker counts are
	// rejected outright, never silently clamped.
	MinIterations = 100000

	envelopeAlgorithm = "AES-256-GCM"
	envelopeVersion   = 1
	derivationSalt    = "wols-envelope-salt-v1"
	derivedKeyBytes   = 32
)

// DerivedKey is a stretched symmetric key plus the iteration count that
// produced it. Reusing one across calls skips repeated derivation.
type DerivedKey struct {
	key        []byte
	iterations int
}

// Iterations returns the PBKDF2 count recorded with the key.
func (k *DerivedKey) Iterations() int { return k.iterations }

// DeriveKey stretches a password into a 32-byte AES key via PBKDF2-SHA256
// with the standard's fixed salt. An iteration count of zero selects
// DefaultIterations; counts below MinIterations are a hard error.
func DeriveKey(password string, iterations int) (*DerivedKey, error) {
	if iterations == 0 {
		iterations = DefaultIterations
	}
	if iterations < MinIterations {
		return nil, &Error{
			Code:    ErrCodeWeakIterations,
			Message: fmt.Sprintf("iteration count %d is below the minimum %d", iterations, MinIterations),
		}
	}
	key := pbkdf2.Key([]byte(password), []byte(derivationSalt), iterations, derivedKeyBytes, sha256.New)
	return &DerivedKey{key: key, iterations: iterations}, nil
}

// EncryptOptions configures encryption. Key wins over Password when both
// are set; Iterations applies only to password derivation. Fields is
// honored only by EncryptSpecimenFields.
type EncryptOptions struct {
	Password   string
	Key        *DerivedKey
	Iterations int
	Fields     []string
}

// DecryptOptions configures decryption. Key wins over Password; when
// deriving from a password, the envelope's recorded iteration count takes
// precedence over Iterations.
type DecryptOptions struct {
	Password   string
	Key        *DerivedKey
	Iterations int
}

// Envelope is the self-describing wrapper around an encrypted specimen:
// base64url (unpadded) ciphertext and nonce, an algorithm tag, and optional
// format version and iteration count.
type Envelope struct {
	Encrypted  bool   `json:"encrypted"`
	Payload    string `json:"payload"`
	Nonce      string `json:"nonce"`
	Algorithm  string `json:"algorithm"`
	Version    int    `json:"version,omitempty"`
	Iterations int    `json:"iterations,omitempty"`
}

// EncryptSpecimen serializes the record and encrypts the whole wire form
// with AES-256-GCM under a fresh random nonce, so identical specimens never
// produce identical ciphertext. For per-field confidentiality use
// EncryptSpecimenFields.
func EncryptSpecimen(s Specimen, opts EncryptOptions) (*Envelope, error) {
	if len(opts.Fields) > 0 {
		return nil, &Error{Code: ErrCodeEncryptionFailed, Message: "field selection requires EncryptSpecimenFields"}
	}
	key, err := resolveEncryptKey(opts)
	if err != nil {
		return nil, err
	}
	wire, err := SerializeSpecimen(s)
	if err != nil {
		return nil, &Error{Code: ErrCodeEncryptionFailed, Message: "serialize specimen", Err: err}
	}
	payload, nonce, err := seal(key.key, []byte(wire))
	if err != nil {
		return nil, &Error{Code: ErrCodeEncryptionFailed, Message: "encrypt specimen", Err: err}
	}
	return &Envelope{
		Encrypted:  true,
		Payload:    base64.RawURLEncoding.EncodeToString(payload),
		Nonce:      base64.RawURLEncoding.EncodeToString(nonce),
		Algorithm:  envelopeAlgorithm,
		Version:    envelopeVersion,
		Iterations: key.iterations,
	}, nil
}

// EncryptSpecimenFields encrypts only the named top-level fields, each into
// its own sub-envelope with its own nonce, leaving the rest in plaintext.
// The result is a hybrid document: neither a valid plain specimen nor a
// top-level envelope. Named fields absent from the record are skipped.
func EncryptSpecimenFields(s Specimen, opts EncryptOptions) (map[string]any, error) {
	if len(opts.Fields) == 0 {
		return nil, &Error{Code: ErrCodeEncryptionFailed, Message: "no fields selected"}
	}
	key, err := resolveEncryptKey(opts)
	if err != nil {
		return nil, err
	}
	doc := s.asDocument()
	for _, field := range opts.Fields {
		value, ok := doc[field]
		if !ok {
			continue
		}
		plaintext, err := encodeJSONValue(value)
		if err != nil {
			return nil, &Error{Code: ErrCodeEncryptionFailed, Message: fmt.Sprintf("encode field %s", field), Err: err}
		}
		payload, nonce, err := seal(key.key, plaintext)
		if err != nil {
			return nil, &Error{Code: ErrCodeEncryptionFailed, Message: fmt.Sprintf("encrypt field %s", field), Err: err}
		}
		doc[field] = map[string]any{
			"encrypted":  true,
			"payload":    base64.RawURLEncoding.EncodeToString(payload),
			"nonce":      base64.RawURLEncoding.EncodeToString(nonce),
			"algorithm":  envelopeAlgorithm,
			"iterations": key.iterations,
		}
	}
	return doc, nil
}

// DecryptSpecimen opens a whole-record envelope and parses the plaintext
// back into a Specimen. Every failure — wrong key, tampered ciphertext,
// missing envelope fields, unparseable plaintext — collapses into the same
// decryption_failed classification so nothing leaks about which check
// tripped; GCM's tag is the only tamper detector.
func DecryptSpecimen(env *Envelope, opts DecryptOptions) (Specimen, error) {
	if env == nil || env.Payload == "" || env.Nonce == "" {
		return Specimen{}, errDecryptionFailed()
	}
	key, err := resolveDecryptKey(opts, env.Iterations)
	if err != nil {
		return Specimen{}, errDecryptionFailed()
	}
	plaintext, err := open(key.key, env.Payload, env.Nonce)
	if err != nil {
		return Specimen{}, errDecryptionFailed()
	}
	s, err := ParseSpecimen(string(plaintext))
	if err != nil {
		return Specimen{}, errDecryptionFailed()
	}
	return s, nil
}

// DecryptSpecimenFields reverses EncryptSpecimenFields: sub-envelopes are
// opened in place, plaintext fields pass through, and the reassembled
// document is validated and projected like parsed input. Crypto failures
// collapse to decryption_failed; a document that decrypts cleanly but fails
// validation reports the validation classification instead.
func DecryptSpecimenFields(hybrid map[string]any, opts DecryptOptions) (Specimen, error) {
	if hybrid == nil {
		return Specimen{}, errDecryptionFailed()
	}
	doc := make(map[string]any, len(hybrid))
	for field, value := range hybrid {
		sub, ok := fieldEnvelope(value)
		if !ok {
			doc[field] = value
			continue
		}
		key, err := resolveDecryptKey(opts, sub.iterations)
		if err != nil {
			return Specimen{}, errDecryptionFailed()
		}
		plaintext, err := open(key.key, sub.payload, sub.nonce)
		if err != nil {
			return Specimen{}, errDecryptionFailed()
		}
		var decoded any
		if err := json.Unmarshal(plaintext, &decoded); err != nil {
			return Specimen{}, errDecryptionFailed()
		}
		doc[field] = decoded
	}
	if err := validateDocument(doc); err != nil {
		return Specimen{}, err
	}
	return projectSpecimen(doc), nil
}

func resolveEncryptKey(opts EncryptOptions) (*DerivedKey, error) {
	if opts.Key != nil {
		return opts.Key, nil
	}
	if opts.Password == "" {
		return nil, &Error{Code: ErrCodeEncryptionFailed, Message: "a password or derived key is required"}
	}
	return DeriveKey(opts.Password, opts.Iterations)
}

// resolveDecryptKey mirrors resolveEncryptKey but lets the envelope's
// recorded iteration count drive derivation.
func resolveDecryptKey(opts DecryptOptions, envelopeIterations int) (*DerivedKey, error) {
	if opts.Key != nil {
		return opts.Key, nil
	}
	if opts.Password == "" {
		return nil, &Error{Code: ErrCodeDecryptionFailed, Message: "decryption failed"}
	}
	iterations := envelopeIterations
	if iterations == 0 {
		iterations = opts.Iterations
	}
	return DeriveKey(opts.Password, iterations)
}

type subEnvelope struct {
	payload    string
	nonce      string
	iterations int
}

// fieldEnvelope recognizes the sub-envelope shape produced by
// EncryptSpecimenFields.
func fieldEnvelope(value any) (subEnvelope, bool) {
	m, ok := value.(map[string]any)
	if !ok {
		return subEnvelope{}, false
	}
	encrypted, _ := m["encrypted"].(bool)
	payload, payloadOK := m["payload"].(string)
	nonce, nonceOK := m["nonce"].(string)
	if !encrypted || !payloadOK || !nonceOK || payload == "" || nonce == "" {
		return subEnvelope{}, false
	}
	sub := subEnvelope{payload: payload, nonce: nonce}
	if n, ok := intValue(m["iterations"]); ok {
		sub.iterations = n
	}
	return sub, true
}

func seal(key, plaintext []byte) (ciphertext, nonce []byte, err error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, nil, err
	}
	nonce = make([]byte, gcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, nil, err
	}
	return gcm.Seal(nil, nonce, plaintext, nil), nonce, nil
}

func open(key []byte, payload, nonce string) ([]byte, error) {
	ciphertext, err := base64.RawURLEncoding.DecodeString(payload)
	if err != nil {
		return nil, err
	}
	rawNonce, err := base64.RawURLEncoding.DecodeString(nonce)
	if err != nil {
		return nil, err
	}
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	if len(rawNonce) != gcm.NonceSize() {
		return nil, fmt.Errorf("nonce length %d", len(rawNonce))
	}
	return gcm.Open(nil, rawNonce, ciphertext, nil)
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

func errDecryptionFailed() error {
	return &Error{Code: ErrCodeDecryptionFailed, Message: "decryption failed"}
}
