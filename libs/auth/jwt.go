// Package auth verifies the bearer tokens that identify calendar owners.
// HS256 uses a shared secret; RS256 keys come from a JWKS endpoint.
package auth

import (
	"crypto"
	"crypto/hmac"
	"crypto/rsa"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"strings"
	"time"
)

var ErrInvalidToken = errors.New("invalid token")

// Claims identifies a calendar owner. Sub is the owner id that partitions
// every owner-scoped record.
type Claims struct {
	Sub      string `json:"sub"`
	Username string `json:"username"`
	Exp      int64  `json:"exp"`
	Iat      int64  `json:"iat"`
}

type Header struct {
	Alg string `json:"alg"`
	Typ string `json:"typ,omitempty"`
	Kid string `json:"kid,omitempty"`
}

var b64 = base64.RawURLEncoding

// token is a compact JWS split into its parts.
type token struct {
	header  Header
	signed  string // header.payload
	payload string
	sig     []byte
}

func split(raw string) (*token, error) {
	head, rest, ok := strings.Cut(raw, ".")
	if !ok {
		return nil, ErrInvalidToken
	}
	payload, sigPart, ok := strings.Cut(rest, ".")
	if !ok || strings.Contains(sigPart, ".") {
		return nil, ErrInvalidToken
	}
	sig, err := b64.DecodeString(sigPart)
	if err != nil {
		return nil, ErrInvalidToken
	}
	t := &token{signed: head + "." + payload, payload: payload, sig: sig}
	if err := decodeSegment(head, &t.header); err != nil {
		return nil, err
	}
	return t, nil
}

func ParseHeader(raw string) (*Header, error) {
	t, err := split(raw)
	if err != nil {
		return nil, err
	}
	return &t.header, nil
}

func SignHS256(claims Claims, secret string) (string, error) {
	head, err := encodeSegment(Header{Alg: "HS256", Typ: "JWT"})
	if err != nil {
		return "", err
	}
	body, err := encodeSegment(claims)
	if err != nil {
		return "", err
	}
	signed := head + "." + body
	return signed + "." + b64.EncodeToString(hs256(signed, secret)), nil
}

func ParseAndVerifyHS256(raw, secret string) (*Claims, error) {
	if secret == "" {
		return nil, ErrInvalidToken
	}
	t, err := split(raw)
	if err != nil || t.header.Alg != "HS256" {
		return nil, ErrInvalidToken
	}
	if !hmac.Equal(t.sig, hs256(t.signed, secret)) {
		return nil, ErrInvalidToken
	}
	return t.claims(time.Now())
}

func VerifyRS256(raw string, pubKey crypto.PublicKey) (*Claims, error) {
	key, ok := pubKey.(*rsa.PublicKey)
	if !ok {
		return nil, ErrInvalidToken
	}
	t, err := split(raw)
	if err != nil || t.header.Alg != "RS256" {
		return nil, ErrInvalidToken
	}
	digest := sha256.Sum256([]byte(t.signed))
	if rsa.VerifyPKCS1v15(key, crypto.SHA256, digest[:], t.sig) != nil {
		return nil, ErrInvalidToken
	}
	return t.claims(time.Now())
}

// claims decodes the payload and rejects tokens without a subject or past exp.
func (t *token) claims(now time.Time) (*Claims, error) {
	var c Claims
	if err := decodeSegment(t.payload, &c); err != nil {
		return nil, err
	}
	if c.Sub == "" || (c.Exp > 0 && now.Unix() > c.Exp) {
		return nil, ErrInvalidToken
	}
	return &c, nil
}

func encodeSegment(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return b64.EncodeToString(b), nil
}

func decodeSegment(seg string, v any) error {
	b, err := b64.DecodeString(seg)
	if err != nil || json.Unmarshal(b, v) != nil {
		return ErrInvalidToken
	}
	return nil
}

func hs256(data, secret string) []byte {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(data))
	return mac.Sum(nil)
}
