// Copyright 2025 The Protectd Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package github

import (
	"crypto/rsa"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	// assertionTTL is the maximum lifetime GitHub accepts for an app JWT.
	assertionTTL = 10 * time.Minute
	// clockSkew backdates iat to tolerate drift between this process and
	// GitHub's verifiers.
	clockSkew = 60 * time.Second
)

// AppTokenSource mints the short-lived RS256 assertions that authenticate
// this process as the GitHub App itself. The private key is parsed once at
// construction and never leaves this type; callers mint a fresh assertion
// per exchange rather than reusing one.
type AppTokenSource struct {
	appID int64
	key   *rsa.PrivateKey
	now   func() time.Time
}

// NewAppTokenSource parses the PEM-encoded app private key. A key that
// cannot be parsed is a configuration error; callers treat it as fatal at
// startup, not as a per-request condition.
func NewAppTokenSource(appID int64, privateKeyPEM []byte) (*AppTokenSource, error) {
	key, err := jwt.ParseRSAPrivateKeyFromPEM(privateKeyPEM)
	if err != nil {
		return nil, fmt.Errorf("parse app private key: %w", err)
	}
	return &AppTokenSource{appID: appID, key: key, now: time.Now}, nil
}

// Mint signs a fresh app assertion with claims {iat: now-60s, exp: now+10m,
// iss: appID}.
func (s *AppTokenSource) Mint() (string, error) {
	now := s.now()
	claims := jwt.RegisteredClaims{
		IssuedAt:  jwt.NewNumericDate(now.Add(-clockSkew)),
		ExpiresAt: jwt.NewNumericDate(now.Add(assertionTTL)),
		Issuer:    strconv.FormatInt(s.appID, 10),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(s.key)
	if err != nil {
		return "", fmt.Errorf("sign app assertion: %w", err)
	}
	return signed, nil
}
