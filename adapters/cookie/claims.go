package cookie

import "github.com/golang-jwt/jwt/v5"

// AudienceSession is the audience of every session token
const AudienceSession = "walletauth:session"

// SessionClaims combines standard claims with the session fields
type SessionClaims struct {
	jwt.RegisteredClaims
	Address       string `json:"addr,omitempty"`
	Authenticated bool   `json:"auth,omitempty"`
	TempNonce     string `json:"tnonce,omitempty"`
	TempAddress   string `json:"taddr,omitempty"`
}
