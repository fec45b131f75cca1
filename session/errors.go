package session

import "errors"

var (
	UnauthenticatedErr = errors.New("no authenticated session")
	TokenDecodeErr     = errors.New("token decode failed")
	MissingClaimsErr   = errors.New("token missing required claims")
)
