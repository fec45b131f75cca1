package session

import (
	"strings"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/jrsteele09/go-lms-client/internal/utils"
	"github.com/pkg/errors"
)

// Claims are the fields the client reads out of the backend's bearer token.
// The token is self-describing: the guard decodes it locally and never blocks
// on a network round trip to answer an authorization question. Signature
// verification is the resource server's job, not this client's.
type Claims struct {
	UserID string
	Role   Role
	Email  string
	Exp    int64
}

// DecodeToken extracts claims from a raw bearer token without verifying the
// signature. A malformed token, or one missing the user or role claims, is
// treated as no session at all.
func DecodeToken(rawToken string) (*Claims, error) {
	if strings.TrimSpace(rawToken) == "" {
		return nil, TokenDecodeErr
	}

	unverifiedToken, _, err := jwtlib.NewParser().ParseUnverified(rawToken, jwtlib.MapClaims{})
	if err != nil {
		return nil, errors.Wrap(TokenDecodeErr, err.Error())
	}

	claims, ok := unverifiedToken.Claims.(jwtlib.MapClaims)
	if !ok {
		return nil, errors.Wrap(TokenDecodeErr, "error extracting claims")
	}

	userID, _ := claims["sub"].(string)
	if userID == "" {
		userID, _ = claims["id"].(string)
	}
	if userID == "" {
		return nil, errors.Wrap(MissingClaimsErr, "no user id claim")
	}

	rawRole, _ := claims["role"].(string)
	if rawRole == "" {
		// Some backend builds issue a roles array instead of a single role.
		if claimRoles, ok := claims["roles"].([]any); ok {
			if roles := utils.ToStringSlice(claimRoles); len(roles) > 0 {
				rawRole = roles[0]
			}
		}
	}
	if rawRole == "" {
		return nil, errors.Wrap(MissingClaimsErr, "no role claim")
	}

	email, _ := claims["email"].(string)
	exp, _ := claims["exp"].(float64)

	return &Claims{
		UserID: userID,
		Role:   NormalizeRole(rawRole),
		Email:  email,
		Exp:    int64(exp),
	}, nil
}
