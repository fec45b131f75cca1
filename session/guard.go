package session

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// Notifier tells the server a session ended. Notification is best-effort:
// a failure never blocks local logout.
type Notifier interface {
	NotifyLogout(ctx context.Context) error
}

// Decision is the outcome of an authorization check. When Allowed is false,
// Redirect carries the route the caller should navigate to.
type Decision struct {
	Allowed  bool
	Redirect string
}

// Guard resolves whether the current viewer has a valid session and role, and
// gates navigation to role-restricted views. All failures degrade to "treat
// as logged out"; nothing here waits on the network once a local token exists.
type Guard struct {
	store    Store
	notifier Notifier
	log      zerolog.Logger
}

// GuardOption defines a function type to modify the Guard instance.
type GuardOption func(*Guard)

// WithNotifier sets the server-side logout notifier.
func WithNotifier(n Notifier) GuardOption {
	return func(g *Guard) {
		g.notifier = n
	}
}

// WithLogger sets the guard's logger.
func WithLogger(log zerolog.Logger) GuardOption {
	return func(g *Guard) {
		g.log = log
	}
}

// NewGuard initializes a Guard over a session store.
func NewGuard(store Store, options ...GuardOption) (*Guard, error) {
	if store == nil {
		return nil, errors.New("[NewGuard] store is required")
	}

	guard := &Guard{
		store: store,
		log:   zerolog.Nop(),
	}

	for _, opt := range options {
		opt(guard)
	}

	return guard, nil
}

// Resolve reads the persisted token and decodes it locally into a Session.
// No stored token yields UnauthenticatedErr. A token that fails to decode is
// purged from the store and also yields UnauthenticatedErr: the next resolve
// starts from a clean slate.
func (g *Guard) Resolve() (*Session, error) {
	token, storedRole, err := g.store.Read()
	if err != nil {
		return nil, errors.Wrap(err, "[Guard.Resolve] store.Read")
	}
	if token == "" {
		return nil, UnauthenticatedErr
	}

	claims, err := DecodeToken(token)
	if err != nil {
		g.log.Warn().Err(err).Msg("stored token failed to decode, purging session")
		if clearErr := g.store.Clear(); clearErr != nil {
			g.log.Error().Err(clearErr).Msg("failed to clear session store")
		}
		return nil, UnauthenticatedErr
	}

	// The decoded token wins over whatever role string was stored alongside
	// it. Repair the store when they disagree.
	if storedRole != "" && NormalizeRole(storedRole) != claims.Role {
		g.log.Warn().
			Str("stored_role", storedRole).
			Str("token_role", string(claims.Role)).
			Msg("stored role disagrees with token claims, token wins")
		if err := g.store.Write(token, string(claims.Role)); err != nil {
			g.log.Error().Err(err).Msg("failed to repair stored role")
		}
	}

	return &Session{
		Token:  token,
		Role:   claims.Role,
		UserID: claims.UserID,
	}, nil
}

// Authorize gates a role-restricted view. Allowed iff a session is present
// and either no roles are required or the session's role matches one of them,
// case-insensitively. Everything else redirects to the login route.
func (g *Guard) Authorize(sess *Session, allowedRoles ...Role) Decision {
	if sess == nil {
		return Decision{Redirect: RouteLogin}
	}
	if len(allowedRoles) == 0 {
		return Decision{Allowed: true}
	}
	for _, role := range allowedRoles {
		if strings.EqualFold(string(sess.Role), string(role)) {
			return Decision{Allowed: true}
		}
	}
	return Decision{Redirect: RouteLogin}
}

// CaptureExternalSession handles a token arriving via an external redirect
// (OAuth callback) or a direct login response. On a decodable token it
// persists the session and returns the role's home route; on a token that
// fails to decode it persists nothing and routes back to login.
func (g *Guard) CaptureExternalSession(rawToken string) (*Session, string, error) {
	claims, err := DecodeToken(rawToken)
	if err != nil {
		return nil, RouteLogin, errors.Wrap(err, "[Guard.CaptureExternalSession] DecodeToken")
	}

	if err := g.store.Write(rawToken, string(claims.Role)); err != nil {
		return nil, RouteLogin, errors.Wrap(err, "[Guard.CaptureExternalSession] store.Write")
	}

	sess := &Session{
		Token:  rawToken,
		Role:   claims.Role,
		UserID: claims.UserID,
	}
	return sess, HomePath(claims.Role), nil
}

// Logout clears the persisted session, notifies the server best-effort, and
// returns the login route. A failed notification is logged and otherwise
// ignored; the local session is already gone by then.
func (g *Guard) Logout(ctx context.Context) string {
	if err := g.store.Clear(); err != nil {
		g.log.Error().Err(err).Msg("failed to clear session store on logout")
	}
	if g.notifier != nil {
		if err := g.notifier.NotifyLogout(ctx); err != nil {
			g.log.Warn().Err(err).Msg("server logout notification failed")
		}
	}
	return RouteLogin
}

// Invalidate handles a server-reported 401 observed on any authenticated
// request: purge the local session and send the viewer back to login.
func (g *Guard) Invalidate() string {
	g.log.Info().Msg("server reported session invalid, purging local session")
	if err := g.store.Clear(); err != nil {
		g.log.Error().Err(err).Msg("failed to clear session store")
	}
	return RouteLogin
}
