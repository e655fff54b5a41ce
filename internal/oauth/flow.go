package oauth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dropDatabas3/socialauth/internal/cache"
	"github.com/dropDatabas3/socialauth/internal/metrics"
	"github.com/dropDatabas3/socialauth/internal/observability/logger"
	tokens "github.com/dropDatabas3/socialauth/internal/security/token"
	"go.uber.org/zap"
)

const (
	// DefaultStateTTL bounds how long an authorize request can stay open.
	DefaultStateTTL = 3 * time.Minute

	statePrefix = "oauth:state:"
)

// StateKey is the cache key of a CSRF state.
func StateKey(state string) string { return statePrefix + state }

// Flow drives authorize -> callback -> token -> identity for one adapter.
// It holds no per-login state and is safe for concurrent use.
type Flow struct {
	adapter   Adapter
	cfg       Config
	cache     cache.Client
	stateTTL  time.Duration
	singleUse bool
	newState  func() string
}

// FlowOption customizes a Flow.
type FlowOption func(*Flow)

// WithStateTTL overrides DefaultStateTTL.
func WithStateTTL(d time.Duration) FlowOption {
	return func(f *Flow) {
		if d > 0 {
			f.stateTTL = d
		}
	}
}

// WithSingleUseState controls whether a validated state is deleted.
// Default true.
func WithSingleUseState(on bool) FlowOption {
	return func(f *Flow) { f.singleUse = on }
}

// WithStateGenerator replaces the random state generator.
func WithStateGenerator(fn func() string) FlowOption {
	return func(f *Flow) {
		if fn != nil {
			f.newState = fn
		}
	}
}

// NewFlow wraps adapter. cfg supplies the explicit state and the CSRF switch;
// a nil c uses cache.Default().
func NewFlow(adapter Adapter, cfg Config, c cache.Client, opts ...FlowOption) *Flow {
	if c == nil {
		c = cache.Default()
	}
	f := &Flow{
		adapter:   adapter,
		cfg:       cfg,
		cache:     c,
		stateTTL:  DefaultStateTTL,
		singleUse: true,
		newState:  tokens.NewState,
	}
	for _, o := range opts {
		o(f)
	}
	return f
}

// Adapter returns the wrapped adapter.
func (f *Flow) Adapter() Adapter { return f.adapter }

// Provider returns the source name.
func (f *Flow) Provider() string { return f.adapter.Source().Name }

// Authorize issues a CSRF state and returns the provider redirect URL.
func (f *Flow) Authorize(ctx context.Context, state string) (string, error) {
	return f.AuthorizeWith(ctx, state, nil)
}

// AuthorizeWith is Authorize with adapter specific inputs. The state is, in
// order: the explicit argument, the configured state, a random UUID.
func (f *Flow) AuthorizeWith(ctx context.Context, state string, extra map[string]string) (u string, err error) {
	start := time.Now()
	log := logger.ForFlow(ctx, f.Provider(), "Authorize")
	defer func() {
		status := StatusSuccess
		if err != nil {
			status = StatusError
		}
		metrics.ObserveFlow(f.Provider(), "authorize", string(status), time.Since(start))
	}()

	if state == "" {
		state = f.cfg.State
	}
	if state == "" {
		state = f.newState()
	}

	if err := f.cache.Set(ctx, StateKey(state), state, f.stateTTL); err != nil {
		log.Error("state cache write failed", logger.Err(err))
		return "", fmt.Errorf("oauth: store state: %w", err)
	}

	params, err := f.adapter.AuthorizeParams(ctx, state, extra)
	if err != nil {
		log.Warn("authorize params failed", logger.Err(err))
		return "", err
	}
	u = f.adapter.AuthorizeURL(params)
	log.Debug("authorize url issued", logger.State(state))
	return u, nil
}

// Login turns callback parameters into a normalized identity. extra is
// forwarded to the user-info step together with the callback extras (extra
// wins on conflicts).
func (f *Flow) Login(ctx context.Context, params map[string]string, extra map[string]string) (resp UserResponse) {
	start := time.Now()
	log := logger.ForFlow(ctx, f.Provider(), "Login")
	defer func() {
		if r := recover(); r != nil {
			log.Error("adapter panic", zap.Any("panic", r))
			resp = Error[*User](fmt.Sprintf("oauth: %s adapter panic: %v", f.Provider(), r))
		}
		f.finish(log, "login", resp.Status, resp.Message, time.Since(start))
	}()

	cb := ParseCallback(params)
	if cb.Error != "" {
		msg := cb.Error
		if cb.ErrorDescription != "" {
			msg = cb.Error + ": " + cb.ErrorDescription
		}
		return Failure[*User](msg)
	}

	if !f.cfg.IgnoreCheckState && cb.State != "" {
		if err := f.checkState(ctx, cb.State); err != nil {
			if errors.Is(err, ErrStateMismatch) {
				metrics.StateRejected.WithLabelValues(f.Provider()).Inc()
				return Failure[*User](ErrStateMismatch.Error())
			}
			return FromError[*User](err)
		}
	}

	if cc, ok := f.adapter.(CallbackChecker); ok {
		if err := cc.CheckCallback(cb); err != nil {
			return Failure[*User](err.Error())
		}
	}

	tr := f.adapter.ExchangeCode(ctx, cb)
	if !tr.OK() {
		return Convert[*User](tr)
	}
	if tr.Data == nil {
		return Error[*User]("oauth: token exchange returned no token")
	}

	ur := f.adapter.UserInfo(ctx, tr.Data, mergeExtras(cb.Extras, extra))
	if ur.OK() {
		if ur.Data == nil || ur.Data.UUID == "" {
			return Error[*User](ErrEmptyUUID.Error())
		}
		if ur.Data.Source == "" {
			ur.Data.Source = f.Provider()
		}
		if ur.Data.Token == nil {
			ur.Data.Token = tr.Data
		}
		log.Debug("identity resolved", logger.UserUUID(ur.Data.UUID))
	}
	return ur
}

// Refresh delegates to the adapter.
func (f *Flow) Refresh(ctx context.Context, tok *Token) (resp TokenResponse) {
	start := time.Now()
	log := logger.ForFlow(ctx, f.Provider(), "Refresh")
	defer func() {
		if r := recover(); r != nil {
			resp = Error[*Token](fmt.Sprintf("oauth: %s adapter panic: %v", f.Provider(), r))
		}
		f.finish(log, "refresh", resp.Status, resp.Message, time.Since(start))
	}()
	if tok == nil {
		return Failure[*Token]("oauth: nil token")
	}
	return f.adapter.Refresh(ctx, tok)
}

// Revoke delegates to the adapter.
func (f *Flow) Revoke(ctx context.Context, tok *Token) (resp RevokeResponse) {
	start := time.Now()
	log := logger.ForFlow(ctx, f.Provider(), "Revoke")
	defer func() {
		if r := recover(); r != nil {
			resp = Error[bool](fmt.Sprintf("oauth: %s adapter panic: %v", f.Provider(), r))
		}
		f.finish(log, "revoke", resp.Status, resp.Message, time.Since(start))
	}()
	if tok == nil {
		return Failure[bool]("oauth: nil token")
	}
	return f.adapter.Revoke(ctx, tok)
}

func (f *Flow) checkState(ctx context.Context, state string) error {
	if _, err := f.cache.Get(ctx, StateKey(state)); err != nil {
		if cache.IsNotFound(err) {
			return ErrStateMismatch
		}
		return fmt.Errorf("oauth: read state: %w", err)
	}
	if f.singleUse {
		if err := f.cache.Delete(ctx, StateKey(state)); err != nil {
			return fmt.Errorf("oauth: consume state: %w", err)
		}
	}
	return nil
}

func (f *Flow) finish(log *zap.Logger, op string, status Status, msg string, d time.Duration) {
	metrics.ObserveFlow(f.Provider(), op, string(status), d)
	fields := []zap.Field{logger.FlowStatus(string(status)), logger.Duration(d)}
	switch status {
	case StatusSuccess:
		log.Info(op+" ok", fields...)
	case StatusFailure, StatusUnauthorized, StatusNotImplemented:
		log.Warn(op+" rejected", append(fields, logger.String("message", msg))...)
	default:
		log.Error(op+" failed", append(fields, logger.String("message", msg))...)
	}
}

func mergeExtras(a, b map[string]string) map[string]string {
	out := make(map[string]string, len(a)+len(b))
	for k, v := range a {
		out[k] = v
	}
	for k, v := range b {
		out[k] = v
	}
	return out
}
