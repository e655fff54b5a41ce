// Package wechatmini implements the WeChat mini-program login. There is no
// browser redirect: the mini-program sends code, encrypted_data and iv
// together, the code is exchanged for a session key and the session key
// decrypts the profile payload.
package wechatmini

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"

	"github.com/dropDatabas3/socialauth/internal/httpclient"
	"github.com/dropDatabas3/socialauth/internal/oauth"
	"github.com/dropDatabas3/socialauth/internal/security/signing"
)

const ProviderName = "wechat_mini"

// sessionTTL is the nominal lifetime of a session key in seconds; WeChat
// does not report one.
const sessionTTL = 7200

var Source = oauth.Source{
	Name:           ProviderName,
	AccessTokenURL: "https://api.weixin.qq.com/sns/jscode2session",
	ScopeDelimiter: ",",
}

var ErrNoAuthorize = errors.New("wechat_mini: no authorize redirect; the client calls wx.login")

type Adapter struct {
	oauth.Base
}

func Factory(cfg oauth.Config, src oauth.Source, deps oauth.Deps) (oauth.Adapter, error) {
	return &Adapter{Base: oauth.NewBase(cfg, src, deps)}, nil
}

func (a *Adapter) AuthorizeParams(context.Context, string, map[string]string) (url.Values, error) {
	return nil, ErrNoAuthorize
}

func (a *Adapter) CheckCallback(cb *oauth.Callback) error {
	if cb.Code == "" || cb.Get("encrypted_data") == "" || cb.Get("iv") == "" {
		return errors.New("wechat_mini: code, encrypted_data and iv required")
	}
	return nil
}

func (a *Adapter) ExchangeCode(ctx context.Context, cb *oauth.Callback) oauth.TokenResponse {
	if cb.Code == "" {
		return oauth.Failure[*oauth.Token]("wechat_mini: code required")
	}
	q := url.Values{}
	q.Set("appid", a.Cfg.ClientID)
	q.Set("secret", a.Cfg.ClientSecret)
	q.Set("js_code", cb.Code)
	q.Set("grant_type", "authorization_code")

	p, err := a.Fetch(ctx, http.MethodGet, a.Src.AccessTokenURL, httpclient.WithQuery(q))
	if p.Has("errcode") && p.Int64("errcode") != 0 {
		return oauth.Failure[*oauth.Token]("wechat_mini: " + p.First("errmsg", "errcode"))
	}
	if err != nil {
		return oauth.FromError[*oauth.Token](err)
	}
	if p.String("session_key") == "" {
		return oauth.Failure[*oauth.Token]("wechat_mini: no session_key in response")
	}
	return oauth.Success(a.NewToken(oauth.Token{
		AccessToken: p.String("session_key"),
		TokenType:   "Bearer",
		ExpiresIn:   sessionTTL,
		OpenID:      p.String("openid"),
		UnionID:     p.String("unionid"),
		Code:        cb.Code,
		Kind:        oauth.KindSession,
	}))
}

// profile is the decrypted wx.getUserInfo payload.
type profile struct {
	NickName  string `json:"nickName"`
	AvatarURL string `json:"avatarUrl"`
	Gender    int    `json:"gender"`
	Country   string `json:"country"`
	Province  string `json:"province"`
	City      string `json:"city"`
	Language  string `json:"language"`
	UnionID   string `json:"unionId"`
	Watermark struct {
		AppID     string `json:"appid"`
		Timestamp int64  `json:"timestamp"`
	} `json:"watermark"`
}

// UserInfo decrypts extra["encrypted_data"] with the session key and extra["iv"].
func (a *Adapter) UserInfo(_ context.Context, tok *oauth.Token, extra map[string]string) oauth.UserResponse {
	data, iv := extra["encrypted_data"], extra["iv"]
	if data == "" || iv == "" {
		return oauth.Failure[*oauth.User]("wechat_mini: encrypted_data and iv required")
	}
	if tok.AccessToken == "" {
		return oauth.Failure[*oauth.User]("wechat_mini: session_key missing")
	}

	plain, err := signing.DecryptCBCBase64(tok.AccessToken, iv, data)
	if err != nil {
		return oauth.Failure[*oauth.User]("wechat_mini: decrypt user info: " + err.Error())
	}
	var p profile
	if err := json.Unmarshal(plain, &p); err != nil {
		return oauth.Failure[*oauth.User]("wechat_mini: decode user info: " + err.Error())
	}
	if p.Watermark.AppID != a.Cfg.ClientID {
		return oauth.Failure[*oauth.User]("wechat_mini: watermark appid mismatch")
	}
	var raw map[string]any
	_ = json.Unmarshal(plain, &raw)
	if tok.UnionID == "" && p.UnionID != "" {
		tok = tok.Clone()
		tok.UnionID = p.UnionID
	}

	return oauth.Success(&oauth.User{
		UUID:     a.QualifiedID(tok.OpenID),
		Username: p.NickName,
		Nickname: p.NickName,
		Avatar:   p.AvatarURL,
		Location: oauth.JoinNonEmpty(" ", p.Country, p.Province, p.City),
		Gender:   oauth.ParseGender(p.Gender),
		Source:   ProviderName,
		Token:    tok,
		Raw:      raw,
	})
}
