// Package builtin wires every provider shipped with the module into a
// Registry.
package builtin

import (
	"sync"

	"github.com/dropDatabas3/socialauth/internal/oauth"
	"github.com/dropDatabas3/socialauth/internal/oauth/providers/alipay"
	"github.com/dropDatabas3/socialauth/internal/oauth/providers/amazon"
	"github.com/dropDatabas3/socialauth/internal/oauth/providers/baidu"
	"github.com/dropDatabas3/socialauth/internal/oauth/providers/coding"
	"github.com/dropDatabas3/socialauth/internal/oauth/providers/douyin"
	"github.com/dropDatabas3/socialauth/internal/oauth/providers/facebook"
	"github.com/dropDatabas3/socialauth/internal/oauth/providers/gitee"
	"github.com/dropDatabas3/socialauth/internal/oauth/providers/github"
	"github.com/dropDatabas3/socialauth/internal/oauth/providers/gitlab"
	"github.com/dropDatabas3/socialauth/internal/oauth/providers/google"
	"github.com/dropDatabas3/socialauth/internal/oauth/providers/jd"
	"github.com/dropDatabas3/socialauth/internal/oauth/providers/line"
	"github.com/dropDatabas3/socialauth/internal/oauth/providers/meituan"
	"github.com/dropDatabas3/socialauth/internal/oauth/providers/microsoft"
	"github.com/dropDatabas3/socialauth/internal/oauth/providers/oschina"
	"github.com/dropDatabas3/socialauth/internal/oauth/providers/qq"
	"github.com/dropDatabas3/socialauth/internal/oauth/providers/slack"
	"github.com/dropDatabas3/socialauth/internal/oauth/providers/taobao"
	"github.com/dropDatabas3/socialauth/internal/oauth/providers/twitter"
	"github.com/dropDatabas3/socialauth/internal/oauth/providers/wechat"
	"github.com/dropDatabas3/socialauth/internal/oauth/providers/wechatmini"
	"github.com/dropDatabas3/socialauth/internal/oauth/providers/weibo"
	"github.com/dropDatabas3/socialauth/internal/oauth/providers/zxxk"
)

var (
	once sync.Once
	reg  *oauth.Registry
)

// Registry returns the shared registry of built-in providers.
func Registry() *oauth.Registry {
	once.Do(func() { reg = New() })
	return reg
}

// New returns a fresh registry holding every built-in provider.
func New() *oauth.Registry {
	r := oauth.NewRegistry()
	r.Register(github.Source, github.Factory)
	r.Register(gitee.Source, gitee.Factory)
	r.Register(weibo.Source, weibo.Factory)
	r.Register(baidu.Source, baidu.Factory)
	r.Register(douyin.Source, douyin.Factory)
	r.Register(facebook.Source, facebook.Factory)
	r.Register(wechat.Source, wechat.Factory)
	r.Register(wechat.OpenSource, wechat.Factory)
	r.Register(wechatmini.Source, wechatmini.Factory)
	r.Register(qq.Source, qq.Factory)
	r.Register(coding.Source, coding.Factory)
	r.Register(oschina.Source, oschina.Factory)
	r.Register(slack.Source, slack.Factory)
	r.Register(meituan.Source, meituan.Factory)
	r.Register(taobao.Source, taobao.Factory)
	r.Register(twitter.Source, twitter.Factory)
	r.Register(alipay.Source, alipay.Factory)
	r.Register(jd.Source, jd.Factory)
	r.Register(zxxk.Source, zxxk.Factory)
	r.Register(google.Source, google.Factory)
	r.Register(microsoft.Source, microsoft.Factory)
	r.Register(gitlab.Source, gitlab.Factory)
	r.Register(line.Source, line.Factory)
	r.Register(amazon.Source, amazon.Factory)
	return r
}

// Builder starts a builder over the built-in providers.
func Builder() *oauth.Builder { return oauth.NewBuilder(Registry()) }
