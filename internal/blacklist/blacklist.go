// Package blacklist provides the set of referer domains the proxy refuses to
// serve. The set is loaded once at startup, either from the bundled default
// list or from a SQLite database, and never changes afterwards.
package blacklist

// Default is the bundled list of abusive referer domains. Entries are
// registrable domains only (no scheme, no subdomain). Used when no
// BLACKLIST_DB is configured.
var Default = []string{
	"ume.la",
	"soumeiwang.com",
	"shangjiaban.com",
	"yindunweb.com",
	"hpaper.cn",
	"weibo.com",
	"xingzuo51.com",
	"miaoshou.org",
	"kaptanbay.com",
	"wxsushang.com",
	"appdetay.com",
	"instamini.net",
	"instaview.me",
	"bestwebdesignideas.com",
	"photofeed.co",
	"gramfeed.xyz",
}
