package database

import (
	"fmt"
	"net/url"
	"strings"
)

// jdbcParams JDBC / Navicat 导出的参数改写为 go-sql-driver 参数；to 为空表示丢弃
var jdbcParams = []struct {
	from, to string
	conv     func(string) string
}{
	{from: "characterEncoding", to: "charset"},
	{from: "serverTimezone", to: "loc"},
	{from: "useSSL", to: "tls", conv: sslMode},
	{from: "useUnicode"},
	{from: "zeroDateTimeBehavior"},
}

func sslMode(v string) string {
	switch strings.ToLower(v) {
	case "true", "1":
		return "true"
	case "skip-verify", "preferred":
		return strings.ToLower(v)
	}
	return "false"
}

// normalizeMySQLDSN 把 mysql:// 或 jdbc:mysql:// 形式转成 user:pass@tcp(host)/db?...；
// 已是驱动原生格式的 DSN 原样返回
func normalizeMySQLDSN(input, user, pass string) string {
	in := strings.TrimPrefix(strings.TrimSpace(input), "jdbc:")
	if !strings.HasPrefix(in, "mysql://") {
		return strings.TrimSpace(input)
	}
	u, err := url.Parse(in)
	if err != nil {
		return in
	}

	q := u.Query()
	var urlUser, urlPass string
	if u.User != nil {
		urlUser = u.User.Username()
		urlPass, _ = u.User.Password()
	}
	urlUser = firstNonEmpty(user, q.Get("user"), urlUser)
	urlPass = firstNonEmpty(pass, q.Get("password"), urlPass)
	q.Del("user")
	q.Del("password")

	for _, p := range jdbcParams {
		v := q.Get(p.from)
		q.Del(p.from)
		if v == "" || p.to == "" || q.Get(p.to) != "" {
			continue
		}
		if p.conv != nil {
			v = p.conv(v)
		}
		q.Set(p.to, v)
	}
	if q.Get("parseTime") == "" {
		q.Set("parseTime", "true")
	}
	if q.Get("charset") == "" {
		q.Set("charset", "utf8mb4")
	}

	cred := urlUser
	if urlPass != "" {
		cred += ":" + urlPass
	}
	if cred != "" {
		cred += "@"
	}
	dsn := fmt.Sprintf("%stcp(%s)/%s", cred, u.Host, strings.TrimPrefix(u.Path, "/"))
	if enc := q.Encode(); enc != "" {
		dsn += "?" + enc
	}
	return dsn
}

// maskDSN 隐藏 user:pass@ 中的密码，用于日志
func maskDSN(dsn string) string {
	at := strings.LastIndex(dsn, "@")
	if at < 0 {
		return dsn
	}
	start := 0
	if i := strings.Index(dsn, "://"); i >= 0 && i < at {
		start = i + 3
	}
	colon := strings.Index(dsn[start:at], ":")
	if colon < 0 {
		return dsn
	}
	return dsn[:start+colon+1] + "****" + dsn[at:]
}

// withSQLitePragmas 追加 busy_timeout / foreign_keys
func withSQLitePragmas(dsn string) string {
	if strings.Contains(dsn, "_pragma=") {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
}

func firstNonEmpty(vs ...string) string {
	for _, v := range vs {
		if v != "" {
			return v
		}
	}
	return ""
}
