package analysis

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"strings"

	"github.com/clipscreen/clipscreen/internal/database"
	"github.com/clipscreen/clipscreen/internal/geoip"
	"github.com/mssola/useragent"
)

// Auditor records who ran analyses and from where, feeding the usage
// breakdowns. Rows are best-effort: a failed insert is logged, never
// surfaced to the caller.
type Auditor struct {
	db  database.DBTX
	geo *geoip.Resolver
}

func NewAuditor(db database.DBTX, geo *geoip.Resolver) *Auditor {
	return &Auditor{db: db, geo: geo}
}

// Record writes one audit row for an analysis request.
func (a *Auditor) Record(r *http.Request, userID, source string) {
	browser, os := parseClient(r.UserAgent())

	var country, city string
	if a.geo != nil {
		country, city = a.geo.Lookup(clientIP(r))
	}

	if _, err := a.db.Exec(context.WithoutCancel(r.Context()),
		`INSERT INTO analysis_requests (user_id, source, country, city, browser, os)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		userID, source, country, city, browser, os,
	); err != nil {
		slog.Error("failed to record analysis request", "error", err, "userID", userID)
	}
}

func parseClient(uaString string) (browser, os string) {
	if uaString == "" {
		return "", ""
	}
	ua := useragent.New(uaString)
	browser, _ = ua.Browser()
	return browser, ua.OS()
}

func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		if first, _, ok := strings.Cut(forwarded, ","); ok {
			return strings.TrimSpace(first)
		}
		return strings.TrimSpace(forwarded)
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
