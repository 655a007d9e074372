package httpserver

import (
	"encoding/json"
	"net"
	"net/http"
	"net/http/httputil"
	"net/url"
	"strings"
	"time"

	echo "github.com/labstack/echo/v4"

	"github.com/Skotchmaster/sport_shop/gateway/internal/middleware"
	"github.com/Skotchmaster/sport_shop/pkg/httpx"
	"github.com/Skotchmaster/sport_shop/pkg/logging"
	authmw "github.com/Skotchmaster/sport_shop/pkg/middleware/auth"
)

const apiPrefix = "/api/v1"

// newProxy forwards to target with the /api/v1 prefix removed and the verified
// identity, if any, in the X-User-* headers.
func newProxy(name, target string) (echo.HandlerFunc, error) {
	u, err := url.Parse(target)
	if err != nil {
		return nil, err
	}

	baseTransport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   5 * time.Second,
			KeepAlive: 60 * time.Second,
		}).DialContext,
		MaxIdleConns:          200,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}

	p := httputil.NewSingleHostReverseProxy(u)
	p.Transport = baseTransport

	origDirector := p.Director
	p.Director = func(req *http.Request) {
		originalHost := req.Host
		originalProto := "http"
		if req.TLS != nil {
			originalProto = "https"
		} else if xf := req.Header.Get("X-Forwarded-Proto"); xf != "" {
			originalProto = xf
		}

		origDirector(req)

		req.URL.Path = strings.TrimPrefix(req.URL.Path, apiPrefix)
		if rp := req.URL.RawPath; rp != "" {
			req.URL.RawPath = strings.TrimPrefix(rp, apiPrefix)
		}

		if req.Header.Get("X-Forwarded-Proto") == "" {
			req.Header.Set("X-Forwarded-Proto", originalProto)
		}
		if req.Header.Get("X-Forwarded-Host") == "" && originalHost != "" {
			req.Header.Set("X-Forwarded-Host", originalHost)
		}
	}

	p.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
		logging.FromContext(r.Context()).Error("proxy_error", "upstream", name, "error", err)
		w.Header().Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		w.WriteHeader(http.StatusBadGateway)
		_ = json.NewEncoder(w).Encode(httpx.Envelope{Success: false, Message: "Service unavailable"})
	}

	p.FlushInterval = 100 * time.Millisecond

	return func(c echo.Context) error {
		h := c.Request().Header
		h.Del(authmw.HeaderUserID)
		h.Del(authmw.HeaderUserRole)
		if uid, ok := c.Get(middleware.CtxUserID).(string); ok && uid != "" {
			h.Set(authmw.HeaderUserID, uid)
			role, _ := c.Get(middleware.CtxRole).(string)
			h.Set(authmw.HeaderUserRole, role)
		}

		p.ServeHTTP(c.Response(), c.Request())
		return nil
	}, nil
}
