package httpclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"os"
	"strings"
	"syscall"
	"time"

	"github.com/Noooste/azuretls-client"
	fhttp "github.com/Noooste/fhttp"
	log "github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/sagan/erolauncher/constants"
	"github.com/sagan/erolauncher/util"
	"github.com/sagan/erolauncher/util/stringutil"
)

const DEFAULT_TIMEOUT = time.Second * 30
const DEFAULT_MAX_ATTEMPTS = 3                 // max total tries of a request, including the first one
const DEFAULT_RETRY_DELAY = time.Second * 2    // fixed sleep between tries
const DOWNLOAD_TIMEOUT = time.Second * 60      // timeout of (large) file downloads

// 1 request per 2 seconds, burst 3
var defaultRateLimiter = rate.NewLimiter(rate.Every(time.Second*2), 3)

type Options struct {
	Proxy       string // proxy url. Empty: try HTTPS_PROXY env. "none": disable
	UserAgent   string
	Timeout     time.Duration // timeout of a single try. Default: DEFAULT_TIMEOUT
	MaxAttempts int           // Default: DEFAULT_MAX_ATTEMPTS
	RetryDelay  time.Duration // Default: DEFAULT_RETRY_DELAY
	Limiter     *rate.Limiter // Default: defaultRateLimiter
	Cookies     []*fhttp.Cookie
}

// Dispatcher sends http(s) requests, optionally through a proxy, retrying
// transient network errors with a bounded fixed-delay loop.
// Requests to local (private) addresses bypass both the proxy and the rate limiter.
type Dispatcher struct {
	client      *azuretls.Session // goes through proxy (if set)
	localClient *azuretls.Session // no proxy
	limiter     *rate.Limiter
	timeout     time.Duration
	maxAttempts int
	retryDelay  time.Duration
	userAgent   string
}

// StatusError is a non-2xx http response. The response was successfully
// transported, so requests failing with it are never retried.
type StatusError struct {
	Url        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("failed to fetch %q: status=%d", e.Url, e.StatusCode)
}

// Whether err is (or wraps) a non-2xx response error of statusCode.
func IsStatus(err error, statusCode int) bool {
	var statusErr *StatusError
	return errors.As(err, &statusErr) && statusErr.StatusCode == statusCode
}

func IsLocalUrl(urlObj *url.URL) bool {
	return constants.PrivateIpRegexp.MatchString(urlObj.Hostname()) || urlObj.Hostname() == "localhost"
}

var transientErrFragments = []string{
	"connection reset",
	"connection refused",
	"timeout",
	"timed out",
	"no route to host",
	"host is unreachable",
	"network is unreachable",
	"use of closed network connection",
	// Windows wsarecv
	"connected party did not properly respond after a period of time",
}

// Whether err is a transient network error that a retry may solve: connection
// reset / refused, timeout, host unreachable, or abrupt socket close.
// DNS resolution failures and http status errors are NOT transient.
func IsTransientErr(err error) bool {
	if err == nil {
		return false
	}
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return false
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return false
	}
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.Is(err, syscall.ECONNRESET) || errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.EHOSTUNREACH) || errors.Is(err, syscall.ENETUNREACH) ||
		errors.Is(err, syscall.ETIMEDOUT) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	// azuretls may return plain (unwrapped) errors, match the message as the last resort
	for _, fragment := range transientErrFragments {
		if stringutil.ContainsI(err.Error(), fragment) {
			return true
		}
	}
	return false
}

func NewDispatcher(options *Options) (*Dispatcher, error) {
	if options == nil {
		options = &Options{}
	}
	d := &Dispatcher{
		client:      azuretls.NewSession(),
		localClient: azuretls.NewSession(),
		limiter:     options.Limiter,
		timeout:     options.Timeout,
		maxAttempts: options.MaxAttempts,
		retryDelay:  options.RetryDelay,
		userAgent:   options.UserAgent,
	}
	d.client.InsecureSkipVerify = true
	d.localClient.InsecureSkipVerify = true
	if d.limiter == nil {
		d.limiter = defaultRateLimiter
	}
	if d.timeout <= 0 {
		d.timeout = DEFAULT_TIMEOUT
	}
	if d.maxAttempts <= 0 {
		d.maxAttempts = DEFAULT_MAX_ATTEMPTS
	}
	if d.retryDelay <= 0 {
		d.retryDelay = DEFAULT_RETRY_DELAY
	}
	if proxy := util.FirstNonZeroArg(options.Proxy, os.Getenv("HTTPS_PROXY"),
		os.Getenv("https_proxy")); proxy != "" && proxy != constants.NONE {
		if err := d.client.SetProxy(proxy); err != nil {
			return nil, fmt.Errorf("failed to set proxy to %q: %w", proxy, err)
		}
		log.Warnf("Set proxy to %q (does not apply to local addresses)", proxy)
	}
	d.SetCookies(options.Cookies)
	d.client.PreHookWithContext = func(ctx *azuretls.Context) error {
		if ctx.Request != nil {
			if urlObj, err := url.Parse(ctx.Request.Url); err == nil && !IsLocalUrl(urlObj) {
				d.limiter.Wait(context.TODO())
			}
		}
		return nil
	}
	return d, nil
}

// Set (additional) cookies of the session cookie jar.
func (d *Dispatcher) SetCookies(cookies []*fhttp.Cookie) {
	for _, cookie := range cookies {
		urlStr := "https://" + strings.TrimPrefix(cookie.Domain, ".") + "/"
		if urlObj, err := url.Parse(urlStr); err == nil {
			d.client.CookieJar.SetCookies(urlObj, []*fhttp.Cookie{cookie})
		}
	}
}

func (d *Dispatcher) Close() {
	d.client.Close()
	d.localClient.Close()
}

// Do sends req, retrying transient network errors (see IsTransientErr) up to
// MaxAttempts total tries with a fixed RetryDelay sleep in between.
// Responses with a non-2xx status are returned as is (check StatusCode yourself).
func (d *Dispatcher) Do(ctx context.Context, req *azuretls.Request) (res *azuretls.Response, err error) {
	client := d.client
	if urlObj, err := url.Parse(req.Url); err == nil && IsLocalUrl(urlObj) {
		client = d.localClient
	}
	if req.TimeOut == 0 {
		req.TimeOut = d.timeout
	}
	if d.userAgent != "" {
		req.OrderedHeaders.Set("User-Agent", d.userAgent)
	}
	for i := 1; ; i++ {
		util.LogAzureHttpRequest(req)
		res, err = client.Do(req)
		util.LogAzureHttpResponse(res, err)
		if err == nil {
			return res, nil
		}
		// workaround for a azuretls bug that request to a host always returns EOF
		// after sending some requests. Evict the host from the connection pool.
		if errors.Is(err, io.EOF) || stringutil.ContainsI(err.Error(), "use of closed network connection") ||
			stringutil.ContainsI(err.Error(), "connected party did not properly respond after a period of time") {
			d.CloseHost(req.Url)
		}
		if i >= d.maxAttempts || !IsTransientErr(err) {
			return res, err
		}
		log.Debugf("fetch %s try %d/%d failed (will retry): %v", req.Url, i, d.maxAttempts, err)
		select {
		case <-ctx.Done():
			return res, ctx.Err()
		case <-time.After(d.retryDelay):
		}
	}
}

func (d *Dispatcher) FetchUrl(ctx context.Context, url string, header http.Header) (*azuretls.Response, error) {
	req := &azuretls.Request{
		Method: http.MethodGet,
		Url:    url,
	}
	for name := range header {
		req.OrderedHeaders.Set(name, header.Get(name))
	}
	res, err := d.Do(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch url: %w", err)
	}
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return res, &StatusError{Url: url, StatusCode: res.StatusCode}
	}
	return res, nil
}

func (d *Dispatcher) FetchJson(ctx context.Context, url string, v any) error {
	res, err := d.FetchUrl(ctx, url, nil)
	if err != nil {
		return err
	}
	if v != nil {
		err = json.Unmarshal(res.Body, v)
	}
	return err
}

// Evict urlStr host from the connection pools.
func (d *Dispatcher) CloseHost(urlStr string) {
	urlObj, err := url.Parse(urlStr)
	if err != nil {
		return
	}
	log.Debugf("remove %s from connection pool", urlStr)
	d.client.Connections.Remove(urlObj)
	d.localClient.Connections.Remove(urlObj)
}
