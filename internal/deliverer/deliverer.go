package deliverer

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

// DefaultRequestHeaders are sent with every outbound request.
var DefaultRequestHeaders = map[string]string{
	"User-Agent": "automation-worker/1.0",
}

// DefaultContentType is set on requests that carry a body, unless Headers overrides it.
const DefaultContentType = "application/json; charset=utf-8"

type Deliverer interface {
	Deliver(ctx context.Context, req *Request) *Response
}

// Request is HTTP request
type Request struct {
	URL     string
	Method  string
	Payload []byte
	Headers map[string]string
	Timeout time.Duration
}

// Response is HTTP response
type Response struct {
	StatusCode   int
	Header       http.Header
	ResponseBody []byte
	Latency      time.Duration
	Error        error
	Request      *Request
}

func (r *Response) Is2xx() bool {
	return r.StatusCode >= 200 && r.StatusCode <= 299
}

func (r *Response) String() string {
	return fmt.Sprintf("%s %s %d", r.Request.Method, r.Request.URL, r.StatusCode)
}

// HTTPDeliverer delivers via HTTP
type HTTPDeliverer struct {
	defaultTimeout time.Duration
	client         *resty.Client
}

func NewHTTPDeliverer(defaultTimeout time.Duration) *HTTPDeliverer {
	client := resty.New().
		SetHeaders(DefaultRequestHeaders)
	return &HTTPDeliverer{
		defaultTimeout: defaultTimeout,
		client:         client,
	}
}

// Deliver sends the request. Transport failures are reported in Response.Error;
// any HTTP status, including 4xx and 5xx, is a delivered response.
func (d *HTTPDeliverer) Deliver(ctx context.Context, req *Request) (res *Response) {
	timeout := req.Timeout
	if timeout == 0 {
		timeout = d.defaultTimeout
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	res = &Response{
		Request: req,
	}

	method := req.Method
	if method == "" {
		method = http.MethodPost
	}

	request := d.client.R().
		SetContext(ctx)
	if method != http.MethodGet && req.Payload != nil {
		request.SetHeader("Content-Type", DefaultContentType)
		request.SetBody(req.Payload)
	}
	request.SetHeaders(req.Headers)

	start := time.Now()
	response, err := request.Execute(method, req.URL)
	res.Latency = time.Since(start)
	if err != nil {
		res.Error = err
		return
	}

	res.StatusCode = response.StatusCode()
	res.Header = response.Header()
	res.ResponseBody = response.Body()

	return
}
