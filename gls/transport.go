package gls

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io/ioutil"
	http1 "net/http"
	"net/url"
	"strconv"

	"github.com/go-kit/kit/endpoint"
	"github.com/go-kit/kit/transport/http"
	"golang.org/x/net/http2"
)

const serviceName = "ParcelService"

// Envelope is the request passed through the client endpoints: an encoded
// payload plus what is needed to log it. It never holds the plain password.
type Envelope struct {
	Operation string
	// Reference identifies the parcels: client references, parcel ids or
	// the parcel number.
	Reference string
	Body      []byte
}

//String implementing Stringer interface, used by logging middleware
func (e Envelope) String() string {
	return fmt.Sprintf("%s ref=%q body=%dB", e.Operation, e.Reference, len(e.Body))
}

// Endpoints collects the client endpoints, one per operation.
type Endpoints struct {
	PrintLabelsEndpoint       endpoint.Endpoint
	DeleteLabelsEndpoint      endpoint.Endpoint
	GetParcelStatusesEndpoint endpoint.Endpoint
}

func (e Endpoints) byOperation(op string) endpoint.Endpoint {
	switch op {
	case OpPrintLabels:
		return e.PrintLabelsEndpoint
	case OpDeleteLabels:
		return e.DeleteLabelsEndpoint
	case OpGetParcelStatuses:
		return e.GetParcelStatusesEndpoint
	}
	return nil
}

// newEndpoints returns endpoints posting to baseURL. The transport errors
// middleware is innermost, so user middleware sees typed errors.
func newEndpoints(baseURL string, options map[string][]http.ClientOption, mdw map[string][]endpoint.Middleware) (Endpoints, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return Endpoints{}, fmt.Errorf("invalid base URL: %w", err)
	}
	mk := func(op string) endpoint.Endpoint {
		e := http.NewClient("POST", operationURL(u, op), encodeRequest, decodeResponse(op), options[op]...).Endpoint()
		e = transportErrors(op)(e)
		for _, m := range mdw[op] {
			e = m(e)
		}
		return e
	}
	return Endpoints{
		PrintLabelsEndpoint:       mk(OpPrintLabels),
		DeleteLabelsEndpoint:      mk(OpDeleteLabels),
		GetParcelStatusesEndpoint: mk(OpGetParcelStatuses),
	}, nil
}

// operationURL returns base + "ParcelService.svc/json/" + op
func operationURL(base *url.URL, op string) *url.URL {
	n := *base
	n.Path = base.Path + serviceName + ".svc/json/" + op
	return &n
}

func encodeRequest(_ context.Context, r *http1.Request, request interface{}) error {
	req, ok := request.(Envelope)
	if !ok {
		return fmt.Errorf("unexpected request type %T", request)
	}
	r.Header.Set("Content-Type", "application/json")
	r.Header.Set("Content-Length", strconv.Itoa(len(req.Body)))
	r.ContentLength = int64(len(req.Body))
	r.Body = ioutil.NopCloser(bytes.NewReader(req.Body))
	return nil
}

func decodeResponse(op string) http.DecodeResponseFunc {
	return func(_ context.Context, r *http1.Response) (interface{}, error) {
		//only first digit is checked, error bodies are not read
		if r.StatusCode/100 != 2 {
			return nil, &HTTPError{Operation: op, StatusCode: r.StatusCode}
		}
		data, err := ioutil.ReadAll(r.Body)
		if err != nil {
			return nil, &TransportError{Operation: op, Err: err}
		}
		resp := &Response{Raw: json.RawMessage(data)}
		if err := json.Unmarshal(data, &resp.Value); err != nil {
			return nil, &ResponseParseError{Operation: op, Err: err}
		}
		return resp, nil
	}
}

// transportErrors turns untyped endpoint errors (the http.Client ones) into
// TransportError.
func transportErrors(op string) endpoint.Middleware {
	return func(next endpoint.Endpoint) endpoint.Endpoint {
		return func(ctx context.Context, request interface{}) (interface{}, error) {
			response, err := next(ctx, request)
			if err == nil {
				return response, nil
			}
			var (
				he *HTTPError
				pe *ResponseParseError
				te *TransportError
			)
			if errors.As(err, &he) || errors.As(err, &pe) || errors.As(err, &te) {
				return nil, err
			}
			return nil, &TransportError{Operation: op, Err: err}
		}
	}
}

// newHTTPClient returns a client that opens a new connection per call.
func newHTTPClient(cfg Config) (*http1.Client, error) {
	tr := &http1.Transport{
		Proxy:             http1.ProxyFromEnvironment,
		DisableKeepAlives: true,
		TLSClientConfig: &tls.Config{
			InsecureSkipVerify: cfg.InsecureSkipVerify,
		},
	}
	if err := http2.ConfigureTransport(tr); err != nil {
		return nil, err
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &http1.Client{
		Transport: tr,
		Timeout:   timeout,
	}, nil
}
