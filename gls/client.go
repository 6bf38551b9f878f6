/*
Package gls is a client for the MyGLS parcel service JSON API
(https://api.mygls.hu/ and the other country hosts).
*/
package gls

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-kit/kit/endpoint"
	log "github.com/go-kit/kit/log"
	httptransport "github.com/go-kit/kit/transport/http"
	"github.com/spf13/cast"
)

// Service describes the MyGLS parcel service.
type Service interface {
	PrintLabels(ctx context.Context, req PrintLabelsRequest) (*Response, error)
	DeleteLabels(ctx context.Context, req DeleteLabelsRequest) (*Response, error)
	GetParcelStatuses(ctx context.Context, req GetParcelStatusesRequest) (*Response, error)
}

// Client implements Service. It holds immutable state only and is safe for
// concurrent use. Each call is one POST, nothing is retried.
type Client struct {
	cfg       Config
	baseURL   string
	password  passwordHash
	endpoints Endpoints
	logger    log.Logger
}

type clientOptions struct {
	baseURL    string
	httpClient httptransport.HTTPClient
	options    map[string][]httptransport.ClientOption
	mdw        map[string][]endpoint.Middleware
}

// Option configures NewClient
type Option func(*clientOptions)

// WithBaseURL overrides the base URL resolved from country and environment.
// It must end with "/".
func WithBaseURL(u string) Option {
	return func(o *clientOptions) { o.baseURL = u }
}

// WithHTTPClient replaces the http client built from Config.
func WithHTTPClient(c httptransport.HTTPClient) Option {
	return func(o *clientOptions) { o.httpClient = c }
}

// WithClientOptions adds go-kit client options to the operation endpoint.
func WithClientOptions(op string, opts ...httptransport.ClientOption) Option {
	return func(o *clientOptions) { o.options[op] = append(o.options[op], opts...) }
}

// WithMiddleware wraps the operation endpoint, first one innermost.
func WithMiddleware(op string, mw ...endpoint.Middleware) Option {
	return func(o *clientOptions) { o.mdw[op] = append(o.mdw[op], mw...) }
}

// NewClient validates cfg and creates Client. logger may be nil.
func NewClient(cfg Config, logger log.Logger, opts ...Option) (*Client, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.NewNopLogger()
	}
	baseURL, err := BaseURL(cfg.Country, cfg.TestClient)
	if err != nil {
		return nil, err
	}

	o := &clientOptions{
		baseURL: baseURL,
		options: map[string][]httptransport.ClientOption{},
		mdw:     map[string][]endpoint.Middleware{},
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.httpClient == nil {
		c, err := newHTTPClient(cfg)
		if err != nil {
			return nil, err
		}
		o.httpClient = c
	}

	options := map[string][]httptransport.ClientOption{}
	mdw := map[string][]endpoint.Middleware{}
	for _, op := range []string{OpPrintLabels, OpDeleteLabels, OpGetParcelStatuses} {
		options[op] = append([]httptransport.ClientOption{httptransport.SetClient(o.httpClient)}, o.options[op]...)
		mdw[op] = append(o.mdw[op], LoggingMiddleware(log.With(logger, "method", op)))
	}
	eps, err := newEndpoints(o.baseURL, options, mdw)
	if err != nil {
		return nil, err
	}

	return &Client{
		cfg:       cfg,
		baseURL:   o.baseURL,
		password:  hashOf(cfg.Password),
		endpoints: eps,
		logger:    logger,
	}, nil
}

// BaseURL returns the API base URL the client posts to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// BuildRequest returns the JSON body sent for req.
func (c *Client) BuildRequest(req Request) ([]byte, error) {
	if req == nil {
		return nil, fmt.Errorf("nil request")
	}
	body, err := json.Marshal(req.payload(c.cfg.Username, c.password))
	if err != nil {
		return nil, fmt.Errorf("error while encoding %s request: %w", req.Operation(), err)
	}
	return body, nil
}

// Do builds and sends req.
func (c *Client) Do(ctx context.Context, req Request) (*Response, error) {
	body, err := c.BuildRequest(req)
	if err != nil {
		return nil, err
	}
	e := c.endpoints.byOperation(req.Operation())
	if e == nil {
		return nil, fmt.Errorf("unsupported operation %s", req.Operation())
	}
	response, err := e(ctx, Envelope{Operation: req.Operation(), Reference: req.reference(), Body: body})
	if err != nil {
		return nil, err
	}
	return response.(*Response), nil
}

// PrintLabels implements Service
func (c *Client) PrintLabels(ctx context.Context, req PrintLabelsRequest) (*Response, error) {
	return c.Do(ctx, req)
}

// DeleteLabels implements Service
func (c *Client) DeleteLabels(ctx context.Context, req DeleteLabelsRequest) (*Response, error) {
	return c.Do(ctx, req)
}

// GetParcelStatuses implements Service
func (c *Client) GetParcelStatuses(ctx context.Context, req GetParcelStatusesRequest) (*Response, error) {
	return c.Do(ctx, req)
}

// CreateServiceObject returns a parcel service with parameters nested under
// parameterName.
func CreateServiceObject(code, parameterName string, parameters map[string]interface{}) ServiceItem {
	return ServiceItem{
		Code:          code,
		ParameterName: parameterName,
		Parameters:    parameters,
	}
}

// ParcelArgs are the caller fields of a parcel. CODAmount and Count may be
// any number or numeric string.
type ParcelArgs struct {
	ClientReference string
	CODAmount       interface{}
	CODReference    string
	Content         string
	Count           interface{}
	DeliveryAddress Address
	PickupAddress   Address
	ServiceList     []ServiceItem
}

// CreateParcelObject returns a Parcel of the client's own client number.
// PickupDate is left empty.
func (c *Client) CreateParcelObject(args ParcelArgs) Parcel {
	return Parcel{
		ClientNumber:    c.cfg.ClientNumber,
		ClientReference: args.ClientReference,
		CODAmount:       toInt(args.CODAmount),
		CODReference:    args.CODReference,
		Content:         args.Content,
		Count:           toInt(args.Count),
		DeliveryAddress: args.DeliveryAddress,
		PickupAddress:   args.PickupAddress,
		PickupDate:      nil,
		ServiceList:     args.ServiceList,
	}
}

// toInt truncates numbers and numeric strings, anything else is 0.
func toInt(v interface{}) int {
	return int(cast.ToFloat64(v))
}

var _ Service = (*Client)(nil)
