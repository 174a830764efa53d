package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httputil"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/diwise/exhibit-profiles/pkg/exhibit"
	exhibiterrors "github.com/diwise/exhibit-profiles/pkg/exhibit/errors"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/logging"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/tracing"
	"github.com/sony/gobreaker"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

//go:generate moq -rm -out ../test/exhibitserverclient_mock.go . ExhibitServerClient

type ExhibitServerClient interface {
	RetrieveExhibit(ctx context.Context, id exhibit.ID) (*exhibit.Exhibit, error)
	Compute(ctx context.Context, id exhibit.ID, code string) (*exhibit.QueryResult, error)
	RetrieveCalculation(ctx context.Context, calculationID int) (string, error)
	SaveCalculation(ctx context.Context, code string) error
}

// Option configures an exhibit server client
type Option func(*esClient)

func Debug(enabled string) Option {
	return func(c *esClient) {
		c.debug = (enabled == "true")
	}
}

// APIVersion selects the exhibit endpoint flavour. Version 1 servers look up
// exhibits by a bare id query parameter, version 2 servers by entity type and
// id in the path.
func APIVersion(version int) Option {
	return func(c *esClient) {
		c.apiVersion = version
	}
}

// WithCircuitBreaker makes the client fail fast with ErrUnavailable after
// maxFailures consecutive transport or server failures. The circuit is half
// opened again after timeout.
func WithCircuitBreaker(maxFailures uint32, timeout time.Duration) Option {
	return func(c *esClient) {
		c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        "exhibit-server",
			MaxRequests: 1,
			Timeout:     timeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= maxFailures
			},
		})
	}
}

func NewExhibitServerClient(server string, options ...Option) ExhibitServerClient {
	c := &esClient{
		baseURL:    strings.TrimSuffix(server, "/"),
		apiVersion: 2,
		debug:      false,
		httpClient: http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}

	for _, option := range options {
		option(c)
	}

	return c
}

const (
	TraceAttributeEntityType    string = "exhibit-entity-type"
	TraceAttributeExhibitID     string = "exhibit-id"
	TraceAttributeCalculationID string = "calculation-id"
)

var tracer = otel.Tracer("exhibit-server-client")

type esClient struct {
	baseURL    string
	apiVersion int
	debug      bool
	breaker    *gobreaker.CircuitBreaker
	httpClient http.Client
}

func (c *esClient) RetrieveExhibit(ctx context.Context, id exhibit.ID) (*exhibit.Exhibit, error) {
	var err error

	ctx, span := tracer.Start(ctx, "retrieve-exhibit",
		trace.WithAttributes(attribute.String(TraceAttributeEntityType, id.EntityType)),
		trace.WithAttributes(attribute.String(TraceAttributeExhibitID, id.ID)),
	)
	defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

	endpoint := c.baseURL + "/api/exhibit/" + url.PathEscape(id.EntityType) + "/" + url.PathEscape(id.ID)
	if c.apiVersion == 1 {
		endpoint = c.baseURL + "/api/exhibit?id=" + url.QueryEscape(id.ID)
	}

	response, responseBody, err := c.callExhibitServer(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	if response.StatusCode != http.StatusOK {
		err = errorFromResponse(response, responseBody)
		return nil, err
	}

	// a v1 server answers a lookup of an unknown id with an empty body
	if len(bytes.TrimSpace(responseBody)) == 0 || string(bytes.TrimSpace(responseBody)) == "null" {
		err = exhibiterrors.NewNotFoundError(fmt.Sprintf("exhibit %s not found", id))
		return nil, err
	}

	e, err := decodeExhibit(responseBody)
	if err != nil {
		err = c.unmarshalError(responseBody, err)
		return nil, err
	}

	return e, nil
}

// decodeExhibit accepts both the bare exhibit document and the v2 envelope
// that carries the exhibit together with its id and computed metrics.
func decodeExhibit(body []byte) (*exhibit.Exhibit, error) {
	envelope := struct {
		ID      *exhibit.ID               `json:"id"`
		Exhibit *exhibit.Exhibit          `json:"exhibit"`
		Metrics map[string]exhibit.Metric `json:"metrics"`
	}{}

	err := json.Unmarshal(body, &envelope)
	if err == nil && envelope.Exhibit != nil {
		e := envelope.Exhibit
		if len(envelope.Metrics) > 0 {
			e.Metrics = envelope.Metrics
		}
		return e, nil
	}

	e := &exhibit.Exhibit{}
	err = json.Unmarshal(body, e)
	if err != nil {
		return nil, err
	}

	return e, nil
}

func (c *esClient) Compute(ctx context.Context, id exhibit.ID, code string) (*exhibit.QueryResult, error) {
	var err error

	ctx, span := tracer.Start(ctx, "compute",
		trace.WithAttributes(attribute.String(TraceAttributeEntityType, id.EntityType)),
		trace.WithAttributes(attribute.String(TraceAttributeExhibitID, id.ID)),
	)
	defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

	request := struct {
		ID   any    `json:"id"`
		Code string `json:"code"`
	}{
		ID:   id,
		Code: code,
	}

	if c.apiVersion == 1 {
		request.ID = id.ID
	}

	b, err := json.Marshal(request)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal compute request: %s (%w)", err.Error(), exhibiterrors.ErrInternal)
	}

	response, responseBody, err := c.callExhibitServer(ctx, http.MethodPost, c.baseURL+"/api/compute", bytes.NewBuffer(b))
	if err != nil {
		return nil, err
	}

	if response.StatusCode != http.StatusOK {
		err = errorFromResponse(response, responseBody)
		return nil, err
	}

	result := &exhibit.QueryResult{}
	err = json.Unmarshal(responseBody, result)
	if err != nil {
		err = c.unmarshalError(responseBody, err)
		return nil, err
	}

	return result, nil
}

func (c *esClient) RetrieveCalculation(ctx context.Context, calculationID int) (string, error) {
	var err error

	ctx, span := tracer.Start(ctx, "retrieve-calculation",
		trace.WithAttributes(attribute.Int(TraceAttributeCalculationID, calculationID)),
	)
	defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

	response, responseBody, err := c.callExhibitServer(
		ctx, http.MethodGet, c.baseURL+"/api/calculation?id="+strconv.Itoa(calculationID), nil,
	)
	if err != nil {
		return "", err
	}

	if response.StatusCode != http.StatusOK {
		err = errorFromResponse(response, responseBody)
		return "", err
	}

	calculation := struct {
		Code string `json:"code"`
	}{}

	err = json.Unmarshal(responseBody, &calculation)
	if err != nil {
		err = c.unmarshalError(responseBody, err)
		return "", err
	}

	return calculation.Code, nil
}

func (c *esClient) SaveCalculation(ctx context.Context, code string) error {
	var err error

	ctx, span := tracer.Start(ctx, "save-calculation")
	defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

	b, err := json.Marshal(struct {
		Code string `json:"code"`
	}{Code: code})
	if err != nil {
		return fmt.Errorf("failed to marshal calculation: %s (%w)", err.Error(), exhibiterrors.ErrInternal)
	}

	response, responseBody, err := c.callExhibitServer(ctx, http.MethodPost, c.baseURL+"/api/calculation", bytes.NewBuffer(b))
	if err != nil {
		return err
	}

	if response.StatusCode < http.StatusOK || response.StatusCode >= http.StatusMultipleChoices {
		err = errorFromResponse(response, responseBody)
		return err
	}

	return nil
}

var errServerFailure = errors.New("server failure")

func (c *esClient) callExhibitServer(ctx context.Context, method, endpoint string, body io.Reader) (*http.Response, []byte, error) {
	if c.breaker == nil {
		return c.do(ctx, method, endpoint, body)
	}

	type result struct {
		resp *http.Response
		body []byte
	}

	var res result

	_, err := c.breaker.Execute(func() (interface{}, error) {
		resp, respBody, err := c.do(ctx, method, endpoint, body)
		if err != nil {
			return nil, err
		}

		res = result{resp: resp, body: respBody}

		if resp.StatusCode >= http.StatusInternalServerError {
			return nil, errServerFailure
		}

		return nil, nil
	})

	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, nil, fmt.Errorf("exhibit server circuit is open: %s (%w)", err.Error(), exhibiterrors.ErrUnavailable)
	}

	if err != nil && !errors.Is(err, errServerFailure) {
		return nil, nil, err
	}

	return res.resp, res.body, nil
}

func (c *esClient) do(ctx context.Context, method, endpoint string, body io.Reader) (*http.Response, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create request: %s (%w)", err.Error(), exhibiterrors.ErrInternal)
	}

	req.Header.Add("Accept", "application/json")
	if body != nil {
		req.Header.Add("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to send request: %s (%w)", err.Error(), exhibiterrors.ErrRequest)
	}

	defer resp.Body.Close()
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read response body: %s (%w)", err.Error(), exhibiterrors.ErrBadResponse)
	}

	if c.debug && resp.StatusCode >= http.StatusBadRequest {
		reqbytes, _ := httputil.DumpRequest(req, false)
		respbytes, _ := httputil.DumpResponse(resp, false)

		log := logging.GetFromContext(ctx)
		log.Error("request failed", "request", string(reqbytes), "response", string(respbytes))
	}

	return resp, respBody, nil
}

func (c *esClient) unmarshalError(body []byte, err error) error {
	if c.debug && len(body) < 1000 {
		return fmt.Errorf("unmarshaling of %s failed with err %s (%w)", string(body), err.Error(), exhibiterrors.ErrBadResponse)
	}

	return fmt.Errorf("failed to unmarshal response: %s (%w)", err.Error(), exhibiterrors.ErrBadResponse)
}

func errorFromResponse(response *http.Response, body []byte) error {
	contentType := response.Header.Get("Content-Type")
	if response.StatusCode >= http.StatusBadRequest {
		return exhibiterrors.NewErrorFromProblemReport(response.StatusCode, contentType, body)
	}

	return fmt.Errorf("unexpected response code %d (%w)", response.StatusCode, exhibiterrors.ErrInternal)
}
