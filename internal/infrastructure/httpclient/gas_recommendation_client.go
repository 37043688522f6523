package httpclient

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"gas_checker/internal/app/port"
	domain "gas_checker/internal/domain/entity"
	"gas_checker/internal/entity"
	"gas_checker/internal/pkg/metrics"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// gasRecommendationClient implements port.GasRecommendationProvider over the gas suggestion API.
type gasRecommendationClient struct {
	client  *fasthttp.Client
	baseURL string
	apiKey  string
	timeout time.Duration
	logger  *zap.Logger
}

// NewGasRecommendationClient creates a client for baseURL (e.g. https://li.quest/v1).
func NewGasRecommendationClient(baseURL, apiKey string, timeout time.Duration, logger *zap.Logger) port.GasRecommendationProvider {
	return &gasRecommendationClient{
		client:  &fasthttp.Client{},
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		timeout: timeout,
		logger:  logger.Named("GasRecommendationClient"),
	}
}

func (c *gasRecommendationClient) requestURL(toChainID, fromChainID uint64, fromTokenAddress string) string {
	query := url.Values{}
	if fromChainID != 0 {
		query.Set("fromChain", strconv.FormatUint(fromChainID, 10))
	}
	if fromTokenAddress != "" {
		query.Set("fromToken", fromTokenAddress)
	}
	u := fmt.Sprintf("%s/gas/suggestion/%d", c.baseURL, toChainID)
	if encoded := query.Encode(); encoded != "" {
		u += "?" + encoded
	}
	return u
}

// GetRecommendation implements port.GasRecommendationProvider.
func (c *gasRecommendationClient) GetRecommendation(ctx context.Context, toChainID, fromChainID uint64, fromTokenAddress string) (*domain.GasRecommendation, error) {
	if toChainID == 0 {
		return nil, fmt.Errorf("toChainID cannot be empty")
	}
	requestURL := c.requestURL(toChainID, fromChainID, fromTokenAddress)
	c.logger.Debug("Requesting gas recommendation", zap.String("url", requestURL))

	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	req.SetRequestURI(requestURL)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("x-lifi-api-key", c.apiKey)
	}

	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var err error
	if deadline, ok := ctx.Deadline(); ok {
		err = c.client.DoDeadline(req, resp, deadline)
	} else {
		err = c.client.DoTimeout(req, resp, c.timeout)
	}
	if err != nil {
		metrics.RecommendationRequests.WithLabelValues("error").Inc()
		c.logger.Error("Failed to execute gas recommendation request", zap.String("url", requestURL), zap.Error(err))
		return nil, fmt.Errorf("failed to execute request to %s: %w", requestURL, err)
	}

	rawBody := resp.Body()
	if resp.StatusCode() != fasthttp.StatusOK {
		metrics.RecommendationRequests.WithLabelValues(strconv.Itoa(resp.StatusCode())).Inc()
		c.logger.Error("Gas recommendation request failed",
			zap.String("url", requestURL),
			zap.Int("statusCode", resp.StatusCode()),
			zap.ByteString("responseBody", rawBody),
		)
		return nil, fmt.Errorf("gas recommendation request to %s failed with status %d: %s", requestURL, resp.StatusCode(), string(rawBody))
	}

	var body entity.GasSuggestionResponse
	if err := json.Unmarshal(rawBody, &body); err != nil {
		metrics.RecommendationRequests.WithLabelValues("decode_error").Inc()
		return nil, fmt.Errorf("failed to unmarshal gas recommendation from %s: %w", requestURL, err)
	}
	metrics.RecommendationRequests.WithLabelValues("200").Inc()

	c.logger.Debug("Gas recommendation received",
		zap.Uint64("toChain", toChainID),
		zap.Bool("available", body.Available))
	return body.ToDomain(), nil
}
