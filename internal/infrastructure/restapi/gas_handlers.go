package restapi

import (
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"gas_checker/internal/app/port"
	"gas_checker/internal/app/service"
	"gas_checker/internal/domain/entity"
	"gas_checker/internal/pkg/utils"
)

// SufficiencyService is what the API needs from the gas sufficiency service.
type SufficiencyService interface {
	port.SufficiencyChecker
	Summarize(account entity.Account, route entity.Route) *entity.GasCostSummary
}

// AccountRequest describes the connected account of a request.
type AccountRequest struct {
	Address      string `json:"address"`
	ChainType    string `json:"chainType"`
	ConnectorID  string `json:"connectorId"`
	GasSponsored bool   `json:"gasSponsored"`
}

// GasCheckRequest is the body of the sufficiency and gas cost endpoints.
type GasCheckRequest struct {
	Account AccountRequest `json:"account"`
	Route   *entity.Route  `json:"route"`
}

// GasSufficiencyDTO is a single insufficient (chain, token) bucket.
type GasSufficiencyDTO struct {
	ChainID                     uint64       `json:"chainId"`
	ChainName                   string       `json:"chainName,omitempty"`
	Token                       entity.Token `json:"token"`
	GasAmount                   string       `json:"gasAmount"`
	GasAmountFormatted          string       `json:"gasAmountFormatted"`
	TokenAmount                 string       `json:"tokenAmount"`
	TokenAmountFormatted        string       `json:"tokenAmountFormatted"`
	InsufficientAmount          string       `json:"insufficientAmount"`
	InsufficientAmountFormatted string       `json:"insufficientAmountFormatted"`
	Insufficient                bool         `json:"insufficient"`
}

// GasCostDTO is one aggregated gas cost bucket.
type GasCostDTO struct {
	ChainID            uint64       `json:"chainId"`
	Token              entity.Token `json:"token"`
	GasAmount          string       `json:"gasAmount"`
	GasAmountFormatted string       `json:"gasAmountFormatted"`
}

// APIGasSufficiencyResponse is the response of POST /gas/sufficiency.
type APIGasSufficiencyResponse struct {
	Data struct {
		InsufficientGas []GasSufficiencyDTO `json:"insufficientGas"`
	} `json:"data"`
	StatusMessage string `json:"status_message"`
}

// APIGasCostsResponse is the response of POST /gas/costs.
type APIGasCostsResponse struct {
	Data struct {
		GasCosts []GasCostDTO `json:"gasCosts"`
	} `json:"data"`
	StatusMessage string `json:"status_message"`
}

// APIRefuelResponse is the response of POST /gas/refuel.
type APIRefuelResponse struct {
	Data          entity.RefuelResult `json:"data"`
	StatusMessage string              `json:"status_message"`
}

// APIErrorResponse is returned for rejected requests.
type APIErrorResponse struct {
	Error         string `json:"error"`
	StatusMessage string `json:"status_message"`
}

// GasHandler serves the gas sufficiency, gas cost, refuel and chain endpoints.
type GasHandler struct {
	sufficiency SufficiencyService
	refuel      port.RefuelRecommender
	registry    port.ChainRegistry
	logger      port.Logger
}

// NewGasHandler creates a new GasHandler.
func NewGasHandler(sufficiency SufficiencyService, refuel port.RefuelRecommender, registry port.ChainRegistry, l port.Logger) *GasHandler {
	return &GasHandler{
		sufficiency: sufficiency,
		refuel:      refuel,
		registry:    registry,
		logger:      l,
	}
}

func (h *GasHandler) bindGasCheck(c *gin.Context) (entity.Account, *entity.Route, bool) {
	var req GasCheckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, fmt.Errorf("invalid request body: %w", err))
		return entity.Account{}, nil, false
	}
	if req.Route == nil {
		badRequest(c, errors.New("route is required"))
		return entity.Account{}, nil, false
	}
	if strings.TrimSpace(req.Account.Address) == "" {
		badRequest(c, errors.New("account.address is required"))
		return entity.Account{}, nil, false
	}

	chainType := entity.ChainType(strings.ToUpper(req.Account.ChainType))
	if chainType == "" {
		chainType = entity.ChainTypeEVM
	}
	account := entity.Account{
		Address:   strings.TrimSpace(req.Account.Address),
		ChainType: chainType,
		Connector: entity.Connector{ID: req.Account.ConnectorID, GasSponsored: req.Account.GasSponsored},
	}
	return account, req.Route, true
}

// PostSufficiencyHandler returns the chains on which the account lacks gas for the route.
func (h *GasHandler) PostSufficiencyHandler(c *gin.Context) {
	account, route, ok := h.bindGasCheck(c)
	if !ok {
		return
	}

	results, err := h.sufficiency.Check(c.Request.Context(), account, route)
	if err != nil {
		h.logger.Warn("Gas sufficiency check aborted", "route", route.ID, "error", err)
		c.JSON(http.StatusServiceUnavailable, APIErrorResponse{
			Error:         err.Error(),
			StatusMessage: "Gas sufficiency check did not complete.",
		})
		return
	}

	var response APIGasSufficiencyResponse
	response.Data.InsufficientGas = make([]GasSufficiencyDTO, 0, len(results))
	for _, r := range results {
		response.Data.InsufficientGas = append(response.Data.InsufficientGas, toSufficiencyDTO(r))
	}
	if len(results) == 0 {
		response.StatusMessage = "Gas balance is sufficient for all pending steps."
	} else {
		response.StatusMessage = fmt.Sprintf("Insufficient gas on %d chain(s).", len(results))
	}
	c.JSON(http.StatusOK, response)
}

// PostGasCostsHandler returns the aggregated gas costs of the route's pending steps.
func (h *GasHandler) PostGasCostsHandler(c *gin.Context) {
	account, route, ok := h.bindGasCheck(c)
	if !ok {
		return
	}

	summary := h.sufficiency.Summarize(account, *route)
	var response APIGasCostsResponse
	response.Data.GasCosts = make([]GasCostDTO, 0, summary.Len())
	for _, entry := range summary.Entries() {
		response.Data.GasCosts = append(response.Data.GasCosts, GasCostDTO{
			ChainID:            entry.Token.ChainID,
			Token:              entry.Token,
			GasAmount:          utils.BigIntString(entry.GasAmount),
			GasAmountFormatted: utils.FormatBigInt(entry.GasAmount, entry.Token.Decimals),
		})
	}
	if summary.Len() == 0 {
		response.StatusMessage = "No gas is due for this route."
	} else {
		response.StatusMessage = "Gas costs aggregated successfully."
	}
	c.JSON(http.StatusOK, response)
}

// PostRefuelHandler decides whether a destination gas top-up should be offered.
// With ?wait=false the handler never blocks and may report isLoading.
func (h *GasHandler) PostRefuelHandler(c *gin.Context) {
	var req entity.RefuelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, fmt.Errorf("invalid request body: %w", err))
		return
	}
	if req.FromChainID == 0 || req.ToChainID == 0 {
		badRequest(c, errors.New("fromChain and toChain are required"))
		return
	}

	wait := true
	if raw := c.Query("wait"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			badRequest(c, fmt.Errorf("invalid wait parameter: %w", err))
			return
		}
		wait = parsed
	}

	var result entity.RefuelResult
	if wait {
		result = h.refuel.Recommend(c.Request.Context(), req)
	} else {
		result = h.refuel.Poll(req)
	}

	response := APIRefuelResponse{Data: result}
	switch {
	case result.IsLoading:
		response.StatusMessage = "Gas recommendation is loading."
	case result.Enabled:
		response.StatusMessage = "Refuel recommended."
	default:
		response.StatusMessage = "Refuel not needed."
	}
	c.JSON(http.StatusOK, response)
}

// GetChainsHandler lists every known chain.
func (h *GasHandler) GetChainsHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"data": gin.H{"chains": h.registry.AllChains()}})
}

// GetChainHandler returns a single chain by id.
func (h *GasHandler) GetChainHandler(c *gin.Context) {
	chainID, err := strconv.ParseUint(c.Param("chainId"), 10, 64)
	if err != nil {
		badRequest(c, fmt.Errorf("invalid chainId: %w", err))
		return
	}
	def, ok := h.registry.ResolveChain(chainID)
	if !ok {
		c.JSON(http.StatusNotFound, APIErrorResponse{
			Error:         service.ErrChainNotFound.Error(),
			StatusMessage: fmt.Sprintf("Chain %d is not known.", chainID),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": def})
}

// HealthHandler reports liveness.
func HealthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, APIErrorResponse{Error: err.Error(), StatusMessage: "Bad request."})
}

func toSufficiencyDTO(r entity.GasSufficiency) GasSufficiencyDTO {
	dto := GasSufficiencyDTO{
		ChainID:      r.Token.ChainID,
		Token:        r.Token,
		Insufficient: r.Insufficient,
	}
	if r.Chain != nil {
		dto.ChainName = r.Chain.Name
	}
	dto.GasAmount, dto.GasAmountFormatted = amountPair(r.GasAmount, r.Token.Decimals)
	dto.TokenAmount, dto.TokenAmountFormatted = amountPair(r.TokenAmount, r.Token.Decimals)
	dto.InsufficientAmount, dto.InsufficientAmountFormatted = amountPair(r.InsufficientAmount, r.Token.Decimals)
	return dto
}

func amountPair(amount *big.Int, decimals uint8) (string, string) {
	return utils.BigIntString(amount), utils.FormatBigInt(amount, decimals)
}
