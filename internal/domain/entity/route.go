package entity

// ExecutionStatus is the execution state of a route step.
type ExecutionStatus string

const (
	ExecutionStatusPending        ExecutionStatus = "PENDING"
	ExecutionStatusActionRequired ExecutionStatus = "ACTION_REQUIRED"
	ExecutionStatusDone           ExecutionStatus = "DONE"
	ExecutionStatusFailed         ExecutionStatus = "FAILED"
)

// Route is an ordered plan of steps moving value from a source chain/token to a
// destination chain/token. Amounts are decimal strings in the token's smallest unit.
type Route struct {
	ID          string      `json:"id"`
	FromChainID uint64      `json:"fromChainId"`
	ToChainID   uint64      `json:"toChainId"`
	FromToken   Token       `json:"fromToken"`
	ToToken     Token       `json:"toToken"`
	FromAmount  string      `json:"fromAmount"`
	ToAmount    string      `json:"toAmount,omitempty"`
	FromAddress string      `json:"fromAddress,omitempty"`
	ToAddress   string      `json:"toAddress,omitempty"`
	Steps       []RouteStep `json:"steps"`
}

// RouteStep is one leg of a route.
type RouteStep struct {
	ID            string         `json:"id,omitempty"`
	Type          string         `json:"type,omitempty"`
	Tool          string         `json:"tool,omitempty"`
	Action        StepAction     `json:"action"`
	Estimate      *StepEstimate  `json:"estimate,omitempty"`
	IncludedSteps []RouteStep    `json:"includedSteps,omitempty"`
	Execution     *StepExecution `json:"execution,omitempty"`
}

// StepAction describes what a step moves and where.
type StepAction struct {
	FromChainID uint64 `json:"fromChainId"`
	ToChainID   uint64 `json:"toChainId"`
	FromToken   Token  `json:"fromToken"`
	ToToken     Token  `json:"toToken"`
	FromAmount  string `json:"fromAmount,omitempty"`
	FromAddress string `json:"fromAddress,omitempty"`
	ToAddress   string `json:"toAddress,omitempty"`
}

// StepEstimate carries the cost estimate of a step.
type StepEstimate struct {
	GasCosts          []GasCost `json:"gasCosts,omitempty"`
	FeeCosts          []FeeCost `json:"feeCosts,omitempty"`
	FromAmount        string    `json:"fromAmount,omitempty"`
	ToAmount          string    `json:"toAmount,omitempty"`
	ExecutionDuration float64   `json:"executionDuration,omitempty"`
}

// GasCost is the native-token cost of executing a step's transaction.
type GasCost struct {
	Type   string `json:"type,omitempty"`
	Amount string `json:"amount"`
	Token  Token  `json:"token"`
	Limit  string `json:"limit,omitempty"`
	Price  string `json:"price,omitempty"`
}

// FeeCost is a protocol fee. Included fees are deducted from the output amount.
type FeeCost struct {
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
	Amount      string `json:"amount"`
	Token       Token  `json:"token"`
	Included    bool   `json:"included"`
	Percentage  string `json:"percentage,omitempty"`
}

// StepExecution is the execution record of a step.
type StepExecution struct {
	Status ExecutionStatus `json:"status"`
}

// IsPending reports whether the step still has to be executed.
func (s RouteStep) IsPending() bool {
	return s.Execution == nil || s.Execution.Status != ExecutionStatusDone
}

// HasIncludedTool reports whether any included sub-step was produced by tool.
func (r Route) HasIncludedTool(tool string) bool {
	for _, step := range r.Steps {
		for _, included := range step.IncludedSteps {
			if included.Tool == tool {
				return true
			}
		}
	}
	return false
}
