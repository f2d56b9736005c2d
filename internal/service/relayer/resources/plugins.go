package resources

// error codes surfaced by the API
const (
	CodeOrderAlreadyExists     = "ORDER_ALREADY_EXISTS"
	CodeInvalidSignature       = "INVALID_SIGNATURE"
	CodeInvalidOrder           = "INVALID_ORDER"
	CodeInvalidSecretRequest   = "INVALID_SECRET_REQUEST"
	CodeInvalidAddress         = "INVALID_ADDRESS"
	CodeEscrowValidationFailed = "ESCROW_VALIDATION_FAILED"
	CodeInvalidTransition      = "INVALID_TRANSITION"
	CodeChainNotSupported      = "CHAIN_NOT_SUPPORTED"
)

type ChainPlugin struct {
	ChainID int64  `json:"chainId"`
	Name    string `json:"name"`
	Healthy bool   `json:"healthy"`
	Error   string `json:"error,omitempty"`
}

type PluginsStatusResponse struct {
	Plugins []ChainPlugin `json:"plugins"`
}

type ChainsResponse struct {
	Chains []int64 `json:"chains"`
}

type ValidateEscrowResponse struct {
	ChainID int64          `json:"chainId"`
	Result  SideValidation `json:"result"`
}
