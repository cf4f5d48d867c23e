package px6

// ErrorCode is an error_id published by the px6 API.
type ErrorCode int

const (
	CodeUnknown          ErrorCode = 30
	CodeKey              ErrorCode = 100
	CodeIP               ErrorCode = 105
	CodeMethod           ErrorCode = 110
	CodeCount            ErrorCode = 200
	CodePeriod           ErrorCode = 210
	CodeCountry          ErrorCode = 220
	CodeIDs              ErrorCode = 230
	CodeVersion          ErrorCode = 240
	CodeDescription      ErrorCode = 250
	CodeType             ErrorCode = 260
	CodePort             ErrorCode = 270
	CodeProxyString      ErrorCode = 280
	CodeActiveProxyAllow ErrorCode = 300
	CodeNoMoney          ErrorCode = 400
	CodeNotFound         ErrorCode = 404
	CodePrice            ErrorCode = 410
)

var codeDescriptions = map[ErrorCode]string{
	CodeUnknown:          "Unknown error",
	CodeKey:              "Authorization error, wrong key",
	CodeIP:               "The API was accessed from an incorrect IP (if the restriction is enabled), or an incorrect IP address format",
	CodeMethod:           "Wrong method",
	CodeCount:            "Wrong proxies quantity, wrong amount or no quantity input",
	CodePeriod:           "Period error, wrong period input (days) or no input",
	CodeCountry:          "Country error, wrong country input (iso2 for country input) or no input",
	CodeIDs:              "Error of the list of the proxy numbers. Proxy numbers have to divided with comas",
	CodeVersion:          "The proxy version is specified incorrectly",
	CodeDescription:      "Technical description error",
	CodeType:             "Proxy type (protocol) error. Incorrect or missing",
	CodePort:             "Proxy port error, incorrectly specified or missing",
	CodeProxyString:      "Proxy string error for the check method, incorrectly specified",
	CodeActiveProxyAllow: "Proxy amount error. Appears after attempt of purchase of more proxies than available on the service",
	CodeNoMoney:          "Balance error. Zero or low balance on your account",
	CodeNotFound:         "Element error. The requested item was not found",
	CodePrice:            "Error calculating the cost. The total cost is less than or equal to zero",
}

// Known reports whether the code appears in the published error table
func (c ErrorCode) Known() bool {
	_, ok := codeDescriptions[c]
	return ok
}

// Description returns the published meaning of the code
func (c ErrorCode) Description() string {
	return codeDescriptions[c]
}
