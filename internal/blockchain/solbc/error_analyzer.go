// internal/blockchain/solbc/error_analyzer.go
package solbc

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/gagliardetto/solana-go/rpc/jsonrpc"
	"go.uber.org/zap"
)

// AnchorError is a program error decoded from simulation logs or an InstructionError.
type AnchorError struct {
	Code int    `json:"code"`
	Name string `json:"name,omitempty"`
	Msg  string `json:"msg,omitempty"`
}

func (e AnchorError) String() string {
	switch {
	case e.Name != "" && e.Msg != "":
		return fmt.Sprintf("%s (%d): %s", e.Name, e.Code, e.Msg)
	case e.Name != "":
		return fmt.Sprintf("%s (%d)", e.Name, e.Code)
	default:
		return fmt.Sprintf("custom program error %d (0x%x)", e.Code, e.Code)
	}
}

// ErrorAnalyzer extracts program-level failure details from RPC errors.
type ErrorAnalyzer struct {
	logger *zap.Logger
}

func NewErrorAnalyzer(logger *zap.Logger) *ErrorAnalyzer {
	return &ErrorAnalyzer{
		logger: logger.Named("error-analyzer"),
	}
}

// ExtractAnchorError looks for a program error in a failed send (preflight
// simulation logs) or in a landed transaction's InstructionError.
func (ea *ErrorAnalyzer) ExtractAnchorError(err error) (*AnchorError, bool) {
	if err == nil {
		return nil, false
	}

	var failed *TransactionFailedError
	if errors.As(err, &failed) {
		if code, ok := customCode(failed.Err); ok {
			return &AnchorError{Code: code}, true
		}
		return nil, false
	}

	var rpcErr *jsonrpc.RPCError
	if !errors.As(err, &rpcErr) {
		return nil, false
	}

	analysis := ea.AnalyzeRPCError(rpcErr)
	if anchorErr, ok := analysis["anchor_error"].(AnchorError); ok {
		return &anchorErr, true
	}
	if instrErr, ok := analysis["instruction_error"]; ok {
		if code, ok := customCode(instrErr); ok {
			return &AnchorError{Code: code}, true
		}
	}
	return nil, false
}

// AnalyzeRPCError analyzes a jsonrpc.RPCError and extracts detailed information
func (ea *ErrorAnalyzer) AnalyzeRPCError(rpcErr *jsonrpc.RPCError) map[string]interface{} {
	result := map[string]interface{}{
		"type":    "rpc_error",
		"code":    rpcErr.Code,
		"message": rpcErr.Message,
	}

	if !strings.Contains(rpcErr.Message, "Transaction simulation failed") {
		return result
	}
	result["simulation_failed"] = true

	dataMap, ok := rpcErr.Data.(map[string]interface{})
	if !ok {
		return result
	}

	if logs, ok := dataMap["logs"].([]interface{}); ok {
		result["logs"] = logs
		for _, logEntry := range logs {
			logStr, ok := logEntry.(string)
			if !ok || !strings.Contains(logStr, "AnchorError") {
				continue
			}
			anchorErr := parseAnchorErrorLog(logStr)
			result["anchor_error"] = anchorErr

			ea.logger.Debug("Anchor error detected",
				zap.Int("code", anchorErr.Code),
				zap.String("name", anchorErr.Name),
				zap.String("message", anchorErr.Msg))
		}
	}

	if instrErr, ok := dataMap["err"]; ok && instrErr != nil {
		result["instruction_error"] = instrErr
	}

	return result
}

// parseAnchorErrorLog parses an Anchor error log string
// Example: "Program log: AnchorError caused by account: listing. Error Code: ConstraintHasOne. Error Number: 2001. Error Message: A has one constraint was violated."
func parseAnchorErrorLog(logStr string) AnchorError {
	result := AnchorError{}

	if parts := strings.SplitN(logStr, "Error Number:", 2); len(parts) == 2 {
		num := strings.TrimSpace(strings.SplitN(parts[1], ".", 2)[0])
		result.Code, _ = strconv.Atoi(num)
	}

	if parts := strings.SplitN(logStr, "Error Code:", 2); len(parts) == 2 {
		result.Name = strings.TrimSpace(strings.SplitN(parts[1], ".", 2)[0])
	}

	if parts := strings.SplitN(logStr, "Error Message:", 2); len(parts) == 2 {
		result.Msg = strings.TrimSuffix(strings.TrimSpace(parts[1]), ".")
	}

	return result
}

// customCode digs the u32 out of {"InstructionError": [idx, {"Custom": code}]}.
func customCode(v interface{}) (int, bool) {
	m, ok := v.(map[string]interface{})
	if !ok {
		return 0, false
	}
	pair, ok := m["InstructionError"].([]interface{})
	if !ok || len(pair) != 2 {
		return 0, false
	}
	inner, ok := pair[1].(map[string]interface{})
	if !ok {
		return 0, false
	}
	switch code := inner["Custom"].(type) {
	case float64:
		return int(code), true
	case json.Number:
		n, err := code.Int64()
		return int(n), err == nil
	default:
		return 0, false
	}
}
