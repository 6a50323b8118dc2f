package token

import (
	"context"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

const testDest = "0x1111111111111111111111111111111111111111"

// rpcStub answers eth_call/eth_sendTransaction/eth_getTransactionReceipt
// and records the last calldata it saw.
func rpcStub(t *testing.T, receiptStatus string) (*httptest.Server, *string) {
	t.Helper()
	var lastData string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Method string           `json:"method"`
			Params []json.RawMessage `json:"params"`
			ID     int64            `json:"id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode rpc request: %v", err)
		}

		var result any
		switch req.Method {
		case "eth_call":
			// decimals() → 18
			result = "0x0000000000000000000000000000000000000000000000000000000000000012"
		case "eth_sendTransaction":
			var tx map[string]string
			_ = json.Unmarshal(req.Params[0], &tx)
			lastData = tx["data"]
			result = "0xabc123"
		case "eth_getTransactionReceipt":
			if receiptStatus == "" {
				result = nil
			} else {
				result = map[string]string{
					"transactionHash": "0xabc123",
					"blockNumber":     "0x10",
					"status":          receiptStatus,
				}
			}
		default:
			t.Fatalf("unexpected rpc method %s", req.Method)
		}

		_ = json.NewEncoder(w).Encode(map[string]any{"jsonrpc": "2.0", "id": req.ID, "result": result})
	}))

	return srv, &lastData
}

func TestTransferEncodesCalldata(t *testing.T) {
	srv, lastData := rpcStub(t, "")
	defer srv.Close()

	c := NewClient(srv.URL, "0x2222222222222222222222222222222222222222", "0x3333333333333333333333333333333333333333")

	hash, err := c.Transfer(context.Background(), testDest, 150)
	if err != nil {
		t.Fatalf("transfer: %v", err)
	}
	if hash != "0xabc123" {
		t.Fatalf("tx hash = %s; want 0xabc123", hash)
	}

	data := *lastData
	if !strings.HasPrefix(data, selectorTransfer) {
		t.Fatalf("calldata %s missing transfer selector", data)
	}
	if len(data) != len(selectorTransfer)+128 {
		t.Fatalf("calldata length = %d; want selector + 2 words", len(data))
	}
	if !strings.Contains(data, strings.TrimPrefix(testDest, "0x")) {
		t.Fatalf("calldata %s missing destination address", data)
	}

	// 150 vibe scaled by 18 decimals
	want := new(big.Int).Mul(big.NewInt(150), new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil))
	amountWord := data[len(data)-64:]
	got, ok := new(big.Int).SetString(amountWord, 16)
	if !ok || got.Cmp(want) != 0 {
		t.Fatalf("amount word = %s; want %s", amountWord, want.Text(16))
	}
}

func TestTransferNotConfigured(t *testing.T) {
	c := NewClient("", "", "")
	if c.Configured() {
		t.Fatalf("empty client reported configured")
	}
	if _, err := c.Transfer(context.Background(), testDest, 10); err != ErrNotConfigured {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}

func TestTransferRejectsBadAddress(t *testing.T) {
	c := NewClient("http://localhost:1", "0x2222222222222222222222222222222222222222", "0x3333333333333333333333333333333333333333")
	if _, err := c.Transfer(context.Background(), "not-an-address", 10); err == nil {
		t.Fatalf("expected error for invalid address")
	}
}

func TestGetReceipt(t *testing.T) {
	srv, _ := rpcStub(t, "0x1")
	defer srv.Close()

	c := NewClient(srv.URL, "0x2222222222222222222222222222222222222222", "0x3333333333333333333333333333333333333333")

	rec, err := c.GetReceipt(context.Background(), "0xabc123")
	if err != nil {
		t.Fatalf("receipt: %v", err)
	}
	if rec == nil || !rec.Success {
		t.Fatalf("receipt = %+v; want mined success", rec)
	}
}

func TestGetReceiptNotMined(t *testing.T) {
	srv, _ := rpcStub(t, "")
	defer srv.Close()

	c := NewClient(srv.URL, "0x2222222222222222222222222222222222222222", "0x3333333333333333333333333333333333333333")

	rec, err := c.GetReceipt(context.Background(), "0xabc123")
	if err != nil {
		t.Fatalf("receipt: %v", err)
	}
	if rec != nil {
		t.Fatalf("expected nil receipt for unmined tx, got %+v", rec)
	}
}

func TestValidateAddress(t *testing.T) {
	cases := []struct {
		addr string
		want bool
	}{
		{testDest, true},
		{"0xAbCdEf1234567890aBcDeF1234567890abcdef12", true},
		{"1111111111111111111111111111111111111111", false},
		{"0x111", false},
		{"0xzz11111111111111111111111111111111111111", false},
	}
	for _, tc := range cases {
		if got := ValidateAddress(tc.addr); got != tc.want {
			t.Fatalf("ValidateAddress(%q) = %v; want %v", tc.addr, got, tc.want)
		}
	}
}
