package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/spf13/cobra"
)

var rpcURL string

// rpcCmd posts a single method call to a running daemon and prints the
// result, mirroring the server's request envelope.
var rpcCmd = &cobra.Command{
	Use:   "rpc <method> [params-json]",
	Short: "Call an RPC method on a running daemon",
	Long: `Send one JSON-RPC request to a running ammd server and print the result.

Examples:
  ammd rpc server_info
  ammd rpc balance_of '{"account": "alice", "asset": "base"}'
  ammd rpc quote '{"input_asset": "base", "value": "1000"}'`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runRpc,
}

func init() {
	rootCmd.AddCommand(rpcCmd)
	rpcCmd.Flags().StringVar(&rpcURL, "url", "http://127.0.0.1:5005/", "daemon RPC endpoint")
}

func runRpc(cmd *cobra.Command, args []string) error {
	request := map[string]interface{}{"method": args[0]}
	if len(args) == 2 {
		var params map[string]interface{}
		if err := json.Unmarshal([]byte(args[1]), &params); err != nil {
			return fmt.Errorf("invalid params JSON: %w", err)
		}
		request["params"] = []interface{}{params}
	}

	body, err := json.Marshal(request)
	if err != nil {
		return err
	}

	client := &http.Client{Timeout: 30 * time.Second}
	resp, err := client.Post(rpcURL, "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	var pretty bytes.Buffer
	if err := json.Indent(&pretty, data, "", "  "); err != nil {
		// Not JSON, print as-is.
		fmt.Println(string(data))
		return nil
	}
	fmt.Println(pretty.String())
	return nil
}
