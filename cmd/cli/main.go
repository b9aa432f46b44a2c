package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var (
	baseURL string
	timeout time.Duration
	actor   string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "isobridge-cli",
		Short: "ISO Bridge CLI tool",
		Long:  `A command line interface for interacting with the settlement bridge API.`,
	}

	rootCmd.PersistentFlags().StringVar(&baseURL, "url", "http://localhost:8080", "Base URL of the bridge API")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "Request timeout")
	rootCmd.PersistentFlags().StringVar(&actor, "actor", "cli", "Actor identity recorded in the audit trail")

	submitCmd := &cobra.Command{
		Use:   "submit <confirmation.json>",
		Short: "Submit a ledger confirmation from a JSON file",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			submitConfirmation(args[0])
		},
	}

	getCmd := &cobra.Command{
		Use:   "get <uetr>",
		Short: "Get a recorded settlement by UETR",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			getJSON("/api/v1/settlements/" + args[0])
		},
	}

	var exportFrom, exportTo string

	exportCmd := &cobra.Command{
		Use:   "export [uetr]",
		Short: "Export generated messages for a settlement, or by time range",
		Args:  cobra.MaximumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			if len(args) == 1 {
				getJSON("/api/v1/settlements/" + args[0] + "/messages")
				return
			}

			if exportFrom == "" || exportTo == "" {
				fmt.Println("either a UETR or both --from and --to are required")
				os.Exit(1)
			}

			getJSON("/api/v1/messages?from=" + url.QueryEscape(exportFrom) + "&to=" + url.QueryEscape(exportTo))
		},
	}
	exportCmd.Flags().StringVar(&exportFrom, "from", "", "Range start (RFC 3339)")
	exportCmd.Flags().StringVar(&exportTo, "to", "", "Range end (RFC 3339)")

	auditCmd := &cobra.Command{
		Use:   "audit <subject-id>",
		Short: "Get the audit trail for a subject",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			getJSON("/api/v1/audit/" + args[0])
		},
	}

	var statementParty, statementFrom, statementTo string

	statementCmd := &cobra.Command{
		Use:   "statement",
		Short: "Generate an account statement for a party over a period",
		Run: func(cmd *cobra.Command, args []string) {
			generateStatement(statementParty, statementFrom, statementTo)
		},
	}
	statementCmd.Flags().StringVar(&statementParty, "party", "", "Party identifier")
	statementCmd.Flags().StringVar(&statementFrom, "from", "", "Period start (RFC 3339)")
	statementCmd.Flags().StringVar(&statementTo, "to", "", "Period end (RFC 3339)")
	statementCmd.MarkFlagRequired("party")
	statementCmd.MarkFlagRequired("from")
	statementCmd.MarkFlagRequired("to")

	rootCmd.AddCommand(submitCmd, getCmd, exportCmd, auditCmd, statementCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func submitConfirmation(path string) {
	payload, err := os.ReadFile(path)
	if err != nil {
		fmt.Printf("Error reading file: %v\n", err)
		os.Exit(1)
	}

	status, body := doRequest(http.MethodPost, "/api/v1/settlements", payload)

	switch status {
	case http.StatusCreated:
		fmt.Println("Settlement committed")
	case http.StatusConflict:
		fmt.Println("Settlement already recorded")
	default:
		fmt.Printf("Submission failed (Status: %d)\n", status)
	}

	printJSON(body)

	if status != http.StatusCreated && status != http.StatusConflict {
		os.Exit(1)
	}
}

func generateStatement(party, from, to string) {
	payload, err := json.Marshal(map[string]string{
		"party": party,
		"from":  from,
		"to":    to,
	})
	if err != nil {
		fmt.Printf("Error building request: %v\n", err)
		os.Exit(1)
	}

	status, body := doRequest(http.MethodPost, "/api/v1/statements", payload)

	if status != http.StatusCreated {
		fmt.Printf("Statement generation failed (Status: %d)\nResponse: %s\n", status, string(body))
		os.Exit(1)
	}

	printJSON(body)
}

func getJSON(path string) {
	status, body := doRequest(http.MethodGet, path, nil)

	if status != http.StatusOK {
		fmt.Printf("Request failed (Status: %d)\nResponse: %s\n", status, string(body))
		os.Exit(1)
	}

	printJSON(body)
}

func doRequest(method, path string, payload []byte) (int, []byte) {
	client := &http.Client{Timeout: timeout}

	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequest(method, baseURL+path, reqBody)
	if err != nil {
		fmt.Printf("Error building request: %v\n", err)
		os.Exit(1)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Actor-Id", actor)

	resp, err := client.Do(req)
	if err != nil {
		fmt.Printf("Error making request: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	return resp.StatusCode, body
}

func printJSON(body []byte) {
	var buf bytes.Buffer
	if err := json.Indent(&buf, body, "", "  "); err != nil {
		fmt.Println(string(body))
		return
	}

	fmt.Println(buf.String())
}
