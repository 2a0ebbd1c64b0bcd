package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
)

// checkctl registers a monitor and triggers an immediate check against a
// running API. API_BASE and ADMIN_API_KEY configure the target.
func main() {
	api := os.Getenv("API_BASE")
	if api == "" {
		api = "http://localhost:8080"
	}
	key := os.Getenv("ADMIN_API_KEY")

	reader := bufio.NewReader(os.Stdin)
	fmt.Print("Site URL to check (e.g., https://example.com): ")
	raw, _ := reader.ReadString('\n')
	raw = strings.TrimSpace(raw)
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.ParseRequestURI(raw)
	if err != nil || u.Hostname() == "" {
		fmt.Println("Invalid URL.")
		os.Exit(1)
	}

	id := "ctl-" + strings.ReplaceAll(u.Hostname(), ".", "-")
	body, _ := json.Marshal(map[string]any{
		"id":    id,
		"orgId": "checkctl",
		"url":   raw,
		"name":  u.Hostname(),
		"checks": map[string]bool{
			"httpStatus": true, "sslCertificate": true, "dnsRecords": true,
			"mxRecords": true, "pageInfo": true, "responseTime": true,
		},
	})
	if _, err := do(key, http.MethodPost, api+"/api/monitors", body); err != nil {
		fmt.Println("Could not register monitor:", err)
		os.Exit(1)
	}

	out, err := do(key, http.MethodPost, api+"/api/monitors/"+id+"/check", nil)
	if err != nil {
		fmt.Println("Check failed:", err)
		os.Exit(1)
	}

	var pretty bytes.Buffer
	if json.Indent(&pretty, out, "", "  ") == nil {
		fmt.Println(pretty.String())
	} else {
		fmt.Println(string(out))
	}
}

func do(key, method, target string, body []byte) ([]byte, error) {
	req, err := http.NewRequest(method, target, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if key != "" {
		req.Header.Set("X-API-Key", key)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	out, _ := io.ReadAll(resp.Body)
	if resp.StatusCode/100 != 2 {
		return nil, fmt.Errorf("%s: %s", resp.Status, strings.TrimSpace(string(out)))
	}
	return out, nil
}
