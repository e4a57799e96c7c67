package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// apiRequest performs an authenticated call and decodes the JSON body.
// Non-2xx responses surface the server's message when one is present.
func apiRequest(method, path string, payload interface{}) (map[string]interface{}, []byte, error) {
	var reqBody io.Reader
	if payload != nil {
		bodyBytes, err := json.Marshal(payload)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to encode request: %w", err)
		}
		reqBody = bytes.NewReader(bodyBytes)
	}

	req, err := http.NewRequest(method, apiURL+path, reqBody)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+authToken)
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{}
	resp, err := client.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errResp map[string]interface{}
		json.Unmarshal(body, &errResp)
		if msg, ok := errResp["message"].(string); ok {
			return nil, nil, fmt.Errorf("API error: %s", msg)
		}
		if msg, ok := errResp["error"].(string); ok {
			return nil, nil, fmt.Errorf("API error: %s", msg)
		}
		return nil, nil, fmt.Errorf("API error: status %d", resp.StatusCode)
	}

	var result map[string]interface{}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, nil, fmt.Errorf("failed to parse response: %w", err)
	}

	return result, body, nil
}

func printMovies(result map[string]interface{}, raw []byte) {
	if output == "json" {
		fmt.Println(string(raw))
		return
	}

	results, _ := result["results"].([]interface{})
	if len(results) == 0 {
		fmt.Println("No results.")
		return
	}
	for _, r := range results {
		movie, ok := r.(map[string]interface{})
		if !ok {
			continue
		}
		title, _ := movie["title"].(string)
		id := int64(0)
		if v, ok := movie["id"].(float64); ok {
			id = int64(v)
		} else if v, ok := movie["tmdb_id"].(float64); ok {
			id = int64(v)
		}
		line := fmt.Sprintf("%8d  %s", id, title)
		if year, ok := movie["release_date"].(string); ok && len(year) >= 4 {
			line += fmt.Sprintf(" (%s)", year[:4])
		}
		if avg, ok := movie["vote_average"].(float64); ok && avg > 0 {
			line += fmt.Sprintf("  ★%.1f", avg)
		}
		fmt.Println(line)
	}
}
