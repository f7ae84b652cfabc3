package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
)

const baseURL = "http://localhost:3000/api"

// Pretty print JSON helper
func prettyPrint(v interface{}) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Printf("%v\n", v)
		return
	}
	fmt.Println(string(b))
}

// Request helper
func sendRequest(method, url, token string, body interface{}) (*http.Response, []byte, error) {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		bodyReader = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequest(method, baseURL+url, bodyReader)
	if err != nil {
		return nil, nil, err
	}

	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	client := &http.Client{Timeout: 30 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	return resp, respBody, err
}

// Streams /chat/v1/stream and prints SSE frames as they arrive.
func streamChat(token, message, sessionID string) {
	payload := map[string]interface{}{"message": message}
	if sessionID != "" {
		payload["sessionId"] = sessionID
	}
	jsonBody, _ := json.Marshal(payload)

	req, err := http.NewRequest("POST", baseURL+"/chat/v1/stream", bytes.NewBuffer(jsonBody))
	if err != nil {
		color.Red("Failed: %v", err)
		return
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "text/event-stream")

	client := &http.Client{} // no timeout, the stream can run long
	resp, err := client.Do(req)
	if err != nil {
		color.Red("Failed: %v", err)
		return
	}
	defer resp.Body.Close()
	color.Green("Status: %s", resp.Status)

	scanner := bufio.NewScanner(resp.Body)
	var answer strings.Builder
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case strings.HasPrefix(line, "event: "):
			fmt.Printf("\n[%s] ", strings.TrimPrefix(line, "event: "))
		case strings.HasPrefix(line, "data: "):
			var frame map[string]string
			if json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &frame) == nil {
				if content, ok := frame["content"]; ok {
					fmt.Print(content)
					answer.WriteString(content)
				} else {
					fmt.Print(strings.TrimPrefix(line, "data: "))
				}
			}
		}
	}
	fmt.Println()
	if err := scanner.Err(); err != nil {
		color.Red("Stream read error: %v", err)
	}
	fmt.Printf("Answer length: %d\n", answer.Len())
}

func main() {
	color.Cyan("🚀 Starting Chat API Smoke Test\n")

	email := fmt.Sprintf("smoke-%d@example.com", time.Now().Unix())
	password := "smoke-test-password"

	// 1. Register a throwaway user
	color.Yellow("\n1. Register")
	resp, body, err := sendRequest("POST", "/auth/v1/register", "", map[string]string{
		"fullName": "Smoke Tester",
		"email":    email,
		"password": password,
	})
	if err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}
	color.Green("Status: %s", resp.Status)

	// 2. Login and grab the token
	color.Yellow("\n2. Login")
	resp, body, err = sendRequest("POST", "/auth/v1/login", "", map[string]string{
		"email":    email,
		"password": password,
	})
	if err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}
	color.Green("Status: %s", resp.Status)
	var loginResp map[string]interface{}
	json.Unmarshal(body, &loginResp)
	var token string
	if data, ok := loginResp["data"].(map[string]interface{}); ok {
		if t, ok := data["token"].(string); ok {
			token = t
		}
	}
	if token == "" {
		color.Red("No token in login response")
		prettyPrint(loginResp)
		os.Exit(1)
	}

	// 3. Create an explicit session
	color.Yellow("\n3. Create Session")
	resp, body, err = sendRequest("POST", "/chat/v1/sessions", token, nil)
	if err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}
	color.Green("Status: %s", resp.Status)
	var sessionID string
	var createResp map[string]interface{}
	json.Unmarshal(body, &createResp)
	if data, ok := createResp["data"].(map[string]interface{}); ok {
		if id, ok := data["id"].(string); ok {
			sessionID = id
			fmt.Printf("Created Session ID: %s\n", sessionID)
		}
	}

	// 4. Stream a first question
	color.Yellow("\n4. Stream Chat (first question)")
	streamChat(token, "What is the capital of France?", sessionID)

	// 5. Follow-up on the same session, retrieval should pick up the prior turn
	color.Yellow("\n5. Stream Chat (follow-up)")
	streamChat(token, "And Germany?", sessionID)

	// 6. List sessions
	color.Yellow("\n6. List Sessions")
	resp, body, err = sendRequest("GET", "/chat/v1/sessions?limit=5", token, nil)
	if err != nil {
		color.Red("Failed: %v", err)
	} else {
		color.Green("Status: %s", resp.Status)
		var listResp map[string]interface{}
		json.Unmarshal(body, &listResp)
		prettyPrint(listResp)
	}

	// 7. Session detail with turns
	if sessionID != "" {
		color.Yellow("\n7. Get Session Detail")
		resp, body, err = sendRequest("GET", "/chat/v1/sessions/"+sessionID, token, nil)
		if err != nil {
			color.Red("Failed: %v", err)
		} else {
			color.Green("Status: %s", resp.Status)
			var detailResp map[string]interface{}
			json.Unmarshal(body, &detailResp)
			prettyPrint(detailResp)
		}
	}

	// 8. Cleanup
	if sessionID != "" {
		color.Yellow("\n8. Cleanup: Delete Session")
		resp, body, err = sendRequest("DELETE", "/chat/v1/sessions/"+sessionID, token, nil)
		if err != nil {
			color.Red("Failed: %v", err)
		} else {
			color.Green("Status: %s", resp.Status)
			var deleteResp map[string]interface{}
			json.Unmarshal(body, &deleteResp)
			prettyPrint(deleteResp)
		}
	}

	color.Cyan("\n✅ Smoke Test Complete")
}
