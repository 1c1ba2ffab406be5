package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

const (
	baseURL = "http://localhost:8080"
)

func main() {
	// Wait for server to start
	time.Sleep(2 * time.Second)

	fmt.Println("Starting Integration Test...")

	// 1. Create a region
	fmt.Println("1. Creating Region...")
	regionResp, ok := sendRequest("POST", "/regions", map[string]interface{}{
		"profile":   0,
		"interline": 20,
	})
	if !ok {
		fmt.Println("FAILED: Create region")
		os.Exit(1)
	}
	regionID, _ := regionResp["id"].(string)
	if regionID == "" {
		fmt.Println("FAILED: Region id missing")
		os.Exit(1)
	}
	fmt.Println("PASSED: Create region")

	// 2. Add a chord with one head
	fmt.Println("2. Adding Chord...")
	_, ok = sendRequest("POST", "/regions/"+regionID+"/chords", map[string]interface{}{
		"heads": []map[string]interface{}{
			{
				"shape":  "notehead_black",
				"grade":  0.9,
				"bounds": map[string]int{"x": 100, "y": 100, "width": 14, "height": 12},
				"staff":  1,
				"voice":  2,
			},
		},
	})
	if !ok {
		fmt.Println("FAILED: Add chord")
		os.Exit(1)
	}
	fmt.Println("PASSED: Add chord")

	// 3. Attach a bowing just above the head
	fmt.Println("3. Attaching Symbol...")
	symResp, ok := sendRequest("POST", "/regions/"+regionID+"/symbols", map[string]interface{}{
		"shape":   "upbow",
		"grade":   0.8,
		"bounds":  map[string]int{"x": 100, "y": 80, "width": 12, "height": 14},
		"profile": 0,
	})
	if !ok || symResp["status"] != "linked" {
		fmt.Println("FAILED: Attach symbol")
		os.Exit(1)
	}
	symID := int(symResp["id"].(float64))
	fmt.Println("PASSED: Attach symbol")

	// 4. Symbol far from any head must be discarded
	fmt.Println("4. Discarding Unreachable Symbol...")
	farResp, ok := sendRequest("POST", "/regions/"+regionID+"/symbols", map[string]interface{}{
		"shape":  "downbow",
		"grade":  0.8,
		"bounds": map[string]int{"x": 900, "y": 900, "width": 12, "height": 14},
	})
	if !ok || farResp["status"] != "discarded" {
		fmt.Println("FAILED: Discard unreachable symbol")
		os.Exit(1)
	}
	fmt.Println("PASSED: Discard unreachable symbol")

	// 5. Validity and inherited attributes
	fmt.Println("5. Querying Validity and Inheritance...")
	valResp, ok := sendRequest("GET", fmt.Sprintf("/regions/%s/symbols/%d/validity", regionID, symID), nil)
	if !ok || valResp["valid"] != true {
		fmt.Println("FAILED: Validity query")
		os.Exit(1)
	}
	staffResp, ok := sendRequest("GET", fmt.Sprintf("/regions/%s/symbols/%d/staff", regionID, symID), nil)
	if !ok || staffResp["staff"] == nil {
		fmt.Println("FAILED: Staff query")
		os.Exit(1)
	}
	fmt.Println("PASSED: Validity and inheritance")

	// 6. Graph snapshot
	fmt.Println("6. Fetching Graph Snapshot...")
	snapResp, ok := sendRequest("GET", "/regions/"+regionID+"/graph", nil)
	if !ok || snapResp["nodes"] == nil {
		fmt.Println("FAILED: Graph snapshot")
		os.Exit(1)
	}
	fmt.Println("PASSED: Graph snapshot")

	fmt.Println("Integration Test PASSED")
}

func sendRequest(method, path string, payload interface{}) (map[string]interface{}, bool) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			fmt.Printf("Failed to marshal payload: %v\n", err)
			return nil, false
		}
		body = bytes.NewBuffer(data)
	}

	req, err := http.NewRequest(method, baseURL+path, body)
	if err != nil {
		fmt.Printf("Failed to build request: %v\n", err)
		return nil, false
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		fmt.Printf("Request failed: %v\n", err)
		return nil, false
	}
	defer resp.Body.Close()

	data, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		fmt.Printf("Unexpected status %d: %s\n", resp.StatusCode, string(data))
		return nil, false
	}

	var result map[string]interface{}
	if err := json.Unmarshal(data, &result); err != nil {
		fmt.Printf("Failed to parse response: %v\n", err)
		return nil, false
	}

	return result, true
}
