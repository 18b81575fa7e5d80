// Command scrape-client is a thin CLI demo client for scrape-frontend:
// submit a URL, optionally poll status until the task reaches a terminal
// state, then print the result as JSON.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var (
	ip        string
	port      int
	targetURL string
	interval  float64
	timeout   float64
	noWait    bool
)

func main() {
	cmd := &cobra.Command{
		Use:   "scrape-client",
		Short: "Submit a URL to scrape-frontend and print the result",
		RunE:  run,
	}

	cmd.Flags().StringVarP(&ip, "ip", "i", "", "scrape-frontend address")
	cmd.Flags().IntVarP(&port, "port", "p", 0, "scrape-frontend port")
	cmd.Flags().StringVarP(&targetURL, "url", "u", "", "URL to scrape")
	cmd.Flags().Float64Var(&interval, "interval", 1.5, "polling interval in seconds")
	cmd.Flags().Float64Var(&timeout, "timeout", 120.0, "maximum time to wait for completion, in seconds")
	cmd.Flags().BoolVar(&noWait, "no-wait", false, "do not wait for the task to finish")

	_ = cmd.MarkFlagRequired("ip")
	_ = cmd.MarkFlagRequired("port")
	_ = cmd.MarkFlagRequired("url")

	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	baseURL := fmt.Sprintf("http://%s:%d", ip, port)
	client := &http.Client{Timeout: time.Duration(timeout+30) * time.Second}

	submission, err := submit(client, baseURL, targetURL)
	if err != nil {
		return err
	}

	if status, _ := submission["status"].(string); status == "completed" {
		if cached, _ := submission["cached"].(bool); cached {
			taskID, _ := submission["task_id"].(string)
			result, err := fetchResult(client, baseURL, taskID)
			if err != nil {
				return err
			}
			return printJSON(result)
		}
	}

	if noWait {
		return printJSON(submission)
	}

	taskID, _ := submission["task_id"].(string)
	result, err := waitForCompletion(client, baseURL, taskID)
	if err != nil {
		return err
	}
	return printJSON(result)
}

func submit(client *http.Client, baseURL, url string) (map[string]any, error) {
	body, err := json.Marshal(map[string]string{"url": url})
	if err != nil {
		return nil, err
	}

	resp, err := client.Post(baseURL+"/scrape", "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var payload map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, err
	}
	return payload, nil
}

func waitForCompletion(client *http.Client, baseURL, taskID string) (map[string]any, error) {
	deadline := time.Now().Add(time.Duration(timeout) * time.Second)

	for {
		statusPayload, statusCode, err := getJSON(client, baseURL+"/status/"+taskID)
		if err != nil {
			return nil, err
		}
		if statusCode == http.StatusNotFound {
			return nil, fmt.Errorf("task_id inexistente")
		}

		switch status, _ := statusPayload["status"].(string); status {
		case "completed":
			return fetchResult(client, baseURL, taskID)
		case "failed":
			errMsg, _ := statusPayload["error"].(string)
			if errMsg == "" {
				errMsg = "tarea fallida"
			}
			return nil, fmt.Errorf("%s", errMsg)
		}

		if time.Now().After(deadline) {
			return nil, fmt.Errorf("Tiempo de espera agotado esperando resultado")
		}
		time.Sleep(time.Duration(interval * float64(time.Second)))
	}
}

func fetchResult(client *http.Client, baseURL, taskID string) (map[string]any, error) {
	payload, _, err := getJSON(client, baseURL+"/result/"+taskID)
	return payload, err
}

func getJSON(client *http.Client, url string) (map[string]any, int, error) {
	resp, err := client.Get(url)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	var payload map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, resp.StatusCode, err
	}
	return payload, resp.StatusCode, nil
}

func printJSON(v map[string]any) error {
	encoded, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(encoded))
	return nil
}
