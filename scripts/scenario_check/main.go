package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/pflag"
)

// scenario is one reference form submission and the result a correct
// deployment must return for it.
type scenario struct {
	Name    string          `json:"name"`
	Payload json.RawMessage `json:"payload"`
	Score   int             `json:"score"`
	Tier    string          `json:"tier"`
	Factors int             `json:"factors"`
}

type scenarioFile struct {
	Scenarios []scenario `json:"scenarios"`
}

type outcome struct {
	Scenario scenario
	Status   int
	Score    int
	Tier     string
	Factors  int
	Duration time.Duration
	Error    error
}

func (o outcome) passed() bool {
	return o.Error == nil && o.Status == http.StatusOK &&
		o.Score == o.Scenario.Score && o.Tier == o.Scenario.Tier && o.Factors == o.Scenario.Factors
}

var defaultScenarios = []scenario{
	{Name: "anxiety and grades", Payload: json.RawMessage(`{"gad7_score":12,"gpa":10,"attendance_rate":90,"psych_history":"no","failed_courses":0}`), Score: 70, Tier: "HIGH", Factors: 2},
	{Name: "nothing flagged", Payload: json.RawMessage(`{"gad7_score":5,"gpa":15,"attendance_rate":95,"psych_history":"no","failed_courses":0}`), Score: 0, Tier: "LOW", Factors: 0},
	{Name: "attendance and one failure", Payload: json.RawMessage(`{"gad7_score":8,"gpa":14,"attendance_rate":80,"psych_history":"no","failed_courses":1}`), Score: 20, Tier: "MODERATE", Factors: 2},
	{Name: "every factor", Payload: json.RawMessage(`{"gad7_score":15,"gpa":9,"attendance_rate":60,"psych_history":"yes","failed_courses":4}`), Score: 120, Tier: "HIGH", Factors: 5},
	{Name: "fifty stays moderate", Payload: json.RawMessage(`{"gad7_score":11,"gpa":12,"attendance_rate":90,"psych_history":"no","failed_courses":0}`), Score: 50, Tier: "MODERATE", Factors: 1},
	{Name: "thresholds are strict", Payload: json.RawMessage(`{"gad7_score":10,"gpa":11,"attendance_rate":85,"psych_history":"no","failed_courses":0}`), Score: 0, Tier: "LOW", Factors: 0},
}

func main() {
	var (
		base          string
		prefix        string
		scenariosPath string
		timeout       time.Duration
	)

	pflag.StringVar(&base, "base", "http://localhost:8080", "risk API base URL")
	pflag.StringVar(&prefix, "prefix", "/api/v1", "API route prefix")
	pflag.StringVar(&scenariosPath, "scenarios", "", "optional JSON file with extra scenarios")
	pflag.DurationVar(&timeout, "timeout", 5*time.Second, "HTTP client timeout")
	pflag.Parse()

	scenarios := append([]scenario(nil), defaultScenarios...)
	if scenariosPath != "" {
		extra, err := loadScenarios(scenariosPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to load scenarios: %v\n", err)
			os.Exit(1)
		}
		scenarios = append(scenarios, extra...)
	}

	client := &http.Client{Timeout: timeout}
	outcomes := make([]outcome, 0, len(scenarios))
	failed := 0
	for _, sc := range scenarios {
		out := checkScenario(client, strings.TrimRight(base, "/")+prefix, sc)
		if !out.passed() {
			failed++
		}
		outcomes = append(outcomes, out)
	}

	printReport(os.Stdout, outcomes)
	fmt.Printf("Passed: %d, Failed: %d\n", len(outcomes)-failed, failed)
	if failed > 0 {
		os.Exit(1)
	}
}

func loadScenarios(path string) ([]scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var file scenarioFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, err
	}
	if len(file.Scenarios) == 0 {
		return nil, fmt.Errorf("no scenarios defined in %s", path)
	}
	return file.Scenarios, nil
}

func checkScenario(client *http.Client, apiBase string, sc scenario) outcome {
	out := outcome{Scenario: sc}
	if client == nil {
		out.Error = errors.New("nil client")
		return out
	}

	req, err := http.NewRequest(http.MethodPost, apiBase+"/assessments", bytes.NewReader(sc.Payload))
	if err != nil {
		out.Error = err
		return out
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		out.Error = fmt.Errorf("request failed: %w", err)
		return out
	}
	defer resp.Body.Close()
	out.Duration = time.Since(start)
	out.Status = resp.StatusCode

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		out.Error = fmt.Errorf("read body: %w", err)
		return out
	}
	var envelope struct {
		Data struct {
			Result struct {
				Score   int               `json:"score"`
				Tier    string            `json:"tier"`
				Factors []json.RawMessage `json:"factors"`
			} `json:"result"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		out.Error = fmt.Errorf("decode body: %w", err)
		return out
	}
	out.Score = envelope.Data.Result.Score
	out.Tier = envelope.Data.Result.Tier
	out.Factors = len(envelope.Data.Result.Factors)
	return out
}

func printReport(w io.Writer, results []outcome) {
	fmt.Fprintln(w, "Scenario Check Report")
	fmt.Fprintln(w, "=====================")
	for _, res := range results {
		status := "OK"
		if res.Error != nil {
			status = "ERROR"
		} else if !res.passed() {
			status = "DIFF"
		}
		fmt.Fprintf(w, "[%s] %s (%s)\n", status, res.Scenario.Name, res.Duration)
		if res.Error != nil {
			fmt.Fprintf(w, "  Error: %v\n", res.Error)
			continue
		}
		if status == "DIFF" {
			fmt.Fprintf(w, "  HTTP %d | got score %d %s with %d factors | want score %d %s with %d factors\n",
				res.Status, res.Score, res.Tier, res.Factors, res.Scenario.Score, res.Scenario.Tier, res.Scenario.Factors)
		}
	}
}
