// Command workflow_smoke drives a complete registration session against a
// running instance and reports each step. Intended for post-deploy checks
// with the mock verification provider; it performs a real submission, so
// point it at a disposable environment.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

type sessionView struct {
	SessionID        string `json:"sessionId"`
	State            string `json:"state"`
	TokenHeld        bool   `json:"tokenHeld"`
	VerificationMode string `json:"verificationMode"`
}

type step struct {
	Name     string
	Err      error
	Duration time.Duration
}

func main() {
	var (
		base     string
		prefix   string
		courseID int
		email    string
		timeout  time.Duration
	)

	flag.StringVar(&base, "base", "http://localhost:8080", "API base URL")
	flag.StringVar(&prefix, "prefix", "/api/v1", "API route prefix")
	flag.IntVar(&courseID, "course", 1, "Course id to register for")
	flag.StringVar(&email, "email", "", "Registration email (default: generated)")
	flag.DurationVar(&timeout, "timeout", 10*time.Second, "HTTP client timeout")
	flag.Parse()

	if email == "" {
		email = fmt.Sprintf("smoke+%d@example.com", time.Now().Unix())
	}

	client := &http.Client{Timeout: timeout}
	api := strings.TrimRight(base, "/") + prefix
	var steps []step
	failed := false

	run := func(name string, fn func() error) {
		if failed {
			return
		}
		start := time.Now()
		err := fn()
		steps = append(steps, step{Name: name, Err: err, Duration: time.Since(start)})
		if err != nil {
			failed = true
		}
	}

	var session sessionView

	run("health", func() error {
		resp, err := client.Get(strings.TrimRight(base, "/") + "/health")
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("unexpected status %d", resp.StatusCode)
		}
		return nil
	})

	run("list courses", func() error {
		var courses []json.RawMessage
		return getJSON(client, api+"/courses", &courses)
	})

	run("open session", func() error {
		if err := postJSON(client, api+"/workflow/sessions", map[string]int{"courseId": courseID}, &session); err != nil {
			return err
		}
		if session.State != "AWAITING_VERIFICATION" {
			return fmt.Errorf("unexpected state %s", session.State)
		}
		if session.VerificationMode == "disabled" {
			return fmt.Errorf("verification disabled, cannot run the flow")
		}
		return nil
	})

	run("await verification", func() error {
		deadline := time.Now().Add(5 * time.Second)
		for time.Now().Before(deadline) {
			if err := getJSON(client, api+"/workflow/sessions/"+session.SessionID, &session); err != nil {
				return err
			}
			if session.State == "READY" && session.TokenHeld {
				return nil
			}
			time.Sleep(200 * time.Millisecond)
		}
		return fmt.Errorf("session never reached READY (state %s)", session.State)
	})

	run("submit registration", func() error {
		err := postJSON(client, api+"/workflow/sessions/"+session.SessionID+"/submit", map[string]string{
			"fullName": "Smoke Test",
			"email":    email,
			"phone":    "+10000000000",
		}, &session)
		if err != nil {
			return err
		}
		if session.State != "SUCCEEDED" {
			return fmt.Errorf("unexpected state %s", session.State)
		}
		return nil
	})

	run("close session", func() error {
		req, err := http.NewRequest(http.MethodDelete, api+"/workflow/sessions/"+session.SessionID, nil)
		if err != nil {
			return err
		}
		resp, err := client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusNoContent {
			return fmt.Errorf("unexpected status %d", resp.StatusCode)
		}
		return nil
	})

	fmt.Println("Workflow Smoke Report")
	fmt.Println("=====================")
	for _, s := range steps {
		status := "OK"
		if s.Err != nil {
			status = "FAIL"
		}
		fmt.Printf("[%s] %s (%s)\n", status, s.Name, s.Duration)
		if s.Err != nil {
			fmt.Printf("  Error: %v\n", s.Err)
		}
	}
	if failed {
		os.Exit(1)
	}
}

func getJSON(client *http.Client, url string, dest interface{}) error {
	resp, err := client.Get(url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return decodeEnvelope(resp, dest)
}

func postJSON(client *http.Client, url string, payload, dest interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	resp, err := client.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return decodeEnvelope(resp, dest)
}

func decodeEnvelope(resp *http.Response, dest interface{}) error {
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return err
	}
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}
	if env.Error != nil {
		return fmt.Errorf("status %d: %s (%s)", resp.StatusCode, env.Error.Message, env.Error.Code)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	if dest == nil {
		return nil
	}
	return json.Unmarshal(env.Data, dest)
}
